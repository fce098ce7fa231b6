package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Sternrassler/polls-client/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var (
	// ErrSnapshotNotFound indicates no snapshot is stored for the key
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrInvalidSnapshot indicates the stored snapshot could not be decoded
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)

// SnapshotWrites tracks snapshot writes by result ("ok", "error")
var SnapshotWrites = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "polls_snapshot_writes_total",
		Help: "Total number of polls snapshot writes",
	},
	[]string{"result"},
)

// Manager reads and writes snapshots in Redis.
type Manager struct {
	redis  *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewManager creates a new snapshot manager. A ttl of zero keeps snapshots
// until they are overwritten or deleted.
func NewManager(redisClient *redis.Client, ttl time.Duration) *Manager {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &Manager{
		redis:  redisClient,
		ttl:    ttl,
		logger: logging.NewLogger("store"),
	}
}

// Save stores snapshot under key, replacing any previous one.
func (m *Manager) Save(ctx context.Context, key SnapshotKey, snapshot *Snapshot) error {
	if snapshot == nil {
		return fmt.Errorf("snapshot cannot be nil")
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		SnapshotWrites.WithLabelValues("error").Inc()
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := m.redis.Set(ctx, key.String(), data, m.ttl).Err(); err != nil {
		SnapshotWrites.WithLabelValues("error").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	SnapshotWrites.WithLabelValues("ok").Inc()
	m.logger.Info().
		Str("key", key.String()).
		Int("polls", snapshot.Count).
		Int("bytes", len(data)).
		Dur("ttl", m.ttl).
		Msg("Snapshot stored")

	return nil
}

// Load retrieves the snapshot stored under key.
// Returns ErrSnapshotNotFound if there is none.
func (m *Manager) Load(ctx context.Context, key SnapshotKey) (*Snapshot, error) {
	data, err := m.redis.Get(ctx, key.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	return &snapshot, nil
}

// Delete removes the snapshot stored under key.
func (m *Manager) Delete(ctx context.Context, key SnapshotKey) error {
	if err := m.redis.Del(ctx, key.String()).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
