package pagination

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sternrassler/polls-client/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// ErrInvalidBatchSize is returned when the batch size is not positive.
var ErrInvalidBatchSize = errors.New("batch size must be positive")

// DefaultBatchSize is the page size used when none is configured.
const DefaultBatchSize = 10

// Prometheus metrics for drain operations.
var (
	drainPagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polls_drain_pages_total",
		Help: "Total pages fetched while draining paginated endpoints",
	})

	drainRecordsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "polls_drain_records_total",
		Help: "Total records accumulated while draining paginated endpoints",
	})

	drainDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "polls_drain_duration_seconds",
		Help:    "Duration of complete drain operations in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	})
)

// Config holds drainer configuration
type Config struct {
	// BatchSize is the limit sent with every page request
	BatchSize int
}

// DefaultConfig returns the default drainer configuration
func DefaultConfig() Config {
	return Config{
		BatchSize: DefaultBatchSize,
	}
}

// PageFetcher fetches a single page of at most limit records starting at skip
type PageFetcher[T any] interface {
	FetchPage(ctx context.Context, skip, limit int) ([]T, error)
}

// PageFetcherFunc adapts a function to PageFetcher
type PageFetcherFunc[T any] func(ctx context.Context, skip, limit int) ([]T, error)

// FetchPage calls f(ctx, skip, limit)
func (f PageFetcherFunc[T]) FetchPage(ctx context.Context, skip, limit int) ([]T, error) {
	return f(ctx, skip, limit)
}

// Drainer fetches every page of a collection, one request at a time
type Drainer[T any] struct {
	fetcher PageFetcher[T]
	config  Config
	logger  zerolog.Logger
}

// NewDrainer creates a new drainer. A zero BatchSize falls back to DefaultBatchSize.
func NewDrainer[T any](fetcher PageFetcher[T], config Config) *Drainer[T] {
	if config.BatchSize == 0 {
		config.BatchSize = DefaultBatchSize
	}

	return &Drainer[T]{
		fetcher: fetcher,
		config:  config,
		logger:  logging.NewLogger("pagination"),
	}
}

// Drain fetches the full collection from fetcher in pages of batchSize
func Drain[T any](ctx context.Context, fetcher PageFetcher[T], batchSize int) ([]T, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("%w (got %d)", ErrInvalidBatchSize, batchSize)
	}
	return NewDrainer(fetcher, Config{BatchSize: batchSize}).DrainAll(ctx)
}

// DrainAll fetches pages starting at skip 0 until the collection is exhausted.
//
// An empty page ends the drain and is not included. A page shorter than the
// batch size is included and ends the drain. Otherwise skip advances by the
// batch size, never by the number of records received, so a server that
// returns short pages mid-collection ends the drain early.
//
// The first fetch error aborts the drain and is returned unchanged with no
// partial result.
func (d *Drainer[T]) DrainAll(ctx context.Context) ([]T, error) {
	batchSize := d.config.BatchSize
	if batchSize <= 0 {
		return nil, fmt.Errorf("%w (got %d)", ErrInvalidBatchSize, batchSize)
	}

	start := time.Now()
	all := make([]T, 0)
	skip := 0
	pages := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := d.fetcher.FetchPage(ctx, skip, batchSize)
		if err != nil {
			d.logger.Warn().
				Err(err).
				Int("skip", skip).
				Int("limit", batchSize).
				Int("pages_fetched", pages).
				Msg("Page fetch failed, aborting drain")
			return nil, err
		}
		pages++
		drainPagesTotal.Inc()

		d.logger.Debug().
			Int("skip", skip).
			Int("limit", batchSize).
			Int("records", len(page)).
			Msg("Fetched page")

		if len(page) == 0 {
			break
		}

		all = append(all, page...)
		drainRecordsTotal.Add(float64(len(page)))

		if len(page) < batchSize {
			break
		}

		skip += batchSize
	}

	elapsed := time.Since(start)
	drainDuration.Observe(elapsed.Seconds())

	d.logger.Info().
		Int("pages", pages).
		Int("records", len(all)).
		Int("batch_size", batchSize).
		Dur("duration", elapsed).
		Msg("Drain complete")

	return all, nil
}
