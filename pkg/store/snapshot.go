package store

import (
	"time"

	"github.com/Sternrassler/polls-client/pkg/client"
)

// Snapshot is one drained polls collection.
type Snapshot struct {
	// BaseURL of the API the polls were drained from
	BaseURL string `json:"base_url"`

	// BatchSize used for the drain
	BatchSize int `json:"batch_size"`

	// TakenAt is when the drain completed
	TakenAt time.Time `json:"taken_at"`

	// Count is len(Polls), stored for cheap inspection
	Count int `json:"count"`

	// Polls in fetch order
	Polls []client.Poll `json:"polls"`
}

// NewSnapshot builds a snapshot of polls taken now.
func NewSnapshot(baseURL string, batchSize int, polls []client.Poll) *Snapshot {
	if polls == nil {
		polls = []client.Poll{}
	}
	return &Snapshot{
		BaseURL:   baseURL,
		BatchSize: batchSize,
		TakenAt:   time.Now().UTC(),
		Count:     len(polls),
		Polls:     polls,
	}
}

// Age returns how long ago the snapshot was taken.
func (s *Snapshot) Age() time.Duration {
	return time.Since(s.TakenAt)
}
