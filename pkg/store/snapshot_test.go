package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Sternrassler/polls-client/pkg/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSnapshot(t *testing.T) {
	polls := []client.Poll{
		{"id": float64(1), "question": "Tabs or spaces?"},
		{"id": float64(2), "question": "Vim or Emacs?"},
	}

	snapshot := NewSnapshot("http://localhost:8000", 5, polls)

	assert.Equal(t, "http://localhost:8000", snapshot.BaseURL)
	assert.Equal(t, 5, snapshot.BatchSize)
	assert.Equal(t, 2, snapshot.Count)
	assert.Equal(t, polls, snapshot.Polls)
	assert.WithinDuration(t, time.Now(), snapshot.TakenAt, time.Second)
	assert.Less(t, snapshot.Age(), time.Second)
}

func TestNewSnapshot_NilPolls(t *testing.T) {
	snapshot := NewSnapshot("http://localhost:8000", 10, nil)

	assert.NotNil(t, snapshot.Polls)
	assert.Equal(t, 0, snapshot.Count)

	data, err := json.Marshal(snapshot)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"polls":[]`)
}

func TestSnapshot_Age(t *testing.T) {
	snapshot := &Snapshot{TakenAt: time.Now().Add(-time.Hour)}

	assert.InDelta(t, time.Hour.Seconds(), snapshot.Age().Seconds(), 1)
}
