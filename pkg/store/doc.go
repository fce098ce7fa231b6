// Package store persists drained poll collections as snapshots in Redis.
//
// A snapshot is written after a successful drain so other tools can read the
// last known collection without talking to the API. The client itself never
// reads snapshots back; every FetchPolls call goes to the server.
//
// # Basic Usage
//
//	redisClient := redis.NewClient(&redis.Options{
//		Addr: "localhost:6379",
//	})
//
//	manager := store.NewManager(redisClient, 24*time.Hour)
//
//	polls, err := apiClient.FetchAllPolls(ctx, 10)
//	if err != nil {
//		return err
//	}
//
//	key := store.SnapshotKey{BaseURL: apiClient.BaseURL()}
//	if err := manager.Save(ctx, key, store.NewSnapshot(apiClient.BaseURL(), 10, polls)); err != nil {
//		return err
//	}
//
//	snapshot, err := manager.Load(ctx, key)
//	if errors.Is(err, store.ErrSnapshotNotFound) {
//		// nothing exported yet
//	}
//
// # Metrics
//
//   - polls_snapshot_writes_total{result} - Snapshot writes (ok, error)
package store
