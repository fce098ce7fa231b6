package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Sternrassler/polls-client/pkg/client"
	"github.com/Sternrassler/polls-client/pkg/store"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

func newPollsCmd(a *app) *cobra.Command {
	pollsCmd := &cobra.Command{
		Use:   "polls",
		Short: "Read polls from the API",
	}

	pollsCmd.AddCommand(newPollsListCmd(a), newPollsAllCmd(a), newPollsSnapshotCmd(a))
	return pollsCmd
}

func newPollsListCmd(a *app) *cobra.Command {
	var (
		skip   int
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Fetch one page of polls",
		Long: `Fetch a single page of polls with GET /polls?skip=N&limit=M.

Exits non-zero if the endpoint does not exist or the request fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			defer a.client.Close()

			polls, err := a.client.FetchPolls(cmd.Context(), skip, limit)
			if err != nil {
				return describe(err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, polls)
			}

			fmt.Fprintf(out, "Fetched %d polls:\n", len(polls))
			printPolls(out, polls)
			return nil
		},
	}

	cmd.Flags().IntVar(&skip, "skip", 0, "number of polls to skip")
	cmd.Flags().IntVar(&limit, "limit", client.DefaultPageLimit, "maximum number of polls to return")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the page as JSON")

	return cmd
}

func newPollsAllCmd(a *app) *cobra.Command {
	var (
		batchSize   int
		exportRedis string
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "all",
		Short: "Fetch every poll page by page",
		Long: `Drain the whole polls collection by requesting pages of --batch-size
until a short or empty page comes back.

With --export-redis (or redis.addr in the config) the drained collection is
stored as a snapshot in Redis.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			defer a.client.Close()

			if batchSize == 0 {
				batchSize = a.cfg.BatchSize
			}

			start := time.Now()
			polls, err := a.client.FetchAllPolls(cmd.Context(), batchSize)
			if err != nil {
				return describe(err)
			}

			a.logger.Debug().
				Int("polls", len(polls)).
				Int("batch_size", batchSize).
				Dur("duration", time.Since(start)).
				Msg("Collection drained")

			out := cmd.OutOrStdout()
			if asJSON {
				if err := writeJSON(out, polls); err != nil {
					return err
				}
			} else {
				fmt.Fprintf(out, "Total polls: %d\n", len(polls))
			}

			addr := exportRedis
			if addr == "" {
				addr = a.cfg.Redis.Addr
			}
			if addr == "" {
				return nil
			}

			key, err := a.exportSnapshot(cmd, addr, batchSize, polls)
			if err != nil {
				return err
			}
			if !asJSON {
				fmt.Fprintf(out, "Snapshot stored under %s\n", key)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "page size used while draining (default from config)")
	cmd.Flags().StringVar(&exportRedis, "export-redis", "", "Redis address (host:port) to store a snapshot in")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the collection as JSON")

	return cmd
}

func newPollsSnapshotCmd(a *app) *cobra.Command {
	var redisAddr string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Show the snapshot stored for the configured API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			defer a.client.Close()

			if redisAddr == "" {
				redisAddr = a.cfg.Redis.Addr
			}
			if redisAddr == "" {
				return errors.New("no Redis address: set --redis or redis.addr")
			}

			rdb := a.redisClient(redisAddr)
			defer rdb.Close()

			key := store.SnapshotKey{BaseURL: a.client.BaseURL()}
			snapshot, err := store.NewManager(rdb, 0).Load(cmd.Context(), key)
			if err != nil {
				if errors.Is(err, store.ErrSnapshotNotFound) {
					return fmt.Errorf("no snapshot stored under %s", key)
				}
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Snapshot %s\n", key)
			fmt.Fprintf(out, "  taken:      %s (%s ago)\n", snapshot.TakenAt.Format(time.RFC3339), snapshot.Age().Round(time.Second))
			fmt.Fprintf(out, "  batch size: %d\n", snapshot.BatchSize)
			fmt.Fprintf(out, "  polls:      %d\n", snapshot.Count)
			printPolls(out, snapshot.Polls)
			return nil
		},
	}

	cmd.Flags().StringVar(&redisAddr, "redis", "", "Redis address (host:port), default from config")
	return cmd
}

func (a *app) redisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
}

// exportSnapshot stores polls in Redis and returns the key used.
func (a *app) exportSnapshot(cmd *cobra.Command, addr string, batchSize int, polls []client.Poll) (store.SnapshotKey, error) {
	key := store.SnapshotKey{BaseURL: a.client.BaseURL()}

	rdb := a.redisClient(addr)
	defer rdb.Close()

	if err := rdb.Ping(cmd.Context()).Err(); err != nil {
		return key, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}

	manager := store.NewManager(rdb, a.cfg.Redis.SnapshotTTL.Duration())
	if err := manager.Save(cmd.Context(), key, store.NewSnapshot(a.client.BaseURL(), batchSize, polls)); err != nil {
		return key, fmt.Errorf("export snapshot: %w", err)
	}
	return key, nil
}

func printPolls(w io.Writer, polls []client.Poll) {
	for _, poll := range polls {
		fmt.Fprintf(w, "- ID: %v, Question: %v\n", poll["id"], poll["question"])
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
