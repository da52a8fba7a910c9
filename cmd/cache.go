package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/bcx/internal/httpcache"
	"github.com/desertthunder/bcx/internal/shared"
	"github.com/desertthunder/bcx/internal/tasks"
)

// CacheSync mirrors every account playlist into the cache database.
func (r *Runner) CacheSync(ctx context.Context, cmd *cli.Command) error {
	conn, err := r.connection()
	if err != nil {
		return err
	}
	repo, err := r.repository()
	if err != nil {
		return err
	}

	prog := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range prog {
			r.logger.Debug(update.Message, "phase", update.Phase)
		}
	}()

	syncer := tasks.NewSyncer(conn, repo, shared.WithLogger(r.logger, "component", "sync"))
	result, err := syncer.Sync(ctx, prog, cmd.Int("page-size"))
	close(prog)
	<-done
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	r.writePlain("✓ Synced %d pages: %d created, %d updated, %d failed\n",
		result.Pages, result.Created, result.Updated, result.Failed)
	return nil
}

// CacheList prints playlists from the cache database.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.repository()
	if err != nil {
		return err
	}

	criteria := map[string]any{}
	if ref := cmd.String("ref"); ref != "" {
		criteria["reference_id"] = ref
	}
	if t := cmd.String("type"); t != "" {
		criteria["playlist_type"] = strings.ToUpper(t)
	}
	if limit := cmd.Int("limit"); limit > 0 {
		criteria["limit"] = limit
	}

	playlists, err := repo.List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list cached playlists: %w", err)
	}

	if cmd.Bool("json") {
		type row struct {
			ID          string  `json:"id"`
			RemoteID    int64   `json:"remote_id"`
			ReferenceID string  `json:"reference_id,omitempty"`
			Name        string  `json:"name"`
			Type        string  `json:"playlist_type"`
			VideoIDs    []int64 `json:"video_ids"`
			SyncedAt    string  `json:"synced_at"`
		}
		rows := make([]row, len(playlists))
		for i, p := range playlists {
			rows[i] = row{
				ID:          p.ID(),
				RemoteID:    p.RemoteID(),
				ReferenceID: p.ReferenceID(),
				Name:        p.Name(),
				Type:        string(p.Type()),
				VideoIDs:    p.VideoIDs(),
				SyncedAt:    p.SyncedAt().Format(time.RFC3339),
			}
		}
		return r.writeJSON(rows, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Cached Playlists (%d)", len(playlists)))
	for _, p := range playlists {
		r.writePlain("%4d  %-14d %-20s %4d videos  %s\n",
			p.Sequence(), p.RemoteID(), p.Type(), len(p.VideoIDs()), p.Name())
	}
	return nil
}

// CachePurge drops every stored API response from the response cache.
func (r *Runner) CachePurge(ctx context.Context, cmd *cli.Command) error {
	path := r.config.Cache.Path
	if path == "" {
		return fmt.Errorf("%w: cache.path is not set", shared.ErrMissingConfig)
	}

	storage := r.cache
	if storage == nil {
		var err error
		if storage, err = httpcache.Open(path); err != nil {
			return fmt.Errorf("failed to open response cache: %w", err)
		}
		r.cache = storage
	}

	if err := storage.Purge(); err != nil {
		return fmt.Errorf("failed to purge response cache: %w", err)
	}
	r.writePlain("✓ Purged response cache at %s\n", path)
	return nil
}
