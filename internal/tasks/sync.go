package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/bcx/internal/media"
	"github.com/desertthunder/bcx/internal/metrics"
	"github.com/desertthunder/bcx/internal/models"
	"github.com/desertthunder/bcx/internal/shared"
)

const defaultSyncPageSize = 100

// SyncResult summarizes a sync.
type SyncResult struct {
	Pages   int
	Created int
	Updated int
	Failed  int
}

// Sync pages through every remote playlist and upserts each into the store.
//
// Paging stops at the first empty page or once total_count playlists have
// been seen. A short page only ends the sync when the server omits
// total_count, since the server may cap page_size below the request. A playlist the store rejects is counted as failed
// and skipped; a page that cannot be fetched aborts the sync.
func (s *Syncer) Sync(ctx context.Context, prog chan<- ProgressUpdate, pageSize int) (*SyncResult, error) {
	if s.conn == nil || s.store == nil {
		return nil, fmt.Errorf("%w: sync requires a connection and a store", shared.ErrServiceUnavailable)
	}
	if pageSize <= 0 {
		pageSize = defaultSyncPageSize
	}

	result := &SyncResult{}
	seen, totalPages := 0, 0

	for page := 0; ; page++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		sendProgress(prog, fetchPageUpdate(page, totalPages))
		rs, err := media.FindAllPlaylists(ctx, s.conn, &media.ListOpts{
			PageSize:     pageSize,
			PageNumber:   page,
			GetItemCount: true,
		})
		if err != nil {
			return result, fmt.Errorf("failed to fetch page %d: %w", page, err)
		}
		result.Pages++
		if rs.TotalCount > 0 {
			totalPages = (rs.TotalCount + pageSize - 1) / pageSize
		}

		count := rs.Len()
		for rs.Next() {
			seen++
			p := rs.Item()
			_, created, err := s.store.Upsert(cachedData(p))
			if err != nil {
				result.Failed++
				s.logger.Warn("failed to cache playlist", "id", p.ID, "error", err)
				continue
			}
			if created {
				result.Created++
			} else {
				result.Updated++
			}
			metrics.SyncedPlaylistsTotal.Inc()
			sendProgress(prog, storePlaylistUpdate(seen, rs.TotalCount, p.Name, created))
		}
		if err := rs.Err(); err != nil {
			return result, fmt.Errorf("failed to decode page %d: %w", page, err)
		}

		if count == 0 {
			break
		}
		if rs.TotalCount > 0 {
			if seen >= rs.TotalCount {
				break
			}
		} else if count < pageSize {
			break
		}
	}

	s.logger.Info("sync complete", "pages", result.Pages, "created", result.Created, "updated", result.Updated, "failed", result.Failed)
	return result, nil
}

func cachedData(p *media.Playlist) models.CachedPlaylistData {
	return models.CachedPlaylistData{
		RemoteID:         p.ID,
		ReferenceID:      p.ReferenceID,
		Name:             p.Name,
		ShortDescription: p.ShortDescription,
		ThumbnailURL:     p.ThumbnailURL,
		Type:             p.Type,
		VideoIDs:         p.VideoIDs,
	}
}
