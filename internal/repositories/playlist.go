package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/bcx/internal/models"
	"github.com/desertthunder/bcx/internal/shared"
)

var _ models.Repository[*models.CachedPlaylist] = (*PlaylistRepository)(nil)

const playlistColumns = `id, sequence, remote_id, reference_id, name, short_description, thumbnail_url,
	playlist_type, video_ids, synced_at, created_at, updated_at, deleted_at`

// PlaylistRepository implements models.Repository[*models.CachedPlaylist] for the playlist cache.
type PlaylistRepository struct {
	db *sql.DB
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

// Create inserts a new playlist with a generated ID and sequence
func (r *PlaylistRepository) Create(playlist *models.CachedPlaylist) (err error) {
	defer observe("create", time.Now(), &err)

	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "playlists")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	query := `
		INSERT INTO playlists (id, sequence, remote_id, reference_id, name, short_description, thumbnail_url,
			playlist_type, video_ids, synced_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		playlist.RemoteID(),
		playlist.ReferenceID(),
		playlist.Name(),
		playlist.ShortDescription(),
		playlist.ThumbnailURL(),
		string(playlist.Type()),
		shared.JoinInts(playlist.VideoIDs()),
		playlist.SyncedAt(),
		playlist.CreatedAt(),
		playlist.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert playlist: %w", err)
	}

	playlist.SetID(id)
	playlist.SetSequence(sequence)
	return nil
}

// Get retrieves a playlist by local ID, excluding soft-deleted playlists
func (r *PlaylistRepository) Get(id string) (p *models.CachedPlaylist, err error) {
	defer observe("get", time.Now(), &err)

	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE id = ? AND deleted_at IS NULL`
	return scanPlaylist(r.db.QueryRow(query, id))
}

// GetByRemoteID retrieves a playlist by its Brightcove id
func (r *PlaylistRepository) GetByRemoteID(remoteID int64) (p *models.CachedPlaylist, err error) {
	defer observe("get", time.Now(), &err)

	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE remote_id = ? AND deleted_at IS NULL`
	return scanPlaylist(r.db.QueryRow(query, remoteID))
}

// Update writes the remote fields of an existing playlist
func (r *PlaylistRepository) Update(playlist *models.CachedPlaylist) (err error) {
	defer observe("update", time.Now(), &err)

	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()

	query := `
		UPDATE playlists
		SET reference_id = ?, name = ?, short_description = ?, thumbnail_url = ?, playlist_type = ?,
			video_ids = ?, synced_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		playlist.ReferenceID(),
		playlist.Name(),
		playlist.ShortDescription(),
		playlist.ThumbnailURL(),
		string(playlist.Type()),
		shared.JoinInts(playlist.VideoIDs()),
		playlist.SyncedAt(),
		now,
		playlist.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update playlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlist.ID())
	}

	playlist.SetUpdatedAt(now)
	return nil
}

// Upsert stores data under its remote id, creating the row when none exists.
// It reports whether a row was created.
func (r *PlaylistRepository) Upsert(data models.CachedPlaylistData) (*models.CachedPlaylist, bool, error) {
	existing, err := r.GetByRemoteID(data.RemoteID)
	switch {
	case err == nil:
		existing.Refresh(data)
		if err := r.Update(existing); err != nil {
			return nil, false, err
		}
		return existing, false, nil
	case errors.Is(err, shared.ErrPlaylistNotFound):
		p := models.NewCachedPlaylist(0, data)
		if err := r.Create(p); err != nil {
			return nil, false, err
		}
		return p, true, nil
	default:
		return nil, false, err
	}
}

// Delete soft-deletes a playlist by local ID
func (r *PlaylistRepository) Delete(id string) (err error) {
	defer observe("delete", time.Now(), &err)

	query := `UPDATE playlists SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}

	return nil
}

// List retrieves cached playlists in sequence order.
//
// Supported criteria: "reference_id" (string), "playlist_type" (string or
// [models.PlaylistType]), "limit" (int).
func (r *PlaylistRepository) List(criteria map[string]any) (out []*models.CachedPlaylist, err error) {
	defer observe("list", time.Now(), &err)

	query := `SELECT ` + playlistColumns + ` FROM playlists WHERE deleted_at IS NULL`
	args := []any{}

	if refID, ok := criteria["reference_id"].(string); ok && refID != "" {
		query += " AND reference_id = ?"
		args = append(args, refID)
	}

	switch t := criteria["playlist_type"].(type) {
	case string:
		if t != "" {
			query += " AND playlist_type = ?"
			args = append(args, t)
		}
	case models.PlaylistType:
		if t != "" {
			query += " AND playlist_type = ?"
			args = append(args, string(t))
		}
	}

	query += " ORDER BY sequence ASC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []*models.CachedPlaylist
	for rows.Next() {
		playlist, err := scanPlaylist(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, playlist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return playlists, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlaylist(row scanner) (*models.CachedPlaylist, error) {
	var (
		id               string
		sequence         int
		remoteID         int64
		referenceID      string
		name             string
		shortDescription string
		thumbnailURL     string
		playlistType     string
		videoIDs         string
		syncedAt         time.Time
		createdAt        time.Time
		updatedAt        time.Time
		deletedAt        sql.NullTime
	)

	err := row.Scan(&id, &sequence, &remoteID, &referenceID, &name, &shortDescription, &thumbnailURL,
		&playlistType, &videoIDs, &syncedAt, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrPlaylistNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist: %w", err)
	}

	ids, err := shared.ParseInts(videoIDs)
	if err != nil {
		return nil, fmt.Errorf("corrupt video_ids for playlist %s: %w", id, err)
	}

	playlist := models.NewCachedPlaylist(sequence, models.CachedPlaylistData{
		RemoteID:         remoteID,
		ReferenceID:      referenceID,
		Name:             name,
		ShortDescription: shortDescription,
		ThumbnailURL:     thumbnailURL,
		Type:             models.PlaylistType(playlistType),
		VideoIDs:         ids,
	})
	playlist.SetID(id)
	playlist.SetSyncedAt(syncedAt)
	playlist.SetCreatedAt(createdAt)
	playlist.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		playlist.SetDeletedAt(&deletedAt.Time)
	}

	return playlist, nil
}
