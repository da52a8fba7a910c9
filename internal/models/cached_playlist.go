package models

import (
	"fmt"
	"time"
)

var _ Model = (*CachedPlaylist)(nil)

// CachedPlaylist is a local snapshot of a remote playlist.
//
// The local id is a uuid assigned on insert; the remote id is the Brightcove identity.
type CachedPlaylist struct {
	id               string
	sequence         int
	remoteID         int64
	referenceID      string
	name             string
	shortDescription string
	thumbnailURL     string
	playlistType     PlaylistType
	videoIDs         []int64
	syncedAt         time.Time
	createdAt        time.Time
	updatedAt        time.Time
	deletedAt        *time.Time
}

// CachedPlaylistData carries the remote fields of a [CachedPlaylist].
type CachedPlaylistData struct {
	RemoteID         int64
	ReferenceID      string
	Name             string
	ShortDescription string
	ThumbnailURL     string
	Type             PlaylistType
	VideoIDs         []int64
}

// NewCachedPlaylist creates an unsaved snapshot synced now.
func NewCachedPlaylist(sequence int, data CachedPlaylistData) *CachedPlaylist {
	now := time.Now()
	return &CachedPlaylist{
		sequence:         sequence,
		remoteID:         data.RemoteID,
		referenceID:      data.ReferenceID,
		name:             data.Name,
		shortDescription: data.ShortDescription,
		thumbnailURL:     data.ThumbnailURL,
		playlistType:     data.Type,
		videoIDs:         append([]int64(nil), data.VideoIDs...),
		syncedAt:         now,
		createdAt:        now,
		updatedAt:        now,
	}
}

func (p *CachedPlaylist) ID() string               { return p.id }
func (p *CachedPlaylist) Sequence() int            { return p.sequence }
func (p *CachedPlaylist) RemoteID() int64          { return p.remoteID }
func (p *CachedPlaylist) ReferenceID() string      { return p.referenceID }
func (p *CachedPlaylist) Name() string             { return p.name }
func (p *CachedPlaylist) ShortDescription() string { return p.shortDescription }
func (p *CachedPlaylist) ThumbnailURL() string     { return p.thumbnailURL }
func (p *CachedPlaylist) Type() PlaylistType       { return p.playlistType }
func (p *CachedPlaylist) VideoIDs() []int64        { return p.videoIDs }
func (p *CachedPlaylist) SyncedAt() time.Time      { return p.syncedAt }
func (p *CachedPlaylist) CreatedAt() time.Time     { return p.createdAt }
func (p *CachedPlaylist) UpdatedAt() time.Time     { return p.updatedAt }
func (p *CachedPlaylist) DeletedAt() *time.Time    { return p.deletedAt }

func (p *CachedPlaylist) SetID(id string)           { p.id = id }
func (p *CachedPlaylist) SetSequence(seq int)       { p.sequence = seq }
func (p *CachedPlaylist) SetSyncedAt(t time.Time)   { p.syncedAt = t }
func (p *CachedPlaylist) SetCreatedAt(t time.Time)  { p.createdAt = t }
func (p *CachedPlaylist) SetUpdatedAt(t time.Time)  { p.updatedAt = t }
func (p *CachedPlaylist) SetDeletedAt(t *time.Time) { p.deletedAt = t }

// Refresh replaces the remote fields with data and marks the snapshot as synced now.
// The remote id is kept.
func (p *CachedPlaylist) Refresh(data CachedPlaylistData) {
	p.referenceID = data.ReferenceID
	p.name = data.Name
	p.shortDescription = data.ShortDescription
	p.thumbnailURL = data.ThumbnailURL
	p.playlistType = data.Type
	p.videoIDs = append([]int64(nil), data.VideoIDs...)
	p.syncedAt = time.Now()
}

// Validate checks that the snapshot carries a remote identity and a name.
func (p *CachedPlaylist) Validate() error {
	if p.remoteID <= 0 {
		return fmt.Errorf("remote id must be positive, got %d", p.remoteID)
	}
	if p.name == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}
