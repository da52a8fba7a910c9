package connection

import (
	"context"
	"encoding/json"
)

// Read commands
const (
	FindPlaylistByID            = "find_playlist_by_id"
	FindPlaylistByReferenceID   = "find_playlist_by_reference_id"
	FindPlaylistsByIDs          = "find_playlists_by_ids"
	FindPlaylistsByReferenceIDs = "find_playlists_by_reference_ids"
	FindPlaylistsForPlayerID    = "find_playlists_for_player_id"
	FindAllPlaylists            = "find_all_playlists"

	FindVideoByID          = "find_video_by_id"
	FindVideoByReferenceID = "find_video_by_reference_id"
	FindVideosByIDs        = "find_videos_by_ids"
	FindVideosByTags       = "find_videos_by_tags"
	FindAllVideos          = "find_all_videos"
)

// Write methods
const (
	CreatePlaylist = "create_playlist"
	UpdatePlaylist = "update_playlist"
	DeletePlaylist = "delete_playlist"
)

// Params are the arguments of a command. Values may be strings, integers, bools
// or slices of those; slices are sent comma-joined on reads.
type Params map[string]any

// Clone returns a shallow copy of p. A nil p yields an empty map.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// ItemCollection is one page of a list command.
type ItemCollection struct {
	Items      []json.RawMessage `json:"items"`
	TotalCount int               `json:"total_count"`
	PageSize   int               `json:"page_size"`
	PageNumber int               `json:"page_number"`
}

// Connection issues Media API calls.
//
// GetItem returns [shared.ErrNoDataFound] when the command matched nothing.
// Post returns the result member of the write envelope, which is a record for
// create and update or a bare id, depending on the method.
type Connection interface {
	GetItem(ctx context.Context, command string, params Params) (json.RawMessage, error)
	GetList(ctx context.Context, command string, params Params) (*ItemCollection, error)
	Post(ctx context.Context, method string, params Params) (json.RawMessage, error)
}
