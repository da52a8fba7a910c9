package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/bcx/internal/connection"
	"github.com/desertthunder/bcx/internal/models"
	"github.com/desertthunder/bcx/internal/shared"
)

// Playlist is an ordered collection of videos.
//
// ID is zero until the playlist has been saved. VideoIDs is the order sent
// to the server; Videos holds entities the caller has attached, and their ids
// are appended to VideoIDs on the next Save.
type Playlist struct {
	ID               int64
	ReferenceID      string
	Name             string
	ShortDescription string
	ThumbnailURL     string
	VideoIDs         []int64
	Videos           []*Video
	Type             models.PlaylistType
	FilterTags       []string

	conn connection.Connection
}

// PlaylistOpts select how [NewPlaylist] builds a playlist.
//
// ID wins over ReferenceID, which wins over Type. Only a Type-based playlist
// uses the remaining descriptive fields; lookups take everything from the server.
type PlaylistOpts struct {
	ID          int64
	ReferenceID string
	Type        models.PlaylistType

	Name             string
	ShortDescription string
	ThumbnailURL     string
	VideoIDs         []int64
	FilterTags       []string

	// Fields narrows the lookup; the essential set is always added.
	Fields []string
}

// NewPlaylist looks up an existing playlist or starts a new one.
func NewPlaylist(ctx context.Context, conn connection.Connection, opts PlaylistOpts) (*Playlist, error) {
	switch {
	case opts.ID != 0:
		return lookupPlaylist(ctx, conn, connection.FindPlaylistByID,
			connection.Params{"playlist_id": opts.ID}, opts.Fields)
	case opts.ReferenceID != "":
		return lookupPlaylist(ctx, conn, connection.FindPlaylistByReferenceID,
			connection.Params{"reference_id": opts.ReferenceID}, opts.Fields)
	case opts.Type != "":
		return &Playlist{
			Name:             opts.Name,
			ShortDescription: opts.ShortDescription,
			ThumbnailURL:     opts.ThumbnailURL,
			VideoIDs:         slices.Clone(opts.VideoIDs),
			Type:             opts.Type,
			FilterTags:       slices.Clone(opts.FilterTags),
			conn:             conn,
		}, nil
	default:
		return nil, shared.NewInvalidParametersError("Playlist")
	}
}

// FindPlaylistByID looks up one playlist.
func FindPlaylistByID(ctx context.Context, conn connection.Connection, id int64, fields ...string) (*Playlist, error) {
	return NewPlaylist(ctx, conn, PlaylistOpts{ID: id, Fields: fields})
}

// FindPlaylistByReferenceID looks up one playlist by its caller-assigned id.
func FindPlaylistByReferenceID(ctx context.Context, conn connection.Connection, refID string, fields ...string) (*Playlist, error) {
	return NewPlaylist(ctx, conn, PlaylistOpts{ReferenceID: refID, Fields: fields})
}

func lookupPlaylist(ctx context.Context, conn connection.Connection, command string, params connection.Params, fields []string) (*Playlist, error) {
	if len(fields) > 0 {
		params[playlistFieldsKey] = fields
	}
	raw, err := conn.GetItem(ctx, command, EnsureEssentialPlaylistFields(params))
	if err != nil {
		return nil, err
	}

	p := &Playlist{conn: conn}
	if err := p.hydrate(raw); err != nil {
		return nil, err
	}
	return p, nil
}

type playlistRecord struct {
	ID               apiInt        `json:"id"`
	ReferenceID      *string       `json:"referenceId"`
	Name             string        `json:"name"`
	ShortDescription *string       `json:"shortDescription"`
	ThumbnailURL     *string       `json:"thumbnailURL"`
	VideoIDs         []apiInt      `json:"videoIds"`
	Videos           []videoRecord `json:"videos"`
	PlaylistType     string        `json:"playlistType"`
	FilterTags       []string      `json:"filterTags"`
}

// hydrate replaces every field of p with the record in raw.
func (p *Playlist) hydrate(raw json.RawMessage) error {
	var rec playlistRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return fmt.Errorf("failed to decode playlist: %w", err)
	}

	p.ID = int64(rec.ID)
	p.ReferenceID = deref(rec.ReferenceID)
	p.Name = rec.Name
	p.ShortDescription = deref(rec.ShortDescription)
	p.ThumbnailURL = deref(rec.ThumbnailURL)
	p.VideoIDs = toInt64s(rec.VideoIDs)
	p.Type = models.PlaylistType(rec.PlaylistType)
	p.FilterTags = rec.FilterTags
	p.Videos = nil
	for i := range rec.Videos {
		p.Videos = append(p.Videos, rec.Videos[i].video())
	}
	return nil
}

// reconciledVideoIDs is VideoIDs followed by the ids of attached Videos it lacks.
func (p *Playlist) reconciledVideoIDs() []int64 {
	ids := slices.Clone(p.VideoIDs)
	if ids == nil {
		ids = []int64{}
	}
	for _, v := range p.Videos {
		if v != nil && v.ID != 0 && !slices.Contains(ids, v.ID) {
			ids = append(ids, v.ID)
		}
	}
	return ids
}

// payload is the record sent by create and update.
func (p *Playlist) payload(videoIDs []int64) map[string]any {
	out := map[string]any{
		"name":             p.Name,
		"shortDescription": p.ShortDescription,
		"videoIds":         videoIDs,
		"playlistType":     string(p.Type),
	}
	if p.ID != 0 {
		out["id"] = p.ID
	}
	if p.ReferenceID != "" {
		out["referenceId"] = p.ReferenceID
	}
	if p.ThumbnailURL != "" {
		out["thumbnailURL"] = p.ThumbnailURL
	}
	if len(p.FilterTags) > 0 {
		out["filterTags"] = p.FilterTags
	}
	return out
}

// Save creates the playlist when it has no ID and updates it otherwise. On
// failure the playlist is left as it was.
func (p *Playlist) Save(ctx context.Context) error {
	if p.conn == nil {
		return fmt.Errorf("%w: playlist has no connection", shared.ErrInvalidParameters)
	}

	ids := p.reconciledVideoIDs()
	params := connection.Params{"playlist": p.payload(ids)}

	if p.ID == 0 {
		raw, err := p.conn.Post(ctx, connection.CreatePlaylist, params)
		if err != nil {
			return err
		}
		id, err := createdID(raw)
		if err != nil {
			return err
		}
		p.ID = id
		p.VideoIDs = ids
		return nil
	}

	raw, err := p.conn.Post(ctx, connection.UpdatePlaylist, params)
	if err != nil {
		return err
	}
	if isRecord(raw) {
		next := *p
		if err := next.hydrate(raw); err != nil {
			return err
		}
		*p = next
		return nil
	}
	p.VideoIDs = ids
	return nil
}

// createdID reads the id from a create response, which is either the bare id
// or the stored record.
func createdID(raw json.RawMessage) (int64, error) {
	if isRecord(raw) {
		var rec struct {
			ID apiInt `json:"id"`
		}
		if err := json.Unmarshal(raw, &rec); err != nil {
			return 0, fmt.Errorf("failed to decode created playlist: %w", err)
		}
		if rec.ID == 0 {
			return 0, fmt.Errorf("%w: create_playlist returned a record without id", shared.ErrAPIRequest)
		}
		return int64(rec.ID), nil
	}

	var id apiInt
	if err := json.Unmarshal(raw, &id); err != nil {
		return 0, fmt.Errorf("failed to decode created playlist id: %w", err)
	}
	if id == 0 {
		return 0, fmt.Errorf("%w: create_playlist returned no id", shared.ErrAPIRequest)
	}
	return int64(id), nil
}

func isRecord(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 2 && trimmed[0] == '{'
}

// Delete removes the playlist. The ID is cleared; other fields are kept so the
// playlist can be saved again as a new one.
func (p *Playlist) Delete(ctx context.Context) error {
	return p.delete(ctx, false)
}

// DeleteCascade removes the playlist and detaches it from every player using it.
func (p *Playlist) DeleteCascade(ctx context.Context) error {
	return p.delete(ctx, true)
}

func (p *Playlist) delete(ctx context.Context, cascade bool) error {
	if p.ID == 0 {
		return shared.ErrNotPersisted
	}
	if p.conn == nil {
		return fmt.Errorf("%w: playlist has no connection", shared.ErrInvalidParameters)
	}

	params := connection.Params{"playlist_id": p.ID}
	if cascade {
		params["cascade"] = true
	}
	if _, err := p.conn.Post(ctx, connection.DeletePlaylist, params); err != nil {
		return err
	}
	p.ID = 0
	return nil
}

// AddVideos attaches videos; their ids join VideoIDs on the next Save.
func (p *Playlist) AddVideos(videos ...*Video) {
	p.Videos = append(p.Videos, videos...)
}

func (p *Playlist) String() string {
	return fmt.Sprintf("<Playlist %d %q>", p.ID, p.Name)
}

func decodePlaylist(conn connection.Connection) func(json.RawMessage) (*Playlist, error) {
	return func(raw json.RawMessage) (*Playlist, error) {
		p := &Playlist{conn: conn}
		if err := p.hydrate(raw); err != nil {
			return nil, err
		}
		return p, nil
	}
}

func listPlaylists(ctx context.Context, conn connection.Connection, command string, params connection.Params) (*ResultSet[*Playlist], error) {
	params = EnsureEssentialVideoFields(EnsureEssentialPlaylistFields(params))
	page, err := conn.GetList(ctx, command, params)
	if err != nil {
		return nil, err
	}
	return newResultSet(page, decodePlaylist(conn)), nil
}

// FindPlaylistsByIDs returns the playlists with the given ids in server order.
func FindPlaylistsByIDs(ctx context.Context, conn connection.Connection, ids []int64, opts *ListOpts) (*ResultSet[*Playlist], error) {
	params := opts.params(playlistFieldsKey)
	params["playlist_ids"] = shared.JoinInts(ids)
	return listPlaylists(ctx, conn, connection.FindPlaylistsByIDs, params)
}

// FindPlaylistsByReferenceIDs returns the playlists with the given reference ids.
func FindPlaylistsByReferenceIDs(ctx context.Context, conn connection.Connection, refIDs []string, opts *ListOpts) (*ResultSet[*Playlist], error) {
	params := opts.params(playlistFieldsKey)
	params["reference_ids"] = strings.Join(refIDs, ",")
	return listPlaylists(ctx, conn, connection.FindPlaylistsByReferenceIDs, params)
}

// FindPlaylistsForPlayerID returns the playlists assigned to a player.
func FindPlaylistsForPlayerID(ctx context.Context, conn connection.Connection, playerID int64, opts *ListOpts) (*ResultSet[*Playlist], error) {
	params := opts.params(playlistFieldsKey)
	params["player_id"] = playerID
	return listPlaylists(ctx, conn, connection.FindPlaylistsForPlayerID, params)
}

// FindAllPlaylists returns one page of every playlist in the account.
func FindAllPlaylists(ctx context.Context, conn connection.Connection, opts *ListOpts) (*ResultSet[*Playlist], error) {
	return listPlaylists(ctx, conn, connection.FindAllPlaylists, opts.params(playlistFieldsKey))
}
