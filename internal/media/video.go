package media

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/bcx/internal/connection"
	"github.com/desertthunder/bcx/internal/models"
	"github.com/desertthunder/bcx/internal/shared"
)

// Video is a read-only view of a remote video.
type Video struct {
	ID                int64
	ReferenceID       string
	Name              string
	ShortDescription  string
	LongDescription   string
	LinkURL           string
	LinkText          string
	Tags              []string
	ThumbnailURL      string
	VideoStillURL     string
	Length            int64 // milliseconds
	PlaysTotal        int64
	PlaysTrailingWeek int64
	ItemState         models.ItemState
	CreationDate      time.Time
	PublishedDate     time.Time
	LastModifiedDate  time.Time
}

// Duration returns Length as a [time.Duration].
func (v *Video) Duration() time.Duration {
	return time.Duration(v.Length) * time.Millisecond
}

func (v *Video) String() string {
	return fmt.Sprintf("<Video %d %q>", v.ID, v.Name)
}

type videoRecord struct {
	ID                apiInt      `json:"id"`
	ReferenceID       *string     `json:"referenceId"`
	Name              string      `json:"name"`
	ShortDescription  string      `json:"shortDescription"`
	LongDescription   *string     `json:"longDescription"`
	LinkURL           *string     `json:"linkURL"`
	LinkText          *string     `json:"linkText"`
	Tags              []string    `json:"tags"`
	ThumbnailURL      *string     `json:"thumbnailURL"`
	VideoStillURL     *string     `json:"videoStillURL"`
	Length            apiInt      `json:"length"`
	PlaysTotal        apiInt      `json:"playsTotal"`
	PlaysTrailingWeek apiInt      `json:"playsTrailingWeek"`
	ItemState         string      `json:"itemState"`
	CreationDate      epochMillis `json:"creationDate"`
	PublishedDate     epochMillis `json:"publishedDate"`
	LastModifiedDate  epochMillis `json:"lastModifiedDate"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r *videoRecord) video() *Video {
	return &Video{
		ID:                int64(r.ID),
		ReferenceID:       deref(r.ReferenceID),
		Name:              r.Name,
		ShortDescription:  r.ShortDescription,
		LongDescription:   deref(r.LongDescription),
		LinkURL:           deref(r.LinkURL),
		LinkText:          deref(r.LinkText),
		Tags:              r.Tags,
		ThumbnailURL:      deref(r.ThumbnailURL),
		VideoStillURL:     deref(r.VideoStillURL),
		Length:            int64(r.Length),
		PlaysTotal:        int64(r.PlaysTotal),
		PlaysTrailingWeek: int64(r.PlaysTrailingWeek),
		ItemState:         models.ItemState(r.ItemState),
		CreationDate:      r.CreationDate.Time(),
		PublishedDate:     r.PublishedDate.Time(),
		LastModifiedDate:  r.LastModifiedDate.Time(),
	}
}

func decodeVideo(raw json.RawMessage) (*Video, error) {
	var rec videoRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode video: %w", err)
	}
	return rec.video(), nil
}

func getVideo(ctx context.Context, conn connection.Connection, command string, params connection.Params, fields []string) (*Video, error) {
	if len(fields) > 0 {
		params[videoFieldsKey] = fields
	}
	raw, err := conn.GetItem(ctx, command, EnsureEssentialVideoFields(params))
	if err != nil {
		return nil, err
	}
	return decodeVideo(raw)
}

// FindVideoByID looks up one video.
func FindVideoByID(ctx context.Context, conn connection.Connection, id int64, fields ...string) (*Video, error) {
	return getVideo(ctx, conn, connection.FindVideoByID, connection.Params{"video_id": id}, fields)
}

// FindVideoByReferenceID looks up one video by its caller-assigned id.
func FindVideoByReferenceID(ctx context.Context, conn connection.Connection, refID string, fields ...string) (*Video, error) {
	return getVideo(ctx, conn, connection.FindVideoByReferenceID, connection.Params{"reference_id": refID}, fields)
}

func listVideos(ctx context.Context, conn connection.Connection, command string, params connection.Params) (*ResultSet[*Video], error) {
	page, err := conn.GetList(ctx, command, EnsureEssentialVideoFields(params))
	if err != nil {
		return nil, err
	}
	return newResultSet(page, decodeVideo), nil
}

// FindVideosByIDs returns the videos with the given ids.
func FindVideosByIDs(ctx context.Context, conn connection.Connection, ids []int64, opts *ListOpts) (*ResultSet[*Video], error) {
	params := opts.params(videoFieldsKey)
	params["video_ids"] = shared.JoinInts(ids)
	return listVideos(ctx, conn, connection.FindVideosByIDs, params)
}

// FindVideosByTags returns videos carrying all andTags and at least one of orTags.
// At least one of the two lists must be non-empty.
func FindVideosByTags(ctx context.Context, conn connection.Connection, andTags, orTags []string, opts *ListOpts) (*ResultSet[*Video], error) {
	if len(andTags) == 0 && len(orTags) == 0 {
		return nil, shared.NewInvalidParametersError("Video")
	}

	params := opts.params(videoFieldsKey)
	if len(andTags) > 0 {
		params["and_tags"] = strings.Join(andTags, ",")
	}
	if len(orTags) > 0 {
		params["or_tags"] = strings.Join(orTags, ",")
	}
	return listVideos(ctx, conn, connection.FindVideosByTags, params)
}

// FindAllVideos returns one page of every video in the account.
func FindAllVideos(ctx context.Context, conn connection.Connection, opts *ListOpts) (*ResultSet[*Video], error) {
	return listVideos(ctx, conn, connection.FindAllVideos, opts.params(videoFieldsKey))
}
