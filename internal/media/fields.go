package media

import (
	"fmt"
	"slices"

	"github.com/desertthunder/bcx/internal/connection"
	"github.com/desertthunder/bcx/internal/shared"
)

const (
	playlistFieldsKey = "playlist_fields"
	videoFieldsKey    = "video_fields"
)

// EssentialPlaylistFields are always requested when a caller narrows playlist fields.
var EssentialPlaylistFields = []string{
	"id", "referenceId", "name", "shortDescription", "thumbnailURL", "videoIds", "playlistType",
}

// EssentialVideoFields are always requested when a caller narrows video fields.
var EssentialVideoFields = []string{
	"id", "referenceId", "name", "shortDescription", "longDescription",
	"linkURL", "linkText", "tags", "thumbnailURL", "videoStillURL", "length",
	"playsTotal", "playsTrailingWeek", "itemState",
	"creationDate", "publishedDate", "lastModifiedDate",
}

// EnsureEssentialPlaylistFields returns params with [EssentialPlaylistFields]
// merged into playlist_fields. Params without that key are returned unchanged;
// params itself is never modified.
func EnsureEssentialPlaylistFields(params connection.Params) connection.Params {
	return ensureFields(params, playlistFieldsKey, EssentialPlaylistFields)
}

// EnsureEssentialVideoFields is [EnsureEssentialPlaylistFields] for video_fields.
func EnsureEssentialVideoFields(params connection.Params) connection.Params {
	return ensureFields(params, videoFieldsKey, EssentialVideoFields)
}

func ensureFields(params connection.Params, key string, essentials []string) connection.Params {
	requested, ok := params[key]
	if !ok {
		return params
	}

	fields := slices.Clone(essentials)
	for _, f := range fieldList(requested) {
		if f != "" && !slices.Contains(fields, f) {
			fields = append(fields, f)
		}
	}

	out := params.Clone()
	out[key] = fields
	return out
}

// fieldList accepts the shapes callers use for a field selection.
func fieldList(v any) []string {
	switch x := v.(type) {
	case nil:
		return nil
	case []string:
		return x
	case string:
		return shared.SplitList(x)
	case []any:
		out := make([]string, 0, len(x))
		for _, f := range x {
			out = append(out, fmt.Sprint(f))
		}
		return out
	default:
		return []string{fmt.Sprint(x)}
	}
}
