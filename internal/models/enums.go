package models

import "fmt"

// PlaylistType is the ordering rule of a playlist.
type PlaylistType string

const (
	PlaylistExplicit          PlaylistType = "EXPLICIT"
	PlaylistOldestToNewest    PlaylistType = "OLDEST_TO_NEWEST"
	PlaylistNewestToOldest    PlaylistType = "NEWEST_TO_OLDEST"
	PlaylistAlphabetical      PlaylistType = "ALPHABETICAL"
	PlaylistPlaysTotal        PlaylistType = "PLAYS_TOTAL"
	PlaylistPlaysTrailingWeek PlaylistType = "PLAYS_TRAILING_WEEK"
)

// PlaylistTypes lists every known [PlaylistType].
var PlaylistTypes = []PlaylistType{
	PlaylistExplicit,
	PlaylistOldestToNewest,
	PlaylistNewestToOldest,
	PlaylistAlphabetical,
	PlaylistPlaysTotal,
	PlaylistPlaysTrailingWeek,
}

// ParsePlaylistType validates s against [PlaylistTypes].
func ParsePlaylistType(s string) (PlaylistType, error) {
	for _, t := range PlaylistTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown playlist type %q", s)
}

// IsSmart reports whether the server builds the playlist from filter tags.
func (t PlaylistType) IsSmart() bool {
	return t != "" && t != PlaylistExplicit
}

// ItemState is the lifecycle state of a video.
type ItemState string

const (
	ItemActive   ItemState = "ACTIVE"
	ItemInactive ItemState = "INACTIVE"
	ItemDeleted  ItemState = "DELETED"
)

// SortBy selects the field finder results are ordered by.
type SortBy string

const (
	SortByPublishDate       SortBy = "PUBLISH_DATE"
	SortByCreationDate      SortBy = "CREATION_DATE"
	SortByModifiedDate      SortBy = "MODIFIED_DATE"
	SortByPlaysTotal        SortBy = "PLAYS_TOTAL"
	SortByPlaysTrailingWeek SortBy = "PLAYS_TRAILING_WEEK"
)

// SortOrder is the direction of a [SortBy] ordering.
type SortOrder string

const (
	SortAscending  SortOrder = "ASC"
	SortDescending SortOrder = "DESC"
)
