package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/bcx/internal/media"
)

var (
	_ list.Item = playlistItem{}
	_ list.Item = videoItem{}
)

// playlistItem wraps [media.Playlist] to implement [list.Item].
type playlistItem struct {
	playlist *media.Playlist
}

func (i playlistItem) FilterValue() string { return i.playlist.Name + " " + i.playlist.ReferenceID }
func (i playlistItem) Title() string       { return i.playlist.Name }
func (i playlistItem) Description() string {
	desc := fmt.Sprintf("%d videos • %s", len(i.playlist.VideoIDs), i.playlist.Type)
	if i.playlist.ShortDescription != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.playlist.ShortDescription)
	}
	return desc
}

// videoItem wraps [media.Video] to implement [list.Item].
type videoItem struct {
	video *media.Video
}

func (i videoItem) FilterValue() string { return i.video.Name }
func (i videoItem) Title() string       { return i.video.Name }
func (i videoItem) Description() string {
	parts := []string{fmt.Sprintf("%d", i.video.ID), i.video.Duration().String()}
	if len(i.video.Tags) > 0 {
		parts = append(parts, strings.Join(i.video.Tags, ", "))
	}
	return strings.Join(parts, " • ")
}
