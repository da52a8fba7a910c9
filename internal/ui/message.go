package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/bcx/internal/media"
	"github.com/desertthunder/bcx/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPlaylistsFetched MsgKind = iota
	MsgVideosFetched
	MsgProgressUpdate
	MsgExportComplete
)

type playlistsFetched struct {
	playlists []*media.Playlist
	total     int
	err       error
}

type videosFetched struct {
	playlist *media.Playlist
	videos   []*media.Video
	err      error
}

type exportComplete struct {
	result *tasks.BulkExportResult
	err    error
}

// playlistsFetchedMsg is the constructor for [MsgPlaylistsFetched]
func playlistsFetchedMsg(playlists []*media.Playlist, total int, err error) Msg {
	return Msg{kind: MsgPlaylistsFetched, data: playlistsFetched{playlists, total, err}}
}

// videosFetchedMsg is the constructor for [MsgVideosFetched]
func videosFetchedMsg(playlist *media.Playlist, videos []*media.Video, err error) Msg {
	return Msg{kind: MsgVideosFetched, data: videosFetched{playlist, videos, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// exportCompleteMsg is the constructor for [MsgExportComplete]
func exportCompleteMsg(result *tasks.BulkExportResult, err error) Msg {
	return Msg{kind: MsgExportComplete, data: exportComplete{result, err}}
}
