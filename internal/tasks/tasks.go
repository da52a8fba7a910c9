package tasks

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/bcx/internal/connection"
	"github.com/desertthunder/bcx/internal/models"
)

// PlaylistStore is the part of the playlist cache that sync writes to.
type PlaylistStore interface {
	Upsert(data models.CachedPlaylistData) (*models.CachedPlaylist, bool, error)
}

// Exporter writes remote playlists to disk.
type Exporter struct {
	conn   connection.Connection
	logger *log.Logger
}

// NewExporter creates an Exporter. A nil logger discards output.
func NewExporter(conn connection.Connection, logger *log.Logger) *Exporter {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Exporter{conn: conn, logger: logger}
}

// Syncer mirrors remote playlists into a [PlaylistStore].
type Syncer struct {
	conn   connection.Connection
	store  PlaylistStore
	logger *log.Logger
}

// NewSyncer creates a Syncer. A nil logger discards output.
func NewSyncer(conn connection.Connection, store PlaylistStore, logger *log.Logger) *Syncer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Syncer{conn: conn, store: store, logger: logger}
}
