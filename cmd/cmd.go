// submodule cmd contains command definitions
package main

import (
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/bcx/internal/formatter"
	"github.com/desertthunder/bcx/internal/models"
)

func outputFlags(prettyDefault bool) []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: prettyDefault,
		},
	}
}

func pageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "page-size",
			Usage: "Items per page (server default when zero)",
		},
		&cli.IntFlag{
			Name:  "page",
			Usage: "Zero-based page number",
		},
		&cli.StringSliceFlag{
			Name:  "fields",
			Usage: "Fields to return; essential fields are always included",
		},
		&cli.StringFlag{
			Name:  "sort-by",
			Usage: "Sort field (PUBLISH_DATE, CREATION_DATE, MODIFIED_DATE, PLAYS_TOTAL, PLAYS_TRAILING_WEEK)",
		},
		&cli.StringFlag{
			Name:  "sort-order",
			Usage: "Sort direction (ASC or DESC)",
		},
	}
}

func formatNames() string {
	names := make([]string, len(formatter.Formats))
	for i, f := range formatter.Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

func playlistTypeNames() string {
	names := make([]string, len(models.PlaylistTypes))
	for i, t := range models.PlaylistTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

// setupCommand handles setup operations for configuration and the cache database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write a config file from the built-in template",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize the playlist cache database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent cache database migration",
				Action: r.SetupRollback,
			},
		},
	}
}

// playlistCommand handles remote playlist operations
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"pl"},
		Usage:   "Brightcove playlist operations",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Look up one playlist by id or reference id",
				Flags: append([]cli.Flag{
					&cli.Int64Flag{
						Name:  "id",
						Usage: "Playlist id",
					},
					&cli.StringFlag{
						Name:  "ref",
						Usage: "Playlist reference id",
					},
					&cli.StringSliceFlag{
						Name:  "fields",
						Usage: "Fields to return; essential fields are always included",
					},
				}, outputFlags(true)...),
				Action: r.PlaylistGet,
			},
			{
				Name:  "list",
				Usage: "List playlists by ids, reference ids, player or account",
				Flags: append(append([]cli.Flag{
					&cli.Int64SliceFlag{
						Name:  "ids",
						Usage: "Playlist ids",
					},
					&cli.StringSliceFlag{
						Name:  "refs",
						Usage: "Playlist reference ids",
					},
					&cli.Int64Flag{
						Name:  "player-id",
						Usage: "Player id",
					},
				}, pageFlags()...), outputFlags(false)...),
				Action: r.PlaylistList,
			},
			{
				Name:  "create",
				Usage: "Create a playlist",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Playlist name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Playlist type (" + playlistTypeNames() + ")",
						Value: string(models.PlaylistExplicit),
					},
					&cli.StringFlag{
						Name:  "description",
						Usage: "Short description",
					},
					&cli.StringFlag{
						Name:  "ref",
						Usage: "Reference id",
					},
					&cli.StringFlag{
						Name:  "thumbnail",
						Usage: "Thumbnail URL",
					},
					&cli.Int64SliceFlag{
						Name:  "video-id",
						Usage: "Video ids in order (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "tag",
						Usage: "Filter tags for smart playlists (repeatable)",
					},
				}, outputFlags(true)...),
				Action: r.PlaylistCreate,
			},
			{
				Name:  "update",
				Usage: "Update an existing playlist",
				Flags: append([]cli.Flag{
					&cli.Int64Flag{
						Name:     "id",
						Usage:    "Playlist id",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "name",
						Usage: "New name",
					},
					&cli.StringFlag{
						Name:  "description",
						Usage: "New short description",
					},
					&cli.Int64SliceFlag{
						Name:  "video-id",
						Usage: "Replacement video ids in order (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "tag",
						Usage: "Replacement filter tags (repeatable)",
					},
				}, outputFlags(true)...),
				Action: r.PlaylistUpdate,
			},
			{
				Name:  "delete",
				Usage: "Delete a playlist",
				Flags: []cli.Flag{
					&cli.Int64Flag{
						Name:     "id",
						Usage:    "Playlist id",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "cascade",
						Usage: "Also remove the playlist from players",
					},
				},
				Action: r.PlaylistDelete,
			},
			{
				Name:  "export",
				Usage: "Export playlists and their videos to disk",
				Flags: []cli.Flag{
					&cli.Int64SliceFlag{
						Name:     "id",
						Usage:    "Playlist ids (repeatable)",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format (" + formatNames() + ")",
						Value:   string(formatter.FormatJSON),
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: bcx_export_{timestamp})",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent writers",
						Value: 5,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Playlist lookups per second",
						Value: 5,
					},
				},
				Action: r.PlaylistExport,
			},
		},
	}
}

// videoCommand handles video lookups
func videoCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "video",
		Usage: "Brightcove video lookups",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Look up one video by id or reference id",
				Flags: append([]cli.Flag{
					&cli.Int64Flag{
						Name:  "id",
						Usage: "Video id",
					},
					&cli.StringFlag{
						Name:  "ref",
						Usage: "Video reference id",
					},
				}, outputFlags(true)...),
				Action: r.VideoGet,
			},
			{
				Name:  "find",
				Usage: "Find videos by ids, by tags or across the account",
				Flags: append(append([]cli.Flag{
					&cli.Int64SliceFlag{
						Name:  "ids",
						Usage: "Video ids",
					},
					&cli.StringSliceFlag{
						Name:  "tag",
						Usage: "Videos must carry every one of these tags (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "or-tag",
						Usage: "Videos must carry at least one of these tags (repeatable)",
					},
				}, pageFlags()...), outputFlags(false)...),
				Action: r.VideoFind,
			},
		},
	}
}

// cacheCommand handles the local playlist cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Mirror playlists into the local cache",
		Commands: []*cli.Command{
			{
				Name:  "sync",
				Usage: "Page through every account playlist and store it locally",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "page-size",
						Usage: "Playlists per page",
						Value: 100,
					},
				},
				Action: r.CacheSync,
			},
			{
				Name:  "list",
				Usage: "List cached playlists",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "ref",
						Usage: "Only this reference id",
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Only this playlist type",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of playlists",
					},
				}, outputFlags(false)...),
				Action: r.CacheList,
			},
			{
				Name:   "purge",
				Usage:  "Drop every stored API response",
				Action: r.CachePurge,
			},
		},
	}
}

// tuiCommand launches the interactive browser
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Browse playlists and export them interactively",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format (" + formatNames() + ")",
				Value:   string(formatter.FormatJSON),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory for exports",
			},
			&cli.IntFlag{
				Name:  "page-size",
				Usage: "Playlists to load",
				Value: 100,
			},
		},
		Action: r.TUI,
	}
}
