// Package ui implements an interactive terminal browser using bubbletea's Elm architecture.
//
// The TUI walks through:
//  1. [PlaylistListView] : Browse one page of account playlists
//  2. [VideoListView] : Inspect the videos of the selected playlist
//  3. [ConfirmView] : Confirm exporting it
//  4. [ExportView] : Follow export progress
//  5. [ResultView] : Show the written files or the failure
//
// The (view) [Model] implements Init/Update/View, receiving messages via the [Msg] union type.
// Export progress flows through a channel from [tasks.Exporter] without blocking the export.
package ui
