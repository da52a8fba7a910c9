// package tasks runs the long playlist operations behind the CLI and TUI.
//
// [Exporter.BulkExport] looks up playlists and writes them to disk with a
// rate-limited producer feeding a fixed worker pool. [Syncer.Sync] pages
// through every remote playlist and stores a snapshot of each in the local cache.
//
// Both report progress on an optional channel. Sends never block: when the
// receiver falls behind, updates are dropped rather than stalling the work.
package tasks
