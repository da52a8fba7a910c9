// Package repositories implements SQLite persistence for the local playlist cache.
//
// Rows carry a uuid primary key plus a sequence number from a dedicated
// sequence table, which gives a stable human-readable order independent of
// the remote ids. Deletes are soft: deleted_at is set and the row is excluded
// from every query.
//
// Key Implementations:
//   - [PlaylistRepository] : snapshots of remote playlists keyed by remote id
package repositories
