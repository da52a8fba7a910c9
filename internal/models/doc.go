// Package models defines the enumerations shared by the Brightcove entities and the persistence types for the local playlist cache.
//
// The package contains two categories of types:
//
// 1. Enumerations mirroring the Media API vocabulary
//   - [PlaylistType] : ordering rule of a playlist (EXPLICIT for manual order, the rest are smart playlists)
//   - [ItemState] : lifecycle state of a video
//   - [SortBy] and [SortOrder] : list ordering for finder calls
//
// 2. Persistent Entities
//   - [CachedPlaylist] : local snapshot of a remote playlist
//
// Persistent entities implement the [Model] interface providing ID generation, timestamps and validation.
// The [Repository] interface defines standard CRUD operations for database access.
package models
