// package media binds Media API records to Go entities.
//
// A [Playlist] is looked up, created, updated and deleted through a
// [connection.Connection]; finders return one page of hydrated entities as a
// [ResultSet]. [Video] lookups exist so videos found by tag can be added to a
// playlist before it is saved.
package media
