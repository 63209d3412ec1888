// Package checkpoint persists the single resumption token that tells the
// next run where to continue in the uploads playlist.
//
// The file holds exactly one JSON object:
//
//	{ "nextPageToken": "CDIQAA" }
//
// A missing file means "start from the beginning". Saving an empty token
// deletes the file, which is how a run records that the whole playlist has
// been handled. Writes go through a temporary file, fsync and rename so a
// crash never leaves a half-written checkpoint behind.
//
// The default location is state.json in the platform data directory:
//   - Linux: $XDG_DATA_HOME/ytrelink or ~/.local/share/ytrelink
//   - macOS: ~/Library/Application Support/ytrelink
//   - Windows: %APPDATA%/ytrelink
package checkpoint
