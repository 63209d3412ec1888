// Package backup keeps an append-only CSV log of every video description as
// it was before the run touched it.
//
// The file starts with a header row and gains one row per item:
//
//	videoId,description
//	abc123,"Join us at https://discord.gg/4ZgjkRx"
//
// Rows are never rewritten. Each Append is flushed and fsynced before it
// returns, so a record is on disk before the matching remote write is
// attempted. Restoring an item means copying its description column back.
//
// Usage:
//
//	log, err := backup.NewLog("backup.csv", logger)
//	if err != nil {
//	    return err
//	}
//	if err := log.Append(records); err != nil {
//	    return err // do not mutate anything
//	}
package backup
