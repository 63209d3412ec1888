// Package relink runs one bounded, resumable pass of the description
// rewrite over a channel's uploads.
//
// A run loads the saved resume token, walks the playlist page by page,
// backs up and rewrites each page, and stops when the playlist is drained
// or the per-run ceiling is reached. The ceiling is checked between pages;
// a page is never split. On every exit, including errors and interrupts,
// the token of the first page that was not fully processed is saved, so
// the next run neither skips nor repeats work beyond idempotent no-ops.
//
// Usage:
//
//	runner, err := relink.NewFromConfig(cfg, httpClient, log)
//	if err != nil {
//	    return err
//	}
//	summary, err := runner.Run(ctx)
//	fmt.Println(summary)
package relink
