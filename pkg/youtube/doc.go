// Package youtube is a small client for the YouTube Data API v3 covering
// the calls the relink job needs: finding the channel's uploads playlist,
// paging through it, and reading and writing video snippets.
//
// The client does not authenticate by itself. It expects an *http.Client
// that already attaches OAuth credentials (see pkg/auth), and an optional
// rate limiter that paces every GET.
//
// API errors are mapped onto pkg/errors types. A 403 carrying the reason
// quotaExceeded or rateLimitExceeded becomes a rate_limit error, and a
// videos.list call that returns no items becomes not_found.
//
// Usage:
//
//	client := youtube.NewClient(httpClient, youtube.BaseURL, limiter, log)
//	playlist, err := client.UploadsPlaylistID(ctx)
//	page, err := client.ListPage(ctx, playlist, "", 50)
package youtube
