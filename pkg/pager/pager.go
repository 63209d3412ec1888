// Package pager walks a token-paginated remote collection one page at a
// time.
//
// A Walker is a pull iterator: each call to Next performs exactly one
// remote fetch. It is forward-only and cannot be restarted; to resume
// elsewhere, build a new Walker from a saved token.
//
//	w := pager.New(client, playlistID, token, 50)
//	for w.Next(ctx) {
//	    page := w.Page()
//	    ...
//	}
//	if err := w.Err(); err != nil {
//	    return err
//	}
package pager

import (
	"context"
	"fmt"

	"ytrelink/pkg/models"
)

// Lister fetches one page of item ids from a collection
type Lister interface {
	ListPage(ctx context.Context, collectionID, pageToken string, pageSize int) (models.Page, error)
}

// Walker iterates over the pages of one collection
type Walker struct {
	lister       Lister
	collectionID string
	pageSize     int

	token string
	page  models.Page
	err   error
	done  bool
}

// New creates a Walker that starts at startToken ("" for the first page)
func New(lister Lister, collectionID, startToken string, pageSize int) *Walker {
	return &Walker{
		lister:       lister,
		collectionID: collectionID,
		pageSize:     pageSize,
		token:        startToken,
	}
}

// Next fetches the next page. It returns false once the final page has
// been yielded or a fetch fails; check Err to tell the two apart.
func (w *Walker) Next(ctx context.Context) bool {
	if w.done {
		return false
	}

	page, err := w.lister.ListPage(ctx, w.collectionID, w.token, w.pageSize)
	if err != nil {
		w.err = fmt.Errorf("failed to list page %q: %w", w.token, err)
		w.done = true
		return false
	}

	// The remote leaves Token unset; record which token produced the page
	page.Token = w.token
	w.page = page
	w.token = page.NextToken
	if page.Last() {
		w.done = true
	}

	return true
}

// Page returns the page produced by the last successful Next
func (w *Walker) Page() models.Page {
	return w.page
}

// Token returns the token the next fetch would use. After a failed fetch
// it is the token of the page that could not be fetched.
func (w *Walker) Token() string {
	return w.token
}

// Err returns the fetch error that stopped the walk, if any
func (w *Walker) Err() error {
	return w.err
}

// Done reports whether the walk has ended, by exhaustion or error
func (w *Walker) Done() bool {
	return w.done
}

// Drained reports whether the final page of the collection has been yielded
func (w *Walker) Drained() bool {
	return w.done && w.err == nil
}
