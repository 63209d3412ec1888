package models

import (
	"fmt"
	"strings"
	"time"
)

// Item is one remote entity fetched for a single batch
type Item struct {
	ID   string
	Text string
	// Snapshot is the remote's own representation, returned unchanged
	// apart from Text when the item is written back.
	Snapshot interface{}
}

// BackupRecord is the pre-mutation state of one item
type BackupRecord struct {
	ID   string
	Text string
}

// Page is one fetched page of item ids
type Page struct {
	// Token produced this page; empty for the first page of the collection
	Token string
	IDs   []string
	// NextToken yields the following page; empty at end of collection
	NextToken string
}

// Last reports whether no page follows this one
func (p Page) Last() bool {
	return p.NextToken == ""
}

// BatchResult is the outcome of mutating one page
type BatchResult struct {
	Fetched int
	Missing int
	Updated int
	Records []BackupRecord
}

// Summary describes one finished (or aborted) run
type Summary struct {
	RunID        string
	CollectionID string
	StartToken   string
	ResumeToken  string
	Pages        int
	Processed    int
	Updated      int
	BackedUp     int
	Missing      int
	Drained      bool
	DryRun       bool
	BackupPath   string
	Duration     time.Duration

	// Unfinished counts items on a page that failed partway. They are not
	// in Processed, but writes made before the failure are in Updated.
	Unfinished int
}

// String renders the human-readable end-of-run report
func (s *Summary) String() string {
	var b strings.Builder
	verb := "updated"
	if s.DryRun {
		verb = "would update"
	}
	fmt.Fprintf(&b, "Processed %d videos, %s %d.", s.Processed, verb, s.Updated)
	if s.Unfinished > 0 {
		fmt.Fprintf(&b, " %d more on an unfinished page will be redone.", s.Unfinished)
	}
	if s.Missing > 0 {
		fmt.Fprintf(&b, " Skipped %d missing.", s.Missing)
	}
	if s.BackupPath != "" {
		fmt.Fprintf(&b, "  Backup: %s", s.BackupPath)
	}
	b.WriteString("\n")
	if s.Drained {
		b.WriteString("No nextPageToken left, the whole playlist has been handled.")
	} else {
		fmt.Fprintf(&b, "Saved resume token: %s", s.ResumeToken)
	}
	return b.String()
}
