package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageLast(t *testing.T) {
	assert.True(t, Page{IDs: []string{"a"}}.Last())
	assert.False(t, Page{IDs: []string{"a"}, NextToken: "CAIQAA"}.Last())
}

func TestSummaryString(t *testing.T) {
	s := &Summary{Processed: 50, Updated: 3, BackupPath: "backup.csv", ResumeToken: "CDIQAA"}
	assert.Equal(t, "Processed 50 videos, updated 3.  Backup: backup.csv\nSaved resume token: CDIQAA", s.String())

	s = &Summary{Processed: 3, Updated: 1, Missing: 1, Drained: true, DryRun: true}
	assert.Equal(t, "Processed 3 videos, would update 1. Skipped 1 missing.\nNo nextPageToken left, the whole playlist has been handled.", s.String())

	s = &Summary{Processed: 0, Updated: 1, Unfinished: 2, ResumeToken: "CAIQAA"}
	assert.Equal(t, "Processed 0 videos, updated 1. 2 more on an unfinished page will be redone.\nSaved resume token: CAIQAA", s.String())
}
