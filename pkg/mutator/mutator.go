// Package mutator applies the description rewrite to one batch of videos.
//
// For every batch the Mutator fetches all items first, appends their
// current text to the backup log, and only then writes the rewritten
// items back. A batch whose backup fails is never written.
package mutator

import (
	"context"
	"fmt"

	errs "ytrelink/pkg/errors"
	"ytrelink/pkg/logger"
	"ytrelink/pkg/models"
)

// ItemStore reads and writes the text field of remote items
type ItemStore interface {
	// GetItem returns a not_found error when the item no longer exists
	GetItem(ctx context.Context, id string) (models.Item, error)
	UpdateItem(ctx context.Context, item models.Item) error
}

// Appender durably records pre-mutation snapshots
type Appender interface {
	Append(records []models.BackupRecord) error
}

// Pacer blocks between writes
type Pacer interface {
	Wait(ctx context.Context) error
}

// Mutator rewrites batches of items
type Mutator struct {
	store    ItemStore
	backup   Appender
	rewriter *Rewriter
	pacer    Pacer
	logger   logger.Logger
}

// New creates a Mutator
func New(store ItemStore, backup Appender, rewriter *Rewriter, pacer Pacer, log logger.Logger) *Mutator {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Mutator{
		store:    store,
		backup:   backup,
		rewriter: rewriter,
		pacer:    pacer,
		logger:   log,
	}
}

// Apply processes ids in order. Updated counts matching items whether or
// not simulate suppressed the write.
func (m *Mutator) Apply(ctx context.Context, ids []string, simulate bool) (models.BatchResult, error) {
	var result models.BatchResult

	items := make([]models.Item, 0, len(ids))
	for _, id := range ids {
		item, err := m.store.GetItem(ctx, id)
		if err != nil {
			if errs.IsNotFound(err) {
				m.logger.DebugWithFields("Item vanished, skipping", map[string]interface{}{
					"id": id,
				})
				result.Missing++
				continue
			}
			return result, fmt.Errorf("failed to fetch item %s: %w", id, err)
		}
		items = append(items, item)
	}
	result.Fetched = len(items)

	records := make([]models.BackupRecord, 0, len(items))
	for _, item := range items {
		records = append(records, models.BackupRecord{ID: item.ID, Text: item.Text})
	}
	if err := m.backup.Append(records); err != nil {
		return result, fmt.Errorf("failed to back up batch: %w", err)
	}
	result.Records = records

	for _, item := range items {
		if !m.rewriter.Matches(item.Text) {
			continue
		}
		result.Updated++

		if simulate {
			m.logger.InfoWithFields("Would update", map[string]interface{}{
				"id": item.ID,
			})
			continue
		}

		item.Text = m.rewriter.Rewrite(item.Text)
		if err := m.store.UpdateItem(ctx, item); err != nil {
			result.Updated--
			return result, fmt.Errorf("failed to update item %s: %w", item.ID, err)
		}
		m.logger.InfoWithFields("Updated", map[string]interface{}{
			"id": item.ID,
		})

		if m.pacer != nil {
			if err := m.pacer.Wait(ctx); err != nil {
				return result, err
			}
		}
	}

	return result, nil
}
