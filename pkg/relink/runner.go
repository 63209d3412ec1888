package relink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ytrelink/pkg/config"
	"ytrelink/pkg/logger"
	"ytrelink/pkg/models"
	"ytrelink/pkg/pager"
)

// Remote lists the playlist and resolves which playlist to walk
type Remote interface {
	pager.Lister
	ResolvePlaylist(ctx context.Context, playlistID string) (string, error)
}

// BatchMutator rewrites one page of ids
type BatchMutator interface {
	Apply(ctx context.Context, ids []string, simulate bool) (models.BatchResult, error)
}

// Checkpointer persists the single resume token
type Checkpointer interface {
	Load() (string, error)
	Save(token string) error
}

// Reporter receives progress for display
type Reporter interface {
	Start(runID, collectionID, startToken string, ceiling int)
	Batch(page int, p models.Page, result models.BatchResult, processed int)
	Finish(summary *models.Summary)
}

// Runner drives one run
type Runner struct {
	remote     Remote
	mutator    BatchMutator
	checkpoint Checkpointer
	reporter   Reporter
	backupPath string

	playlistID string
	maxPerRun  int
	pageSize   int
	dryRun     bool

	logger logger.Logger
}

// New creates a Runner from explicit collaborators
func New(cfg *config.Config, remote Remote, mutator BatchMutator, checkpoint Checkpointer, log logger.Logger) *Runner {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Runner{
		remote:     remote,
		mutator:    mutator,
		checkpoint: checkpoint,
		playlistID: cfg.YouTube.PlaylistID,
		maxPerRun:  cfg.Run.MaxPerRun,
		pageSize:   cfg.Run.PageSize,
		dryRun:     cfg.Run.DryRun,
		logger:     log,
	}
}

// SetReporter sets the progress reporter
func (r *Runner) SetReporter(reporter Reporter) {
	r.reporter = reporter
}

// SetBackupPath records the backup location shown in the summary
func (r *Runner) SetBackupPath(path string) {
	r.backupPath = path
}

// Run performs one pass and returns its summary. The summary is non-nil
// whenever the checkpoint could be loaded, even if err is set.
func (r *Runner) Run(ctx context.Context) (*models.Summary, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := r.logger.WithField("run_id", runID)

	startToken, err := r.checkpoint.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	summary := &models.Summary{
		RunID:       runID,
		StartToken:  startToken,
		ResumeToken: startToken,
		DryRun:      r.dryRun,
		BackupPath:  r.backupPath,
	}

	collectionID, err := r.remote.ResolvePlaylist(ctx, r.playlistID)
	if err != nil {
		summary.Duration = time.Since(start)
		return summary, fmt.Errorf("failed to resolve playlist: %w", err)
	}
	summary.CollectionID = collectionID

	logger.LogComponentStart(log, "relink", map[string]interface{}{
		"playlist_id": collectionID,
		"start_token": startToken,
		"max_per_run": r.maxPerRun,
		"page_size":   r.pageSize,
		"dry_run":     r.dryRun,
	})
	if r.reporter != nil {
		r.reporter.Start(runID, collectionID, startToken, r.maxPerRun)
	}

	resume, runErr := r.walk(ctx, log, collectionID, startToken, summary)

	summary.ResumeToken = resume
	summary.Drained = runErr == nil && resume == ""

	if err := r.checkpoint.Save(resume); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("failed to save checkpoint: %w", err))
	}

	summary.Duration = time.Since(start)

	reason := "budget"
	switch {
	case runErr != nil:
		reason = "error"
		log.WithError(runErr).ErrorWithFields("Run aborted", map[string]interface{}{
			"resume_token": resume,
			"processed":    summary.Processed,
		})
	case summary.Drained:
		reason = "drained"
	}
	logger.LogComponentStop(log, "relink", reason)

	if r.reporter != nil {
		r.reporter.Finish(summary)
	}

	return summary, runErr
}

// walk processes pages until the ceiling, the end of the playlist or an
// error, and returns the token of the first page not fully processed
func (r *Runner) walk(ctx context.Context, log logger.Logger, collectionID, startToken string, summary *models.Summary) (string, error) {
	walker := pager.New(r.remote, collectionID, startToken, r.pageSize)
	resume := startToken

	for {
		if r.maxPerRun > 0 && summary.Processed >= r.maxPerRun {
			log.InfoWithFields("Per-run ceiling reached", map[string]interface{}{
				"processed":   summary.Processed,
				"max_per_run": r.maxPerRun,
			})
			return resume, nil
		}

		if err := ctx.Err(); err != nil {
			return resume, err
		}

		if !walker.Next(ctx) {
			return walker.Token(), walker.Err()
		}
		page := walker.Page()

		result, err := r.mutator.Apply(ctx, page.IDs, r.dryRun)
		summary.BackedUp += len(result.Records)
		summary.Updated += result.Updated
		summary.Missing += result.Missing
		if err != nil {
			summary.Unfinished = len(page.IDs)
			return page.Token, fmt.Errorf("page %q: %w", page.Token, err)
		}

		summary.Pages++
		summary.Processed += len(page.IDs)
		resume = page.NextToken

		logger.LogBatch(log, summary.Pages, len(page.IDs), result.Updated, result.Missing, page.NextToken)
		if r.reporter != nil {
			r.reporter.Batch(summary.Pages, page, result, summary.Processed)
		}

		if walker.Drained() {
			return "", nil
		}
	}
}
