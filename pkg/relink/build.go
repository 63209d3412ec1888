package relink

import (
	"net/http"

	"ytrelink/pkg/backup"
	"ytrelink/pkg/checkpoint"
	"ytrelink/pkg/config"
	"ytrelink/pkg/logger"
	"ytrelink/pkg/mutator"
	"ytrelink/pkg/ratelimit"
	"ytrelink/pkg/youtube"
)

// NewFromConfig wires the YouTube client, checkpoint store, backup log and
// mutator described by cfg. httpClient must carry OAuth credentials.
func NewFromConfig(cfg *config.Config, httpClient *http.Client, log logger.Logger) (*Runner, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	rewriter, err := mutator.NewRewriter(cfg.Rewrite.Targets, cfg.Rewrite.Replacement)
	if err != nil {
		return nil, err
	}

	store, err := checkpoint.NewStore(cfg.State.CheckpointFile, log.WithField("component", "checkpoint"))
	if err != nil {
		return nil, err
	}

	backupLog, err := backup.NewLog(cfg.State.BackupFile, log.WithField("component", "backup"))
	if err != nil {
		return nil, err
	}

	reads := ratelimit.NewReadLimiter(cfg.RateLimit.ReadsPerMinute, cfg.RateLimit.Burst)
	client := youtube.NewClient(httpClient, cfg.YouTube.APIBaseURL, reads, log.WithField("component", "youtube"))

	writes := ratelimit.NewFixedDelay(cfg.Run.WriteDelay)
	mut := mutator.New(client, backupLog, rewriter, writes, log.WithField("component", "mutator"))

	runner := New(cfg, client, mut, store, log)
	runner.SetBackupPath(backupLog.Path())
	return runner, nil
}
