package relink

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"ytrelink/pkg/backup"
	"ytrelink/pkg/checkpoint"
	"ytrelink/pkg/config"
	errs "ytrelink/pkg/errors"
	"ytrelink/pkg/logger"
	"ytrelink/pkg/models"
	"ytrelink/pkg/mutator"
)

const (
	oldInvite = "https://discord.gg/4ZgjkRx"
	newInvite = "https://discord.gg/mrJnesCk2Z"
)

// fakeChannel is an in-memory playlist whose pages are addressed by
// "p<offset>" tokens
type fakeChannel struct {
	ids      []string
	texts    map[string]string
	listErr  map[string]error
	writeErr map[string]error
	listed   []string
	written  []string
}

func newFakeChannel(texts map[string]string, ids ...string) *fakeChannel {
	return &fakeChannel{ids: ids, texts: texts}
}

func (f *fakeChannel) ResolvePlaylist(ctx context.Context, playlistID string) (string, error) {
	if playlistID != "" {
		return playlistID, nil
	}
	return "UUfake", nil
}

func (f *fakeChannel) ListPage(ctx context.Context, collectionID, token string, pageSize int) (models.Page, error) {
	f.listed = append(f.listed, token)
	if err, ok := f.listErr[token]; ok {
		return models.Page{}, err
	}

	offset := 0
	if token != "" {
		if _, err := fmt.Sscanf(token, "p%d", &offset); err != nil {
			return models.Page{}, err
		}
	}

	end := offset + pageSize
	if end > len(f.ids) {
		end = len(f.ids)
	}
	page := models.Page{IDs: append([]string(nil), f.ids[offset:end]...)}
	if end < len(f.ids) {
		page.NextToken = tokenFor(end)
	}
	return page, nil
}

func (f *fakeChannel) GetItem(ctx context.Context, id string) (models.Item, error) {
	text, ok := f.texts[id]
	if !ok {
		return models.Item{}, errs.New(errs.ErrorTypeNotFound, 404, "video %s not found", id)
	}
	return models.Item{ID: id, Text: text}, nil
}

func (f *fakeChannel) UpdateItem(ctx context.Context, item models.Item) error {
	if err, ok := f.writeErr[item.ID]; ok {
		return err
	}
	f.written = append(f.written, item.ID)
	f.texts[item.ID] = item.Text
	return nil
}

func tokenFor(offset int) string {
	return fmt.Sprintf("p%d", offset)
}

type harness struct {
	channel *fakeChannel
	store   *checkpoint.Store
	backup  *backup.Log
	cfg     *config.Config
}

func newHarness(t *testing.T, channel *fakeChannel, pageSize, ceiling int) *harness {
	t.Helper()
	dir := t.TempDir()

	store, err := checkpoint.NewStore(filepath.Join(dir, "state.json"), logger.NewNopLogger())
	require.NoError(t, err)
	backupLog, err := backup.NewLog(filepath.Join(dir, "backup.csv"), logger.NewNopLogger())
	require.NoError(t, err)

	cfg := config.DefaultConfig()
	cfg.Run.PageSize = pageSize
	cfg.Run.MaxPerRun = ceiling
	cfg.Run.WriteDelay = 0

	return &harness{channel: channel, store: store, backup: backupLog, cfg: cfg}
}

func (h *harness) runner(t *testing.T) *Runner {
	t.Helper()
	rw, err := mutator.NewRewriter(h.cfg.Rewrite.Targets, h.cfg.Rewrite.Replacement)
	require.NoError(t, err)
	mut := mutator.New(h.channel, h.backup, rw, nil, logger.NewNopLogger())
	r := New(h.cfg, h.channel, mut, h.store, logger.NewNopLogger())
	r.SetBackupPath(h.backup.Path())
	return r
}

func (h *harness) savedToken(t *testing.T) string {
	t.Helper()
	token, err := h.store.Load()
	require.NoError(t, err)
	return token
}

func TestTwoRunsResumeAtSecondPage(t *testing.T) {
	channel := newFakeChannel(map[string]string{
		"a": "join us at " + oldInvite + " today",
		"b": "plain",
		"c": oldInvite,
	}, "a", "b", "c")
	h := newHarness(t, channel, 2, 2)

	summary, err := h.runner(t).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 1, summary.Updated)
	assert.False(t, summary.Drained)
	assert.Equal(t, "p2", summary.ResumeToken)
	assert.Equal(t, "p2", h.savedToken(t))
	assert.Equal(t, []string{"a"}, channel.written)

	summary, err = h.runner(t).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "p2", summary.StartToken)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Updated)
	assert.True(t, summary.Drained)
	assert.False(t, h.store.Exists())
	assert.Equal(t, []string{"a", "c"}, channel.written)

	records, err := h.backup.ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 3)
	assert.Equal(t, "join us at "+oldInvite+" today", records[0].Text)
}

func TestCeilingNeverSplitsAPage(t *testing.T) {
	channel := newFakeChannel(map[string]string{}, "a", "b", "c", "d", "e")
	h := newHarness(t, channel, 2, 3)

	summary, err := h.runner(t).Run(context.Background())
	require.NoError(t, err)

	// Two full pages are processed; the ceiling is checked between pages
	assert.Equal(t, 4, summary.Processed)
	assert.Equal(t, 2, summary.Pages)
	assert.Equal(t, "p4", h.savedToken(t))
	assert.Equal(t, 4, summary.Missing)
	assert.Zero(t, summary.BackedUp)
}

func TestResumabilityCoversWholeCollection(t *testing.T) {
	var ids []string
	texts := map[string]string{}
	for i := 0; i < 23; i++ {
		id := fmt.Sprintf("v%02d", i)
		ids = append(ids, id)
		texts[id] = "video " + id + " " + oldInvite
	}
	channel := newFakeChannel(texts, ids...)
	h := newHarness(t, channel, 5, 7)

	runs := 0
	for {
		runs++
		require.Less(t, runs, 20)
		summary, err := h.runner(t).Run(context.Background())
		require.NoError(t, err)
		if summary.Drained {
			break
		}
	}

	assert.Equal(t, ids, channel.written)
	for _, text := range channel.texts {
		assert.NotContains(t, text, oldInvite)
		assert.Contains(t, text, newInvite)
	}
	assert.False(t, h.store.Exists())
}

func TestUnboundedRunDrains(t *testing.T) {
	channel := newFakeChannel(map[string]string{"a": "x", "b": "y", "c": "z"}, "a", "b", "c")
	h := newHarness(t, channel, 2, 0)

	summary, err := h.runner(t).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Processed)
	assert.True(t, summary.Drained)
	assert.False(t, h.store.Exists())
	assert.Contains(t, summary.String(), "whole playlist has been handled")
}

func TestDryRunWritesNothingButKeepsCheckpoint(t *testing.T) {
	channel := newFakeChannel(map[string]string{"a": oldInvite, "b": oldInvite, "c": oldInvite}, "a", "b", "c")
	h := newHarness(t, channel, 2, 2)
	h.cfg.Run.DryRun = true

	summary, err := h.runner(t).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Updated)
	assert.True(t, summary.DryRun)
	assert.Empty(t, channel.written)
	assert.Equal(t, "p2", h.savedToken(t))
	assert.True(t, strings.HasPrefix(summary.String(), "Processed 2 videos, would update 2."))
}

func TestListErrorSavesFailedPageToken(t *testing.T) {
	channel := newFakeChannel(map[string]string{"a": "x", "b": "y", "c": "z"}, "a", "b", "c")
	boom := errs.New(errs.ErrorTypeServerError, 503, "backend error")
	channel.listErr = map[string]error{"p2": boom}
	h := newHarness(t, channel, 2, 0)

	summary, err := h.runner(t).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errs.IsType(err, errs.ErrorTypeServerError))
	assert.Equal(t, 2, summary.Processed)
	assert.False(t, summary.Drained)
	assert.Equal(t, "p2", h.savedToken(t))

	// The listing is not retried within the run
	assert.Equal(t, []string{"", "p2"}, channel.listed)
}

func TestWriteErrorSavesStartOfFailedPage(t *testing.T) {
	channel := newFakeChannel(map[string]string{"a": "x", "b": "y", "c": oldInvite, "d": oldInvite}, "a", "b", "c", "d")
	channel.writeErr = map[string]error{"d": errors.New("write refused")}
	h := newHarness(t, channel, 2, 0)

	summary, err := h.runner(t).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, "p2", h.savedToken(t))
	assert.Equal(t, "p2", summary.ResumeToken)
	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, []string{"c"}, channel.written)

	// Rerunning is safe: the already rewritten item is a no-op
	channel.writeErr = nil
	summary, err = h.runner(t).Run(context.Background())
	require.NoError(t, err)
	assert.True(t, summary.Drained)
	assert.Equal(t, []string{"c", "d"}, channel.written)
}

func TestFailedPageIsReportedAsUnfinished(t *testing.T) {
	channel := newFakeChannel(map[string]string{"a": oldInvite, "b": oldInvite}, "a", "b")
	channel.writeErr = map[string]error{"b": errors.New("write refused")}
	h := newHarness(t, channel, 2, 0)

	summary, err := h.runner(t).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, summary.Processed)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 2, summary.Unfinished)
	assert.Contains(t, summary.String(), "2 more on an unfinished page will be redone.")
	assert.False(t, h.store.Exists())
}

func TestCheckpointSaveFailureIsFatal(t *testing.T) {
	channel := newFakeChannel(map[string]string{"a": oldInvite, "b": "x", "c": "y"}, "a", "b", "c")
	h := newHarness(t, channel, 2, 2)
	cp := &recordingCheckpoint{saveErr: errors.New("disk full")}

	rw, err := mutator.NewRewriter(h.cfg.Rewrite.Targets, h.cfg.Rewrite.Replacement)
	require.NoError(t, err)
	r := New(h.cfg, channel, mutator.New(channel, h.backup, rw, nil, logger.NewNopLogger()), cp, logger.NewNopLogger())

	summary, err := r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save checkpoint")
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, []string{"p2"}, cp.saved)
	require.NotNil(t, summary)
	assert.False(t, summary.Drained)
	assert.Equal(t, "p2", summary.ResumeToken)
}

func TestBackupFailureStopsBeforeAnyWrite(t *testing.T) {
	channel := newFakeChannel(map[string]string{"a": oldInvite, "b": oldInvite}, "a", "b")
	h := newHarness(t, channel, 2, 0)

	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	backupLog, err := backup.NewLog(filepath.Join(blocker, "backup.csv"), logger.NewNopLogger())
	require.NoError(t, err)
	h.backup = backupLog

	summary, err := h.runner(t).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errs.IsType(err, errs.ErrorTypeStorage))
	assert.Empty(t, channel.written)
	assert.Zero(t, summary.Updated)
	assert.Zero(t, summary.BackedUp)
	assert.False(t, h.store.Exists())
}

func TestCancelledContextSavesResumePoint(t *testing.T) {
	channel := newFakeChannel(map[string]string{"a": "x", "b": "y"}, "a", "b")
	h := newHarness(t, channel, 1, 0)
	require.NoError(t, h.store.Save("p1"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := h.runner(t).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, summary.Processed)
	assert.Equal(t, "p1", h.savedToken(t))
}

func TestCheckpointLoadFailure(t *testing.T) {
	channel := newFakeChannel(map[string]string{})
	h := newHarness(t, channel, 2, 0)

	r := New(h.cfg, channel, &failingMutator{}, badCheckpoint{}, logger.NewNopLogger())
	summary, err := r.Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, summary)
	assert.Empty(t, channel.listed)
}

func TestReporterAndRunID(t *testing.T) {
	channel := newFakeChannel(map[string]string{"a": oldInvite, "b": "x", "c": "y"}, "a", "b", "c")
	h := newHarness(t, channel, 2, 0)
	rep := &recordingReporter{}
	log := logger.NewTestLogger()

	rw, err := mutator.NewRewriter(h.cfg.Rewrite.Targets, h.cfg.Rewrite.Replacement)
	require.NoError(t, err)
	r := New(h.cfg, channel, mutator.New(channel, h.backup, rw, nil, log), h.store, log)
	r.SetReporter(rep)

	summary, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, summary.RunID, rep.runID)
	assert.Equal(t, "UUfake", rep.collection)
	assert.Equal(t, []int{2, 3}, rep.processed)
	assert.Same(t, summary, rep.finished)
	assert.NotEmpty(t, summary.RunID)

	batches := 0
	for _, msg := range log.GetMessages() {
		if msg.Message == "Batch processed" {
			batches++
			assert.Equal(t, summary.RunID, msg.Fields["run_id"])
		}
	}
	assert.Equal(t, 2, batches)
}

type recordingReporter struct {
	runID      string
	collection string
	processed  []int
	finished   *models.Summary
}

func (r *recordingReporter) Start(runID, collectionID, startToken string, ceiling int) {
	r.runID = runID
	r.collection = collectionID
}

func (r *recordingReporter) Batch(page int, p models.Page, result models.BatchResult, processed int) {
	r.processed = append(r.processed, processed)
}

func (r *recordingReporter) Finish(summary *models.Summary) {
	r.finished = summary
}

type failingMutator struct{}

func (failingMutator) Apply(ctx context.Context, ids []string, simulate bool) (models.BatchResult, error) {
	return models.BatchResult{}, errors.New("unexpected call")
}

type recordingCheckpoint struct {
	token   string
	saveErr error
	saved   []string
}

func (c *recordingCheckpoint) Load() (string, error) {
	return c.token, nil
}

func (c *recordingCheckpoint) Save(token string) error {
	c.saved = append(c.saved, token)
	return c.saveErr
}

type badCheckpoint struct{}

func (badCheckpoint) Load() (string, error) {
	return "", errs.New(errs.ErrorTypeStorage, 0, "unreadable")
}

func (badCheckpoint) Save(token string) error {
	return errors.New("unexpected call")
}
