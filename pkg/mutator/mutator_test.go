package mutator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	errs "ytrelink/pkg/errors"
	"ytrelink/pkg/logger"
	"ytrelink/pkg/models"
)

const (
	oldInvite = "https://discord.gg/4ZgjkRx"
	oldLong   = "https://discord.com/invite/fUKMN3q"
	newInvite = "https://discord.gg/mrJnesCk2Z"
)

// recorder keeps the global order of backup and write calls
type recorder struct {
	events []string
}

type memStore struct {
	rec      *recorder
	texts    map[string]string
	getErr   map[string]error
	writeErr error
	writes   []models.Item
}

func (s *memStore) GetItem(ctx context.Context, id string) (models.Item, error) {
	if err, ok := s.getErr[id]; ok {
		return models.Item{}, err
	}
	text, ok := s.texts[id]
	if !ok {
		return models.Item{}, errs.New(errs.ErrorTypeNotFound, 404, "video %s not found", id)
	}
	return models.Item{ID: id, Text: text}, nil
}

func (s *memStore) UpdateItem(ctx context.Context, item models.Item) error {
	s.rec.events = append(s.rec.events, "write:"+item.ID)
	if s.writeErr != nil {
		return s.writeErr
	}
	s.writes = append(s.writes, item)
	s.texts[item.ID] = item.Text
	return nil
}

type memBackup struct {
	rec     *recorder
	err     error
	records []models.BackupRecord
}

func (b *memBackup) Append(records []models.BackupRecord) error {
	b.rec.events = append(b.rec.events, "backup")
	if b.err != nil {
		return b.err
	}
	b.records = append(b.records, records...)
	return nil
}

type countingPacer struct {
	waits int
}

func (p *countingPacer) Wait(ctx context.Context) error {
	p.waits++
	return nil
}

type fixture struct {
	store  *memStore
	backup *memBackup
	pacer  *countingPacer
	mut    *Mutator
	rec    *recorder
}

func newFixture(t *testing.T, texts map[string]string) *fixture {
	t.Helper()
	rec := &recorder{}
	f := &fixture{
		rec:    rec,
		store:  &memStore{rec: rec, texts: texts},
		backup: &memBackup{rec: rec},
		pacer:  &countingPacer{},
	}
	rw, err := NewRewriter([]string{oldLong, oldInvite}, newInvite)
	require.NoError(t, err)
	f.mut = New(f.store, f.backup, rw, f.pacer, logger.NewNopLogger())
	return f
}

func TestApplyRewritesMatchingItem(t *testing.T) {
	f := newFixture(t, map[string]string{"v1": "join us at " + oldInvite + " today"})

	result, err := f.mut.Apply(context.Background(), []string{"v1"}, false)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 1, result.Fetched)
	require.Len(t, f.store.writes, 1)
	assert.Equal(t, "join us at "+newInvite+" today", f.store.writes[0].Text)
	assert.Equal(t, 1, f.pacer.waits)

	// Backup holds the pre-mutation text
	require.Len(t, f.backup.records, 1)
	assert.Equal(t, "join us at "+oldInvite+" today", f.backup.records[0].Text)
}

func TestApplySimulate(t *testing.T) {
	f := newFixture(t, map[string]string{"v1": "join us at " + oldInvite + " today"})

	result, err := f.mut.Apply(context.Background(), []string{"v1"}, true)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Updated)
	assert.Empty(t, f.store.writes)
	assert.Zero(t, f.pacer.waits)
	assert.Len(t, f.backup.records, 1)
}

func TestApplyNoMatch(t *testing.T) {
	f := newFixture(t, map[string]string{"v1": "nothing to see here"})

	result, err := f.mut.Apply(context.Background(), []string{"v1"}, false)
	require.NoError(t, err)

	assert.Zero(t, result.Updated)
	assert.Empty(t, f.store.writes)
	assert.Zero(t, f.pacer.waits)
	require.Len(t, f.backup.records, 1)
	assert.Equal(t, models.BackupRecord{ID: "v1", Text: "nothing to see here"}, f.backup.records[0])
}

func TestApplySkipsMissingItems(t *testing.T) {
	f := newFixture(t, map[string]string{"v1": oldInvite, "v3": "plain"})

	result, err := f.mut.Apply(context.Background(), []string{"v1", "gone", "v3"}, false)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Missing)
	assert.Equal(t, 2, result.Fetched)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, []models.BackupRecord{{ID: "v1", Text: oldInvite}, {ID: "v3", Text: "plain"}}, f.backup.records)
}

func TestApplyBacksUpBeforeAnyWrite(t *testing.T) {
	f := newFixture(t, map[string]string{"v1": oldInvite, "v2": oldLong, "v3": "plain"})

	_, err := f.mut.Apply(context.Background(), []string{"v1", "v2", "v3"}, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"backup", "write:v1", "write:v2"}, f.rec.events)
}

func TestApplyBackupFailureBlocksWrites(t *testing.T) {
	f := newFixture(t, map[string]string{"v1": oldInvite})
	f.backup.err = errs.New(errs.ErrorTypeStorage, 0, "disk full")

	_, err := f.mut.Apply(context.Background(), []string{"v1"}, false)
	require.Error(t, err)
	assert.True(t, errs.IsType(err, errs.ErrorTypeStorage))
	assert.Empty(t, f.store.writes)
}

func TestApplyFetchErrorIsFatal(t *testing.T) {
	f := newFixture(t, map[string]string{"v1": oldInvite})
	f.store.getErr = map[string]error{"v1": errs.New(errs.ErrorTypeServerError, 503, "backend error")}

	_, err := f.mut.Apply(context.Background(), []string{"v1"}, false)
	require.Error(t, err)
	assert.True(t, errs.IsType(err, errs.ErrorTypeServerError))
	assert.Empty(t, f.rec.events)
}

func TestApplyWriteErrorIsNotRetried(t *testing.T) {
	f := newFixture(t, map[string]string{"v1": oldInvite, "v2": oldInvite})
	boom := errors.New("boom")
	f.store.writeErr = boom

	result, err := f.mut.Apply(context.Background(), []string{"v1", "v2"}, false)
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, result.Updated)
	assert.Equal(t, []string{"backup", "write:v1"}, f.rec.events)
}

func TestApplyIsIdempotent(t *testing.T) {
	f := newFixture(t, map[string]string{"v1": "a " + oldInvite + " b " + oldLong})

	_, err := f.mut.Apply(context.Background(), []string{"v1"}, false)
	require.NoError(t, err)
	once := f.store.texts["v1"]

	result, err := f.mut.Apply(context.Background(), []string{"v1"}, false)
	require.NoError(t, err)

	assert.Zero(t, result.Updated)
	assert.Equal(t, once, f.store.texts["v1"])
	assert.Len(t, f.store.writes, 1)
}
