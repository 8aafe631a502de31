package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/readinglog/internal/config"
	"github.com/mrlokans/readinglog/internal/entities"
	"github.com/mrlokans/readinglog/internal/metadata"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(filepath.Join(t.TempDir(), "test.db"), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestNewClient(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	client, err := NewClient(dbPath, Config{})
	require.NoError(t, err)
	require.NotNil(t, client)

	_, err = os.Stat(filepath.Join(tmpDir, "test-tasks.db"))
	assert.NoError(t, err, "tasks database should be created")

	assert.NoError(t, client.Close())
}

func TestNewClient_FillsZeroDurations(t *testing.T) {
	def := DefaultConfig()

	client, err := NewClient(filepath.Join(t.TempDir(), "test.db"), Config{Workers: 3})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	got := client.Config()
	assert.Equal(t, 3, got.Workers)
	assert.Equal(t, def.ReleaseAfter, got.ReleaseAfter)
	assert.Equal(t, def.CleanupInterval, got.CleanupInterval)
	assert.Equal(t, def.AuditRetention, got.AuditRetention)

	client2, err := NewClient(filepath.Join(t.TempDir(), "test.db"), Config{ReleaseAfter: time.Minute, CleanupInterval: 2 * time.Minute})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client2.Close() })

	assert.Equal(t, def.Workers, client2.Config().Workers)
	assert.Equal(t, time.Minute, client2.Config().ReleaseAfter)
	assert.Equal(t, 2*time.Minute, client2.Config().CleanupInterval)
}

func TestTasksDBPath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "readinglog-tasks.db"), TasksDBPath(filepath.Join("data", "readinglog.db")))
	assert.Equal(t, "state-tasks", TasksDBPath("state"))
}

func TestClientStartStop(t *testing.T) {
	client := newTestClient(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	time.Sleep(50 * time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	assert.True(t, client.Stop(stopCtx), "stop should succeed gracefully")
}

func TestClientStopWithoutStart(t *testing.T) {
	client := newTestClient(t)
	assert.True(t, client.Stop(context.Background()))
}

type fakeEnricher struct {
	keys   chan string
	result *metadata.EnrichmentResult
	err    error
}

func (f *fakeEnricher) EnrichBook(ctx context.Context, workKey string) (*metadata.EnrichmentResult, error) {
	f.keys <- workKey
	return f.result, f.err
}

func (f *fakeEnricher) EnrichShelf(ctx context.Context) (*metadata.BulkEnrichmentResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &metadata.BulkEnrichmentResult{TotalBooks: 1, Enriched: 1}, nil
}

func TestEnrichBookTaskRuns(t *testing.T) {
	client := newTestClient(t)
	enricher := &fakeEnricher{
		keys:   make(chan string, 1),
		result: &metadata.EnrichmentResult{Book: entities.Book{WorkKey: "OL1W", Title: "Dune"}},
	}
	client.Register(NewEnrichBookQueue(enricher))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	id, err := client.Enqueue(EnrichBookTask{WorkKey: "OL1W"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	select {
	case key := <-enricher.keys:
		assert.Equal(t, "OL1W", key)
	case <-time.After(5 * time.Second):
		t.Fatal("task was not executed within timeout")
	}
}

func TestProcessors(t *testing.T) {
	ctx := context.Background()

	t.Run("enrich book propagates failures", func(t *testing.T) {
		process := EnrichBookProcessor(&fakeEnricher{keys: make(chan string, 1), err: errors.New("catalog down")})
		assert.ErrorContains(t, process(ctx, EnrichBookTask{WorkKey: "OL1W"}), "catalog down")
	})

	t.Run("enrich book without enricher", func(t *testing.T) {
		assert.Error(t, EnrichBookProcessor(nil)(ctx, EnrichBookTask{WorkKey: "OL1W"}))
	})

	t.Run("enrich shelf", func(t *testing.T) {
		assert.NoError(t, EnrichShelfProcessor(&fakeEnricher{})(ctx, EnrichShelfTask{}))
	})

	t.Run("enrich shelf already running is not a failure", func(t *testing.T) {
		process := EnrichShelfProcessor(&fakeEnricher{err: metadata.ErrEnrichmentRunning})
		assert.NoError(t, process(ctx, EnrichShelfTask{}))
	})

	t.Run("cache cover", func(t *testing.T) {
		fetcher := &fakeFetcher{}
		process := CacheCoverProcessor(fetcher)
		require.NoError(t, process(ctx, CacheCoverTask{WorkKey: "OL1W", CoverURL: "https://c/1.jpg"}))
		require.NoError(t, process(ctx, CacheCoverTask{WorkKey: "OL2W"}))
		assert.Equal(t, []string{"OL1W"}, fetcher.keys)

		fetcher.err = errors.New("404")
		assert.Error(t, process(ctx, CacheCoverTask{WorkKey: "OL1W", CoverURL: "https://c/1.jpg"}))
	})

	t.Run("prune audit journal uses fallback retention", func(t *testing.T) {
		pruner := &fakePruner{}
		process := PruneAuditJournalProcessor(pruner, 48*time.Hour)
		require.NoError(t, process(ctx, PruneAuditJournalTask{}))
		require.NoError(t, process(ctx, PruneAuditJournalTask{Retention: time.Hour}))
		assert.Equal(t, []time.Duration{48 * time.Hour, time.Hour}, pruner.calls)
	})
}

type fakeFetcher struct {
	keys []string
	err  error
}

func (f *fakeFetcher) GetCover(ctx context.Context, workKey, coverURL string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.keys = append(f.keys, workKey)
	return "/tmp/" + workKey, nil
}

type fakePruner struct {
	calls []time.Duration
}

func (f *fakePruner) DeleteOldEvents(retention time.Duration) (int64, error) {
	f.calls = append(f.calls, retention)
	return 1, nil
}

func TestTaskConfigs(t *testing.T) {
	cfg := EnrichBookTask{WorkKey: "OL1W"}.Config()
	assert.Equal(t, "enrich_book", cfg.Name)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 2*time.Minute, cfg.Timeout)
	assert.NotNil(t, cfg.Retention)

	assert.Equal(t, "enrich_shelf", EnrichShelfTask{}.Config().Name)
	assert.Equal(t, 1, EnrichShelfTask{}.Config().MaxAttempts)
	assert.Equal(t, "cache_cover", CacheCoverTask{}.Config().Name)
	assert.Equal(t, "prune_audit_journal", PruneAuditJournalTask{}.Config().Name)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "pending", StatusString(backlite.TaskStatusPending))
	assert.Equal(t, "success", StatusString(backlite.TaskStatusSuccess))
	assert.Equal(t, "not_found", StatusString(backlite.TaskStatusNotFound))
}

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(config.Tasks{Workers: 4})
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 15*time.Minute, cfg.ReleaseAfter)
	assert.Equal(t, time.Hour, cfg.CleanupInterval)
	assert.Equal(t, 30*24*time.Hour, cfg.AuditRetention)

	assert.Equal(t, DefaultConfig(), FromConfig(config.Tasks{}))
}
