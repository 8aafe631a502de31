package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/readinglog/internal/config"
	"github.com/mrlokans/readinglog/internal/entities"
	"github.com/mrlokans/readinglog/internal/entrypoint"
	"github.com/mrlokans/readinglog/internal/exporters"
	"github.com/mrlokans/readinglog/internal/metadata"
	"github.com/mrlokans/readinglog/internal/reading"
	"github.com/mrlokans/readinglog/internal/scheduler"
	"github.com/mrlokans/readinglog/internal/storage"
)

type fakeCatalog struct {
	results []metadata.SearchResult
	details map[string]*metadata.Details
	err     error
	queries []string
}

func (f *fakeCatalog) Search(ctx context.Context, query string, limit int) ([]metadata.SearchResult, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.results) > limit {
		return f.results[:limit], nil
	}
	return f.results, nil
}

func (f *fakeCatalog) Details(ctx context.Context, workKey, editionKey string) (*metadata.Details, error) {
	if f.err != nil {
		return nil, f.err
	}
	d, ok := f.details[workKey]
	if !ok {
		return nil, metadata.ErrNotFound
	}
	return d, nil
}

type testApp struct {
	*app
	fake   *fakeCatalog
	served int
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	cfg := config.NewConfig()
	cfg.Database.Driver = config.DatabaseDriverSQLite
	cfg.Database.Path = filepath.Join(t.TempDir(), "readinglog.db")
	cfg.Database.LogLevel = "silent"
	cfg.Storage.Backend = config.StorageBackendDatabase
	cfg.Storage.Key = "reading_state"
	cfg.Reading.Timezone = "UTC"
	cfg.Reading.ActivityDays = 30

	ta := &testApp{fake: &fakeCatalog{}}
	ta.app = newApp(cfg, "test", "abc123")
	ta.app.catalog = func(config.Catalog) catalogClient { return ta.fake }
	ta.app.serve = func(*config.Config, string) { ta.served++ }
	return ta
}

func (ta *testApp) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := ta.rootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (ta *testApp) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := ta.run(t, args...)
	require.NoError(t, err, "readinglog %v", args)
	return out
}

func TestRoot_ServesByDefault(t *testing.T) {
	ta := newTestApp(t)

	ta.mustRun(t)
	ta.mustRun(t, "serve")

	assert.Equal(t, 2, ta.served)
}

func TestRoot_UnknownCommand(t *testing.T) {
	ta := newTestApp(t)

	_, err := ta.run(t, "shelve")
	require.Error(t, err)
	assert.Equal(t, 0, ta.served)
}

func TestRoot_InvalidTimezone(t *testing.T) {
	ta := newTestApp(t)

	_, err := ta.run(t, "--timezone", "Mars/Olympus", "status")
	assert.ErrorContains(t, err, "invalid timezone")
}

func TestTBR_AddListRemove(t *testing.T) {
	ta := newTestApp(t)

	out := ta.mustRun(t, "tbr", "add", "OL1W", "--title", "Dune", "--author", "Frank Herbert", "--pages", "412")
	assert.Contains(t, out, "Queued Dune by Frank Herbert (1 to be read)")

	out = ta.mustRun(t, "tbr", "add", "/works/OL2W", "--title", "Emma", "--author", "Jane Austen")
	assert.Contains(t, out, "(2 to be read)")

	out = ta.mustRun(t, "tbr", "list")
	assert.Regexp(t, `1\s+OL2W\s+Emma\s+Jane Austen`, out)
	assert.Regexp(t, `2\s+OL1W\s+Dune\s+Frank Herbert`, out)

	out = ta.mustRun(t, "tbr", "remove", "OL1W")
	assert.Contains(t, out, "Removed OL1W (1 to be read)")

	out = ta.mustRun(t, "tbr", "remove", "OL1W")
	assert.Contains(t, out, "OL1W is not queued")
}

func TestTBR_AddLooksUpCatalog(t *testing.T) {
	ta := newTestApp(t)
	ta.fake.details = map[string]*metadata.Details{
		"OL2W": {WorkKey: "OL2W", Title: "Emma", Authors: entities.Authors{"Jane Austen"}, NumberOfPages: 474},
	}

	out := ta.mustRun(t, "tbr", "add", "/works/OL2W")
	assert.Contains(t, out, "Queued Emma by Jane Austen")

	_, err := ta.run(t, "tbr", "add", "OL404W")
	assert.ErrorIs(t, err, metadata.ErrNotFound)
}

func TestReadingFlow(t *testing.T) {
	ta := newTestApp(t)
	ta.mustRun(t, "tbr", "add", "OL1W", "--title", "Dune", "--pages", "400")

	out := ta.mustRun(t, "start", "OL1W")
	assert.Contains(t, out, "Now reading Dune by Unknown author  p. 0/400 (0%)")

	out = ta.mustRun(t, "progress", "50")
	assert.Contains(t, out, "p. 50/400 (12%)")
	assert.Contains(t, out, "(+50 today)")

	out = ta.mustRun(t, "progress", "40")
	assert.Contains(t, out, "p. 40/400 (10%)")
	assert.NotContains(t, out, "today)")

	out = ta.mustRun(t, "status")
	assert.Contains(t, out, "Dune by Unknown author  p. 40/400 (10%)  [OL1W]")
	assert.Contains(t, out, "To be read (0)")
	assert.Regexp(t, `Today \(\d{4}-\d{2}-\d{2}\): 50 pages`, out)

	out = ta.mustRun(t, "finish", "--rating", "4.5", "--notes", "spice")
	assert.Contains(t, out, "Finished Dune by Unknown author (1 books finished)")

	out = ta.mustRun(t, "status")
	assert.Contains(t, out, "(nothing)")
	assert.Contains(t, out, "rated 4.5")
}

func TestProgress_Errors(t *testing.T) {
	ta := newTestApp(t)

	_, err := ta.run(t, "progress", "10")
	assert.ErrorIs(t, err, errNoCurrentBook)

	_, err = ta.run(t, "finish")
	assert.ErrorIs(t, err, errNoCurrentBook)

	_, err = ta.run(t, "progress", "ten")
	assert.ErrorContains(t, err, "invalid page count")
}

func TestProgress_TotalPages(t *testing.T) {
	ta := newTestApp(t)
	ta.mustRun(t, "start", "OL1W", "--title", "Dune")

	out := ta.mustRun(t, "progress", "100", "--total", "200")
	assert.Contains(t, out, "p. 100/200 (50%)")
}

func TestSession(t *testing.T) {
	ta := newTestApp(t)

	out := ta.mustRun(t, "session", "20", "--book", "/works/OL9W", "--date", "2026-01-02")
	assert.Contains(t, out, "Logged 20 pages of OL9W on 2026-01-02")

	_, err := ta.run(t, "session", "5")
	assert.ErrorIs(t, err, errNoCurrentBook)

	_, err = ta.run(t, "session", "0", "--book", "OL9W")
	assert.ErrorContains(t, err, "must be positive")

	_, err = ta.run(t, "session", "5", "--book", "OL9W", "--date", "02/01/2026")
	assert.ErrorContains(t, err, "invalid date")

	ta.mustRun(t, "start", "OL1W", "--title", "Dune")
	out = ta.mustRun(t, "session", "7")
	assert.Contains(t, out, "Logged 7 pages of OL1W")
}

func TestStats(t *testing.T) {
	ta := newTestApp(t)
	ta.mustRun(t, "start", "OL1W", "--title", "Dune", "--pages", "400")
	ta.mustRun(t, "progress", "30")

	out := ta.mustRun(t, "stats", "--days", "7")
	assert.Contains(t, out, "30 total, 30 last 7 days, 30 last 30 days")
	assert.Regexp(t, `Streak\s+1 current, 1 longest`, out)
	assert.Contains(t, out, "Last 7 days")
	assert.Regexp(t, `\d{4}-\d{2}-\d{2}\s+30`, out)

	out = ta.mustRun(t, "stats", "--days", "3", "--fill")
	assert.Contains(t, out, "Last 3 days")

	_, err := ta.run(t, "stats", "--days", "0")
	assert.ErrorContains(t, err, "days must be positive")
}

func TestSearch(t *testing.T) {
	ta := newTestApp(t)
	ta.fake.results = []metadata.SearchResult{
		{WorkKey: "OL1W", Title: "Dune", Author: "Frank Herbert", FirstPublishYear: 1965},
		{WorkKey: "OL2W", Title: "Dune Messiah", Author: "Frank Herbert"},
	}

	out := ta.mustRun(t, "search", "dune", "herbert", "--limit", "1")
	assert.Regexp(t, `OL1W\s+Dune\s+Frank Herbert\s+1965`, out)
	assert.NotContains(t, out, "Messiah")
	assert.Equal(t, []string{"dune herbert"}, ta.fake.queries)

	_, err := ta.run(t, "search", "dune", "--limit", "0")
	assert.ErrorContains(t, err, "limit must be between")

	ta.fake.err = errors.New("catalog offline")
	_, err = ta.run(t, "search", "dune")
	assert.ErrorContains(t, err, "catalog offline")
}

func TestSearch_NoResults(t *testing.T) {
	ta := newTestApp(t)

	out := ta.mustRun(t, "search", "nothing")
	assert.Contains(t, out, `No books found for "nothing"`)
}

func TestExport(t *testing.T) {
	ta := newTestApp(t)
	ta.mustRun(t, "start", "OL1W", "--title", "Dune", "--author", "Frank Herbert")
	ta.mustRun(t, "finish")

	dir := t.TempDir()
	out := ta.mustRun(t, "export", "--dir", dir)
	assert.Contains(t, out, "Exported 1 finished books (0 failed)")
	assert.FileExists(t, filepath.Join(dir, exporters.IndexFileName))
}

func TestExport_NotConfigured(t *testing.T) {
	if os.Getenv("EXPORT_DIR") != "" {
		t.Skip("EXPORT_DIR is set in the environment")
	}
	ta := newTestApp(t)

	_, err := ta.run(t, "export")
	assert.ErrorIs(t, err, scheduler.ErrExportNotConfigured)
}

func TestStateFileFlag(t *testing.T) {
	ta := newTestApp(t)
	path := filepath.Join(t.TempDir(), "state.json")

	ta.mustRun(t, "--state-file", path, "tbr", "add", "OL1W", "--title", "Dune")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"workKey":"OL1W"`)

	out := ta.mustRun(t, "--state-file", path, "status")
	assert.Contains(t, out, "1. Dune by Unknown author  [OL1W]")
}

func TestWriteFailure_FailsCommand(t *testing.T) {
	ta := newTestApp(t)
	slot := storage.NewMemorySlot()
	ta.app.open = func(ctx context.Context, cfg *config.Config) (*entrypoint.Runtime, error) {
		rt, err := entrypoint.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		require.NoError(t, rt.Store.Close(ctx))
		rt.Store = reading.NewStore(slot)
		rt.Store.Reload(ctx)
		return rt, nil
	}

	ta.mustRun(t, "status")

	slot.SetFailures(nil, errors.New("disk full"))
	_, err := ta.run(t, "tbr", "add", "OL1W", "--title", "Dune")
	require.ErrorIs(t, err, errNotSaved)
	assert.ErrorContains(t, err, "disk full")

	// Reads never submit a write, so an earlier failure does not leak into them.
	ta.mustRun(t, "status")
}
