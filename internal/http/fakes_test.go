package http

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/readinglog/internal/entities"
	"github.com/mrlokans/readinglog/internal/exporters"
	"github.com/mrlokans/readinglog/internal/metadata"
	"github.com/mrlokans/readinglog/internal/reading"
	"github.com/mrlokans/readinglog/internal/settingsstore"
	"github.com/mrlokans/readinglog/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestStore(t *testing.T) (*reading.Store, *testClock) {
	t.Helper()
	clock := &testClock{t: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	store := reading.NewStore(storage.NewMemorySlot(), reading.WithClock(clock.Now))
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return store, clock
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// stateResponse mirrors StateView without the embedded decoders of the
// entity types, which would swallow the derived fields.
type stateResponse struct {
	TBRBooks []struct {
		WorkKey         string   `json:"workKey"`
		Title           string   `json:"title"`
		Authors         []string `json:"authors"`
		CoverURL        string   `json:"coverUrl"`
		ProgressPercent int      `json:"progressPercent"`
	} `json:"tbrBooks"`
	CurrentlyReading *struct {
		WorkKey         string   `json:"workKey"`
		Authors         []string `json:"authors"`
		CurrentPage     int      `json:"currentPage"`
		TotalPages      *int     `json:"totalPages"`
		ProgressPercent int      `json:"progressPercent"`
		StartedAt       string   `json:"startedAt"`
	} `json:"currentlyReading"`
	FinishedBooks   []entities.FinishedBook   `json:"finishedBooks"`
	ReadingSessions []entities.ReadingSession `json:"readingSessions"`
	Today           string                    `json:"today"`
	Loading         bool                      `json:"loading"`
}

type fakeJournal struct {
	mu      sync.Mutex
	actions []string
}

func (j *fakeJournal) Record(action string, payload any) (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.actions = append(j.actions, action)
	return fmt.Sprintf("%d.json", len(j.actions)), nil
}

func (j *fakeJournal) Actions() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.actions...)
}

type fakeQueue struct {
	mu       sync.Mutex
	tasks    []backlite.Task
	statuses map[string]backlite.TaskStatus
	err      error
}

func (q *fakeQueue) Enqueue(task backlite.Task) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return "", q.err
	}
	q.tasks = append(q.tasks, task)
	return fmt.Sprintf("task-%d", len(q.tasks)), nil
}

func (q *fakeQueue) Status(ctx context.Context, taskID string) (backlite.TaskStatus, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if status, ok := q.statuses[taskID]; ok {
		return status, nil
	}
	return backlite.TaskStatusNotFound, nil
}

func (q *fakeQueue) Tasks() []backlite.Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]backlite.Task(nil), q.tasks...)
}

type fakeCatalog struct {
	results []metadata.SearchResult
	details *metadata.Details
	err     error

	lastQuery   string
	lastLimit   int
	lastEdition string
}

func (f *fakeCatalog) Search(ctx context.Context, query string, limit int) ([]metadata.SearchResult, error) {
	f.lastQuery, f.lastLimit = query, limit
	return f.results, f.err
}

func (f *fakeCatalog) Details(ctx context.Context, workKey, editionKey string) (*metadata.Details, error) {
	f.lastEdition = editionKey
	if f.err != nil {
		return nil, f.err
	}
	return f.details, nil
}

type fakeCovers struct {
	path string
	err  error
}

func (f *fakeCovers) GetCover(ctx context.Context, workKey, coverURL string) (string, error) {
	return f.path, f.err
}

type fakeExportSettings struct {
	info    settingsstore.ExportConfigInfo
	updates []settingsstore.ExportUpdate
	cleared bool
	err     error
}

func (f *fakeExportSettings) GetExportConfigInfo() settingsstore.ExportConfigInfo {
	return f.info
}

func (f *fakeExportSettings) UpdateExportConfig(update settingsstore.ExportUpdate) error {
	if f.err != nil {
		return f.err
	}
	f.updates = append(f.updates, update)
	if update.Dir != nil {
		f.info.Dir = *update.Dir
		f.info.DirSource = settingsstore.SourceDatabase
	}
	if update.Enabled != nil {
		f.info.Enabled = *update.Enabled
	}
	return nil
}

func (f *fakeExportSettings) ClearExportConfig() error {
	f.cleared = true
	return nil
}

type fakeRunner struct {
	mu          sync.Mutex
	rescheduled int
	ranNow      int
	result      exporters.ExportResult
	err         error
	next        *time.Time
}

func (f *fakeRunner) Reschedule(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rescheduled++
	return nil
}

func (f *fakeRunner) RunNow() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ranNow++
}

func (f *fakeRunner) Run() (exporters.ExportResult, error) {
	return f.result, f.err
}

func (f *fakeRunner) GetNextRunTime() *time.Time {
	return f.next
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, "body: %s", w.Body.String())
}
