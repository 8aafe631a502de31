package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/readinglog/internal/exporters"
	"github.com/mrlokans/readinglog/internal/scheduler"
	"github.com/mrlokans/readinglog/internal/settingsstore"
)

func setupSettingsRouter(t *testing.T) (*fakeExportSettings, *fakeRunner, *fakeJournal, http.Handler) {
	t.Helper()
	store, _ := newTestStore(t)
	settings := &fakeExportSettings{info: settingsstore.ExportConfigInfo{
		Schedule:       "0 * * * *",
		ScheduleSource: settingsstore.SourceDefault,
	}}
	runner := &fakeRunner{}
	journal := &fakeJournal{}
	router := NewRouter(RouterConfig{
		Store:           store,
		Journal:         journal,
		ExportSettings:  settings,
		ExportScheduler: runner,
	})
	return settings, runner, journal, router
}

func TestSettings_GetExport(t *testing.T) {
	_, runner, _, router := setupSettingsRouter(t)
	next := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	runner.next = &next

	w := doRequest(t, router, "GET", "/api/settings/export", "")
	requireStatus(t, w, http.StatusOK)

	var info settingsstore.ExportConfigInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "0 * * * *", info.Schedule)
	assert.Equal(t, settingsstore.SourceDefault, info.ScheduleSource)
	require.NotNil(t, info.NextRun)
	assert.True(t, next.Equal(*info.NextRun))
}

func TestSettings_UpdateExport(t *testing.T) {
	settings, runner, journal, router := setupSettingsRouter(t)

	w := doRequest(t, router, "PUT", "/api/settings/export", `{"enabled":true,"dir":"/tmp/log"}`)
	requireStatus(t, w, http.StatusOK)

	require.Len(t, settings.updates, 1)
	require.NotNil(t, settings.updates[0].Enabled)
	assert.True(t, *settings.updates[0].Enabled)
	assert.Nil(t, settings.updates[0].Schedule)
	assert.Equal(t, 1, runner.rescheduled)
	assert.Equal(t, []string{"settings.export.update"}, journal.Actions())

	var info settingsstore.ExportConfigInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "/tmp/log", info.Dir)
	assert.Equal(t, settingsstore.SourceDatabase, info.DirSource)
}

func TestSettings_UpdateExportInvalidSchedule(t *testing.T) {
	settings, runner, _, router := setupSettingsRouter(t)
	settings.err = fmt.Errorf("%w %q: bad field", settingsstore.ErrInvalidSchedule, "nope")

	w := doRequest(t, router, "PUT", "/api/settings/export", `{"schedule":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid schedule")
	assert.Equal(t, 0, runner.rescheduled)
}

func TestSettings_ClearExport(t *testing.T) {
	settings, runner, _, router := setupSettingsRouter(t)

	w := doRequest(t, router, "DELETE", "/api/settings/export", "")
	requireStatus(t, w, http.StatusOK)
	assert.True(t, settings.cleared)
	assert.Equal(t, 1, runner.rescheduled)
}

func TestSettings_RunExport(t *testing.T) {
	t.Run("background by default", func(t *testing.T) {
		_, runner, _, router := setupSettingsRouter(t)

		w := doRequest(t, router, "POST", "/api/settings/export/run", "")
		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Equal(t, 1, runner.ranNow)
	})

	t.Run("waits for the result", func(t *testing.T) {
		_, runner, _, router := setupSettingsRouter(t)
		runner.result = exporters.ExportResult{BooksProcessed: 2, Files: []string{"reading-log.md"}}

		w := doRequest(t, router, "POST", "/api/settings/export/run?wait=true", "")
		requireStatus(t, w, http.StatusOK)

		var resp ExportRunResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.BooksProcessed)
		assert.Equal(t, []string{"reading-log.md"}, resp.Files)
	})

	t.Run("maps scheduler errors", func(t *testing.T) {
		tests := []struct {
			err  error
			want int
		}{
			{scheduler.ErrExportRunning, http.StatusConflict},
			{scheduler.ErrExportNotConfigured, http.StatusBadRequest},
			{fmt.Errorf("disk full"), http.StatusInternalServerError},
		}
		for _, tt := range tests {
			_, runner, _, router := setupSettingsRouter(t)
			runner.err = tt.err

			w := doRequest(t, router, "POST", "/api/settings/export/run?wait=1", "")
			assert.Equal(t, tt.want, w.Code, tt.err.Error())
		}
	})
}
