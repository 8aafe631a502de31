package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readinglog/internal/scheduler"
	"github.com/mrlokans/readinglog/internal/settingsstore"
)

// SettingsController edits the runtime export settings.
type SettingsController struct {
	settingsStore ExportSettingsStore
	scheduler     ExportRunner
	journal       Journal
}

func NewSettingsController(store ExportSettingsStore, runner ExportRunner, journal Journal) *SettingsController {
	return &SettingsController{
		settingsStore: store,
		scheduler:     runner,
		journal:       journal,
	}
}

// ExportSettingsRequest overrides individual fields; omitted fields keep
// their current value.
type ExportSettingsRequest struct {
	Enabled  *bool   `json:"enabled"`
	Dir      *string `json:"dir"`
	Schedule *string `json:"schedule"`
}

type ExportRunResponse struct {
	BooksProcessed int      `json:"books_processed"`
	BooksFailed    int      `json:"books_failed"`
	SessionsListed int      `json:"sessions_listed"`
	Files          []string `json:"files"`
}

// GetExport handles GET /api/settings/export
func (sc *SettingsController) GetExport(c *gin.Context) {
	if sc.settingsStore == nil {
		respondUnavailable(c, "settings store")
		return
	}
	info := sc.settingsStore.GetExportConfigInfo()
	if sc.scheduler != nil {
		if next := sc.scheduler.GetNextRunTime(); next != nil {
			info.NextRun = next
		}
	}
	c.JSON(http.StatusOK, info)
}

// UpdateExport handles PUT /api/settings/export
func (sc *SettingsController) UpdateExport(c *gin.Context) {
	if sc.settingsStore == nil {
		respondUnavailable(c, "settings store")
		return
	}

	var req ExportSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid JSON: "+err.Error())
		return
	}
	if req.Dir != nil && strings.ContainsRune(*req.Dir, 0) {
		respondBadRequest(c, "invalid dir")
		return
	}

	update := settingsstore.ExportUpdate{
		Enabled:  req.Enabled,
		Dir:      req.Dir,
		Schedule: req.Schedule,
	}
	if err := sc.settingsStore.UpdateExportConfig(update); err != nil {
		if errors.Is(err, settingsstore.ErrInvalidSchedule) {
			respondBadRequest(c, err.Error())
			return
		}
		respondInternalError(c, err, "update export settings")
		return
	}

	sc.recordChange("settings.export.update", req)
	sc.reschedule(c)
	sc.GetExport(c)
}

// ClearExport handles DELETE /api/settings/export
func (sc *SettingsController) ClearExport(c *gin.Context) {
	if sc.settingsStore == nil {
		respondUnavailable(c, "settings store")
		return
	}
	if err := sc.settingsStore.ClearExportConfig(); err != nil {
		respondInternalError(c, err, "clear export settings")
		return
	}

	sc.recordChange("settings.export.clear", gin.H{})
	sc.reschedule(c)
	sc.GetExport(c)
}

// RunExport handles POST /api/settings/export/run
// The export runs in the background unless ?wait=true is given.
func (sc *SettingsController) RunExport(c *gin.Context) {
	if sc.scheduler == nil {
		respondUnavailable(c, "export scheduler")
		return
	}

	if !parseBoolQuery(c, "wait", false) {
		sc.scheduler.RunNow()
		respondAccepted(c, "export started", nil)
		return
	}

	result, err := sc.scheduler.Run()
	switch {
	case errors.Is(err, scheduler.ErrExportRunning):
		respondError(c, http.StatusConflict, "export_running", err.Error())
		return
	case errors.Is(err, scheduler.ErrExportNotConfigured):
		respondBadRequest(c, err.Error())
		return
	case err != nil:
		respondInternalError(c, err, "run export")
		return
	}

	files := result.Files
	if files == nil {
		files = []string{}
	}
	c.JSON(http.StatusOK, ExportRunResponse{
		BooksProcessed: result.BooksProcessed,
		BooksFailed:    result.BooksFailed,
		SessionsListed: result.SessionsListed,
		Files:          files,
	})
}

func (sc *SettingsController) reschedule(c *gin.Context) {
	if sc.scheduler == nil {
		return
	}
	if err := sc.scheduler.Reschedule(context.WithoutCancel(c.Request.Context())); err != nil {
		log.Printf("Export scheduler: reschedule failed: %v", err)
	}
}

func (sc *SettingsController) recordChange(action string, payload any) {
	if sc.journal == nil {
		return
	}
	if _, err := sc.journal.Record(action, payload); err != nil {
		log.Printf("Audit: failed to record %s: %v", action, err)
	}
}
