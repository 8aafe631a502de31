package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readinglog/internal/database"
	"github.com/mrlokans/readinglog/internal/reading"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Loading bool              `json:"loading"`
	Checks  map[string]string `json:"checks"`
}

type HealthController struct {
	db      *database.Database
	store   *reading.Store
	version string
}

func NewHealthController(db *database.Database, store *reading.Store, version string) *HealthController {
	return &HealthController{
		db:      db,
		store:   store,
		version: version,
	}
}

func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	// Check database connectivity
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "not configured"
	}

	// Writer failures degrade the storage check without failing health.
	loading := false
	if h.store != nil {
		loading = h.store.Loading()
		ws := h.store.WriterStatus()
		if ws.LastError != "" {
			checks["storage"] = "degraded: " + ws.LastError
		} else {
			checks["storage"] = "ok"
		}
	}

	health := HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Loading: loading,
		Checks:  checks,
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}
