package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/readinglog/internal/entities"
	"github.com/mrlokans/readinglog/internal/tasks"
)

// TasksController handles task queue management endpoints.
type TasksController struct {
	client TaskQueue
}

// NewTasksController creates a new TasksController.
func NewTasksController(client TaskQueue) *TasksController {
	return &TasksController{client: client}
}

// EnrichRequest selects a single book; without a work key every shelved
// book missing metadata is enriched.
type EnrichRequest struct {
	WorkKey string `json:"workKey"`
}

type TaskResponse struct {
	ID     string `json:"id"`
	Type   string `json:"type,omitempty"`
	Status string `json:"status"`
}

// Enrich handles POST /api/tasks/enrich
func (tc *TasksController) Enrich(c *gin.Context) {
	if tc.client == nil {
		respondUnavailable(c, "task queue")
		return
	}

	var req EnrichRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid JSON: "+err.Error())
			return
		}
	}

	var task backlite.Task = tasks.EnrichShelfTask{}
	taskType := "enrich_shelf"
	if key := entities.CleanWorkKey(req.WorkKey); key != "" {
		task = tasks.EnrichBookTask{WorkKey: key}
		taskType = "enrich_book"
	}

	id, err := tc.client.Enqueue(task)
	if err != nil {
		respondInternalError(c, err, "enqueue "+taskType)
		return
	}

	respondAccepted(c, "task enqueued", TaskResponse{
		ID:     id,
		Type:   taskType,
		Status: tasks.StatusString(backlite.TaskStatusPending),
	})
}

// GetTaskStatus handles GET /api/tasks/:id
// Returns the status of a specific task.
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	if tc.client == nil {
		respondUnavailable(c, "task queue")
		return
	}
	taskID := strings.TrimSpace(c.Param("id"))
	if taskID == "" {
		respondBadRequest(c, "task ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.client.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}
	if status == backlite.TaskStatusNotFound {
		respondNotFound(c, "task")
		return
	}

	c.JSON(http.StatusOK, TaskResponse{
		ID:     taskID,
		Status: tasks.StatusString(status),
	})
}
