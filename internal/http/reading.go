package http

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readinglog/internal/entities"
	"github.com/mrlokans/readinglog/internal/metadata"
	"github.com/mrlokans/readinglog/internal/reading"
	"github.com/mrlokans/readinglog/internal/tasks"
)

// Journal actions for accepted mutations.
const (
	ActionAddToTBR      = "tbr.add"
	ActionRemoveFromTBR = "tbr.remove"
	ActionStartReading  = "current.set"
	ActionProgress      = "current.progress"
	ActionFinish        = "current.finish"
	ActionSession       = "session.add"
)

// ReadingController exposes the reading store.
type ReadingController struct {
	store   *reading.Store
	journal Journal
	tasks   TaskQueue

	// cacheCovers is set when a cover_cache queue is registered.
	cacheCovers bool
}

func NewReadingController(store *reading.Store, journal Journal, taskQueue TaskQueue, cacheCovers bool) *ReadingController {
	return &ReadingController{
		store:       store,
		journal:     journal,
		tasks:       taskQueue,
		cacheCovers: cacheCovers,
	}
}

func (rc *ReadingController) respondState(c *gin.Context, state entities.ReadingState) {
	c.JSON(http.StatusOK, newStateView(state, rc.store.Today(), rc.store.Loading()))
}

// GetState handles GET /api/reading
func (rc *ReadingController) GetState(c *gin.Context) {
	rc.respondState(c, rc.store.State())
}

// Reload handles POST /api/reading/reload
func (rc *ReadingController) Reload(c *gin.Context) {
	rc.respondState(c, rc.store.Reload(c.Request.Context()))
}

// GetShelf handles GET /api/reading/shelves/:status
func (rc *ReadingController) GetShelf(c *gin.Context) {
	status := entities.ParseShelfStatus(strings.ToLower(c.Param("status")))
	books, ok := rc.store.Shelf(status)
	if !ok {
		respondBadRequest(c, "status must be one of tbr, reading, finished")
		return
	}
	c.JSON(http.StatusOK, ShelfView{Status: status, Books: newBookViews(books)})
}

// AddToTBR handles POST /api/reading/tbr
func (rc *ReadingController) AddToTBR(c *gin.Context) {
	body, book, ok := rc.bindBook(c)
	if !ok {
		return
	}
	state := rc.store.AddToTBR(book)
	rc.record(ActionAddToTBR, body)
	rc.scheduleEnrichment(book.WorkKey)
	rc.respondState(c, state)
}

// RemoveFromTBR handles DELETE /api/reading/tbr/:workKey
func (rc *ReadingController) RemoveFromTBR(c *gin.Context) {
	workKey, ok := parseWorkKeyParam(c, "workKey")
	if !ok {
		return
	}
	state := rc.store.RemoveFromTBR(workKey)
	rc.record(ActionRemoveFromTBR, gin.H{"workKey": workKey})
	rc.respondState(c, state)
}

// SetCurrent handles PUT /api/reading/current
func (rc *ReadingController) SetCurrent(c *gin.Context) {
	body, book, ok := rc.bindBook(c)
	if !ok {
		return
	}
	state := rc.store.SetCurrentlyReading(book)
	rc.record(ActionStartReading, body)
	rc.scheduleEnrichment(book.WorkKey)
	rc.respondState(c, state)
}

// UpdateProgress handles PATCH /api/reading/current/progress
func (rc *ReadingController) UpdateProgress(c *gin.Context) {
	var req progressRequest
	body, ok := bindLoose(c, &req)
	if !ok {
		return
	}
	if rc.store.State().CurrentlyReading == nil {
		respondError(c, http.StatusConflict, "no_current_book", "no book is currently being read")
		return
	}

	state := rc.store.UpdateProgress(reading.ProgressUpdate{
		CurrentPage: looseIntPtr(req.CurrentPage),
		TotalPages:  looseIntPtr(req.TotalPages),
	})
	rc.record(ActionProgress, body)
	rc.respondState(c, state)
}

// Finish handles POST /api/reading/current/finish
func (rc *ReadingController) Finish(c *gin.Context) {
	var req finishRequest
	body, ok := bindLoose(c, &req)
	if !ok {
		return
	}
	if rc.store.State().CurrentlyReading == nil {
		respondError(c, http.StatusConflict, "no_current_book", "no book is currently being read")
		return
	}

	input := reading.FinishInput{Notes: looseString(req.Notes)}
	if rating, ok := entities.ParseLooseFloat(req.Rating); ok {
		input.Rating = &rating
	}
	state := rc.store.FinishCurrentBook(input)
	rc.record(ActionFinish, body)
	rc.respondState(c, state)
}

// AddSession handles POST /api/reading/sessions
func (rc *ReadingController) AddSession(c *gin.Context) {
	var req sessionRequest
	body, ok := bindLoose(c, &req)
	if !ok {
		return
	}

	input := reading.SessionInput{WorkKey: entities.CleanWorkKey(req.WorkKey)}
	if input.WorkKey == "" {
		respondBadRequest(c, "workKey is required")
		return
	}
	if pages, ok := entities.ParseLooseInt(req.PagesRead); ok {
		input.PagesRead = pages
	}
	if req.Date != "" {
		date, err := entities.ParseDate(req.Date)
		if err != nil {
			respondBadRequest(c, "date must be YYYY-MM-DD")
			return
		}
		input.Date = date
	}

	state := rc.store.AddReadingSession(input)
	rc.record(ActionSession, body)
	rc.respondState(c, state)
}

// bindBook reads a book body and requires a work key.
func (rc *ReadingController) bindBook(c *gin.Context) (json.RawMessage, entities.Book, bool) {
	body, err := c.GetRawData()
	if err != nil || len(strings.TrimSpace(string(body))) == 0 {
		respondBadRequest(c, "request body is required")
		return nil, entities.Book{}, false
	}
	book, err := decodeBook(body)
	if err != nil {
		respondBadRequest(c, "invalid book: "+err.Error())
		return nil, entities.Book{}, false
	}
	if book.WorkKey == "" {
		respondBadRequest(c, "workKey is required")
		return nil, entities.Book{}, false
	}
	return body, book, true
}

// bindLoose decodes an optional JSON body into req. An empty body leaves
// req untouched.
func bindLoose(c *gin.Context, req any) (json.RawMessage, bool) {
	body, err := c.GetRawData()
	if err != nil {
		respondBadRequest(c, "failed to read request body")
		return nil, false
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return json.RawMessage("{}"), true
	}
	if err := json.Unmarshal(body, req); err != nil {
		respondBadRequest(c, "invalid JSON: "+err.Error())
		return nil, false
	}
	return body, true
}

func (rc *ReadingController) record(action string, payload any) {
	if rc.journal == nil {
		return
	}
	if _, err := rc.journal.Record(action, payload); err != nil {
		log.Printf("Audit: failed to record %s: %v", action, err)
	}
}

// scheduleEnrichment queues catalog lookups for a freshly shelved book that
// lacks metadata, and a cover download when it has a cover URL.
func (rc *ReadingController) scheduleEnrichment(workKey string) {
	if rc.tasks == nil {
		return
	}
	book, _, found := rc.store.Lookup(workKey)
	if !found {
		return
	}
	if metadata.NeedsEnrichment(book) {
		if _, err := rc.tasks.Enqueue(tasks.EnrichBookTask{WorkKey: book.WorkKey}); err != nil {
			log.Printf("Tasks: failed to enqueue enrichment for %s: %v", book.WorkKey, err)
		}
	}
	if rc.cacheCovers && book.CoverURL != "" {
		if _, err := rc.tasks.Enqueue(tasks.CacheCoverTask{WorkKey: book.WorkKey, CoverURL: book.CoverURL}); err != nil {
			log.Printf("Tasks: failed to enqueue cover caching for %s: %v", book.WorkKey, err)
		}
	}
}
