package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readinglog/internal/entities"
	"github.com/mrlokans/readinglog/internal/reading"
	"github.com/mrlokans/readinglog/internal/stats"
)

const maxActivityDays = 3660

// StatsController serves chart data derived from reading sessions.
type StatsController struct {
	store       *reading.Store
	defaultDays int
}

func NewStatsController(store *reading.Store, defaultDays int) *StatsController {
	if defaultDays <= 0 {
		defaultDays = 30
	}
	return &StatsController{store: store, defaultDays: defaultDays}
}

type ActivityResponse struct {
	From   entities.Date   `json:"from"`
	To     entities.Date   `json:"to"`
	Days   int             `json:"days"`
	Total  int             `json:"total"`
	Points []stats.Point   `json:"points"`
	Books  []stats.Segment `json:"books,omitempty"`
}

type BookActivityResponse struct {
	WorkKey string               `json:"workKey"`
	Shelf   entities.ShelfStatus `json:"shelf,omitempty"`
	Total   int                  `json:"total"`
	Points  []stats.Point        `json:"points"`
}

// Activity handles GET /api/stats/activity?days=&fill=&books=
func (sc *StatsController) Activity(c *gin.Context) {
	days, ok := parseIntQuery(c, "days", sc.defaultDays, 1, maxActivityDays)
	if !ok {
		return
	}
	fill := parseBoolQuery(c, "fill", false)

	state := sc.store.State()
	today := sc.store.Today()
	points := stats.DailyActivity(state.ReadingSessions, today, days)
	if fill {
		points = stats.FillDateGaps(points)
	}

	resp := ActivityResponse{
		From:   today.AddDays(1 - days),
		To:     today,
		Days:   days,
		Total:  totalPages(points),
		Points: nonNilPoints(points),
	}
	if parseBoolQuery(c, "books", false) {
		resp.Books = stats.Segments(state, today, days)
	}
	c.JSON(http.StatusOK, resp)
}

// BookActivity handles GET /api/stats/books/:workKey?fill=
func (sc *StatsController) BookActivity(c *gin.Context) {
	workKey, ok := parseWorkKeyParam(c, "workKey")
	if !ok {
		return
	}

	state := sc.store.State()
	points := stats.BookActivity(state.ReadingSessions, workKey)
	if parseBoolQuery(c, "fill", false) {
		points = stats.FillDateGaps(points)
	}

	c.JSON(http.StatusOK, BookActivityResponse{
		WorkKey: workKey,
		Shelf:   state.ShelfOf(workKey),
		Total:   totalPages(points),
		Points:  nonNilPoints(points),
	})
}

// Summary handles GET /api/stats/summary
func (sc *StatsController) Summary(c *gin.Context) {
	c.JSON(http.StatusOK, stats.Summarize(sc.store.State(), sc.store.Today(), sc.store.Location()))
}

func totalPages(points []stats.Point) int {
	total := 0
	for _, p := range points {
		total += p.Pages
	}
	return total
}

func nonNilPoints(points []stats.Point) []stats.Point {
	if points == nil {
		return []stats.Point{}
	}
	return points
}
