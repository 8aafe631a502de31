package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readinglog/internal/reading"
)

// CoversController handles book cover requests.
type CoversController struct {
	cache CoverStore
	store *reading.Store
}

// NewCoversController creates a new CoversController.
func NewCoversController(cache CoverStore, store *reading.Store) *CoversController {
	return &CoversController{
		cache: cache,
		store: store,
	}
}

// GetCover serves a cached book cover image.
// GET /covers/:workKey
func (cc *CoversController) GetCover(c *gin.Context) {
	workKey, ok := parseWorkKeyParam(c, "workKey")
	if !ok {
		return
	}

	book, _, found := cc.store.Lookup(workKey)
	if !found || book.CoverURL == "" {
		c.Status(http.StatusNotFound)
		return
	}

	if cc.cache == nil {
		c.Redirect(http.StatusTemporaryRedirect, book.CoverURL)
		return
	}

	// Get cached cover (will fetch if not cached)
	cachePath, err := cc.cache.GetCover(c.Request.Context(), book.WorkKey, book.CoverURL)
	if err != nil || cachePath == "" {
		// Fallback: redirect to original URL
		c.Redirect(http.StatusTemporaryRedirect, book.CoverURL)
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.File(cachePath)
}
