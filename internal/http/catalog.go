package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readinglog/internal/entities"
	"github.com/mrlokans/readinglog/internal/metadata"
)

const catalogTimeout = 20 * time.Second

// CatalogController proxies catalog lookups so clients get normalized books.
type CatalogController struct {
	client CatalogClient
}

func NewCatalogController(client CatalogClient) *CatalogController {
	return &CatalogController{client: client}
}

type SearchResponse struct {
	Query   string                  `json:"query"`
	Results []metadata.SearchResult `json:"results"`
}

// DetailsResponse pairs the catalog record with the book shape the shelf
// endpoints accept.
type DetailsResponse struct {
	*metadata.Details
	Book entities.Book `json:"book"`
}

// Search handles GET /api/catalog/search?q=&limit=
func (cc *CatalogController) Search(c *gin.Context) {
	if cc.client == nil {
		respondUnavailable(c, "catalog")
		return
	}
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		respondBadRequest(c, "q is required")
		return
	}
	limit, ok := parseIntQuery(c, "limit", 20, 1, 100)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), catalogTimeout)
	defer cancel()

	results, err := cc.client.Search(ctx, query, limit)
	if err != nil {
		respondCatalogError(c, err, "catalog search")
		return
	}
	if results == nil {
		results = []metadata.SearchResult{}
	}
	c.JSON(http.StatusOK, SearchResponse{Query: query, Results: results})
}

// Details handles GET /api/catalog/works/:workKey?editionKey=
func (cc *CatalogController) Details(c *gin.Context) {
	if cc.client == nil {
		respondUnavailable(c, "catalog")
		return
	}
	workKey, ok := parseWorkKeyParam(c, "workKey")
	if !ok {
		return
	}
	editionKey := entities.CleanWorkKey(c.Query("editionKey"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), catalogTimeout)
	defer cancel()

	details, err := cc.client.Details(ctx, workKey, editionKey)
	if err != nil {
		respondCatalogError(c, err, "catalog details")
		return
	}
	c.JSON(http.StatusOK, DetailsResponse{Details: details, Book: details.Book()})
}

// respondCatalogError maps catalog failures onto 404, 504 and 502.
func respondCatalogError(c *gin.Context, err error, op string) {
	log.Printf("Catalog: %s failed: %v", op, err)
	switch {
	case errors.Is(err, metadata.ErrNotFound):
		respondNotFound(c, "work")
	case errors.Is(err, context.DeadlineExceeded):
		respondError(c, http.StatusGatewayTimeout, "catalog_timeout", "catalog did not respond in time")
	default:
		respondError(c, http.StatusBadGateway, "catalog_error", "catalog request failed: "+err.Error())
	}
}
