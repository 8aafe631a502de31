package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/mrlokans/readinglog/internal/config"
	"github.com/mrlokans/readinglog/internal/entities"
)

const userAgent = "ReadingLog/1.0 (https://github.com/mrlokans/readinglog)"

// ErrNotFound is returned when the catalog has no record for a key.
var ErrNotFound = errors.New("not found in catalog")

// SearchResult is one catalog hit, shaped for adding to a shelf.
type SearchResult struct {
	WorkKey          string           `json:"workKey"`
	EditionKey       string           `json:"editionKey,omitempty"`
	Title            string           `json:"title"`
	Author           string           `json:"author"`
	Authors          entities.Authors `json:"authors"`
	FirstPublishYear int              `json:"firstPublishYear,omitempty"`
	CoverID          int              `json:"coverId,omitempty"`
	CoverURL         string           `json:"coverUrl,omitempty"`
}

// Book converts the hit into a shelf record.
func (r SearchResult) Book() entities.Book {
	return entities.Book{
		WorkKey:    r.WorkKey,
		EditionKey: r.EditionKey,
		Title:      r.Title,
		Authors:    r.Authors,
		CoverURL:   r.CoverURL,
	}
}

// Details is the metadata of one work, optionally completed by an edition.
type Details struct {
	WorkKey       string           `json:"workKey"`
	EditionKey    string           `json:"editionKey,omitempty"`
	Title         string           `json:"title"`
	Authors       entities.Authors `json:"authors"`
	AuthorKeys    []string         `json:"authorKeys,omitempty"`
	Description   string           `json:"description,omitempty"`
	Excerpts      []string         `json:"excerpts,omitempty"`
	Subjects      []string         `json:"subjects,omitempty"`
	SubjectPeople []string         `json:"subjectPeople,omitempty"`
	Covers        []int            `json:"covers,omitempty"`
	CoverURL      string           `json:"coverUrl,omitempty"`
	NumberOfPages int              `json:"numberOfPages,omitempty"`
	PublishYear   int              `json:"publishYear,omitempty"`
	Publisher     string           `json:"publisher,omitempty"`
	ISBN          string           `json:"isbn,omitempty"`
}

// Book converts the details into the record the reading store accepts.
func (d *Details) Book() entities.Book {
	b := entities.Book{
		WorkKey:    d.WorkKey,
		EditionKey: d.EditionKey,
		Title:      d.Title,
		Authors:    entities.NormalizeAuthors(d.Authors),
		CoverURL:   d.CoverURL,
	}
	if d.NumberOfPages > 0 {
		b.TotalPages = entities.IntPtr(d.NumberOfPages)
	}
	return b
}

// OpenLibraryClient fetches book metadata from the OpenLibrary API.
type OpenLibraryClient struct {
	httpClient  *http.Client
	baseURL     string
	coversURL   string
	rateLimiter *rateLimiter
}

type rateLimiter struct {
	mu       sync.Mutex
	lastCall time.Time
	interval time.Duration
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{interval: interval}
}

func (r *rateLimiter) wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if since := time.Since(r.lastCall); since < r.interval {
		timer := time.NewTimer(r.interval - since)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	r.lastCall = time.Now()
	return nil
}

// NewOpenLibraryClient creates a new OpenLibrary API client with rate limiting.
// Zero values in cfg fall back to the public endpoints.
func NewOpenLibraryClient(cfg config.Catalog) *OpenLibraryClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = config.DefaultCatalogBaseURL
	}
	if cfg.CoversURL == "" {
		cfg.CoversURL = config.DefaultCoversBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &OpenLibraryClient{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		coversURL:   strings.TrimRight(cfg.CoversURL, "/"),
		rateLimiter: newRateLimiter(cfg.RateLimit),
	}
}

// CoverURL builds the large cover image URL for a cover id.
func (c *OpenLibraryClient) CoverURL(coverID int) string {
	if coverID <= 0 {
		return ""
	}
	return fmt.Sprintf("%s/b/id/%d-L.jpg", c.coversURL, coverID)
}

// Search runs a free-text catalog search. A query that is an ISBN is
// resolved through the edition it names.
func (c *OpenLibraryClient) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	if isbn := normalizeISBN(query); isbn != "" && looksNumeric(isbn) {
		result, err := c.searchByISBN(ctx, isbn)
		if err == nil {
			return []SearchResult{*result}, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", fmt.Sprint(limit))

	var searchResult openLibrarySearchResult
	if err := c.getJSON(ctx, "/search.json?"+params.Encode(), &searchResult); err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}

	results := make([]SearchResult, 0, len(searchResult.Docs))
	for i := range searchResult.Docs {
		results = append(results, c.convertSearchDoc(&searchResult.Docs[i]))
	}
	return results, nil
}

func (c *OpenLibraryClient) searchByISBN(ctx context.Context, isbn string) (*SearchResult, error) {
	var edition openLibraryEdition
	if err := c.getJSON(ctx, "/isbn/"+isbn+".json", &edition); err != nil {
		return nil, err
	}

	result := &SearchResult{
		EditionKey: entities.CleanWorkKey(edition.Key),
		Title:      edition.Title,
	}
	if len(edition.Works) > 0 {
		result.WorkKey = entities.CleanWorkKey(edition.Works[0].Key)
	}
	if result.WorkKey == "" {
		return nil, ErrNotFound
	}
	if covers := positive(edition.Covers); len(covers) > 0 {
		result.CoverID = covers[0]
		result.CoverURL = c.CoverURL(covers[0])
	}
	result.FirstPublishYear = extractYear(edition.PublishDate)

	for _, key := range edition.authorKeys() {
		if name, err := c.AuthorName(ctx, key); err == nil && name != "" {
			result.Authors = append(result.Authors, name)
		}
	}
	result.Authors = entities.NormalizeAuthors(result.Authors)
	result.Author = firstAuthor(result.Authors)
	if result.Title == "" {
		result.Title = "Untitled"
	}
	return result, nil
}

// Work fetches the raw work record.
func (c *OpenLibraryClient) Work(ctx context.Context, workKey string) (*openLibraryWork, error) {
	workKey = entities.CleanWorkKey(workKey)
	if workKey == "" {
		return nil, fmt.Errorf("empty work key")
	}
	var work openLibraryWork
	if err := c.getJSON(ctx, "/works/"+url.PathEscape(workKey)+".json", &work); err != nil {
		return nil, fmt.Errorf("fetch work %s: %w", workKey, err)
	}
	return &work, nil
}

// Edition fetches the raw edition record.
func (c *OpenLibraryClient) Edition(ctx context.Context, editionKey string) (*openLibraryEdition, error) {
	editionKey = entities.CleanWorkKey(editionKey)
	if editionKey == "" {
		return nil, fmt.Errorf("empty edition key")
	}
	var edition openLibraryEdition
	if err := c.getJSON(ctx, "/books/"+url.PathEscape(editionKey)+".json", &edition); err != nil {
		return nil, fmt.Errorf("fetch edition %s: %w", editionKey, err)
	}
	return &edition, nil
}

// firstEditionKey picks an edition of the work so page counts can be filled.
// Lookup failures yield "".
func (c *OpenLibraryClient) firstEditionKey(ctx context.Context, workKey string) string {
	var editions struct {
		Entries []struct {
			Key string `json:"key"`
		} `json:"entries"`
	}
	if err := c.getJSON(ctx, "/works/"+url.PathEscape(workKey)+"/editions.json?limit=1", &editions); err != nil {
		return ""
	}
	if len(editions.Entries) == 0 {
		return ""
	}
	return entities.CleanWorkKey(editions.Entries[0].Key)
}

// AuthorName resolves an author reference ("/authors/OL1A" or "OL1A").
func (c *OpenLibraryClient) AuthorName(ctx context.Context, authorKey string) (string, error) {
	authorKey = entities.CleanWorkKey(authorKey)
	if authorKey == "" {
		return "", fmt.Errorf("empty author key")
	}

	var authorData struct {
		Name         string `json:"name"`
		PersonalName string `json:"personal_name"`
	}
	if err := c.getJSON(ctx, "/authors/"+url.PathEscape(authorKey)+".json", &authorData); err != nil {
		return "", err
	}
	if authorData.Name == "" {
		return strings.TrimSpace(authorData.PersonalName), nil
	}
	return strings.TrimSpace(authorData.Name), nil
}

// Details fetches a work and, when editionKey is given, the edition. The
// edition alone is enough when the work lookup fails.
func (c *OpenLibraryClient) Details(ctx context.Context, workKey, editionKey string) (*Details, error) {
	workKey = entities.CleanWorkKey(workKey)
	editionKey = entities.CleanWorkKey(editionKey)
	if workKey == "" && editionKey == "" {
		return nil, fmt.Errorf("work key or edition key is required")
	}

	var work *openLibraryWork
	var workErr error
	if workKey != "" {
		work, workErr = c.Work(ctx, workKey)
	}

	if editionKey == "" && work != nil {
		editionKey = c.firstEditionKey(ctx, workKey)
	}

	var edition *openLibraryEdition
	var editionErr error
	if editionKey != "" {
		edition, editionErr = c.Edition(ctx, editionKey)
	}

	if work == nil && edition == nil {
		if workErr != nil {
			return nil, workErr
		}
		return nil, editionErr
	}

	details := &Details{WorkKey: workKey, EditionKey: editionKey}
	var authorKeys []string
	if work != nil {
		c.applyWork(details, work)
		authorKeys = work.authorKeys()
	}
	if edition != nil {
		c.applyEdition(details, edition)
		if len(authorKeys) == 0 {
			authorKeys = edition.authorKeys()
		}
	}

	details.AuthorKeys = authorKeys
	names := make([]string, 0, len(authorKeys))
	for _, key := range authorKeys {
		name, err := c.AuthorName(ctx, key)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		names = append(names, name)
	}
	details.Authors = entities.NormalizeAuthors(names)

	if details.Title == "" {
		details.Title = "Untitled"
	}
	return details, nil
}

func (c *OpenLibraryClient) applyWork(d *Details, work *openLibraryWork) {
	if key := entities.CleanWorkKey(work.Key); key != "" {
		d.WorkKey = key
	}
	d.Title = work.Title
	d.Description = textValue(work.Description)
	for _, e := range work.Excerpts {
		if text := textValue(e.Excerpt); text != "" {
			d.Excerpts = append(d.Excerpts, text)
		}
	}
	d.Subjects = work.Subjects
	d.SubjectPeople = work.SubjectPeople
	d.Covers = positive(work.Covers)
	if len(d.Covers) > 0 {
		d.CoverURL = c.CoverURL(d.Covers[0])
	}
}

func (c *OpenLibraryClient) applyEdition(d *Details, edition *openLibraryEdition) {
	if d.WorkKey == "" && len(edition.Works) > 0 {
		d.WorkKey = entities.CleanWorkKey(edition.Works[0].Key)
	}
	if d.Title == "" {
		d.Title = edition.Title
	}
	if d.Description == "" {
		d.Description = textValue(edition.Description)
	}
	if len(d.Covers) == 0 {
		d.Covers = positive(edition.Covers)
		if len(d.Covers) > 0 {
			d.CoverURL = c.CoverURL(d.Covers[0])
		}
	}
	d.NumberOfPages = edition.NumberOfPages
	d.PublishYear = extractYear(edition.PublishDate)
	if len(edition.Publishers) > 0 {
		d.Publisher = edition.Publishers[0]
	}
	// Prefer ISBN-13
	if len(edition.ISBN13) > 0 {
		d.ISBN = edition.ISBN13[0]
	} else if len(edition.ISBN10) > 0 {
		d.ISBN = edition.ISBN10[0]
	}
}

func (c *OpenLibraryClient) convertSearchDoc(doc *openLibrarySearchDoc) SearchResult {
	result := SearchResult{
		WorkKey:          entities.CleanWorkKey(doc.Key),
		Title:            doc.Title,
		Authors:          entities.NormalizeAuthors(doc.AuthorName),
		FirstPublishYear: doc.FirstPublishYear,
		CoverID:          doc.CoverI,
		CoverURL:         c.CoverURL(doc.CoverI),
	}
	if len(doc.EditionKey) > 0 {
		result.EditionKey = doc.EditionKey[0]
	} else if doc.CoverEditionKey != "" {
		result.EditionKey = doc.CoverEditionKey
	}
	if result.Title == "" {
		result.Title = "Untitled"
	}
	result.Author = firstAuthor(result.Authors)
	return result
}

func firstAuthor(authors entities.Authors) string {
	if len(authors) == 0 {
		return "Unknown author"
	}
	return authors[0]
}

func (c *OpenLibraryClient) getJSON(ctx context.Context, path string, out any) error {
	if err := c.rateLimiter.wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// normalizeISBN removes hyphens and spaces from ISBN.
func normalizeISBN(isbn string) string {
	isbn = strings.ReplaceAll(isbn, "-", "")
	isbn = strings.ReplaceAll(isbn, " ", "")
	isbn = strings.TrimSpace(isbn)

	// Basic validation: ISBN-10 or ISBN-13
	if len(isbn) != 10 && len(isbn) != 13 {
		return ""
	}

	return isbn
}

// looksNumeric accepts digits with an optional trailing X check digit.
func looksNumeric(s string) bool {
	for i, r := range s {
		if r >= '0' && r <= '9' {
			continue
		}
		if (r == 'X' || r == 'x') && i == len(s)-1 {
			continue
		}
		return false
	}
	return true
}

// extractYear tries to extract a 4-digit year from a date string.
func extractYear(dateStr string) int {
	dateStr = strings.TrimSpace(dateStr)
	if len(dateStr) < 4 {
		return 0
	}

	formats := []string{
		"2006",
		"January 2, 2006",
		"Jan 2, 2006",
		"2006-01-02",
		"January 2006",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t.Year()
		}
	}

	// Last resort: find 4 consecutive digits
	for i := 0; i <= len(dateStr)-4; i++ {
		if dateStr[i] >= '0' && dateStr[i] <= '9' {
			yearStr := dateStr[i : i+4]
			var year int
			if _, err := fmt.Sscanf(yearStr, "%d", &year); err == nil && year > 1000 && year < 3000 {
				return year
			}
		}
	}

	return 0
}

// textValue reads fields that are either a string or {"type": ..., "value": ...}.
func textValue(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		if val, ok := t["value"].(string); ok {
			return strings.TrimSpace(val)
		}
	}
	return ""
}

// positive drops the -1 placeholders OpenLibrary puts in cover lists.
func positive(ids []int) []int {
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if id > 0 {
			out = append(out, id)
		}
	}
	return out
}

// OpenLibrary API response types (internal)

type keyRef struct {
	Key string `json:"key"`
}

// workAuthor covers both {"author": {"key": ...}} on works and {"key": ...} on editions.
type workAuthor struct {
	Author keyRef `json:"author"`
	Key    string `json:"key"`
}

func (a workAuthor) key() string {
	if a.Author.Key != "" {
		return a.Author.Key
	}
	return a.Key
}

type openLibraryWork struct {
	Key           string       `json:"key"`
	Title         string       `json:"title"`
	Authors       []workAuthor `json:"authors"`
	Description   any          `json:"description"` // Can be string or {type, value}
	Excerpts      []struct {
		Excerpt any    `json:"excerpt"`
		Comment string `json:"comment"`
	} `json:"excerpts"`
	Subjects      []string `json:"subjects"`
	SubjectPeople []string `json:"subject_people"`
	Covers        []int    `json:"covers"`
}

func (w *openLibraryWork) authorKeys() []string {
	return collectAuthorKeys(w.Authors)
}

type openLibrarySearchResult struct {
	NumFound int                    `json:"numFound"`
	Docs     []openLibrarySearchDoc `json:"docs"`
}

type openLibrarySearchDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	FirstPublishYear int      `json:"first_publish_year"`
	EditionKey       []string `json:"edition_key"`
	CoverI           int      `json:"cover_i"`
	CoverEditionKey  string   `json:"cover_edition_key"`
}

type openLibraryEdition struct {
	Key           string       `json:"key"`
	Title         string       `json:"title"`
	Authors       []workAuthor `json:"authors"`
	Works         []keyRef     `json:"works"`
	Description   any          `json:"description"`
	Publishers    []string     `json:"publishers"`
	PublishDate   string       `json:"publish_date"`
	ISBN10        []string     `json:"isbn_10"`
	ISBN13        []string     `json:"isbn_13"`
	NumberOfPages int          `json:"number_of_pages"`
	Covers        []int        `json:"covers"`
}

func (e *openLibraryEdition) authorKeys() []string {
	return collectAuthorKeys(e.Authors)
}

func collectAuthorKeys(authors []workAuthor) []string {
	keys := make([]string, 0, len(authors))
	for _, a := range authors {
		if k := a.key(); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
