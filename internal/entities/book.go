package entities

import (
	"strings"
	"time"
)

// Book is the record shared by every shelf. Authors are always display names.
type Book struct {
	WorkKey     string  `json:"workKey"`
	EditionKey  string  `json:"editionKey,omitempty"`
	Title       string  `json:"title"`
	Authors     Authors `json:"authors"`
	CoverURL    string  `json:"coverUrl,omitempty"`
	TotalPages  *int    `json:"totalPages,omitempty"`
	CurrentPage int     `json:"currentPage"`
}

// CurrentlyReading is the single in-progress book.
type CurrentlyReading struct {
	Book
	StartedAt     time.Time `json:"startedAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

// FinishedBook is a book moved off the currently-reading slot.
type FinishedBook struct {
	Book
	FinishedAt time.Time  `json:"finishedAt"`
	Rating     *float64   `json:"rating"`
	Notes      string     `json:"notes"`
	StartedAt  *time.Time `json:"startedAt,omitempty"`
}

// Clone returns a copy that shares no mutable memory with b.
func (b Book) Clone() Book {
	out := b
	if b.Authors != nil {
		out.Authors = append(Authors(nil), b.Authors...)
	}
	if b.TotalPages != nil {
		pages := *b.TotalPages
		out.TotalPages = &pages
	}
	return out
}

func (c CurrentlyReading) Clone() CurrentlyReading {
	out := c
	out.Book = c.Book.Clone()
	return out
}

func (f FinishedBook) Clone() FinishedBook {
	out := f
	out.Book = f.Book.Clone()
	if f.Rating != nil {
		r := *f.Rating
		out.Rating = &r
	}
	if f.StartedAt != nil {
		t := *f.StartedAt
		out.StartedAt = &t
	}
	return out
}

// Percent returns the reading progress of the book.
func (b Book) Percent() int {
	return ProgressPercent(b.CurrentPage, b.TotalPages)
}

// ProgressPercent is floor(current/total*100) clamped to [0,100].
// An unknown or zero total yields 0.
func ProgressPercent(current int, total *int) int {
	if total == nil || *total <= 0 || current <= 0 {
		return 0
	}
	percent := current * 100 / *total
	if percent > 100 {
		return 100
	}
	return percent
}

// CleanWorkKey reduces catalog paths like "/works/OL138052W" to "OL138052W".
func CleanWorkKey(key string) string {
	parts := strings.Split(strings.TrimSpace(key), "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if p := strings.TrimSpace(parts[i]); p != "" {
			return p
		}
	}
	return ""
}

// IntPtr is a convenience for optional page counts.
func IntPtr(v int) *int {
	return &v
}
