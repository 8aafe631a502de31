package http

import (
	"encoding/json"
	"strings"

	"github.com/mrlokans/readinglog/internal/entities"
)

// BookView is a shelved book with its derived progress.
type BookView struct {
	entities.Book
	ProgressPercent int `json:"progressPercent"`
}

type CurrentView struct {
	entities.CurrentlyReading
	ProgressPercent int `json:"progressPercent"`
}

// StateView is the reading state as served to clients.
type StateView struct {
	TBRBooks         []BookView                `json:"tbrBooks"`
	CurrentlyReading *CurrentView              `json:"currentlyReading"`
	FinishedBooks    []entities.FinishedBook   `json:"finishedBooks"`
	ReadingSessions  []entities.ReadingSession `json:"readingSessions"`
	Today            entities.Date             `json:"today"`
	Loading          bool                      `json:"loading"`
}

type ShelfView struct {
	Status entities.ShelfStatus `json:"status"`
	Books  []BookView           `json:"books"`
}

func newBookView(b entities.Book) BookView {
	return BookView{Book: b, ProgressPercent: b.Percent()}
}

func newBookViews(books []entities.Book) []BookView {
	views := make([]BookView, 0, len(books))
	for _, b := range books {
		views = append(views, newBookView(b))
	}
	return views
}

func newStateView(state entities.ReadingState, today entities.Date, loading bool) StateView {
	view := StateView{
		TBRBooks:        newBookViews(state.TBRBooks),
		FinishedBooks:   state.FinishedBooks,
		ReadingSessions: state.ReadingSessions,
		Today:           today,
		Loading:         loading,
	}
	if view.FinishedBooks == nil {
		view.FinishedBooks = []entities.FinishedBook{}
	}
	if view.ReadingSessions == nil {
		view.ReadingSessions = []entities.ReadingSession{}
	}
	if cr := state.CurrentlyReading; cr != nil {
		view.CurrentlyReading = &CurrentView{
			CurrentlyReading: *cr,
			ProgressPercent:  cr.Percent(),
		}
	}
	return view
}

// --- Request bodies ---
//
// Bodies come from clients that send page counts as numbers, numeric strings,
// "" or null and authors in any of the shapes NormalizeAuthors accepts, so
// loose fields are decoded from raw JSON.

// decodeBook reads a book body. Catalog search results use "key" and a
// single "author", both accepted as fallbacks.
func decodeBook(data []byte) (entities.Book, error) {
	var book entities.Book
	if err := json.Unmarshal(data, &book); err != nil {
		return entities.Book{}, err
	}

	var alias struct {
		Key    string           `json:"key"`
		Author entities.Authors `json:"author"`
	}
	if err := json.Unmarshal(data, &alias); err == nil {
		if book.WorkKey == "" {
			book.WorkKey = alias.Key
		}
		if len(book.Authors) == 0 {
			book.Authors = alias.Author
		}
	}
	book.WorkKey = entities.CleanWorkKey(book.WorkKey)
	book.Title = strings.TrimSpace(book.Title)
	return book, nil
}

type progressRequest struct {
	CurrentPage json.RawMessage `json:"currentPage"`
	TotalPages  json.RawMessage `json:"totalPages"`
}

type finishRequest struct {
	Rating json.RawMessage `json:"rating"`
	Notes  json.RawMessage `json:"notes"`
}

type sessionRequest struct {
	WorkKey   string          `json:"workKey"`
	PagesRead json.RawMessage `json:"pagesRead"`
	Date      string          `json:"date"`
}

func looseIntPtr(data json.RawMessage) *int {
	if n, ok := entities.ParseLooseInt(data); ok {
		return &n
	}
	return nil
}

func looseString(data json.RawMessage) string {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ""
	}
	return s
}
