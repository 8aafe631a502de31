package entities

// ReadingSession is one day's aggregated pages for one book.
type ReadingSession struct {
	WorkKey   string `json:"workKey"`
	Date      Date   `json:"date"`
	PagesRead int    `json:"pagesRead"`
}

type ShelfStatus string

const (
	ShelfTBR      ShelfStatus = "tbr"
	ShelfReading  ShelfStatus = "reading"
	ShelfFinished ShelfStatus = "finished"
	ShelfNone     ShelfStatus = ""
)

// ParseShelfStatus maps a route parameter to a shelf; unknown values map to ShelfNone.
func ParseShelfStatus(s string) ShelfStatus {
	switch ShelfStatus(s) {
	case ShelfTBR, ShelfReading, ShelfFinished:
		return ShelfStatus(s)
	}
	return ShelfNone
}

// ReadingState is the persisted aggregate.
type ReadingState struct {
	TBRBooks         []Book            `json:"tbrBooks"`
	CurrentlyReading *CurrentlyReading `json:"currentlyReading"`
	FinishedBooks    []FinishedBook    `json:"finishedBooks"`
	ReadingSessions  []ReadingSession  `json:"readingSessions"`
}

// DefaultReadingState is the empty state used on first run and on load failures.
func DefaultReadingState() ReadingState {
	return ReadingState{
		TBRBooks:        []Book{},
		FinishedBooks:   []FinishedBook{},
		ReadingSessions: []ReadingSession{},
	}
}

// Clone deep-copies the state so callers can read it without holding locks.
func (s ReadingState) Clone() ReadingState {
	out := ReadingState{
		TBRBooks:        make([]Book, len(s.TBRBooks)),
		FinishedBooks:   make([]FinishedBook, len(s.FinishedBooks)),
		ReadingSessions: make([]ReadingSession, len(s.ReadingSessions)),
	}
	for i, b := range s.TBRBooks {
		out.TBRBooks[i] = b.Clone()
	}
	for i, b := range s.FinishedBooks {
		out.FinishedBooks[i] = b.Clone()
	}
	copy(out.ReadingSessions, s.ReadingSessions)
	if s.CurrentlyReading != nil {
		cr := s.CurrentlyReading.Clone()
		out.CurrentlyReading = &cr
	}
	return out
}

// ShelfOf reports which shelf holds workKey.
func (s ReadingState) ShelfOf(workKey string) ShelfStatus {
	if s.CurrentlyReading != nil && s.CurrentlyReading.WorkKey == workKey {
		return ShelfReading
	}
	for _, b := range s.TBRBooks {
		if b.WorkKey == workKey {
			return ShelfTBR
		}
	}
	for _, b := range s.FinishedBooks {
		if b.WorkKey == workKey {
			return ShelfFinished
		}
	}
	return ShelfNone
}

// Books lists every shelved book regardless of shelf, current book first.
func (s ReadingState) Books() []Book {
	books := make([]Book, 0, len(s.TBRBooks)+len(s.FinishedBooks)+1)
	if s.CurrentlyReading != nil {
		books = append(books, s.CurrentlyReading.Book)
	}
	books = append(books, s.TBRBooks...)
	for _, f := range s.FinishedBooks {
		books = append(books, f.Book)
	}
	return books
}
