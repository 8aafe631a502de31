package reading

import (
	"github.com/mrlokans/readinglog/internal/entities"
)

// ProgressUpdate carries the optional fields of a progress report. A nil
// CurrentPage keeps the stored page; a nil TotalPages keeps the stored total.
type ProgressUpdate struct {
	CurrentPage *int
	TotalPages  *int
}

type FinishInput struct {
	Rating *float64
	Notes  string
}

// SessionInput is a manual session entry. A zero Date means today.
type SessionInput struct {
	WorkKey   string
	PagesRead int
	Date      entities.Date
}

// MetadataPatch holds catalog data that may fill gaps in a stored record.
type MetadataPatch struct {
	EditionKey string
	Title      string
	Authors    entities.Authors
	CoverURL   string
	TotalPages *int
}

// AddToTBR puts book at the front of the to-be-read shelf, taking it off
// any other shelf first. Adding a book that is already queued moves it to
// the front with the new record.
func (s *Store) AddToTBR(book entities.Book) entities.ReadingState {
	book = prepareBook(book)
	return s.mutate(func(state *entities.ReadingState) bool {
		if book.WorkKey == "" {
			return false
		}
		purge(state, book.WorkKey)
		state.TBRBooks = append([]entities.Book{book}, state.TBRBooks...)
		return true
	})
}

// RemoveFromTBR drops workKey from the to-be-read shelf. Unknown keys are ignored.
func (s *Store) RemoveFromTBR(workKey string) entities.ReadingState {
	workKey = entities.CleanWorkKey(workKey)
	return s.mutate(func(state *entities.ReadingState) bool {
		state.TBRBooks = withoutBook(state.TBRBooks, workKey)
		return true
	})
}

// SetCurrentlyReading makes book the one being read. startedAt survives
// only when the same work key was already being read.
func (s *Store) SetCurrentlyReading(book entities.Book) entities.ReadingState {
	book = prepareBook(book)
	now := s.now()
	return s.mutate(func(state *entities.ReadingState) bool {
		if book.WorkKey == "" {
			return false
		}

		startedAt := now
		if prev := state.CurrentlyReading; prev != nil && prev.WorkKey == book.WorkKey {
			startedAt = prev.StartedAt
		}

		purge(state, book.WorkKey)
		state.CurrentlyReading = &entities.CurrentlyReading{
			Book:          book,
			StartedAt:     startedAt,
			LastUpdatedAt: now,
		}
		return true
	})
}

// UpdateProgress moves the current book to a new page and credits forward
// movement to today's session. Without a current book it does nothing.
func (s *Store) UpdateProgress(update ProgressUpdate) entities.ReadingState {
	now := s.now()
	today := entities.DateOf(now, s.loc)
	return s.mutate(func(state *entities.ReadingState) bool {
		current := state.CurrentlyReading
		if current == nil {
			return false
		}

		prevPage := current.CurrentPage
		newPage := prevPage
		if update.CurrentPage != nil {
			newPage = max(*update.CurrentPage, 0)
		}

		if pagesRead := newPage - prevPage; pagesRead > 0 {
			state.ReadingSessions = addSession(state.ReadingSessions, current.WorkKey, today, pagesRead)
		}

		current.CurrentPage = newPage
		if update.TotalPages != nil && *update.TotalPages >= 0 {
			current.TotalPages = entities.IntPtr(*update.TotalPages)
		}
		current.LastUpdatedAt = now
		return true
	})
}

// FinishCurrentBook moves the current book to the front of the finished
// shelf, replacing an earlier entry for the same work.
func (s *Store) FinishCurrentBook(input FinishInput) entities.ReadingState {
	now := s.now()
	return s.mutate(func(state *entities.ReadingState) bool {
		current := state.CurrentlyReading
		if current == nil {
			return false
		}

		startedAt := current.StartedAt
		finished := entities.FinishedBook{
			Book:       current.Book.Clone(),
			FinishedAt: now,
			Notes:      input.Notes,
		}
		if !startedAt.IsZero() {
			finished.StartedAt = &startedAt
		}
		if input.Rating != nil {
			rating := *input.Rating
			finished.Rating = &rating
		}

		state.CurrentlyReading = nil
		state.FinishedBooks = append(
			[]entities.FinishedBook{finished},
			withoutFinished(state.FinishedBooks, finished.WorkKey)...,
		)
		return true
	})
}

// AddReadingSession records pages read outside of progress tracking.
func (s *Store) AddReadingSession(input SessionInput) entities.ReadingState {
	workKey := entities.CleanWorkKey(input.WorkKey)
	date := input.Date
	if date.IsZero() {
		date = s.Today()
	}
	return s.mutate(func(state *entities.ReadingState) bool {
		if workKey == "" || input.PagesRead <= 0 {
			return false
		}
		state.ReadingSessions = addSession(state.ReadingSessions, workKey, date, input.PagesRead)
		return true
	})
}

// ApplyMetadata fills empty fields of the record for workKey, wherever it is
// shelved. Present values are never overwritten. changed is false when
// nothing was filled.
func (s *Store) ApplyMetadata(workKey string, patch MetadataPatch) (state entities.ReadingState, changed bool) {
	workKey = entities.CleanWorkKey(workKey)
	patch.Authors = entities.NormalizeAuthors(patch.Authors)
	state = s.mutate(func(state *entities.ReadingState) bool {
		if workKey == "" {
			return false
		}
		for _, b := range shelvedBooks(state) {
			if b.WorkKey == workKey {
				changed = fillMissing(b, patch) || changed
			}
		}
		return changed
	})
	return state, changed
}

func fillMissing(b *entities.Book, patch MetadataPatch) bool {
	changed := false
	if b.EditionKey == "" && patch.EditionKey != "" {
		b.EditionKey = patch.EditionKey
		changed = true
	}
	if b.Title == "" && patch.Title != "" {
		b.Title = patch.Title
		changed = true
	}
	if len(b.Authors) == 0 && len(patch.Authors) > 0 {
		b.Authors = append(entities.Authors{}, patch.Authors...)
		changed = true
	}
	if b.CoverURL == "" && patch.CoverURL != "" {
		b.CoverURL = patch.CoverURL
		changed = true
	}
	if b.TotalPages == nil && patch.TotalPages != nil && *patch.TotalPages > 0 {
		b.TotalPages = entities.IntPtr(*patch.TotalPages)
		changed = true
	}
	return changed
}

// shelvedBooks returns pointers to every book record in state.
func shelvedBooks(state *entities.ReadingState) []*entities.Book {
	books := make([]*entities.Book, 0, len(state.TBRBooks)+len(state.FinishedBooks)+1)
	if state.CurrentlyReading != nil {
		books = append(books, &state.CurrentlyReading.Book)
	}
	for i := range state.TBRBooks {
		books = append(books, &state.TBRBooks[i])
	}
	for i := range state.FinishedBooks {
		books = append(books, &state.FinishedBooks[i].Book)
	}
	return books
}

// purge removes workKey from every shelf.
func purge(state *entities.ReadingState, workKey string) {
	state.TBRBooks = withoutBook(state.TBRBooks, workKey)
	state.FinishedBooks = withoutFinished(state.FinishedBooks, workKey)
	if state.CurrentlyReading != nil && state.CurrentlyReading.WorkKey == workKey {
		state.CurrentlyReading = nil
	}
}

func withoutBook(books []entities.Book, workKey string) []entities.Book {
	out := make([]entities.Book, 0, len(books))
	for _, b := range books {
		if b.WorkKey != workKey {
			out = append(out, b)
		}
	}
	return out
}

func withoutFinished(books []entities.FinishedBook, workKey string) []entities.FinishedBook {
	out := make([]entities.FinishedBook, 0, len(books))
	for _, b := range books {
		if b.WorkKey != workKey {
			out = append(out, b)
		}
	}
	return out
}

// addSession increments the (workKey, date) session or inserts a new one at the front.
func addSession(sessions []entities.ReadingSession, workKey string, date entities.Date, pages int) []entities.ReadingSession {
	for i := range sessions {
		if sessions[i].WorkKey == workKey && sessions[i].Date == date {
			sessions[i].PagesRead += pages
			return sessions
		}
	}
	return append([]entities.ReadingSession{{WorkKey: workKey, Date: date, PagesRead: pages}}, sessions...)
}
