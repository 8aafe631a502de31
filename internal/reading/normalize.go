package reading

import (
	"github.com/mrlokans/readinglog/internal/entities"
)

// prepareBook converts a caller-supplied record into the stored shape.
func prepareBook(b entities.Book) entities.Book {
	b = b.Clone()
	b.WorkKey = entities.CleanWorkKey(b.WorkKey)
	b.Authors = entities.NormalizeAuthors(b.Authors)
	if b.CurrentPage < 0 {
		b.CurrentPage = 0
	}
	if b.TotalPages != nil && *b.TotalPages < 0 {
		b.TotalPages = nil
	}
	return b
}

// normalizeState repairs a freshly loaded state: missing lists become empty,
// authors are normalized, records without a work key are dropped, and a key
// found on several shelves keeps only the first of reading, tbr, finished.
// Sessions are merged per (workKey, date).
func normalizeState(in entities.ReadingState) entities.ReadingState {
	out := entities.DefaultReadingState()
	seen := make(map[string]bool)

	if in.CurrentlyReading != nil {
		cr := *in.CurrentlyReading
		cr.Book = prepareBook(cr.Book)
		if cr.WorkKey != "" {
			out.CurrentlyReading = &cr
			seen[cr.WorkKey] = true
		}
	}

	for _, b := range in.TBRBooks {
		b = prepareBook(b)
		if b.WorkKey == "" || seen[b.WorkKey] {
			continue
		}
		seen[b.WorkKey] = true
		out.TBRBooks = append(out.TBRBooks, b)
	}

	for _, f := range in.FinishedBooks {
		f = f.Clone()
		f.Book = prepareBook(f.Book)
		if f.WorkKey == "" || seen[f.WorkKey] {
			continue
		}
		seen[f.WorkKey] = true
		out.FinishedBooks = append(out.FinishedBooks, f)
	}

	for _, session := range in.ReadingSessions {
		session.WorkKey = entities.CleanWorkKey(session.WorkKey)
		if session.WorkKey == "" || session.Date.IsZero() || session.PagesRead <= 0 {
			continue
		}
		out.ReadingSessions = mergeSession(out.ReadingSessions, session)
	}

	return out
}

// mergeSession appends while keeping one record per (workKey, date), so the
// loaded order is preserved.
func mergeSession(sessions []entities.ReadingSession, s entities.ReadingSession) []entities.ReadingSession {
	for i := range sessions {
		if sessions[i].WorkKey == s.WorkKey && sessions[i].Date == s.Date {
			sessions[i].PagesRead += s.PagesRead
			return sessions
		}
	}
	return append(sessions, s)
}
