// Package reading owns the reading state: the to-be-read shelf, the book
// being read, finished books and per-day reading sessions.
//
// Store is the only code path that mutates the state. Every mutation runs
// as one critical section, keeps a work key on at most one shelf, and hands
// a full snapshot to a storage.Writer before returning. Writes are applied
// asynchronously; call Flush to wait for them.
package reading

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mrlokans/readinglog/internal/entities"
	"github.com/mrlokans/readinglog/internal/storage"
)

type Store struct {
	adapter storage.Adapter
	writer  *storage.Writer

	now          func() time.Time
	loc          *time.Location
	writeTimeout time.Duration

	mu      sync.RWMutex
	state   entities.ReadingState
	loading atomic.Int32
}

type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLocation sets the timezone that decides which calendar day "today" is.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithWriteTimeout bounds each background write.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Store) {
		s.writeTimeout = d
	}
}

// NewStore creates a store with the default empty state. Call Reload to
// read what is persisted.
func NewStore(adapter storage.Adapter, opts ...Option) *Store {
	s := &Store{
		adapter:      adapter,
		now:          time.Now,
		loc:          time.UTC,
		writeTimeout: 5 * time.Second,
		state:        entities.DefaultReadingState(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.writer = storage.NewWriter(adapter, s.writeTimeout)
	return s
}

// Reload replaces the in-memory state with what storage holds. Pending
// writes are flushed first, bounded by ctx. Absent or unreadable data
// yields the default state; Reload never fails.
func (s *Store) Reload(ctx context.Context) entities.ReadingState {
	s.loading.Add(1)
	defer s.loading.Add(-1)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writer.Flush(ctx); err != nil {
		log.Printf("Reading store: pending writes not flushed before reload: %v", err)
	}

	state, err := storage.Load(ctx, s.adapter)
	if err != nil {
		log.Printf("Reading store: failed to load state, using defaults: %v", err)
	}
	s.state = normalizeState(state)
	return s.state.Clone()
}

// Loading reports whether a Reload is in progress.
func (s *Store) Loading() bool {
	return s.loading.Load() > 0
}

// State returns a deep copy of the current state.
func (s *Store) State() entities.ReadingState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Today is the current calendar day in the store's timezone.
func (s *Store) Today() entities.Date {
	return entities.DateOf(s.now(), s.loc)
}

func (s *Store) Location() *time.Location {
	return s.loc
}

// Flush waits for every write issued so far.
func (s *Store) Flush(ctx context.Context) error {
	return s.writer.Flush(ctx)
}

// WriterStatus exposes the background writer's counters.
func (s *Store) WriterStatus() storage.WriterStatus {
	return s.writer.Status()
}

// Close flushes outstanding writes and stops the writer.
func (s *Store) Close(ctx context.Context) error {
	return s.writer.Close(ctx)
}

// Shelf lists the books on one shelf. ok is false for an unknown status.
func (s *Store) Shelf(status entities.ShelfStatus) (books []entities.Book, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch status {
	case entities.ShelfTBR:
		books = make([]entities.Book, 0, len(s.state.TBRBooks))
		for _, b := range s.state.TBRBooks {
			books = append(books, b.Clone())
		}
	case entities.ShelfReading:
		books = []entities.Book{}
		if s.state.CurrentlyReading != nil {
			books = append(books, s.state.CurrentlyReading.Book.Clone())
		}
	case entities.ShelfFinished:
		books = make([]entities.Book, 0, len(s.state.FinishedBooks))
		for _, f := range s.state.FinishedBooks {
			books = append(books, f.Book.Clone())
		}
	default:
		return nil, false
	}
	return books, true
}

// Lookup finds a shelved book by work key.
func (s *Store) Lookup(workKey string) (entities.Book, entities.ShelfStatus, bool) {
	workKey = entities.CleanWorkKey(workKey)

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, b := range s.state.Books() {
		if b.WorkKey == workKey {
			return b.Clone(), s.state.ShelfOf(workKey), true
		}
	}
	return entities.Book{}, entities.ShelfNone, false
}

// mutate applies fn under the write lock and persists when fn reports a change.
func (s *Store) mutate(fn func(state *entities.ReadingState) bool) entities.ReadingState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if fn(&s.state) {
		s.persistLocked()
	}
	return s.state.Clone()
}

func (s *Store) persistLocked() {
	data, err := storage.Encode(s.state)
	if err != nil {
		log.Printf("Reading store: failed to encode state: %v", err)
		return
	}
	s.writer.Submit(data)
}
