package reading

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/readinglog/internal/entities"
	"github.com/mrlokans/readinglog/internal/storage"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func setupStore(t *testing.T, opts ...Option) (*Store, *storage.MemorySlot, *fakeClock) {
	t.Helper()
	slot := storage.NewMemorySlot()
	clock := newFakeClock()
	store := NewStore(slot, append([]Option{WithClock(clock.Now)}, opts...)...)
	t.Cleanup(func() {
		_ = store.Close(context.Background())
	})
	return store, slot, clock
}

func persisted(t *testing.T, store *Store, slot *storage.MemorySlot) entities.ReadingState {
	t.Helper()
	require.NoError(t, store.Flush(context.Background()))
	state, err := storage.Decode(slot.Snapshot())
	require.NoError(t, err)
	return state
}

func book(key string) entities.Book {
	return entities.Book{WorkKey: key, Title: "Title " + key, Authors: entities.Authors{"Author " + key}}
}

func TestStore_ScenarioAddToTBR(t *testing.T) {
	store, slot, _ := setupStore(t)

	state := store.AddToTBR(entities.Book{
		WorkKey: "W1",
		Title:   "A",
		Authors: entities.NormalizeAuthors("Jane, Bob"),
	})

	require.Len(t, state.TBRBooks, 1)
	assert.Equal(t, "W1", state.TBRBooks[0].WorkKey)
	assert.Equal(t, entities.Authors{"Jane", "Bob"}, state.TBRBooks[0].Authors)
	assert.Equal(t, 0, state.TBRBooks[0].CurrentPage)

	assert.Equal(t, state.TBRBooks, persisted(t, store, slot).TBRBooks)
}

func TestStore_ScenarioReadAndFinish(t *testing.T) {
	store, slot, clock := setupStore(t)
	today := entities.DateOf(clock.Now(), time.UTC)

	store.SetCurrentlyReading(entities.Book{WorkKey: "W1", CurrentPage: 0, TotalPages: entities.IntPtr(100)})
	state := store.UpdateProgress(ProgressUpdate{CurrentPage: entities.IntPtr(30)})

	require.NotNil(t, state.CurrentlyReading)
	assert.Equal(t, 30, state.CurrentlyReading.CurrentPage)
	assert.Equal(t, 30, state.CurrentlyReading.Percent())
	assert.Equal(t, []entities.ReadingSession{{WorkKey: "W1", Date: today, PagesRead: 30}}, state.ReadingSessions)

	clock.Advance(time.Hour)
	rating := 5.0
	state = store.FinishCurrentBook(FinishInput{Rating: &rating})

	assert.Nil(t, state.CurrentlyReading)
	require.Len(t, state.FinishedBooks, 1)
	finished := state.FinishedBooks[0]
	assert.Equal(t, "W1", finished.WorkKey)
	require.NotNil(t, finished.Rating)
	assert.Equal(t, 5.0, *finished.Rating)
	assert.Equal(t, "", finished.Notes)
	assert.Equal(t, clock.Now(), finished.FinishedAt)
	assert.Equal(t, 100, *finished.TotalPages)
	require.NotNil(t, finished.StartedAt)

	stored := persisted(t, store, slot)
	assert.Nil(t, stored.CurrentlyReading)
	assert.Equal(t, "W1", stored.FinishedBooks[0].WorkKey)
}

func TestStore_AddToTBR(t *testing.T) {
	t.Run("purges the key from other shelves", func(t *testing.T) {
		store, _, _ := setupStore(t)
		store.SetCurrentlyReading(book("W1"))

		state := store.AddToTBR(book("W1"))

		assert.Nil(t, state.CurrentlyReading)
		assert.Len(t, state.TBRBooks, 1)
	})

	t.Run("newest first and unique", func(t *testing.T) {
		store, _, _ := setupStore(t)
		store.AddToTBR(book("W1"))
		store.AddToTBR(book("W2"))
		state := store.AddToTBR(book("W1"))

		require.Len(t, state.TBRBooks, 2)
		assert.Equal(t, "W1", state.TBRBooks[0].WorkKey)
		assert.Equal(t, "W2", state.TBRBooks[1].WorkKey)
	})

	t.Run("catalog paths and raw authors are normalized", func(t *testing.T) {
		store, _, _ := setupStore(t)
		state := store.AddToTBR(entities.Book{WorkKey: "/works/OL1W", Authors: entities.Authors{"  Jane ", ""}})

		assert.Equal(t, "OL1W", state.TBRBooks[0].WorkKey)
		assert.Equal(t, entities.Authors{"Jane"}, state.TBRBooks[0].Authors)
	})

	t.Run("missing work key is ignored", func(t *testing.T) {
		store, slot, _ := setupStore(t)
		state := store.AddToTBR(entities.Book{Title: "No key"})

		assert.Empty(t, state.TBRBooks)
		require.NoError(t, store.Flush(context.Background()))
		assert.Equal(t, 0, slot.Writes())
	})
}

func TestStore_RemoveFromTBR(t *testing.T) {
	store, slot, _ := setupStore(t)
	store.AddToTBR(book("W1"))
	store.AddToTBR(book("W2"))

	state := store.RemoveFromTBR("W1")
	require.Len(t, state.TBRBooks, 1)
	assert.Equal(t, "W2", state.TBRBooks[0].WorkKey)

	state = store.RemoveFromTBR("missing")
	assert.Len(t, state.TBRBooks, 1)
	assert.Len(t, persisted(t, store, slot).TBRBooks, 1)
}

func TestStore_SetCurrentlyReading(t *testing.T) {
	t.Run("same key preserves startedAt", func(t *testing.T) {
		store, _, clock := setupStore(t)
		first := store.SetCurrentlyReading(book("W1")).CurrentlyReading.StartedAt

		clock.Advance(2 * time.Hour)
		state := store.SetCurrentlyReading(book("W1"))

		assert.Equal(t, first, state.CurrentlyReading.StartedAt)
		assert.Equal(t, clock.Now(), state.CurrentlyReading.LastUpdatedAt)
	})

	t.Run("different key resets startedAt and drops the previous book", func(t *testing.T) {
		store, _, clock := setupStore(t)
		store.SetCurrentlyReading(book("W1"))

		clock.Advance(time.Hour)
		state := store.SetCurrentlyReading(book("W2"))

		assert.Equal(t, "W2", state.CurrentlyReading.WorkKey)
		assert.Equal(t, clock.Now(), state.CurrentlyReading.StartedAt)
		assert.Equal(t, entities.ShelfNone, state.ShelfOf("W1"))
	})

	t.Run("takes the book off tbr and finished", func(t *testing.T) {
		store, _, _ := setupStore(t)
		store.SetCurrentlyReading(book("W1"))
		store.FinishCurrentBook(FinishInput{})
		store.AddToTBR(book("W2"))

		store.SetCurrentlyReading(book("W1"))
		state := store.SetCurrentlyReading(book("W2"))

		assert.Empty(t, state.TBRBooks)
		assert.Empty(t, state.FinishedBooks)
		assert.Equal(t, "W2", state.CurrentlyReading.WorkKey)
	})

	t.Run("keeps the incoming current page", func(t *testing.T) {
		store, _, _ := setupStore(t)
		b := book("W1")
		b.CurrentPage = 42
		state := store.SetCurrentlyReading(b)
		assert.Equal(t, 42, state.CurrentlyReading.CurrentPage)
	})
}

func TestStore_UpdateProgress(t *testing.T) {
	t.Run("no current book is a no-op", func(t *testing.T) {
		store, slot, _ := setupStore(t)
		state := store.UpdateProgress(ProgressUpdate{CurrentPage: entities.IntPtr(10)})

		assert.Nil(t, state.CurrentlyReading)
		assert.Empty(t, state.ReadingSessions)
		require.NoError(t, store.Flush(context.Background()))
		assert.Equal(t, 0, slot.Writes())
	})

	t.Run("same day updates aggregate", func(t *testing.T) {
		store, _, clock := setupStore(t)
		store.SetCurrentlyReading(book("W1"))

		store.UpdateProgress(ProgressUpdate{CurrentPage: entities.IntPtr(12)})
		clock.Advance(3 * time.Hour)
		state := store.UpdateProgress(ProgressUpdate{CurrentPage: entities.IntPtr(20)})

		require.Len(t, state.ReadingSessions, 1)
		assert.Equal(t, 20, state.ReadingSessions[0].PagesRead)
	})

	t.Run("a new day starts a new session", func(t *testing.T) {
		store, _, clock := setupStore(t)
		store.SetCurrentlyReading(book("W1"))

		store.UpdateProgress(ProgressUpdate{CurrentPage: entities.IntPtr(10)})
		clock.Advance(24 * time.Hour)
		state := store.UpdateProgress(ProgressUpdate{CurrentPage: entities.IntPtr(25)})

		require.Len(t, state.ReadingSessions, 2)
		assert.Equal(t, 15, state.ReadingSessions[0].PagesRead)
		assert.Equal(t, 10, state.ReadingSessions[1].PagesRead)
	})

	t.Run("moving backwards records nothing but lowers the page", func(t *testing.T) {
		store, _, _ := setupStore(t)
		store.SetCurrentlyReading(book("W1"))
		store.UpdateProgress(ProgressUpdate{CurrentPage: entities.IntPtr(50)})

		state := store.UpdateProgress(ProgressUpdate{CurrentPage: entities.IntPtr(40)})

		assert.Equal(t, 40, state.CurrentlyReading.CurrentPage)
		require.Len(t, state.ReadingSessions, 1)
		assert.Equal(t, 50, state.ReadingSessions[0].PagesRead)
	})

	t.Run("omitted page keeps the page and total overwrites", func(t *testing.T) {
		store, _, clock := setupStore(t)
		b := book("W1")
		b.TotalPages = entities.IntPtr(200)
		store.SetCurrentlyReading(b)
		store.UpdateProgress(ProgressUpdate{CurrentPage: entities.IntPtr(10)})

		clock.Advance(time.Minute)
		state := store.UpdateProgress(ProgressUpdate{TotalPages: entities.IntPtr(320)})

		assert.Equal(t, 10, state.CurrentlyReading.CurrentPage)
		assert.Equal(t, 320, *state.CurrentlyReading.TotalPages)
		assert.Equal(t, clock.Now(), state.CurrentlyReading.LastUpdatedAt)
		assert.Len(t, state.ReadingSessions, 1)
	})

	t.Run("omitted total keeps the total", func(t *testing.T) {
		store, _, _ := setupStore(t)
		b := book("W1")
		b.TotalPages = entities.IntPtr(200)
		store.SetCurrentlyReading(b)

		state := store.UpdateProgress(ProgressUpdate{CurrentPage: entities.IntPtr(5)})
		assert.Equal(t, 200, *state.CurrentlyReading.TotalPages)
	})

	t.Run("negative page is clamped", func(t *testing.T) {
		store, _, _ := setupStore(t)
		store.SetCurrentlyReading(book("W1"))
		state := store.UpdateProgress(ProgressUpdate{CurrentPage: entities.IntPtr(-4)})

		assert.Equal(t, 0, state.CurrentlyReading.CurrentPage)
		assert.Empty(t, state.ReadingSessions)
	})

	t.Run("today follows the configured timezone", func(t *testing.T) {
		tokyo := time.FixedZone("JST", 9*60*60)
		store, _, clock := setupStore(t, WithLocation(tokyo))
		clock.Advance(6 * time.Hour) // still the 10th in UTC, the 11th in Tokyo

		store.SetCurrentlyReading(book("W1"))
		state := store.UpdateProgress(ProgressUpdate{CurrentPage: entities.IntPtr(3)})

		assert.Equal(t, "2024-03-11", state.ReadingSessions[0].Date.String())
	})
}

func TestStore_FinishCurrentBook(t *testing.T) {
	t.Run("no current book is a no-op", func(t *testing.T) {
		store, _, _ := setupStore(t)
		state := store.FinishCurrentBook(FinishInput{Notes: "x"})
		assert.Empty(t, state.FinishedBooks)
	})

	t.Run("re-finishing replaces and moves to front", func(t *testing.T) {
		store, _, clock := setupStore(t)

		store.SetCurrentlyReading(book("W1"))
		store.FinishCurrentBook(FinishInput{Notes: "first"})
		store.SetCurrentlyReading(book("W2"))
		store.FinishCurrentBook(FinishInput{})

		clock.Advance(48 * time.Hour)
		store.SetCurrentlyReading(book("W1"))
		state := store.FinishCurrentBook(FinishInput{Notes: "again"})

		require.Len(t, state.FinishedBooks, 2)
		assert.Equal(t, "W1", state.FinishedBooks[0].WorkKey)
		assert.Equal(t, "again", state.FinishedBooks[0].Notes)
		assert.Equal(t, clock.Now(), state.FinishedBooks[0].FinishedAt)
		assert.Equal(t, "W2", state.FinishedBooks[1].WorkKey)
		assert.Nil(t, state.FinishedBooks[0].Rating)
	})
}

func TestStore_AddReadingSession(t *testing.T) {
	store, _, clock := setupStore(t)
	today := entities.DateOf(clock.Now(), time.UTC)
	yesterday := today.AddDays(-1)

	store.AddReadingSession(SessionInput{WorkKey: "W1", PagesRead: 10})
	store.AddReadingSession(SessionInput{WorkKey: "W1", PagesRead: 5})
	store.AddReadingSession(SessionInput{WorkKey: "W1", PagesRead: 7, Date: yesterday})
	store.AddReadingSession(SessionInput{WorkKey: "W1", PagesRead: 0})
	store.AddReadingSession(SessionInput{WorkKey: "", PagesRead: 9})
	state := store.AddReadingSession(SessionInput{WorkKey: "/works/W2", PagesRead: 3})

	assert.Equal(t, []entities.ReadingSession{
		{WorkKey: "W2", Date: today, PagesRead: 3},
		{WorkKey: "W1", Date: yesterday, PagesRead: 7},
		{WorkKey: "W1", Date: today, PagesRead: 15},
	}, state.ReadingSessions)
}

func TestStore_MutualExclusionProperty(t *testing.T) {
	store, _, clock := setupStore(t)
	rng := rand.New(rand.NewSource(7))
	keys := []string{"W1", "W2", "W3", "W4"}

	for i := 0; i < 500; i++ {
		key := keys[rng.Intn(len(keys))]
		var state entities.ReadingState
		switch rng.Intn(5) {
		case 0:
			state = store.AddToTBR(book(key))
		case 1:
			state = store.SetCurrentlyReading(book(key))
		case 2:
			state = store.FinishCurrentBook(FinishInput{})
		case 3:
			state = store.RemoveFromTBR(key)
		case 4:
			state = store.UpdateProgress(ProgressUpdate{CurrentPage: entities.IntPtr(rng.Intn(300))})
		}
		clock.Advance(time.Duration(rng.Intn(6)) * time.Hour)

		counts := make(map[string]int)
		for _, b := range state.Books() {
			counts[b.WorkKey]++
		}
		for key, n := range counts {
			require.Equal(t, 1, n, "step %d: %s appears on %d shelves", i, key, n)
		}

		seen := make(map[string]bool)
		for _, s := range state.ReadingSessions {
			id := s.WorkKey + "|" + s.Date.String()
			require.False(t, seen[id], "step %d: duplicate session %s", i, id)
			require.Positive(t, s.PagesRead)
			seen[id] = true
		}
	}
}

func TestStore_Reload(t *testing.T) {
	ctx := context.Background()

	t.Run("empty storage yields default state", func(t *testing.T) {
		store, _, _ := setupStore(t)
		state := store.Reload(ctx)

		assert.Equal(t, entities.DefaultReadingState(), state)
		assert.False(t, store.Loading())
	})

	t.Run("malformed blob yields default state", func(t *testing.T) {
		slot := storage.NewMemorySlotWith([]byte("{oops"))
		store := NewStore(slot)
		defer store.Close(ctx)

		assert.Equal(t, entities.DefaultReadingState(), store.Reload(ctx))
		assert.False(t, store.Loading())
	})

	t.Run("read failure yields default state", func(t *testing.T) {
		slot := storage.NewMemorySlot()
		slot.SetFailures(errors.New("io"), nil)
		store := NewStore(slot)
		defer store.Close(ctx)

		assert.Equal(t, entities.DefaultReadingState(), store.Reload(ctx))
	})

	t.Run("legacy data is normalized", func(t *testing.T) {
		blob := `{
			"tbrBooks": [
				{"workKey": "/works/W1", "title": "A", "authors": [{"name": " Jane "}, null, "Bob"]},
				{"workKey": "W1", "title": "A again"},
				{"workKey": "W2", "title": "B", "authors": "Ann, Tom"},
				{"title": "no key"}
			],
			"currentlyReading": {"workKey": "W2", "title": "B", "authors": {"name": "Ann"}, "currentPage": "12", "startedAt": "2024-03-01T10:00:00.000Z"},
			"readingSessions": [
				{"workKey": "W2", "date": "2024-03-02", "pagesRead": 5},
				{"workKey": "W2", "date": "2024-03-02", "pagesRead": 3},
				{"workKey": "W2", "date": "bad", "pagesRead": 3}
			]
		}`
		store := NewStore(storage.NewMemorySlotWith([]byte(blob)))
		defer store.Close(ctx)

		state := store.Reload(ctx)

		require.Len(t, state.TBRBooks, 1)
		assert.Equal(t, "W1", state.TBRBooks[0].WorkKey)
		assert.Equal(t, entities.Authors{"Jane", "Bob"}, state.TBRBooks[0].Authors)
		require.NotNil(t, state.CurrentlyReading)
		assert.Equal(t, entities.Authors{"Ann"}, state.CurrentlyReading.Authors)
		assert.Equal(t, 12, state.CurrentlyReading.CurrentPage)
		assert.NotNil(t, state.FinishedBooks)
		assert.Equal(t, []entities.ReadingSession{
			{WorkKey: "W2", Date: entities.Date{Year: 2024, Month: time.March, Day: 2}, PagesRead: 8},
		}, state.ReadingSessions)
	})

	t.Run("round trip through storage", func(t *testing.T) {
		store, slot, _ := setupStore(t)
		store.AddToTBR(book("W1"))
		store.SetCurrentlyReading(book("W2"))
		store.UpdateProgress(ProgressUpdate{CurrentPage: entities.IntPtr(40)})
		want := store.State()

		other := NewStore(slot)
		defer other.Close(ctx)
		require.NoError(t, store.Flush(ctx))

		got := other.Reload(ctx)
		assert.Equal(t, want.TBRBooks, got.TBRBooks)
		assert.Equal(t, want.ReadingSessions, got.ReadingSessions)
		assert.True(t, want.CurrentlyReading.StartedAt.Equal(got.CurrentlyReading.StartedAt))
	})

	t.Run("reload is idempotent and sees pending writes", func(t *testing.T) {
		store, _, _ := setupStore(t)
		store.AddToTBR(book("W1"))

		first := store.Reload(ctx)
		second := store.Reload(ctx)

		assert.Len(t, first.TBRBooks, 1)
		assert.Equal(t, first, second)
	})
}

// gatedAdapter blocks Get until release is closed.
type gatedAdapter struct {
	release chan struct{}
	data    []byte
	err     error
}

func (g *gatedAdapter) Get(ctx context.Context) ([]byte, bool, error) {
	select {
	case <-g.release:
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
	if g.err != nil {
		return nil, false, g.err
	}
	return g.data, g.data != nil, nil
}

func (g *gatedAdapter) Set(ctx context.Context, data []byte) error {
	return nil
}

func TestStore_LoadingDuringReload(t *testing.T) {
	ctx := context.Background()

	stored, err := storage.Encode(entities.ReadingState{TBRBooks: []entities.Book{book("W1")}})
	require.NoError(t, err)

	cases := []struct {
		name    string
		adapter *gatedAdapter
		tbr     int
	}{
		{"successful read", &gatedAdapter{release: make(chan struct{}), data: stored}, 1},
		{"failed read", &gatedAdapter{release: make(chan struct{}), err: errors.New("io")}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := NewStore(tc.adapter)
			defer store.Close(ctx)
			assert.False(t, store.Loading())

			done := make(chan entities.ReadingState)
			go func() { done <- store.Reload(ctx) }()

			assert.Eventually(t, store.Loading, time.Second, 5*time.Millisecond)
			assert.Never(t, func() bool {
				select {
				case <-done:
					return true
				default:
					return false
				}
			}, 50*time.Millisecond, 5*time.Millisecond)
			assert.True(t, store.Loading())

			close(tc.adapter.release)
			select {
			case state := <-done:
				assert.Len(t, state.TBRBooks, tc.tbr)
			case <-time.After(2 * time.Second):
				t.Fatal("reload did not finish")
			}
			assert.False(t, store.Loading())
		})
	}
}

func TestStore_PersistenceFailureKeepsMemoryState(t *testing.T) {
	store, slot, _ := setupStore(t)
	slot.SetFailures(nil, errors.New("disk full"))

	state := store.AddToTBR(book("W1"))
	assert.Len(t, state.TBRBooks, 1)

	require.NoError(t, store.Flush(context.Background()))
	assert.Len(t, store.State().TBRBooks, 1)
	assert.Equal(t, uint64(1), store.WriterStatus().Failed)
}

func TestStore_ShelfAndLookup(t *testing.T) {
	store, _, _ := setupStore(t)
	store.AddToTBR(book("W1"))
	store.SetCurrentlyReading(book("W2"))
	store.SetCurrentlyReading(book("W3"))
	store.FinishCurrentBook(FinishInput{})
	store.SetCurrentlyReading(book("W4"))

	tbr, ok := store.Shelf(entities.ShelfTBR)
	require.True(t, ok)
	assert.Len(t, tbr, 1)

	reading, _ := store.Shelf(entities.ShelfReading)
	require.Len(t, reading, 1)
	assert.Equal(t, "W4", reading[0].WorkKey)

	finished, _ := store.Shelf(entities.ShelfFinished)
	require.Len(t, finished, 1)
	assert.Equal(t, "W3", finished[0].WorkKey)

	_, ok = store.Shelf("abandoned")
	assert.False(t, ok)

	b, shelf, found := store.Lookup("/works/W3")
	assert.True(t, found)
	assert.Equal(t, entities.ShelfFinished, shelf)
	assert.Equal(t, "Title W3", b.Title)

	_, _, found = store.Lookup("W2")
	assert.False(t, found)
}

func TestStore_ApplyMetadata(t *testing.T) {
	store, _, _ := setupStore(t)
	b := book("W1")
	b.TotalPages = entities.IntPtr(99)
	store.AddToTBR(b)

	state, changed := store.ApplyMetadata("W1", MetadataPatch{
		CoverURL:   "https://covers.example/1-L.jpg",
		TotalPages: entities.IntPtr(300),
		Title:      "Other",
		EditionKey: "OL1M",
	})

	assert.True(t, changed)
	assert.Equal(t, "https://covers.example/1-L.jpg", state.TBRBooks[0].CoverURL)
	assert.Equal(t, 99, *state.TBRBooks[0].TotalPages)
	assert.Equal(t, "Title W1", state.TBRBooks[0].Title)
	assert.Equal(t, "OL1M", state.TBRBooks[0].EditionKey)

	_, changed = store.ApplyMetadata("W1", MetadataPatch{CoverURL: "https://covers.example/2-L.jpg"})
	assert.False(t, changed)

	_, changed = store.ApplyMetadata("unknown", MetadataPatch{CoverURL: "x"})
	assert.False(t, changed)
}

func TestStore_ConcurrentMutations(t *testing.T) {
	store, slot, _ := setupStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store.AddReadingSession(SessionInput{WorkKey: "W1", PagesRead: 2})
			store.AddToTBR(book(fmt.Sprintf("T%d", i)))
		}(i)
	}
	wg.Wait()

	state := store.State()
	require.Len(t, state.ReadingSessions, 1)
	assert.Equal(t, 40, state.ReadingSessions[0].PagesRead)
	assert.Len(t, state.TBRBooks, 20)

	stored := persisted(t, store, slot)
	assert.Len(t, stored.TBRBooks, 20)
	assert.Equal(t, 40, stored.ReadingSessions[0].PagesRead)
}
