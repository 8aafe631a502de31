package main

import (
	"math/rand"
	"time"

	"github.com/mrlokans/readinglog/internal/entities"
)

const (
	defaultDays = 180

	skipChance = 0.2
	minPages   = 5
	pageSpread = 40 // pages per day fall in [minPages, minPages+pageSpread)
)

var demoBooks = []entities.Book{
	{WorkKey: "book-1", Title: "The Book Thief", Authors: entities.Authors{"Markus Zusak"}},
	{WorkKey: "book-2", Title: "Pachinko", Authors: entities.Authors{"Min Jin Lee"}},
	{WorkKey: "book-3", Title: "Mistborn", Authors: entities.Authors{"Brandon Sanderson"}},
	{WorkKey: "book-4", Title: "The Nightingale", Authors: entities.Authors{"Kristin Hannah"}},
	{WorkKey: "book-5", Title: "All the Light We Cannot See", Authors: entities.Authors{"Anthony Doerr"}},
	{WorkKey: "book-6", Title: "The Kite Runner", Authors: entities.Authors{"Khaled Hosseini"}},
}

// generate builds a history of days ending today. The books are read one
// after another in equal blocks, book-1 being the most recent, and about
// one day in five is skipped.
func generate(today entities.Date, days int, rng *rand.Rand, loc *time.Location) entities.ReadingState {
	state := entities.DefaultReadingState()
	perBook := max(days/len(demoBooks), 1)
	bookAt := func(daysAgo int) int {
		return min(daysAgo/perBook, len(demoBooks)-1)
	}

	pagesByBook := make([]int, len(demoBooks))
	oldest := make([]int, len(demoBooks))
	newest := make([]int, len(demoBooks))
	for i := range newest {
		newest[i] = -1
	}

	// Oldest first so sessions come out ascending by date.
	for daysAgo := days - 1; daysAgo >= 0; daysAgo-- {
		idx := bookAt(daysAgo)
		if newest[idx] < 0 {
			oldest[idx] = daysAgo
		}
		newest[idx] = daysAgo

		if rng.Float64() < skipChance {
			continue
		}
		pages := rng.Intn(pageSpread) + minPages
		pagesByBook[idx] += pages
		state.ReadingSessions = append(state.ReadingSessions, entities.ReadingSession{
			WorkKey:   demoBooks[idx].WorkKey,
			Date:      today.AddDays(-daysAgo),
			PagesRead: pages,
		})
	}

	for idx, book := range demoBooks {
		if newest[idx] < 0 {
			continue
		}
		book = book.Clone()
		book.TotalPages = entities.IntPtr(pagesByBook[idx])
		book.CurrentPage = pagesByBook[idx]

		started := atHour(today.AddDays(-oldest[idx]), 8, loc)
		rating := 3 + float64(rng.Intn(5))*0.5
		state.FinishedBooks = append(state.FinishedBooks, entities.FinishedBook{
			Book:       book,
			FinishedAt: atHour(today.AddDays(-newest[idx]), 21, loc),
			Rating:     &rating,
			StartedAt:  &started,
		})
	}
	return state
}

func atHour(d entities.Date, hour int, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, hour, 0, 0, 0, loc)
}
