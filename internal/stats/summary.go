package stats

import (
	"time"

	"github.com/mrlokans/readinglog/internal/entities"
)

type CurrentProgress struct {
	WorkKey     string           `json:"workKey"`
	Title       string           `json:"title"`
	Authors     entities.Authors `json:"authors"`
	CurrentPage int              `json:"currentPage"`
	TotalPages  *int             `json:"totalPages,omitempty"`
	Percent     int              `json:"percent"`
	DaysReading int              `json:"daysReading"`
}

type Summary struct {
	TBRCount         int              `json:"tbrCount"`
	ReadingCount     int              `json:"readingCount"`
	FinishedCount    int              `json:"finishedCount"`
	FinishedThisYear int              `json:"finishedThisYear"`
	TotalPages       int              `json:"totalPages"`
	PagesLast7Days   int              `json:"pagesLast7Days"`
	PagesLast30Days  int              `json:"pagesLast30Days"`
	ActiveDays       int              `json:"activeDays"`
	CurrentStreak    int              `json:"currentStreak"`
	LongestStreak    int              `json:"longestStreak"`
	AverageRating    *float64         `json:"averageRating,omitempty"`
	Current          *CurrentProgress `json:"current,omitempty"`
}

// Summarize computes shelf counts, page totals and streaks as of today.
// loc decides which day timestamps fall on. A streak still counts as
// current when the last reading day was yesterday.
func Summarize(state entities.ReadingState, today entities.Date, loc *time.Location) Summary {
	summary := Summary{
		TBRCount:      len(state.TBRBooks),
		FinishedCount: len(state.FinishedBooks),
	}

	var ratingSum float64
	var rated int
	for _, f := range state.FinishedBooks {
		if !f.FinishedAt.IsZero() && entities.DateOf(f.FinishedAt, loc).Year == today.Year {
			summary.FinishedThisYear++
		}
		if f.Rating != nil {
			ratingSum += *f.Rating
			rated++
		}
	}
	if rated > 0 {
		avg := ratingSum / float64(rated)
		summary.AverageRating = &avg
	}

	if cr := state.CurrentlyReading; cr != nil {
		summary.ReadingCount = 1
		summary.Current = &CurrentProgress{
			WorkKey:     cr.WorkKey,
			Title:       cr.Title,
			Authors:     cr.Authors,
			CurrentPage: cr.CurrentPage,
			TotalPages:  cr.TotalPages,
			Percent:     cr.Percent(),
		}
		if !cr.StartedAt.IsZero() {
			started := entities.DateOf(cr.StartedAt, loc)
			summary.Current.DaysReading = daysBetween(started, today) + 1
		}
	}

	daily := DailyActivity(state.ReadingSessions, today, 0)
	for _, p := range daily {
		summary.TotalPages += p.Pages
		if inWindow(p.Date, windowStart(today, 7), today) {
			summary.PagesLast7Days += p.Pages
		}
		if inWindow(p.Date, windowStart(today, 30), today) {
			summary.PagesLast30Days += p.Pages
		}
	}
	summary.ActiveDays = len(daily)
	summary.CurrentStreak, summary.LongestStreak = streaks(daily, today)

	return summary
}

// streaks expects points ascending by date with no duplicates.
func streaks(points []Point, today entities.Date) (current, longest int) {
	run := 0
	var prev entities.Date
	for _, p := range points {
		if !prev.IsZero() && p.Date == prev.AddDays(1) {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
		prev = p.Date
	}

	if len(points) == 0 {
		return 0, 0
	}
	last := points[len(points)-1].Date
	if last == today || last == today.AddDays(-1) {
		current = run
	}
	return current, longest
}

func daysBetween(from, to entities.Date) int {
	if to.Before(from) {
		return 0
	}
	return int(to.Time().Sub(from.Time()).Hours() / 24)
}
