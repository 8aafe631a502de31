// Package stats derives chart data and summaries from the reading state.
// Everything here is a pure function of its inputs.
package stats

import (
	"sort"

	"github.com/mrlokans/readinglog/internal/entities"
)

// Point is the number of pages read on one day.
type Point struct {
	Date  entities.Date `json:"date"`
	Pages int           `json:"pages"`
}

// Segment is one book's activity inside a window.
type Segment struct {
	WorkKey string  `json:"workKey"`
	Title   string  `json:"title"`
	Pages   int     `json:"pages"`
	Points  []Point `json:"points"`
}

// DailyActivity sums pages per day across all books for the days-long window
// ending today, ascending by date. days <= 0 means no lower bound.
func DailyActivity(sessions []entities.ReadingSession, today entities.Date, days int) []Point {
	from := windowStart(today, days)
	return aggregate(sessions, func(s entities.ReadingSession) bool {
		return inWindow(s.Date, from, today)
	})
}

// BookActivity sums pages per day for one book over its whole history.
func BookActivity(sessions []entities.ReadingSession, workKey string) []Point {
	workKey = entities.CleanWorkKey(workKey)
	return aggregate(sessions, func(s entities.ReadingSession) bool {
		return s.WorkKey == workKey
	})
}

// Segments splits the window's activity per book, ordered by the first day
// each book was read. Titles come from whatever shelf still holds the book.
func Segments(state entities.ReadingState, today entities.Date, days int) []Segment {
	from := windowStart(today, days)

	titles := make(map[string]string)
	for _, b := range state.Books() {
		titles[b.WorkKey] = b.Title
	}

	byBook := make(map[string][]entities.ReadingSession)
	for _, s := range state.ReadingSessions {
		if inWindow(s.Date, from, today) {
			byBook[s.WorkKey] = append(byBook[s.WorkKey], s)
		}
	}

	segments := make([]Segment, 0, len(byBook))
	for workKey, sessions := range byBook {
		points := aggregate(sessions, func(entities.ReadingSession) bool { return true })
		seg := Segment{WorkKey: workKey, Title: titles[workKey], Points: points}
		for _, p := range points {
			seg.Pages += p.Pages
		}
		segments = append(segments, seg)
	}

	sort.Slice(segments, func(i, j int) bool {
		a, b := segments[i].Points[0].Date, segments[j].Points[0].Date
		if a == b {
			return segments[i].WorkKey < segments[j].WorkKey
		}
		return a.Before(b)
	})
	return segments
}

// FillDateGaps inserts zero-page days between consecutive points so a chart
// shows idle days. Input must be sorted ascending.
func FillDateGaps(points []Point) []Point {
	if len(points) < 2 {
		return points
	}

	filled := make([]Point, 0, len(points))
	for i := 0; i < len(points)-1; i++ {
		filled = append(filled, points[i])
		for d := points[i].Date.AddDays(1); d.Before(points[i+1].Date); d = d.AddDays(1) {
			filled = append(filled, Point{Date: d})
		}
	}
	return append(filled, points[len(points)-1])
}

func windowStart(today entities.Date, days int) entities.Date {
	if days <= 0 {
		return entities.Date{}
	}
	return today.AddDays(-(days - 1))
}

func inWindow(d, from, to entities.Date) bool {
	if d.IsZero() || d.After(to) {
		return false
	}
	return from.IsZero() || !d.Before(from)
}

func aggregate(sessions []entities.ReadingSession, keep func(entities.ReadingSession) bool) []Point {
	byDate := make(map[entities.Date]int)
	for _, s := range sessions {
		if s.Date.IsZero() || s.PagesRead <= 0 || !keep(s) {
			continue
		}
		byDate[s.Date] += s.PagesRead
	}

	points := make([]Point, 0, len(byDate))
	for d, pages := range byDate {
		points = append(points, Point{Date: d, Pages: pages})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points
}
