package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mrlokans/readinglog/internal/entities"
	"github.com/mrlokans/readinglog/internal/stats"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func bookLine(b entities.Book) string {
	title := b.Title
	if title == "" {
		title = "(untitled)"
	}
	return fmt.Sprintf("%s by %s", title, b.Authors.Line())
}

func pagesLine(b entities.Book) string {
	if b.TotalPages == nil {
		return fmt.Sprintf("p. %d", b.CurrentPage)
	}
	return fmt.Sprintf("p. %d/%d (%d%%)", b.CurrentPage, *b.TotalPages, b.Percent())
}

func printState(w io.Writer, state entities.ReadingState, today entities.Date) {
	fmt.Fprintln(w, "Currently reading")
	if cr := state.CurrentlyReading; cr != nil {
		fmt.Fprintf(w, "  %s  %s  [%s]\n", bookLine(cr.Book), pagesLine(cr.Book), cr.WorkKey)
	} else {
		fmt.Fprintln(w, "  (nothing)")
	}

	fmt.Fprintf(w, "\nTo be read (%d)\n", len(state.TBRBooks))
	for i, b := range state.TBRBooks {
		fmt.Fprintf(w, "  %d. %s  [%s]\n", i+1, bookLine(b), b.WorkKey)
	}

	fmt.Fprintf(w, "\nFinished (%d)\n", len(state.FinishedBooks))
	for _, f := range state.FinishedBooks {
		line := fmt.Sprintf("  %s  finished %s", bookLine(f.Book), f.FinishedAt.Format("2006-01-02"))
		if f.Rating != nil {
			line += fmt.Sprintf("  rated %g", *f.Rating)
		}
		fmt.Fprintln(w, line)
	}

	todayPages := 0
	for _, s := range state.ReadingSessions {
		if s.Date == today {
			todayPages += s.PagesRead
		}
	}
	fmt.Fprintf(w, "\nToday (%s): %d pages\n", today, todayPages)
}

func printSummary(w io.Writer, s stats.Summary) {
	tw := newTable(w)
	fmt.Fprintf(tw, "To be read\t%d\n", s.TBRCount)
	fmt.Fprintf(tw, "Reading\t%d\n", s.ReadingCount)
	fmt.Fprintf(tw, "Finished\t%d (%d this year)\n", s.FinishedCount, s.FinishedThisYear)
	fmt.Fprintf(tw, "Pages\t%d total, %d last 7 days, %d last 30 days\n", s.TotalPages, s.PagesLast7Days, s.PagesLast30Days)
	fmt.Fprintf(tw, "Active days\t%d\n", s.ActiveDays)
	fmt.Fprintf(tw, "Streak\t%d current, %d longest\n", s.CurrentStreak, s.LongestStreak)
	if s.AverageRating != nil {
		fmt.Fprintf(tw, "Average rating\t%.1f\n", *s.AverageRating)
	}
	if c := s.Current; c != nil {
		fmt.Fprintf(tw, "Current book\t%s, %d%% after %d days\n", c.Title, c.Percent, c.DaysReading)
	}
	tw.Flush()
}

func printActivity(w io.Writer, points []stats.Point) {
	if len(points) == 0 {
		fmt.Fprintln(w, "No reading sessions in this window")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "DATE\tPAGES")
	for _, p := range points {
		fmt.Fprintf(tw, "%s\t%d\n", p.Date, p.Pages)
	}
	tw.Flush()
}
