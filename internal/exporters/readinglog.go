package exporters

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mrlokans/readinglog/internal/entities"
	"github.com/mrlokans/readinglog/internal/stats"
	"github.com/mrlokans/readinglog/internal/utils"
)

const (
	IndexFileName     = "reading-log.md"
	FinishedDirName   = "finished"
	recentSessionDays = 30
)

type MarkdownExporter struct {
	ExportDir string
	Location  *time.Location
	now       func() time.Time
}

func NewMarkdownExporter(exportDir string, loc *time.Location) *MarkdownExporter {
	if loc == nil {
		loc = time.UTC
	}
	return &MarkdownExporter{
		ExportDir: exportDir,
		Location:  loc,
		now:       time.Now,
	}
}

// Export writes reading-log.md and one note per finished book. A book that
// fails to write is counted and skipped; failing to write the index fails
// the export.
func (exporter *MarkdownExporter) Export(state entities.ReadingState) (ExportResult, error) {
	result := ExportResult{}
	if exporter.ExportDir == "" {
		return result, fmt.Errorf("export directory is not configured")
	}

	finishedDir := filepath.Join(exporter.ExportDir, FinishedDirName)
	if err := os.MkdirAll(finishedDir, 0755); err != nil {
		return result, fmt.Errorf("failed to create export directory: %w", err)
	}

	now := exporter.now().In(exporter.Location)
	indexPath := filepath.Join(exporter.ExportDir, IndexFileName)
	if err := writeFileAtomic(indexPath, GenerateReadingLog(state, now)); err != nil {
		return result, fmt.Errorf("failed to write reading log: %w", err)
	}
	result.Files = append(result.Files, indexPath)
	result.SessionsListed = len(recentSessions(state.ReadingSessions, entities.DateOf(now, exporter.Location)))

	used := make(map[string]int)
	for _, finished := range state.FinishedBooks {
		name := utils.BookFilename(finished.Title, finished.Authors)
		used[name]++
		if used[name] > 1 {
			name = fmt.Sprintf("%s (%d)", name, used[name])
		}

		path := filepath.Join(finishedDir, name+".md")
		content := GenerateFinishedBook(finished, state.ReadingSessions, exporter.Location)
		if err := writeFileAtomic(path, content); err != nil {
			log.Printf("Export: failed to write %s: %v", path, err)
			result.BooksFailed++
			continue
		}
		result.Files = append(result.Files, path)
		result.BooksProcessed++
	}

	return result, nil
}

// GenerateReadingLog renders the whole state as a single note.
func GenerateReadingLog(state entities.ReadingState, now time.Time) string {
	var builder strings.Builder
	today := entities.DateOf(now, now.Location())

	fmt.Fprintf(&builder, "---\n")
	fmt.Fprintf(&builder, "content_type: reading_log\n")
	fmt.Fprintf(&builder, "updated_at: %s\n", today)
	fmt.Fprintf(&builder, "tags: [reading, books]\n")
	fmt.Fprintf(&builder, "---\n\n")
	fmt.Fprintf(&builder, "# Reading log\n\n")

	fmt.Fprintf(&builder, "## Currently reading\n\n")
	if cr := state.CurrentlyReading; cr != nil {
		fmt.Fprintf(&builder, "**%s** by %s\n\n", bookTitle(cr.Book), cr.Authors.Line())
		if cr.TotalPages != nil {
			fmt.Fprintf(&builder, "Page %d of %d (%d%%)", cr.CurrentPage, *cr.TotalPages, cr.Percent())
		} else {
			fmt.Fprintf(&builder, "Page %d", cr.CurrentPage)
		}
		if !cr.StartedAt.IsZero() {
			fmt.Fprintf(&builder, ", started %s", entities.DateOf(cr.StartedAt, now.Location()))
		}
		fmt.Fprintf(&builder, "\n\n")
	} else {
		fmt.Fprintf(&builder, "_Nothing in progress._\n\n")
	}

	fmt.Fprintf(&builder, "## To be read (%d)\n\n", len(state.TBRBooks))
	for _, b := range state.TBRBooks {
		fmt.Fprintf(&builder, "- %s by %s\n", bookTitle(b), b.Authors.Line())
	}
	if len(state.TBRBooks) > 0 {
		fmt.Fprintf(&builder, "\n")
	}

	fmt.Fprintf(&builder, "## Finished (%d)\n\n", len(state.FinishedBooks))
	for _, f := range state.FinishedBooks {
		fmt.Fprintf(&builder, "- [[%s]]", utils.BookFilename(f.Title, f.Authors))
		if !f.FinishedAt.IsZero() {
			fmt.Fprintf(&builder, " finished %s", entities.DateOf(f.FinishedAt, now.Location()))
		}
		if f.Rating != nil {
			fmt.Fprintf(&builder, ", rated %s", formatRating(*f.Rating))
		}
		fmt.Fprintf(&builder, "\n")
		if notes := strings.TrimSpace(f.Notes); notes != "" {
			fmt.Fprintf(&builder, "  > %s\n", strings.ReplaceAll(notes, "\n", "\n  > "))
		}
	}
	if len(state.FinishedBooks) > 0 {
		fmt.Fprintf(&builder, "\n")
	}

	titles := make(map[string]string)
	for _, b := range state.Books() {
		titles[b.WorkKey] = bookTitle(b)
	}

	sessions := recentSessions(state.ReadingSessions, today)
	fmt.Fprintf(&builder, "## Last %d days\n\n", recentSessionDays)
	if len(sessions) == 0 {
		fmt.Fprintf(&builder, "_No reading sessions._\n")
		return builder.String()
	}
	total := 0
	for _, s := range sessions {
		title, ok := titles[s.WorkKey]
		if !ok {
			title = s.WorkKey
		}
		fmt.Fprintf(&builder, "- %s: %d pages of %s\n", s.Date, s.PagesRead, title)
		total += s.PagesRead
	}
	fmt.Fprintf(&builder, "\nTotal: %d pages\n", total)

	return builder.String()
}

// GenerateFinishedBook renders the note for one finished book.
func GenerateFinishedBook(f entities.FinishedBook, sessions []entities.ReadingSession, loc *time.Location) string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "---\n")
	fmt.Fprintf(&builder, "content_type: finished_book\n")
	fmt.Fprintf(&builder, "work_key: %s\n", f.WorkKey)
	fmt.Fprintf(&builder, "title: \"%s\"\n", escapeQuotes(bookTitle(f.Book)))
	fmt.Fprintf(&builder, "authors: [%s]\n", quotedList(f.Authors))
	if f.StartedAt != nil && !f.StartedAt.IsZero() {
		fmt.Fprintf(&builder, "started_at: %s\n", entities.DateOf(*f.StartedAt, loc))
	}
	if !f.FinishedAt.IsZero() {
		fmt.Fprintf(&builder, "finished_at: %s\n", entities.DateOf(f.FinishedAt, loc))
	}
	if f.Rating != nil {
		fmt.Fprintf(&builder, "rating: %s\n", formatRating(*f.Rating))
	}
	if f.TotalPages != nil {
		fmt.Fprintf(&builder, "pages: %d\n", *f.TotalPages)
	}
	if f.CoverURL != "" {
		fmt.Fprintf(&builder, "cover: %s\n", f.CoverURL)
	}
	fmt.Fprintf(&builder, "tags: [reading, books, finished]\n")
	fmt.Fprintf(&builder, "---\n\n")
	fmt.Fprintf(&builder, "# %s\n\n", bookTitle(f.Book))

	if notes := strings.TrimSpace(f.Notes); notes != "" {
		fmt.Fprintf(&builder, "## Notes\n\n%s\n\n", notes)
	}

	points := stats.BookActivity(sessions, f.WorkKey)
	if len(points) > 0 {
		fmt.Fprintf(&builder, "## Sessions\n\n")
		total := 0
		for _, p := range points {
			fmt.Fprintf(&builder, "- %s: %d pages\n", p.Date, p.Pages)
			total += p.Pages
		}
		fmt.Fprintf(&builder, "\nRead %d pages over %d days.\n", total, len(points))
	}

	return builder.String()
}

// recentSessions returns the sessions of the trailing window, newest first.
func recentSessions(sessions []entities.ReadingSession, today entities.Date) []entities.ReadingSession {
	from := today.AddDays(-(recentSessionDays - 1))
	out := make([]entities.ReadingSession, 0, len(sessions))
	for _, s := range sessions {
		if s.Date.IsZero() || s.PagesRead <= 0 || s.Date.Before(from) || s.Date.After(today) {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date == out[j].Date {
			return out[i].WorkKey < out[j].WorkKey
		}
		return out[j].Date.Before(out[i].Date)
	})
	return out
}

func bookTitle(b entities.Book) string {
	if strings.TrimSpace(b.Title) == "" {
		return "Untitled"
	}
	return b.Title
}

func formatRating(r float64) string {
	if r == float64(int(r)) {
		return fmt.Sprintf("%d", int(r))
	}
	return fmt.Sprintf("%.1f", r)
}

func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, "\"", "\\\"")
}

func quotedList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = "\"" + escapeQuotes(item) + "\""
	}
	return strings.Join(quoted, ", ")
}

func writeFileAtomic(path, content string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".export_tmp_")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
