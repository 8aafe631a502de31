package entities

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// ParseLooseInt reads a JSON number or numeric string, truncating fractions.
// null, "", and anything non-numeric report false.
func ParseLooseInt(data []byte) (int, bool) {
	f, ok := ParseLooseFloat(data)
	if !ok {
		return 0, false
	}
	return int(math.Trunc(f)), true
}

// ParseLooseFloat reads a JSON number or numeric string.
func ParseLooseFloat(data []byte) (float64, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return 0, false
	}

	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		return f, !math.IsNaN(f) && !math.IsInf(f, 0)
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseLooseTime(data []byte) (time.Time, bool) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil || s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func parseLooseString(data []byte) string {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ""
	}
	return s
}

// UnmarshalJSON tolerates page counts stored as strings or null.
func (b *Book) UnmarshalJSON(data []byte) error {
	type bookFields Book
	var raw struct {
		bookFields
		TotalPages  json.RawMessage `json:"totalPages"`
		CurrentPage json.RawMessage `json:"currentPage"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*b = Book(raw.bookFields)
	b.TotalPages = nil
	if n, ok := ParseLooseInt(raw.TotalPages); ok && n >= 0 {
		b.TotalPages = IntPtr(n)
	}
	b.CurrentPage = 0
	if n, ok := ParseLooseInt(raw.CurrentPage); ok && n > 0 {
		b.CurrentPage = n
	}
	return nil
}

// UnmarshalJSON is required because Book's decoder would otherwise be
// promoted and drop the timestamps.
func (c *CurrentlyReading) UnmarshalJSON(data []byte) error {
	var book Book
	if err := json.Unmarshal(data, &book); err != nil {
		return err
	}
	var raw struct {
		StartedAt     json.RawMessage `json:"startedAt"`
		LastUpdatedAt json.RawMessage `json:"lastUpdatedAt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*c = CurrentlyReading{Book: book}
	c.StartedAt, _ = parseLooseTime(raw.StartedAt)
	c.LastUpdatedAt, _ = parseLooseTime(raw.LastUpdatedAt)
	return nil
}

func (f *FinishedBook) UnmarshalJSON(data []byte) error {
	var book Book
	if err := json.Unmarshal(data, &book); err != nil {
		return err
	}
	var raw struct {
		FinishedAt json.RawMessage `json:"finishedAt"`
		Rating     json.RawMessage `json:"rating"`
		Notes      json.RawMessage `json:"notes"`
		StartedAt  json.RawMessage `json:"startedAt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*f = FinishedBook{Book: book, Notes: parseLooseString(raw.Notes)}
	f.FinishedAt, _ = parseLooseTime(raw.FinishedAt)
	if rating, ok := ParseLooseFloat(raw.Rating); ok {
		f.Rating = &rating
	}
	if started, ok := parseLooseTime(raw.StartedAt); ok {
		f.StartedAt = &started
	}
	return nil
}
