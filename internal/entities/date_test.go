package entities

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateOf(t *testing.T) {
	ts := time.Date(2024, 3, 10, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, Date{2024, time.March, 10}, DateOf(ts, time.UTC))
	assert.Equal(t, Date{2024, time.March, 10}, DateOf(ts, nil))

	tokyo := time.FixedZone("JST", 9*60*60)
	assert.Equal(t, Date{2024, time.March, 11}, DateOf(ts, tokyo))
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input    string
		expected Date
		wantErr  bool
	}{
		{"2024-03-10", Date{2024, time.March, 10}, false},
		{"2024-03-10T22:15:00.000Z", Date{2024, time.March, 10}, false},
		{" 2024-12-31 ", Date{2024, time.December, 31}, false},
		{"yesterday", Date{}, true},
		{"", Date{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDate_Arithmetic(t *testing.T) {
	d := Date{2024, time.February, 28}

	assert.Equal(t, Date{2024, time.February, 29}, d.AddDays(1))
	assert.Equal(t, Date{2024, time.March, 1}, d.AddDays(2))
	assert.Equal(t, Date{2024, time.January, 29}, d.AddDays(-30))
	assert.True(t, d.Before(d.AddDays(1)))
	assert.True(t, d.After(d.AddDays(-1)))
	assert.Equal(t, "2024-02-28", d.String())
	assert.Equal(t, "", Date{}.String())
}

func TestDate_JSON(t *testing.T) {
	s := ReadingSession{WorkKey: "W1", Date: Date{2024, time.May, 2}, PagesRead: 12}
	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"workKey":"W1","date":"2024-05-02","pagesRead":12}`, string(data))

	var back ReadingSession
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, s, back)

	var bad ReadingSession
	require.NoError(t, json.Unmarshal([]byte(`{"workKey":"W1","date":"not a date","pagesRead":1}`), &bad))
	assert.True(t, bad.Date.IsZero())
}
