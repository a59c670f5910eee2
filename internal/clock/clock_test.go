package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2026-01-05 是周一
var monday = time.Date(2026, 1, 5, 8, 30, 45, 0, time.Local)

func TestDayAbbr(t *testing.T) {
	assert.Equal(t, "mon", DayAbbr(monday))
	assert.Equal(t, "sun", DayAbbr(monday.AddDate(0, 0, -1)))
	assert.Equal(t, "sat", DayAbbr(monday.AddDate(0, 0, 5)))
}

func TestFormatHHMM(t *testing.T) {
	assert.Equal(t, "08:30", FormatHHMM(monday))
	assert.Equal(t, "00:05", FormatHHMM(time.Date(2026, 1, 5, 0, 5, 0, 0, time.Local)))
}

func TestStartOfDay(t *testing.T) {
	start := StartOfDay(monday)
	assert.Equal(t, time.Date(2026, 1, 5, 0, 0, 0, 0, time.Local), start)
}

func TestAtTime(t *testing.T) {
	at, err := AtTime(monday, "14:45")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 5, 14, 45, 0, 0, time.Local), at)

	_, err = AtTime(monday, "25:00")
	assert.Error(t, err)
}

func TestDateKey(t *testing.T) {
	assert.Equal(t, "2026-01-05", DateKey(monday))
}

func TestFakeClock(t *testing.T) {
	f := NewFake(monday)
	assert.Equal(t, monday, f.Now())

	f.Advance(90 * time.Second)
	assert.Equal(t, monday.Add(90*time.Second), f.Now())

	later := monday.Add(2 * time.Hour)
	f.Set(later)
	assert.Equal(t, later, f.Now())
}
