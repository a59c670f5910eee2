package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHHMM_Valid(t *testing.T) {
	cases := []struct {
		in     string
		hour   int
		minute int
	}{
		{"00:00", 0, 0},
		{"08:05", 8, 5},
		{"12:30", 12, 30},
		{"23:59", 23, 59},
	}
	for _, c := range cases {
		hour, minute, err := ParseHHMM(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.hour, hour, c.in)
		assert.Equal(t, c.minute, minute, c.in)
	}
}

func TestParseHHMM_Invalid(t *testing.T) {
	cases := []string{
		"",
		"8:05",
		"08:5",
		"0805",
		"08-05",
		"ab:cd",
		"24:00",
		"08:60",
		"08:05:00",
		"01:3a", // 每位都必须是数字，不接受尾随垃圾
		"0a:30",
		"1 :30",
		"01: 5",
	}
	for _, c := range cases {
		_, _, err := ParseHHMM(c)
		assert.Error(t, err, c)
	}
}

func TestReminderValidate_Success(t *testing.T) {
	r := &Reminder{
		Title: "Morning pills",
		Time:  "08:00",
		Days:  []string{"mon", "wed", "fri"},
		Type:  ReminderMedication,
	}
	require.NoError(t, r.Validate())
}

func TestReminderValidate_Errors(t *testing.T) {
	cases := []struct {
		name string
		r    Reminder
	}{
		{"empty title", Reminder{Title: "  ", Time: "08:00", Type: ReminderTask}},
		{"bad time", Reminder{Title: "x", Time: "8am", Type: ReminderTask}},
		{"bad type", Reminder{Title: "x", Time: "08:00", Type: "chore"}},
		{"bad day", Reminder{Title: "x", Time: "08:00", Type: ReminderTask, Days: []string{"monday"}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.r.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestScheduledOn(t *testing.T) {
	r := &Reminder{Days: []string{"mon", "tue"}}
	assert.True(t, r.ScheduledOn("mon"))
	assert.False(t, r.ScheduledOn("sun"))

	empty := &Reminder{}
	assert.False(t, empty.ScheduledOn("mon"))
}

func TestWeekdayAbbrsIndexing(t *testing.T) {
	// index 必须与 time.Weekday 对齐（0 = Sunday）
	require.Len(t, WeekdayAbbrs, 7)
	assert.Equal(t, "sun", WeekdayAbbrs[0])
	assert.Equal(t, "sat", WeekdayAbbrs[6])
	assert.Len(t, AllDays, 7)
}
