// Package stats 依从性统计。纯函数：期望次数从周期规则推导，
// missed 作为残差推导，从不落库。
package stats

import (
	"sort"
	"time"

	"carekiosk/internal/clock"
	"carekiosk/internal/domain"
)

// MaxWindowDays 统计窗口上限
const MaxWindowDays = 365

// ClampWindow 把窗口天数收敛到 [1, MaxWindowDays]
func ClampWindow(days int) int {
	if days < 1 {
		return 1
	}
	if days > MaxWindowDays {
		return MaxWindowDays
	}
	return days
}

// DailyBucket 日历热力图的一天
type DailyBucket struct {
	Date      string `json:"date"` // YYYY-MM-DD
	Expected  int    `json:"expected"`
	Completed int    `json:"completed"`
	Skipped   int    `json:"skipped"`
}

// Daily 窗口内每天的期望/完成/跳过计数，按日期升序。
// 期望值按当前 active 提醒集合推导（与原始行为一致）。
func Daily(reminders []*domain.Reminder, completions []*domain.Completion, days int, now time.Time) []DailyBucket {
	days = ClampWindow(days)

	expectedByDay := map[string]int{}
	for _, day := range domain.WeekdayAbbrs {
		for _, r := range reminders {
			if r.Active && r.ScheduledOn(day) {
				expectedByDay[day]++
			}
		}
	}

	buckets := map[string]*DailyBucket{}
	for i := 0; i < days; i++ {
		d := now.AddDate(0, 0, -i)
		buckets[clock.DateKey(d)] = &DailyBucket{
			Date:     clock.DateKey(d),
			Expected: expectedByDay[clock.DayAbbr(d)],
		}
	}

	for _, c := range completions {
		b, ok := buckets[clock.DateKey(c.ScheduledFor)]
		if !ok {
			continue
		}
		switch c.Status {
		case domain.StatusCompleted:
			b.Completed++
		case domain.StatusSkipped:
			b.Skipped++
		}
	}

	out := make([]DailyBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// ReminderPerf 单个提醒在窗口内的表现
type ReminderPerf struct {
	ID             string              `json:"id"`
	Title          string              `json:"title"`
	Time           string              `json:"time"`
	Type           domain.ReminderType `json:"type"`
	Active         bool                `json:"active"`
	Expected       int                 `json:"expected"`
	Completed      int                 `json:"completed"`
	Skipped        int                 `json:"skipped"`
	Missed         int                 `json:"missed"`
	CompletionRate int                 `json:"completionRate"` // 0-100
}

// PerReminder 每个提醒的表现（含 inactive，保留历史），
// 按完成率升序——问题最大的排最前。
func PerReminder(reminders []*domain.Reminder, completions []*domain.Completion, days int, now time.Time) []ReminderPerf {
	days = ClampWindow(days)

	counts := map[string]*struct{ completed, skipped int }{}
	for _, c := range completions {
		cnt, ok := counts[c.ReminderID]
		if !ok {
			cnt = &struct{ completed, skipped int }{}
			counts[c.ReminderID] = cnt
		}
		switch c.Status {
		case domain.StatusCompleted:
			cnt.completed++
		case domain.StatusSkipped:
			cnt.skipped++
		}
	}

	out := make([]ReminderPerf, 0, len(reminders))
	for _, r := range reminders {
		expected := 0
		for i := 0; i < days; i++ {
			if r.ScheduledOn(clock.DayAbbr(now.AddDate(0, 0, -i))) {
				expected++
			}
		}

		perf := ReminderPerf{
			ID:       r.ID,
			Title:    r.Title,
			Time:     r.Time,
			Type:     r.Type,
			Active:   r.Active,
			Expected: expected,
		}
		if cnt, ok := counts[r.ID]; ok {
			perf.Completed = cnt.completed
			perf.Skipped = cnt.skipped
		}
		perf.Missed = expected - perf.Completed - perf.Skipped
		if perf.Missed < 0 {
			perf.Missed = 0
		}
		if expected > 0 {
			perf.CompletionRate = int(float64(perf.Completed)/float64(expected)*100 + 0.5)
		}
		out = append(out, perf)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CompletionRate < out[j].CompletionRate
	})
	return out
}

// DayEntry 某一天的一次期望发生及其实际状态
type DayEntry struct {
	ID          string                  `json:"id"`
	Title       string                  `json:"title"`
	Time        string                  `json:"time"`
	Type        domain.ReminderType     `json:"type"`
	Status      domain.CompletionStatus `json:"status"` // completed / skipped / missed
	CompletedAt *time.Time              `json:"completedAt"`
}

// DaySummary 当天汇总
type DaySummary struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Skipped   int `json:"skipped"`
	Missed    int `json:"missed"`
}

// DayReport 某一天的明细
type DayReport struct {
	Date      string     `json:"date"`
	DayOfWeek string     `json:"dayOfWeek"`
	Reminders []DayEntry `json:"reminders"`
	Summary   DaySummary `json:"summary"`
}

// DayDetail 指定日期的期望发生列表，逐项标注实际状态。
// completions 应为该日期的记录集合。
func DayDetail(reminders []*domain.Reminder, completions []*domain.Completion, date time.Time) DayReport {
	day := clock.DayAbbr(date)
	dateKey := clock.DateKey(date)

	byReminder := map[string]*domain.Completion{}
	for _, c := range completions {
		if clock.DateKey(c.ScheduledFor) == dateKey {
			byReminder[c.ReminderID] = c
		}
	}

	var scheduled []*domain.Reminder
	for _, r := range reminders {
		if r.ScheduledOn(day) {
			scheduled = append(scheduled, r)
		}
	}
	sort.SliceStable(scheduled, func(i, j int) bool {
		return scheduled[i].Time < scheduled[j].Time
	})

	report := DayReport{Date: dateKey, DayOfWeek: day}
	for _, r := range scheduled {
		entry := DayEntry{
			ID:     r.ID,
			Title:  r.Title,
			Time:   r.Time,
			Type:   r.Type,
			Status: domain.StatusMissed,
		}
		if c, ok := byReminder[r.ID]; ok {
			entry.Status = c.Status
			completedAt := c.CompletedAt
			entry.CompletedAt = &completedAt
		}
		report.Reminders = append(report.Reminders, entry)

		report.Summary.Total++
		switch entry.Status {
		case domain.StatusCompleted:
			report.Summary.Completed++
		case domain.StatusSkipped:
			report.Summary.Skipped++
		default:
			report.Summary.Missed++
		}
	}
	return report
}
