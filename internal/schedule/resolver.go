// Package schedule 把配置的周期提醒解析为"今天"的视图。
// 纯函数：不做 I/O，时间全部来自调用方注入的 now。
package schedule

import (
	"sort"
	"time"

	"carekiosk/internal/clock"
	"carekiosk/internal/domain"
)

// DefaultLookbackMinutes 过期回看窗口：超过 30 分钟的过期提醒不再自动呈现
const DefaultLookbackMinutes = 30

// Entry 今日列表中的一项
type Entry struct {
	*domain.Reminder
	// IsCompleted 今天已有 completed 或 skipped 记录
	// （两者都把该项移出 kiosk 的待办集合）
	IsCompleted bool `json:"isCompleted"`
}

// Result 解析结果
type Result struct {
	// Today 今日提醒，按 time 稳定升序
	Today []Entry
	// Due 当前应呈现的唯一提醒（可能为 nil）
	Due *domain.Reminder
}

// Resolve 给定提醒集合、今天的完成记录、配置和当前时刻，
// 计算今日列表和当前到期项。只处理今天，不跨午夜。
func Resolve(reminders []*domain.Reminder, completions []*domain.Completion, settings *domain.Settings, now time.Time) Result {
	today := clock.DayAbbr(now)
	todayKey := clock.DateKey(now)

	acted := map[string]bool{}
	for _, c := range completions {
		if clock.DateKey(c.ScheduledFor) != todayKey {
			continue
		}
		if c.Status == domain.StatusCompleted || c.Status == domain.StatusSkipped {
			acted[c.ReminderID] = true
		}
	}

	var entries []Entry
	for _, r := range reminders {
		if !r.Active || !r.ScheduledOn(today) {
			continue
		}
		entries = append(entries, Entry{Reminder: r, IsCompleted: acted[r.ID]})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Time < entries[j].Time
	})

	return Result{
		Today: entries,
		Due:   currentlyDue(entries, settings, now),
	}
}

// currentlyDue 选出当前应呈现的唯一项：
//   - 恰好在本分钟到点的项优先（新到达的提醒顶掉屏幕上的旧项，
//     碰撞规则由状态机处理）
//   - 否则取时间窗口内最早的未处理项
//
// 窗口下界 now − lookback（过期回看），上界 now + leadTime（提前呈现）。
func currentlyDue(entries []Entry, settings *domain.Settings, now time.Time) *domain.Reminder {
	lead := 0
	if settings != nil {
		lead = settings.ReminderLeadTime
	}
	lower := now.Add(-DefaultLookbackMinutes * time.Minute)
	upper := now.Add(time.Duration(lead) * time.Minute)
	nowHHMM := clock.FormatHHMM(now)

	// entries 已按 time 升序，首个命中者即各自的赢家
	var exact, windowed *domain.Reminder
	for _, e := range entries {
		if e.IsCompleted {
			continue
		}
		if exact == nil && e.Time == nowHHMM {
			exact = e.Reminder
		}
		at, err := clock.AtTime(now, e.Time)
		if err != nil {
			continue
		}
		if windowed == nil && !at.Before(lower) && !at.After(upper) {
			windowed = e.Reminder
		}
	}
	if exact != nil {
		return exact
	}
	return windowed
}
