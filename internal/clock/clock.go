package clock

import (
	"fmt"
	"sync"
	"time"

	"carekiosk/internal/domain"
)

// Clock 时间能力注入（resolver / recorder / 状态机共用，测试可固定时间）
// kiosk 本地时钟即权威时间，所有推导都基于本地时区
type Clock interface {
	Now() time.Time
}

// System 系统壁钟
type System struct{}

func (System) Now() time.Time { return time.Now() }

// DayAbbr 返回给定时刻的星期缩写（"sun".."sat"）
func DayAbbr(t time.Time) string {
	return domain.WeekdayAbbrs[int(t.Weekday())]
}

// FormatHHMM 格式化为 "HH:MM"
func FormatHHMM(t time.Time) string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// StartOfDay 当天本地零点
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// AtTime 当天本地零点 + "HH:MM"，精确到分钟
func AtTime(day time.Time, hhmm string) (time.Time, error) {
	hour, minute, err := domain.ParseHHMM(hhmm)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location()), nil
}

// DateKey 本地日期 "YYYY-MM-DD"（完成记录去重、统计分桶用）
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Fake 测试用可控时钟
type Fake struct {
	mu sync.Mutex
	t  time.Time
}

// NewFake 创建固定在 t 的时钟
func NewFake(t time.Time) *Fake {
	return &Fake{t: t}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

// Set 跳到指定时刻
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = t
}

// Advance 前进 d
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}
