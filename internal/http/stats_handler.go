package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"carekiosk/internal/clock"
	"carekiosk/internal/domain"
	"carekiosk/internal/repository"
	"carekiosk/internal/stats"

	"go.uber.org/zap"
)

// StatsHandler 依从性统计查询（看护者 dashboard）
type StatsHandler struct {
	reminders   repository.ReminderRepo
	completions repository.CompletionRepo
	clk         clock.Clock
	logger      *zap.Logger
}

// NewStatsHandler 创建统计 Handler
func NewStatsHandler(
	reminders repository.ReminderRepo,
	completions repository.CompletionRepo,
	clk clock.Clock,
	logger *zap.Logger,
) *StatsHandler {
	return &StatsHandler{
		reminders:   reminders,
		completions: completions,
		clk:         clk,
		logger:      logger,
	}
}

// load 窗口内的提醒与完成记录
func (h *StatsHandler) load(r *http.Request, days int) ([]*domain.Reminder, []*domain.Completion, error) {
	ctx := r.Context()
	since := clock.StartOfDay(h.clk.Now().AddDate(0, 0, -days))

	reminders, err := h.reminders.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	completions, err := h.completions.ListSince(ctx, since)
	if err != nil {
		return nil, nil, err
	}
	return reminders, completions, nil
}

// Completions GET /api/completions?days=D：完成历史，最新在前，带提醒展开
func (h *StatsHandler) Completions(w http.ResponseWriter, r *http.Request) {
	days := stats.ClampWindow(parseInt(r.URL.Query().Get("days"), 7))

	reminders, completions, err := h.load(r, days)
	if err != nil {
		h.logger.Error("failed to load completion history", zap.Error(err))
		writeError(w, err)
		return
	}

	byID := map[string]*domain.Reminder{}
	for _, rem := range reminders {
		byID[rem.ID] = rem
	}
	for _, c := range completions {
		c.Reminder = byID[c.ReminderID]
	}
	if completions == nil {
		completions = []*domain.Completion{}
	}
	writeJSON(w, http.StatusOK, completions)
}

// Daily GET /api/stats/daily?days=D：日历热力图数据
func (h *StatsHandler) Daily(w http.ResponseWriter, r *http.Request) {
	days := stats.ClampWindow(parseInt(r.URL.Query().Get("days"), 30))

	reminders, completions, err := h.load(r, days)
	if err != nil {
		h.logger.Error("failed to load daily stats", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats.Daily(reminders, completions, days, h.clk.Now()))
}

// PerReminder GET /api/stats/reminders?days=D：按完成率升序
func (h *StatsHandler) PerReminder(w http.ResponseWriter, r *http.Request) {
	days := stats.ClampWindow(parseInt(r.URL.Query().Get("days"), 30))

	reminders, completions, err := h.load(r, days)
	if err != nil {
		h.logger.Error("failed to load reminder stats", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats.PerReminder(reminders, completions, days, h.clk.Now()))
}

// Day GET /api/stats/day/:date（date = YYYY-MM-DD，本地时区）
func (h *StatsHandler) Day(w http.ResponseWriter, r *http.Request, date string) {
	target, err := time.ParseInLocation("2006-01-02", date, h.clk.Now().Location())
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid date %q, want YYYY-MM-DD", domain.ErrValidation, date))
		return
	}

	ctx := r.Context()
	reminders, err := h.reminders.List(ctx)
	if err != nil {
		h.logger.Error("failed to list reminders", zap.Error(err))
		writeError(w, err)
		return
	}
	completions, err := h.completions.ListDay(ctx, date)
	if err != nil {
		h.logger.Error("failed to list completions", zap.Error(err))
		writeError(w, err)
		return
	}

	report := stats.DayDetail(reminders, completions, target)
	if report.Reminders == nil {
		report.Reminders = []stats.DayEntry{}
	}
	writeJSON(w, http.StatusOK, report)
}

// Export GET /api/stats/export?days=D：xlsx 依从性报表
func (h *StatsHandler) Export(w http.ResponseWriter, r *http.Request) {
	days := stats.ClampWindow(parseInt(r.URL.Query().Get("days"), 30))

	reminders, completions, err := h.load(r, days)
	if err != nil {
		h.logger.Error("failed to load stats for export", zap.Error(err))
		writeError(w, err)
		return
	}

	now := h.clk.Now()
	data, err := GenerateComplianceReport(
		stats.Daily(reminders, completions, days, now),
		stats.PerReminder(reminders, completions, days, now),
	)
	if err != nil {
		h.logger.Error("failed to generate compliance report", zap.Error(err))
		writeError(w, err)
		return
	}

	filename := fmt.Sprintf("compliance-%s-%dd.xlsx", clock.DateKey(now), days)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
