package httpapi

import (
	"fmt"
	"net/http"

	"carekiosk/internal/clock"
	"carekiosk/internal/domain"
	"carekiosk/internal/kiosk"
	"carekiosk/internal/repository"
	"carekiosk/internal/schedule"

	"go.uber.org/zap"
)

// KioskHandler kiosk surface 的动作与查询
type KioskHandler struct {
	machine     *kiosk.Machine
	store       *kiosk.StateStore
	reminders   repository.ReminderRepo
	completions repository.CompletionRepo
	settings    repository.SettingsRepo
	clk         clock.Clock
	logger      *zap.Logger
}

// NewKioskHandler 创建 kiosk Handler
func NewKioskHandler(
	machine *kiosk.Machine,
	store *kiosk.StateStore,
	reminders repository.ReminderRepo,
	completions repository.CompletionRepo,
	settings repository.SettingsRepo,
	clk clock.Clock,
	logger *zap.Logger,
) *KioskHandler {
	return &KioskHandler{
		machine:     machine,
		store:       store,
		reminders:   reminders,
		completions: completions,
		settings:    settings,
		clk:         clk,
		logger:      logger,
	}
}

// Today GET /api/kiosk/today：今日提醒 + isCompleted 标注
func (h *KioskHandler) Today(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := h.clk.Now()

	reminders, err := h.reminders.List(ctx)
	if err != nil {
		h.logger.Error("failed to list reminders", zap.Error(err))
		writeError(w, err)
		return
	}
	completions, err := h.completions.ListDay(ctx, clock.DateKey(now))
	if err != nil {
		h.logger.Error("failed to list completions", zap.Error(err))
		writeError(w, err)
		return
	}
	settings, err := h.settings.Get(ctx)
	if err != nil {
		h.logger.Error("failed to load settings", zap.Error(err))
		writeError(w, err)
		return
	}

	result := schedule.Resolve(reminders, completions, settings, now)
	if result.Today == nil {
		result.Today = []schedule.Entry{}
	}
	writeJSON(w, http.StatusOK, result.Today)
}

// Complete POST /api/kiosk/complete/:id
func (h *KioskHandler) Complete(w http.ResponseWriter, r *http.Request, id string) {
	c, err := h.machine.UserComplete(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":    "Reminder completed",
		"completion": c,
	})
}

// Skip POST /api/kiosk/skip/:id
func (h *KioskHandler) Skip(w http.ResponseWriter, r *http.Request, id string) {
	c, err := h.machine.UserSkip(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":    "Reminder skipped",
		"completion": c,
	})
}

// State GET /api/kiosk/state：单例状态，currentReminderId 已展开
func (h *KioskHandler) State(w http.ResponseWriter, r *http.Request) {
	state, err := h.store.Current(r.Context())
	if err != nil {
		h.logger.Error("failed to load kiosk state", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// stateChangeRequest kiosk surface 上报的状态变更
type stateChangeRequest struct {
	CurrentReminderID *string          `json:"currentReminderId"`
	CurrentView       domain.KioskView `json:"currentView"`
}

// StateChange POST /api/kiosk/state（kiosk-state-change 事件）
func (h *KioskHandler) StateChange(w http.ResponseWriter, r *http.Request) {
	var req stateChangeRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}
	if err := h.store.ApplyChange(r.Context(), req.CurrentReminderID, req.CurrentView); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
}

// Activity POST /api/kiosk/activity（触摸心跳）
func (h *KioskHandler) Activity(w http.ResponseWriter, r *http.Request) {
	if err := h.machine.Activity(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
}
