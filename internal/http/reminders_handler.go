package httpapi

import (
	"fmt"
	"net/http"

	"carekiosk/internal/bus"
	"carekiosk/internal/domain"
	"carekiosk/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RemindersHandler 提醒 CRUD（看护者 surface 专用）
type RemindersHandler struct {
	reminders repository.ReminderRepo
	bus       *bus.Bus
	logger    *zap.Logger
}

// NewRemindersHandler 创建提醒 Handler
func NewRemindersHandler(reminders repository.ReminderRepo, b *bus.Bus, logger *zap.Logger) *RemindersHandler {
	return &RemindersHandler{reminders: reminders, bus: b, logger: logger}
}

// List GET /api/reminders，按 time 升序
func (h *RemindersHandler) List(w http.ResponseWriter, r *http.Request) {
	reminders, err := h.reminders.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list reminders", zap.Error(err))
		writeError(w, err)
		return
	}
	if reminders == nil {
		reminders = []*domain.Reminder{}
	}
	writeJSON(w, http.StatusOK, reminders)
}

// Get GET /api/reminders/:id
func (h *RemindersHandler) Get(w http.ResponseWriter, r *http.Request, id string) {
	reminder, err := h.reminders.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reminder)
}

// createReminderRequest POST 体；days/type/active 缺省时取默认值
type createReminderRequest struct {
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Time        string               `json:"time"`
	Type        *domain.ReminderType `json:"type"`
	Days        *[]string            `json:"days"`
	Active      *bool                `json:"active"`
}

// Create POST /api/reminders → 201 + entity
func (h *RemindersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReminderRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}

	reminder := &domain.Reminder{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Time:        req.Time,
		Type:        domain.ReminderMedication,
		Days:        domain.AllDays,
		Active:      true,
	}
	if req.Type != nil {
		reminder.Type = *req.Type
	}
	if req.Days != nil {
		reminder.Days = *req.Days
	}
	if req.Active != nil {
		reminder.Active = *req.Active
	}

	if err := reminder.Validate(); err != nil {
		writeError(w, err)
		return
	}

	if err := h.reminders.Create(r.Context(), reminder); err != nil {
		h.logger.Error("failed to create reminder", zap.Error(err))
		writeError(w, err)
		return
	}

	h.bus.Publish(bus.TopicRemindersUpdated, nil)
	writeJSON(w, http.StatusCreated, reminder)
}

// Update PUT /api/reminders/:id，允许部分更新
func (h *RemindersHandler) Update(w http.ResponseWriter, r *http.Request, id string) {
	var patch repository.ReminderPatch
	if err := readBodyJSON(r, maxBodyBytes, &patch); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}
	if err := validatePatch(&patch); err != nil {
		writeError(w, err)
		return
	}

	reminder, err := h.reminders.Update(r.Context(), id, patch)
	if err != nil {
		writeError(w, err)
		return
	}

	h.bus.Publish(bus.TopicRemindersUpdated, nil)
	writeJSON(w, http.StatusOK, reminder)
}

// Delete DELETE /api/reminders/:id
func (h *RemindersHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.reminders.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	h.bus.Publish(bus.TopicRemindersUpdated, nil)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Reminder deleted"})
}

func validatePatch(p *repository.ReminderPatch) error {
	if p.Title != nil && *p.Title == "" {
		return fmt.Errorf("%w: title must not be empty", domain.ErrValidation)
	}
	if p.Time != nil {
		if _, _, err := domain.ParseHHMM(*p.Time); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
	}
	if p.Type != nil && !domain.ValidReminderType(*p.Type) {
		return fmt.Errorf("%w: unknown reminder type %q", domain.ErrValidation, *p.Type)
	}
	if p.Days != nil {
		for _, d := range *p.Days {
			if !domain.ValidDay(d) {
				return fmt.Errorf("%w: unknown day %q", domain.ErrValidation, d)
			}
		}
	}
	return nil
}
