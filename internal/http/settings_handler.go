package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"carekiosk/internal/bus"
	"carekiosk/internal/domain"
	"carekiosk/internal/repository"

	"go.uber.org/zap"
)

// SettingsChangeListener 配置变更后需要重新评估的组件（kiosk 状态机）
type SettingsChangeListener interface {
	SettingsChanged(ctx context.Context) error
}

// SettingsHandler 配置单例读写
type SettingsHandler struct {
	settings repository.SettingsRepo
	bus      *bus.Bus
	listener SettingsChangeListener
	logger   *zap.Logger
}

// NewSettingsHandler 创建配置 Handler；listener 可为 nil
func NewSettingsHandler(settings repository.SettingsRepo, b *bus.Bus, listener SettingsChangeListener, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{settings: settings, bus: b, listener: listener, logger: logger}
}

// Get GET /api/settings（不存在则自动按默认值创建）
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Get(r.Context())
	if err != nil {
		h.logger.Error("failed to load settings", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// Update PUT /api/settings，部分更新并广播完整快照
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch domain.SettingsPatch
	if err := readBodyJSON(r, maxBodyBytes, &patch); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrValidation, err))
		return
	}
	if err := patch.Validate(); err != nil {
		writeError(w, err)
		return
	}

	s, err := h.settings.Update(r.Context(), patch)
	if err != nil {
		h.logger.Error("failed to update settings", zap.Error(err))
		writeError(w, err)
		return
	}

	h.bus.Publish(bus.TopicSettingsUpdated, s)

	// 配置变化可能影响 auto-skip 的剩余时间和到期窗口
	if h.listener != nil {
		if err := h.listener.SettingsChanged(r.Context()); err != nil {
			h.logger.Warn("settings re-evaluation failed", zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, s)
}
