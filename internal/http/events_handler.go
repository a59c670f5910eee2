package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"carekiosk/internal/bus"
	"carekiosk/internal/domain"
	"carekiosk/internal/kiosk"

	"go.uber.org/zap"
)

// heartbeatInterval SSE 保活间隔
const heartbeatInterval = 30 * time.Second

// EventsHandler 把总线主题作为 SSE 流推给各 surface。
// 投递是建议性的：surface 收到任何主题后都通过 REST API 重新读取。
type EventsHandler struct {
	bus    *bus.Bus
	store  *kiosk.StateStore
	logger *zap.Logger
}

// NewEventsHandler 创建事件流 Handler
func NewEventsHandler(b *bus.Bus, store *kiosk.StateStore, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{bus: b, store: store, logger: logger}
}

// Stream GET /api/events?role=kiosk|caregiver|mirror
// kiosk/mirror 接入时更新连接时间并立即推送一次状态快照
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	role := bus.Role(r.URL.Query().Get("role"))
	if role == "" {
		role = bus.RoleCaregiver
	}
	if !bus.ValidRole(role) {
		writeError(w, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, role))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "streaming unsupported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// 先订阅再上报连接，保证本连接也能收到接入时的状态快照
	sub := h.bus.Subscribe(role)
	defer sub.Close()

	h.logger.Info("surface connected", zap.String("role", string(role)))

	ctx := r.Context()
	if role == bus.RoleKiosk || role == bus.RoleMirror {
		if err := h.store.Connect(ctx); err != nil {
			h.logger.Warn("failed to record surface connection", zap.Error(err))
		}
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("surface disconnected", zap.String("role", string(role)))
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			data := []byte("{}")
			if ev.Payload != nil {
				b, err := json.Marshal(ev.Payload)
				if err != nil {
					h.logger.Warn("failed to marshal event payload",
						zap.String("topic", string(ev.Topic)), zap.Error(err))
					continue
				}
				data = b
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Topic, data)
			flusher.Flush()
		}
	}
}
