package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（避免引入第三方路由依赖）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

// NewRouter 创建路由器
func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

// Handle 注册路由
func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// pathID 去掉前缀取出路径末段 ID；为空或含 '/' 视为无效
func pathID(path, prefix string) (string, bool) {
	id := strings.TrimPrefix(path, prefix)
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, true
}

// RegisterReminderRoutes 提醒 CRUD
func (r *Router) RegisterReminderRoutes(h *RemindersHandler) {
	r.Handle("/api/reminders", func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			h.List(w, req)
		case http.MethodPost:
			h.Create(w, req)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	r.Handle("/api/reminders/", func(w http.ResponseWriter, req *http.Request) {
		id, ok := pathID(req.URL.Path, "/api/reminders/")
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch req.Method {
		case http.MethodGet:
			h.Get(w, req, id)
		case http.MethodPut:
			h.Update(w, req, id)
		case http.MethodDelete:
			h.Delete(w, req, id)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

// RegisterKioskRoutes kiosk 查询与动作
func (r *Router) RegisterKioskRoutes(h *KioskHandler) {
	r.Handle("/api/kiosk/today", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Today(w, req)
	})

	r.Handle("/api/kiosk/complete/", func(w http.ResponseWriter, req *http.Request) {
		id, ok := pathID(req.URL.Path, "/api/kiosk/complete/")
		if !ok || req.Method != http.MethodPost {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.Complete(w, req, id)
	})

	r.Handle("/api/kiosk/skip/", func(w http.ResponseWriter, req *http.Request) {
		id, ok := pathID(req.URL.Path, "/api/kiosk/skip/")
		if !ok || req.Method != http.MethodPost {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.Skip(w, req, id)
	})

	r.Handle("/api/kiosk/state", func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			h.State(w, req)
		case http.MethodPost:
			h.StateChange(w, req)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	r.Handle("/api/kiosk/activity", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Activity(w, req)
	})
}

// RegisterSettingsRoutes 配置单例
func (r *Router) RegisterSettingsRoutes(h *SettingsHandler) {
	r.Handle("/api/settings", func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			h.Get(w, req)
		case http.MethodPut:
			h.Update(w, req)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

// RegisterStatsRoutes 依从性统计
func (r *Router) RegisterStatsRoutes(h *StatsHandler) {
	r.Handle("/api/completions", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Completions(w, req)
	})

	r.Handle("/api/stats/daily", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Daily(w, req)
	})

	r.Handle("/api/stats/reminders", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.PerReminder(w, req)
	})

	r.Handle("/api/stats/day/", func(w http.ResponseWriter, req *http.Request) {
		date, ok := pathID(req.URL.Path, "/api/stats/day/")
		if !ok || req.Method != http.MethodGet {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.Day(w, req, date)
	})

	r.Handle("/api/stats/export", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Export(w, req)
	})
}

// RegisterEventRoutes SSE 事件流
func (r *Router) RegisterEventRoutes(h *EventsHandler) {
	r.Handle("/api/events", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Stream(w, req)
	})
}

// RegisterHealthRoute 存活探针
func (r *Router) RegisterHealthRoute() {
	r.Handle("/api/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}
