package http

import (
	"net/http"
	"time"

	"smartexpense/internal/cache"
	"smartexpense/internal/core"
	applog "smartexpense/internal/log"
	"smartexpense/internal/middleware/ratelimit"
	"smartexpense/internal/middleware/trace"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]string{"status": "ok"}).Write(w)
}

// handleReady fails while the latest write to storage is failing.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ps := s.svc.Status(r.Context()).PersistStatus
	if ps.Err != nil {
		ErrorResponse(http.StatusServiceUnavailable, "persistence failing: "+ps.Err.Error()).Write(w)
		return
	}
	NewResponse().JSON(map[string]string{"status": "ready"}).Write(w)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats := s.svc.Categories()
	out := make([]string, 0, len(cats))
	for _, c := range cats {
		out = append(out, c.String())
	}
	NewResponse().JSON(map[string][]string{"categories": out}).Write(w)
}

func (s *Server) handleTodayTotal(w http.ResponseWriter, r *http.Request) {
	total := s.svc.TodayTotal(r.Context())
	NewResponse().JSON(map[string]any{
		"date":          s.svc.Now().Format(dayLayout),
		"total":         total,
		"total_display": core.FormatAmount(total),
	}).Write(w)
}

func (s *Server) handleWeeklyReport(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(s.svc.WeeklyReport(r.Context())).Write(w)
}

type persistDTO struct {
	Version uint64     `json:"version"`
	Error   string     `json:"error,omitempty"`
	At      *time.Time `json:"at,omitempty"`
}

type statusResponse struct {
	Online    bool              `json:"online"`
	Version   uint64            `json:"version"`
	Count     int               `json:"count"`
	Persist   persistDTO        `json:"persist"`
	Requests  trace.Metrics     `json:"requests"`
	RateLimit ratelimit.Metrics `json:"rate_limit"`
	Reports   *cache.Stats      `json:"report_cache,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.svc.Status(r.Context())
	resp := statusResponse{
		Online:    st.Online,
		Version:   st.Version,
		Count:     st.Count,
		Persist:   persistDTO{Version: st.PersistStatus.Version},
		Requests:  s.tracer.GetMetrics(),
		RateLimit: s.limiter.GetMetrics(),
	}
	if st.PersistStatus.Err != nil {
		resp.Persist.Error = st.PersistStatus.Err.Error()
	}
	if !st.PersistStatus.At.IsZero() {
		at := st.PersistStatus.At
		resp.Persist.At = &at
	}
	if s.reports != nil {
		stats := s.reports.Stats()
		resp.Reports = &stats
	}
	NewResponse().JSON(resp).Write(w)
}

// handleSetOnline accepts {"online": true} or online=true as a form.
func (s *Server) handleSetOnline(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil || !p.Has("online") {
		BadRequestError("online flag is required").Write(w)
		return
	}
	online, err := ParseBool(p.Get("online"))
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	s.writeOnline(w, r, s.svc.SetOnline(r.Context(), online))
}

func (s *Server) handleToggleOnline(w http.ResponseWriter, r *http.Request) {
	s.writeOnline(w, r, s.svc.ToggleOnline(r.Context()))
}

func (s *Server) writeOnline(w http.ResponseWriter, r *http.Request, online bool) {
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Online flag changed", "online", online)
	NewResponse().
		TriggerOnlineChanged(online).
		JSON(map[string]bool{"online": online}).
		Write(w)
}
