package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	applog "smartexpense/internal/log"
	"smartexpense/internal/query"
	"smartexpense/internal/store"
)

// snapshotEvent is the data payload of a "snapshot" server-sent event.
type snapshotEvent struct {
	Version  uint64       `json:"version"`
	Count    int          `json:"count"`
	Total    float64      `json:"total"`
	Expenses []expenseDTO `json:"expenses"`
}

// handleEvents streams every published snapshot as a server-sent event,
// starting with the current one. The stream ends when the client goes away
// or the server shuts down.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		InternalServerError("streaming unsupported").Write(w)
		return
	}
	logger := applog.FromContext(r.Context())

	updates, cancel := s.svc.Observe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// the subscription delivers the current snapshot first
	var last uint64
	sent := false
	send := func(snap store.Snapshot) bool {
		if sent && snap.Version == last {
			return true
		}
		sent, last = true, snap.Version
		if err := s.writeSnapshot(w, snap); err != nil {
			logger.DebugContext(r.Context(), "Event stream write failed", applog.FieldError, err)
			return false
		}
		flusher.Flush()
		return true
	}

	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case snap, ok := <-updates:
			if !ok || !send(snap) {
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": heartbeat\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case <-r.Context().Done():
			return
		case <-s.done:
			return
		}
	}
}

func (s *Server) writeSnapshot(w http.ResponseWriter, snap store.Snapshot) error {
	loc := s.svc.Location()
	data, err := json.Marshal(snapshotEvent{
		Version:  snap.Version,
		Count:    snap.Len(),
		Total:    query.Total(snap.Expenses),
		Expenses: toDTOs(snap.Expenses, loc),
	})
	if err != nil {
		return fmt.Errorf("encode snapshot event: %w", err)
	}
	_, err = fmt.Fprintf(w, "event: snapshot\nid: %s\ndata: %s\n\n", strconv.FormatUint(snap.Version, 10), data)
	return err
}
