package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prefpane/prefpane/internal/settings/notify"
)

// SSEHeartbeatInterval is the interval for SSE heartbeats.
const SSEHeartbeatInterval = 30 * time.Second

// sseWriter wraps http.ResponseWriter for SSE.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
	rc      *http.ResponseController
}

// newSSEWriter creates a new SSE writer.
func newSSEWriter(w http.ResponseWriter) (*sseWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}
	return &sseWriter{w: w, flusher: flusher, rc: http.NewResponseController(w)}, nil
}

// writeEvent writes one SSE event and flushes it.
func (s *sseWriter) writeEvent(eventType string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", eventType, jsonData); err != nil {
		return err
	}

	// ResponseController flushes through middleware wrappers; fall back
	// to the plain flusher when it cannot.
	if flushErr := s.rc.Flush(); flushErr != nil {
		s.flusher.Flush()
	}
	return nil
}

// writeHeartbeat writes an SSE heartbeat comment.
func (s *sseWriter) writeHeartbeat() {
	fmt.Fprintf(s.w, ": heartbeat\n\n")
	s.flusher.Flush()
}

// ChangeEvent is the wire form of a settings change.
type ChangeEvent struct {
	Path   string `json:"path,omitempty"`
	Type   string `json:"type"`
	Old    any    `json:"old,omitempty"`
	New    any    `json:"new,omitempty"`
	Origin string `json:"origin,omitempty"`
}

// sessionEvents handles GET /api/sessions/{sessionID}/events
// Streams the session's change feed. A connected event opens the
// stream; a heartbeat comment keeps idle connections alive.
func (s *Server) sessionEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	sse, err := newSSEWriter(w)
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}

	w.WriteHeader(http.StatusOK)
	sse.flusher.Flush()

	// Subscribe before the connected event goes out, so a client that
	// mutates on connect cannot race past the observer. Small buffer
	// for low-latency streaming; a slow client drops changes rather
	// than stalling the document's observer path.
	changes := make(chan notify.Change, 16)
	sub := sess.Doc.Subscribe(func(c notify.Change) {
		select {
		case changes <- c:
		default:
			s.log.Warn().
				Str("session", sess.ID).
				Str("path", c.Path).
				Msg("SSE change dropped: channel full")
		}
	})
	defer sub.Unsubscribe()

	if err := sse.writeEvent("connected", map[string]string{"session": sess.ID}); err != nil {
		return
	}

	ticker := time.NewTicker(SSEHeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case c := <-changes:
			ev := ChangeEvent{
				Path:   c.Path,
				Type:   c.Type.String(),
				Old:    c.Old,
				New:    c.New,
				Origin: c.Origin,
			}
			if err := sse.writeEvent("change", ev); err != nil {
				return
			}
		case <-ticker.C:
			sse.writeHeartbeat()
		}
	}
}
