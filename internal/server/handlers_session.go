package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/prefpane/prefpane/internal/session"
	"github.com/prefpane/prefpane/internal/settings/codec"
)

// maxBodySize caps request bodies. Settings documents are small;
// anything bigger is a mistake.
const maxBodySize = 8 << 20

// SessionInfo is the wire form of a session.
type SessionInfo struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Revision  uint64    `json:"revision"`
	Changed   int       `json:"changed"`
	Custom    int       `json:"custom"`
}

func sessionInfo(sess *session.Session) SessionInfo {
	return SessionInfo{
		ID:        sess.ID,
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt(),
		Revision:  sess.Doc.Revision(),
		Changed:   len(sess.Doc.Changed()),
		Custom:    len(sess.Doc.Custom()),
	}
}

// withSession resolves the session named in the URL or writes a 404.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := chi.URLParam(r, "sessionID")
	sess, err := s.manager.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
		return nil, false
	}
	return sess, true
}

// health handles GET /health
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.manager.Len(),
	})
}

// CreateSessionRequest seeds a new session. Overrides and a share link
// are mutually exclusive; with neither the session starts clean.
type CreateSessionRequest struct {
	Overrides map[string]any `json:"overrides,omitempty"`
	ShareLink string         `json:"shareLink,omitempty"`
}

// createSession handles POST /api/sessions
func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid JSON body")
		return
	}

	overrides := req.Overrides
	if req.ShareLink != "" {
		if len(overrides) > 0 {
			writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "overrides and shareLink are mutually exclusive")
			return
		}
		overrides, err = codec.DecodeShareLink(req.ShareLink)
		if err != nil {
			writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
			return
		}
	}

	doc, err := s.newDocument(overrides)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}

	sess := s.manager.Create(doc)
	s.log.Info().Str("session", sess.ID).Msg("session created")
	writeJSON(w, http.StatusCreated, sessionInfo(sess))
}

// listSessions handles GET /api/sessions
func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	sessions := s.manager.List()
	infos := make([]SessionInfo, len(sessions))
	for i, sess := range sessions {
		infos[i] = sessionInfo(sess)
	}
	writeJSON(w, http.StatusOK, infos)
}

// getSession handles GET /api/sessions/{sessionID}
func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionInfo(sess))
}

// deleteSession handles DELETE /api/sessions/{sessionID}
func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if err := s.manager.Delete(id); err != nil {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
		return
	}
	s.log.Info().Str("session", id).Msg("session deleted")
	writeSuccess(w)
}
