package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/prefpane/prefpane/internal/settings"
	"github.com/prefpane/prefpane/internal/settings/codec"
	"github.com/prefpane/prefpane/internal/settings/query"
	"github.com/prefpane/prefpane/internal/settings/schema"
	"github.com/prefpane/prefpane/internal/settings/tree"
)

// getEffective handles GET /api/sessions/{sessionID}/effective
func (s *Server) getEffective(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Doc.Effective())
}

// getDelta handles GET /api/sessions/{sessionID}/delta
func (s *Server) getDelta(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Doc.Delta())
}

// getChanged handles GET /api/sessions/{sessionID}/changed
func (s *Server) getChanged(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Doc.Changed())
}

// getCustom handles GET /api/sessions/{sessionID}/custom
func (s *Server) getCustom(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Doc.Custom())
}

// getFields handles GET /api/sessions/{sessionID}/fields
func (s *Server) getFields(w http.ResponseWriter, r *http.Request) {
	_, ok := s.withSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.currentBase().Catalog.Fields())
}

// contentTypeFor maps an export format to its media type.
func contentTypeFor(format string) string {
	switch format {
	case "toml":
		return "application/toml"
	case "yaml", "yml":
		return "application/yaml"
	default:
		return "application/json"
	}
}

// exportDelta handles GET /api/sessions/{sessionID}/export?format=
func (s *Server) exportDelta(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}

	data, err := codec.Export(format, sess.Doc.Delta())
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", contentTypeFor(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// getShareLink handles GET /api/sessions/{sessionID}/sharelink
func (s *Server) getShareLink(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}

	link, err := codec.EncodeShareLink(sess.Doc.Delta())
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"link": link})
}

// importOverrides handles POST /api/sessions/{sessionID}/import?format=
// The body is the raw document; format selects the decoder and
// defaults to json. validate=true rejects documents the schema turns
// down before anything is replaced.
func (s *Server) importOverrides(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "cannot read body")
		return
	}

	t, err := codec.ImportAny(format, data)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}

	if r.URL.Query().Get("validate") == "true" {
		if sch := s.currentBase().Schema; sch != nil {
			res := schema.NewValidator(sch).Validate(t)
			if !res.Valid {
				writeErrorWithDetails(w, http.StatusUnprocessableEntity, ErrCodeValidation, "imported document failed validation", res.Errors)
				return
			}
		}
	}

	err = sess.Update(func(doc *settings.Document) error {
		return doc.ReplaceOverrides(t, "import")
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}
	writeSuccess(w)
}

// SetValueRequest carries the new value for a path.
type SetValueRequest struct {
	Value any `json:"value"`
}

// setValue handles PUT /api/sessions/{sessionID}/values/{path}
// The path is dotted, e.g. ui.theme. validate=true checks the value
// against the schema before writing.
func (s *Server) setValue(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}
	path := chi.URLParam(r, "path")

	var req SetValueRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid JSON body")
		return
	}

	if r.URL.Query().Get("validate") == "true" {
		res := sess.Doc.ValidateValue(path, req.Value)
		if !res.Valid {
			writeErrorWithDetails(w, http.StatusUnprocessableEntity, ErrCodeValidation, "value failed validation", res.Errors)
			return
		}
	}

	err := sess.Update(func(doc *settings.Document) error {
		return doc.Set(path, req.Value)
	})
	if err != nil {
		switch {
		case errors.Is(err, tree.ErrPathConflict):
			writeError(w, http.StatusConflict, ErrCodeConflict, err.Error())
		default:
			writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		}
		return
	}
	writeSuccess(w)
}

// resetValue handles DELETE /api/sessions/{sessionID}/values/{path}
func (s *Server) resetValue(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}
	path := chi.URLParam(r, "path")

	removed := false
	_ = sess.Update(func(doc *settings.Document) error {
		removed = doc.Reset(path)
		return nil
	})
	if !removed {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "no override at path")
		return
	}
	writeSuccess(w)
}

// resetAll handles DELETE /api/sessions/{sessionID}/values
func (s *Server) resetAll(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}

	_ = sess.Update(func(doc *settings.Document) error {
		doc.ResetAll()
		return nil
	})
	writeSuccess(w)
}

// ValidateRequest narrows validation to a single value when Path is
// set; otherwise the whole overrides tree is checked.
type ValidateRequest struct {
	Path  string `json:"path,omitempty"`
	Value any    `json:"value,omitempty"`
}

// validateSession handles POST /api/sessions/{sessionID}/validate
func (s *Server) validateSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}

	var req ValidateRequest
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid JSON body")
		return
	}

	var res schema.Result
	if req.Path != "" {
		res = sess.Doc.ValidateValue(req.Path, req.Value)
	} else {
		res = sess.Doc.Validate()
	}
	writeJSON(w, http.StatusOK, res)
}

// querySession handles GET /api/sessions/{sessionID}/query?q=
// The expression runs against the effective tree.
func (s *Server) querySession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}

	expr := r.URL.Query().Get("q")
	if expr == "" {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "q is required")
		return
	}

	results, err := query.Run(r.Context(), expr, sess.Doc.Effective())
	if err != nil {
		if errors.Is(err, query.ErrBadQuery) {
			writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}
