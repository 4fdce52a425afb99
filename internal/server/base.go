package server

import (
	"github.com/prefpane/prefpane/internal/settings"
	"github.com/prefpane/prefpane/internal/settings/catalog"
	"github.com/prefpane/prefpane/internal/settings/codec"
	"github.com/prefpane/prefpane/internal/settings/schema"
)

// Base bundles the shared inputs every new session starts from: the
// normalized defaults tree, the raw defaults document it came from,
// the schema, and the field catalog derived from all three.
type Base struct {
	Defaults map[string]any
	Raw      []byte
	Schema   *schema.Schema
	Catalog  *catalog.Catalog
}

// NewBase decodes a defaults document and derives the shared pieces.
// Comments in the document become catalog descriptions.
func NewBase(raw []byte, sch *schema.Schema) (*Base, error) {
	defaults, err := codec.DecodeDefaults(raw)
	if err != nil {
		return nil, err
	}

	opts := []catalog.Option{catalog.WithComments(codec.ExtractComments(raw))}
	if sch != nil {
		opts = append(opts, catalog.WithSchema(sch))
	}

	return &Base{
		Defaults: defaults,
		Raw:      raw,
		Schema:   sch,
		Catalog:  catalog.Build(defaults, opts...),
	}, nil
}

// currentBase returns the base bundle sessions are created from.
func (s *Server) currentBase() *Base {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.base
}

// ReloadBase swaps the shared bundle and pushes the new defaults into
// every live session. Sessions keep their overrides; each document
// publishes a reload change its subscribers can react to.
func (s *Server) ReloadBase(base *Base) {
	s.mu.Lock()
	s.base = base
	s.mu.Unlock()

	for _, sess := range s.manager.List() {
		err := sess.Update(func(doc *settings.Document) error {
			return doc.ReloadDefaults(base.Defaults)
		})
		if err != nil {
			s.log.Warn().Err(err).Str("session", sess.ID).Msg("defaults reload failed")
		}
	}
	s.log.Info().Int("sessions", s.manager.Len()).Msg("defaults reloaded")
}

// newDocument builds a session document from the current base.
func (s *Server) newDocument(overrides map[string]any) (*settings.Document, error) {
	base := s.currentBase()

	opts := []settings.Option{}
	if len(overrides) > 0 {
		opts = append(opts, settings.WithOverrides(overrides))
	}
	if base.Schema != nil {
		opts = append(opts, settings.WithSchema(base.Schema))
	}
	return settings.New(base.Defaults, opts...)
}
