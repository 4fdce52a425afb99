// Package source acquires defaults documents.
//
// A Loader fetches the raw bytes of a defaults document from somewhere:
// the embedded built-ins, a file, or an HTTP endpoint. The Watcher
// signals when a file-backed document changes on disk so the host can
// reload. Decoding and normalization belong to the codec package; this
// package only moves bytes.
package source

import (
	"context"
	_ "embed"
)

//go:embed defaults.jsonc
var embeddedDefaults []byte

// Loader fetches the raw bytes of a defaults document.
type Loader interface {
	Load(ctx context.Context) ([]byte, error)
}

// Static serves a fixed document from memory.
type Static []byte

// Load returns a copy of the document.
func (s Static) Load(_ context.Context) ([]byte, error) {
	return append([]byte(nil), s...), nil
}

// Embedded returns the built-in defaults document. It carries the
// field comments surfaced in the catalog.
func Embedded() Static {
	return Static(embeddedDefaults)
}
