// Package codec decodes and encodes settings documents.
//
// Defaults documents may carry comments and trailing commas (JSONC);
// overrides documents are strict JSON. Import and export additionally
// cover TOML and YAML. Every decoded tree is normalized, so the rest of
// the system only ever sees canonical values.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/prefpane/prefpane/internal/settings/tree"
)

// Errors returned by codec operations.
var (
	// ErrNotObject indicates the document's top level is not an object.
	ErrNotObject = errors.New("document is not an object")

	// ErrUnknownFormat indicates an unsupported import or export format.
	ErrUnknownFormat = errors.New("unknown document format")

	// ErrInvalidShareLink indicates a share-link token that cannot be
	// decoded.
	ErrInvalidShareLink = errors.New("invalid share link")
)

// DecodeError wraps a parse failure with the format being decoded.
type DecodeError struct {
	Format string
	Err    error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Format, e.Err)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// DecodeDefaults parses a defaults document. Comments and trailing
// commas are allowed.
func DecodeDefaults(data []byte) (map[string]any, error) {
	return decodeJSON(jsonc.ToJSON(data), "jsonc")
}

// DecodeOverrides parses an overrides document: strict JSON, no
// comments. A "$schema" key is editor metadata, not a setting, and is
// stripped before decoding. Empty input decodes to an empty tree.
func DecodeOverrides(data []byte) (map[string]any, error) {
	if gjson.GetBytes(data, "$schema").Exists() {
		if stripped, err := sjson.DeleteBytes(data, "$schema"); err == nil {
			data = stripped
		}
	}
	return decodeJSON(data, "json")
}

func decodeJSON(data []byte, format string) (map[string]any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, nil
	}
	if !gjson.ValidBytes(data) {
		return nil, &DecodeError{Format: format, Err: errors.New("malformed JSON")}
	}
	if !gjson.ParseBytes(data).IsObject() {
		return nil, &DecodeError{Format: format, Err: ErrNotObject}
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &DecodeError{Format: format, Err: err}
	}
	return tree.Normalize(m)
}

// SchemaRef returns the "$schema" reference pinned in a raw document,
// or the empty string.
func SchemaRef(data []byte) string {
	return gjson.GetBytes(data, "$schema").String()
}

// EncodeDelta renders a tree as indented JSON with sorted keys. An
// empty tree renders as the literal {}.
func EncodeDelta(t map[string]any) ([]byte, error) {
	if len(t) == 0 {
		return []byte("{}"), nil
	}
	raw, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return pretty.PrettyOptions(raw, &pretty.Options{Width: 80, Indent: "  ", SortKeys: true}), nil
}

// Export renders a tree in the named format: json, toml, or yaml.
func Export(format string, t map[string]any) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", "json":
		return EncodeDelta(t)
	case "toml":
		return ExportTOML(t)
	case "yaml", "yml":
		return ExportYAML(t)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
