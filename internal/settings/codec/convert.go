package codec

import (
	"fmt"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v3"

	"github.com/prefpane/prefpane/internal/settings/tree"
)

// ImportAny decodes a document by file extension: .json, .jsonc, .toml,
// .yaml or .yml. A bare format name works in place of a file name.
func ImportAny(name string, data []byte) (map[string]any, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		ext = "." + strings.ToLower(name)
	}
	switch ext {
	case ".json":
		return DecodeOverrides(data)
	case ".jsonc":
		return DecodeDefaults(data)
	case ".toml":
		return DecodeTOML(data)
	case ".yaml", ".yml":
		return DecodeYAML(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, name)
	}
}

// DecodeTOML parses a TOML document into a normalized tree.
func DecodeTOML(data []byte) (map[string]any, error) {
	var m map[string]any
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, &DecodeError{Format: "toml", Err: err}
	}
	return tree.Normalize(m)
}

// DecodeYAML parses a YAML document into a normalized tree.
func DecodeYAML(data []byte) (map[string]any, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, &DecodeError{Format: "yaml", Err: err}
	}
	return tree.Normalize(m)
}

// ExportTOML renders a tree as TOML. TOML has no null, so null leaves
// are dropped.
func ExportTOML(t map[string]any) ([]byte, error) {
	return toml.Marshal(dropNulls(t))
}

// ExportYAML renders a tree as YAML with sorted keys.
func ExportYAML(t map[string]any) ([]byte, error) {
	return yaml.Marshal(t)
}

func dropNulls(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case nil:
			continue
		case map[string]any:
			out[k] = dropNulls(val)
		default:
			out[k] = v
		}
	}
	return out
}
