package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/prefpane/prefpane/internal/settings"
	"github.com/prefpane/prefpane/internal/settings/codec"
	"github.com/prefpane/prefpane/internal/settings/schema"
	"github.com/prefpane/prefpane/internal/settings/source"
	"github.com/prefpane/prefpane/internal/settings/tree"
)

// Document flags shared by the file commands.
var (
	defaultsPath  string
	overridePaths []string
	outputFormat  string
)

// addDocumentFlags registers the defaults/overrides flags on a command.
func addDocumentFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&defaultsPath, "defaults", "d", "", "Defaults document (built-in when omitted)")
	cmd.Flags().StringArrayVarP(&overridePaths, "overrides", "o", nil, "Overrides document, repeatable; later files win")
}

// addFormatFlag registers the output format flag on a command.
func addFormatFlag(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "Output format (json|toml|yaml)")
}

func isURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// loadRaw reads a document's bytes from the embedded defaults, a URL,
// or a file.
func loadRaw(ctx context.Context, path string) ([]byte, error) {
	switch {
	case path == "":
		return source.Embedded().Load(ctx)
	case isURL(path):
		return source.NewHTTPSource(path).Load(ctx)
	default:
		return source.NewFileSource(path).Load(ctx)
	}
}

// readDocument loads and decodes one settings document. File formats
// dispatch on extension; URLs and the built-in defaults read as JSONC.
func readDocument(ctx context.Context, path string) (map[string]any, error) {
	raw, err := loadRaw(ctx, path)
	if err != nil {
		return nil, err
	}
	if path == "" || isURL(path) {
		return codec.DecodeDefaults(raw)
	}
	return codec.ImportAny(filepath.Base(path), raw)
}

// loadOverrides reads every overrides file and merges them in order.
func loadOverrides(ctx context.Context) (map[string]any, error) {
	overrides := map[string]any{}
	for _, p := range overridePaths {
		t, err := readDocument(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("overrides %s: %w", p, err)
		}
		overrides = tree.Merge(overrides, t)
	}
	return overrides, nil
}

// loadDocument builds a document from the shared flags.
func loadDocument(ctx context.Context) (*settings.Document, error) {
	defaults, err := readDocument(ctx, defaultsPath)
	if err != nil {
		return nil, fmt.Errorf("defaults: %w", err)
	}

	overrides, err := loadOverrides(ctx)
	if err != nil {
		return nil, err
	}

	return settings.New(defaults, settings.WithOverrides(overrides))
}

// loadSchema resolves the schema for validation: an explicit file, or
// the built-in schema when the built-in defaults are in play.
func loadSchema(ctx context.Context, path string) (*schema.Schema, error) {
	if path != "" {
		raw, err := loadRaw(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("schema: %w", err)
		}
		return schema.Parse(raw)
	}
	return schema.LoadEmbedded()
}
