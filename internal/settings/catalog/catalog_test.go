package catalog

import (
	"reflect"
	"testing"

	"github.com/prefpane/prefpane/internal/settings/schema"
)

func testDefaults() map[string]any {
	return map[string]any{
		"editor": map[string]any{
			"fontSize": float64(14),
			"tabSize":  float64(4),
		},
		"ui": map[string]any{
			"theme": "dark",
			"sidebar": map[string]any{
				"position": "left",
				"visible":  true,
			},
		},
		"files": map[string]any{
			"exclude": []any{"**/.git"},
		},
	}
}

func testSchema(t *testing.T) *schema.Schema {
	t.Helper()

	s, err := schema.Parse([]byte(`{
		"type": "object",
		"properties": {
			"editor": {
				"type": "object",
				"properties": {
					"fontSize": {"$ref": "#/$defs/fontSize"},
					"tabSize": {"type": "integer", "minimum": 1, "maximum": 16}
				}
			},
			"ui": {
				"type": "object",
				"properties": {
					"theme": {
						"type": "string",
						"description": "Color theme.",
						"enum": ["dark", "light", "system"]
					},
					"sidebar": {
						"type": "object",
						"properties": {
							"position": {"type": "string", "enum": ["left", "right"]},
							"visible": {"type": "boolean"}
						}
					}
				}
			},
			"files": {
				"type": "object",
				"properties": {
					"exclude": {"type": "array"}
				}
			},
			"telemetry": {
				"type": "object",
				"properties": {
					"endpoint": {"type": "string", "deprecated": true}
				}
			}
		},
		"$defs": {
			"fontSize": {"type": "integer", "minimum": 6, "maximum": 72, "description": "Font size in points."}
		}
	}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return s
}

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	return Build(testDefaults(),
		WithSchema(testSchema(t)),
		WithComments(map[string]string{
			"editor.tabSize": "Spaces per tab stop.",
		}),
	)
}

func TestBuild_FieldsSorted(t *testing.T) {
	c := testCatalog(t)

	fields := c.Fields()
	want := []string{
		"editor.fontSize",
		"editor.tabSize",
		"files.exclude",
		"telemetry.endpoint",
		"ui.sidebar.position",
		"ui.sidebar.visible",
		"ui.theme",
	}

	got := make([]string, len(fields))
	for i, f := range fields {
		got[i] = f.Path
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Fields() paths = %v, want %v", got, want)
	}
}

func TestBuild_ResolvesRefs(t *testing.T) {
	c := testCatalog(t)

	f := c.ByPath("editor.fontSize")
	if f == nil {
		t.Fatal("editor.fontSize not in catalog")
	}
	if f.Type != "integer" {
		t.Errorf("Type = %q, want %q", f.Type, "integer")
	}
	if f.Minimum == nil || *f.Minimum != 6 {
		t.Errorf("Minimum = %v, want 6", f.Minimum)
	}
	if f.Maximum == nil || *f.Maximum != 72 {
		t.Errorf("Maximum = %v, want 72", f.Maximum)
	}
	if f.Default != float64(14) {
		t.Errorf("Default = %v, want 14", f.Default)
	}
	if f.Description != "Font size in points." {
		t.Errorf("Description = %q", f.Description)
	}
	if f.Pointer != "/editor/fontSize" {
		t.Errorf("Pointer = %q, want %q", f.Pointer, "/editor/fontSize")
	}
	if f.Section != "editor" {
		t.Errorf("Section = %q, want %q", f.Section, "editor")
	}
}

func TestBuild_CommentOverridesSchemaDescription(t *testing.T) {
	c := testCatalog(t)

	f := c.ByPath("editor.tabSize")
	if f == nil {
		t.Fatal("editor.tabSize not in catalog")
	}
	if f.Description != "Spaces per tab stop." {
		t.Errorf("Description = %q, want comment text", f.Description)
	}
}

func TestBuild_SchemaOnlyField(t *testing.T) {
	c := testCatalog(t)

	f := c.ByPath("telemetry.endpoint")
	if f == nil {
		t.Fatal("telemetry.endpoint not in catalog")
	}
	if f.Default != nil {
		t.Errorf("Default = %v, want nil", f.Default)
	}
	if !f.Deprecated {
		t.Error("Deprecated = false, want true")
	}
	if f.Type != "string" {
		t.Errorf("Type = %q, want %q", f.Type, "string")
	}
	if f.Section != "telemetry" {
		t.Errorf("Section = %q, want %q", f.Section, "telemetry")
	}
}

func TestBuild_EnumFromSchema(t *testing.T) {
	c := testCatalog(t)

	f := c.ByPath("ui.theme")
	if f == nil {
		t.Fatal("ui.theme not in catalog")
	}
	want := []any{"dark", "light", "system"}
	if !reflect.DeepEqual(f.Enum, want) {
		t.Errorf("Enum = %v, want %v", f.Enum, want)
	}
}

func TestBuild_WithoutSchema(t *testing.T) {
	c := Build(testDefaults())

	tests := []struct {
		path string
		typ  string
	}{
		{"editor.fontSize", "number"},
		{"ui.theme", "string"},
		{"ui.sidebar.visible", "boolean"},
		{"files.exclude", "array"},
	}
	for _, tt := range tests {
		f := c.ByPath(tt.path)
		if f == nil {
			t.Fatalf("%s not in catalog", tt.path)
		}
		if f.Type != tt.typ {
			t.Errorf("%s Type = %q, want %q", tt.path, f.Type, tt.typ)
		}
	}

	if c.ByPath("telemetry.endpoint") != nil {
		t.Error("schema-only field present without schema")
	}
}

func TestCatalog_ByPath(t *testing.T) {
	c := testCatalog(t)

	if c.ByPath("ui.theme") == nil {
		t.Error("ByPath(ui.theme) = nil")
	}
	if c.ByPath("/ui/theme") == nil {
		t.Error("ByPath(/ui/theme) = nil, want pointer form accepted")
	}
	if c.ByPath("ui.missing") != nil {
		t.Error("ByPath(ui.missing) != nil")
	}
	if !c.Has("editor.fontSize") {
		t.Error("Has(editor.fontSize) = false")
	}
}

func TestCatalog_Sections(t *testing.T) {
	c := testCatalog(t)

	want := []string{"editor", "files", "telemetry", "ui"}
	if got := c.Sections(); !reflect.DeepEqual(got, want) {
		t.Errorf("Sections() = %v, want %v", got, want)
	}

	ui := c.Section("ui")
	wantUI := []string{"ui.sidebar.position", "ui.sidebar.visible", "ui.theme"}
	got := make([]string, len(ui))
	for i, f := range ui {
		got[i] = f.Path
	}
	if !reflect.DeepEqual(got, wantUI) {
		t.Errorf("Section(ui) = %v, want %v", got, wantUI)
	}

	if fields := c.Section("nope"); len(fields) != 0 {
		t.Errorf("Section(nope) = %v, want empty", fields)
	}
}

func TestCatalog_Search(t *testing.T) {
	c := testCatalog(t)

	tests := []struct {
		query string
		want  []string
	}{
		{"font", []string{"editor.fontSize"}},
		{"ui.*", []string{"ui.sidebar.position", "ui.sidebar.visible", "ui.theme"}},
		{"*.position", []string{"ui.sidebar.position"}},
		{"*points*", []string{"editor.fontSize"}},
		{"THEME", []string{"ui.theme"}},
		{"nothing-matches", nil},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run("query "+tt.query, func(t *testing.T) {
			var got []string
			for _, f := range c.Search(tt.query) {
				got = append(got, f.Path)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Search(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestCatalog_Deprecated(t *testing.T) {
	c := testCatalog(t)

	dep := c.Deprecated()
	if len(dep) != 1 || dep[0].Path != "telemetry.endpoint" {
		paths := make([]string, len(dep))
		for i, f := range dep {
			paths[i] = f.Path
		}
		t.Errorf("Deprecated() = %v, want [telemetry.endpoint]", paths)
	}
}

func TestCatalog_EmbeddedSchemaCoverage(t *testing.T) {
	s, err := schema.LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded() error = %v", err)
	}

	c := Build(map[string]any{}, WithSchema(s))
	for _, path := range []string{
		"editor.fontSize",
		"editor.wordWrap",
		"ui.sidebar.position",
		"files.autoSaveDelayMs",
		"search.maxResults",
		"telemetry.endpoint",
	} {
		if !c.Has(path) {
			t.Errorf("embedded schema missing catalog field %s", path)
		}
	}

	if f := c.ByPath("editor.fontSize"); f == nil || f.Type != "integer" {
		t.Error("editor.fontSize not resolved through $defs")
	}
}
