package tree

import (
	"reflect"
	"testing"
)

// sameRef reports whether two maps are the same map value.
func sameRef(a, b map[string]any) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name     string
		base     map[string]any
		override map[string]any
		expected map[string]any
	}{
		{
			name:     "both nil",
			base:     nil,
			override: nil,
			expected: map[string]any{},
		},
		{
			name:     "nil base",
			base:     nil,
			override: map[string]any{"a": 1},
			expected: map[string]any{"a": 1},
		},
		{
			name:     "no overlap",
			base:     map[string]any{"a": 1},
			override: map[string]any{"b": 2},
			expected: map[string]any{"a": 1, "b": 2},
		},
		{
			name:     "override wins",
			base:     map[string]any{"a": 1},
			override: map[string]any{"a": 2},
			expected: map[string]any{"a": 2},
		},
		{
			name: "nested merge",
			base: map[string]any{
				"editor": map[string]any{
					"tabSize": 4,
				},
			},
			override: map[string]any{
				"editor": map[string]any{
					"insertSpaces": true,
				},
			},
			expected: map[string]any{
				"editor": map[string]any{
					"tabSize":      4,
					"insertSpaces": true,
				},
			},
		},
		{
			name: "nested override wins",
			base: map[string]any{
				"editor": map[string]any{
					"tabSize": 4,
				},
			},
			override: map[string]any{
				"editor": map[string]any{
					"tabSize": 2,
				},
			},
			expected: map[string]any{
				"editor": map[string]any{
					"tabSize": 2,
				},
			},
		},
		{
			name:     "arrays replaced wholesale",
			base:     map[string]any{"list": []any{1, 2, 3}},
			override: map[string]any{"list": []any{9}},
			expected: map[string]any{"list": []any{9}},
		},
		{
			name:     "array replaces map",
			base:     map[string]any{"a": map[string]any{"b": 1}},
			override: map[string]any{"a": []any{1}},
			expected: map[string]any{"a": []any{1}},
		},
		{
			name:     "explicit null wins over default",
			base:     map[string]any{"a": "value"},
			override: map[string]any{"a": nil},
			expected: map[string]any{"a": nil},
		},
		{
			name:     "primitive replaces subtree",
			base:     map[string]any{"a": map[string]any{"b": 1}},
			override: map[string]any{"a": "flat"},
			expected: map[string]any{"a": "flat"},
		},
		{
			name:     "subtree replaces primitive",
			base:     map[string]any{"a": "flat"},
			override: map[string]any{"a": map[string]any{"b": 1}},
			expected: map[string]any{"a": map[string]any{"b": 1}},
		},
		{
			name: "theme and fontSize scenario",
			base: map[string]any{
				"theme": "light",
				"ui":    map[string]any{"fontSize": 14},
			},
			override: map[string]any{"theme": "dark"},
			expected: map[string]any{
				"theme": "dark",
				"ui":    map[string]any{"fontSize": 14},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.base, tt.override)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Merge() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestMergeIdentity(t *testing.T) {
	defaults := map[string]any{
		"theme": "light",
		"ui":    map[string]any{"fontSize": 14},
	}

	if got := Merge(defaults, nil); !sameRef(got, defaults) {
		t.Error("Merge(defaults, nil) should return defaults reference-equal")
	}
	if got := Merge(defaults, map[string]any{}); !sameRef(got, defaults) {
		t.Error("Merge(defaults, {}) should return defaults reference-equal")
	}
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	base := map[string]any{
		"editor": map[string]any{"tabSize": 4},
		"list":   []any{1, 2},
	}
	override := map[string]any{
		"editor": map[string]any{"tabSize": 2},
	}

	got := Merge(base, override)

	if tabSize, _ := Get(base, "editor.tabSize"); tabSize != 4 {
		t.Errorf("base mutated: editor.tabSize = %v, want 4", tabSize)
	}
	if tabSize, _ := Get(override, "editor.tabSize"); tabSize != 2 {
		t.Errorf("override mutated: editor.tabSize = %v, want 2", tabSize)
	}

	// Mutating the merged result must not leak into either input.
	got["editor"].(map[string]any)["tabSize"] = 99
	got["list"].([]any)[0] = 99
	if tabSize, _ := Get(base, "editor.tabSize"); tabSize != 4 {
		t.Errorf("merged result aliases base: editor.tabSize = %v, want 4", tabSize)
	}
	if base["list"].([]any)[0] != 1 {
		t.Error("merged result aliases base list")
	}
	if tabSize, _ := Get(override, "editor.tabSize"); tabSize != 2 {
		t.Errorf("merged result aliases override: editor.tabSize = %v, want 2", tabSize)
	}
}

func TestMergeOverrideWinsAndFallback(t *testing.T) {
	base := map[string]any{
		"theme": "light",
		"ui": map[string]any{
			"fontSize":   14,
			"fontFamily": "mono",
		},
		"terminal": map[string]any{"shell": "sh"},
	}
	override := map[string]any{
		"theme": "dark",
		"ui":    map[string]any{"fontSize": 16},
	}

	effective := Merge(base, override)

	// Every override leaf surfaces in the effective view.
	WalkLeaves(override, func(parts []string, value any) {
		path := FormatPath(parts)
		got, ok := Get(effective, path)
		if !ok || !Equal(got, value) {
			t.Errorf("effective[%s] = %v, want override value %v", path, got, value)
		}
	})

	// Every base leaf not overridden falls back to the default.
	WalkLeaves(base, func(parts []string, value any) {
		path := FormatPath(parts)
		if _, overridden := GetParts(override, parts); overridden {
			return
		}
		got, ok := Get(effective, path)
		if !ok || !Equal(got, value) {
			t.Errorf("effective[%s] = %v, want default value %v", path, got, value)
		}
	})
}
