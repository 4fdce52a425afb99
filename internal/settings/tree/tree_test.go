package tree

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    map[string]any
		expected map[string]any
	}{
		{
			name:     "nil tree",
			input:    nil,
			expected: map[string]any{},
		},
		{
			name:     "json kinds pass through",
			input:    map[string]any{"s": "x", "b": true, "f": 1.5, "n": nil},
			expected: map[string]any{"s": "x", "b": true, "f": 1.5, "n": nil},
		},
		{
			name:     "integer kinds become float64",
			input:    map[string]any{"i": 4, "i64": int64(7), "u": uint16(3)},
			expected: map[string]any{"i": float64(4), "i64": float64(7), "u": float64(3)},
		},
		{
			name:     "json number",
			input:    map[string]any{"n": json.Number("2.5")},
			expected: map[string]any{"n": 2.5},
		},
		{
			name: "nested maps and slices",
			input: map[string]any{
				"a": map[string]any{"b": int64(1)},
				"l": []any{int32(2), "x"},
			},
			expected: map[string]any{
				"a": map[string]any{"b": float64(1)},
				"l": []any{float64(2), "x"},
			},
		},
		{
			name: "yaml style keyed map",
			input: map[string]any{
				"m": map[any]any{"k": 1},
			},
			expected: map[string]any{
				"m": map[string]any{"k": float64(1)},
			},
		},
		{
			name: "timestamp becomes rfc3339 string",
			input: map[string]any{
				"t": time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
			},
			expected: map[string]any{"t": "2024-03-01T12:00:00Z"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if err != nil {
				t.Fatalf("Normalize() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Normalize() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNormalizeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input map[string]any
		want  error
	}{
		{
			name:  "unsupported kind",
			input: map[string]any{"ch": make(chan int)},
			want:  ErrUnsupportedKind,
		},
		{
			name:  "non-string key",
			input: map[string]any{"m": map[any]any{1: "x"}},
			want:  ErrNonStringKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.input)
			if !errors.Is(err, tt.want) {
				t.Errorf("Normalize() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	input := map[string]any{"a": map[string]any{"b": 1}}
	got, err := Normalize(input)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if input["a"].(map[string]any)["b"] != 1 {
		t.Error("Normalize() mutated its input")
	}
	if sameRef(got["a"].(map[string]any), input["a"].(map[string]any)) {
		t.Error("Normalize() must not alias input containers")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		value    any
		expected string
	}{
		{nil, "null"},
		{true, "bool"},
		{14, "number"},
		{14.5, "number"},
		{int64(2), "number"},
		{"x", "string"},
		{[]any{}, "array"},
		{map[string]any{}, "object"},
	}

	for _, tt := range tests {
		if got := KindOf(tt.value); got != tt.expected {
			t.Errorf("KindOf(%v) = %q, want %q", tt.value, got, tt.expected)
		}
	}
}

func TestClone(t *testing.T) {
	original := map[string]any{
		"a": map[string]any{"b": 1},
		"l": []any{1, map[string]any{"c": 2}},
		"s": "x",
	}

	cloned := Clone(original)

	if !reflect.DeepEqual(cloned, original) {
		t.Fatalf("Clone() = %v, want %v", cloned, original)
	}
	cloned["a"].(map[string]any)["b"] = 99
	cloned["l"].([]any)[0] = 99
	if original["a"].(map[string]any)["b"] != 1 {
		t.Error("Clone() aliases nested map")
	}
	if original["l"].([]any)[0] != 1 {
		t.Error("Clone() aliases nested slice")
	}

	if Clone(nil) != nil {
		t.Error("Clone(nil) should be nil")
	}
}
