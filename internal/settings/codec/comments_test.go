package codec

import (
	"testing"
)

func TestExtractComments(t *testing.T) {
	input := []byte(`{
	// Editor settings.
	"editor": {
		// Size in points.
		// Applies everywhere.
		"fontSize": 14,
		"tabSize": 4, // spaces per tab

		/* Word wrap mode. */
		"wordWrap": "off"
	},

	// Stray note orphaned by the blank line below.

	"ui": {
		"theme": "dark"
	},
	"files": {
		"exclude": [
			// Inside arrays nothing is recorded.
			"**/.git"
		]
	}
}`)

	got := ExtractComments(input)

	want := map[string]string{
		"editor":          "Editor settings.",
		"editor.fontSize": "Size in points. Applies everywhere.",
		"editor.tabSize":  "spaces per tab",
		"editor.wordWrap": "Word wrap mode.",
	}
	for path, text := range want {
		if got[path] != text {
			t.Errorf("comment for %s = %q, want %q", path, got[path], text)
		}
	}

	for _, path := range []string{"ui", "ui.theme", "files.exclude"} {
		if text, ok := got[path]; ok {
			t.Errorf("unexpected comment for %s: %q", path, text)
		}
	}
}

func TestExtractComments_MultilineBlock(t *testing.T) {
	input := []byte(`{
	/* Controls automatic saving.
	 * Delay is in milliseconds. */
	"autoSave": "off"
}`)

	got := ExtractComments(input)
	want := "Controls automatic saving. Delay is in milliseconds."
	if got["autoSave"] != want {
		t.Errorf("comment = %q, want %q", got["autoSave"], want)
	}
}

func TestExtractComments_DocumentHeaderIgnored(t *testing.T) {
	input := []byte(`/* Application settings.
 * Machine generated. */
{
	"a": 1
}`)

	got := ExtractComments(input)
	if text, ok := got["a"]; ok {
		t.Errorf("header attached to first key: %q", text)
	}
}

func TestExtractComments_NoComments(t *testing.T) {
	got := ExtractComments([]byte(`{"a": {"b": 1}}`))
	if len(got) != 0 {
		t.Errorf("ExtractComments() = %v, want empty", got)
	}
}

func TestExtractComments_EscapedQuoteInString(t *testing.T) {
	input := []byte(`{
	// Prompt shown on exit.
	"prompt": "say \"bye\"",
	"next": 1
}`)

	got := ExtractComments(input)
	if got["prompt"] != "Prompt shown on exit." {
		t.Errorf("comment for prompt = %q", got["prompt"])
	}
	if _, ok := got["next"]; ok {
		t.Error("string contents leaked into key detection")
	}
}
