// Package settings implements layered settings documents.
//
// A document pairs a defaults tree with an overrides tree and derives
// every other view from the pair:
//
//	┌──────────────────────────────┐
//	│  Overrides (user edits)      │  ← wins on conflicts
//	├──────────────────────────────┤
//	│  Defaults (built-in)         │  ← baseline
//	└──────────────────────────────┘
//	        │
//	        ├─ Effective: deep merge, overrides win per leaf
//	        ├─ Delta: minimal tree of values that differ
//	        └─ Changed/Custom: per-path divergence tracking
//
// Trees are plain map[string]any values. Published trees are never
// modified in place: every mutation builds a new overrides tree that
// shares unchanged subtrees with the old one, then swaps the reference.
// Derived views are memoized and rebuilt only after a mutation.
//
// # Sub-packages
//
//   - tree: merge, diff, point mutations, and path addressing
//   - track: changed/custom path tracking against the defaults
//   - schema: JSON Schema subset validation
//   - codec: decoding, encoding, import/export, and share links
//   - catalog: the built-in settings catalog and field metadata
//   - notify: change notification and observer pattern
//   - query: jq-style queries over settings trees
//   - source: loading defaults and overrides from files and URLs
//
// # Basic Usage
//
// Create a document over built-in defaults and edit it:
//
//	doc, err := settings.New(defaults)
//	if err != nil {
//		return err
//	}
//	defer doc.Close()
//
//	if err := doc.Set("editor.fontSize", 16); err != nil {
//		return err
//	}
//	size, _ := doc.GetInt("editor.fontSize")
//	delta := doc.Delta()
package settings
