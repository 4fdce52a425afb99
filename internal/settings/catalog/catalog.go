// Package catalog derives a browsable field registry from the defaults
// document, its schema, and extracted comments.
//
// The catalog is rebuilt whenever defaults reload, so fields follow the
// loaded documents instead of a hand-maintained table. Fields present
// only in the schema (no default value) are included too.
package catalog

import (
	"sort"
	"strings"

	"github.com/tidwall/match"

	"github.com/prefpane/prefpane/internal/settings/schema"
	"github.com/prefpane/prefpane/internal/settings/tree"
)

// Field describes one leaf setting.
type Field struct {
	// Path is the dot-separated path (e.g. "editor.tabSize").
	Path string `json:"path"`

	// Pointer is the JSON Pointer form of Path.
	Pointer string `json:"pointer"`

	// Type names the field's JSON type. Inferred from the default
	// value when the schema is silent.
	Type string `json:"type,omitempty"`

	// Default is the field's default value, nil when the field exists
	// only in the schema.
	Default any `json:"default"`

	// Description is human-readable documentation.
	Description string `json:"description,omitempty"`

	// Enum lists allowed values when the field is enumerated.
	Enum []any `json:"enum,omitempty"`

	// Minimum for numeric fields (nil means no minimum).
	Minimum *float64 `json:"minimum,omitempty"`

	// Maximum for numeric fields (nil means no maximum).
	Maximum *float64 `json:"maximum,omitempty"`

	// Pattern for string validation (regex).
	Pattern string `json:"pattern,omitempty"`

	// Deprecated marks fields that should be migrated away from.
	Deprecated bool `json:"deprecated,omitempty"`

	// Section is the top-level group the field belongs to.
	Section string `json:"section"`
}

// Catalog is an immutable field registry built by Build.
type Catalog struct {
	fields    map[string]*Field
	ordered   []*Field
	sections  []string
	bySection map[string][]*Field
}

// Option configures catalog construction.
type Option func(*builder)

type builder struct {
	schema   *schema.Schema
	comments map[string]string
}

// WithSchema enriches fields with schema metadata and adds
// schema-declared fields that have no default value.
func WithSchema(s *schema.Schema) Option {
	return func(b *builder) { b.schema = s }
}

// WithComments attaches extracted defaults-document comments as field
// descriptions. A comment wins over the schema description for the
// same field.
func WithComments(comments map[string]string) Option {
	return func(b *builder) { b.comments = comments }
}

// Build derives the field registry for a defaults tree.
func Build(defaults map[string]any, opts ...Option) *Catalog {
	var b builder
	for _, opt := range opts {
		opt(&b)
	}

	fields := make(map[string]*Field)

	tree.WalkLeaves(defaults, func(parts []string, value any) {
		path := tree.FormatPath(parts)
		fields[path] = &Field{
			Path:    path,
			Pointer: tree.FormatPointer(parts),
			Type:    typeName(value),
			Default: value,
			Section: sectionOf(path),
		}
	})

	if b.schema != nil {
		addSchemaFields(fields, b.schema, b.schema, nil)
		for path, f := range fields {
			if prop := b.schema.GetProperty(path); prop != nil {
				applySchema(f, prop, prop.Resolve(b.schema))
			}
		}
	}
	for path, text := range b.comments {
		if f, ok := fields[path]; ok && text != "" {
			f.Description = text
		}
	}

	c := &Catalog{
		fields:    fields,
		ordered:   make([]*Field, 0, len(fields)),
		bySection: make(map[string][]*Field),
	}
	for _, f := range fields {
		c.ordered = append(c.ordered, f)
		c.bySection[f.Section] = append(c.bySection[f.Section], f)
	}
	sort.Slice(c.ordered, func(i, j int) bool {
		return c.ordered[i].Path < c.ordered[j].Path
	})
	for section, group := range c.bySection {
		sort.Slice(group, func(i, j int) bool {
			return group[i].Path < group[j].Path
		})
		c.sections = append(c.sections, section)
	}
	sort.Strings(c.sections)

	return c
}

// Len returns the number of fields.
func (c *Catalog) Len() int {
	return len(c.fields)
}

// Fields returns all fields sorted by path.
func (c *Catalog) Fields() []*Field {
	out := make([]*Field, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// ByPath returns the field at the given path, or nil. The path may be
// dotted or a JSON Pointer.
func (c *Catalog) ByPath(path string) *Field {
	if f, ok := c.fields[path]; ok {
		return f
	}
	return c.fields[tree.FormatPath(tree.ParsePath(path))]
}

// Has checks if a field exists at the given path.
func (c *Catalog) Has(path string) bool {
	return c.ByPath(path) != nil
}

// Sections returns all section names, sorted.
func (c *Catalog) Sections() []string {
	out := make([]string, len(c.sections))
	copy(out, c.sections)
	return out
}

// Section returns the fields in a section, sorted by path.
func (c *Catalog) Section(name string) []*Field {
	group := c.bySection[name]
	out := make([]*Field, len(group))
	copy(out, group)
	return out
}

// Search returns fields whose path or description matches the query.
// A query with '*' or '?' is a wildcard pattern; anything else matches
// as a case-insensitive substring. An empty query matches nothing.
func (c *Catalog) Search(query string) []*Field {
	if query == "" {
		return nil
	}

	wild := strings.ContainsAny(query, "*?")
	lower := strings.ToLower(query)

	var out []*Field
	for _, f := range c.ordered {
		if wild {
			if match.Match(f.Path, query) || match.Match(strings.ToLower(f.Description), lower) {
				out = append(out, f)
			}
			continue
		}
		if strings.Contains(strings.ToLower(f.Path), lower) ||
			strings.Contains(strings.ToLower(f.Description), lower) {
			out = append(out, f)
		}
	}
	return out
}

// Deprecated returns all deprecated fields, sorted by path.
func (c *Catalog) Deprecated() []*Field {
	var out []*Field
	for _, f := range c.ordered {
		if f.Deprecated {
			out = append(out, f)
		}
	}
	return out
}

// addSchemaFields registers leaf properties declared by the schema but
// absent from the defaults tree.
func addSchemaFields(fields map[string]*Field, root, s *schema.Schema, prefix []string) {
	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		prop := s.Properties[name]
		res := prop.Resolve(root)
		parts := append(prefix, name)
		if res != nil && len(res.Properties) > 0 {
			addSchemaFields(fields, root, res, parts)
			continue
		}

		path := tree.FormatPath(parts)
		if _, ok := fields[path]; ok {
			continue
		}
		fields[path] = &Field{
			Path:    path,
			Pointer: tree.FormatPointer(parts),
			Section: sectionOf(path),
		}
	}
}

// applySchema copies schema metadata onto a field. prop is the declared
// property, res its $ref resolution (the same schema when no ref).
func applySchema(f *Field, prop, res *schema.Schema) {
	if res == nil {
		return
	}
	if prop.Description != "" {
		f.Description = prop.Description
	} else if res.Description != "" {
		f.Description = res.Description
	}
	if !res.Type.IsEmpty() {
		f.Type = res.Type.String()
	}
	if len(res.Enum) > 0 {
		f.Enum = res.Enum
	}
	if res.Minimum != nil {
		f.Minimum = res.Minimum
	}
	if res.Maximum != nil {
		f.Maximum = res.Maximum
	}
	if res.Pattern != "" {
		f.Pattern = res.Pattern
	}
	if prop.Deprecated || res.Deprecated {
		f.Deprecated = true
	}
	if f.Default == nil {
		if prop.Default != nil {
			f.Default = prop.Default
		} else if res.Default != nil {
			f.Default = res.Default
		}
	}
}

func typeName(v any) string {
	k := tree.KindOf(v)
	if k == "bool" {
		return "boolean"
	}
	return k
}

func sectionOf(path string) string {
	parts := strings.SplitN(path, ".", 2)
	return parts[0]
}
