package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"net/mail"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/prefpane/prefpane/internal/settings/tree"
)

// Validator validates settings trees against a schema.
type Validator struct {
	schema *Schema

	strict    bool // Unknown properties are errors even without additionalProperties: false
	maxErrors int  // Maximum errors to collect (0 = unlimited)

	// Pattern cache
	patternCache sync.Map // map[string]*regexp.Regexp
}

// NewValidator creates a validator for the given schema.
func NewValidator(schema *Schema) *Validator {
	return &Validator{
		schema:    schema,
		maxErrors: 100,
	}
}

// WithStrictMode enables strict mode (unknown properties are errors).
func (v *Validator) WithStrictMode(strict bool) *Validator {
	v.strict = strict
	return v
}

// WithMaxErrors sets the maximum number of errors to collect.
func (v *Validator) WithMaxErrors(max int) *Validator {
	v.maxErrors = max
	return v
}

// Validate validates a settings tree against the schema.
func (v *Validator) Validate(data map[string]any) Result {
	c := newCollector(v.maxErrors)
	if v.schema != nil {
		v.validateValue("", "#", data, v.schema, c)
	}
	return c.result()
}

// ValidatePath validates a single value at a given path.
func (v *Validator) ValidatePath(path string, value any) Result {
	c := newCollector(v.maxErrors)
	if v.schema == nil {
		return c.result()
	}

	prop := v.schema.GetProperty(path)
	if prop == nil {
		if v.strict {
			c.add(unknownPropertyError(path, "#"))
		}
		return c.result()
	}

	v.validateValue(path, schemaPointerFor(path), value, prop, c)
	return c.result()
}

// validateValue validates a value against a schema node. sp is the JSON
// Pointer of the schema node, carried along for error provenance.
func (v *Validator) validateValue(path, sp string, value any, s *Schema, c *collector) {
	if s == nil || c.full() {
		return
	}

	// Handle $ref
	if s.Ref != "" {
		if ref := v.resolveRef(s.Ref); ref != nil {
			v.validateValue(path, s.Ref, value, ref, c)
		}
		return
	}

	// Handle allOf
	for i, sub := range s.AllOf {
		v.validateValue(path, fmt.Sprintf("%s/allOf/%d", sp, i), value, sub, c)
	}

	// Handle anyOf
	if len(s.AnyOf) > 0 {
		matched := false
		for _, sub := range s.AnyOf {
			probe := newCollector(1)
			v.validateValue(path, sp, value, sub, probe)
			if len(probe.errs) == 0 {
				matched = true
				break
			}
		}
		if !matched {
			c.add(FieldError{
				Path:       path,
				Message:    "value does not match any of the allowed schemas",
				Value:      value,
				SchemaPath: sp + "/anyOf",
			})
		}
	}

	// Handle oneOf
	if len(s.OneOf) > 0 {
		matches := 0
		for _, sub := range s.OneOf {
			probe := newCollector(1)
			v.validateValue(path, sp, value, sub, probe)
			if len(probe.errs) == 0 {
				matches++
			}
		}
		switch {
		case matches == 0:
			c.add(FieldError{
				Path:       path,
				Message:    "value does not match any of the allowed schemas",
				Value:      value,
				SchemaPath: sp + "/oneOf",
			})
		case matches > 1:
			c.add(FieldError{
				Path:       path,
				Message:    fmt.Sprintf("value matches %d schemas, expected exactly one", matches),
				Value:      value,
				SchemaPath: sp + "/oneOf",
			})
		}
	}

	// Handle not
	if s.Not != nil {
		probe := newCollector(1)
		v.validateValue(path, sp, value, s.Not, probe)
		if len(probe.errs) == 0 {
			c.add(FieldError{
				Path:       path,
				Message:    "value must not match the schema",
				Value:      value,
				SchemaPath: sp + "/not",
			})
		}
	}

	// Handle const
	if s.Const != nil && !tree.Equal(value, s.Const) {
		c.add(FieldError{
			Path:       path,
			Message:    fmt.Sprintf("value must be %v", s.Const),
			Value:      value,
			SchemaPath: sp + "/const",
		})
	}

	// Handle enum
	if len(s.Enum) > 0 {
		v.validateEnum(path, sp, value, s.Enum, c)
	}

	// Type validation
	if !s.Type.IsEmpty() {
		v.validateType(path, sp, value, s, c)
	}

	if s.Deprecated {
		c.warn(deprecatedWarning(path, sp))
	}
}

// validateType validates the value against the expected type(s).
func (v *Validator) validateType(path, sp string, value any, s *Schema, c *collector) {
	if value == nil {
		if !s.Type.Is("null") {
			c.add(typeError(path, sp+"/type", s.Type.String(), value))
		}
		return
	}

	matched := false
	for _, typ := range s.Type.Types {
		if v.matchesType(value, typ) {
			matched = true
			switch typ {
			case "string":
				v.validateString(path, sp, value.(string), s, c)
			case "number", "integer":
				v.validateNumber(path, sp, value, s, typ == "integer", c)
			case "array":
				v.validateArray(path, sp, value, s, c)
			case "object":
				v.validateObject(path, sp, value, s, c)
			}
			break
		}
	}

	if !matched {
		c.add(typeError(path, sp+"/type", s.Type.String(), value))
	}
}

// matchesType checks if a value matches a JSON Schema type.
func (v *Validator) matchesType(value any, typ string) bool {
	switch typ {
	case "string":
		_, ok := value.(string)
		return ok
	case "number":
		return isNumber(value)
	case "integer":
		return isInteger(value)
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "array":
		return isArray(value)
	case "object":
		_, ok := value.(map[string]any)
		return ok
	case "null":
		return value == nil
	default:
		return false
	}
}

// validateString validates string-specific constraints.
func (v *Validator) validateString(path, sp, value string, s *Schema, c *collector) {
	if s.MinLength != nil && len(value) < *s.MinLength {
		c.add(FieldError{
			Path:       path,
			Message:    fmt.Sprintf("string length %d is less than minimum %d", len(value), *s.MinLength),
			Value:      value,
			SchemaPath: sp + "/minLength",
		})
	}

	if s.MaxLength != nil && len(value) > *s.MaxLength {
		c.add(FieldError{
			Path:       path,
			Message:    fmt.Sprintf("string length %d is greater than maximum %d", len(value), *s.MaxLength),
			Value:      value,
			SchemaPath: sp + "/maxLength",
		})
	}

	if s.Pattern != "" && !v.matchPattern(value, s.Pattern) {
		c.add(patternError(path, sp+"/pattern", value, s.Pattern))
	}

	if s.Format != "" {
		v.validateFormat(path, sp, value, s.Format, c)
	}
}

// validateNumber validates numeric constraints.
func (v *Validator) validateNumber(path, sp string, value any, s *Schema, requireInt bool, c *collector) {
	f := toFloat64(value)

	if requireInt && !isInteger(value) {
		c.add(FieldError{
			Path:       path,
			Message:    fmt.Sprintf("expected integer, got %v", value),
			Value:      value,
			SchemaPath: sp + "/type",
		})
		return
	}

	if s.Minimum != nil && f < *s.Minimum {
		c.add(rangeError(path, sp+"/minimum", value, s.Minimum, s.Maximum))
	}

	if s.Maximum != nil && f > *s.Maximum {
		c.add(rangeError(path, sp+"/maximum", value, s.Minimum, s.Maximum))
	}

	if s.ExclusiveMinimum != nil && f <= *s.ExclusiveMinimum {
		c.add(FieldError{
			Path:       path,
			Message:    fmt.Sprintf("value must be greater than %v", *s.ExclusiveMinimum),
			Value:      value,
			SchemaPath: sp + "/exclusiveMinimum",
		})
	}

	if s.ExclusiveMaximum != nil && f >= *s.ExclusiveMaximum {
		c.add(FieldError{
			Path:       path,
			Message:    fmt.Sprintf("value must be less than %v", *s.ExclusiveMaximum),
			Value:      value,
			SchemaPath: sp + "/exclusiveMaximum",
		})
	}

	if s.MultipleOf != nil && *s.MultipleOf != 0 {
		if math.Abs(math.Mod(f, *s.MultipleOf)) > 1e-10 {
			c.add(FieldError{
				Path:       path,
				Message:    fmt.Sprintf("value must be a multiple of %v", *s.MultipleOf),
				Value:      value,
				SchemaPath: sp + "/multipleOf",
			})
		}
	}
}

// validateArray validates array constraints.
func (v *Validator) validateArray(path, sp string, value any, s *Schema, c *collector) {
	arr := toSlice(value)
	if arr == nil {
		return
	}

	if s.MinItems != nil && len(arr) < *s.MinItems {
		c.add(FieldError{
			Path:       path,
			Message:    fmt.Sprintf("array has %d items, minimum is %d", len(arr), *s.MinItems),
			Value:      value,
			SchemaPath: sp + "/minItems",
		})
	}

	if s.MaxItems != nil && len(arr) > *s.MaxItems {
		c.add(FieldError{
			Path:       path,
			Message:    fmt.Sprintf("array has %d items, maximum is %d", len(arr), *s.MaxItems),
			Value:      value,
			SchemaPath: sp + "/maxItems",
		})
	}

	if s.UniqueItems {
		seen := make(map[string]bool, len(arr))
		for i, item := range arr {
			key := itemKey(item)
			if seen[key] {
				c.add(FieldError{
					Path:       path,
					Message:    fmt.Sprintf("array items must be unique, duplicate at index %d", i),
					Value:      item,
					SchemaPath: sp + "/uniqueItems",
				})
				break
			}
			seen[key] = true
		}
	}

	if s.Items != nil {
		for i, item := range arr {
			itemPath := fmt.Sprintf("%s[%d]", path, i)
			v.validateValue(itemPath, sp+"/items", item, s.Items, c)
		}
	}
}

// validateObject validates object constraints. Properties are visited
// in sorted order so error output is stable.
func (v *Validator) validateObject(path, sp string, value any, s *Schema, c *collector) {
	obj, ok := value.(map[string]any)
	if !ok {
		return
	}

	for _, req := range s.Required {
		if _, exists := obj[req]; !exists {
			c.add(requiredError(joinPath(path, req), sp+"/required"))
		}
	}

	names := make([]string, 0, len(obj))
	for name := range obj {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		propPath := joinPath(path, name)

		if propSchema, ok := s.Properties[name]; ok {
			v.validateValue(propPath, sp+"/properties/"+name, obj[name], propSchema, c)
		} else if !s.AllowsAdditionalProperties() || (v.strict && len(s.Properties) > 0) {
			c.add(unknownPropertyError(propPath, sp+"/additionalProperties"))
		}
	}
}

// validateEnum checks if value is one of the allowed values.
func (v *Validator) validateEnum(path, sp string, value any, allowed []any, c *collector) {
	for _, a := range allowed {
		if tree.Equal(value, a) {
			return
		}
	}
	c.add(enumError(path, sp+"/enum", value, allowed))
}

// validateFormat validates string formats.
func (v *Validator) validateFormat(path, sp, value, format string, c *collector) {
	bad := func(msg string) {
		c.add(FieldError{Path: path, Message: msg, Value: value, SchemaPath: sp + "/format"})
	}

	switch format {
	case "duration":
		if _, err := time.ParseDuration(value); err != nil {
			bad(fmt.Sprintf("invalid duration format: %s", value))
		}
	case "uri", "url":
		if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") &&
			!strings.HasPrefix(value, "file://") {
			bad(fmt.Sprintf("invalid URI format: %s", value))
		}
	case "email":
		if _, err := mail.ParseAddress(value); err != nil {
			bad(fmt.Sprintf("invalid email format: %s", value))
		}
	case "regex":
		if _, err := regexp.Compile(value); err != nil {
			bad(fmt.Sprintf("invalid regex: %s", value))
		}
	case "color":
		if !isValidColor(value) {
			bad(fmt.Sprintf("invalid color format: %s", value))
		}
	case "path":
		if value == "" {
			bad("path cannot be empty")
		}
	}
}

// resolveRef resolves a $ref against the root schema's $defs.
func (v *Validator) resolveRef(ref string) *Schema {
	if v.schema == nil || v.schema.Defs == nil {
		return nil
	}

	if name, ok := strings.CutPrefix(ref, "#/$defs/"); ok {
		return v.schema.Defs[name]
	}

	return nil
}

// matchPattern checks if a string matches a regex pattern.
func (v *Validator) matchPattern(value, pattern string) bool {
	if cached, ok := v.patternCache.Load(pattern); ok {
		return cached.(*regexp.Regexp).MatchString(value)
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}

	v.patternCache.Store(pattern, re)
	return re.MatchString(value)
}

// schemaPointerFor maps a settings path to the schema pointer of its
// property node.
func schemaPointerFor(path string) string {
	sp := "#"
	for _, part := range tree.ParsePath(path) {
		sp += "/properties/" + part
	}
	return sp
}

// Helper functions

func isNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	default:
		return false
	}
}

func isInteger(v any) bool {
	switch val := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case float32:
		f := float64(val)
		return f == math.Trunc(f)
	case float64:
		return val == math.Trunc(val)
	default:
		return false
	}
}

func isArray(v any) bool {
	switch v.(type) {
	case []any, []string, []int, []int64, []float64, []bool:
		return true
	default:
		return false
	}
}

func toFloat64(v any) float64 {
	switch val := v.(type) {
	case int:
		return float64(val)
	case int8:
		return float64(val)
	case int16:
		return float64(val)
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case uint:
		return float64(val)
	case uint8:
		return float64(val)
	case uint16:
		return float64(val)
	case uint32:
		return float64(val)
	case uint64:
		return float64(val)
	case float32:
		return float64(val)
	case float64:
		return val
	default:
		return 0
	}
}

func toSlice(v any) []any {
	switch val := v.(type) {
	case []any:
		return val
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out
	case []int:
		out := make([]any, len(val))
		for i, n := range val {
			out[i] = n
		}
		return out
	case []int64:
		out := make([]any, len(val))
		for i, n := range val {
			out[i] = n
		}
		return out
	case []float64:
		out := make([]any, len(val))
		for i, n := range val {
			out[i] = n
		}
		return out
	default:
		return nil
	}
}

// itemKey derives a comparable key for uniqueness checks.
func itemKey(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

func joinPath(base, name string) string {
	if base == "" {
		return name
	}
	return base + "." + name
}

// isValidColor accepts hex colors and a small set of named colors.
func isValidColor(s string) bool {
	if s == "" {
		return false
	}
	if strings.HasPrefix(s, "#") {
		_, err := colorful.Hex(s)
		return err == nil
	}
	return namedColors[strings.ToLower(s)]
}

var namedColors = map[string]bool{
	"black": true, "white": true, "red": true, "green": true, "blue": true,
	"yellow": true, "cyan": true, "magenta": true, "gray": true, "grey": true,
}
