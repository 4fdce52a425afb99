package schema

import (
	"fmt"
	"strings"

	"github.com/prefpane/prefpane/internal/settings/tree"
)

// FieldError describes a single constraint violation found during
// validation. Errors are plain values so callers can ship them over the
// wire or render them next to the offending field.
type FieldError struct {
	// Path is the dotted settings path of the offending value.
	Path string `json:"path"`

	// Message describes the violation.
	Message string `json:"message"`

	// Value is the offending value, when one exists.
	Value any `json:"value,omitempty"`

	// SchemaPath is a JSON Pointer into the schema naming the failed
	// constraint, e.g. "#/properties/editor/properties/fontSize/minimum".
	SchemaPath string `json:"schemaPath,omitempty"`
}

// Error implements the error interface.
func (e FieldError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Result is the outcome of validating a settings tree. Results are
// returned by value; an invalid document is data, not a failure.
type Result struct {
	// Valid is true when no errors were found.
	Valid bool `json:"valid"`

	// Errors lists every violation. Never nil.
	Errors []FieldError `json:"errors"`

	// Warnings lists non-fatal findings such as deprecated settings.
	Warnings []FieldError `json:"warnings,omitempty"`

	// FieldErrors groups Errors by settings path.
	FieldErrors map[string][]FieldError `json:"fieldErrors,omitempty"`
}

// ErrorsFor returns the errors recorded for an exact path.
func (r Result) ErrorsFor(path string) []FieldError {
	return r.FieldErrors[path]
}

// ErrorsUnder returns the errors recorded for a path and its children.
func (r Result) ErrorsUnder(path string) []FieldError {
	var out []FieldError
	prefix := path + "."
	for _, e := range r.Errors {
		if e.Path == path || strings.HasPrefix(e.Path, prefix) {
			out = append(out, e)
		}
	}
	return out
}

// Summary renders a one-line or multi-line digest of the result.
func (r Result) Summary() string {
	if r.Valid {
		return "valid"
	}
	if len(r.Errors) == 1 {
		return r.Errors[0].Error()
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Error())
	}
	return fmt.Sprintf("%d validation errors:\n  - %s", len(r.Errors), strings.Join(msgs, "\n  - "))
}

// collector accumulates violations during a validation walk.
type collector struct {
	errs  []FieldError
	warns []FieldError
	max   int
}

func newCollector(max int) *collector {
	return &collector{errs: []FieldError{}, max: max}
}

func (c *collector) add(e FieldError) {
	if c.full() {
		return
	}
	c.errs = append(c.errs, e)
}

func (c *collector) warn(e FieldError) {
	c.warns = append(c.warns, e)
}

func (c *collector) full() bool {
	return c.max > 0 && len(c.errs) >= c.max
}

func (c *collector) result() Result {
	r := Result{Valid: len(c.errs) == 0, Errors: c.errs, Warnings: c.warns}
	if len(c.errs) > 0 {
		r.FieldErrors = make(map[string][]FieldError, len(c.errs))
		for _, e := range c.errs {
			r.FieldErrors[e.Path] = append(r.FieldErrors[e.Path], e)
		}
	}
	return r
}

func typeError(path, schemaPath, expected string, actual any) FieldError {
	return FieldError{
		Path:       path,
		Message:    fmt.Sprintf("expected %s, got %s", expected, tree.KindOf(actual)),
		Value:      actual,
		SchemaPath: schemaPath,
	}
}

func enumError(path, schemaPath string, value any, allowed []any) FieldError {
	return FieldError{
		Path:       path,
		Message:    fmt.Sprintf("value %v is not one of %v", value, allowed),
		Value:      value,
		SchemaPath: schemaPath,
	}
}

func rangeError(path, schemaPath string, value any, min, max *float64) FieldError {
	var want string
	switch {
	case min != nil && max != nil:
		want = fmt.Sprintf("between %v and %v", *min, *max)
	case min != nil:
		want = fmt.Sprintf(">= %v", *min)
	case max != nil:
		want = fmt.Sprintf("<= %v", *max)
	default:
		want = "a valid range"
	}
	return FieldError{
		Path:       path,
		Message:    fmt.Sprintf("value %v is out of range, expected %s", value, want),
		Value:      value,
		SchemaPath: schemaPath,
	}
}

func patternError(path, schemaPath, value, pattern string) FieldError {
	return FieldError{
		Path:       path,
		Message:    fmt.Sprintf("value does not match pattern %s", pattern),
		Value:      value,
		SchemaPath: schemaPath,
	}
}

func requiredError(path, schemaPath string) FieldError {
	return FieldError{
		Path:       path,
		Message:    "required field is missing",
		SchemaPath: schemaPath,
	}
}

func unknownPropertyError(path, schemaPath string) FieldError {
	return FieldError{
		Path:       path,
		Message:    "unknown property",
		SchemaPath: schemaPath,
	}
}

func deprecatedWarning(path, schemaPath string) FieldError {
	return FieldError{
		Path:       path,
		Message:    "setting is deprecated",
		SchemaPath: schemaPath,
	}
}
