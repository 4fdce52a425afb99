// Package query evaluates jq expressions over settings trees.
package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/itchyny/gojq"

	"github.com/prefpane/prefpane/internal/settings/tree"
)

// ErrBadQuery indicates an expression that fails to parse or compile.
var ErrBadQuery = errors.New("bad query expression")

// Run compiles a jq expression and evaluates it over a settings tree,
// returning every emitted value. The input is cloned so expressions
// never alias live document state. Emitted values are coerced back into
// the settings kind set where possible; anything else passes through.
func Run(ctx context.Context, expr string, data map[string]any) ([]any, error) {
	q, err := gojq.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadQuery, err)
	}
	code, err := gojq.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadQuery, err)
	}

	input := tree.Clone(data)
	if input == nil {
		input = map[string]any{}
	}

	results := []any{}
	iter := code.RunWithContext(ctx, any(input))
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := v.(error); ok {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("query: %w", err)
		}
		if nv, err := tree.NormalizeValue(v); err == nil {
			v = nv
		}
		results = append(results, v)
	}
	return results, nil
}
