package source

import (
	"encoding/json"
	"fmt"

	"github.com/itchyny/gojq"
)

// JQFunc is the callable produced for a jq expression. The first argument is
// the query input and all arguments are available as $args. A single result
// is returned as is, several results as a slice, none as nil.
type JQFunc = func(args ...any) (any, error)

func compileJQ(expr string) (JQFunc, error) {
	query, err := gojq.Parse(expr)
	if err != nil {
		return nil, err
	}

	code, err := gojq.Compile(query, gojq.WithVariables([]string{"$args"}))
	if err != nil {
		return nil, err
	}

	return func(args ...any) (any, error) {
		normalized, err := normalizeArgs(args)
		if err != nil {
			return nil, err
		}

		var input any
		if len(normalized) > 0 {
			input = normalized[0]
		}

		var results []any
		iter := code.Run(input, normalized)
		for {
			v, ok := iter.Next()
			if !ok {
				break
			}
			if err, ok := v.(error); ok {
				return nil, fmt.Errorf("jq %q: %w", expr, err)
			}
			results = append(results, v)
		}

		switch len(results) {
		case 0:
			return nil, nil
		case 1:
			return results[0], nil
		default:
			return results, nil
		}
	}, nil
}

// gojq only accepts JSON-shaped values.
func normalizeArgs(args []any) ([]any, error) {
	if len(args) == 0 {
		return []any{}, nil
	}

	data, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("jq arguments: %w", err)
	}

	var out []any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("jq arguments: %w", err)
	}
	return out, nil
}
