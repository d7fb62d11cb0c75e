package source

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/cpcf/measy/errs"
)

// ParseString parses text as JSON (comments and trailing commas allowed) or,
// failing that, as YAML.
func ParseString(text string) (any, error) {
	return parsePlain([]byte(text))
}

func parse(kind Kind, data []byte) (any, error) {
	switch kind {
	case KindJSON:
		return parseJSON(data)
	case KindYAML:
		return parseYAML(data)
	case KindTOML:
		return parseTOML(data)
	case KindDotenv:
		return parseDotenv(data)
	case KindPlain:
		return parsePlain(data)
	default:
		return nil, fmt.Errorf("no parser for %s sources", kind)
	}
}

func parseJSON(data []byte) (any, error) {
	var v any
	if err := json.Unmarshal(jsonc.ToJSON(data), &v); err != nil {
		return nil, err
	}
	return v, nil
}

func parseYAML(data []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	if v == nil {
		return map[string]any{}, nil
	}
	return v, nil
}

func parseTOML(data []byte) (any, error) {
	v := map[string]any{}
	if err := toml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func parseDotenv(data []byte) (any, error) {
	vars, err := godotenv.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(vars))
	for k, v := range vars {
		out[k] = v
	}
	return out, nil
}

func parsePlain(data []byte) (any, error) {
	v, jsonErr := parseJSON(data)
	if jsonErr == nil {
		return v, nil
	}

	v, yamlErr := parseYAML(data)
	if yamlErr == nil {
		return v, nil
	}

	return nil, &errs.ParseError{
		Message: "Cannot parse data as JSON5 or YAML",
		Errs: []error{
			fmt.Errorf("JSON5 error: %w", jsonErr),
			fmt.Errorf("YAML error: %w", yamlErr),
		},
	}
}
