package source

import (
	"path/filepath"
	"strings"
)

// Kind identifies how a source file is parsed.
type Kind int

const (
	KindUnsupported Kind = iota
	KindJSON
	KindYAML
	KindTOML
	KindDotenv
	KindPlain
	KindModule
)

func (k Kind) String() string {
	switch k {
	case KindJSON:
		return "json"
	case KindYAML:
		return "yaml"
	case KindTOML:
		return "toml"
	case KindDotenv:
		return "dotenv"
	case KindPlain:
		return "plain"
	case KindModule:
		return "module"
	default:
		return "unsupported"
	}
}

// KindOf chooses the parser for path from its extension alone.
func KindOf(path string) Kind {
	base := filepath.Base(path)
	if base == ".env" {
		return KindDotenv
	}

	switch strings.ToLower(filepath.Ext(base)) {
	// JSON5 syntax beyond comments and trailing commas (unquoted keys,
	// single quotes) is covered by the YAML fallback of plain sources.
	case "", ".json5":
		return KindPlain
	case ".json", ".jsonc":
		return KindJSON
	case ".yaml", ".yml":
		return KindYAML
	case ".toml":
		return KindTOML
	case ".env":
		return KindDotenv
	case ".so":
		return KindModule
	default:
		return KindUnsupported
	}
}
