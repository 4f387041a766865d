// Package facts loads resolved symbol facts from the sources a host can
// produce: a JSON or YAML facts file, a SCIP index, or C# source parsed with
// tree-sitter.
package facts

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lerrors "namecheck/internal/errors"
	"namecheck/internal/slogutil"
	"namecheck/internal/symbol"
)

// Format identifies a fact source.
type Format string

const (
	FormatAuto   Format = "auto"
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatSCIP   Format = "scip"
	FormatCSharp Format = "csharp"
)

// Formats lists the accepted values of the facts.format setting.
var Formats = []Format{FormatAuto, FormatJSON, FormatYAML, FormatSCIP, FormatCSharp}

// ParseFormat parses a format name. The empty string means auto.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "scip":
		return FormatSCIP, nil
	case "csharp", "cs", "c#":
		return FormatCSharp, nil
	}
	return "", fmt.Errorf("unknown facts format %q", s)
}

// DetectFormat picks a format from the path. Directories and .cs files are
// read as C# source.
func DetectFormat(path string) (Format, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return FormatCSharp, nil
	}
	return FormatOf(path)
}

// FormatOf picks a format from the file extension alone.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".scip":
		return FormatSCIP, nil
	case ".cs":
		return FormatCSharp, nil
	}
	return "", fmt.Errorf("cannot detect facts format of %s", path)
}

// Load reads symbols from path. Symbols come back ordered by location and
// name, with Siblings filled in for every symbol the source left without.
func Load(ctx context.Context, path string, format Format, logger *slog.Logger) ([]*symbol.Symbol, error) {
	logger = slogutil.OrDiscard(logger)

	if path == "" {
		return nil, lerrors.New(lerrors.FactsMissing, "No facts path configured", nil)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, lerrors.New(lerrors.FactsMissing, fmt.Sprintf("Symbol facts not found at %s", path), err)
	}

	if format == "" || format == FormatAuto {
		detected, err := DetectFormat(path)
		if err != nil {
			return nil, lerrors.New(lerrors.FactsInvalid, err.Error(), nil)
		}
		format = detected
	}

	var (
		symbols []*symbol.Symbol
		err     error
	)
	switch format {
	case FormatJSON, FormatYAML:
		symbols, err = LoadFile(path, format)
	case FormatSCIP:
		symbols, err = LoadSCIP(path)
	case FormatCSharp:
		symbols, err = NewCSharpExtractor(logger).Extract(ctx, path)
	default:
		err = lerrors.New(lerrors.FactsInvalid, fmt.Sprintf("unknown facts format %q", format), nil)
	}
	if err != nil {
		return nil, err
	}

	symbol.LinkSiblings(symbols)
	SortSymbols(symbols)

	logger.Debug("Loaded symbol facts",
		"path", path,
		"format", string(format),
		"symbols", len(symbols),
	)
	return symbols, nil
}

// SortSymbols orders symbols by path, line, column, name and kind.
func SortSymbols(symbols []*symbol.Symbol) {
	sort.SliceStable(symbols, func(i, j int) bool {
		a, b := symbols[i], symbols[j]
		if a.Location.Path != b.Location.Path {
			return a.Location.Path < b.Location.Path
		}
		if a.Location.Line != b.Location.Line {
			return a.Location.Line < b.Location.Line
		}
		if a.Location.Column != b.Location.Column {
			return a.Location.Column < b.Location.Column
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Kind < b.Kind
	})
}

func invalid(path string, err error) error {
	return lerrors.New(lerrors.FactsInvalid, fmt.Sprintf("Failed to parse symbol facts from %s", path), err)
}
