package facts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"namecheck/internal/symbol"
)

// FileVersion is the facts file schema version written by hosts.
const FileVersion = 1

// File is the on-disk facts document. A bare list of symbols is accepted too.
type File struct {
	Version int              `json:"version" yaml:"version"`
	Symbols []*symbol.Symbol `json:"symbols" yaml:"symbols"`
}

// LoadFile reads a JSON or YAML facts file.
func LoadFile(path string, format Format) ([]*symbol.Symbol, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, invalid(path, err)
	}
	symbols, err := DecodeFile(data, format)
	if err != nil {
		return nil, invalid(path, err)
	}
	return symbols, nil
}

// DecodeFile decodes facts and normalizes kind aliases such as "class" or
// "constant". Unknown kinds are kept so the classifier can mark the symbol
// unclassifiable.
func DecodeFile(data []byte, format Format) ([]*symbol.Symbol, error) {
	var (
		file File
		err  error
	)
	switch format {
	case FormatJSON:
		file, err = decodeJSON(data)
	case FormatYAML:
		file, err = decodeYAML(data)
	default:
		return nil, fmt.Errorf("format %q is not a facts file format", format)
	}
	if err != nil {
		return nil, err
	}
	if file.Version > FileVersion {
		return nil, fmt.Errorf("unsupported facts version %d (max %d)", file.Version, FileVersion)
	}

	out := make([]*symbol.Symbol, 0, len(file.Symbols))
	for _, s := range file.Symbols {
		if s == nil {
			continue
		}
		normalize(s)
		out = append(out, s)
	}
	return out, nil
}

func decodeJSON(data []byte) (File, error) {
	var file File
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return file, nil
	}
	if trimmed[0] == '[' {
		err := json.Unmarshal(trimmed, &file.Symbols)
		return file, err
	}
	err := json.Unmarshal(trimmed, &file)
	return file, err
}

func decodeYAML(data []byte) (File, error) {
	var file File
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return file, err
	}
	if len(doc.Content) == 0 {
		return file, nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.SequenceNode {
		err := root.Decode(&file.Symbols)
		return file, err
	}
	err := root.Decode(&file)
	return file, err
}

func normalize(s *symbol.Symbol) {
	raw := strings.ToLower(strings.TrimSpace(string(s.Kind)))
	kind, ok := symbol.ParseKind(raw)
	if !ok {
		return
	}
	s.Kind = kind

	switch {
	case kind == symbol.KindType && s.TypeKind == "":
		switch tk := symbol.TypeKind(raw); tk {
		case symbol.TypeClass, symbol.TypeInterface, symbol.TypeStruct, symbol.TypeRecord, symbol.TypeEnum:
			s.TypeKind = tk
		}
	case raw == "constant":
		s.IsConst = true
	}
}

// EncodeFile encodes symbols as a versioned facts document. Sibling lists are
// derived on load and are not written.
func EncodeFile(symbols []*symbol.Symbol, format Format) ([]byte, error) {
	file := File{Version: FileVersion, Symbols: make([]*symbol.Symbol, 0, len(symbols))}
	for _, s := range symbols {
		if s == nil {
			continue
		}
		c := *s
		c.Siblings = nil
		file.Symbols = append(file.Symbols, &c)
	}

	switch format {
	case FormatJSON:
		return json.MarshalIndent(file, "", "  ")
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(file); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("format %q is not a facts file format", format)
	}
}

// WriteFile writes symbols to path, choosing JSON or YAML by extension.
func WriteFile(path string, symbols []*symbol.Symbol) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	data, err := EncodeFile(symbols, format)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
