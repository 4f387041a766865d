package facts

import (
	"fmt"
	"os"
	"strings"

	scippb "github.com/sourcegraph/scip/bindings/go/scip"
	"google.golang.org/protobuf/proto"

	lerrors "namecheck/internal/errors"
	"namecheck/internal/symbol"
)

// LoadSCIP reads a SCIP index and returns the symbols it declares, with their
// definition and reference sites.
func LoadSCIP(path string) ([]*symbol.Symbol, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, lerrors.New(lerrors.FactsMissing, fmt.Sprintf("SCIP index not readable at %s", path), err)
	}

	var index scippb.Index
	if err := proto.Unmarshal(data, &index); err != nil {
		return nil, lerrors.NewLintError(
			lerrors.FactsInvalid,
			fmt.Sprintf("Failed to parse SCIP index from %s", path),
			err,
			[]lerrors.FixAction{
				{
					Type:        lerrors.RunCommand,
					Command:     "scip print --index=" + path,
					Safe:        true,
					Description: "Verify SCIP index is valid",
				},
			},
		)
	}
	return ConvertSCIP(&index), nil
}

// ConvertSCIP converts a decoded index. External symbols are ignored: their
// names are owned by another codebase.
func ConvertSCIP(index *scippb.Index) []*symbol.Symbol {
	c := &scipConverter{byID: make(map[string]*scipEntry)}
	for _, doc := range index.GetDocuments() {
		for _, info := range doc.GetSymbols() {
			c.declare(doc, info)
		}
	}
	for _, doc := range index.GetDocuments() {
		for _, occ := range doc.GetOccurrences() {
			c.occurrence(doc, occ)
		}
	}
	c.resolveContainers()

	out := make([]*symbol.Symbol, 0, len(c.order))
	for _, e := range c.order {
		out = append(out, e.sym)
	}
	return out
}

type scipEntry struct {
	sym   *symbol.Symbol
	owner string // SCIP symbol of the enclosing type, if any
}

type scipConverter struct {
	byID  map[string]*scipEntry
	order []*scipEntry
}

// key makes document-local symbols unique across documents.
func scipKey(doc *scippb.Document, id string) string {
	if strings.HasPrefix(id, "local ") {
		return doc.GetRelativePath() + "\x00" + id
	}
	return id
}

func (c *scipConverter) declare(doc *scippb.Document, info *scippb.SymbolInformation) {
	id := info.GetSymbol()
	key := scipKey(doc, id)
	if id == "" || c.byID[key] != nil {
		return
	}
	// Constructors take the name of their type.
	if info.GetKind() == scippb.SymbolInformation_Constructor {
		return
	}

	var (
		descs []descriptor
		owner string
		scope string
	)
	local := strings.HasPrefix(id, "local ")
	if !local {
		parsed, err := ParseSCIPSymbol(id)
		if err != nil || len(parsed.Descriptors) == 0 {
			return
		}
		descs = parsed.Descriptors
		owner, scope = parsed.ownerAndScope()
	} else {
		scope = doc.GetRelativePath() + "\x00" + info.GetEnclosingSymbol()
	}

	name := info.GetDisplayName()
	if name == "" && len(descs) > 0 {
		name = descs[len(descs)-1].Name
	}
	if name == "" {
		return
	}

	kind, typeKind, static := scipKind(info.GetKind())
	if kind == "" && len(descs) > 0 {
		kind = kindFromDescriptor(descs)
	}
	if kind == "" {
		return
	}
	if local && kind == symbol.KindField {
		kind = symbol.KindLocalVariable
	}
	if local && kind == symbol.KindMethod {
		kind = symbol.KindLocalFunction
	}

	if local {
		id = doc.GetRelativePath() + ":" + id
	}
	sym := &symbol.Symbol{
		ID:       id,
		Kind:     kind,
		Name:     name,
		TypeKind: typeKind,
		Scope:    scope,
		IsStatic: static,
	}
	if info.GetKind() == scippb.SymbolInformation_Constant {
		sym.IsConst = true
		sym.IsStatic = true
	}
	if t := containingType(descs); t != "" {
		sym.ContainingType = t
	}
	applySignature(sym, info.GetSignatureDocumentation().GetText())

	for _, rel := range info.GetRelationships() {
		if !rel.GetIsImplementation() {
			continue
		}
		if kind == symbol.KindType {
			if base := scipSimpleName(rel.GetSymbol()); base != "" {
				sym.BaseTypes = append(sym.BaseTypes, base)
			}
			continue
		}
		sym.IsInterfaceImplementation = true
	}

	e := &scipEntry{sym: sym, owner: owner}
	c.byID[key] = e
	c.order = append(c.order, e)
}

func (c *scipConverter) occurrence(doc *scippb.Document, occ *scippb.Occurrence) {
	e := c.byID[scipKey(doc, occ.GetSymbol())]
	if e == nil {
		return
	}
	loc, ok := scipLocation(doc.GetRelativePath(), occ.GetRange())
	if !ok {
		return
	}
	if occ.GetSymbolRoles()&int32(scippb.SymbolRole_Definition) != 0 {
		if e.sym.Location.Path == "" {
			e.sym.Location = loc
		}
		return
	}
	e.sym.References = append(e.sym.References, loc)
}

// resolveContainers copies the type kind of each member's owner, and turns
// terms declared inside enums into enum members.
func (c *scipConverter) resolveContainers() {
	for _, e := range c.order {
		if e.owner == "" {
			continue
		}
		owner := c.byID[e.owner]
		if owner == nil {
			continue
		}
		e.sym.ContainingTypeKind = owner.sym.TypeKind
		if owner.sym.TypeKind == symbol.TypeEnum && e.sym.Kind == symbol.KindField {
			e.sym.Kind = symbol.KindEnumMember
		}
	}
}

// scipLocation converts a SCIP range ([line, char, endChar] or
// [line, char, endLine, endChar], all 0-based) to a 1-based location.
func scipLocation(path string, r []int32) (symbol.Location, bool) {
	if len(r) < 3 {
		return symbol.Location{}, false
	}
	return symbol.Location{Path: path, Line: int(r[0]) + 1, Column: int(r[1]) + 1}, true
}

func scipKind(k scippb.SymbolInformation_Kind) (symbol.Kind, symbol.TypeKind, bool) {
	switch k {
	case scippb.SymbolInformation_Class:
		return symbol.KindType, symbol.TypeClass, false
	case scippb.SymbolInformation_Interface:
		return symbol.KindType, symbol.TypeInterface, false
	case scippb.SymbolInformation_Struct:
		return symbol.KindType, symbol.TypeStruct, false
	case scippb.SymbolInformation_Enum:
		return symbol.KindType, symbol.TypeEnum, false
	case scippb.SymbolInformation_EnumMember:
		return symbol.KindEnumMember, "", true
	case scippb.SymbolInformation_Method, scippb.SymbolInformation_Function:
		return symbol.KindMethod, "", false
	case scippb.SymbolInformation_StaticMethod:
		return symbol.KindMethod, "", true
	case scippb.SymbolInformation_Property:
		return symbol.KindProperty, "", false
	case scippb.SymbolInformation_StaticProperty:
		return symbol.KindProperty, "", true
	case scippb.SymbolInformation_Field, scippb.SymbolInformation_Variable:
		return symbol.KindField, "", false
	case scippb.SymbolInformation_StaticField, scippb.SymbolInformation_StaticVariable, scippb.SymbolInformation_Constant:
		return symbol.KindField, "", true
	case scippb.SymbolInformation_Event:
		return symbol.KindEvent, "", false
	case scippb.SymbolInformation_StaticEvent:
		return symbol.KindEvent, "", true
	case scippb.SymbolInformation_Parameter:
		return symbol.KindParameter, "", false
	case scippb.SymbolInformation_Namespace, scippb.SymbolInformation_Package:
		return symbol.KindNamespace, "", false
	}
	return "", "", false
}

func kindFromDescriptor(descs []descriptor) symbol.Kind {
	switch descs[len(descs)-1].Suffix {
	case suffixNamespace:
		return symbol.KindNamespace
	case suffixType:
		return symbol.KindType
	case suffixMethod:
		return symbol.KindMethod
	case suffixTerm:
		return symbol.KindField
	case suffixParameter:
		return symbol.KindParameter
	}
	return ""
}

func containingType(descs []descriptor) string {
	for i := len(descs) - 2; i >= 0; i-- {
		if descs[i].Suffix == suffixType {
			return descs[i].Name
		}
	}
	return ""
}

// applySignature reads modifiers and the declared type from a C#-style
// signature such as "public static Task<int> LoadAsync(string path)".
func applySignature(sym *symbol.Symbol, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	head := text
	if i := strings.Index(head, "("); i >= 0 && sym.Kind != symbol.KindType {
		head = head[:i]
	}
	fields := strings.Fields(head)
	nameAt := -1
	for i, f := range fields {
		switch f {
		case "static":
			sym.IsStatic = true
		case "const":
			sym.IsConst = true
			sym.IsStatic = true
		case "override":
			sym.IsOverride = true
		}
		if f == sym.Name || strings.HasSuffix(f, "."+sym.Name) {
			nameAt = i
		}
	}
	if nameAt > 0 && sym.Kind != symbol.KindType && sym.DeclaredType == "" {
		sym.DeclaredType = fields[nameAt-1]
	}
}

// SCIPSymbol is a parsed SCIP symbol string:
// <scheme> <manager> <package> <version> <descriptors>.
type SCIPSymbol struct {
	Scheme      string
	Manager     string
	Package     string
	Version     string
	Descriptors []descriptor
	Raw         string
}

type descriptorSuffix byte

const (
	suffixNamespace     descriptorSuffix = '/'
	suffixType          descriptorSuffix = '#'
	suffixTerm          descriptorSuffix = '.'
	suffixMeta          descriptorSuffix = ':'
	suffixMacro         descriptorSuffix = '!'
	suffixMethod        descriptorSuffix = 'm'
	suffixParameter     descriptorSuffix = 'p'
	suffixTypeParameter descriptorSuffix = 't'
)

type descriptor struct {
	Name   string
	Suffix descriptorSuffix
	// end is the offset in the descriptor string just past this descriptor.
	end int
}

// ParseSCIPSymbol parses a global SCIP symbol. Local symbols ("local 12")
// carry no descriptors and are rejected.
func ParseSCIPSymbol(id string) (*SCIPSymbol, error) {
	if id == "" {
		return nil, fmt.Errorf("empty SCIP symbol")
	}
	if strings.HasPrefix(id, "local ") {
		return nil, fmt.Errorf("local SCIP symbol %q has no descriptors", id)
	}

	parts, rest, err := splitSCIPHeader(id)
	if err != nil {
		return nil, err
	}
	descs, err := parseDescriptors(rest)
	if err != nil {
		return nil, fmt.Errorf("invalid SCIP symbol %q: %w", id, err)
	}
	return &SCIPSymbol{
		Scheme:      parts[0],
		Manager:     parts[1],
		Package:     parts[2],
		Version:     parts[3],
		Descriptors: descs,
		Raw:         id,
	}, nil
}

// splitSCIPHeader splits the four space-separated header fields. A double
// space inside a field is an escaped space.
func splitSCIPHeader(id string) ([4]string, string, error) {
	var parts [4]string
	rest := id
	for n := 0; n < 4; n++ {
		var sb strings.Builder
		i := 0
		for {
			if i >= len(rest) {
				return parts, "", fmt.Errorf("invalid SCIP symbol format: %s", id)
			}
			if rest[i] == ' ' {
				if i+1 < len(rest) && rest[i+1] == ' ' {
					sb.WriteByte(' ')
					i += 2
					continue
				}
				break
			}
			sb.WriteByte(rest[i])
			i++
		}
		parts[n] = sb.String()
		if parts[n] == "." {
			parts[n] = ""
		}
		rest = rest[i+1:]
	}
	return parts, rest, nil
}

func parseDescriptors(s string) ([]descriptor, error) {
	var out []descriptor
	i := 0
	for i < len(s) {
		switch s[i] {
		case '(':
			name, next, err := readUntil(s, i+1, ')')
			if err != nil {
				return nil, err
			}
			out = append(out, descriptor{Name: name, Suffix: suffixParameter, end: next})
			i = next
			continue
		case '[':
			name, next, err := readUntil(s, i+1, ']')
			if err != nil {
				return nil, err
			}
			out = append(out, descriptor{Name: name, Suffix: suffixTypeParameter, end: next})
			i = next
			continue
		}

		name, next, err := readName(s, i)
		if err != nil {
			return nil, err
		}
		if next >= len(s) {
			return nil, fmt.Errorf("descriptor %q has no suffix", name)
		}
		switch c := s[next]; c {
		case '/', '#', '.', ':', '!':
			out = append(out, descriptor{Name: name, Suffix: descriptorSuffix(c), end: next + 1})
			i = next + 1
		case '(':
			_, after, err := readUntil(s, next+1, ')')
			if err != nil {
				return nil, err
			}
			if after >= len(s) || s[after] != '.' {
				return nil, fmt.Errorf("method %q is missing its '.' suffix", name)
			}
			out = append(out, descriptor{Name: name, Suffix: suffixMethod, end: after + 1})
			i = after + 1
		default:
			return nil, fmt.Errorf("unexpected %q after %q", c, name)
		}
	}
	return out, nil
}

// readName reads a simple or backtick-escaped name starting at i.
func readName(s string, i int) (string, int, error) {
	if i < len(s) && s[i] == '`' {
		var sb strings.Builder
		j := i + 1
		for j < len(s) {
			if s[j] == '`' {
				if j+1 < len(s) && s[j+1] == '`' {
					sb.WriteByte('`')
					j += 2
					continue
				}
				return sb.String(), j + 1, nil
			}
			sb.WriteByte(s[j])
			j++
		}
		return "", 0, fmt.Errorf("unterminated escaped name")
	}
	j := i
	for j < len(s) && isSCIPIdentChar(s[j]) {
		j++
	}
	return s[i:j], j, nil
}

func readUntil(s string, i int, end byte) (string, int, error) {
	j := strings.IndexByte(s[i:], end)
	if j < 0 {
		return "", 0, fmt.Errorf("missing %q", end)
	}
	return s[i : i+j], i + j + 1, nil
}

func isSCIPIdentChar(c byte) bool {
	return c == '_' || c == '+' || c == '-' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c >= 0x80
}

// ownerAndScope returns the SCIP symbol of the enclosing type (members only)
// and the declaration space of the last descriptor.
func (s *SCIPSymbol) ownerAndScope() (owner, scope string) {
	n := len(s.Descriptors)
	if n == 0 {
		return "", ""
	}
	prefix := s.Raw[:len(s.Raw)-len(s.descriptorText())]
	if n == 1 {
		return "", prefix
	}
	parent := s.Descriptors[n-2]
	scope = prefix + s.descriptorText()[:parent.end]
	if parent.Suffix == suffixType {
		owner = scope
	}
	return owner, scope
}

func (s *SCIPSymbol) descriptorText() string {
	last := s.Descriptors[len(s.Descriptors)-1]
	return s.Raw[len(s.Raw)-last.end:]
}

// scipSimpleName returns the name of the last descriptor of a SCIP symbol.
func scipSimpleName(id string) string {
	parsed, err := ParseSCIPSymbol(id)
	if err != nil || len(parsed.Descriptors) == 0 {
		return ""
	}
	return parsed.Descriptors[len(parsed.Descriptors)-1].Name
}
