//go:build cgo

package facts

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"

	"namecheck/internal/slogutil"
	"namecheck/internal/symbol"
)

// CSharpExtractor reads declarations from C# source with tree-sitter. It has
// no semantic model: base types are taken as written and references are not
// resolved. Not safe for concurrent use.
type CSharpExtractor struct {
	parser *sitter.Parser
	logger *slog.Logger
}

// NewCSharpExtractor creates an extractor.
func NewCSharpExtractor(logger *slog.Logger) *CSharpExtractor {
	p := sitter.NewParser()
	p.SetLanguage(csharp.GetLanguage())
	return &CSharpExtractor{parser: p, logger: slogutil.OrDiscard(logger)}
}

// IsCSharpAvailable reports whether C# extraction is compiled in.
func IsCSharpAvailable() bool {
	return true
}

// Extract reads a single .cs file or every .cs file below a directory.
func (e *CSharpExtractor) Extract(ctx context.Context, path string) ([]*symbol.Symbol, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return e.ExtractDirectory(ctx, path)
	}
	return e.ExtractFile(ctx, path, filepath.ToSlash(path))
}

// ExtractFile parses one file. display is the path recorded in locations.
func (e *CSharpExtractor) ExtractFile(ctx context.Context, path, display string) ([]*symbol.Symbol, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return e.ExtractSource(ctx, display, source)
}

// ExtractSource parses source bytes.
func (e *CSharpExtractor) ExtractSource(ctx context.Context, path string, source []byte) ([]*symbol.Symbol, error) {
	tree, err := e.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	w := &csharpWalker{
		path:      path,
		src:       source,
		generated: isGeneratedFile(path),
		handlers:  make(map[string]map[string]bool),
	}
	w.walk(tree.RootNode(), csharpScope{})
	w.markHandlers()
	return w.symbols, nil
}

// ExtractDirectory walks root and extracts every .cs file. Hidden, bin and
// obj directories are skipped, as are files that fail to parse.
func (e *CSharpExtractor) ExtractDirectory(ctx context.Context, root string) ([]*symbol.Symbol, error) {
	var all []*symbol.Symbol

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if info.IsDir() {
			name := info.Name()
			if path != root && isSkippedDir(name) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".cs") {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		symbols, err := e.ExtractFile(ctx, path, filepath.ToSlash(rel))
		if err != nil {
			e.logger.Warn("Skipping C# file", "path", path, "error", err.Error())
			return nil
		}
		all = append(all, symbols...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

func isGeneratedFile(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".g.cs") ||
		strings.HasSuffix(lower, ".designer.cs") ||
		strings.HasSuffix(lower, ".generated.cs")
}

type csharpScope struct {
	namespace string
	typeName  string
	typeKind  symbol.TypeKind
	// scope is the declaration space new names are added to.
	scope string
	// local is set inside member bodies.
	local bool
}

type csharpWalker struct {
	path      string
	src       []byte
	generated bool
	symbols   []*symbol.Symbol
	// handlers maps a type scope to method names subscribed with +=.
	handlers map[string]map[string]bool
}

var csharpTypeKinds = map[string]symbol.TypeKind{
	"class_declaration":         symbol.TypeClass,
	"interface_declaration":     symbol.TypeInterface,
	"struct_declaration":        symbol.TypeStruct,
	"record_declaration":        symbol.TypeRecord,
	"record_struct_declaration": symbol.TypeRecord,
	"enum_declaration":          symbol.TypeEnum,
}

func (w *csharpWalker) walk(n *sitter.Node, sc csharpScope) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "file_scoped_namespace_declaration" {
			sc = w.namespace(child, sc)
			continue
		}
		w.visit(child, sc)
	}
}

func (w *csharpWalker) visit(n *sitter.Node, sc csharpScope) {
	if tk, ok := csharpTypeKinds[n.Type()]; ok {
		w.typeDecl(n, sc, tk)
		return
	}

	switch n.Type() {
	case "namespace_declaration":
		inner := w.namespace(n, sc)
		body := n.ChildByFieldName("body")
		if body == nil {
			body = w.childOfType(n, "declaration_list")
		}
		if body != nil {
			w.walk(body, inner)
		}
	case "method_declaration":
		w.method(n, sc, symbol.KindMethod)
	case "local_function_statement":
		w.method(n, sc, symbol.KindLocalFunction)
	case "constructor_declaration", "operator_declaration", "conversion_operator_declaration", "indexer_declaration":
		memberScope := w.memberScope(sc, n.Type(), n)
		w.parameters(n, memberScope, sc, false)
		w.walk(n, csharpScope{namespace: sc.namespace, typeName: sc.typeName, typeKind: sc.typeKind, scope: memberScope, local: true})
	case "property_declaration":
		sym := w.member(n, sc, symbol.KindProperty)
		w.walkBody(n, sc, sym)
	case "event_declaration":
		sym := w.member(n, sc, symbol.KindEvent)
		w.walkBody(n, sc, sym)
	case "field_declaration":
		w.variables(n, sc, symbol.KindField)
	case "event_field_declaration":
		w.variables(n, sc, symbol.KindEvent)
	case "local_declaration_statement":
		w.variables(n, sc, symbol.KindLocalVariable)
	case "enum_member_declaration":
		w.member(n, sc, symbol.KindEnumMember)
	case "assignment_expression":
		w.subscription(n, sc)
		w.walk(n, sc)
	default:
		w.walk(n, sc)
	}
}

func (w *csharpWalker) namespace(n *sitter.Node, sc csharpScope) csharpScope {
	full := w.text(n.ChildByFieldName("name"))
	if full == "" {
		return sc
	}
	name := full
	if i := strings.LastIndexByte(full, '.'); i >= 0 {
		name = full[i+1:]
	}
	w.add(&symbol.Symbol{Kind: symbol.KindNamespace, Name: name, Scope: "namespace:" + sc.namespace}, n.ChildByFieldName("name"), n)

	if sc.namespace != "" {
		full = sc.namespace + "." + full
	}
	return csharpScope{namespace: full, scope: full}
}

func (w *csharpWalker) typeDecl(n *sitter.Node, sc csharpScope, tk symbol.TypeKind) {
	nameNode := w.nameNode(n)
	name := w.text(nameNode)
	if name == "" {
		return
	}
	sym := &symbol.Symbol{
		Kind:               symbol.KindType,
		Name:               name,
		TypeKind:           tk,
		ContainingType:     sc.typeName,
		ContainingTypeKind: sc.typeKind,
		Scope:              sc.scope,
		BaseTypes:          w.baseTypes(n),
	}
	w.applyModifiers(sym, n)
	w.add(sym, nameNode, n)

	inner := csharpScope{
		namespace: sc.namespace,
		typeName:  name,
		typeKind:  tk,
		scope:     joinScope(sc.scope, name),
	}
	body := n.ChildByFieldName("body")
	if body == nil {
		body = w.childOfType(n, "declaration_list", "enum_member_declaration_list")
	}
	if body != nil {
		w.walk(body, inner)
	}
}

func (w *csharpWalker) method(n *sitter.Node, sc csharpScope, kind symbol.Kind) {
	nameNode := w.nameNode(n)
	name := w.text(nameNode)
	if name == "" {
		return
	}
	returns := n.ChildByFieldName("returns")
	if returns == nil {
		returns = n.ChildByFieldName("type")
	}

	sym := &symbol.Symbol{
		Kind:               kind,
		Name:               name,
		ContainingType:     sc.typeName,
		ContainingTypeKind: sc.typeKind,
		Scope:              sc.scope,
		DeclaredType:       w.text(returns),
	}
	if w.childOfType(n, "explicit_interface_specifier") != nil {
		sym.IsInterfaceImplementation = true
	}
	w.applyModifiers(sym, n)

	memberScope := w.memberScope(sc, name, n)
	sym.ParameterTypes, sym.IsExtension = w.parameters(n, memberScope, sc, kind == symbol.KindMethod)
	w.add(sym, nameNode, n)

	inner := csharpScope{namespace: sc.namespace, typeName: sc.typeName, typeKind: sc.typeKind, scope: memberScope, local: true}
	if body := n.ChildByFieldName("body"); body != nil {
		w.walk(body, inner)
	} else if body := w.childOfType(n, "block", "arrow_expression_clause"); body != nil {
		w.walk(body, inner)
	}
}

// parameters emits the parameters of n and returns their types. The second
// result reports an extension method ("this" on the first parameter).
func (w *csharpWalker) parameters(n *sitter.Node, memberScope string, sc csharpScope, allowExtension bool) ([]string, bool) {
	list := n.ChildByFieldName("parameters")
	if list == nil {
		list = w.childOfType(n, "parameter_list", "bracketed_parameter_list")
	}
	if list == nil {
		return nil, false
	}

	var (
		types     []string
		extension bool
		params    []*symbol.Symbol
	)
	for i := 0; i < int(list.NamedChildCount()); i++ {
		p := list.NamedChild(i)
		if p.Type() != "parameter" {
			continue
		}
		nameNode := w.nameNode(p)
		typ := w.text(p.ChildByFieldName("type"))
		types = append(types, typ)
		if len(params) == 0 && allowExtension && w.hasModifier(p, "this") {
			extension = true
		}

		sym := &symbol.Symbol{
			Kind:               symbol.KindParameter,
			Name:               w.text(nameNode),
			ContainingType:     sc.typeName,
			ContainingTypeKind: sc.typeKind,
			Scope:              memberScope,
			ParameterIndex:     len(params),
			DeclaredType:       typ,
		}
		w.applyModifiers(sym, p)
		params = append(params, sym)
		w.add(sym, nameNode, p)
	}
	if extension {
		for _, p := range params {
			p.IsExtension = true
		}
	}
	return types, extension
}

func (w *csharpWalker) member(n *sitter.Node, sc csharpScope, kind symbol.Kind) *symbol.Symbol {
	nameNode := w.nameNode(n)
	name := w.text(nameNode)
	if name == "" {
		return nil
	}
	sym := &symbol.Symbol{
		Kind:               kind,
		Name:               name,
		ContainingType:     sc.typeName,
		ContainingTypeKind: sc.typeKind,
		Scope:              sc.scope,
		DeclaredType:       w.text(n.ChildByFieldName("type")),
	}
	if w.childOfType(n, "explicit_interface_specifier") != nil {
		sym.IsInterfaceImplementation = true
	}
	if kind == symbol.KindEnumMember {
		sym.IsStatic = true
		sym.IsConst = true
	}
	w.applyModifiers(sym, n)
	w.add(sym, nameNode, n)
	return sym
}

// walkBody visits accessor bodies so their locals are found.
func (w *csharpWalker) walkBody(n *sitter.Node, sc csharpScope, sym *symbol.Symbol) {
	if sym == nil {
		return
	}
	scope := w.memberScope(sc, sym.Name, n)
	w.walk(n, csharpScope{namespace: sc.namespace, typeName: sc.typeName, typeKind: sc.typeKind, scope: scope, local: true})
}

// variables handles field, event field and local declarations, which all wrap
// a variable_declaration with one or more declarators.
func (w *csharpWalker) variables(n *sitter.Node, sc csharpScope, kind symbol.Kind) {
	decl := w.childOfType(n, "variable_declaration")
	if decl == nil {
		return
	}
	typ := w.text(decl.ChildByFieldName("type"))

	for i := 0; i < int(decl.NamedChildCount()); i++ {
		d := decl.NamedChild(i)
		if d.Type() != "variable_declarator" {
			continue
		}
		nameNode := w.nameNode(d)
		name := w.text(nameNode)
		if name == "" {
			continue
		}
		sym := &symbol.Symbol{
			Kind:               kind,
			Name:               name,
			ContainingType:     sc.typeName,
			ContainingTypeKind: sc.typeKind,
			Scope:              sc.scope,
			DeclaredType:       typ,
		}
		w.applyModifiers(sym, n)
		w.add(sym, nameNode, n)
		// Lambdas in initializers may declare locals too.
		w.walk(d, sc)
	}
}

// subscription records "x.Event += Handler" so Handler can be tagged as an
// event handler.
func (w *csharpWalker) subscription(n *sitter.Node, sc csharpScope) {
	right := n.ChildByFieldName("right")
	left := n.ChildByFieldName("left")
	if right == nil || left == nil || right.Type() != "identifier" {
		return
	}
	between := string(w.src[left.EndByte():right.StartByte()])
	if strings.TrimSpace(between) != "+=" {
		return
	}
	key := typeScopeOf(sc)
	if w.handlers[key] == nil {
		w.handlers[key] = make(map[string]bool)
	}
	w.handlers[key][w.text(right)] = true
}

func (w *csharpWalker) markHandlers() {
	for _, s := range w.symbols {
		if s.Kind != symbol.KindMethod {
			continue
		}
		if w.handlers[s.Scope][s.Name] {
			s.HandlesEvents = true
		}
	}
}

// typeScopeOf returns the scope of the type that encloses sc.
func typeScopeOf(sc csharpScope) string {
	if !sc.local {
		return sc.scope
	}
	// Member scopes are "<type scope>.<member>@<line>".
	if i := strings.LastIndexByte(sc.scope, '@'); i >= 0 {
		s := sc.scope[:i]
		if j := strings.LastIndexByte(s, '.'); j >= 0 {
			return s[:j]
		}
	}
	return sc.scope
}

func (w *csharpWalker) memberScope(sc csharpScope, name string, n *sitter.Node) string {
	if sc.local {
		return fmt.Sprintf("%s/%s@%d", sc.scope, name, n.StartPoint().Row+1)
	}
	return fmt.Sprintf("%s.%s@%d", sc.scope, name, n.StartPoint().Row+1)
}

func (w *csharpWalker) add(sym *symbol.Symbol, nameNode, declNode *sitter.Node) {
	if sym.Name == "" {
		return
	}
	if nameNode == nil {
		nameNode = declNode
	}
	pos := nameNode.StartPoint()
	sym.Location = symbol.Location{Path: w.path, Line: int(pos.Row) + 1, Column: int(pos.Column) + 1}
	sym.Attributes = append(sym.Attributes, w.attributes(declNode)...)
	if w.generated {
		sym.Attributes = append(sym.Attributes, "GeneratedCode")
	}
	w.symbols = append(w.symbols, sym)
}

func (w *csharpWalker) applyModifiers(sym *symbol.Symbol, n *sitter.Node) {
	for _, m := range w.modifiers(n) {
		switch m {
		case "static":
			sym.IsStatic = true
		case "const":
			sym.IsConst = true
			sym.IsStatic = true
		case "override":
			sym.IsOverride = true
		}
	}
}

func (w *csharpWalker) modifiers(n *sitter.Node) []string {
	var out []string
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		switch c.Type() {
		case "modifier", "parameter_modifier":
			out = append(out, strings.TrimSpace(w.text(c)))
		case "this":
			out = append(out, "this")
		}
	}
	return out
}

func (w *csharpWalker) hasModifier(n *sitter.Node, want string) bool {
	for _, m := range w.modifiers(n) {
		if m == want {
			return true
		}
	}
	return false
}

func (w *csharpWalker) attributes(n *sitter.Node) []string {
	var out []string
	for i := 0; i < int(n.NamedChildCount()); i++ {
		list := n.NamedChild(i)
		if list.Type() != "attribute_list" {
			continue
		}
		for j := 0; j < int(list.NamedChildCount()); j++ {
			attr := list.NamedChild(j)
			if attr.Type() != "attribute" {
				continue
			}
			name := w.text(attr.ChildByFieldName("name"))
			if name == "" && attr.NamedChildCount() > 0 {
				name = w.text(attr.NamedChild(0))
			}
			if name != "" {
				out = append(out, name)
			}
		}
	}
	return out
}

func (w *csharpWalker) baseTypes(n *sitter.Node) []string {
	list := n.ChildByFieldName("bases")
	if list == nil {
		list = w.childOfType(n, "base_list")
	}
	if list == nil {
		return nil
	}
	var out []string
	for i := 0; i < int(list.NamedChildCount()); i++ {
		if t := strings.TrimSpace(w.text(list.NamedChild(i))); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func (w *csharpWalker) nameNode(n *sitter.Node) *sitter.Node {
	if c := n.ChildByFieldName("name"); c != nil {
		return c
	}
	return w.childOfType(n, "identifier")
}

func (w *csharpWalker) childOfType(n *sitter.Node, types ...string) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		for _, t := range types {
			if c.Type() == t {
				return c
			}
		}
	}
	return nil
}

func (w *csharpWalker) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(w.src)
}

func joinScope(scope, name string) string {
	if scope == "" {
		return name
	}
	return scope + "." + name
}
