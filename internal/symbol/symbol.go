// Package symbol defines the read-only symbol facts consumed by the naming
// rules and the classifier that tags them.
package symbol

import (
	"sort"
	"strings"
)

// Kind is the kind of a declared program element.
type Kind string

const (
	KindType          Kind = "type"
	KindMethod        Kind = "method"
	KindProperty      Kind = "property"
	KindField         Kind = "field"
	KindEvent         Kind = "event"
	KindParameter     Kind = "parameter"
	KindNamespace     Kind = "namespace"
	KindEnumMember    Kind = "enum-member"
	KindLocalVariable Kind = "local-variable"
	KindLocalFunction Kind = "local-function"
)

// AllKinds lists every supported kind in a stable order.
var AllKinds = []Kind{
	KindType,
	KindMethod,
	KindProperty,
	KindField,
	KindEvent,
	KindParameter,
	KindNamespace,
	KindEnumMember,
	KindLocalVariable,
	KindLocalFunction,
}

// IsValid reports whether k is a known kind.
func (k Kind) IsValid() bool {
	for _, known := range AllKinds {
		if k == known {
			return true
		}
	}
	return false
}

// ParseKind parses a kind name, accepting a few common aliases.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "type", "class", "interface", "struct", "record", "enum":
		return KindType, true
	case "method", "constructor", "function":
		return KindMethod, true
	case "property":
		return KindProperty, true
	case "field", "constant":
		return KindField, true
	case "event":
		return KindEvent, true
	case "parameter", "param":
		return KindParameter, true
	case "namespace", "package":
		return KindNamespace, true
	case "enum-member", "enummember", "enum_member":
		return KindEnumMember, true
	case "local-variable", "local", "variable", "localvariable":
		return KindLocalVariable, true
	case "local-function", "localfunction":
		return KindLocalFunction, true
	default:
		return "", false
	}
}

// TypeKind is the flavour of a type declaration.
type TypeKind string

const (
	TypeClass     TypeKind = "class"
	TypeInterface TypeKind = "interface"
	TypeStruct    TypeKind = "struct"
	TypeRecord    TypeKind = "record"
	TypeEnum      TypeKind = "enum"
)

// Location is a position in a source file. Line and Column are 1-based; zero
// means unknown.
type Location struct {
	Path   string `json:"path,omitempty" yaml:"path,omitempty"`
	Line   int    `json:"line,omitempty" yaml:"line,omitempty"`
	Column int    `json:"column,omitempty" yaml:"column,omitempty"`
}

// Symbol is an immutable snapshot of one declared program element as reported
// by the host's semantic model. Nothing in this module mutates a Symbol.
type Symbol struct {
	// ID identifies the symbol within one analysis pass (optional).
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	Kind Kind   `json:"kind" yaml:"kind"`
	Name string `json:"name" yaml:"name"`

	// TypeKind is set for Kind == KindType.
	TypeKind TypeKind `json:"typeKind,omitempty" yaml:"typeKind,omitempty"`

	// ContainingType is the simple name of the enclosing type, if any.
	ContainingType     string   `json:"containingType,omitempty" yaml:"containingType,omitempty"`
	ContainingTypeKind TypeKind `json:"containingTypeKind,omitempty" yaml:"containingTypeKind,omitempty"`

	// Scope identifies the declaration space the name lives in; symbols that
	// share a Scope are siblings.
	Scope string `json:"scope,omitempty" yaml:"scope,omitempty"`

	IsOverride                bool `json:"isOverride,omitempty" yaml:"isOverride,omitempty"`
	IsInterfaceImplementation bool `json:"isInterfaceImplementation,omitempty" yaml:"isInterfaceImplementation,omitempty"`
	IsStatic                  bool `json:"isStatic,omitempty" yaml:"isStatic,omitempty"`
	IsConst                   bool `json:"isConst,omitempty" yaml:"isConst,omitempty"`

	// IsExtension marks extension methods and the parameters of extension methods.
	IsExtension bool `json:"isExtension,omitempty" yaml:"isExtension,omitempty"`

	// HandlesEvents marks methods subscribed to an event (x.Event += Method).
	HandlesEvents bool `json:"handlesEvents,omitempty" yaml:"handlesEvents,omitempty"`

	// ParameterIndex is the zero-based position of a parameter.
	ParameterIndex int `json:"parameterIndex,omitempty" yaml:"parameterIndex,omitempty"`

	// DeclaredType is the field/property/event/parameter type or the method
	// return type.
	DeclaredType string `json:"declaredType,omitempty" yaml:"declaredType,omitempty"`

	// BaseTypes lists base classes (nearest first) and implemented interfaces.
	BaseTypes []string `json:"baseTypes,omitempty" yaml:"baseTypes,omitempty"`

	// ParameterTypes lists parameter types of methods and operators, in order.
	ParameterTypes []string `json:"parameterTypes,omitempty" yaml:"parameterTypes,omitempty"`

	Attributes []string `json:"attributes,omitempty" yaml:"attributes,omitempty"`

	// Siblings are the other names declared in the same scope.
	Siblings []string `json:"siblings,omitempty" yaml:"siblings,omitempty"`

	Location   Location   `json:"location,omitempty" yaml:"location,omitempty"`
	References []Location `json:"references,omitempty" yaml:"references,omitempty"`
}

// Key returns the symbol ID or, when absent, a name-based key.
func (s *Symbol) Key() string {
	if s.ID != "" {
		return s.ID
	}
	var sb strings.Builder
	sb.WriteString(string(s.Kind))
	sb.WriteByte(':')
	if s.Scope != "" {
		sb.WriteString(s.Scope)
	} else {
		sb.WriteString(s.ContainingType)
	}
	sb.WriteByte(':')
	sb.WriteString(s.Name)
	return sb.String()
}

// HasSibling reports whether name is declared elsewhere in the same scope.
func (s *Symbol) HasSibling(name string) bool {
	for _, sib := range s.Siblings {
		if sib == name {
			return true
		}
	}
	return false
}

// WithName returns a copy of s renamed to name. The receiver is not modified.
func (s *Symbol) WithName(name string) *Symbol {
	c := *s
	c.Name = name
	c.BaseTypes = append([]string(nil), s.BaseTypes...)
	c.ParameterTypes = append([]string(nil), s.ParameterTypes...)
	c.Attributes = append([]string(nil), s.Attributes...)
	c.Siblings = append([]string(nil), s.Siblings...)
	c.References = append([]Location(nil), s.References...)
	return &c
}

// LinkSiblings fills Siblings for every symbol that has none, grouping by
// Scope (or by ContainingType and kind family when Scope is empty).
func LinkSiblings(symbols []*Symbol) {
	groups := make(map[string][]*Symbol)
	for _, s := range symbols {
		if s == nil || s.Name == "" {
			continue
		}
		groups[scopeKey(s)] = append(groups[scopeKey(s)], s)
	}

	for _, members := range groups {
		names := make([]string, 0, len(members))
		for _, m := range members {
			names = append(names, m.Name)
		}
		sort.Strings(names)

		for _, m := range members {
			if len(m.Siblings) > 0 {
				continue
			}
			for _, n := range names {
				if n != m.Name {
					m.Siblings = append(m.Siblings, n)
				}
			}
		}
	}
}

func scopeKey(s *Symbol) string {
	if s.Scope != "" {
		return s.Scope
	}
	switch s.Kind {
	case KindParameter, KindLocalVariable, KindLocalFunction:
		// Without a scope, locals of different methods cannot be told apart.
		return string(s.Kind) + "\x00" + s.ContainingType + "\x00" + s.Location.Path
	case KindNamespace:
		return "namespace"
	default:
		return "member\x00" + s.ContainingType
	}
}

// SimpleTypeName strips namespace qualification, generic arguments, array and
// nullable markers: "System.Collections.Generic.List<int>[]" -> "List".
func SimpleTypeName(t string) string {
	t = strings.TrimSpace(t)
	if i := strings.IndexAny(t, "<[`("); i >= 0 {
		t = t[:i]
	}
	t = strings.TrimSuffix(t, "?")
	if i := strings.LastIndexAny(t, ".:"); i >= 0 {
		t = t[i+1:]
	}
	return t
}
