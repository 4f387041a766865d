package symbol

import (
	"strings"
)

// Tag is a classification fact derived from a Symbol.
type Tag uint32

const (
	// TagUnclassifiable marks malformed symbols: empty name or unknown kind.
	TagUnclassifiable Tag = 1 << iota
	// TagGenerated marks compiler- or tool-generated code.
	TagGenerated
	// TagOverriddenMember marks members whose name is fixed by a base contract.
	TagOverriddenMember
	TagTestMethod
	TagTestClass
	TagEventHandlerMethod
	TagExtensionMethodParameter
	TagEventArgsType
	TagExceptionType
	TagAttributeType
	TagDependencyPropertyField
	TagRoutedEventField
	TagFlagsEnum
	TagAsyncMethod
)

var tagNames = []struct {
	tag  Tag
	name string
}{
	{TagUnclassifiable, "Unclassifiable"},
	{TagGenerated, "Generated"},
	{TagOverriddenMember, "OverriddenMember"},
	{TagTestMethod, "TestMethod"},
	{TagTestClass, "TestClass"},
	{TagEventHandlerMethod, "EventHandlerMethod"},
	{TagExtensionMethodParameter, "ExtensionMethodParameter"},
	{TagEventArgsType, "EventArgsType"},
	{TagExceptionType, "ExceptionType"},
	{TagAttributeType, "AttributeType"},
	{TagDependencyPropertyField, "DependencyPropertyField"},
	{TagRoutedEventField, "RoutedEventField"},
	{TagFlagsEnum, "FlagsEnum"},
	{TagAsyncMethod, "AsyncMethod"},
}

// Tags is a set of Tag values.
type Tags uint32

// Has reports whether every tag in t is present.
func (ts Tags) Has(t Tag) bool {
	return Tag(ts)&t == t
}

// Any reports whether at least one tag of other is present.
func (ts Tags) Any(other Tags) bool {
	return ts&other != 0
}

// With returns the set with t added.
func (ts Tags) With(t Tag) Tags {
	return ts | Tags(t)
}

// Of builds a tag set.
func Of(tags ...Tag) Tags {
	var ts Tags
	for _, t := range tags {
		ts |= Tags(t)
	}
	return ts
}

// Names returns the tag names in declaration order.
func (ts Tags) Names() []string {
	var names []string
	for _, tn := range tagNames {
		if ts.Has(tn.tag) {
			names = append(names, tn.name)
		}
	}
	return names
}

// String implements fmt.Stringer.
func (ts Tags) String() string {
	return "{" + strings.Join(ts.Names(), ",") + "}"
}

var (
	testMethodAttributes = []string{"Test", "TestCase", "TestCaseSource", "Theory", "Fact", "TestMethod", "DataTestMethod"}
	testClassAttributes  = []string{"TestFixture", "TestClass"}
	generatedAttributes  = []string{"GeneratedCode", "CompilerGenerated", "DebuggerNonUserCode"}
)

// Classify derives the tag set of a symbol. It is a pure function of sym.
func Classify(sym *Symbol) Tags {
	if sym == nil || strings.TrimSpace(sym.Name) == "" || !sym.Kind.IsValid() {
		return Of(TagUnclassifiable)
	}

	var tags Tags
	if HasAttribute(sym.Attributes, generatedAttributes...) {
		tags = tags.With(TagGenerated)
	}
	if sym.IsOverride || sym.IsInterfaceImplementation {
		tags = tags.With(TagOverriddenMember)
	}

	switch sym.Kind {
	case KindType:
		if HasAttribute(sym.Attributes, testClassAttributes...) {
			tags = tags.With(TagTestClass)
		}
		if derivesFrom(sym.BaseTypes, "EventArgs") {
			tags = tags.With(TagEventArgsType)
		}
		if derivesFrom(sym.BaseTypes, "Exception") {
			tags = tags.With(TagExceptionType)
		}
		if derivesFrom(sym.BaseTypes, "Attribute") {
			tags = tags.With(TagAttributeType)
		}
		if sym.TypeKind == TypeEnum && HasAttribute(sym.Attributes, "Flags") {
			tags = tags.With(TagFlagsEnum)
		}

	case KindMethod, KindLocalFunction:
		if sym.Kind == KindMethod && HasAttribute(sym.Attributes, testMethodAttributes...) {
			tags = tags.With(TagTestMethod)
		}
		if sym.HandlesEvents || isEventHandlerSignature(sym.ParameterTypes) {
			tags = tags.With(TagEventHandlerMethod)
		}
		if returnsTask(sym.DeclaredType) {
			tags = tags.With(TagAsyncMethod)
		}

	case KindParameter:
		if sym.IsExtension && sym.ParameterIndex == 0 {
			tags = tags.With(TagExtensionMethodParameter)
		}

	case KindField:
		switch SimpleTypeName(sym.DeclaredType) {
		case "DependencyProperty", "DependencyPropertyKey":
			tags = tags.With(TagDependencyPropertyField)
		case "RoutedEvent":
			tags = tags.With(TagRoutedEventField)
		}
	}

	return tags
}

// HasAttribute reports whether attrs contains any of names. Attribute names are
// compared without namespace, argument list and "Attribute" suffix, so
// "NUnit.Framework.TestCaseAttribute(1, 2)" matches "TestCase".
func HasAttribute(attrs []string, names ...string) bool {
	for _, a := range attrs {
		simple := normalizeAttribute(a)
		for _, n := range names {
			if simple == n {
				return true
			}
		}
	}
	return false
}

func normalizeAttribute(a string) string {
	a = strings.TrimSpace(a)
	a = strings.TrimPrefix(a, "[")
	a = strings.TrimSuffix(a, "]")
	if i := strings.IndexByte(a, '('); i >= 0 {
		a = a[:i]
	}
	if i := strings.LastIndexByte(a, '.'); i >= 0 {
		a = a[i+1:]
	}
	if a != "Attribute" {
		a = strings.TrimSuffix(a, "Attribute")
	}
	return strings.TrimSpace(a)
}

// derivesFrom reports whether any base type is root or a type named "…root".
// Hosts list the inheritance chain, but a specialised base such as
// "CancelEventArgs" is accepted on its own.
func derivesFrom(bases []string, root string) bool {
	for _, b := range bases {
		if strings.HasSuffix(SimpleTypeName(b), root) {
			return true
		}
	}
	return false
}

func isEventHandlerSignature(params []string) bool {
	if len(params) != 2 {
		return false
	}
	sender := SimpleTypeName(params[0])
	if sender != "object" && sender != "Object" {
		return false
	}
	return strings.HasSuffix(SimpleTypeName(params[1]), "EventArgs")
}

func returnsTask(t string) bool {
	switch SimpleTypeName(t) {
	case "Task", "ValueTask":
		return true
	}
	return false
}
