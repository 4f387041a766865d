package rules

import (
	"fmt"
	"strings"

	"namecheck/internal/symbol"
)

// memberExempt is the exemption set of rules whose subject may be fixed by a
// base contract.
var memberExempt = symbol.Of(symbol.TagOverriddenMember)

func suffixRules() []*Rule {
	return []*Rule{
		requiredSuffix("NC1001", "EventArgsSuffix", FamilyBaseSuffix, symbol.KindType, symbol.TagEventArgsType, "EventArgs",
			"types deriving from EventArgs"),
		requiredSuffix("NC1002", "ExceptionSuffix", FamilyBaseSuffix, symbol.KindType, symbol.TagExceptionType, "Exception",
			"types deriving from Exception"),
		requiredSuffix("NC1003", "AttributeSuffix", FamilyBaseSuffix, symbol.KindType, symbol.TagAttributeType, "Attribute",
			"types deriving from Attribute"),
		requiredSuffix("NC1010", "DependencyPropertySuffix", FamilyFrameworkField, symbol.KindField, symbol.TagDependencyPropertyField, "Property",
			"DependencyProperty fields"),
		requiredSuffix("NC1011", "RoutedEventSuffix", FamilyFrameworkField, symbol.KindField, symbol.TagRoutedEventField, "Event",
			"RoutedEvent fields"),
	}
}

// requiredSuffix builds a rule that demands suffix on symbols carrying tag and
// fixes the name by appending it.
func requiredSuffix(id, name string, family Family, kind symbol.Kind, tag symbol.Tag, suffix, subject string) *Rule {
	var exempt symbol.Tags
	if kind != symbol.KindType {
		exempt = memberExempt
	}
	return &Rule{
		ID:          id,
		Name:        name,
		Family:      family,
		Description: fmt.Sprintf("Names of %s should end in '%s'", subject, suffix),
		Kinds:       []symbol.Kind{kind},
		Exempt:      exempt,
		AppliesTo:   hasTag(tag),
		IsViolation: func(in Input) bool {
			return !strings.HasSuffix(in.Symbol.Name, suffix)
		},
		Rewrite: func(in Input) string {
			return in.Symbol.Name + suffix
		},
		Message: func(in Input) string {
			return fmt.Sprintf("'%s' should end in '%s'", in.Symbol.Name, suffix)
		},
	}
}
