package rules

import (
	"fmt"
	"unicode/utf8"

	"namecheck/internal/symbol"
)

// lengthRuleIDs fixes the rule ID of each length-limited kind.
var lengthRuleIDs = []struct {
	id   string
	kind symbol.Kind
	name string
}{
	{"NC1050", symbol.KindType, "TypeNameLength"},
	{"NC1051", symbol.KindMethod, "MethodNameLength"},
	{"NC1052", symbol.KindProperty, "PropertyNameLength"},
	{"NC1053", symbol.KindEvent, "EventNameLength"},
	{"NC1054", symbol.KindField, "FieldNameLength"},
	{"NC1055", symbol.KindParameter, "ParameterNameLength"},
	{"NC1056", symbol.KindLocalVariable, "LocalVariableNameLength"},
	{"NC1057", symbol.KindLocalFunction, "LocalFunctionNameLength"},
}

func lengthRules(limits map[symbol.Kind]int) []*Rule {
	out := make([]*Rule, 0, len(lengthRuleIDs))
	for _, lr := range lengthRuleIDs {
		limit := limits[lr.kind]
		kind := lr.kind

		exempt := symbol.Of(symbol.TagOverriddenMember, symbol.TagTestMethod)
		if kind == symbol.KindType {
			exempt = symbol.Of(symbol.TagTestClass)
		}

		out = append(out, &Rule{
			ID:          lr.id,
			Name:        lr.name,
			Family:      FamilyLengthLimit,
			Description: fmt.Sprintf("%s names should be at most %d characters", kind, limit),
			Kinds:       []symbol.Kind{kind},
			Exempt:      exempt,
			AppliesTo: func(Input) bool {
				return limit > 0
			},
			IsViolation: func(in Input) bool {
				return nameLength(in.Symbol.Name) > limit
			},
			Message: func(in Input) string {
				return fmt.Sprintf("%s name '%s' is %d characters long; the limit is %d",
					kind, in.Symbol.Name, nameLength(in.Symbol.Name), limit)
			},
		})
	}
	return out
}

// nameLength counts runes of the unqualified name, so an explicit
// implementation "IDisposable.Dispose" measures as "Dispose".
func nameLength(name string) int {
	return utf8.RuneCountInString(unqualified(name))
}
