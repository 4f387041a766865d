package rules

import (
	"fmt"
	"strings"

	"namecheck/internal/symbol"
	"namecheck/internal/words"
)

const (
	instanceFieldPrefix = "m_"
	staticFieldPrefix   = "s_"
)

func expectedFieldPrefix(sym *symbol.Symbol) string {
	if sym.IsStatic {
		return staticFieldPrefix
	}
	return instanceFieldPrefix
}

func fieldRules() []*Rule {
	return []*Rule{
		{
			ID:          "NC1080",
			Name:        "FieldPrefix",
			Family:      FamilyFieldPrefix,
			Description: "Instance fields start with 'm_', static fields with 's_'",
			Kinds:       []symbol.Kind{symbol.KindField},
			Exempt: symbol.Of(
				symbol.TagOverriddenMember,
				symbol.TagDependencyPropertyField,
				symbol.TagRoutedEventField,
			),
			AppliesTo: func(in Input) bool {
				return !in.Symbol.IsConst && in.Symbol.ContainingTypeKind != symbol.TypeEnum
			},
			IsViolation: func(in Input) bool {
				prefix, _ := words.SplitPrefix(in.Symbol.Name)
				return prefix != expectedFieldPrefix(in.Symbol)
			},
			Rewrite: func(in Input) string {
				_, rest := words.SplitPrefix(in.Symbol.Name)
				rest = strings.TrimLeft(rest, "_")
				if rest == "" {
					return ""
				}
				return expectedFieldPrefix(in.Symbol) + words.Decapitalize(rest)
			},
			Message: func(in Input) string {
				kind := "instance"
				if in.Symbol.IsStatic {
					kind = "static"
				}
				return fmt.Sprintf("%s field '%s' should start with '%s'", kind, in.Symbol.Name, expectedFieldPrefix(in.Symbol))
			},
		},
	}
}
