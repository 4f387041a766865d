package rules

import (
	"fmt"
	"strings"

	"namecheck/internal/symbol"
	"namecheck/internal/words"
)

var collectionSuffixes = []string{"List", "Array", "Collection", "Enumerable"}

// collectionCompounds are established words that end in a collection suffix.
var collectionCompounds = map[string]struct{}{
	"allowlist": {},
	"blacklist": {},
	"checklist": {},
	"denylist":  {},
	"playlist":  {},
	"shortlist": {},
	"watchlist": {},
	"whitelist": {},
	"wishlist":  {},
}

var collectionKinds = []symbol.Kind{
	symbol.KindField,
	symbol.KindProperty,
	symbol.KindParameter,
	symbol.KindLocalVariable,
}

func pluralRules(p *words.Pluralizer) []*Rule {
	isEnum := func(in Input) bool { return in.Symbol.TypeKind == symbol.TypeEnum }

	return []*Rule{
		{
			ID:          "NC1060",
			Name:        "RepositoryNaming",
			Family:      FamilyPluralization,
			Description: "Name repositories after the plural of the entity they hold",
			Kinds:       []symbol.Kind{symbol.KindType},
			AppliesTo: func(in Input) bool {
				return in.Symbol.TypeKind != symbol.TypeInterface
			},
			IsViolation: func(in Input) bool {
				return lastWordIn(in, "Repository") && len(in.Words()) > 1
			},
			Rewrite: func(in Input) string {
				return pluralizeBase(p, in.Tokens)
			},
			Message: func(in Input) string {
				return fmt.Sprintf("'%s' should be named after the plural of what it stores", in.Symbol.Name)
			},
		},
		{
			ID:          "NC1061",
			Name:        "CollectionSuffix",
			Family:      FamilyPluralization,
			Description: "Collections should use a plural noun instead of a collection-type suffix",
			Kinds:       collectionKinds,
			Exempt:      memberExempt,
			IsViolation: func(in Input) bool {
				if !lastWordIn(in, collectionSuffixes...) {
					return false
				}
				ws := in.Words()
				if len(ws) < 2 {
					return false
				}
				_, compound := collectionCompounds[strings.ToLower(ws[len(ws)-2]+ws[len(ws)-1])]
				return !compound
			},
			Rewrite: func(in Input) string {
				return pluralizeBase(p, in.Tokens)
			},
			Message: func(in Input) string {
				return fmt.Sprintf("'%s' names its collection type '%s'; use a plural noun", in.Symbol.Name, in.LastWord())
			},
		},
		{
			ID:          "NC1062",
			Name:        "FlagsEnumPlural",
			Family:      FamilyPluralization,
			Description: "[Flags] enums should have plural names",
			Kinds:       []symbol.Kind{symbol.KindType},
			AppliesTo:   hasTag(symbol.TagFlagsEnum),
			IsViolation: func(in Input) bool {
				last := in.LastWord()
				return last != "" && !p.IsPlural(last)
			},
			Rewrite: func(in Input) string {
				return inflectLastWord(in.Tokens, p.Pluralize)
			},
			Message: func(in Input) string {
				return fmt.Sprintf("flags enum '%s' should have a plural name", in.Symbol.Name)
			},
		},
		{
			ID:          "NC1063",
			Name:        "EnumSingular",
			Family:      FamilyPluralization,
			Description: "Enums without [Flags] should have singular names",
			Kinds:       []symbol.Kind{symbol.KindType},
			AppliesTo: func(in Input) bool {
				return isEnum(in) && !in.Tags.Has(symbol.TagFlagsEnum)
			},
			IsViolation: func(in Input) bool {
				return isPluralWord(p, in.LastWord())
			},
			Rewrite: func(in Input) string {
				return inflectLastWord(in.Tokens, p.Singularize)
			},
			Message: func(in Input) string {
				return fmt.Sprintf("enum '%s' should have a singular name", in.Symbol.Name)
			},
		},
		{
			ID:          "NC1064",
			Name:        "EnumMemberSingular",
			Family:      FamilyPluralization,
			Description: "Enum members should have singular names",
			Kinds:       []symbol.Kind{symbol.KindEnumMember},
			IsViolation: func(in Input) bool {
				return isPluralWord(p, in.LastWord())
			},
			Rewrite: func(in Input) string {
				return inflectLastWord(in.Tokens, p.Singularize)
			},
			Message: func(in Input) string {
				return fmt.Sprintf("enum member '%s' should have a singular name", in.Symbol.Name)
			},
		},
	}
}

// isPluralWord reports plural words that have a distinct singular form.
func isPluralWord(p *words.Pluralizer, word string) bool {
	return word != "" && p.IsPlural(word) && !p.IsInvariant(word)
}

// pluralizeBase drops the last word (the collection suffix) and pluralizes the
// word before it: "UserRepository" -> "Users", "m_orderList" -> "m_orders".
func pluralizeBase(p *words.Pluralizer, tokens []words.Token) string {
	i := words.LastWordIndex(tokens)
	if i < 0 {
		return ""
	}
	base := tokens[:i]
	for len(base) > 0 && base[len(base)-1].Kind == words.TokenSeparator {
		base = base[:len(base)-1]
	}
	return inflectLastWord(base, p.Pluralize)
}

// inflectLastWord rewrites the last word token with fn.
func inflectLastWord(tokens []words.Token, fn func(string) string) string {
	i := words.LastWordIndex(tokens)
	if i < 0 {
		return ""
	}
	return replaceToken(tokens, i, fn(tokens[i].Text))
}
