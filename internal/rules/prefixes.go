package rules

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"namecheck/internal/symbol"
	"namecheck/internal/words"
)

var callableKinds = []symbol.Kind{symbol.KindMethod, symbol.KindLocalFunction}

func prefixRules() []*Rule {
	return []*Rule{
		{
			ID:          "NC1030",
			Name:        "EventHandlerOnPrefix",
			Family:      FamilyRequiredPrefix,
			Description: "Event handler methods should start with 'On'",
			Kinds:       callableKinds,
			Exempt:      symbol.Of(symbol.TagOverriddenMember, symbol.TagTestMethod),
			AppliesTo:   hasTag(symbol.TagEventHandlerMethod),
			IsViolation: func(in Input) bool {
				return in.FirstWord() != "On"
			},
			Rewrite: func(in Input) string {
				if i := words.FirstWordIndex(in.Tokens); i >= 0 {
					if t := in.Tokens[i].Text; t == "Handle" || strings.EqualFold(t, "on") {
						return replaceToken(in.Tokens, i, "On")
					}
				}
				_, rest := words.SplitPrefix(in.Symbol.Name)
				rest = strings.TrimLeft(rest, "_")
				if rest == "" {
					return ""
				}
				return "On" + words.Capitalize(rest)
			},
			Message: func(in Input) string {
				return fmt.Sprintf("event handler '%s' should start with 'On'", in.Symbol.Name)
			},
		},
		{
			ID:          "NC1031",
			Name:        "NoDoPrefix",
			Family:      FamilyRequiredPrefix,
			Description: "Method names should not start with 'Do' or contain a redundant 'Do' after 'Can'",
			Kinds:       callableKinds,
			Exempt:      symbol.Of(symbol.TagOverriddenMember, symbol.TagTestMethod),
			IsViolation: func(in Input) bool {
				return doTokenIndex(in.Tokens) >= 0
			},
			Rewrite: func(in Input) string {
				i := doTokenIndex(in.Tokens)
				if i < 0 {
					return ""
				}
				name := dropToken(in.Tokens, i)
				if words.FirstWordIndex(words.Tokenize(name)) < 0 {
					return ""
				}
				if in.Symbol.Kind == symbol.KindMethod {
					name = words.Capitalize(name)
				}
				return name
			},
			Message: func(in Input) string {
				return fmt.Sprintf("'%s' uses a redundant 'Do'", in.Symbol.Name)
			},
		},
		{
			ID:          "NC1032",
			Name:        "InterfacePrefix",
			Family:      FamilyRequiredPrefix,
			Description: "Interface names should start with 'I' followed by an upper-case letter",
			Kinds:       []symbol.Kind{symbol.KindType},
			AppliesTo: func(in Input) bool {
				return in.Symbol.TypeKind == symbol.TypeInterface
			},
			IsViolation: func(in Input) bool {
				return !hasInterfacePrefix(in.Symbol.Name)
			},
			Rewrite: func(in Input) string {
				return "I" + words.Capitalize(strings.TrimLeft(in.Symbol.Name, "_"))
			},
			Message: func(in Input) string {
				return fmt.Sprintf("interface '%s' should start with 'I'", in.Symbol.Name)
			},
		},
		{
			ID:          "NC1040",
			Name:        "NoCheckPrefix",
			Family:      FamilyCheckMethods,
			Description: "Methods starting with 'Check' do not say what they return or do; use Is/Has/Validate/Ensure",
			Kinds:       callableKinds,
			Exempt:      symbol.Of(symbol.TagOverriddenMember, symbol.TagTestMethod),
			IsViolation: func(in Input) bool {
				i := words.FirstWordIndex(in.Tokens)
				if i < 0 || !strings.EqualFold(in.Tokens[i].Text, "Check") {
					return false
				}
				if i+1 < len(in.Tokens) {
					switch in.Tokens[i+1].Text {
					case "In", "Out":
						return false
					}
				}
				return true
			},
			Message: func(in Input) string {
				return fmt.Sprintf("'%s' starts with 'Check'; name the outcome instead", in.Symbol.Name)
			},
		},
	}
}

// doTokenIndex returns the index of an offending "Do" token: the whole first
// word, or a later word in a name that starts with "Can". Substrings such as
// "Dock" or "Down" are separate words and never match.
func doTokenIndex(tokens []words.Token) int {
	first := words.FirstWordIndex(tokens)
	if first < 0 {
		return -1
	}
	if strings.EqualFold(tokens[first].Text, "Do") {
		return first
	}
	if tokens[first].Text != "Can" {
		return -1
	}
	for i := first + 1; i < len(tokens); i++ {
		if tokens[i].IsWord() && tokens[i].Text == "Do" {
			return i
		}
	}
	return -1
}

func hasInterfacePrefix(name string) bool {
	if !strings.HasPrefix(name, "I") {
		return false
	}
	r, size := utf8.DecodeRuneInString(name[1:])
	return size > 0 && unicode.IsUpper(r)
}
