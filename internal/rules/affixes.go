package rules

import (
	"fmt"
	"strings"

	"namecheck/internal/symbol"
	"namecheck/internal/words"
)

var helperSuffixes = []string{"Helper", "Helpers", "Util", "Utils", "Utility", "Utilities"}

// nonTypeKinds are the kinds NC1022 looks at.
var nonTypeKinds = []symbol.Kind{
	symbol.KindMethod,
	symbol.KindProperty,
	symbol.KindField,
	symbol.KindEvent,
	symbol.KindParameter,
	symbol.KindLocalVariable,
	symbol.KindLocalFunction,
}

func affixRules() []*Rule {
	return []*Rule{
		{
			ID:          "NC1020",
			Name:        "NoHelperSuffix",
			Family:      FamilyForbiddenAffix,
			Description: "Type names should not end in Helper, Util or Utility",
			Kinds:       []symbol.Kind{symbol.KindType},
			IsViolation: func(in Input) bool {
				return lastWordIn(in, helperSuffixes...)
			},
			Message: func(in Input) string {
				return fmt.Sprintf("'%s' ends in '%s'; name the type after what it does", in.Symbol.Name, in.LastWord())
			},
		},
		{
			ID:          "NC1021",
			Name:        "NoImplSuffix",
			Family:      FamilyForbiddenAffix,
			Description: "Type names should not end in Impl",
			Kinds:       []symbol.Kind{symbol.KindType},
			IsViolation: func(in Input) bool {
				return lastWordIn(in, "Impl")
			},
			Rewrite: dropLastWord,
			Message: func(in Input) string {
				return fmt.Sprintf("'%s' ends in 'Impl'", in.Symbol.Name)
			},
		},
		{
			ID:          "NC1022",
			Name:        "NoModelSuffix",
			Family:      FamilyForbiddenAffix,
			Description: "Only types may end in Model",
			Kinds:       nonTypeKinds,
			Exempt:      memberExempt,
			AppliesTo: func(in Input) bool {
				// A bare "model" names the thing itself.
				return len(in.Words()) > 1
			},
			IsViolation: func(in Input) bool {
				if !lastWordIn(in, "Model") {
					return false
				}
				ws := in.Words()
				return !strings.EqualFold(ws[len(ws)-2], "View")
			},
			Rewrite: dropLastWord,
			Message: func(in Input) string {
				return fmt.Sprintf("%s '%s' ends in 'Model'", in.Symbol.Kind, in.Symbol.Name)
			},
		},
	}
}

// lastWordIn reports whether the last word token equals one of candidates,
// ignoring case. Whole tokens are compared, so "Security" never matches "curity".
func lastWordIn(in Input, candidates ...string) bool {
	last := in.LastWord()
	if last == "" {
		return false
	}
	for _, c := range candidates {
		if strings.EqualFold(last, c) {
			return true
		}
	}
	return false
}

// dropLastWord removes the last word token and anything after it.
func dropLastWord(in Input) string {
	i := words.LastWordIndex(in.Tokens)
	if i < 0 {
		return ""
	}
	return trimmedJoin(in.Tokens[:i])
}

// trimmedJoin joins tokens after removing trailing separators. A lone prefix
// marker does not count as a name.
func trimmedJoin(tokens []words.Token) string {
	for len(tokens) > 0 && tokens[len(tokens)-1].Kind == words.TokenSeparator {
		tokens = tokens[:len(tokens)-1]
	}
	if words.FirstWordIndex(tokens) < 0 {
		return ""
	}
	return words.Join(tokens)
}
