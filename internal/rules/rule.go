// Package rules holds the naming-rule registry and its evaluator.
//
// A rule is a small data record: a kind filter, a set of exempting tags, an
// applicability predicate, a violation predicate and an optional rewrite. The
// registry is a flat list built once by NewRegistry and never modified, so a
// single Registry can evaluate symbols from many goroutines at once.
package rules

import (
	"strings"

	"namecheck/internal/symbol"
	"namecheck/internal/words"
)

// Input is everything a rule may look at for one symbol.
type Input struct {
	Symbol *symbol.Symbol
	Tags   symbol.Tags
	Tokens []words.Token
}

// Words returns the word tokens of the symbol name.
func (in Input) Words() []string {
	return words.Words(in.Tokens)
}

// FirstWord returns the first word token, or "".
func (in Input) FirstWord() string {
	if i := words.FirstWordIndex(in.Tokens); i >= 0 {
		return in.Tokens[i].Text
	}
	return ""
}

// LastWord returns the last word token, or "".
func (in Input) LastWord() string {
	if i := words.LastWordIndex(in.Tokens); i >= 0 {
		return in.Tokens[i].Text
	}
	return ""
}

// Family groups rules that share a policy shape.
type Family string

const (
	FamilyBaseSuffix     Family = "base-derived-suffix"
	FamilyFrameworkField Family = "framework-field-suffix"
	FamilyForbiddenAffix Family = "forbidden-affix"
	FamilyRequiredPrefix Family = "required-prefix"
	FamilyCheckMethods   Family = "check-methods"
	FamilyLengthLimit    Family = "length-limit"
	FamilyPluralization  Family = "pluralization"
	FamilyNumberSuffix   Family = "number-suffix"
	FamilyFieldPrefix    Family = "field-prefix"
	FamilyAsyncSuffix    Family = "async-suffix"
)

// Rule is one naming policy.
type Rule struct {
	ID          string
	Name        string
	Family      Family
	Description string

	// Kinds restricts the rule to symbol kinds; empty means every kind.
	Kinds []symbol.Kind

	// Exempt lists tags that switch the rule off for a symbol. Rules whose
	// names are fixed by a base contract include TagOverriddenMember.
	Exempt symbol.Tags

	// AppliesTo narrows the rule beyond Kinds; nil means always.
	AppliesTo func(in Input) bool

	// IsViolation reports whether the name breaks the policy.
	IsViolation func(in Input) bool

	// Rewrite proposes a corrected name; nil when no mechanical fix exists.
	Rewrite func(in Input) string

	// Message describes the violation for one symbol.
	Message func(in Input) string
}

// HasFix reports whether the rule can propose a rename.
func (r *Rule) HasFix() bool {
	return r.Rewrite != nil
}

// IsContractExempt reports whether overridden members are exempt.
func (r *Rule) IsContractExempt() bool {
	return r.Exempt.Has(symbol.TagOverriddenMember)
}

func (r *Rule) appliesToKind(k symbol.Kind) bool {
	if len(r.Kinds) == 0 {
		return true
	}
	for _, kind := range r.Kinds {
		if kind == k {
			return true
		}
	}
	return false
}

// Diagnostic is one violation of one rule by one symbol.
type Diagnostic struct {
	RuleID       string          `json:"ruleId"`
	RuleName     string          `json:"ruleName"`
	SymbolID     string          `json:"symbolId,omitempty"`
	SymbolName   string          `json:"symbolName"`
	Kind         symbol.Kind     `json:"kind"`
	Container    string          `json:"container,omitempty"`
	Message      string          `json:"message"`
	ProposedName string          `json:"proposedName,omitempty"`
	Location     symbol.Location `json:"location"`
}

// HasProposal reports whether a rename is proposed.
func (d Diagnostic) HasProposal() bool {
	return d.ProposedName != ""
}

// hasTag returns an AppliesTo predicate for a single tag.
func hasTag(tag symbol.Tag) func(Input) bool {
	return func(in Input) bool { return in.Tags.Has(tag) }
}

// dropToken removes tokens[i] and joins the rest, trimming separators left
// dangling at either end.
func dropToken(tokens []words.Token, i int) string {
	out := make([]words.Token, 0, len(tokens)-1)
	out = append(out, tokens[:i]...)
	out = append(out, tokens[i+1:]...)
	for len(out) > 0 && out[len(out)-1].Kind == words.TokenSeparator {
		out = out[:len(out)-1]
	}
	start := 0
	for start < len(out) && out[start].Kind == words.TokenSeparator {
		start++
	}
	return words.Join(out[start:])
}

// replaceToken substitutes tokens[i] with text.
func replaceToken(tokens []words.Token, i int, text string) string {
	var sb strings.Builder
	for j, t := range tokens {
		if j == i {
			sb.WriteString(text)
			continue
		}
		sb.WriteString(t.Text)
	}
	return sb.String()
}

// unqualified strips explicit interface qualification: "IFoo.Bar" -> "Bar".
func unqualified(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}
