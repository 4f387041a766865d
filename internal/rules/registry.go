package rules

import (
	"fmt"
	"sort"

	lerrors "namecheck/internal/errors"
	"namecheck/internal/symbol"
	"namecheck/internal/words"
)

// DefaultMaxLength returns the built-in per-kind name length ceilings.
func DefaultMaxLength() map[symbol.Kind]int {
	return map[symbol.Kind]int{
		symbol.KindType:          40,
		symbol.KindMethod:        25,
		symbol.KindProperty:      25,
		symbol.KindEvent:         25,
		symbol.KindField:         25,
		symbol.KindParameter:     20,
		symbol.KindLocalVariable: 20,
		symbol.KindLocalFunction: 25,
	}
}

// Options is the startup configuration surface of a Registry.
type Options struct {
	// MaxLength overrides length ceilings by kind name. Zero disables the
	// limit for that kind.
	MaxLength map[string]int

	// Rules switches individual rules on or off by ID. Rules not listed
	// keep their default (enabled).
	Rules map[string]bool

	// Pluralizer used by the pluralization rules; nil means words.Default().
	Pluralizer *words.Pluralizer
}

// Registry is the immutable set of naming rules for one process.
type Registry struct {
	all       []*Rule
	enabled   []*Rule
	byID      map[string]*Rule
	maxLength map[symbol.Kind]int
	plural    *words.Pluralizer
}

// NewRegistry validates opts and builds the rule set. Configuration errors are
// returned as *errors.LintError so they can be reported before any evaluation.
func NewRegistry(opts Options) (*Registry, error) {
	limits, err := resolveLimits(opts.MaxLength)
	if err != nil {
		return nil, err
	}

	plural := opts.Pluralizer
	if plural == nil {
		plural = words.Default()
	}

	all := catalog(plural, limits)
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	byID := make(map[string]*Rule, len(all))
	for _, r := range all {
		byID[r.ID] = r
	}

	ids := make([]string, 0, len(opts.Rules))
	for id := range opts.Rules {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, lerrors.New(lerrors.UnknownRule, fmt.Sprintf("unknown rule %q", id), nil).
				WithDetails(map[string]string{"rule": id})
		}
	}

	enabled := make([]*Rule, 0, len(all))
	for _, r := range all {
		if on, ok := opts.Rules[r.ID]; ok && !on {
			continue
		}
		enabled = append(enabled, r)
	}

	return &Registry{
		all:       all,
		enabled:   enabled,
		byID:      byID,
		maxLength: limits,
		plural:    plural,
	}, nil
}

func resolveLimits(overrides map[string]int) (map[symbol.Kind]int, error) {
	limits := DefaultMaxLength()

	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := overrides[name]
		kind, ok := symbol.ParseKind(name)
		if !ok {
			return nil, lerrors.New(lerrors.UnknownKind, fmt.Sprintf("unknown symbol kind %q in maxLength", name), nil).
				WithDetails(map[string]string{"kind": name})
		}
		if _, limited := limits[kind]; !limited {
			return nil, lerrors.New(lerrors.UnknownKind, fmt.Sprintf("symbol kind %q has no length limit", name), nil).
				WithDetails(map[string]string{"kind": name})
		}
		if value < 0 {
			return nil, lerrors.New(lerrors.NegativeLimit, fmt.Sprintf("maxLength.%s is %d", name, value), nil).
				WithDetails(map[string]interface{}{"kind": name, "value": value})
		}
		limits[kind] = value
	}
	return limits, nil
}

// All returns every known rule, enabled or not, ordered by ID.
func (r *Registry) All() []*Rule {
	return append([]*Rule(nil), r.all...)
}

// Rules returns the enabled rules ordered by ID.
func (r *Registry) Rules() []*Rule {
	return append([]*Rule(nil), r.enabled...)
}

// Rule looks a rule up by ID.
func (r *Registry) Rule(id string) (*Rule, bool) {
	rule, ok := r.byID[id]
	return rule, ok
}

// IsEnabled reports whether the rule with the given ID is evaluated.
func (r *Registry) IsEnabled(id string) bool {
	for _, rule := range r.enabled {
		if rule.ID == id {
			return true
		}
	}
	return false
}

// MaxLength returns the configured ceiling for k; zero means unlimited.
func (r *Registry) MaxLength(k symbol.Kind) int {
	return r.maxLength[k]
}

// Pluralizer returns the pluralizer the rules were built with.
func (r *Registry) Pluralizer() *words.Pluralizer {
	return r.plural
}

// Evaluate runs every enabled rule against one classified symbol. The result
// is ordered by rule ID and does not depend on evaluation order. tokens may be
// nil, in which case the name is tokenized here.
func (r *Registry) Evaluate(sym *symbol.Symbol, tags symbol.Tags, tokens []words.Token) []Diagnostic {
	if sym == nil || tags.Has(symbol.TagUnclassifiable) || tags.Has(symbol.TagGenerated) {
		return nil
	}
	if tokens == nil {
		tokens = words.Tokenize(sym.Name)
	}
	in := Input{Symbol: sym, Tags: tags, Tokens: tokens}

	var diags []Diagnostic
	for _, rule := range r.enabled {
		if !rule.appliesToKind(sym.Kind) {
			continue
		}
		// Exemptions win over everything else.
		if tags.Any(rule.Exempt) {
			continue
		}
		if rule.AppliesTo != nil && !rule.AppliesTo(in) {
			continue
		}
		if !rule.IsViolation(in) {
			continue
		}

		d := Diagnostic{
			RuleID:     rule.ID,
			RuleName:   rule.Name,
			SymbolID:   sym.ID,
			SymbolName: sym.Name,
			Kind:       sym.Kind,
			Container:  sym.ContainingType,
			Message:    rule.Description,
			Location:   sym.Location,
		}
		if rule.Message != nil {
			d.Message = rule.Message(in)
		}
		if rule.Rewrite != nil {
			d.ProposedName = validProposal(sym.Name, rule.Rewrite(in))
		}
		diags = append(diags, d)
	}
	return diags
}

// Check classifies and tokenizes sym before evaluating it.
func (r *Registry) Check(sym *symbol.Symbol) []Diagnostic {
	if sym == nil {
		return nil
	}
	return r.Evaluate(sym, symbol.Classify(sym), words.Tokenize(sym.Name))
}

// validProposal drops rewrites that are empty, unchanged or not identifiers.
func validProposal(current, proposed string) string {
	if proposed == "" || proposed == current || !words.IsIdentifier(proposed) {
		return ""
	}
	return proposed
}

// catalog builds every rule. Family files contribute their constructors here.
func catalog(plural *words.Pluralizer, limits map[symbol.Kind]int) []*Rule {
	var all []*Rule
	all = append(all, suffixRules()...)
	all = append(all, affixRules()...)
	all = append(all, prefixRules()...)
	all = append(all, lengthRules(limits)...)
	all = append(all, pluralRules(plural)...)
	all = append(all, digitRules()...)
	all = append(all, fieldRules()...)
	all = append(all, asyncRules()...)
	return all
}
