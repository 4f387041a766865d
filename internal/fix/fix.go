// Package fix turns rule proposals into collision-safe rename instructions.
//
// A Replacement names the declaration and the reference sites supplied by the
// fact source. This package never edits source text.
package fix

import (
	"fmt"

	"namecheck/internal/rules"
	"namecheck/internal/symbol"
	"namecheck/internal/words"
)

// Scope says how far a rename reaches.
type Scope string

const (
	// ScopeSymbol renames the declaration and its reference sites only.
	ScopeSymbol Scope = "symbol"
)

// Replacement is a proposed rename of one declared symbol.
type Replacement struct {
	RuleID     string            `json:"ruleId"`
	SymbolID   string            `json:"symbolId,omitempty"`
	Container  string            `json:"container,omitempty"`
	OldName    string            `json:"oldName"`
	NewName    string            `json:"newName"`
	Scope      Scope             `json:"scope"`
	Location   symbol.Location   `json:"location"`
	References []symbol.Location `json:"references,omitempty"`
}

// Reason explains why a proposal was suppressed.
type Reason string

const (
	ReasonNone       Reason = ""
	ReasonNoProposal Reason = "no-proposal"
	ReasonUnchanged  Reason = "unchanged"
	ReasonInvalid    Reason = "invalid-identifier"
	ReasonCollision  Reason = "sibling-collision"
)

// ComputeFix returns the rename for d, or nil when the diagnostic carries no
// usable proposal. A proposal that equals the name of a sibling in the same
// scope is never returned.
func ComputeFix(d rules.Diagnostic, sym *symbol.Symbol) *Replacement {
	r, _ := Explain(d, sym)
	return r
}

// Explain is ComputeFix plus the reason a proposal was dropped.
func Explain(d rules.Diagnostic, sym *symbol.Symbol) (*Replacement, Reason) {
	if sym == nil || !d.HasProposal() {
		return nil, ReasonNoProposal
	}
	if d.ProposedName == sym.Name {
		return nil, ReasonUnchanged
	}
	if !words.IsIdentifier(d.ProposedName) {
		return nil, ReasonInvalid
	}
	if sym.HasSibling(d.ProposedName) {
		return nil, ReasonCollision
	}

	return &Replacement{
		RuleID:     d.RuleID,
		SymbolID:   sym.ID,
		Container:  sym.ContainingType,
		OldName:    sym.Name,
		NewName:    d.ProposedName,
		Scope:      ScopeSymbol,
		Location:   sym.Location,
		References: append([]symbol.Location(nil), sym.References...),
	}, ReasonNone
}

// Resolve computes fixes for all diagnostics of one symbol. Diagnostics whose
// proposal is suppressed have ProposedName cleared in the returned slice; the
// input slice is not modified.
func Resolve(diags []rules.Diagnostic, sym *symbol.Symbol) ([]rules.Diagnostic, []Replacement) {
	out := make([]rules.Diagnostic, len(diags))
	copy(out, diags)

	var fixes []Replacement
	for i := range out {
		r := ComputeFix(out[i], sym)
		if r == nil {
			out[i].ProposedName = ""
			continue
		}
		fixes = append(fixes, *r)
	}
	return out, fixes
}

// Apply returns a renamed copy of sym. The original symbol is left untouched;
// callers apply renames only on explicit request.
func Apply(r Replacement, sym *symbol.Symbol) (*symbol.Symbol, error) {
	if sym == nil {
		return nil, fmt.Errorf("apply %s: nil symbol", r.NewName)
	}
	if sym.Name != r.OldName {
		return nil, fmt.Errorf("apply %s: symbol is named %q, expected %q", r.NewName, sym.Name, r.OldName)
	}
	if !words.IsIdentifier(r.NewName) {
		return nil, fmt.Errorf("apply: %q is not a valid identifier", r.NewName)
	}
	if sym.HasSibling(r.NewName) {
		return nil, fmt.Errorf("apply: %q collides with a sibling of %q", r.NewName, sym.Name)
	}
	return sym.WithName(r.NewName), nil
}
