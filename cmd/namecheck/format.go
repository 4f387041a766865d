package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"namecheck/internal/fix"
	"namecheck/internal/output"
	"namecheck/internal/rules"
	"namecheck/internal/symbol"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
	FormatSARIF OutputFormat = "sarif"
)

// FormatResponse formats a response according to the specified format. SARIF
// is only produced by the check command.
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func formatJSON(resp interface{}) (string, error) {
	data, err := output.MarshalReport(resp, "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// formatHuman formats the response in human-readable format
func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *CheckResponseCLI:
		return formatCheckHuman(v)
	case *RulesResponseCLI:
		return formatRulesHuman(v)
	case *TokenizeResponseCLI:
		return formatTokenizeHuman(v)
	case *PluralizeResponseCLI:
		return formatPluralizeHuman(v)
	case *FixResponseCLI:
		return formatFixHuman(v)
	case *BaselineStatsCLI:
		return formatBaselineStatsHuman(v)
	case *CacheResponseCLI:
		return formatCacheHuman(v)
	default:
		// For unknown types, fall back to JSON
		return formatJSON(resp)
	}
}

// CheckResponseCLI is the report of one check pass.
type CheckResponseCLI struct {
	Tool        string             `json:"tool"`
	Version     string             `json:"version"`
	Diagnostics []rules.Diagnostic `json:"diagnostics"`
	Fixes       []fix.Replacement  `json:"fixes"`
	Summary     CheckSummaryCLI    `json:"summary"`
}

// CheckSummaryCLI holds the counters of a check pass.
type CheckSummaryCLI struct {
	Symbols         int            `json:"symbols"`
	Diagnostics     int            `json:"diagnostics"`
	Fixable         int            `json:"fixable"`
	Excluded        int            `json:"excluded"`
	Unclassifiable  int            `json:"unclassifiable"`
	SuppressedFixes int            `json:"suppressedFixes"`
	Baselined       int            `json:"baselined"`
	ByRule          map[string]int `json:"byRule"`

	Duration time.Duration `json:"-"`
}

// formatCheckHuman lists diagnostics grouped by file, then a summary line.
func formatCheckHuman(resp *CheckResponseCLI) (string, error) {
	var b strings.Builder

	current := ""
	for i, d := range resp.Diagnostics {
		path := d.Location.Path
		if path == "" {
			path = "(no location)"
		}
		if i == 0 || path != current {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(path + "\n")
			current = path
		}

		b.WriteString(fmt.Sprintf("  %-7s %s  %s %s: %s",
			position(d.Location), d.RuleID, d.Kind, qualifiedName(d), d.Message))
		if d.ProposedName != "" {
			b.WriteString(fmt.Sprintf(" (rename to %s)", d.ProposedName))
		}
		b.WriteString("\n")
	}
	if len(resp.Diagnostics) > 0 {
		b.WriteString("\n")
	}

	s := resp.Summary
	if s.Diagnostics == 0 {
		b.WriteString(fmt.Sprintf("✓ No naming problems in %d symbols", s.Symbols))
	} else {
		b.WriteString(fmt.Sprintf("✗ %d %s (%d fixable) in %d symbols",
			s.Diagnostics, plural(s.Diagnostics, "problem", "problems"), s.Fixable, s.Symbols))
	}
	if s.Baselined > 0 {
		b.WriteString(fmt.Sprintf(", %d baselined", s.Baselined))
	}
	if s.Excluded > 0 {
		b.WriteString(fmt.Sprintf(", %d excluded", s.Excluded))
	}
	if s.Duration > 0 {
		b.WriteString(fmt.Sprintf(" [%ss]", output.Seconds(s.Duration)))
	}
	b.WriteString("\n")

	return b.String(), nil
}

func position(loc symbol.Location) string {
	switch {
	case loc.Line > 0 && loc.Column > 0:
		return fmt.Sprintf("%d:%d", loc.Line, loc.Column)
	case loc.Line > 0:
		return fmt.Sprintf("%d", loc.Line)
	default:
		return "-"
	}
}

func qualifiedName(d rules.Diagnostic) string {
	if d.Container != "" {
		return d.Container + "." + d.SymbolName
	}
	return d.SymbolName
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// RulesResponseCLI lists the rule catalog.
type RulesResponseCLI struct {
	Rules []RuleCLI `json:"rules"`
}

// RuleCLI describes one rule.
type RuleCLI struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Family         string   `json:"family"`
	Description    string   `json:"description"`
	Kinds          []string `json:"kinds,omitempty"`
	Enabled        bool     `json:"enabled"`
	Fixable        bool     `json:"fixable"`
	ContractExempt bool     `json:"contractExempt,omitempty"`
}

func formatRulesHuman(resp *RulesResponseCLI) (string, error) {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%-7s %-3s %-3s %-32s %s\n", "ID", "ON", "FIX", "NAME", "KINDS"))
	b.WriteString(strings.Repeat("-", 72) + "\n")
	for _, r := range resp.Rules {
		kinds := "all"
		if len(r.Kinds) > 0 {
			kinds = strings.Join(r.Kinds, ",")
		}
		b.WriteString(fmt.Sprintf("%-7s %-3s %-3s %-32s %s\n",
			r.ID, yesNo(r.Enabled), yesNo(r.Fixable), r.Name, kinds))
	}
	return b.String(), nil
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// TokenizeResponseCLI shows how names split into tokens.
type TokenizeResponseCLI struct {
	Names []TokenizedNameCLI `json:"names"`
}

// TokenizedNameCLI is one tokenized name.
type TokenizedNameCLI struct {
	Name   string     `json:"name"`
	Tokens []TokenCLI `json:"tokens"`
}

// TokenCLI is one token with its kind spelled out.
type TokenCLI struct {
	Text string `json:"text"`
	Kind string `json:"kind"`
}

func formatTokenizeHuman(resp *TokenizeResponseCLI) (string, error) {
	var b strings.Builder
	for _, n := range resp.Names {
		parts := make([]string, 0, len(n.Tokens))
		for _, t := range n.Tokens {
			if t.Kind == "word" {
				parts = append(parts, t.Text)
			} else {
				parts = append(parts, fmt.Sprintf("%s(%s)", t.Text, t.Kind))
			}
		}
		b.WriteString(fmt.Sprintf("%s: %s\n", n.Name, strings.Join(parts, " | ")))
	}
	return b.String(), nil
}

// PluralizeResponseCLI shows inflected words.
type PluralizeResponseCLI struct {
	Mode  string             `json:"mode"`
	Words []InflectedWordCLI `json:"words"`
}

// InflectedWordCLI is one inflected word.
type InflectedWordCLI struct {
	Word   string `json:"word"`
	Result string `json:"result"`
}

func formatPluralizeHuman(resp *PluralizeResponseCLI) (string, error) {
	var b strings.Builder
	for _, w := range resp.Words {
		b.WriteString(fmt.Sprintf("%s -> %s\n", w.Word, w.Result))
	}
	return b.String(), nil
}

// FixResponseCLI lists proposed renames.
type FixResponseCLI struct {
	Fixes   []fix.Replacement `json:"fixes"`
	Written string            `json:"written,omitempty"`
	Applied int               `json:"applied,omitempty"`
}

func formatFixHuman(resp *FixResponseCLI) (string, error) {
	var b strings.Builder

	if len(resp.Fixes) == 0 {
		b.WriteString("No renames proposed\n")
	}
	for _, f := range resp.Fixes {
		b.WriteString(fmt.Sprintf("%s:%s  %s  %s -> %s",
			f.Location.Path, position(f.Location), f.RuleID, f.OldName, f.NewName))
		if n := len(f.References); n > 0 {
			b.WriteString(fmt.Sprintf(" (%d %s)", n, plural(n, "reference", "references")))
		}
		b.WriteString("\n")
	}
	if resp.Written != "" {
		b.WriteString(fmt.Sprintf("\nWrote %d renamed symbols to %s\n", resp.Applied, resp.Written))
	}
	return b.String(), nil
}

// BaselineStatsCLI summarises the stored baseline.
type BaselineStatsCLI struct {
	Database    string         `json:"database"`
	Runs        int            `json:"runs"`
	Entries     int            `json:"entries"`
	ByRule      map[string]int `json:"byRule,omitempty"`
	LastRunID   string         `json:"lastRunId,omitempty"`
	LastRunAt   string         `json:"lastRunAt,omitempty"`
	ToolVersion string         `json:"toolVersion,omitempty"`
}

func formatBaselineStatsHuman(resp *BaselineStatsCLI) (string, error) {
	var b strings.Builder

	b.WriteString("Baseline\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	b.WriteString(fmt.Sprintf("Database: %s\n", resp.Database))
	b.WriteString(fmt.Sprintf("Runs: %d\n", resp.Runs))
	b.WriteString(fmt.Sprintf("Entries: %d\n", resp.Entries))
	if resp.LastRunID != "" {
		b.WriteString(fmt.Sprintf("Last run: %s at %s (namecheck %s)\n", resp.LastRunID, resp.LastRunAt, resp.ToolVersion))
	}

	if len(resp.ByRule) > 0 {
		ids := make([]string, 0, len(resp.ByRule))
		for id := range resp.ByRule {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		b.WriteString("\nBy rule:\n")
		for _, id := range ids {
			b.WriteString(fmt.Sprintf("  %s: %d\n", id, resp.ByRule[id]))
		}
	}
	return b.String(), nil
}

// CacheResponseCLI lists cached fact sources.
type CacheResponseCLI struct {
	Entries []CacheEntryCLI `json:"entries"`
}

// CacheEntryCLI is one cached fact source.
type CacheEntryCLI struct {
	Source    string `json:"source"`
	Format    string `json:"format"`
	Symbols   int    `json:"symbols"`
	Bytes     int    `json:"bytes"`
	CreatedAt string `json:"createdAt"`
}

func formatCacheHuman(resp *CacheResponseCLI) (string, error) {
	if len(resp.Entries) == 0 {
		return "Facts cache is empty\n", nil
	}

	var b strings.Builder
	for _, e := range resp.Entries {
		b.WriteString(fmt.Sprintf("%s (%s): %d symbols, %d bytes, cached %s\n",
			e.Source, e.Format, e.Symbols, e.Bytes, e.CreatedAt))
	}
	return b.String(), nil
}
