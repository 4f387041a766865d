// Package engine drives one analysis pass: classify, tokenize, evaluate and
// fix every symbol, in parallel, and return a deterministic result.
package engine

import (
	"context"
	"log/slog"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"

	lerrors "namecheck/internal/errors"
	"namecheck/internal/fix"
	"namecheck/internal/rules"
	"namecheck/internal/slogutil"
	"namecheck/internal/symbol"
	"namecheck/internal/words"
)

// Options configures an Engine.
type Options struct {
	// Exclude holds doublestar patterns matched against symbol file paths.
	Exclude []string

	// Concurrency bounds parallel evaluation; zero means GOMAXPROCS.
	Concurrency int

	Logger *slog.Logger
}

// Engine evaluates symbols against a rule registry. It holds no per-pass
// state and may run several passes concurrently.
type Engine struct {
	registry *rules.Registry
	exclude  []string
	workers  int
	logger   *slog.Logger
}

// Result is the outcome of one analysis pass.
type Result struct {
	Diagnostics []rules.Diagnostic `json:"diagnostics"`
	Fixes       []fix.Replacement  `json:"fixes"`

	Symbols        int `json:"symbols"`
	Excluded       int `json:"excluded"`
	Unclassifiable int `json:"unclassifiable"`
	Suppressed     int `json:"suppressedFixes"`
	Baselined      int `json:"baselined,omitempty"`
}

// New creates an engine. Invalid exclude patterns are configuration errors.
func New(registry *rules.Registry, opts Options) (*Engine, error) {
	for _, p := range opts.Exclude {
		if !doublestar.ValidatePattern(p) {
			return nil, lerrors.New(lerrors.ConfigInvalid, "invalid exclude pattern "+p, nil).
				WithDetails(map[string]string{"pattern": p})
		}
	}

	workers := opts.Concurrency
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	return &Engine{
		registry: registry,
		exclude:  append([]string(nil), opts.Exclude...),
		workers:  workers,
		logger:   slogutil.OrDiscard(opts.Logger),
	}, nil
}

// Registry returns the rule registry the engine evaluates.
func (e *Engine) Registry() *rules.Registry {
	return e.registry
}

type symbolResult struct {
	diags      []rules.Diagnostic
	fixes      []fix.Replacement
	excluded   bool
	skipped    bool
	suppressed int
}

// Analyze evaluates symbols. Cancelling ctx stops the pass between symbols and
// returns ctx's error; no partial result is returned.
func (e *Engine) Analyze(ctx context.Context, symbols []*symbol.Symbol) (*Result, error) {
	start := time.Now()
	results := make([]symbolResult, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, sym := range symbols {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.analyzeOne(sym)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{}
	for _, r := range results {
		switch {
		case r.excluded:
			res.Excluded++
			continue
		case r.skipped:
			res.Unclassifiable++
		}
		res.Symbols++
		res.Diagnostics = append(res.Diagnostics, r.diags...)
		res.Fixes = append(res.Fixes, r.fixes...)
		res.Suppressed += r.suppressed
	}
	SortDiagnostics(res.Diagnostics)
	SortFixes(res.Fixes)

	e.logger.Info("Analysis complete",
		"symbols", res.Symbols,
		"excluded", res.Excluded,
		"diagnostics", len(res.Diagnostics),
		"fixes", len(res.Fixes),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return res, nil
}

func (e *Engine) analyzeOne(sym *symbol.Symbol) symbolResult {
	if sym == nil {
		return symbolResult{skipped: true}
	}
	if e.IsExcluded(sym.Location.Path) {
		return symbolResult{excluded: true}
	}

	tags := symbol.Classify(sym)
	if tags.Has(symbol.TagUnclassifiable) {
		e.logger.Debug("Skipping unclassifiable symbol", "id", sym.ID, "kind", string(sym.Kind))
		return symbolResult{skipped: true}
	}

	diags := e.registry.Evaluate(sym, tags, words.Tokenize(sym.Name))
	if len(diags) == 0 {
		return symbolResult{}
	}

	resolved, fixes := fix.Resolve(diags, sym)
	suppressed := 0
	for i := range diags {
		if diags[i].HasProposal() && !resolved[i].HasProposal() {
			suppressed++
			e.logger.Debug("Suppressed rename",
				"symbol", sym.Name,
				"rule", diags[i].RuleID,
				"proposal", diags[i].ProposedName,
			)
		}
	}
	return symbolResult{diags: resolved, fixes: fixes, suppressed: suppressed}
}

// IsExcluded reports whether path matches an exclude pattern.
func (e *Engine) IsExcluded(path string) bool {
	if path == "" || len(e.exclude) == 0 {
		return false
	}
	slashed := filepath.ToSlash(path)
	for _, p := range e.exclude {
		if ok, _ := doublestar.Match(p, slashed); ok {
			return true
		}
	}
	return false
}

// SortDiagnostics orders diagnostics by file, line, column, symbol and rule.
func SortDiagnostics(diags []rules.Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.Location.Path != b.Location.Path {
			return a.Location.Path < b.Location.Path
		}
		if a.Location.Line != b.Location.Line {
			return a.Location.Line < b.Location.Line
		}
		if a.Location.Column != b.Location.Column {
			return a.Location.Column < b.Location.Column
		}
		if a.SymbolName != b.SymbolName {
			return a.SymbolName < b.SymbolName
		}
		if a.SymbolID != b.SymbolID {
			return a.SymbolID < b.SymbolID
		}
		return a.RuleID < b.RuleID
	})
}

// SortFixes orders fixes by file, line, old name and rule.
func SortFixes(fixes []fix.Replacement) {
	sort.SliceStable(fixes, func(i, j int) bool {
		a, b := fixes[i], fixes[j]
		if a.Location.Path != b.Location.Path {
			return a.Location.Path < b.Location.Path
		}
		if a.Location.Line != b.Location.Line {
			return a.Location.Line < b.Location.Line
		}
		if a.OldName != b.OldName {
			return a.OldName < b.OldName
		}
		return a.RuleID < b.RuleID
	})
}

// CountByRule tallies diagnostics per rule ID.
func (r *Result) CountByRule() map[string]int {
	counts := make(map[string]int)
	for _, d := range r.Diagnostics {
		counts[d.RuleID]++
	}
	return counts
}

// HasDiagnostics reports whether the pass found any violation.
func (r *Result) HasDiagnostics() bool {
	return len(r.Diagnostics) > 0
}

// Hide removes the diagnostics for which hidden returns true, together with
// the fixes they produced, and counts them as baselined. Order is preserved.
// Fixes are matched on container and location as well as name: symbols from
// facts without IDs share an empty SymbolID.
func (r *Result) Hide(hidden func(rules.Diagnostic) bool) int {
	type fixKey struct {
		rule, id, container, name string
		loc                       symbol.Location
	}
	dropped := make(map[fixKey]bool)

	kept := r.Diagnostics[:0]
	for _, d := range r.Diagnostics {
		if hidden(d) {
			dropped[fixKey{d.RuleID, d.SymbolID, d.Container, d.SymbolName, d.Location}] = true
			continue
		}
		kept = append(kept, d)
	}
	n := len(r.Diagnostics) - len(kept)
	r.Diagnostics = kept
	if n == 0 {
		return 0
	}

	fixes := r.Fixes[:0]
	for _, f := range r.Fixes {
		if dropped[fixKey{f.RuleID, f.SymbolID, f.Container, f.OldName, f.Location}] {
			continue
		}
		fixes = append(fixes, f)
	}
	r.Fixes = fixes
	r.Baselined += n
	return n
}
