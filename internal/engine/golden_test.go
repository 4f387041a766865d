package engine

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"namecheck/internal/facts"
	"namecheck/internal/testutil"
)

func TestGoldenDiagnostics(t *testing.T) {
	testutil.ForEachFixture(t, func(t *testing.T, fixture *testutil.FixtureContext) {
		ctx := context.Background()

		symbols, err := facts.Load(ctx, fixture.FactsPath, facts.FormatAuto, nil)
		if err != nil {
			t.Fatalf("facts.Load() error = %v", err)
		}

		e := newTestEngine(t, Options{Exclude: []string{"obj/**"}})
		res, err := e.Analyze(ctx, symbols)
		if err != nil {
			t.Fatalf("Analyze() error = %v", err)
		}

		var b strings.Builder
		for _, d := range res.Diagnostics {
			fmt.Fprintf(&b, "%s:%d %s %s", d.Location.Path, d.Location.Line, d.RuleID, d.SymbolName)
			if d.HasProposal() {
				fmt.Fprintf(&b, " -> %s", d.ProposedName)
			}
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "symbols=%d excluded=%d fixes=%d\n", res.Symbols, res.Excluded, len(res.Fixes))

		testutil.CompareGolden(t, fixture, "diagnostics", b.String())
	})
}
