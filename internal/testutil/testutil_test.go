package testutil

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		root string
		want string
	}{
		{"root", "/fx/basic/src/A.cs:3", "/fx/basic", "<fixture>/src/A.cs:3\n"},
		{"duration", "✓ No naming problems in 4 symbols [0.0123s]\n", "", "✓ No naming problems in 4 symbols [Xs]\n"},
		{"crlf and trailing lines", "a\r\nb\n\n\n", "", "a\nb\n"},
		{"separators", `src\Model.cs`, "", "src/Model.cs\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in, tt.root); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestUnifiedDiff(t *testing.T) {
	diff := unifiedDiff("a\nb\nc\n", "a\nx\nc\n", "g.golden")

	for _, want := range []string{"--- g.golden (expected)", "+++ g.golden (got)", "-b", "+x", " a"} {
		if !strings.Contains(diff, want) {
			t.Errorf("diff missing %q:\n%s", want, diff)
		}
	}
}

func TestLoadFixture(t *testing.T) {
	names := AvailableFixtures(t)
	if len(names) == 0 {
		t.Skip("No fixtures available")
	}

	fixture := LoadFixture(t, names[0])
	if fixture.Name != names[0] || fixture.FactsPath == "" {
		t.Errorf("LoadFixture() = %+v", fixture)
	}
	if !strings.HasSuffix(fixture.ExpectedPath("diagnostics"), "diagnostics.golden") {
		t.Errorf("ExpectedPath() = %q", fixture.ExpectedPath("diagnostics"))
	}
}
