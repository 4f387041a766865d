//go:build !cgo

package facts

import (
	"context"
	"log/slog"

	lerrors "namecheck/internal/errors"
	"namecheck/internal/symbol"
)

// CSharpExtractor reads declarations from C# source with tree-sitter.
// This stub is used when CGO is not available.
type CSharpExtractor struct{}

// NewCSharpExtractor creates an extractor.
func NewCSharpExtractor(logger *slog.Logger) *CSharpExtractor {
	return &CSharpExtractor{}
}

// IsCSharpAvailable reports whether C# extraction is compiled in.
func IsCSharpAvailable() bool {
	return false
}

// Extract always fails when CGO is not available.
func (e *CSharpExtractor) Extract(ctx context.Context, path string) ([]*symbol.Symbol, error) {
	return nil, errUnavailable()
}

// ExtractFile always fails when CGO is not available.
func (e *CSharpExtractor) ExtractFile(ctx context.Context, path, display string) ([]*symbol.Symbol, error) {
	return nil, errUnavailable()
}

// ExtractSource always fails when CGO is not available.
func (e *CSharpExtractor) ExtractSource(ctx context.Context, path string, source []byte) ([]*symbol.Symbol, error) {
	return nil, errUnavailable()
}

// ExtractDirectory always fails when CGO is not available.
func (e *CSharpExtractor) ExtractDirectory(ctx context.Context, root string) ([]*symbol.Symbol, error) {
	return nil, errUnavailable()
}

func errUnavailable() error {
	return lerrors.NewLintError(
		lerrors.FactsInvalid,
		"C# source extraction requires a cgo build",
		nil,
		[]lerrors.FixAction{
			{
				Type:        lerrors.RunCommand,
				Command:     "CGO_ENABLED=1 go install ./cmd/namecheck",
				Safe:        true,
				Description: "Rebuild with cgo enabled",
			},
		},
	)
}
