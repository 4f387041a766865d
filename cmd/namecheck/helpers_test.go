package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"namecheck/internal/config"
	lerrors "namecheck/internal/errors"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"config invalid", lerrors.New(lerrors.ConfigInvalid, "bad", nil), exitConfigError},
		{"unknown rule", lerrors.New(lerrors.UnknownRule, "bad", nil), exitConfigError},
		{"negative limit", lerrors.New(lerrors.NegativeLimit, "bad", nil), exitConfigError},
		{"wrapped unknown kind", fmt.Errorf("load: %w", lerrors.New(lerrors.UnknownKind, "bad", nil)), exitConfigError},
		{"facts missing", lerrors.New(lerrors.FactsMissing, "gone", nil), exitFailure},
		{"baseline", lerrors.New(lerrors.BaselineUnavailable, "locked", nil), exitFailure},
		{"plain", errors.New("boom"), exitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFormatError(t *testing.T) {
	err := lerrors.NewLintError(lerrors.UnknownRule, `Unknown rule "NC9999"`, nil, []lerrors.FixAction{
		{Type: lerrors.RunCommand, Command: "namecheck rules", Description: "List the available rules"},
		{Type: lerrors.EditConfig, Description: "Remove the entry"},
	})

	got := formatError(err)
	want := "Error: [UNKNOWN_RULE] Unknown rule \"NC9999\"\n" +
		"Suggested fixes:\n" +
		"  - List the available rules\n" +
		"    $ namecheck rules\n" +
		"  - Remove the entry\n"
	if got != want {
		t.Errorf("formatError() = %q, want %q", got, want)
	}

	plain := formatError(errors.New("boom"))
	if plain != "Error: boom\n" || strings.Contains(plain, "Suggested") {
		t.Errorf("formatError(plain) = %q", plain)
	}
}

func TestNewLoggerWritesLogFile(t *testing.T) {
	root := t.TempDir()
	oldRepo, oldQuiet := repoFlag, quietFlag
	repoFlag, quietFlag = root, true
	t.Cleanup(func() { repoFlag, quietFlag = oldRepo, oldQuiet })

	cfg := config.DefaultConfig()
	cfg.Logging.File = "namecheck.log"
	logger := newLogger(cfg)
	logger.Debug("Facts cache hit", "symbols", 3)

	data, err := os.ReadFile(filepath.Join(root, "namecheck.log"))
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"Facts cache hit"`) || !strings.Contains(string(data), `"symbols":3`) {
		t.Errorf("log file = %s", data)
	}
}
