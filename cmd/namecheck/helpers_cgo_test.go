//go:build cgo

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"namecheck/internal/config"
	"namecheck/internal/facts"
	"namecheck/internal/slogutil"
	"namecheck/internal/storage"
)

func TestLoadSymbolsCachesCSharpTree(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}
	writeSource := func(body string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(src, "Worker.cs"), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	writeSource("class Worker { void DoWork() {} }")

	cfg := config.DefaultConfig()
	cfg.Facts.Path = "src"
	cfg.Facts.Format = string(facts.FormatCSharp)
	logger := slogutil.NewDiscardLogger()
	ctx := context.Background()

	first, err := loadSymbols(ctx, root, cfg, logger)
	if err != nil {
		t.Fatalf("loadSymbols() error = %v", err)
	}
	second, err := loadSymbols(ctx, root, cfg, logger)
	if err != nil {
		t.Fatalf("cached loadSymbols() error = %v", err)
	}
	if len(first) != 2 || len(second) != len(first) {
		t.Fatalf("symbols = %d then %d, want 2 both times", len(first), len(second))
	}
	for i := range first {
		if first[i].Name != second[i].Name || first[i].Kind != second[i].Kind {
			t.Errorf("cached symbol %d = %s %s, want %s %s", i, second[i].Kind, second[i].Name, first[i].Kind, first[i].Name)
		}
	}

	db, err := storage.Open(stateDir(root), logger)
	if err != nil {
		t.Fatal(err)
	}
	entries, err := storage.NewFactsCache(db).Entries(ctx)
	db.Close()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Source != src || entries[0].Symbols != 2 {
		t.Fatalf("cache entries = %+v, want one entry for %s", entries, src)
	}

	// A new file changes the tree digest.
	if err := os.WriteFile(filepath.Join(src, "Extra.cs"), []byte("class Extra { }"), 0o644); err != nil {
		t.Fatal(err)
	}
	third, err := loadSymbols(ctx, root, cfg, logger)
	if err != nil {
		t.Fatalf("loadSymbols() after change error = %v", err)
	}
	if len(third) != 3 {
		t.Errorf("symbols after change = %d, want 3", len(third))
	}
}

func TestLoadSymbolsWithoutCache(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "A.cs"), []byte("class A { }"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := config.DefaultConfig()
	cfg.Facts.Path = "A.cs"
	cfg.Facts.Format = string(facts.FormatCSharp)
	cfg.Facts.Cache = false

	symbols, err := loadSymbols(context.Background(), root, cfg, slogutil.NewDiscardLogger())
	if err != nil {
		t.Fatalf("loadSymbols() error = %v", err)
	}
	if len(symbols) != 1 {
		t.Errorf("symbols = %d, want 1", len(symbols))
	}
	if _, err := os.Stat(filepath.Join(stateDir(root), storage.DBName)); !os.IsNotExist(err) {
		t.Errorf("state database created with the cache off: %v", err)
	}
}
