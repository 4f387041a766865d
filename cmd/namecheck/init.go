package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"namecheck/internal/config"
	lerrors "namecheck/internal/errors"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create .namecheck/config.toml and a word dictionary",
	Long: `Create .namecheck/config.toml with the default settings and an empty
.namecheck/WORDS.toml for project plurals. An existing dictionary is never
overwritten.`,
	Run: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing configuration")
	rootCmd.AddCommand(initCmd)
}

const wordsTemplate = `# Project vocabulary for the pluralization rules.
#
# invariant = ["Firmware", "Telemetry"]
#
# [plurals]
# Criterion = "Criteria"

invariant = []

[plurals]
`

func runInit(cmd *cobra.Command, args []string) {
	repoRoot := mustGetRepoRoot()

	if existing := existingConfig(repoRoot); existing != "" && !initForce {
		exitWithError(lerrors.NewLintError(lerrors.ConfigInvalid,
			fmt.Sprintf("Configuration already exists at %s", existing), nil,
			[]lerrors.FixAction{{
				Type:        lerrors.RunCommand,
				Command:     "namecheck init --force",
				Description: "Overwrite it with the defaults",
			}}))
	}

	cfg := config.DefaultConfig()
	path, err := cfg.WriteTOML(repoRoot)
	if err != nil {
		exitWithError(lerrors.New(lerrors.InternalError, "Failed to write configuration", err))
	}
	fmt.Printf("Created %s\n", relPath(repoRoot, path))

	dict := config.Resolve(repoRoot, cfg.Dictionary)
	if _, err := os.Stat(dict); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(dict, []byte(wordsTemplate), 0644); err != nil {
			exitWithError(lerrors.New(lerrors.InternalError, "Failed to write word dictionary", err))
		}
		fmt.Printf("Created %s\n", relPath(repoRoot, dict))
	}
}

// existingConfig returns the first config file found in the state directory.
func existingConfig(repoRoot string) string {
	for _, name := range []string{"config.toml", "config.yaml", "config.yml", "config.json"} {
		path := config.Path(repoRoot, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// relPath shortens path for display when it lies under repoRoot.
func relPath(repoRoot, path string) string {
	if rel, err := filepath.Rel(repoRoot, path); err == nil && !strings.HasPrefix(rel, "..") {
		return rel
	}
	return path
}
