package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"namecheck/internal/version"
)

var versionFormat string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		if OutputFormat(versionFormat) == FormatJSON {
			out, err := formatJSON(&VersionResponseCLI{
				Version:   version.Version,
				Commit:    version.Commit,
				BuildDate: version.BuildDate,
			})
			if err != nil {
				exitWithError(err)
			}
			fmt.Println(out)
			return
		}
		fmt.Println(version.Full())
	},
}

// VersionResponseCLI is the JSON form of the version command.
type VersionResponseCLI struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"buildDate"`
}

func init() {
	versionCmd.Flags().StringVar(&versionFormat, "format", "human", "Output format (human, json)")
	rootCmd.AddCommand(versionCmd)
}
