package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"namecheck/internal/words"
)

var tokenizeFormat string

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize NAME...",
	Short: "Show how identifiers split into words",
	Long: `Split identifiers into the word, number, prefix and separator tokens the
rules see.

Examples:
  namecheck tokenize XMLHttpRequest m_userID2
  namecheck tokenize --format json ParseHTML5Document`,
	Args: cobra.MinimumNArgs(1),
	Run:  runTokenize,
}

func init() {
	tokenizeCmd.Flags().StringVar(&tokenizeFormat, "format", "human", "Output format (human, json)")
	rootCmd.AddCommand(tokenizeCmd)
}

func runTokenize(cmd *cobra.Command, args []string) {
	out, err := FormatResponse(buildTokenizeResponse(args), OutputFormat(tokenizeFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(exitFailure)
	}
	fmt.Print(out)
	if OutputFormat(tokenizeFormat) == FormatJSON {
		fmt.Println()
	}
}

func buildTokenizeResponse(names []string) *TokenizeResponseCLI {
	resp := &TokenizeResponseCLI{Names: make([]TokenizedNameCLI, 0, len(names))}
	for _, name := range names {
		tokens := words.Tokenize(name)
		entry := TokenizedNameCLI{Name: name, Tokens: make([]TokenCLI, 0, len(tokens))}
		for _, t := range tokens {
			entry.Tokens = append(entry.Tokens, TokenCLI{Text: t.Text, Kind: t.Kind.String()})
		}
		resp.Names = append(resp.Names, entry)
	}
	return resp
}
