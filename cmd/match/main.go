// Command match runs a single MatchSpec (from file or stdin) and prints its
// MatchResult as JSON, the thin CLI mapper onto the match runner named in
// the external interface contract.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/clawforge/skirmish/internal/match"
)

func main() {
	var specPath, outPath string

	root := &cobra.Command{
		Use:   "match",
		Short: "Run a single MatchSpec and print its MatchResult",
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if specPath == "" || specPath == "-" {
				data, err = io.ReadAll(os.Stdin)
			} else {
				data, err = os.ReadFile(specPath)
			}
			if err != nil {
				return fmt.Errorf("match: reading spec: %w", err)
			}

			var spec match.Spec
			if err := json.Unmarshal(data, &spec); err != nil {
				return fmt.Errorf("match: malformed MatchSpec: %w", err)
			}

			result, err := match.Run(spec)
			if err != nil {
				return fmt.Errorf("match: %w", err)
			}

			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			if outPath == "" {
				fmt.Println(string(out))
				return nil
			}
			return os.WriteFile(outPath, out, 0o644)
		},
	}
	root.Flags().StringVar(&specPath, "spec", "", "MatchSpec JSON file (default: stdin)")
	root.Flags().StringVar(&outPath, "out", "", "write the MatchResult JSON here instead of stdout")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
