// Command merge-annotator reconciles branch/trunk/merge copies of a source
// tree and labels every merged line's origin.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Nita121388/Merge-Annotator/cmd/merge-annotator/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "merge-annotator",
		Short:         "Merge provenance annotation for svn working copies",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(commands.NewAnalyzeCommand())
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewCandidatesCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
