package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Nita121388/Merge-Annotator/internal/candidates"
	"github.com/Nita121388/Merge-Annotator/internal/svn"
)

// NewCandidatesCommand builds the feature-candidate inspector: read the
// branch commit log and print ordered candidate groupings.
func NewCandidatesCommand() *cobra.Command {
	var (
		target     string
		startRev   int
		limit      int
		depth      int
		showRevs   bool
		timeoutSec int
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "candidates",
		Short: "Derive feature candidates from a branch's svn log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := bindEnv(cmd); err != nil {
				return err
			}
			log := newLogger(logLevel)
			runner := &svn.Runner{Timeout: time.Duration(timeoutSec) * time.Second}

			entries, ok := runner.Log(cmd.Context(), target, startRev, limit)
			if !ok {
				return fmt.Errorf("svn log failed for %s", target)
			}
			log.Info("log_fetched", "target", target, "entries", len(entries))

			cands := candidates.Build(entries, depth)
			fmt.Fprint(cmd.OutOrStdout(), candidates.Render(cands, showRevs))
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "branch URL or working copy path (required)")
	cmd.Flags().IntVar(&startRev, "start-rev", 0, "start revision (0 = full history)")
	cmd.Flags().IntVar(&limit, "limit", 0, "max log entries (0 = unlimited)")
	cmd.Flags().IntVar(&depth, "depth", 2, "directory depth for path grouping")
	cmd.Flags().BoolVar(&showRevs, "show-revs", false, "print revision ranges per candidate")
	cmd.Flags().IntVar(&timeoutSec, "tool-timeout", 60, "svn invocation timeout in seconds")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}
