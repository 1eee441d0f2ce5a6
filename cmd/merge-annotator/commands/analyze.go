package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Nita121388/Merge-Annotator/internal/analysis"
	"github.com/Nita121388/Merge-Annotator/internal/history"
	"github.com/Nita121388/Merge-Annotator/internal/store"
)

// NewAnalyzeCommand builds the one-shot analysis command: run the full
// provenance pipeline and persist the result.
func NewAnalyzeCommand() *cobra.Command {
	var (
		flags     analysisFlags
		branchDir string
		trunkDir  string
		mergeDir  string
		baseDir   string
		outDir    string
		historyDB string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run a provenance analysis over branch/trunk/merge roots",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := bindEnv(cmd); err != nil {
				return err
			}
			log := newLogger(flags.logLevel)
			cfg := flags.config()
			roots := analysis.Roots{Branch: branchDir, Trunk: trunkDir, Merge: mergeDir, Base: baseDir}
			tools := analysis.NewTools(cfg)
			id := uuid.NewString()

			var ledger *history.Ledger
			if historyDB != "" {
				var err error
				if ledger, err = history.Open(historyDB); err != nil {
					log.Warn("history_unavailable", "error", err)
					ledger = nil
				} else {
					defer ledger.Close()
					if err := ledger.Start(cmd.Context(), id, roots); err != nil {
						log.Warn("history_start_failed", "error", err)
					}
				}
			}

			result, err := analysis.AnalyzeProject(cmd.Context(), cfg, tools, roots, nil, log)
			if err != nil {
				if ledger != nil {
					_ = ledger.Fail(context.Background(), id, err.Error())
				}
				return err
			}

			st := store.New(outDir)
			rec := &store.Record{
				ID:        id,
				CreatedAt: time.Now().UTC().Format(time.RFC3339),
				Status:    "completed",
				Roots:     roots,
				Result:    result,
			}
			if err := st.Save(rec); err != nil {
				return fmt.Errorf("persist result: %w", err)
			}
			if ledger != nil {
				if err := ledger.Finish(context.Background(), id, len(result.Files)); err != nil {
					log.Warn("history_finish_failed", "error", err)
				}
			}

			printRunSummary(cmd, id, result)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&branchDir, "branch", "", "branch working copy root (required)")
	cmd.Flags().StringVar(&trunkDir, "trunk", "", "trunk working copy root (required)")
	cmd.Flags().StringVar(&mergeDir, "merge", "", "merged working copy root (required)")
	cmd.Flags().StringVar(&baseDir, "base", "", "common ancestor root (optional)")
	cmd.Flags().StringVar(&outDir, "out", "", "result store directory (default data/analyses)")
	cmd.Flags().StringVar(&historyDB, "history-db", "", "sqlite run ledger path (optional)")
	_ = cmd.MarkFlagRequired("branch")
	_ = cmd.MarkFlagRequired("trunk")
	_ = cmd.MarkFlagRequired("merge")
	return cmd
}

func printRunSummary(cmd *cobra.Command, id string, result *analysis.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "analysis id: %s\n", id)
	fmt.Fprintf(out, "files analyzed: %d\n", len(result.Files))
	var branch, trunk, common, manual, conflicted, skipped int
	for _, s := range result.Files {
		branch += s.BranchLines
		trunk += s.TrunkLines
		common += s.CommonLines
		manual += s.ManualLines
		conflicted += s.ConflictLines
		if s.Skipped {
			skipped++
		}
	}
	fmt.Fprintf(out, "lines: branch=%d trunk=%d common=%d manual=%d conflict=%d\n",
		branch, trunk, common, manual, conflicted)
	if skipped > 0 {
		fmt.Fprintf(out, "skipped files: %d\n", skipped)
	}
}
