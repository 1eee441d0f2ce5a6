package commands

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/Nita121388/Merge-Annotator/internal/analysis"
	"github.com/Nita121388/Merge-Annotator/internal/history"
	"github.com/Nita121388/Merge-Annotator/internal/server"
	"github.com/Nita121388/Merge-Annotator/internal/store"
)

// NewServeCommand builds the HTTP service command.
func NewServeCommand() *cobra.Command {
	var (
		flags     analysisFlags
		addr      string
		outDir    string
		historyDB string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the merge annotation HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := bindEnv(cmd); err != nil {
				return err
			}
			log := newLogger(flags.logLevel)
			cfg := flags.config()

			var ledger *history.Ledger
			if historyDB != "" {
				var err error
				if ledger, err = history.Open(historyDB); err != nil {
					log.Warn("history_unavailable", "error", err)
					ledger = nil
				} else {
					defer ledger.Close()
				}
			}

			if flags.logLevel != "debug" {
				gin.SetMode(gin.ReleaseMode)
			}
			srv := server.New(cfg, analysis.NewTools(cfg), store.New(outDir), ledger, log)
			log.Info("serving", "addr", addr)
			return srv.Router().Run(addr)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", ":8087", "listen address")
	cmd.Flags().StringVar(&outDir, "out", "", "result store directory (default data/analyses)")
	cmd.Flags().StringVar(&historyDB, "history-db", "data/history.db", "sqlite run ledger path (empty disables)")
	return cmd
}
