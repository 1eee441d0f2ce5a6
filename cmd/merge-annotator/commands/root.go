// Package commands implements the merge-annotator CLI commands.
package commands

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Nita121388/Merge-Annotator/internal/analysis"
)

const envPrefix = "MERGE_ANNOTATOR"

// bindEnv makes every flag of cmd overridable via MERGE_ANNOTATOR_<FLAG>
// environment variables. Explicit flags still win.
func bindEnv(cmd *cobra.Command) error {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed || !v.IsSet(f.Name) {
			return
		}
		if err := cmd.Flags().Set(f.Name, v.GetString(f.Name)); err != nil && bindErr == nil {
			bindErr = err
		}
	})
	return bindErr
}

// newLogger builds the slog text logger on stderr at the requested level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// analysisFlags is the shared flag set mirroring analysis.Config.
type analysisFlags struct {
	extensions   []string
	maxFileBytes int64
	disableBlame bool
	disableSvn   bool
	diff3Path    string
	timeoutSec   int
	onlyChanged  bool
	scope        string
	workers      int
	logLevel     string
}

func (f *analysisFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringSliceVar(&f.extensions, "ext", analysis.DefaultExtensions, "file extensions to analyze")
	flags.Int64Var(&f.maxFileBytes, "max-file-bytes", 2<<20, "skip merged files above this size (0 disables)")
	flags.BoolVar(&f.disableBlame, "disable-blame", false, "skip svn blame")
	flags.BoolVar(&f.disableSvn, "disable-svn", false, "skip all external svn/diff3 calls")
	flags.StringVar(&f.diff3Path, "diff3", "", "diff3 binary for conflict replay (default: from PATH)")
	flags.IntVar(&f.timeoutSec, "tool-timeout", 60, "per external tool invocation timeout in seconds")
	flags.BoolVar(&f.onlyChanged, "only-changed", true, "analyze only files changed per svn diff --summarize")
	flags.StringVar(&f.scope, "scope", string(analysis.ScopeTrunk), "changed-files scope: trunk, branch or union")
	flags.IntVar(&f.workers, "workers", 1, "concurrent file analyses (1 is safest for svn working copies)")
	flags.StringVar(&f.logLevel, "log-level", "info", "log level: debug, info, warn, error")
}

func (f *analysisFlags) config() analysis.Config {
	cfg := analysis.DefaultConfig()
	cfg.Extensions = f.extensions
	cfg.MaxFileBytes = f.maxFileBytes
	cfg.DisableBlame = f.disableBlame
	cfg.DisableTools = f.disableSvn
	cfg.Diff3Path = f.diff3Path
	cfg.ToolTimeout = time.Duration(f.timeoutSec) * time.Second
	cfg.OnlyChanged = f.onlyChanged
	cfg.FileScope = analysis.FileScope(f.scope)
	cfg.Workers = f.workers
	return cfg
}
