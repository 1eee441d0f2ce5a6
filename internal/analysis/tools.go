package analysis

import (
	"context"

	"github.com/Nita121388/Merge-Annotator/internal/conflict"
	"github.com/Nita121388/Merge-Annotator/internal/svn"
)

// Tools abstracts the external collaborators one file analysis consumes:
// two-way diff, three-way merge replay, blame and info. Implementations
// signal unavailability with nil results / ok=false; they never return
// process errors.
type Tools interface {
	// ChangedLines is the two-way change-set in newPath's numbering, nil
	// when unknown. The caller guarantees newPath exists.
	ChangedLines(ctx context.Context, oldPath, newPath string, totalNew int) svn.LineSet
	// Changed returns both sides of a two-way diff (old-side numbering,
	// new-side numbering).
	Changed(ctx context.Context, oldPath, newPath string) (oldSet, newSet svn.LineSet, ok bool)
	// Conflicts replays the three-way merge and maps conflict regions onto
	// the merged numbering; nil when the signal is unavailable.
	Conflicts(ctx context.Context, basePath, branchPath, trunkPath string, mergeLines []string) *conflict.Detail
	// Blame returns per-line attribution aligned 1:1 with the file, nil
	// when unavailable.
	Blame(ctx context.Context, path string) []svn.BlameLine
	// Info describes the merged file's working-copy state.
	Info(ctx context.Context, path string) svn.Info
	// DiffSummarize lists changed paths between two roots.
	DiffSummarize(ctx context.Context, oldRoot, newRoot string) ([]string, bool)
}

// cliTools is the production Tools implementation on top of the svn client
// and an external diff3.
type cliTools struct {
	runner *svn.Runner
	diff3  string
}

// NewTools wires the svn runner and diff3 binary resolution into a Tools
// value for the given configuration.
func NewTools(cfg Config) Tools {
	return &cliTools{
		runner: &svn.Runner{Timeout: cfg.ToolTimeout},
		diff3:  conflict.Binary(cfg.Diff3Path),
	}
}

func (t *cliTools) ChangedLines(ctx context.Context, oldPath, newPath string, totalNew int) svn.LineSet {
	return t.runner.ChangedLines(ctx, oldPath, newPath, totalNew)
}

func (t *cliTools) Changed(ctx context.Context, oldPath, newPath string) (svn.LineSet, svn.LineSet, bool) {
	return t.runner.Changed(ctx, oldPath, newPath)
}

func (t *cliTools) Conflicts(ctx context.Context, basePath, branchPath, trunkPath string, mergeLines []string) *conflict.Detail {
	return conflict.Detect(ctx, t.runner, t.diff3, basePath, branchPath, trunkPath, mergeLines)
}

func (t *cliTools) Blame(ctx context.Context, path string) []svn.BlameLine {
	return t.runner.Blame(ctx, path)
}

func (t *cliTools) Info(ctx context.Context, path string) svn.Info {
	return t.runner.Info(ctx, path)
}

func (t *cliTools) DiffSummarize(ctx context.Context, oldRoot, newRoot string) ([]string, bool) {
	return t.runner.DiffSummarize(ctx, oldRoot, newRoot)
}
