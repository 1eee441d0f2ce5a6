package analysis

import (
	"strings"
	"time"
)

// FileScope selects which summarize diff drives the changed-files
// pre-filter.
type FileScope string

const (
	ScopeTrunk  FileScope = "trunk"
	ScopeBranch FileScope = "branch"
	ScopeUnion  FileScope = "union"
)

// DefaultExtensions mirrors the file types the annotator analyzes unless
// the caller narrows them.
var DefaultExtensions = []string{
	".py", ".cs", ".ts", ".js", ".jsx", ".tsx",
	".json", ".yaml", ".yml", ".xml", ".ini", ".cfg", ".conf",
	".md", ".txt",
}

// Config is the explicit, immutable configuration for one analysis run.
// It is passed by value into the entry points; the engine keeps no
// process-wide mutable state.
type Config struct {
	// Extensions filters analyzed files (lowercase, with dot). Empty means
	// DefaultExtensions.
	Extensions []string
	// MaxFileBytes skips larger merged files with a placeholder result.
	// 0 disables the threshold.
	MaxFileBytes int64
	// DisableBlame skips the line-attribution tool entirely.
	DisableBlame bool
	// DisableTools skips every external svn/diff3 invocation; resolution
	// falls back to pure line correspondence.
	DisableTools bool
	// Diff3Path overrides the diff3 binary used for conflict replay.
	Diff3Path string
	// ToolTimeout bounds each external invocation.
	ToolTimeout time.Duration
	// OnlyChanged pre-filters files via `svn diff --summarize`.
	OnlyChanged bool
	// FileScope selects the summarize diff used by OnlyChanged.
	FileScope FileScope
	// Workers bounds the per-file worker pool. Values < 1 mean 1.
	Workers int
	// ProgressEvery throttles progress log lines (every Nth file).
	ProgressEvery int
}

// DefaultConfig returns the configuration the CLI and service start from.
func DefaultConfig() Config {
	return Config{
		Extensions:    DefaultExtensions,
		MaxFileBytes:  2 << 20,
		ToolTimeout:   60 * time.Second,
		OnlyChanged:   true,
		FileScope:     ScopeTrunk,
		Workers:       1,
		ProgressEvery: 10,
	}
}

// ExtensionSet normalizes Extensions into a lowercase lookup set.
func (c Config) ExtensionSet() map[string]struct{} {
	exts := c.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	set := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		set[e] = struct{}{}
	}
	return set
}

func (c Config) workers() int {
	if c.Workers < 1 {
		return 1
	}
	return c.Workers
}

func (c Config) progressEvery() int {
	if c.ProgressEvery < 1 {
		return 1
	}
	return c.ProgressEvery
}

// skipBlame reports whether blame should be skipped for relPath. Generated
// binaries under release/bin carry no useful attribution and blame there is
// disproportionately slow.
func skipBlame(relPath string) bool {
	normalized := strings.ToLower(strings.ReplaceAll(relPath, "\\", "/"))
	return strings.HasPrefix(normalized, "release/bin/")
}
