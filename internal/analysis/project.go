package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Nita121388/Merge-Annotator/internal/scan"
)

// Progress is one orchestration heartbeat. Elapsed fields are seconds.
type Progress struct {
	Stage       string  `json:"stage"`
	Total       int     `json:"total"`
	Current     int     `json:"current"`
	Path        string  `json:"path"`
	Elapsed     float64 `json:"elapsed"`
	FileElapsed float64 `json:"file_elapsed"`
}

// ProgressFunc receives run progress. It may be nil.
type ProgressFunc func(Progress)

// AnalyzeProject analyzes every candidate file under the merge root and
// assembles the run result. Per-file analyses are independent and run on a
// bounded worker pool; the returned result is ordered by path regardless of
// completion order. Only a catastrophic failure (the merge root itself
// unusable) returns an error; per-file and per-signal problems degrade
// inside each FileAnalysis.
func AnalyzeProject(ctx context.Context, cfg Config, tools Tools, roots Roots, onProgress ProgressFunc, log *slog.Logger) (*Result, error) {
	if log == nil {
		log = slog.Default()
	}
	if !scan.IsDir(roots.Merge) {
		return nil, fmt.Errorf("merge root unreadable: %s", roots.Merge)
	}

	relPaths, err := candidateFiles(ctx, cfg, tools, roots, log)
	if err != nil {
		return nil, err
	}
	total := len(relPaths)
	log.Info("analysis_start", "files", total,
		"branch", roots.Branch, "trunk", roots.Trunk, "merge", roots.Merge)

	started := time.Now()
	emit := func(p Progress) {
		if onProgress != nil {
			onProgress(p)
		}
	}
	emit(Progress{Stage: "start", Total: total})
	if total == 0 {
		log.Info("analysis_empty")
	}

	analyses := make([]*FileAnalysis, total)
	var mu sync.Mutex
	done := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.workers())
	for idx, relPath := range relPaths {
		idx, relPath := idx, relPath
		g.Go(func() error {
			fileStarted := time.Now()
			fa := AnalyzeFile(gctx, cfg, tools, roots, relPath, log)
			analyses[idx] = fa

			mu.Lock()
			done++
			current := done
			mu.Unlock()

			elapsed := time.Since(started).Seconds()
			fileElapsed := time.Since(fileStarted).Seconds()
			if current == 1 || current == total || current%cfg.progressEvery() == 0 {
				log.Info("analysis_progress",
					"current", current, "total", total, "path", relPath,
					"file_elapsed", fileElapsed, "elapsed", elapsed)
			}
			emit(Progress{
				Stage: "file", Total: total, Current: current,
				Path: relPath, Elapsed: elapsed, FileElapsed: fileElapsed,
			})
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{
		Roots:   roots,
		Files:   make([]Summary, 0, total),
		FileMap: make(map[string]*FileAnalysis, total),
	}
	for _, fa := range analyses {
		if fa.Summary.Error != "" {
			log.Warn("file_error", "path", fa.Path, "error", fa.Summary.Error)
		}
		result.Files = append(result.Files, fa.Summary)
		result.FileMap[fa.Path] = fa
	}
	sort.Slice(result.Files, func(i, j int) bool { return result.Files[i].Path < result.Files[j].Path })

	log.Info("analysis_done", "files", total, "elapsed", time.Since(started).Seconds())
	emit(Progress{Stage: "done", Total: total, Current: total, Elapsed: time.Since(started).Seconds()})
	return result, nil
}

// candidateFiles decides what to analyze: the changed-files pre-filter when
// enabled (falling back to a full scan if both summarize diffs fail),
// otherwise every matching file under the merge root.
func candidateFiles(ctx context.Context, cfg Config, tools Tools, roots Roots, log *slog.Logger) ([]string, error) {
	exts := cfg.ExtensionSet()
	if cfg.OnlyChanged && !cfg.DisableTools {
		if rels, ok := collectChangedFiles(ctx, cfg, tools, roots, exts, log); ok {
			log.Info("changed_only", "files", len(rels), "scope", string(cfg.FileScope))
			return rels, nil
		}
		log.Warn("changed_only_failed", "fallback", "full_scan")
	}
	return scan.Collect(roots.Merge, exts)
}

// collectChangedFiles builds the candidate list from summarize diffs of the
// merge root against trunk and/or branch per the configured scope. A failed
// scoped diff degrades to the union of whatever succeeded; when both diffs
// fail the pre-filter reports !ok and the caller scans everything.
func collectChangedFiles(ctx context.Context, cfg Config, tools Tools, roots Roots, exts map[string]struct{}, log *slog.Logger) ([]string, bool) {
	trunkPaths, trunkOK := tools.DiffSummarize(ctx, roots.Trunk, roots.Merge)
	branchPaths, branchOK := tools.DiffSummarize(ctx, roots.Branch, roots.Merge)
	if !trunkOK && !branchOK {
		return nil, false
	}

	var targets []string
	switch cfg.FileScope {
	case ScopeBranch:
		if branchOK {
			targets = branchPaths
		} else {
			log.Warn("branch_summarize_failed", "fallback", "union")
			targets = append(append(targets, trunkPaths...), branchPaths...)
		}
	case ScopeUnion:
		targets = append(append(targets, trunkPaths...), branchPaths...)
	default: // ScopeTrunk
		if trunkOK {
			targets = trunkPaths
		} else {
			log.Warn("trunk_summarize_failed", "fallback", "union")
			targets = append(append(targets, trunkPaths...), branchPaths...)
		}
	}

	seen := make(map[string]struct{})
	var rels []string
	for _, target := range targets {
		rel := scan.ResolveRel(target, roots.Merge, roots.Trunk, roots.Branch)
		if rel == "" {
			continue
		}
		abs := filepath.Join(roots.Merge, filepath.FromSlash(rel))
		st, err := os.Stat(abs)
		if err != nil {
			continue
		}
		if st.IsDir() {
			log.Info("skip_dir_change", "path", rel)
			continue
		}
		if len(exts) > 0 {
			if _, ok := exts[strings.ToLower(filepath.Ext(abs))]; !ok {
				continue
			}
		}
		if _, dup := seen[rel]; dup {
			continue
		}
		seen[rel] = struct{}{}
		rels = append(rels, rel)
	}
	sort.Strings(rels)
	return rels, true
}
