package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Nita121388/Merge-Annotator/internal/align"
	"github.com/Nita121388/Merge-Annotator/internal/conflict"
	"github.com/Nita121388/Merge-Annotator/internal/svn"
	"github.com/Nita121388/Merge-Annotator/internal/version"
)

// AnalyzeFile runs the full provenance pipeline for one merged file:
// version loading, correspondence mapping, change-set extraction, conflict
// detection, per-line origin resolution and block construction. It is a
// pure function of its inputs plus the external tool outputs; no shared
// state is touched, so distinct files may be analyzed concurrently.
func AnalyzeFile(ctx context.Context, cfg Config, tools Tools, roots Roots, relPath string, log *slog.Logger) *FileAnalysis {
	started := time.Now()
	log.Info("file_start", "path", relPath)

	mergePath := filepath.Join(roots.Merge, filepath.FromSlash(relPath))
	branchPath := filepath.Join(roots.Branch, filepath.FromSlash(relPath))
	trunkPath := filepath.Join(roots.Trunk, filepath.FromSlash(relPath))
	basePath := ""
	if roots.HasBase() {
		basePath = filepath.Join(roots.Base, filepath.FromSlash(relPath))
	}

	branchExists := version.Exists(branchPath)
	trunkExists := version.Exists(trunkPath)
	fileOrigin := resolveFileOrigin(branchExists, trunkExists)

	if fa := skipIfOversize(ctx, cfg, tools, mergePath, relPath, fileOrigin, log); fa != nil {
		return fa
	}

	versions, mergeErr := loadVersions(roots, relPath)

	branchMap := align.EqualMap(versions.Merge, versions.Branch)
	trunkMap := align.EqualMap(versions.Merge, versions.Trunk)
	baseMap := map[int]int{}
	if len(versions.Base) > 0 {
		baseMap = align.EqualMap(versions.Merge, versions.Base)
	}

	sig := gatherSignals(ctx, cfg, tools, mergePath, branchPath, trunkPath, basePath, versions)

	var blame []svn.BlameLine
	switch {
	case cfg.DisableBlame || cfg.DisableTools:
		log.Info("step_skip", "path", relPath, "step", "blame_disabled")
	case skipBlame(relPath):
		log.Info("step_skip", "path", relPath, "step", "blame")
	default:
		blame = tools.Blame(ctx, mergePath)
	}

	conflicts := sig.conflictDetail

	records := make([]LineRecord, 0, len(versions.Merge))
	var counts originCounts
	for idx := range versions.Merge {
		mergeNo := idx + 1
		branchIdx, branchOK := branchMap[idx]
		trunkIdx, trunkOK := trunkMap[idx]
		baseIdx, baseOK := baseMap[idx]
		branchNo := lineNo(branchIdx, branchOK)
		trunkNo := lineNo(trunkIdx, trunkOK)
		baseNo := lineNo(baseIdx, baseOK)

		origin := resolveLine(mergeNo, branchNo, trunkNo, baseNo, sig.lineSignals)
		counts.add(origin)
		records = append(records, LineRecord{
			MergeNo:  mergeNo,
			Origin:   origin,
			BranchNo: branchNo,
			TrunkNo:  trunkNo,
			BaseNo:   baseNo,
		})
	}

	blocks := BuildBlocks(records, versions, blame, conflicts)

	info := svn.Unavailable("svn_disabled")
	if !cfg.DisableTools {
		info = tools.Info(ctx, mergePath)
	}

	fa := &FileAnalysis{
		Path:        relPath,
		Summary:     counts.summary(relPath, len(versions.Merge), mergeErr, fileOrigin),
		Versions:    versions,
		LineRecords: records,
		Blocks:      blocks,
		Conflicts:   conflicts,
		SvnInfo:     info,
	}
	log.Info("file_end", "path", relPath, "elapsed", time.Since(started).Seconds())
	return fa
}

// skipIfOversize short-circuits files above the byte threshold into a
// placeholder analysis so downstream consumers never special-case missing
// entries. Zeroed counts, no blocks, skip reason on the summary.
func skipIfOversize(ctx context.Context, cfg Config, tools Tools, mergePath, relPath string, fileOrigin FileOrigin, log *slog.Logger) *FileAnalysis {
	if cfg.MaxFileBytes <= 0 {
		return nil
	}
	st, err := os.Stat(mergePath)
	if err != nil || st.Size() <= cfg.MaxFileBytes {
		return nil
	}
	log.Info("file_skip", "path", relPath, "size", st.Size())
	info := svn.Unavailable("svn_disabled")
	if !cfg.DisableTools {
		info = tools.Info(ctx, mergePath)
	}
	return &FileAnalysis{
		Path: relPath,
		Summary: Summary{
			Path:       relPath,
			HasChanges: true,
			Error:      fmt.Sprintf("skipped_large_file:%d", st.Size()),
			Skipped:    true,
			Size:       st.Size(),
			FileOrigin: fileOrigin,
		},
		Versions: Versions{},
		SvnInfo:  info,
	}
}

func loadVersions(roots Roots, relPath string) (Versions, string) {
	mergeLines, mergeErr := version.Read(roots.Merge, relPath)
	branchLines, _ := version.Read(roots.Branch, relPath)
	trunkLines, _ := version.Read(roots.Trunk, relPath)
	var baseLines []string
	if roots.HasBase() {
		baseLines, _ = version.Read(roots.Base, relPath)
	}
	errText := ""
	if mergeErr != nil {
		errText = mergeErr.Error()
	}
	return Versions{Merge: mergeLines, Branch: branchLines, Trunk: trunkLines, Base: baseLines}, errText
}

// fileSignals couples the per-line resolver inputs with the conflict
// detail blocks the block builder needs.
type fileSignals struct {
	lineSignals
	conflictDetail *conflict.Detail
}

// gatherSignals performs the external-tool passes for one file. With tools
// disabled every signal stays unknown and resolution degrades to pure
// correspondence.
func gatherSignals(ctx context.Context, cfg Config, tools Tools, mergePath, branchPath, trunkPath, basePath string, versions Versions) fileSignals {
	var sig fileSignals
	if cfg.DisableTools {
		return sig
	}

	sig.branchChanged = tools.ChangedLines(ctx, branchPath, mergePath, len(versions.Merge))
	sig.trunkChanged = tools.ChangedLines(ctx, trunkPath, mergePath, len(versions.Merge))

	if basePath != "" {
		if oldSet, _, ok := tools.Changed(ctx, basePath, mergePath); ok {
			sig.baseMergeOld = oldSet
		}
		if oldSet, _, ok := tools.Changed(ctx, basePath, branchPath); ok {
			sig.baseBranchOld = oldSet
		}
		if oldSet, _, ok := tools.Changed(ctx, basePath, trunkPath); ok {
			sig.baseTrunkOld = oldSet
		}
	}

	detail := tools.Conflicts(ctx, basePath, branchPath, trunkPath, versions.Merge)
	if detail != nil {
		sig.conflicts = detail.Lines
		sig.conflictDetail = detail
	}
	return sig
}

// originCounts tallies line classifications for the file summary.
type originCounts struct {
	branch, trunk, common, manual, conflicted int
}

func (c *originCounts) add(origin Origin) {
	switch origin {
	case OriginBranch:
		c.branch++
	case OriginTrunk:
		c.trunk++
	case OriginCommon:
		c.common++
	case OriginConflict:
		c.conflicted++
	default:
		c.manual++
	}
}

func (c originCounts) summary(relPath string, total int, errText string, fileOrigin FileOrigin) Summary {
	return Summary{
		Path:          relPath,
		TotalLines:    total,
		BranchLines:   c.branch,
		TrunkLines:    c.trunk,
		CommonLines:   c.common,
		ManualLines:   c.manual,
		ConflictLines: c.conflicted,
		HasChanges:    c.branch+c.trunk+c.manual+c.conflicted > 0,
		Error:         errText,
		FileOrigin:    fileOrigin,
	}
}
