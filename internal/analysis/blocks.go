package analysis

import (
	"strings"

	"github.com/Nita121388/Merge-Annotator/internal/conflict"
	"github.com/Nita121388/Merge-Annotator/internal/svn"
)

// conflictPreviewLines caps the preview slice of a conflict summary.
const conflictPreviewLines = 6

// BuildBlocks run-length-encodes the line records into maximal same-origin
// blocks, attaching text snippets, conflict summaries and blame summaries.
// Concatenating the returned blocks' merge ranges in order reconstructs
// [1..len(records)] exactly.
func BuildBlocks(records []LineRecord, versions Versions, blame []svn.BlameLine, conflicts *conflict.Detail) []*Block {
	if len(records) == 0 {
		return nil
	}
	var blocks []*Block
	start := 0
	current := records[0].Origin
	for idx := 1; idx < len(records); idx++ {
		if records[idx].Origin != current {
			blocks = append(blocks, buildBlock(records[start:idx], current, versions, blame, conflicts))
			start = idx
			current = records[idx].Origin
		}
	}
	blocks = append(blocks, buildBlock(records[start:], current, versions, blame, conflicts))
	return blocks
}

func buildBlock(run []LineRecord, origin Origin, versions Versions, blame []svn.BlameLine, conflicts *conflict.Detail) *Block {
	mergeStart := run[0].MergeNo
	mergeEnd := run[len(run)-1].MergeNo

	branchStart, branchEnd := spanOf(run, func(r LineRecord) *int { return r.BranchNo })
	trunkStart, trunkEnd := spanOf(run, func(r LineRecord) *int { return r.TrunkNo })
	baseStart, baseEnd := spanOf(run, func(r LineRecord) *int { return r.BaseNo })

	return &Block{
		Start:       mergeStart,
		End:         mergeEnd,
		Origin:      origin,
		BranchStart: branchStart,
		BranchEnd:   branchEnd,
		BaseStart:   baseStart,
		BaseEnd:     baseEnd,
		TrunkStart:  trunkStart,
		TrunkEnd:    trunkEnd,
		Confidence:  confidenceFor(origin),
		Diff: DiffSnippets{
			Merge:  sliceText(versions.Merge, intPtr(mergeStart), intPtr(mergeEnd)),
			Branch: sliceText(versions.Branch, branchStart, branchEnd),
			Trunk:  sliceText(versions.Trunk, trunkStart, trunkEnd),
		},
		Conflict: summarizeConflict(conflicts, mergeStart, mergeEnd),
		Blame:    SummarizeBlame(blame, mergeStart, mergeEnd),
	}
}

// spanOf computes the (min,max) of the mapped line numbers inside the run.
// Mapped lines need not be contiguous, so the span can overstate the
// block's true extent; that widened range is intentional (context hint).
func spanOf(run []LineRecord, pick func(LineRecord) *int) (*int, *int) {
	var lo, hi *int
	for _, rec := range run {
		n := pick(rec)
		if n == nil {
			continue
		}
		if lo == nil || *n < *lo {
			lo = intPtr(*n)
		}
		if hi == nil || *n > *hi {
			hi = intPtr(*n)
		}
	}
	return lo, hi
}

// sliceText joins the 1-based inclusive [start,end] slice of lines. An
// absent range yields the empty string.
func sliceText(lines []string, start, end *int) string {
	if start == nil || end == nil {
		return ""
	}
	lo, hi := *start, *end
	if lo < 1 {
		lo = 1
	}
	if hi > len(lines) {
		hi = len(lines)
	}
	if lo > hi {
		return ""
	}
	return strings.Join(lines[lo-1:hi], "\n")
}

// summarizeConflict reports whether [start,end] overlaps a conflict region
// and, if so, previews the first conflict block's two halves.
func summarizeConflict(detail *conflict.Detail, start, end int) *ConflictSummary {
	if detail == nil || len(detail.Lines) == 0 {
		return nil
	}
	overlaps := false
	for no := range detail.Lines {
		if no >= start && no <= end {
			overlaps = true
			break
		}
	}
	if !overlaps {
		return nil
	}
	if len(detail.Blocks) == 0 {
		return &ConflictSummary{Note: "conflict"}
	}
	first := detail.Blocks[0]
	return &ConflictSummary{
		Note:         "conflict",
		LeftPreview:  previewLines(first.Left),
		RightPreview: previewLines(first.Right),
		LeftFull:     first.Left,
		RightFull:    first.Right,
		LeftCount:    len(first.Left),
		RightCount:   len(first.Right),
	}
}

func previewLines(lines []string) []string {
	if len(lines) <= conflictPreviewLines {
		return lines
	}
	return lines[:conflictPreviewLines]
}
