// Package conflict recovers unresolved-conflict regions of a merged file by
// replaying the three-way merge with an external diff3 and aligning its
// marker-bearing output back onto the final merged text. The indirection is
// required because diff3's output numbering does not match the merged
// file's numbering once marker lines are in play.
package conflict

import (
	"context"
	"os/exec"
	"strings"

	"github.com/Nita121388/Merge-Annotator/internal/align"
	"github.com/Nita121388/Merge-Annotator/internal/svn"
	"github.com/Nita121388/Merge-Annotator/internal/version"
)

// ToolRunner executes an external binary and reports unavailability via ok.
type ToolRunner interface {
	RunTool(ctx context.Context, name string, args ...string) (string, bool)
}

// Block is one delimited conflict span: Left holds the lines before the
// midpoint "=======" delimiter (the branch side, plus any base section
// diff3 prints), Right the lines after it (the trunk side).
type Block struct {
	Left  []string `json:"left"`
	Right []string `json:"right"`
}

// Detail is the conflict picture for one merged file.
type Detail struct {
	// Lines holds the 1-based merged line numbers that fall inside an
	// unresolved conflict region.
	Lines svn.LineSet `json:"lines"`
	// Blocks are the ordered conflict spans as diff3 printed them.
	Blocks []Block `json:"blocks"`
}

// Binary resolves the diff3 executable: an explicit override wins,
// otherwise PATH lookup. Empty string means no diff3 is available.
func Binary(override string) string {
	if override != "" {
		return override
	}
	path, err := exec.LookPath("diff3")
	if err != nil {
		return ""
	}
	return path
}

// Detect replays `diff3 -m base branch trunk` and maps the conflicted
// output lines onto mergeLines. The conflicts signal is entirely optional:
// any missing input file, missing binary or tool failure yields nil.
func Detect(ctx context.Context, runner ToolRunner, diff3Bin, basePath, branchPath, trunkPath string, mergeLines []string) *Detail {
	if basePath == "" || branchPath == "" || trunkPath == "" {
		return nil
	}
	if !version.Exists(basePath) || !version.Exists(branchPath) || !version.Exists(trunkPath) {
		return nil
	}
	if diff3Bin == "" {
		return nil
	}
	out, ok := runner.RunTool(ctx, diff3Bin, "-m", basePath, branchPath, trunkPath)
	if !ok {
		return nil
	}
	outLines, flags, blocks := parseMarkers(out)
	mapped := mapToMerge(outLines, flags, mergeLines)
	if mapped == nil {
		return nil
	}
	return &Detail{Lines: mapped, Blocks: blocks}
}

// parseMarkers splits diff3 output into the kept line sequence (markers
// removed, every other line retained), a parallel in-conflict flag array,
// and the ordered conflict blocks.
func parseMarkers(text string) (lines []string, flags []bool, blocks []Block) {
	var current *Block
	split := -1
	inConflict := false
	for _, raw := range version.SplitLines(text) {
		switch {
		case strings.HasPrefix(raw, "<<<<<<<"):
			inConflict = true
			current = &Block{}
			split = -1
			continue
		case strings.HasPrefix(raw, "|||||||"):
			continue
		case strings.HasPrefix(raw, "======="):
			if current != nil {
				split = len(current.Left)
			}
			continue
		case strings.HasPrefix(raw, ">>>>>>>"):
			inConflict = false
			if current != nil {
				blocks = append(blocks, *current)
			}
			current = nil
			continue
		}
		if inConflict && current != nil {
			if split < 0 {
				current.Left = append(current.Left, raw)
			} else {
				current.Right = append(current.Right, raw)
			}
		}
		lines = append(lines, raw)
		flags = append(flags, inConflict)
	}
	return lines, flags, blocks
}

// mapToMerge aligns the marker-stripped diff3 output against the merged
// text and flags merged line numbers whose aligned counterpart sits inside
// a conflict.
func mapToMerge(outLines []string, flags []bool, mergeLines []string) svn.LineSet {
	if len(outLines) == 0 || len(mergeLines) == 0 {
		return nil
	}
	conflicted := make(svn.LineSet)
	for _, p := range align.EqualPairs(outLines, mergeLines) {
		if flags[p.A] {
			conflicted.Add(p.B + 1)
		}
	}
	return conflicted
}
