// Package analysis is the provenance engine: it reconciles a branch copy,
// a trunk copy, the merged result and an optional common ancestor of a
// source tree and determines, for every line of every merged file, where
// that line's content originated. Results are structured per file as
// 1-based line records and run-length origin blocks for downstream review
// and annotation.
package analysis

import (
	"github.com/Nita121388/Merge-Annotator/internal/conflict"
	"github.com/Nita121388/Merge-Annotator/internal/svn"
)

// Origin classifies where a merged line's content came from.
type Origin string

const (
	// OriginCommon: the line is explained by both branch and trunk.
	OriginCommon Origin = "common"
	// OriginBranch: the line was brought in from the branch.
	OriginBranch Origin = "branch"
	// OriginTrunk: the line was kept from the trunk.
	OriginTrunk Origin = "trunk"
	// OriginManual: no reference version explains the line (hand-typed
	// during the merge, or unattributable).
	OriginManual Origin = "manual"
	// OriginConflict: the line sits inside an unresolved conflict region.
	// Takes precedence over every other signal.
	OriginConflict Origin = "conflict"
)

// FileOrigin classifies a whole file by which reference roots carry it.
type FileOrigin string

const (
	FileOriginBranchNew FileOrigin = "branch_new"
	FileOriginTrunkNew  FileOrigin = "trunk_new"
	FileOriginMergeOnly FileOrigin = "merge_only"
	FileOriginShared    FileOrigin = "shared"
)

// LineRecord is the per-line provenance verdict, one per merged line in
// merge order. Line numbers are 1-based; nil means "no correspondence".
// Invariant: origin == common implies both BranchNo and TrunkNo are set and
// the content at those positions equals the merge line.
type LineRecord struct {
	MergeNo  int    `json:"merge_no"`
	Origin   Origin `json:"origin"`
	BranchNo *int   `json:"branch_no"`
	TrunkNo  *int   `json:"trunk_no"`
	BaseNo   *int   `json:"base_no"`
}

// DiffSnippets carries the verbatim text of a block in each version, sliced
// by the block's (possibly widened) cross-version ranges.
type DiffSnippets struct {
	Merge  string `json:"merge"`
	Branch string `json:"branch"`
	Trunk  string `json:"trunk"`
}

// ConflictSummary is attached to blocks overlapping a conflict region.
type ConflictSummary struct {
	Note         string   `json:"note"`
	LeftPreview  []string `json:"left_preview,omitempty"`
	RightPreview []string `json:"right_preview,omitempty"`
	LeftFull     []string `json:"left_full,omitempty"`
	RightFull    []string `json:"right_full,omitempty"`
	LeftCount    int      `json:"left_count,omitempty"`
	RightCount   int      `json:"right_count,omitempty"`
}

// BlameSummary is the majority-vote attribution for a block's merge range.
type BlameSummary struct {
	Rev    string `json:"rev"`
	Author string `json:"author"`
	Date   string `json:"date"`
	Lines  int    `json:"lines"`
	Source string `json:"source"`
}

// Explanation is an externally produced natural-language annotation for a
// block. The engine never fills it in; it only offers the attachment point.
type Explanation struct {
	Reason      string `json:"reason"`
	MergeReason string `json:"merge_reason,omitempty"`
	Impact      string `json:"impact,omitempty"`
	Risk        string `json:"risk,omitempty"`
	Note        string `json:"note,omitempty"`
	Source      string `json:"source,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// Block is a maximal run of consecutive same-origin line records. Blocks
// are derived, read-only artifacts; the only post-construction mutation is
// attaching an external Explanation. The branch/trunk/base ranges are
// (min,max) over the mapped lines inside the run; they may be wider than
// the lines the block actually contains, which consumers use as a context
// hint.
type Block struct {
	Start       int              `json:"start"`
	End         int              `json:"end"`
	Origin      Origin           `json:"origin"`
	BranchStart *int             `json:"branch_start"`
	BranchEnd   *int             `json:"branch_end"`
	BaseStart   *int             `json:"base_start"`
	BaseEnd     *int             `json:"base_end"`
	TrunkStart  *int             `json:"trunk_start"`
	TrunkEnd    *int             `json:"trunk_end"`
	Confidence  float64          `json:"confidence"`
	Diff        DiffSnippets     `json:"diff"`
	Conflict    *ConflictSummary `json:"conflict"`
	Blame       *BlameSummary    `json:"svn"`
	Explain     *Explanation     `json:"ai_explain,omitempty"`
}

// Summary is the per-file rollup served in file listings.
type Summary struct {
	Path          string     `json:"path"`
	TotalLines    int        `json:"total_lines"`
	BranchLines   int        `json:"branch_lines"`
	TrunkLines    int        `json:"trunk_lines"`
	CommonLines   int        `json:"common_lines"`
	ManualLines   int        `json:"manual_lines"`
	ConflictLines int        `json:"conflict_lines"`
	HasChanges    bool       `json:"has_changes"`
	Error         string     `json:"error,omitempty"`
	Skipped       bool       `json:"skipped,omitempty"`
	Size          int64      `json:"size,omitempty"`
	FileOrigin    FileOrigin `json:"file_origin"`
}

// Versions holds the raw line sequences the analysis was computed from.
type Versions struct {
	Merge  []string `json:"merge"`
	Branch []string `json:"branch"`
	Trunk  []string `json:"trunk"`
	Base   []string `json:"base"`
}

// FileAnalysis is the complete provenance picture for one merged file.
// It is built once per run and immutable afterwards, except for external
// annotation attachment on its blocks.
type FileAnalysis struct {
	Path        string           `json:"path"`
	Summary     Summary          `json:"summary"`
	Versions    Versions         `json:"versions"`
	LineRecords []LineRecord     `json:"line_meta"`
	Blocks      []*Block         `json:"blocks"`
	Conflicts   *conflict.Detail `json:"-"`
	SvnInfo     svn.Info         `json:"svn"`
}

// Roots are the directory roots of the compared trees. Base may be empty.
type Roots struct {
	Branch string `json:"branch"`
	Trunk  string `json:"trunk"`
	Merge  string `json:"merge"`
	Base   string `json:"base,omitempty"`
}

// HasBase reports whether an ancestor root was provided.
func (r Roots) HasBase() bool { return r.Base != "" }

// Result is a completed analysis run: ordered file summaries plus the full
// per-file analyses keyed by relative path.
type Result struct {
	Roots   Roots                    `json:"roots"`
	Files   []Summary                `json:"files"`
	FileMap map[string]*FileAnalysis `json:"file_map"`
}

func intPtr(v int) *int { return &v }

// lineNo converts a 0-based mapped index into an optional 1-based number.
func lineNo(idx int, ok bool) *int {
	if !ok {
		return nil
	}
	return intPtr(idx + 1)
}
