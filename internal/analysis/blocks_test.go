package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nita121388/Merge-Annotator/internal/conflict"
	"github.com/Nita121388/Merge-Annotator/internal/svn"
)

func recordsOf(origins ...Origin) []LineRecord {
	records := make([]LineRecord, len(origins))
	for i, o := range origins {
		records[i] = LineRecord{MergeNo: i + 1, Origin: o}
	}
	return records
}

func TestBuildBlocksRunLengthEncoding(t *testing.T) {
	records := recordsOf(
		OriginCommon, OriginCommon,
		OriginBranch,
		OriginManual, OriginManual, OriginManual,
		OriginCommon,
	)
	blocks := BuildBlocks(records, Versions{}, nil, nil)
	require.Len(t, blocks, 4)

	assert.Equal(t, 1, blocks[0].Start)
	assert.Equal(t, 2, blocks[0].End)
	assert.Equal(t, OriginCommon, blocks[0].Origin)
	assert.Equal(t, OriginBranch, blocks[1].Origin)
	assert.Equal(t, OriginManual, blocks[2].Origin)
	assert.Equal(t, 6, blocks[2].End)
	assert.Equal(t, OriginCommon, blocks[3].Origin)

	// Exhaustive and non-overlapping: ranges concatenate to [1..7].
	next := 1
	for _, b := range blocks {
		assert.Equal(t, next, b.Start)
		assert.GreaterOrEqual(t, b.End, b.Start)
		next = b.End + 1
	}
	assert.Equal(t, 8, next)
}

func TestBuildBlocksEmptyInput(t *testing.T) {
	assert.Nil(t, BuildBlocks(nil, Versions{}, nil, nil))
}

func TestBuildBlockCrossRangesAreMinMax(t *testing.T) {
	records := []LineRecord{
		{MergeNo: 1, Origin: OriginBranch, BranchNo: intPtr(10)},
		{MergeNo: 2, Origin: OriginBranch, BranchNo: nil}, // hole
		{MergeNo: 3, Origin: OriginBranch, BranchNo: intPtr(14)},
	}
	blocks := BuildBlocks(records, Versions{}, nil, nil)
	require.Len(t, blocks, 1)
	b := blocks[0]
	// The widened (min,max) hint range is kept even though line 12-13 are
	// not part of the block.
	require.NotNil(t, b.BranchStart)
	require.NotNil(t, b.BranchEnd)
	assert.Equal(t, 10, *b.BranchStart)
	assert.Equal(t, 14, *b.BranchEnd)
	assert.Nil(t, b.TrunkStart)
	assert.Nil(t, b.TrunkEnd)
}

func TestBuildBlockTextSlices(t *testing.T) {
	versions := Versions{
		Merge:  []string{"m1", "m2", "m3"},
		Branch: []string{"b1", "b2", "b3"},
		Trunk:  []string{"t1"},
	}
	records := []LineRecord{
		{MergeNo: 1, Origin: OriginBranch, BranchNo: intPtr(2)},
		{MergeNo: 2, Origin: OriginBranch, BranchNo: intPtr(3)},
	}
	blocks := BuildBlocks(records, versions, nil, nil)
	require.Len(t, blocks, 1)
	assert.Equal(t, "m1\nm2", blocks[0].Diff.Merge)
	assert.Equal(t, "b2\nb3", blocks[0].Diff.Branch)
	assert.Equal(t, "", blocks[0].Diff.Trunk, "no trunk range, empty slice")
}

func TestBlockConflictSummary(t *testing.T) {
	detail := &conflict.Detail{
		Lines: svn.LineSet{2: {}},
		Blocks: []conflict.Block{{
			Left:  []string{"l1", "l2", "l3", "l4", "l5", "l6", "l7", "l8"},
			Right: []string{"r1"},
		}},
	}
	records := recordsOf(OriginCommon, OriginConflict, OriginCommon)
	blocks := BuildBlocks(records, Versions{Merge: []string{"a", "b", "c"}}, nil, detail)
	require.Len(t, blocks, 3)

	assert.Nil(t, blocks[0].Conflict)
	assert.Nil(t, blocks[2].Conflict)

	summary := blocks[1].Conflict
	require.NotNil(t, summary)
	assert.Equal(t, "conflict", summary.Note)
	assert.Len(t, summary.LeftPreview, 6, "preview capped at 6 lines")
	assert.Len(t, summary.LeftFull, 8)
	assert.Equal(t, 8, summary.LeftCount)
	assert.Equal(t, []string{"r1"}, summary.RightFull)
	assert.Equal(t, 1, summary.RightCount)
}

func TestBlockConfidence(t *testing.T) {
	records := recordsOf(OriginCommon, OriginBranch, OriginConflict)
	blocks := BuildBlocks(records, Versions{}, nil, nil)
	require.Len(t, blocks, 3)
	assert.InDelta(t, 0.95, blocks[0].Confidence, 1e-9)
	assert.InDelta(t, 0.90, blocks[1].Confidence, 1e-9)
	assert.InDelta(t, 0.60, blocks[2].Confidence, 1e-9)
}

func TestBlockBlameSummaryAttached(t *testing.T) {
	blame := []svn.BlameLine{
		{Rev: "9", Author: "zoe", Date: "2024-01-01"},
		{Rev: "9", Author: "zoe", Date: "2024-01-01"},
	}
	records := recordsOf(OriginCommon, OriginCommon)
	blocks := BuildBlocks(records, Versions{Merge: []string{"x", "y"}}, blame, nil)
	require.Len(t, blocks, 1)
	require.NotNil(t, blocks[0].Blame)
	assert.Equal(t, "zoe", blocks[0].Blame.Author)
	assert.Equal(t, 2, blocks[0].Blame.Lines)
}
