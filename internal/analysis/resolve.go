package analysis

import "github.com/Nita121388/Merge-Annotator/internal/svn"

// Signal is the tri-state result of asking a change-set whether a line
// changed: the answer is yes, no, or unknown when the underlying diff was
// unavailable.
type Signal uint8

const (
	SignalUnknown Signal = iota
	SignalNo
	SignalYes
)

// signalFor consults a change-set. A nil set answers unknown.
func signalFor(set svn.LineSet, line int) Signal {
	if set == nil {
		return SignalUnknown
	}
	if set.Has(line) {
		return SignalYes
	}
	return SignalNo
}

// resolveByCorrespondence is the weakest rule: classify purely by which
// reference versions contain an aligned-equal copy of the line.
func resolveByCorrespondence(branchNo, trunkNo *int) Origin {
	switch {
	case branchNo != nil && trunkNo != nil:
		return OriginCommon
	case branchNo != nil:
		return OriginBranch
	case trunkNo != nil:
		return OriginTrunk
	default:
		return OriginManual
	}
}

// resolveByChange applies the no-base rule table. changedBranch and
// changedTrunk state whether the merge line differs from branch and trunk
// respectively: a line equal to branch but not trunk was brought in from
// the branch, and vice versa.
func resolveByChange(changedBranch, changedTrunk bool) Origin {
	switch {
	case !changedBranch && !changedTrunk:
		return OriginCommon
	case !changedBranch && changedTrunk:
		return OriginBranch
	case changedBranch && !changedTrunk:
		return OriginTrunk
	default:
		return OriginManual
	}
}

// resolveWithBase applies the base-aware rule table. changedMerge states
// whether the merged line differs from its base counterpart; changedBranch
// and changedTrunk whether the base line was touched on each side (either
// may be unknown). Correspondence presence breaks the both-sides-changed
// tie and guards one-sided attributions.
func resolveWithBase(changedMerge bool, changedBranch, changedTrunk Signal, branchNo, trunkNo *int) Origin {
	if !changedMerge {
		return OriginCommon
	}
	switch {
	case changedBranch == SignalNo && changedTrunk == SignalNo:
		return OriginManual
	case changedBranch == SignalYes && changedTrunk == SignalNo:
		if branchNo != nil {
			return OriginBranch
		}
		return OriginManual
	case changedTrunk == SignalYes && changedBranch == SignalNo:
		if trunkNo != nil {
			return OriginTrunk
		}
		return OriginManual
	case changedBranch == SignalYes && changedTrunk == SignalYes:
		switch {
		case branchNo != nil && trunkNo == nil:
			return OriginBranch
		case trunkNo != nil && branchNo == nil:
			return OriginTrunk
		case branchNo != nil && trunkNo != nil:
			return OriginCommon
		default:
			return OriginManual
		}
	}
	// A side's base diff was unavailable: fall back to correspondence.
	return resolveByCorrespondence(branchNo, trunkNo)
}

// resolveFileOrigin classifies a file by which reference roots carry it.
func resolveFileOrigin(branchExists, trunkExists bool) FileOrigin {
	switch {
	case branchExists && !trunkExists:
		return FileOriginBranchNew
	case trunkExists && !branchExists:
		return FileOriginTrunkNew
	case !branchExists && !trunkExists:
		return FileOriginMergeOnly
	default:
		return FileOriginShared
	}
}

// confidenceFor is a presentation hint attached at block level; it never
// influences classification.
func confidenceFor(origin Origin) float64 {
	switch origin {
	case OriginCommon:
		return 0.95
	case OriginBranch, OriginTrunk:
		return 0.90
	default:
		return 0.60
	}
}

// lineSignals bundles everything the per-line resolver consults.
type lineSignals struct {
	conflicts     svn.LineSet // nil when the conflict signal is unavailable
	branchChanged svn.LineSet // merge lines differing from branch (merge numbering)
	trunkChanged  svn.LineSet // merge lines differing from trunk (merge numbering)
	baseMergeOld  svn.LineSet // base lines differing from merge (base numbering)
	baseBranchOld svn.LineSet // base lines differing from branch (base numbering)
	baseTrunkOld  svn.LineSet // base lines differing from trunk (base numbering)
}

// resolveLine classifies one merged line through the fixed precedence
// hierarchy: conflict flag, base-aware table, no-base table, pure
// correspondence.
func resolveLine(mergeNo int, branchNo, trunkNo, baseNo *int, sig lineSignals) Origin {
	if sig.conflicts != nil && sig.conflicts.Has(mergeNo) {
		return OriginConflict
	}
	if baseNo != nil && sig.baseMergeOld != nil {
		return resolveWithBase(
			sig.baseMergeOld.Has(*baseNo),
			signalFor(sig.baseBranchOld, *baseNo),
			signalFor(sig.baseTrunkOld, *baseNo),
			branchNo, trunkNo,
		)
	}
	if sig.branchChanged != nil && sig.trunkChanged != nil {
		return resolveByChange(sig.branchChanged.Has(mergeNo), sig.trunkChanged.Has(mergeNo))
	}
	return resolveByCorrespondence(branchNo, trunkNo)
}
