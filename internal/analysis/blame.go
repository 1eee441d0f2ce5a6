package analysis

import "github.com/Nita121388/Merge-Annotator/internal/svn"

// SummarizeBlame majority-votes the attribution of the inclusive 1-based
// merge line range [start,end]. It returns nil when blame data is absent or
// no line in the range carries an attribution. Ties resolve to the tuple
// seen first in line order, which keeps reruns identical.
func SummarizeBlame(blame []svn.BlameLine, start, end int) *BlameSummary {
	if len(blame) == 0 {
		return nil
	}
	type key struct{ rev, author, date string }
	counts := make(map[key]int)
	var order []key
	for idx := start - 1; idx < end; idx++ {
		if idx < 0 || idx >= len(blame) {
			continue
		}
		info := blame[idx]
		if !info.Valid() {
			continue
		}
		k := key{info.Rev, info.Author, info.Date}
		if _, seen := counts[k]; !seen {
			order = append(order, k)
		}
		counts[k]++
	}
	if len(order) == 0 {
		return nil
	}
	best := order[0]
	for _, k := range order[1:] {
		if counts[k] > counts[best] {
			best = k
		}
	}
	return &BlameSummary{
		Rev:    best.rev,
		Author: best.author,
		Date:   best.date,
		Lines:  counts[best],
		Source: "svn blame",
	}
}
