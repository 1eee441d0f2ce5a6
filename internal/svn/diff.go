package svn

import (
	"context"
	"io"
	"strings"

	"github.com/sourcegraph/go-diff/diff"
)

// Changed runs `svn diff --old --new` between two file versions and parses
// the unified output into the changed line numbers on each side. It returns
// ok=false (unknown) when either path is empty or missing, the tool fails,
// or the output cannot be parsed.
func (r *Runner) Changed(ctx context.Context, oldPath, newPath string) (oldSet, newSet LineSet, ok bool) {
	if oldPath == "" || newPath == "" {
		return nil, nil, false
	}
	if !exists(oldPath) || !exists(newPath) {
		return nil, nil, false
	}
	out, ok := r.runSvn(ctx, false, "diff", "--old", oldPath, "--new", newPath)
	if !ok {
		return nil, nil, false
	}
	oldSet, newSet, err := parseUnifiedChanged(out)
	if err != nil {
		return nil, nil, false
	}
	return oldSet, newSet, true
}

// ChangedLines returns the set of lines in newPath that differ from
// oldPath, in newPath's numbering. Contract: the caller guarantees newPath
// exists. A missing oldPath means the whole file is new, so every line
// 1..totalNew is changed. A failed or unparsable diff returns nil
// (unknown), never an error.
func (r *Runner) ChangedLines(ctx context.Context, oldPath, newPath string, totalNew int) LineSet {
	if !exists(newPath) {
		return nil
	}
	if !exists(oldPath) {
		return FullRange(totalNew)
	}
	_, newSet, ok := r.Changed(ctx, oldPath, newPath)
	if !ok {
		return nil
	}
	return newSet
}

// DiffSummarize runs `svn diff --summarize` between two roots and returns
// the changed target paths (last whitespace-separated token per row).
func (r *Runner) DiffSummarize(ctx context.Context, oldRoot, newRoot string) ([]string, bool) {
	if oldRoot == "" || newRoot == "" || !exists(oldRoot) || !exists(newRoot) {
		return nil, false
	}
	out, ok := r.runSvn(ctx, false, "diff", "--summarize", "--old", oldRoot, "--new", newRoot)
	if !ok {
		return nil, false
	}
	var paths []string
	for _, raw := range strings.Split(out, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		paths = append(paths, fields[len(fields)-1])
	}
	return paths, true
}

// normalizeFileHeaders truncates "---"/"+++" file headers at the first tab.
// svn fills the tab-separated fields with "(.../root)\t(revision N)" instead
// of a timestamp, which the unified-diff reader rejects. Hunk body lines are
// unaffected: truncation never changes a line's leading marker or the line
// count, which is all the hunk walk below reads.
func normalizeFileHeaders(text string) string {
	lines := strings.Split(text, "\n")
	for i, ln := range lines {
		if strings.HasPrefix(ln, "--- ") || strings.HasPrefix(ln, "+++ ") {
			if tab := strings.IndexByte(ln, '\t'); tab >= 0 {
				lines[i] = ln[:tab]
			}
		}
	}
	return strings.Join(lines, "\n")
}

// parseUnifiedChanged walks the hunks of a unified diff and accumulates
// 1-based changed line numbers: removed lines in old-side numbering, added
// lines in new-side numbering. Context lines advance both counters.
func parseUnifiedChanged(text string) (oldSet, newSet LineSet, err error) {
	oldSet = make(LineSet)
	newSet = make(LineSet)
	if strings.TrimSpace(text) == "" {
		return oldSet, newSet, nil
	}
	reader := diff.NewMultiFileDiffReader(strings.NewReader(normalizeFileHeaders(text)))
	for {
		fd, rdErr := reader.ReadFile()
		if rdErr == io.EOF {
			return oldSet, newSet, nil
		}
		if rdErr != nil {
			return nil, nil, rdErr
		}
		for _, h := range fd.Hunks {
			oldLine := int(h.OrigStartLine)
			newLine := int(h.NewStartLine)
			body := strings.TrimSuffix(string(h.Body), "\n")
			if body == "" {
				continue
			}
			for _, ln := range strings.Split(body, "\n") {
				switch {
				case strings.HasPrefix(ln, "+"):
					newSet.Add(newLine)
					newLine++
				case strings.HasPrefix(ln, "-"):
					oldSet.Add(oldLine)
					oldLine++
				case strings.HasPrefix(ln, "\\"):
					// "\ No newline at end of file"
				default:
					oldLine++
					newLine++
				}
			}
		}
	}
}
