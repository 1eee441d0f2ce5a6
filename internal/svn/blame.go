package svn

import (
	"context"
	"strings"
)

// BlameLine is the attribution of a single file line. A zero value means
// the blame row could not be parsed; the slice stays aligned 1:1 with the
// file's lines regardless.
type BlameLine struct {
	Rev    string `json:"rev"`
	Author string `json:"author"`
	Date   string `json:"date"`
}

// Valid reports whether the line carries an attribution.
func (b BlameLine) Valid() bool { return b.Rev != "" }

// Blame runs `svn blame -g -v` and returns one entry per file line, or nil
// when blame is unavailable.
func (r *Runner) Blame(ctx context.Context, path string) []BlameLine {
	out, ok := r.runSvn(ctx, true, "blame", "-g", "-v", path)
	if !ok {
		return nil
	}
	raw := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	lines := make([]BlameLine, 0, len(raw))
	for _, ln := range raw {
		lines = append(lines, parseBlameLine(ln))
	}
	return lines
}

// parseBlameLine extracts (rev, author, date) from a verbose blame row of
// the form "  1234  alice  2024-05-01 10:00:00 +0800 (Wed, 01 May 2024) …".
// Date tokens run until the parenthesized weekday.
func parseBlameLine(line string) BlameLine {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) < 2 {
		return BlameLine{}
	}
	var dateTokens []string
	for _, tok := range fields[2:] {
		if strings.HasPrefix(tok, "(") {
			break
		}
		dateTokens = append(dateTokens, tok)
	}
	return BlameLine{
		Rev:    fields[0],
		Author: fields[1],
		Date:   strings.Join(dateTokens, " "),
	}
}
