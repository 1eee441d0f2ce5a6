// Package candidates turns a branch's commit history into ordered feature
// candidates: adjacent commits that share a topic (or failing that, a path
// group) are folded into one candidate, preserving commit order so a
// reviewer can pick whole features to merge.
package candidates

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/Nita121388/Merge-Annotator/internal/svn"
)

// Candidate is one contiguous run of commits sharing a grouping key.
type Candidate struct {
	Key     string         `json:"key"`
	Entries []svn.LogEntry `json:"entries"`
	Paths   []string       `json:"paths"`
}

const fallbackKey = "uncategorized"

var genericPrefixes = []string{"fix", "feat", "refactor", "docs", "chore", "perf", "test", "style"}

var (
	revRangeRe = regexp.MustCompile(`(?i)\br\d{3,}(?:\s*[-/]\s*r?\d{3,})+\b`)
	revRunRe   = regexp.MustCompile(`(?i)\br\d{3,}(?:r\d{3,})+\b`)
	revSoloRe  = regexp.MustCompile(`(?i)\br\d{3,}\b`)
	spaceRe    = regexp.MustCompile(`\s+`)
)

func firstNonEmptyLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if candidate := strings.TrimSpace(line); candidate != "" {
			return candidate
		}
	}
	return ""
}

// StripRevisionNoise removes revision numbers and revision ranges from a
// commit subject so they never become grouping topics.
func StripRevisionNoise(text string) string {
	if text == "" {
		return ""
	}
	value := revRangeRe.ReplaceAllString(text, " ")
	value = revRunRe.ReplaceAllString(value, " ")
	value = revSoloRe.ReplaceAllString(value, " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(value, " "))
}

// CleanSubject returns the first non-empty message line with revision noise
// and leading/trailing punctuation removed.
func CleanSubject(text string) string {
	first := firstNonEmptyLine(text)
	if first == "" {
		return ""
	}
	cleaned := StripRevisionNoise(first)
	cleaned = strings.Trim(cleaned, " -:;、，。")
	return strings.TrimSpace(spaceRe.ReplaceAllString(cleaned, " "))
}

func isGeneric(token string) bool {
	token = strings.ToLower(token)
	for _, g := range genericPrefixes {
		if token == g {
			return true
		}
	}
	return false
}

func truncRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// ExtractTopic derives a grouping topic from a commit message subject:
// bracketed tags win, then a short head before a colon or dash, then the
// tail after a generic prefix (fix/feat/...), else the truncated subject.
func ExtractTopic(text string) string {
	first := CleanSubject(text)
	if first == "" {
		return ""
	}
	if strings.HasPrefix(first, "[") {
		if end := strings.Index(first, "]"); end >= 0 {
			return strings.TrimSpace(first[1:end])
		}
	}
	if strings.HasPrefix(first, "【") {
		if end := strings.Index(first, "】"); end >= 0 {
			return strings.TrimSpace(first[len("【"):end])
		}
	}
	for _, sep := range []string{"：", ":", "-"} {
		head, tail, found := strings.Cut(first, sep)
		if !found {
			continue
		}
		head = strings.TrimSpace(head)
		tail = strings.TrimSpace(tail)
		if isGeneric(head) && tail != "" {
			return truncRunes(tail, 20)
		}
		if n := len([]rune(head)); n > 0 && n <= 20 {
			return head
		}
	}
	lower := strings.ToLower(first)
	for _, token := range genericPrefixes {
		if strings.HasPrefix(lower, token+" ") {
			if tail := strings.TrimSpace(first[len(token)+1:]); tail != "" {
				return truncRunes(tail, 20)
			}
			return token
		}
	}
	return strings.TrimSpace(truncRunes(first, 20))
}

// ShortMessage returns the cleaned subject truncated to limit runes with an
// ellipsis.
func ShortMessage(text string, limit int) string {
	first := CleanSubject(text)
	if first == "" {
		return ""
	}
	if len([]rune(first)) <= limit {
		return first
	}
	return truncRunes(first, limit-3) + "..."
}

func normalizePath(relPath string) string {
	value := strings.ReplaceAll(relPath, "\\", "/")
	if strings.Contains(value, "://") {
		if parsed, err := url.Parse(value); err == nil && parsed.Path != "" {
			value = parsed.Path
		}
	}
	return value
}

// stripRepoPrefix drops the repository layout prefix: everything up to and
// including "branches/<name>" or "tags/<name>", or up to "trunk".
func stripRepoPrefix(parts []string) []string {
	for idx, part := range parts {
		switch part {
		case "branches", "tags":
			if idx+1 < len(parts) {
				return parts[idx+2:]
			}
		case "trunk":
			return parts[idx+1:]
		}
	}
	return parts
}

// GroupKeyForPath maps a changed path to its directory group at the given
// depth. Root-level files and depth <= 0 map to "ROOT".
func GroupKeyForPath(relPath string, depth int) string {
	var parts []string
	for _, part := range strings.Split(normalizePath(relPath), "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	parts = stripRepoPrefix(parts)
	if len(parts) == 0 {
		return "ROOT"
	}
	dirs := parts[:len(parts)-1]
	if depth <= 0 || len(dirs) == 0 {
		return "ROOT"
	}
	if depth >= len(dirs) {
		return strings.Join(dirs, "/")
	}
	return strings.Join(dirs[:depth], "/")
}

func entryPathGroups(entry svn.LogEntry, depth int) []string {
	var groups []string
	seen := make(map[string]struct{})
	for _, raw := range entry.Paths {
		key := GroupKeyForPath(raw, depth)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		groups = append(groups, key)
	}
	return groups
}

// Build folds log entries (given newest-first, as svn log emits them) into
// candidates in oldest-first order. Adjacent entries with the same key are
// one candidate; the key is the topic, else the first path group, else a
// short message hint.
func Build(entries []svn.LogEntry, depth int) []Candidate {
	if len(entries) == 0 {
		return nil
	}
	type group struct {
		key     string
		entries []svn.LogEntry
		paths   map[string]struct{}
	}
	var groups []*group
	var current *group
	for idx := len(entries) - 1; idx >= 0; idx-- {
		entry := entries[idx]
		pathGroups := entryPathGroups(entry, depth)
		key := ExtractTopic(entry.Msg)
		if key == "" && len(pathGroups) > 0 {
			key = pathGroups[0]
		}
		if key == "" {
			key = ShortMessage(entry.Msg, 40)
		}
		if key == "" {
			key = fallbackKey
		}
		if current != nil && current.key == key {
			current.entries = append(current.entries, entry)
		} else {
			current = &group{key: key, paths: make(map[string]struct{})}
			current.entries = append(current.entries, entry)
			groups = append(groups, current)
		}
		for _, pg := range pathGroups {
			current.paths[pg] = struct{}{}
		}
	}

	out := make([]Candidate, 0, len(groups))
	for _, g := range groups {
		paths := make([]string, 0, len(g.paths))
		for p := range g.paths {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		out = append(out, Candidate{Key: g.key, Entries: g.entries, Paths: paths})
	}
	return out
}

// Render formats candidates for terminal output.
func Render(cands []Candidate, showRevs bool) string {
	var b strings.Builder
	if len(cands) == 0 {
		b.WriteString("no feature candidates derived from the commit log\n")
		return b.String()
	}
	b.WriteString("feature candidates (commit order)\n")
	for _, cand := range cands {
		first := cand.Entries[0].Revision
		last := cand.Entries[len(cand.Entries)-1].Revision
		if showRevs && first != "" && last != "" {
			header := "r" + first
			if first != last {
				header = "r" + first + "-r" + last
			}
			fmt.Fprintf(&b, "- %s %s (%d commits)\n", header, cand.Key, len(cand.Entries))
		} else {
			fmt.Fprintf(&b, "- %s (%d commits)\n", cand.Key, len(cand.Entries))
		}
		if len(cand.Paths) > 0 {
			hint := strings.Join(cand.Paths[:min(3, len(cand.Paths))], ", ")
			if len(cand.Paths) > 3 {
				hint += "..."
			}
			fmt.Fprintf(&b, "  paths: %s\n", hint)
		}
		for _, entry := range cand.Entries[:min(3, len(cand.Entries))] {
			msg := ShortMessage(entry.Msg, 60)
			switch {
			case msg != "" && entry.Revision != "":
				fmt.Fprintf(&b, "  - r%s %s\n", entry.Revision, msg)
			case msg != "":
				fmt.Fprintf(&b, "  - %s\n", msg)
			}
		}
	}
	return b.String()
}
