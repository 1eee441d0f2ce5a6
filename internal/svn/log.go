package svn

import (
	"context"
	"encoding/xml"
	"strconv"
	"strings"
)

// LogEntry is one commit from `svn log --xml --verbose`.
type LogEntry struct {
	Revision string   `json:"revision"`
	Author   string   `json:"author"`
	Date     string   `json:"date"`
	Msg      string   `json:"msg"`
	Paths    []string `json:"paths"`
}

type logXML struct {
	XMLName xml.Name      `xml:"log"`
	Entries []logEntryXML `xml:"logentry"`
}

type logEntryXML struct {
	Revision string   `xml:"revision,attr"`
	Author   string   `xml:"author"`
	Date     string   `xml:"date"`
	Msg      string   `xml:"msg"`
	Paths    []string `xml:"paths>path"`
}

// Log fetches commit history for target, newest first as svn emits it.
// startRev>0 restricts to startRev:HEAD; limit>0 caps the entry count.
// Unavailability (timeout, bad exit, malformed XML) yields ok=false.
func (r *Runner) Log(ctx context.Context, target string, startRev, limit int) ([]LogEntry, bool) {
	args := []string{"log", "--xml", "--verbose", target}
	if startRev > 0 {
		args = append(args, "-r", strconv.Itoa(startRev)+":HEAD")
	}
	if limit > 0 {
		args = append(args, "--limit", strconv.Itoa(limit))
	}
	out, ok := r.runSvn(ctx, true, args...)
	if !ok {
		return nil, false
	}
	return parseLogXML(out)
}

func parseLogXML(out string) ([]LogEntry, bool) {
	var parsed logXML
	if err := xml.Unmarshal([]byte(out), &parsed); err != nil {
		return nil, false
	}
	entries := make([]LogEntry, 0, len(parsed.Entries))
	for _, e := range parsed.Entries {
		paths := make([]string, 0, len(e.Paths))
		for _, p := range e.Paths {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				paths = append(paths, trimmed)
			}
		}
		entries = append(entries, LogEntry{
			Revision: e.Revision,
			Author:   strings.TrimSpace(e.Author),
			Date:     strings.TrimSpace(e.Date),
			Msg:      e.Msg,
			Paths:    paths,
		})
	}
	return entries, true
}
