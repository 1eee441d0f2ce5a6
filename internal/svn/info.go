package svn

import (
	"context"
	"strings"
)

// Info is the parsed output of `svn info` for one target.
type Info struct {
	Available bool              `json:"available"`
	Err       string            `json:"error,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// Unavailable builds an Info carrying only a failure reason.
func Unavailable(reason string) Info {
	return Info{Available: false, Err: reason}
}

// Info runs `svn info` on path and parses the "Key: value" rows into a map
// with lowercased, underscore-joined keys (e.g. "last_changed_rev").
func (r *Runner) Info(ctx context.Context, path string) Info {
	out, ok := r.runSvn(ctx, true, "info", path)
	if !ok {
		return Unavailable("svn info failed")
	}
	return Info{Available: true, Fields: parseInfoFields(out)}
}

func parseInfoFields(out string) map[string]string {
	fields := make(map[string]string)
	for _, line := range strings.Split(out, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), " ", "_")
		if key == "" {
			continue
		}
		fields[key] = strings.TrimSpace(value)
	}
	return fields
}
