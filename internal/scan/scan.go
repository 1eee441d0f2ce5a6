// Package scan discovers the candidate files of an analysis run: a
// deterministic, extension-filtered walk of the merge root, plus the path
// resolution used to turn `svn diff --summarize` targets back into
// merge-relative paths.
package scan

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Collect walks root and returns the sorted relative paths (forward
// slashes) of regular files whose lowercase extension is in exts. An empty
// exts set accepts everything.
func Collect(root string, exts map[string]struct{}) ([]string, error) {
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	var files []string
	walkErr := filepath.WalkDir(rootAbs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == rootAbs {
				return err
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !extMatch(path, exts) {
			return nil
		}
		rel, relErr := filepath.Rel(rootAbs, path)
		if relErr != nil {
			return nil
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}
	sort.Strings(files)
	return files, nil
}

func extMatch(path string, exts map[string]struct{}) bool {
	if len(exts) == 0 {
		return true
	}
	_, ok := exts[strings.ToLower(filepath.Ext(path))]
	return ok
}

// ResolveRel maps a summarize-diff target (absolute or root-relative, any
// separator) onto a path relative to one of the given roots. It returns ""
// when the target escapes every root or does not exist under any of them.
func ResolveRel(target string, roots ...string) string {
	if target == "" {
		return ""
	}
	if filepath.IsAbs(target) {
		clean := filepath.Clean(target)
		for _, root := range roots {
			rootAbs, err := filepath.Abs(root)
			if err != nil {
				continue
			}
			rel, err := filepath.Rel(rootAbs, clean)
			if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
				continue
			}
			return filepath.ToSlash(rel)
		}
		return ""
	}
	candidate := filepath.FromSlash(strings.ReplaceAll(target, "\\", "/"))
	for _, root := range roots {
		rootAbs, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		abs := filepath.Join(rootAbs, candidate)
		rel, err := filepath.Rel(rootAbs, abs)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		if _, statErr := os.Stat(abs); statErr == nil {
			return filepath.ToSlash(rel)
		}
	}
	return ""
}

// IsDir reports whether path names an existing directory.
func IsDir(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}
