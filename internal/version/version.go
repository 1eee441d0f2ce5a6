// Package version loads line sequences for a file from each analysis root
// (branch/trunk/merge/base). It is tolerant of missing files and of mixed
// text encodings: content is decoded as UTF-8 first, retried as GBK, and
// finally kept as lossy UTF-8 with replacement runes. A file absent from a
// root is represented by an empty sequence, never by an error.
package version

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
)

// Read loads the lines of relPath under root. A missing file yields
// (nil, nil). Read errors other than absence are returned alongside nil
// lines so callers can record them without aborting the file.
func Read(root, relPath string) ([]string, error) {
	if root == "" {
		return nil, nil
	}
	return ReadFile(filepath.Join(root, filepath.FromSlash(relPath)))
}

// ReadFile loads the lines of an absolute path with the same tolerance as
// Read.
func ReadFile(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return SplitLines(Decode(b)), nil
}

// Exists reports whether path names an existing regular file or directory.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Decode converts raw file bytes to a string: valid UTF-8 is used as-is,
// otherwise a GBK decode is attempted, otherwise invalid sequences are
// replaced with U+FFFD.
func Decode(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	// The GBK decoder substitutes U+FFFD instead of erroring, so a
	// replacement rune in the output is the real failure signal.
	if decoded, err := simplifiedchinese.GBK.NewDecoder().Bytes(b); err == nil && !bytes.ContainsRune(decoded, utf8.RuneError) {
		return string(decoded)
	}
	return string(bytes.ToValidUTF8(b, []byte("�")))
}

// SplitLines splits text into lines the way the rest of the pipeline
// expects: \r\n and bare \r are normalized to \n, the trailing newline does
// not produce a phantom empty line, and empty text yields a nil slice.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}
