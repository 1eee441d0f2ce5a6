// Package svn wraps the external svn command line client (and sibling line
// tools such as diff3) behind an unavailability-tolerant runner. Every
// operation returns data plus an ok flag instead of an error: a missing
// binary, a timeout, an unexpected exit status or undecodable output all
// degrade that one signal to "unavailable" so callers can fall back to a
// weaker resolution rule rather than fail a file.
package svn

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"

	"github.com/Nita121388/Merge-Annotator/internal/version"
)

// DefaultTimeout bounds a single external invocation.
const DefaultTimeout = 60 * time.Second

// Runner executes external tools with a shared timeout policy.
// The zero value runs "svn" from PATH with DefaultTimeout.
type Runner struct {
	// SvnPath overrides the svn binary ("svn" when empty).
	SvnPath string
	// Timeout bounds each invocation (DefaultTimeout when zero).
	Timeout time.Duration
}

func (r *Runner) svn() string {
	if r != nil && r.SvnPath != "" {
		return r.SvnPath
	}
	return "svn"
}

func (r *Runner) timeout() time.Duration {
	if r != nil && r.Timeout > 0 {
		return r.Timeout
	}
	return DefaultTimeout
}

// RunTool executes an arbitrary external tool and returns its decoded
// stdout. Exit status 1 is accepted alongside 0 because the diff family of
// tools uses 1 to mean "differences found". Anything else, including spawn
// failures and timeouts, reports ok=false.
func (r *Runner) RunTool(ctx context.Context, name string, args ...string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout())
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) || exitErr.ExitCode() != 1 {
			return "", false
		}
	}
	return version.Decode(stdout.Bytes()), true
}

func exists(path string) bool { return version.Exists(path) }

// runSvn invokes the svn client. strict demands exit status 0; otherwise
// the diff convention (0 or 1) applies.
func (r *Runner) runSvn(ctx context.Context, strict bool, args ...string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout())
	defer cancel()

	cmd := exec.CommandContext(ctx, r.svn(), args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if strict || !errors.As(err, &exitErr) || exitErr.ExitCode() != 1 {
			return "", false
		}
	}
	return version.Decode(stdout.Bytes()), true
}
