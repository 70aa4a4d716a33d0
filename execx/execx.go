// Package execx runs external tools on behalf of collaborators.
package execx

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"

	"github.com/lex00/pakman/errs"
	"github.com/mattn/go-shellwords"
)

// Commander runs a shell-like command line.
type Commander interface {
	Run(ctx context.Context, command string) error
}

// Runner executes commands as subprocesses.
type Runner struct {
	// Dir is the working directory; empty means the current one.
	Dir string
	// Env is appended to the process environment.
	Env    []string
	Stdout io.Writer
	Stderr io.Writer
}

// Split splits a command line into words, honoring quotes.
func Split(command string) ([]string, error) {
	words, err := shellwords.Parse(command)
	if err != nil {
		return nil, errs.Wrapf(errs.KindDomain, err, "invalid command line %q", command)
	}
	if len(words) == 0 {
		return nil, errs.Domain("empty command line")
	}
	return words, nil
}

// Run executes command and waits for it.
//
// A missing executable is an invalid-system-requirements error, a non-zero
// exit status a domain error, and a cancelled ctx a user interrupt.
func (r *Runner) Run(ctx context.Context, command string) error {
	words, err := Split(command)
	if err != nil {
		return err
	}

	c := exec.CommandContext(ctx, words[0], words[1:]...)
	c.Dir = r.Dir
	if len(r.Env) > 0 {
		c.Env = append(os.Environ(), r.Env...)
	}
	c.Stdout = r.Stdout
	c.Stderr = r.Stderr

	err = c.Run()
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); errors.Is(ctxErr, context.Canceled) {
		return errs.Interrupted(ctxErr)
	}
	if errors.Is(err, exec.ErrNotFound) {
		return errs.Wrapf(errs.KindInvalidSystemRequirements, err, "'%s' is required but was not found", words[0])
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return errs.Wrapf(errs.KindDomain, err, "error %d while executing %s", exitErr.ExitCode(), command)
	}
	return errs.Wrapf(errs.KindDomain, err, "failed to execute %s", command)
}

// LookPath reports whether tool is available on PATH.
func LookPath(tool string) bool {
	_, err := exec.LookPath(tool)
	return err == nil
}
