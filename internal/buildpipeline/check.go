// Package buildpipeline runs the external build tool and reports the progress
// of each fix-up cycle.
package buildpipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// DefaultProgram is the build tool invoked when none is configured.
const DefaultProgram = "cargo"

// waitDelay bounds how long a cancelled run may keep its pipes open.
const waitDelay = 5 * time.Second

// stderrTailLines bounds how much of the tool's stderr ends up in errors.
const stderrTailLines = 20

// CheckError reports a build tool run that failed without producing any
// diagnostic records, usually a broken manifest or a missing toolchain.
type CheckError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *CheckError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Command, e.ExitCode)
	if e.Stderr != "" {
		msg += ":\n" + e.Stderr
	}
	return msg
}

// CargoChecker runs `cargo check --message-format json` and returns its stdout.
type CargoChecker struct {
	// Program defaults to DefaultProgram.
	Program string
	// Dir is the working directory; empty means the current one.
	Dir string
	// Env is appended to the inherited environment.
	Env []string
	// Stderr, if set, additionally receives the tool's stderr as it runs.
	Stderr io.Writer
}

// Args returns the arguments passed to the build tool.
func (c *CargoChecker) Args(extraArgs []string) []string {
	args := make([]string, 0, len(extraArgs)+3)
	args = append(args, "check")
	args = append(args, extraArgs...)
	return append(args, "--message-format", "json")
}

// Check runs the build tool once and returns its complete stdout.
//
// A non-zero exit is expected while the code does not compile, so it is only
// an error when stdout is empty. Cancelling ctx kills the process.
func (c *CargoChecker) Check(ctx context.Context, extraArgs []string) ([]byte, error) {
	program := c.Program
	if program == "" {
		program = DefaultProgram
	}
	args := c.Args(extraArgs)

	// #nosec G204 -- arguments come from the user's own command line
	cmd := exec.CommandContext(ctx, program, args...)
	cmd.Dir = c.Dir
	cmd.WaitDelay = waitDelay
	if len(c.Env) > 0 {
		cmd.Env = append(cmd.Environ(), c.Env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if c.Stderr != nil {
		cmd.Stderr = io.MultiWriter(&stderr, c.Stderr)
	}

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err == nil {
		return stdout.Bytes(), nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return nil, fmt.Errorf("failed to run %s: %w", program, err)
	}
	if stdout.Len() > 0 {
		return stdout.Bytes(), nil
	}
	return nil, &CheckError{
		Command:  program + " " + strings.Join(args, " "),
		ExitCode: exitErr.ExitCode(),
		Stderr:   tailLines(stderr.String(), stderrTailLines),
	}
}

func tailLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
