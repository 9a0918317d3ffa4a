package main

import (
	"errors"
	"fmt"
	"io"
)

const (
	exitOK      = 0
	exitOutcome = 1
	exitFatal   = 2
)

// exitError carries the process exit status. A nil err means the report
// already told the user what happened.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func fatal(err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: exitFatal, err: err}
}

// reportError prints err when needed and returns the exit status for it.
func reportError(w io.Writer, err error) int {
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(w, "error: %v\n", ee.err)
		}
		return ee.code
	}
	fmt.Fprintf(w, "error: %v\n", err)
	return exitFatal
}
