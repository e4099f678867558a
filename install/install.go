// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package install runs the ordered environment checks performed before the
// display plugin can be used: privileges, I2C support, tooling, hardware
// probe and a display smoke test. Checks are idempotent; a failed check
// with a remedy gets exactly one remediation attempt and one re-run.
package install

import (
	"fmt"
	"io"
	"os"

	"github.com/logrusorgru/aurora"
)

// Severity decides whether a failed check aborts the sequence.
type Severity int

const (
	// Fatal failures abort the sequence; the installer exits non-zero.
	Fatal Severity = iota
	// Warning failures are logged and the sequence continues.
	Warning
)

// Check is one predicate in the sequence, optionally with a remediation
// side effect (e.g. installing a missing package).
type Check struct {
	Name     string
	Severity Severity
	// Run returns nil when the environment satisfies the check.
	Run func() error
	// Remedy, when set, is attempted once after a failed Run, followed by
	// a single re-run. No retries beyond that.
	Remedy func() error
	// Hint is an actionable message shown on failure.
	Hint string
}

// FatalError reports the fatal check that aborted the sequence.
type FatalError struct {
	Check string
	Hint  string
	Err   error
}

func (e *FatalError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %v (%s)", e.Check, e.Err, e.Hint)
	}
	return fmt.Sprintf("%s: %v", e.Check, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// RemedyError reports a remediation that itself failed.
type RemedyError struct {
	Check string
	Err   error
}

func (e *RemedyError) Error() string {
	return fmt.Sprintf("%s: remediation failed: %v", e.Check, e.Err)
}

func (e *RemedyError) Unwrap() error { return e.Err }

// Sequence executes checks in order.
type Sequence struct {
	Checks []Check
	// Out receives the per-check status lines. Defaults to stdout.
	Out io.Writer
}

// Run executes every check until the first fatal failure. It returns nil
// when the environment is usable, a *FatalError when a fatal check failed,
// or a *RemedyError when a fatal check's remediation failed.
func (s *Sequence) Run() error {
	out := s.Out
	if out == nil {
		out = os.Stdout
	}
	for _, c := range s.Checks {
		err := c.Run()
		if err == nil {
			fmt.Fprintf(out, "%s %s\n", aurora.Green("✓"), c.Name)
			continue
		}
		if c.Remedy != nil {
			fmt.Fprintf(out, "%s %s: %v, attempting fix\n", aurora.Yellow("!"), c.Name, err)
			if rerr := c.Remedy(); rerr != nil {
				if c.Severity == Fatal {
					fmt.Fprintf(out, "%s %s\n", aurora.Red("✗"), c.Name)
					return &RemedyError{Check: c.Name, Err: rerr}
				}
				s.warn(out, c, fmt.Errorf("%v (fix attempt failed: %v)", err, rerr))
				continue
			}
			if err = c.Run(); err == nil {
				fmt.Fprintf(out, "%s %s (fixed)\n", aurora.Green("✓"), c.Name)
				continue
			}
		}
		if c.Severity == Fatal {
			fmt.Fprintf(out, "%s %s: %v\n", aurora.Red("✗"), c.Name, err)
			return &FatalError{Check: c.Name, Hint: c.Hint, Err: err}
		}
		s.warn(out, c, err)
	}
	return nil
}

func (s *Sequence) warn(out io.Writer, c Check, err error) {
	if c.Hint != "" {
		fmt.Fprintf(out, "%s %s: %v (%s)\n", aurora.Yellow("✗"), c.Name, err, c.Hint)
		return
	}
	fmt.Fprintf(out, "%s %s: %v\n", aurora.Yellow("✗"), c.Name, err)
}
