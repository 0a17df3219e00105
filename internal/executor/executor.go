// Package executor wraps external process invocation for compiling, linking
// and running produced binaries. One primitive serves all three.
package executor

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/kuranne/run/internal/runerr"
)

// Commander interface for testing
type Commander interface {
	Run() error
}

// Executor runs external commands with stdout/stderr passed through.
type Executor struct {
	// DryRun prints commands instead of spawning them.
	DryRun bool

	// Timed prints elapsed wall time after each run.
	Timed bool

	execCommand func(name string, args ...string) Commander
}

// New creates an executor backed by os/exec.
func New() *Executor {
	return &Executor{
		execCommand: func(name string, args ...string) Commander {
			return exec.Command(name, args...)
		},
	}
}

// Run executes argv and returns a non-nil error on a missing command or a
// non-zero exit. The tag labels the printed command line (COMPILE, LINK,
// RUN).
func (e *Executor) Run(tag string, argv []string) error {
	if len(argv) == 0 {
		return runerr.Execution("empty command")
	}

	cmdStr := strings.Join(argv, " ")

	if e.DryRun {
		fmt.Printf("[DRY-RUN] %s: %s\n", tag, cmdStr)
		return nil
	}

	fmt.Printf("[%s] %s\n", tag, cmdStr)

	c := e.execCommand(argv[0], argv[1:]...)
	if cmd, ok := c.(*exec.Cmd); ok {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}

	start := time.Now()
	err := c.Run()
	if e.Timed {
		fmt.Printf("[TIME] %.3fs\n", time.Since(start).Seconds())
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return fmt.Errorf("%s exited with code %d", argv[0], exitErr.ExitCode())
		}

		return fmt.Errorf("failed to run %s: %w", argv[0], err)
	}

	return nil
}

// WithCommander replaces the process-spawning seam. Used by tests.
func (e *Executor) WithCommander(fn func(name string, args ...string) Commander) *Executor {
	e.execCommand = fn
	return e
}
