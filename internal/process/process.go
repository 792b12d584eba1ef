package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/mattn/go-shellwords"

	"github.com/dshills/gogat/pkg/types"
)

// Command is one external process invocation. Nil streams are not connected.
type Command struct {
	Name   string
	Args   []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Runner spawns a command and waits for it to exit
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// ExecRunner runs commands with os/exec. Failures are *types.ProcessError.
type ExecRunner struct {
	logger hclog.Logger
}

// NewExecRunner creates a runner that logs each invocation at debug level
func NewExecRunner(logger hclog.Logger) *ExecRunner {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &ExecRunner{logger: logger}
}

// Run starts cmd and blocks until it exits. Standard error is always
// captured for diagnostics and also copied to cmd.Stderr when set. When ctx
// is done the child receives an interrupt and Run still waits for it.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) error {
	path, err := exec.LookPath(cmd.Name)
	if err != nil {
		return &types.ProcessError{Command: cmd.Name, Args: cmd.Args, ExitCode: -1, Err: err}
	}

	var stderr bytes.Buffer
	c := exec.CommandContext(ctx, path, cmd.Args...)
	// Pagers and fuzzy finders own the terminal and must get the chance to
	// restore it, so cancellation interrupts the child instead of killing it.
	c.Cancel = func() error {
		if err := c.Process.Signal(os.Interrupt); err != nil {
			return c.Process.Kill()
		}
		return nil
	}
	c.Stdin = cmd.Stdin
	c.Stdout = cmd.Stdout
	if cmd.Stderr != nil {
		c.Stderr = io.MultiWriter(&stderr, cmd.Stderr)
	} else {
		c.Stderr = &stderr
	}

	r.logger.Debug("running command", "command", cmd.Name, "args", cmd.Args)

	if err := c.Run(); err != nil {
		perr := &types.ProcessError{
			Command:  cmd.Name,
			Args:     cmd.Args,
			ExitCode: -1,
			Stderr:   stderr.String(),
			Err:      err,
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			perr.ExitCode = exitErr.ExitCode()
		}
		r.logger.Debug("command failed", "command", cmd.Name, "exit_code", perr.ExitCode)
		return perr
	}

	return nil
}

// ExitCode extracts the exit status carried by err: 0 for nil, the child's
// status for a ProcessError that ran, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var perr *types.ProcessError
	if errors.As(err, &perr) && perr.ExitCode > 0 {
		return perr.ExitCode
	}
	return 1
}

// ParseCommandLine splits a configured command line such as "less -R" into
// the executable and its arguments
func ParseCommandLine(line string) (string, []string, error) {
	words, err := shellwords.Parse(line)
	if err != nil {
		return "", nil, fmt.Errorf("invalid command line %q: %w", line, err)
	}
	if len(words) == 0 {
		return "", nil, fmt.Errorf("empty command line")
	}
	return words[0], words[1:], nil
}
