// Package processtest provides a recording process.Runner for tests.
package processtest

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/dshills/gogat/internal/process"
	"github.com/dshills/gogat/pkg/types"
)

// Response is what a fake command writes and how it exits
type Response struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Missing  bool // Behave as if the executable is not on PATH

	// Echo copies stdin to stdout before Stdout is written
	Echo bool
}

// Call is one recorded invocation
type Call struct {
	Name  string
	Args  []string
	Stdin string
}

// Runner records every command and answers from Responses keyed by name
type Runner struct {
	mu        sync.Mutex
	Responses map[string]Response
	Calls     []Call
}

// New creates a fake runner with the given responses
func New(responses map[string]Response) *Runner {
	if responses == nil {
		responses = map[string]Response{}
	}
	return &Runner{Responses: responses}
}

var _ process.Runner = (*Runner)(nil)

// Run records cmd and writes the configured response
func (r *Runner) Run(ctx context.Context, cmd process.Command) error {
	var stdin []byte
	if cmd.Stdin != nil {
		data, err := io.ReadAll(cmd.Stdin)
		if err != nil {
			return err
		}
		stdin = data
	}

	r.mu.Lock()
	r.Calls = append(r.Calls, Call{Name: cmd.Name, Args: append([]string(nil), cmd.Args...), Stdin: string(stdin)})
	resp := r.Responses[cmd.Name]
	r.mu.Unlock()

	if resp.Missing {
		return &types.ProcessError{Command: cmd.Name, Args: cmd.Args, ExitCode: -1, Err: errors.New("executable file not found in $PATH")}
	}

	if cmd.Stdout != nil {
		if resp.Echo {
			if _, err := cmd.Stdout.Write(stdin); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(cmd.Stdout, resp.Stdout); err != nil {
			return err
		}
	}
	if cmd.Stderr != nil && resp.Stderr != "" {
		_, _ = io.WriteString(cmd.Stderr, resp.Stderr)
	}

	if resp.ExitCode != 0 {
		return &types.ProcessError{Command: cmd.Name, Args: cmd.Args, ExitCode: resp.ExitCode, Stderr: resp.Stderr}
	}
	return nil
}

// CallsTo returns the recorded invocations of name
func (r *Runner) CallsTo(name string) []Call {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Call
	for _, c := range r.Calls {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}
