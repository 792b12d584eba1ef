package selector

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/dshills/gogat/internal/process"
	"github.com/dshills/gogat/pkg/types"
)

// Mode chooses how ambiguous matches are resolved
type Mode string

const (
	ModeInteractive Mode = "interactive" // Ask the external fuzzy finder
	ModeFirst       Mode = "first"       // Take the first match without asking
)

// Selector picks one label out of several candidates
type Selector interface {
	Select(ctx context.Context, labels []string) (int, error)
}

// FuzzySelector delegates the choice to an external fuzzy finder such as fzf
// or peco. Labels go to its stdin one per line; the chosen line comes back
// on stdout.
type FuzzySelector struct {
	command string
	args    []string
	runner  process.Runner
	logger  hclog.Logger
}

// NewFuzzySelector creates a selector for the given command line
func NewFuzzySelector(commandLine string, runner process.Runner, logger hclog.Logger) (*FuzzySelector, error) {
	name, args, err := process.ParseCommandLine(commandLine)
	if err != nil {
		return nil, fmt.Errorf("invalid selector command: %w", err)
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &FuzzySelector{command: name, args: args, runner: runner, logger: logger}, nil
}

// Select runs the fuzzy finder and maps its answer back to an index.
// Exit status 1 (no match) or 130 (interrupted), and empty output, mean the
// user cancelled.
func (s *FuzzySelector) Select(ctx context.Context, labels []string) (int, error) {
	if len(labels) == 0 {
		return 0, errors.New("nothing to select from")
	}

	var stdout bytes.Buffer
	err := s.runner.Run(ctx, process.Command{
		Name:   s.command,
		Args:   s.args,
		Stdin:  strings.NewReader(strings.Join(labels, "\n") + "\n"),
		Stdout: &stdout,
	})
	if err != nil {
		var perr *types.ProcessError
		if errors.As(err, &perr) && (perr.ExitCode == 1 || perr.ExitCode == 130) {
			return 0, types.ErrSelectionCancelled
		}
		return 0, err
	}

	choice := strings.TrimRight(stdout.String(), "\r\n")
	if i := strings.IndexByte(choice, '\n'); i >= 0 {
		// Multi-select finders may print several lines; the first wins
		choice = choice[:i]
	}
	if choice == "" {
		return 0, types.ErrSelectionCancelled
	}

	for i, label := range labels {
		if label == choice {
			s.logger.Debug("selected definition", "label", choice)
			return i, nil
		}
	}
	return 0, fmt.Errorf("%s returned an unknown choice %q", s.command, choice)
}

// FirstSelector is the non-interactive fallback
type FirstSelector struct{}

// Select always picks the first candidate
func (FirstSelector) Select(_ context.Context, labels []string) (int, error) {
	if len(labels) == 0 {
		return 0, errors.New("nothing to select from")
	}
	return 0, nil
}

// New builds the selector for mode
func New(mode Mode, commandLine string, runner process.Runner, logger hclog.Logger) (Selector, error) {
	switch mode {
	case ModeFirst:
		return FirstSelector{}, nil
	case ModeInteractive, "":
		return NewFuzzySelector(commandLine, runner, logger)
	default:
		return nil, fmt.Errorf("unknown selector mode %q", mode)
	}
}
