package highlight

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/dshills/gogat/internal/process"
	"github.com/dshills/gogat/pkg/types"
)

// Highlighter flags
const (
	flagLines          = "--lines="
	flagLang           = "--lang="
	flagTheme          = "--theme="
	flagRenderMarkdown = "--render-markdown"
	flagForceColor     = "--force-color"
)

// Config describes the external highlighter and pager
type Config struct {
	Command       string // Highlighter command line, e.g. "gat"
	Theme         string
	MarkdownTheme string // Used instead of Theme for markdown content
	Pager         string // Pager command line, e.g. "less -R"

	// ForceColorInPager keeps escape codes when output goes to the pager
	ForceColorInPager bool
}

// LineRange is an inclusive 1-based span
type LineRange struct {
	Start int
	End   int
}

func (r LineRange) String() string {
	return strconv.Itoa(r.Start) + ":" + strconv.Itoa(r.End)
}

// Request is one thing to highlight
type Request interface {
	args() []string
	stdin() io.Reader
	markdown() bool
}

// FileRequest highlights a file, or part of it, by path
type FileRequest struct {
	Path     string
	Lines    *LineRange
	Lang     string
	Markdown bool // Implied for .md and .markdown files
}

// ForLocation builds a request for the span of loc
func ForLocation(loc types.Location) FileRequest {
	return FileRequest{Path: loc.Path, Lines: &LineRange{Start: loc.StartLine, End: loc.EndLine}}
}

func (r FileRequest) args() []string {
	args := []string{r.Path}
	if r.Lines != nil {
		args = append(args, flagLines+r.Lines.String())
	}
	if r.Lang != "" {
		args = append(args, flagLang+r.Lang)
	}
	if r.markdown() {
		args = append(args, flagRenderMarkdown)
	}
	return args
}

func (r FileRequest) stdin() io.Reader { return nil }

func (r FileRequest) markdown() bool {
	return r.Markdown || IsMarkdownFile(r.Path)
}

// TextRequest highlights text fed on stdin
type TextRequest struct {
	Text     string
	Lang     string
	Markdown bool
}

func (r TextRequest) args() []string {
	var args []string
	if r.Lang != "" {
		args = append(args, flagLang+r.Lang)
	}
	if r.Markdown {
		args = append(args, flagRenderMarkdown)
	}
	return args
}

func (r TextRequest) stdin() io.Reader { return strings.NewReader(r.Text) }

func (r TextRequest) markdown() bool { return r.Markdown }

// IsMarkdownFile reports whether path has a markdown extension
func IsMarkdownFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// Result carries the exit status of the last process that ran
type Result struct {
	ExitCode int
}

// Invoker spawns the highlighter and, when paging, the pager
type Invoker struct {
	cfg       Config
	command   string
	baseArgs  []string
	pager     string
	pagerArgs []string
	runner    process.Runner
	logger    hclog.Logger
}

// New creates an invoker. An empty pager disables Page.
func New(cfg Config, runner process.Runner, logger hclog.Logger) (*Invoker, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	name, args, err := process.ParseCommandLine(cfg.Command)
	if err != nil {
		return nil, fmt.Errorf("invalid highlighter command: %w", err)
	}

	inv := &Invoker{
		cfg:      cfg,
		command:  name,
		baseArgs: args,
		runner:   runner,
		logger:   logger,
	}

	if cfg.Pager != "" {
		inv.pager, inv.pagerArgs, err = process.ParseCommandLine(cfg.Pager)
		if err != nil {
			return nil, fmt.Errorf("invalid pager command: %w", err)
		}
	}

	return inv, nil
}

// HasPager reports whether Page can run
func (inv *Invoker) HasPager() bool {
	return inv.pager != ""
}

// Args returns the highlighter arguments for req, not including any
// arguments that are part of the configured command line
func (inv *Invoker) Args(req Request, paged bool) []string {
	args := req.args()

	theme := inv.cfg.Theme
	if req.markdown() && inv.cfg.MarkdownTheme != "" {
		theme = inv.cfg.MarkdownTheme
	}
	if theme != "" {
		args = append(args, flagTheme+theme)
	}
	if paged && inv.cfg.ForceColorInPager {
		args = append(args, flagForceColor)
	}
	return args
}

// Show runs the highlighter with its output going straight to out
func (inv *Invoker) Show(ctx context.Context, req Request, out io.Writer) (Result, error) {
	err := inv.highlight(ctx, req, false, out)
	return Result{ExitCode: process.ExitCode(err)}, err
}

// Page captures the highlighter output and feeds it to the pager. The
// highlighter sees a pipe here, so ForceColorInPager adds --force-color to
// keep the escape codes a terminal would have received from Show.
func (inv *Invoker) Page(ctx context.Context, req Request, out io.Writer) (Result, error) {
	if inv.pager == "" {
		return Result{ExitCode: 1}, errors.New("no pager configured")
	}

	var buf bytes.Buffer
	if err := inv.highlight(ctx, req, true, &buf); err != nil {
		return Result{ExitCode: process.ExitCode(err)}, err
	}

	inv.logger.Debug("paging highlighted output", "pager", inv.pager, "bytes", buf.Len())

	err := inv.runner.Run(ctx, process.Command{
		Name:   inv.pager,
		Args:   inv.pagerArgs,
		Stdin:  &buf,
		Stdout: out,
	})
	return Result{ExitCode: process.ExitCode(err)}, err
}

func (inv *Invoker) highlight(ctx context.Context, req Request, paged bool, out io.Writer) error {
	args := append(append([]string(nil), inv.baseArgs...), inv.Args(req, paged)...)
	inv.logger.Debug("invoking highlighter", "command", inv.command, "args", args)

	return inv.runner.Run(ctx, process.Command{
		Name:   inv.command,
		Args:   args,
		Stdin:  req.stdin(),
		Stdout: out,
	})
}
