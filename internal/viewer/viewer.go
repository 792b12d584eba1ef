package viewer

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/term"

	"github.com/dshills/gogat/internal/extractor"
	"github.com/dshills/gogat/internal/highlight"
	"github.com/dshills/gogat/internal/locator"
	"github.com/dshills/gogat/pkg/types"
)

// SnippetMode chooses how a located definition reaches the highlighter
type SnippetMode string

const (
	// SnippetRange passes the file with a --lines range
	SnippetRange SnippetMode = "range"
	// SnippetExtract extracts the definition and pipes it on stdin
	SnippetExtract SnippetMode = "extract"
)

// PagerMode chooses when highlighted code goes through the pager
type PagerMode string

const (
	PagerAuto   PagerMode = "auto" // Page only when output is a terminal
	PagerAlways PagerMode = "always"
	PagerNever  PagerMode = "never"
)

// Options tunes the viewer
type Options struct {
	Snippet SnippetMode
	Pager   PagerMode
}

// Viewer ties the locator, the extractor and the highlight invoker together
type Viewer struct {
	locator *locator.Locator
	invoker *highlight.Invoker
	out     io.Writer
	opts    Options
	logger  hclog.Logger

	isTerminal func() bool
}

// New creates a viewer writing highlighted output to out
func New(loc *locator.Locator, inv *highlight.Invoker, out io.Writer, opts Options, logger hclog.Logger) *Viewer {
	if opts.Snippet == "" {
		opts.Snippet = SnippetRange
	}
	if opts.Pager == "" {
		opts.Pager = PagerAuto
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Viewer{
		locator:    loc,
		invoker:    inv,
		out:        out,
		opts:       opts,
		logger:     logger,
		isTerminal: func() bool { return writerIsTerminal(out) },
	}
}

func writerIsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Validate checks the option values
func (o Options) Validate() error {
	switch o.Snippet {
	case "", SnippetRange, SnippetExtract:
	default:
		return fmt.Errorf("unknown snippet mode %q", o.Snippet)
	}
	switch o.Pager {
	case "", PagerAuto, PagerAlways, PagerNever:
	default:
		return fmt.Errorf("unknown pager mode %q", o.Pager)
	}
	return nil
}

// Gat highlights a whole file. Markdown files are rendered.
func (v *Viewer) Gat(ctx context.Context, path string) (highlight.Result, error) {
	return v.invoker.Show(ctx, highlight.FileRequest{Path: path}, v.out)
}

// Gess highlights a whole file through the pager
func (v *Viewer) Gess(ctx context.Context, path string) (highlight.Result, error) {
	return v.invoker.Page(ctx, highlight.FileRequest{Path: path}, v.out)
}

// GatMarkdown renders markdown text
func (v *Viewer) GatMarkdown(ctx context.Context, md string) (highlight.Result, error) {
	return v.invoker.Show(ctx, highlight.TextRequest{Text: md, Markdown: true}, v.out)
}

// GessMarkdown renders markdown text through the pager
func (v *Viewer) GessMarkdown(ctx context.Context, md string) (highlight.Result, error) {
	return v.invoker.Page(ctx, highlight.TextRequest{Text: md, Markdown: true}, v.out)
}

// Code writes the plain source of the definition q resolves to
func (v *Viewer) Code(ctx context.Context, w io.Writer, q types.Query) error {
	def, err := v.locator.Locate(ctx, q)
	if err != nil {
		return err
	}
	return v.writeSnippet(w, def)
}

// Gode highlights the definition q resolves to
func (v *Viewer) Gode(ctx context.Context, q types.Query) (highlight.Result, error) {
	def, err := v.locator.Locate(ctx, q)
	if err != nil {
		return highlight.Result{ExitCode: 1}, err
	}
	return v.showDefinition(ctx, def)
}

// Search writes the plain source of one definition named like q, any
// arguments, chosen with the selector when there are several
func (v *Viewer) Search(ctx context.Context, w io.Writer, q types.Query) error {
	def, err := v.pick(ctx, q)
	if err != nil {
		return err
	}
	return v.writeSnippet(w, def)
}

// Gearch is Search with highlighted output
func (v *Viewer) Gearch(ctx context.Context, q types.Query) (highlight.Result, error) {
	def, err := v.pick(ctx, q)
	if err != nil {
		return highlight.Result{ExitCode: 1}, err
	}
	return v.showDefinition(ctx, def)
}

// Doc renders the doc comment of the definition q resolves to as markdown
func (v *Viewer) Doc(ctx context.Context, q types.Query, paged bool) (highlight.Result, error) {
	def, err := v.locator.Locate(ctx, q)
	if err != nil {
		return highlight.Result{ExitCode: 1}, err
	}

	req := highlight.TextRequest{Text: Markdown(def.Symbol), Markdown: true}
	if paged {
		return v.invoker.Page(ctx, req, v.out)
	}
	return v.invoker.Show(ctx, req, v.out)
}

func (v *Viewer) pick(ctx context.Context, q types.Query) (types.Definition, error) {
	q.AnyArgs = true
	q.ArgTypes = nil

	defs, err := v.locator.All(ctx, q)
	if err != nil {
		return types.Definition{}, err
	}
	if len(defs) == 1 {
		return defs[0], nil
	}
	return v.locator.Choose(ctx, defs)
}

func (v *Viewer) writeSnippet(w io.Writer, def types.Definition) error {
	snippet, err := extractor.ExtractFile(def.Location.Path, def.Location.StartLine)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, snippet.Text())
	return err
}

func (v *Viewer) showDefinition(ctx context.Context, def types.Definition) (highlight.Result, error) {
	var req highlight.Request = highlight.ForLocation(def.Location)

	if v.opts.Snippet == SnippetExtract {
		snippet, err := extractor.ExtractFile(def.Location.Path, def.Location.StartLine)
		if err != nil {
			return highlight.Result{ExitCode: 1}, err
		}
		req = snippetRequest(snippet)
	}

	v.logger.Debug("showing definition", "location", def.Location.String(), "mode", v.opts.Snippet)
	return v.show(ctx, req)
}

// CodeAt writes the plain definition that starts at line of path. Any
// language the extractor knows is accepted.
func (v *Viewer) CodeAt(w io.Writer, path string, line int) error {
	snippet, err := extractor.ExtractFile(path, line)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, snippet.Text())
	return err
}

// GodeAt highlights the definition that starts at line of path. The span
// comes from the extractor, so range mode also works for non-Go files.
func (v *Viewer) GodeAt(ctx context.Context, path string, line int) (highlight.Result, error) {
	snippet, err := extractor.ExtractFile(path, line)
	if err != nil {
		return highlight.Result{ExitCode: 1}, err
	}

	var req highlight.Request = highlight.ForLocation(snippet.Location())
	if v.opts.Snippet == SnippetExtract {
		req = snippetRequest(snippet)
	}

	v.logger.Debug("showing snippet", "location", snippet.Location().String(), "lang", snippet.Lang, "mode", v.opts.Snippet)
	return v.show(ctx, req)
}

func snippetRequest(snippet extractor.Snippet) highlight.TextRequest {
	return highlight.TextRequest{Text: snippet.Text(), Lang: snippet.Lang}
}

func (v *Viewer) show(ctx context.Context, req highlight.Request) (highlight.Result, error) {
	if v.paged() {
		return v.invoker.Page(ctx, req, v.out)
	}
	return v.invoker.Show(ctx, req, v.out)
}

func (v *Viewer) paged() bool {
	if !v.invoker.HasPager() {
		return false
	}
	switch v.opts.Pager {
	case PagerAlways:
		return true
	case PagerNever:
		return false
	default:
		return v.isTerminal()
	}
}
