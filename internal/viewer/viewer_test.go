package viewer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/gogat/internal/highlight"
	"github.com/dshills/gogat/internal/indexer"
	"github.com/dshills/gogat/internal/locator"
	"github.com/dshills/gogat/internal/process/processtest"
	"github.com/dshills/gogat/pkg/types"
)

// Add spans lines 10-12
const mathSource = `package math

import "fmt"

// Calc accumulates values.
type Calc struct {
	total int
}

func Add(x int, y int) int {
	return x + y
}

// Add adds v to the running total.
func (c *Calc) Add(v int) {
	c.total += v
}

func Describe(v any) string {
	return fmt.Sprint(v)
}
`

const highlighted = "\x1b[1mfunc\x1b[0m Add(x int, y int) int {\n"

type fixedSelector struct {
	choice int
	labels []string
}

func (s *fixedSelector) Select(_ context.Context, labels []string) (int, error) {
	s.labels = labels
	return s.choice, nil
}

type fixture struct {
	root   string
	runner *processtest.Runner
	out    *bytes.Buffer
	viewer *Viewer
	sel    *fixedSelector
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "math.go"), []byte(mathSource), 0644))

	runner := processtest.New(map[string]processtest.Response{
		"gat":  {Stdout: highlighted},
		"less": {Echo: true},
	})
	inv, err := highlight.New(highlight.Config{Command: "gat", Pager: "less -R"}, runner, nil)
	require.NoError(t, err)

	sel := &fixedSelector{}
	loc := locator.New(locator.NewSourceResolver(root, indexer.DiscoveryOptions{}, nil), sel, nil)
	out := &bytes.Buffer{}

	return &fixture{
		root:   root,
		runner: runner,
		out:    out,
		viewer: New(loc, inv, out, opts, nil),
		sel:    sel,
	}
}

var addQuery = types.Query{Name: "Add", ArgTypes: []string{"int", "int"}}

func TestGode_RangeMode(t *testing.T) {
	f := newFixture(t, Options{Pager: PagerNever})

	res, err := f.viewer.Gode(context.Background(), addQuery)
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)

	calls := f.runner.CallsTo("gat")
	require.Len(t, calls, 1)
	assert.Equal(t, []string{filepath.Join(f.root, "math.go"), "--lines=10:12"}, calls[0].Args)
	assert.Empty(t, calls[0].Stdin)
	assert.Empty(t, f.runner.CallsTo("less"))
	assert.Equal(t, highlighted, f.out.String())
	assert.Nil(t, f.sel.labels, "single match must not reach the selector")
}

func TestGode_NotFoundInvokesNothing(t *testing.T) {
	f := newFixture(t, Options{Pager: PagerAlways})

	_, err := f.viewer.Gode(context.Background(), types.Query{Name: "Add", ArgTypes: []string{"string"}})
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.Empty(t, f.runner.Calls)
	assert.Empty(t, f.out.String())
}

func TestGode_ExtractMode(t *testing.T) {
	f := newFixture(t, Options{Snippet: SnippetExtract, Pager: PagerNever})

	_, err := f.viewer.Gode(context.Background(), addQuery)
	require.NoError(t, err)

	calls := f.runner.CallsTo("gat")
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"--lang=go"}, calls[0].Args)
	assert.Equal(t, "func Add(x int, y int) int {\n\treturn x + y\n}\n", calls[0].Stdin)
}

func TestGode_PagerModes(t *testing.T) {
	tests := []struct {
		name     string
		mode     PagerMode
		terminal bool
		paged    bool
	}{
		{"always", PagerAlways, false, true},
		{"never on a terminal", PagerNever, true, false},
		{"auto on a terminal", PagerAuto, true, true},
		{"auto when redirected", PagerAuto, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, Options{Pager: tt.mode})
			f.viewer.isTerminal = func() bool { return tt.terminal }

			_, err := f.viewer.Gode(context.Background(), addQuery)
			require.NoError(t, err)

			pager := f.runner.CallsTo("less")
			if tt.paged {
				require.Len(t, pager, 1)
				assert.Equal(t, []string{"-R"}, pager[0].Args)
				assert.Equal(t, highlighted, pager[0].Stdin)
			} else {
				assert.Empty(t, pager)
			}
			// Paging changes the destination only
			assert.Equal(t, highlighted, f.out.String())
		})
	}
}

func TestGode_HighlighterFailure(t *testing.T) {
	f := newFixture(t, Options{Pager: PagerNever})
	f.runner.Responses["gat"] = processtest.Response{ExitCode: 2, Stderr: "gat: unknown theme\n"}

	res, err := f.viewer.Gode(context.Background(), addQuery)
	assert.ErrorIs(t, err, types.ErrProcessFailure)
	assert.Contains(t, err.Error(), "unknown theme")
	assert.Equal(t, 2, res.ExitCode)
}

func TestGess_Markdown(t *testing.T) {
	f := newFixture(t, Options{})

	res, err := f.viewer.Gess(context.Background(), "notes.md")
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)

	gat := f.runner.CallsTo("gat")
	require.Len(t, gat, 1)
	assert.Equal(t, []string{"notes.md", "--render-markdown"}, gat[0].Args)

	pager := f.runner.CallsTo("less")
	require.Len(t, pager, 1)
	assert.Equal(t, highlighted, pager[0].Stdin)
	assert.Equal(t, highlighted, f.out.String())
}

func TestGat_PlainFile(t *testing.T) {
	f := newFixture(t, Options{})
	path := filepath.Join(f.root, "math.go")

	_, err := f.viewer.Gat(context.Background(), path)
	require.NoError(t, err)

	gat := f.runner.CallsTo("gat")
	require.Len(t, gat, 1)
	assert.Equal(t, []string{path}, gat[0].Args)
	assert.NotContains(t, gat[0].Args, "--render-markdown")
	assert.Empty(t, f.runner.CallsTo("less"))
}

func TestGatMarkdown(t *testing.T) {
	f := newFixture(t, Options{})
	md := "# Title\n\nSome *text*.\n"

	_, err := f.viewer.GatMarkdown(context.Background(), md)
	require.NoError(t, err)

	gat := f.runner.CallsTo("gat")
	require.Len(t, gat, 1)
	assert.Equal(t, []string{"--render-markdown"}, gat[0].Args)
	assert.Equal(t, md, gat[0].Stdin)

	_, err = f.viewer.GessMarkdown(context.Background(), md)
	require.NoError(t, err)
	assert.Len(t, f.runner.CallsTo("less"), 1)
}

func TestCode(t *testing.T) {
	f := newFixture(t, Options{})
	var w bytes.Buffer

	require.NoError(t, f.viewer.Code(context.Background(), &w, addQuery))
	assert.Equal(t, "func Add(x int, y int) int {\n\treturn x + y\n}\n", w.String())
	assert.Empty(t, f.runner.Calls)
}

func TestCode_GroupedDeclarations(t *testing.T) {
	f := newFixture(t, Options{})
	src := `package math

const (
	A = 1
	B = 2
)

type (
	T struct {
		X int
	}
)
`
	require.NoError(t, os.WriteFile(filepath.Join(f.root, "groups.go"), []byte(src), 0644))

	tests := []struct {
		name string
		want string
	}{
		{"B", "\tB = 2\n"},
		{"T", "\tT struct {\n\t\tX int\n\t}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var w bytes.Buffer
			require.NoError(t, f.viewer.Code(context.Background(), &w, types.Query{Name: tt.name, AnyArgs: true}))
			assert.Equal(t, tt.want, w.String())
		})
	}
}

const pythonSource = `def area(w, h):
    return w * h

def perimeter(w, h):
    return 2 * (w + h)
`

func TestCodeAt(t *testing.T) {
	f := newFixture(t, Options{})
	path := filepath.Join(f.root, "shapes.py")
	require.NoError(t, os.WriteFile(path, []byte(pythonSource), 0644))

	var w bytes.Buffer
	require.NoError(t, f.viewer.CodeAt(&w, path, 4))
	assert.Equal(t, "def perimeter(w, h):\n    return 2 * (w + h)\n", w.String())
	assert.Empty(t, f.runner.Calls)

	err := f.viewer.CodeAt(&w, filepath.Join(f.root, "missing.py"), 1)
	assert.ErrorIs(t, err, types.ErrIO)
}

func TestGodeAt(t *testing.T) {
	t.Run("range mode uses the extracted span", func(t *testing.T) {
		f := newFixture(t, Options{Pager: PagerNever})
		path := filepath.Join(f.root, "shapes.py")
		require.NoError(t, os.WriteFile(path, []byte(pythonSource), 0644))

		_, err := f.viewer.GodeAt(context.Background(), path, 1)
		require.NoError(t, err)

		calls := f.runner.CallsTo("gat")
		require.Len(t, calls, 1)
		assert.Equal(t, []string{path, "--lines=1:2"}, calls[0].Args)
	})

	t.Run("extract mode pipes with the language", func(t *testing.T) {
		f := newFixture(t, Options{Snippet: SnippetExtract, Pager: PagerNever})
		path := filepath.Join(f.root, "shapes.py")
		require.NoError(t, os.WriteFile(path, []byte(pythonSource), 0644))

		_, err := f.viewer.GodeAt(context.Background(), path, 4)
		require.NoError(t, err)

		calls := f.runner.CallsTo("gat")
		require.Len(t, calls, 1)
		assert.Equal(t, []string{"--lang=python"}, calls[0].Args)
		assert.Equal(t, "def perimeter(w, h):\n    return 2 * (w + h)\n", calls[0].Stdin)
	})
}

func TestSearch_SelectsAmongAllArities(t *testing.T) {
	f := newFixture(t, Options{})
	f.sel.choice = 1
	var w bytes.Buffer

	require.NoError(t, f.viewer.Search(context.Background(), &w, types.Query{Name: "Add"}))
	require.Len(t, f.sel.labels, 2)
	assert.Contains(t, f.sel.labels[0], "func Add(x int, y int) int")
	assert.Contains(t, f.sel.labels[1], "func (c *Calc) Add(v int)")
	assert.Equal(t, "func (c *Calc) Add(v int) {\n\tc.total += v\n}\n", w.String())
}

func TestGearch(t *testing.T) {
	f := newFixture(t, Options{Pager: PagerNever})
	f.sel.choice = 1

	_, err := f.viewer.Gearch(context.Background(), types.Query{Name: "Add", ArgTypes: []string{"string"}})
	require.NoError(t, err)

	gat := f.runner.CallsTo("gat")
	require.Len(t, gat, 1)
	assert.Equal(t, []string{filepath.Join(f.root, "math.go"), "--lines=15:17"}, gat[0].Args)
}

func TestDoc(t *testing.T) {
	f := newFixture(t, Options{})

	_, err := f.viewer.Doc(context.Background(), types.Query{Receiver: "Calc", Name: "Add", AnyArgs: true}, false)
	require.NoError(t, err)

	gat := f.runner.CallsTo("gat")
	require.Len(t, gat, 1)
	assert.Equal(t, []string{"--render-markdown"}, gat[0].Args)
	assert.Contains(t, gat[0].Stdin, "# math.Calc.Add\n")
	assert.Contains(t, gat[0].Stdin, "```go\nfunc (c *Calc) Add(v int)\n```\n")
	assert.Contains(t, gat[0].Stdin, "Add adds v to the running total.")
	assert.Empty(t, f.runner.CallsTo("less"))

	_, err = f.viewer.Doc(context.Background(), types.Query{Receiver: "Calc", Name: "Add", AnyArgs: true}, true)
	require.NoError(t, err)
	assert.Len(t, f.runner.CallsTo("less"), 1)
}

func TestOptions_Validate(t *testing.T) {
	assert.NoError(t, Options{}.Validate())
	assert.NoError(t, Options{Snippet: SnippetExtract, Pager: PagerAlways}.Validate())
	assert.Error(t, Options{Snippet: "whole"}.Validate())
	assert.Error(t, Options{Pager: "sometimes"}.Validate())
}
