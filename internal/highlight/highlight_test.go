package highlight

import (
	"bytes"
	"context"
	"testing"

	"github.com/dshills/gogat/internal/process/processtest"
	"github.com/dshills/gogat/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const colored = "\x1b[38;5;81mfunc\x1b[0m Add(x int, y int) int {\n"

func newInvoker(t *testing.T, cfg Config) (*Invoker, *processtest.Runner) {
	t.Helper()
	if cfg.Command == "" {
		cfg.Command = "gat"
	}
	if cfg.Pager == "" {
		cfg.Pager = "less -R"
	}
	runner := processtest.New(map[string]processtest.Response{
		"gat":  {Stdout: colored},
		"less": {Echo: true},
	})
	inv, err := New(cfg, runner, nil)
	require.NoError(t, err)
	return inv, runner
}

func TestInvoker_Args(t *testing.T) {
	inv, _ := newInvoker(t, Config{})

	tests := []struct {
		name  string
		req   Request
		paged bool
		want  []string
	}{
		{
			name: "line range",
			req:  FileRequest{Path: "/src/math.go", Lines: &LineRange{Start: 10, End: 12}},
			want: []string{"/src/math.go", "--lines=10:12"},
		},
		{
			name: "plain file has no markdown flag",
			req:  FileRequest{Path: "main.go"},
			want: []string{"main.go"},
		},
		{
			name: "markdown extension",
			req:  FileRequest{Path: "notes.md"},
			want: []string{"notes.md", "--render-markdown"},
		},
		{
			name: "markdown flag",
			req:  FileRequest{Path: "README", Markdown: true},
			want: []string{"README", "--render-markdown"},
		},
		{
			name: "text with language",
			req:  TextRequest{Text: "x := 1", Lang: "go"},
			want: []string{"--lang=go"},
		},
		{
			name: "markdown text",
			req:  TextRequest{Text: "# Title", Markdown: true},
			want: []string{"--render-markdown"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, inv.Args(tt.req, tt.paged))
		})
	}
}

func TestInvoker_ArgsThemeAndColor(t *testing.T) {
	inv, _ := newInvoker(t, Config{Theme: "dracula", MarkdownTheme: "monokai", ForceColorInPager: true})

	assert.Equal(t, []string{"a.go", "--theme=dracula"}, inv.Args(FileRequest{Path: "a.go"}, false))
	assert.Equal(t, []string{"a.go", "--theme=dracula", "--force-color"}, inv.Args(FileRequest{Path: "a.go"}, true))
	assert.Equal(t, []string{"a.md", "--render-markdown", "--theme=monokai"}, inv.Args(FileRequest{Path: "a.md"}, false))
}

func TestInvoker_Show(t *testing.T) {
	inv, runner := newInvoker(t, Config{Command: "gat --no-pager"})

	var out bytes.Buffer
	res, err := inv.Show(context.Background(), ForLocation(types.Location{Path: "/src/math.go", StartLine: 10, EndLine: 12}), &out)
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, colored, out.String())

	calls := runner.CallsTo("gat")
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"--no-pager", "/src/math.go", "--lines=10:12"}, calls[0].Args)
	assert.Empty(t, runner.CallsTo("less"))
}

func TestInvoker_ShowText(t *testing.T) {
	inv, runner := newInvoker(t, Config{})

	_, err := inv.Show(context.Background(), TextRequest{Text: "func f() {}\n", Lang: "go"}, &bytes.Buffer{})
	require.NoError(t, err)

	calls := runner.CallsTo("gat")
	require.Len(t, calls, 1)
	assert.Equal(t, "func f() {}\n", calls[0].Stdin)
	assert.Equal(t, []string{"--lang=go"}, calls[0].Args)
}

func TestInvoker_PageIsByteIdentical(t *testing.T) {
	inv, runner := newInvoker(t, Config{})
	req := FileRequest{Path: "notes.md"}

	var direct, paged bytes.Buffer
	_, err := inv.Show(context.Background(), req, &direct)
	require.NoError(t, err)
	res, err := inv.Page(context.Background(), req, &paged)
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)

	assert.Equal(t, direct.Bytes(), paged.Bytes())

	pagers := runner.CallsTo("less")
	require.Len(t, pagers, 1)
	assert.Equal(t, []string{"-R"}, pagers[0].Args)
	assert.Equal(t, direct.String(), pagers[0].Stdin)

	gats := runner.CallsTo("gat")
	require.Len(t, gats, 2)
	assert.Equal(t, gats[0].Args, gats[1].Args)
	assert.Equal(t, []string{"notes.md", "--render-markdown"}, gats[1].Args)
}

func TestInvoker_ProcessFailure(t *testing.T) {
	t.Run("highlighter exits non-zero", func(t *testing.T) {
		runner := processtest.New(map[string]processtest.Response{
			"gat":  {ExitCode: 2, Stderr: "gat: no such file"},
			"less": {Echo: true},
		})
		inv, err := New(Config{Command: "gat", Pager: "less"}, runner, nil)
		require.NoError(t, err)

		res, err := inv.Page(context.Background(), FileRequest{Path: "missing.go"}, &bytes.Buffer{})
		assert.ErrorIs(t, err, types.ErrProcessFailure)
		assert.Contains(t, err.Error(), "gat: no such file")
		assert.Equal(t, 2, res.ExitCode)
		assert.Empty(t, runner.CallsTo("less"))
	})

	t.Run("highlighter missing", func(t *testing.T) {
		runner := processtest.New(map[string]processtest.Response{"gat": {Missing: true}})
		inv, err := New(Config{Command: "gat"}, runner, nil)
		require.NoError(t, err)

		res, err := inv.Show(context.Background(), FileRequest{Path: "a.go"}, &bytes.Buffer{})
		assert.ErrorIs(t, err, types.ErrProcessFailure)
		assert.Equal(t, 1, res.ExitCode)
	})

	t.Run("pager exit status propagates", func(t *testing.T) {
		runner := processtest.New(map[string]processtest.Response{
			"gat":  {Stdout: "x"},
			"less": {ExitCode: 4},
		})
		inv, err := New(Config{Command: "gat", Pager: "less"}, runner, nil)
		require.NoError(t, err)

		res, err := inv.Page(context.Background(), FileRequest{Path: "a.go"}, &bytes.Buffer{})
		assert.Error(t, err)
		assert.Equal(t, 4, res.ExitCode)
	})
}

func TestInvoker_NoPager(t *testing.T) {
	inv, err := New(Config{Command: "gat"}, processtest.New(nil), nil)
	require.NoError(t, err)

	_, err = inv.Page(context.Background(), FileRequest{Path: "a.go"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestNew_InvalidCommand(t *testing.T) {
	_, err := New(Config{}, processtest.New(nil), nil)
	assert.Error(t, err)

	_, err = New(Config{Command: "gat", Pager: `less "oops`}, processtest.New(nil), nil)
	assert.Error(t, err)
}

func TestIsMarkdownFile(t *testing.T) {
	assert.True(t, IsMarkdownFile("README.md"))
	assert.True(t, IsMarkdownFile("doc.MARKDOWN"))
	assert.False(t, IsMarkdownFile("main.go"))
	assert.False(t, IsMarkdownFile("md"))
}
