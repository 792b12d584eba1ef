package process

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/dshills/gogat/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestExecRunner_MissingExecutable(t *testing.T) {
	r := NewExecRunner(nil)

	err := r.Run(context.Background(), Command{Name: "gogat-definitely-not-installed"})
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrProcessFailure)

	var perr *types.ProcessError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, -1, perr.ExitCode)
	assert.Equal(t, "gogat-definitely-not-installed", perr.Command)
}

func TestExecRunner_StreamsStdout(t *testing.T) {
	requireShell(t)

	var out bytes.Buffer
	err := NewExecRunner(nil).Run(context.Background(), Command{
		Name:   "sh",
		Args:   []string{"-c", "cat; printf ' done'"},
		Stdin:  strings.NewReader("hello"),
		Stdout: &out,
	})
	require.NoError(t, err)
	assert.Equal(t, "hello done", out.String())
}

func TestExecRunner_CancelInterruptsChild(t *testing.T) {
	requireShell(t)
	if runtime.GOOS == "windows" {
		t.Skip("no SIGINT on windows")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	time.AfterFunc(300*time.Millisecond, cancel)

	var out bytes.Buffer
	err := NewExecRunner(nil).Run(ctx, Command{
		Name:   "sh",
		Args:   []string{"-c", `trap 'echo restored; exit 0' INT; while :; do sleep 0.05; done`},
		Stdout: &out,
	})

	// The trap ran, so the child had the chance to clean up
	assert.Equal(t, "restored\n", out.String())
	if err != nil {
		assert.NotContains(t, err.Error(), "killed")
	}
}

func TestExecRunner_NonZeroExitCapturesStderr(t *testing.T) {
	requireShell(t)

	var tee bytes.Buffer
	err := NewExecRunner(nil).Run(context.Background(), Command{
		Name:   "sh",
		Args:   []string{"-c", "echo boom >&2; exit 3"},
		Stderr: &tee,
	})
	require.Error(t, err)

	var perr *types.ProcessError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 3, perr.ExitCode)
	assert.Equal(t, "boom\n", perr.Stderr)
	assert.Equal(t, "boom\n", tee.String())
	assert.Equal(t, 3, ExitCode(err))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(errors.New("plain")))
	assert.Equal(t, 1, ExitCode(&types.ProcessError{Command: "x", ExitCode: -1}))
	assert.Equal(t, 130, ExitCode(&types.ProcessError{Command: "x", ExitCode: 130}))
}

func TestParseCommandLine(t *testing.T) {
	tests := []struct {
		line     string
		wantName string
		wantArgs []string
		wantErr  bool
	}{
		{"less -R", "less", []string{"-R"}, false},
		{"gat", "gat", []string{}, false},
		{`fzf --height "40%" --reverse`, "fzf", []string{"--height", "40%", "--reverse"}, false},
		{"", "", nil, true},
		{`less "unterminated`, "", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			name, args, err := ParseCommandLine(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestCommand_String(t *testing.T) {
	assert.Equal(t, "gat", Command{Name: "gat"}.String())
	assert.Equal(t, "gat x.go --lines=1:2", Command{Name: "gat", Args: []string{"x.go", "--lines=1:2"}}.String())
}
