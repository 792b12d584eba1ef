package selector

import (
	"context"
	"testing"

	"github.com/dshills/gogat/internal/process/processtest"
	"github.com/dshills/gogat/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var labels = []string{
	"func (b *Buffer) String() string  /src/bytes/buffer.go:60",
	"func (r *Reader) String() string  /src/strings/reader.go:20",
}

func TestFuzzySelector_Select(t *testing.T) {
	runner := processtest.New(map[string]processtest.Response{
		"fzf": {Stdout: labels[1] + "\n"},
	})
	s, err := NewFuzzySelector("fzf --height 40%", runner, nil)
	require.NoError(t, err)

	idx, err := s.Select(context.Background(), labels)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	calls := runner.CallsTo("fzf")
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"--height", "40%"}, calls[0].Args)
	assert.Equal(t, labels[0]+"\n"+labels[1]+"\n", calls[0].Stdin)
}

func TestFuzzySelector_Cancelled(t *testing.T) {
	tests := []struct {
		name string
		resp processtest.Response
	}{
		{"escape", processtest.Response{ExitCode: 130}},
		{"no match", processtest.Response{ExitCode: 1}},
		{"empty output", processtest.Response{Stdout: "\n"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := processtest.New(map[string]processtest.Response{"fzf": tt.resp})
			s, err := NewFuzzySelector("fzf", runner, nil)
			require.NoError(t, err)

			_, err = s.Select(context.Background(), labels)
			assert.ErrorIs(t, err, types.ErrSelectionCancelled)
		})
	}
}

func TestFuzzySelector_ProcessFailure(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		runner := processtest.New(map[string]processtest.Response{"fzf": {Missing: true}})
		s, err := NewFuzzySelector("fzf", runner, nil)
		require.NoError(t, err)

		_, err = s.Select(context.Background(), labels)
		assert.ErrorIs(t, err, types.ErrProcessFailure)
		assert.NotErrorIs(t, err, types.ErrSelectionCancelled)
	})

	t.Run("crash", func(t *testing.T) {
		runner := processtest.New(map[string]processtest.Response{"fzf": {ExitCode: 2, Stderr: "bad flag"}})
		s, err := NewFuzzySelector("fzf", runner, nil)
		require.NoError(t, err)

		_, err = s.Select(context.Background(), labels)
		assert.ErrorIs(t, err, types.ErrProcessFailure)
		assert.Contains(t, err.Error(), "bad flag")
	})
}

func TestFuzzySelector_UnknownChoice(t *testing.T) {
	runner := processtest.New(map[string]processtest.Response{"fzf": {Stdout: "something else\n"}})
	s, err := NewFuzzySelector("fzf", runner, nil)
	require.NoError(t, err)

	_, err = s.Select(context.Background(), labels)
	assert.Error(t, err)
}

func TestFirstSelector(t *testing.T) {
	idx, err := FirstSelector{}.Select(context.Background(), labels)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	_, err = FirstSelector{}.Select(context.Background(), nil)
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	runner := processtest.New(nil)

	s, err := New(ModeFirst, "", runner, nil)
	require.NoError(t, err)
	assert.IsType(t, FirstSelector{}, s)

	s, err = New(ModeInteractive, "peco", runner, nil)
	require.NoError(t, err)
	assert.IsType(t, &FuzzySelector{}, s)

	_, err = New("sometimes", "fzf", runner, nil)
	assert.Error(t, err)

	_, err = New(ModeInteractive, "", runner, nil)
	assert.Error(t, err)
}
