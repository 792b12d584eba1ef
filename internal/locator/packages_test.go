package locator

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/gogat/pkg/types"
)

func TestPackagesResolver_Resolve(t *testing.T) {
	if testing.Short() {
		t.Skip("loads packages with the go command")
	}

	root := writeProject(t)
	r := NewPackagesResolver(root, nil, false, nil)
	ctx := context.Background()
	mathFile := filepath.Join(root, "math", "math.go")

	defs, err := r.Resolve(ctx, types.Query{Name: "Add", ArgTypes: []string{"int", "int"}})
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, types.Location{Path: mathFile, StartLine: 10, EndLine: 12}, defs[0].Location)
	assert.Equal(t, []string{"int", "int"}, defs[0].Symbol.Params)
	assert.Equal(t, types.KindFunction, defs[0].Symbol.Kind)

	defs, err = r.Resolve(ctx, types.Query{Package: "example.com/calc/math", Receiver: "Calc", Name: "Add", ArgTypes: []string{"int"}})
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, 14, defs[0].Location.StartLine)
	assert.Equal(t, types.KindMethod, defs[0].Symbol.Kind)
	assert.Equal(t, "Calc", defs[0].Symbol.Receiver)

	defs, err = r.Resolve(ctx, types.Query{Name: "Sum", ArgTypes: []string{"int", "int"}})
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, []string{"...int"}, defs[0].Symbol.Params)

	defs, err = r.Resolve(ctx, types.Query{Name: "Sum", ArgTypes: []string{"...int"}})
	require.NoError(t, err)
	assert.Len(t, defs, 1)

	// *Calc is assignable to any
	defs, err = r.Resolve(ctx, types.Query{Name: "Describe", ArgTypes: []string{"*Calc"}})
	require.NoError(t, err)
	assert.Len(t, defs, 1)

	defs, err = r.Resolve(ctx, types.Query{Name: "Add", ArgTypes: []string{"string", "int"}})
	require.NoError(t, err)
	assert.Empty(t, defs)

	// Without an argument tuple types are found too
	defs, err = r.Resolve(ctx, types.Query{Name: "Calc", AnyArgs: true})
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, types.KindStruct, defs[0].Symbol.Kind)
	assert.Equal(t, types.Location{Path: mathFile, StartLine: 6, EndLine: 8}, defs[0].Location)
	assert.Equal(t, "Calc accumulates values.\n", defs[0].Symbol.DocComment)
}
