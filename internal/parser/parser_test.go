package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dshills/gogat/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func findSymbol(t *testing.T, result *types.ParseResult, name string) types.Symbol {
	t.Helper()
	for _, sym := range result.Symbols {
		if sym.Name == name {
			return sym
		}
	}
	t.Fatalf("symbol %s not found", name)
	return types.Symbol{}
}

func TestNew(t *testing.T) {
	p := New()
	assert.NotNil(t, p)
	assert.NotNil(t, p.fset)
}

func TestParseFile_FunctionSpan(t *testing.T) {
	content := `package mathx

import "fmt"

// Sub subtracts.
func Sub(x, y int) int {
	return x - y
}

// Add adds two integers.
func Add(x int, y int) int {
	return x + y
}

func Print(format string, args ...any) {
	fmt.Printf(format, args...)
}
`
	path := writeFile(t, "math.go", content)

	result, err := New().ParseFile(path)
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "mathx", result.PackageName)
	require.Len(t, result.Imports, 1)
	assert.Equal(t, "fmt", result.Imports[0].Path)

	add := findSymbol(t, result, "Add")
	assert.Equal(t, types.KindFunction, add.Kind)
	assert.Equal(t, path, add.File)
	assert.Equal(t, 11, add.Start.Line)
	assert.Equal(t, 13, add.End.Line)
	assert.Equal(t, []string{"int", "int"}, add.Params)
	assert.Equal(t, "func Add(x int, y int) int", add.Signature)
	assert.Equal(t, "Add adds two integers.", add.DocComment)
	assert.Equal(t, types.Location{Path: path, StartLine: 11, EndLine: 13}, add.Location())

	sub := findSymbol(t, result, "Sub")
	assert.Equal(t, []string{"int", "int"}, sub.Params)

	printSym := findSymbol(t, result, "Print")
	assert.Equal(t, []string{"string", "...any"}, printSym.Params)
	assert.Equal(t, "func Print(format string, args ...any)", printSym.Signature)
}

func TestParseFile_Methods(t *testing.T) {
	content := `package store

type Buffer struct {
	data []byte
}

func (b *Buffer) Write(p []byte) (n int, err error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

func (b Buffer) Len() int { return len(b.data) }

type Set[K comparable] struct {
	items map[K]struct{}
}

func (s *Set[K]) Add(k K) {
	s.items[k] = struct{}{}
}
`
	path := writeFile(t, "store.go", content)

	result, err := New().ParseFile(path)
	require.NoError(t, err)

	write := findSymbol(t, result, "Write")
	assert.Equal(t, types.KindMethod, write.Kind)
	assert.Equal(t, "Buffer", write.Receiver)
	assert.Equal(t, []string{"[]byte"}, write.Params)
	assert.Equal(t, "func (b *Buffer) Write(p []byte) (n int, err error)", write.Signature)
	assert.Equal(t, 7, write.Start.Line)
	assert.Equal(t, 10, write.End.Line)

	length := findSymbol(t, result, "Len")
	assert.Equal(t, "Buffer", length.Receiver)
	assert.Equal(t, 12, length.Start.Line)
	assert.Equal(t, 12, length.End.Line)
	assert.Empty(t, length.Params)

	add := findSymbol(t, result, "Add")
	assert.Equal(t, "Set", add.Receiver)
	assert.Equal(t, []string{"K"}, add.Params)

	set := findSymbol(t, result, "Set")
	assert.Equal(t, types.KindStruct, set.Kind)
	assert.Equal(t, 14, set.Start.Line)
	assert.Equal(t, 16, set.End.Line)

	assert.Len(t, result.Callables(), 3)
}

func TestParseFile_GenericFunctionSignature(t *testing.T) {
	content := `package slicesx

func Map[T, U any](in []T, f func(T) U) []U {
	out := make([]U, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}
`
	result, err := New().ParseFile(writeFile(t, "map.go", content))
	require.NoError(t, err)

	m := findSymbol(t, result, "Map")
	assert.Equal(t, "func Map[T any, U any](in []T, f func(T) U) []U", m.Signature)
	assert.Equal(t, []string{"[]T", "func(T) U"}, m.Params)
}

func TestParseFile_GenDeclSpans(t *testing.T) {
	content := `package cfg

// Limits
const (
	MaxSize = 100
	MinSize = 10
)

var Default = Config{
	Name: "x",
}

type Alias = string

type Config struct {
	Name string
}
`
	result, err := New().ParseFile(writeFile(t, "cfg.go", content))
	require.NoError(t, err)

	maxSize := findSymbol(t, result, "MaxSize")
	assert.Equal(t, types.KindConst, maxSize.Kind)
	assert.Equal(t, 5, maxSize.Start.Line)
	assert.Equal(t, 5, maxSize.End.Line)

	def := findSymbol(t, result, "Default")
	assert.Equal(t, types.KindVar, def.Kind)
	assert.Equal(t, 9, def.Start.Line)
	assert.Equal(t, 11, def.End.Line)

	alias := findSymbol(t, result, "Alias")
	assert.Equal(t, types.KindType, alias.Kind)
	assert.Equal(t, "type Alias = string", alias.Signature)

	config := findSymbol(t, result, "Config")
	assert.Equal(t, 15, config.Start.Line)
	assert.Equal(t, 17, config.End.Line)
}

func TestParseFile_NestedFunctionsIgnored(t *testing.T) {
	content := `package main

func main() {
	helper := func() {}
	helper()
}
`
	result, err := New().ParseFile(writeFile(t, "main.go", content))
	require.NoError(t, err)
	require.Len(t, result.Symbols, 1)
	assert.Equal(t, "main", result.Symbols[0].Name)
	assert.Equal(t, types.ScopeUnexported, result.Symbols[0].Scope)
}

func TestParseFile_SyntaxError(t *testing.T) {
	content := `package main

func ok() {}

func incomplete( {
}
`
	result, err := New().ParseFile(writeFile(t, "invalid.go", content))

	// Syntax errors are recorded, not returned
	require.NoError(t, err)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0].Message, "syntax error")
}

func TestParseFile_NonExistentFile(t *testing.T) {
	_, err := New().ParseFile("/nonexistent/file.go")

	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrIO)
}

func TestParseSource_RecordsAbsolutePath(t *testing.T) {
	src := []byte("package p\n\nfunc F() {}\n")

	result, err := New().ParseSource("relative/f.go", src)
	require.NoError(t, err)

	f := findSymbol(t, result, "F")
	assert.True(t, filepath.IsAbs(f.File))
	assert.Equal(t, "f.go", filepath.Base(f.File))
}

func TestReceiverName(t *testing.T) {
	content := `package p

type T[A, B any] struct{}

func (t *T[A, B]) Pair() {}
func (t T[A, B]) Value() {}
`
	result, err := New().ParseFile(writeFile(t, "recv.go", content))
	require.NoError(t, err)

	assert.Equal(t, "T", findSymbol(t, result, "Pair").Receiver)
	assert.Equal(t, "T", findSymbol(t, result, "Value").Receiver)
}
