package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dshills/gogat/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *SQLiteStorage {
	t.Helper()
	storage, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	require.NotNil(t, storage)
	t.Cleanup(func() { _ = storage.Close() })
	return storage
}

// seed creates /proj with math.go defining Add and (*Calc).Add
func seed(t *testing.T, s *SQLiteStorage) (*Project, *File) {
	t.Helper()
	ctx := context.Background()

	project := &Project{RootPath: "/proj", ModuleName: "example.com/proj", IndexVersion: CurrentSchemaVersion}
	require.NoError(t, s.CreateProject(ctx, project))

	file := &File{
		ProjectID:   project.ID,
		FilePath:    "math/math.go",
		PackageName: "math",
		ContentHash: [32]byte{1, 2, 3},
		ModTime:     time.Now(),
		SizeBytes:   120,
	}
	require.NoError(t, s.UpsertFile(ctx, file))

	symbols := []*Symbol{
		{FileID: file.ID, Name: "Add", Kind: "function", PackageName: "math", Scope: "exported",
			Signature: "func Add(x int, y int) int", Params: []string{"int", "int"},
			StartLine: 10, StartCol: 1, EndLine: 12, EndCol: 2},
		{FileID: file.ID, Name: "Add", Kind: "method", PackageName: "math", Scope: "exported", Receiver: "Calc",
			Signature: "func (c *Calc) Add(v float64)", Params: []string{"float64"},
			StartLine: 20, StartCol: 1, EndLine: 22, EndCol: 2},
		{FileID: file.ID, Name: "AddAll", Kind: "function", PackageName: "math", Scope: "exported",
			Signature: "func AddAll(xs ...int) int", Params: []string{"...int"},
			StartLine: 30, StartCol: 1, EndLine: 36, EndCol: 2},
		{FileID: file.ID, Name: "Calc", Kind: "struct", PackageName: "math", Scope: "exported",
			StartLine: 16, StartCol: 6, EndLine: 18, EndCol: 2},
	}
	for _, sym := range symbols {
		require.NoError(t, s.UpsertSymbol(ctx, sym))
	}

	return project, file
}

func TestNewSQLiteStorage(t *testing.T) {
	storage := setupTestDB(t)
	assert.NotNil(t, storage.db)

	v, err := currentVersion(context.Background(), storage.db)
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, v.String())
}

func TestApplyMigrations_Idempotent(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, ApplyMigrations(ctx, storage.db))

	var count int
	require.NoError(t, storage.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_version").Scan(&count))
	assert.Equal(t, len(AllMigrations), count)
}

func TestRollbackMigration(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, RollbackMigration(ctx, storage.db))
	v, err := currentVersion(ctx, storage.db)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", v.String())

	require.NoError(t, ApplyMigrations(ctx, storage.db))
	v, err = currentVersion(ctx, storage.db)
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, v.String())
}

func TestCreateProject(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	project := &Project{RootPath: "/test/path", ModuleName: "github.com/test/project", GoVersion: "1.25"}
	require.NoError(t, storage.CreateProject(ctx, project))
	assert.Greater(t, project.ID, int64(0))

	err := storage.CreateProject(ctx, &Project{RootPath: "/test/path", ModuleName: "another"})
	assert.Error(t, err) // Unique constraint violation
}

func TestGetProject(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	project := &Project{RootPath: "/test/path", ModuleName: "github.com/test/project"}
	require.NoError(t, storage.CreateProject(ctx, project))

	retrieved, err := storage.GetProject(ctx, "/test/path")
	require.NoError(t, err)
	assert.Equal(t, project.ID, retrieved.ID)
	assert.Equal(t, project.ModuleName, retrieved.ModuleName)
	assert.True(t, retrieved.LastIndexedAt.IsZero())

	_, err = storage.GetProject(ctx, "/nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateProject(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()

	project := &Project{RootPath: "/test/path", ModuleName: "github.com/test/project"}
	require.NoError(t, storage.CreateProject(ctx, project))

	project.ModuleName = "github.com/test/updated"
	project.TotalFiles = 10
	project.TotalSymbols = 100
	project.LastIndexedAt = time.Now()
	require.NoError(t, storage.UpdateProject(ctx, project))

	updated, err := storage.GetProject(ctx, "/test/path")
	require.NoError(t, err)
	assert.Equal(t, "github.com/test/updated", updated.ModuleName)
	assert.Equal(t, 10, updated.TotalFiles)
	assert.Equal(t, 100, updated.TotalSymbols)
	assert.False(t, updated.LastIndexedAt.IsZero())
}

func TestUpsertFile(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()
	project, file := seed(t, storage)

	originalID := file.ID
	msg := "expected declaration"
	file.SizeBytes = 5678
	file.ParseError = &msg
	require.NoError(t, storage.UpsertFile(ctx, file))
	assert.Equal(t, originalID, file.ID)

	retrieved, err := storage.GetFile(ctx, project.ID, "math/math.go")
	require.NoError(t, err)
	assert.Equal(t, int64(5678), retrieved.SizeBytes)
	assert.Equal(t, [32]byte{1, 2, 3}, retrieved.ContentHash)
	require.NotNil(t, retrieved.ParseError)
	assert.Equal(t, msg, *retrieved.ParseError)

	_, err = storage.GetFile(ctx, project.ID, "nonexistent.go")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListAndDeleteFiles(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()
	project, file := seed(t, storage)

	other := &File{ProjectID: project.ID, FilePath: "a.go", PackageName: "proj", ContentHash: [32]byte{9}, ModTime: time.Now()}
	require.NoError(t, storage.UpsertFile(ctx, other))

	files, err := storage.ListFiles(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.go", files[0].FilePath)

	require.NoError(t, storage.DeleteFile(ctx, file.ID))

	// Symbols cascade with the file
	syms, err := storage.ListSymbolsByFile(ctx, file.ID)
	require.NoError(t, err)
	assert.Empty(t, syms)
}

func TestUpsertSymbol(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()
	_, file := seed(t, storage)

	syms, err := storage.ListSymbolsByFile(ctx, file.ID)
	require.NoError(t, err)
	require.Len(t, syms, 4)
	assert.Equal(t, "Add", syms[0].Name)
	assert.Equal(t, 10, syms[0].StartLine)
	assert.Equal(t, []string{"int", "int"}, syms[0].Params)
	assert.Equal(t, filepath.Join("/proj", "math", "math.go"), syms[0].Path)

	// Same (file, name, position) updates in place
	update := &Symbol{FileID: file.ID, Name: "Add", Kind: "function", PackageName: "math",
		Params: []string{"int64", "int64"}, StartLine: 10, StartCol: 1, EndLine: 13, EndCol: 2}
	require.NoError(t, storage.UpsertSymbol(ctx, update))
	assert.Equal(t, syms[0].ID, update.ID)

	syms, err = storage.ListSymbolsByFile(ctx, file.ID)
	require.NoError(t, err)
	require.Len(t, syms, 4)
	assert.Equal(t, 13, syms[0].EndLine)
	assert.Equal(t, []string{"int64", "int64"}, syms[0].Params)

	// Nil params are stored as an empty list
	for _, s := range syms {
		if s.Name == "Calc" {
			assert.Equal(t, []string{}, s.Params)
		}
	}

	require.NoError(t, storage.DeleteSymbolsByFile(ctx, file.ID))
	syms, err = storage.ListSymbolsByFile(ctx, file.ID)
	require.NoError(t, err)
	assert.Empty(t, syms)
}

func TestFindSymbols(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()
	project, _ := seed(t, storage)

	tests := []struct {
		name   string
		filter SymbolFilter
		want   []int // start lines
	}{
		{"by name", SymbolFilter{Name: "Add"}, []int{10, 20}},
		{"by receiver", SymbolFilter{Name: "Add", Receiver: "Calc"}, []int{20}},
		{"by kind", SymbolFilter{Name: "Add", Kinds: []string{"function"}}, []int{10}},
		{"several kinds", SymbolFilter{Kinds: []string{"function", "struct"}}, []int{10, 16, 30}},
		{"by package", SymbolFilter{ProjectID: project.ID, PackageName: "math", Name: "AddAll"}, []int{30}},
		{"other package", SymbolFilter{PackageName: "strings", Name: "Add"}, nil},
		{"other project", SymbolFilter{ProjectID: project.ID + 1}, nil},
		{"limit", SymbolFilter{Name: "Add", Limit: 1}, []int{10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			syms, err := storage.FindSymbols(ctx, tt.filter)
			require.NoError(t, err)

			var got []int
			for _, s := range syms {
				got = append(got, s.StartLine)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSearchSymbols(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()
	project, _ := seed(t, storage)

	syms, err := storage.SearchSymbols(ctx, project.ID, "add", 10)
	require.NoError(t, err)
	require.Len(t, syms, 3)
	assert.Equal(t, "AddAll", syms[2].Name)

	syms, err = storage.SearchSymbols(ctx, project.ID, "AddAll", 10)
	require.NoError(t, err)
	require.Len(t, syms, 1)

	// LIKE wildcards in the pattern are literal
	syms, err = storage.SearchSymbols(ctx, project.ID, "A%", 10)
	require.NoError(t, err)
	assert.Empty(t, syms)
}

func TestGetStatus(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()
	project, _ := seed(t, storage)

	status, err := storage.GetStatus(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, status.FilesCount)
	assert.Equal(t, 4, status.SymbolsCount)
	assert.Equal(t, 0, status.ParseErrors)
	assert.Equal(t, CurrentSchemaVersion, status.SchemaVer)
	assert.Equal(t, "/proj", status.Project.RootPath)

	_, err = storage.GetStatus(ctx, project.ID+1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTransaction(t *testing.T) {
	storage := setupTestDB(t)
	ctx := context.Background()
	project, file := seed(t, storage)

	tx, err := storage.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.DeleteSymbolsByFile(ctx, file.ID))
	syms, err := tx.FindSymbols(ctx, SymbolFilter{ProjectID: project.ID})
	require.NoError(t, err)
	assert.Empty(t, syms)
	require.NoError(t, tx.Rollback())

	syms, err = storage.FindSymbols(ctx, SymbolFilter{ProjectID: project.ID})
	require.NoError(t, err)
	assert.Len(t, syms, 4)

	tx, err = storage.BeginTx(ctx)
	require.NoError(t, err)
	_, err = tx.BeginTx(ctx)
	assert.Error(t, err)
	require.NoError(t, tx.Rollback())
}

func TestSymbolConversion(t *testing.T) {
	sym := types.Symbol{
		Name:     "Write",
		Kind:     types.KindMethod,
		Package:  "bytes",
		File:     "/src/bytes/buffer.go",
		Scope:    types.ScopeExported,
		Receiver: "Buffer",
		Params:   []string{"[]byte"},
		Start:    types.Position{Line: 7, Column: 1},
		End:      types.Position{Line: 10, Column: 2},
	}

	assert.Equal(t, sym, FromTypesSymbol(sym, 3).ToTypesSymbol())
	assert.Equal(t, int64(3), FromTypesSymbol(sym, 3).FileID)
}
