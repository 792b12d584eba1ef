package storage

import (
	"context"
	"path/filepath"
	"time"

	"github.com/dshills/gogat/pkg/types"
)

// Storage persists the static definition index
type Storage interface {
	// Project operations
	CreateProject(ctx context.Context, project *Project) error
	GetProject(ctx context.Context, rootPath string) (*Project, error)
	UpdateProject(ctx context.Context, project *Project) error

	// File operations
	UpsertFile(ctx context.Context, file *File) error
	GetFile(ctx context.Context, projectID int64, filePath string) (*File, error)
	DeleteFile(ctx context.Context, fileID int64) error
	ListFiles(ctx context.Context, projectID int64) ([]*File, error)

	// Symbol operations
	UpsertSymbol(ctx context.Context, symbol *Symbol) error
	ListSymbolsByFile(ctx context.Context, fileID int64) ([]*Symbol, error)
	DeleteSymbolsByFile(ctx context.Context, fileID int64) error
	FindSymbols(ctx context.Context, filter SymbolFilter) ([]*Symbol, error)
	SearchSymbols(ctx context.Context, projectID int64, pattern string, limit int) ([]*Symbol, error)

	// Status operations
	GetStatus(ctx context.Context, projectID int64) (*ProjectStatus, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Storage
}

// Project is an indexed source tree
type Project struct {
	ID            int64
	RootPath      string
	ModuleName    string
	GoVersion     string
	TotalFiles    int
	TotalSymbols  int
	IndexVersion  string
	LastIndexedAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// File is a tracked Go source file
type File struct {
	ID            int64
	ProjectID     int64
	FilePath      string // Relative to project root
	PackageName   string
	ContentHash   [32]byte
	ModTime       time.Time
	SizeBytes     int64
	ParseError    *string // Nullable
	LastIndexedAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Symbol is one indexed definition
type Symbol struct {
	ID          int64
	FileID      int64
	Name        string
	Kind        string
	PackageName string
	Signature   string
	DocComment  string
	Scope       string
	Receiver    string
	Params      []string // Stored as a JSON array
	StartLine   int
	StartCol    int
	EndLine     int
	EndCol      int
	CreatedAt   time.Time

	// Absolute path of the owning file. Filled by queries that join files
	// and projects; ignored on upsert.
	Path string
}

// SymbolFilter narrows FindSymbols. Zero fields match everything.
type SymbolFilter struct {
	ProjectID   int64
	Name        string
	Receiver    string
	PackageName string
	Kinds       []string
	Limit       int
}

// ProjectStatus contains statistics about an indexed project
type ProjectStatus struct {
	Project      *Project
	FilesCount   int
	SymbolsCount int
	ParseErrors  int
	IndexSizeMB  float64
	SchemaVer    string
}

// ToTypesSymbol converts a stored symbol to the domain type
func (s *Symbol) ToTypesSymbol() types.Symbol {
	return types.Symbol{
		Name:       s.Name,
		Kind:       types.SymbolKind(s.Kind),
		Package:    s.PackageName,
		File:       s.Path,
		Signature:  s.Signature,
		DocComment: s.DocComment,
		Scope:      types.SymbolScope(s.Scope),
		Receiver:   s.Receiver,
		Params:     s.Params,
		Start:      types.Position{Line: s.StartLine, Column: s.StartCol},
		End:        types.Position{Line: s.EndLine, Column: s.EndCol},
	}
}

// FromTypesSymbol converts a parsed symbol for storage under fileID
func FromTypesSymbol(s types.Symbol, fileID int64) *Symbol {
	return &Symbol{
		FileID:      fileID,
		Name:        s.Name,
		Kind:        string(s.Kind),
		PackageName: s.Package,
		Signature:   s.Signature,
		DocComment:  s.DocComment,
		Scope:       string(s.Scope),
		Receiver:    s.Receiver,
		Params:      s.Params,
		StartLine:   s.Start.Line,
		StartCol:    s.Start.Column,
		EndLine:     s.End.Line,
		EndCol:      s.End.Column,
		Path:        s.File,
	}
}

func absPath(root, rel string) string {
	return filepath.Join(root, filepath.FromSlash(rel))
}
