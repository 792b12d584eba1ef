package indexer

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/gogat/internal/parser"
	"github.com/dshills/gogat/internal/storage"
	"github.com/dshills/gogat/pkg/types"
)

// Indexer builds the static definition index: discover -> parse -> store
type Indexer struct {
	parser  *parser.Parser
	storage storage.Storage
	logger  hclog.Logger
}

// Config contains configuration for the indexer
type Config struct {
	Workers       int      // Concurrent parsers (default: runtime.NumCPU())
	IncludeTests  bool     // Index _test.go files
	IncludeVendor bool     // Index the vendor directory
	Ignore        []string // Glob patterns relative to the root
	Force         bool     // Reparse files whose content hash is unchanged
}

// Statistics contains statistics about the indexing operation
type Statistics struct {
	FilesIndexed     int
	FilesSkipped     int
	FilesFailed      int
	FilesRemoved     int
	SymbolsExtracted int
	Duration         time.Duration
	ErrorMessages    []string
}

// New creates a new Indexer instance
func New(store storage.Storage, logger hclog.Logger) *Indexer {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Indexer{
		parser:  parser.New(),
		storage: store,
		logger:  logger,
	}
}

// parsed is the outcome of reading and parsing one file
type parsed struct {
	path    string
	rel     string
	hash    [32]byte
	modTime time.Time
	size    int64
	result  *types.ParseResult
	skipped bool
	err     error
}

// IndexProject indexes every Go file under rootPath. Files are parsed
// concurrently and written in a single transaction; files that disappeared
// since the last run are removed.
func (idx *Indexer) IndexProject(ctx context.Context, rootPath string, config *Config) (*Statistics, error) {
	if config == nil {
		config = &Config{IncludeTests: true}
	}
	workers := config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	startTime := time.Now()
	stats := &Statistics{ErrorMessages: make([]string, 0)}

	discovery, err := NewDiscovery(rootPath, DiscoveryOptions{
		IncludeTests:  config.IncludeTests,
		IncludeVendor: config.IncludeVendor,
		Ignore:        config.Ignore,
	})
	if err != nil {
		return nil, err
	}
	root := discovery.Root()

	files, err := discovery.Files()
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}
	idx.logger.Debug("discovered files", "root", root, "count", len(files))

	tx, err := idx.storage.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	project, err := idx.getOrCreateProject(ctx, tx, root)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create project: %w", err)
	}

	existing, err := tx.ListFiles(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list indexed files: %w", err)
	}
	known := make(map[string]*storage.File, len(existing))
	for _, f := range existing {
		known[f.FilePath] = f
	}

	results, err := idx.parseFiles(ctx, root, files, known, workers, config.Force)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(results))
	for _, res := range results {
		seen[res.rel] = true

		switch {
		case res.err != nil:
			stats.FilesFailed++
			stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("%s: %v", res.rel, res.err))
			idx.logger.Warn("failed to index file", "file", res.rel, "error", res.err)
			continue
		case res.skipped:
			stats.FilesSkipped++
			continue
		}

		count, err := idx.storeFile(ctx, tx, project, res)
		if err != nil {
			return nil, fmt.Errorf("failed to store %s: %w", res.rel, err)
		}
		stats.FilesIndexed++
		stats.SymbolsExtracted += count
	}

	for rel, f := range known {
		if seen[rel] {
			continue
		}
		if err := tx.DeleteFile(ctx, f.ID); err != nil {
			return nil, fmt.Errorf("failed to remove %s: %w", rel, err)
		}
		stats.FilesRemoved++
	}

	if err := idx.updateProjectStats(ctx, tx, project); err != nil {
		return nil, fmt.Errorf("failed to update project stats: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	stats.Duration = time.Since(startTime)
	idx.logger.Info("indexed project", "root", root,
		"indexed", stats.FilesIndexed, "skipped", stats.FilesSkipped,
		"failed", stats.FilesFailed, "removed", stats.FilesRemoved,
		"symbols", stats.SymbolsExtracted, "duration", stats.Duration)
	return stats, nil
}

// parseFiles hashes and parses files with at most workers in flight.
// Per-file failures are recorded on the result; only cancellation aborts.
func (idx *Indexer) parseFiles(ctx context.Context, root string, files []string,
	known map[string]*storage.File, workers int, force bool) ([]parsed, error) {

	results := make([]parsed, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = idx.parseFile(root, path, known, force)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (idx *Indexer) parseFile(root, path string, known map[string]*storage.File, force bool) parsed {
	res := parsed{path: path}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		res.err = err
		return res
	}
	res.rel = filepath.ToSlash(rel)

	content, info, err := readFile(path)
	if err != nil {
		res.err = &types.IOError{Path: path, Err: err}
		return res
	}
	res.hash = sha256.Sum256(content)
	res.modTime = info.ModTime()
	res.size = info.Size()

	if prev, ok := known[res.rel]; ok && !force && prev.ContentHash == res.hash {
		res.skipped = true
		return res
	}

	res.result, res.err = idx.parser.ParseSource(path, content)
	return res
}

// storeFile replaces the file record and its symbols
func (idx *Indexer) storeFile(ctx context.Context, tx storage.Tx, project *storage.Project, res parsed) (int, error) {
	file := &storage.File{
		ProjectID:   project.ID,
		FilePath:    res.rel,
		PackageName: res.result.PackageName,
		ContentHash: res.hash,
		ModTime:     res.modTime,
		SizeBytes:   res.size,
	}
	if res.result.HasErrors() {
		msg := res.result.Errors[0].Message
		file.ParseError = &msg
	}

	if err := tx.UpsertFile(ctx, file); err != nil {
		return 0, err
	}
	if err := tx.DeleteSymbolsByFile(ctx, file.ID); err != nil {
		return 0, fmt.Errorf("failed to delete old symbols: %w", err)
	}

	for i := range res.result.Symbols {
		sym := storage.FromTypesSymbol(res.result.Symbols[i], file.ID)
		if err := tx.UpsertSymbol(ctx, sym); err != nil {
			return 0, fmt.Errorf("failed to store symbol: %w", err)
		}
	}
	return len(res.result.Symbols), nil
}

// getOrCreateProject retrieves an existing project or creates a new one
func (idx *Indexer) getOrCreateProject(ctx context.Context, tx storage.Tx, rootPath string) (*storage.Project, error) {
	project, err := tx.GetProject(ctx, rootPath)
	if err == nil {
		return project, nil
	}
	if err != storage.ErrNotFound {
		return nil, err
	}

	project = &storage.Project{
		RootPath:     rootPath,
		IndexVersion: storage.CurrentSchemaVersion,
	}
	if modInfo, err := parseGoMod(filepath.Join(rootPath, "go.mod")); err == nil {
		project.ModuleName = modInfo.Module
		project.GoVersion = modInfo.GoVersion
	}

	if err := tx.CreateProject(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (idx *Indexer) updateProjectStats(ctx context.Context, tx storage.Tx, project *storage.Project) error {
	status, err := tx.GetStatus(ctx, project.ID)
	if err != nil {
		return err
	}

	project.TotalFiles = status.FilesCount
	project.TotalSymbols = status.SymbolsCount
	project.LastIndexedAt = time.Now()
	return tx.UpdateProject(ctx, project)
}

func readFile(path string) ([]byte, os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return content, info, nil
}

// goModInfo contains parsed go.mod information
type goModInfo struct {
	Module    string
	GoVersion string
}

// parseGoMod extracts the module path and go directive from go.mod
func parseGoMod(goModPath string) (*goModInfo, error) {
	content, err := os.ReadFile(goModPath)
	if err != nil {
		return nil, err
	}

	info := &goModInfo{}
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "module ") {
			info.Module = strings.Trim(strings.TrimSpace(strings.TrimPrefix(line, "module")), `"`)
		} else if strings.HasPrefix(line, "go ") {
			info.GoVersion = strings.TrimSpace(strings.TrimPrefix(line, "go"))
		}
	}

	return info, nil
}

// ResolveProject finds the project that contains path, walking up to the
// closest indexed root
func ResolveProject(ctx context.Context, store storage.Storage, path string) (*storage.Project, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	for dir := abs; ; dir = filepath.Dir(dir) {
		project, err := store.GetProject(ctx, dir)
		if err == nil {
			return project, nil
		}
		if err != storage.ErrNotFound {
			return nil, err
		}
		if parent := filepath.Dir(dir); parent == dir {
			return nil, storage.ErrNotFound
		}
	}
}
