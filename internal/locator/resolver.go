package locator

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/dshills/gogat/internal/indexer"
	"github.com/dshills/gogat/internal/parser"
	"github.com/dshills/gogat/internal/storage"
	"github.com/dshills/gogat/pkg/types"
)

// Resolver turns a query into every definition that matches it
type Resolver interface {
	Resolve(ctx context.Context, q types.Query) ([]types.Definition, error)
}

// Matches reports whether sym satisfies q. Without an argument tuple any
// top-level definition with the name matches; with one only callables
// whose parameters accept the arguments do.
func Matches(q types.Query, sym types.Symbol) bool {
	if sym.Name != q.Name {
		return false
	}
	if q.Receiver != "" && sym.Receiver != q.Receiver {
		return false
	}
	if !packageMatches(q.Package, sym.Package, "") {
		return false
	}
	if q.AnyArgs {
		return true
	}
	return sym.IsCallable() && q.MatchArgs(sym.Params)
}

// packageMatches compares a queried package against a package name and,
// when known, its import path. Paths match on a whole-element suffix.
func packageMatches(want, name, importPath string) bool {
	if want == "" {
		return true
	}
	if importPath != "" && (importPath == want || strings.HasSuffix(importPath, "/"+want)) {
		return true
	}
	return name == path.Base(want)
}

// sortDefinitions orders by path then line so selector labels are stable
func sortDefinitions(defs []types.Definition) {
	sort.SliceStable(defs, func(i, j int) bool {
		if defs[i].Location.Path != defs[j].Location.Path {
			return defs[i].Location.Path < defs[j].Location.Path
		}
		return defs[i].Location.StartLine < defs[j].Location.StartLine
	})
}

// SourceResolver parses the Go files under a root on every call
type SourceResolver struct {
	root   string
	opts   indexer.DiscoveryOptions
	parser *parser.Parser
	logger hclog.Logger
}

// NewSourceResolver creates a resolver over the tree at root
func NewSourceResolver(root string, opts indexer.DiscoveryOptions, logger hclog.Logger) *SourceResolver {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &SourceResolver{
		root:   root,
		opts:   opts,
		parser: parser.New(),
		logger: logger,
	}
}

// Resolve walks the tree and returns the matching definitions
func (r *SourceResolver) Resolve(ctx context.Context, q types.Query) ([]types.Definition, error) {
	discovery, err := indexer.NewDiscovery(r.root, r.opts)
	if err != nil {
		return nil, err
	}
	files, err := discovery.Files()
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}

	var defs []types.Definition
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := r.parser.ParseFile(file)
		if err != nil {
			r.logger.Warn("skipping unreadable file", "file", file, "error", err)
			continue
		}
		if result.HasErrors() {
			r.logger.Debug("partial parse", "file", file, "error", result.Errors[0].Message)
		}
		for _, sym := range result.Symbols {
			if Matches(q, sym) {
				defs = append(defs, types.NewDefinition(sym))
			}
		}
	}

	r.logger.Debug("resolved from source", "query", q.String(), "files", len(files), "matches", len(defs))
	sortDefinitions(defs)
	return defs, nil
}

// ErrNotIndexed is returned when no index covers the resolver's root
var ErrNotIndexed = errors.New("project is not indexed")

// IndexResolver answers queries from the sqlite index
type IndexResolver struct {
	store  storage.Storage
	root   string
	logger hclog.Logger
}

// NewIndexResolver creates a resolver for the project containing root
func NewIndexResolver(store storage.Storage, root string, logger hclog.Logger) *IndexResolver {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &IndexResolver{store: store, root: root, logger: logger}
}

// Resolve looks the name up in the index and filters by arguments
func (r *IndexResolver) Resolve(ctx context.Context, q types.Query) ([]types.Definition, error) {
	project, err := indexer.ResolveProject(ctx, r.store, r.root)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotIndexed, r.root)
	}
	if err != nil {
		return nil, err
	}

	filter := storage.SymbolFilter{
		ProjectID: project.ID,
		Name:      q.Name,
		Receiver:  q.Receiver,
	}
	if q.Package != "" {
		filter.PackageName = path.Base(q.Package)
	}

	syms, err := r.store.FindSymbols(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query index: %w", err)
	}

	var defs []types.Definition
	for _, s := range syms {
		sym := s.ToTypesSymbol()
		if Matches(q, sym) {
			defs = append(defs, types.NewDefinition(sym))
		}
	}

	r.logger.Debug("resolved from index", "query", q.String(), "project", project.RootPath, "matches", len(defs))
	sortDefinitions(defs)
	return defs, nil
}
