package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/gogat/internal/config"
	"github.com/dshills/gogat/internal/extractor"
	"github.com/dshills/gogat/internal/indexer"
	"github.com/dshills/gogat/internal/locator"
	"github.com/dshills/gogat/internal/storage"
	"github.com/dshills/gogat/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams      = -32602 // Invalid method parameters
	ErrorCodeInternalError      = -32603 // Internal JSON-RPC error
	ErrorCodeProjectNotFound    = -32001 // Specified path does not contain a Go project
	ErrorCodeIndexingInProgress = -32002 // Another indexing operation is already running
	ErrorCodeNotIndexed         = -32003 // Project not indexed
	ErrorCodeEmptyQuery         = -32004 // Query parameter is empty
	ErrorCodeNotFound           = -32005 // No definition matches the query
)

// handleIndexCodebase handles the index_codebase tool invocation
func (s *Server) handleIndexCodebase(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, err := requirePath(args)
	if err != nil {
		return nil, err
	}

	if !s.lock.TryAcquire() {
		return nil, newMCPError(ErrorCodeIndexingInProgress, "indexing already in progress", map[string]interface{}{
			"path": path,
		})
	}
	defer s.lock.Release()

	cfg := &indexer.Config{
		IncludeTests:  getBoolDefault(args, "include_tests", true),
		IncludeVendor: getBoolDefault(args, "include_vendor", false),
		Ignore:        getStringSlice(args, "ignore"),
		Force:         getBoolDefault(args, "force_reindex", false),
	}

	stats, err := s.indexer.IndexProject(ctx, path, cfg)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "indexing failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"indexed":           true,
		"files_indexed":     stats.FilesIndexed,
		"files_skipped":     stats.FilesSkipped,
		"files_failed":      stats.FilesFailed,
		"files_removed":     stats.FilesRemoved,
		"symbols_extracted": stats.SymbolsExtracted,
		"duration_ms":       stats.Duration.Milliseconds(),
	}

	if len(stats.ErrorMessages) > 0 {
		// Include first few errors
		errorCount := len(stats.ErrorMessages)
		if errorCount > 5 {
			response["errors"] = stats.ErrorMessages[:5]
			response["error_count"] = errorCount
		} else {
			response["errors"] = stats.ErrorMessages
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleLocateDefinition handles the locate_definition tool invocation
func (s *Server) handleLocateDefinition(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q, backend, defs, err := s.resolveDefinitions(ctx, request)
	if err != nil {
		return nil, err
	}

	results := make([]map[string]interface{}, len(defs))
	for i, def := range defs {
		results[i] = definitionJSON(def)
	}

	response := map[string]interface{}{
		"query":       q.String(),
		"backend":     backend,
		"count":       len(defs),
		"definitions": results,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleShowDefinition handles the show_definition tool invocation
func (s *Server) handleShowDefinition(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q, backend, defs, err := s.resolveDefinitions(ctx, request)
	if err != nil {
		return nil, err
	}

	results := make([]map[string]interface{}, len(defs))
	for i, def := range defs {
		result := definitionJSON(def)
		snippet, err := extractor.ExtractFile(def.Location.Path, def.Location.StartLine)
		if err != nil {
			result["error"] = err.Error()
		} else {
			result["source"] = snippet.Text()
			result["lang"] = snippet.Lang
			result["end_line"] = snippet.EndLine
		}
		results[i] = result
	}

	response := map[string]interface{}{
		"query":       q.String(),
		"backend":     backend,
		"count":       len(defs),
		"definitions": results,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSearchSymbols handles the search_symbols tool invocation
func (s *Server) handleSearchSymbols(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, err := requirePath(args)
	if err != nil {
		return nil, err
	}

	query := strings.TrimSpace(getStringDefault(args, "query", ""))
	if query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	limit := getIntDefault(args, "limit", 20)
	if limit < 1 || limit > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	project, err := indexer.ResolveProject(ctx, s.storage, path)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, notIndexedError(path)
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get project", map[string]interface{}{
			"error": err.Error(),
		})
	}

	syms, err := s.storage.SearchSymbols(ctx, project.ID, query, limit)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	results := make([]map[string]interface{}, len(syms))
	for i, sym := range syms {
		results[i] = definitionJSON(types.NewDefinition(sym.ToTypesSymbol()))
	}

	response := map[string]interface{}{
		"query":   query,
		"count":   len(results),
		"results": results,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleListDefinitions handles the list_definitions tool invocation
func (s *Server) handleListDefinitions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, err := requirePath(args)
	if err != nil {
		return nil, err
	}

	file := strings.TrimSpace(getStringDefault(args, "file", ""))
	if file == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "file parameter is required", map[string]interface{}{
			"param":  "file",
			"reason": "missing or empty",
		})
	}

	project, err := indexer.ResolveProject(ctx, s.storage, path)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, notIndexedError(path)
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get project", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Files are stored relative to the project root with forward slashes
	rel := file
	if filepath.IsAbs(file) {
		if rel, err = filepath.Rel(project.RootPath, file); err != nil {
			rel = file
		}
	}
	rel = filepath.ToSlash(filepath.Clean(rel))

	f, err := s.storage.GetFile(ctx, project.ID, rel)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, newMCPError(ErrorCodeNotFound, "file not indexed", map[string]interface{}{
			"file":    file,
			"project": project.RootPath,
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get file", map[string]interface{}{
			"error": err.Error(),
		})
	}

	syms, err := s.storage.ListSymbolsByFile(ctx, f.ID)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to list definitions", map[string]interface{}{
			"error": err.Error(),
		})
	}

	results := make([]map[string]interface{}, len(syms))
	for i, sym := range syms {
		results[i] = definitionJSON(types.NewDefinition(sym.ToTypesSymbol()))
	}

	response := map[string]interface{}{
		"file":        rel,
		"package":     f.PackageName,
		"count":       len(results),
		"definitions": results,
	}
	if f.ParseError != nil {
		response["parse_error"] = *f.ParseError
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, err := requirePath(args)
	if err != nil {
		return nil, err
	}

	project, err := indexer.ResolveProject(ctx, s.storage, path)
	if errors.Is(err, storage.ErrNotFound) {
		response := map[string]interface{}{
			"indexed": false,
			"path":    path,
			"message": "Project not indexed. Use index_codebase tool to index this project.",
		}
		return mcp.NewToolResultText(formatJSON(response)), nil
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get project status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	status, err := s.storage.GetStatus(ctx, project.ID)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"indexed": true,
		"project": map[string]interface{}{
			"path":            project.RootPath,
			"module_name":     project.ModuleName,
			"go_version":      project.GoVersion,
			"last_indexed_at": project.LastIndexedAt.Format("2006-01-02T15:04:05Z07:00"),
		},
		"statistics": map[string]interface{}{
			"files_count":    status.FilesCount,
			"symbols_count":  status.SymbolsCount,
			"parse_errors":   status.ParseErrors,
			"index_size_mb":  fmt.Sprintf("%.2f", status.IndexSizeMB),
			"schema_version": status.SchemaVer,
		},
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// resolveDefinitions parses the query arguments shared by the definition
// tools and returns every match. No selector is involved.
func (s *Server) resolveDefinitions(ctx context.Context, request mcp.CallToolRequest) (types.Query, string, []types.Definition, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return types.Query{}, "", nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, err := requirePath(args)
	if err != nil {
		return types.Query{}, "", nil, err
	}

	q, err := queryFromArgs(args)
	if err != nil {
		return types.Query{}, "", nil, err
	}

	resolver, backend, err := s.resolverFor(ctx, path, getStringDefault(args, "backend", ""))
	if err != nil {
		return types.Query{}, "", nil, err
	}

	defs, err := locator.New(resolver, nil, s.logger.Named("locator")).All(ctx, q)
	switch {
	case errors.Is(err, types.ErrNotFound):
		return q, backend, nil, newMCPError(ErrorCodeNotFound, err.Error(), map[string]interface{}{
			"query":   q.String(),
			"backend": backend,
		})
	case errors.Is(err, locator.ErrNotIndexed):
		return q, backend, nil, notIndexedError(path)
	case err != nil:
		return q, backend, nil, newMCPError(ErrorCodeInternalError, "failed to resolve definitions", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return q, backend, defs, nil
}

// queryFromArgs builds the query from either "symbol" (+ "arg_types") or
// "call"
func queryFromArgs(args map[string]interface{}) (types.Query, error) {
	symbol := strings.TrimSpace(getStringDefault(args, "symbol", ""))
	call := strings.TrimSpace(getStringDefault(args, "call", ""))

	var q types.Query
	var err error
	switch {
	case call != "":
		q, err = locator.ParseCall(call)
	case symbol != "":
		q, err = locator.ParseQuery(symbol, getStringSlice(args, "arg_types"))
	default:
		return q, newMCPError(ErrorCodeEmptyQuery, "symbol or call parameter is required", map[string]interface{}{
			"param":  "symbol",
			"reason": "missing or empty",
		})
	}
	if err != nil {
		return q, newMCPError(ErrorCodeInvalidParams, "invalid query", map[string]interface{}{
			"reason": err.Error(),
		})
	}
	return q, nil
}

// resolverFor picks the backend. Without an explicit choice an indexed
// project uses the index.
func (s *Server) resolverFor(ctx context.Context, root, backend string) (locator.Resolver, string, error) {
	if backend == "" {
		backend = config.BackendSource
		if _, err := indexer.ResolveProject(ctx, s.storage, root); err == nil {
			backend = config.BackendIndex
		}
	}

	logger := s.logger.Named("locator")
	switch backend {
	case config.BackendIndex:
		return locator.NewIndexResolver(s.storage, root, logger), backend, nil
	case config.BackendSource:
		return locator.NewSourceResolver(root, indexer.DiscoveryOptions{IncludeTests: true}, logger), backend, nil
	case config.BackendPackages:
		return locator.NewPackagesResolver(root, nil, false, logger), backend, nil
	default:
		return nil, "", newMCPError(ErrorCodeInvalidParams, "invalid backend", map[string]interface{}{
			"param":   "backend",
			"value":   backend,
			"allowed": []string{config.BackendIndex, config.BackendSource, config.BackendPackages},
		})
	}
}

func definitionJSON(def types.Definition) map[string]interface{} {
	return map[string]interface{}{
		"name":       def.Symbol.Name,
		"kind":       string(def.Symbol.Kind),
		"package":    def.Symbol.Package,
		"receiver":   def.Symbol.Receiver,
		"signature":  def.Symbol.Signature,
		"path":       def.Location.Path,
		"start_line": def.Location.StartLine,
		"end_line":   def.Location.EndLine,
	}
}

func notIndexedError(path string) error {
	return newMCPError(ErrorCodeNotIndexed, "project not indexed", map[string]interface{}{
		"path":    path,
		"message": "Use index_codebase tool to index this project.",
	})
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// requirePath extracts and validates the path parameter
func requirePath(args map[string]interface{}) (string, error) {
	path, ok := args["path"].(string)
	if !ok || path == "" {
		return "", newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	if err := validatePath(path); err != nil {
		code := ErrorCodeInvalidParams
		if errors.Is(err, ErrNoGoFiles) {
			code = ErrorCodeProjectNotFound
		}
		return "", newMCPError(code, "invalid path", map[string]interface{}{
			"param":  "path",
			"reason": err.Error(),
		})
	}
	return filepath.Clean(path), nil
}

// validatePath checks that path is an absolute, readable directory holding
// Go files
func validatePath(path string) error {
	if path == "" {
		return ErrPathRequired
	}

	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}

	if !info.IsDir() {
		return ErrNotDirectory
	}

	errFound := errors.New("found")
	err = filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() && strings.HasSuffix(p, ".go") {
			return errFound
		}
		return nil
	})
	if err == errFound {
		return nil
	}
	if err != nil {
		return ErrPathNotReadable
	}
	return ErrNoGoFiles
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// getStringSlice extracts a string array parameter; nil when absent
func getStringSlice(args map[string]interface{}, key string) []string {
	switch val := args[key].(type) {
	case []string:
		return val
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, v := range val {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Validation helpers

var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotDirectory    = errors.New("path is not a directory")
	ErrNoGoFiles       = errors.New("directory does not contain Go files")
)
