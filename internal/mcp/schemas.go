package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Shared parameters of the definition tools
func definitionProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": map[string]interface{}{
			"type":        "string",
			"description": "Absolute path to the Go project root (or a directory inside it)",
		},
		"symbol": map[string]interface{}{
			"type":        "string",
			"description": "Symbol reference: Name, pkg.Name, Type.Method, (*Type).Method, path/to/pkg.Name, optionally with an argument list such as Add(int, int)",
		},
		"arg_types": map[string]interface{}{
			"type":        "array",
			"description": "Argument types the callable is called with; \"_\" matches any type. Omit to match any arguments",
			"items": map[string]interface{}{
				"type": "string",
			},
		},
		"call": map[string]interface{}{
			"type":        "string",
			"description": "A call expression such as strings.Repeat(\"a\", 3), used instead of symbol",
		},
		"backend": map[string]interface{}{
			"type":        "string",
			"description": "Where definitions come from: index (requires index_codebase), source (parse on demand) or packages (type-checked). Defaults to index when the project is indexed, source otherwise",
			"enum":        []string{"index", "source", "packages"},
		},
	}
}

// indexCodebaseTool returns the tool definition for index_codebase
func indexCodebaseTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_codebase",
		Description: "Index the definitions of a Go codebase so they can be located and searched",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to Go project root (must contain .go files)",
				},
				"force_reindex": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, re-parse all files ignoring content hashes (full rebuild)",
					"default":     false,
				},
				"include_tests": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, index *_test.go files",
					"default":     true,
				},
				"include_vendor": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, index vendor/ directory",
					"default":     false,
				},
				"ignore": map[string]interface{}{
					"type":        "array",
					"description": "Glob patterns relative to the root to skip (e.g., 'internal/gen/**')",
					"items": map[string]interface{}{
						"type": "string",
					},
				},
			},
			Required: []string{"path"},
		},
	}
}

// locateDefinitionTool returns the tool definition for locate_definition
func locateDefinitionTool() mcp.Tool {
	return mcp.Tool{
		Name:        "locate_definition",
		Description: "Find the file and line span of every definition matching a Go function or method reference",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: definitionProperties(),
			Required:   []string{"path"},
		},
	}
}

// showDefinitionTool returns the tool definition for show_definition
func showDefinitionTool() mcp.Tool {
	return mcp.Tool{
		Name:        "show_definition",
		Description: "Return the source text of every definition matching a Go function or method reference",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: definitionProperties(),
			Required:   []string{"path"},
		},
	}
}

// searchSymbolsTool returns the tool definition for search_symbols
func searchSymbolsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_symbols",
		Description: "Search indexed symbol names by substring; exact matches rank first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to indexed Go project",
				},
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Substring of the symbol name",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100)",
					"default":     20,
					"minimum":     1,
					"maximum":     100,
				},
			},
			Required: []string{"path", "query"},
		},
	}
}

// listDefinitionsTool returns the tool definition for list_definitions
func listDefinitionsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_definitions",
		Description: "List the indexed definitions of one file in line order",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to indexed Go project",
				},
				"file": map[string]interface{}{
					"type":        "string",
					"description": "File relative to the project root, or an absolute path inside it",
				},
			},
			Required: []string{"path", "file"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Query indexing status and statistics for a Go project",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to Go project",
				},
			},
			Required: []string{"path"},
		},
	}
}
