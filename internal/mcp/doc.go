// Package mcp implements the Model Context Protocol (MCP) server for gogat.
//
// The server exposes the definition locator to AI coding assistants:
//   - index_codebase: Index the definitions of a Go project
//   - locate_definition: Find where a function or method is defined
//   - show_definition: Return the source text of a definition
//   - search_symbols: Substring search over indexed symbol names
//   - list_definitions: Indexed definitions of one file in line order
//   - get_status: Check indexing status and statistics
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// The server is started with:
//
//	gogat mcp
//
// # Tool: locate_definition
//
// A reference is given either as a symbol with optional argument types or
// as a call expression:
//
//	{
//	  "name": "locate_definition",
//	  "arguments": {
//	    "path": "/path/to/project",
//	    "symbol": "Calc.Add",
//	    "arg_types": ["int"]
//	  }
//	}
//
//	{
//	  "name": "locate_definition",
//	  "arguments": {
//	    "path": "/path/to/project",
//	    "call": "math.Add(1, 2)"
//	  }
//	}
//
// Every matching definition is returned, sorted by path and line. No
// interactive selection happens over MCP:
//
//	{
//	  "query": "math.Add(int, int)",
//	  "backend": "index",
//	  "count": 1,
//	  "definitions": [
//	    {
//	      "name": "Add",
//	      "kind": "function",
//	      "package": "math",
//	      "signature": "func Add(x int, y int) int",
//	      "path": "/path/to/project/math/math.go",
//	      "start_line": 10,
//	      "end_line": 12
//	    }
//	  ]
//	}
//
// show_definition takes the same arguments and adds "source" and "lang" to
// each definition.
//
// The backend argument selects where definitions come from. It defaults to
// the index when the project was indexed and to on-demand parsing otherwise.
//
// # Error Handling
//
// Errors follow JSON-RPC 2.0 conventions with these codes:
//
//	-32602: Invalid parameters (bad path, invalid query)
//	-32603: Internal error (database, parsing)
//	-32001: Project not found (no Go files)
//	-32002: Indexing in progress
//	-32003: Project not indexed
//	-32004: Empty query
//	-32005: No definition matches the query
//
// # Concurrency
//
// Only one index_codebase call runs at a time; a second one fails
// immediately with -32002. Lookups may run concurrently with indexing.
package mcp
