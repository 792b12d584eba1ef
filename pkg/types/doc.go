// Package types provides shared type definitions for gogat.
//
// This package defines the domain types used across the locator, the
// snippet extractor and the highlight invoker.
//
// # Core Types
//
// Symbol represents a Go language construct (function, method, type, etc.)
// extracted from source code via AST parsing:
//
//	symbol := &types.Symbol{
//	    Name:      "Repeat",
//	    Kind:      types.KindFunction,
//	    Package:   "strings",
//	    Signature: "func Repeat(s string, count int) string",
//	    Params:    []string{"string", "int"},
//	}
//
// Query is a definition reference. Its argument tuple is matched against
// the printed parameter types of candidate symbols:
//
//	q := types.Query{Package: "strings", Name: "Repeat", ArgTypes: []string{"string", "int"}}
//	q.MatchArgs(symbol.Params) // true
//
// Location is the resolved (absolute path, start line, end line) of a
// definition and Definition pairs it with the symbol it came from.
//
// # Errors
//
// Every outcome of a call maps onto one sentinel error:
//
//	errors.Is(err, types.ErrNotFound)           // no matching definition
//	errors.Is(err, types.ErrSelectionCancelled) // user aborted the selector
//	errors.Is(err, types.ErrTruncated)          // no complete definition before EOF
//	errors.Is(err, types.ErrProcessFailure)     // child missing or exited non-zero
//	errors.Is(err, types.ErrIO)                 // source file unreadable
//
// ProcessError carries the exit code and captured stderr of a child process.
package types
