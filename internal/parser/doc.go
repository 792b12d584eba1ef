// Package parser extracts definitions from Go source files using AST parsing.
//
// The parser uses the standard library (go/parser, go/ast, go/token) to
// extract the top-level functions, methods, types, constants and variables
// of a file together with the exact line span of each declaration.
//
// # Basic Usage
//
//	p := parser.New()
//	result, err := p.ParseFile("/path/to/file.go")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, symbol := range result.Callables() {
//	    fmt.Printf("%s %s\n", symbol.Signature, symbol.Location())
//	}
//
// # Parameters
//
// Functions and methods carry one printed type per parameter in
// Symbol.Params, in the spelling go/types.ExprString produces. A variadic
// tail is printed as "...T". The locator matches argument-type tuples
// against these strings.
//
// # Error Handling
//
// Syntax errors are recorded on the result rather than returned, and the
// partial AST still yields symbols. An unreadable file is a types.IOError.
package parser
