// Package locator resolves a callable reference to the file and line span
// of its definition.
//
// A Query names the symbol (optionally qualified by package and receiver)
// and the argument types it is called with. Three Resolver backends exist:
//
//   - SourceResolver parses the Go files of a tree on demand
//   - IndexResolver reads the sqlite index built by the indexer
//   - PackagesResolver type-checks with golang.org/x/tools/go/packages
//
// Locator sits on top of a Resolver. Zero matches fail with a
// types.NotFoundError, one match is returned as is, and several go through
// a selector.Selector.
//
// # Query syntax
//
//	Add                    any definition named Add
//	Add(int, int)          callables accepting (int, int)
//	math.Add               Add in package math
//	Calc.Add, (*Calc).Add  method Add of type Calc
//	example.com/calc.Add   Add in the package with that import path
//
// ParseCall reads a call expression instead and infers the argument types
// from literals without evaluating anything.
package locator
