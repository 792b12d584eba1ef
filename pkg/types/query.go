package types

import (
	"regexp"
	"strings"
)

// Query is a definition reference: an optional owning package, an optional
// receiver type, a callable name and an argument-type tuple.
type Query struct {
	Package  string // Package name or import path suffix; empty matches any
	Receiver string // Receiver type name for methods; empty matches functions and methods
	Name     string

	// ArgTypes are the printed argument types. They are ignored when AnyArgs is set.
	ArgTypes []string
	AnyArgs  bool
}

// Validate checks that the query names a symbol
func (q Query) Validate() error {
	if strings.TrimSpace(q.Name) == "" {
		return ErrEmptyQuery
	}
	return nil
}

// String renders the query the way it would be written at a call site
func (q Query) String() string {
	var b strings.Builder
	if q.Package != "" {
		b.WriteString(q.Package)
		b.WriteByte('.')
	}
	if q.Receiver != "" {
		b.WriteString(q.Receiver)
		b.WriteByte('.')
	}
	b.WriteString(q.Name)
	if !q.AnyArgs {
		b.WriteByte('(')
		b.WriteString(strings.Join(q.ArgTypes, ", "))
		b.WriteByte(')')
	}
	return b.String()
}

// MatchArgs reports whether the query's argument tuple can call a function
// with the given printed parameter types.
func (q Query) MatchArgs(params []string) bool {
	if q.AnyArgs {
		return true
	}
	args := q.ArgTypes

	variadic := len(params) > 0 && strings.HasPrefix(params[len(params)-1], "...")
	if !variadic {
		if len(args) != len(params) {
			return false
		}
		for i := range args {
			if !MatchType(args[i], params[i]) {
				return false
			}
		}
		return true
	}

	fixed := params[:len(params)-1]
	elem := strings.TrimPrefix(params[len(params)-1], "...")
	if len(args) < len(fixed) {
		return false
	}
	for i := range fixed {
		if !MatchType(args[i], fixed[i]) {
			return false
		}
	}
	rest := args[len(fixed):]
	// A slice passed with f(xs...) is written as "...T" or "[]T"
	if len(rest) == 1 {
		spread := strings.TrimSpace(rest[0])
		if strings.HasPrefix(spread, "...") || strings.HasPrefix(spread, "[]") {
			if MatchType(strings.TrimPrefix(strings.TrimPrefix(spread, "..."), "[]"), elem) {
				return true
			}
		}
	}
	for _, arg := range rest {
		if !MatchType(arg, elem) {
			return false
		}
	}
	return true
}

var qualifierPattern = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*\.`)

// MatchType reports whether an argument of printed type arg is accepted by a
// parameter of printed type param. "_" and "?" are wildcards; "any" and
// "interface{}" parameters accept everything. Package qualifiers are
// ignored when the exact spelling differs.
func MatchType(arg, param string) bool {
	a := normalizeType(arg)
	p := normalizeType(param)

	switch {
	case a == "" || a == "_" || a == "?":
		return true
	case p == "any" || p == "interface{}":
		return true
	case a == p:
		return true
	}
	return qualifierPattern.ReplaceAllString(a, "") == qualifierPattern.ReplaceAllString(p, "")
}

func normalizeType(s string) string {
	return strings.Join(strings.Fields(s), "")
}
