package locator

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	gotypes "go/types"
	"regexp"
	"strings"

	"github.com/dshills/gogat/pkg/types"
)

// methodExpr matches "(*T).M", "(T).M" and "pkg.(*T).M", with optional type
// parameters on T
var methodExpr = regexp.MustCompile(`^(?:(.+)\.)?\(\*?([A-Za-z_][A-Za-z0-9_]*)(?:\[[^\]]*\])?\)\.([A-Za-z_][A-Za-z0-9_]*)$`)

// ParseQuery parses a symbol reference. Accepted forms are Name, pkg.Name,
// Type.Method, pkg.Type.Method, (*Type).Method and path/to/pkg.Name, each
// optionally followed by a parenthesized argument type list such as
// "Add(int, int)". Without a list, argTypes is used; a nil argTypes
// matches any arguments.
func ParseQuery(s string, argTypes []string) (types.Query, error) {
	s = strings.TrimSpace(s)
	ref, list, hasList, err := splitArgList(s)
	if err != nil {
		return types.Query{}, err
	}

	q, err := parseReference(ref)
	if err != nil {
		return types.Query{}, err
	}

	switch {
	case hasList:
		q.ArgTypes = list
	case argTypes != nil:
		q.ArgTypes = argTypes
	default:
		q.AnyArgs = true
	}
	return q, q.Validate()
}

func parseReference(ref string) (types.Query, error) {
	var q types.Query
	if ref == "" {
		return q, types.ErrEmptyQuery
	}

	if m := methodExpr.FindStringSubmatch(ref); m != nil {
		q.Package, q.Receiver, q.Name = m[1], m[2], m[3]
		return q, nil
	}

	// An import path prefix always names a package
	var path string
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		dot := strings.Index(ref[i:], ".")
		if dot < 0 {
			return q, fmt.Errorf("invalid symbol %q: missing name after package path", ref)
		}
		path = ref[:i+dot]
		ref = ref[i+dot+1:]
	}

	parts := strings.Split(ref, ".")
	for _, p := range parts {
		if !token.IsIdentifier(p) {
			return q, fmt.Errorf("invalid symbol %q", ref)
		}
	}

	switch len(parts) {
	case 1:
		q.Package, q.Name = path, parts[0]
	case 2:
		if path != "" {
			q.Package, q.Receiver, q.Name = path, parts[0], parts[1]
		} else if token.IsExported(parts[0]) {
			q.Receiver, q.Name = parts[0], parts[1]
		} else {
			q.Package, q.Name = parts[0], parts[1]
		}
	case 3:
		if path != "" {
			return q, fmt.Errorf("invalid symbol %q", ref)
		}
		q.Package, q.Receiver, q.Name = parts[0], parts[1], parts[2]
	default:
		return q, fmt.Errorf("invalid symbol %q", ref)
	}
	return q, nil
}

// splitArgList separates a trailing "(T1, T2)" list from the reference.
// A parenthesized receiver such as "(*T).M" is not an argument list.
func splitArgList(s string) (string, []string, bool, error) {
	if !strings.HasSuffix(s, ")") {
		return s, nil, false, nil
	}

	depth := 0
	open := -1
	for i := len(s) - 1; i >= 0; i-- {
		switch s[i] {
		case ')', ']', '}':
			depth++
		case '(', '[', '{':
			depth--
		}
		if depth == 0 {
			open = i
			break
		}
	}
	if open < 0 {
		return "", nil, false, fmt.Errorf("invalid symbol %q: unbalanced parentheses", s)
	}
	if open == 0 || s[open-1] == '.' {
		return s, nil, false, nil
	}

	return strings.TrimSpace(s[:open]), splitTopLevel(s[open+1 : len(s)-1]), true, nil
}

// splitTopLevel splits a type list on commas outside brackets
func splitTopLevel(s string) []string {
	out := []string{}
	if strings.TrimSpace(s) == "" {
		return out
	}

	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	return append(out, strings.TrimSpace(s[start:]))
}

// ParseCall resolves the target of a call expression such as
// `strings.Repeat("a", 3)` without evaluating its arguments. Argument types
// are inferred from literals; anything else becomes a wildcard.
func ParseCall(expr string) (types.Query, error) {
	e, err := parser.ParseExpr(expr)
	if err != nil {
		return types.Query{}, fmt.Errorf("invalid call expression: %w", err)
	}
	call, ok := e.(*ast.CallExpr)
	if !ok {
		return types.Query{}, fmt.Errorf("not a call expression: %s", expr)
	}

	q, err := callTarget(call.Fun)
	if err != nil {
		return types.Query{}, err
	}

	q.ArgTypes = make([]string, 0, len(call.Args))
	for i, arg := range call.Args {
		t := inferType(arg)
		if call.Ellipsis.IsValid() && i == len(call.Args)-1 && t != "_" {
			t = "..." + strings.TrimPrefix(t, "[]")
		}
		q.ArgTypes = append(q.ArgTypes, t)
	}
	return q, q.Validate()
}

func callTarget(fun ast.Expr) (types.Query, error) {
	var q types.Query

	switch f := fun.(type) {
	case *ast.Ident:
		q.Name = f.Name
	case *ast.IndexExpr:
		return callTarget(f.X)
	case *ast.IndexListExpr:
		return callTarget(f.X)
	case *ast.ParenExpr:
		return callTarget(f.X)
	case *ast.SelectorExpr:
		q.Name = f.Sel.Name
		switch x := f.X.(type) {
		case *ast.Ident:
			if token.IsExported(x.Name) {
				q.Receiver = x.Name
			} else {
				q.Package = x.Name
			}
		case *ast.SelectorExpr:
			pkg, ok := x.X.(*ast.Ident)
			if !ok {
				return q, fmt.Errorf("unsupported call target %s", gotypes.ExprString(fun))
			}
			q.Package, q.Receiver = pkg.Name, x.Sel.Name
		case *ast.ParenExpr:
			q.Package, q.Receiver = receiverOf(x.X)
		default:
			return q, fmt.Errorf("unsupported call target %s", gotypes.ExprString(fun))
		}
	default:
		return q, fmt.Errorf("unsupported call target %s", gotypes.ExprString(fun))
	}
	return q, nil
}

// receiverOf unpacks "*T", "*pkg.T" and "T[K]" inside a method expression
func receiverOf(expr ast.Expr) (string, string) {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return receiverOf(t.X)
	case *ast.IndexExpr:
		return receiverOf(t.X)
	case *ast.IndexListExpr:
		return receiverOf(t.X)
	case *ast.SelectorExpr:
		if pkg, ok := t.X.(*ast.Ident); ok {
			return pkg.Name, t.Sel.Name
		}
	case *ast.Ident:
		return "", t.Name
	}
	return "", ""
}

// basicTypes are the predeclared names that make a call a conversion
var basicTypes = map[string]bool{
	"bool": true, "string": true, "byte": true, "rune": true, "error": true,
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true, "uintptr": true,
	"float32": true, "float64": true, "complex64": true, "complex128": true,
}

// inferType returns the printed type of a literal argument or "_"
func inferType(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.BasicLit:
		switch e.Kind {
		case token.INT:
			return "int"
		case token.FLOAT:
			return "float64"
		case token.IMAG:
			return "complex128"
		case token.CHAR:
			return "rune"
		case token.STRING:
			return "string"
		}
	case *ast.Ident:
		if e.Name == "true" || e.Name == "false" {
			return "bool"
		}
	case *ast.ParenExpr:
		return inferType(e.X)
	case *ast.CompositeLit:
		if e.Type != nil {
			return gotypes.ExprString(e.Type)
		}
	case *ast.UnaryExpr:
		if e.Op == token.AND {
			if lit, ok := e.X.(*ast.CompositeLit); ok && lit.Type != nil {
				return "*" + gotypes.ExprString(lit.Type)
			}
			return "_"
		}
		if e.Op == token.NOT {
			return "bool"
		}
		return inferType(e.X)
	case *ast.BinaryExpr:
		switch e.Op {
		case token.EQL, token.NEQ, token.LSS, token.LEQ, token.GTR, token.GEQ, token.LAND, token.LOR:
			return "bool"
		}
		if x, y := inferType(e.X), inferType(e.Y); x == y {
			return x
		}
	case *ast.FuncLit:
		return gotypes.ExprString(e.Type)
	case *ast.CallExpr:
		// Conversions like int64(3) or []byte("x")
		switch f := e.Fun.(type) {
		case *ast.Ident:
			if basicTypes[f.Name] {
				return f.Name
			}
		case *ast.ArrayType, *ast.MapType, *ast.StarExpr, *ast.ParenExpr:
			return strings.TrimSuffix(strings.TrimPrefix(gotypes.ExprString(f), "("), ")")
		}
	}
	return "_"
}
