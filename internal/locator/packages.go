package locator

import (
	"context"
	"fmt"
	"go/ast"
	"go/token"
	gotypes "go/types"
	"strings"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/tools/go/packages"

	"github.com/dshills/gogat/pkg/types"
)

const loadMode = packages.NeedName | packages.NeedFiles | packages.NeedSyntax |
	packages.NeedTypes | packages.NeedTypesInfo

// PackagesResolver type-checks the packages matching patterns and looks
// definitions up in their scopes and method sets. Argument types are
// checked for assignability rather than compared as text.
type PackagesResolver struct {
	dir      string
	patterns []string
	tests    bool
	logger   hclog.Logger
}

// NewPackagesResolver loads patterns (default "./...") relative to dir
func NewPackagesResolver(dir string, patterns []string, tests bool, logger hclog.Logger) *PackagesResolver {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &PackagesResolver{dir: dir, patterns: patterns, tests: tests, logger: logger}
}

// Resolve loads the packages and returns the matching definitions
func (r *PackagesResolver) Resolve(ctx context.Context, q types.Query) ([]types.Definition, error) {
	cfg := &packages.Config{
		Mode:    loadMode,
		Context: ctx,
		Dir:     r.dir,
		Tests:   r.tests,
	}
	pkgs, err := packages.Load(cfg, r.patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	var defs []types.Definition
	seen := make(map[types.Location]bool)
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			r.logger.Debug("package error", "package", pkg.PkgPath, "error", e.Msg)
		}
		if pkg.Types == nil || !packageMatches(q.Package, pkg.Name, pkg.PkgPath) {
			continue
		}

		for _, obj := range candidates(pkg.Types, q) {
			sym, ok := symbolFor(pkg, obj)
			if !ok {
				continue
			}
			if !q.AnyArgs && !argsAccept(pkg, q.ArgTypes, obj) {
				continue
			}
			def := types.NewDefinition(sym)
			// Test variants of a package repeat its files
			if seen[def.Location] {
				continue
			}
			seen[def.Location] = true
			defs = append(defs, def)
		}
	}

	r.logger.Debug("resolved from packages", "query", q.String(), "packages", len(pkgs), "matches", len(defs))
	sortDefinitions(defs)
	return defs, nil
}

// candidates returns the objects named q.Name: package-level functions,
// methods of named types and, without an argument tuple, any other
// package-level object
func candidates(pkg *gotypes.Package, q types.Query) []gotypes.Object {
	scope := pkg.Scope()
	var out []gotypes.Object

	if q.Receiver == "" {
		if obj := scope.Lookup(q.Name); obj != nil {
			if _, isFunc := obj.(*gotypes.Func); isFunc || q.AnyArgs {
				out = append(out, obj)
			}
		}
	}

	for _, name := range scope.Names() {
		if q.Receiver != "" && name != q.Receiver {
			continue
		}
		tn, ok := scope.Lookup(name).(*gotypes.TypeName)
		if !ok {
			continue
		}
		named, ok := tn.Type().(*gotypes.Named)
		if !ok {
			continue
		}
		for i := 0; i < named.NumMethods(); i++ {
			if m := named.Method(i); m.Name() == q.Name {
				out = append(out, m)
			}
		}
	}
	return out
}

// argsAccept checks every argument against the parameters of fn. An
// argument that does not evaluate as a type in the package falls back to
// a textual comparison.
func argsAccept(pkg *packages.Package, args []string, obj gotypes.Object) bool {
	fn, ok := obj.(*gotypes.Func)
	if !ok {
		return false
	}
	sig := fn.Type().(*gotypes.Signature)
	params := sig.Params()
	qual := gotypes.RelativeTo(pkg.Types)

	accepts := func(arg string, param gotypes.Type) bool {
		arg = strings.TrimSpace(arg)
		if arg == "" || arg == "_" || arg == "?" {
			return true
		}
		tv, err := gotypes.Eval(pkg.Fset, pkg.Types, token.NoPos, arg)
		if err != nil || tv.Type == nil {
			return types.MatchType(arg, gotypes.TypeString(param, qual))
		}
		return gotypes.AssignableTo(tv.Type, param)
	}

	if !sig.Variadic() {
		if len(args) != params.Len() {
			return false
		}
		for i := range args {
			if !accepts(args[i], params.At(i).Type()) {
				return false
			}
		}
		return true
	}

	fixed := params.Len() - 1
	if len(args) < fixed {
		return false
	}
	for i := 0; i < fixed; i++ {
		if !accepts(args[i], params.At(i).Type()) {
			return false
		}
	}
	tail := params.At(fixed).Type().(*gotypes.Slice)
	rest := args[fixed:]
	if len(rest) == 1 && strings.HasPrefix(strings.TrimSpace(rest[0]), "...") {
		return accepts("[]"+strings.TrimPrefix(strings.TrimSpace(rest[0]), "..."), tail)
	}
	for _, arg := range rest {
		if !accepts(arg, tail.Elem()) {
			return false
		}
	}
	return true
}

// symbolFor builds a Symbol for obj with the span of its declaration
func symbolFor(pkg *packages.Package, obj gotypes.Object) (types.Symbol, bool) {
	start, end, doc, ok := declSpan(pkg, obj.Pos())
	if !ok {
		return types.Symbol{}, false
	}
	qual := gotypes.RelativeTo(pkg.Types)
	file := pkg.Fset.Position(start).Filename

	sym := types.Symbol{
		Name:       obj.Name(),
		Package:    pkg.Name,
		File:       file,
		Signature:  gotypes.ObjectString(obj, qual),
		DocComment: doc,
		Scope:      types.ScopeUnexported,
		Start:      position(pkg.Fset, start),
		End:        position(pkg.Fset, end),
	}
	if obj.Exported() {
		sym.Scope = types.ScopeExported
	}

	switch o := obj.(type) {
	case *gotypes.Func:
		sig := o.Type().(*gotypes.Signature)
		sym.Kind = types.KindFunction
		if recv := sig.Recv(); recv != nil {
			sym.Kind = types.KindMethod
			sym.Receiver = receiverTypeName(recv.Type())
		}
		sym.Params = printedParams(sig, qual)
	case *gotypes.TypeName:
		sym.Kind = types.KindType
		switch o.Type().Underlying().(type) {
		case *gotypes.Struct:
			sym.Kind = types.KindStruct
		case *gotypes.Interface:
			sym.Kind = types.KindInterface
		}
	case *gotypes.Const:
		sym.Kind = types.KindConst
	default:
		sym.Kind = types.KindVar
	}
	return sym, true
}

func receiverTypeName(t gotypes.Type) string {
	if p, ok := t.(*gotypes.Pointer); ok {
		t = p.Elem()
	}
	if named, ok := t.(*gotypes.Named); ok {
		return named.Obj().Name()
	}
	return gotypes.TypeString(t, nil)
}

func printedParams(sig *gotypes.Signature, qual gotypes.Qualifier) []string {
	params := sig.Params()
	out := make([]string, 0, params.Len())
	for i := 0; i < params.Len(); i++ {
		t := params.At(i).Type()
		if sig.Variadic() && i == params.Len()-1 {
			out = append(out, "..."+gotypes.TypeString(t.(*gotypes.Slice).Elem(), qual))
			continue
		}
		out = append(out, gotypes.TypeString(t, qual))
	}
	return out
}

// declSpan finds the declaration whose name sits at pos. Doc comments are
// not part of the span.
func declSpan(pkg *packages.Package, pos token.Pos) (token.Pos, token.Pos, string, bool) {
	for _, file := range pkg.Syntax {
		if pos < file.Pos() || pos > file.End() {
			continue
		}
		for _, decl := range file.Decls {
			switch d := decl.(type) {
			case *ast.FuncDecl:
				if d.Name.Pos() == pos {
					return d.Pos(), d.End(), d.Doc.Text(), true
				}
			case *ast.GenDecl:
				for _, spec := range d.Specs {
					if !specDeclares(spec, pos) {
						continue
					}
					doc := d.Doc
					if d.Lparen.IsValid() {
						doc = specDoc(spec)
						return spec.Pos(), spec.End(), doc.Text(), true
					}
					return d.Pos(), d.End(), doc.Text(), true
				}
			}
		}
	}
	return token.NoPos, token.NoPos, "", false
}

func specDeclares(spec ast.Spec, pos token.Pos) bool {
	switch s := spec.(type) {
	case *ast.TypeSpec:
		return s.Name.Pos() == pos
	case *ast.ValueSpec:
		for _, name := range s.Names {
			if name.Pos() == pos {
				return true
			}
		}
	}
	return false
}

func specDoc(spec ast.Spec) *ast.CommentGroup {
	switch s := spec.(type) {
	case *ast.TypeSpec:
		return s.Doc
	case *ast.ValueSpec:
		return s.Doc
	}
	return nil
}

func position(fset *token.FileSet, pos token.Pos) types.Position {
	p := fset.Position(pos)
	return types.Position{Line: p.Line, Column: p.Column}
}
