package parser

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	gotypes "go/types"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/gogat/pkg/types"
)

// Parser handles AST-based parsing of Go source files
type Parser struct {
	fset *token.FileSet
}

// New creates a new Parser instance
func New() *Parser {
	return &Parser{
		fset: token.NewFileSet(),
	}
}

// ParseFile parses a Go source file and extracts symbols, imports, and package information
func (p *Parser) ParseFile(filePath string) (*types.ParseResult, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, &types.IOError{Path: filePath, Err: err}
	}
	return p.ParseSource(filePath, content)
}

// ParseSource parses already loaded source. filePath is made absolute and
// recorded on every symbol.
func (p *Parser) ParseSource(filePath string, content []byte) (*types.ParseResult, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", filePath, err)
	}

	result := &types.ParseResult{}

	file, err := parser.ParseFile(p.fset, absPath, content, parser.ParseComments)
	if err != nil {
		// Syntax errors are non-fatal; the partial AST still yields symbols
		result.AddError(absPath, 0, 0, fmt.Sprintf("syntax error: %v", err))
	}

	if file == nil {
		return result, nil
	}

	if file.Name != nil {
		result.PackageName = file.Name.Name
	}
	result.Imports = p.extractImports(file)

	extractor := &symbolExtractor{
		fset:        p.fset,
		filePath:    absPath,
		packageName: result.PackageName,
		symbols:     make([]types.Symbol, 0),
	}

	// Only top-level declarations are definitions we can locate
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			extractor.extractFunction(d)
		case *ast.GenDecl:
			extractor.extractGenDecl(d)
		}
	}
	result.Symbols = extractor.symbols

	return result, nil
}

// extractImports extracts import statements from the AST
func (p *Parser) extractImports(file *ast.File) []types.Import {
	imports := make([]types.Import, 0, len(file.Imports))

	for _, imp := range file.Imports {
		importSpec := types.Import{
			Path: strings.Trim(imp.Path.Value, `"`),
		}

		if imp.Name != nil {
			importSpec.Alias = imp.Name.Name
		}

		imports = append(imports, importSpec)
	}

	return imports
}

// symbolExtractor collects symbols from the top-level declarations of one file
type symbolExtractor struct {
	fset        *token.FileSet
	filePath    string
	packageName string
	symbols     []types.Symbol
}

// extractFunction extracts function and method declarations
func (e *symbolExtractor) extractFunction(funcDecl *ast.FuncDecl) {
	sym := types.Symbol{
		Name:       funcDecl.Name.Name,
		Package:    e.packageName,
		File:       e.filePath,
		DocComment: e.extractDocComment(funcDecl.Doc),
		Scope:      e.determineScope(funcDecl.Name.Name),
		Params:     e.paramTypes(funcDecl.Type.Params),
		Start:      e.positionFromToken(funcDecl.Pos()),
		End:        e.positionFromToken(funcDecl.End()),
	}

	if funcDecl.Recv != nil && len(funcDecl.Recv.List) > 0 {
		sym.Kind = types.KindMethod
		sym.Receiver = ReceiverName(funcDecl.Recv.List[0].Type)
	} else {
		sym.Kind = types.KindFunction
	}

	sym.Signature = e.extractFunctionSignature(funcDecl)

	e.symbols = append(e.symbols, sym)
}

// extractGenDecl extracts type, const, and var declarations
func (e *symbolExtractor) extractGenDecl(genDecl *ast.GenDecl) {
	for _, spec := range genDecl.Specs {
		switch s := spec.(type) {
		case *ast.TypeSpec:
			e.extractTypeSpec(genDecl, s)
		case *ast.ValueSpec:
			e.extractValueSpec(genDecl, s)
		}
	}
}

// extractTypeSpec extracts struct, interface, and type alias declarations
func (e *symbolExtractor) extractTypeSpec(genDecl *ast.GenDecl, typeSpec *ast.TypeSpec) {
	doc := typeSpec.Doc
	if doc == nil {
		doc = genDecl.Doc
	}

	sym := types.Symbol{
		Name:       typeSpec.Name.Name,
		Package:    e.packageName,
		File:       e.filePath,
		DocComment: e.extractDocComment(doc),
		Scope:      e.determineScope(typeSpec.Name.Name),
	}
	sym.Start, sym.End = e.declSpan(genDecl, typeSpec)

	switch t := typeSpec.Type.(type) {
	case *ast.StructType:
		sym.Kind = types.KindStruct
		sym.Signature = e.extractStructSignature(typeSpec.Name.Name, t)
	case *ast.InterfaceType:
		sym.Kind = types.KindInterface
		sym.Signature = e.extractInterfaceSignature(typeSpec.Name.Name, t)
	default:
		sym.Kind = types.KindType
		if typeSpec.Assign.IsValid() {
			sym.Signature = fmt.Sprintf("type %s = %s", typeSpec.Name.Name, gotypes.ExprString(typeSpec.Type))
		} else {
			sym.Signature = fmt.Sprintf("type %s %s", typeSpec.Name.Name, gotypes.ExprString(typeSpec.Type))
		}
	}

	e.symbols = append(e.symbols, sym)
}

// extractValueSpec extracts const and var declarations
func (e *symbolExtractor) extractValueSpec(genDecl *ast.GenDecl, valueSpec *ast.ValueSpec) {
	kind := types.KindVar
	if genDecl.Tok == token.CONST {
		kind = types.KindConst
	}

	doc := valueSpec.Doc
	if doc == nil {
		doc = genDecl.Doc
	}

	start, end := e.declSpan(genDecl, valueSpec)
	for _, name := range valueSpec.Names {
		if name.Name == "_" {
			continue
		}
		sym := types.Symbol{
			Name:       name.Name,
			Kind:       kind,
			Package:    e.packageName,
			File:       e.filePath,
			DocComment: e.extractDocComment(doc),
			Scope:      e.determineScope(name.Name),
			Start:      start,
			End:        end,
		}

		switch {
		case valueSpec.Type != nil:
			sym.Signature = fmt.Sprintf("%s %s %s", genDecl.Tok, name.Name, gotypes.ExprString(valueSpec.Type))
		case len(valueSpec.Values) > 0:
			sym.Signature = fmt.Sprintf("%s %s = ...", genDecl.Tok, name.Name)
		default:
			sym.Signature = fmt.Sprintf("%s %s", genDecl.Tok, name.Name)
		}

		e.symbols = append(e.symbols, sym)
	}
}

// declSpan returns the span of a spec. An ungrouped declaration spans the
// whole GenDecl so the keyword line is included.
func (e *symbolExtractor) declSpan(genDecl *ast.GenDecl, spec ast.Spec) (types.Position, types.Position) {
	if !genDecl.Lparen.IsValid() {
		return e.positionFromToken(genDecl.Pos()), e.positionFromToken(genDecl.End())
	}
	return e.positionFromToken(spec.Pos()), e.positionFromToken(spec.End())
}

// ReceiverName extracts the receiver type name from a method receiver
// expression, dropping the pointer and any type parameters.
func ReceiverName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return ReceiverName(t.X)
	case *ast.ParenExpr:
		return ReceiverName(t.X)
	case *ast.IndexExpr:
		return ReceiverName(t.X)
	case *ast.IndexListExpr:
		return ReceiverName(t.X)
	case *ast.Ident:
		return t.Name
	}
	return ""
}

// extractFunctionSignature builds a function signature string
func (e *symbolExtractor) extractFunctionSignature(funcDecl *ast.FuncDecl) string {
	var sig strings.Builder

	sig.WriteString("func ")

	if funcDecl.Recv != nil && len(funcDecl.Recv.List) > 0 {
		sig.WriteString("(")
		sig.WriteString(e.fieldListToString(funcDecl.Recv))
		sig.WriteString(") ")
	}

	sig.WriteString(funcDecl.Name.Name)

	if funcDecl.Type.TypeParams != nil && len(funcDecl.Type.TypeParams.List) > 0 {
		sig.WriteString("[")
		sig.WriteString(e.fieldListToString(funcDecl.Type.TypeParams))
		sig.WriteString("]")
	}

	sig.WriteString("(")
	if funcDecl.Type.Params != nil {
		sig.WriteString(e.fieldListToString(funcDecl.Type.Params))
	}
	sig.WriteString(")")

	if funcDecl.Type.Results != nil {
		results := e.fieldListToString(funcDecl.Type.Results)
		if results != "" {
			if funcDecl.Type.Results.NumFields() > 1 || len(funcDecl.Type.Results.List[0].Names) > 0 {
				sig.WriteString(" (")
				sig.WriteString(results)
				sig.WriteString(")")
			} else {
				sig.WriteString(" ")
				sig.WriteString(results)
			}
		}
	}

	return sig.String()
}

// extractStructSignature builds a struct signature string
func (e *symbolExtractor) extractStructSignature(name string, structType *ast.StructType) string {
	fieldCount := 0
	if structType.Fields != nil {
		fieldCount = structType.Fields.NumFields()
	}
	return fmt.Sprintf("type %s struct { ... } // %d fields", name, fieldCount)
}

// extractInterfaceSignature builds an interface signature string
func (e *symbolExtractor) extractInterfaceSignature(name string, interfaceType *ast.InterfaceType) string {
	methodCount := 0
	if interfaceType.Methods != nil {
		methodCount = interfaceType.Methods.NumFields()
	}
	return fmt.Sprintf("type %s interface { ... } // %d methods", name, methodCount)
}

// paramTypes flattens a parameter list into one printed type per parameter
func (e *symbolExtractor) paramTypes(fieldList *ast.FieldList) []string {
	if fieldList == nil {
		return []string{}
	}

	params := make([]string, 0, fieldList.NumFields())
	for _, field := range fieldList.List {
		typeStr := gotypes.ExprString(field.Type)
		n := len(field.Names)
		if n == 0 {
			n = 1
		}
		for i := 0; i < n; i++ {
			params = append(params, typeStr)
		}
	}
	return params
}

// fieldListToString converts a field list to a string representation
func (e *symbolExtractor) fieldListToString(fieldList *ast.FieldList) string {
	if fieldList == nil || len(fieldList.List) == 0 {
		return ""
	}

	var parts []string
	for _, field := range fieldList.List {
		typeStr := gotypes.ExprString(field.Type)
		if len(field.Names) > 0 {
			for _, name := range field.Names {
				parts = append(parts, fmt.Sprintf("%s %s", name.Name, typeStr))
			}
		} else {
			parts = append(parts, typeStr)
		}
	}

	return strings.Join(parts, ", ")
}

// extractDocComment extracts documentation from a comment group
func (e *symbolExtractor) extractDocComment(doc *ast.CommentGroup) string {
	if doc == nil {
		return ""
	}
	return strings.TrimSpace(doc.Text())
}

// determineScope determines if a symbol is exported or unexported
func (e *symbolExtractor) determineScope(name string) types.SymbolScope {
	if token.IsExported(name) {
		return types.ScopeExported
	}
	return types.ScopeUnexported
}

// positionFromToken converts a token position to our Position type
func (e *symbolExtractor) positionFromToken(pos token.Pos) types.Position {
	position := e.fset.Position(pos)
	return types.Position{
		Line:   position.Line,
		Column: position.Column,
	}
}
