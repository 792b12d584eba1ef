package extractor

import (
	"go/parser"
	"go/token"
	"path/filepath"
	"strings"
)

// Oracle decides when accumulated source lines form one complete top-level
// definition
type Oracle interface {
	// Complete reports whether src parses as a finished definition
	Complete(src []byte) bool

	// Continues reports whether next still belongs to the definition that
	// began with first, even though the text so far is complete
	Continues(first, next string) bool
}

// GoOracle uses go/parser as the completeness check
type GoOracle struct{}

// groupKeywords open the declaration groups whose specs start mid-block
var groupKeywords = []string{"const", "var", "type"}

// Complete parses src as the body of a throwaway package. A spec taken
// from inside a const, var or type group is complete when it parses
// wrapped in that group.
func (GoOracle) Complete(src []byte) bool {
	if parsesAsDecl("package p\n" + string(src)) {
		return true
	}
	for _, kw := range groupKeywords {
		if parsesAsDecl("package p\n" + kw + " (\n" + string(src) + ")\n") {
			return true
		}
	}
	return false
}

func parsesAsDecl(src string) bool {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "", src, parser.SkipObjectResolution)
	if err != nil {
		return false
	}
	return len(file.Decls) > 0
}

// Continues is always false: Go definitions end at their closing token
func (GoOracle) Continues(_, _ string) bool { return false }

// BracketOracle is a language-agnostic heuristic. The text is complete once
// at least one bracket has been opened and every (), [] and {} outside of
// string literals and comments is closed again. It does not understand
// languages that delimit blocks with keywords or indentation.
type BracketOracle struct{}

// Complete reports whether the brackets in src balance
func (BracketOracle) Complete(src []byte) bool {
	var (
		stack []byte
		seen  bool
		quote byte
	)

	for i := 0; i < len(src); i++ {
		c := src[i]

		if quote != 0 {
			switch {
			case c == '\\' && quote != '`':
				i++
			case c == quote:
				quote = 0
			case c == '\n' && quote != '`':
				// Unterminated literal; the quote was probably an apostrophe
				quote = 0
			}
			continue
		}

		switch c {
		case '"', '\'', '`':
			quote = c
		case '/':
			if i+1 < len(src) && src[i+1] == '/' {
				for i < len(src) && src[i] != '\n' {
					i++
				}
			} else if i+1 < len(src) && src[i+1] == '*' {
				end := strings.Index(string(src[i+2:]), "*/")
				if end < 0 {
					return false
				}
				i += end + 3
			}
		case '(', '[', '{':
			stack = append(stack, c)
			seen = true
		case ')', ']', '}':
			if len(stack) == 0 || stack[len(stack)-1] != opening(c) {
				return false
			}
			stack = stack[:len(stack)-1]
		}
	}

	return seen && len(stack) == 0 && quote == 0
}

// Continues is always false
func (BracketOracle) Continues(_, _ string) bool { return false }

func opening(c byte) byte {
	switch c {
	case ')':
		return '('
	case ']':
		return '['
	default:
		return '{'
	}
}

// For picks the oracle for a source file by extension
func For(path string) Oracle {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".go" {
		return GoOracle{}
	}
	if lang, ok := languages[ext]; ok {
		return newTreeSitterOracle(lang)
	}
	return BracketOracle{}
}

// Language returns the highlighter language name for path, or "" when the
// extension is unknown
func Language(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".go" {
		return "go"
	}
	if lang, ok := languages[ext]; ok {
		return lang.name
	}
	return ""
}
