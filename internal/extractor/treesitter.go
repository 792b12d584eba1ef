package extractor

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// wrapper surrounds a snippet so that members lifted out of a class body
// parse on their own
type wrapper struct {
	prefix string
	suffix string
}

var bare = wrapper{}

type language struct {
	name     string
	grammar  func() *sitter.Language
	wrappers []wrapper

	// Blocks are delimited by indentation rather than tokens
	indentScoped bool
}

var (
	langC = language{
		name:     "c",
		grammar:  func() *sitter.Language { return sitter.NewLanguage(c.Language()) },
		wrappers: []wrapper{bare},
	}
	langJava = language{
		name:     "java",
		grammar:  func() *sitter.Language { return sitter.NewLanguage(java.Language()) },
		wrappers: []wrapper{bare, {"class Snippet {\n", "\n}"}},
	}
	langJavaScript = language{
		name:     "javascript",
		grammar:  func() *sitter.Language { return sitter.NewLanguage(javascript.Language()) },
		wrappers: []wrapper{bare, {"class Snippet {\n", "\n}"}},
	}
	langPHP = language{
		name:     "php",
		grammar:  func() *sitter.Language { return sitter.NewLanguage(php.LanguagePHP()) },
		wrappers: []wrapper{{"<?php\n", ""}, {"<?php\nclass Snippet {\n", "\n}"}},
	}
	langPython = language{
		name:         "python",
		grammar:      func() *sitter.Language { return sitter.NewLanguage(python.Language()) },
		wrappers:     []wrapper{bare},
		indentScoped: true,
	}
	langRuby = language{
		name:     "ruby",
		grammar:  func() *sitter.Language { return sitter.NewLanguage(ruby.Language()) },
		wrappers: []wrapper{bare},
	}
	langRust = language{
		name:     "rust",
		grammar:  func() *sitter.Language { return sitter.NewLanguage(rust.Language()) },
		wrappers: []wrapper{bare, {"impl Snippet {\n", "\n}"}},
	}
	langTypeScript = language{
		name:     "typescript",
		grammar:  func() *sitter.Language { return sitter.NewLanguage(typescript.LanguageTypescript()) },
		wrappers: []wrapper{bare, {"class Snippet {\n", "\n}"}},
	}
	langTSX = language{
		name:     "tsx",
		grammar:  func() *sitter.Language { return sitter.NewLanguage(typescript.LanguageTSX()) },
		wrappers: []wrapper{bare, {"class Snippet {\n", "\n}"}},
	}
)

var languages = map[string]language{
	".c":    langC,
	".h":    langC,
	".java": langJava,
	".js":   langJavaScript,
	".jsx":  langJavaScript,
	".mjs":  langJavaScript,
	".cjs":  langJavaScript,
	".php":  langPHP,
	".py":   langPython,
	".rb":   langRuby,
	".rs":   langRust,
	".ts":   langTypeScript,
	".tsx":  langTSX,
}

// TreeSitterOracle checks completeness with a tree-sitter grammar. The text
// is complete when some wrapping of it parses with no ERROR or MISSING
// nodes and at least one named node.
type TreeSitterOracle struct {
	lang     language
	language *sitter.Language
}

func newTreeSitterOracle(lang language) *TreeSitterOracle {
	return &TreeSitterOracle{lang: lang, language: lang.grammar()}
}

// Complete reports whether src parses cleanly
func (o *TreeSitterOracle) Complete(src []byte) bool {
	body := dedent(string(src))
	if strings.TrimSpace(body) == "" {
		return false
	}

	for _, w := range o.lang.wrappers {
		if o.parses([]byte(w.prefix + body + w.suffix)) {
			return true
		}
	}
	return false
}

func (o *TreeSitterOracle) parses(src []byte) bool {
	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(o.language); err != nil {
		return false
	}

	tree := parser.Parse(src, nil)
	if tree == nil {
		return false
	}
	defer tree.Close()

	root := tree.RootNode()
	return !root.HasError() && root.NamedChildCount() > 0
}

// Continues keeps indentation-scoped blocks open while the next line is
// indented deeper than the first one
func (o *TreeSitterOracle) Continues(first, next string) bool {
	if !o.lang.indentScoped {
		return false
	}
	return len(indentation(next)) > len(indentation(first))
}

func indentation(line string) string {
	return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
}

// dedent strips the whitespace prefix shared by all non-blank lines
func dedent(src string) string {
	lines := strings.Split(src, "\n")

	prefix := ""
	first := true
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		ind := indentation(line)
		if first {
			prefix = ind
			first = false
			continue
		}
		for !strings.HasPrefix(ind, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}
	if prefix == "" {
		return src
	}

	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, prefix)
	}
	return strings.Join(lines, "\n")
}
