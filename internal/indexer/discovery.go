package indexer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// DiscoveryOptions controls which Go files belong to a project
type DiscoveryOptions struct {
	IncludeTests  bool     // Include _test.go files
	IncludeVendor bool     // Descend into vendor directories
	Ignore        []string // Glob patterns relative to the root, e.g. "internal/gen/**"
}

type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// Discovery walks a project tree and returns its Go source files. Hidden
// directories and testdata are never visited.
type Discovery struct {
	root   string
	opts   DiscoveryOptions
	ignore []compiledPattern
}

// NewDiscovery compiles the ignore patterns for root
func NewDiscovery(root string, opts DiscoveryOptions) (*Discovery, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}

	d := &Discovery{root: abs, opts: opts}
	for _, pattern := range opts.Ignore {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}
		d.ignore = append(d.ignore, compiledPattern{pattern: pattern, glob: g})
	}
	return d, nil
}

// Root returns the absolute project root
func (d *Discovery) Root() string {
	return d.root
}

// Files returns the absolute paths of all Go files in lexical order
func (d *Discovery) Files() ([]string, error) {
	var files []string

	err := filepath.Walk(d.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(d.root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			if path == d.root {
				return nil
			}
			name := info.Name()
			if strings.HasPrefix(name, ".") || name == "testdata" {
				return filepath.SkipDir
			}
			if !d.opts.IncludeVendor && name == "vendor" {
				return filepath.SkipDir
			}
			if d.ignored(rel) || d.ignored(rel+"/**") {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.HasSuffix(path, ".go") {
			return nil
		}
		if !d.opts.IncludeTests && strings.HasSuffix(path, "_test.go") {
			return nil
		}
		if d.ignored(rel) {
			return nil
		}

		files = append(files, path)
		return nil
	})

	return files, err
}

func (d *Discovery) ignored(rel string) bool {
	for _, cp := range d.ignore {
		if cp.glob.Match(rel) {
			return true
		}
		// "**/x" also matches x at the root
		if !strings.Contains(rel, "/") && strings.HasPrefix(cp.pattern, "**/") {
			if g, err := glob.Compile(strings.TrimPrefix(cp.pattern, "**/"), '/'); err == nil && g.Match(rel) {
				return true
			}
		}
	}
	return false
}
