package types

import (
	"fmt"
	"path/filepath"
)

// Location is the file and line span of a definition.
// Lines are 1-based and inclusive.
type Location struct {
	Path      string
	StartLine int
	EndLine   int
}

// Validate checks that the location names an absolute file and a sane span
func (l Location) Validate() error {
	if l.Path == "" {
		return ErrMissingPath
	}
	if !filepath.IsAbs(l.Path) {
		return fmt.Errorf("%w: %s", ErrRelativePath, l.Path)
	}
	if l.StartLine <= 0 || l.EndLine <= 0 {
		return ErrInvalidLine
	}
	if l.StartLine > l.EndLine {
		return ErrInvalidLineRange
	}
	return nil
}

// LineRange formats the span as "start:end"
func (l Location) LineRange() string {
	return fmt.Sprintf("%d:%d", l.StartLine, l.EndLine)
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d-%d", l.Path, l.StartLine, l.EndLine)
}

// Definition pairs a resolved symbol with the span it was found at
type Definition struct {
	Symbol   Symbol
	Location Location
}

// NewDefinition builds a Definition from a symbol using the symbol's own span
func NewDefinition(sym Symbol) Definition {
	return Definition{Symbol: sym, Location: sym.Location()}
}

// Label renders the definition as a single selector line.
// Labels are unique per location because they end with path:line.
func (d Definition) Label() string {
	sig := d.Symbol.Signature
	if sig == "" {
		sig = d.Symbol.Name
	}
	return fmt.Sprintf("%s  %s:%d", sig, d.Location.Path, d.Location.StartLine)
}
