package locator

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/dshills/gogat/internal/selector"
	"github.com/dshills/gogat/pkg/types"
)

// Locator resolves a query to exactly one definition, asking the selector
// when several match
type Locator struct {
	resolver Resolver
	selector selector.Selector
	logger   hclog.Logger
}

// New creates a Locator. A nil selector takes the first match.
func New(resolver Resolver, sel selector.Selector, logger hclog.Logger) *Locator {
	if sel == nil {
		sel = selector.FirstSelector{}
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Locator{resolver: resolver, selector: sel, logger: logger}
}

// Locate returns the single definition for q. Zero matches is a
// NotFoundError; one match is returned without consulting the selector.
func (l *Locator) Locate(ctx context.Context, q types.Query) (types.Definition, error) {
	defs, err := l.All(ctx, q)
	if err != nil {
		return types.Definition{}, err
	}
	if len(defs) == 1 {
		return defs[0], nil
	}
	return l.Choose(ctx, defs)
}

// All returns every definition that matches q, failing with a
// NotFoundError when there are none
func (l *Locator) All(ctx context.Context, q types.Query) ([]types.Definition, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	defs, err := l.resolver.Resolve(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", q, err)
	}
	if len(defs) == 0 {
		return nil, &types.NotFoundError{Query: q}
	}

	l.logger.Debug("located", "query", q.String(), "matches", len(defs))
	return defs, nil
}

// Choose presents defs to the selector and returns the chosen one
func (l *Locator) Choose(ctx context.Context, defs []types.Definition) (types.Definition, error) {
	labels := make([]string, len(defs))
	for i, d := range defs {
		labels[i] = d.Label()
	}

	i, err := l.selector.Select(ctx, labels)
	if err != nil {
		return types.Definition{}, err
	}
	if i < 0 || i >= len(defs) {
		return types.Definition{}, fmt.Errorf("selector returned index %d of %d", i, len(defs))
	}
	return defs[i], nil
}
