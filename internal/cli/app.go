package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/dshills/gogat/internal/config"
	"github.com/dshills/gogat/internal/highlight"
	"github.com/dshills/gogat/internal/indexer"
	"github.com/dshills/gogat/internal/locator"
	"github.com/dshills/gogat/internal/process"
	"github.com/dshills/gogat/internal/selector"
	"github.com/dshills/gogat/internal/storage"
	"github.com/dshills/gogat/internal/viewer"
)

// app is the loaded configuration and the shared dependencies of one run
type app struct {
	cfg    *config.Config
	logger hclog.Logger
	runner process.Runner
	root   string
}

// current is set by loadApp before any command runs
var current *app

// newRunner builds the subprocess runner; tests swap it for a fake
var newRunner = func(logger hclog.Logger) process.Runner {
	return process.NewExecRunner(logger)
}

// flagKeys maps global flags onto configuration keys
var flagKeys = map[string]string{
	"log-level": "log.level",
	"backend":   "locator.backend",
	"root":      "locator.root",
}

func loadApp(cmd *cobra.Command, _ []string) error {
	loader := config.NewLoader(cfgFile)
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := loader.Viper().BindPFlag(key, f); err != nil {
				return fmt.Errorf("failed to bind --%s: %w", name, err)
			}
		}
	}

	cfg, err := loader.Load()
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Log.Level, cmd.ErrOrStderr())
	if used := loader.ConfigFileUsed(); used != "" {
		logger.Debug("using config file", "path", used)
	}

	root := cfg.Locator.Root
	if root == "" {
		if root, err = os.Getwd(); err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
	}
	if root, err = filepath.Abs(root); err != nil {
		return fmt.Errorf("failed to resolve root: %w", err)
	}

	current = &app{
		cfg:    cfg,
		logger: logger,
		runner: newRunner(logger.Named("process")),
		root:   root,
	}
	return nil
}

// newLogger creates the stderr logger. Stdout carries highlighted output
// and the MCP protocol.
func newLogger(level string, w io.Writer) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{
		Name:   "gogat",
		Level:  hclog.LevelFromString(level),
		Output: w,
	})
}

// resolver builds the configured backend. The returned func releases it.
func (a *app) resolver() (locator.Resolver, func(), error) {
	logger := a.logger.Named("locator")
	loc := a.cfg.Locator

	switch loc.Backend {
	case config.BackendIndex:
		store, err := storage.NewSQLiteStorage(a.cfg.Index.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open index: %w", err)
		}
		return locator.NewIndexResolver(store, a.root, logger), func() { _ = store.Close() }, nil
	case config.BackendPackages:
		return locator.NewPackagesResolver(a.root, nil, loc.IncludeTests, logger), func() {}, nil
	default:
		opts := indexer.DiscoveryOptions{
			IncludeTests:  loc.IncludeTests,
			IncludeVendor: loc.IncludeVendor,
			Ignore:        loc.Ignore,
		}
		return locator.NewSourceResolver(a.root, opts, logger), func() {}, nil
	}
}

// invoker builds the highlight invoker from the highlighter and pager
// settings
func (a *app) invoker() (*highlight.Invoker, error) {
	h := a.cfg.Highlighter
	return highlight.New(highlight.Config{
		Command:           h.Command,
		Theme:             h.Theme,
		MarkdownTheme:     h.MarkdownTheme,
		Pager:             a.cfg.Pager.Command,
		ForceColorInPager: h.ForceColorInPager,
	}, a.runner, a.logger.Named("highlight"))
}

// viewer wires the locator, selector and invoker. Commands that only show
// files pass withLocator=false and never touch the resolver.
func (a *app) viewer(out io.Writer, withLocator bool, opts viewer.Options) (*viewer.Viewer, func(), error) {
	if opts.Snippet == "" {
		opts.Snippet = viewer.SnippetMode(a.cfg.Snippet.Mode)
	}
	if opts.Pager == "" {
		opts.Pager = viewer.PagerMode(a.cfg.Pager.Mode)
	}
	if err := opts.Validate(); err != nil {
		return nil, nil, err
	}

	inv, err := a.invoker()
	if err != nil {
		return nil, nil, err
	}

	release := func() {}
	var loc *locator.Locator
	if withLocator {
		resolver, closeFn, err := a.resolver()
		if err != nil {
			return nil, nil, err
		}
		release = closeFn

		sel, err := selector.New(selector.Mode(a.cfg.Selector.Mode), a.cfg.Selector.Command, a.runner, a.logger.Named("selector"))
		if err != nil {
			release()
			return nil, nil, err
		}
		loc = locator.New(resolver, sel, a.logger.Named("locator"))
	}

	return viewer.New(loc, inv, out, opts, a.logger.Named("viewer")), release, nil
}
