package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/gogat/internal/indexer"
	"github.com/dshills/gogat/internal/storage"
)

var forceFlag bool

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index [DIR]",
	Short: "Index the definitions of a Go project",
	Long: `Index parses every Go file under DIR (default: the project root) and
stores its definitions in the sqlite index, so that --backend=index lookups
do not reparse the tree.

Unchanged files are skipped by content hash; use --force to reparse
everything. Files deleted since the last run are removed from the index.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().BoolVar(&forceFlag, "force", false, "reparse files whose content did not change")
}

func runIndex(cmd *cobra.Command, args []string) error {
	a := current
	dir := a.root
	if len(args) == 1 {
		abs, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", args[0], err)
		}
		dir = abs
	}

	if err := os.MkdirAll(filepath.Dir(a.cfg.Index.Database), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	store, err := storage.NewSQLiteStorage(a.cfg.Index.Database)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	defer func() { _ = store.Close() }()

	loc := a.cfg.Locator
	stats, err := indexer.New(store, a.logger.Named("indexer")).IndexProject(cmd.Context(), dir, &indexer.Config{
		Workers:       a.cfg.Index.Workers,
		IncludeTests:  loc.IncludeTests,
		IncludeVendor: loc.IncludeVendor,
		Ignore:        loc.Ignore,
		Force:         forceFlag,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Indexed %s\n", dir)
	fmt.Fprintf(out, "  Files indexed:  %d\n", stats.FilesIndexed)
	fmt.Fprintf(out, "  Files skipped:  %d\n", stats.FilesSkipped)
	fmt.Fprintf(out, "  Files removed:  %d\n", stats.FilesRemoved)
	fmt.Fprintf(out, "  Files failed:   %d\n", stats.FilesFailed)
	fmt.Fprintf(out, "  Symbols:        %d\n", stats.SymbolsExtracted)
	fmt.Fprintf(out, "  Duration:       %s\n", stats.Duration.Round(time.Millisecond))
	for _, msg := range stats.ErrorMessages {
		a.logger.Warn("file not indexed", "error", msg)
	}
	return nil
}
