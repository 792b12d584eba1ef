// Package indexer builds the static definition index used by the index
// backend of the locator.
//
// A run discovers Go files under a root (skipping hidden directories,
// testdata, vendor unless asked, and any ignore globs), hashes each file
// and parses the changed ones concurrently. Results are written in one
// transaction: unchanged files are skipped by content hash, changed files
// have their symbols replaced, and files that no longer exist are removed.
//
//	idx := indexer.New(store, logger)
//	stats, err := idx.IndexProject(ctx, "/path/to/project", &indexer.Config{
//	    IncludeTests: true,
//	    Ignore:       []string{"internal/gen/**"},
//	})
//
// Discovery is exported separately so the on-demand source backend walks
// the tree with the same rules.
package indexer
