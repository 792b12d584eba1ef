// Package storage persists the static definition index in SQLite.
//
// Tables:
//   - projects: indexed roots (root path, module name, totals)
//   - files: Go files relative to their root, with SHA-256 content hashes
//   - symbols: definitions with their line spans and parameter types
//
// Two drivers are available. The default build uses modernc.org/sqlite and
// needs no C toolchain; building with -tags sqlite_cgo switches to
// mattn/go-sqlite3.
//
// Schema changes are applied by ApplyMigrations, versioned with semver.
// Symbol queries join files and projects so every returned Symbol carries
// the absolute path of its file.
//
//	store, err := storage.NewSQLiteStorage(path)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	syms, err := store.FindSymbols(ctx, storage.SymbolFilter{Name: "Add"})
package storage
