//go:build !sqlite_cgo

package storage

// Default build: the pure Go modernc.org/sqlite driver.

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite"

	// BuildMode describes the current build configuration
	BuildMode = "purego"
)
