// Package cli implements the gogat command tree.
//
// Every command except version loads the configuration first (see package
// config) and builds one hclog logger writing to stderr. The exit status of
// a failing highlighter, pager or selector becomes the exit status of the
// command.
package cli
