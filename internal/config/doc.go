// Package config loads the gogat configuration.
//
// Values come from, lowest priority first:
//
//  1. Default()
//  2. ~/.gogat.yaml or ./.gogat.yaml, or the file passed with --config
//  3. GOGAT_* environment variables (GOGAT_PAGER_MODE for pager.mode)
//
// pager.command falls back to $PAGER and then to "less -R". Validate
// reports every invalid field in one go-multierror error.
package config
