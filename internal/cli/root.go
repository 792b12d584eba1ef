package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/gogat/internal/process"
	"github.com/dshills/gogat/pkg/types"
)

var (
	cfgFile  string
	logLevel string
	backend  string
	rootDir  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gogat",
	Short: "Locate Go definitions and show them with gat",
	Long: `gogat finds where a Go function, method or type is defined and shows
its source through the gat syntax highlighter, optionally in a pager.

References look like Name, pkg.Name, Type.Method, (*Type).Method or
path/to/pkg.Name. Argument types narrow overloaded names across packages:

  gogat gode Add int int
  gogat gode 'Calc.Add(int)'
  gogat gode --call 'math.Add(1, 2)'

When several definitions match, the fuzzy finder (fzf by default) picks one.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadApp,
}

// Execute runs the command tree and returns the process exit status. A
// failing highlighter or pager contributes its own status.
func Execute() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	if !errors.Is(err, types.ErrSelectionCancelled) {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
	}
	return process.ExitCode(err)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.gogat.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "source", "definition source: source, index or packages")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "project root to search (default is the working directory)")
}
