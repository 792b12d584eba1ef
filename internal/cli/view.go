package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/gogat/internal/locator"
	"github.com/dshills/gogat/internal/viewer"
	"github.com/dshills/gogat/pkg/types"
)

var (
	callFlag    bool
	extractFlag bool
	pagerFlag   bool
)

var gatCmd = &cobra.Command{
	Use:   "gat FILE",
	Short: "Highlight a file",
	Long: `Highlight a file with gat. Markdown files are rendered.
Use - to render markdown read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showFile(cmd, args[0], false)
	},
}

var gessCmd = &cobra.Command{
	Use:   "gess FILE",
	Short: "Highlight a file through the pager",
	Long: `Highlight a file with gat and page the result. Markdown files are
rendered. Use - to render markdown read from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showFile(cmd, args[0], true)
	},
}

var codeCmd = &cobra.Command{
	Use:   "code SYMBOL [ARGTYPE...] | FILE:LINE",
	Short: "Print the plain source of a definition",
	Long: `Print the plain source of a definition. With FILE:LINE the definition
starting at that line is extracted from any supported language (Go, C,
Java, JavaScript, PHP, Python, Ruby, Rust, TypeScript).`,
	Example: `  gogat code Add int int
  gogat code 'strings.Repeat(string, int)'
  gogat code --call 'Add(1, 2)'
  gogat code scripts/build.py:12`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if path, line, ok := fileLine(args, callFlag); ok {
			v, release, err := current.viewer(cmd.OutOrStdout(), false, viewer.Options{})
			if err != nil {
				return err
			}
			defer release()
			return v.CodeAt(cmd.OutOrStdout(), path, line)
		}

		q, err := queryFromArgs(args, callFlag)
		if err != nil {
			return err
		}
		v, release, err := current.viewer(cmd.OutOrStdout(), true, viewer.Options{})
		if err != nil {
			return err
		}
		defer release()
		return v.Code(cmd.Context(), cmd.OutOrStdout(), q)
	},
}

var godeCmd = &cobra.Command{
	Use:   "gode SYMBOL [ARGTYPE...] | FILE:LINE",
	Short: "Highlight the source of a definition",
	Example: `  gogat gode Add int int
  gogat gode --extract 'Calc.Add'
  gogat gode --pager --call 'math.Add(1, 2)'
  gogat gode --extract src/lib.rs:40`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if path, line, ok := fileLine(args, callFlag); ok {
			v, release, err := current.viewer(cmd.OutOrStdout(), false, displayOptions())
			if err != nil {
				return err
			}
			defer release()
			_, err = v.GodeAt(cmd.Context(), path, line)
			return err
		}

		q, err := queryFromArgs(args, callFlag)
		if err != nil {
			return err
		}
		v, release, err := current.viewer(cmd.OutOrStdout(), true, displayOptions())
		if err != nil {
			return err
		}
		defer release()
		_, err = v.Gode(cmd.Context(), q)
		return err
	},
}

var searchCmd = &cobra.Command{
	Use:   "search NAME",
	Short: "Pick one of the definitions with a name and print it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := locator.ParseQuery(args[0], nil)
		if err != nil {
			return err
		}
		v, release, err := current.viewer(cmd.OutOrStdout(), true, viewer.Options{})
		if err != nil {
			return err
		}
		defer release()
		return v.Search(cmd.Context(), cmd.OutOrStdout(), q)
	},
}

var gearchCmd = &cobra.Command{
	Use:   "gearch NAME",
	Short: "Pick one of the definitions with a name and highlight it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := locator.ParseQuery(args[0], nil)
		if err != nil {
			return err
		}
		v, release, err := current.viewer(cmd.OutOrStdout(), true, displayOptions())
		if err != nil {
			return err
		}
		defer release()
		_, err = v.Gearch(cmd.Context(), q)
		return err
	},
}

var docCmd = &cobra.Command{
	Use:   "doc SYMBOL [ARGTYPE...]",
	Short: "Render the doc comment of a definition as markdown",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := queryFromArgs(args, callFlag)
		if err != nil {
			return err
		}
		v, release, err := current.viewer(cmd.OutOrStdout(), true, viewer.Options{})
		if err != nil {
			return err
		}
		defer release()
		_, err = v.Doc(cmd.Context(), q, pagerFlag)
		return err
	},
}

func init() {
	rootCmd.AddCommand(gatCmd, gessCmd, codeCmd, godeCmd, searchCmd, gearchCmd, docCmd)

	for _, c := range []*cobra.Command{codeCmd, godeCmd, docCmd} {
		c.Flags().BoolVar(&callFlag, "call", false, "treat SYMBOL as a call expression and infer argument types")
	}
	for _, c := range []*cobra.Command{godeCmd, gearchCmd} {
		c.Flags().BoolVar(&extractFlag, "extract", false, "pipe the extracted definition instead of a line range of the file")
		c.Flags().BoolVar(&pagerFlag, "pager", false, "always page the output")
	}
	docCmd.Flags().BoolVar(&pagerFlag, "pager", false, "page the rendered markdown")
}

// queryFromArgs turns SYMBOL [ARGTYPE...] into a query. Without argument
// types any arguments match, unless SYMBOL carries its own list.
func queryFromArgs(args []string, call bool) (types.Query, error) {
	if call {
		if len(args) != 1 {
			return types.Query{}, errors.New("--call takes a single call expression")
		}
		return locator.ParseCall(args[0])
	}

	var argTypes []string
	if len(args) > 1 {
		argTypes = args[1:]
	}
	return locator.ParseQuery(args[0], argTypes)
}

// fileLine recognizes a single FILE:LINE argument. Symbol references never
// contain a colon.
func fileLine(args []string, call bool) (string, int, bool) {
	if call || len(args) != 1 {
		return "", 0, false
	}
	i := strings.LastIndex(args[0], ":")
	if i <= 0 {
		return "", 0, false
	}
	line, err := strconv.Atoi(args[0][i+1:])
	if err != nil || line < 1 {
		return "", 0, false
	}
	path, err := filepath.Abs(args[0][:i])
	if err != nil {
		return "", 0, false
	}
	return path, line, true
}

// displayOptions applies --extract and --pager over the configured modes
func displayOptions() viewer.Options {
	var opts viewer.Options
	if extractFlag {
		opts.Snippet = viewer.SnippetExtract
	}
	if pagerFlag {
		opts.Pager = viewer.PagerAlways
	}
	return opts
}

func showFile(cmd *cobra.Command, path string, paged bool) error {
	v, release, err := current.viewer(cmd.OutOrStdout(), false, viewer.Options{})
	if err != nil {
		return err
	}
	defer release()

	ctx := cmd.Context()
	if path != "-" {
		if paged {
			_, err = v.Gess(ctx, path)
		} else {
			_, err = v.Gat(ctx, path)
		}
		return err
	}

	md, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}
	if paged {
		_, err = v.GessMarkdown(ctx, string(md))
	} else {
		_, err = v.GatMarkdown(ctx, string(md))
	}
	return err
}
