// Command madlibs-lint checks Mad Libs template datasets and directories
// for undeclared placeholders, duplicate ids and unused blanks.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dpshade/pocket-madlibs/internal/catalog"
	"github.com/dpshade/pocket-madlibs/internal/cli"
)

func main() {
	var builtin bool
	cmd := &cobra.Command{
		Use:   "madlibs-lint [path...]",
		Short: "Validate Mad Libs templates",
		Long: `Validate JSON datasets, .md templates or directories of templates.

Exits 1 when any template has errors. Warnings do not fail the run.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !builtin {
				return fmt.Errorf("nothing to lint: pass a path or --builtin")
			}
			var reports []catalog.Report
			if builtin {
				reports = catalog.LintBuiltin()
			}
			for _, path := range args {
				r, err := catalog.Lint(path)
				if err != nil {
					return err
				}
				reports = append(reports, r...)
			}
			return cli.PrintReports(cmd.OutOrStdout(), reports)
		},
	}
	cmd.Flags().BoolVar(&builtin, "builtin", false, "also check the built-in stories")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "madlibs-lint: %v\n", err)
		os.Exit(1)
	}
}
