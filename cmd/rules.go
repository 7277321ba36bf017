package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/gnolang/errfix/fix"
	"github.com/gnolang/errfix/internal"
	"github.com/gnolang/errfix/internal/rules"
	"github.com/spf13/cobra"
)

// rulesCmd: errfix rules
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the rules a run would apply, in order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		catalog, err := cfg.Catalog()
		if err != nil {
			return err
		}

		engine := internal.NewEngine(catalog, nil, nil, logger)
		fix.IgnoreRules(engine, ignoreRules)

		return printRules(cmd.OutOrStdout(), engine.Catalog())
	},
}

func printRules(w io.Writer, catalog rules.Catalog) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tFORM\tRESULTS\tCALLEES\tCOMMENT")
	for _, r := range catalog {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			r.Name, r.Form, r.Results, strings.Join(r.Callees, ", "), r.Comment)
	}
	return tw.Flush()
}
