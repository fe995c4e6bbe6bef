package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gnolang/sweep/kind"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the cleanup rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSEVERITY\tFIX\tDESCRIPTION")
		for _, r := range engine.Rules() {
			fix := "-"
			if r.CanRewrite() {
				fix = "yes"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, engine.Severity(r.ID), fix, r.Description)
		}
		return w.Flush()
	},
}

var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List the node kinds visitors dispatch on",
	Run: func(cmd *cobra.Command, args []string) {
		for _, k := range kind.All() {
			fmt.Fprintln(cmd.OutOrStdout(), k)
		}
	},
}
