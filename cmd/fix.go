package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/sweep/cleanup"
)

var dryRun bool

var fixCmd = &cobra.Command{
	Use:   "fix [paths...]",
	Short: "Rewrite the code the cleanup rules match",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("please provide file or directory paths")
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		engine, err := newEngine()
		if err != nil {
			return err
		}

		fixer := cleanup.NewFixer(dryRun, cmd.OutOrStdout())
		total := 0
		for _, path := range args {
			fixed, err := cleanup.ProcessPath(ctx, logger, engine, path, fixer.Process)
			if err != nil {
				logger.Error("error fixing path", zap.String("path", path), zap.Error(err))
				continue
			}
			total += len(fixed)
		}

		if !dryRun {
			fmt.Fprintf(cmd.OutOrStdout(), "fixed %d finding(s)\n", total)
		}
		return nil
	},
}

func init() {
	fixCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the diffs instead of writing the files")
	fixCmd.Flags().StringVar(&ignoreRules, "ignore", "", "Comma-separated list of rules to ignore")
	fixCmd.Flags().StringVar(&ignorePaths, "ignore-paths", "", "Comma-separated list of paths to ignore")
	fixCmd.Flags().BoolVar(&typeCheck, "types", false, "Type-check each file before matching")
}
