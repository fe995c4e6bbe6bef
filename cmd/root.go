// Package cmd implements the sweep command line.
package cmd

import (
	"errors"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/sweep/cleanup"
)

const defaultTimeout = 5 * time.Minute

// ErrFindings is returned by find when anything was reported, so that the
// process can exit with a failure status.
var ErrFindings = errors.New("findings reported")

var (
	cfgFile string
	timeout time.Duration
	verbose bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "sweep [paths...]",
	Short:         "sweep - finds and rewrites outdated Go code",
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	// Prioritize subcommands
	TraverseChildren: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if verbose {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		return err
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}
		// sweep [path1 path2 ...] behaves like the find subcommand
		return findCmd.RunE(findCmd, args)
	},
}

func Execute() error {
	defer func() {
		if logger != nil {
			_ = logger.Sync()
		}
	}()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Configuration file (defaults to "+cleanup.DefaultConfigFile+" when present)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", defaultTimeout, "Timeout for the whole run")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable development logging")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(kindsCmd)
}
