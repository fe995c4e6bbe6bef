package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/sweep/cleanup"
	tt "github.com/gnolang/sweep/internal/types"
	"github.com/gnolang/sweep/plugin"
)

// initCmd: sweep init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file listing every built-in rule",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = cleanup.DefaultConfigFile
		}
		if err := initConfigurationFile(path); err != nil {
			logger.Error("Error initializing config file", zap.Error(err))
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created/updated: %s\n", path)
		return nil
	},
}

func initConfigurationFile(path string) error {
	config := cleanup.Config{
		Name:  "sweep",
		Rules: map[string]tt.ConfigRule{},
	}
	for _, r := range plugin.Default().Rules() {
		config.Rules[r.ID] = tt.ConfigRule{Severity: tt.SeverityWarning}
	}
	return cleanup.WriteConfig(path, config)
}
