package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/sweep/cleanup"
	"github.com/gnolang/sweep/formatter"
	"github.com/gnolang/sweep/internal"
	tt "github.com/gnolang/sweep/internal/types"
)

var (
	ignoreRules string
	ignorePaths string
	jsonOutput  bool
	outPath     string
	typeCheck   bool
	asPackages  bool
)

var findCmd = &cobra.Command{
	Use:   "find [paths...]",
	Short: "Report code the cleanup rules match",
	Long: `Reports every place a cleanup rule matches.

With --packages the arguments are package patterns (such as ./...) loaded
with full type information.`,
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

		var findings []tt.Finding
		if asPackages {
			pkgs, err := cleanup.LoadPackages(ctx, ".", args...)
			if err != nil {
				return err
			}
			findings, err = cleanup.ProcessPackages(ctx, logger, engine, pkgs)
			if err != nil {
				return err
			}
		} else {
			findings, err = cleanup.ProcessFiles(ctx, logger, engine, args, cleanup.ProcessFile)
			if err != nil {
				return err
			}
		}

		if err := printFindings(cmd.OutOrStdout(), findings, jsonOutput, outPath); err != nil {
			return err
		}
		if len(findings) > 0 {
			return ErrFindings
		}
		return nil
	},
}

func init() {
	findCmd.Flags().StringVar(&ignoreRules, "ignore", "", "Comma-separated list of rules to ignore")
	findCmd.Flags().StringVar(&ignorePaths, "ignore-paths", "", "Comma-separated list of paths to ignore")
	findCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output findings in JSON format")
	findCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path (when using JSON)")
	findCmd.Flags().BoolVar(&typeCheck, "types", false, "Type-check each file before matching")
	findCmd.Flags().BoolVar(&asPackages, "packages", false, "Treat arguments as package patterns")
}

// newEngine builds the engine from the configuration and the flags shared
// by find and fix.
func newEngine() (*internal.Engine, error) {
	engine, err := cleanup.New(cfgFile, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize engine: %w", err)
	}
	for _, rule := range splitList(ignoreRules) {
		engine.IgnoreRule(rule)
	}
	for _, path := range splitList(ignorePaths) {
		engine.IgnorePath(path)
	}
	if typeCheck {
		engine.EnableTypeCheck()
	}
	return engine, nil
}

func printFindings(w io.Writer, findings []tt.Finding, isJSON bool, jsonPath string) error {
	if isJSON {
		d, err := formatter.FormatJSON(findings)
		if err != nil {
			return fmt.Errorf("error marshalling findings to JSON: %w", err)
		}
		if jsonPath == "" {
			_, err = fmt.Fprintln(w, string(d))
			return err
		}
		return os.WriteFile(jsonPath, d, 0o644)
	}

	byFile := make(map[string][]tt.Finding)
	for _, f := range findings {
		byFile[f.Filename] = append(byFile[f.Filename], f)
	}
	files := make([]string, 0, len(byFile))
	for filename := range byFile {
		files = append(files, filename)
	}
	sort.Strings(files)

	for _, filename := range files {
		src, err := formatter.ReadSourceCode(filename)
		if err != nil {
			if logger != nil {
				logger.Error("Error reading source file", zap.String("file", filename), zap.Error(err))
			}
			continue
		}
		fmt.Fprint(w, formatter.GenerateFormattedFindings(byFile[filename], src))
	}
	return nil
}

// splitList splits a comma-separated flag value, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
