// Package cleanup runs cleanup rules over files, directories and packages.
package cleanup

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/gnolang/sweep/internal"
	tt "github.com/gnolang/sweep/internal/types"
	"github.com/gnolang/sweep/plugin"
)

// Engine is what the processing functions drive.
type Engine interface {
	Run(filename string) ([]tt.Finding, error)
	RunSource(filename string, src []byte) ([]tt.Finding, error)
	RunFile(fset *token.FileSet, file *ast.File, info *types.Info) ([]tt.Finding, error)
	Fix(filename string, src []byte) ([]byte, []tt.Finding, error)
	IgnoreRule(id string)
	IgnorePath(path string)
}

// New returns an engine with the built-in rules and those of the
// configuration file at configPath. An empty configPath falls back to
// DefaultConfigFile when it exists.
func New(configPath string, logger *zap.Logger) (*internal.Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	config, err := loadOptionalConfig(configPath)
	if err != nil {
		return nil, err
	}

	registry := plugin.Default()
	for _, spec := range config.Custom {
		rule, err := spec.Rule()
		if err != nil {
			return nil, err
		}
		if err := registry.Register(rule); err != nil {
			return nil, err
		}
	}

	engine := internal.NewEngine(registry, config.Rules, logger)
	for _, p := range config.IgnorePaths {
		engine.IgnorePath(p)
	}
	logger.Debug("engine ready",
		zap.String("config", config.Name),
		zap.Int("rules", len(engine.Rules())))
	return engine, nil
}

func loadOptionalConfig(path string) (Config, error) {
	if path != "" {
		return LoadConfig(path)
	}
	config, err := LoadConfig(DefaultConfigFile)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil
	}
	return config, err
}

// Processor handles one file.
type Processor func(engine Engine, filename string) ([]tt.Finding, error)

// ProcessFile reports the findings of a file.
func ProcessFile(engine Engine, filename string) ([]tt.Finding, error) {
	return engine.Run(filename)
}

func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine Engine,
	paths []string,
	processor Processor,
) ([]tt.Finding, error) {
	var all []tt.Finding
	for _, path := range paths {
		findings, err := ProcessPath(ctx, logger, engine, path, processor)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			return nil, err
		}
		all = append(all, findings...)
	}
	return all, nil
}

// ProcessPath runs processor on path, or on every source file below it when
// it is a directory. Files are processed one at a time; the findings
// gathered before ctx is done are returned with its error.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine Engine,
	path string,
	processor Processor,
) ([]tt.Finding, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}
	if !info.IsDir() {
		if !hasDesiredExtension(path) {
			return nil, nil
		}
		return processor(engine, path)
	}

	files, err := sourceFiles(path)
	if err != nil {
		return nil, err
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(path),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
	defer bar.Finish()

	findings := []tt.Finding{}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return findings, err
		}
		fileFindings, err := processor(engine, file)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing file", zap.String("file", file), zap.Error(err))
			}
		} else {
			findings = append(findings, fileFindings...)
		}
		_ = bar.Add(1)
	}
	return findings, nil
}

// sourceFiles lists the source files below root, skipping hidden
// directories and testdata.
func sourceFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || name == "testdata") {
				return filepath.SkipDir
			}
			return nil
		}
		if hasDesiredExtension(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return files, nil
}

var desiredExtensions = map[string]bool{
	".go":  true,
	".gno": true,
}

func hasDesiredExtension(path string) bool {
	return desiredExtensions[filepath.Ext(path)]
}

// Source is an in-memory file.
type Source struct {
	Filename string
	Content  []byte
}

// ProcessSources runs processor on each source in order, stopping at the
// first error.
func ProcessSources(
	ctx context.Context,
	logger *zap.Logger,
	engine Engine,
	sources []Source,
	processor func(Engine, Source) ([]tt.Finding, error),
) ([]tt.Finding, error) {
	var all []tt.Finding
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return all, err
		}
		findings, err := processor(engine, src)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing source", zap.String("source", src.Filename), zap.Error(err))
			}
			return nil, err
		}
		all = append(all, findings...)
	}
	return all, nil
}

func ProcessSource(engine Engine, src Source) ([]tt.Finding, error) {
	return engine.RunSource(src.Filename, src.Content)
}
