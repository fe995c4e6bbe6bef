package cleanup

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/tools/go/packages"

	tt "github.com/gnolang/sweep/internal/types"
)

// LoadPackages loads and type-checks the packages matching patterns,
// relative to dir.
func LoadPackages(ctx context.Context, dir string, patterns ...string) ([]*packages.Package, error) {
	cfg := &packages.Config{
		Context: ctx,
		Dir:     dir,
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedSyntax |
			packages.NeedTypes | packages.NeedTypesInfo | packages.NeedImports,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("load packages: %w", err)
	}
	if len(pkgs) == 0 {
		return nil, errors.New("no packages found")
	}
	return pkgs, nil
}

// ProcessPackages runs the engine over every file of pkgs with their type
// information. Packages with errors are still processed; their errors are
// logged.
func ProcessPackages(ctx context.Context, logger *zap.Logger, engine Engine, pkgs []*packages.Package) ([]tt.Finding, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var all []tt.Finding
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			logger.Warn("package error", zap.String("package", pkg.PkgPath), zap.String("error", e.Error()))
		}
		for _, file := range pkg.Syntax {
			if err := ctx.Err(); err != nil {
				return all, err
			}
			findings, err := engine.RunFile(pkg.Fset, file, pkg.TypesInfo)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", pkg.PkgPath, err)
			}
			all = append(all, findings...)
		}
	}
	return all, nil
}
