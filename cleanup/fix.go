package cleanup

import (
	"fmt"
	"io"
	"os"

	tt "github.com/gnolang/sweep/internal/types"
)

// Fixer rewrites files in place, or only prints their diffs in dry-run mode.
type Fixer struct {
	DryRun bool
	// Out receives the diffs in dry-run mode.
	Out io.Writer
}

func NewFixer(dryRun bool, out io.Writer) *Fixer {
	if out == nil {
		out = os.Stdout
	}
	return &Fixer{DryRun: dryRun, Out: out}
}

// Process is a Processor applying every fixable rule to filename. It
// returns the findings that were fixed.
func (f *Fixer) Process(engine Engine, filename string) ([]tt.Finding, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	out, fixed, err := engine.Fix(filename, src)
	if err != nil {
		return nil, err
	}
	if len(fixed) == 0 || string(out) == string(src) {
		return fixed, nil
	}

	if f.DryRun {
		diff, err := Diff(filename, src, out)
		if err != nil {
			return nil, err
		}
		if _, err := io.WriteString(f.Out, diff); err != nil {
			return nil, err
		}
		return fixed, nil
	}

	info, err := os.Stat(filename)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filename, out, info.Mode().Perm()); err != nil {
		return nil, fmt.Errorf("error writing file: %w", err)
	}
	return fixed, nil
}
