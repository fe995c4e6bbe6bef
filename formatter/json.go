package formatter

import (
	"encoding/json"

	tt "github.com/gnolang/sweep/internal/types"
)

// FormatJSON groups findings by file name.
func FormatJSON(findings []tt.Finding) ([]byte, error) {
	byFile := make(map[string][]tt.Finding)
	for _, f := range findings {
		byFile[f.Filename] = append(byFile[f.Filename], f)
	}
	return json.MarshalIndent(byFile, "", "  ")
}
