package formatter

import (
	"os"
	"strings"
)

// SourceCode is a file split into lines, without their line endings.
type SourceCode struct {
	Lines []string
}

func NewSourceCode(src []byte) *SourceCode {
	return &SourceCode{Lines: strings.Split(string(src), "\n")}
}

// ReadSourceCode reads the file a finding points into.
func ReadSourceCode(filename string) (*SourceCode, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return NewSourceCode(content), nil
}
