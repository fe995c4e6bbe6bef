package types

import (
	"fmt"
	"go/token"
	"strings"

	"gopkg.in/yaml.v3"
)

// Finding is one place a cleanup rule matched.
type Finding struct {
	Rule     string
	Severity Severity
	Filename string
	Message  string
	// Suggestion is the replacement template of the rule, if it has one.
	Suggestion string
	// Fixable is set when the rule can rewrite the match.
	Fixable bool
	Start   token.Position
	End     token.Position
}

func (f Finding) String() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s", f.Filename, f.Start.Line, f.Start.Column, f.Rule, f.Message)
}

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
	SeverityOff
)

var severityNames = [...]string{"ERROR", "WARNING", "INFO", "OFF"}

func (s Severity) String() string {
	if s < 0 || int(s) >= len(severityNames) {
		return fmt.Sprintf("Severity(%d)", int(s))
	}
	return severityNames[s]
}

func ParseSeverity(s string) (Severity, error) {
	for i, name := range severityNames {
		if strings.EqualFold(name, s) {
			return Severity(i), nil
		}
	}
	return 0, fmt.Errorf("unknown severity %q", s)
}

func (s Severity) MarshalYAML() (any, error) {
	return strings.ToLower(s.String()), nil
}

func (s *Severity) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseSeverity(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*s = parsed
	return nil
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

func (s *Severity) UnmarshalJSON(data []byte) error {
	parsed, err := ParseSeverity(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ConfigRule overrides the handling of one rule.
type ConfigRule struct {
	Severity Severity `yaml:"severity"`
}
