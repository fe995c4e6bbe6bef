package cleanup

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	tt "github.com/gnolang/sweep/internal/types"
	"github.com/gnolang/sweep/plugin"
	"github.com/gnolang/sweep/replacement"
	"github.com/gnolang/sweep/rewrite"
)

// DefaultConfigFile is looked up when no configuration path is given.
const DefaultConfigFile = ".sweep.yaml"

// Config is the content of a configuration file.
type Config struct {
	Name string `yaml:"name"`
	// Rules overrides the severity of built-in or custom rules by id.
	Rules map[string]tt.ConfigRule `yaml:"rules"`
	// Custom declares additional rules.
	Custom      []RuleSpec `yaml:"custom,omitempty"`
	IgnorePaths []string   `yaml:"ignore_paths,omitempty"`
}

// RuleSpec declares a rule in configuration, with the same fields the
// cleanup and rewrite struct tags take.
type RuleSpec struct {
	ID          string   `yaml:"id"`
	Description string   `yaml:"description,omitempty"`
	Kind        string   `yaml:"kind"`
	Pattern     string   `yaml:"pattern"`
	Type        string   `yaml:"type,omitempty"`
	Replace     string   `yaml:"replace,omitempty"`
	Add         []string `yaml:"add,omitempty"`
	Remove      []string `yaml:"remove,omitempty"`
	AddDot      []string `yaml:"add_dot,omitempty"`
	RemoveDot   []string `yaml:"remove_dot,omitempty"`
}

// Rule builds the plugin rule s declares.
func (s RuleSpec) Rule() (*plugin.Rule, error) {
	if s.ID == "" {
		return nil, errors.New("custom rule without id")
	}
	kind := plugin.KindCall
	if s.Kind != "" {
		k, err := plugin.ParseKind(s.Kind)
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", s.ID, err)
		}
		kind = k
	}
	pattern := plugin.Pattern{Kind: kind, Value: s.Pattern, QualifiedType: s.Type}
	if s.Pattern == "" {
		return nil, fmt.Errorf("%w: rule %s", plugin.ErrNoPattern, s.ID)
	}

	imports := rewrite.Imports{Add: s.Add, Remove: s.Remove, AddDot: s.AddDot, RemoveDot: s.RemoveDot}
	var tmpl *plugin.Template
	if s.Replace != "" || !imports.IsZero() {
		tmpl = &plugin.Template{Imports: imports}
		if s.Replace != "" {
			repl, err := replacement.Parse(s.Replace)
			if err != nil {
				return nil, fmt.Errorf("rule %s: %w", s.ID, err)
			}
			tmpl.Replace = repl
		}
	}
	return plugin.Declare(s.ID, s.Description, []plugin.Pattern{pattern}, tmpl)
}

// LoadConfig reads the configuration file at path.
func LoadConfig(path string) (Config, error) {
	var config Config

	f, err := os.Open(path)
	if err != nil {
		return config, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return config, fmt.Errorf("parse %s: %w", path, err)
	}
	return config, nil
}

// WriteConfig writes config to path, replacing any existing file.
func WriteConfig(path string, config Config) error {
	d, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(path, d, 0o644)
}
