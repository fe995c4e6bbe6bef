// Package replacement parses the short templates rules use to describe what a
// matched directive or call is rewritten into, such as "//lint:file-ignore($reason)"
// or "os.ReadFile($args$)".
package replacement

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidPattern is wrapped by every error Parse returns.
var ErrInvalidPattern = errors.New("invalid replacement pattern")

// ParseError reports a template that does not match the template grammar.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v: %q", ErrInvalidPattern, e.Input)
}

func (e *ParseError) Unwrap() error {
	return ErrInvalidPattern
}

// A name is a dotted or colon-separated identifier path, optionally followed
// by a parenthesised placeholder.
var pattern = regexp.MustCompile(`^@?([A-Za-z_][A-Za-z0-9_]*(?:[.:][A-Za-z_][A-Za-z0-9_]*)*)(?:\((.*)\))?$`)

// Replacement is a parsed template.
type Replacement struct {
	// Name is the directive name or the qualified function ("os.ReadFile").
	Name string
	// Placeholder is "" when the template has no value, the bare name of a
	// single placeholder ("$value" yields "value"), or a multi placeholder
	// kept with both dollars ("$args$").
	Placeholder string
	// Directive is set when the template started with "@".
	Directive bool
}

// Parse parses s after trimming surrounding space.
func Parse(s string) (Replacement, error) {
	in := strings.TrimSpace(s)
	m := pattern.FindStringSubmatch(in)
	if m == nil {
		return Replacement{}, &ParseError{Input: s}
	}
	return Replacement{
		Name:        m[1],
		Placeholder: normalize(strings.TrimSpace(m[2])),
		Directive:   strings.HasPrefix(in, "@"),
	}, nil
}

// MustParse is Parse for templates known to be valid; it panics on error.
func MustParse(s string) Replacement {
	r, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return r
}

func normalize(p string) string {
	if isMulti(p) {
		return p
	}
	return strings.TrimPrefix(p, "$")
}

func isMulti(p string) bool {
	return len(p) >= 2 && strings.HasPrefix(p, "$") && strings.HasSuffix(p, "$")
}

func (r Replacement) HasPlaceholders() bool {
	return r.Placeholder != ""
}

// IsMultiPlaceholder reports whether the placeholder splices a list of values.
func (r Replacement) IsMultiPlaceholder() bool {
	return isMulti(r.Placeholder)
}

// BindingKey is the key under which a match stores the placeholder's value:
// "$value" for a single placeholder, "$args$" for a multi one.
func (r Replacement) BindingKey() string {
	switch {
	case !r.HasPlaceholders():
		return ""
	case r.IsMultiPlaceholder():
		return r.Placeholder
	default:
		return "$" + r.Placeholder
	}
}

// Package returns the part of Name before the last dot, or "" when Name is
// not qualified. For "os.ReadFile" it is "os".
func (r Replacement) Package() string {
	if i := strings.LastIndexByte(r.Name, '.'); i >= 0 {
		return r.Name[:i]
	}
	return ""
}

// Func returns the part of Name after the last dot.
func (r Replacement) Func() string {
	return r.Name[strings.LastIndexByte(r.Name, '.')+1:]
}

// String renders r in canonical form.
func (r Replacement) String() string {
	var b strings.Builder
	if r.Directive {
		b.WriteByte('@')
	}
	b.WriteString(r.Name)
	switch {
	case r.IsMultiPlaceholder():
		fmt.Fprintf(&b, "(%s)", r.Placeholder)
	case r.HasPlaceholders():
		fmt.Fprintf(&b, "($%s)", r.Placeholder)
	}
	return b.String()
}
