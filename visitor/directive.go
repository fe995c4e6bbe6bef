package visitor

import (
	"go/ast"
	"strings"
)

// Directive is a line comment with no space after the slashes, such as
// "//go:noinline" or "//lint:ignore SA1019 reason". Directives play the role
// annotations play in other languages.
type Directive struct {
	Name string
	Args string
}

func (d Directive) String() string {
	if d.Args == "" {
		return "//" + d.Name
	}
	return "//" + d.Name + " " + d.Args
}

// ParseDirective parses the text of a comment as a directive.
func ParseDirective(text string) (Directive, bool) {
	rest, ok := strings.CutPrefix(text, "//")
	if !ok || rest == "" {
		return Directive{}, false
	}
	end := 0
	for end < len(rest) && isDirectiveNameByte(rest[end]) {
		end++
	}
	if end == 0 || !isLetter(rest[0]) {
		return Directive{}, false
	}
	if end < len(rest) && rest[end] != ' ' && rest[end] != '\t' {
		return Directive{}, false
	}
	return Directive{
		Name: rest[:end],
		Args: strings.TrimSpace(rest[end:]),
	}, true
}

// DirectiveOf parses c, reporting false for ordinary comments.
func DirectiveOf(c *ast.Comment) (Directive, bool) {
	if c == nil {
		return Directive{}, false
	}
	return ParseDirective(c.Text)
}

func isLetter(b byte) bool {
	return 'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z' || b == '_'
}

func isDirectiveNameByte(b byte) bool {
	return isLetter(b) || '0' <= b && b <= '9' || b == '.' || b == ':' || b == '-'
}
