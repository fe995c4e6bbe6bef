// Package formatter renders findings for terminals, with the offending
// source excerpted and underlined.
package formatter

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"unicode"

	"github.com/fatih/color"

	tt "github.com/gnolang/sweep/internal/types"
)

const tabWidth = 8

var (
	errorStyle      = color.New(color.FgRed, color.Bold)
	warningStyle    = color.New(color.FgHiYellow, color.Bold)
	infoStyle       = color.New(color.FgHiCyan, color.Bold)
	ruleStyle       = color.New(color.FgYellow, color.Bold)
	fileStyle       = color.New(color.FgCyan, color.Bold)
	lineStyle       = color.New(color.FgHiBlue, color.Bold)
	messageStyle    = color.New(color.FgRed, color.Bold)
	suggestionStyle = color.New(color.FgGreen, color.Bold)
)

// findingFormatter provides the template a finding is rendered with.
type findingFormatter interface {
	FindingTemplate() string
}

func getFindingFormatter(f tt.Finding) findingFormatter {
	if f.Fixable {
		return &fixableFormatter{}
	}
	return &generalFormatter{}
}

// generalFormatter shows the header, the excerpt and the message.
type generalFormatter struct{}

func (*generalFormatter) FindingTemplate() string {
	return `{{header .}}{{snippet .}}{{underline .}}{{suggestion .}}
`
}

// fixableFormatter also tells how to apply the fix.
type fixableFormatter struct{}

func (*fixableFormatter) FindingTemplate() string {
	return `{{header .}}{{snippet .}}{{underline .}}{{suggestion .}}{{note "run 'sweep fix' to apply this rewrite"}}
`
}

// GenerateFormattedFindings renders the findings of one file, whose
// content is src.
func GenerateFormattedFindings(findings []tt.Finding, src *SourceCode) string {
	var builder strings.Builder
	for _, f := range findings {
		builder.WriteString(buildFinding(f, src, getFindingFormatter(f)))
	}
	return builder.String()
}

// FindingData is what finding templates are executed with.
type FindingData struct {
	tt.Finding
	Padding         string
	MaxLineNumWidth int
	CommonIndent    string
	SnippetLines    []string
}

func buildFinding(f tt.Finding, src *SourceCode, formatter findingFormatter) string {
	startLine, endLine := f.Start.Line, f.End.Line
	if endLine < startLine {
		endLine = startLine
	}
	width := calculateMaxLineNumWidth(endLine)

	data := FindingData{
		Finding:         f,
		MaxLineNumWidth: width,
		Padding:         strings.Repeat(" ", width+1),
		SnippetLines:    src.Lines,
	}
	data.End.Line = endLine
	if isValidLineRange(startLine, endLine, src.Lines) {
		data.CommonIndent = findCommonIndent(src.Lines[startLine-1 : endLine])
	}

	funcMap := template.FuncMap{
		"header":     header,
		"snippet":    codeSnippet,
		"underline":  underlineAndMessage,
		"suggestion": suggestion,
		"note":       note,
	}
	tmpl := template.Must(template.New("finding").Funcs(funcMap).Parse(formatter.FindingTemplate()))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("Error formatting finding: %v", err)
	}
	return buf.String()
}

func header(d FindingData) string {
	var s string
	switch d.Severity {
	case tt.SeverityError:
		s = errorStyle.Sprint("error: ")
	case tt.SeverityInfo:
		s = infoStyle.Sprint("info: ")
	default:
		s = warningStyle.Sprint("warning: ")
	}
	s += ruleStyle.Sprintf("%s\n", d.Rule)
	s += lineStyle.Sprintf("%s--> ", strings.Repeat(" ", d.MaxLineNumWidth))
	s += fileStyle.Sprintf("%s:%d:%d\n", d.Filename, d.Start.Line, d.Start.Column)
	return s
}

func codeSnippet(d FindingData) string {
	s := lineStyle.Sprintf("%s|\n", d.Padding)
	for i := d.Start.Line; i <= d.End.Line; i++ {
		if i-1 < 0 || i-1 >= len(d.SnippetLines) {
			continue
		}
		line := strings.TrimPrefix(d.SnippetLines[i-1], d.CommonIndent)
		s += lineStyle.Sprintf("%*d | ", d.MaxLineNumWidth, i)
		s += expandTabs(line) + "\n"
	}
	return s
}

// underlineAndMessage marks the columns of the finding on its first line.
// A finding spanning several lines is marked up to the end of that line.
func underlineAndMessage(d FindingData) string {
	s := lineStyle.Sprintf("%s| ", d.Padding)
	if !isValidLineRange(d.Start.Line, d.End.Line, d.SnippetLines) {
		return s + messageStyle.Sprintf("%s\n", d.Message)
	}

	first := d.SnippetLines[d.Start.Line-1]
	indent := calculateVisualColumn(d.CommonIndent, len(d.CommonIndent)+1)
	start := calculateVisualColumn(first, d.Start.Column) - indent
	if start < 0 {
		start = 0
	}
	end := calculateVisualColumn(first, len(first)+1) - indent
	if d.End.Line == d.Start.Line {
		end = calculateVisualColumn(first, d.End.Column) - indent
	}
	length := end - start
	if length < 1 {
		length = 1
	}

	s += strings.Repeat(" ", start)
	s += messageStyle.Sprintf("%s\n", strings.Repeat("~", length))
	s += lineStyle.Sprintf("%s= ", d.Padding)
	s += messageStyle.Sprintf("%s\n", d.Message)
	return s
}

func suggestion(d FindingData) string {
	if d.Suggestion == "" {
		return ""
	}
	return suggestionStyle.Sprint("Suggestion: ") + d.Suggestion + "\n"
}

func note(text string) string {
	return suggestionStyle.Sprint("Note: ") + lineStyle.Sprintf("%s\n", text)
}

func isValidLineRange(startLine, endLine int, lines []string) bool {
	return startLine > 0 &&
		startLine <= endLine &&
		endLine <= len(lines)
}

func calculateMaxLineNumWidth(endLine int) int {
	return len(fmt.Sprintf("%d", endLine))
}

// calculateVisualColumn returns the width of line before the 1-based byte
// column, with tabs expanded.
func calculateVisualColumn(line string, column int) int {
	if column < 0 {
		return 0
	}
	visual := 0
	for i, ch := range line {
		if i+1 >= column {
			break
		}
		if ch == '\t' {
			visual += tabWidth - (visual % tabWidth)
		} else {
			visual++
		}
	}
	return visual
}

func expandTabs(line string) string {
	var b strings.Builder
	col := 0
	for _, ch := range line {
		if ch == '\t' {
			n := tabWidth - (col % tabWidth)
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteRune(ch)
		col++
	}
	return b.String()
}

// findCommonIndent returns the leading whitespace shared by the non-empty lines.
func findCommonIndent(lines []string) string {
	var common []rune
	found := false
	for _, line := range lines {
		trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
		if trimmed == "" {
			continue
		}
		indent := []rune(line[:len(line)-len(trimmed)])
		if !found {
			common, found = indent, true
			continue
		}
		common = commonPrefix(common, indent)
		if len(common) == 0 {
			break
		}
	}
	return string(common)
}

func commonPrefix(a, b []rune) []rune {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:n]
}
