package nolint

import (
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *Suppressions {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "test.go", src, parser.ParseComments)
	require.NoError(t, err)
	return Parse(f, fset)
}

func TestParseRules(t *testing.T) {
	t.Parallel()
	tests := []struct {
		text    string
		want    []string
		wantErr bool
	}{
		{text: "//nolint", want: []string{}},
		{text: "//nolint // generated", want: []string{}},
		{text: "//nolint:rule1,rule2,rule3", want: []string{"rule1", "rule2", "rule3"}},
		{text: "//nolint:rule1, rule2", want: []string{"rule1"}},
		{text: "//nolint:rule1 // reason", want: []string{"rule1"}},
		{text: "//nolint:", wantErr: true},
		{text: "//nolintfoo", wantErr: true},
		{text: "// nolint", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			rules, err := parseRules(tt.text)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			got := make([]string, 0, len(rules))
			for r := range rules {
				got = append(got, r)
			}
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestDeclarationScopes(t *testing.T) {
	t.Parallel()
	s := parse(t, `package main

//nolint:rule1,rule2
func foo() {
	// some code
}

//nolint
var x int

func bar() {}
`)
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Suppressed(5, "rule1"))
	assert.True(t, s.Suppressed(6, "rule2"))
	assert.False(t, s.Suppressed(5, "rule3"))
	assert.True(t, s.Suppressed(9, "anyrule"))
	assert.False(t, s.Suppressed(11, "anyrule"))
}

func TestStatementScopes(t *testing.T) {
	t.Parallel()
	s := parse(t, `package main

func main() {
	//nolint
	fmt.Println("Line 5")
	fmt.Println("Line 6")
	fmt.Println("Line 7") //nolint:rule1
	//nolint:rule2
	fmt.Println("Line 9")
}
`)
	tests := []struct {
		rule string
		line int
		want bool
	}{
		{"anyrule", 5, true},
		{"anyrule", 6, false},
		{"rule1", 7, true},
		{"rule2", 7, false},
		{"rule2", 9, true},
		{"rule3", 9, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.Suppressed(tt.line, tt.rule), "line %d rule %s", tt.line, tt.rule)
	}
}

func TestFileScope(t *testing.T) {
	t.Parallel()
	s := parse(t, `//nolint:ioutil-readfile
package main

func main() {}
`)
	assert.True(t, s.Suppressed(4, "ioutil-readfile"))
	assert.False(t, s.Suppressed(4, "other"))
}

func TestNilSuppressions(t *testing.T) {
	var s *Suppressions
	assert.False(t, s.Suppressed(1, "any"))
}
