package cleanup

import (
	"go/token"

	"golang.org/x/tools/go/analysis"
)

// NewAnalyzer exposes engine as an analysis pass, so that the rules can run
// under drivers such as singlechecker or go vet. Each finding becomes a
// diagnostic whose category is the rule id.
func NewAnalyzer(engine Engine) *analysis.Analyzer {
	return &analysis.Analyzer{
		Name: "sweep",
		Doc:  "reports code that cleanup rules can rewrite",
		Run: func(pass *analysis.Pass) (interface{}, error) {
			for _, file := range pass.Files {
				tf := pass.Fset.File(file.Pos())
				if tf == nil {
					continue
				}
				findings, err := engine.RunFile(pass.Fset, file, pass.TypesInfo)
				if err != nil {
					return nil, err
				}
				for _, f := range findings {
					msg := f.Message
					if f.Suggestion != "" {
						msg += ": use " + f.Suggestion
					}
					pass.Report(analysis.Diagnostic{
						Pos:      offsetPos(tf, f.Start),
						End:      offsetPos(tf, f.End),
						Category: f.Rule,
						Message:  msg,
					})
				}
			}
			return nil, nil
		},
	}
}

func offsetPos(tf *token.File, p token.Position) token.Pos {
	if !p.IsValid() || p.Offset > tf.Size() {
		return token.NoPos
	}
	return tf.Pos(p.Offset)
}
