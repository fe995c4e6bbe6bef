package visitor

import (
	"go/ast"
	"go/token"
	"go/types"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/tools/go/ast/astutil"
)

// Filter narrows a registration to the nodes of its kind that satisfy every
// non-zero criterion. Criteria that do not apply to a kind are ignored.
type Filter struct {
	// TypeName is the qualified owner of a call ("strings" for package
	// functions, "strings.Builder" for methods), the type of a composite
	// literal or field, or the receiver type of a method declaration.
	TypeName string
	// MethodNames restricts calls, selectors and function declarations by name.
	MethodNames []string
	// ParamTypes restricts calls by the parameter types of the callee. It
	// requires type information.
	ParamTypes []string
	// DirectiveName restricts comments to directives of that name.
	DirectiveName string
	// ImportPath restricts import specs.
	ImportPath string
	// FieldTag restricts fields to those whose struct tag has this key.
	FieldTag string
	// Operator restricts assignments, inc/dec statements, unary and binary expressions.
	Operator token.Token
	// SuperType restricts type specs to struct types embedding this type.
	SuperType string
}

// IsZero reports whether f has no criteria.
func (f Filter) IsZero() bool {
	return f.TypeName == "" && len(f.MethodNames) == 0 && len(f.ParamTypes) == 0 &&
		f.DirectiveName == "" && f.ImportPath == "" && f.FieldTag == "" &&
		f.Operator == token.ILLEGAL && f.SuperType == ""
}

// env is the per-file resolution state shared by filters during a walk.
type env struct {
	info    *types.Info
	file    *ast.File
	imports Imports
}

func newEnv(info *types.Info) *env {
	return &env{info: info}
}

func (e *env) setFile(f *ast.File) {
	e.file = f
	e.imports = ImportsOf(f)
}

func (f Filter) matches(n ast.Node, e *env) bool {
	switch n := n.(type) {
	case *ast.CallExpr:
		return f.matchCall(n, e)
	case *ast.Comment:
		if f.DirectiveName == "" {
			return true
		}
		d, ok := DirectiveOf(n)
		return ok && d.Name == f.DirectiveName
	case *ast.ImportSpec:
		return f.ImportPath == "" || ImportPath(n) == f.ImportPath
	case *ast.CompositeLit:
		return f.TypeName == "" || e.typeMatches(TypeNameOf(n.Type, e.info, e.imports), f.TypeName)
	case *ast.Field:
		return f.matchField(n, e)
	case *ast.AssignStmt:
		return f.Operator == token.ILLEGAL || n.Tok == f.Operator
	case *ast.IncDecStmt:
		return f.Operator == token.ILLEGAL || n.Tok == f.Operator
	case *ast.BinaryExpr:
		return f.Operator == token.ILLEGAL || n.Op == f.Operator
	case *ast.UnaryExpr:
		return f.Operator == token.ILLEGAL || n.Op == f.Operator
	case *ast.FuncDecl:
		if len(f.MethodNames) > 0 && !slices.Contains(f.MethodNames, n.Name.Name) {
			return false
		}
		if f.TypeName == "" {
			return true
		}
		if n.Recv == nil || len(n.Recv.List) == 0 {
			return false
		}
		return e.typeMatches(TypeNameOf(n.Recv.List[0].Type, e.info, e.imports), f.TypeName)
	case *ast.SelectorExpr:
		if len(f.MethodNames) > 0 && !slices.Contains(f.MethodNames, n.Sel.Name) {
			return false
		}
		if f.TypeName == "" {
			return true
		}
		if x, ok := n.X.(*ast.Ident); ok && x.Obj == nil {
			if path, ok := e.imports.Lookup(x.Name); ok {
				return path == f.TypeName
			}
		}
		return e.typeMatches(TypeNameOf(n.X, e.info, e.imports), f.TypeName)
	case *ast.TypeSpec:
		if f.SuperType == "" {
			return true
		}
		st, ok := n.Type.(*ast.StructType)
		if !ok {
			return false
		}
		for _, field := range st.Fields.List {
			if len(field.Names) == 0 && e.typeMatches(TypeNameOf(field.Type, e.info, e.imports), f.SuperType) {
				return true
			}
		}
		return false
	}
	return true
}

func (f Filter) matchCall(call *ast.CallExpr, e *env) bool {
	if f.TypeName == "" && len(f.MethodNames) == 0 && len(f.ParamTypes) == 0 {
		return true
	}
	callee, resolved := ResolveCallee(call, e.info, e.imports)
	if callee.Name == "" {
		return false
	}
	if len(f.MethodNames) > 0 && !slices.Contains(f.MethodNames, callee.Name) {
		return false
	}
	if f.TypeName != "" && (!resolved || callee.Owner() != f.TypeName) && !e.dotCall(call, f.TypeName) {
		return false
	}
	if len(f.ParamTypes) > 0 {
		return slices.Equal(ParamTypesOf(call, e.info), f.ParamTypes)
	}
	return true
}

func (f Filter) matchField(field *ast.Field, e *env) bool {
	if f.TypeName != "" && !e.typeMatches(TypeNameOf(field.Type, e.info, e.imports), f.TypeName) {
		return false
	}
	if f.FieldTag != "" {
		if field.Tag == nil {
			return false
		}
		tag, err := strconv.Unquote(field.Tag.Value)
		if err != nil {
			return false
		}
		if _, ok := reflect.StructTag(tag).Lookup(f.FieldTag); !ok {
			return false
		}
	}
	return true
}

// dotCall reports whether call is an unqualified call of a function that a
// dot import of path brings into scope. Without type information any such
// call qualifies.
func (e *env) dotCall(call *ast.CallExpr, path string) bool {
	if !e.imports.Dotted(path) {
		return false
	}
	id, ok := astutil.Unparen(call.Fun).(*ast.Ident)
	if !ok || !unresolvedIdent(id) {
		return false
	}
	if e.info != nil {
		if obj := e.info.Uses[id]; obj != nil {
			return obj.Pkg() != nil && obj.Pkg().Path() == path
		}
	}
	return true
}

// typeMatches compares a resolved type name with the wanted one. Without type
// information a bare identifier is a type of the file's own package or of a
// dot-imported one, so it matches a qualified name only in those cases.
func (e *env) typeMatches(got, want string) bool {
	if got == "" {
		return false
	}
	if got == want {
		return true
	}
	if strings.Contains(got, ".") || !strings.HasSuffix(want, "."+got) {
		return false
	}
	pkg := strings.TrimSuffix(want, "."+got)
	if e.imports.Dotted(pkg) {
		return true
	}
	return e.file != nil && pkg[strings.LastIndexByte(pkg, '/')+1:] == e.file.Name.Name
}
