package visitor

import (
	"go/ast"
	"go/types"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/tools/go/ast/astutil"
)

// Imports maps the local name of each import of a file to its path.
// Blank imports are left out; dot imports are kept apart in Dot.
type Imports struct {
	Names map[string]string
	Dot   []string
}

// ImportsOf collects the imports of f.
func ImportsOf(f *ast.File) Imports {
	imports := Imports{Names: make(map[string]string)}
	if f == nil {
		return imports
	}
	for _, imp := range f.Imports {
		path, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}
		switch name := importName(imp, path); name {
		case "_":
		case ".":
			imports.Dot = append(imports.Dot, path)
		default:
			imports.Names[name] = path
		}
	}
	return imports
}

// Lookup returns the path imported under name.
func (im Imports) Lookup(name string) (string, bool) {
	path, ok := im.Names[name]
	return path, ok
}

// Dotted reports whether path is dot imported.
func (im Imports) Dotted(path string) bool {
	return slices.Contains(im.Dot, path)
}

// unresolvedIdent reports whether id may name a dot-imported object: it is
// declared nowhere in the file and is not predeclared.
func unresolvedIdent(id *ast.Ident) bool {
	return id.Obj == nil && types.Universe.Lookup(id.Name) == nil
}

func importName(imp *ast.ImportSpec, path string) string {
	if imp.Name != nil {
		return imp.Name.Name
	}
	parts := strings.Split(path, "/")
	name := parts[len(parts)-1]
	// gopkg.in/yaml.v3 is imported as yaml
	if i := strings.IndexByte(name, '.'); i > 0 && strings.HasPrefix(path, "gopkg.in/") {
		name = name[:i]
	}
	return name
}

// ImportPath returns the unquoted path of an import spec.
func ImportPath(imp *ast.ImportSpec) string {
	path, err := strconv.Unquote(imp.Path.Value)
	if err != nil {
		return ""
	}
	return path
}

// Callee describes the function a call expression invokes.
type Callee struct {
	// Path is the package path of the function, or of the receiver type for methods.
	Path string
	// Recv is the receiver type name; empty for package-level functions.
	Recv string
	Name string
}

// Owner returns the qualified name that owns the callee: the package path
// for functions and "path.Recv" for methods.
func (c Callee) Owner() string {
	if c.Recv == "" {
		return c.Path
	}
	if c.Path == "" {
		return c.Recv
	}
	return c.Path + "." + c.Recv
}

func (c Callee) String() string {
	if owner := c.Owner(); owner != "" {
		return owner + "." + c.Name
	}
	return c.Name
}

// ResolveCallee works out which function call invokes. Type information is
// used when present; otherwise package-qualified calls resolve through the
// file's imports, and bare calls resolve when the file has exactly one dot import.
// The returned Callee always carries the called name, ok reports whether the
// owner could be determined.
func ResolveCallee(call *ast.CallExpr, info *types.Info, imports Imports) (Callee, bool) {
	var id *ast.Ident
	var sel *ast.SelectorExpr
	switch fun := astutil.Unparen(call.Fun).(type) {
	case *ast.Ident:
		id = fun
	case *ast.SelectorExpr:
		sel = fun
		id = fun.Sel
	case *ast.IndexExpr:
		return ResolveCallee(&ast.CallExpr{Fun: fun.X}, info, imports)
	case *ast.IndexListExpr:
		return ResolveCallee(&ast.CallExpr{Fun: fun.X}, info, imports)
	default:
		return Callee{}, false
	}

	callee := Callee{Name: id.Name}
	if info != nil {
		if fn, ok := info.Uses[id].(*types.Func); ok {
			sig, _ := fn.Type().(*types.Signature)
			if sig != nil && sig.Recv() != nil {
				if named := namedOf(sig.Recv().Type()); named != nil {
					callee.Recv = named.Obj().Name()
					if pkg := named.Obj().Pkg(); pkg != nil {
						callee.Path = pkg.Path()
					}
					return callee, true
				}
				return callee, false
			}
			if fn.Pkg() != nil {
				callee.Path = fn.Pkg().Path()
			}
			return callee, true
		}
	}

	if sel != nil {
		if x, ok := sel.X.(*ast.Ident); ok && x.Obj == nil {
			if path, ok := imports.Lookup(x.Name); ok {
				callee.Path = path
				return callee, true
			}
		}
		return callee, false
	}
	if len(imports.Dot) == 1 && unresolvedIdent(id) {
		callee.Path = imports.Dot[0]
		return callee, true
	}
	return callee, false
}

// TypeNameOf returns the qualified name ("path.Name") of the type denoted or
// produced by expr, dereferencing pointers. Without type information only
// package-qualified names and bare identifiers resolve.
func TypeNameOf(expr ast.Expr, info *types.Info, imports Imports) string {
	if expr == nil {
		return ""
	}
	if info != nil {
		if t := info.TypeOf(expr); t != nil {
			if ptr, ok := t.(*types.Pointer); ok {
				t = ptr.Elem()
			}
			if named := namedOf(t); named != nil {
				if pkg := named.Obj().Pkg(); pkg != nil {
					return pkg.Path() + "." + named.Obj().Name()
				}
				return named.Obj().Name()
			}
			return t.String()
		}
	}

	switch e := astutil.Unparen(expr).(type) {
	case *ast.StarExpr:
		return TypeNameOf(e.X, nil, imports)
	case *ast.Ident:
		return e.Name
	case *ast.SelectorExpr:
		if x, ok := e.X.(*ast.Ident); ok {
			if path, ok := imports.Lookup(x.Name); ok {
				return path + "." + e.Sel.Name
			}
		}
	case *ast.IndexExpr:
		return TypeNameOf(e.X, nil, imports)
	case *ast.IndexListExpr:
		return TypeNameOf(e.X, nil, imports)
	}
	return ""
}

// ParamTypesOf returns the parameter type strings of the function called by
// call, or nil when they are unknown.
func ParamTypesOf(call *ast.CallExpr, info *types.Info) []string {
	if info == nil {
		return nil
	}
	sig, ok := info.TypeOf(call.Fun).(*types.Signature)
	if !ok {
		return nil
	}
	params := make([]string, sig.Params().Len())
	for i := range params {
		params[i] = types.TypeString(sig.Params().At(i).Type(), nil)
	}
	return params
}

func namedOf(t types.Type) *types.Named {
	if ptr, ok := t.(*types.Pointer); ok {
		t = ptr.Elem()
	}
	named, _ := t.(*types.Named)
	return named
}

// PackageOf returns the package part of a qualified type name such as
// "strings.Builder". A name without a type part is returned unchanged.
func PackageOf(qualified string) string {
	slash := strings.LastIndexByte(qualified, '/')
	if dot := strings.IndexByte(qualified[slash+1:], '.'); dot >= 0 {
		return qualified[:slash+1+dot]
	}
	return qualified
}
