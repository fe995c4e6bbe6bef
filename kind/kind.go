// Package kind enumerates the concrete syntax node types of go/ast.
//
// The set is closed: every node produced by go/parser maps to exactly one
// Kind, and anything else maps to Invalid.
package kind

import (
	"fmt"
	"go/ast"
	"reflect"
)

// Kind identifies the syntactic category of an ast.Node.
type Kind uint8

const (
	Invalid Kind = iota
	ArrayType
	AssignStmt
	BadDecl
	BadExpr
	BadStmt
	BasicLit
	BinaryExpr
	BlockStmt
	BranchStmt
	CallExpr
	CaseClause
	ChanType
	CommClause
	Comment
	CommentGroup
	CompositeLit
	DeclStmt
	DeferStmt
	Ellipsis
	EmptyStmt
	ExprStmt
	Field
	FieldList
	File
	ForStmt
	FuncDecl
	FuncLit
	FuncType
	GenDecl
	GoStmt
	Ident
	IfStmt
	ImportSpec
	IncDecStmt
	IndexExpr
	IndexListExpr
	InterfaceType
	KeyValueExpr
	LabeledStmt
	MapType
	ParenExpr
	RangeStmt
	ReturnStmt
	SelectStmt
	SelectorExpr
	SendStmt
	SliceExpr
	StarExpr
	StructType
	SwitchStmt
	TypeAssertExpr
	TypeSpec
	TypeSwitchStmt
	UnaryExpr
	ValueSpec

	numKinds
)

type info struct {
	name      string
	prototype ast.Node
}

var table = [numKinds]info{
	Invalid:        {"Invalid", nil},
	ArrayType:      {"ArrayType", (*ast.ArrayType)(nil)},
	AssignStmt:     {"AssignStmt", (*ast.AssignStmt)(nil)},
	BadDecl:        {"BadDecl", (*ast.BadDecl)(nil)},
	BadExpr:        {"BadExpr", (*ast.BadExpr)(nil)},
	BadStmt:        {"BadStmt", (*ast.BadStmt)(nil)},
	BasicLit:       {"BasicLit", (*ast.BasicLit)(nil)},
	BinaryExpr:     {"BinaryExpr", (*ast.BinaryExpr)(nil)},
	BlockStmt:      {"BlockStmt", (*ast.BlockStmt)(nil)},
	BranchStmt:     {"BranchStmt", (*ast.BranchStmt)(nil)},
	CallExpr:       {"CallExpr", (*ast.CallExpr)(nil)},
	CaseClause:     {"CaseClause", (*ast.CaseClause)(nil)},
	ChanType:       {"ChanType", (*ast.ChanType)(nil)},
	CommClause:     {"CommClause", (*ast.CommClause)(nil)},
	Comment:        {"Comment", (*ast.Comment)(nil)},
	CommentGroup:   {"CommentGroup", (*ast.CommentGroup)(nil)},
	CompositeLit:   {"CompositeLit", (*ast.CompositeLit)(nil)},
	DeclStmt:       {"DeclStmt", (*ast.DeclStmt)(nil)},
	DeferStmt:      {"DeferStmt", (*ast.DeferStmt)(nil)},
	Ellipsis:       {"Ellipsis", (*ast.Ellipsis)(nil)},
	EmptyStmt:      {"EmptyStmt", (*ast.EmptyStmt)(nil)},
	ExprStmt:       {"ExprStmt", (*ast.ExprStmt)(nil)},
	Field:          {"Field", (*ast.Field)(nil)},
	FieldList:      {"FieldList", (*ast.FieldList)(nil)},
	File:           {"File", (*ast.File)(nil)},
	ForStmt:        {"ForStmt", (*ast.ForStmt)(nil)},
	FuncDecl:       {"FuncDecl", (*ast.FuncDecl)(nil)},
	FuncLit:        {"FuncLit", (*ast.FuncLit)(nil)},
	FuncType:       {"FuncType", (*ast.FuncType)(nil)},
	GenDecl:        {"GenDecl", (*ast.GenDecl)(nil)},
	GoStmt:         {"GoStmt", (*ast.GoStmt)(nil)},
	Ident:          {"Ident", (*ast.Ident)(nil)},
	IfStmt:         {"IfStmt", (*ast.IfStmt)(nil)},
	ImportSpec:     {"ImportSpec", (*ast.ImportSpec)(nil)},
	IncDecStmt:     {"IncDecStmt", (*ast.IncDecStmt)(nil)},
	IndexExpr:      {"IndexExpr", (*ast.IndexExpr)(nil)},
	IndexListExpr:  {"IndexListExpr", (*ast.IndexListExpr)(nil)},
	InterfaceType:  {"InterfaceType", (*ast.InterfaceType)(nil)},
	KeyValueExpr:   {"KeyValueExpr", (*ast.KeyValueExpr)(nil)},
	LabeledStmt:    {"LabeledStmt", (*ast.LabeledStmt)(nil)},
	MapType:        {"MapType", (*ast.MapType)(nil)},
	ParenExpr:      {"ParenExpr", (*ast.ParenExpr)(nil)},
	RangeStmt:      {"RangeStmt", (*ast.RangeStmt)(nil)},
	ReturnStmt:     {"ReturnStmt", (*ast.ReturnStmt)(nil)},
	SelectStmt:     {"SelectStmt", (*ast.SelectStmt)(nil)},
	SelectorExpr:   {"SelectorExpr", (*ast.SelectorExpr)(nil)},
	SendStmt:       {"SendStmt", (*ast.SendStmt)(nil)},
	SliceExpr:      {"SliceExpr", (*ast.SliceExpr)(nil)},
	StarExpr:       {"StarExpr", (*ast.StarExpr)(nil)},
	StructType:     {"StructType", (*ast.StructType)(nil)},
	SwitchStmt:     {"SwitchStmt", (*ast.SwitchStmt)(nil)},
	TypeAssertExpr: {"TypeAssertExpr", (*ast.TypeAssertExpr)(nil)},
	TypeSpec:       {"TypeSpec", (*ast.TypeSpec)(nil)},
	TypeSwitchStmt: {"TypeSwitchStmt", (*ast.TypeSwitchStmt)(nil)},
	UnaryExpr:      {"UnaryExpr", (*ast.UnaryExpr)(nil)},
	ValueSpec:      {"ValueSpec", (*ast.ValueSpec)(nil)},
}

var (
	byType = make(map[reflect.Type]Kind, numKinds)
	byName = make(map[string]Kind, numKinds)
)

func init() {
	for k := Kind(1); k < numKinds; k++ {
		byType[reflect.TypeOf(table[k].prototype)] = k
		byName[table[k].name] = k
	}
}

// String returns the go/ast type name of k.
func (k Kind) String() string {
	if k >= numKinds {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return table[k].name
}

// Valid reports whether k names a node type.
func (k Kind) Valid() bool {
	return k > Invalid && k < numKinds
}

// Prototype returns a typed nil node of kind k, suitable as a type filter
// for inspector.Inspector.
func (k Kind) Prototype() ast.Node {
	if !k.Valid() {
		return nil
	}
	return table[k].prototype
}

// Of returns the kind of n, or Invalid for nil and foreign node types.
func Of(n ast.Node) Kind {
	if n == nil {
		return Invalid
	}
	return byType[reflect.TypeOf(n)]
}

// For returns the kind of the static node type N.
func For[N ast.Node]() Kind {
	return byType[reflect.TypeOf((*N)(nil)).Elem()]
}

// Parse looks a kind up by its go/ast type name, with or without the
// "ast." or "*ast." prefix.
func Parse(name string) (Kind, error) {
	for _, prefix := range []string{"*ast.", "ast."} {
		if len(name) > len(prefix) && name[:len(prefix)] == prefix {
			name = name[len(prefix):]
			break
		}
	}
	if k, ok := byName[name]; ok {
		return k, nil
	}
	return Invalid, fmt.Errorf("unknown node kind %q", name)
}

// All returns every valid kind in declaration order.
func All() []Kind {
	kinds := make([]Kind, 0, numKinds-1)
	for k := Kind(1); k < numKinds; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}
