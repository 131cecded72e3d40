// Package ast holds the typed AST shape the engine consumes. The front-end
// parser/type-checker that produces these nodes is an external collaborator;
// the engine never re-reads source text.
package ast

import "github.com/xab-mack/tactscan/internal/model"

// File is one parsed Tact source file with its top-level declarations.
type File struct {
	Path      string
	Origin    model.Origin
	Imports   []Import
	Constants []*Constant
	Functions []*Function
	Contracts []*Contract
}

type Import struct {
	Path string
	Pos  model.Position
}

// Constant is a module-level constant declaration.
type Constant struct {
	Name string
	Init Expr
	Pos  model.Position
}

type Contract struct {
	Name    string
	Methods []*Function
	Pos     model.Position
}

type Function struct {
	Name   string
	Params []Param
	Body   []Stmt
	Pos    model.Position
}

type Param struct {
	Name string
	Type string
	Pos  model.Position
}

// Stmt is a statement node. The set of kinds is closed; consumers dispatch
// with exhaustive type switches.
type Stmt interface {
	StmtPos() model.Position
	stmtNode()
}

type LetStmt struct {
	Name string
	Init Expr
	Pos  model.Position
}

type AssignStmt struct {
	Name  string
	Value Expr
	Pos   model.Position
}

type ExprStmt struct {
	X   Expr
	Pos model.Position
}

type IfStmt struct {
	Cond Expr
	Then []Stmt
	Else []Stmt
	Pos  model.Position
}

type WhileStmt struct {
	Cond Expr
	Body []Stmt
	Pos  model.Position
}

type ReturnStmt struct {
	Value Expr // nil for bare return
	Pos   model.Position
}

func (s *LetStmt) StmtPos() model.Position    { return s.Pos }
func (s *AssignStmt) StmtPos() model.Position { return s.Pos }
func (s *ExprStmt) StmtPos() model.Position   { return s.Pos }
func (s *IfStmt) StmtPos() model.Position     { return s.Pos }
func (s *WhileStmt) StmtPos() model.Position  { return s.Pos }
func (s *ReturnStmt) StmtPos() model.Position { return s.Pos }

func (*LetStmt) stmtNode()    {}
func (*AssignStmt) stmtNode() {}
func (*ExprStmt) stmtNode()   {}
func (*IfStmt) stmtNode()     {}
func (*WhileStmt) stmtNode()  {}
func (*ReturnStmt) stmtNode() {}

// Expr is an expression node.
type Expr interface {
	ExprPos() model.Position
	exprNode()
}

type Ident struct {
	Name string
	Pos  model.Position
}

type IntLit struct {
	Value int64
	Pos   model.Position
}

// CallExpr is a call to a free function or, when Contract is non-empty, to a
// contract method.
type CallExpr struct {
	Contract string
	Callee   string
	Args     []Expr
	Pos      model.Position
}

type BinaryExpr struct {
	Op   string
	L, R Expr
	Pos  model.Position
}

func (e *Ident) ExprPos() model.Position      { return e.Pos }
func (e *IntLit) ExprPos() model.Position     { return e.Pos }
func (e *CallExpr) ExprPos() model.Position   { return e.Pos }
func (e *BinaryExpr) ExprPos() model.Position { return e.Pos }

func (*Ident) exprNode()      {}
func (*IntLit) exprNode()     {}
func (*CallExpr) exprNode()   {}
func (*BinaryExpr) exprNode() {}

// StmtExprs returns the expressions directly held by a statement, in source
// order. It does not descend into nested statements.
func StmtExprs(s Stmt) []Expr {
	switch n := s.(type) {
	case *LetStmt:
		if n.Init != nil {
			return []Expr{n.Init}
		}
	case *AssignStmt:
		if n.Value != nil {
			return []Expr{n.Value}
		}
	case *ExprStmt:
		return []Expr{n.X}
	case *IfStmt:
		return []Expr{n.Cond}
	case *WhileStmt:
		return []Expr{n.Cond}
	case *ReturnStmt:
		if n.Value != nil {
			return []Expr{n.Value}
		}
	}
	return nil
}
