package ast

import (
	"encoding/json"
	"fmt"

	"github.com/xab-mack/tactscan/internal/model"
)

// DecodeFile decodes the front end's JSON export of one parsed file. Every
// statement and expression carries a "kind" discriminator; an unknown kind
// is a front-end/engine version mismatch and fails decoding.
func DecodeFile(data []byte) (*File, error) {
	var dto fileDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("ast: decode file: %w", err)
	}
	return dto.convert()
}

type fileDTO struct {
	Path      string        `json:"path"`
	Origin    model.Origin  `json:"origin"`
	Imports   []Import      `json:"imports"`
	Constants []constDTO    `json:"constants"`
	Functions []functionDTO `json:"functions"`
	Contracts []contractDTO `json:"contracts"`
}

type constDTO struct {
	Name string         `json:"name"`
	Init *exprDTO       `json:"init"`
	Pos  model.Position `json:"pos"`
}

type contractDTO struct {
	Name    string         `json:"name"`
	Methods []functionDTO  `json:"methods"`
	Pos     model.Position `json:"pos"`
}

type functionDTO struct {
	Name   string         `json:"name"`
	Params []Param        `json:"params"`
	Body   []stmtDTO      `json:"body"`
	Pos    model.Position `json:"pos"`
}

type stmtDTO struct {
	Kind  string         `json:"kind"`
	Name  string         `json:"name,omitempty"`
	Init  *exprDTO       `json:"init,omitempty"`
	Value *exprDTO       `json:"value,omitempty"`
	X     *exprDTO       `json:"x,omitempty"`
	Cond  *exprDTO       `json:"cond,omitempty"`
	Then  []stmtDTO      `json:"then,omitempty"`
	Else  []stmtDTO      `json:"else,omitempty"`
	Body  []stmtDTO      `json:"body,omitempty"`
	Pos   model.Position `json:"pos"`
}

type exprDTO struct {
	Kind     string         `json:"kind"`
	Name     string         `json:"name,omitempty"`
	Value    int64          `json:"value,omitempty"`
	Contract string         `json:"contract,omitempty"`
	Callee   string         `json:"callee,omitempty"`
	Args     []exprDTO      `json:"args,omitempty"`
	Op       string         `json:"op,omitempty"`
	L        *exprDTO       `json:"l,omitempty"`
	R        *exprDTO       `json:"r,omitempty"`
	Pos      model.Position `json:"pos"`
}

func (d *fileDTO) convert() (*File, error) {
	f := &File{Path: d.Path, Origin: d.Origin, Imports: d.Imports}
	if f.Origin == "" {
		f.Origin = model.OriginUser
	}
	for _, c := range d.Constants {
		init, err := convertExpr(c.Init, d.Path)
		if err != nil {
			return nil, err
		}
		f.Constants = append(f.Constants, &Constant{Name: c.Name, Init: init, Pos: c.Pos})
	}
	for _, fn := range d.Functions {
		conv, err := convertFunction(fn, d.Path)
		if err != nil {
			return nil, err
		}
		f.Functions = append(f.Functions, conv)
	}
	for _, c := range d.Contracts {
		contract := &Contract{Name: c.Name, Pos: c.Pos}
		for _, m := range c.Methods {
			conv, err := convertFunction(m, d.Path)
			if err != nil {
				return nil, err
			}
			contract.Methods = append(contract.Methods, conv)
		}
		f.Contracts = append(f.Contracts, contract)
	}
	return f, nil
}

func convertFunction(d functionDTO, path string) (*Function, error) {
	body, err := convertStmts(d.Body, path)
	if err != nil {
		return nil, err
	}
	return &Function{Name: d.Name, Params: d.Params, Body: body, Pos: d.Pos}, nil
}

func convertStmts(dtos []stmtDTO, path string) ([]Stmt, error) {
	var out []Stmt
	for _, d := range dtos {
		s, err := convertStmt(d, path)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func convertStmt(d stmtDTO, path string) (Stmt, error) {
	switch d.Kind {
	case "let":
		init, err := convertExpr(d.Init, path)
		if err != nil {
			return nil, err
		}
		return &LetStmt{Name: d.Name, Init: init, Pos: d.Pos}, nil
	case "assign":
		v, err := convertExpr(d.Value, path)
		if err != nil {
			return nil, err
		}
		return &AssignStmt{Name: d.Name, Value: v, Pos: d.Pos}, nil
	case "expr":
		x, err := convertExpr(d.X, path)
		if err != nil {
			return nil, err
		}
		return &ExprStmt{X: x, Pos: d.Pos}, nil
	case "if":
		cond, err := convertExpr(d.Cond, path)
		if err != nil {
			return nil, err
		}
		then, err := convertStmts(d.Then, path)
		if err != nil {
			return nil, err
		}
		els, err := convertStmts(d.Else, path)
		if err != nil {
			return nil, err
		}
		return &IfStmt{Cond: cond, Then: then, Else: els, Pos: d.Pos}, nil
	case "while":
		cond, err := convertExpr(d.Cond, path)
		if err != nil {
			return nil, err
		}
		body, err := convertStmts(d.Body, path)
		if err != nil {
			return nil, err
		}
		return &WhileStmt{Cond: cond, Body: body, Pos: d.Pos}, nil
	case "return":
		v, err := convertExpr(d.Value, path)
		if err != nil {
			return nil, err
		}
		return &ReturnStmt{Value: v, Pos: d.Pos}, nil
	default:
		return nil, fmt.Errorf("ast: %s: unknown statement kind %q", path, d.Kind)
	}
}

func convertExpr(d *exprDTO, path string) (Expr, error) {
	if d == nil {
		return nil, nil
	}
	switch d.Kind {
	case "ident":
		return &Ident{Name: d.Name, Pos: d.Pos}, nil
	case "int":
		return &IntLit{Value: d.Value, Pos: d.Pos}, nil
	case "call":
		var args []Expr
		for _, a := range d.Args {
			conv, err := convertExpr(&a, path)
			if err != nil {
				return nil, err
			}
			args = append(args, conv)
		}
		return &CallExpr{Contract: d.Contract, Callee: d.Callee, Args: args, Pos: d.Pos}, nil
	case "binary":
		l, err := convertExpr(d.L, path)
		if err != nil {
			return nil, err
		}
		r, err := convertExpr(d.R, path)
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{Op: d.Op, L: l, R: r, Pos: d.Pos}, nil
	default:
		return nil, fmt.Errorf("ast: %s: unknown expression kind %q", path, d.Kind)
	}
}
