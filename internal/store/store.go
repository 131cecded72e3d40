// Package store dumps a compilation unit's IR into a SQLite database so
// external tooling can query CFGs and the call graph without re-running the
// front end.
package store

import (
	"fmt"
	"os"
	"sort"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/xab-mack/tactscan/internal/ir"
)

const schema = `
CREATE TABLE cfgs (
    id        INTEGER PRIMARY KEY,
    unit      TEXT NOT NULL,
    contract  TEXT NOT NULL DEFAULT '',
    name      TEXT NOT NULL,
    origin    TEXT NOT NULL
);
CREATE TABLE nodes (
    cfg_id    INTEGER NOT NULL REFERENCES cfgs(id),
    idx       INTEGER NOT NULL,
    kind      TEXT NOT NULL,
    line      INTEGER NOT NULL,
    col       INTEGER NOT NULL,
    PRIMARY KEY (cfg_id, idx)
);
CREATE TABLE edges (
    cfg_id    INTEGER NOT NULL REFERENCES cfgs(id),
    src       INTEGER NOT NULL,
    dst       INTEGER NOT NULL
);
CREATE TABLE calls (
    unit      TEXT NOT NULL,
    caller    TEXT NOT NULL,
    node_idx  INTEGER NOT NULL,
    callee    TEXT NOT NULL,
    external  INTEGER NOT NULL,
    file      TEXT NOT NULL,
    line      INTEGER NOT NULL
);
`

// WriteUnit writes the IR of one unit to a fresh database at path.
func WriteUnit(path string, unit *ir.CompilationUnit) error {
	_ = os.Remove(path)

	conn, err := sqlite.OpenConn(path, sqlite.OpenCreate, sqlite.OpenReadWrite)
	if err != nil {
		return fmt.Errorf("store: open sqlite: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		return fmt.Errorf("store: create schema: %w", err)
	}

	endFn, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	werr := writeAll(conn, unit)
	endFn(&werr)
	if werr != nil {
		return fmt.Errorf("store: %w", werr)
	}
	return nil
}

func writeAll(conn *sqlite.Conn, unit *ir.CompilationUnit) error {
	id := 0
	for _, name := range sortedKeys(unit.Functions()) {
		id++
		if err := writeCFG(conn, id, unit.Name, "", unit.Functions()[name]); err != nil {
			return err
		}
	}
	for _, cname := range sortedKeys(unit.Contracts()) {
		c := unit.Contracts()[cname]
		for _, mname := range sortedKeys(c.Methods) {
			id++
			if err := writeCFG(conn, id, unit.Name, cname, c.Methods[mname]); err != nil {
				return err
			}
		}
	}
	return writeCalls(conn, unit)
}

func writeCFG(conn *sqlite.Conn, id int, unitName, contract string, g *ir.CFG) error {
	err := sqlitex.Execute(conn,
		`INSERT INTO cfgs (id, unit, contract, name, origin) VALUES (?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{Args: []any{id, unitName, contract, g.Name, string(g.Origin)}})
	if err != nil {
		return err
	}
	for _, n := range g.Nodes() {
		var line, col int
		if n.Stmt != nil {
			p := n.Stmt.StmtPos()
			line, col = p.Line, p.Col
		}
		err := sqlitex.Execute(conn,
			`INSERT INTO nodes (cfg_id, idx, kind, line, col) VALUES (?, ?, ?, ?, ?)`,
			&sqlitex.ExecOptions{Args: []any{id, int(n.Idx), n.Kind.String(), line, col}})
		if err != nil {
			return err
		}
	}
	for _, e := range g.Edges() {
		err := sqlitex.Execute(conn,
			`INSERT INTO edges (cfg_id, src, dst) VALUES (?, ?, ?)`,
			&sqlitex.ExecOptions{Args: []any{id, int(e.From), int(e.To)}})
		if err != nil {
			return err
		}
	}
	return nil
}

func writeCalls(conn *sqlite.Conn, unit *ir.CompilationUnit) error {
	cg := unit.CallGraph()
	for _, sym := range cg.Symbols() {
		for _, site := range cg.CalleesOf(sym) {
			external := 0
			if cg.IsExternal(site.Callee) {
				external = 1
			}
			err := sqlitex.Execute(conn,
				`INSERT INTO calls (unit, caller, node_idx, callee, external, file, line) VALUES (?, ?, ?, ?, ?, ?, ?)`,
				&sqlitex.ExecOptions{Args: []any{
					unit.Name, site.Caller.String(), int(site.Node), site.Callee.String(),
					external, site.Pos.File, site.Pos.Line,
				}})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
