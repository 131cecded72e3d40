package ast

// FoldStatements folds f over stmts and their nested statements, visiting
// each statement before its children. descend is consulted after f; when it
// returns false the children of that statement are skipped. A nil descend
// visits everything.
func FoldStatements[A any](stmts []Stmt, acc A, f func(A, Stmt) A, descend func(Stmt) bool) A {
	for _, s := range stmts {
		acc = f(acc, s)
		if descend != nil && !descend(s) {
			continue
		}
		switch n := s.(type) {
		case *IfStmt:
			acc = FoldStatements(n.Then, acc, f, descend)
			acc = FoldStatements(n.Else, acc, f, descend)
		case *WhileStmt:
			acc = FoldStatements(n.Body, acc, f, descend)
		}
	}
	return acc
}

// FoldExpressions folds f over e and its subexpressions, visiting each
// expression before its children. descend is consulted after f; when it
// returns false the children of that expression are skipped.
func FoldExpressions[A any](e Expr, acc A, f func(A, Expr) A, descend func(Expr) bool) A {
	if e == nil {
		return acc
	}
	acc = f(acc, e)
	if descend != nil && !descend(e) {
		return acc
	}
	switch n := e.(type) {
	case *CallExpr:
		for _, a := range n.Args {
			acc = FoldExpressions(a, acc, f, descend)
		}
	case *BinaryExpr:
		acc = FoldExpressions(n.L, acc, f, descend)
		acc = FoldExpressions(n.R, acc, f, descend)
	}
	return acc
}

// FoldFunctionExprs folds f over every expression appearing anywhere in the
// function body, including expressions nested inside branch and loop bodies.
func FoldFunctionExprs[A any](fn *Function, acc A, f func(A, Expr) A) A {
	return FoldStatements(fn.Body, acc, func(a A, s Stmt) A {
		for _, e := range StmtExprs(s) {
			a = FoldExpressions(e, a, f, nil)
		}
		return a
	}, nil)
}
