package stepscript

import "testing"

// --- helpers ---------------------------------------------------------------

func mustParse(t *testing.T, src string) []Stmt {
	t.Helper()
	stmts, err := ParseProgram(src)
	if err != nil {
		t.Fatalf("parse error for %q: %v", src, err)
	}
	return stmts
}

func mustParseExpr(t *testing.T, src string) Expr {
	t.Helper()
	e, err := ParseExpression(src)
	if err != nil {
		t.Fatalf("parse error for %q: %v", src, err)
	}
	return e
}

func parseErr(t *testing.T, src string) *ParseError {
	t.Helper()
	_, err := ParseProgram(src)
	if err == nil {
		t.Fatalf("want parse error for %q", src)
	}
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("want *ParseError, got %T: %v", err, err)
	}
	return pe
}

// --- tests -----------------------------------------------------------------

func TestParseLet(t *testing.T) {
	stmts := mustParse(t, "let x = 1 + 2")
	if len(stmts) != 1 {
		t.Fatalf("want 1 stmt, got %d", len(stmts))
	}
	ls, ok := stmts[0].(*LetStmt)
	if !ok {
		t.Fatalf("want *LetStmt, got %T", stmts[0])
	}
	if ls.Name != "x" {
		t.Fatalf("want name x, got %q", ls.Name)
	}
	if _, ok := ls.Value.(*BinaryExpr); !ok {
		t.Fatalf("want binary value, got %T", ls.Value)
	}
}

func TestParseFun(t *testing.T) {
	stmts := mustParse(t, "fun add(a, b)\n  return a + b\nend")
	fs, ok := stmts[0].(*FunStmt)
	if !ok {
		t.Fatalf("want *FunStmt, got %T", stmts[0])
	}
	if fs.Name != "add" || len(fs.Params) != 2 || fs.Variadic != "" {
		t.Fatalf("bad signature: %+v", fs)
	}
	if len(fs.Body) != 1 {
		t.Fatalf("want 1 body stmt, got %d", len(fs.Body))
	}
	rs := fs.Body[0].(*ReturnStmt)
	if rs.Value == nil {
		t.Fatal("return value lost")
	}
}

func TestParseVariadicFun(t *testing.T) {
	stmts := mustParse(t, "fun f(a, ...rest)\nend")
	fs := stmts[0].(*FunStmt)
	if len(fs.Params) != 1 || fs.Variadic != "rest" {
		t.Fatalf("bad variadic signature: %+v", fs)
	}
}

func TestParseReturnValueSameLineOnly(t *testing.T) {
	// a value on the next line belongs to the next statement
	stmts := mustParse(t, "fun f()\n  return\n  1\nend")
	fs := stmts[0].(*FunStmt)
	if len(fs.Body) != 2 {
		t.Fatalf("want 2 body stmts, got %d", len(fs.Body))
	}
	if fs.Body[0].(*ReturnStmt).Value != nil {
		t.Fatal("bare return picked up next-line expression")
	}
}

func TestParseIfElifElse(t *testing.T) {
	src := "if a then\n  let x = 1\nelif b then\n  let x = 2\nelse\n  let x = 3\nend"
	stmts := mustParse(t, src)
	is := stmts[0].(*IfStmt)
	if len(is.Clauses) != 2 || len(is.Else) != 1 {
		t.Fatalf("bad clause split: %d clauses, %d else", len(is.Clauses), len(is.Else))
	}
}

func TestParseWhileAndFor(t *testing.T) {
	stmts := mustParse(t, "while x < 3 do\n  x = x + 1\nend\nfor v in xs do\n  print(v)\nend")
	if _, ok := stmts[0].(*WhileStmt); !ok {
		t.Fatalf("want *WhileStmt, got %T", stmts[0])
	}
	fs, ok := stmts[1].(*ForStmt)
	if !ok {
		t.Fatalf("want *ForStmt, got %T", stmts[1])
	}
	if fs.Var != "v" {
		t.Fatalf("want loop var v, got %q", fs.Var)
	}
}

func TestParseAssignTargets(t *testing.T) {
	stmts := mustParse(t, "x = 1\nxs[0] = 2\nm.key = 3")
	for i, st := range stmts {
		if _, ok := st.(*AssignStmt); !ok {
			t.Fatalf("stmt %d: want *AssignStmt, got %T", i, st)
		}
	}

	pe := parseErr(t, "1 + 2 = 3")
	if pe.Msg != "left side of '=' is not assignable" {
		t.Fatalf("unexpected message: %q", pe.Msg)
	}
}

func TestParsePrecedence(t *testing.T) {
	e := mustParseExpr(t, "1 + 2 * 3")
	be := e.(*BinaryExpr)
	if be.Op != "+" {
		t.Fatalf("want + at root, got %q", be.Op)
	}
	if inner := be.R.(*BinaryExpr); inner.Op != "*" {
		t.Fatalf("want * on right, got %q", inner.Op)
	}

	e = mustParseExpr(t, "not a == b")
	ue := e.(*UnaryExpr)
	if ue.Op != "not" {
		t.Fatalf("want not at root, got %q", ue.Op)
	}
	if _, ok := ue.X.(*BinaryExpr); !ok {
		t.Fatal("comparison should bind tighter than not")
	}
}

func TestParsePostfixChain(t *testing.T) {
	e := mustParseExpr(t, "grid[0][1]")
	outer := e.(*IndexExpr)
	if _, ok := outer.X.(*IndexExpr); !ok {
		t.Fatalf("want chained index, got %T", outer.X)
	}

	e = mustParseExpr(t, "m.a.b")
	g := e.(*GetExpr)
	if g.Name != "b" {
		t.Fatalf("want outer property b, got %q", g.Name)
	}
}

func TestParseCallArgs(t *testing.T) {
	e := mustParseExpr(t, "f(1, \"two\", [3])")
	c := e.(*CallExpr)
	if len(c.Args) != 3 {
		t.Fatalf("want 3 args, got %d", len(c.Args))
	}
}

func TestParseMapLiteral(t *testing.T) {
	e := mustParseExpr(t, `{a: 1, "b c": 2}`)
	m := e.(*MapLit)
	if len(m.Keys) != 2 || m.Keys[0] != "a" || m.Keys[1] != "b c" {
		t.Fatalf("bad keys: %v", m.Keys)
	}
}

func TestParseMissingEnd(t *testing.T) {
	pe := parseErr(t, "fun f()\n  let x = 1\n")
	if pe.Msg != "unexpected end of input (missing 'end'?)" {
		t.Fatalf("unexpected message: %q", pe.Msg)
	}
}

func TestParseStatementPositions(t *testing.T) {
	stmts := mustParse(t, "let a = 1\nlet b = 2")
	if stmts[0].Pos().Line != 1 || stmts[1].Pos().Line != 2 {
		t.Fatalf("bad lines: %d, %d", stmts[0].Pos().Line, stmts[1].Pos().Line)
	}
}
