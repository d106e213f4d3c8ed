// ast.go — typed AST for the stepscript language.
//
// Every node carries its source position. The interpreter reads positions at
// execution time (the visualizer's line events depend on them), so positions
// live on the nodes themselves rather than in a sidecar index.
package stepscript

// Pos is a 1-based line / 1-based column source coordinate.
type Pos struct {
	Line int
	Col  int
}

// Node is implemented by every AST node.
type Node interface {
	Pos() Pos
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

// LetStmt introduces a new binding in the current scope: `let x = expr`.
type LetStmt struct {
	At    Pos
	Name  string
	Value Expr
}

// AssignStmt writes through an existing binding or an index/property target.
type AssignStmt struct {
	At     Pos
	Target Expr // *Ident, *IndexExpr, or *GetExpr
	Value  Expr
}

// FunStmt declares a named function: `fun name(a, b, ...rest) ... end`.
type FunStmt struct {
	At       Pos
	Name     string
	Params   []string
	Variadic string // trailing `...name` parameter, "" if absent
	Body     []Stmt
}

// IfClause is one `if`/`elif` arm.
type IfClause struct {
	Cond Expr
	Body []Stmt
}

// IfStmt is `if c then ... elif c2 then ... else ... end`.
type IfStmt struct {
	At      Pos
	Clauses []IfClause
	Else    []Stmt // nil when no else arm
}

// WhileStmt is `while cond do ... end`.
type WhileStmt struct {
	At   Pos
	Cond Expr
	Body []Stmt
}

// ForStmt is `for x in iterable do ... end`.
type ForStmt struct {
	At   Pos
	Var  string
	Iter Expr
	Body []Stmt
}

// ReturnStmt is `return` with an optional same-line value.
type ReturnStmt struct {
	At    Pos
	Value Expr // nil means `return null`
}

// BreakStmt exits the innermost loop.
type BreakStmt struct{ At Pos }

// ContinueStmt skips to the next loop iteration.
type ContinueStmt struct{ At Pos }

// ExprStmt evaluates an expression for its effect.
type ExprStmt struct {
	At Pos
	X  Expr
}

func (s *LetStmt) Pos() Pos      { return s.At }
func (s *AssignStmt) Pos() Pos   { return s.At }
func (s *FunStmt) Pos() Pos      { return s.At }
func (s *IfStmt) Pos() Pos       { return s.At }
func (s *WhileStmt) Pos() Pos    { return s.At }
func (s *ForStmt) Pos() Pos      { return s.At }
func (s *ReturnStmt) Pos() Pos   { return s.At }
func (s *BreakStmt) Pos() Pos    { return s.At }
func (s *ContinueStmt) Pos() Pos { return s.At }
func (s *ExprStmt) Pos() Pos     { return s.At }

func (*LetStmt) stmtNode()      {}
func (*AssignStmt) stmtNode()   {}
func (*FunStmt) stmtNode()      {}
func (*IfStmt) stmtNode()       {}
func (*WhileStmt) stmtNode()    {}
func (*ForStmt) stmtNode()      {}
func (*ReturnStmt) stmtNode()   {}
func (*BreakStmt) stmtNode()    {}
func (*ContinueStmt) stmtNode() {}
func (*ExprStmt) stmtNode()     {}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

type Ident struct {
	At   Pos
	Name string
}

type IntLit struct {
	At Pos
	V  int64
}

type NumLit struct {
	At Pos
	V  float64
}

type StrLit struct {
	At Pos
	V  string
}

type BoolLit struct {
	At Pos
	V  bool
}

type NullLit struct{ At Pos }

type ArrayLit struct {
	At    Pos
	Items []Expr
}

// MapLit keeps keys in source order (runtime maps preserve insertion order).
type MapLit struct {
	At     Pos
	Keys   []string
	Values []Expr
}

type UnaryExpr struct {
	At Pos
	Op string // "-" or "not"
	X  Expr
}

type BinaryExpr struct {
	At Pos
	Op string // + - * / % == != < <= > >= and or
	L  Expr
	R  Expr
}

type CallExpr struct {
	At     Pos
	Callee Expr
	Args   []Expr
}

type IndexExpr struct {
	At    Pos
	X     Expr
	Index Expr
}

// GetExpr is property access on a map: `m.key`.
type GetExpr struct {
	At   Pos
	X    Expr
	Name string
}

func (e *Ident) Pos() Pos      { return e.At }
func (e *IntLit) Pos() Pos     { return e.At }
func (e *NumLit) Pos() Pos     { return e.At }
func (e *StrLit) Pos() Pos     { return e.At }
func (e *BoolLit) Pos() Pos    { return e.At }
func (e *NullLit) Pos() Pos    { return e.At }
func (e *ArrayLit) Pos() Pos   { return e.At }
func (e *MapLit) Pos() Pos     { return e.At }
func (e *UnaryExpr) Pos() Pos  { return e.At }
func (e *BinaryExpr) Pos() Pos { return e.At }
func (e *CallExpr) Pos() Pos   { return e.At }
func (e *IndexExpr) Pos() Pos  { return e.At }
func (e *GetExpr) Pos() Pos    { return e.At }

func (*Ident) exprNode()      {}
func (*IntLit) exprNode()     {}
func (*NumLit) exprNode()     {}
func (*StrLit) exprNode()     {}
func (*BoolLit) exprNode()    {}
func (*NullLit) exprNode()    {}
func (*ArrayLit) exprNode()   {}
func (*MapLit) exprNode()     {}
func (*UnaryExpr) exprNode()  {}
func (*BinaryExpr) exprNode() {}
func (*CallExpr) exprNode()   {}
func (*IndexExpr) exprNode()  {}
func (*GetExpr) exprNode()    {}
