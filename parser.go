// parser.go — Pratt parser for stepscript.
//
// Consumes the whitespace-sensitive token stream from lexer.go and builds the
// typed AST from ast.go. Only CALLPAREN participates in calls and only
// INDEXBRACKET in indexing, so statements end naturally at line breaks
// without newline tokens.
//
// Grammar sketch:
//
//	program   := stmt*
//	stmt      := "let" ID "=" expr
//	           | "fun" ID "(" params ")" block "end"
//	           | "if" expr "then" block ("elif" expr "then" block)* ("else" block)? "end"
//	           | "while" expr "do" block "end"
//	           | "for" ID "in" expr "do" block "end"
//	           | "return" expr?          # value must start on the same line
//	           | "break" | "continue"
//	           | expr ("=" expr)?        # assignment to ident/index/property
//	params    := (ID ("," ID)*)? ("," "..." ID)? | "..." ID
//	expr      := Pratt expression over or/and/not, comparisons, + - * / %,
//	             unary -, calls, indexing, property access
package stepscript

import "fmt"

var binopLexeme = map[TokenType]string{
	OR:        "or",
	AND:       "and",
	EQ:        "==",
	NEQ:       "!=",
	LESS:      "<",
	LESSEQ:    "<=",
	GREATER:   ">",
	GREATEREQ: ">=",
	PLUS:      "+",
	MINUS:     "-",
	STAR:      "*",
	SLASH:     "/",
	PERCENT:   "%",
}

// Binding powers, loosest to tightest.
const (
	precNone = iota
	precOr
	precAnd
	precNot
	precCmp
	precAdd
	precMul
	precUnary
)

func infixPrec(t TokenType) int {
	switch t {
	case OR:
		return precOr
	case AND:
		return precAnd
	case EQ, NEQ, LESS, LESSEQ, GREATER, GREATEREQ:
		return precCmp
	case PLUS, MINUS:
		return precAdd
	case STAR, SLASH, PERCENT:
		return precMul
	default:
		return precNone
	}
}

// Parser turns tokens into statements. Errors surface as *ParseError.
type Parser struct {
	toks []Token
	pos  int
}

// ParseProgram lexes and parses a whole source file.
func ParseProgram(src string) (stmts []Stmt, err error) {
	toks, lerr := Lex(src)
	if lerr != nil {
		return nil, lerr
	}
	p := &Parser{toks: toks}
	defer func() {
		if r := recover(); r != nil {
			if pe, ok := r.(*ParseError); ok {
				stmts, err = nil, pe
				return
			}
			panic(r)
		}
	}()
	stmts = p.parseBlock(EOF)
	p.expect(EOF, "unexpected trailing input")
	return stmts, nil
}

// ParseExpression parses a single expression (used for CLI argument
// literals); trailing tokens are an error.
func ParseExpression(src string) (e Expr, err error) {
	toks, lerr := Lex(src)
	if lerr != nil {
		return nil, lerr
	}
	p := &Parser{toks: toks}
	defer func() {
		if r := recover(); r != nil {
			if pe, ok := r.(*ParseError); ok {
				e, err = nil, pe
				return
			}
			panic(r)
		}
	}()
	e = p.parseExpr(precNone)
	p.expect(EOF, "unexpected trailing input")
	return e, nil
}

func (p *Parser) peek() Token     { return p.toks[p.pos] }
func (p *Parser) previous() Token { return p.toks[p.pos-1] }

func (p *Parser) advance() Token {
	t := p.toks[p.pos]
	if t.Type != EOF {
		p.pos++
	}
	return t
}

func (p *Parser) check(tt TokenType) bool { return p.peek().Type == tt }

func (p *Parser) match(tt TokenType) bool {
	if p.check(tt) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) fail(tok Token, format string, args ...interface{}) {
	panic(&ParseError{Line: tok.Line, Col: tok.Col, Msg: fmt.Sprintf(format, args...)})
}

func (p *Parser) expect(tt TokenType, msg string) Token {
	if !p.check(tt) {
		p.fail(p.peek(), "%s (got %q)", msg, p.peek().Lexeme)
	}
	return p.advance()
}

func tokPos(t Token) Pos { return Pos{Line: t.Line, Col: t.Col} }

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

func in(tt TokenType, set []TokenType) bool {
	for _, t := range set {
		if t == tt {
			return true
		}
	}
	return false
}

// parseBlock parses statements up to (not consuming) any terminator.
func (p *Parser) parseBlock(terminators ...TokenType) []Stmt {
	var stmts []Stmt
	for !in(p.peek().Type, terminators) {
		if p.check(EOF) {
			p.fail(p.peek(), "unexpected end of input (missing 'end'?)")
		}
		stmts = append(stmts, p.parseStmt())
	}
	return stmts
}

func (p *Parser) parseStmt() Stmt {
	tok := p.peek()
	switch tok.Type {
	case LET:
		p.advance()
		name := p.expect(ID, "expected variable name after 'let'")
		p.expect(ASSIGN, "expected '=' in let binding")
		return &LetStmt{At: tokPos(tok), Name: name.Lexeme, Value: p.parseExpr(precNone)}

	case FUNCTION:
		return p.parseFunStmt()

	case IF:
		return p.parseIfStmt()

	case WHILE:
		p.advance()
		cond := p.parseExpr(precNone)
		p.expect(DO, "expected 'do' after while condition")
		body := p.parseBlock(END)
		p.expect(END, "expected 'end' to close while")
		return &WhileStmt{At: tokPos(tok), Cond: cond, Body: body}

	case FOR:
		p.advance()
		name := p.expect(ID, "expected loop variable after 'for'")
		p.expect(IN, "expected 'in' in for loop")
		iter := p.parseExpr(precNone)
		p.expect(DO, "expected 'do' after for iterable")
		body := p.parseBlock(END)
		p.expect(END, "expected 'end' to close for")
		return &ForStmt{At: tokPos(tok), Var: name.Lexeme, Iter: iter, Body: body}

	case RETURN:
		p.advance()
		st := &ReturnStmt{At: tokPos(tok)}
		if p.returnHasValue(tok) {
			st.Value = p.parseExpr(precNone)
		}
		return st

	case BREAK:
		p.advance()
		return &BreakStmt{At: tokPos(tok)}

	case CONTINUE:
		p.advance()
		return &ContinueStmt{At: tokPos(tok)}

	default:
		x := p.parseExpr(precNone)
		if p.check(ASSIGN) {
			eq := p.advance()
			switch x.(type) {
			case *Ident, *IndexExpr, *GetExpr:
			default:
				p.fail(eq, "left side of '=' is not assignable")
			}
			return &AssignStmt{At: x.Pos(), Target: x, Value: p.parseExpr(precNone)}
		}
		return &ExprStmt{At: x.Pos(), X: x}
	}
}

// returnHasValue: a return value must start on the same line as the keyword
// and must actually start an expression.
func (p *Parser) returnHasValue(ret Token) bool {
	next := p.peek()
	if next.Line != ret.Line {
		return false
	}
	switch next.Type {
	case ID, STRING, INTEGER, NUMBER, BOOLEAN, NULL, LPAREN, LBRACKET, LBRACE, MINUS, NOT:
		return true
	default:
		return false
	}
}

func (p *Parser) parseFunStmt() Stmt {
	tok := p.advance() // fun
	name := p.expect(ID, "expected function name after 'fun'")
	if !p.match(CALLPAREN) && !p.match(LPAREN) {
		p.fail(p.peek(), "expected '(' after function name")
	}
	var params []string
	variadic := ""
	for !p.check(RPAREN) {
		if p.match(ELLIPSIS) {
			v := p.expect(ID, "expected name after '...'")
			variadic = v.Lexeme
			break
		}
		id := p.expect(ID, "expected parameter name")
		params = append(params, id.Lexeme)
		if !p.match(COMMA) {
			break
		}
	}
	p.expect(RPAREN, "expected ')' after parameters")
	body := p.parseBlock(END)
	p.expect(END, "expected 'end' to close function")
	return &FunStmt{At: tokPos(tok), Name: name.Lexeme, Params: params, Variadic: variadic, Body: body}
}

func (p *Parser) parseIfStmt() Stmt {
	tok := p.advance() // if
	st := &IfStmt{At: tokPos(tok)}
	cond := p.parseExpr(precNone)
	p.expect(THEN, "expected 'then' after if condition")
	body := p.parseBlock(ELIF, ELSE, END)
	st.Clauses = append(st.Clauses, IfClause{Cond: cond, Body: body})
	for p.match(ELIF) {
		c := p.parseExpr(precNone)
		p.expect(THEN, "expected 'then' after elif condition")
		b := p.parseBlock(ELIF, ELSE, END)
		st.Clauses = append(st.Clauses, IfClause{Cond: c, Body: b})
	}
	if p.match(ELSE) {
		st.Else = p.parseBlock(END)
	}
	p.expect(END, "expected 'end' to close if")
	return st
}

// ---------------------------------------------------------------------------
// Expressions (Pratt)
// ---------------------------------------------------------------------------

func (p *Parser) parseExpr(minPrec int) Expr {
	left := p.parsePrefix()
	for {
		prec := infixPrec(p.peek().Type)
		if prec == precNone || prec <= minPrec {
			return left
		}
		op := p.advance()
		right := p.parseExpr(prec)
		left = &BinaryExpr{At: left.Pos(), Op: binopLexeme[op.Type], L: left, R: right}
	}
}

func (p *Parser) parsePrefix() Expr {
	tok := p.peek()
	switch tok.Type {
	case MINUS:
		p.advance()
		// unary minus binds tighter than * and /
		x := p.parsePostfix(p.parsePrimaryAfterUnary())
		return &UnaryExpr{At: tokPos(tok), Op: "-", X: x}
	case NOT:
		p.advance()
		x := p.parseExpr(precNot)
		return &UnaryExpr{At: tokPos(tok), Op: "not", X: x}
	default:
		return p.parsePostfix(p.parsePrimary())
	}
}

// parsePrimaryAfterUnary exists so `-x[1]` negates the indexed element.
func (p *Parser) parsePrimaryAfterUnary() Expr { return p.parsePrimary() }

func (p *Parser) parsePrimary() Expr {
	tok := p.advance()
	switch tok.Type {
	case INTEGER:
		return &IntLit{At: tokPos(tok), V: tok.Literal.(int64)}
	case NUMBER:
		return &NumLit{At: tokPos(tok), V: tok.Literal.(float64)}
	case STRING:
		return &StrLit{At: tokPos(tok), V: tok.Literal.(string)}
	case BOOLEAN:
		return &BoolLit{At: tokPos(tok), V: tok.Literal.(bool)}
	case NULL:
		return &NullLit{At: tokPos(tok)}
	case ID:
		return &Ident{At: tokPos(tok), Name: tok.Lexeme}
	case LPAREN:
		x := p.parseExpr(precNone)
		p.expect(RPAREN, "expected ')' to close group")
		return x
	case LBRACKET:
		return p.parseArray(tok)
	case LBRACE:
		return p.parseMap(tok)
	default:
		p.fail(tok, "unexpected token %q", tok.Lexeme)
		return nil
	}
}

func (p *Parser) parseArray(open Token) Expr {
	arr := &ArrayLit{At: tokPos(open)}
	for !p.check(RBRACKET) {
		arr.Items = append(arr.Items, p.parseExpr(precNone))
		if !p.match(COMMA) {
			break
		}
	}
	p.expect(RBRACKET, "expected ']' to close array")
	return arr
}

func (p *Parser) parseMap(open Token) Expr {
	m := &MapLit{At: tokPos(open)}
	for !p.check(RBRACE) {
		var key string
		switch {
		case p.check(ID):
			key = p.advance().Lexeme
		case p.check(STRING):
			key = p.advance().Literal.(string)
		default:
			p.fail(p.peek(), "expected map key (identifier or string)")
		}
		p.expect(COLON, "expected ':' after map key")
		m.Keys = append(m.Keys, key)
		m.Values = append(m.Values, p.parseExpr(precNone))
		if !p.match(COMMA) {
			break
		}
	}
	p.expect(RBRACE, "expected '}' to close map")
	return m
}

func (p *Parser) parsePostfix(x Expr) Expr {
	for {
		switch p.peek().Type {
		case CALLPAREN:
			p.advance()
			call := &CallExpr{At: x.Pos(), Callee: x}
			for !p.check(RPAREN) {
				call.Args = append(call.Args, p.parseExpr(precNone))
				if !p.match(COMMA) {
					break
				}
			}
			p.expect(RPAREN, "expected ')' to close call")
			x = call
		case INDEXBRACKET:
			p.advance()
			idx := p.parseExpr(precNone)
			p.expect(RBRACKET, "expected ']' to close index")
			x = &IndexExpr{At: x.Pos(), X: x, Index: idx}
		case PERIOD:
			p.advance()
			name := p.expect(ID, "expected property name after '.'")
			x = &GetExpr{At: x.Pos(), X: x, Name: name.Lexeme}
		default:
			return x
		}
	}
}
