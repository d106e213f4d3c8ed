// errors.go — user-facing error types and caret-snippet rendering.
//
// Lexer, parser, and runtime failures carry 1-based line/column coordinates.
// WrapErrorWithName turns them into Python-style snippets with a caret under
// the offending column:
//
//	PARSE ERROR in examples/coin_change.ss at 3:12: unexpected token ')'
//
//	   2 | let x = (1 + 2
//	   3 |              )
//	     |            ^
//	   4 | end
//
// Other error kinds pass through unchanged.
package stepscript

import (
	"fmt"
	"strings"
)

// LexError is a tokenization failure.
type LexError struct {
	Line int
	Col  int
	Msg  string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("LEXICAL ERROR at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// ParseError is a syntax failure.
type ParseError struct {
	Line int
	Col  int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("PARSE ERROR at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// RuntimeError is an execution failure raised by script code (division by
// zero, unknown name, a `fail(...)` call, ...). Fn names the function whose
// frame raised it, when known.
type RuntimeError struct {
	Msg  string
	Line int
	Col  int
	Fn   string
}

func (e *RuntimeError) Error() string {
	if e.Fn != "" {
		return fmt.Sprintf("RUNTIME ERROR in %s at %d:%d: %s", e.Fn, e.Line, e.Col, e.Msg)
	}
	return fmt.Sprintf("RUNTIME ERROR at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// WrapErrorWithSource is WrapErrorWithName without a source name.
func WrapErrorWithSource(err error, src string) error {
	return WrapErrorWithName(err, "", src)
}

// WrapErrorWithName returns an error whose message is a caret-annotated
// snippet of src when err is a lex/parse/runtime error; any other error is
// returned unchanged.
func WrapErrorWithName(err error, srcName, src string) error {
	switch e := err.(type) {
	case *LexError:
		return fmt.Errorf("%s", caretSnippet(src, "LEXICAL ERROR", srcName, e.Line, e.Col, e.Msg))
	case *ParseError:
		return fmt.Errorf("%s", caretSnippet(src, "PARSE ERROR", srcName, e.Line, e.Col, e.Msg))
	case *RuntimeError:
		return fmt.Errorf("%s", caretSnippet(src, "RUNTIME ERROR", srcName, e.Line, e.Col, e.Msg))
	default:
		return err
	}
}

// caretSnippet builds the snippet with one line of context on each side.
// Coordinates are 1-based and clamped to the source bounds.
func caretSnippet(src, header, name string, line, col int, msg string) string {
	lines := strings.Split(src, "\n")
	if len(lines) == 0 {
		lines = []string{""}
	}
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	if col < 1 {
		col = 1
	}

	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "%s in %s at %d:%d: %s\n\n", header, name, line, col, msg)
	} else {
		fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	}
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
