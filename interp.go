// interp.go — tree-walking evaluator with execution tracing.
//
// The interpreter walks the typed AST directly. Non-local control flow uses
// panic signals (returnSig, breakSig, continueSig, rtErr) that the public
// entry points recover into (Value, error) pairs; *RuntimeError is the only
// error kind that escapes.
//
// A bytecode VM would be faster, but the visualizer needs a hook point at
// every executed statement with the live frame in hand, which the walker
// gives for free.
//
// TRACE EVENTS
// ------------
// When a hook is installed via SetTraceHook, the interpreter reports:
//
//	call      — after parameter binding, before the first body statement
//	line      — before each body statement except `return`
//	return    — after the return value is evaluated (also for the implicit
//	            null return at the end of a body)
//	exception — in each frame a runtime error unwinds through, before the
//	            error continues to propagate
//
// Native builtins never produce events. The hook runs on the interpreter's
// own call stack; a panic raised inside it unwinds the script's execution,
// which is exactly what session cancellation relies on.
package stepscript

import (
	"fmt"
	"io"
	"os"
	"sort"
)

// EventKind is the moment type an instrumentation hook reports.
type EventKind int

const (
	EventCall EventKind = iota
	EventLine
	EventReturn
	EventException
)

func (k EventKind) String() string {
	switch k {
	case EventCall:
		return "call"
	case EventLine:
		return "line"
	case EventReturn:
		return "return"
	case EventException:
		return "exception"
	default:
		return "unknown"
	}
}

// Frame is the runtime record of one in-progress script function call.
// Identity is pointer identity ("is this the root frame?"). The interpreter
// mutates Line as execution proceeds, so consumers must copy anything they
// need at event time and never retain the frame past the event.
type Frame struct {
	Fn   *Fun
	Line int // current line, 1-based

	env *Env
}

// Locals returns a copy of the frame's currently bound local variables
// (parameters included). The copy is safe to keep.
func (f *Frame) Locals() map[string]Value {
	out := make(map[string]Value, len(f.env.vars))
	for k, v := range f.env.vars {
		out[k] = v
	}
	return out
}

// TraceEvent is one instrumentation event. Value is the return value for
// return events; Err is set for exception events.
type TraceEvent struct {
	Kind  EventKind
	Frame *Frame
	Value Value
	Err   *RuntimeError
}

// TraceHook receives every trace event while installed.
type TraceHook func(ev *TraceEvent)

// ---------------------------------------------------------------------------
// Panic signals (private)
// ---------------------------------------------------------------------------

type returnSig struct{ v Value }
type breakSig struct{}
type continueSig struct{}

// rtErr is the in-flight form of a runtime error; converted to *RuntimeError
// at the public surface.
type rtErr struct {
	msg  string
	line int
	col  int
}

func fail(msg string)                  { panic(rtErr{msg: msg}) }
func failf(format string, args ...any) { panic(rtErr{msg: fmt.Sprintf(format, args...)}) }
func failAt(p Pos, msg string)         { panic(rtErr{msg: msg, line: p.Line, col: p.Col}) }
func failAtf(p Pos, f string, args ...any) {
	panic(rtErr{msg: fmt.Sprintf(f, args...), line: p.Line, col: p.Col})
}

func (e rtErr) asRuntimeError(fn string) *RuntimeError {
	return &RuntimeError{Msg: e.msg, Line: e.line, Col: e.col, Fn: fn}
}

// cancelSig aborts a traced run from inside the hook. It unwinds the whole
// script stack and is recovered only by the visualizer session.
type cancelSig struct{ msg string }

// maxCallDepth bounds script recursion.
const maxCallDepth = 10000

// ---------------------------------------------------------------------------
// Interpreter
// ---------------------------------------------------------------------------

// Interp owns the global state of one script runtime: the Core environment
// with builtins, the Global environment for loaded units, the frame stack,
// and the optional trace hook.
type Interp struct {
	core    *Env
	globals *Env
	frames  []*Frame
	hook    TraceHook
	curUnit *Unit

	// Stdout receives `print` output. Defaults to os.Stdout.
	Stdout io.Writer
}

// NewInterp returns an interpreter with all builtins registered.
func NewInterp() *Interp {
	ip := &Interp{Stdout: os.Stdout}
	ip.core = NewEnv(nil)
	ip.globals = NewEnv(ip.core)
	registerBuiltins(ip)
	return ip
}

// Globals is the environment holding top-level bindings of executed units.
func (ip *Interp) Globals() *Env { return ip.globals }

// SetTraceHook installs (or, with nil, removes) the process-wide event sink
// for this interpreter. At most one hook is active at a time.
func (ip *Interp) SetTraceHook(h TraceHook) { ip.hook = h }

// TraceHookInstalled reports whether a hook is currently installed.
func (ip *Interp) TraceHookInstalled() bool { return ip.hook != nil }

func (ip *Interp) emit(kind EventKind, fr *Frame, v Value, rerr *RuntimeError) {
	if ip.hook == nil || fr == nil {
		return
	}
	ev := TraceEvent{Kind: kind, Frame: fr, Value: v, Err: rerr}
	ip.hook(&ev)
}

// ExecUnit parses and executes a unit's top-level code in Globals. Function
// declarations bind their names; other statements run for effect. No trace
// events fire for top-level code (there is no frame).
func (ip *Interp) ExecUnit(u *Unit) (err error) {
	stmts, perr := ParseProgram(u.Src)
	if perr != nil {
		return perr
	}
	prev := ip.curUnit
	ip.curUnit = u
	defer func() { ip.curUnit = prev }()
	defer func() {
		if r := recover(); r != nil {
			if re, ok := r.(rtErr); ok {
				err = re.asRuntimeError("")
				return
			}
			panic(r)
		}
	}()
	ip.execBlock(stmts, nil, ip.globals)
	return nil
}

// EvalExprString evaluates a single expression against Globals. Used for
// CLI argument literals and tests.
func (ip *Interp) EvalExprString(src string) (v Value, err error) {
	e, perr := ParseExpression(src)
	if perr != nil {
		return Null, perr
	}
	defer func() {
		if r := recover(); r != nil {
			if re, ok := r.(rtErr); ok {
				v, err = Null, re.asRuntimeError("")
				return
			}
			panic(r)
		}
	}()
	v = ip.evalExpr(e, ip.globals)
	return v, nil
}

// Apply calls fnv with positional args and keyword args bound by parameter
// name. Keyword binding exists only at this boundary; the language itself
// has no keyword-call syntax. Script errors return as *RuntimeError.
// Cancellation panics from a trace hook are NOT recovered here.
func (ip *Interp) Apply(fnv Value, args []Value, kwargs map[string]Value) (res Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if re, ok := r.(rtErr); ok {
				res, err = Null, re.asRuntimeError("")
				return
			}
			panic(r)
		}
	}()
	res = ip.applyKw(fnv, args, kwargs, Pos{})
	return res, nil
}

func (ip *Interp) applyKw(fnv Value, args []Value, kwargs map[string]Value, at Pos) Value {
	if fnv.Tag != VTFun {
		failAtf(at, "value of kind %s is not callable", tagName(fnv.Tag))
	}
	f := fnv.Data.(*Fun)

	if f.Native != nil {
		if len(kwargs) > 0 {
			failAt(at, "builtin functions take no keyword arguments")
		}
		return ip.callNative(f, args, at)
	}

	env := NewEnv(f.Closure)
	bound := len(args)
	if bound > len(f.Params) {
		bound = len(f.Params)
	}
	for i := 0; i < bound; i++ {
		env.Define(f.Params[i], args[i])
	}
	if f.Variadic != "" {
		var rest []Value
		if len(args) > len(f.Params) {
			rest = append(rest, args[len(f.Params):]...)
		}
		env.Define(f.Variadic, Arr(rest))
	} else if len(args) > len(f.Params) {
		failAtf(at, "%s takes %d arguments, got %d", funLabel(f), len(f.Params), len(args))
	}

	// keyword arguments bind to declared parameter names
	names := make([]string, 0, len(kwargs))
	for k := range kwargs {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		if !paramDeclared(f, k) {
			failAtf(at, "%s has no parameter %q", funLabel(f), k)
		}
		if _, dup := env.Local(k); dup {
			failAtf(at, "argument %q given both positionally and by keyword", k)
		}
		env.Define(k, kwargs[k])
	}

	for _, p := range f.Params {
		if _, ok := env.Local(p); !ok {
			failAtf(at, "%s missing argument %q", funLabel(f), p)
		}
	}
	return ip.callFun(f, env)
}

func paramDeclared(f *Fun, name string) bool {
	for _, p := range f.Params {
		if p == name {
			return true
		}
	}
	return false
}

func funLabel(f *Fun) string {
	if f.Name == "" {
		return "function"
	}
	return "function " + f.Name
}

// callNative invokes a builtin, attributing position-less failures to the
// call site.
func (ip *Interp) callNative(f *Fun, args []Value, at Pos) (res Value) {
	defer func() {
		if r := recover(); r != nil {
			if re, ok := r.(rtErr); ok && re.line == 0 {
				re.line, re.col = at.Line, at.Col
				panic(re)
			}
			panic(r)
		}
	}()
	return f.Native(ip, args)
}

// callFun pushes a frame, emits the call/return/exception events, and runs
// the body. returnSig is consumed here; rtErr and cancelSig keep unwinding.
func (ip *Interp) callFun(f *Fun, env *Env) (res Value) {
	if len(ip.frames) >= maxCallDepth {
		fail("call stack exhausted (recursion too deep?)")
	}
	fr := &Frame{Fn: f, env: env, Line: f.DefLine}
	ip.frames = append(ip.frames, fr)
	defer func() { ip.frames = ip.frames[:len(ip.frames)-1] }()
	defer func() {
		if r := recover(); r != nil {
			switch sig := r.(type) {
			case returnSig:
				res = sig.v
				ip.emit(EventReturn, fr, res, nil)
			case rtErr:
				ip.emit(EventException, fr, Null, sig.asRuntimeError(f.Name))
				panic(r)
			default:
				panic(r)
			}
		}
	}()

	ip.emit(EventCall, fr, Null, nil)
	ip.execBlock(f.Body, fr, env)
	if n := len(f.Body); n > 0 {
		fr.Line = f.Body[n-1].Pos().Line
	}
	ip.emit(EventReturn, fr, Null, nil)
	return Null
}

// ---------------------------------------------------------------------------
// Statement execution
// ---------------------------------------------------------------------------

func (ip *Interp) execBlock(stmts []Stmt, fr *Frame, env *Env) {
	for _, st := range stmts {
		if fr != nil {
			fr.Line = st.Pos().Line
			if _, isRet := st.(*ReturnStmt); !isRet {
				ip.emit(EventLine, fr, Null, nil)
			}
		}
		ip.execStmt(st, fr, env)
	}
}

func (ip *Interp) execStmt(st Stmt, fr *Frame, env *Env) {
	switch s := st.(type) {
	case *LetStmt:
		env.Define(s.Name, ip.evalExpr(s.Value, env))

	case *AssignStmt:
		ip.execAssign(s, env)

	case *FunStmt:
		unit := ip.curUnit
		if fr != nil {
			unit = fr.Fn.Unit
		}
		f := &Fun{
			Name:     s.Name,
			Params:   s.Params,
			Variadic: s.Variadic,
			Body:     s.Body,
			Closure:  env,
			DefLine:  s.At.Line,
			Unit:     unit,
		}
		env.Define(s.Name, Value{Tag: VTFun, Data: f})

	case *IfStmt:
		for _, cl := range s.Clauses {
			if ip.truthy(cl.Cond, env) {
				ip.execBlock(cl.Body, fr, env)
				return
			}
		}
		if s.Else != nil {
			ip.execBlock(s.Else, fr, env)
		}

	case *WhileStmt:
		first := true
		for {
			if !first && fr != nil {
				fr.Line = s.At.Line
				ip.emit(EventLine, fr, Null, nil)
			}
			first = false
			if !ip.truthy(s.Cond, env) {
				return
			}
			if ip.runLoopBody(s.Body, fr, env) {
				return
			}
		}

	case *ForStmt:
		items := ip.iterate(s.Iter, env)
		for i, it := range items {
			if i > 0 && fr != nil {
				fr.Line = s.At.Line
				ip.emit(EventLine, fr, Null, nil)
			}
			env.Define(s.Var, it)
			if ip.runLoopBody(s.Body, fr, env) {
				return
			}
		}

	case *ReturnStmt:
		if fr == nil {
			failAt(s.At, "return outside of a function")
		}
		v := Null
		if s.Value != nil {
			v = ip.evalExpr(s.Value, env)
		}
		panic(returnSig{v: v})

	case *BreakStmt:
		panic(breakSig{})

	case *ContinueStmt:
		panic(continueSig{})

	case *ExprStmt:
		ip.evalExpr(s.X, env)

	default:
		failAt(st.Pos(), "internal: unknown statement")
	}
}

// runLoopBody executes one iteration; true means the loop should stop.
func (ip *Interp) runLoopBody(body []Stmt, fr *Frame, env *Env) (brk bool) {
	defer func() {
		if r := recover(); r != nil {
			switch r.(type) {
			case breakSig:
				brk = true
			case continueSig:
				// next iteration
			default:
				panic(r)
			}
		}
	}()
	ip.execBlock(body, fr, env)
	return false
}

func (ip *Interp) execAssign(s *AssignStmt, env *Env) {
	v := ip.evalExpr(s.Value, env)
	switch t := s.Target.(type) {
	case *Ident:
		// assignment to an unbound name defines it in the current scope
		if !env.Assign(t.Name, v) {
			env.Define(t.Name, v)
		}
	case *IndexExpr:
		obj := ip.evalExpr(t.X, env)
		idx := ip.evalExpr(t.Index, env)
		switch obj.Tag {
		case VTArray:
			xs := obj.Data.([]Value)
			i := ip.arrayIndex(idx, len(xs), t.At)
			xs[i] = v
		case VTMap:
			if idx.Tag != VTStr {
				failAt(t.At, "map keys must be strings")
			}
			obj.Data.(*MapObject).Set(idx.Data.(string), v)
		case VTStr:
			failAt(t.At, "strings are immutable")
		default:
			failAtf(t.At, "cannot index into %s", tagName(obj.Tag))
		}
	case *GetExpr:
		obj := ip.evalExpr(t.X, env)
		if obj.Tag != VTMap {
			failAtf(t.At, "cannot set property on %s", tagName(obj.Tag))
		}
		obj.Data.(*MapObject).Set(t.Name, v)
	default:
		failAt(s.At, "left side of '=' is not assignable")
	}
}

func (ip *Interp) truthy(cond Expr, env *Env) bool {
	v := ip.evalExpr(cond, env)
	if v.Tag != VTBool {
		failAtf(cond.Pos(), "condition must be a boolean, got %s", tagName(v.Tag))
	}
	return v.Data.(bool)
}

// iterate materializes the iteration sequence for a for-loop.
func (ip *Interp) iterate(iter Expr, env *Env) []Value {
	v := ip.evalExpr(iter, env)
	switch v.Tag {
	case VTArray:
		return v.Data.([]Value)
	case VTStr:
		s := v.Data.(string)
		out := make([]Value, 0, len(s))
		for _, r := range s {
			out = append(out, Str(string(r)))
		}
		return out
	case VTMap:
		mo := v.Data.(*MapObject)
		out := make([]Value, 0, len(mo.Keys))
		for _, k := range mo.Keys {
			out = append(out, Str(k))
		}
		return out
	default:
		failAtf(iter.Pos(), "cannot iterate over %s", tagName(v.Tag))
		return nil
	}
}

// ---------------------------------------------------------------------------
// Expression evaluation
// ---------------------------------------------------------------------------

func (ip *Interp) evalExpr(e Expr, env *Env) Value {
	switch x := e.(type) {
	case *IntLit:
		return Int(x.V)
	case *NumLit:
		return Num(x.V)
	case *StrLit:
		return Str(x.V)
	case *BoolLit:
		return Bool(x.V)
	case *NullLit:
		return Null

	case *Ident:
		v, ok := env.Get(x.Name)
		if !ok {
			failAtf(x.At, "undefined name %q", x.Name)
		}
		return v

	case *ArrayLit:
		xs := make([]Value, len(x.Items))
		for i, it := range x.Items {
			xs[i] = ip.evalExpr(it, env)
		}
		return Arr(xs)

	case *MapLit:
		mo := NewMapObject()
		for i, k := range x.Keys {
			mo.Set(k, ip.evalExpr(x.Values[i], env))
		}
		return Map(mo)

	case *UnaryExpr:
		v := ip.evalExpr(x.X, env)
		switch x.Op {
		case "-":
			switch v.Tag {
			case VTInt:
				return Int(-v.Data.(int64))
			case VTNum:
				return Num(-v.Data.(float64))
			}
			failAtf(x.At, "cannot negate %s", tagName(v.Tag))
		case "not":
			if v.Tag != VTBool {
				failAtf(x.At, "'not' needs a boolean, got %s", tagName(v.Tag))
			}
			return Bool(!v.Data.(bool))
		}
		failAt(x.At, "internal: unknown unary operator")

	case *BinaryExpr:
		return ip.evalBinary(x, env)

	case *CallExpr:
		fnv := ip.evalExpr(x.Callee, env)
		args := make([]Value, len(x.Args))
		for i, a := range x.Args {
			args[i] = ip.evalExpr(a, env)
		}
		return ip.applyKw(fnv, args, nil, x.At)

	case *IndexExpr:
		obj := ip.evalExpr(x.X, env)
		idx := ip.evalExpr(x.Index, env)
		switch obj.Tag {
		case VTArray:
			xs := obj.Data.([]Value)
			return xs[ip.arrayIndex(idx, len(xs), x.At)]
		case VTStr:
			s := []rune(obj.Data.(string))
			return Str(string(s[ip.arrayIndex(idx, len(s), x.At)]))
		case VTMap:
			if idx.Tag != VTStr {
				failAt(x.At, "map keys must be strings")
			}
			v, _ := obj.Data.(*MapObject).Get(idx.Data.(string))
			return v // missing key reads as null
		default:
			failAtf(x.At, "cannot index into %s", tagName(obj.Tag))
		}

	case *GetExpr:
		obj := ip.evalExpr(x.X, env)
		if obj.Tag != VTMap {
			failAtf(x.At, "cannot read property of %s", tagName(obj.Tag))
		}
		v, _ := obj.Data.(*MapObject).Get(x.Name)
		return v // missing key reads as null
	}
	failAt(e.Pos(), "internal: unknown expression")
	return Null
}

func (ip *Interp) arrayIndex(idx Value, n int, at Pos) int {
	if idx.Tag != VTInt {
		failAtf(at, "index must be an integer, got %s", tagName(idx.Tag))
	}
	i := idx.Data.(int64)
	if i < 0 || i >= int64(n) {
		failAtf(at, "index %d out of range (length %d)", i, n)
	}
	return int(i)
}

func (ip *Interp) evalBinary(x *BinaryExpr, env *Env) Value {
	// short-circuit logicals
	if x.Op == "and" || x.Op == "or" {
		l := ip.evalExpr(x.L, env)
		if l.Tag != VTBool {
			failAtf(x.L.Pos(), "'%s' needs booleans, got %s", x.Op, tagName(l.Tag))
		}
		lb := l.Data.(bool)
		if (x.Op == "and" && !lb) || (x.Op == "or" && lb) {
			return l
		}
		r := ip.evalExpr(x.R, env)
		if r.Tag != VTBool {
			failAtf(x.R.Pos(), "'%s' needs booleans, got %s", x.Op, tagName(r.Tag))
		}
		return r
	}

	l := ip.evalExpr(x.L, env)
	r := ip.evalExpr(x.R, env)
	at := x.At

	switch x.Op {
	case "==":
		return Bool(valueEquals(l, r))
	case "!=":
		return Bool(!valueEquals(l, r))
	}

	// string concatenation and comparison
	if l.Tag == VTStr && r.Tag == VTStr {
		ls, rs := l.Data.(string), r.Data.(string)
		switch x.Op {
		case "+":
			return Str(ls + rs)
		case "<":
			return Bool(ls < rs)
		case "<=":
			return Bool(ls <= rs)
		case ">":
			return Bool(ls > rs)
		case ">=":
			return Bool(ls >= rs)
		}
		failAtf(at, "operator '%s' not defined for strings", x.Op)
	}

	// array concatenation
	if l.Tag == VTArray && r.Tag == VTArray && x.Op == "+" {
		ls, rs := l.Data.([]Value), r.Data.([]Value)
		out := make([]Value, 0, len(ls)+len(rs))
		out = append(out, ls...)
		out = append(out, rs...)
		return Arr(out)
	}

	// numeric
	if isNumeric(l) && isNumeric(r) {
		if l.Tag == VTInt && r.Tag == VTInt {
			a, b := l.Data.(int64), r.Data.(int64)
			switch x.Op {
			case "+":
				return Int(a + b)
			case "-":
				return Int(a - b)
			case "*":
				return Int(a * b)
			case "/":
				if b == 0 {
					failAt(at, "division by zero")
				}
				return Int(a / b)
			case "%":
				if b == 0 {
					failAt(at, "modulo by zero")
				}
				return Int(a % b)
			case "<":
				return Bool(a < b)
			case "<=":
				return Bool(a <= b)
			case ">":
				return Bool(a > b)
			case ">=":
				return Bool(a >= b)
			}
		}
		a, b := numOf(l), numOf(r)
		switch x.Op {
		case "+":
			return Num(a + b)
		case "-":
			return Num(a - b)
		case "*":
			return Num(a * b)
		case "/":
			if b == 0 {
				failAt(at, "division by zero")
			}
			return Num(a / b)
		case "%":
			failAt(at, "operator '%' needs integers")
		case "<":
			return Bool(a < b)
		case "<=":
			return Bool(a <= b)
		case ">":
			return Bool(a > b)
		case ">=":
			return Bool(a >= b)
		}
	}

	failAtf(at, "operator '%s' not defined for %s and %s", x.Op, tagName(l.Tag), tagName(r.Tag))
	return Null
}

// ---------------------------------------------------------------------------
// Value helpers
// ---------------------------------------------------------------------------

func isNumeric(v Value) bool { return v.Tag == VTInt || v.Tag == VTNum }

func numOf(v Value) float64 {
	if v.Tag == VTInt {
		return float64(v.Data.(int64))
	}
	return v.Data.(float64)
}

func tagName(t ValueTag) string {
	switch t {
	case VTNull:
		return "null"
	case VTBool:
		return "bool"
	case VTInt:
		return "int"
	case VTNum:
		return "num"
	case VTStr:
		return "str"
	case VTArray:
		return "array"
	case VTMap:
		return "map"
	case VTFun:
		return "fun"
	default:
		return "unknown"
	}
}

// valueEquals is deep structural equality. Ints and nums compare
// numerically, so 1 == 1.0.
func valueEquals(a, b Value) bool {
	if isNumeric(a) && isNumeric(b) {
		if a.Tag == VTInt && b.Tag == VTInt {
			return a.Data.(int64) == b.Data.(int64)
		}
		return numOf(a) == numOf(b)
	}
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case VTNull:
		return true
	case VTBool:
		return a.Data.(bool) == b.Data.(bool)
	case VTStr:
		return a.Data.(string) == b.Data.(string)
	case VTArray:
		as, bs := a.Data.([]Value), b.Data.([]Value)
		if len(as) != len(bs) {
			return false
		}
		for i := range as {
			if !valueEquals(as[i], bs[i]) {
				return false
			}
		}
		return true
	case VTMap:
		am, bm := a.Data.(*MapObject), b.Data.(*MapObject)
		if len(am.Keys) != len(bm.Keys) {
			return false
		}
		for _, k := range am.Keys {
			bv, ok := bm.Get(k)
			if !ok || !valueEquals(am.Entries[k], bv) {
				return false
			}
		}
		return true
	case VTFun:
		return a.Data == b.Data
	default:
		return false
	}
}
