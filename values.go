// values.go — runtime value model and lexical environments.
//
// `Value` is a tagged union covering every runtime kind a stepscript program
// can produce: null, bool, int64, float64, string, arrays, ordered maps, and
// functions. The tag determines which Go type Value.Data holds. Maps preserve
// insertion order (`MapObject.Keys`); order-sensitive consumers must iterate
// via Keys, not Entries.
package stepscript

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueTag enumerates all runtime kinds a Value may hold.
type ValueTag int

const (
	VTNull  ValueTag = iota // null (no payload)
	VTBool                  // bool
	VTInt                   // int64
	VTNum                   // float64
	VTStr                   // string
	VTArray                 // []Value
	VTMap                   // *MapObject (ordered map)
	VTFun                   // *Fun (closure; native or script-defined)
)

// Value is the universal runtime carrier used by the interpreter.
//
// Invariants:
//   - When Tag==VTNull, Data is nil.
//   - When Tag==VTMap, Data is *MapObject preserving insertion order.
type Value struct {
	Tag  ValueTag
	Data interface{}
}

// String renders a terse debug representation. Pretty printing with width
// awareness lives in printer.go (FormatValue).
func (v Value) String() string {
	switch v.Tag {
	case VTNull:
		return "null"
	case VTBool:
		return strconv.FormatBool(v.Data.(bool))
	case VTInt:
		return strconv.FormatInt(v.Data.(int64), 10)
	case VTNum:
		return strconv.FormatFloat(v.Data.(float64), 'g', -1, 64)
	case VTStr:
		return fmt.Sprintf("%q", v.Data.(string))
	case VTArray:
		return fmt.Sprintf("<array len=%d>", len(v.Data.([]Value)))
	case VTMap:
		return "<map>"
	case VTFun:
		if f, ok := v.Data.(*Fun); ok && f.Name != "" {
			return "<fun " + f.Name + ">"
		}
		return "<fun>"
	default:
		return "<unknown>"
	}
}

// Null is the singleton null Value.
var Null = Value{Tag: VTNull}

// Primitive constructors.
func Bool(b bool) Value    { return Value{Tag: VTBool, Data: b} }
func Int(n int64) Value    { return Value{Tag: VTInt, Data: n} }
func Num(f float64) Value  { return Value{Tag: VTNum, Data: f} }
func Str(s string) Value   { return Value{Tag: VTStr, Data: s} }
func Arr(xs []Value) Value { return Value{Tag: VTArray, Data: xs} }
func Map(m *MapObject) Value {
	if m == nil {
		m = NewMapObject()
	}
	return Value{Tag: VTMap, Data: m}
}

// MapObject is an ordered map preserving insertion order.
type MapObject struct {
	Entries map[string]Value
	Keys    []string // insertion order, unique
}

// NewMapObject returns an empty ordered map.
func NewMapObject() *MapObject {
	return &MapObject{Entries: map[string]Value{}}
}

// Set inserts or updates a key, preserving first-insertion order.
func (m *MapObject) Set(k string, v Value) {
	if _, ok := m.Entries[k]; !ok {
		m.Keys = append(m.Keys, k)
	}
	m.Entries[k] = v
}

// Get returns the value for k and whether it is present.
func (m *MapObject) Get(k string) (Value, bool) {
	v, ok := m.Entries[k]
	return v, ok
}

// Len returns the number of entries.
func (m *MapObject) Len() int { return len(m.Keys) }

// Fun is a callable: either a script function (Body != nil) or a native
// builtin (Native != nil). Script functions remember the source unit and the
// line of their `fun` keyword; both feed the visualizer's snapshots.
type Fun struct {
	Name     string
	Params   []string
	Variadic string // trailing `...name` parameter, "" if absent
	Body     []Stmt
	Closure  *Env
	DefLine  int
	Unit     *Unit // nil for natives

	Native NativeImpl // non-nil for builtins
}

// NativeImpl is the host-side implementation of a builtin function.
type NativeImpl func(ip *Interp, args []Value) Value

// Signature renders the declared parameter list, e.g. "(a, b, ...rest)".
func (f *Fun) Signature() string {
	parts := append([]string(nil), f.Params...)
	if f.Variadic != "" {
		parts = append(parts, "..."+f.Variadic)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// ---------------------------------------------------------------------------
// Environments
// ---------------------------------------------------------------------------

// Env is one lexical scope: a name→Value table with a parent chain.
// Function calls get a fresh Env whose parent is the function's closure; the
// body shares that single Env (no per-block scoping), which is what makes a
// frame's "locals" a flat, snapshot-friendly table.
type Env struct {
	vars   map[string]Value
	parent *Env
}

// NewEnv creates an environment chained to parent (parent may be nil).
func NewEnv(parent *Env) *Env {
	return &Env{vars: map[string]Value{}, parent: parent}
}

// Define binds name in this scope, shadowing any outer binding.
func (e *Env) Define(name string, v Value) { e.vars[name] = v }

// Get resolves name through the parent chain.
func (e *Env) Get(name string) (Value, bool) {
	for s := e; s != nil; s = s.parent {
		if v, ok := s.vars[name]; ok {
			return v, true
		}
	}
	return Null, false
}

// Assign updates the nearest existing binding; false if name is unbound.
func (e *Env) Assign(name string, v Value) bool {
	for s := e; s != nil; s = s.parent {
		if _, ok := s.vars[name]; ok {
			s.vars[name] = v
			return true
		}
	}
	return false
}

// Local reports whether name is bound directly in this scope.
func (e *Env) Local(name string) (Value, bool) {
	v, ok := e.vars[name]
	return v, ok
}

// localNames returns the names bound directly in this scope, unordered.
func (e *Env) localNames() []string {
	names := make([]string, 0, len(e.vars))
	for n := range e.vars {
		names = append(names, n)
	}
	return names
}
