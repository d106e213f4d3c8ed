package stepscript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFrame(fn *Fun, line int, locals map[string]Value) *Frame {
	env := NewEnv(nil)
	for k, v := range locals {
		env.Define(k, v)
	}
	return &Frame{Fn: fn, Line: line, env: env}
}

func TestSnapshotLineEvent(t *testing.T) {
	f := &Fun{Name: "solve", DefLine: 1}
	fr := testFrame(f, 5, map[string]Value{"total": Int(3), "i": Int(1)})

	snap := buildSnapshot(&TraceEvent{Kind: EventLine, Frame: fr}, nil, 120)
	assert.Equal(t, "LINE", snap.Label)
	assert.Equal(t, "solve", snap.FuncName)
	assert.Equal(t, 5, snap.Line)
	assert.Equal(t, 5, snap.DisplayLine)
	assert.Empty(t, snap.Details)
	assert.Empty(t, snap.Watch)
	require.Len(t, snap.Locals, 2)
	assert.Equal(t, Binding{Name: "i", Repr: "1"}, snap.Locals[0]) // alphabetical
	assert.Equal(t, Binding{Name: "total", Repr: "3"}, snap.Locals[1])
}

func TestSnapshotCallEventUsesDefLine(t *testing.T) {
	f := &Fun{Name: "solve", DefLine: 2, Params: []string{"a", "b"}}
	fr := testFrame(f, 3, map[string]Value{"a": Int(1), "b": Arr([]Value{Int(2)})})

	snap := buildSnapshot(&TraceEvent{Kind: EventCall, Frame: fr}, nil, 120)
	assert.Equal(t, "CALL", snap.Label)
	assert.Equal(t, 2, snap.DisplayLine) // jump to the definition
	assert.Equal(t, 3, snap.Line)
	assert.Equal(t, "(a=1, b=[2])", snap.Details)
}

func TestSnapshotCallEventVariadic(t *testing.T) {
	f := &Fun{Name: "f", DefLine: 1, Params: []string{"a"}, Variadic: "rest"}
	fr := testFrame(f, 1, map[string]Value{
		"a":    Int(1),
		"rest": Arr([]Value{Int(2), Int(3)}),
	})

	snap := buildSnapshot(&TraceEvent{Kind: EventCall, Frame: fr}, nil, 120)
	assert.Equal(t, "(a=1, ...rest=[2, 3])", snap.Details)
}

func TestSnapshotReturnEvent(t *testing.T) {
	f := &Fun{Name: "f", DefLine: 1}
	fr := testFrame(f, 4, nil)

	snap := buildSnapshot(&TraceEvent{Kind: EventReturn, Frame: fr, Value: Int(42)}, nil, 120)
	assert.Equal(t, "RETURN", snap.Label)
	assert.Equal(t, "return value = 42", snap.Details)
}

func TestSnapshotExceptionEvent(t *testing.T) {
	f := &Fun{Name: "f", DefLine: 1}
	fr := testFrame(f, 2, nil)
	re := &RuntimeError{Msg: "boom", Line: 2, Col: 3, Fn: "f"}

	snap := buildSnapshot(&TraceEvent{Kind: EventException, Frame: fr, Err: re}, nil, 120)
	assert.Equal(t, "EXCEPTION", snap.Label)
	assert.Equal(t, `exception RuntimeError: "boom"`, snap.Details)
}

func TestSnapshotWatchPartition(t *testing.T) {
	f := &Fun{Name: "f", DefLine: 1}
	fr := testFrame(f, 2, map[string]Value{
		"total":    Int(1),
		"alpha":    Int(2),
		"zeta":     Int(3),
		"__hidden": Int(4),
	})

	snap := buildSnapshot(&TraceEvent{Kind: EventLine, Frame: fr},
		[]string{"zeta", "missing", "total", "zeta"}, 120)

	// watch order preserved, unbound and duplicate names dropped
	require.Len(t, snap.Watch, 2)
	assert.Equal(t, "zeta", snap.Watch[0].Name)
	assert.Equal(t, "total", snap.Watch[1].Name)

	// remaining locals alphabetical, double-underscore names hidden
	require.Len(t, snap.Locals, 1)
	assert.Equal(t, "alpha", snap.Locals[0].Name)
}

func TestSnapshotAppliesReprCap(t *testing.T) {
	f := &Fun{Name: "f", DefLine: 1}
	big := Arr([]Value{Int(1000000), Int(2000000), Int(3000000), Int(4000000)})
	fr := testFrame(f, 2, map[string]Value{"xs": big})

	snap := buildSnapshot(&TraceEvent{Kind: EventReturn, Frame: fr, Value: big}, nil, 12)
	require.Len(t, snap.Locals, 1)
	assert.LessOrEqual(t, len([]rune(snap.Locals[0].Repr)), 12)
	assert.Contains(t, snap.Details, "...")
}
