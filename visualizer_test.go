package stepscript

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingRenderer captures everything the session pushes at it.
type recordingRenderer struct {
	began   *Unit
	snaps   []*Snapshot
	notices []string
	closed  int
}

func (r *recordingRenderer) Begin(u *Unit)      { r.began = u }
func (r *recordingRenderer) Render(s *Snapshot) { r.snaps = append(r.snaps, s) }
func (r *recordingRenderer) Notify(msg string)  { r.notices = append(r.notices, msg) }
func (r *recordingRenderer) Close() error       { r.closed++; return nil }

func (r *recordingRenderer) labels() []string {
	out := make([]string, len(r.snaps))
	for i, s := range r.snaps {
		out[i] = s.Label
	}
	return out
}

type vizFixture struct {
	ip       *Interp
	viz      *Visualizer
	renderer *recordingRenderer
	reader   *scriptedReader
}

func newViz(t *testing.T, settings Settings, src string, commands ...string) *vizFixture {
	t.Helper()
	ip := NewInterp()
	require.NoError(t, ip.ExecUnit(NewUnit("test.ss", src)))
	r := &recordingRenderer{}
	in := &scriptedReader{commands: commands}
	return &vizFixture{
		ip:       ip,
		viz:      NewVisualizer(settings, r, in),
		renderer: r,
		reader:   in,
	}
}

func (fx *vizFixture) run(t *testing.T, fn string, args ...Value) (Value, error) {
	t.Helper()
	fnv, ok := fx.ip.Globals().Get(fn)
	require.True(t, ok, "function %q not defined", fn)
	return fx.viz.Run(fx.ip, fnv, args, nil)
}

const threeStepSrc = `fun f(x)
  let a = x + 1
  let b = a * 2
  return a + b
end`

func TestRunStepsThroughEveryEvent(t *testing.T) {
	fx := newViz(t, DefaultSettings(), threeStepSrc, "", "", "", "")

	res, err := fx.run(t, "f", Int(1))
	require.NoError(t, err)
	wantInt(t, res, 6)

	assert.Equal(t, []string{"CALL", "LINE", "LINE", "RETURN"}, fx.renderer.labels())
	assert.Len(t, fx.reader.prompts, 4) // one pause per event
	assert.Equal(t, "test.ss", fx.renderer.began.Name)

	// the return snapshot carries the value
	last := fx.renderer.snaps[3]
	assert.Equal(t, "return value = 6", last.Details)
}

func TestRunTeardown(t *testing.T) {
	fx := newViz(t, DefaultSettings(), threeStepSrc, "", "", "", "")
	_, err := fx.run(t, "f", Int(1))
	require.NoError(t, err)

	assert.False(t, fx.ip.TraceHookInstalled())
	assert.Equal(t, 1, fx.renderer.closed)

	// the same visualizer can run again
	fx.reader.commands = append(fx.reader.commands, "", "", "", "")
	_, err = fx.run(t, "f", Int(2))
	require.NoError(t, err)
	assert.Equal(t, 2, fx.renderer.closed)
}

func TestRunQuitStopsScript(t *testing.T) {
	src := `let progress = {}
fun f()
  progress.started = true
  progress.finished = true
  return 1
end`
	// quit at the very first pause (the call event)
	fx := newViz(t, DefaultSettings(), src, "q")

	_, err := fx.run(t, "f")
	require.ErrorIs(t, err, ErrCanceled)

	// no statement of the body ran
	pv, _ := fx.ip.Globals().Get("progress")
	assert.Equal(t, 0, pv.Data.(*MapObject).Len())

	assert.False(t, fx.ip.TraceHookInstalled())
	assert.Equal(t, 1, fx.renderer.closed)
}

func TestRunFastForward(t *testing.T) {
	src := `fun g(n)
  return n + 1
end
fun f(x)
  let a = g(x)
  let b = g(a)
  return a + b
end`
	// continue at the call; the next pause is the root return
	fx := newViz(t, DefaultSettings(), src, "c", "")

	res, err := fx.run(t, "f", Int(1))
	require.NoError(t, err)
	wantInt(t, res, 5)

	// helper frames are invisible while fast-forwarding; the root frame's
	// own lines still render
	assert.Equal(t, []string{"CALL", "LINE", "LINE", "RETURN"}, fx.renderer.labels())
	assert.Len(t, fx.reader.prompts, 2)
}

func TestRunHelpersInSameUnitAreTraced(t *testing.T) {
	src := `fun g(n)
  return n * 2
end
fun f()
  return g(3)
end`
	fx := newViz(t, DefaultSettings(), src, "", "", "", "")

	res, err := fx.run(t, "f")
	require.NoError(t, err)
	wantInt(t, res, 6)
	assert.Equal(t, []string{"CALL", "CALL", "RETURN", "RETURN"}, fx.renderer.labels())
	assert.Equal(t, "g", fx.renderer.snaps[1].FuncName)
}

func TestRunForeignUnitIsInvisible(t *testing.T) {
	fx := newViz(t, DefaultSettings(), "fun helper(n)\n  let d = n + n\n  return d\nend")
	require.NoError(t, fx.ip.ExecUnit(NewUnit("main.ss", `fun f()
  let a = helper(1)
  return a + 1
end`)))
	fx.reader.commands = []string{"", "", ""}

	res, err := fx.run(t, "f")
	require.NoError(t, err)
	wantInt(t, res, 3)

	// helper lives in test.ss; only main.ss frames render
	assert.Equal(t, []string{"CALL", "LINE", "RETURN"}, fx.renderer.labels())
	assert.Equal(t, "main.ss", fx.renderer.began.Name)
	for _, s := range fx.renderer.snaps {
		assert.Equal(t, "f", s.FuncName)
	}
}

func TestRunScriptErrorAfterExceptionEvent(t *testing.T) {
	src := `fun f()
  fail("boom")
end`
	fx := newViz(t, DefaultSettings(), src, "", "", "")

	_, err := fx.run(t, "f")
	re, ok := err.(*RuntimeError)
	require.True(t, ok, "want *RuntimeError, got %T", err)
	assert.Equal(t, "boom", re.Msg)

	assert.Equal(t, []string{"CALL", "LINE", "EXCEPTION"}, fx.renderer.labels())
	assert.False(t, fx.ip.TraceHookInstalled())
	assert.Equal(t, 1, fx.renderer.closed)
}

func TestRunWatchSettingsFlowIntoSnapshots(t *testing.T) {
	settings := DefaultSettings()
	settings.Watch = []string{"b", "a"}
	fx := newViz(t, settings, threeStepSrc, "", "", "", "")

	_, err := fx.run(t, "f", Int(1))
	require.NoError(t, err)

	last := fx.renderer.snaps[3]
	require.Len(t, last.Watch, 2) // watch order, not alphabetical
	assert.Equal(t, "b", last.Watch[0].Name)
	assert.Equal(t, "a", last.Watch[1].Name)
	require.Len(t, last.Locals, 1)
	assert.Equal(t, "x", last.Locals[0].Name)
}

func TestRunRejectsNonFunctionTargets(t *testing.T) {
	fx := newViz(t, DefaultSettings(), "let x = 1")

	_, err := fx.viz.Run(fx.ip, Int(3), nil, nil)
	assert.ErrorIs(t, err, ErrNoSource)

	pr, _ := fx.ip.Globals().Get("print")
	_, err = fx.viz.Run(fx.ip, pr, nil, nil)
	assert.ErrorIs(t, err, ErrNoSource)

	// setup failures never touch the renderer
	assert.Nil(t, fx.renderer.began)
	assert.Zero(t, fx.renderer.closed)
}

func TestRunRejectsReentrantSessions(t *testing.T) {
	fx := newViz(t, DefaultSettings(), threeStepSrc)
	fx.viz.active = true
	defer func() { fx.viz.active = false }()

	fnv, _ := fx.ip.Globals().Get("f")
	_, err := fx.viz.Run(fx.ip, fnv, []Value{Int(1)}, nil)
	assert.ErrorIs(t, err, ErrSessionActive)
}

func TestRunKwargsBindByName(t *testing.T) {
	fx := newViz(t, DefaultSettings(), threeStepSrc, "", "", "", "")
	fnv, _ := fx.ip.Globals().Get("f")

	res, err := fx.viz.Run(fx.ip, fnv, nil, map[string]Value{"x": Int(1)})
	require.NoError(t, err)
	wantInt(t, res, 6)
	assert.Equal(t, "(x=1)", fx.renderer.snaps[0].Details)
}

func TestRunUnrecognizedCommandNotifies(t *testing.T) {
	fx := newViz(t, DefaultSettings(), threeStepSrc, "huh", "", "", "", "")

	_, err := fx.run(t, "f", Int(1))
	require.NoError(t, err)
	assert.Equal(t, []string{unrecognizedMsg}, fx.renderer.notices)
}
