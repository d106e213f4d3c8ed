// visualizer.go — the trace session: event filtering, root-frame tracking,
// and the run lifecycle.
//
// Run installs the visualizer as the interpreter's trace hook for exactly
// one top-level call and guarantees removal on every exit path (normal
// return, script error, cancellation). Filtering keeps the step count
// proportional to the function under study: helper functions from the same
// source unit are traced, calls into other units and builtins are not.
package stepscript

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Session failure modes, distinguishable via errors.Is.
var (
	// ErrCanceled reports a deliberate quit; callers should treat it as a
	// stop, not a failure.
	ErrCanceled = errors.New("visualization stopped by user")
	// ErrSessionActive rejects reentrant Run calls on one Visualizer.
	ErrSessionActive = errors.New("a visualizer session is already active")
	// ErrNoSource rejects targets without a locatable source unit.
	ErrNoSource = errors.New("cannot locate source for callable")
)

// Settings configures one Visualizer. The zero value is not useful; start
// from DefaultSettings.
type Settings struct {
	// ContextLines is the number of source lines shown above and below the
	// current line.
	ContextLines int
	// MaxValueRepr caps every formatted value, ellipsis included.
	MaxValueRepr int
	// Watch names variables to pin above the other locals, in this order.
	Watch []string
	// UseRich prefers the multi-panel renderer when the terminal allows it.
	UseRich bool
	// Theme selects the rich renderer's palette.
	Theme string
}

// DefaultSettings mirrors the documented defaults.
func DefaultSettings() Settings {
	return Settings{
		ContextLines: 3,
		MaxValueRepr: 120,
		UseRich:      true,
		Theme:        "monokai",
	}
}

// Visualizer traces one callable invocation at a time and drives the
// step/continue/quit loop around it.
type Visualizer struct {
	settings Settings
	renderer Renderer
	ctl      *controller
	log      *slog.Logger

	active bool
	root   *Frame
	unit   *Unit
}

// NewVisualizer wires a renderer and a command source to the given settings.
func NewVisualizer(settings Settings, r Renderer, in CommandReader) *Visualizer {
	v := &Visualizer{
		settings: settings,
		renderer: r,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	v.ctl = newController(in, r.Notify)
	return v
}

// SetLogger routes session lifecycle logging (debug level) to l.
func (v *Visualizer) SetLogger(l *slog.Logger) {
	if l != nil {
		v.log = l
	}
}

// Run executes fnv under tracing and returns its result.
//
// Positional args bind first; kwargs bind remaining parameters by name.
// The returned error is ErrSessionActive or ErrNoSource for setup failures
// (nothing was instrumented), ErrCanceled when the user quit (the script's
// stack was unwound), or the script's own *RuntimeError after its final
// exception event was shown. The trace hook and the renderer are torn down
// on every one of those paths.
func (v *Visualizer) Run(ip *Interp, fnv Value, args []Value, kwargs map[string]Value) (Value, error) {
	if v.active {
		return Null, ErrSessionActive
	}
	if fnv.Tag != VTFun {
		return Null, fmt.Errorf("%w: target is not a function", ErrNoSource)
	}
	f := fnv.Data.(*Fun)
	if f.Native != nil {
		return Null, fmt.Errorf("%w: %s is a builtin", ErrNoSource, f.Name)
	}
	if f.Unit == nil {
		return Null, fmt.Errorf("%w: %s", ErrNoSource, funLabel(f))
	}

	v.active = true
	v.root = nil
	v.unit = f.Unit
	v.ctl.reset()
	v.renderer.Begin(f.Unit)
	ip.SetTraceHook(v.onEvent)
	v.log.Debug("trace session started",
		"target", f.Name, "unit", f.Unit.Name, "source_lines", f.Unit.LineCount())

	defer func() {
		ip.SetTraceHook(nil)
		if cerr := v.renderer.Close(); cerr != nil {
			v.log.Debug("renderer close failed", "error", cerr)
		}
		v.active = false
		v.root = nil
		v.unit = nil
		v.log.Debug("trace session ended", "target", f.Name)
	}()

	var res Value
	var err error
	canceled := func() (canceled bool) {
		defer func() {
			if r := recover(); r != nil {
				if _, ok := r.(cancelSig); ok {
					canceled = true
					return
				}
				panic(r)
			}
		}()
		res, err = ip.Apply(fnv, args, kwargs)
		return false
	}()
	if canceled {
		return Null, ErrCanceled
	}
	return res, err
}

// onEvent is the installed trace hook: filter, snapshot, render, decide.
func (v *Visualizer) onEvent(ev *TraceEvent) {
	// foreign source units are invisible
	if ev.Frame.Fn.Unit != v.unit {
		return
	}

	// the first accepted call marks the root invocation; anything arriving
	// before it is residue from outside the target call
	if v.root == nil {
		if ev.Kind != EventCall {
			return
		}
		v.root = ev.Frame
	}

	// fast-forward hides every frame but the root
	if v.ctl.fastForward && ev.Frame != v.root {
		return
	}

	snap := buildSnapshot(ev, v.settings.Watch, v.settings.MaxValueRepr)
	v.renderer.Render(snap)

	// pause unless fast-forwarding; the root frame's own return pauses
	// regardless (the fast-forwarded call has completed)
	if !v.ctl.fastForward || (ev.Frame == v.root && ev.Kind == EventReturn) {
		v.ctl.pause()
	}
}
