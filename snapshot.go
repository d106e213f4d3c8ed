// snapshot.go — immutable per-event state snapshots for rendering.
//
// A Snapshot is materialized at event time: every value is formatted
// immediately and the frame reference is dropped, because the interpreter
// keeps mutating the frame as execution proceeds.
package stepscript

import (
	"fmt"
	"sort"
	"strings"
)

// Binding is one formatted (name, value) pair.
type Binding struct {
	Name string
	Repr string
}

// Snapshot captures everything a renderer needs for one trace event.
type Snapshot struct {
	Kind        EventKind
	FuncName    string
	Line        int // current line
	DisplayLine int // definition line for call events, else Line
	Label       string
	Details     string
	Watch       []Binding // watch-list order
	Locals      []Binding // alphabetical, excludes watched and __-names
}

// buildSnapshot is a pure function of the event, the watch list, and the
// formatting cap.
func buildSnapshot(ev *TraceEvent, watch []string, maxRepr int) *Snapshot {
	fr := ev.Frame
	snap := &Snapshot{
		Kind:        ev.Kind,
		FuncName:    fr.Fn.Name,
		Line:        fr.Line,
		DisplayLine: fr.Line,
		Label:       strings.ToUpper(ev.Kind.String()),
	}

	locals := fr.Locals()

	switch ev.Kind {
	case EventCall:
		snap.DisplayLine = fr.Fn.DefLine
		snap.Details = callDetails(fr.Fn, locals, maxRepr)
	case EventReturn:
		snap.Details = "return value = " + safeRepr(ev.Value, maxRepr)
	case EventException:
		msg := ""
		if ev.Err != nil {
			msg = ev.Err.Msg
		}
		snap.Details = fmt.Sprintf("exception RuntimeError: %s", safeRepr(Str(msg), maxRepr))
	}

	snap.Watch, snap.Locals = partitionLocals(locals, watch, maxRepr)
	return snap
}

// callDetails renders "(a=1, b=[2, 3], ...rest=[4])" — positional parameters
// in declaration order, then the variadic group.
func callDetails(f *Fun, locals map[string]Value, maxRepr int) string {
	var pairs []string
	for _, p := range f.Params {
		if v, ok := locals[p]; ok {
			pairs = append(pairs, p+"="+safeRepr(v, maxRepr))
		}
	}
	if f.Variadic != "" {
		if v, ok := locals[f.Variadic]; ok {
			pairs = append(pairs, "..."+f.Variadic+"="+safeRepr(v, maxRepr))
		}
	}
	return "(" + strings.Join(pairs, ", ") + ")"
}

// partitionLocals splits the bound locals into watch-list entries (in watch
// order; unbound names omitted) and the remaining names (alphabetical,
// skipping internal "__" names and anything already watched).
func partitionLocals(locals map[string]Value, watch []string, maxRepr int) (watched, others []Binding) {
	inWatch := make(map[string]bool, len(watch))
	for _, name := range watch {
		if inWatch[name] {
			continue // duplicate watch entries render once
		}
		inWatch[name] = true
		if v, ok := locals[name]; ok {
			watched = append(watched, Binding{Name: name, Repr: safeRepr(v, maxRepr)})
		}
	}

	rest := make([]string, 0, len(locals))
	for name := range locals {
		if inWatch[name] || strings.HasPrefix(name, "__") {
			continue
		}
		rest = append(rest, name)
	}
	sort.Strings(rest)
	for _, name := range rest {
		others = append(others, Binding{Name: name, Repr: safeRepr(locals[name], maxRepr)})
	}
	return watched, others
}
