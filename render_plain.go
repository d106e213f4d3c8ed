// render_plain.go — line-oriented fallback renderer.
//
// Output per event:
//
//	[LINE] solve (line 7)
//	      4: let total = 0
//	->    5: for coin in coins do
//	      6:   total = total + coin
//	* Watch vars
//	    total = 3
//	* Locals
//	    coin = 2
package stepscript

import (
	"fmt"
	"io"
	"strings"
)

// PlainRenderer writes plain text blocks, one per event.
type PlainRenderer struct {
	w    io.Writer
	ctx  int
	unit *Unit
}

// NewPlainRenderer creates a plain renderer with the configured context
// window size.
func NewPlainRenderer(settings Settings, w io.Writer) *PlainRenderer {
	return &PlainRenderer{w: w, ctx: settings.ContextLines}
}

func (r *PlainRenderer) Begin(u *Unit) { r.unit = u }

func (r *PlainRenderer) Render(s *Snapshot) {
	segments := []string{r.header(s), r.codeBlock(s.Line)}
	if block := r.localsBlock(s); block != "" {
		segments = append(segments, block)
	}
	fmt.Fprintln(r.w, strings.Join(segments, "\n"))
}

func (r *PlainRenderer) Notify(msg string) {
	fmt.Fprintln(r.w, msg)
}

func (r *PlainRenderer) Close() error { return nil }

func (r *PlainRenderer) header(s *Snapshot) string {
	h := fmt.Sprintf("[%s] %s (line %d)", s.Label, s.FuncName, s.DisplayLine)
	if s.Details != "" {
		h += " " + s.Details
	}
	return h
}

func (r *PlainRenderer) codeBlock(lineno int) string {
	if r.unit == nil {
		return "<source unavailable>"
	}
	start := lineno - r.ctx
	if start < 1 {
		start = 1
	}
	var lines []string
	for i := start; i <= lineno+r.ctx; i++ {
		raw, ok := r.unit.Line(i)
		if !ok {
			continue
		}
		marker := "  "
		if i == lineno {
			marker = "->"
		}
		lines = append(lines, fmt.Sprintf("%s %4d: %s", marker, i, raw))
	}
	return strings.Join(lines, "\n")
}

func (r *PlainRenderer) localsBlock(s *Snapshot) string {
	var items []string
	if len(s.Watch) > 0 {
		items = append(items, "* Watch vars")
		for _, b := range s.Watch {
			items = append(items, fmt.Sprintf("    %s = %s", b.Name, b.Repr))
		}
	}
	if len(s.Locals) > 0 {
		items = append(items, "* Locals")
		for _, b := range s.Locals {
			items = append(items, fmt.Sprintf("    %s = %s", b.Name, b.Repr))
		}
	}
	return strings.Join(items, "\n")
}
