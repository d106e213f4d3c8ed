// render.go — the renderer contract and renderer selection.
//
// The core hands each Snapshot to exactly one renderer and later reads one
// command before proceeding; renderers never see frames, only snapshots.
package stepscript

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// Renderer consumes snapshots for one session. Begin is called once before
// the first event, Close once on every session exit path.
type Renderer interface {
	Begin(u *Unit)
	Render(s *Snapshot)
	// Notify shows an out-of-band message (e.g. an unrecognized command).
	Notify(msg string)
	Close() error
}

// NewRenderer picks the rich multi-panel renderer when settings ask for it
// and w is a real terminal; otherwise the plain line renderer. The fallback
// prints a one-line notice to stderr, matching the configured preference
// being silently unavailable otherwise.
func NewRenderer(settings Settings, w io.Writer) Renderer {
	if settings.UseRich {
		if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return NewRichRenderer(settings, w)
		}
		fmt.Fprintln(os.Stderr, "rich output unavailable; falling back to plain text")
	}
	return NewPlainRenderer(settings, w)
}
