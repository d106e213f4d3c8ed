// control.go — the interactive pause/step state machine.
//
// The controller exists only for a session's duration. It has exactly one
// piece of state: whether the session is fast-forwarding. Each pause blocks
// on one command line; quitting panics with cancelSig, which unwinds the
// traced script's whole stack (the script makes no further progress) and is
// recovered by the session in visualizer.go.
package stepscript

import "strings"

// CommandReader supplies one command line per pause. Implementations may
// block indefinitely; there is no timeout.
type CommandReader interface {
	ReadCommand(prompt string) (string, error)
}

// PromptText is shown at every pause.
const PromptText = "step [Enter] | continue [c] | quit [q]: "

const unrecognizedMsg = "Unrecognized input. Use Enter, c, or q."

type controller struct {
	fastForward bool
	in          CommandReader
	notify      func(string)
}

func newController(in CommandReader, notify func(string)) *controller {
	return &controller{in: in, notify: notify}
}

func (c *controller) reset() { c.fastForward = false }

// pause blocks until a recognized command arrives.
//
//	empty / s / n  → step: pause again at the next accepted event
//	c              → fast-forward until the root call returns
//	q              → cancel the session
//
// A read error counts as quitting (stdin closed mid-session).
func (c *controller) pause() {
	for {
		line, err := c.in.ReadCommand(PromptText)
		if err != nil {
			panic(cancelSig{msg: "input closed"})
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "", "s", "n":
			c.fastForward = false
			return
		case "c":
			c.fastForward = true
			return
		case "q":
			panic(cancelSig{msg: "visualization aborted by user"})
		default:
			c.notify(unrecognizedMsg)
		}
	}
}
