// input.go — command input backed by peterh/liner.
package stepscript

import (
	"errors"
	"io"

	"github.com/peterh/liner"
)

// LinerReader reads pause commands from an interactive terminal. Ctrl-C and
// EOF both read as "q": interrupting the prompt quits the session instead of
// killing the process.
type LinerReader struct {
	state *liner.State
}

// NewLinerReader takes over the terminal until Close is called.
func NewLinerReader() *LinerReader {
	ln := liner.NewLiner()
	ln.SetCtrlCAborts(true)
	return &LinerReader{state: ln}
}

func (r *LinerReader) ReadCommand(prompt string) (string, error) {
	line, err := r.state.Prompt(prompt)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return "q", nil
		}
		return "", err
	}
	return line, nil
}

// Close restores the terminal state.
func (r *LinerReader) Close() error {
	return r.state.Close()
}
