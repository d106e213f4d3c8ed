package stepscript

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedReader replays a fixed command sequence; reads past the end
// return an error, as a closed stdin would.
type scriptedReader struct {
	commands []string
	pos      int
	prompts  []string
}

func (r *scriptedReader) ReadCommand(prompt string) (string, error) {
	r.prompts = append(r.prompts, prompt)
	if r.pos >= len(r.commands) {
		return "", errors.New("out of input")
	}
	cmd := r.commands[r.pos]
	r.pos++
	return cmd, nil
}

func pauseOutcome(c *controller) (canceled bool) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(cancelSig); ok {
				canceled = true
				return
			}
			panic(r)
		}
	}()
	c.pause()
	return false
}

func TestControllerStepCommands(t *testing.T) {
	for _, cmd := range []string{"", "s", "n", "  S  ", "N"} {
		in := &scriptedReader{commands: []string{cmd}}
		c := newController(in, func(string) {})
		c.fastForward = true // any step form switches fast-forward off
		require.False(t, pauseOutcome(c), "command %q", cmd)
		assert.False(t, c.fastForward, "command %q", cmd)
	}
}

func TestControllerContinue(t *testing.T) {
	in := &scriptedReader{commands: []string{"c"}}
	c := newController(in, func(string) {})
	require.False(t, pauseOutcome(c))
	assert.True(t, c.fastForward)
}

func TestControllerQuit(t *testing.T) {
	in := &scriptedReader{commands: []string{"q"}}
	c := newController(in, func(string) {})
	assert.True(t, pauseOutcome(c))
}

func TestControllerUnrecognizedReprompts(t *testing.T) {
	var notices []string
	in := &scriptedReader{commands: []string{"bogus", "wat", "c"}}
	c := newController(in, func(msg string) { notices = append(notices, msg) })

	require.False(t, pauseOutcome(c))
	assert.True(t, c.fastForward)
	assert.Equal(t, []string{unrecognizedMsg, unrecognizedMsg}, notices)
	assert.Equal(t, []string{PromptText, PromptText, PromptText}, in.prompts)
}

func TestControllerReadErrorCancels(t *testing.T) {
	in := &scriptedReader{} // immediately exhausted
	c := newController(in, func(string) {})
	assert.True(t, pauseOutcome(c))
}

func TestControllerReset(t *testing.T) {
	c := newController(&scriptedReader{}, func(string) {})
	c.fastForward = true
	c.reset()
	assert.False(t, c.fastForward)
}
