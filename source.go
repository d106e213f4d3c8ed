// source.go — loaded script sources ("units").
//
// A unit identifies where a function came from; the visualizer filters trace
// events by unit and renders source windows from it.
package stepscript

import (
	"fmt"
	"os"
	"strings"
)

// Unit is one loaded script source.
type Unit struct {
	Name string // display name, usually the file path
	Src  string

	lines []string
}

// NewUnit wraps a source string.
func NewUnit(name, src string) *Unit {
	return &Unit{Name: name, Src: src, lines: strings.Split(src, "\n")}
}

// LoadUnit reads a script file from disk.
func LoadUnit(path string) (*Unit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load script: %w", err)
	}
	return NewUnit(path, string(data)), nil
}

// LineCount is the number of source lines.
func (u *Unit) LineCount() int { return len(u.lines) }

// Line returns the 1-based source line without its trailing newline.
func (u *Unit) Line(n int) (string, bool) {
	if n < 1 || n > len(u.lines) {
		return "", false
	}
	return strings.TrimRight(u.lines[n-1], "\r"), true
}
