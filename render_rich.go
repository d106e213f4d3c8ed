// render_rich.go — full-screen panel renderer built on lipgloss.
//
// Each event repaints the whole screen: a header bar, a bordered code panel
// with the current line highlighted, a variables panel (watch list on top),
// and a controls footer. The renderer owns no interpreter state; it draws
// whatever the Snapshot says.
package stepscript

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// clearScreen homes the cursor and erases the display before each repaint.
const clearScreen = "\x1b[H\x1b[2J"

const codePanelWidth = 72

// richTheme bundles the palette for one named theme.
type richTheme struct {
	header    lipgloss.Style
	border    lipgloss.Color
	lineno    lipgloss.Style
	current   lipgloss.Style
	marker    lipgloss.Style
	section   lipgloss.Style
	watchName lipgloss.Style
	localName lipgloss.Style
	value     lipgloss.Style
	footer    lipgloss.Style
}

var richThemes = map[string]richTheme{
	"monokai": {
		header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F8F8F2")).Background(lipgloss.Color("#403E41")).Padding(0, 1),
		border:    lipgloss.Color("#75715E"),
		lineno:    lipgloss.NewStyle().Foreground(lipgloss.Color("#75715E")),
		current:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#272822")).Background(lipgloss.Color("#E6DB74")),
		marker:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F92672")),
		section:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#66D9EF")),
		watchName: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A6E22E")),
		localName: lipgloss.NewStyle().Foreground(lipgloss.Color("#F8F8F2")),
		value:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FD971F")),
		footer:    lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color("#75715E")),
	},
	"plain": {
		header:    lipgloss.NewStyle().Bold(true).Padding(0, 1),
		border:    lipgloss.Color(""),
		lineno:    lipgloss.NewStyle(),
		current:   lipgloss.NewStyle().Bold(true).Reverse(true),
		marker:    lipgloss.NewStyle().Bold(true),
		section:   lipgloss.NewStyle().Bold(true),
		watchName: lipgloss.NewStyle().Bold(true),
		localName: lipgloss.NewStyle(),
		value:     lipgloss.NewStyle(),
		footer:    lipgloss.NewStyle().Faint(true),
	},
}

// themeNamed resolves a theme name, defaulting to monokai for unknown names.
func themeNamed(name string) richTheme {
	if t, ok := richThemes[name]; ok {
		return t
	}
	return richThemes["monokai"]
}

// RichRenderer paints one lipgloss screen per event.
type RichRenderer struct {
	w     io.Writer
	ctx   int
	theme richTheme
	unit  *Unit
}

// NewRichRenderer creates a screen renderer for the given settings.
func NewRichRenderer(settings Settings, w io.Writer) *RichRenderer {
	return &RichRenderer{
		w:     w,
		ctx:   settings.ContextLines,
		theme: themeNamed(settings.Theme),
	}
}

func (r *RichRenderer) Begin(u *Unit) { r.unit = u }

func (r *RichRenderer) Render(s *Snapshot) {
	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(r.theme.border).
		Padding(0, 1)

	code := panel.Width(codePanelWidth).Render(r.codePanel(s.Line))
	vars := panel.Render(r.varsPanel(s))
	screen := lipgloss.JoinVertical(lipgloss.Left,
		r.headerBar(s),
		lipgloss.JoinHorizontal(lipgloss.Top, code, vars),
		r.theme.footer.Render(PromptText),
	)
	fmt.Fprint(r.w, clearScreen+screen+"\n")
}

func (r *RichRenderer) Notify(msg string) {
	fmt.Fprintln(r.w, r.theme.marker.Render(msg))
}

func (r *RichRenderer) Close() error {
	// leave the last frame on screen; just drop to a fresh line
	_, err := fmt.Fprintln(r.w)
	return err
}

func (r *RichRenderer) headerBar(s *Snapshot) string {
	h := fmt.Sprintf("[%s] %s (line %d)", s.Label, s.FuncName, s.DisplayLine)
	if s.Details != "" {
		h += " " + s.Details
	}
	return r.theme.header.Render(h)
}

func (r *RichRenderer) codePanel(lineno int) string {
	if r.unit == nil {
		return "<source unavailable>"
	}
	start := lineno - r.ctx
	if start < 1 {
		start = 1
	}
	var rows []string
	for i := start; i <= lineno+r.ctx; i++ {
		raw, ok := r.unit.Line(i)
		if !ok {
			continue
		}
		num := fmt.Sprintf("%4d", i)
		if i == lineno {
			rows = append(rows, r.theme.marker.Render("->")+" "+r.theme.lineno.Render(num)+" "+r.theme.current.Render(raw))
		} else {
			rows = append(rows, "   "+r.theme.lineno.Render(num)+" "+raw)
		}
	}
	return strings.Join(rows, "\n")
}

func (r *RichRenderer) varsPanel(s *Snapshot) string {
	var rows []string
	if len(s.Watch) > 0 {
		rows = append(rows, r.theme.section.Render("Watch"))
		for _, b := range s.Watch {
			rows = append(rows, "  "+r.theme.watchName.Render(b.Name)+" = "+r.theme.value.Render(b.Repr))
		}
	}
	if len(s.Locals) > 0 {
		rows = append(rows, r.theme.section.Render("Locals"))
		for _, b := range s.Locals {
			rows = append(rows, "  "+r.theme.localName.Render(b.Name)+" = "+r.theme.value.Render(b.Repr))
		}
	}
	if len(rows) == 0 {
		return r.theme.footer.Render("(no locals)")
	}
	return strings.Join(rows, "\n")
}
