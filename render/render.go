// Package render draws search grids for terminals and text transports.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/wricardo/mcp-training/astar/pathfind/engine"
)

// StatusSource is anything that exposes cell statuses, such as *engine.Grid
// or engine.StatusMatrix.
type StatusSource interface {
	Rows() int
	Cols() int
	Status(p engine.Point) engine.Status
}

// Mode selects colored or plain output
type Mode int

const (
	ModeAuto Mode = iota
	ModeColor
	ModePlain
)

// ParseMode maps the --color flag values auto, always and never to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return ModeAuto, nil
	case "always", "color":
		return ModeColor, nil
	case "never", "plain":
		return ModePlain, nil
	}
	return ModeAuto, fmt.Errorf("unknown color mode %q (want auto, always or never)", s)
}

// Cell colors match the classic terminal palette
var (
	ColorUnvisited   = lipgloss.Color("1") // red
	ColorExpanded    = lipgloss.Color("3") // yellow
	ColorOnPath      = lipgloss.Color("2") // green
	ColorDestination = lipgloss.Color("4") // blue
	ColorBlocked     = lipgloss.Color("7") // white
)

const colorGlyph = "X"

var glyphs = map[engine.Status]string{
	engine.Unvisited:     ".",
	engine.Blocked:       "#",
	engine.Expanded:      "o",
	engine.OnPath:        "*",
	engine.IsDestination: "D",
}

// statusOrder fixes the legend order
var statusOrder = []engine.Status{
	engine.Unvisited,
	engine.Blocked,
	engine.Expanded,
	engine.OnPath,
	engine.IsDestination,
}

// Glyph returns the plain-text symbol for a status
func Glyph(s engine.Status) string {
	if g, ok := glyphs[s]; ok {
		return g
	}
	return "?"
}

// Renderer draws grids to one output
type Renderer struct {
	out    io.Writer
	color  bool
	styles map[engine.Status]lipgloss.Style
}

// New creates a renderer for w. ModeAuto enables color only when w is a
// terminal and NO_COLOR is unset.
func New(w io.Writer, mode Mode) *Renderer {
	color := false
	switch mode {
	case ModeColor:
		color = true
	case ModeAuto:
		color = isTerminal(w) && os.Getenv("NO_COLOR") == ""
	}

	r := &Renderer{out: w, color: color}
	if color {
		lr := lipgloss.NewRenderer(w)
		lr.SetColorProfile(termenv.ANSI)
		r.styles = map[engine.Status]lipgloss.Style{
			engine.Unvisited:     lr.NewStyle().Foreground(ColorUnvisited),
			engine.Blocked:       lr.NewStyle().Foreground(ColorBlocked),
			engine.Expanded:      lr.NewStyle().Foreground(ColorExpanded),
			engine.OnPath:        lr.NewStyle().Foreground(ColorOnPath),
			engine.IsDestination: lr.NewStyle().Foreground(ColorDestination),
		}
	}
	return r
}

// Color reports whether the renderer emits ANSI colors
func (r *Renderer) Color() bool {
	return r.color
}

// Writer returns the renderer's output
func (r *Renderer) Writer() io.Writer {
	return r.out
}

// Render returns one line per row, each terminated by a newline.
func (r *Renderer) Render(src StatusSource) string {
	var b strings.Builder
	cells := make([]string, src.Cols())

	for x := 0; x < src.Rows(); x++ {
		for y := 0; y < src.Cols(); y++ {
			cells[y] = r.cell(src.Status(engine.Point{X: x, Y: y}))
		}
		b.WriteString(strings.Join(cells, " "))
		b.WriteByte('\n')
	}
	return b.String()
}

// Print writes the rendered grid to the renderer's output
func (r *Renderer) Print(src StatusSource) error {
	_, err := io.WriteString(r.out, r.Render(src))
	return err
}

// Legend explains every cell symbol on a single line
func (r *Renderer) Legend() string {
	parts := make([]string, 0, len(statusOrder))
	for _, s := range statusOrder {
		parts = append(parts, fmt.Sprintf("%s %s", r.cell(s), strings.ReplaceAll(s.String(), "_", " ")))
	}
	return strings.Join(parts, "  ")
}

func (r *Renderer) cell(s engine.Status) string {
	if !r.color {
		return Glyph(s)
	}
	style, ok := r.styles[s]
	if !ok {
		return colorGlyph
	}
	return style.Render(colorGlyph)
}

// Plain renders src with glyphs and no color
func Plain(src StatusSource) string {
	return (&Renderer{}).Render(src)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
