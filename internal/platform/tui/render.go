package tui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/handmade/internal/core"
)

// halfBlock draws the top pixel in the foreground and the bottom one in the
// background, so each terminal cell shows two pixel rows.
const halfBlock = "▀"

// Cell is one terminal cell: two vertically stacked pixels.
type Cell struct {
	Top    core.Color
	Bottom core.Color
}

// Downsample picks the nearest pixel for each half of each cell of a
// cols x rows grid covering the whole buffer.
func Downsample(buf *core.PixelBuffer, cols, rows int) [][]Cell {
	if cols <= 0 || rows <= 0 || buf.Width() == 0 || buf.Height() == 0 {
		return nil
	}
	w, h := buf.Width(), buf.Height()
	out := make([][]Cell, rows)
	for r := range out {
		line := make([]Cell, cols)
		topY := (2 * r) * h / (2 * rows)
		botY := (2*r + 1) * h / (2 * rows)
		for c := range line {
			x := c * w / cols
			line[c] = Cell{Top: buf.At(x, topY), Bottom: buf.At(x, botY)}
		}
		out[r] = line
	}
	return out
}

func hexColor(c core.Color) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R(), c.G(), c.B()))
}

// styleCache keeps one lipgloss style per colour pair.
type styleCache map[Cell]lipgloss.Style

const maxCachedStyles = 4096

func (sc styleCache) get(c Cell) lipgloss.Style {
	if s, ok := sc[c]; ok {
		return s
	}
	if len(sc) >= maxCachedStyles {
		clear(sc)
	}
	s := lipgloss.NewStyle().Foreground(hexColor(c.Top)).Background(hexColor(c.Bottom))
	sc[c] = s
	return s
}

// renderCells converts cells to a styled string.
// Groups adjacent cells with the same colours to minimize ANSI escape sequences.
func renderCells(cells [][]Cell, styles styleCache) string {
	var sb strings.Builder
	for y, line := range cells {
		if y > 0 {
			sb.WriteByte('\n')
		}
		x := 0
		for x < len(line) {
			start := line[x]
			n := 0
			for x < len(line) && line[x] == start {
				n++
				x++
			}
			sb.WriteString(styles.get(start).Render(strings.Repeat(halfBlock, n)))
		}
	}
	return sb.String()
}

// Presenter renders frames into a string for the Bubble Tea view. Present
// runs on the engine's goroutine and View on the program's, so the finished
// frame is handed over under a mutex.
type Presenter struct {
	mu     sync.Mutex
	cols   int
	rows   int
	frame  string
	styles styleCache
}

// NewPresenter creates a presenter for a terminal of cols x rows cells.
func NewPresenter(cols, rows int) *Presenter {
	return &Presenter{cols: cols, rows: rows, styles: make(styleCache)}
}

// Resize sets the cell grid used by the next Present.
func (p *Presenter) Resize(cols, rows int) {
	p.mu.Lock()
	p.cols, p.rows = cols, rows
	p.mu.Unlock()
}

// Present downsamples buf and renders it.
func (p *Presenter) Present(buf *core.PixelBuffer) error {
	p.mu.Lock()
	cols, rows := p.cols, p.rows
	p.mu.Unlock()

	// The style cache is only touched here, on the engine goroutine.
	frame := renderCells(Downsample(buf, cols, rows), p.styles)

	p.mu.Lock()
	p.frame = frame
	p.mu.Unlock()
	return nil
}

// Frame returns the most recently rendered frame.
func (p *Presenter) Frame() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frame
}
