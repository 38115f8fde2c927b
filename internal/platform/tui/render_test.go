package tui

import (
	"strings"
	"testing"

	"github.com/vovakirdan/handmade/internal/core"
)

func TestDownsample(t *testing.T) {
	buf := core.NewPixelBuffer(4, 4)
	buf.Set(0, 0, core.ColorRed)
	buf.Set(0, 2, core.ColorBlue)
	buf.Set(2, 0, core.ColorGreen)
	buf.Set(2, 2, core.ColorWhite)

	cells := Downsample(buf, 2, 1)
	if len(cells) != 1 || len(cells[0]) != 2 {
		t.Fatalf("Downsample() shape = %dx%d, expected 1x2", len(cells), len(cells[0]))
	}

	expected := []Cell{
		{Top: core.ColorRed, Bottom: core.ColorBlue},
		{Top: core.ColorGreen, Bottom: core.ColorWhite},
	}
	for i, want := range expected {
		if cells[0][i] != want {
			t.Errorf("Downsample()[0][%d] = %+v, expected %+v", i, cells[0][i], want)
		}
	}
}

func TestDownsampleEmpty(t *testing.T) {
	tests := []struct {
		name       string
		w, h       int
		cols, rows int
	}{
		{"zero cols", 4, 4, 0, 2},
		{"zero rows", 4, 4, 2, 0},
		{"empty buffer", 0, 0, 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Downsample(core.NewPixelBuffer(tt.w, tt.h), tt.cols, tt.rows); got != nil {
				t.Errorf("Downsample() = %v, expected nil", got)
			}
		})
	}
}

func TestRenderCellsShape(t *testing.T) {
	buf := core.NewPixelBuffer(16, 16)
	buf.FillRect(core.NewRect(0, 0, 8, 16), core.ColorYellow)

	out := renderCells(Downsample(buf, 8, 4), make(styleCache))

	lines := strings.Split(out, "\n")
	if len(lines) != 4 {
		t.Fatalf("renderCells() has %d lines, expected 4", len(lines))
	}
	if n := strings.Count(out, halfBlock); n != 32 {
		t.Errorf("renderCells() draws %d half blocks, expected 32", n)
	}
}

func TestStyleCacheIsBounded(t *testing.T) {
	sc := make(styleCache)
	for i := 0; i < maxCachedStyles+10; i++ {
		sc.get(Cell{Top: core.Color(i)})
	}
	if len(sc) > maxCachedStyles {
		t.Errorf("len(styleCache) = %d, expected at most %d", len(sc), maxCachedStyles)
	}
}

func TestPresenterFrame(t *testing.T) {
	p := NewPresenter(10, 3)
	if p.Frame() != "" {
		t.Errorf("Frame() before Present = %q, expected empty", p.Frame())
	}

	buf := core.NewPixelBuffer(20, 12)
	if err := p.Present(buf); err != nil {
		t.Fatalf("Present() error = %v", err)
	}
	if n := strings.Count(p.Frame(), halfBlock); n != 30 {
		t.Errorf("Frame() has %d half blocks, expected 30", n)
	}

	p.Resize(4, 2)
	if err := p.Present(buf); err != nil {
		t.Fatalf("Present() error = %v", err)
	}
	if n := strings.Count(p.Frame(), halfBlock); n != 8 {
		t.Errorf("Frame() after Resize has %d half blocks, expected 8", n)
	}
}
