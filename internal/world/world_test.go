package world

import (
	"errors"
	"math/rand"
	"testing"
)

// newTestWorld builds a 2x2 grid of 17x9 maps with 60x60 tiles and a solid
// border with doors, similar to the bundled default world.
func newTestWorld() *World {
	w := &World{
		TileMapCountX: 2,
		TileMapCountY: 2,
		CountX:        17,
		CountY:        9,
		TileWidth:     60,
		TileHeight:    60,
	}
	for i := 0; i < 4; i++ {
		tiles := make([]uint32, 17*9)
		for y := int32(0); y < 9; y++ {
			for x := int32(0); x < 17; x++ {
				border := x == 0 || x == 16 || y == 0 || y == 8
				door := x == 8 || y == 4
				if border && !door {
					tiles[y*17+x] = TileSolid
				}
			}
		}
		w.TileMaps = append(w.TileMaps, TileMap{CountX: 17, CountY: 9, Tiles: tiles})
	}
	return w
}

func TestValidate(t *testing.T) {
	w := newTestWorld()
	if err := w.Validate(); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(w *World)
	}{
		{"zero tile width", func(w *World) { w.TileWidth = 0 }},
		{"missing tile map", func(w *World) { w.TileMaps = w.TileMaps[:3] }},
		{"mismatched map size", func(w *World) { w.TileMaps[1].CountX = 10 }},
		{"short tile slice", func(w *World) { w.TileMaps[2].Tiles = w.TileMaps[2].Tiles[:5] }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := newTestWorld()
			tc.mutate(w)
			if err := w.Validate(); !errors.Is(err, ErrInvalidWorld) {
				t.Errorf("Validate() = %v, expected ErrInvalidWorld", err)
			}
		})
	}
}

func TestCanonicalizeWrapsLeft(t *testing.T) {
	w := newTestWorld()

	pos := Canonicalize(w, RawPosition{TileMapX: 0, TileMapY: 0, X: -0.001, Y: 0})

	if pos.TileMapX != -1 {
		t.Errorf("TileMapX = %d, expected -1", pos.TileMapX)
	}
	if pos.TileX != 16 {
		t.Errorf("TileX = %d, expected 16", pos.TileX)
	}
	if pos.TileY != 0 || pos.TileMapY != 0 {
		t.Errorf("vertical address changed: %v", pos)
	}
	if pos.X < 59.99 || pos.X >= 60 {
		t.Errorf("X = %v, expected just under 60", pos.X)
	}
}

func TestCanonicalizeCases(t *testing.T) {
	w := newTestWorld()

	tests := []struct {
		name     string
		raw      RawPosition
		expected WorldPosition
	}{
		{
			name:     "origin",
			raw:      RawPosition{X: 0, Y: 0},
			expected: WorldPosition{},
		},
		{
			name:     "inside second tile",
			raw:      RawPosition{X: 90, Y: 30},
			expected: WorldPosition{TileX: 1, TileY: 0, X: 30, Y: 30},
		},
		{
			name:     "wrap right",
			raw:      RawPosition{TileMapX: 0, X: 17*60 + 5, Y: 10},
			expected: WorldPosition{TileMapX: 1, TileX: 0, X: 5, Y: 10},
		},
		{
			name:     "wrap down",
			raw:      RawPosition{TileMapY: 0, X: 10, Y: 9*60 + 1},
			expected: WorldPosition{TileMapY: 1, TileY: 0, X: 10, Y: 1},
		},
		{
			name:     "wrap up",
			raw:      RawPosition{TileMapY: 1, X: 10, Y: -30},
			expected: WorldPosition{TileMapY: 0, TileY: 8, X: 10, Y: 30},
		},
		{
			name:     "exact tile edge belongs to next tile",
			raw:      RawPosition{X: 120, Y: 60},
			expected: WorldPosition{TileX: 2, TileY: 1, X: 0, Y: 0},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Canonicalize(w, tc.raw)
			if got != tc.expected {
				t.Errorf("Canonicalize(%+v) = %v, expected %v", tc.raw, got, tc.expected)
			}
		})
	}
}

func TestCanonicalizeUpperLeftOffset(t *testing.T) {
	w := newTestWorld()
	w.UpperLeftX = -30

	// With the grid shifted left by half a tile, x=0 sits in the middle of
	// tile 0.
	got := Canonicalize(w, RawPosition{X: 0, Y: 0})
	if got.TileX != 0 || got.X != 30 {
		t.Errorf("Canonicalize() = %v, expected tile 0 offset 30", got)
	}
}

func TestCanonicalizeOffsetInvariant(t *testing.T) {
	w := newTestWorld()
	w.UpperLeftX = -30
	rng := rand.New(rand.NewSource(1))

	check := func(raw RawPosition) {
		pos := Canonicalize(w, raw)
		if pos.X < 0 || pos.X >= w.TileWidth {
			t.Fatalf("Canonicalize(%+v).X = %v outside [0, %v)", raw, pos.X, w.TileWidth)
		}
		if pos.Y < 0 || pos.Y >= w.TileHeight {
			t.Fatalf("Canonicalize(%+v).Y = %v outside [0, %v)", raw, pos.Y, w.TileHeight)
		}
		if pos.TileX < 0 || pos.TileX >= w.CountX || pos.TileY < 0 || pos.TileY >= w.CountY {
			t.Fatalf("Canonicalize(%+v) tile out of map: %v", raw, pos)
		}
	}

	for i := 0; i < 20000; i++ {
		check(RawPosition{
			TileMapX: int32(rng.Intn(3)) - 1,
			TileMapY: int32(rng.Intn(3)) - 1,
			X:        (rng.Float64()*2.9 - 0.95) * 17 * 60,
			Y:        (rng.Float64()*2.9 - 0.95) * 9 * 60,
		})
	}

	// Values that sit on or next to tile edges.
	edges := []float64{-1e-300, -1e-12, -0.001, 0, 1e-12, 59.999999999999, 60, 60 - 1e-13, -60, -60 + 1e-13}
	for _, x := range edges {
		for _, y := range edges {
			check(RawPosition{X: x, Y: y})
		}
	}
}

func TestRawRoundTrip(t *testing.T) {
	w := newTestWorld()
	w.UpperLeftX = -30

	raw := RawPosition{TileMapX: 1, TileMapY: 0, X: 150.5, Y: 200.25}
	pos := Canonicalize(w, raw)
	back := pos.Raw(w)

	if back != raw {
		t.Errorf("Raw() = %+v, expected %+v", back, raw)
	}
}

func TestIsPointEmpty(t *testing.T) {
	w := newTestWorld()

	tests := []struct {
		name     string
		raw      RawPosition
		expected bool
	}{
		{"open floor", RawPosition{X: 2*60 + 30, Y: 2*60 + 30}, true},
		{"border wall", RawPosition{X: 30, Y: 30}, false},
		{"door gap in top wall", RawPosition{X: 8*60 + 30, Y: 30}, true},
		{"into right neighbour map", RawPosition{TileMapX: 0, X: 17*60 + 2*60, Y: 2*60 + 30}, true},
		{"left of grid", RawPosition{TileMapX: 0, X: -10, Y: 4*60 + 30}, false},
		{"above grid", RawPosition{TileMapY: 0, X: 8*60 + 30, Y: -10}, false},
		{"map index outside grid", RawPosition{TileMapX: 5, TileMapY: 0, X: 120, Y: 120}, false},
		{"negative map index", RawPosition{TileMapX: -3, TileMapY: -3, X: 120, Y: 120}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsPointEmpty(w, tc.raw); got != tc.expected {
				t.Errorf("IsPointEmpty(%+v) = %v, expected %v", tc.raw, got, tc.expected)
			}
		})
	}
}

func TestIsPointEmptyOutsideGridAlwaysSolid(t *testing.T) {
	w := newTestWorld()
	// Every map in the grid is fully empty; only the grid bound can block.
	for i := range w.TileMaps {
		clear(w.TileMaps[i].Tiles)
	}

	for mx := int32(-2); mx <= 3; mx++ {
		for my := int32(-2); my <= 3; my++ {
			inside := mx >= 0 && mx < 2 && my >= 0 && my < 2
			got := IsPointEmpty(w, RawPosition{TileMapX: mx, TileMapY: my, X: 300, Y: 200})
			if got != inside {
				t.Errorf("IsPointEmpty(map %d,%d) = %v, expected %v", mx, my, got, inside)
			}
		}
	}
}

func TestCanMoveTo(t *testing.T) {
	w := newTestWorld()

	// Tile (1,1) is open; (0,1) is wall.
	center := RawPosition{X: 60 + 40, Y: 60 + 30}

	if !CanMoveTo(w, center, 10) {
		t.Error("player fully inside open tile should be able to move")
	}
	if CanMoveTo(w, center.Offset(-35, 0), 10) {
		t.Error("left edge overlapping the wall should block")
	}
	if !CanMoveTo(w, center.Offset(-30, 0), 10) {
		t.Error("left edge exactly on the tile boundary is still inside the open tile")
	}
}

func TestTileMapLookup(t *testing.T) {
	w := newTestWorld()

	if w.TileMap(1, 1) == nil {
		t.Fatal("TileMap(1, 1) should exist")
	}
	if w.TileMap(2, 0) != nil || w.TileMap(0, -1) != nil {
		t.Error("TileMap outside the grid should be nil")
	}

	m := w.TileMap(0, 0)
	if v, ok := m.Tile(0, 0); !ok || v != TileSolid {
		t.Errorf("Tile(0, 0) = %d, %v; expected solid", v, ok)
	}
	if _, ok := m.Tile(17, 0); ok {
		t.Error("Tile(17, 0) should be out of range")
	}

	var nilMap *TileMap
	if _, ok := nilMap.Tile(0, 0); ok {
		t.Error("nil map lookups should fail")
	}
}
