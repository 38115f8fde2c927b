// Package world implements the tile-world coordinate system: a grid of tile
// maps, canonicalization of continuous positions into tile addresses with
// wraparound between neighbouring maps, and occupancy queries for collision.
package world

import (
	"errors"
	"fmt"
)

// Tile codes.
const (
	TileEmpty uint32 = 0
	TileSolid uint32 = 1
)

// TileMap is one screen/room of the world: a CountX x CountY grid of tile
// codes stored row-major. The tile slice is borrowed, never copied.
type TileMap struct {
	CountX int32
	CountY int32
	Tiles  []uint32
}

// Tile returns the code at (x, y) and whether the coordinates were in range.
func (m *TileMap) Tile(x, y int32) (uint32, bool) {
	if m == nil || x < 0 || x >= m.CountX || y < 0 || y >= m.CountY {
		return 0, false
	}
	i := int(y)*int(m.CountX) + int(x)
	if i >= len(m.Tiles) {
		return 0, false
	}
	return m.Tiles[i], true
}

// World owns the grid of tile maps and the tile geometry they all share.
// Keeping the tile size here, not per map, guarantees the raw-to-tile math is
// identical for every map.
type World struct {
	TileMapCountX int32
	TileMapCountY int32

	// Tiles per map, identical for every map in the grid.
	CountX int32
	CountY int32

	// World-space origin of tile (0,0) relative to a tile map's origin.
	UpperLeftX float64
	UpperLeftY float64

	TileWidth  float64
	TileHeight float64

	TileMaps []TileMap // row-major, TileMapCountX x TileMapCountY
}

// ErrInvalidWorld is returned by Validate for inconsistent geometry.
var ErrInvalidWorld = errors.New("world: invalid world")

// Validate checks the invariants the coordinate math depends on.
func (w *World) Validate() error {
	if w.TileWidth <= 0 || w.TileHeight <= 0 {
		return fmt.Errorf("%w: tile size %vx%v must be positive", ErrInvalidWorld, w.TileWidth, w.TileHeight)
	}
	if w.CountX <= 0 || w.CountY <= 0 {
		return fmt.Errorf("%w: tile count %dx%d must be positive", ErrInvalidWorld, w.CountX, w.CountY)
	}
	if w.TileMapCountX <= 0 || w.TileMapCountY <= 0 {
		return fmt.Errorf("%w: tile map grid %dx%d must be positive", ErrInvalidWorld, w.TileMapCountX, w.TileMapCountY)
	}
	if len(w.TileMaps) != int(w.TileMapCountX*w.TileMapCountY) {
		return fmt.Errorf("%w: have %d tile maps, grid needs %d", ErrInvalidWorld, len(w.TileMaps), w.TileMapCountX*w.TileMapCountY)
	}
	for i := range w.TileMaps {
		m := &w.TileMaps[i]
		if m.CountX != w.CountX || m.CountY != w.CountY {
			return fmt.Errorf("%w: tile map %d is %dx%d, world uses %dx%d", ErrInvalidWorld, i, m.CountX, m.CountY, w.CountX, w.CountY)
		}
		if len(m.Tiles) != int(m.CountX*m.CountY) {
			return fmt.Errorf("%w: tile map %d has %d tiles, expected %d", ErrInvalidWorld, i, len(m.Tiles), m.CountX*m.CountY)
		}
	}
	return nil
}

// NewWorld validates w and returns a pointer to a copy of it.
func NewWorld(w World) (*World, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &w, nil
}

// TileMap returns the map at grid position (x, y), or nil when the position is
// outside the grid.
func (w *World) TileMap(x, y int32) *TileMap {
	if x < 0 || x >= w.TileMapCountX || y < 0 || y >= w.TileMapCountY {
		return nil
	}
	return &w.TileMaps[int(y)*int(w.TileMapCountX)+int(x)]
}

// TileRect returns the world-space rectangle covered by tile (x, y) of any map,
// relative to that map's origin.
func (w *World) TileRect(x, y int32) (minX, minY, maxX, maxY float64) {
	minX = w.UpperLeftX + float64(x)*w.TileWidth
	minY = w.UpperLeftY + float64(y)*w.TileHeight
	return minX, minY, minX + w.TileWidth, minY + w.TileHeight
}
