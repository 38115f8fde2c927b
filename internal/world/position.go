package world

import (
	"fmt"

	"github.com/vovakirdan/handmade/internal/core"
)

// RawPosition is a point relative to the origin of tile map
// (TileMapX, TileMapY). X and Y may lie outside that map's extent.
type RawPosition struct {
	TileMapX int32
	TileMapY int32
	X        float64
	Y        float64
}

// WorldPosition is the canonical form of a position: a tile map, a tile
// within it, and the offset inside that tile with 0 <= X < TileWidth and
// 0 <= Y < TileHeight. Only Canonicalize produces these.
type WorldPosition struct {
	TileMapX int32
	TileMapY int32
	TileX    int32
	TileY    int32
	X        float64
	Y        float64
}

// String formats the position for logs.
func (p WorldPosition) String() string {
	return fmt.Sprintf("map(%d,%d) tile(%d,%d) +(%.3f,%.3f)", p.TileMapX, p.TileMapY, p.TileX, p.TileY, p.X, p.Y)
}

// Canonicalize maps a raw position to its tile address.
//
// The tile index is floored, not truncated, so a point just left of the
// origin lands in the last tile of the neighbouring map. At most one tile-map
// transition is made per axis; a raw position more than a full map away from
// its own map is not fully resolved.
func Canonicalize(w *World, raw RawPosition) WorldPosition {
	pos := WorldPosition{
		TileMapX: raw.TileMapX,
		TileMapY: raw.TileMapY,
	}

	pos.TileX, pos.X = canonicalizeAxis(raw.X-w.UpperLeftX, w.TileWidth)
	pos.TileY, pos.Y = canonicalizeAxis(raw.Y-w.UpperLeftY, w.TileHeight)

	core.Assert(pos.X >= 0 && pos.X < w.TileWidth, "canonical x offset out of tile")
	core.Assert(pos.Y >= 0 && pos.Y < w.TileHeight, "canonical y offset out of tile")

	if pos.TileX < 0 {
		pos.TileX += w.CountX
		pos.TileMapX--
	} else if pos.TileX >= w.CountX {
		pos.TileX -= w.CountX
		pos.TileMapX++
	}

	if pos.TileY < 0 {
		pos.TileY += w.CountY
		pos.TileMapY--
	} else if pos.TileY >= w.CountY {
		pos.TileY -= w.CountY
		pos.TileMapY++
	}

	return pos
}

// canonicalizeAxis splits a coordinate into a floored tile index and the
// remaining offset inside that tile.
func canonicalizeAxis(rel, size float64) (int32, float64) {
	tile := core.FloorToInt32(rel / size)
	offset := rel - float64(tile)*size

	// rel/size can round onto an integer the true quotient never reaches,
	// leaving the offset a hair outside [0, size).
	if offset < 0 {
		offset += size
		tile--
	}
	if offset >= size {
		offset -= size
		tile++
	}
	if offset < 0 {
		offset = 0
	}
	return tile, offset
}

// Raw converts a canonical position back to a raw position relative to the
// origin of its own tile map.
func (p WorldPosition) Raw(w *World) RawPosition {
	return RawPosition{
		TileMapX: p.TileMapX,
		TileMapY: p.TileMapY,
		X:        w.UpperLeftX + float64(p.TileX)*w.TileWidth + p.X,
		Y:        w.UpperLeftY + float64(p.TileY)*w.TileHeight + p.Y,
	}
}

// Offset returns the raw position displaced by (dx, dy).
func (r RawPosition) Offset(dx, dy float64) RawPosition {
	r.X += dx
	r.Y += dy
	return r
}
