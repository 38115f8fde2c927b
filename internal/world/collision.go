package world

// TileValue returns the tile code at a canonical position.
// ok is false when the tile map or tile is outside the world.
func TileValue(w *World, pos WorldPosition) (value uint32, ok bool) {
	m := w.TileMap(pos.TileMapX, pos.TileMapY)
	if m == nil {
		return 0, false
	}
	return m.Tile(pos.TileX, pos.TileY)
}

// IsPointEmpty reports whether a raw position lies on an empty tile.
// Anything outside the world counts as solid so nothing walks off the edge.
func IsPointEmpty(w *World, raw RawPosition) bool {
	value, ok := TileValue(w, Canonicalize(w, raw))
	if !ok {
		return false
	}
	return value == TileEmpty
}

// CanMoveTo applies the player collision policy: the centre point and the
// left and right edges at the new position must all be empty. Vertical
// extent is not sampled.
func CanMoveTo(w *World, raw RawPosition, halfWidth float64) bool {
	return IsPointEmpty(w, raw) &&
		IsPointEmpty(w, raw.Offset(-halfWidth, 0)) &&
		IsPointEmpty(w, raw.Offset(halfWidth, 0))
}
