package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/handmade/internal/world"
)

// WorldConfig describes a tile world in YAML.
type WorldConfig struct {
	TileWidth  float64 `yaml:"tile_width"`
	TileHeight float64 `yaml:"tile_height"`
	UpperLeftX float64 `yaml:"upper_left_x"`
	UpperLeftY float64 `yaml:"upper_left_y"`
	TilesX     int32   `yaml:"tiles_x"`
	TilesY     int32   `yaml:"tiles_y"`
	MapsX      int32   `yaml:"maps_x"`
	MapsY      int32   `yaml:"maps_y"`

	// Maps lists every tile map row-major; each map is TilesY strings of
	// TilesX characters.
	Maps [][]string `yaml:"maps"`
}

// Build converts the description into a validated world.
func (c WorldConfig) Build() (*world.World, error) {
	w := world.World{
		TileMapCountX: c.MapsX,
		TileMapCountY: c.MapsY,
		CountX:        c.TilesX,
		CountY:        c.TilesY,
		UpperLeftX:    c.UpperLeftX,
		UpperLeftY:    c.UpperLeftY,
		TileWidth:     c.TileWidth,
		TileHeight:    c.TileHeight,
	}

	for i, rows := range c.Maps {
		if len(rows) != int(c.TilesY) {
			return nil, fmt.Errorf("%w: map %d has %d rows, expected %d", ErrInvalidConfig, i, len(rows), c.TilesY)
		}
		tiles := make([]uint32, 0, int(c.TilesX)*int(c.TilesY))
		for y, row := range rows {
			if len(row) != int(c.TilesX) {
				return nil, fmt.Errorf("%w: map %d row %d has %d tiles, expected %d", ErrInvalidConfig, i, y, len(row), c.TilesX)
			}
			for x := 0; x < len(row); x++ {
				code, err := tileCode(row[x])
				if err != nil {
					return nil, fmt.Errorf("%w: map %d row %d col %d: %v", ErrInvalidConfig, i, y, x, err)
				}
				tiles = append(tiles, code)
			}
		}
		w.TileMaps = append(w.TileMaps, world.TileMap{
			CountX: c.TilesX,
			CountY: c.TilesY,
			Tiles:  tiles,
		})
	}

	built, err := world.NewWorld(w)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return built, nil
}

func tileCode(ch byte) (uint32, error) {
	switch {
	case ch == '.' || ch == ' ':
		return world.TileEmpty, nil
	case ch == '#':
		return world.TileSolid, nil
	case ch >= '0' && ch <= '9':
		return uint32(ch - '0'), nil
	default:
		return 0, fmt.Errorf("unknown tile %q", ch)
	}
}

// DefaultWorld builds the embedded world, ignoring any files on disk.
func DefaultWorld() (*world.World, error) {
	var cfg WorldConfig
	if err := yaml.Unmarshal(defaultWorldYAML, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse embedded world.yaml: %w", err)
	}
	return cfg.Build()
}
