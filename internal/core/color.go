package core

// Color is a packed pixel value laid out as 0xXXRRGGBB.
// Stored little-endian this puts blue in the lowest byte of memory.
type Color uint32

// Predefined colors used by the bundled modules.
const (
	ColorBlack     Color = 0x00000000
	ColorWhite     Color = 0x00FFFFFF
	ColorGray      Color = 0x00808080
	ColorDarkGray  Color = 0x00404040
	ColorRed       Color = 0x00FF0000
	ColorGreen     Color = 0x0000FF00
	ColorBlue      Color = 0x000000FF
	ColorYellow    Color = 0x00FFFF00
	ColorMagenta   Color = 0x00FF00FF
	ColorCyan      Color = 0x0000FFFF
	ColorOrange    Color = 0x00FF8000
	ColorBackdrop  Color = 0x00FF00FF
	ColorPlayer    Color = 0x00FFFF00
	ColorTileSolid Color = 0x00FFFFFF
	ColorTileEmpty Color = 0x00808080
)

// RGB packs 8-bit channels into a Color.
func RGB(r, g, b uint8) Color {
	return Color(uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// RGBF packs normalized [0,1] channels into a Color, rounding to nearest.
func RGBF(r, g, b float64) Color {
	return RGB(
		uint8(RoundToInt32(ClampF(r, 0, 1)*255)),
		uint8(RoundToInt32(ClampF(g, 0, 1)*255)),
		uint8(RoundToInt32(ClampF(b, 0, 1)*255)),
	)
}

// R returns the red channel.
func (c Color) R() uint8 { return uint8(c >> 16) }

// G returns the green channel.
func (c Color) G() uint8 { return uint8(c >> 8) }

// B returns the blue channel.
func (c Color) B() uint8 { return uint8(c) }
