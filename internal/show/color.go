package show

import (
	"github.com/lightdance/showcompiler/internal/db"
	"github.com/lightdance/showcompiler/internal/showfile"
)

// DefaultAlphaMax is the opacity that leaves a color unscaled.
const DefaultAlphaMax = 255

// RGBA is an authored color with its opacity. Channels are 0..255; A is
// 0..alphaMax.
type RGBA struct {
	R, G, B, A int
}

// Palette maps color ids to RGB. A missing or nil id is black.
type Palette map[int]RGBA

// NewPalette indexes colors by id. Alpha is left at zero.
func NewPalette(colors []db.Color) Palette {
	p := make(Palette, len(colors))
	for _, c := range colors {
		p[c.ID] = RGBA{R: c.R, G: c.G, B: c.B}
	}
	return p
}

// With resolves id and attaches alpha.
func (p Palette) With(id *int, alpha int) RGBA {
	var c RGBA
	if id != nil {
		c = p[*id]
	}
	c.A = alpha
	return c
}

// Composite scales c by its alpha as a fraction of alphaMax, truncating.
// Alpha 0 gives black and alpha alphaMax leaves c unchanged.
func Composite(c RGBA, alphaMax int) showfile.Pixel {
	if alphaMax <= 0 {
		alphaMax = DefaultAlphaMax
	}
	a := clamp(c.A, 0, alphaMax)
	return showfile.Pixel{
		R: uint8(clamp(c.R*a/alphaMax, 0, 255)),
		G: uint8(clamp(c.G*a/alphaMax, 0, 255)),
		B: uint8(clamp(c.B*a/alphaMax, 0, 255)),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
