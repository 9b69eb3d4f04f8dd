package show

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/interp"
)

// Stop is one explicitly authored LED position.
type Stop struct {
	Position int
	Color    RGBA
}

// Gradient is a full-length strip where only Stops were authored. Unset slots
// hold the seed, which is the color of the lowest-positioned stop.
type Gradient struct {
	Colors []RGBA
	// Stops are the explicit positions in ascending order, without duplicates.
	Stops []int
}

// gradientBuilder collects stops and then builds a Gradient in two passes:
// the first validates positions and picks the seed, the second fills the
// strip with the seed and punches every stop.
type gradientBuilder struct {
	length int
	stops  []Stop
}

func newGradientBuilder(length int) *gradientBuilder {
	return &gradientBuilder{length: length}
}

func (b *gradientBuilder) add(position int, c RGBA) {
	b.stops = append(b.stops, Stop{Position: position, Color: c})
}

func (b *gradientBuilder) build() (Gradient, error) {
	if len(b.stops) == 0 {
		return Gradient{}, inconsistent("gradient has no stops")
	}

	ordered := make([]Stop, len(b.stops))
	copy(ordered, b.stops)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})
	for _, s := range ordered {
		if s.Position < 0 || s.Position >= b.length {
			return Gradient{}, inconsistent(fmt.Sprintf("LED position %d out of bounds for length %d", s.Position, b.length))
		}
	}
	seed := ordered[0].Color

	g := Gradient{Colors: make([]RGBA, b.length)}
	for i := range g.Colors {
		g.Colors[i] = seed
	}
	for _, s := range ordered {
		g.Colors[s.Position] = s.Color
		if n := len(g.Stops); n == 0 || g.Stops[n-1] != s.Position {
			g.Stops = append(g.Stops, s.Position)
		}
	}
	return g, nil
}

// Interpolate blends linearly, in LED index space, between the explicit stops
// of g. r, g, b and alpha are interpolated independently and rounded. Slots
// before the first stop repeat it, as do slots after the last.
func Interpolate(g Gradient) ([]RGBA, error) {
	out := make([]RGBA, len(g.Colors))
	switch len(g.Stops) {
	case 0:
		copy(out, g.Colors)
		return out, nil
	case 1:
		c := g.Colors[g.Stops[0]]
		for i := range out {
			out[i] = c
		}
		return out, nil
	}

	xs := make([]float64, len(g.Stops))
	for i, p := range g.Stops {
		xs[i] = float64(p)
	}

	channels := [4]func(*RGBA) *int{
		func(c *RGBA) *int { return &c.R },
		func(c *RGBA) *int { return &c.G },
		func(c *RGBA) *int { return &c.B },
		func(c *RGBA) *int { return &c.A },
	}
	ys := make([]float64, len(g.Stops))
	for _, ch := range channels {
		for i, p := range g.Stops {
			stop := g.Colors[p]
			ys[i] = float64(*ch(&stop))
		}
		var pl interp.PiecewiseLinear
		if err := pl.Fit(xs, ys); err != nil {
			return nil, fmt.Errorf("fit gradient: %w", err)
		}
		for i := range out {
			*ch(&out[i]) = int(math.Round(pl.Predict(float64(i))))
		}
	}
	return out, nil
}
