package show

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red   = RGBA{R: 255, A: 255}
	blue  = RGBA{B: 255, A: 255}
	white = RGBA{R: 255, G: 255, B: 255, A: 255}
)

func TestGradientBuilderSeedsWithFirstStop(t *testing.T) {
	t.Parallel()

	b := newGradientBuilder(6)
	b.add(4, blue)
	b.add(1, red)

	g, err := b.build()
	require.NoError(t, err)

	// Position 1 is the lowest stop, so its color fills every unset slot.
	assert.Equal(t, []RGBA{red, red, red, red, blue, red}, g.Colors)
	assert.Equal(t, []int{1, 4}, g.Stops)
}

func TestGradientBuilderLengthMatchesStrip(t *testing.T) {
	t.Parallel()

	for _, length := range []int{1, 8, 28, 255} {
		b := newGradientBuilder(length)
		b.add(0, white)
		g, err := b.build()
		require.NoError(t, err)
		assert.Len(t, g.Colors, length)
		for _, c := range g.Colors {
			assert.Equal(t, white, c)
		}
	}
}

func TestGradientBuilderDuplicatePositionLastWins(t *testing.T) {
	t.Parallel()

	b := newGradientBuilder(3)
	b.add(2, red)
	b.add(2, blue)

	g, err := b.build()
	require.NoError(t, err)
	assert.Equal(t, blue, g.Colors[2])
	assert.Equal(t, []int{2}, g.Stops)
}

func TestGradientBuilderOutOfBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		position int
	}{
		{"at length", 5},
		{"past length", 40},
		{"negative", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newGradientBuilder(5)
			b.add(0, red)
			b.add(tt.position, blue)
			_, err := b.build()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConsistency)
		})
	}
}

func TestGradientBuilderEmpty(t *testing.T) {
	t.Parallel()

	_, err := newGradientBuilder(4).build()
	assert.ErrorIs(t, err, ErrConsistency)
}

func TestInterpolateSingleStop(t *testing.T) {
	t.Parallel()

	b := newGradientBuilder(10)
	b.add(6, RGBA{R: 10, G: 20, B: 30, A: 40})
	g, err := b.build()
	require.NoError(t, err)

	out, err := Interpolate(g)
	require.NoError(t, err)
	require.Len(t, out, 10)
	for i, c := range out {
		assert.Equal(t, RGBA{R: 10, G: 20, B: 30, A: 40}, c, "position %d", i)
	}
}

func TestInterpolateTwoStopRamp(t *testing.T) {
	t.Parallel()

	const n = 28
	b := newGradientBuilder(n)
	b.add(0, white)
	b.add(n-1, RGBA{R: 255, A: 0})
	g, err := b.build()
	require.NoError(t, err)

	out, err := Interpolate(g)
	require.NoError(t, err)
	require.Len(t, out, n)

	assert.Equal(t, white, out[0])
	assert.Equal(t, RGBA{R: 255}, out[n-1])
	for i := 1; i < n; i++ {
		assert.Equal(t, 255, out[i].R)
		assert.LessOrEqual(t, out[i].G, out[i-1].G, "green rises at %d", i)
		assert.LessOrEqual(t, out[i].B, out[i-1].B, "blue rises at %d", i)
		assert.LessOrEqual(t, out[i].A, out[i-1].A, "alpha rises at %d", i)
	}
	// Halfway along 0..27 sits at 13.5; index 13 is 255*14/27 rounded.
	assert.Equal(t, 132, out[13].G)
}

func TestInterpolateHoldsEnds(t *testing.T) {
	t.Parallel()

	b := newGradientBuilder(8)
	b.add(2, RGBA{R: 100, A: 255})
	b.add(4, RGBA{R: 200, A: 255})
	g, err := b.build()
	require.NoError(t, err)

	out, err := Interpolate(g)
	require.NoError(t, err)

	got := make([]int, len(out))
	for i, c := range out {
		got[i] = c.R
	}
	assert.Equal(t, []int{100, 100, 100, 150, 200, 200, 200, 200}, got)
}

func TestInterpolateNoStops(t *testing.T) {
	t.Parallel()

	g := Gradient{Colors: []RGBA{red, blue}}
	out, err := Interpolate(g)
	require.NoError(t, err)
	assert.Equal(t, []RGBA{red, blue}, out)
}
