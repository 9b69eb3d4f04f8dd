package show

import (
	"github.com/lightdance/showcompiler/internal/db"
)

// BuildBulbs builds the interpolated strip of every control row that has
// LED bulb overrides, keyed by control row id and then by each length the
// row's part is built at.
func BuildBulbs(bulbs []db.BulbRow, lengthsOf func(part string) []int, palette Palette) (stripSet, error) {
	builders := make(map[stripKey]*gradientBuilder)
	for _, b := range bulbs {
		for _, length := range lengthsOf(b.PartName) {
			key := stripKey{id: b.ControlID, length: length}
			gb, ok := builders[key]
			if !ok {
				gb = newGradientBuilder(length)
				builders[key] = gb
			}
			gb.add(b.Position, palette.With(b.ColorID, b.Alpha))
		}
	}

	strips := make(stripSet, len(builders))
	for _, key := range keyOrder(builders) {
		g, err := builders[key].build()
		if err != nil {
			return nil, err
		}
		colors, err := Interpolate(g)
		if err != nil {
			return nil, inconsistent(err.Error())
		}
		strips.put(key.id, key.length, colors)
	}
	return strips, nil
}
