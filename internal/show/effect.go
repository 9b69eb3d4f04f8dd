package show

import (
	"github.com/lightdance/showcompiler/internal/db"
)

// BuildEffects builds the flat color array of every effect whose part is
// part of the compile, once per length the part is built at. lengthsOf
// reports those lengths for a physical part name; none means the part was
// not requested.
//
// Each array is seeded with the effect's first stop and then has every stop
// written at its own position. Effects are not interpolated.
func BuildEffects(states []db.EffectStateRow, lengthsOf func(part string) []int, palette Palette) (stripSet, error) {
	builders := make(map[stripKey]*gradientBuilder)
	for _, s := range states {
		for _, length := range lengthsOf(s.PartName) {
			key := stripKey{id: s.EffectID, length: length}
			b, ok := builders[key]
			if !ok {
				b = newGradientBuilder(length)
				builders[key] = b
			}
			b.add(s.Position, palette.With(s.ColorID, s.Alpha))
		}
	}

	effects := make(stripSet, len(builders))
	for _, key := range keyOrder(builders) {
		g, err := builders[key].build()
		if err != nil {
			return nil, err
		}
		effects.put(key.id, key.length, g.Colors)
	}
	return effects, nil
}
