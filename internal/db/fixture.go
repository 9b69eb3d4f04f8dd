package db

import (
	"fmt"
	"io"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

// Fixture is a YAML description of a small show. It is used to seed
// development databases and by tests.
type Fixture struct {
	Colors  []FixtureColor  `yaml:"colors"`
	Models  []FixtureModel  `yaml:"models"`
	Dancers []FixtureDancer `yaml:"dancers"`
	Effects []FixtureEffect `yaml:"effects"`
	Frames  []FixtureFrame  `yaml:"frames"`
}

type FixtureColor struct {
	Name string `yaml:"name"`
	Hex  string `yaml:"hex"`
}

type FixtureModel struct {
	Name  string        `yaml:"name"`
	Parts []FixturePart `yaml:"parts"`
}

type FixturePart struct {
	Name   string   `yaml:"name"`
	Type   PartType `yaml:"type"`
	Length int      `yaml:"length"`
}

type FixtureDancer struct {
	Name  string `yaml:"name"`
	Model string `yaml:"model"`
}

type FixtureEffect struct {
	Name   string        `yaml:"name"`
	Model  string        `yaml:"model"`
	Part   string        `yaml:"part"`
	States []FixtureStop `yaml:"states"`
}

// FixtureStop is an effect keyframe or an LED bulb.
type FixtureStop struct {
	Position int    `yaml:"position"`
	Color    string `yaml:"color"`
	Alpha    int    `yaml:"alpha"`
}

type FixtureFrame struct {
	Start    int64            `yaml:"start"`
	Fade     bool             `yaml:"fade"`
	Controls []FixtureControl `yaml:"controls"`
}

type FixtureControl struct {
	Dancer string        `yaml:"dancer"`
	Part   string        `yaml:"part"`
	Type   ControlKind   `yaml:"type"`
	Color  string        `yaml:"color"`
	Alpha  *int          `yaml:"alpha"`
	Effect string        `yaml:"effect"`
	Bulbs  []FixtureStop `yaml:"bulbs"`
}

// ParseFixture decodes a YAML fixture.
func ParseFixture(r io.Reader) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode fixture: %w", err)
	}
	return &f, nil
}

// LoadFixtureFile reads a YAML fixture from path and inserts it.
func (db *DB) LoadFixtureFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open fixture: %w", err)
	}
	defer file.Close()

	f, err := ParseFixture(file)
	if err != nil {
		return err
	}
	return db.LoadFixture(f)
}

// LoadFixture inserts every record of f in a single transaction.
func (db *DB) LoadFixture(f *Fixture) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := loadFixture(tx, f); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func loadFixture(e execer, f *Fixture) error {
	colors := make(map[string]int, len(f.Colors))
	for _, fc := range f.Colors {
		c, err := colorful.Hex(fc.Hex)
		if err != nil {
			return fmt.Errorf("color %q: %w", fc.Name, err)
		}
		r, g, b := c.RGB255()
		rec := Color{Name: fc.Name, R: int(r), G: int(g), B: int(b)}
		if err := createColor(e, &rec); err != nil {
			return err
		}
		colors[fc.Name] = rec.ID
	}
	colorRef := func(name string) (*int, error) {
		if name == "" {
			return nil, nil
		}
		id, ok := colors[name]
		if !ok {
			return nil, fmt.Errorf("unknown color %q", name)
		}
		return &id, nil
	}

	models := make(map[string]int, len(f.Models))
	parts := make(map[string]int) // "model/part" -> id
	for _, fm := range f.Models {
		m := Model{Name: fm.Name}
		if err := createModel(e, &m); err != nil {
			return err
		}
		models[fm.Name] = m.ID
		for _, fp := range fm.Parts {
			p := Part{ModelID: m.ID, Name: fp.Name, Type: fp.Type, Length: fp.Length}
			if err := createPart(e, &p); err != nil {
				return err
			}
			parts[fm.Name+"/"+fp.Name] = p.ID
		}
	}

	type dancerRef struct {
		id    int
		model string
	}
	dancers := make(map[string]dancerRef, len(f.Dancers))
	for _, fd := range f.Dancers {
		modelID, ok := models[fd.Model]
		if !ok {
			return fmt.Errorf("dancer %q: unknown model %q", fd.Name, fd.Model)
		}
		d := Dancer{Name: fd.Name, ModelID: modelID}
		if err := createDancer(e, &d); err != nil {
			return err
		}
		dancers[fd.Name] = dancerRef{id: d.ID, model: fd.Model}
	}

	effects := make(map[string]int, len(f.Effects))
	for _, fe := range f.Effects {
		partID, ok := parts[fe.Model+"/"+fe.Part]
		if !ok {
			return fmt.Errorf("effect %q: unknown part %s/%s", fe.Name, fe.Model, fe.Part)
		}
		le := LEDEffect{Name: fe.Name, PartID: partID}
		if err := createEffect(e, &le); err != nil {
			return err
		}
		effects[fe.Name] = le.ID
		for _, st := range fe.States {
			colorID, err := colorRef(st.Color)
			if err != nil {
				return fmt.Errorf("effect %q: %w", fe.Name, err)
			}
			s := LEDEffectState{EffectID: le.ID, Position: st.Position, ColorID: colorID, Alpha: st.Alpha}
			if err := createEffectState(e, &s); err != nil {
				return err
			}
		}
	}

	for _, ff := range f.Frames {
		frame := ControlFrame{Start: ff.Start, Fade: ff.Fade}
		if err := createFrame(e, &frame); err != nil {
			return err
		}
		for _, fc := range ff.Controls {
			dancer, ok := dancers[fc.Dancer]
			if !ok {
				return fmt.Errorf("frame %d: unknown dancer %q", ff.Start, fc.Dancer)
			}
			partID, ok := parts[dancer.model+"/"+fc.Part]
			if !ok {
				return fmt.Errorf("frame %d: unknown part %q for dancer %q", ff.Start, fc.Part, fc.Dancer)
			}
			colorID, err := colorRef(fc.Color)
			if err != nil {
				return fmt.Errorf("frame %d: %w", ff.Start, err)
			}
			cd := ControlData{
				FrameID:  frame.ID,
				PartID:   partID,
				DancerID: dancer.id,
				Kind:     fc.Type,
				ColorID:  colorID,
				Alpha:    fc.Alpha,
			}
			if fc.Effect != "" {
				effectID, ok := effects[fc.Effect]
				if !ok {
					return fmt.Errorf("frame %d: unknown effect %q", ff.Start, fc.Effect)
				}
				cd.EffectID = &effectID
			}
			if err := createControlData(e, &cd); err != nil {
				return err
			}
			for _, fb := range fc.Bulbs {
				colorID, err := colorRef(fb.Color)
				if err != nil {
					return fmt.Errorf("frame %d: %w", ff.Start, err)
				}
				b := LEDBulb{ControlID: cd.ID, Position: fb.Position, ColorID: colorID, Alpha: fb.Alpha}
				if err := createBulb(e, &b); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
