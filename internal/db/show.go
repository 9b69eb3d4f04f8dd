package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrDancerNotFound is returned when no dancer has the requested name.
var ErrDancerNotFound = errors.New("dancer not found")

// PartType is the physical kind of a costume part.
type PartType string

const (
	PartFiber PartType = "FIBER"
	PartLED   PartType = "LED"
)

// ControlKind says how a control row describes its part for one frame.
type ControlKind string

const (
	ControlColor    ControlKind = "COLOR"
	ControlEffect   ControlKind = "EFFECT"
	ControlNoEffect ControlKind = "NO_EFFECT"
)

// Dancer is one performer and the costume model they wear.
type Dancer struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	ModelID int    `json:"model_id"`
}

// Model is a costume layout template.
type Model struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Part is one fiber bundle or LED strip of a model. Fiber parts have length 1.
type Part struct {
	ID      int      `json:"id"`
	ModelID int      `json:"model_id"`
	Name    string   `json:"name"`
	Type    PartType `json:"type"`
	Length  int      `json:"length"`
}

// Color is a named RGB definition.
type Color struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	R    int    `json:"r"`
	G    int    `json:"g"`
	B    int    `json:"b"`
}

// ControlRow is one control_data row joined with its frame and part.
type ControlRow struct {
	ControlID int
	FrameID   int
	Start     int64
	Fade      bool
	PartID    int
	PartName  string
	PartType  PartType
	Kind      ControlKind
	ColorID   *int
	Alpha     *int
	EffectID  *int
}

// EffectStateRow is one keyframe stop of an LED effect.
type EffectStateRow struct {
	EffectID int
	PartID   int
	PartName string
	Position int
	ColorID  *int
	Alpha    int
}

// BulbRow is one explicit LED override of a control row.
type BulbRow struct {
	ControlID int
	FrameID   int
	Start     int64
	PartID    int
	PartName  string
	Position  int
	ColorID   *int
	Alpha     int
}

// DancerByName looks up a dancer. It returns an error wrapping
// ErrDancerNotFound when the name is unknown.
func (db *DB) DancerByName(ctx context.Context, name string) (*Dancer, error) {
	var d Dancer
	err := db.QueryRowContext(ctx,
		`SELECT id, name, model_id FROM dancer WHERE name = ?`, name,
	).Scan(&d.ID, &d.Name, &d.ModelID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %q", ErrDancerNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query dancer %q: %w", name, err)
	}
	return &d, nil
}

// Colors returns every color definition.
func (db *DB) Colors(ctx context.Context) ([]Color, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, name, r, g, b FROM color ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query colors: %w", err)
	}
	defer rows.Close()

	var colors []Color
	for rows.Next() {
		var c Color
		if err := rows.Scan(&c.ID, &c.Name, &c.R, &c.G, &c.B); err != nil {
			return nil, fmt.Errorf("failed to scan color: %w", err)
		}
		colors = append(colors, c)
	}
	return colors, rows.Err()
}

// DancerParts returns the parts of the dancer's model.
func (db *DB) DancerParts(ctx context.Context, dancerID int) ([]Part, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT p.id, p.model_id, p.name, p.type, p.length
		FROM part p
		INNER JOIN dancer d ON d.model_id = p.model_id
		WHERE d.id = ?
		ORDER BY p.id
	`, dancerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query parts: %w", err)
	}
	defer rows.Close()

	var parts []Part
	for rows.Next() {
		var (
			p      Part
			length sql.NullInt64
		)
		if err := rows.Scan(&p.ID, &p.ModelID, &p.Name, &p.Type, &length); err != nil {
			return nil, fmt.Errorf("failed to scan part: %w", err)
		}
		p.Length = int(length.Int64)
		if p.Type == PartFiber {
			p.Length = 1
		}
		parts = append(parts, p)
	}
	return parts, rows.Err()
}

// ControlRows returns the dancer's control rows ordered by frame start.
func (db *DB) ControlRows(ctx context.Context, dancerID int) ([]ControlRow, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT
			cd.id, cf.id, cf.start, cf.fade,
			p.id, p.name, p.type,
			cd.type, cd.color_id, cd.alpha, cd.effect_id
		FROM control_data cd
		INNER JOIN control_frame cf ON cf.id = cd.frame_id
		INNER JOIN part p ON p.id = cd.part_id
		INNER JOIN dancer d ON d.id = cd.dancer_id AND d.model_id = p.model_id
		WHERE d.id = ?
		ORDER BY cf.start, cf.id, cd.id
	`, dancerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query control data: %w", err)
	}
	defer rows.Close()

	var out []ControlRow
	for rows.Next() {
		var (
			r                        ControlRow
			colorID, alpha, effectID sql.NullInt64
		)
		if err := rows.Scan(
			&r.ControlID, &r.FrameID, &r.Start, &r.Fade,
			&r.PartID, &r.PartName, &r.PartType,
			&r.Kind, &colorID, &alpha, &effectID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan control data: %w", err)
		}
		r.ColorID = intPtr(colorID)
		r.Alpha = intPtr(alpha)
		r.EffectID = intPtr(effectID)
		out = append(out, r)
	}
	return out, rows.Err()
}

// EffectStates returns the keyframe stops of every effect defined on the
// dancer's model, ordered by effect and position.
func (db *DB) EffectStates(ctx context.Context, dancerID int) ([]EffectStateRow, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT s.effect_id, e.part_id, p.name, s.position, s.color_id, s.alpha
		FROM led_effect_state s
		INNER JOIN led_effect e ON e.id = s.effect_id
		INNER JOIN part p ON p.id = e.part_id
		INNER JOIN dancer d ON d.model_id = p.model_id
		WHERE d.id = ?
		ORDER BY s.effect_id, s.position
	`, dancerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query effect states: %w", err)
	}
	defer rows.Close()

	var out []EffectStateRow
	for rows.Next() {
		var (
			r       EffectStateRow
			colorID sql.NullInt64
		)
		if err := rows.Scan(&r.EffectID, &r.PartID, &r.PartName, &r.Position, &colorID, &r.Alpha); err != nil {
			return nil, fmt.Errorf("failed to scan effect state: %w", err)
		}
		r.ColorID = intPtr(colorID)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Bulbs returns the dancer's LED bulb overrides ordered by control row and
// position.
func (db *DB) Bulbs(ctx context.Context, dancerID int) ([]BulbRow, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT b.control_id, cf.id, cf.start, p.id, p.name, b.position, b.color_id, b.alpha
		FROM led_bulb b
		INNER JOIN control_data cd ON cd.id = b.control_id
		INNER JOIN control_frame cf ON cf.id = cd.frame_id
		INNER JOIN part p ON p.id = cd.part_id
		WHERE cd.dancer_id = ? AND p.type = 'LED'
		ORDER BY b.control_id, b.position
	`, dancerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bulbs: %w", err)
	}
	defer rows.Close()

	var out []BulbRow
	for rows.Next() {
		var (
			r       BulbRow
			colorID sql.NullInt64
		)
		if err := rows.Scan(&r.ControlID, &r.FrameID, &r.Start, &r.PartID, &r.PartName, &r.Position, &colorID, &r.Alpha); err != nil {
			return nil, fmt.Errorf("failed to scan bulb: %w", err)
		}
		r.ColorID = intPtr(colorID)
		out = append(out, r)
	}
	return out, rows.Err()
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}
