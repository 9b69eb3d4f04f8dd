package db

import (
	"database/sql"
	"fmt"
)

// ControlFrame is one timed instant of the show.
type ControlFrame struct {
	ID    int   `json:"id"`
	Start int64 `json:"start"`
	Fade  bool  `json:"fade"`
}

// ControlData is one (frame, part, dancer) instruction.
type ControlData struct {
	ID       int         `json:"id"`
	FrameID  int         `json:"frame_id"`
	PartID   int         `json:"part_id"`
	DancerID int         `json:"dancer_id"`
	Kind     ControlKind `json:"type"`
	ColorID  *int        `json:"color_id"`
	Alpha    *int        `json:"alpha"`
	EffectID *int        `json:"effect_id"`
}

// LEDEffect is a reusable gradient defined on one LED part.
type LEDEffect struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	PartID int    `json:"part_id"`
}

// LEDEffectState is one keyframe stop of an effect.
type LEDEffectState struct {
	ID       int  `json:"id"`
	EffectID int  `json:"effect_id"`
	Position int  `json:"position"`
	ColorID  *int `json:"color_id"`
	Alpha    int  `json:"alpha"`
}

// LEDBulb is one explicit LED override of a control row.
type LEDBulb struct {
	ID        int  `json:"id"`
	ControlID int  `json:"control_id"`
	Position  int  `json:"position"`
	ColorID   *int `json:"color_id"`
	Alpha     int  `json:"alpha"`
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func insert(e execer, what, query string, args ...any) (int, error) {
	result, err := e.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", what, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	return int(id), nil
}

func createModel(e execer, m *Model) (err error) {
	m.ID, err = insert(e, "model", `INSERT INTO model (name) VALUES (?)`, m.Name)
	return err
}

func createPart(e execer, p *Part) (err error) {
	var length any
	if p.Type == PartLED {
		length = p.Length
	}
	p.ID, err = insert(e, "part",
		`INSERT INTO part (model_id, name, type, length) VALUES (?, ?, ?, ?)`,
		p.ModelID, p.Name, p.Type, length)
	return err
}

func createDancer(e execer, d *Dancer) (err error) {
	d.ID, err = insert(e, "dancer", `INSERT INTO dancer (name, model_id) VALUES (?, ?)`, d.Name, d.ModelID)
	return err
}

func createColor(e execer, c *Color) (err error) {
	c.ID, err = insert(e, "color", `INSERT INTO color (name, r, g, b) VALUES (?, ?, ?, ?)`, c.Name, c.R, c.G, c.B)
	return err
}

func createFrame(e execer, f *ControlFrame) (err error) {
	fade := 0
	if f.Fade {
		fade = 1
	}
	f.ID, err = insert(e, "control frame", `INSERT INTO control_frame (start, fade) VALUES (?, ?)`, f.Start, fade)
	return err
}

func createControlData(e execer, c *ControlData) (err error) {
	c.ID, err = insert(e, "control data", `
		INSERT INTO control_data (frame_id, part_id, dancer_id, type, color_id, alpha, effect_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.FrameID, c.PartID, c.DancerID, c.Kind, c.ColorID, c.Alpha, c.EffectID)
	return err
}

func createEffect(e execer, le *LEDEffect) (err error) {
	le.ID, err = insert(e, "effect", `INSERT INTO led_effect (name, part_id) VALUES (?, ?)`, le.Name, le.PartID)
	return err
}

func createEffectState(e execer, s *LEDEffectState) (err error) {
	s.ID, err = insert(e, "effect state",
		`INSERT INTO led_effect_state (effect_id, position, color_id, alpha) VALUES (?, ?, ?, ?)`,
		s.EffectID, s.Position, s.ColorID, s.Alpha)
	return err
}

func createBulb(e execer, b *LEDBulb) (err error) {
	b.ID, err = insert(e, "bulb",
		`INSERT INTO led_bulb (control_id, position, color_id, alpha) VALUES (?, ?, ?, ?)`,
		b.ControlID, b.Position, b.ColorID, b.Alpha)
	return err
}

// CreateModel inserts m and sets its ID.
func (db *DB) CreateModel(m *Model) error { return createModel(db.DB, m) }

// CreatePart inserts p and sets its ID. Fiber parts are stored without a length.
func (db *DB) CreatePart(p *Part) error { return createPart(db.DB, p) }

// CreateDancer inserts d and sets its ID.
func (db *DB) CreateDancer(d *Dancer) error { return createDancer(db.DB, d) }

// CreateColor inserts c and sets its ID.
func (db *DB) CreateColor(c *Color) error { return createColor(db.DB, c) }

// CreateFrame inserts f and sets its ID.
func (db *DB) CreateFrame(f *ControlFrame) error { return createFrame(db.DB, f) }

// CreateControlData inserts c and sets its ID.
func (db *DB) CreateControlData(c *ControlData) error { return createControlData(db.DB, c) }

// CreateEffect inserts le and sets its ID.
func (db *DB) CreateEffect(le *LEDEffect) error { return createEffect(db.DB, le) }

// CreateEffectState inserts s and sets its ID.
func (db *DB) CreateEffectState(s *LEDEffectState) error { return createEffectState(db.DB, s) }

// CreateBulb inserts b and sets its ID.
func (db *DB) CreateBulb(b *LEDBulb) error { return createBulb(db.DB, b) }
