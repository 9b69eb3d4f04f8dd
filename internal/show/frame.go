package show

import (
	"context"
	"fmt"
	"math"

	"github.com/lightdance/showcompiler/internal/db"
	"github.com/lightdance/showcompiler/internal/showfile"
)

// InstructionKind says where a part's colors come from in one frame.
type InstructionKind int

const (
	// InstrNone means the part has no control row: black.
	InstrNone InstructionKind = iota
	// InstrDirect is a single authored color with alpha.
	InstrDirect
	// InstrEffect is a shared effect gradient.
	InstrEffect
	// InstrBulb is an interpolated per-LED override. It beats InstrEffect.
	InstrBulb
	// InstrCarry repeats the previous frame exactly.
	InstrCarry
)

func (k InstructionKind) String() string {
	switch k {
	case InstrNone:
		return "none"
	case InstrDirect:
		return "direct"
	case InstrEffect:
		return "effect"
	case InstrBulb:
		return "bulb"
	case InstrCarry:
		return "carry"
	default:
		return fmt.Sprintf("InstructionKind(%d)", int(k))
	}
}

// Instruction is the resolved content of one (frame, part).
type Instruction struct {
	Kind   InstructionKind
	Color  RGBA   // InstrDirect
	Colors []RGBA // InstrEffect, InstrBulb
}

// sources holds the request-scoped lookups an instruction can draw from.
type sources struct {
	palette Palette
	effects stripSet // by effect id
	bulbs   stripSet // by control row id
}

// resolveInstruction picks the single source for a part's control row.
// Order: carry, then fiber direct color, then bulbs, then effect. Strips are
// taken at the segment's length.
func resolveInstruction(row *db.ControlRow, seg segment, src *sources) (Instruction, error) {
	if row == nil {
		return Instruction{Kind: InstrNone}, nil
	}
	if row.Kind == db.ControlNoEffect {
		return Instruction{Kind: InstrCarry}, nil
	}
	if seg.fiber {
		alpha := 0
		if row.Alpha != nil {
			alpha = *row.Alpha
		}
		return Instruction{Kind: InstrDirect, Color: src.palette.With(row.ColorID, alpha)}, nil
	}
	if strip, ok := src.bulbs.get(row.ControlID, seg.length); ok {
		return Instruction{Kind: InstrBulb, Colors: strip}, nil
	}
	if row.Kind == db.ControlEffect {
		if row.EffectID == nil {
			return Instruction{}, inconsistent(fmt.Sprintf("effect not found for control data %d", row.ControlID))
		}
		colors, ok := src.effects.get(*row.EffectID, seg.length)
		if !ok {
			return Instruction{}, inconsistent(fmt.Sprintf("effect %d not found", *row.EffectID))
		}
		return Instruction{Kind: InstrEffect, Colors: colors}, nil
	}
	return Instruction{Kind: InstrNone}, nil
}

// render turns an instruction into length pixels. prev is the same
// segment's output in the previous frame, nil on the first frame.
func render(instr Instruction, prev []showfile.Pixel, length, alphaMax int) ([]showfile.Pixel, bool) {
	out := make([]showfile.Pixel, length)
	switch instr.Kind {
	case InstrCarry:
		if prev == nil {
			return nil, false
		}
		copy(out, prev)
	case InstrDirect:
		p := Composite(instr.Color, alphaMax)
		for i := range out {
			out[i] = p
		}
	case InstrEffect, InstrBulb:
		for i := range out {
			if i < len(instr.Colors) {
				out[i] = Composite(instr.Colors[i], alphaMax)
			}
		}
	}
	return out, true
}

// segment is one physical part feeding an output channel.
type segment struct {
	part   string
	length int
	fiber  bool
}

// channelPlan is one output channel: a fiber, or a logical LED strip built
// from one or more segments.
type channelPlan struct {
	name     string
	fiber    bool
	length   int
	segments []segment
}

// frameGroup is every control row sharing one start time.
type frameGroup struct {
	start uint32
	fade  bool
	rows  map[string]*db.ControlRow // by physical part name
}

// groupFrames merges rows with equal starts into one frame. rows must be
// ordered by start. The first row of a start decides the fade flag and, for
// duplicated (start, part) pairs, which row is used.
func groupFrames(rows []db.ControlRow) ([]frameGroup, error) {
	var frames []frameGroup
	for i := range rows {
		r := &rows[i]
		if r.Start < 0 || r.Start > math.MaxUint32 {
			return nil, rangeViolation("frame start out of bounds", fmt.Errorf("start %d", r.Start))
		}
		start := uint32(r.Start)
		if n := len(frames); n == 0 || frames[n-1].start != start {
			if n > 0 && frames[n-1].start > start {
				return nil, inconsistent("control frames are not ordered by start")
			}
			frames = append(frames, frameGroup{start: start, fade: r.Fade, rows: make(map[string]*db.ControlRow)})
		}
		f := &frames[len(frames)-1]
		if _, dup := f.rows[r.PartName]; !dup {
			f.rows[r.PartName] = r
		}
	}
	return frames, nil
}

// fold resolves one channel across all frames in order, threading the
// previous frame's segment outputs for carry-forward.
func fold(ctx context.Context, plan channelPlan, frames []frameGroup, src *sources, alphaMax int) ([][]showfile.Pixel, error) {
	out := make([][]showfile.Pixel, len(frames))
	var prev [][]showfile.Pixel

	for i, f := range frames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cur := make([][]showfile.Pixel, len(plan.segments))
		pixels := make([]showfile.Pixel, 0, plan.length)
		for j, seg := range plan.segments {
			instr, err := resolveInstruction(f.rows[seg.part], seg, src)
			if err != nil {
				return nil, err
			}
			var last []showfile.Pixel
			if prev != nil {
				last = prev[j]
			}
			segPixels, ok := render(instr, last, seg.length, alphaMax)
			if !ok {
				return nil, inconsistent(fmt.Sprintf("first frame can't be no effect (part %s at %dms)", seg.part, f.start))
			}
			cur[j] = segPixels
			pixels = append(pixels, segPixels...)
		}

		out[i] = fitStrip(pixels, plan.length)
		prev = cur
	}
	return out, nil
}

// fitStrip truncates or black-pads p to length.
func fitStrip(p []showfile.Pixel, length int) []showfile.Pixel {
	if len(p) == length {
		return p
	}
	out := make([]showfile.Pixel, length)
	copy(out, p)
	return out
}
