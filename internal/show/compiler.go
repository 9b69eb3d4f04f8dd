// Package show compiles a dancer's sparse lighting timeline into the dense
// per-frame colors the costume firmware plays back.
package show

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lightdance/showcompiler/internal/channel"
	"github.com/lightdance/showcompiler/internal/db"
	"github.com/lightdance/showcompiler/internal/monitoring"
	"github.com/lightdance/showcompiler/internal/showfile"
)

// Store is the read-only record store a compile queries. *db.DB implements it.
type Store interface {
	DancerByName(ctx context.Context, name string) (*db.Dancer, error)
	Colors(ctx context.Context) ([]db.Color, error)
	DancerParts(ctx context.Context, dancerID int) ([]db.Part, error)
	ControlRows(ctx context.Context, dancerID int) ([]db.ControlRow, error)
	EffectStates(ctx context.Context, dancerID int) ([]db.EffectStateRow, error)
	Bulbs(ctx context.Context, dancerID int) ([]db.BulbRow, error)
}

// Options tunes a Compiler. Zero values select defaults.
type Options struct {
	// AlphaMax is the alpha that leaves a color unscaled.
	AlphaMax int
	// Workers bounds how many channels are folded concurrently.
	Workers int
}

// Compiler compiles shows. It holds no per-compile state and is safe for
// concurrent use.
type Compiler struct {
	store    Store
	table    channel.Table
	alphaMax int
	workers  int
}

// NewCompiler returns a compiler reading from store and ordering output by
// table.
func NewCompiler(store Store, table channel.Table, opts Options) *Compiler {
	c := &Compiler{
		store:    store,
		table:    table,
		alphaMax: opts.AlphaMax,
		workers:  opts.Workers,
	}
	if c.alphaMax <= 0 {
		c.alphaMax = DefaultAlphaMax
	}
	if c.workers <= 0 {
		c.workers = runtime.GOMAXPROCS(0)
	}
	return c
}

// Table returns the channel table the compiler orders output by.
func (c *Compiler) Table() channel.Table {
	return c.table
}

// Show is one compiled dancer.
type Show struct {
	Dancer string
	// Fibers and LEDs are the part names in wire order.
	Fibers []string
	LEDs   []string
	Header showfile.ControlHeader
	Frames []showfile.Frame
}

// ControlDat encodes the control.dat artifact.
func (s *Show) ControlDat() ([]byte, error) {
	buf, err := showfile.EncodeControl(s.Header)
	if err != nil {
		return nil, rangeViolation("number out of bounds", err)
	}
	return buf, nil
}

// FrameDat encodes the frame.dat artifact.
func (s *Show) FrameDat() []byte {
	return showfile.EncodeFrames(s.Frames)
}

func (c *Compiler) dancer(ctx context.Context, name string) (*db.Dancer, error) {
	d, err := c.store.DancerByName(ctx, name)
	if errors.Is(err, db.ErrDancerNotFound) {
		return nil, notFound("Dancer not found.", nil)
	}
	if err != nil {
		return nil, storeFailure(err)
	}
	return d, nil
}

// Header builds control.dat content without resolving any colors.
func (c *Compiler) Header(ctx context.Context, req *Request) (showfile.ControlHeader, error) {
	var h showfile.ControlHeader
	if err := req.validate(); err != nil {
		return h, err
	}
	d, err := c.dancer(ctx, req.Dancer)
	if err != nil {
		return h, err
	}
	rows, err := c.store.ControlRows(ctx, d.ID)
	if err != nil {
		return h, storeFailure(err)
	}
	frames, err := groupFrames(rows)
	if err != nil {
		return h, err
	}
	return c.header(req, req.LEDOrder(c.table), frames), nil
}

func (c *Compiler) header(req *Request, leds []string, frames []frameGroup) showfile.ControlHeader {
	h := showfile.ControlHeader{
		FiberCount: len(req.Fibers),
		LEDLengths: make([]int, len(leds)),
		Starts:     make([]uint32, len(frames)),
	}
	for i, name := range leds {
		h.LEDLengths[i] = req.LEDs[name].Len
	}
	for i, f := range frames {
		h.Starts[i] = f.start
	}
	return h
}

// Compile resolves every requested part across every frame of the dancer.
// Any failure aborts the compile; no partial show is returned.
func (c *Compiler) Compile(ctx context.Context, req *Request) (*Show, error) {
	began := time.Now()
	if err := req.validate(); err != nil {
		return nil, err
	}

	d, err := c.dancer(ctx, req.Dancer)
	if err != nil {
		return nil, err
	}

	colors, err := c.store.Colors(ctx)
	if err != nil {
		return nil, storeFailure(err)
	}
	parts, err := c.store.DancerParts(ctx, d.ID)
	if err != nil {
		return nil, storeFailure(err)
	}

	fibers := req.FiberOrder(c.table)
	leds := req.LEDOrder(c.table)
	plans := c.plan(req, fibers, leds, parts)
	lengthsOf := segmentLengths(plans)

	src := &sources{palette: NewPalette(colors)}

	states, err := c.store.EffectStates(ctx, d.ID)
	if err != nil {
		return nil, storeFailure(err)
	}
	if src.effects, err = BuildEffects(states, lengthsOf, src.palette); err != nil {
		return nil, err
	}

	bulbs, err := c.store.Bulbs(ctx, d.ID)
	if err != nil {
		return nil, storeFailure(err)
	}
	if src.bulbs, err = BuildBulbs(bulbs, lengthsOf, src.palette); err != nil {
		return nil, err
	}

	rows, err := c.store.ControlRows(ctx, d.ID)
	if err != nil {
		return nil, storeFailure(err)
	}
	frames, err := groupFrames(rows)
	if err != nil {
		return nil, err
	}

	// Channels are independent; only frames within a channel are ordered.
	resolved := make([][][]showfile.Pixel, len(plans))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, plan := range plans {
		g.Go(func() error {
			out, err := fold(gctx, plan, frames, src, c.alphaMax)
			if err != nil {
				return err
			}
			resolved[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s := &Show{
		Dancer: d.Name,
		Fibers: fibers,
		LEDs:   leds,
		Header: c.header(req, leds, frames),
		Frames: make([]showfile.Frame, len(frames)),
	}
	for i, f := range frames {
		frame := showfile.Frame{
			Start:  f.start,
			Fade:   f.fade,
			Fibers: make([]showfile.Pixel, len(fibers)),
			LEDs:   make([][]showfile.Pixel, len(leds)),
		}
		for j := range fibers {
			frame.Fibers[j] = resolved[j][i][0]
		}
		for j := range leds {
			frame.LEDs[j] = resolved[len(fibers)+j][i]
		}
		s.Frames[i] = frame
	}

	monitoring.Logf("compiled dancer=%s frames=%d fibers=%d leds=%d in %v",
		d.Name, len(frames), len(fibers), len(leds), time.Since(began))
	return s, nil
}

// plan lays out output channels: fibers first, then logical LED strips,
// each in channel order.
func (c *Compiler) plan(req *Request, fibers, leds []string, parts []db.Part) []channelPlan {
	byName := make(map[string]db.Part, len(parts))
	for _, p := range parts {
		byName[p.Name] = p
	}

	plans := make([]channelPlan, 0, len(fibers)+len(leds))
	for _, name := range fibers {
		plans = append(plans, channelPlan{
			name:     name,
			fiber:    true,
			length:   1,
			segments: []segment{{part: name, length: 1, fiber: true}},
		})
	}
	for _, name := range leds {
		declared := req.LEDs[name].Len
		plan := channelPlan{name: name, length: declared}
		if !req.Merged(name) {
			plan.segments = []segment{{part: name, length: declared}}
		} else {
			for _, physical := range req.LookupFilter(name) {
				p, ok := byName[physical]
				if !ok || p.Type != db.PartLED {
					monitoring.Logf("merge %s: skipping %s, not an LED part of the dancer's model", name, physical)
					continue
				}
				plan.segments = append(plan.segments, segment{part: physical, length: p.Length})
			}
		}
		plans = append(plans, plan)
	}
	return plans
}

// segmentLengths maps each LED physical part to every length it is built
// at, ascending. A part requested on its own and also merged into another
// channel is built at both lengths.
func segmentLengths(plans []channelPlan) func(string) []int {
	lengths := make(map[string][]int)
	for _, p := range plans {
		for _, s := range p.segments {
			if s.fiber || slices.Contains(lengths[s.part], s.length) {
				continue
			}
			lengths[s.part] = append(lengths[s.part], s.length)
		}
	}
	for _, ls := range lengths {
		slices.Sort(ls)
	}
	return func(part string) []int {
		return lengths[part]
	}
}

// PartInfo describes one part of a dancer's model and its channel.
type PartInfo struct {
	Name    string      `json:"name"`
	Type    db.PartType `json:"type"`
	Length  int         `json:"length"`
	Channel int         `json:"channel"`
	Known   bool        `json:"known"`
}

// Parts lists the dancer's parts in channel order, fibers first.
func (c *Compiler) Parts(ctx context.Context, dancer string) ([]PartInfo, error) {
	d, err := c.dancer(ctx, dancer)
	if err != nil {
		return nil, err
	}
	parts, err := c.store.DancerParts(ctx, d.ID)
	if err != nil {
		return nil, storeFailure(err)
	}

	var fibers, leds []string
	byName := make(map[string]db.Part, len(parts))
	for _, p := range parts {
		byName[p.Name] = p
		if p.Type == db.PartFiber {
			fibers = append(fibers, p.Name)
		} else {
			leds = append(leds, p.Name)
		}
	}
	c.table.Sort(fibers)
	c.table.Sort(leds)

	out := make([]PartInfo, 0, len(parts))
	for _, name := range append(fibers, leds...) {
		p := byName[name]
		ch, known := c.table.Lookup(name)
		if !known {
			ch = channel.Unknown
		}
		out = append(out, PartInfo{Name: name, Type: p.Type, Length: p.Length, Channel: ch, Known: known})
	}
	return out, nil
}

// DefaultRequest selects every part of the dancer's model that has a
// hardware channel, at its stored length.
func (c *Compiler) DefaultRequest(ctx context.Context, dancer string) (*Request, error) {
	parts, err := c.Parts(ctx, dancer)
	if err != nil {
		return nil, err
	}
	req := &Request{
		Dancer: dancer,
		Fibers: make(map[string]int),
		LEDs:   make(map[string]LEDPart),
	}
	for _, p := range parts {
		if !p.Known {
			continue
		}
		if p.Type == db.PartFiber {
			req.Fibers[p.Name] = p.Channel
		} else {
			req.LEDs[p.Name] = LEDPart{ID: p.Channel, Len: p.Length}
		}
	}
	if len(req.Fibers) == 0 && len(req.LEDs) == 0 {
		return nil, fmt.Errorf("dancer %s has no parts with a hardware channel", dancer)
	}
	return req, nil
}
