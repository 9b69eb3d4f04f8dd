package show

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightdance/showcompiler/internal/db"
	"github.com/lightdance/showcompiler/internal/showfile"
)

func ptr(v int) *int { return &v }

func testSources() *sources {
	return &sources{
		palette: Palette{1: {R: 255}, 2: {B: 255}},
		effects: stripSet{10: {3: {red, red, blue}}},
		bulbs:   stripSet{100: {3: {white, white, white}}},
	}
}

func TestResolveInstruction(t *testing.T) {
	t.Parallel()

	src := testSources()
	tests := []struct {
		name  string
		row   *db.ControlRow
		fiber bool
		want  InstructionKind
	}{
		{"missing row", nil, false, InstrNone},
		{"missing fiber row", nil, true, InstrNone},
		{"no effect", &db.ControlRow{Kind: db.ControlNoEffect}, false, InstrCarry},
		{"fiber no effect", &db.ControlRow{Kind: db.ControlNoEffect}, true, InstrCarry},
		{"fiber color", &db.ControlRow{Kind: db.ControlColor, ColorID: ptr(1), Alpha: ptr(255)}, true, InstrDirect},
		{"led effect", &db.ControlRow{ControlID: 7, Kind: db.ControlEffect, EffectID: ptr(10)}, false, InstrEffect},
		{"bulbs beat effect", &db.ControlRow{ControlID: 100, Kind: db.ControlEffect, EffectID: ptr(10)}, false, InstrBulb},
		{"bulbs on color row", &db.ControlRow{ControlID: 100, Kind: db.ControlColor}, false, InstrBulb},
		{"led color without bulbs", &db.ControlRow{ControlID: 8, Kind: db.ControlColor, ColorID: ptr(1)}, false, InstrNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveInstruction(tt.row, segment{length: 3, fiber: tt.fiber}, src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Kind, "got %s", got.Kind)
		})
	}
}

func TestResolveInstructionFiberNullAlpha(t *testing.T) {
	t.Parallel()

	got, err := resolveInstruction(&db.ControlRow{Kind: db.ControlColor, ColorID: ptr(1)}, segment{length: 1, fiber: true}, testSources())
	require.NoError(t, err)
	assert.Equal(t, RGBA{R: 255}, got.Color)
}

func TestResolveInstructionMissingEffect(t *testing.T) {
	t.Parallel()

	src := testSources()
	_, err := resolveInstruction(&db.ControlRow{ControlID: 3, Kind: db.ControlEffect, EffectID: ptr(11)}, segment{length: 3}, src)
	assert.ErrorIs(t, err, ErrConsistency)
	assert.EqualError(t, err, "effect 11 not found")

	_, err = resolveInstruction(&db.ControlRow{ControlID: 3, Kind: db.ControlEffect}, segment{length: 3}, src)
	assert.ErrorIs(t, err, ErrConsistency)
}

func TestResolveInstructionStripLength(t *testing.T) {
	t.Parallel()

	src := testSources()
	src.effects.put(10, 5, []RGBA{blue, blue, blue, blue, blue})

	got, err := resolveInstruction(&db.ControlRow{ControlID: 7, Kind: db.ControlEffect, EffectID: ptr(10)}, segment{length: 5}, src)
	require.NoError(t, err)
	assert.Equal(t, []RGBA{blue, blue, blue, blue, blue}, got.Colors)

	got, err = resolveInstruction(&db.ControlRow{ControlID: 7, Kind: db.ControlEffect, EffectID: ptr(10)}, segment{length: 3}, src)
	require.NoError(t, err)
	assert.Equal(t, []RGBA{red, red, blue}, got.Colors)
}

func TestRender(t *testing.T) {
	t.Parallel()

	direct, ok := render(Instruction{Kind: InstrDirect, Color: RGBA{G: 200, A: 255}}, nil, 3, DefaultAlphaMax)
	require.True(t, ok)
	assert.Equal(t, []showfile.Pixel{{G: 200}, {G: 200}, {G: 200}}, direct)

	none, ok := render(Instruction{Kind: InstrNone}, nil, 2, DefaultAlphaMax)
	require.True(t, ok)
	assert.Equal(t, []showfile.Pixel{{}, {}}, none)

	// A short gradient leaves the tail black.
	eff, ok := render(Instruction{Kind: InstrEffect, Colors: []RGBA{red}}, nil, 2, DefaultAlphaMax)
	require.True(t, ok)
	assert.Equal(t, []showfile.Pixel{{R: 255}, {}}, eff)

	_, ok = render(Instruction{Kind: InstrCarry}, nil, 2, DefaultAlphaMax)
	assert.False(t, ok)

	carried, ok := render(Instruction{Kind: InstrCarry}, eff, 2, DefaultAlphaMax)
	require.True(t, ok)
	assert.Equal(t, eff, carried)
	carried[0].G = 9
	assert.Equal(t, uint8(0), eff[0].G, "carry must copy")
}

func TestGroupFrames(t *testing.T) {
	t.Parallel()

	rows := []db.ControlRow{
		{ControlID: 1, Start: 0, PartName: "cross", Kind: db.ControlColor},
		{ControlID: 2, Start: 0, PartName: "mask_LED", Kind: db.ControlEffect},
		{ControlID: 3, Start: 500, Fade: false, PartName: "cross", Kind: db.ControlColor},
		{ControlID: 4, Start: 500, Fade: true, PartName: "belt_left", Kind: db.ControlColor},
		{ControlID: 5, Start: 500, Fade: true, PartName: "cross", Kind: db.ControlNoEffect},
	}
	frames, err := groupFrames(rows)
	require.NoError(t, err)
	require.Len(t, frames, 2)

	assert.Equal(t, uint32(0), frames[0].start)
	assert.Len(t, frames[0].rows, 2)

	assert.Equal(t, uint32(500), frames[1].start)
	assert.False(t, frames[1].fade, "fade comes from the first row at a start")
	assert.Equal(t, 3, frames[1].rows["cross"].ControlID, "first row wins")
	assert.Equal(t, 4, frames[1].rows["belt_left"].ControlID)
}

func TestGroupFramesErrors(t *testing.T) {
	t.Parallel()

	_, err := groupFrames([]db.ControlRow{{Start: 10}, {Start: 5}})
	assert.ErrorIs(t, err, ErrConsistency)

	_, err = groupFrames([]db.ControlRow{{Start: 1 << 33}})
	assert.ErrorIs(t, err, ErrRangeViolation)

	frames, err := groupFrames(nil)
	require.NoError(t, err)
	assert.Empty(t, frames)
}

func TestFoldCarriesPreviousFrame(t *testing.T) {
	t.Parallel()

	src := testSources()
	plan := channelPlan{name: "mask_LED", length: 3, segments: []segment{{part: "mask_LED", length: 3}}}
	frames := []frameGroup{
		{start: 0, rows: map[string]*db.ControlRow{"mask_LED": {ControlID: 1, Kind: db.ControlEffect, EffectID: ptr(10)}}},
		{start: 100, rows: map[string]*db.ControlRow{"mask_LED": {ControlID: 2, Kind: db.ControlNoEffect}}},
		{start: 200, rows: map[string]*db.ControlRow{"mask_LED": {ControlID: 3, Kind: db.ControlNoEffect}}},
		{start: 300, rows: map[string]*db.ControlRow{}},
	}

	out, err := fold(context.Background(), plan, frames, src, DefaultAlphaMax)
	require.NoError(t, err)
	require.Len(t, out, 4)

	want := []showfile.Pixel{{R: 255}, {R: 255}, {B: 255}}
	assert.Equal(t, want, out[0])
	assert.Equal(t, out[0], out[1])
	assert.Equal(t, out[1], out[2])
	assert.Equal(t, []showfile.Pixel{{}, {}, {}}, out[3])
}

func TestFoldFirstFrameNoEffect(t *testing.T) {
	t.Parallel()

	plan := channelPlan{name: "cross", fiber: true, length: 1, segments: []segment{{part: "cross", length: 1, fiber: true}}}
	frames := []frameGroup{
		{start: 40, rows: map[string]*db.ControlRow{"cross": {Kind: db.ControlNoEffect}}},
	}

	_, err := fold(context.Background(), plan, frames, testSources(), DefaultAlphaMax)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConsistency)
	assert.Contains(t, err.Error(), "first frame can't be no effect")
}

func TestFoldMergedSegments(t *testing.T) {
	t.Parallel()

	src := testSources()
	plan := channelPlan{
		name:   "hat_LED",
		length: 5,
		segments: []segment{
			{part: "hat_ring_LED", length: 3},
			{part: "hat_main_LED", length: 3},
		},
	}
	frames := []frameGroup{
		{start: 0, rows: map[string]*db.ControlRow{
			"hat_ring_LED": {ControlID: 100, Kind: db.ControlColor},
			"hat_main_LED": {ControlID: 1, Kind: db.ControlEffect, EffectID: ptr(10)},
		}},
		{start: 10, rows: map[string]*db.ControlRow{
			"hat_ring_LED": {ControlID: 2, Kind: db.ControlNoEffect},
		}},
	}

	out, err := fold(context.Background(), plan, frames, src, DefaultAlphaMax)
	require.NoError(t, err)

	w := showfile.Pixel{R: 255, G: 255, B: 255}
	r := showfile.Pixel{R: 255}
	assert.Equal(t, []showfile.Pixel{w, w, w, r, r}, out[0], "truncated to the logical length")
	assert.Equal(t, []showfile.Pixel{w, w, w, {}, {}}, out[1])
}

func TestFoldCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	plan := channelPlan{name: "cross", fiber: true, length: 1, segments: []segment{{part: "cross", length: 1, fiber: true}}}
	_, err := fold(ctx, plan, []frameGroup{{start: 0}}, testSources(), DefaultAlphaMax)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFitStrip(t *testing.T) {
	t.Parallel()

	p := []showfile.Pixel{{R: 1}, {R: 2}}
	assert.Equal(t, p, fitStrip(p, 2))
	assert.Equal(t, []showfile.Pixel{{R: 1}}, fitStrip(p, 1))
	assert.Equal(t, []showfile.Pixel{{R: 1}, {R: 2}, {}}, fitStrip(p, 3))
	assert.Empty(t, fitStrip(p, 0))
}
