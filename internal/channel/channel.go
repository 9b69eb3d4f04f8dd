// Package channel holds the fixed mapping between costume part names and the
// hardware output channels the playback firmware expects.
//
// The table is a firmware contract. Changes here must be coordinated with the
// firmware team; it is never derived from the record store.
package channel

import (
	"sort"
)

// Unknown is the sort key used for part names that have no channel.
const Unknown = -1

// entry pairs a part name with its hardware channel.
type entry struct {
	name    string
	channel int
}

// defaultEntries is the current hardware generation. Fiber channels skip 29;
// LED channels restart at 0.
var defaultEntries = []entry{
	{"cloak_out", 0},
	{"cloak_arm_left", 1},
	{"arm_left_out", 2},
	{"arm_left_in", 3},
	{"arm_cuff_left", 4},
	{"shirt_left_out", 5},
	{"shirt_left_mid", 6},
	{"shirt_left_in", 7},
	{"belt_left", 8},
	{"cloak_left_in", 9},
	{"cross", 10},
	{"cloak_arm_right", 11},
	{"arm_right_out", 12},
	{"arm_right_in", 13},
	{"arm_cuff_right", 14},
	{"shirt_right_out", 15},
	{"shirt_right_mid", 16},
	{"shirt_right_in", 17},
	{"belt_right", 18},
	{"cloak_right_in", 19},
	{"skirt_bottom_bottom", 20},
	{"skirt_left_out", 21},
	{"skirt_left_mid", 22},
	{"skirt_left_in", 23},
	{"leg_left_out", 24},
	{"leg_left_in", 25},
	{"shoes_left_bottom", 26},
	{"shoes_left_ankle", 27},
	{"shoes_left_front", 28},
	{"skirt_bottom_top", 30},
	{"skirt_right_out", 31},
	{"skirt_right_mid", 32},
	{"skirt_right_in", 33},
	{"leg_right_out", 34},
	{"leg_right_in", 35},
	{"shoes_right_bottom", 36},
	{"shoes_right_ankle", 37},
	{"shoes_right_front", 38},
	{"mask_LED", 0},
	{"glove_left_LED", 1},
	{"glove_right_LED", 2},
	{"shoes_left_LED", 3},
	{"hat_ring_LED", 4},
	{"hat_main_LED", 5},
}

// Table is an immutable name → channel mapping. The zero value is an empty
// table. A Table is safe for concurrent use because nothing mutates it after
// construction.
type Table struct {
	channels map[string]int
}

// Default builds the table for the current hardware generation. It is meant
// to be called once at startup and the result passed to every compile.
func Default() Table {
	t := Table{channels: make(map[string]int, len(defaultEntries))}
	for _, e := range defaultEntries {
		t.channels[e.name] = e.channel
	}
	return t
}

// New builds a table from an explicit mapping. The map is copied.
func New(m map[string]int) Table {
	t := Table{channels: make(map[string]int, len(m))}
	for k, v := range m {
		t.channels[k] = v
	}
	return t
}

// Lookup returns the channel for name and whether it is known.
func (t Table) Lookup(name string) (int, bool) {
	ch, ok := t.channels[name]
	return ch, ok
}

// SortKey returns the channel for name, or Unknown.
func (t Table) SortKey(name string) int {
	if ch, ok := t.channels[name]; ok {
		return ch
	}
	return Unknown
}

// Len returns the number of entries.
func (t Table) Len() int {
	return len(t.channels)
}

// Names returns all part names in channel order.
func (t Table) Names() []string {
	names := make([]string, 0, len(t.channels))
	for name := range t.channels {
		names = append(names, name)
	}
	t.Sort(names)
	return names
}

// Sort orders names in place by channel, unknown names first, ties by name.
func (t Table) Sort(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		ki, kj := t.SortKey(names[i]), t.SortKey(names[j])
		if ki != kj {
			return ki < kj
		}
		return names[i] < names[j]
	})
}
