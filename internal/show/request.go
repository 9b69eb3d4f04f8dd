package show

import (
	"fmt"

	"github.com/lightdance/showcompiler/internal/channel"
	"github.com/lightdance/showcompiler/internal/showfile"
)

// LEDPart is a requested LED strip.
type LEDPart struct {
	ID  int `json:"id"`
	Len int `json:"len"`
}

// Request selects what to compile for one dancer.
type Request struct {
	Dancer string `json:"dancer"`
	// Fibers maps optical-fiber part names to a channel hint. The hint is
	// informational; wire order comes from the channel table.
	Fibers map[string]int `json:"OFPARTS"`
	// LEDs maps logical LED part names to their declared strip.
	LEDs map[string]LEDPart `json:"LEDPARTS"`
	// Merge optionally maps a logical LED part to the physical parts that
	// are authored and transmitted as that one strip.
	Merge map[string][]string `json:"LEDPARTS_MERGE,omitempty"`
}

// LookupFilter returns the physical part names whose records feed the
// logical LED part: the declared merge list if any, else the part itself.
func (r *Request) LookupFilter(logical string) []string {
	if merged, ok := r.Merge[logical]; ok && len(merged) > 0 {
		return merged
	}
	return []string{logical}
}

// Merged reports whether logical has a merge declaration.
func (r *Request) Merged(logical string) bool {
	merged, ok := r.Merge[logical]
	return ok && len(merged) > 0
}

// FiberOrder returns the requested fiber names in channel order.
func (r *Request) FiberOrder(t channel.Table) []string {
	names := make([]string, 0, len(r.Fibers))
	for name := range r.Fibers {
		names = append(names, name)
	}
	t.Sort(names)
	return names
}

// LEDOrder returns the requested logical LED names in channel order.
func (r *Request) LEDOrder(t channel.Table) []string {
	names := make([]string, 0, len(r.LEDs))
	for name := range r.LEDs {
		names = append(names, name)
	}
	t.Sort(names)
	return names
}

// validate checks the counts and lengths that must fit single-byte fields.
func (r *Request) validate() error {
	if len(r.Fibers) > showfile.MaxCount {
		return rangeViolation("Optical Fiber number out of bounds", fmt.Errorf("%d parts", len(r.Fibers)))
	}
	if len(r.LEDs) > showfile.MaxCount {
		return rangeViolation("LED strip number out of bounds", fmt.Errorf("%d strips", len(r.LEDs)))
	}
	for name, p := range r.LEDs {
		if p.Len < 1 || p.Len > showfile.MaxCount {
			return rangeViolation("LED strip length out of bounds", fmt.Errorf("%s has length %d", name, p.Len))
		}
	}
	return nil
}
