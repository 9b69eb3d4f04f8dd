package show

import "sort"

// stripSet holds built strips by source id, then by the length they were
// built at. A physical part can feed several channels at different
// lengths, so one id may carry several strips.
type stripSet map[int]map[int][]RGBA

func (s stripSet) put(id, length int, colors []RGBA) {
	byLen, ok := s[id]
	if !ok {
		byLen = make(map[int][]RGBA)
		s[id] = byLen
	}
	byLen[length] = colors
}

// get returns the strip for id built at length. When id exists only at
// other lengths, the longest one is returned and rendering fits it.
func (s stripSet) get(id, length int) ([]RGBA, bool) {
	byLen, ok := s[id]
	if !ok || len(byLen) == 0 {
		return nil, false
	}
	if colors, ok := byLen[length]; ok {
		return colors, true
	}
	longest := -1
	for n := range byLen {
		if n > longest {
			longest = n
		}
	}
	return byLen[longest], true
}

// stripKey identifies one gradient to build.
type stripKey struct {
	id     int
	length int
}

// keyOrder returns keys sorted by id, then length.
func keyOrder[T any](m map[stripKey]T) []stripKey {
	keys := make([]stripKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].id != keys[j].id {
			return keys[i].id < keys[j].id
		}
		return keys[i].length < keys[j].length
	})
	return keys
}
