// Package override holds the pin/hide overrides an operator applied to one query.
//
// Store is a value type. Every mutation returns a new Store and leaves the receiver untouched,
// so callers can keep older values for undo. Invariants hold for every value that escapes
// this package:
//   - pin positions are exactly 0..len(pins)-1, in order;
//   - an identity is never pinned and hidden at the same time.
//
// Mutations that change nothing return the receiver unchanged, including its version.
package override

// Pin is a pinned identity and its zero-based target position.
type Pin struct {
	ID       string
	Position int
}

// Store is the override state for one query in one editing session.
type Store struct {
	pins    []string // index is the position
	hidden  []string // insertion order
	version int
}

// New returns an empty store.
func New() Store { return Store{} }

// Reconstruct builds a store from persisted state. Duplicates are dropped (first wins) and an
// identity present in both lists stays hidden only.
func Reconstruct(pinned, hidden []string, version int) Store {
	s := Store{version: version}
	hiddenSet := make(map[string]struct{}, len(hidden))
	for _, id := range hidden {
		if id == "" {
			continue
		}
		if _, dup := hiddenSet[id]; dup {
			continue
		}
		hiddenSet[id] = struct{}{}
		s.hidden = append(s.hidden, id)
	}
	seen := make(map[string]struct{}, len(pinned))
	for _, id := range pinned {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		if _, h := hiddenSet[id]; h {
			continue
		}
		seen[id] = struct{}{}
		s.pins = append(s.pins, id)
	}
	return s
}

// Version increments on every effective mutation.
func (s Store) Version() int { return s.version }

// Len returns the number of pins.
func (s Store) Len() int { return len(s.pins) }

// IsEmpty reports whether there are neither pins nor hides.
func (s Store) IsEmpty() bool { return len(s.pins) == 0 && len(s.hidden) == 0 }

// Pins returns the pins ordered by position.
func (s Store) Pins() []Pin {
	out := make([]Pin, len(s.pins))
	for i, id := range s.pins {
		out[i] = Pin{ID: id, Position: i}
	}
	return out
}

// PinnedIDs returns the pinned identities ordered by position.
func (s Store) PinnedIDs() []string { return clone(s.pins) }

// Hidden returns the hidden identities in the order they were hidden.
func (s Store) Hidden() []string { return clone(s.hidden) }

// Position returns the pin position of id.
func (s Store) Position(id string) (int, bool) {
	for i, p := range s.pins {
		if p == id {
			return i, true
		}
	}
	return 0, false
}

// IsPinned reports whether id is pinned.
func (s Store) IsPinned(id string) bool {
	_, ok := s.Position(id)
	return ok
}

// IsHidden reports whether id is hidden.
func (s Store) IsHidden(id string) bool {
	return indexOf(s.hidden, id) >= 0
}

// Knows reports whether id is referenced by a pin or a hide.
func (s Store) Knows(id string) bool {
	return s.IsPinned(id) || s.IsHidden(id)
}

// Pin inserts or moves id to position. Pins at or after position shift down by one.
// A hidden id is un-hidden first. Position is clamped to [0, len(pins)] counted without id.
func (s Store) Pin(id string, position int) Store {
	if id == "" {
		return s
	}
	pins := clone(s.pins)
	hidden := s.hidden
	if i := indexOf(pins, id); i >= 0 {
		pins = removeAt(pins, i)
	}
	if i := indexOf(hidden, id); i >= 0 {
		hidden = removeAt(clone(hidden), i)
	}
	position = clamp(position, 0, len(pins))
	if cur, ok := s.Position(id); ok && cur == position {
		return s
	}
	pins = insertAt(pins, position, id)
	return Store{pins: pins, hidden: hidden, version: s.version + 1}
}

// Unpin removes id from the pins. Later pins shift up to close the gap.
func (s Store) Unpin(id string) Store {
	i := indexOf(s.pins, id)
	if i < 0 {
		return s
	}
	return Store{pins: removeAt(clone(s.pins), i), hidden: s.hidden, version: s.version + 1}
}

// MoveUp swaps id with the pin right above it. No-op for the first pin.
func (s Store) MoveUp(id string) Store {
	i := indexOf(s.pins, id)
	if i <= 0 {
		return s
	}
	return s.swap(i, i-1)
}

// MoveDown swaps id with the pin right below it. No-op for the last pin.
func (s Store) MoveDown(id string) Store {
	i := indexOf(s.pins, id)
	if i < 0 || i >= len(s.pins)-1 {
		return s
	}
	return s.swap(i, i+1)
}

// Hide excludes id from display and drops its pin.
func (s Store) Hide(id string) Store {
	if id == "" || s.IsHidden(id) {
		return s
	}
	pins := s.pins
	if i := indexOf(pins, id); i >= 0 {
		pins = removeAt(clone(pins), i)
	}
	hidden := append(clone(s.hidden), id)
	return Store{pins: pins, hidden: hidden, version: s.version + 1}
}

// Unhide makes id visible again.
func (s Store) Unhide(id string) Store {
	i := indexOf(s.hidden, id)
	if i < 0 {
		return s
	}
	return Store{pins: s.pins, hidden: removeAt(clone(s.hidden), i), version: s.version + 1}
}

// Reset clears all pins and hides.
func (s Store) Reset() Store {
	if s.IsEmpty() {
		return s
	}
	return Store{version: s.version + 1}
}

func (s Store) swap(i, j int) Store {
	pins := clone(s.pins)
	pins[i], pins[j] = pins[j], pins[i]
	return Store{pins: pins, hidden: s.hidden, version: s.version + 1}
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func clone(ids []string) []string {
	if ids == nil {
		return nil
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

// removeAt and insertAt mutate their argument; callers pass a clone.
func removeAt(ids []string, i int) []string {
	return append(ids[:i], ids[i+1:]...)
}

func insertAt(ids []string, i int, id string) []string {
	ids = append(ids, "")
	copy(ids[i+1:], ids[i:])
	ids[i] = id
	return ids
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
