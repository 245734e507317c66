// Package ranking merges base relevance order with merchandising overrides.
package ranking

import (
	"strconv"

	"github.com/kailas-cloud/merchstudio/internal/domain/merch/override"
	"github.com/kailas-cloud/merchstudio/internal/domain/merch/result"
)

// Entry is one row of the display list.
type Entry struct {
	Item result.Item
	// Index is the zero-based display position.
	Index int
	// PinPosition is the rank within the visible pinned block; -1 when not pinned.
	// Pins for items outside the set take no rank.
	PinPosition int
}

// Pinned reports whether the entry comes from a pin.
func (e Entry) Pinned() bool { return e.PinPosition >= 0 }

// Label returns "Pinned #N" for pinned entries (N = PinPosition + 1) and "" otherwise.
func (e Entry) Label() string {
	if !e.Pinned() {
		return ""
	}
	return "Pinned #" + strconv.Itoa(e.PinPosition+1)
}

// Reconcile computes the display order: hidden items are dropped, pinned items come first in
// position order, the rest follow in base rank order.
// Overrides for identities absent from the set are ignored.
func Reconcile(set result.Set, store override.Store) []Entry {
	items := set.Items()

	hidden := make(map[string]struct{})
	for _, id := range store.Hidden() {
		hidden[id] = struct{}{}
	}

	out := make([]Entry, 0, len(items))
	pinned := make(map[string]struct{}, store.Len())
	for _, p := range store.Pins() {
		it, ok := set.Item(p.ID)
		if !ok {
			continue
		}
		pinned[p.ID] = struct{}{}
		out = append(out, Entry{Item: it, Index: len(out), PinPosition: len(out)})
	}

	for _, it := range items {
		if _, ok := hidden[it.ID()]; ok {
			continue
		}
		if _, ok := pinned[it.ID()]; ok {
			continue
		}
		out = append(out, Entry{Item: it, Index: len(out), PinPosition: -1})
	}
	return out
}

// IndexOf returns the display index of id, or -1.
func IndexOf(entries []Entry, id string) int {
	for _, e := range entries {
		if e.Item.ID() == id {
			return e.Index
		}
	}
	return -1
}

// IDs returns the identities in display order.
func IDs(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Item.ID()
	}
	return out
}
