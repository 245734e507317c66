package ranking

import (
	"sort"

	"github.com/kailas-cloud/merchstudio/internal/domain/merch/override"
	"github.com/kailas-cloud/merchstudio/internal/domain/merch/result"
)

// Preview applies promote/hide effects the way the search engine does at query time.
// Unlike Reconcile, pin positions may be sparse: a pin at position 5 lands at index 5 as long
// as enough organic items exist to fill the slots before it; otherwise it is appended.
// Pins are ordered by position, ties keep their order in pins. Repeated pins keep the first.
// Hidden ids only leave the organic list: an id that is both pinned and hidden is shown at its
// pin position.
func Preview(set result.Set, pins []override.Pin, hidden []string) []result.Item {
	hide := make(map[string]struct{}, len(hidden))
	for _, id := range hidden {
		hide[id] = struct{}{}
	}

	type placed struct {
		item result.Item
		pos  int
	}
	var promoted []placed
	taken := make(map[string]struct{}, len(pins))
	for _, p := range pins {
		if _, dup := taken[p.ID]; dup {
			continue
		}
		taken[p.ID] = struct{}{}
		it, ok := set.Item(p.ID)
		if !ok {
			continue
		}
		promoted = append(promoted, placed{item: it, pos: p.Position})
	}
	sort.SliceStable(promoted, func(i, j int) bool { return promoted[i].pos < promoted[j].pos })

	organic := make([]result.Item, 0, set.Len())
	for _, it := range set.Items() {
		if _, h := hide[it.ID()]; h {
			continue
		}
		if _, p := taken[it.ID()]; p {
			continue
		}
		organic = append(organic, it)
	}

	out := make([]result.Item, 0, len(promoted)+len(organic))
	next := 0
	for _, p := range promoted {
		for len(out) < p.pos && next < len(organic) {
			out = append(out, organic[next])
			next++
		}
		out = append(out, p.item)
	}
	return append(out, organic[next:]...)
}
