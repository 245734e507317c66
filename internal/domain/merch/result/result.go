// Package result models the base hits returned by the search engine for one query execution.
package result

// Hit is a raw engine hit in relevance order.
type Hit struct {
	ID     string
	Fields map[string]any
}

// Item is one ranked hit. Immutable once built.
type Item struct {
	id       string
	baseRank int
	fields   map[string]any
}

// NewItem creates an item at the given base rank.
func NewItem(id string, baseRank int, fields map[string]any) Item {
	return Item{id: id, baseRank: baseRank, fields: fields}
}

// ID returns the object identifier.
func (i Item) ID() string { return i.id }

// BaseRank returns the zero-based position in the unmodified relevance order.
func (i Item) BaseRank() int { return i.baseRank }

// Fields returns the display attributes. Opaque to the ranking engine.
func (i Item) Fields() map[string]any { return i.fields }

// Set is the ordered, read-only sequence of items for one query execution.
// A re-fetch produces a new Set; sets are never mutated in place.
type Set struct {
	query string
	items []Item
	index map[string]int
}

// NewSet builds a Set from hits in relevance order. Base ranks follow slice order.
// Hits without an ID and repeated IDs are dropped.
func NewSet(query string, hits []Hit) Set {
	items := make([]Item, 0, len(hits))
	index := make(map[string]int, len(hits))
	for _, h := range hits {
		if h.ID == "" {
			continue
		}
		if _, dup := index[h.ID]; dup {
			continue
		}
		index[h.ID] = len(items)
		items = append(items, NewItem(h.ID, len(items), h.Fields))
	}
	return Set{query: query, items: items, index: index}
}

// Query returns the query string the set was fetched for.
func (s Set) Query() string { return s.query }

// Len returns the number of items.
func (s Set) Len() int { return len(s.items) }

// Items returns a copy of the items in base rank order.
func (s Set) Items() []Item {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Contains reports whether id is part of the set.
func (s Set) Contains(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Item looks up an item by identifier.
func (s Set) Item(id string) (Item, bool) {
	i, ok := s.index[id]
	if !ok {
		return Item{}, false
	}
	return s.items[i], true
}

// Hits converts the set back to raw hits, preserving order.
func (s Set) Hits() []Hit {
	out := make([]Hit, len(s.items))
	for i, it := range s.items {
		out[i] = Hit{ID: it.id, Fields: it.fields}
	}
	return out
}
