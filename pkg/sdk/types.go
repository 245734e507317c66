package merchstudio

import (
	"github.com/kailas-cloud/merchstudio/internal/domain/merch/rule"
	domsession "github.com/kailas-cloud/merchstudio/internal/domain/merch/session"
)

// Rule is a query rule in the engine's wire format.
type Rule = rule.Rule

// Item is one row of the display list.
type Item struct {
	ObjectID string
	Position int
	BaseRank int
	// PinPosition is the stored pin position, or -1 when the item is not pinned.
	PinPosition int
	Label       string
	Fields      map[string]any
}

// Pinned reports whether the item comes from a pin.
func (i Item) Pinned() bool { return i.PinPosition >= 0 }

// Pin is one stored pin.
type Pin struct {
	ObjectID string
	Position int
}

// View is the editor state of a session.
type View struct {
	ID       string
	Index    string
	Query    string
	RuleID   string
	Revision int
	Items    []Item
	Pinned   []Pin
	Hidden   []string
}

// IDs returns the object identities in display order.
func (v View) IDs() []string {
	out := make([]string, len(v.Items))
	for i, it := range v.Items {
		out[i] = it.ObjectID
	}
	return out
}

func viewFromSession(s domsession.Session) View {
	entries := s.Display()
	items := make([]Item, len(entries))
	for i, e := range entries {
		items[i] = Item{
			ObjectID:    e.Item.ID(),
			Position:    e.Index,
			BaseRank:    e.Item.BaseRank(),
			PinPosition: e.PinPosition,
			Label:       e.Label(),
			Fields:      e.Item.Fields(),
		}
	}

	pins := s.Overrides().Pins()
	pinned := make([]Pin, len(pins))
	for i, p := range pins {
		pinned[i] = Pin{ObjectID: p.ID, Position: p.Position}
	}

	return View{
		ID:       s.ID(),
		Index:    s.Index(),
		Query:    s.Query(),
		RuleID:   s.RuleID(),
		Revision: s.Revision(),
		Items:    items,
		Pinned:   pinned,
		Hidden:   s.Overrides().Hidden(),
	}
}
