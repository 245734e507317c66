// Package editor implements the position editing operations of the merchandising studio.
//
// The editor is bound to the result set the operator is looking at. Operations naming an
// identity that is neither in that set nor referenced by the store are ignored: results can
// change between render and click.
package editor

import (
	"fmt"

	"github.com/kailas-cloud/merchstudio/internal/domain"
	"github.com/kailas-cloud/merchstudio/internal/domain/merch/override"
	"github.com/kailas-cloud/merchstudio/internal/domain/merch/ranking"
	"github.com/kailas-cloud/merchstudio/internal/domain/merch/result"
)

// Editor applies position edits against one result set.
type Editor struct {
	set result.Set
}

// New creates an editor over set.
func New(set result.Set) Editor {
	return Editor{set: set}
}

func (e Editor) known(s override.Store, id string) bool {
	return e.set.Contains(id) || s.Knows(id)
}

// Pin pins id at position.
func (e Editor) Pin(s override.Store, id string, position int) override.Store {
	if !e.known(s, id) {
		return s
	}
	return s.Pin(id, position)
}

// Unpin removes the pin of id.
func (e Editor) Unpin(s override.Store, id string) override.Store {
	return s.Unpin(id)
}

// MoveUp moves a pinned id one slot up.
func (e Editor) MoveUp(s override.Store, id string) override.Store {
	return s.MoveUp(id)
}

// MoveDown moves a pinned id one slot down.
func (e Editor) MoveDown(s override.Store, id string) override.Store {
	return s.MoveDown(id)
}

// DragReorder drops source onto the slot currently shown for target. Dropping onto a pinned
// row is Pin(source, position of target). Dropping onto an unpinned row pins source at the
// end of the pinned block; display indexes are not store positions once the store holds
// pins for items outside the set. Unknown or invisible targets are ignored.
func (e Editor) DragReorder(s override.Store, source, target string) override.Store {
	if source == target || !e.known(s, source) {
		return s
	}
	if pos, ok := s.Position(target); ok {
		return s.Pin(source, pos)
	}
	if ranking.IndexOf(ranking.Reconcile(e.set, s), target) < 0 {
		return s
	}
	return s.Pin(source, s.Len())
}

// Hide hides id.
func (e Editor) Hide(s override.Store, id string) override.Store {
	if !e.known(s, id) {
		return s
	}
	return s.Hide(id)
}

// Unhide shows id again.
func (e Editor) Unhide(s override.Store, id string) override.Store {
	return s.Unhide(id)
}

// Reset clears all overrides.
func (e Editor) Reset(s override.Store) override.Store {
	return s.Reset()
}

// Apply dispatches a single action.
func (e Editor) Apply(s override.Store, a Action) (override.Store, error) {
	if err := a.Validate(); err != nil {
		return s, err
	}
	switch a.Kind {
	case ActionPin:
		return e.Pin(s, a.Identity, a.Position), nil
	case ActionUnpin:
		return e.Unpin(s, a.Identity), nil
	case ActionMoveUp:
		return e.MoveUp(s, a.Identity), nil
	case ActionMoveDown:
		return e.MoveDown(s, a.Identity), nil
	case ActionDrag:
		return e.DragReorder(s, a.Identity, a.Target), nil
	case ActionHide:
		return e.Hide(s, a.Identity), nil
	case ActionUnhide:
		return e.Unhide(s, a.Identity), nil
	case ActionReset:
		return e.Reset(s), nil
	default:
		return s, fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidAction, a.Kind)
	}
}
