package editor

import (
	"fmt"

	"github.com/kailas-cloud/merchstudio/internal/domain"
)

// ActionKind names a position editor operation.
type ActionKind string

// Supported actions.
const (
	ActionPin      ActionKind = "pin"
	ActionUnpin    ActionKind = "unpin"
	ActionMoveUp   ActionKind = "move_up"
	ActionMoveDown ActionKind = "move_down"
	ActionDrag     ActionKind = "drag"
	ActionHide     ActionKind = "hide"
	ActionUnhide   ActionKind = "unhide"
	ActionReset    ActionKind = "reset"
)

// IsValid checks if the kind is supported.
func (k ActionKind) IsValid() bool {
	switch k {
	case ActionPin, ActionUnpin, ActionMoveUp, ActionMoveDown, ActionDrag, ActionHide, ActionUnhide, ActionReset:
		return true
	}
	return false
}

// Action is one operator edit.
type Action struct {
	Kind     ActionKind
	Identity string
	// Position is used by pin.
	Position int
	// Target is used by drag.
	Target string
}

// Validate checks that the fields required by Kind are set.
func (a Action) Validate() error {
	if !a.Kind.IsValid() {
		return fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidAction, a.Kind)
	}
	if a.Kind == ActionReset {
		return nil
	}
	if a.Identity == "" {
		return fmt.Errorf("%w: %s requires identity", domain.ErrInvalidAction, a.Kind)
	}
	if a.Kind == ActionDrag && a.Target == "" {
		return fmt.Errorf("%w: drag requires target", domain.ErrInvalidAction)
	}
	return nil
}
