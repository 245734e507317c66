package merchstudio

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/merchstudio/internal/domain/merch/editor"
	domsession "github.com/kailas-cloud/merchstudio/internal/domain/merch/session"
)

// StudioService edits the rules of one index. Edits are unconditional: the SDK does not
// expose session revisions for optimistic locking.
type StudioService struct {
	index string
	svc   studioUseCase
	obs   *observer
}

// Open starts a session for query. An existing rule for the query is loaded.
func (s *StudioService) Open(ctx context.Context, query string) (View, error) {
	return s.session("open", func() (domsession.Session, error) {
		return s.svc.Open(ctx, s.index, query)
	})
}

// View returns the current state of a session.
func (s *StudioService) View(ctx context.Context, sessionID string) (View, error) {
	return s.session("view", func() (domsession.Session, error) {
		return s.svc.Get(ctx, sessionID)
	})
}

// ChangeQuery switches the session to another query and loads that query's rule.
func (s *StudioService) ChangeQuery(ctx context.Context, sessionID, query string) (View, error) {
	return s.session("change_query", func() (domsession.Session, error) {
		return s.svc.ChangeQuery(ctx, sessionID, query, 0)
	})
}

// Refresh re-runs the session query. Overrides are kept.
func (s *StudioService) Refresh(ctx context.Context, sessionID string) (View, error) {
	return s.session("refresh", func() (domsession.Session, error) {
		return s.svc.Refresh(ctx, sessionID, 0)
	})
}

// Pin places id at position among the pins.
func (s *StudioService) Pin(ctx context.Context, sessionID, id string, position int) (View, error) {
	return s.apply(ctx, sessionID, editor.Action{Kind: editor.ActionPin, Identity: id, Position: position})
}

// Unpin returns id to its base rank.
func (s *StudioService) Unpin(ctx context.Context, sessionID, id string) (View, error) {
	return s.apply(ctx, sessionID, editor.Action{Kind: editor.ActionUnpin, Identity: id})
}

// MoveUp swaps a pinned id with the pin above it.
func (s *StudioService) MoveUp(ctx context.Context, sessionID, id string) (View, error) {
	return s.apply(ctx, sessionID, editor.Action{Kind: editor.ActionMoveUp, Identity: id})
}

// MoveDown swaps a pinned id with the pin below it.
func (s *StudioService) MoveDown(ctx context.Context, sessionID, id string) (View, error) {
	return s.apply(ctx, sessionID, editor.Action{Kind: editor.ActionMoveDown, Identity: id})
}

// Drag moves id to the display position of target and pins it there.
func (s *StudioService) Drag(ctx context.Context, sessionID, id, target string) (View, error) {
	return s.apply(ctx, sessionID, editor.Action{Kind: editor.ActionDrag, Identity: id, Target: target})
}

// Hide removes id from the display.
func (s *StudioService) Hide(ctx context.Context, sessionID, id string) (View, error) {
	return s.apply(ctx, sessionID, editor.Action{Kind: editor.ActionHide, Identity: id})
}

// Unhide shows a hidden id again.
func (s *StudioService) Unhide(ctx context.Context, sessionID, id string) (View, error) {
	return s.apply(ctx, sessionID, editor.Action{Kind: editor.ActionUnhide, Identity: id})
}

// Reset clears every pin and hide of the session.
func (s *StudioService) Reset(ctx context.Context, sessionID string) (View, error) {
	return s.apply(ctx, sessionID, editor.Action{Kind: editor.ActionReset})
}

// Save writes the session overrides to the engine as a rule.
func (s *StudioService) Save(ctx context.Context, sessionID string) (Rule, View, error) {
	type saved struct {
		rule Rule
		view View
	}
	out, err := observed(s.obs, "save", func() (saved, error) {
		r, sess, err := s.svc.Save(ctx, sessionID, 0)
		if err != nil {
			return saved{}, fmt.Errorf("save: %w", err)
		}
		return saved{rule: r, view: viewFromSession(sess)}, nil
	})
	return out.rule, out.view, err
}

// DeleteRule removes the saved rule for the session query. The session keeps its overrides.
func (s *StudioService) DeleteRule(ctx context.Context, sessionID string) (View, error) {
	return s.session("delete_rule", func() (domsession.Session, error) {
		return s.svc.DeleteRule(ctx, sessionID)
	})
}

// Close discards the session without touching the engine.
func (s *StudioService) Close(ctx context.Context, sessionID string) error {
	_, err := observed(s.obs, "close", func() (struct{}, error) {
		if err := s.svc.Close(ctx, sessionID); err != nil {
			return struct{}{}, fmt.Errorf("close: %w", err)
		}
		return struct{}{}, nil
	})
	return err
}

func (s *StudioService) apply(ctx context.Context, sessionID string, a editor.Action) (View, error) {
	op := string(a.Kind)
	return s.session(op, func() (domsession.Session, error) {
		if err := a.Validate(); err != nil {
			return domsession.Session{}, err //nolint:wrapcheck // already carries ErrInvalidAction
		}
		return s.svc.Apply(ctx, sessionID, a, 0)
	})
}

func (s *StudioService) session(op string, fn func() (domsession.Session, error)) (View, error) {
	return observed(s.obs, op, func() (View, error) {
		sess, err := fn()
		if err != nil {
			return View{}, fmt.Errorf("%s: %w", op, err)
		}
		return viewFromSession(sess), nil
	})
}
