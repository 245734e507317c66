package chi

import (
	"fmt"

	"github.com/kailas-cloud/merchstudio/internal/domain/merch/editor"
	domhistory "github.com/kailas-cloud/merchstudio/internal/domain/merch/history"
	"github.com/kailas-cloud/merchstudio/internal/domain/merch/result"
	"github.com/kailas-cloud/merchstudio/internal/domain/merch/rule"
	domsession "github.com/kailas-cloud/merchstudio/internal/domain/merch/session"
)

// OpenSessionRequest is the body of POST /sessions.
type OpenSessionRequest struct {
	Index string `json:"index"`
	Query string `json:"query"`
}

// ChangeQueryRequest is the body of PUT /sessions/{id}/query.
type ChangeQueryRequest struct {
	Query *string `json:"query"`
}

// ActionRequest is the body of POST /sessions/{id}/actions.
type ActionRequest struct {
	Action   string `json:"action"`
	Identity string `json:"identity,omitempty"`
	Position *int   `json:"position,omitempty"`
	Target   string `json:"target,omitempty"`
}

// PreviewRequest is the body of POST /preview.
type PreviewRequest struct {
	Query string           `json:"query"`
	Rule  rule.Rule        `json:"rule"`
	Hits  []map[string]any `json:"hits"`
}

// ItemResponse is one row of the display list.
type ItemResponse struct {
	ObjectID    string         `json:"objectID"`
	Position    int            `json:"position"`
	BaseRank    int            `json:"base_rank"`
	Pinned      bool           `json:"pinned"`
	PinPosition *int           `json:"pin_position,omitempty"`
	Label       string         `json:"label,omitempty"`
	Fields      map[string]any `json:"fields,omitempty"`
}

// PinResponse is one stored pin.
type PinResponse struct {
	ObjectID string `json:"objectID"`
	Position int    `json:"position"`
}

// ViewResponse is the editor view of a session.
type ViewResponse struct {
	ID        string         `json:"id"`
	Index     string         `json:"index"`
	Query     string         `json:"query"`
	RuleID    string         `json:"rule_id"`
	Revision  int            `json:"revision"`
	Items     []ItemResponse `json:"items"`
	Pinned    []PinResponse  `json:"pinned"`
	Hidden    []string       `json:"hidden"`
	CreatedAt int64          `json:"created_at"`
	UpdatedAt int64          `json:"updated_at"`
}

// SaveResponse is returned by POST /sessions/{id}/save.
type SaveResponse struct {
	Rule rule.Rule    `json:"rule"`
	View ViewResponse `json:"view"`
}

// HistoryEntryResponse is one recorded rule operation.
type HistoryEntryResponse struct {
	Op   string     `json:"op"`
	At   int64      `json:"at"`
	Rule *rule.Rule `json:"rule,omitempty"`
}

// HistoryResponse is returned by the rule history endpoint.
type HistoryResponse struct {
	Items []HistoryEntryResponse `json:"items"`
}

// PreviewItemResponse is one row of a rule preview.
type PreviewItemResponse struct {
	ObjectID string         `json:"objectID"`
	BaseRank int            `json:"base_rank"`
	Fields   map[string]any `json:"fields,omitempty"`
}

// PreviewResponse is returned by POST /preview.
type PreviewResponse struct {
	Fired bool                  `json:"fired"`
	Items []PreviewItemResponse `json:"items"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func viewToResponse(s domsession.Session) ViewResponse {
	entries := s.Display()
	items := make([]ItemResponse, len(entries))
	for i, e := range entries {
		item := ItemResponse{
			ObjectID: e.Item.ID(),
			Position: e.Index,
			BaseRank: e.Item.BaseRank(),
			Pinned:   e.Pinned(),
			Label:    e.Label(),
			Fields:   e.Item.Fields(),
		}
		if e.Pinned() {
			p := e.PinPosition
			item.PinPosition = &p
		}
		items[i] = item
	}

	pins := s.Overrides().Pins()
	pinned := make([]PinResponse, len(pins))
	for i, p := range pins {
		pinned[i] = PinResponse{ObjectID: p.ID, Position: p.Position}
	}

	hidden := s.Overrides().Hidden()
	if hidden == nil {
		hidden = []string{}
	}

	return ViewResponse{
		ID:        s.ID(),
		Index:     s.Index(),
		Query:     s.Query(),
		RuleID:    s.RuleID(),
		Revision:  s.Revision(),
		Items:     items,
		Pinned:    pinned,
		Hidden:    hidden,
		CreatedAt: s.CreatedAt(),
		UpdatedAt: s.UpdatedAt(),
	}
}

func actionFromRequest(req ActionRequest) editor.Action {
	a := editor.Action{
		Kind:     editor.ActionKind(req.Action),
		Identity: req.Identity,
		Target:   req.Target,
	}
	if req.Position != nil {
		a.Position = *req.Position
	}
	return a
}

func historyToResponse(entries []domhistory.Entry) HistoryResponse {
	items := make([]HistoryEntryResponse, len(entries))
	for i, e := range entries {
		items[i] = HistoryEntryResponse{Op: string(e.Op), At: e.At.UnixMilli(), Rule: e.Rule}
	}
	return HistoryResponse{Items: items}
}

// hitsFromRequest converts engine-shaped hits into result hits. Every hit needs a string objectID.
func hitsFromRequest(raw []map[string]any) ([]result.Hit, error) {
	hits := make([]result.Hit, 0, len(raw))
	for i, h := range raw {
		id, ok := h["objectID"].(string)
		if !ok || id == "" {
			return nil, fmt.Errorf("hits[%d]: objectID is required", i)
		}
		fields := make(map[string]any, len(h))
		for k, v := range h {
			if k != "objectID" {
				fields[k] = v
			}
		}
		hits = append(hits, result.Hit{ID: id, Fields: fields})
	}
	return hits, nil
}

func previewToResponse(items []result.Item, fired bool) PreviewResponse {
	out := make([]PreviewItemResponse, len(items))
	for i, it := range items {
		out[i] = PreviewItemResponse{ObjectID: it.ID(), BaseRank: it.BaseRank(), Fields: it.Fields()}
	}
	return PreviewResponse{Fired: fired, Items: out}
}
