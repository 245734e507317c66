package session

import (
	"github.com/kailas-cloud/merchstudio/internal/domain/merch/override"
	"github.com/kailas-cloud/merchstudio/internal/domain/merch/result"
	domsession "github.com/kailas-cloud/merchstudio/internal/domain/merch/session"
)

// sessionRow is the JSON-serializable representation of a session.
type sessionRow struct {
	ID        string   `json:"id"`
	Index     string   `json:"index"`
	Query     string   `json:"query"`
	Hits      []hitRow `json:"hits"`
	Pinned    []string `json:"pinned,omitempty"`
	Hidden    []string `json:"hidden,omitempty"`
	Version   int      `json:"version"`
	Revision  int      `json:"revision"`
	CreatedAt int64    `json:"created_at"`
	UpdatedAt int64    `json:"updated_at"`
}

type hitRow struct {
	ObjectID string         `json:"objectID"`
	Fields   map[string]any `json:"fields,omitempty"`
}

func toRow(s domsession.Session) sessionRow {
	raw := s.Results().Hits()
	hits := make([]hitRow, len(raw))
	for i, h := range raw {
		hits[i] = hitRow{ObjectID: h.ID, Fields: h.Fields}
	}
	o := s.Overrides()
	return sessionRow{
		ID:        s.ID(),
		Index:     s.Index(),
		Query:     s.Query(),
		Hits:      hits,
		Pinned:    o.PinnedIDs(),
		Hidden:    o.Hidden(),
		Version:   o.Version(),
		Revision:  s.Revision(),
		CreatedAt: s.CreatedAt(),
		UpdatedAt: s.UpdatedAt(),
	}
}

func (r sessionRow) toDomain() domsession.Session {
	hits := make([]result.Hit, len(r.Hits))
	for i, h := range r.Hits {
		hits[i] = result.Hit{ID: h.ObjectID, Fields: h.Fields}
	}
	return domsession.Reconstruct(
		r.ID,
		r.Index,
		result.NewSet(r.Query, hits),
		override.Reconstruct(r.Pinned, r.Hidden, r.Version),
		r.Revision,
		r.CreatedAt,
		r.UpdatedAt,
	)
}
