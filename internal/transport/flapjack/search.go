package flapjack

import (
	"context"
	"net/http"
	"strings"

	"github.com/kailas-cloud/merchstudio/internal/domain"
	"github.com/kailas-cloud/merchstudio/internal/domain/merch/result"
)

type searchRequest struct {
	Query       string `json:"query"`
	HitsPerPage int    `json:"hitsPerPage"`
	EnableRules bool   `json:"enableRules"`
}

type searchResponse struct {
	Hits   []map[string]any `json:"hits"`
	NbHits int              `json:"nbHits"`
	Query  *string          `json:"query"`
}

// Search runs query with rules disabled and returns the base relevance order. The set carries the
// query the engine says it answered, so callers can detect stale responses.
func (c *Client) Search(ctx context.Context, index, query string) (result.Set, error) {
	var resp searchResponse
	err := c.do(ctx, call{
		op:       "search",
		method:   http.MethodPost,
		path:     indexPath(index, "query"),
		body:     searchRequest{Query: query, HitsPerPage: c.hitsPerPage},
		out:      &resp,
		notFound: domain.ErrNotFound,
	})
	if err != nil {
		return result.Set{}, err
	}

	answered := query
	if resp.Query != nil {
		answered = *resp.Query
	}
	return result.NewSet(answered, toHits(resp.Hits)), nil
}

// toHits splits engine hits into identity and display fields. Engine metadata (keys starting
// with "_") is dropped.
func toHits(raw []map[string]any) []result.Hit {
	hits := make([]result.Hit, 0, len(raw))
	for _, h := range raw {
		id, _ := h["objectID"].(string)
		fields := make(map[string]any, len(h))
		for k, v := range h {
			if k == "objectID" || strings.HasPrefix(k, "_") {
				continue
			}
			fields[k] = v
		}
		hits = append(hits, result.Hit{ID: id, Fields: fields})
	}
	return hits
}
