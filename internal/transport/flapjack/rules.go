package flapjack

import (
	"context"
	"net/http"
	"net/url"

	"github.com/kailas-cloud/merchstudio/internal/domain"
	"github.com/kailas-cloud/merchstudio/internal/domain/merch/rule"
)

const defaultRulesPerPage = 20

type ruleSearchRequest struct {
	Query       string `json:"query"`
	Page        int    `json:"page"`
	HitsPerPage int    `json:"hitsPerPage"`
}

// PutRule creates or replaces a rule.
func (c *Client) PutRule(ctx context.Context, index string, r rule.Rule) error {
	return c.do(ctx, call{
		op:     "put_rule",
		method: http.MethodPut,
		path:   indexPath(index, "rules", url.PathEscape(r.ObjectID)),
		body:   r,
	})
}

// GetRule fetches a rule. A missing rule yields domain.ErrRuleNotFound.
func (c *Client) GetRule(ctx context.Context, index, id string) (rule.Rule, error) {
	var r rule.Rule
	err := c.do(ctx, call{
		op:       "get_rule",
		method:   http.MethodGet,
		path:     indexPath(index, "rules", url.PathEscape(id)),
		out:      &r,
		notFound: domain.ErrRuleNotFound,
	})
	if err != nil {
		return rule.Rule{}, err
	}
	return r, nil
}

// DeleteRule removes a rule. A missing rule yields domain.ErrRuleNotFound.
func (c *Client) DeleteRule(ctx context.Context, index, id string) error {
	return c.do(ctx, call{
		op:       "delete_rule",
		method:   http.MethodDelete,
		path:     indexPath(index, "rules", url.PathEscape(id)),
		notFound: domain.ErrRuleNotFound,
	})
}

// SearchRules lists rules matching query, one page at a time. Pages are zero-based.
func (c *Client) SearchRules(ctx context.Context, index, query string, page, hitsPerPage int) (rule.Page, error) {
	q := ruleSearchRequest{Query: query, Page: page, HitsPerPage: hitsPerPage}
	if q.HitsPerPage <= 0 {
		q.HitsPerPage = defaultRulesPerPage
	}
	if q.Page < 0 {
		q.Page = 0
	}
	var out rule.Page
	err := c.do(ctx, call{
		op:       "search_rules",
		method:   http.MethodPost,
		path:     indexPath(index, "rules", "search"),
		body:     q,
		out:      &out,
		notFound: domain.ErrNotFound,
	})
	if err != nil {
		return rule.Page{}, err
	}
	if out.Hits == nil {
		out.Hits = []rule.Rule{}
	}
	return out, nil
}
