// Package rule defines the query rule wire format shared with the search engine and compiles
// merchandising overrides into it.
package rule

import (
	"encoding/json"
	"strings"
	"time"
)

// Anchoring controls how a condition pattern is compared with the query.
type Anchoring string

// Anchoring values understood by the engine.
const (
	AnchoringIs         Anchoring = "is"
	AnchoringStartsWith Anchoring = "startsWith"
	AnchoringEndsWith   Anchoring = "endsWith"
	AnchoringContains   Anchoring = "contains"
)

// Condition triggers a rule for matching queries.
type Condition struct {
	Pattern   string    `json:"pattern"`
	Anchoring Anchoring `json:"anchoring"`
	Context   string    `json:"context,omitempty"`
}

// Promote places one object (or a run of objects) at a position.
// Exactly one of ObjectID and ObjectIDs is set.
type Promote struct {
	ObjectID  string   `json:"objectID,omitempty"`
	ObjectIDs []string `json:"objectIDs,omitempty"`
	Position  int      `json:"position"`
}

// Hide removes one object from the results.
type Hide struct {
	ObjectID string `json:"objectID"`
}

// Consequence is what the engine does when a rule fires.
type Consequence struct {
	Promote        []Promote       `json:"promote,omitempty"`
	Hide           []Hide          `json:"hide,omitempty"`
	FilterPromotes *bool           `json:"filterPromotes,omitempty"`
	UserData       json.RawMessage `json:"userData,omitempty"`
}

// TimeRange is a validity window in unix seconds, both ends inclusive.
type TimeRange struct {
	From  int64 `json:"from"`
	Until int64 `json:"until"`
}

// Rule is a query rule as stored by the engine.
type Rule struct {
	ObjectID    string      `json:"objectID"`
	Conditions  []Condition `json:"conditions"`
	Consequence Consequence `json:"consequence"`
	Description string      `json:"description"`
	Enabled     bool        `json:"enabled"`
	Validity    []TimeRange `json:"validity,omitempty"`
}

// UnmarshalJSON decodes a rule; a missing "enabled" means enabled.
func (r *Rule) UnmarshalJSON(data []byte) error {
	type plain Rule
	aux := struct {
		*plain
		Enabled *bool `json:"enabled"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err //nolint:wrapcheck // decoding hook
	}
	r.Enabled = aux.Enabled == nil || *aux.Enabled
	return nil
}

// IsValidAt reports whether ts (unix seconds) falls in any validity window.
// Rules without windows are always valid.
func (r Rule) IsValidAt(ts int64) bool {
	if len(r.Validity) == 0 {
		return true
	}
	for _, v := range r.Validity {
		if ts >= v.From && ts <= v.Until {
			return true
		}
	}
	return false
}

// Matches reports whether the rule fires for query at time now. Comparison is case-insensitive.
// A rule without conditions matches every query.
func (r Rule) Matches(query string, now time.Time) bool {
	if !r.Enabled || !r.IsValidAt(now.Unix()) {
		return false
	}
	if len(r.Conditions) == 0 {
		return true
	}
	q := strings.ToLower(query)
	for _, c := range r.Conditions {
		if c.matches(q) {
			return true
		}
	}
	return false
}

func (c Condition) matches(lowerQuery string) bool {
	p := strings.ToLower(c.Pattern)
	switch c.Anchoring {
	case AnchoringIs:
		return lowerQuery == p
	case AnchoringStartsWith:
		return strings.HasPrefix(lowerQuery, p)
	case AnchoringEndsWith:
		return strings.HasSuffix(lowerQuery, p)
	case AnchoringContains:
		return strings.Contains(lowerQuery, p)
	default:
		return false
	}
}

// IsMerchandising reports whether the rule belongs to the studio namespace.
func (r Rule) IsMerchandising() bool {
	return strings.HasPrefix(r.ObjectID, Namespace)
}

// Page is one page of a rule search.
type Page struct {
	Hits    []Rule `json:"hits"`
	NbHits  int    `json:"nbHits"`
	Page    int    `json:"page"`
	NbPages int    `json:"nbPages"`
}
