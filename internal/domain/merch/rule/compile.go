package rule

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/kailas-cloud/merchstudio/internal/domain"
	"github.com/kailas-cloud/merchstudio/internal/domain/merch/override"
)

// Namespace prefixes every rule identifier produced by the studio.
const Namespace = "merch-"

const (
	maxSlugLen = 48
	hashLen    = 8
)

// ID derives the rule identifier for query. The same query always yields the same identifier,
// so saving again updates the stored rule. Queries that differ only in letter case share an
// identifier because the engine matches patterns case-insensitively.
//
// Format: merch-<slug>-<hash>, where slug is the folded query with accents stripped and runs of
// anything but [a-z0-9] collapsed to "-", and hash is the first 8 hex digits of the SHA-256 of
// the case-folded query. The hash keeps lossy slugs ("c++" vs "c#") apart.
func ID(query string) string {
	folded := cases.Fold().String(query)
	sum := sha256.Sum256([]byte(folded))
	hash := hex.EncodeToString(sum[:])[:hashLen]

	slug := slugify(folded)
	if slug == "" {
		return Namespace + hash
	}
	return Namespace + slug + "-" + hash
}

func slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}

	var b strings.Builder
	dash := false
	for _, r := range stripped {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimRight(b.String(), "-")
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(slug[:maxSlugLen], "-")
	}
	return slug
}

// Describe builds the operator-facing summary stored with the rule.
func Describe(query string, pins, hides int) string {
	return fmt.Sprintf("Pin %d result(s), hide %d result(s) for query %q", pins, hides, query)
}

// Compile turns overrides for query into an enabled rule anchored on the exact query.
// An empty store compiles to a rule with an empty consequence; callers decide whether that is
// worth saving.
func Compile(query string, store override.Store) Rule {
	pins := store.Pins()
	hidden := store.Hidden()

	var c Consequence
	if len(pins) > 0 {
		c.Promote = make([]Promote, len(pins))
		for i, p := range pins {
			c.Promote[i] = Promote{ObjectID: p.ID, Position: p.Position}
		}
	}
	if len(hidden) > 0 {
		c.Hide = make([]Hide, len(hidden))
		for i, id := range hidden {
			c.Hide[i] = Hide{ObjectID: id}
		}
	}

	return Rule{
		ObjectID:    ID(query),
		Conditions:  []Condition{{Pattern: query, Anchoring: AnchoringIs}},
		Consequence: c,
		Description: Describe(query, len(pins), len(hidden)),
		Enabled:     true,
	}
}

// Decompile loads a rule back into editable form. The query is the first condition's pattern.
// Promotions are ordered by position (ties keep their order in the rule) and renumbered from 0;
// multi-object promotions expand to consecutive slots. Objects both promoted and hidden stay
// hidden.
func Decompile(r Rule) (string, override.Store, error) {
	if len(r.Conditions) == 0 {
		return "", override.Store{}, fmt.Errorf("%w: rule %s has no condition", domain.ErrInvalidRule, r.ObjectID)
	}

	pins := Effects(r)
	sort.SliceStable(pins, func(i, j int) bool { return pins[i].Position < pins[j].Position })
	ordered := make([]string, len(pins))
	for i, p := range pins {
		ordered[i] = p.ID
	}

	hidden := make([]string, 0, len(r.Consequence.Hide))
	for _, h := range r.Consequence.Hide {
		hidden = append(hidden, h.ObjectID)
	}

	return r.Conditions[0].Pattern, override.Reconstruct(ordered, hidden, 0), nil
}

// Effects flattens the promotions of r into single-object pins with their raw positions.
func Effects(r Rule) []override.Pin {
	var pins []override.Pin
	for _, p := range r.Consequence.Promote {
		if len(p.ObjectIDs) > 0 {
			for i, id := range p.ObjectIDs {
				pins = append(pins, override.Pin{ID: id, Position: p.Position + i})
			}
			continue
		}
		if p.ObjectID != "" {
			pins = append(pins, override.Pin{ID: p.ObjectID, Position: p.Position})
		}
	}
	return pins
}

// HiddenIDs lists the objects hidden by r.
func HiddenIDs(r Rule) []string {
	out := make([]string, len(r.Consequence.Hide))
	for i, h := range r.Consequence.Hide {
		out[i] = h.ObjectID
	}
	return out
}
