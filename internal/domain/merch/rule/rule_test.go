package rule

import (
	"encoding/json"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/merchstudio/internal/domain"
	"github.com/kailas-cloud/merchstudio/internal/domain/merch/override"
)

func TestID(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"laptop", "merch-laptop-5eec0dc4"},
		{"Gaming Laptop", "merch-gaming-laptop-f5dee4ab"},
		{"c++", "merch-c-cedb1bac"},
		{"c#", "merch-c-951a4d36"},
		{"  ", "merch-6c179f21"},
	}
	for _, tt := range tests {
		if got := ID(tt.query); got != tt.want {
			t.Errorf("ID(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}

func TestID_Properties(t *testing.T) {
	assert.Equal(t, ID("Laptop"), ID("LAPTOP"), "case variants share an identifier")
	assert.NotEqual(t, ID("laptop"), ID("laptop "), "whitespace is significant")
	assert.NotEqual(t, ID("c++"), ID("c#"))
	assert.True(t, strings.HasPrefix(ID("crème brûlée"), Namespace+"creme-brulee-"))

	long := ID(strings.Repeat("abc ", 40))
	slug := strings.TrimPrefix(long, Namespace)
	assert.LessOrEqual(t, len(slug), maxSlugLen+1+hashLen)
	assert.False(t, strings.Contains(long, "--"))
}

func TestCompile_LaptopScenario(t *testing.T) {
	store := override.New().Pin("X", 0).Hide("Y")

	r := Compile("laptop", store)

	assert.Equal(t, []Promote{{ObjectID: "X", Position: 0}}, r.Consequence.Promote)
	assert.Equal(t, []Hide{{ObjectID: "Y"}}, r.Consequence.Hide)
	require.Len(t, r.Conditions, 1)
	assert.Equal(t, "laptop", r.Conditions[0].Pattern)
	assert.Equal(t, AnchoringIs, r.Conditions[0].Anchoring)
	assert.True(t, r.Enabled)
	assert.Equal(t, `Pin 1 result(s), hide 1 result(s) for query "laptop"`, r.Description)
	assert.True(t, r.IsMerchandising())
}

func TestCompile_SameQuerySameID(t *testing.T) {
	a := Compile("shoes", override.New().Pin("A", 0))
	b := Compile("shoes", override.New().Hide("B").Hide("C"))

	assert.Equal(t, a.ObjectID, b.ObjectID)
	assert.Equal(t, a.Conditions, b.Conditions)
	assert.NotEqual(t, a.Consequence, b.Consequence)
	assert.NotEqual(t, a.Description, b.Description)
}

func TestCompile_EmptyStore(t *testing.T) {
	r := Compile("laptop", override.New())

	assert.Nil(t, r.Consequence.Promote)
	assert.Nil(t, r.Consequence.Hide)
	assert.True(t, r.Enabled)
}

func TestCompileDecompile_RoundTrip(t *testing.T) {
	ids := []string{"A", "B", "C", "D", "E", "F"}
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 200; run++ {
		s := override.New()
		for step := 0; step < 12; step++ {
			id := ids[rng.Intn(len(ids))]
			switch rng.Intn(4) {
			case 0, 1:
				s = s.Pin(id, rng.Intn(5))
			case 2:
				s = s.Hide(id)
			case 3:
				s = s.Unhide(id)
			}
		}

		query := "query " + string(rune('a'+run%26))
		data, err := json.Marshal(Compile(query, s))
		require.NoError(t, err)
		var decoded Rule
		require.NoError(t, json.Unmarshal(data, &decoded))

		gotQuery, got, err := Decompile(decoded)
		require.NoError(t, err)
		assert.Equal(t, query, gotQuery)
		assert.Equal(t, s.Pins(), got.Pins())
		assert.ElementsMatch(t, s.Hidden(), got.Hidden())
	}
}

func TestDecompile_NoCondition(t *testing.T) {
	_, _, err := Decompile(Rule{ObjectID: "merch-x"})
	if !errors.Is(err, domain.ErrInvalidRule) {
		t.Fatalf("err = %v, want ErrInvalidRule", err)
	}
}

func TestDecompile_RenumbersAndResolvesConflicts(t *testing.T) {
	r := Rule{
		ObjectID:   "merch-shoes",
		Conditions: []Condition{{Pattern: "shoes", Anchoring: AnchoringIs}},
		Consequence: Consequence{
			Promote: []Promote{
				{ObjectID: "C", Position: 7},
				{ObjectIDs: []string{"A", "B"}, Position: 2},
				{ObjectID: "A", Position: 9},
				{ObjectID: "H", Position: 0},
			},
			Hide: []Hide{{ObjectID: "H"}},
		},
	}

	q, s, err := Decompile(r)
	require.NoError(t, err)
	assert.Equal(t, "shoes", q)
	assert.Equal(t, []string{"A", "B", "C"}, s.PinnedIDs())
	assert.Equal(t, []string{"H"}, s.Hidden())
}

func TestUnmarshal_EnabledDefaultsToTrue(t *testing.T) {
	var r Rule
	require.NoError(t, json.Unmarshal([]byte(`{"objectID":"r1","conditions":[],"consequence":{}}`), &r))
	assert.True(t, r.Enabled)

	require.NoError(t, json.Unmarshal([]byte(`{"objectID":"r1","enabled":false}`), &r))
	assert.False(t, r.Enabled)
	assert.Equal(t, "r1", r.ObjectID)
}

func TestUnmarshal_EngineExtras(t *testing.T) {
	raw := `{
		"objectID": "promo",
		"conditions": [{"pattern": "Sale", "anchoring": "contains", "context": "mobile"}],
		"consequence": {
			"promote": [{"objectIDs": ["p1", "p2"], "position": 1}],
			"filterPromotes": true,
			"userData": {"banner": "summer"}
		},
		"validity": [{"from": 100, "until": 200}]
	}`
	var r Rule
	require.NoError(t, json.Unmarshal([]byte(raw), &r))

	assert.Equal(t, "mobile", r.Conditions[0].Context)
	assert.Equal(t, []override.Pin{{ID: "p1", Position: 1}, {ID: "p2", Position: 2}}, Effects(r))
	require.NotNil(t, r.Consequence.FilterPromotes)
	assert.True(t, *r.Consequence.FilterPromotes)
	assert.JSONEq(t, `{"banner":"summer"}`, string(r.Consequence.UserData))
	assert.Equal(t, []TimeRange{{From: 100, Until: 200}}, r.Validity)
	assert.False(t, r.IsMerchandising())
}

func TestMatches(t *testing.T) {
	now := time.Unix(150, 0)
	tests := []struct {
		name  string
		rule  Rule
		query string
		want  bool
	}{
		{"is", Rule{Enabled: true, Conditions: []Condition{{Pattern: "Laptop", Anchoring: AnchoringIs}}}, "laptop", true},
		{"is rejects longer", Rule{Enabled: true, Conditions: []Condition{{Pattern: "laptop", Anchoring: AnchoringIs}}}, "laptop bag", false},
		{"startsWith", Rule{Enabled: true, Conditions: []Condition{{Pattern: "lap", Anchoring: AnchoringStartsWith}}}, "Laptop", true},
		{"endsWith", Rule{Enabled: true, Conditions: []Condition{{Pattern: "top", Anchoring: AnchoringEndsWith}}}, "laptop", true},
		{"contains", Rule{Enabled: true, Conditions: []Condition{{Pattern: "pto", Anchoring: AnchoringContains}}}, "laptop", true},
		{"unknown anchoring", Rule{Enabled: true, Conditions: []Condition{{Pattern: "laptop", Anchoring: "fuzzy"}}}, "laptop", false},
		{"no conditions", Rule{Enabled: true}, "anything", true},
		{"disabled", Rule{Conditions: []Condition{{Pattern: "laptop", Anchoring: AnchoringIs}}}, "laptop", false},
		{"inside validity", Rule{Enabled: true, Validity: []TimeRange{{From: 100, Until: 150}}}, "x", true},
		{"outside validity", Rule{Enabled: true, Validity: []TimeRange{{From: 200, Until: 300}}}, "x", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rule.Matches(tt.query, now); got != tt.want {
				t.Errorf("Matches(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestCompile_WireShape(t *testing.T) {
	tests := []struct {
		name  string
		query string
		store override.Store
	}{
		{"laptop_pin_and_hide", "laptop", override.New().Pin("X", 0).Hide("Y")},
		{"pins_only", "Gaming Laptop", override.New().Pin("P1", 0).Pin("P2", 1)},
		{"empty_store", "laptop", override.New()},
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.MarshalIndent(Compile(tt.query, tt.store), "", "  ")
			require.NoError(t, err)
			g.Assert(t, tt.name, data)
		})
	}
}
