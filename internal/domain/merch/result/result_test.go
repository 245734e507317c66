package result

import "testing"

func TestNewSet_AssignsBaseRanks(t *testing.T) {
	s := NewSet("laptop", []Hit{
		{ID: "A", Fields: map[string]any{"name": "alpha"}},
		{ID: "B"},
		{ID: "C"},
	})

	if s.Query() != "laptop" {
		t.Errorf("Query() = %q", s.Query())
	}
	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}
	for i, it := range s.Items() {
		if it.BaseRank() != i {
			t.Errorf("item %s: BaseRank() = %d, want %d", it.ID(), it.BaseRank(), i)
		}
	}
	a, ok := s.Item("A")
	if !ok {
		t.Fatal("expected A to be present")
	}
	if a.Fields()["name"] != "alpha" {
		t.Errorf("Fields() = %v", a.Fields())
	}
}

func TestNewSet_DropsEmptyAndDuplicateIDs(t *testing.T) {
	s := NewSet("q", []Hit{{ID: "A"}, {ID: ""}, {ID: "A"}, {ID: "B"}})

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	b, _ := s.Item("B")
	if b.BaseRank() != 1 {
		t.Errorf("B BaseRank() = %d, want 1", b.BaseRank())
	}
}

func TestSet_Contains(t *testing.T) {
	s := NewSet("q", []Hit{{ID: "A"}})
	if !s.Contains("A") {
		t.Error("expected A")
	}
	if s.Contains("Z") {
		t.Error("unexpected Z")
	}
	if _, ok := s.Item("Z"); ok {
		t.Error("Item(Z) should miss")
	}
}

func TestSet_ItemsIsCopy(t *testing.T) {
	s := NewSet("q", []Hit{{ID: "A"}, {ID: "B"}})
	items := s.Items()
	items[0] = NewItem("Z", 9, nil)

	if first := s.Items()[0]; first.ID() != "A" {
		t.Errorf("set mutated through Items(): first = %q", first.ID())
	}
}

func TestSet_HitsRoundTrip(t *testing.T) {
	s := NewSet("q", []Hit{{ID: "A"}, {ID: "B"}})
	again := NewSet(s.Query(), s.Hits())

	if again.Len() != 2 || again.Items()[1].ID() != "B" {
		t.Errorf("unexpected round trip: %+v", again.Items())
	}
}

func TestZeroSet(t *testing.T) {
	var s Set
	if s.Len() != 0 || s.Contains("A") {
		t.Error("zero set should be empty")
	}
}
