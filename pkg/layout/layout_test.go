package layout

import (
	"reflect"
	"testing"

	"github.com/kintreehq/kintree/pkg/family"
)

// twoGenerations builds anna and bernd as partners in unit1 with child clara.
func twoGenerations() *family.Graph {
	return &family.Graph{
		Persons: []family.Person{
			{ID: "anna", FirstName: "Anna", LastName: "Adler"},
			{ID: "bernd", FirstName: "Bernd", LastName: "Berger"},
			{ID: "clara", FirstName: "Clara", LastName: "Christiansen"},
		},
		Couples: []family.Couple{{ID: "unit1"}},
		Partnerships: []family.Edge{
			{PersonID: "anna", CoupleID: "unit1", Kind: family.Partnership},
			{PersonID: "bernd", CoupleID: "unit1", Kind: family.Partnership},
		},
		Parentages: []family.Edge{
			{PersonID: "clara", CoupleID: "unit1", Kind: family.Parentage},
		},
	}
}

func TestLayoutGenerations(t *testing.T) {
	e := NewEngine(DefaultOptions(), nil)
	l, err := e.Layout(twoGenerations())
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	if len(l.Nodes) != 4 {
		t.Fatalf("got %d nodes, want 4", len(l.Nodes))
	}

	node := func(id string) *PositionedNode {
		n, ok := l.Node(id)
		if !ok {
			t.Fatalf("node %s missing from layout", id)
		}
		return n
	}

	anna, bernd, clara, unit := node("anna"), node("bernd"), node("clara"), node("unit1")
	if unit.Y <= anna.Y || unit.Y <= bernd.Y {
		t.Errorf("couple unit must sit below its partners: unit=%v anna=%v bernd=%v", unit.Y, anna.Y, bernd.Y)
	}
	if clara.Y <= unit.Y {
		t.Errorf("child must sit below the couple unit: clara=%v unit=%v", clara.Y, unit.Y)
	}
	if clara.Rank != 2 {
		t.Errorf("got child rank %d, want 2", clara.Rank)
	}
	if unit.Kind != "couple" || anna.Kind != "person" {
		t.Errorf("got kinds %q/%q, want couple/person", unit.Kind, anna.Kind)
	}
	if anna.Label != "Anna Adler" {
		t.Errorf("got label %q, want %q", anna.Label, "Anna Adler")
	}
}

func TestLayoutDeterministic(t *testing.T) {
	e := NewEngine(DefaultOptions(), nil)
	a, err := e.Layout(twoGenerations())
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	b, err := e.Layout(twoGenerations())
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	if !reflect.DeepEqual(a.Nodes, b.Nodes) {
		t.Error("identical graphs must produce identical layouts")
	}
}

func TestLayoutNoOverlapWithinRank(t *testing.T) {
	e := NewEngine(DefaultOptions(), nil)
	l, err := e.Layout(twoGenerations())
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}

	byRank := make(map[int][]PositionedNode)
	for _, n := range l.Nodes {
		byRank[n.Rank] = append(byRank[n.Rank], n)
	}
	for rank, nodes := range byRank {
		for i := range nodes {
			for j := i + 1; j < len(nodes); j++ {
				a, b := nodes[i], nodes[j]
				if a.X < b.X {
					a, b = b, a
				}
				if a.X-a.W/2 < b.X+b.W/2 {
					t.Errorf("rank %d: %s and %s overlap", rank, nodes[i].ID, nodes[j].ID)
				}
			}
		}
	}
}

func TestLayoutCycleDoesNotFail(t *testing.T) {
	g := twoGenerations()
	// Bad data: the child is also a partner in their own parents' unit.
	g.Partnerships = append(g.Partnerships, family.Edge{PersonID: "clara", CoupleID: "unit1", Kind: family.Partnership})

	e := NewEngine(DefaultOptions(), nil)
	if _, err := e.Layout(g); err != nil {
		t.Fatalf("Layout() with cyclic data error = %v", err)
	}
}

func TestFootprintGrowsWithDetailRows(t *testing.T) {
	base := family.Person{ID: "p", FirstName: "Anna"}
	_, h0 := Footprint(base)

	withProfession := base
	withProfession.Profession = "weaver"
	_, h1 := Footprint(withProfession)
	if h1 <= h0 {
		t.Errorf("profession row must grow the card: %v <= %v", h1, h0)
	}

	deceased := withProfession
	deceased.DeathDate = "1960-01-01"
	_, h2 := Footprint(deceased)
	if h2 <= h1 {
		t.Errorf("death row must grow the card: %v <= %v", h2, h1)
	}
}

func TestLayoutEmptyGraph(t *testing.T) {
	e := NewEngine(DefaultOptions(), nil)
	l, err := e.Layout(&family.Graph{})
	if err != nil {
		t.Fatalf("Layout() of empty graph error = %v", err)
	}
	if len(l.Nodes) != 0 {
		t.Errorf("got %d nodes, want 0", len(l.Nodes))
	}
}
