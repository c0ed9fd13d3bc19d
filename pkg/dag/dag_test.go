package dag

import (
	"errors"
	"testing"
)

func TestAddNode(t *testing.T) {
	g := New()

	if err := g.AddNode(Node{ID: "anna", Kind: KindPerson}); err != nil {
		t.Fatalf("AddNode() error = %v", err)
	}
	if g.NodeCount() != 1 {
		t.Errorf("NodeCount() = %d, want 1", g.NodeCount())
	}

	if err := g.AddNode(Node{ID: ""}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("AddNode(empty ID) error = %v, want ErrInvalidNodeID", err)
	}
	if err := g.AddNode(Node{ID: "anna"}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("AddNode(duplicate) error = %v, want ErrDuplicateNodeID", err)
	}
}

func TestAddEdge(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: "anna", Kind: KindPerson})
	g.AddNode(Node{ID: "unit1", Kind: KindUnit})

	if err := g.AddEdge(Edge{From: "anna", To: "unit1"}); err != nil {
		t.Fatalf("AddEdge() error = %v", err)
	}
	if err := g.AddEdge(Edge{From: "ghost", To: "unit1"}); !errors.Is(err, ErrUnknownSourceNode) {
		t.Errorf("AddEdge(unknown source) error = %v, want ErrUnknownSourceNode", err)
	}
	if err := g.AddEdge(Edge{From: "anna", To: "ghost"}); !errors.Is(err, ErrUnknownTargetNode) {
		t.Errorf("AddEdge(unknown target) error = %v, want ErrUnknownTargetNode", err)
	}

	if got := g.Children("anna"); len(got) != 1 || got[0] != "unit1" {
		t.Errorf("Children(anna) = %v, want [unit1]", got)
	}
	if got := g.Parents("unit1"); len(got) != 1 || got[0] != "anna" {
		t.Errorf("Parents(unit1) = %v, want [anna]", got)
	}
}

func TestRemoveEdge(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: "anna", Kind: KindPerson})
	g.AddNode(Node{ID: "unit1", Kind: KindUnit})
	g.AddEdge(Edge{From: "anna", To: "unit1"})

	g.RemoveEdge("anna", "unit1")

	if g.EdgeCount() != 0 {
		t.Errorf("EdgeCount() = %d, want 0", g.EdgeCount())
	}
	if got := g.Children("anna"); len(got) != 0 {
		t.Errorf("Children(anna) = %v, want empty", got)
	}

	// Removing a missing edge is a no-op.
	g.RemoveEdge("anna", "unit1")
}

func TestSetRanks(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: "anna", Kind: KindPerson})
	g.AddNode(Node{ID: "unit1", Kind: KindUnit})
	g.AddNode(Node{ID: "clara", Kind: KindPerson})

	g.SetRanks(map[string]int{"unit1": 1, "clara": 2})

	if n, _ := g.Node("clara"); n.Rank != 2 {
		t.Errorf("clara rank = %d, want 2", n.Rank)
	}
	if n, _ := g.Node("anna"); n.Rank != 0 {
		t.Errorf("anna rank = %d, want 0", n.Rank)
	}
	if got := len(g.NodesInRank(1)); got != 1 {
		t.Errorf("NodesInRank(1) has %d nodes, want 1", got)
	}
	if got := g.MaxRank(); got != 2 {
		t.Errorf("MaxRank() = %d, want 2", got)
	}
}

func TestSourcesAndSinks(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: "anna", Kind: KindPerson})
	g.AddNode(Node{ID: "unit1", Kind: KindUnit})
	g.AddNode(Node{ID: "clara", Kind: KindPerson})
	g.AddEdge(Edge{From: "anna", To: "unit1"})
	g.AddEdge(Edge{From: "unit1", To: "clara"})

	sources := g.Sources()
	if len(sources) != 1 || sources[0].ID != "anna" {
		t.Errorf("Sources() = %v, want [anna]", NodeIDs(sources))
	}
	sinks := g.Sinks()
	if len(sinks) != 1 || sinks[0].ID != "clara" {
		t.Errorf("Sinks() = %v, want [clara]", NodeIDs(sinks))
	}
}

func TestValidate_SameKindEdge(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: "anna", Kind: KindPerson})
	g.AddNode(Node{ID: "bernd", Kind: KindPerson})
	g.AddEdge(Edge{From: "anna", To: "bernd"})

	if err := g.Validate(); !errors.Is(err, ErrSameKindEdge) {
		t.Errorf("Validate() error = %v, want ErrSameKindEdge", err)
	}
}

func TestValidate_Cycle(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: "anna", Kind: KindPerson})
	g.AddNode(Node{ID: "unit1", Kind: KindUnit})
	g.AddEdge(Edge{From: "anna", To: "unit1"})
	g.AddEdge(Edge{From: "unit1", To: "anna"})

	if err := g.Validate(); !errors.Is(err, ErrGraphHasCycle) {
		t.Errorf("Validate() error = %v, want ErrGraphHasCycle", err)
	}
}

func TestValidate_OK(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: "anna", Kind: KindPerson})
	g.AddNode(Node{ID: "unit1", Kind: KindUnit})
	g.AddNode(Node{ID: "clara", Kind: KindPerson})
	g.AddEdge(Edge{From: "anna", To: "unit1"})
	g.AddEdge(Edge{From: "unit1", To: "clara"})

	if err := g.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
}

func TestChildrenInRank(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: "unit1", Kind: KindUnit, Rank: 0})
	g.AddNode(Node{ID: "clara", Kind: KindPerson, Rank: 1})
	g.AddNode(Node{ID: "daniel", Kind: KindPerson, Rank: 2})
	g.AddEdge(Edge{From: "unit1", To: "clara"})
	g.AddEdge(Edge{From: "unit1", To: "daniel"})

	got := g.ChildrenInRank("unit1", 1)
	if len(got) != 1 || got[0] != "clara" {
		t.Errorf("ChildrenInRank(unit1, 1) = %v, want [clara]", got)
	}
}

func TestPosMap(t *testing.T) {
	m := PosMap([]string{"a", "b", "c"})
	if m["b"] != 1 {
		t.Errorf("PosMap[b] = %d, want 1", m["b"])
	}
	if len(PosMap(nil)) != 0 {
		t.Error("PosMap(nil) should be empty")
	}
}
