package transform

import (
	"testing"

	"github.com/kintreehq/kintree/pkg/dag"
)

func TestBreakCycles_NoCycles(t *testing.T) {
	g := dag.New()
	g.AddNode(dag.Node{ID: "anna", Kind: dag.KindPerson})
	g.AddNode(dag.Node{ID: "unit1", Kind: dag.KindUnit})
	g.AddNode(dag.Node{ID: "clara", Kind: dag.KindPerson})
	g.AddEdge(dag.Edge{From: "anna", To: "unit1"})
	g.AddEdge(dag.Edge{From: "unit1", To: "clara"})

	removed := BreakCycles(g)

	if removed != 0 {
		t.Errorf("BreakCycles() removed %d edges, want 0", removed)
	}
	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", g.EdgeCount())
	}
}

func TestBreakCycles_SimpleCycle(t *testing.T) {
	g := dag.New()
	g.AddNode(dag.Node{ID: "anna", Kind: dag.KindPerson})
	g.AddNode(dag.Node{ID: "unit1", Kind: dag.KindUnit})
	g.AddEdge(dag.Edge{From: "anna", To: "unit1"})
	g.AddEdge(dag.Edge{From: "unit1", To: "anna"})

	removed := BreakCycles(g)

	if removed != 1 {
		t.Errorf("BreakCycles() removed %d edges, want 1", removed)
	}
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1", g.EdgeCount())
	}
}

func TestBreakCycles_AncestorLoop(t *testing.T) {
	// Data-entry error: a person recorded as a child of their own
	// descendants' family unit.
	g := dag.New()
	g.AddNode(dag.Node{ID: "anna", Kind: dag.KindPerson})
	g.AddNode(dag.Node{ID: "unit1", Kind: dag.KindUnit})
	g.AddNode(dag.Node{ID: "clara", Kind: dag.KindPerson})
	g.AddNode(dag.Node{ID: "unit2", Kind: dag.KindUnit})
	g.AddEdge(dag.Edge{From: "anna", To: "unit1"})
	g.AddEdge(dag.Edge{From: "unit1", To: "clara"})
	g.AddEdge(dag.Edge{From: "clara", To: "unit2"})
	g.AddEdge(dag.Edge{From: "unit2", To: "anna"})

	removed := BreakCycles(g)

	if removed != 1 {
		t.Errorf("BreakCycles() removed %d edges, want 1", removed)
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() after BreakCycles = %v, want nil", err)
	}
}
