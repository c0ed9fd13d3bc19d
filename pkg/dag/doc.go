// Package dag provides the ranked directed graph underlying family-tree
// layout.
//
// A family graph has two node kinds: persons and family units (couples).
// Edges always join a person to a unit - partnership edges run person→unit
// ("is a partner in") and parentage edges run unit→person ("is parent of").
// This indirection represents multi-parent and multi-partner families
// uniformly, without person-to-person edges.
//
// Nodes are organized into ranks (generations): rank 0 holds the oldest
// known ancestors, and each parentage edge descends one rank. The transform
// subpackage assigns ranks and breaks accidental cycles; the layout package
// turns a ranked graph into coordinates.
//
// # Usage
//
//	g := dag.New()
//	g.AddNode(dag.Node{ID: "anna", Kind: dag.KindPerson})
//	g.AddNode(dag.Node{ID: "unit1", Kind: dag.KindUnit})
//	g.AddEdge(dag.Edge{From: "anna", To: "unit1"}) // partnership
//	transform.AssignRanks(g)
package dag
