package transform

import "github.com/kintreehq/kintree/pkg/dag"

// AssignRanks assigns every node a generational rank: the length of the
// longest ancestor chain above it.
//
// Ranks are computed by peeling zero in-degree frontiers in waves. Root
// ancestors (no incoming edge) form the first frontier at rank 0; each node
// behind them lands at one plus the maximum rank among the nodes with an
// edge into it. For a family graph this puts every partner of a unit
// strictly above each child of that unit, with nodes pushed as deep as their
// deepest ancestor line requires.
//
// Existing rank assignments are overwritten, and identical node/edge sets
// always produce identical ranks. The graph must be acyclic: nodes trapped
// in a cycle never enter a frontier and keep rank 0, so run [BreakCycles]
// first. Either way the walk terminates in O(V + E).
func AssignRanks(g *dag.Graph) {
	nodes := g.Nodes()
	remaining := make(map[string]int, len(nodes))
	ranks := make(map[string]int, len(nodes))

	frontier := make([]string, 0, len(nodes))
	for _, n := range nodes {
		d := g.InDegree(n.ID)
		remaining[n.ID] = d
		if d == 0 {
			frontier = append(frontier, n.ID)
		}
	}

	for len(frontier) > 0 {
		var next []string
		for _, id := range frontier {
			for _, child := range g.Children(id) {
				if r := ranks[id] + 1; r > ranks[child] {
					ranks[child] = r
				}
				remaining[child]--
				if remaining[child] == 0 {
					next = append(next, child)
				}
			}
		}
		frontier = next
	}

	g.SetRanks(ranks)
}
