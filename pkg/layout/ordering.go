package layout

import (
	"slices"
	"sort"

	"github.com/kintreehq/kintree/pkg/dag"
)

// DefaultPasses is the number of alternating barycentric sweeps.
const DefaultPasses = 12

// Barycentric orders each rank with the Sugiyama barycenter heuristic:
// seed every rank with a deterministic ID order, then repeatedly sort nodes
// by the mean position of their neighbors in the previous sweep direction,
// applying transpose passes between sweeps. The best ordering seen across
// all passes wins.
//
// The heuristic carries no optimality guarantee, but is deterministic: ties
// are always broken by node ID, so identical graphs produce identical
// orderings.
type Barycentric struct {
	Passes int
}

// OrderRanks computes the left-to-right node order for every rank.
func (b Barycentric) OrderRanks(g *dag.Graph) map[int][]string {
	passes := b.Passes
	if passes <= 0 {
		passes = DefaultPasses
	}

	orders := initialOrders(g)
	best := cloneOrders(orders)
	bestCrossings := dag.CountCrossings(g, best)

	for p := 0; p < passes && bestCrossings > 0; p++ {
		if p%2 == 0 {
			sweep(g, orders, g.Parents)
		} else {
			sweep(g, orders, g.Children)
		}
		transpose(g, orders)

		if c := dag.CountCrossings(g, orders); c < bestCrossings {
			bestCrossings = c
			best = cloneOrders(orders)
		}
	}
	return best
}

// initialOrders seeds every rank with its node IDs in lexicographic order.
func initialOrders(g *dag.Graph) map[int][]string {
	orders := make(map[int][]string, g.RankCount())
	for _, r := range g.RankIDs() {
		ids := dag.NodeIDs(g.NodesInRank(r))
		slices.Sort(ids)
		orders[r] = ids
	}
	return orders
}

func cloneOrders(orders map[int][]string) map[int][]string {
	out := make(map[int][]string, len(orders))
	for r, ids := range orders {
		out[r] = slices.Clone(ids)
	}
	return out
}

// sweep re-sorts every rank by the mean position of each node's neighbors,
// where neighbors(id) selects the direction of the sweep. Nodes without
// neighbors keep their current position.
func sweep(g *dag.Graph, orders map[int][]string, neighbors func(string) []string) {
	pos := make(map[string]int, g.NodeCount())
	for _, ids := range orders {
		for i, id := range ids {
			pos[id] = i
		}
	}

	for _, r := range g.RankIDs() {
		ids := orders[r]
		bary := make(map[string]float64, len(ids))
		for i, id := range ids {
			ns := neighbors(id)
			if len(ns) == 0 {
				bary[id] = float64(i)
				continue
			}
			var sum float64
			for _, n := range ns {
				sum += float64(pos[n])
			}
			bary[id] = sum / float64(len(ns))
		}
		sort.SliceStable(ids, func(i, j int) bool {
			if bary[ids[i]] != bary[ids[j]] {
				return bary[ids[i]] < bary[ids[j]]
			}
			return ids[i] < ids[j]
		})
		for i, id := range ids {
			pos[id] = i
		}
	}
}

// transpose greedily swaps adjacent nodes within a rank whenever the swap
// reduces crossings against the neighboring ranks. A few bounded rounds are
// enough; the loop exits early once a full round makes no swap.
func transpose(g *dag.Graph, orders map[int][]string) {
	maxRank := g.MaxRank()
	for round := 0; round < 4; round++ {
		improved := false
		for r := 0; r <= maxRank; r++ {
			ids := orders[r]
			for i := 0; i+1 < len(ids); i++ {
				before := rankCrossings(g, orders, r)
				ids[i], ids[i+1] = ids[i+1], ids[i]
				after := rankCrossings(g, orders, r)
				if after < before {
					improved = true
				} else {
					ids[i], ids[i+1] = ids[i+1], ids[i]
				}
			}
		}
		if !improved {
			return
		}
	}
}

// rankCrossings counts the crossings on the layer boundaries above and below
// rank r.
func rankCrossings(g *dag.Graph, orders map[int][]string, r int) int {
	n := 0
	if r > 0 {
		n += dag.CountLayerCrossings(g, orders[r-1], orders[r])
	}
	if upper, ok := orders[r]; ok {
		if lower, ok := orders[r+1]; ok {
			n += dag.CountLayerCrossings(g, upper, lower)
		}
	}
	return n
}
