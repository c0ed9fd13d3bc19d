package layout

import "github.com/kintreehq/kintree/pkg/dag"

// Relaxation tuning. Small pull toward edge neighbors, hard push out of
// overlaps, strong velocity decay. The iteration cap bounds total work no
// matter how contorted the graph is.
const (
	relaxPull  = 0.12
	relaxDecay = 0.85
)

// DefaultRelaxIterations bounds the relaxation loop.
const DefaultRelaxIterations = 40

// relax nudges node x coordinates toward the mean of their edge neighbors
// while keeping footprints separated. Nodes never leave their rank band,
// never cross an ordered neighbor, and the loop always terminates at the
// iteration cap. y coordinates are untouched.
func relax(g *dag.Graph, nodes []PositionedNode, opts Options) {
	iters := opts.RelaxIterations
	if iters <= 0 {
		iters = DefaultRelaxIterations
	}

	idx := make(map[string]int, len(nodes))
	for i := range nodes {
		idx[nodes[i].ID] = i
	}
	byRank := make(map[int][]int)
	for i := range nodes {
		byRank[nodes[i].Rank] = append(byRank[nodes[i].Rank], i)
	}

	vel := make([]float64, len(nodes))
	for it := 0; it < iters; it++ {
		for i := range nodes {
			var sum float64
			var n int
			for _, p := range g.Parents(nodes[i].ID) {
				sum += nodes[idx[p]].X
				n++
			}
			for _, c := range g.Children(nodes[i].ID) {
				sum += nodes[idx[c]].X
				n++
			}
			if n == 0 {
				continue
			}
			vel[i] = vel[i]*relaxDecay + (sum/float64(n)-nodes[i].X)*relaxPull
			nodes[i].X += vel[i]
		}

		// Restore separation and order within each rank, left to right.
		for _, row := range byRank {
			for k := 1; k < len(row); k++ {
				left, curr := &nodes[row[k-1]], &nodes[row[k]]
				min := left.X + left.W/2 + opts.NodeSep + curr.W/2
				if curr.X < min {
					curr.X = min
					vel[row[k]] = 0
				}
			}
		}
	}
}
