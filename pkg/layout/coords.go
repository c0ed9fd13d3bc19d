package layout

import "github.com/kintreehq/kintree/pkg/dag"

// assignCoordinates turns rank orders into concrete center coordinates.
// Within a rank, x grows by cumulative width plus NodeSep; each rank is
// centered on the widest rank. y is rank times RankSep. (x, y) is the
// visual center of the node's footprint.
func assignCoordinates(g *dag.Graph, orders map[int][]string, opts Options) []PositionedNode {
	ranks := g.RankIDs()
	if len(ranks) == 0 {
		return nil
	}

	rowWidth := make(map[int]float64, len(ranks))
	var maxWidth float64
	for _, r := range ranks {
		var w float64
		for i, id := range orders[r] {
			n, _ := g.Node(id)
			if i > 0 {
				w += opts.NodeSep
			}
			w += n.W
		}
		rowWidth[r] = w
		if w > maxWidth {
			maxWidth = w
		}
	}

	var nodes []PositionedNode
	for _, r := range ranks {
		x := opts.MarginX + (maxWidth-rowWidth[r])/2
		y := opts.MarginY + float64(r)*opts.RankSep
		for _, id := range orders[r] {
			n, _ := g.Node(id)
			nodes = append(nodes, PositionedNode{
				ID:   id,
				Kind: kindName(n.Kind),
				Rank: r,
				X:    x + n.W/2,
				Y:    y,
				W:    n.W,
				H:    n.H,
			})
			x += n.W + opts.NodeSep
		}
	}
	return nodes
}

func kindName(k dag.NodeKind) string {
	if k == dag.KindUnit {
		return "couple"
	}
	return "person"
}
