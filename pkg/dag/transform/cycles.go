package transform

import "github.com/kintreehq/kintree/pkg/dag"

// BreakCycles removes back edges so that rank assignment terminates even on
// corrupt family data (e.g. a person recorded as their own ancestor).
//
// Edges that point back into the active depth-first path are dropped. The
// search seeds from source nodes first so that ancestor chains keep their
// natural direction, then covers any nodes reachable only through a cycle.
// Valid family data never contains cycles, so in the normal case nothing is
// removed; when edges are removed the layout is best-effort rather than
// failing or hanging.
//
// Returns the number of edges removed. The search runs on an explicit stack,
// so pathological ancestor chains cannot exhaust goroutine stack space.
func BreakCycles(g *dag.Graph) int {
	const (
		unvisited = iota
		open      // on the active path
		closed
	)

	seeds := make([]string, 0, len(g.Nodes()))
	for _, n := range g.Sources() {
		seeds = append(seeds, n.ID)
	}
	for _, n := range g.Nodes() {
		seeds = append(seeds, n.ID)
	}

	type frame struct {
		id   string
		next int // index of the next child to visit
	}

	state := make(map[string]int)
	var drop [][2]string

	for _, seed := range seeds {
		if state[seed] != unvisited {
			continue
		}
		state[seed] = open
		stack := []frame{{id: seed}}

		for len(stack) > 0 {
			f := &stack[len(stack)-1]
			children := g.Children(f.id)
			if f.next == len(children) {
				state[f.id] = closed
				stack = stack[:len(stack)-1]
				continue
			}

			child := children[f.next]
			f.next++
			switch state[child] {
			case unvisited:
				state[child] = open
				stack = append(stack, frame{id: child})
			case open:
				drop = append(drop, [2]string{f.id, child})
			}
		}
	}

	for _, e := range drop {
		g.RemoveEdge(e[0], e[1])
	}
	return len(drop)
}
