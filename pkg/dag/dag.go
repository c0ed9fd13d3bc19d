package dag

import (
	"errors"
	"maps"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists in the graph. Node IDs must be unique.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the From node
	// does not exist in the graph.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the To node
	// does not exist in the graph.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrInvalidEdgeEndpoint is returned by [Graph.Validate] when an edge
	// references a node that doesn't exist. This indicates graph corruption.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")

	// ErrSameKindEdge is returned by [Graph.Validate] when an edge connects
	// two nodes of the same kind. Family edges always join a person to a
	// family unit, never person to person or unit to unit.
	ErrSameKindEdge = errors.New("edges must connect a person and a family unit")

	// ErrGraphHasCycle is returned by [Graph.Validate] when a cycle is
	// detected. Valid family data is acyclic; cycles indicate a data-entry
	// error and are broken before ranking (see the transform package).
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// NodeKind distinguishes the two vertex types of a family graph.
type NodeKind int

const (
	// KindPerson represents an individual family member.
	KindPerson NodeKind = iota
	// KindUnit represents a family unit (couple) joining partners and children.
	KindUnit
)

// Node represents a vertex in the family graph with an assigned rank
// (generation). Rank 0 is the root generation; ranks increase toward
// descendants.
//
// W and H carry the node's visual footprint. They are assigned by the layout
// engine and ignored by graph algorithms.
//
// The zero value is not usable - ID must be set before adding to a Graph.
type Node struct {
	ID   string   // Unique identifier
	Rank int      // Generation assignment (0 = roots, increasing downward)
	Kind NodeKind // Person or family unit

	W, H float64 // Visual footprint, set during layout
}

// IsUnit reports whether the node represents a family unit.
func (n Node) IsUnit() bool { return n.Kind == KindUnit }

// Edge represents a directed connection between a person and a family unit.
// Partnership edges run person→unit; parentage edges run unit→person.
type Edge struct {
	From string // Source node ID
	To   string // Target node ID
}

// Graph is a directed graph organized into generational ranks. Nodes are
// indexed by rank, and after ranking, every edge descends from an older
// generation to a younger one. This structure drives the generational layout
// of a family tree: partners feed into their family unit, and the unit feeds
// into each child below.
//
// The zero value is not usable - use New to create a valid Graph instance.
// Graph is not safe for concurrent use without external synchronization.
type Graph struct {
	nodes    map[string]*Node
	edges    []Edge
	outgoing map[string][]string // nodeID -> children IDs
	incoming map[string][]string // nodeID -> parent IDs
	ranks    map[int][]*Node     // rank -> nodes in that rank
}

// New creates an empty family graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		ranks:    make(map[int][]*Node),
	}
}

// AddNode adds a node to the graph and automatically indexes it by its Rank.
// Returns ErrInvalidNodeID if the node ID is empty, or ErrDuplicateNodeID
// if a node with the same ID already exists.
//
// Node IDs must be unique across the entire graph, regardless of kind.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	node := &n
	g.nodes[node.ID] = node
	g.ranks[node.Rank] = append(g.ranks[node.Rank], node)
	return nil
}

// SetRanks updates the rank assignments for nodes and rebuilds the rank index.
// Nodes not present in the ranks map retain their current rank assignment.
// This is typically used after rank assignment computes generational depths.
//
// The rank index (used by NodesInRank) is completely rebuilt, so this
// operation is O(N) where N is the total number of nodes.
func (g *Graph) SetRanks(ranks map[string]int) {
	g.ranks = make(map[int][]*Node)
	for _, n := range g.nodes {
		if newRank, ok := ranks[n.ID]; ok {
			n.Rank = newRank
		}
		g.ranks[n.Rank] = append(g.ranks[n.Rank], n)
	}
}

// AddEdge adds a directed edge between two existing nodes.
// Returns ErrUnknownSourceNode if the From node doesn't exist, or
// ErrUnknownTargetNode if the To node doesn't exist.
//
// AddEdge does not validate endpoint kinds - use Validate to check the
// person/unit constraint after building the graph. Multiple edges between
// the same nodes are allowed (the domain layer prevents duplicates).
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	g.edges = append(g.edges, e)
	g.outgoing[e.From] = append(g.outgoing[e.From], e.To)
	g.incoming[e.To] = append(g.incoming[e.To], e.From)
	return nil
}

// RemoveEdge removes the edge from→to if it exists.
// No error is returned if the edge does not exist. If multiple edges
// exist between the same nodes, all are removed.
func (g *Graph) RemoveEdge(from, to string) {
	g.edges = slices.DeleteFunc(g.edges, func(e Edge) bool { return e.From == from && e.To == to })
	g.outgoing[from] = slices.DeleteFunc(g.outgoing[from], func(s string) bool { return s == to })
	g.incoming[to] = slices.DeleteFunc(g.incoming[to], func(s string) bool { return s == from })
}

// Nodes returns all nodes in the graph.
// The order is not guaranteed. The returned slice contains pointers to
// the actual node structs, so modifications affect the graph.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	return nodes
}

// Edges returns a copy of all edges in the graph.
// The order matches insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Children returns the IDs of nodes that this node has edges to.
// Returns nil if the node has no children or doesn't exist. The returned
// slice should not be modified - use it as a read-only view.
func (g *Graph) Children(id string) []string { return g.outgoing[id] }

// Parents returns the IDs of nodes that have edges to this node.
// Returns nil if the node has no parents or doesn't exist. The returned
// slice should not be modified - use it as a read-only view.
func (g *Graph) Parents(id string) []string { return g.incoming[id] }

// OutDegree returns the number of outgoing edges from the node.
// Returns 0 if the node doesn't exist.
func (g *Graph) OutDegree(id string) int { return len(g.outgoing[id]) }

// InDegree returns the number of incoming edges to the node.
// Returns 0 if the node doesn't exist.
func (g *Graph) InDegree(id string) int { return len(g.incoming[id]) }

// Node returns the node with the given ID and true, or nil and false if not
// found. The returned pointer refers to the actual node in the graph, so
// modifications affect the graph.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// ChildrenInRank returns children of the node that are in the specified rank.
// This is useful for rank-by-rank traversals during ordering. Returns nil
// if the node has no children in that rank or doesn't exist.
func (g *Graph) ChildrenInRank(id string, rank int) []string {
	var result []string
	for _, c := range g.outgoing[id] {
		if n, ok := g.nodes[c]; ok && n.Rank == rank {
			result = append(result, c)
		}
	}
	return result
}

// ParentsInRank returns parents of the node that are in the specified rank.
// Returns nil if the node has no parents in that rank or doesn't exist.
func (g *Graph) ParentsInRank(id string, rank int) []string {
	var result []string
	for _, p := range g.incoming[id] {
		if n, ok := g.nodes[p]; ok && n.Rank == rank {
			result = append(result, p)
		}
	}
	return result
}

// NodesInRank returns all nodes assigned to the given rank.
// Returns nil if the rank is empty. The returned slice contains pointers to
// the actual nodes, so modifications affect the graph. The order is
// insertion order (order in which AddNode or SetRanks added them).
func (g *Graph) NodesInRank(rank int) []*Node { return g.ranks[rank] }

// RankCount returns the number of distinct ranks (generations) in the graph.
// Returns 0 for an empty graph. Ranks don't need to be consecutive.
func (g *Graph) RankCount() int { return len(g.ranks) }

// RankIDs returns all rank indices in sorted ascending order.
// Returns an empty slice for an empty graph. Use this to iterate
// through generations from roots to leaves.
func (g *Graph) RankIDs() []int {
	return slices.Sorted(maps.Keys(g.ranks))
}

// MaxRank returns the highest rank index, or 0 if the graph is empty.
// For a non-empty graph, this is the youngest generation.
func (g *Graph) MaxRank() int {
	if len(g.ranks) == 0 {
		return 0
	}
	rankIDs := g.RankIDs()
	return rankIDs[len(rankIDs)-1]
}

// Sources returns nodes with no incoming edges. For a family graph these are
// the oldest known ancestors and any persons not yet recorded as children.
// The order is not guaranteed. Returns nil for an empty graph.
func (g *Graph) Sources() []*Node {
	var sources []*Node
	for _, n := range g.nodes {
		if len(g.incoming[n.ID]) == 0 {
			sources = append(sources, n)
		}
	}
	return sources
}

// Sinks returns nodes with no outgoing edges - typically the youngest
// generation. The order is not guaranteed. Returns nil for an empty graph.
func (g *Graph) Sinks() []*Node {
	var sinks []*Node
	for _, n := range g.nodes {
		if len(g.outgoing[n.ID]) == 0 {
			sinks = append(sinks, n)
		}
	}
	return sinks
}

// Validate checks graph integrity and returns nil if valid.
// It verifies two constraints:
//
//  1. All edges connect existing nodes of different kinds (person↔unit)
//  2. The graph is acyclic (no directed cycles exist)
//
// Returns ErrInvalidEdgeEndpoint if an edge references a missing node,
// ErrSameKindEdge if an edge joins two persons or two units, or
// ErrGraphHasCycle if a cycle is detected. Use this before layout or
// transformations that assume valid family data.
//
// Cycle detection runs in O(N+E) time using depth-first search.
func (g *Graph) Validate() error {
	if err := g.validateEdgeConsistency(); err != nil {
		return err
	}
	return g.detectCycles()
}

func (g *Graph) validateEdgeConsistency() error {
	for _, e := range g.edges {
		src, okS := g.nodes[e.From]
		dst, okD := g.nodes[e.To]
		if !okS || !okD {
			return ErrInvalidEdgeEndpoint
		}
		if src.Kind == dst.Kind {
			return ErrSameKindEdge
		}
	}
	return nil
}

func (g *Graph) detectCycles() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(g.nodes))
	var hasCycle bool

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, child := range g.outgoing[id] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				hasCycle = true
				return
			}
		}
		color[id] = black
	}

	for id := range g.nodes {
		if color[id] == white {
			dfs(id)
			if hasCycle {
				return ErrGraphHasCycle
			}
		}
	}
	return nil
}

// PosMap creates a position lookup map from a slice of node IDs.
// The returned map maps each ID to its index in the slice.
// This is commonly used to convert rank orderings into fast position lookups
// for crossing calculations. Returns an empty map for a nil or empty slice.
func PosMap(ids []string) map[string]int {
	m := make(map[string]int, len(ids))
	for i, id := range ids {
		m[id] = i
	}
	return m
}

// NodeIDs extracts the ID from each node in a slice.
// Returns a new slice containing the IDs in the same order as the input.
// Returns an empty slice for a nil or empty input.
func NodeIDs(nodes []*Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
