package layout

import (
	"github.com/charmbracelet/log"

	"github.com/kintreehq/kintree/pkg/dag"
	"github.com/kintreehq/kintree/pkg/dag/transform"
	"github.com/kintreehq/kintree/pkg/family"
)

// Options tunes the layout pipeline. Zero values fall back to defaults.
type Options struct {
	NodeSep float64 `json:"node_sep" toml:"node_sep"` // horizontal gap between footprints
	RankSep float64 `json:"rank_sep" toml:"rank_sep"` // vertical distance between generation centers
	MarginX float64 `json:"margin_x" toml:"margin_x"`
	MarginY float64 `json:"margin_y" toml:"margin_y"`

	Passes int `json:"passes" toml:"passes"` // barycentric sweep count

	Relax           bool `json:"relax" toml:"relax"` // optional spring pass
	RelaxIterations int  `json:"relax_iterations" toml:"relax_iterations"`
}

// DefaultOptions returns the layout defaults used by the server and CLI.
func DefaultOptions() Options {
	return Options{
		NodeSep: 40,
		RankSep: 140,
		MarginX: 40,
		MarginY: 60,
		Passes:  DefaultPasses,
		Relax:   true,
	}
}

// PositionedNode is one placed footprint. (X, Y) is the visual center for
// both person cards and couple markers.
type PositionedNode struct {
	ID    string  `json:"id" bson:"id"`
	Kind  string  `json:"kind" bson:"kind"` // "person" or "couple"
	Label string  `json:"label,omitempty" bson:"label,omitempty"`
	Rank  int     `json:"rank" bson:"rank"`
	X     float64 `json:"x" bson:"x"`
	Y     float64 `json:"y" bson:"y"`
	W     float64 `json:"w" bson:"w"`
	H     float64 `json:"h" bson:"h"`
}

// Layout is the positioned form of a family graph.
type Layout struct {
	Nodes  []PositionedNode `json:"nodes" bson:"nodes"`
	Edges  []dag.Edge       `json:"edges" bson:"edges"`
	Ranks  map[int][]string `json:"ranks,omitempty" bson:"ranks,omitempty"`
	Width  float64          `json:"width" bson:"width"`
	Height float64          `json:"height" bson:"height"`
}

// Node returns the positioned node with the given id, if present.
func (l *Layout) Node(id string) (*PositionedNode, bool) {
	for i := range l.Nodes {
		if l.Nodes[i].ID == id {
			return &l.Nodes[i], true
		}
	}
	return nil, false
}

// Engine runs the full layout pipeline over family graph snapshots.
type Engine struct {
	opts   Options
	logger *log.Logger
}

// NewEngine creates an engine. If logger is nil, log.Default() is used.
func NewEngine(opts Options, logger *log.Logger) *Engine {
	if opts.NodeSep <= 0 {
		opts.NodeSep = DefaultOptions().NodeSep
	}
	if opts.RankSep <= 0 {
		opts.RankSep = DefaultOptions().RankSep
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{opts: opts, logger: logger}
}

// Layout positions every person and couple of the graph: build the ranked
// DAG, break cycles in bad data, assign generational ranks, order each rank,
// assign footprints and coordinates, then optionally relax. The result is
// deterministic for an identical input graph.
//
// Re-layout runs on structural mutation only; pure drags and field edits
// never re-enter this pipeline.
func (e *Engine) Layout(fg *family.Graph) (*Layout, error) {
	g, err := buildDAG(fg, e.logger)
	if err != nil {
		return nil, err
	}

	if removed := transform.BreakCycles(g); removed > 0 {
		e.logger.Warn("broke relationship cycles", "edges_removed", removed)
	}
	transform.AssignRanks(g)

	orders := Barycentric{Passes: e.opts.Passes}.OrderRanks(g)
	nodes := assignCoordinates(g, orders, e.opts)
	if e.opts.Relax {
		relax(g, nodes, e.opts)
	}

	l := &Layout{Nodes: nodes, Edges: g.Edges(), Ranks: orders}
	l.Width, l.Height = extent(nodes, e.opts)
	for i := range l.Nodes {
		if p, ok := personByID(fg, l.Nodes[i].ID); ok {
			l.Nodes[i].Label = p.Name()
		}
	}
	return l, nil
}

// buildDAG converts the family snapshot into the layout DAG: person and
// couple nodes sized by Footprint, partnership edges person->couple and
// parentage edges couple->person. Edges with a missing endpoint are skipped
// rather than failing the whole layout.
func buildDAG(fg *family.Graph, logger *log.Logger) (*dag.Graph, error) {
	g := dag.New()
	for _, p := range fg.Persons {
		w, h := Footprint(p)
		if err := g.AddNode(dag.Node{ID: p.ID, Kind: dag.KindPerson, W: w, H: h}); err != nil {
			return nil, err
		}
	}
	for _, c := range fg.Couples {
		w, h := UnitFootprint()
		if err := g.AddNode(dag.Node{ID: c.ID, Kind: dag.KindUnit, W: w, H: h}); err != nil {
			return nil, err
		}
	}

	for _, e := range fg.Partnerships {
		if err := g.AddEdge(dag.Edge{From: e.PersonID, To: e.CoupleID}); err != nil {
			logger.Warn("skipping partnership edge", "person", e.PersonID, "couple", e.CoupleID, "err", err)
		}
	}
	for _, e := range fg.Parentages {
		if err := g.AddEdge(dag.Edge{From: e.CoupleID, To: e.PersonID}); err != nil {
			logger.Warn("skipping parentage edge", "person", e.PersonID, "couple", e.CoupleID, "err", err)
		}
	}
	return g, nil
}

func extent(nodes []PositionedNode, opts Options) (w, h float64) {
	for _, n := range nodes {
		if r := n.X + n.W/2; r > w {
			w = r
		}
		if b := n.Y + n.H/2; b > h {
			h = b
		}
	}
	return w + opts.MarginX, h + opts.MarginY
}

func personByID(fg *family.Graph, id string) (family.Person, bool) {
	for _, p := range fg.Persons {
		if p.ID == id {
			return p, true
		}
	}
	return family.Person{}, false
}
