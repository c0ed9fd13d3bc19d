// Package scene keeps a set of visual elements in sync with the family
// graph. It is the incremental middle layer between layout and rendering:
// field edits patch a single element in place, structural mutations re-bind
// the whole element set against a fresh layout, and drags pin elements until
// the next structural change.
package scene

import (
	"sort"

	"github.com/charmbracelet/log"

	"github.com/kintreehq/kintree/pkg/family"
	"github.com/kintreehq/kintree/pkg/layout"
)

// PartName identifies one named piece of an element. Parts are always
// addressed by name; nothing in the scene depends on part order.
type PartName string

const (
	PartFrame         PartName = "frame"
	PartHeader        PartName = "header"
	PartRowBirth      PartName = "row_birth"
	PartRowDeath      PartName = "row_death"
	PartRowProfession PartName = "row_profession"
)

// Part is a positioned piece of an element. Coordinates are absolute, in
// the same units as the layout.
type Part struct {
	Name PartName `json:"name"`
	Text string   `json:"text,omitempty"`
	X    float64  `json:"x"`
	Y    float64  `json:"y"`
	W    float64  `json:"w"`
	H    float64  `json:"h"`
}

// Element is one on-screen node: a person card or a couple marker.
// (X, Y) is the element center.
type Element struct {
	ID     string             `json:"id"`
	Kind   string             `json:"kind"`
	X      float64            `json:"x"`
	Y      float64            `json:"y"`
	W      float64            `json:"w"`
	H      float64            `json:"h"`
	Color  string             `json:"color"`
	Pinned bool               `json:"pinned"`
	Parts  map[PartName]*Part `json:"parts"`
}

// Scene holds the current element set keyed by node ID.
// It is not safe for concurrent use; callers serialize access.
type Scene struct {
	elements map[string]*Element
	width    float64
	height   float64
	logger   *log.Logger
}

// New creates an empty scene. If logger is nil, log.Default() is used.
func New(logger *log.Logger) *Scene {
	if logger == nil {
		logger = log.Default()
	}
	return &Scene{elements: make(map[string]*Element), logger: logger}
}

// Build replaces the entire element set from a fresh layout. All pins are
// discarded. The graph supplies the person fields behind each card's rows.
func (s *Scene) Build(l *layout.Layout, g *family.Graph) {
	s.elements = make(map[string]*Element, len(l.Nodes))
	s.width, s.height = l.Width, l.Height

	persons := personIndex(g)
	for _, n := range l.Nodes {
		el := &Element{ID: n.ID, Kind: n.Kind, X: n.X, Y: n.Y, W: n.W, H: n.H}
		if p, ok := persons[n.ID]; ok {
			dressPerson(el, p)
		} else {
			dressUnit(el)
		}
		s.elements[n.ID] = el
	}
}

// UpdateNode refreshes a single person card in place after a field edit:
// label text, card height, and color change; the element's position and all
// sibling elements stay exactly where they are. A missing element is a
// no-op, so a stale client view never crashes the scene.
func (s *Scene) UpdateNode(p family.Person) {
	el, ok := s.elements[p.ID]
	if !ok {
		s.logger.Debug("update for unknown element", "id", p.ID)
		return
	}
	_, el.H = layout.Footprint(p)
	dressPerson(el, p)
}

// Rebind applies a fresh layout after a structural mutation: surviving
// elements move to their new positions, elements for added nodes appear,
// elements for removed nodes drop out, and every pin is cleared.
func (s *Scene) Rebind(l *layout.Layout, g *family.Graph) {
	s.width, s.height = l.Width, l.Height
	persons := personIndex(g)

	seen := make(map[string]bool, len(l.Nodes))
	for _, n := range l.Nodes {
		seen[n.ID] = true
		el, ok := s.elements[n.ID]
		if !ok {
			el = &Element{ID: n.ID, Kind: n.Kind}
			s.elements[n.ID] = el
		}
		el.X, el.Y, el.W, el.H = n.X, n.Y, n.W, n.H
		el.Pinned = false
		if p, ok := persons[n.ID]; ok {
			dressPerson(el, p)
		} else {
			dressUnit(el)
		}
	}
	for id := range s.elements {
		if !seen[id] {
			delete(s.elements, id)
		}
	}
}

// Pin moves an element to a user-chosen position and marks it authoritative
// until the next structural mutation. A missing element is a no-op.
func (s *Scene) Pin(id string, x, y float64) {
	el, ok := s.elements[id]
	if !ok {
		return
	}
	el.X, el.Y = x, y
	el.Pinned = true
	reposition(el)
}

// Element returns the element with the given id.
func (s *Scene) Element(id string) (*Element, bool) {
	el, ok := s.elements[id]
	return el, ok
}

// Elements returns all elements sorted by ID for deterministic output.
func (s *Scene) Elements() []*Element {
	out := make([]*Element, 0, len(s.elements))
	for _, el := range s.elements {
		out = append(out, el)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of elements.
func (s *Scene) Len() int { return len(s.elements) }

// Size returns the scene extent.
func (s *Scene) Size() (w, h float64) { return s.width, s.height }

// Colors for person cards and couple markers.
const (
	colorMale     = "#7da7d9"
	colorFemale   = "#d98aa6"
	colorDeceased = "#9a9a9a"
	colorUnit     = "#c9b458"
)

// dressPerson rebuilds the named parts of a person card from its current
// geometry and the person's fields.
func dressPerson(el *Element, p family.Person) {
	el.Color = colorMale
	if p.Gender == family.GenderFemale {
		el.Color = colorFemale
	}
	if p.Deceased() {
		el.Color = colorDeceased
	}

	left, top := el.X-el.W/2, el.Y-el.H/2
	const headerH = 24.0
	const rowH = 18.0

	parts := map[PartName]*Part{
		PartFrame:  {Name: PartFrame, X: left, Y: top, W: el.W, H: el.H},
		PartHeader: {Name: PartHeader, Text: p.Name(), X: left, Y: top, W: el.W, H: headerH},
	}
	y := top + headerH
	addRow := func(name PartName, text string) {
		parts[name] = &Part{Name: name, Text: text, X: left, Y: y, W: el.W, H: rowH}
		y += rowH
	}

	addRow(PartRowBirth, birthText(p))
	if p.Deceased() || p.DeathPlace != "" {
		addRow(PartRowDeath, deathText(p))
	}
	if p.Profession != "" {
		addRow(PartRowProfession, p.Profession)
	}
	el.Parts = parts
}

// dressUnit rebuilds the single frame part of a couple marker.
func dressUnit(el *Element) {
	el.Color = colorUnit
	el.Parts = map[PartName]*Part{
		PartFrame: {Name: PartFrame, X: el.X - el.W/2, Y: el.Y - el.H/2, W: el.W, H: el.H},
	}
}

// reposition shifts all parts of an element after a pin without re-deriving
// their text.
func reposition(el *Element) {
	left, top := el.X-el.W/2, el.Y-el.H/2
	var y float64
	for _, name := range []PartName{PartFrame, PartHeader, PartRowBirth, PartRowDeath, PartRowProfession} {
		part, ok := el.Parts[name]
		if !ok {
			continue
		}
		part.X = left
		if name == PartFrame {
			part.Y = top
			continue
		}
		part.Y = top + y
		y += part.H
	}
}

func birthText(p family.Person) string {
	if p.BirthPlace != "" {
		return "* " + p.BirthDate + ", " + p.BirthPlace
	}
	return "* " + p.BirthDate
}

func deathText(p family.Person) string {
	s := "+ " + p.DeathDate
	if p.DeathPlace != "" {
		if p.DeathDate != "" {
			s += ", "
		} else {
			s = "+ "
		}
		s += p.DeathPlace
	}
	return s
}

func personIndex(g *family.Graph) map[string]family.Person {
	idx := make(map[string]family.Person, len(g.Persons))
	for _, p := range g.Persons {
		idx[p.ID] = p
	}
	return idx
}
