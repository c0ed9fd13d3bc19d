// Package interact models the diagram interaction flow as a pure state
// machine. The machine performs no I/O: gestures and domain-call outcomes
// come in as events, and the machine answers with the effects the driver
// must apply (sync a field edit, sync a structural change, pin a position,
// open an editor). A terminal UI and a browser client can drive the same
// machine.
package interact

import "github.com/kintreehq/kintree/pkg/family"

// State is the current interaction mode of a diagram session.
type State int

const (
	StateIdle State = iota
	StateNodeSelected
	StateEditing
	StateRelationPrompt
	StateFlipPrompt
	StateDragging
)

// String returns the state name for logs and prompts.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateNodeSelected:
		return "node-selected"
	case StateEditing:
		return "editing"
	case StateRelationPrompt:
		return "relation-prompt"
	case StateFlipPrompt:
		return "flip-prompt"
	case StateDragging:
		return "dragging"
	}
	return "unknown"
}

// Event is a gesture or a completed domain-call outcome fed to the machine.
// Events that finish a domain call (Save, Confirm, ChooseCouple) carry the
// call's result, keeping the machine itself free of I/O.
type Event interface{ isEvent() }

type (
	// ClickNode selects a node, or switches the selection.
	ClickNode struct{ ID string }
	// ClickEdge opens the flip prompt for the edge between a person and a
	// couple unit.
	ClickEdge struct{ PersonID, CoupleID string }
	// ClickBackground dismisses any open dialog or selection.
	ClickBackground struct{}
	// ChooseEdit opens the editor for the selected node.
	ChooseEdit struct{}
	// ChooseAddRelation opens the relation prompt for the selected node.
	ChooseAddRelation struct{}
	// ChooseRole fixes the role of the relative being added.
	ChooseRole struct{ Role family.Role }
	// ChooseCouple completes the relation flow: the driver has called the
	// composite create-and-link operation against the chosen couple (empty
	// CoupleID means a new couple was requested) and reports the outcome.
	ChooseCouple struct {
		CoupleID    string
		NewPersonID string
		Err         error
	}
	// Save reports the outcome of an editor save attempt.
	Save struct {
		PersonID string
		Err      error
	}
	// Confirm reports the outcome of the flip call.
	Confirm struct{ Err error }
	// Cancel dismisses the current dialog explicitly.
	Cancel struct{}
	// DragStart begins dragging a node.
	DragStart struct{ ID string }
	// DragEnd releases the dragged node at the given position.
	DragEnd struct{ X, Y float64 }
)

func (ClickNode) isEvent()         {}
func (ClickEdge) isEvent()         {}
func (ClickBackground) isEvent()   {}
func (ChooseEdit) isEvent()        {}
func (ChooseAddRelation) isEvent() {}
func (ChooseRole) isEvent()        {}
func (ChooseCouple) isEvent()      {}
func (Save) isEvent()              {}
func (Confirm) isEvent()           {}
func (Cancel) isEvent()            {}
func (DragStart) isEvent()         {}
func (DragEnd) isEvent()           {}

// Effect is an instruction back to the driver. Effects are tagged variants;
// drivers switch on the concrete type.
type Effect interface{ isEffect() }

type (
	// FieldEditSync patches a single element in place after a field edit.
	FieldEditSync struct{ PersonID string }
	// StructuralSync re-runs layout and rebinds the scene.
	StructuralSync struct{}
	// PinPosition pins a node where the user dropped it.
	PinPosition struct {
		NodeID string
		X, Y   float64
	}
	// OpenEditor opens the field editor for a person.
	OpenEditor struct{ PersonID string }
)

func (FieldEditSync) isEffect()  {}
func (StructuralSync) isEffect() {}
func (PinPosition) isEffect()    {}
func (OpenEditor) isEffect()     {}

// Machine is one diagram session's interaction state. It is not safe for
// concurrent use; the event loop driving it is single-threaded.
type Machine struct {
	state    State
	selected string // node under selection, editing, or relation prompt
	dragID   string
	role     family.Role
	flipP    string // flip prompt edge endpoints
	flipC    string
	err      error
}

// New returns a machine in the Idle state.
func New() *Machine { return &Machine{state: StateIdle} }

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Selected returns the node the current flow concerns.
func (m *Machine) Selected() string { return m.selected }

// Role returns the role chosen in the relation prompt.
func (m *Machine) Role() family.Role { return m.role }

// FlipEdge returns the edge endpoints the flip prompt concerns.
func (m *Machine) FlipEdge() (personID, coupleID string) { return m.flipP, m.flipC }

// Err returns the error surfaced by the last failed operation, if any.
// It is cleared by the next successful transition.
func (m *Machine) Err() error { return m.err }

// Handle advances the machine. Events that make no sense in the current
// state are ignored and return no effects, so a stale or duplicated gesture
// can never corrupt the session.
func (m *Machine) Handle(ev Event) []Effect {
	switch e := ev.(type) {
	case ClickNode:
		if m.state == StateIdle || m.state == StateNodeSelected {
			m.toSelected(e.ID)
		}
	case ClickEdge:
		if m.state == StateIdle || m.state == StateNodeSelected {
			m.state = StateFlipPrompt
			m.flipP, m.flipC = e.PersonID, e.CoupleID
			m.err = nil
		}
	case ClickBackground:
		// Dismissal from any dialog returns to Idle without side effects.
		// A drag in flight is not interrupted by stray background clicks.
		if m.state != StateDragging {
			m.toIdle()
		}
	case Cancel:
		// Explicit cancel aborts anything, including a drag (no pin).
		m.toIdle()
	case ChooseEdit:
		if m.state == StateNodeSelected {
			m.state = StateEditing
			m.err = nil
			return []Effect{OpenEditor{PersonID: m.selected}}
		}
	case ChooseAddRelation:
		if m.state == StateNodeSelected {
			m.state = StateRelationPrompt
			m.err = nil
		}
	case ChooseRole:
		if m.state == StateRelationPrompt {
			m.role = e.Role
		}
	case ChooseCouple:
		if m.state == StateRelationPrompt {
			if e.Err != nil {
				// The prompt stays open with the error surfaced.
				m.err = e.Err
				return nil
			}
			// Success: structural sync, then straight into the new
			// person's editor.
			m.state = StateEditing
			m.selected = e.NewPersonID
			m.err = nil
			return []Effect{StructuralSync{}, OpenEditor{PersonID: e.NewPersonID}}
		}
	case Save:
		if m.state == StateEditing {
			if e.Err != nil {
				m.err = e.Err
				return nil
			}
			person := e.PersonID
			m.toIdle()
			return []Effect{FieldEditSync{PersonID: person}}
		}
	case Confirm:
		if m.state == StateFlipPrompt {
			err := e.Err
			m.toIdle()
			if err != nil {
				m.err = err
				return nil
			}
			return []Effect{StructuralSync{}}
		}
	case DragStart:
		if m.state == StateIdle || m.state == StateNodeSelected {
			m.state = StateDragging
			m.dragID = e.ID
		}
	case DragEnd:
		if m.state == StateDragging {
			id := m.dragID
			m.toIdle()
			return []Effect{PinPosition{NodeID: id, X: e.X, Y: e.Y}}
		}
	}
	return nil
}

func (m *Machine) toSelected(id string) {
	m.state = StateNodeSelected
	m.selected = id
	m.err = nil
}

func (m *Machine) toIdle() {
	m.state = StateIdle
	m.selected = ""
	m.dragID = ""
	m.flipP, m.flipC = "", ""
	m.role = ""
	m.err = nil
}
