package interact

import (
	"errors"
	"testing"

	"github.com/kintreehq/kintree/pkg/family"
)

func TestEditFlow(t *testing.T) {
	m := New()

	if fx := m.Handle(ClickNode{ID: "anna"}); len(fx) != 0 {
		t.Errorf("selection must produce no effects, got %v", fx)
	}
	if m.State() != StateNodeSelected {
		t.Fatalf("got state %v, want %v", m.State(), StateNodeSelected)
	}

	fx := m.Handle(ChooseEdit{})
	if len(fx) != 1 {
		t.Fatalf("got %d effects, want 1", len(fx))
	}
	if open, ok := fx[0].(OpenEditor); !ok || open.PersonID != "anna" {
		t.Errorf("got effect %v, want OpenEditor for anna", fx[0])
	}
	if m.State() != StateEditing {
		t.Fatalf("got state %v, want %v", m.State(), StateEditing)
	}

	fx = m.Handle(Save{PersonID: "anna"})
	if m.State() != StateIdle {
		t.Errorf("got state %v after save, want idle", m.State())
	}
	if len(fx) != 1 {
		t.Fatalf("got %d effects, want 1", len(fx))
	}
	if sync, ok := fx[0].(FieldEditSync); !ok || sync.PersonID != "anna" {
		t.Errorf("got effect %v, want FieldEditSync for anna", fx[0])
	}
}

func TestSaveFailureKeepsEditing(t *testing.T) {
	m := New()
	m.Handle(ClickNode{ID: "anna"})
	m.Handle(ChooseEdit{})

	saveErr := errors.New("store unavailable")
	fx := m.Handle(Save{PersonID: "anna", Err: saveErr})
	if len(fx) != 0 {
		t.Errorf("failed save must produce no effects, got %v", fx)
	}
	if m.State() != StateEditing {
		t.Errorf("got state %v, want still editing", m.State())
	}
	if m.Err() != saveErr {
		t.Errorf("got err %v, want the save error surfaced", m.Err())
	}
}

func TestRelationFlowSuccess(t *testing.T) {
	m := New()
	m.Handle(ClickNode{ID: "anna"})
	m.Handle(ChooseAddRelation{})
	if m.State() != StateRelationPrompt {
		t.Fatalf("got state %v, want %v", m.State(), StateRelationPrompt)
	}

	m.Handle(ChooseRole{Role: family.RoleChild})
	if m.Role() != family.RoleChild {
		t.Errorf("got role %v, want child", m.Role())
	}

	fx := m.Handle(ChooseCouple{CoupleID: "unit1", NewPersonID: "new-person"})
	if len(fx) != 2 {
		t.Fatalf("got %d effects, want structural sync plus editor", len(fx))
	}
	if _, ok := fx[0].(StructuralSync); !ok {
		t.Errorf("got first effect %v, want StructuralSync", fx[0])
	}
	if open, ok := fx[1].(OpenEditor); !ok || open.PersonID != "new-person" {
		t.Errorf("got second effect %v, want OpenEditor for the new person", fx[1])
	}
	if m.State() != StateEditing || m.Selected() != "new-person" {
		t.Errorf("relation success must auto-open the new person's editor, got %v/%q", m.State(), m.Selected())
	}
}

func TestRelationFlowFailureKeepsPrompt(t *testing.T) {
	m := New()
	m.Handle(ClickNode{ID: "anna"})
	m.Handle(ChooseAddRelation{})
	m.Handle(ChooseRole{Role: family.RolePartner})

	linkErr := errors.New("couple not found")
	fx := m.Handle(ChooseCouple{CoupleID: "gone", Err: linkErr})
	if len(fx) != 0 {
		t.Errorf("failed relation add must produce no effects, got %v", fx)
	}
	if m.State() != StateRelationPrompt {
		t.Errorf("got state %v, want prompt kept open", m.State())
	}
	if m.Err() != linkErr {
		t.Errorf("got err %v, want the link error surfaced", m.Err())
	}
}

func TestFlipFlow(t *testing.T) {
	m := New()
	m.Handle(ClickEdge{PersonID: "anna", CoupleID: "unit1"})
	if m.State() != StateFlipPrompt {
		t.Fatalf("got state %v, want %v", m.State(), StateFlipPrompt)
	}
	p, c := m.FlipEdge()
	if p != "anna" || c != "unit1" {
		t.Errorf("got flip edge %s/%s, want anna/unit1", p, c)
	}

	fx := m.Handle(Confirm{})
	if len(fx) != 1 {
		t.Fatalf("got %d effects, want 1", len(fx))
	}
	if _, ok := fx[0].(StructuralSync); !ok {
		t.Errorf("got effect %v, want StructuralSync", fx[0])
	}
	if m.State() != StateIdle {
		t.Errorf("got state %v, want idle", m.State())
	}
}

func TestFlipCancelHasNoSideEffects(t *testing.T) {
	m := New()
	m.Handle(ClickEdge{PersonID: "anna", CoupleID: "unit1"})

	fx := m.Handle(Cancel{})
	if len(fx) != 0 {
		t.Errorf("cancel must produce no effects, got %v", fx)
	}
	if m.State() != StateIdle {
		t.Errorf("got state %v, want idle", m.State())
	}
}

func TestDragFlow(t *testing.T) {
	m := New()
	m.Handle(DragStart{ID: "anna"})
	if m.State() != StateDragging {
		t.Fatalf("got state %v, want %v", m.State(), StateDragging)
	}

	// Dragging ignores dismissal gestures until release.
	m.Handle(ClickBackground{})
	if m.State() != StateDragging {
		t.Fatalf("background click must not interrupt a drag")
	}

	fx := m.Handle(DragEnd{X: 50, Y: 75})
	if len(fx) != 1 {
		t.Fatalf("got %d effects, want 1", len(fx))
	}
	pin, ok := fx[0].(PinPosition)
	if !ok || pin.NodeID != "anna" || pin.X != 50 || pin.Y != 75 {
		t.Errorf("got effect %v, want pin of anna at (50, 75)", fx[0])
	}
	if m.State() != StateIdle {
		t.Errorf("got state %v, want idle", m.State())
	}
}

func TestCancelAbortsDragWithoutPin(t *testing.T) {
	m := New()
	m.Handle(DragStart{ID: "anna"})
	if fx := m.Handle(Cancel{}); len(fx) != 0 {
		t.Errorf("aborted drag must not pin, got effects %v", fx)
	}
	if m.State() != StateIdle {
		t.Errorf("got state %v, want idle", m.State())
	}
}

func TestBackgroundDismissesAnyDialog(t *testing.T) {
	m := New()
	m.Handle(ClickNode{ID: "anna"})
	m.Handle(ChooseAddRelation{})
	m.Handle(ClickBackground{})
	if m.State() != StateIdle {
		t.Errorf("got state %v, want idle", m.State())
	}
	if m.Selected() != "" {
		t.Errorf("dismissal must clear the selection, got %q", m.Selected())
	}
}

func TestStaleEventsAreIgnored(t *testing.T) {
	m := New()
	for _, ev := range []Event{Save{PersonID: "x"}, Confirm{}, ChooseEdit{}, DragEnd{}, ChooseCouple{}} {
		if fx := m.Handle(ev); len(fx) != 0 {
			t.Errorf("event %T in idle must be ignored, got effects %v", ev, fx)
		}
		if m.State() != StateIdle {
			t.Fatalf("event %T must not move an idle machine, got %v", ev, m.State())
		}
	}
}
