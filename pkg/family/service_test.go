package family_test

import (
	"context"
	"testing"
	"time"

	"github.com/kintreehq/kintree/pkg/errors"
	"github.com/kintreehq/kintree/pkg/family"
	"github.com/kintreehq/kintree/pkg/store"
)

func newTestService() *family.Service {
	return family.NewService(store.NewMemory(), nil)
}

func TestCreatePersonDefaults(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	p, err := svc.CreatePerson(ctx, family.PersonFields{})
	if err != nil {
		t.Fatalf("CreatePerson() error = %v", err)
	}
	if p.ID == "" {
		t.Error("created person has no id")
	}
	if p.FirstName != family.DefaultFirstName {
		t.Errorf("got first name %q, want %q", p.FirstName, family.DefaultFirstName)
	}
	if p.LastName != family.DefaultLastName {
		t.Errorf("got last name %q, want %q", p.LastName, family.DefaultLastName)
	}
	if p.Gender != family.GenderMale {
		t.Errorf("got gender %q, want %q", p.Gender, family.GenderMale)
	}
	if p.BirthDate != time.Now().Format("2006-01-02") {
		t.Errorf("got birth date %q, want today", p.BirthDate)
	}
}

func TestCreatePersonKeepsProvidedFields(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	p, err := svc.CreatePerson(ctx, family.PersonFields{
		FirstName: "Clara",
		LastName:  "Christiansen",
		BirthDate: "1931-04-02",
		Gender:    family.GenderFemale,
	})
	if err != nil {
		t.Fatalf("CreatePerson() error = %v", err)
	}
	if p.FirstName != "Clara" || p.LastName != "Christiansen" {
		t.Errorf("got name %q %q, want provided values", p.FirstName, p.LastName)
	}
	if p.BirthDate != "1931-04-02" {
		t.Errorf("got birth date %q, want 1931-04-02", p.BirthDate)
	}
	if p.Gender != family.GenderFemale {
		t.Errorf("got gender %q, want %q", p.Gender, family.GenderFemale)
	}
}

func TestCreateCoupleAnchorsEdge(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	p, _ := svc.CreatePerson(ctx, family.PersonFields{FirstName: "Anna"})

	c, err := svc.CreateCouple(ctx, p.ID, family.RolePartner)
	if err != nil {
		t.Fatalf("CreateCouple() error = %v", err)
	}

	ms, err := svc.ListCouplesForPerson(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListCouplesForPerson() error = %v", err)
	}
	if len(ms.AsPartner) != 1 || ms.AsPartner[0] != c.ID {
		t.Errorf("got partner couples %v, want [%s]", ms.AsPartner, c.ID)
	}
}

func TestCreateCoupleRejectsBadRole(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	p, _ := svc.CreatePerson(ctx, family.PersonFields{})

	_, err := svc.CreateCouple(ctx, p.ID, family.Role("sibling"))
	if errors.GetCode(err) != errors.ErrCodeInvalidRole {
		t.Errorf("got code %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidRole)
	}
}

func TestCreateCoupleRejectsMissingAnchor(t *testing.T) {
	svc := newTestService()
	_, err := svc.CreateCouple(context.Background(), "missing", family.RolePartner)
	if errors.GetCode(err) != errors.ErrCodeNotFound {
		t.Errorf("got code %v, want %v", errors.GetCode(err), errors.ErrCodeNotFound)
	}
}

func TestCreatePersonAndLinkToExistingCouple(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	anchor, _ := svc.CreatePerson(ctx, family.PersonFields{FirstName: "Anna"})
	c, _ := svc.CreateCouple(ctx, anchor.ID, family.RolePartner)

	child, err := svc.CreatePersonAndLink(ctx, c.ID, family.RoleChild, family.PersonFields{FirstName: "Bernd"})
	if err != nil {
		t.Fatalf("CreatePersonAndLink() error = %v", err)
	}

	ms, _ := svc.ListCouplesForPerson(ctx, child.ID)
	if len(ms.AsChild) != 1 || ms.AsChild[0] != c.ID {
		t.Errorf("got child couples %v, want [%s]", ms.AsChild, c.ID)
	}
}

func TestCreatePersonAndLinkNewCouple(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	p, err := svc.CreatePersonAndLink(ctx, "", family.RolePartner, family.PersonFields{FirstName: "Anna"})
	if err != nil {
		t.Fatalf("CreatePersonAndLink() error = %v", err)
	}

	ms, _ := svc.ListCouplesForPerson(ctx, p.ID)
	if len(ms.AsPartner) != 1 {
		t.Errorf("got %d partner couples, want 1", len(ms.AsPartner))
	}
}

func TestFlipEdgeRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	p, _ := svc.CreatePerson(ctx, family.PersonFields{})
	c, _ := svc.CreateCouple(ctx, p.ID, family.RolePartner)

	if err := svc.FlipEdge(ctx, p.ID, c.ID); err != nil {
		t.Fatalf("FlipEdge() error = %v", err)
	}
	ms, _ := svc.ListCouplesForPerson(ctx, p.ID)
	if len(ms.AsPartner) != 0 || len(ms.AsChild) != 1 {
		t.Fatalf("after first flip got %v, want child membership only", ms)
	}

	if err := svc.FlipEdge(ctx, p.ID, c.ID); err != nil {
		t.Fatalf("FlipEdge() second flip error = %v", err)
	}
	ms, _ = svc.ListCouplesForPerson(ctx, p.ID)
	if len(ms.AsPartner) != 1 || len(ms.AsChild) != 0 {
		t.Errorf("after second flip got %v, want partner membership only", ms)
	}
}

func TestFlipEdgeMissingEdge(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	p, _ := svc.CreatePerson(ctx, family.PersonFields{})

	err := svc.FlipEdge(ctx, p.ID, "no-such-couple")
	if errors.GetCode(err) != errors.ErrCodeNotFound {
		t.Errorf("got code %v, want %v", errors.GetCode(err), errors.ErrCodeNotFound)
	}
}

func TestDeletePersonCascades(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	st := svc.Store()

	anna, _ := svc.CreatePerson(ctx, family.PersonFields{FirstName: "Anna"})
	c, _ := svc.CreateCouple(ctx, anna.ID, family.RolePartner)
	bernd, _ := svc.CreatePersonAndLink(ctx, c.ID, family.RoleChild, family.PersonFields{FirstName: "Bernd"})

	ph, _ := st.CreatePhoto(ctx, family.Photo{ID: "ph1", URL: "https://example.com/1.jpg"})
	st.CreateTags(ctx, ph.ID, []string{anna.ID, bernd.ID})

	if err := svc.DeletePerson(ctx, anna.ID); err != nil {
		t.Fatalf("DeletePerson() error = %v", err)
	}

	g, _ := svc.Tree(ctx)
	if len(g.Persons) != 1 {
		t.Fatalf("got %d persons, want 1", len(g.Persons))
	}
	// The couple survives even with the partner gone.
	if len(g.Couples) != 1 {
		t.Errorf("got %d couples, want 1", len(g.Couples))
	}
	if len(g.Partnerships) != 0 {
		t.Errorf("got %d partnership edges, want 0", len(g.Partnerships))
	}
	if len(g.Parentages) != 1 {
		t.Errorf("got %d parentage edges, want 1", len(g.Parentages))
	}
	if n, _ := st.CountTagsForPerson(ctx, anna.ID); n != 0 {
		t.Errorf("got %d tags for deleted person, want 0", n)
	}
	// The photo itself survives, still tagging the remaining person.
	if g.Persons[0].PhotoCount != 1 {
		t.Errorf("got photo count %d for remaining person, want 1", g.Persons[0].PhotoCount)
	}
}

func TestDeleteCoupleKeepsPersons(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	p, _ := svc.CreatePerson(ctx, family.PersonFields{})
	c, _ := svc.CreateCouple(ctx, p.ID, family.RolePartner)

	if err := svc.DeleteCouple(ctx, c.ID); err != nil {
		t.Fatalf("DeleteCouple() error = %v", err)
	}
	g, _ := svc.Tree(ctx)
	if len(g.Persons) != 1 {
		t.Errorf("got %d persons, want 1", len(g.Persons))
	}
	if len(g.Couples) != 0 {
		t.Errorf("got %d couples, want 0", len(g.Couples))
	}
}

func TestTreeDerivedCounts(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	anna, _ := svc.CreatePerson(ctx, family.PersonFields{FirstName: "Anna"})
	c, _ := svc.CreateCouple(ctx, anna.ID, family.RolePartner)
	svc.CreatePersonAndLink(ctx, c.ID, family.RolePartner, family.PersonFields{FirstName: "Bernd"})
	svc.CreatePersonAndLink(ctx, c.ID, family.RoleChild, family.PersonFields{FirstName: "Clara"})

	g, err := svc.Tree(ctx)
	if err != nil {
		t.Fatalf("Tree() error = %v", err)
	}
	if len(g.Couples) != 1 {
		t.Fatalf("got %d couples, want 1", len(g.Couples))
	}
	if g.Couples[0].PartnerCount != 2 {
		t.Errorf("got partner count %d, want 2", g.Couples[0].PartnerCount)
	}
	if g.Couples[0].ChildCount != 1 {
		t.Errorf("got child count %d, want 1", g.Couples[0].ChildCount)
	}
}

func TestCompleteness(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	p, _ := svc.CreatePerson(ctx, family.PersonFields{})
	c, err := svc.Completeness(ctx, p.ID)
	if err != nil {
		t.Fatalf("Completeness() error = %v", err)
	}
	if c.Done() {
		t.Fatal("placeholder person must not be complete")
	}
	for _, want := range []string{"first_name", "last_name", "birth_place", "profession"} {
		if !containsString(c.Missing, want) {
			t.Errorf("missing fields %v, want to include %q", c.Missing, want)
		}
	}
	if containsString(c.Missing, "death_place") {
		t.Error("death_place must not be expected for a living person")
	}

	done, _ := svc.CreatePerson(ctx, family.PersonFields{
		FirstName:  "Anna",
		LastName:   "Adler",
		BirthDate:  "1900-01-01",
		BirthPlace: "Aachen",
		Profession: "weaver",
	})
	c, _ = svc.Completeness(ctx, done.ID)
	if !c.Done() {
		t.Errorf("got missing fields %v, want none", c.Missing)
	}

	deceased, _ := svc.CreatePerson(ctx, family.PersonFields{
		FirstName:  "Bernd",
		LastName:   "Berger",
		BirthDate:  "1890-05-05",
		BirthPlace: "Bonn",
		Profession: "smith",
		DeathDate:  "1960-02-02",
	})
	c, _ = svc.Completeness(ctx, deceased.ID)
	if !containsString(c.Missing, "death_place") {
		t.Errorf("missing fields %v, want to include death_place for deceased person", c.Missing)
	}
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
