package family

import "testing"

func TestPersonName(t *testing.T) {
	p := Person{FirstName: "Anna", LastName: "Adler"}
	if got := p.Name(); got != "Anna Adler" {
		t.Errorf("Name() = %q, want %q", got, "Anna Adler")
	}

	p.DisplayName = "Oma Anna"
	if got := p.Name(); got != "Oma Anna" {
		t.Errorf("Name() = %q, want display name %q", got, "Oma Anna")
	}
}

func TestDeceased(t *testing.T) {
	p := Person{}
	if p.Deceased() {
		t.Error("person without death date must not be deceased")
	}
	p.DeathDate = "1960-02-02"
	if !p.Deceased() {
		t.Error("person with death date must be deceased")
	}
}

func TestKindForRole(t *testing.T) {
	if got := KindForRole(RolePartner); got != Partnership {
		t.Errorf("KindForRole(partner) = %v, want %v", got, Partnership)
	}
	if got := KindForRole(RoleChild); got != Parentage {
		t.Errorf("KindForRole(child) = %v, want %v", got, Parentage)
	}
}

func TestEdgeKindOpposite(t *testing.T) {
	if got := Partnership.Opposite(); got != Parentage {
		t.Errorf("Opposite() = %v, want %v", got, Parentage)
	}
	if got := Parentage.Opposite(); got != Partnership {
		t.Errorf("Opposite() = %v, want %v", got, Partnership)
	}
}
