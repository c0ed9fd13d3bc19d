// Package family defines the domain model and relationship rules of the
// family tree: persons, couples (family units), the two relationship edge
// kinds between them, and the Service that enforces their invariants.
//
// The model never connects persons directly. A person attaches to a couple
// either as a partner (partnership edge, person→couple) or as a child
// (parentage edge, couple→person). A couple may have 0, 1, or 2+ partners -
// partner count is deliberately uncapped to support remarriage and poly
// family modeling - and any number of children.
package family

import "strings"

// Gender is a person's recorded gender.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Role describes how a person attaches to a family unit.
type Role string

const (
	// RolePartner makes the person a partner in the couple.
	RolePartner Role = "partner"
	// RoleChild makes the person a child of the couple.
	RoleChild Role = "child"
)

// Valid reports whether the role is one of the two known values.
func (r Role) Valid() bool { return r == RolePartner || r == RoleChild }

// EdgeKind is the type of a relationship edge between a person and a couple.
type EdgeKind string

const (
	// Partnership runs person→couple: "is a partner in".
	Partnership EdgeKind = "partnership"
	// Parentage runs couple→person: "is parent of".
	Parentage EdgeKind = "parentage"
)

// KindForRole maps the request-level role vocabulary onto the stored edge kind.
func KindForRole(r Role) EdgeKind {
	if r == RoleChild {
		return Parentage
	}
	return Partnership
}

// Opposite returns the flipped edge kind.
func (k EdgeKind) Opposite() EdgeKind {
	if k == Partnership {
		return Parentage
	}
	return Partnership
}

// Person is an individual family member. The ID is an opaque string, unique
// across the store and immutable once created. Dates are free-form strings -
// a year ("1934") or a full date ("1934-05-02") are both acceptable.
type Person struct {
	ID          string `json:"id" bson:"_id"`
	FirstName   string `json:"first_name" bson:"first_name"`
	LastName    string `json:"last_name" bson:"last_name"`
	DisplayName string `json:"display_name,omitempty" bson:"display_name,omitempty"`
	BirthDate   string `json:"birth_date" bson:"birth_date"`
	BirthPlace  string `json:"birth_place,omitempty" bson:"birth_place,omitempty"`
	DeathDate   string `json:"death_date,omitempty" bson:"death_date,omitempty"`
	DeathPlace  string `json:"death_place,omitempty" bson:"death_place,omitempty"`
	Profession  string `json:"profession,omitempty" bson:"profession,omitempty"`
	Notes       string `json:"notes,omitempty" bson:"notes,omitempty"`
	Gender      Gender `json:"gender" bson:"gender"`

	// PhotoCount is derived from tag edges and never stored.
	PhotoCount int `json:"photo_count" bson:"-"`
}

// Name returns the person's display name: the explicit override when set,
// otherwise first and last name joined.
func (p Person) Name() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Deceased reports whether a date of death is recorded.
func (p Person) Deceased() bool { return p.DeathDate != "" }

// Couple is a family unit joining zero or more partners to zero or more
// children. It carries no personal attributes - only its identifier and
// derived counts used for display.
type Couple struct {
	ID string `json:"id" bson:"_id"`

	// Derived from edges, never stored.
	PartnerCount int `json:"partner_count" bson:"-"`
	ChildCount   int `json:"child_count" bson:"-"`
}

// Edge is a stored relationship between a person and a couple.
type Edge struct {
	PersonID string   `json:"person_id" bson:"person_id"`
	CoupleID string   `json:"couple_id" bson:"couple_id"`
	Kind     EdgeKind `json:"kind" bson:"kind"`
}

// Photo is a media asset with metadata and tags mapping it to zero or more
// persons. Photos are owned independently of any single person: deleting a
// photo removes its tag edges but not the tagged persons, and deleting a
// person removes only that person's tag edges.
type Photo struct {
	ID       string   `json:"id" bson:"_id"`
	URL      string   `json:"url" bson:"url"`
	Caption  string   `json:"caption,omitempty" bson:"caption,omitempty"`
	Location string   `json:"location,omitempty" bson:"location,omitempty"`
	Date     string   `json:"date,omitempty" bson:"date,omitempty"`
	Comments string   `json:"comments,omitempty" bson:"comments,omitempty"`
	Persons  []string `json:"persons,omitempty" bson:"persons,omitempty"`
}

// Graph is a full snapshot of the family store.
type Graph struct {
	Persons      []Person `json:"persons"`
	Couples      []Couple `json:"couples"`
	Partnerships []Edge   `json:"partnerships"`
	Parentages   []Edge   `json:"parentages"`
}

// Membership lists the couples a person belongs to, split by role. The UI
// uses it to decide whether adding a parent or partner should reuse an
// existing family unit or create a new one.
type Membership struct {
	AsPartner []string `json:"as_partner"`
	AsChild   []string `json:"as_child"`
}

// PersonFields carries the writable attributes for creating a person.
// Absent fields default (see Service.CreatePerson).
type PersonFields struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DisplayName string `json:"display_name"`
	BirthDate   string `json:"birth_date"`
	BirthPlace  string `json:"birth_place"`
	DeathDate   string `json:"death_date"`
	DeathPlace  string `json:"death_place"`
	Profession  string `json:"profession"`
	Notes       string `json:"notes"`
	Gender      Gender `json:"gender"`
}

// PersonUpdate is a partial-field update. Nil pointers leave the stored
// value untouched.
type PersonUpdate struct {
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	DisplayName *string `json:"display_name,omitempty"`
	BirthDate   *string `json:"birth_date,omitempty"`
	BirthPlace  *string `json:"birth_place,omitempty"`
	DeathDate   *string `json:"death_date,omitempty"`
	DeathPlace  *string `json:"death_place,omitempty"`
	Profession  *string `json:"profession,omitempty"`
	Notes       *string `json:"notes,omitempty"`
	Gender      *Gender `json:"gender,omitempty"`
}

// Apply copies the non-nil fields onto p.
func (u PersonUpdate) Apply(p *Person) {
	if u.FirstName != nil {
		p.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		p.LastName = *u.LastName
	}
	if u.DisplayName != nil {
		p.DisplayName = *u.DisplayName
	}
	if u.BirthDate != nil {
		p.BirthDate = *u.BirthDate
	}
	if u.BirthPlace != nil {
		p.BirthPlace = *u.BirthPlace
	}
	if u.DeathDate != nil {
		p.DeathDate = *u.DeathDate
	}
	if u.DeathPlace != nil {
		p.DeathPlace = *u.DeathPlace
	}
	if u.Profession != nil {
		p.Profession = *u.Profession
	}
	if u.Notes != nil {
		p.Notes = *u.Notes
	}
	if u.Gender != nil {
		p.Gender = *u.Gender
	}
}
