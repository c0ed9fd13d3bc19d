package family

import "context"

// Completeness names the fields a person's record is still missing. Name
// fields count as missing while they hold their creation placeholders.
// An empty Missing slice is the "all done" state.
type Completeness struct {
	PersonID string   `json:"person_id"`
	Missing  []string `json:"missing"`
}

// Done reports whether no fields are missing.
func (c Completeness) Done() bool { return len(c.Missing) == 0 }

// Completeness computes the missing-field set for one person.
// Death fields are only expected once a date of death is recorded.
func (s *Service) Completeness(ctx context.Context, personID string) (Completeness, error) {
	p, err := s.store.GetPerson(ctx, personID)
	if err != nil {
		return Completeness{}, err
	}

	c := Completeness{PersonID: personID, Missing: []string{}}
	check := func(name, value, placeholder string) {
		if value == "" || (placeholder != "" && value == placeholder) {
			c.Missing = append(c.Missing, name)
		}
	}

	check("first_name", p.FirstName, DefaultFirstName)
	check("last_name", p.LastName, DefaultLastName)
	check("birth_date", p.BirthDate, "")
	check("birth_place", p.BirthPlace, "")
	check("profession", p.Profession, "")
	if p.Deceased() {
		check("death_place", p.DeathPlace, "")
	}
	return c, nil
}
