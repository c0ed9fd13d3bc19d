package family

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/kintreehq/kintree/pkg/errors"
)

// Placeholder values applied when a person is created without names.
const (
	DefaultFirstName = "Firstname"
	DefaultLastName  = "Lastname"
)

// Service enforces the person/couple/edge invariants and provides the
// operations the rest of the application uses. All operations are
// synchronous: they return a value or a typed error, and no partial-success
// state is exposed.
//
// Service is safe for concurrent use if its Store is.
type Service struct {
	store  Store
	logger *log.Logger
}

// NewService creates a domain service over the given store.
// If logger is nil, log.Default() is used.
func NewService(store Store, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{store: store, logger: logger}
}

// Store exposes the underlying store for read-only collaborators
// (layout, photo gallery).
func (s *Service) Store() Store { return s.store }

// Tree returns the full graph snapshot with derived counts populated.
func (s *Service) Tree(ctx context.Context) (*Graph, error) {
	g, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	partners := make(map[string]int)
	children := make(map[string]int)
	for _, e := range g.Partnerships {
		partners[e.CoupleID]++
	}
	for _, e := range g.Parentages {
		children[e.CoupleID]++
	}
	for i := range g.Couples {
		g.Couples[i].PartnerCount = partners[g.Couples[i].ID]
		g.Couples[i].ChildCount = children[g.Couples[i].ID]
	}

	for i := range g.Persons {
		n, err := s.store.CountTagsForPerson(ctx, g.Persons[i].ID)
		if err != nil {
			return nil, err
		}
		g.Persons[i].PhotoCount = n
	}
	return g, nil
}

// CreatePerson creates a standalone person. Absent fields default:
// first/last name to placeholder strings, birth date to today, gender to
// male. The returned person carries a fresh unique ID.
func (s *Service) CreatePerson(ctx context.Context, fields PersonFields) (Person, error) {
	p := personFromFields(fields)
	p.ID = uuid.NewString()

	created, err := s.store.CreatePerson(ctx, p)
	if err != nil {
		return Person{}, err
	}
	s.logger.Info("created person", "id", created.ID, "name", created.Name())
	return created, nil
}

// UpdatePerson applies a partial-field update to an existing person.
func (s *Service) UpdatePerson(ctx context.Context, id string, upd PersonUpdate) (Person, error) {
	return s.store.UpdatePerson(ctx, id, upd)
}

// GetPerson returns a single person by ID.
func (s *Service) GetPerson(ctx context.Context, id string) (Person, error) {
	return s.store.GetPerson(ctx, id)
}

// CreateCouple creates a brand-new family unit anchored on an existing
// person: role partner makes the anchor a partner in the new couple, role
// child makes the new couple the anchor's parent unit. Fails with a
// NOT_FOUND error if the anchor does not resolve.
func (s *Service) CreateCouple(ctx context.Context, anchorPersonID string, role Role) (Couple, error) {
	if !role.Valid() {
		return Couple{}, errors.New(errors.ErrCodeInvalidRole, "unknown role %q", role)
	}
	if _, err := s.store.GetPerson(ctx, anchorPersonID); err != nil {
		return Couple{}, err
	}

	c, err := s.store.CreateCouple(ctx, Couple{ID: uuid.NewString()})
	if err != nil {
		return Couple{}, err
	}
	if err := s.store.CreateEdge(ctx, anchorPersonID, c.ID, KindForRole(role)); err != nil {
		return Couple{}, err
	}
	s.logger.Info("created couple", "id", c.ID, "anchor", anchorPersonID, "role", role)
	return c, nil
}

// LinkPersonToCouple attaches an existing person to an existing couple as
// partner or child. Fails with NOT_FOUND if either id is missing.
//
// The operation is not idempotent: calling it twice creates duplicate edges.
// Callers must not double-invoke.
func (s *Service) LinkPersonToCouple(ctx context.Context, personID, coupleID string, role Role) error {
	if !role.Valid() {
		return errors.New(errors.ErrCodeInvalidRole, "unknown role %q", role)
	}
	if _, err := s.store.GetPerson(ctx, personID); err != nil {
		return err
	}
	if _, err := s.store.GetCouple(ctx, coupleID); err != nil {
		return err
	}
	return s.store.CreateEdge(ctx, personID, coupleID, KindForRole(role))
}

// CreatePersonAndLink creates a person and attaches them in one flow: to the
// given couple when coupleID is non-empty, otherwise to a brand-new couple
// anchored on the new person. Used by the "add relative" flows.
//
// There is no compensating rollback: if the link step fails after the person
// was created, the orphaned person remains in the store. The caller sees the
// link error; the orphan is visible in the tree and can be deleted manually.
func (s *Service) CreatePersonAndLink(ctx context.Context, coupleID string, role Role, fields PersonFields) (Person, error) {
	if !role.Valid() {
		return Person{}, errors.New(errors.ErrCodeInvalidRole, "unknown role %q", role)
	}

	p, err := s.CreatePerson(ctx, fields)
	if err != nil {
		return Person{}, err
	}

	if coupleID == "" {
		if _, err := s.CreateCouple(ctx, p.ID, role); err != nil {
			return Person{}, err
		}
		return p, nil
	}
	if err := s.LinkPersonToCouple(ctx, p.ID, coupleID, role); err != nil {
		return Person{}, err
	}
	return p, nil
}

// FlipEdge reinterprets the existing edge between a person and a couple:
// a partnership edge becomes a parentage edge and vice versa, changing the
// person's role in the family unit. The old-typed edge is deleted and the
// new-typed one created; from the caller's perspective the flip is atomic.
// Fails with NOT_FOUND if no edge exists between the pair.
func (s *Service) FlipEdge(ctx context.Context, personID, coupleID string) error {
	m, err := s.store.FindEdgesForPerson(ctx, personID)
	if err != nil {
		return err
	}

	var kind EdgeKind
	switch {
	case contains(m.AsPartner, coupleID):
		kind = Partnership
	case contains(m.AsChild, coupleID):
		kind = Parentage
	default:
		return errors.New(errors.ErrCodeNotFound, "no edge between person %s and couple %s", personID, coupleID)
	}

	if err := s.store.DeleteEdge(ctx, personID, coupleID, kind); err != nil {
		return err
	}
	if err := s.store.CreateEdge(ctx, personID, coupleID, kind.Opposite()); err != nil {
		return err
	}
	s.logger.Info("flipped edge", "person", personID, "couple", coupleID, "now", kind.Opposite())
	return nil
}

// DeletePerson removes a person and cascades: all partnership and parentage
// edges referencing the person are removed, as are the person's photo-tag
// edges. Photos themselves survive, and couples are never auto-pruned - a
// couple left with no members still exists.
func (s *Service) DeletePerson(ctx context.Context, id string) error {
	m, err := s.store.FindEdgesForPerson(ctx, id)
	if err != nil {
		return err
	}
	for _, coupleID := range m.AsPartner {
		if err := s.store.DeleteEdge(ctx, id, coupleID, Partnership); err != nil {
			return err
		}
	}
	for _, coupleID := range m.AsChild {
		if err := s.store.DeleteEdge(ctx, id, coupleID, Parentage); err != nil {
			return err
		}
	}
	if err := s.store.DeleteTagsForPerson(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeletePerson(ctx, id); err != nil {
		return err
	}
	s.logger.Info("deleted person", "id", id)
	return nil
}

// DeleteCouple removes a family unit and its incident edges. Attached
// persons are not deleted.
func (s *Service) DeleteCouple(ctx context.Context, id string) error {
	if err := s.store.DeleteCouple(ctx, id); err != nil {
		return err
	}
	s.logger.Info("deleted couple", "id", id)
	return nil
}

// ListCouplesForPerson returns the person's memberships by role. The caller
// applies the reuse policy: zero couples in the relevant role means create a
// new one silently, exactly one means prompt reuse-vs-create, several mean
// prompt for a choice.
func (s *Service) ListCouplesForPerson(ctx context.Context, personID string) (Membership, error) {
	if _, err := s.store.GetPerson(ctx, personID); err != nil {
		return Membership{}, err
	}
	return s.store.FindEdgesForPerson(ctx, personID)
}

func personFromFields(f PersonFields) Person {
	p := Person{
		FirstName:   f.FirstName,
		LastName:    f.LastName,
		DisplayName: f.DisplayName,
		BirthDate:   f.BirthDate,
		BirthPlace:  f.BirthPlace,
		DeathDate:   f.DeathDate,
		DeathPlace:  f.DeathPlace,
		Profession:  f.Profession,
		Notes:       f.Notes,
		Gender:      f.Gender,
	}
	if p.FirstName == "" {
		p.FirstName = DefaultFirstName
	}
	if p.LastName == "" {
		p.LastName = DefaultLastName
	}
	if p.BirthDate == "" {
		p.BirthDate = time.Now().Format("2006-01-02")
	}
	if p.Gender == "" {
		p.Gender = GenderMale
	}
	return p
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
