// Package store provides persistence for the family graph.
//
// Two implementations of [family.Store] live here: an in-memory store used
// by tests and the development server, and a MongoDB-backed store for
// production. Both implement identical semantics; the in-memory store is the
// reference.
package store

import (
	"context"
	"slices"
	"sync"

	"github.com/kintreehq/kintree/pkg/errors"
	"github.com/kintreehq/kintree/pkg/family"
)

// Memory is a mutex-guarded in-memory implementation of [family.Store].
// It is safe for concurrent use and keeps canonical store semantics:
// NOT_FOUND for missing ids, VALIDATION_ERROR for missing required fields,
// cascade rules implemented exactly as the domain layer expects.
type Memory struct {
	mu      sync.RWMutex
	persons map[string]family.Person
	couples map[string]family.Couple
	edges   []family.Edge
	photos  map[string]family.Photo
	tags    []tag // photo appears-in edges
}

type tag struct {
	PhotoID  string
	PersonID string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		persons: make(map[string]family.Person),
		couples: make(map[string]family.Couple),
		photos:  make(map[string]family.Photo),
	}
}

// GetAll returns a snapshot of the graph. The returned slices are copies.
func (m *Memory) GetAll(ctx context.Context) (*family.Graph, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g := &family.Graph{
		Persons:      make([]family.Person, 0, len(m.persons)),
		Couples:      make([]family.Couple, 0, len(m.couples)),
		Partnerships: []family.Edge{},
		Parentages:   []family.Edge{},
	}
	for _, p := range m.persons {
		g.Persons = append(g.Persons, p)
	}
	for _, c := range m.couples {
		g.Couples = append(g.Couples, c)
	}
	for _, e := range m.edges {
		if e.Kind == family.Partnership {
			g.Partnerships = append(g.Partnerships, e)
		} else {
			g.Parentages = append(g.Parentages, e)
		}
	}

	// Deterministic snapshot order regardless of map iteration.
	slices.SortFunc(g.Persons, func(a, b family.Person) int {
		return compareID(a.ID, b.ID)
	})
	slices.SortFunc(g.Couples, func(a, b family.Couple) int {
		return compareID(a.ID, b.ID)
	})
	return g, nil
}

func compareID(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (m *Memory) CreatePerson(ctx context.Context, p family.Person) (family.Person, error) {
	if p.ID == "" {
		return family.Person{}, errors.New(errors.ErrCodeValidation, "person id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.persons[p.ID] = p
	return p, nil
}

func (m *Memory) GetPerson(ctx context.Context, id string) (family.Person, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.persons[id]
	if !ok {
		return family.Person{}, errors.New(errors.ErrCodeNotFound, "person %s not found", id)
	}
	return p, nil
}

func (m *Memory) UpdatePerson(ctx context.Context, id string, upd family.PersonUpdate) (family.Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.persons[id]
	if !ok {
		return family.Person{}, errors.New(errors.ErrCodeNotFound, "person %s not found", id)
	}
	upd.Apply(&p)
	m.persons[id] = p
	return p, nil
}

func (m *Memory) DeletePerson(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.persons[id]; !ok {
		return errors.New(errors.ErrCodeNotFound, "person %s not found", id)
	}
	delete(m.persons, id)
	return nil
}

func (m *Memory) CreateCouple(ctx context.Context, c family.Couple) (family.Couple, error) {
	if c.ID == "" {
		return family.Couple{}, errors.New(errors.ErrCodeValidation, "couple id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.couples[c.ID] = c
	return c, nil
}

func (m *Memory) GetCouple(ctx context.Context, id string) (family.Couple, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.couples[id]
	if !ok {
		return family.Couple{}, errors.New(errors.ErrCodeNotFound, "couple %s not found", id)
	}
	return c, nil
}

// DeleteCouple removes the couple and its incident edges. Attached persons
// are untouched.
func (m *Memory) DeleteCouple(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.couples[id]; !ok {
		return errors.New(errors.ErrCodeNotFound, "couple %s not found", id)
	}
	delete(m.couples, id)
	m.edges = slices.DeleteFunc(m.edges, func(e family.Edge) bool { return e.CoupleID == id })
	return nil
}

func (m *Memory) CreateEdge(ctx context.Context, personID, coupleID string, kind family.EdgeKind) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.persons[personID]; !ok {
		return errors.New(errors.ErrCodeNotFound, "person %s not found", personID)
	}
	if _, ok := m.couples[coupleID]; !ok {
		return errors.New(errors.ErrCodeNotFound, "couple %s not found", coupleID)
	}
	m.edges = append(m.edges, family.Edge{PersonID: personID, CoupleID: coupleID, Kind: kind})
	return nil
}

func (m *Memory) DeleteEdge(ctx context.Context, personID, coupleID string, kind family.EdgeKind) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := len(m.edges)
	m.edges = slices.DeleteFunc(m.edges, func(e family.Edge) bool {
		return e.PersonID == personID && e.CoupleID == coupleID && e.Kind == kind
	})
	if len(m.edges) == before {
		return errors.New(errors.ErrCodeNotFound, "no %s edge between person %s and couple %s", kind, personID, coupleID)
	}
	return nil
}

func (m *Memory) FindEdgesForPerson(ctx context.Context, personID string) (family.Membership, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ms := family.Membership{AsPartner: []string{}, AsChild: []string{}}
	for _, e := range m.edges {
		if e.PersonID != personID {
			continue
		}
		if e.Kind == family.Partnership {
			ms.AsPartner = append(ms.AsPartner, e.CoupleID)
		} else {
			ms.AsChild = append(ms.AsChild, e.CoupleID)
		}
	}
	return ms, nil
}

func (m *Memory) CreatePhoto(ctx context.Context, ph family.Photo) (family.Photo, error) {
	if ph.ID == "" || ph.URL == "" {
		return family.Photo{}, errors.New(errors.ErrCodeValidation, "photo id and url are required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.photos[ph.ID] = ph
	return ph, nil
}

func (m *Memory) ListPhotos(ctx context.Context) ([]family.Photo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	photos := make([]family.Photo, 0, len(m.photos))
	for _, ph := range m.photos {
		ph.Persons = m.personsForPhoto(ph.ID)
		photos = append(photos, ph)
	}
	slices.SortFunc(photos, func(a, b family.Photo) int { return compareID(a.ID, b.ID) })
	return photos, nil
}

// DeletePhoto removes the photo and its tag edges. Tagged persons survive.
func (m *Memory) DeletePhoto(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.photos[id]; !ok {
		return errors.New(errors.ErrCodeNotFound, "photo %s not found", id)
	}
	delete(m.photos, id)
	m.tags = slices.DeleteFunc(m.tags, func(t tag) bool { return t.PhotoID == id })
	return nil
}

func (m *Memory) CreateTags(ctx context.Context, photoID string, personIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.photos[photoID]; !ok {
		return errors.New(errors.ErrCodeNotFound, "photo %s not found", photoID)
	}
	for _, personID := range personIDs {
		if _, ok := m.persons[personID]; !ok {
			return errors.New(errors.ErrCodeNotFound, "person %s not found", personID)
		}
	}
	for _, personID := range personIDs {
		m.tags = append(m.tags, tag{PhotoID: photoID, PersonID: personID})
	}
	return nil
}

func (m *Memory) DeleteTagsForPerson(ctx context.Context, personID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tags = slices.DeleteFunc(m.tags, func(t tag) bool { return t.PersonID == personID })
	return nil
}

func (m *Memory) CountTagsForPerson(ctx context.Context, personID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, t := range m.tags {
		if t.PersonID == personID {
			count++
		}
	}
	return count, nil
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close(ctx context.Context) error { return nil }

func (m *Memory) personsForPhoto(photoID string) []string {
	var ids []string
	for _, t := range m.tags {
		if t.PhotoID == photoID {
			ids = append(ids, t.PersonID)
		}
	}
	return ids
}

// Ensure Memory implements family.Store.
var _ family.Store = (*Memory)(nil)
