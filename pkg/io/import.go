package io

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/kintreehq/kintree/pkg/family"
)

// ReadJSON decodes a snapshot from r and validates its referential
// integrity. It returns an error if:
//
//   - The JSON is malformed
//   - A person, couple, or photo has a missing or duplicate id
//   - An edge references an unknown person or couple
//   - A photo tag references an unknown person
//
// Errors are wrapped with context describing which record caused the
// problem. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Tree, error) {
	var t Tree
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	persons := make(map[string]bool, len(t.Persons))
	for _, p := range t.Persons {
		if p.ID == "" {
			return nil, fmt.Errorf("person %q: missing id", p.Name())
		}
		if persons[p.ID] {
			return nil, fmt.Errorf("person %s: duplicate id", p.ID)
		}
		persons[p.ID] = true
	}

	couples := make(map[string]bool, len(t.Couples))
	for _, c := range t.Couples {
		if c.ID == "" {
			return nil, fmt.Errorf("couple: missing id")
		}
		if couples[c.ID] {
			return nil, fmt.Errorf("couple %s: duplicate id", c.ID)
		}
		couples[c.ID] = true
	}

	check := func(edges []family.Edge, kind family.EdgeKind) error {
		for _, e := range edges {
			if !persons[e.PersonID] {
				return fmt.Errorf("edge %s->%s: unknown person", e.PersonID, e.CoupleID)
			}
			if !couples[e.CoupleID] {
				return fmt.Errorf("edge %s->%s: unknown couple", e.PersonID, e.CoupleID)
			}
			if e.Kind != "" && e.Kind != kind {
				return fmt.Errorf("edge %s->%s: kind %q in %s list", e.PersonID, e.CoupleID, e.Kind, kind)
			}
		}
		return nil
	}
	if err := check(t.Partnerships, family.Partnership); err != nil {
		return nil, err
	}
	if err := check(t.Parentages, family.Parentage); err != nil {
		return nil, err
	}

	photoIDs := make(map[string]bool, len(t.Photos))
	for _, ph := range t.Photos {
		if ph.ID == "" {
			return nil, fmt.Errorf("photo %q: missing id", ph.URL)
		}
		if photoIDs[ph.ID] {
			return nil, fmt.Errorf("photo %s: duplicate id", ph.ID)
		}
		photoIDs[ph.ID] = true
		for _, pid := range ph.Persons {
			if !persons[pid] {
				return nil, fmt.Errorf("photo %s: tag references unknown person %s", ph.ID, pid)
			}
		}
	}

	return &t, nil
}

// ImportJSON reads a snapshot file at path and returns the decoded tree.
// It returns the same validation errors as [ReadJSON].
func ImportJSON(path string) (*Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	t, err := ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Restore loads a validated snapshot into a store. The store should be
// empty; Restore does not overwrite or merge, and a duplicate id fails
// partway with the store holding everything created up to that point.
func Restore(ctx context.Context, st family.Store, t *Tree) error {
	for _, p := range t.Persons {
		if _, err := st.CreatePerson(ctx, p); err != nil {
			return fmt.Errorf("person %s: %w", p.ID, err)
		}
	}
	for _, c := range t.Couples {
		if _, err := st.CreateCouple(ctx, c); err != nil {
			return fmt.Errorf("couple %s: %w", c.ID, err)
		}
	}
	for _, e := range t.Partnerships {
		if err := st.CreateEdge(ctx, e.PersonID, e.CoupleID, family.Partnership); err != nil {
			return fmt.Errorf("partnership %s->%s: %w", e.PersonID, e.CoupleID, err)
		}
	}
	for _, e := range t.Parentages {
		if err := st.CreateEdge(ctx, e.PersonID, e.CoupleID, family.Parentage); err != nil {
			return fmt.Errorf("parentage %s->%s: %w", e.PersonID, e.CoupleID, err)
		}
	}
	for _, ph := range t.Photos {
		if _, err := st.CreatePhoto(ctx, ph); err != nil {
			return fmt.Errorf("photo %s: %w", ph.ID, err)
		}
		if len(ph.Persons) > 0 {
			if err := st.CreateTags(ctx, ph.ID, ph.Persons); err != nil {
				return fmt.Errorf("photo %s tags: %w", ph.ID, err)
			}
		}
	}
	return nil
}
