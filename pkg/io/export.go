package io

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/kintreehq/kintree/pkg/family"
)

// Tree is the snapshot wire format: a full family graph plus photo
// metadata. Field order matches the API's tree payload so exported files
// diff cleanly against API responses.
type Tree struct {
	Persons      []family.Person `json:"persons"`
	Couples      []family.Couple `json:"couples"`
	Partnerships []family.Edge   `json:"partnerships"`
	Parentages   []family.Edge   `json:"parentages"`
	Photos       []family.Photo  `json:"photos,omitempty"`
}

// Snapshot collects the complete content of a store.
func Snapshot(ctx context.Context, st family.Store) (*Tree, error) {
	g, err := st.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	photos, err := st.ListPhotos(ctx)
	if err != nil {
		return nil, err
	}
	return &Tree{
		Persons:      g.Persons,
		Couples:      g.Couples,
		Partnerships: g.Partnerships,
		Parentages:   g.Parentages,
		Photos:       photos,
	}, nil
}

// WriteJSON encodes a snapshot as indented JSON and writes it to w.
// The output can be re-imported with [ReadJSON] for round-trip processing.
func WriteJSON(t *Tree, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a snapshot to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(t *Tree, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(t, f)
}
