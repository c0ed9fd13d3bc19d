package io

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kintreehq/kintree/pkg/family"
	"github.com/kintreehq/kintree/pkg/store"
)

func sampleTree() *Tree {
	return &Tree{
		Persons: []family.Person{
			{ID: "anna", FirstName: "Anna", LastName: "Huber", BirthDate: "1950-02-01", Gender: family.GenderFemale},
			{ID: "karl", FirstName: "Karl", LastName: "Huber", BirthDate: "1948-07-12", Gender: family.GenderMale},
			{ID: "lena", FirstName: "Lena", LastName: "Huber", BirthDate: "1975-11-30", Gender: family.GenderFemale},
		},
		Couples: []family.Couple{{ID: "c1"}},
		Partnerships: []family.Edge{
			{PersonID: "anna", CoupleID: "c1", Kind: family.Partnership},
			{PersonID: "karl", CoupleID: "c1", Kind: family.Partnership},
		},
		Parentages: []family.Edge{
			{PersonID: "lena", CoupleID: "c1", Kind: family.Parentage},
		},
		Photos: []family.Photo{
			{ID: "ph1", URL: "memory://ph1-wedding.jpg", Caption: "wedding", Persons: []string{"anna", "karl"}},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(sampleTree(), &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if len(got.Persons) != 3 || len(got.Couples) != 1 {
		t.Errorf("got %d persons and %d couples, want 3 and 1", len(got.Persons), len(got.Couples))
	}
	if len(got.Partnerships) != 2 || len(got.Parentages) != 1 {
		t.Errorf("got %d partnerships and %d parentages, want 2 and 1", len(got.Partnerships), len(got.Parentages))
	}
	if got.Persons[0].FirstName != "Anna" {
		t.Errorf("got first person %q, want Anna", got.Persons[0].FirstName)
	}
	if len(got.Photos) != 1 || len(got.Photos[0].Persons) != 2 {
		t.Errorf("photo tags not preserved: %+v", got.Photos)
	}
}

func TestReadJSONRejectsBrokenReferences(t *testing.T) {
	cases := []struct {
		name string
		json string
		want string
	}{
		{
			"unknown person in edge",
			`{"persons":[],"couples":[{"id":"c1"}],"partnerships":[{"person_id":"ghost","couple_id":"c1"}],"parentages":[]}`,
			"unknown person",
		},
		{
			"unknown couple in edge",
			`{"persons":[{"id":"p1"}],"couples":[],"partnerships":[{"person_id":"p1","couple_id":"ghost"}],"parentages":[]}`,
			"unknown couple",
		},
		{
			"duplicate person id",
			`{"persons":[{"id":"p1"},{"id":"p1"}],"couples":[],"partnerships":[],"parentages":[]}`,
			"duplicate id",
		},
		{
			"wrong kind in list",
			`{"persons":[{"id":"p1"}],"couples":[{"id":"c1"}],"partnerships":[{"person_id":"p1","couple_id":"c1","kind":"parentage"}],"parentages":[]}`,
			"kind",
		},
		{
			"tag references unknown person",
			`{"persons":[],"couples":[],"partnerships":[],"parentages":[],"photos":[{"id":"ph1","url":"u","persons":["ghost"]}]}`,
			"unknown person",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tc.json))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("got error %q, want it to mention %q", err, tc.want)
			}
		})
	}
}

func TestRestoreAndSnapshot(t *testing.T) {
	ctx := t.Context()
	st := store.NewMemory()

	if err := Restore(ctx, st, sampleTree()); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	got, err := Snapshot(ctx, st)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(got.Persons) != 3 || len(got.Couples) != 1 {
		t.Errorf("got %d persons and %d couples, want 3 and 1", len(got.Persons), len(got.Couples))
	}
	if len(got.Partnerships) != 2 || len(got.Parentages) != 1 {
		t.Errorf("got %d partnerships and %d parentages, want 2 and 1", len(got.Partnerships), len(got.Parentages))
	}
	if len(got.Photos) != 1 {
		t.Fatalf("got %d photos, want 1", len(got.Photos))
	}
	if len(got.Photos[0].Persons) != 2 {
		t.Errorf("got photo tags %v, want anna and karl", got.Photos[0].Persons)
	}
}
