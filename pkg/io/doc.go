// Package io provides JSON import and export for family tree snapshots.
//
// # Overview
//
// A snapshot is the complete content of a family store: persons, couples,
// the edges wiring them together, and photo metadata with its tags. The
// format is designed for:
//
//   - Backups of trees held in the in-memory store
//   - Moving a tree between store backends (memory to MongoDB and back)
//   - Seeding a development store with fixture data
//   - Round-trip preservation: export, import, and re-export identically
//
// # JSON Format
//
// The format mirrors the API's tree snapshot, plus photos:
//
//	{
//	  "persons": [{"id": "p1", "first_name": "Anna", ...}],
//	  "couples": [{"id": "c1"}],
//	  "partnerships": [{"person_id": "p1", "couple_id": "c1", "kind": "partnership"}],
//	  "parentages": [{"person_id": "p2", "couple_id": "c1", "kind": "parentage"}],
//	  "photos": [{"id": "ph1", "url": "...", "persons": ["p1"]}]
//	}
//
// Blob content is not part of a snapshot; photo entries carry only metadata
// and the URL of the stored object.
//
// # Import
//
// Use [ImportJSON] to read a snapshot from a file path, or [ReadJSON] to
// read from any io.Reader. Both validate referential integrity: duplicate
// ids, edges naming unknown persons or couples, and tags naming unknown
// persons are rejected before anything touches a store. [Restore] then
// loads a validated snapshot into a store.
//
// # Export
//
// Use [ExportJSON] to write a snapshot to a file, or [WriteJSON] to write
// to any io.Writer. [Snapshot] collects the content of a store.
package io
