package layout

import "github.com/kintreehq/kintree/pkg/family"

// Footprint dimensions in user units (pixels in SVG output).
const (
	PersonWidth      = 170.0
	personBaseHeight = 46.0 // name header plus the birth row
	personRowHeight  = 18.0 // each additional populated detail row
	UnitSize         = 26.0 // couples render as a small fixed square
)

// Footprint returns the box size for a person card. The width is fixed; the
// height grows with the number of populated detail rows, so a card resizes
// when fields are filled in. Both the initial layout and post-edit resizing
// go through this function.
func Footprint(p family.Person) (w, h float64) {
	h = personBaseHeight
	if p.Deceased() || p.DeathPlace != "" {
		h += personRowHeight
	}
	if p.Profession != "" {
		h += personRowHeight
	}
	return PersonWidth, h
}

// UnitFootprint returns the fixed box size for a couple marker.
func UnitFootprint() (w, h float64) { return UnitSize, UnitSize }
