package canestra

import (
	"fmt"
	"strconv"
)

const (
	maxPlantID   = 999999
	maxLeafID    = 99
	maxElementID = 999
)

// A Label identifies the organ a triangle belongs to in Canestra files. It
// is serialized as the optical species id followed by an 11 digit block:
// 6 digits for the plant, 2 for the leaf and 3 for the element, e.g.
// 1 000003 01 002.
//
// Optical id 0 denotes the soil. A zero leaf id marks opaque organs (stems).
type Label struct {
	OpticalID int
	PlantID   int
	LeafID    int
	ElementID int
}

// Returns true if the label refers to a soil triangle.
func (l Label) IsSoil() bool {
	return l.OpticalID == 0
}

// Returns true if the label refers to an opaque organ.
func (l Label) IsOpaque() bool {
	return l.LeafID == 0
}

// Encode the label.
func (l Label) String() string {
	return fmt.Sprintf("%d%06d%02d%03d", l.OpticalID, l.PlantID, l.LeafID, l.ElementID)
}

// Validate the label ranges.
func (l Label) Validate() error {
	switch {
	case l.OpticalID < 0:
		return fmt.Errorf("label: negative optical id %d", l.OpticalID)
	case l.PlantID < 0 || l.PlantID > maxPlantID:
		return fmt.Errorf("label: plant id %d out of range [0, %d]", l.PlantID, maxPlantID)
	case l.LeafID < 0 || l.LeafID > maxLeafID:
		return fmt.Errorf("label: leaf id %d out of range [0, %d]", l.LeafID, maxLeafID)
	case l.ElementID < 0 || l.ElementID > maxElementID:
		return fmt.Errorf("label: element id %d out of range [0, %d]", l.ElementID, maxElementID)
	}
	return nil
}

// Decode a label token.
func ParseLabel(token string) (Label, error) {
	if len(token) < 12 {
		return Label{}, fmt.Errorf("label: expected at least 12 digits; got %q", token)
	}
	for _, r := range token {
		if r < '0' || r > '9' {
			return Label{}, fmt.Errorf("label: unexpected character %q in %q", r, token)
		}
	}

	n := len(token)
	var l Label
	var err error
	if l.OpticalID, err = strconv.Atoi(token[:n-11]); err != nil {
		return Label{}, err
	}
	l.PlantID, _ = strconv.Atoi(token[n-11 : n-5])
	l.LeafID, _ = strconv.Atoi(token[n-5 : n-3])
	l.ElementID, _ = strconv.Atoi(token[n-3:])
	return l, nil
}
