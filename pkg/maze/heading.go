// Package maze models a maze as an undirected graph of intersections joined
// by corridors, each corridor labeled with the heading needed to cross it.
package maze

import (
	"encoding/json"
	"fmt"
)

// Heading is the direction the vehicle takes to traverse an edge.
type Heading int

const (
	Forward Heading = iota
	Backward
	Left
	Right
)

// AllHeadings returns every heading in declaration order.
func AllHeadings() []Heading {
	return []Heading{Forward, Backward, Left, Right}
}

var headingNames = [...]string{"Forward", "Backward", "Left", "Right"}

func (h Heading) String() string {
	if !h.Valid() {
		return fmt.Sprintf("Heading(%d)", int(h))
	}
	return headingNames[h]
}

// Valid reports whether h is one of the four known headings.
func (h Heading) Valid() bool {
	return h >= Forward && h <= Right
}

// Turning reports whether h rotates the vehicle in place.
func (h Heading) Turning() bool {
	return h == Left || h == Right
}

// ParseHeading parses the string form produced by Heading.String.
func ParseHeading(s string) (Heading, error) {
	for i, name := range headingNames {
		if name == s {
			return Heading(i), nil
		}
	}
	return 0, fmt.Errorf("unknown heading %q", s)
}

func (h Heading) MarshalJSON() ([]byte, error) {
	if !h.Valid() {
		return nil, fmt.Errorf("marshal heading: invalid value %d", int(h))
	}
	return json.Marshal(h.String())
}

func (h *Heading) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("heading must be a string: %w", err)
	}
	parsed, err := ParseHeading(s)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
