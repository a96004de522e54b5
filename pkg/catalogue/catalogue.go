// Package catalogue holds the fixed, ordered set of reference locations a
// quest can recognize. A catalogue is loaded once at startup and treated as
// immutable; the position of an entry is its stable identifier for the
// lifetime of that loaded version, so concurrent readers need no locking.
package catalogue

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/questhunt/location-matcher/pkg/types"
)

// Catalogue is an ordered, read-only list of reference locations.
type Catalogue struct {
	locations []types.Location
}

// New creates a catalogue from the given locations after validating them.
func New(locations []types.Location) (*Catalogue, error) {
	c := &Catalogue{locations: locations}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads a catalogue from a YAML file.
//
// The file is a list of entries with name, description and optional images:
//
//	- name: Deer Statue
//	  description: A prominent, bright orange statue of a stag ...
//	  images:
//	    - images/deer-statue/1.jpg
func Load(path string) (*Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalogue file: %w", err)
	}

	var locations []types.Location
	if err := yaml.Unmarshal(data, &locations); err != nil {
		return nil, fmt.Errorf("failed to parse catalogue file: %w", err)
	}

	return New(locations)
}

// All returns the ordered locations. The returned slice must not be modified.
func (c *Catalogue) All() []types.Location {
	return c.locations
}

// Size returns the number of locations in the catalogue.
func (c *Catalogue) Size() int {
	return len(c.locations)
}

// Get returns the location at index i.
func (c *Catalogue) Get(i int) (types.Location, error) {
	if i < 0 || i >= len(c.locations) {
		return types.Location{}, fmt.Errorf("location index %d out of range [0,%d)", i, len(c.locations))
	}
	return c.locations[i], nil
}

// ValidIndex reports whether i is types.NoMatch or a valid index into the
// catalogue. Any other value is a protocol violation, not a "no match".
func (c *Catalogue) ValidIndex(i int) bool {
	return i == types.NoMatch || (i >= 0 && i < len(c.locations))
}

func (c *Catalogue) validate() error {
	if len(c.locations) == 0 {
		return fmt.Errorf("catalogue must contain at least one location")
	}
	for i, loc := range c.locations {
		if loc.Name == "" {
			return fmt.Errorf("location %d has an empty name", i)
		}
		if loc.Description == "" {
			return fmt.Errorf("location %q (index %d) has an empty description", loc.Name, i)
		}
	}
	return nil
}
