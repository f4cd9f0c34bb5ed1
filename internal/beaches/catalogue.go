// Package beaches holds the fixed catalogue of scored locations.
package beaches

import (
	_ "embed"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"beachscore/internal/types"
)

//go:embed beaches.yaml
var defaultCatalogue []byte

type catalogueFile struct {
	Beaches []types.Beach `yaml:"beaches"`
}

// Catalogue is an immutable, ID-indexed set of beaches.
type Catalogue struct {
	ordered []types.Beach
	byID    map[string]types.Beach
}

// Default parses the embedded catalogue.
func Default() (*Catalogue, error) {
	return Parse(defaultCatalogue)
}

// Load reads a catalogue from r.
func Load(r io.Reader) (*Catalogue, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read beach catalogue: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML catalogue data. Beaches must have unique IDs and
// valid coordinates.
func Parse(data []byte) (*Catalogue, error) {
	var f catalogueFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse beach catalogue: %w", err)
	}

	c := &Catalogue{byID: make(map[string]types.Beach, len(f.Beaches))}
	for i, b := range f.Beaches {
		if b.ID == "" {
			return nil, fmt.Errorf("beach %d: missing id", i)
		}
		if _, dup := c.byID[b.ID]; dup {
			return nil, fmt.Errorf("beach %q: duplicate id", b.ID)
		}
		if err := types.ValidateCoordinates(b.Lat, b.Lon); err != nil {
			return nil, fmt.Errorf("beach %q: %w", b.ID, err)
		}
		c.byID[b.ID] = b
		c.ordered = append(c.ordered, b)
	}
	sort.SliceStable(c.ordered, func(i, j int) bool { return c.ordered[i].ID < c.ordered[j].ID })
	return c, nil
}

// List returns every beach ordered by ID.
func (c *Catalogue) List() []types.Beach {
	out := make([]types.Beach, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Get returns the beach with the given ID or a not_found_beach error.
func (c *Catalogue) Get(id string) (types.Beach, error) {
	b, ok := c.byID[id]
	if !ok {
		return types.Beach{}, types.NewAppErrorWithDetails(
			types.ErrCodeNotFoundBeach,
			"beach not found",
			nil,
			map[string]any{"beach_id": id},
		)
	}
	return b, nil
}

// Len reports the number of beaches.
func (c *Catalogue) Len() int {
	return len(c.ordered)
}
