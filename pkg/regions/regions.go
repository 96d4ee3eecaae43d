// Package regions holds the state/district catalog used by the location
// selector and for matching reverse-geocoded region hints.
package regions

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

//go:embed regions.json
var defaultCatalog []byte

// State is one state or union territory with its districts.
type State struct {
	Name      string   `json:"name"`
	Districts []string `json:"districts"`
}

// Catalog is an immutable, case-insensitive lookup over states and districts.
type Catalog struct {
	states  []State
	byState map[string]*State
	// district (lowercased) -> owning states; a few district names repeat across states
	byDistrict map[string][]*State
}

// Match is the outcome of resolving free-form region hints against the catalog.
type Match struct {
	State    string
	District string
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load returns the catalog at path, or the embedded one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read regions file: %w", err)
	}
	return Parse(data)
}

// Parse builds a catalog from its JSON representation.
func Parse(data []byte) (*Catalog, error) {
	var doc struct {
		States []State `json:"states"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode regions: %w", err)
	}
	if len(doc.States) == 0 {
		return nil, fmt.Errorf("regions catalog is empty")
	}

	c := &Catalog{
		states:     doc.States,
		byState:    make(map[string]*State, len(doc.States)),
		byDistrict: make(map[string][]*State),
	}
	sort.Slice(c.states, func(i, j int) bool { return c.states[i].Name < c.states[j].Name })
	for i := range c.states {
		s := &c.states[i]
		sort.Strings(s.Districts)
		c.byState[normalize(s.Name)] = s
		for _, d := range s.Districts {
			key := normalize(d)
			c.byDistrict[key] = append(c.byDistrict[key], s)
		}
	}
	return c, nil
}

// States returns state names in alphabetical order.
func (c *Catalog) States() []string {
	names := make([]string, len(c.states))
	for i, s := range c.states {
		names[i] = s.Name
	}
	return names
}

// Districts returns the districts of a state. The second result is false for
// an unknown state.
func (c *Catalog) Districts(state string) ([]string, bool) {
	s, ok := c.byState[normalize(state)]
	if !ok {
		return nil, false
	}
	out := make([]string, len(s.Districts))
	copy(out, s.Districts)
	return out, true
}

// Canonical returns the catalog spelling of a state/district pair. Unknown
// names are returned trimmed but otherwise untouched.
func (c *Catalog) Canonical(state, district string) (string, string) {
	state = strings.TrimSpace(state)
	district = strings.TrimSpace(district)
	s, ok := c.byState[normalize(state)]
	if !ok {
		return state, district
	}
	for _, d := range s.Districts {
		if normalize(d) == normalize(district) {
			return s.Name, d
		}
	}
	return s.Name, district
}

// MatchHints resolves reverse-geocoding hints to a catalog entry. Hints are
// tried in order; the first one naming a known district wins, preferring a
// district inside the hinted state. A state-only match yields an empty
// District. ok is false when nothing matched.
func (c *Catalog) MatchHints(state string, hints ...string) (Match, bool) {
	hintedState := c.byState[normalize(state)]

	for _, h := range hints {
		owners := c.byDistrict[normalize(stripSuffix(h))]
		if len(owners) == 0 {
			continue
		}
		owner := owners[0]
		for _, o := range owners {
			if o == hintedState {
				owner = o
				break
			}
		}
		for _, d := range owner.Districts {
			if normalize(d) == normalize(stripSuffix(h)) {
				return Match{State: owner.Name, District: d}, true
			}
		}
	}

	if hintedState != nil {
		return Match{State: hintedState.Name}, true
	}
	return Match{}, false
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Geocoders commonly append "District" or "Division" to county names.
func stripSuffix(s string) string {
	trimmed := strings.TrimSpace(s)
	lower := strings.ToLower(trimmed)
	for _, suffix := range []string{" district", " division", " tehsil"} {
		if strings.HasSuffix(lower, suffix) {
			return trimmed[:len(trimmed)-len(suffix)]
		}
	}
	return trimmed
}
