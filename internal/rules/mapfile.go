package rules

import (
	"encoding/json"
	"fmt"
	"io"
)

// MapPlanet is one planet entry in a map file, in 1-based owner numbering.
type MapPlanet struct {
	Name      string  `json:"name" validate:"required"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Owner     *int    `json:"owner"`
	ShipCount int64   `json:"ship_count" validate:"min=0"`
}

// MapFile is the JSON document described in spec §6.
type MapFile struct {
	Planets []MapPlanet `json:"planets" validate:"required,min=1,dive"`
}

// LoadMapFile parses a map file document from r.
func LoadMapFile(r io.Reader) (*MapFile, error) {
	var m MapFile
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode map file: %w", err)
	}
	return &m, nil
}

// ConfigFromMapFile converts a MapFile into engine Config. Map owners are
// 1-based and used unchanged as PlayerIDs, which are 1-based too. Owners outside
// [1, numPlayers], and owners on a planet with zero starting ships, are
// treated as neutral, matching load_map in the reference implementation,
// which only attaches a fleet (and its owner) when ship_count > 0.
func ConfigFromMapFile(m *MapFile, numPlayers int, maxTurns int) Config {
	planets := make([]Planet, len(m.Planets))
	for i, mp := range m.Planets {
		var fleets []Fleet
		if mp.ShipCount > 0 && mp.Owner != nil && *mp.Owner >= 1 && *mp.Owner <= numPlayers {
			owner := PlayerID(*mp.Owner)
			fleets = []Fleet{{Owner: &owner, ShipCount: mp.ShipCount}}
		} else if mp.ShipCount > 0 {
			fleets = []Fleet{{Owner: nil, ShipCount: mp.ShipCount}}
		}
		planets[i] = Planet{
			ID:     i + 1,
			Name:   mp.Name,
			X:      mp.X,
			Y:      mp.Y,
			Fleets: fleets,
		}
	}
	return Config{Planets: planets, MaxTurns: maxTurns}
}

// ValidateOwnerCoverage checks that planets in m include an initial owner
// for every player number from 1 to numPlayers, per spec §6.
func ValidateOwnerCoverage(m *MapFile, numPlayers int) error {
	seen := make(map[int]bool, numPlayers)
	for _, p := range m.Planets {
		if p.Owner != nil {
			seen[*p.Owner] = true
		}
	}
	for n := 1; n <= numPlayers; n++ {
		if !seen[n] {
			return fmt.Errorf("map file has no starting planet for player %d", n)
		}
	}
	return nil
}
