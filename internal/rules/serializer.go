package rules

// Snapshot is the serializable public view of a PlanetWarsState sent to
// bots and written to the match log. Owner ids within it have already been
// rotated (or not) per the caller's needs.
type Snapshot struct {
	Planets     []PlanetSnapshot     `json:"planets"`
	Expeditions []ExpeditionSnapshot `json:"expeditions"`
}

// PlanetSnapshot is a planet as seen from a particular player's perspective.
// Owner is 1-based and nil for neutral.
type PlanetSnapshot struct {
	Name      string    `json:"name"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Owner     *PlayerID `json:"owner"`
	ShipCount int64     `json:"ship_count"`
}

// ExpeditionSnapshot is an in-flight expedition as seen from a particular
// player's perspective.
type ExpeditionSnapshot struct {
	ID             int      `json:"id"`
	ShipCount      int64    `json:"ship_count"`
	Origin         string   `json:"origin"`
	Destination    string   `json:"destination"`
	Owner          PlayerID `json:"owner"`
	TurnsRemaining int      `json:"turns_remaining"`
}

// SerializeState produces the canonical (unrotated) snapshot of a state.
func SerializeState(state *PlanetWarsState) Snapshot {
	return SerializeRotated(state, 0)
}

// SerializeRotated produces a snapshot from the perspective of player
// (offset+1 in 1-based terms): each owner id is replaced so that the
// prompted player always sees itself as player 1. Neutral owners are
// preserved. offset is 0-based (offset 0 means "no rotation needed because
// the prompted player is already player 1").
func SerializeRotated(state *PlanetWarsState, offset int) Snapshot {
	n := len(state.Players)
	rotate := func(id PlayerID) PlayerID {
		if n == 0 {
			return id
		}
		return PlayerID(mod(int(id)-1+n-offset, n) + 1)
	}

	nameByID := make(map[int]string, len(state.Planets))
	for _, p := range state.Planets {
		nameByID[p.ID] = p.Name
	}

	planets := make([]PlanetSnapshot, len(state.Planets))
	for i, p := range state.Planets {
		var owner *PlayerID
		if o := p.Owner(); o != nil {
			rotated := rotate(*o)
			owner = &rotated
		}
		planets[i] = PlanetSnapshot{
			Name:      p.Name,
			X:         p.X,
			Y:         p.Y,
			Owner:     owner,
			ShipCount: p.ShipCount(),
		}
	}

	expeditions := make([]ExpeditionSnapshot, len(state.Expeditions))
	for i, e := range state.Expeditions {
		expeditions[i] = ExpeditionSnapshot{
			ID:             e.ID,
			ShipCount:      e.ShipCount,
			Origin:         nameByID[e.Origin],
			Destination:    nameByID[e.Target],
			Owner:          rotate(e.Owner),
			TurnsRemaining: e.TurnsRemaining,
		}
	}

	return Snapshot{Planets: planets, Expeditions: expeditions}
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
