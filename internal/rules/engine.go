package rules

import (
	"math"
	"sort"
)

// Config seeds a fresh PlanetWarsState: planets in starting configuration
// plus the number of turns the match runs for.
type Config struct {
	Planets  []Planet
	MaxTurns int
}

// Create builds a fresh PlanetWarsState for numPlayers from config.
func Create(config Config, numPlayers int) *PlanetWarsState {
	players := make([]Player, numPlayers)
	for i := range players {
		players[i] = Player{ID: PlayerID(i + 1), Alive: true}
	}
	planets := make([]Planet, len(config.Planets))
	copy(planets, config.Planets)

	state := &PlanetWarsState{
		Players:       players,
		Planets:       planets,
		Expeditions:   nil,
		ExpeditionNum: 0,
		TurnNum:       0,
		MaxTurns:      config.MaxTurns,
	}
	updateLiveness(state)
	return state
}

// IsFinished reports whether the match has reached its end: turn_num has
// reached max_turns, or at most one player remains alive.
func IsFinished(state *PlanetWarsState) bool {
	if state.TurnNum >= state.MaxTurns {
		return true
	}
	alive := 0
	for _, p := range state.Players {
		if p.Alive {
			alive++
		}
	}
	return alive <= 1
}

func findPlanetByName(state *PlanetWarsState, name string) (*Planet, int) {
	for i := range state.Planets {
		if state.Planets[i].Name == name {
			return &state.Planets[i], i
		}
	}
	return nil, -1
}

// ExecuteCommand validates a player-submitted Command against the current
// state and, on success, subtracts the ships from the origin fleet and
// dispatches a new expedition. Errors are non-fatal.
func ExecuteCommand(state *PlanetWarsState, playerID PlayerID, cmd Command) error {
	if cmd.ShipCount == 0 {
		return newCommandError(ZeroShipMove)
	}

	origin, _ := findPlanetByName(state, cmd.Origin)
	if origin == nil {
		return newCommandError(OriginDoesNotExist)
	}
	dest, _ := findPlanetByName(state, cmd.Destination)
	if dest == nil {
		return newCommandError(DestinationDoesNotExist)
	}

	owner := origin.Owner()
	if owner == nil || *owner != playerID {
		return newCommandError(OriginNotOwned)
	}
	if origin.ShipCount() < cmd.ShipCount {
		return newCommandError(NotEnoughShips)
	}

	origin.Fleets[0].ShipCount -= cmd.ShipCount
	if origin.Fleets[0].ShipCount == 0 {
		origin.Fleets = origin.Fleets[:0]
	}

	ApplyDispatch(state, Dispatch{
		Origin:    origin.ID,
		Target:    dest.ID,
		Owner:     playerID,
		ShipCount: cmd.ShipCount,
	})
	return nil
}

// ApplyDispatch allocates a fresh expedition id and appends a new in-flight
// expedition, with turns_remaining set to the ceiling of the Euclidean
// distance between origin and target.
func ApplyDispatch(state *PlanetWarsState, d Dispatch) {
	originPlanet := planetByID(state, d.Origin)
	targetPlanet := planetByID(state, d.Target)

	dx := originPlanet.X - targetPlanet.X
	dy := originPlanet.Y - targetPlanet.Y
	dist := math.Sqrt(dx*dx + dy*dy)
	turns := int(math.Ceil(dist))
	if turns <= 0 {
		turns = 1
	}

	state.ExpeditionNum++
	state.Expeditions = append(state.Expeditions, Expedition{
		ID:             state.ExpeditionNum,
		ShipCount:      d.ShipCount,
		Origin:         d.Origin,
		Target:         d.Target,
		Owner:          d.Owner,
		TurnsRemaining: turns,
	})
}

func planetByID(state *PlanetWarsState, id int) *Planet {
	for i := range state.Planets {
		if state.Planets[i].ID == id {
			return &state.Planets[i]
		}
	}
	return nil
}

// Step advances the state by one turn: repopulate, advance expeditions,
// resolve arrivals, resolve combat, update liveness, increment turn_num.
func Step(state *PlanetWarsState) {
	repopulate(state)
	advanceExpeditions(state)
	resolveArrivals(state)
	for i := range state.Planets {
		resolveCombat(&state.Planets[i])
	}
	updateLiveness(state)
	state.TurnNum++
}

func repopulate(state *PlanetWarsState) {
	for i := range state.Planets {
		p := &state.Planets[i]
		if p.Owner() != nil {
			p.Fleets[0].ShipCount++
		}
	}
}

func advanceExpeditions(state *PlanetWarsState) {
	for i := range state.Expeditions {
		state.Expeditions[i].TurnsRemaining--
	}
}

func resolveArrivals(state *PlanetWarsState) {
	remaining := state.Expeditions[:0:0]
	for _, exp := range state.Expeditions {
		if exp.TurnsRemaining > 0 {
			remaining = append(remaining, exp)
			continue
		}
		target := planetByID(state, exp.Target)
		owner := exp.Owner
		target.Fleets = append(target.Fleets, Fleet{Owner: &owner, ShipCount: exp.ShipCount})
	}
	state.Expeditions = remaining
}

// resolveCombat applies spec §4.1 step 4 to a single planet: the defender
// (the largest fleet) survives outright with D-S ships when its count D
// exceeds the sum S of all attacker fleets; otherwise the iterative
// pairwise reduction (the smallest fleet against the next-smallest) decides
// the outcome.
func resolveCombat(p *Planet) {
	if len(p.Fleets) <= 1 {
		return
	}

	fleets := make([]Fleet, len(p.Fleets))
	copy(fleets, p.Fleets)

	sort.SliceStable(fleets, func(i, j int) bool {
		return fleets[i].ShipCount > fleets[j].ShipCount
	})
	defender := fleets[0]
	var attackerSum int64
	for _, f := range fleets[1:] {
		attackerSum += f.ShipCount
	}
	if defender.ShipCount > attackerSum {
		defender.ShipCount -= attackerSum
		p.Fleets = []Fleet{defender}
		return
	}

	for len(fleets) > 1 {
		sort.SliceStable(fleets, func(i, j int) bool {
			return fleets[i].ShipCount < fleets[j].ShipCount
		})
		smallest := fleets[0]
		nextSmallest := fleets[1]

		nextSmallest.ShipCount -= smallest.ShipCount
		rest := fleets[2:]
		if nextSmallest.ShipCount == 0 {
			fleets = rest
			continue
		}
		fleets = append([]Fleet{nextSmallest}, rest...)
	}

	p.Fleets = fleets
}

func updateLiveness(state *PlanetWarsState) {
	alive := make(map[PlayerID]bool, len(state.Players))
	for _, p := range state.Planets {
		if o := p.Owner(); o != nil {
			alive[*o] = true
		}
	}
	for _, e := range state.Expeditions {
		alive[e.Owner] = true
	}

	for i := range state.Players {
		if !state.Players[i].Alive {
			continue // dead players never resurrect
		}
		if !alive[state.Players[i].ID] {
			state.Players[i].Alive = false
		}
	}
}

// LivingPlayers returns the ids of all currently-alive players, in id order.
func LivingPlayers(state *PlanetWarsState) []PlayerID {
	var living []PlayerID
	for _, p := range state.Players {
		if p.Alive {
			living = append(living, p.ID)
		}
	}
	return living
}
