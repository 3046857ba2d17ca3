package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func planet(id int, name string, x, y float64, fleets []Fleet) Planet {
	return Planet{ID: id, Name: name, X: x, Y: y, Fleets: fleets}
}

func neutralFleet(ships int64) []Fleet {
	if ships == 0 {
		return nil
	}
	return []Fleet{{Owner: nil, ShipCount: ships}}
}

func ownerFleet(id PlayerID, ships int64) []Fleet {
	return []Fleet{{Owner: &id, ShipCount: ships}}
}

// scenarioA builds spec §8 Scenario A: three collinear planets.
func scenarioA() *PlanetWarsState {
	cfg := Config{
		Planets: []Planet{
			planet(1, "a", -1, 0, ownerFleet(1, 100)),
			planet(2, "b", 0, 0, neutralFleet(0)),
			planet(3, "c", 1, 0, ownerFleet(2, 100)),
		},
		MaxTurns: 10,
	}
	return Create(cfg, 2)
}

func TestScenarioABasicCombat(t *testing.T) {
	state := scenarioA()

	err := ExecuteCommand(state, 1, Command{Origin: "a", Destination: "b", ShipCount: 50})
	require.NoError(t, err)

	Step(state)

	b := planetByID(state, 2)
	require.NotNil(t, b.Owner())
	assert.Equal(t, PlayerID(1), *b.Owner())
	assert.Equal(t, int64(50), b.ShipCount())
	assert.Equal(t, 1, state.TurnNum)
}

func TestScenarioDMutualAnnihilation(t *testing.T) {
	cfg := Config{
		Planets: []Planet{
			planet(1, "a", -1, 0, ownerFleet(1, 100)),
			planet(2, "b", 0, 0, neutralFleet(0)),
			planet(3, "c", 1, 0, ownerFleet(2, 100)),
		},
		MaxTurns: 10,
	}
	state := Create(cfg, 2)

	require.NoError(t, ExecuteCommand(state, 1, Command{Origin: "a", Destination: "b", ShipCount: 10}))
	require.NoError(t, ExecuteCommand(state, 2, Command{Origin: "c", Destination: "b", ShipCount: 10}))

	Step(state)

	b := planetByID(state, 2)
	assert.Nil(t, b.Owner())
	assert.Equal(t, int64(0), b.ShipCount())
}

func TestCombatDefenderSurvives(t *testing.T) {
	defender := PlayerID(1)
	attacker := PlayerID(2)
	p := &Planet{ID: 1, Name: "x", Fleets: []Fleet{
		{Owner: &defender, ShipCount: 100},
		{Owner: &attacker, ShipCount: 40},
	}}
	resolveCombat(p)
	require.Len(t, p.Fleets, 1)
	assert.Equal(t, defender, *p.Fleets[0].Owner)
	assert.Equal(t, int64(60), p.Fleets[0].ShipCount)
}

func TestCombatAttackerPrevails(t *testing.T) {
	defender := PlayerID(1)
	attacker := PlayerID(2)
	p := &Planet{ID: 1, Name: "x", Fleets: []Fleet{
		{Owner: &defender, ShipCount: 30},
		{Owner: &attacker, ShipCount: 90},
	}}
	resolveCombat(p)
	require.Len(t, p.Fleets, 1)
	assert.Equal(t, attacker, *p.Fleets[0].Owner)
	assert.Equal(t, int64(60), p.Fleets[0].ShipCount)
}

func TestCombatDefenderSurvivesMultipleAttackers(t *testing.T) {
	p1, p2, p3 := PlayerID(1), PlayerID(2), PlayerID(3)
	p := &Planet{ID: 1, Name: "x", Fleets: []Fleet{
		{Owner: &p1, ShipCount: 10},
		{Owner: &p2, ShipCount: 30},
		{Owner: &p3, ShipCount: 50},
	}}
	resolveCombat(p)
	// defender=50(p3), S=10+30=40, D>S: defender survives with 50-40=10.
	require.Len(t, p.Fleets, 1)
	assert.Equal(t, p3, *p.Fleets[0].Owner)
	assert.Equal(t, int64(10), p.Fleets[0].ShipCount)
}

func TestCombatThreeWayReducesPairwise(t *testing.T) {
	p1, p2, p3 := PlayerID(1), PlayerID(2), PlayerID(3)
	p := &Planet{ID: 1, Name: "x", Fleets: []Fleet{
		{Owner: &p1, ShipCount: 10},
		{Owner: &p2, ShipCount: 20},
		{Owner: &p3, ShipCount: 25},
	}}
	resolveCombat(p)
	// defender=25(p3), S=10+20=30, D<=S: falls through to the pairwise
	// reduction. smallest=10(p1) vs next=20(p2): 20-10=10 survives as p2.
	// then smallest=10(p2) vs next=25(p3): 25-10=15 survives as p3.
	require.Len(t, p.Fleets, 1)
	assert.Equal(t, p3, *p.Fleets[0].Owner)
	assert.Equal(t, int64(15), p.Fleets[0].ShipCount)
}

func TestRotationRoundTrip(t *testing.T) {
	state := scenarioA()
	for _, offset := range []int{0, 1} {
		rotated := SerializeRotated(state, offset)
		back := SerializeRotated(state, 0)
		// Re-rotating offset's output by (N - offset) should match the
		// unrotated (offset 0) snapshot's owner numbering, per spec §8.3.
		n := len(state.Players)
		unrotate := func(id PlayerID) PlayerID {
			return PlayerID(mod(int(id)-1+n-(n-offset), n) + 1)
		}
		for i, ps := range rotated.Planets {
			if ps.Owner == nil {
				assert.Nil(t, back.Planets[i].Owner)
				continue
			}
			got := unrotate(*ps.Owner)
			require.NotNil(t, back.Planets[i].Owner)
			assert.Equal(t, *back.Planets[i].Owner, got)
		}
	}
}

func TestCommandValidation(t *testing.T) {
	state := scenarioA()

	err := ExecuteCommand(state, 1, Command{Origin: "a", Destination: "b", ShipCount: 0})
	var cerr *CommandError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, ZeroShipMove, cerr.Kind)

	err = ExecuteCommand(state, 1, Command{Origin: "missing", Destination: "b", ShipCount: 1})
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, OriginDoesNotExist, cerr.Kind)

	err = ExecuteCommand(state, 2, Command{Origin: "a", Destination: "b", ShipCount: 1})
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, OriginNotOwned, cerr.Kind)

	err = ExecuteCommand(state, 1, Command{Origin: "a", Destination: "b", ShipCount: 1000})
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, NotEnoughShips, cerr.Kind)
}

func TestLivenessNeverResurrects(t *testing.T) {
	state := scenarioA()
	for i := range state.Players {
		if state.Players[i].ID == 2 {
			state.Players[i].Alive = false
		}
	}
	Step(state)
	for _, p := range state.Players {
		if p.ID == 2 {
			assert.False(t, p.Alive)
		}
	}
}

func TestIsFinishedByMaxTurns(t *testing.T) {
	state := scenarioA()
	state.TurnNum = state.MaxTurns
	assert.True(t, IsFinished(state))
}

func TestIsFinishedBySoleSurvivor(t *testing.T) {
	state := scenarioA()
	for i := range state.Players {
		if state.Players[i].ID == 2 {
			state.Players[i].Alive = false
		}
	}
	assert.True(t, IsFinished(state))
}

func TestAllTimeoutTurnIsPureStep(t *testing.T) {
	state := scenarioA()
	before := planetByID(state, 1).ShipCount()
	Step(state)
	after := planetByID(state, 1).ShipCount()
	assert.Equal(t, before+1, after) // only repopulation changed it
}
