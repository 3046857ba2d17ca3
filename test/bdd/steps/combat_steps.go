package steps

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cucumber/godog"
	"github.com/cucumber/messages/go/v21"

	"github.com/iasoon/planetwars-matchrunner/internal/rules"
)

// CombatContext holds state for the basic-combat scenarios, exercising the
// rules engine directly without a match driver or bot processes.
type CombatContext struct {
	state      *rules.PlanetWarsState
	numPlayers int
}

func InitializeCombatScenario(ctx *godog.ScenarioContext) {
	cc := &CombatContext{}

	ctx.Step(`^a map with planets:$`, cc.aMapWithPlanets)
	ctx.Step(`^player (\d+) sends a fleet of (\d+) ships from "([^"]*)" to "([^"]*)"$`, cc.playerSendsAFleet)
	ctx.Step(`^the expedition arrives$`, cc.theExpeditionArrives)
	ctx.Step(`^both expeditions arrive on the same turn$`, cc.theExpeditionArrives)
	ctx.Step(`^planet "([^"]*)" should be owned by player (\d+)$`, cc.planetShouldBeOwnedByPlayer)
	ctx.Step(`^planet "([^"]*)" should be owned by nobody$`, cc.planetShouldBeOwnedByNobody)
	ctx.Step(`^planet "([^"]*)" should have (\d+) ships$`, cc.planetShouldHaveShips)

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		cc.state = nil
		cc.numPlayers = 0
		return ctx, nil
	})
}

func (cc *CombatContext) aMapWithPlanets(table *godog.Table) error {
	header := table.Rows[0]
	mapFile := &rules.MapFile{}
	maxOwner := 0
	for _, row := range table.Rows[1:] {
		name := getCellValue(header, row, "name")
		x, _ := strconv.ParseFloat(getCellValue(header, row, "x"), 64)
		y, _ := strconv.ParseFloat(getCellValue(header, row, "y"), 64)
		ownerNum, _ := strconv.Atoi(getCellValue(header, row, "owner"))
		ships, _ := strconv.ParseInt(getCellValue(header, row, "ship_count"), 10, 64)

		var owner *int
		if ownerNum > 0 {
			owner = &ownerNum
			if ownerNum > maxOwner {
				maxOwner = ownerNum
			}
		}
		mapFile.Planets = append(mapFile.Planets, rules.MapPlanet{
			Name: name, X: x, Y: y, Owner: owner, ShipCount: ships,
		})
	}

	cc.numPlayers = maxOwner
	cfg := rules.ConfigFromMapFile(mapFile, cc.numPlayers, 500)
	cc.state = rules.Create(cfg, cc.numPlayers)
	return nil
}

func (cc *CombatContext) playerSendsAFleet(playerNum, shipCount int, origin, dest string) error {
	return rules.ExecuteCommand(cc.state, rules.PlayerID(playerNum), rules.Command{
		Origin: origin, Destination: dest, ShipCount: int64(shipCount),
	})
}

func (cc *CombatContext) theExpeditionArrives() error {
	for !allExpeditionsArrived(cc.state) {
		rules.Step(cc.state)
	}
	return nil
}

func allExpeditionsArrived(state *rules.PlanetWarsState) bool {
	return len(state.Expeditions) == 0
}

// getCellValue looks up a cell by column name rather than position, so
// reordering a feature table's columns doesn't silently misparse rows.
func getCellValue(header, row *messages.PickleTableRow, columnName string) string {
	for i, cell := range header.Cells {
		if cell.Value == columnName && i < len(row.Cells) {
			return row.Cells[i].Value
		}
	}
	return ""
}

func (cc *CombatContext) findPlanet(name string) (*rules.Planet, error) {
	for i := range cc.state.Planets {
		if cc.state.Planets[i].Name == name {
			return &cc.state.Planets[i], nil
		}
	}
	return nil, fmt.Errorf("no such planet: %s", name)
}

func (cc *CombatContext) planetShouldBeOwnedByPlayer(name string, playerNum int) error {
	p, err := cc.findPlanet(name)
	if err != nil {
		return err
	}
	owner := p.Owner()
	if owner == nil || int(*owner) != playerNum {
		return fmt.Errorf("expected planet %s to be owned by player %d, got %v", name, playerNum, owner)
	}
	return nil
}

func (cc *CombatContext) planetShouldBeOwnedByNobody(name string) error {
	p, err := cc.findPlanet(name)
	if err != nil {
		return err
	}
	if p.Owner() != nil {
		return fmt.Errorf("expected planet %s to be neutral, got owner %v", name, *p.Owner())
	}
	return nil
}

func (cc *CombatContext) planetShouldHaveShips(name string, ships int64) error {
	p, err := cc.findPlanet(name)
	if err != nil {
		return err
	}
	if p.ShipCount() != ships {
		return fmt.Errorf("expected planet %s to have %d ships, got %d", name, ships, p.ShipCount())
	}
	return nil
}
