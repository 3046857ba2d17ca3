// Package match implements the top-level per-match driver: prompt all
// living players in parallel, apply their actions via the rules engine,
// advance one turn, log, repeat until finished.
package match

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iasoon/planetwars-matchrunner/internal/matchctx"
	"github.com/iasoon/planetwars-matchrunner/internal/rules"
)

// TurnTimeout is spec §4.8's fixed per-turn request deadline.
const TurnTimeout = 1000 * time.Millisecond

// BotSpec is a factory that asynchronously produces a PlayerHandle given a
// player id, the match's event bus, and a logger. It is the capability
// polymorphism point over the three bot kinds (spec §9): local subprocess,
// container, remote stream.
type BotSpec interface {
	Spawn(ctx context.Context, playerID rules.PlayerID, bus *matchctx.EventBus, logger zerolog.Logger) (matchctx.PlayerHandle, error)
}

// MatchConfig is the input to Run: a map path, turn budget, log path, and
// ordered player specs.
type MatchConfig struct {
	MapPath     string    `validate:"required"`
	MaxTurns    int       `validate:"required,min=1"`
	LogPath     string    `validate:"required"`
	PlayerSpecs []BotSpec `validate:"required,min=1,dive,required"`
	Logger      zerolog.Logger
}

// PlayerStatus tracks whether a player ever errored on a command or was
// terminated, across the whole match.
type PlayerStatus struct {
	HadCommandErrors bool
	Terminated       bool
}

// PlayerOutcome is the final per-player verdict reported in MatchOutcome.
type PlayerOutcome struct {
	HadErrors bool `json:"had_errors"`
	Crashed   bool `json:"crashed"`
}

// MatchOutcome is the result of a completed match.
type MatchOutcome struct {
	Winner         *rules.PlayerID `json:"winner"`
	PlayerOutcomes []PlayerOutcome `json:"player_outcomes"`
}
