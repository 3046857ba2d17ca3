package match

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iasoon/planetwars-matchrunner/internal/matchctx"
	"github.com/iasoon/planetwars-matchrunner/internal/rules"
)

// scriptedHandle answers every request with a fixed Action, or times out if
// Action is nil.
type scriptedHandle struct {
	bus      *matchctx.EventBus
	playerID rules.PlayerID
	action   *rules.Action
	done     chan struct{}
}

func (h *scriptedHandle) SendRequest(msg matchctx.RequestMessage) {
	if h.action == nil {
		return // never respond: exercises the timeout path
	}
	payload, _ := json.Marshal(h.action)
	h.bus.Resolve(h.playerID, msg.RequestID, matchctx.Result{Bytes: payload})
}

func (h *scriptedHandle) Done() <-chan struct{} { return h.done }
func (h *scriptedHandle) Shutdown()             { close(h.done) }

type scriptedBotSpec struct {
	action *rules.Action
}

func (s scriptedBotSpec) Spawn(ctx context.Context, playerID rules.PlayerID, bus *matchctx.EventBus, logger zerolog.Logger) (matchctx.PlayerHandle, error) {
	return &scriptedHandle{bus: bus, playerID: playerID, action: s.action, done: make(chan struct{})}, nil
}

func writeMapFile(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "map.json")
	doc := `{"planets":[
		{"name":"a","x":-1,"y":0,"owner":1,"ship_count":100},
		{"name":"b","x":0,"y":0,"owner":0,"ship_count":0},
		{"name":"c","x":1,"y":0,"owner":2,"ship_count":100}
	]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func TestRunScenarioB_TimeoutBotHasErrorsNotCrashed(t *testing.T) {
	dir := t.TempDir()
	mapPath := writeMapFile(t, dir)

	outcome, err := Run(context.Background(), MatchConfig{
		MapPath:  mapPath,
		MaxTurns: 5,
		LogPath:  filepath.Join(dir, "match.log"),
		PlayerSpecs: []BotSpec{
			scriptedBotSpec{action: nil}, // player 1 never responds
			scriptedBotSpec{action: &rules.Action{}},
		},
		Logger: zerolog.Nop(),
	})
	require.NoError(t, err)

	require.Len(t, outcome.PlayerOutcomes, 2)
	assert.True(t, outcome.PlayerOutcomes[0].HadErrors)
	assert.False(t, outcome.PlayerOutcomes[0].Crashed)
}

func TestRunScenarioC_CrashedBotMarkedCrashed(t *testing.T) {
	dir := t.TempDir()
	mapPath := writeMapFile(t, dir)

	outcome, err := Run(context.Background(), MatchConfig{
		MapPath:  mapPath,
		MaxTurns: 3,
		LogPath:  filepath.Join(dir, "match.log"),
		PlayerSpecs: []BotSpec{
			scriptedBotSpec{action: &rules.Action{}},
			crashedBotSpec{},
		},
		Logger: zerolog.Nop(),
	})
	require.NoError(t, err)
	assert.True(t, outcome.PlayerOutcomes[1].Crashed)
}

// crashedBotSpec produces a handle that immediately resolves every request
// as BotTerminated, simulating a bot process that exited on startup.
type crashedBotSpec struct{}

func (crashedBotSpec) Spawn(ctx context.Context, playerID rules.PlayerID, bus *matchctx.EventBus, logger zerolog.Logger) (matchctx.PlayerHandle, error) {
	return &terminatedHandle{bus: bus, playerID: playerID, done: make(chan struct{})}, nil
}

type terminatedHandle struct {
	bus      *matchctx.EventBus
	playerID rules.PlayerID
	done     chan struct{}
}

func (h *terminatedHandle) SendRequest(msg matchctx.RequestMessage) {
	h.bus.Resolve(h.playerID, msg.RequestID, matchctx.Result{Err: &matchctx.RequestError{Kind: matchctx.BotTerminated}})
}
func (h *terminatedHandle) Done() <-chan struct{} { return h.done }
func (h *terminatedHandle) Shutdown()             { close(h.done) }

func TestRunRespectsMaxTurnsWithinTimeout(t *testing.T) {
	dir := t.TempDir()
	mapPath := writeMapFile(t, dir)

	start := time.Now()
	_, err := Run(context.Background(), MatchConfig{
		MapPath:  mapPath,
		MaxTurns: 2,
		LogPath:  filepath.Join(dir, "match.log"),
		PlayerSpecs: []BotSpec{
			scriptedBotSpec{action: &rules.Action{}},
			scriptedBotSpec{action: &rules.Action{}},
		},
		Logger: zerolog.Nop(),
	})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 3*time.Second)
}
