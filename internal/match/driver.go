package match

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/iasoon/planetwars-matchrunner/internal/matchctx"
	"github.com/iasoon/planetwars-matchrunner/internal/matchlog"
	"github.com/iasoon/planetwars-matchrunner/internal/metrics"
	"github.com/iasoon/planetwars-matchrunner/internal/rules"
)

var validate = validator.New()

// Run builds the match from config and drives it to completion, per spec
// §4.8. Infrastructure errors (map file missing, log file not writable, a
// BotSpec failing to spawn) are fatal to the match and returned before turn
// 0; once turn 0 starts, Run never returns an error — all in-match failures
// are captured in the returned MatchOutcome.
func Run(ctx context.Context, cfg MatchConfig) (MatchOutcome, error) {
	logger := cfg.Logger

	if err := validate.Struct(cfg); err != nil {
		return MatchOutcome{}, fmt.Errorf("invalid match config: %w", err)
	}

	mapFile, err := loadMap(cfg.MapPath)
	if err != nil {
		return MatchOutcome{}, fmt.Errorf("load map: %w", err)
	}
	numPlayers := len(cfg.PlayerSpecs)
	if err := rules.ValidateOwnerCoverage(mapFile, numPlayers); err != nil {
		return MatchOutcome{}, fmt.Errorf("invalid map: %w", err)
	}

	logFile, err := os.Create(cfg.LogPath)
	if err != nil {
		return MatchOutcome{}, fmt.Errorf("open log path: %w", err)
	}
	sink := matchlog.NewSink(logFile, logger)
	defer func() {
		sink.Close()
		_ = logFile.Close()
	}()

	bus := matchctx.NewEventBus()
	handles, err := spawnAll(ctx, cfg.PlayerSpecs, bus, logger)
	if err != nil {
		return MatchOutcome{}, fmt.Errorf("spawn players: %w", err)
	}

	mctx := matchctx.New(bus, sink, logger, handles)

	state := rules.Create(rules.ConfigFromMapFile(mapFile, numPlayers, cfg.MaxTurns), numPlayers)

	statuses := make(map[rules.PlayerID]*PlayerStatus, numPlayers)
	for i := 1; i <= numPlayers; i++ {
		statuses[rules.PlayerID(i)] = &PlayerStatus{}
	}

	for !rules.IsFinished(state) {
		turnStart := time.Now()
		mctx.Log(matchlog.GameState(rules.SerializeState(state)))

		living := rules.LivingPlayers(state)
		results := promptAll(ctx, mctx, state, living)

		for _, playerID := range living {
			applyResult(mctx, state, statuses[playerID], playerID, results[playerID])
		}

		rules.Step(state)
		metrics.TurnsTotal.WithLabelValues("ok").Inc()
		metrics.TurnDuration.WithLabelValues("all").Observe(time.Since(turnStart).Seconds())
	}
	metrics.TurnsTotal.WithLabelValues("finished").Inc()

	mctx.Log(matchlog.GameState(rules.SerializeState(state)))
	mctx.Shutdown(ctx)

	outcome := buildOutcome(state, statuses, numPlayers)
	if outcome.Winner != nil {
		metrics.MatchesTotal.WithLabelValues("decisive").Inc()
	} else {
		metrics.MatchesTotal.WithLabelValues("draw").Inc()
	}
	return outcome, nil
}

func loadMap(path string) (*rules.MapFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return rules.LoadMapFile(f)
}

func spawnAll(ctx context.Context, specs []BotSpec, bus *matchctx.EventBus, logger zerolog.Logger) (map[rules.PlayerID]matchctx.PlayerHandle, error) {
	handles := make(map[rules.PlayerID]matchctx.PlayerHandle, len(specs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i, spec := range specs {
		i, spec := i, spec
		playerID := rules.PlayerID(i + 1)
		g.Go(func() error {
			h, err := spec.Spawn(gctx, playerID, bus, logger)
			if err != nil {
				return fmt.Errorf("player %d: %w", playerID, err)
			}
			mu.Lock()
			handles[playerID] = h
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return handles, nil
}

// promptAll issues a rotated-state request to every living player in
// parallel and waits for all responses, unordered, per spec §4.8 step 2.
func promptAll(ctx context.Context, mctx *matchctx.MatchCtx, state *rules.PlanetWarsState, living []rules.PlayerID) map[rules.PlayerID]matchctx.Result {
	results := make(map[rules.PlayerID]matchctx.Result, len(living))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, playerID := range living {
		playerID := playerID
		offset := int(playerID) - 1
		snapshot := rules.SerializeRotated(state, offset)
		payload, _ := json.Marshal(snapshot)

		wg.Add(1)
		go func() {
			defer wg.Done()
			res := mctx.Request(ctx, playerID, payload, TurnTimeout)
			mu.Lock()
			results[playerID] = res
			mu.Unlock()
		}()
	}
	wg.Wait()
	return results
}

func applyResult(mctx *matchctx.MatchCtx, state *rules.PlanetWarsState, status *PlayerStatus, playerID rules.PlayerID, res matchctx.Result) {
	if res.Err != nil {
		switch res.Err.Kind {
		case matchctx.Timeout:
			status.HadCommandErrors = true
			metrics.BotTimeoutsTotal.WithLabelValues("unknown").Inc()
			mctx.Log(matchlog.TimeoutMsg(playerID))
		case matchctx.BotTerminated:
			status.Terminated = true
			status.HadCommandErrors = true
			metrics.BotCrashesTotal.WithLabelValues("unknown").Inc()
			mctx.Log(matchlog.TimeoutMsg(playerID))
		}
		return
	}

	action, err := rules.ParseAction(res.Bytes)
	if err != nil {
		status.HadCommandErrors = true
		mctx.Log(matchlog.BadCommand(playerID, res.Bytes, err.Error()))
		return
	}

	records := make([]matchlog.DispatchRecord, 0, len(action.Moves))
	for _, cmd := range action.Moves {
		err := rules.ExecuteCommand(state, playerID, cmd)
		rec := matchlog.DispatchRecord{Command: cmd}
		if err != nil {
			rec.Error = err.Error()
			status.HadCommandErrors = true
		}
		records = append(records, rec)
	}
	mctx.Log(matchlog.Dispatches(playerID, records))
}

func buildOutcome(state *rules.PlanetWarsState, statuses map[rules.PlayerID]*PlayerStatus, numPlayers int) MatchOutcome {
	var winner *rules.PlayerID
	aliveCount := 0
	for _, p := range state.Players {
		if p.Alive {
			aliveCount++
			id := p.ID
			winner = &id
		}
	}
	if aliveCount != 1 {
		winner = nil
	}

	outcomes := make([]PlayerOutcome, numPlayers)
	for i := 0; i < numPlayers; i++ {
		st := statuses[rules.PlayerID(i+1)]
		outcomes[i] = PlayerOutcome{HadErrors: st.HadCommandErrors, Crashed: st.Terminated}
	}

	return MatchOutcome{Winner: winner, PlayerOutcomes: outcomes}
}
