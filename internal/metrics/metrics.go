// Package metrics exposes prometheus counters and histograms for the
// match-runner, scoped under the "matchrunner" namespace.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "matchrunner"

var (
	// TurnsTotal is labeled by outcome: "ok" counts every turn executed by
	// the rules engine, "finished" counts once per match when its turn loop
	// ends.
	TurnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "turns_total",
		Help:      "Total number of turns executed across all matches.",
	}, []string{"outcome"})

	// TurnDuration observes wall-clock time spent per turn, including the
	// prompt/response round trip to every living player.
	TurnDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "turn_duration_seconds",
		Help:      "Time spent executing a single match turn, in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"bot_kind"})

	// BotTimeoutsTotal counts requests a bot failed to answer within the
	// turn deadline, labeled by bot kind.
	BotTimeoutsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bot_timeouts_total",
		Help:      "Total number of per-turn requests that timed out.",
	}, []string{"bot_kind"})

	// BotCrashesTotal counts bot processes/connections that terminated
	// mid-match, labeled by bot kind.
	BotCrashesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bot_crashes_total",
		Help:      "Total number of bots that terminated unexpectedly mid-match.",
	}, []string{"bot_kind"})

	// MatchesTotal counts completed matches, labeled by whether a winner
	// was determined.
	MatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "matches_total",
		Help:      "Total number of matches completed.",
	}, []string{"result"})
)

// Handler returns the HTTP handler to mount on the metrics listen address.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve starts a blocking HTTP server exposing the metrics handler. Callers
// typically run this in its own goroutine.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	return http.ListenAndServe(addr, mux)
}
