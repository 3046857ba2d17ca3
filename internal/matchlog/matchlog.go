// Package matchlog owns the replay log: a single-writer sink that
// serializes heterogeneous log records to a newline-delimited JSON file,
// preserving submission order.
package matchlog

import (
	"bufio"
	"encoding/json"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"github.com/iasoon/planetwars-matchrunner/internal/rules"
)

// Kind tags the variant of a Message, per spec §4.9.
type Kind string

const (
	KindGameState  Kind = "GameState"
	KindDispatches Kind = "Dispatches"
	KindTimeout    Kind = "Timeout"
	KindBadCommand Kind = "BadCommand"
	KindStdErr     Kind = "StdErr"
)

// DispatchRecord pairs a submitted command with its optional validation
// error message, for logging purposes.
type DispatchRecord struct {
	Command rules.Command `json:"command"`
	Error   string        `json:"error,omitempty"`
}

// Message is one line of the replay log.
type Message struct {
	Type       Kind             `json:"type"`
	State      *rules.Snapshot  `json:"state,omitempty"`
	PlayerID   rules.PlayerID   `json:"player_id,omitempty"`
	Dispatches []DispatchRecord `json:"dispatches,omitempty"`
	RawBytes   string           `json:"raw_bytes,omitempty"`
	Error      string           `json:"error,omitempty"`
	Line       string           `json:"line,omitempty"`
}

// GameState builds a GameState record.
func GameState(snapshot rules.Snapshot) Message {
	return Message{Type: KindGameState, State: &snapshot}
}

// Dispatches builds a Dispatches record.
func Dispatches(player rules.PlayerID, records []DispatchRecord) Message {
	return Message{Type: KindDispatches, PlayerID: player, Dispatches: records}
}

// TimeoutMsg builds a Timeout record.
func TimeoutMsg(player rules.PlayerID) Message {
	return Message{Type: KindTimeout, PlayerID: player}
}

// BadCommand builds a BadCommand record.
func BadCommand(player rules.PlayerID, raw []byte, errMsg string) Message {
	return Message{Type: KindBadCommand, PlayerID: player, RawBytes: string(raw), Error: errMsg}
}

// StdErr builds a StdErr record carrying one line of captured stderr.
func StdErr(player rules.PlayerID, line string) Message {
	return Message{Type: KindStdErr, PlayerID: player, Line: line}
}

// Sink is a dedicated goroutine owning the log file. Messages are
// delivered through a 256-deep buffered channel, so Send only blocks a
// caller once that many records are queued ahead of the writer, while write
// order is preserved exactly as messages are submitted.
type Sink struct {
	log    zerolog.Logger
	queue  chan Message
	done   chan struct{}
	closed sync.Once
}

// NewSink starts the writer goroutine over w. Closing the returned Sink
// flushes buffered records to w; it does not close w, which stays owned by
// the caller.
func NewSink(w io.Writer, logger zerolog.Logger) *Sink {
	s := &Sink{
		log:   logger,
		queue: make(chan Message, 256),
		done:  make(chan struct{}),
	}
	go s.run(w)
	return s
}

func (s *Sink) run(w io.Writer) {
	defer close(s.done)
	bw := bufio.NewWriter(w)
	defer bw.Flush()

	enc := json.NewEncoder(bw)
	for msg := range s.queue {
		if err := enc.Encode(msg); err != nil {
			s.log.Error().Err(err).Msg("failed to write match log record")
		}
		bw.Flush()
	}
}

// Send enqueues a record for writing. Safe for concurrent use.
func (s *Sink) Send(msg Message) {
	s.queue <- msg
}

// Close signals the writer goroutine to drain and stop, and blocks until it
// has.
func (s *Sink) Close() {
	s.closed.Do(func() {
		close(s.queue)
	})
	<-s.done
}
