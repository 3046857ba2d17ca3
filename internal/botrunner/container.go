package botrunner

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/registry"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/iasoon/planetwars-matchrunner/internal/domain/shared"
	"github.com/iasoon/planetwars-matchrunner/internal/matchctx"
	"github.com/iasoon/planetwars-matchrunner/internal/matchlog"
	"github.com/iasoon/planetwars-matchrunner/internal/rules"
)

// containerMemoryLimitBytes is the mandatory sandboxing memory+swap cap
// from spec §4.6.
const containerMemoryLimitBytes = 512 << 20

// PullRateLimiter is waited on before every image pull by container bot
// runners. Its rate is rate.Every(0), which is rate.Inf, so Wait never
// blocks and image pulls are not throttled.
var PullRateLimiter = rate.NewLimiter(rate.Every(0), 4)

// ContainerBotSpec spawns a sandboxed, network-disabled, memory-capped
// container per spec §4.6.
type ContainerBotSpec struct {
	Image       string
	Binds       []string
	Argv        []string
	WorkingDir  string
	Pull        bool
	Credentials *registry.AuthConfig
	Sink        *matchlog.Sink
}

// Spawn pulls (if configured), creates, attaches, and starts the
// container, then launches the runner goroutine that drives its I/O.
func (s ContainerBotSpec) Spawn(ctx context.Context, playerID rules.PlayerID, bus *matchctx.EventBus, logger zerolog.Logger) (matchctx.PlayerHandle, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("docker client: %w", err)
	}

	if s.Pull {
		if err := PullRateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
		var authStr string
		if s.Credentials != nil {
			buf, _ := json.Marshal(s.Credentials)
			authStr = base64.URLEncoding.EncodeToString(buf)
		}
		rc, err := cli.ImagePull(ctx, s.Image, image.PullOptions{RegistryAuth: authStr})
		if err != nil {
			return nil, fmt.Errorf("pull image %s: %w", s.Image, err)
		}
		_, _ = io.Copy(io.Discard, rc)
		_ = rc.Close()
	}

	created, err := cli.ContainerCreate(ctx, &container.Config{
		Image:        s.Image,
		Cmd:          s.Argv,
		WorkingDir:   s.WorkingDir,
		OpenStdin:    true,
		AttachStdin:  true,
		AttachStdout: true,
		AttachStderr: true,
		StdinOnce:    true,
	}, &container.HostConfig{
		NetworkMode: "none",
		Binds:       s.Binds,
		Resources: container.Resources{
			Memory:     containerMemoryLimitBytes,
			MemorySwap: containerMemoryLimitBytes,
		},
	}, nil, nil, "")
	if err != nil {
		return nil, fmt.Errorf("create container: %w", err)
	}

	attach, err := cli.ContainerAttach(ctx, created.ID, container.AttachOptions{
		Stream: true,
		Stdin:  true,
		Stdout: true,
		Stderr: true,
		Logs:   false,
	})
	if err != nil {
		return nil, fmt.Errorf("attach container: %w", err)
	}

	if err := cli.ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		attach.Close()
		return nil, fmt.Errorf("start container: %w", err)
	}

	h := &containerHandle{
		playerID:    playerID,
		bus:         bus,
		log:         logger.With().Int("player_id", int(playerID)).Str("container_id", created.ID).Logger(),
		sink:        s.Sink,
		cli:         cli,
		containerID: created.ID,
		conn:        attach,
		queue:       make(chan matchctx.RequestMessage, 16),
		done:        make(chan struct{}),
		responses:   make(chan []byte),
		readErrs:    make(chan error, 1),
		lifecycle:   shared.NewLifecycleStateMachine(shared.NewRealClock()),
	}
	_ = h.lifecycle.Start()
	go h.demux()
	go h.run()
	return h, nil
}

// containerHandle bridges the attached multiplexed stream to the
// PlayerHandle contract, emitting stderr lines to the match log as it goes
// and accumulating stdout until a full response line is seen.
type containerHandle struct {
	playerID    rules.PlayerID
	bus         *matchctx.EventBus
	log         zerolog.Logger
	sink        *matchlog.Sink
	cli         *client.Client
	containerID string
	conn        types.HijackedResponse
	queue       chan matchctx.RequestMessage
	done        chan struct{}

	responses chan []byte // one complete stdout line at a time
	readErrs  chan error  // non-nil once the stream ends or errors

	mu         sync.Mutex
	terminated bool
	shutOnce   sync.Once
	lifecycle  *shared.LifecycleStateMachine
}

// demux reads the multiplexed stdout/stderr stream, accumulating partial
// stdout lines across chunks (spec §9 "Stdout buffering for long
// responses") and splitting stderr on '\n' into StdErr log records (spec §9
// "Stderr buffering").
func (h *containerHandle) demux() {
	defer close(h.responses)

	stdoutR, stdoutW := io.Pipe()
	stderrR, stderrW := io.Pipe()

	go func() {
		_, err := stdcopy.StdCopy(stdoutW, stderrW, h.conn.Reader)
		stdoutW.CloseWithError(err)
		stderrW.CloseWithError(err)
	}()

	go func() {
		scanner := bufio.NewScanner(stderrR)
		scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				continue // empty stderr lines are not logged
			}
			h.sink.Send(matchlog.StdErr(h.playerID, line))
		}
	}()

	bufReader := bufio.NewReaderSize(stdoutR, 64*1024)
	for {
		line, err := bufReader.ReadBytes('\n')
		if len(line) > 0 {
			if line[len(line)-1] == '\n' {
				line = line[:len(line)-1]
			}
			h.responses <- line
		}
		if err != nil {
			h.readErrs <- err
			return
		}
	}
}

func (h *containerHandle) SendRequest(msg matchctx.RequestMessage) {
	h.mu.Lock()
	terminated := h.terminated
	h.mu.Unlock()
	if terminated {
		h.bus.Resolve(h.playerID, msg.RequestID, matchctx.Result{Err: &matchctx.RequestError{Kind: matchctx.BotTerminated}})
		return
	}
	h.queue <- msg
}

func (h *containerHandle) Done() <-chan struct{} { return h.done }

func (h *containerHandle) Shutdown() {
	h.shutOnce.Do(func() {
		ctx := context.Background()
		_ = h.cli.ContainerRemove(ctx, h.containerID, container.RemoveOptions{Force: true})
		h.conn.Close()
		close(h.queue)
		if h.lifecycle.IsRunning() {
			_ = h.lifecycle.Stop()
		}
	})
}

func (h *containerHandle) run() {
	defer close(h.done)

	for msg := range h.queue {
		if _, err := h.conn.Conn.Write(append(bytes.TrimRight(msg.Payload, "\n"), '\n')); err != nil {
			h.markTerminated(msg)
			continue
		}

		select {
		case line, ok := <-h.responses:
			if !ok {
				// Stream ended before a response was produced. Per spec
				// §9 open question, this resolves as Timeout (matching
				// the reference implementation's choice), not
				// BotTerminated.
				h.bus.Resolve(h.playerID, msg.RequestID, matchctx.Result{Err: &matchctx.RequestError{Kind: matchctx.Timeout}})
				h.markTerminated(msg)
				continue
			}
			h.bus.Resolve(h.playerID, msg.RequestID, matchctx.Result{Bytes: line})
		case err := <-h.readErrs:
			// A clean end of stream resolves as Timeout, the same as the
			// closed-responses branch above; only a read error is
			// BotTerminated.
			kind := matchctx.BotTerminated
			if err == io.EOF {
				kind = matchctx.Timeout
			}
			h.bus.Resolve(h.playerID, msg.RequestID, matchctx.Result{Err: &matchctx.RequestError{Kind: kind}})
			h.log.Warn().Err(err).Msg("container stream read failed")
			h.markTerminated(msg)
		}
	}
}

func (h *containerHandle) markTerminated(msg matchctx.RequestMessage) {
	h.mu.Lock()
	h.terminated = true
	h.mu.Unlock()
	if h.lifecycle.IsRunning() {
		_ = h.lifecycle.Fail(fmt.Errorf("container bot terminated mid-match"))
	}
	h.log.Warn().Msg("container bot terminated")
}
