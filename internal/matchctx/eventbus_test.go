package matchctx

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iasoon/planetwars-matchrunner/internal/rules"
)

func TestResolveFirstWins(t *testing.T) {
	bus := NewEventBus()
	ch := bus.register(rules.PlayerID(1), RequestID(1))

	bus.Resolve(rules.PlayerID(1), RequestID(1), Result{Bytes: []byte("first")})
	bus.Resolve(rules.PlayerID(1), RequestID(1), Result{Bytes: []byte("second")})

	res := <-ch
	assert.Equal(t, "first", string(res.Bytes))

	select {
	case <-ch:
		t.Fatal("expected only one resolution to be delivered")
	default:
	}
}

func TestResolveWithNoWaiterIsDropped(t *testing.T) {
	bus := NewEventBus()
	// No register() call: resolving an unknown (player, request) must not
	// panic or block.
	bus.Resolve(rules.PlayerID(1), RequestID(99), Result{Bytes: []byte("x")})
}

func TestConcurrentResolveIsRaceFree(t *testing.T) {
	bus := NewEventBus()
	ch := bus.register(rules.PlayerID(1), RequestID(1))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			bus.Resolve(rules.PlayerID(1), RequestID(1), Result{Bytes: []byte{byte(n)}})
		}(i)
	}
	wg.Wait()

	<-ch // exactly one resolution must have been delivered without panicking
}
