// Package call holds one request/response unit between the application
// runtime and the SDK, and the bridge that turns single-shot SDK
// callbacks into exactly one settlement.
package call

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/arko-chat/geobridge/internal/value"
)

var ErrAlreadySettled = errors.New("call: already settled")

type Outcome struct {
	Payload  value.Value
	Reason   string
	Rejected bool
}

// Sink observes the settlement of a call. It is invoked once, on the
// goroutine that settled the call.
type Sink interface {
	OnSettle(c *Call, o Outcome)
}

type SinkFunc func(c *Call, o Outcome)

func (f SinkFunc) OnSettle(c *Call, o Outcome) { f(c, o) }

type Call struct {
	ID   string
	Name string
	Args value.Value

	settled atomic.Bool
	done    chan struct{}
	outcome Outcome

	mu    sync.Mutex
	sinks []Sink
}

func New(name string, args value.Value) *Call {
	return NewWithID(uuid.NewString(), name, args)
}

func NewWithID(id, name string, args value.Value) *Call {
	if args.Kind() != value.ObjectKind {
		args = value.Object(nil)
	}
	return &Call{
		ID:   id,
		Name: name,
		Args: args,
		done: make(chan struct{}),
	}
}

// Observe registers s. If the call already settled, s runs immediately.
func (c *Call) Observe(s Sink) {
	c.mu.Lock()
	if !c.Settled() {
		c.sinks = append(c.sinks, s)
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()
	s.OnSettle(c, c.outcome)
}

func (c *Call) Resolve(payload value.Value) error {
	return c.settle(Outcome{Payload: payload})
}

func (c *Call) Reject(reason string) error {
	return c.settle(Outcome{Reason: reason, Rejected: true})
}

func (c *Call) settle(o Outcome) error {
	if !c.settled.CompareAndSwap(false, true) {
		return ErrAlreadySettled
	}

	c.mu.Lock()
	c.outcome = o
	close(c.done)
	sinks := c.sinks
	c.sinks = nil
	c.mu.Unlock()

	for _, s := range sinks {
		s.OnSettle(c, o)
	}
	return nil
}

func (c *Call) Settled() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *Call) Done() <-chan struct{} { return c.done }

func (c *Call) Outcome() (Outcome, bool) {
	if !c.Settled() {
		return Outcome{}, false
	}
	return c.outcome, true
}

// Wait blocks until the call settles or ctx ends. Giving up on the wait
// does not settle the call.
func (c *Call) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-c.done:
		return c.outcome, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}
