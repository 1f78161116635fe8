package call

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/arko-chat/geobridge/internal/sdk"
	"github.com/arko-chat/geobridge/internal/value"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestSettleOnce(t *testing.T) {
	c := New("getUserId", value.Null())

	if err := c.Resolve(value.String("first")); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if err := c.Reject("second"); !errors.Is(err, ErrAlreadySettled) {
		t.Errorf("second settle err = %v, want ErrAlreadySettled", err)
	}

	o, ok := c.Outcome()
	if !ok || o.Rejected {
		t.Fatalf("outcome = %+v, %v", o, ok)
	}
	if s, _ := o.Payload.AsString(); s != "first" {
		t.Errorf("payload = %v", o.Payload)
	}
}

func TestConcurrentSettlementHasOneWinner(t *testing.T) {
	c := New("trackOnce", value.Null())

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if c.Reject("ERROR_NETWORK") == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("wins = %d, want 1", wins)
	}
}

func TestObserveBeforeAndAfter(t *testing.T) {
	c := New("geocode", value.Null())

	var got []Outcome
	c.Observe(SinkFunc(func(_ *Call, o Outcome) { got = append(got, o) }))
	_ = c.Reject("ERROR_NOT_FOUND")
	c.Observe(SinkFunc(func(_ *Call, o Outcome) { got = append(got, o) }))

	if len(got) != 2 {
		t.Fatalf("observed %d settlements, want 2", len(got))
	}
	for _, o := range got {
		if !o.Rejected || o.Reason != "ERROR_NOT_FOUND" {
			t.Errorf("outcome = %+v", o)
		}
	}
}

func TestWaitHonorsContextWithoutSettling(t *testing.T) {
	c := New("getContext", value.Null())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := c.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait err = %v", err)
	}
	if c.Settled() {
		t.Error("giving up on Wait must not settle the call")
	}
}

func TestArgsDefaultToEmptyObject(t *testing.T) {
	c := New("stopTracking", value.Null())
	if c.Args.Kind() != value.ObjectKind {
		t.Errorf("args kind = %s", c.Args.Kind())
	}
}

type track struct {
	status sdk.Status
	loc    *sdk.Location
	user   sdk.Record
	events []sdk.Record
}

func reduceTrack(r track) *Payload {
	p := NewPayload(r.status).Require("location", r.loc).Require("user", r.user)
	return Objects(p, "events", r.events, true)
}

func TestAwaitStrictResolves(t *testing.T) {
	c := New("trackOnce", value.Null())
	cb := Await(c, discard, Strict, reduceTrack)

	if c.Settled() {
		t.Fatal("settled before the callback fired")
	}

	cb(track{
		status: sdk.StatusSuccess,
		loc:    &sdk.Location{Latitude: 40.7, Longitude: -73.9, Accuracy: 10},
		user:   sdk.Record{"_id": "u1", "userId": nil},
		events: []sdk.Record{{"_id": "e1", "type": "user.entered_geofence"}},
	})

	o, ok := c.Outcome()
	if !ok || o.Rejected {
		t.Fatalf("outcome = %+v", o)
	}
	status, _ := o.Payload.Get("status")
	if s, _ := status.AsString(); s != "SUCCESS" {
		t.Errorf("status = %v", status)
	}
	user, _ := o.Payload.Get("user")
	if user.Has("userId") {
		t.Error("null userId should be dropped")
	}
	events, _ := o.Payload.Get("events")
	if events.Len() != 1 {
		t.Errorf("events = %v", events)
	}
}

func TestAwaitStrictRejectsOnMissingField(t *testing.T) {
	c := New("trackOnce", value.Null())
	cb := Await(c, discard, Strict, reduceTrack)

	cb(track{status: sdk.StatusSuccess, loc: &sdk.Location{}, user: nil, events: []sdk.Record{}})

	o, _ := c.Outcome()
	if !o.Rejected || o.Reason != "SUCCESS" {
		t.Errorf("outcome = %+v, want rejection with status string", o)
	}
}

func TestAwaitStrictRejectsOnStatus(t *testing.T) {
	c := New("trackOnce", value.Null())
	cb := Await(c, discard, Strict, reduceTrack)

	cb(track{status: sdk.StatusErrorPermissions})

	o, _ := c.Outcome()
	if !o.Rejected || o.Reason != "ERROR_PERMISSIONS" {
		t.Errorf("outcome = %+v", o)
	}
}

func TestAwaitLenientResolvesWithStatus(t *testing.T) {
	c := New("completeTrip", value.Null())
	cb := Await(c, discard, Lenient, func(r track) *Payload {
		return NewPayload(r.status).Optional("trip", r.user)
	})

	cb(track{status: sdk.StatusErrorNotFound})

	o, _ := c.Outcome()
	if o.Rejected {
		t.Fatalf("lenient settlement rejected: %+v", o)
	}
	if o.Payload.Has("trip") {
		t.Error("absent trip should not be present")
	}
}

func TestAwaitIgnoresSecondInvocation(t *testing.T) {
	c := New("trackOnce", value.Null())
	cb := Await(c, discard, Strict, reduceTrack)

	cb(track{status: sdk.StatusErrorNetwork})
	cb(track{status: sdk.StatusSuccess, loc: &sdk.Location{}, user: sdk.Record{}, events: []sdk.Record{}})

	o, _ := c.Outcome()
	if !o.Rejected || o.Reason != "ERROR_NETWORK" {
		t.Errorf("outcome = %+v, want first invocation to win", o)
	}
}
