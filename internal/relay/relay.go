// Package relay forwards unsolicited SDK notifications to whichever
// application runtime is attached. Nothing is buffered: a notification
// that arrives while detached is dropped.
package relay

import (
	"log/slog"
	"sync/atomic"

	"github.com/arko-chat/geobridge/internal/sdk"
	"github.com/arko-chat/geobridge/internal/value"
)

const (
	ChannelEvents         = "events"
	ChannelLocation       = "location"
	ChannelClientLocation = "clientLocation"
	ChannelError          = "error"
	ChannelLog            = "log"
	ChannelToken          = "token"
)

// Channels lists every channel name in delivery order of the SDK hooks.
var Channels = []string{
	ChannelEvents,
	ChannelLocation,
	ChannelClientLocation,
	ChannelError,
	ChannelLog,
	ChannelToken,
}

// Notifier delivers one translated notification. It must not block.
type Notifier interface {
	Notify(channel string, data value.Value)
}

type NotifierFunc func(channel string, data value.Value)

func (f NotifierFunc) Notify(channel string, data value.Value) { f(channel, data) }

type handle struct {
	n Notifier
}

// Relay implements sdk.Receiver. It does not own the notifier; Detach
// releases it.
type Relay struct {
	target  atomic.Pointer[handle]
	logger  *slog.Logger
	dropped atomic.Uint64
}

var _ sdk.Receiver = (*Relay)(nil)

func New(logger *slog.Logger) *Relay {
	return &Relay{logger: logger}
}

// Attach makes n the delivery target, replacing any previous one.
func (r *Relay) Attach(n Notifier) {
	r.target.Store(&handle{n: n})
}

func (r *Relay) Detach() {
	r.target.Store(nil)
}

func (r *Relay) Attached() bool {
	return r.target.Load() != nil
}

// Dropped counts notifications that arrived while detached.
func (r *Relay) Dropped() uint64 {
	return r.dropped.Load()
}

func (r *Relay) deliver(channel string, build func(*value.Builder) []error) {
	h := r.target.Load()
	if h == nil {
		r.dropped.Add(1)
		return
	}

	b := value.NewBuilder()
	for _, gap := range build(b) {
		r.logger.Warn("notification translation gap", "channel", channel, "err", gap)
	}
	h.n.Notify(channel, b.Value())
}

func (r *Relay) OnEventsReceived(events []sdk.Record, user sdk.Record) {
	r.deliver(ChannelEvents, func(b *value.Builder) []error {
		arr, gaps := value.ObjectArray(events)
		b.Set("events", arr)
		return append(gaps, set(b, "user", user)...)
	})
}

func (r *Relay) OnLocationUpdated(location sdk.Location, user sdk.Record) {
	r.deliver(ChannelLocation, func(b *value.Builder) []error {
		return append(set(b, "location", location), set(b, "user", user)...)
	})
}

func (r *Relay) OnClientLocationUpdated(location sdk.Location, stopped bool, source sdk.LocationSource) {
	r.deliver(ChannelClientLocation, func(b *value.Builder) []error {
		b.Set("stopped", value.Bool(stopped))
		b.Set("source", value.String(string(source)))
		return set(b, "location", location)
	})
}

func (r *Relay) OnError(status sdk.Status) {
	r.deliver(ChannelError, func(b *value.Builder) []error {
		b.Set("status", value.String(status.String()))
		return nil
	})
}

func (r *Relay) OnLog(message string) {
	r.deliver(ChannelLog, func(b *value.Builder) []error {
		b.Set("message", value.String(message))
		return nil
	})
}

func (r *Relay) OnTokenUpdated(token sdk.Record) {
	r.deliver(ChannelToken, func(b *value.Builder) []error {
		return set(b, "token", token)
	})
}

func set(b *value.Builder, key string, native any) []error {
	v, gaps := value.FromNativeLenient(native)
	b.Set(key, v)
	return gaps
}
