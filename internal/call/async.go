package call

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/arko-chat/geobridge/internal/sdk"
	"github.com/arko-chat/geobridge/internal/value"
)

// Payload collects the output keys of one SDK callback. Required keys
// that were absent are remembered so a strict settlement can reject.
type Payload struct {
	status  sdk.Status
	fields  *value.Builder
	missing []string
	gaps    []error
}

func NewPayload(status sdk.Status) *Payload {
	p := &Payload{status: status, fields: value.NewBuilder()}
	p.fields.Set("status", value.String(status.String()))
	return p
}

// Require sets key to the translation of native; a nil or untranslatable
// native marks the key missing.
func (p *Payload) Require(key string, native any) *Payload {
	v := p.translate(native)
	if v.IsNull() {
		p.missing = append(p.missing, key)
		return p
	}
	p.fields.Set(key, v)
	return p
}

// Optional sets key only when native is present.
func (p *Payload) Optional(key string, native any) *Payload {
	p.fields.Set(key, p.translate(native))
	return p
}

// Objects sets key to an array of SDK objects translated element-wise.
func Objects[T value.Nativer](p *Payload, key string, items []T, required bool) *Payload {
	if items == nil {
		if required {
			p.missing = append(p.missing, key)
		}
		return p
	}
	v, gaps := value.ObjectArray(items)
	p.gaps = append(p.gaps, gaps...)
	if v.IsNull() {
		if required {
			p.missing = append(p.missing, key)
		}
		return p
	}
	p.fields.Set(key, v)
	return p
}

func (p *Payload) translate(native any) value.Value {
	if native == nil {
		return value.Null()
	}
	v, gaps := value.FromNativeLenient(native)
	p.gaps = append(p.gaps, gaps...)
	return v
}

func (p *Payload) Status() sdk.Status { return p.status }
func (p *Payload) Missing() []string  { return p.missing }
func (p *Payload) Gaps() []error      { return p.gaps }
func (p *Payload) Value() value.Value { return p.fields.Value() }

// Mode selects how a payload settles a call.
type Mode uint8

const (
	// Strict resolves only on SUCCESS with every required key present,
	// and otherwise rejects with the status string.
	Strict Mode = iota
	// Lenient always resolves with the status and whatever keys exist.
	Lenient
)

func Settle(c *Call, p *Payload, mode Mode) error {
	if mode == Strict && (!p.status.OK() || len(p.missing) > 0) {
		return c.Reject(p.status.String())
	}
	return c.Resolve(p.Value())
}

// Await returns the callback to hand to the SDK. Its first invocation
// reduces the result to a payload and settles c; any later invocation is
// logged and ignored.
func Await[T any](c *Call, logger *slog.Logger, mode Mode, reduce func(T) *Payload) func(T) {
	var fired atomic.Int32
	return func(result T) {
		if n := fired.Add(1); n > 1 {
			logger.Error("sdk callback invoked more than once",
				"call", c.Name,
				"id", c.ID,
				"invocations", n,
			)
			return
		}

		p := reduce(result)
		for _, gap := range p.gaps {
			logger.Warn("payload translation gap",
				"call", c.Name,
				"id", c.ID,
				"err", gap,
			)
		}
		if err := Settle(c, p, mode); err != nil {
			if errors.Is(err, ErrAlreadySettled) {
				logger.Error("call settled twice", "call", c.Name, "id", c.ID)
				return
			}
			logger.Error("settle failed", "call", c.Name, "id", c.ID, "err", err)
		}
	}
}
