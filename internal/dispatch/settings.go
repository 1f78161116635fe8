package dispatch

import (
	"context"

	"github.com/arko-chat/geobridge/internal/call"
	"github.com/arko-chat/geobridge/internal/permission"
	"github.com/arko-chat/geobridge/internal/sdk"
	"github.com/arko-chat/geobridge/internal/value"
)

func (d *Dispatcher) initialize(_ context.Context, c *call.Call, a Args) error {
	key, ok := a.String("publishableKey")
	if !ok || key == "" {
		return required("publishableKey")
	}
	d.sdk.Initialize(key)
	return d.done(c)
}

func (d *Dispatcher) setLogLevel(_ context.Context, c *call.Call, a Args) error {
	s, ok := a.String("level")
	if !ok {
		return required("level")
	}
	level, err := sdk.LogLevels.Parse(s)
	if err != nil {
		return invalid("level", err)
	}
	d.sdk.SetLogLevel(level)
	return d.done(c)
}

func (d *Dispatcher) setUserID(_ context.Context, c *call.Call, a Args) error {
	userID, _ := a.String("userId")
	d.sdk.SetUserID(userID)
	return d.done(c)
}

func (d *Dispatcher) getUserID(_ context.Context, c *call.Call, _ Args) error {
	return d.resolve(c, single("userId", d.sdk.UserID()))
}

func (d *Dispatcher) setDescription(_ context.Context, c *call.Call, a Args) error {
	description, _ := a.String("description")
	d.sdk.SetDescription(description)
	return d.done(c)
}

func (d *Dispatcher) getDescription(_ context.Context, c *call.Call, _ Args) error {
	return d.resolve(c, single("description", d.sdk.Description()))
}

func (d *Dispatcher) setMetadata(_ context.Context, c *call.Call, a Args) error {
	metadata, ok := a.Native("metadata")
	if !ok {
		return required("metadata")
	}
	d.sdk.SetMetadata(metadata)
	return d.done(c)
}

func (d *Dispatcher) getMetadata(ctx context.Context, c *call.Call, _ Args) error {
	metadata, gaps := value.FromNativeLenient(d.sdk.Metadata())
	for _, gap := range gaps {
		d.logger.WarnContext(ctx, "payload translation gap", "call", c.Name, "id", c.ID, "err", gap)
	}
	return d.resolve(c, value.NewBuilder().Set("metadata", metadata).Value())
}

func (d *Dispatcher) setAnonymousTrackingEnabled(_ context.Context, c *call.Call, a Args) error {
	enabled, ok := a.Bool("enabled")
	if !ok {
		return required("enabled")
	}
	d.sdk.SetAnonymousTrackingEnabled(enabled)
	return d.done(c)
}

func (d *Dispatcher) getLocationPermissionsStatus(_ context.Context, c *call.Call, _ Args) error {
	status := permission.Resolve(d.platform.Grants(), permission.CapabilityFor(d.platform.APILevel()))
	return d.resolve(c, single("status", string(status)))
}

func (d *Dispatcher) requestLocationPermissions(ctx context.Context, c *call.Call, a Args) error {
	background, ok := a.Bool("background")
	if !ok {
		return required("background")
	}

	capability := permission.CapabilityFor(d.platform.APILevel())
	if !capability.RuntimePermissions {
		return d.done(c)
	}

	perms := permission.RequestSet(background, capability)
	d.logger.DebugContext(ctx, "requesting permissions", "permissions", perms)
	if err := d.platform.Request(perms); err != nil {
		return err
	}
	return d.done(c)
}

func (d *Dispatcher) acceptEvent(_ context.Context, c *call.Call, a Args) error {
	eventID, ok := a.String("eventId")
	if !ok {
		return required("eventId")
	}
	verifiedPlaceID, _ := a.String("verifiedPlaceId")
	d.sdk.AcceptEvent(eventID, verifiedPlaceID)
	return d.done(c)
}

func (d *Dispatcher) rejectEvent(_ context.Context, c *call.Call, a Args) error {
	eventID, ok := a.String("eventId")
	if !ok {
		return required("eventId")
	}
	d.sdk.RejectEvent(eventID)
	return d.done(c)
}

// single builds {key: s}, leaving the key out when s is empty.
func single(key, s string) value.Value {
	b := value.NewBuilder()
	if s != "" {
		b.Set(key, value.String(s))
	}
	return b.Value()
}
