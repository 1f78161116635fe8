// Package bridge connects the dispatcher to the host operating system's
// permission model.
package bridge

import (
	"fmt"
	"strings"

	"github.com/arko-chat/geobridge/internal/permission"
)

// NativePlatform is implemented by the native side (Swift/Kotlin).
// gomobile exposes this as an interface that native code can satisfy.
//
// Rules for gomobile compatibility:
//   - methods may only use primitive types, strings, []byte, or other
//     gomobile-bound types as parameters and return values
//   - no variadic parameters
//   - errors are returned as a second return value
type NativePlatform interface {
	// PermissionState returns "granted", "denied", "prompt" or
	// "prompt-with-rationale" for a platform permission name.
	PermissionState(name string) string

	// APILevel returns the OS API level (Android SDK_INT).
	APILevel() int

	// RequestPermissions shows the system prompt for a comma-separated
	// list of permission names. It returns once the prompt is shown.
	RequestPermissions(csv string) error
}

// Platform is the Go-side view of the host used by the dispatcher.
type Platform interface {
	Grants() permission.Grants
	APILevel() int
	Request(perms []permission.Permission) error
}

type native struct {
	n NativePlatform
}

// Adapt wraps a registered native platform.
func Adapt(n NativePlatform) Platform {
	return native{n: n}
}

func (p native) Grants() permission.Grants {
	return permission.Grants{
		Fine:       permission.ParseGrant(p.n.PermissionState(string(permission.FineLocation))),
		Coarse:     permission.ParseGrant(p.n.PermissionState(string(permission.CoarseLocation))),
		Background: permission.ParseGrant(p.n.PermissionState(string(permission.BackgroundLocation))),
	}
}

func (p native) APILevel() int { return p.n.APILevel() }

func (p native) Request(perms []permission.Permission) error {
	names := make([]string, len(perms))
	for i, perm := range perms {
		names[i] = string(perm)
	}
	if err := p.n.RequestPermissions(strings.Join(names, ",")); err != nil {
		return fmt.Errorf("bridge: request permissions: %w", err)
	}
	return nil
}
