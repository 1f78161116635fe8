// Package permission reduces per-permission platform grants to the single
// location permission status reported to the application.
package permission

type Permission string

const (
	FineLocation       Permission = "android.permission.ACCESS_FINE_LOCATION"
	CoarseLocation     Permission = "android.permission.ACCESS_COARSE_LOCATION"
	BackgroundLocation Permission = "android.permission.ACCESS_BACKGROUND_LOCATION"
)

// Grant is the platform state of one permission. Prompt means the user
// has not been asked yet; PromptWithRationale means the user declined
// once and may be asked again.
type Grant uint8

const (
	Prompt Grant = iota
	PromptWithRationale
	Granted
	Denied
)

func (g Grant) String() string {
	switch g {
	case Granted:
		return "granted"
	case Denied:
		return "denied"
	case PromptWithRationale:
		return "prompt-with-rationale"
	}
	return "prompt"
}

func ParseGrant(s string) Grant {
	switch s {
	case "granted", "GRANTED":
		return Granted
	case "denied", "DENIED":
		return Denied
	case "prompt-with-rationale", "PROMPT_WITH_RATIONALE":
		return PromptWithRationale
	}
	return Prompt
}

type Status string

const (
	NotDetermined     Status = "NOT_DETERMINED"
	StatusDenied      Status = "DENIED"
	GrantedForeground Status = "GRANTED_FOREGROUND"
	GrantedBackground Status = "GRANTED_BACKGROUND"
)

type Grants struct {
	Fine       Grant
	Coarse     Grant
	Background Grant
}

// Capability describes what the running OS version supports.
type Capability struct {
	RuntimePermissions   bool
	BackgroundPermission bool
}

const (
	runtimePermissionsAPI   = 23
	backgroundPermissionAPI = 29
)

func CapabilityFor(apiLevel int) Capability {
	return Capability{
		RuntimePermissions:   apiLevel >= runtimePermissionsAPI,
		BackgroundPermission: apiLevel >= backgroundPermissionAPI,
	}
}

// Resolve derives the status. Any foreground grant wins over an
// ambiguous background state, and a denied or rationale-promptable
// foreground permission reports DENIED rather than NOT_DETERMINED.
func Resolve(g Grants, c Capability) Status {
	foreground := g.Fine == Granted || g.Coarse == Granted

	switch {
	case c.BackgroundPermission && foreground:
		if g.Background == Granted {
			return GrantedBackground
		}
		return GrantedForeground
	case foreground:
		return GrantedForeground
	case refused(g.Fine) || refused(g.Coarse):
		return StatusDenied
	}
	return NotDetermined
}

func refused(g Grant) bool {
	return g == Denied || g == PromptWithRationale
}

// RequestSet returns the permissions to ask for. On platforms without
// runtime requests it returns fine location alone and the request is a
// no-op.
func RequestSet(background bool, c Capability) []Permission {
	if !c.RuntimePermissions {
		return []Permission{FineLocation}
	}
	if background && c.BackgroundPermission {
		return []Permission{FineLocation, CoarseLocation, BackgroundLocation}
	}
	return []Permission{FineLocation, CoarseLocation}
}
