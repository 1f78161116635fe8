package bridge

import (
	"slices"
	"sync"

	"github.com/arko-chat/geobridge/internal/permission"
)

// DesktopAPILevel is reported by hosts without a mobile OS underneath.
const DesktopAPILevel = 34

// Static is a platform whose grants are set in-process. Desktop hosts
// use it with every permission granted; tests use it to script grants.
type Static struct {
	mu       sync.Mutex
	grants   permission.Grants
	api      int
	requests [][]permission.Permission

	// OnRequest, if set, runs for each request and may change the grants.
	OnRequest func(s *Static, perms []permission.Permission) error
}

func NewStatic(api int, grants permission.Grants) *Static {
	return &Static{api: api, grants: grants}
}

// Desktop returns a platform with every location permission granted.
func Desktop() *Static {
	return NewStatic(DesktopAPILevel, permission.Grants{
		Fine:       permission.Granted,
		Coarse:     permission.Granted,
		Background: permission.Granted,
	})
}

func (s *Static) Grants() permission.Grants {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grants
}

func (s *Static) SetGrants(g permission.Grants) {
	s.mu.Lock()
	s.grants = g
	s.mu.Unlock()
}

func (s *Static) APILevel() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.api
}

func (s *Static) Request(perms []permission.Permission) error {
	s.mu.Lock()
	s.requests = append(s.requests, slices.Clone(perms))
	hook := s.OnRequest
	s.mu.Unlock()

	if hook != nil {
		return hook(s, perms)
	}
	return nil
}

// Requests returns every permission set asked for so far.
func (s *Static) Requests() [][]permission.Permission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.requests)
}
