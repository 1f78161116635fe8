package bridge

import (
	"errors"
	"slices"
	"testing"

	"github.com/arko-chat/geobridge/internal/permission"
)

type mockNative struct {
	states    map[string]string
	api       int
	requested []string
	err       error
}

func (m *mockNative) PermissionState(name string) string { return m.states[name] }
func (m *mockNative) APILevel() int                      { return m.api }

func (m *mockNative) RequestPermissions(csv string) error {
	m.requested = append(m.requested, csv)
	return m.err
}

func TestAdaptGrants(t *testing.T) {
	n := &mockNative{
		api: 30,
		states: map[string]string{
			string(permission.FineLocation):       "granted",
			string(permission.CoarseLocation):     "denied",
			string(permission.BackgroundLocation): "prompt-with-rationale",
		},
	}
	p := Adapt(n)

	want := permission.Grants{
		Fine:       permission.Granted,
		Coarse:     permission.Denied,
		Background: permission.PromptWithRationale,
	}
	if got := p.Grants(); got != want {
		t.Errorf("Grants() = %+v, want %+v", got, want)
	}
	if p.APILevel() != 30 {
		t.Errorf("APILevel() = %d", p.APILevel())
	}
}

func TestAdaptRequestJoinsNames(t *testing.T) {
	n := &mockNative{}
	p := Adapt(n)

	if err := p.Request([]permission.Permission{permission.FineLocation, permission.CoarseLocation}); err != nil {
		t.Fatalf("Request: %v", err)
	}
	want := "android.permission.ACCESS_FINE_LOCATION,android.permission.ACCESS_COARSE_LOCATION"
	if len(n.requested) != 1 || n.requested[0] != want {
		t.Errorf("requested = %v", n.requested)
	}

	n.err = errors.New("activity gone")
	if err := p.Request([]permission.Permission{permission.FineLocation}); !errors.Is(err, n.err) {
		t.Errorf("err = %v, want wrapped native error", err)
	}
}

func TestStaticRecordsRequests(t *testing.T) {
	s := NewStatic(29, permission.Grants{})
	s.OnRequest = func(s *Static, perms []permission.Permission) error {
		if slices.Contains(perms, permission.FineLocation) {
			s.SetGrants(permission.Grants{Fine: permission.Granted})
		}
		return nil
	}

	_ = s.Request([]permission.Permission{permission.FineLocation, permission.CoarseLocation})

	if got := s.Requests(); len(got) != 1 || len(got[0]) != 2 {
		t.Errorf("requests = %v", got)
	}
	if s.Grants().Fine != permission.Granted {
		t.Error("OnRequest hook did not update grants")
	}
}

func TestRegistry(t *testing.T) {
	Register(nil)
	if _, err := Safe(); err == nil {
		t.Fatal("expected error before Register")
	}
	Register(&mockNative{api: 33})
	p, err := Safe()
	if err != nil {
		t.Fatalf("Safe: %v", err)
	}
	if p.APILevel() != 33 {
		t.Errorf("APILevel() = %d", p.APILevel())
	}
}
