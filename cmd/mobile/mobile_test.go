package mobile

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"
)

type grantedPlatform struct{}

func (grantedPlatform) PermissionState(string) string   { return "granted" }
func (grantedPlatform) APILevel() int                   { return 30 }
func (grantedPlatform) RequestPermissions(string) error { return nil }

type settlement struct {
	ok      bool
	payload string
}

type chanSettler chan settlement

func (c chanSettler) Settle(ok bool, payload string) { c <- settlement{ok, payload} }

type chanListener chan string

func (c chanListener) Notify(channel string, _ string) {
	select {
	case c <- channel:
	default:
	}
}

func settle(t *testing.T, command, args string) settlement {
	t.Helper()
	ch := make(chanSettler, 1)
	if err := Call(command, args, ch); err != nil {
		t.Fatalf("%s: %v", command, err)
	}
	select {
	case s := <-ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatalf("%s did not settle", command)
	}
	return settlement{}
}

func TestLifecycle(t *testing.T) {
	RegisterPlatform(grantedPlatform{})

	addr, err := Start(t.TempDir(), "prj_test_pk_0000")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(Stop)

	if _, err := Start(t.TempDir(), ""); err == nil {
		t.Error("second Start succeeded")
	}

	resp, err := http.Get(addr + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz = %d", resp.StatusCode)
	}

	if s := settle(t, "setUserId", `{"userId":"rider-7"}`); !s.ok {
		t.Fatalf("setUserId rejected: %s", s.payload)
	}
	s := settle(t, "getUserId", "")
	var out map[string]string
	if err := json.Unmarshal([]byte(s.payload), &out); err != nil {
		t.Fatal(err)
	}
	if !s.ok || out["userId"] != "rider-7" {
		t.Errorf("getUserId = %+v", s)
	}

	if s := settle(t, "geocode", `{"query":""}`); s.ok || !strings.Contains(s.payload, "ERROR_BAD_REQUEST") {
		t.Errorf("empty geocode = %+v", s)
	}

	events := make(chanListener, 8)
	if err := Listen(events); err != nil {
		t.Fatal(err)
	}
	if s := settle(t, "trackOnce", ""); !s.ok {
		t.Fatalf("trackOnce rejected: %s", s.payload)
	}
	select {
	case <-events:
	case <-time.After(2 * time.Second):
		t.Error("no notification reached the listener")
	}

	Stop()
	if err := Call("getUserId", "", make(chanSettler, 1)); err == nil {
		t.Error("Call after Stop succeeded")
	}
	if err := Listen(nil); err == nil {
		t.Error("Listen after Stop succeeded")
	}
}

func TestCallRejectsBadArgs(t *testing.T) {
	RegisterPlatform(grantedPlatform{})
	if _, err := Start(t.TempDir(), "prj_test_pk_0000"); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(Stop)

	if err := Call("setUserId", "{", make(chanSettler, 1)); err == nil {
		t.Error("malformed args accepted")
	}
}

func TestStopDuringCalls(t *testing.T) {
	RegisterPlatform(grantedPlatform{})
	if _, err := Start(t.TempDir(), "prj_test_pk_0000"); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(Stop)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				// Calls racing Stop either dispatch or report the bridge is down.
				_ = Call("getLocation", `{"desiredAccuracy":"high"}`, make(chanSettler, 1))
			}
		}()
	}
	time.Sleep(5 * time.Millisecond)
	Stop()
	wg.Wait()

	if err := Call("getUserId", "", make(chanSettler, 1)); err == nil {
		t.Error("Call after Stop succeeded")
	}
}
