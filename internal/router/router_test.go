package router

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/arko-chat/geobridge/internal/bridge"
	"github.com/arko-chat/geobridge/internal/dispatch"
	"github.com/arko-chat/geobridge/internal/handlers"
	"github.com/arko-chat/geobridge/internal/sdk"
	"github.com/arko-chat/geobridge/internal/sdk/sdktest"
	"github.com/arko-chat/geobridge/internal/ws"
)

func newServer(t *testing.T, timeout time.Duration) (*httptest.Server, *sdktest.Fake) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fake := sdktest.New()
	disp := dispatch.New(fake, bridge.Desktop(), logger)
	h := handlers.New(disp, ws.NewHub(logger), logger, timeout)

	srv := httptest.NewServer(New(h, Options{Quiet: true}))
	t.Cleanup(srv.Close)
	return srv, fake
}

func post(t *testing.T, srv *httptest.Server, command, body string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/api/"+command, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post %s: %v", command, err)
	}
	defer resp.Body.Close()

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode %s: %v", command, err)
	}
	return resp.StatusCode, out
}

func TestCallResolves(t *testing.T) {
	srv, fake := newServer(t, 0)

	code, body := post(t, srv, "setUserId", `{"userId":"courier-7"}`)
	if code != http.StatusOK {
		t.Fatalf("status = %d, body = %v", code, body)
	}
	if got := fake.Arg("SetUserID"); got != "courier-7" {
		t.Errorf("user = %v", got)
	}

	code, body = post(t, srv, "getUserId", "")
	data, _ := body["data"].(map[string]any)
	if code != http.StatusOK || data["userId"] != "courier-7" {
		t.Errorf("getUserId: %d %v", code, body)
	}
}

func TestCallRejects(t *testing.T) {
	srv, _ := newServer(t, 0)

	code, body := post(t, srv, "getDistance", `{"destination":{"latitude":1,"longitude":2},"units":"metric"}`)
	if code != http.StatusUnprocessableEntity || body["error"] != "modes is required" {
		t.Errorf("got %d %v", code, body)
	}

	code, body = post(t, srv, "fly", `{}`)
	if code != http.StatusUnprocessableEntity || body["error"] != "fly is not implemented" {
		t.Errorf("got %d %v", code, body)
	}
}

func TestCallBadBody(t *testing.T) {
	srv, _ := newServer(t, 0)

	if code, _ := post(t, srv, "setUserId", `{`); code != http.StatusBadRequest {
		t.Errorf("malformed: status = %d", code)
	}
	if code, _ := post(t, srv, "setUserId", `[1,2]`); code != http.StatusBadRequest {
		t.Errorf("array: status = %d", code)
	}
}

func TestAsyncCallSettlesWhileWaiting(t *testing.T) {
	srv, fake := newServer(t, 0)

	go func() {
		for !fake.Called("Geocode") {
			time.Sleep(5 * time.Millisecond)
		}
		cb := sdktest.Callback[sdk.GeocodeCallback](fake, "Geocode")
		cb(sdk.StatusSuccess, []sdk.Record{{"formattedAddress": "20 Jay St"}})
	}()

	code, body := post(t, srv, "geocode", `{"query":"20 jay st"}`)
	if code != http.StatusOK {
		t.Fatalf("status = %d, body = %v", code, body)
	}
	data := body["data"].(map[string]any)
	if data["status"] != "SUCCESS" {
		t.Errorf("data = %v", data)
	}
}

func TestPendingCallTimesOut(t *testing.T) {
	srv, _ := newServer(t, 20*time.Millisecond)

	code, _ := post(t, srv, "trackOnce", `{}`)
	if code != http.StatusGatewayTimeout {
		t.Errorf("status = %d, want 504", code)
	}
}

func TestCommandsAndHealth(t *testing.T) {
	srv, _ := newServer(t, 0)

	resp, err := http.Get(srv.URL + "/api/commands")
	if err != nil {
		t.Fatal(err)
	}
	var cmds struct {
		Commands []string `json:"commands"`
	}
	json.NewDecoder(resp.Body).Decode(&cmds)
	resp.Body.Close()
	if len(cmds.Commands) == 0 {
		t.Error("no commands listed")
	}

	resp, err = http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d", resp.StatusCode)
	}
}

func TestIndexAndAssets(t *testing.T) {
	srv, _ := newServer(t, 0)

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	page, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(page), "/assets/geobridge.js") {
		t.Errorf("index does not load the runtime:\n%s", page)
	}

	resp, err = http.Get(srv.URL + "/assets/geobridge.js")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("runtime status = %d", resp.StatusCode)
	}
}

func TestForeignOriginRejected(t *testing.T) {
	srv, fake := newServer(t, 0)

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/setUserId", strings.NewReader(`{"userId":"x"}`))
	req.Header.Set("Origin", "https://tracker.example")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403", resp.StatusCode)
	}
	if got := fake.Arg("SetUserID"); got != nil {
		t.Errorf("SetUserID ran with %v", got)
	}
}
