package assets

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestJSAddsContentHash(t *testing.T) {
	fsys := fstest.MapFS{"geobridge.js": {Data: []byte("console.log(1)")}}
	r := NewResolver(fsys, "/assets/")

	url := r.JS("geobridge.js")
	if !strings.HasPrefix(url, "/assets/geobridge.js?v=") {
		t.Fatalf("url = %q", url)
	}
	if again := r.JS("geobridge.js"); again != url {
		t.Errorf("hash not stable: %q then %q", url, again)
	}

	fsys["geobridge.js"] = &fstest.MapFile{Data: []byte("console.log(2)")}
	other := NewResolver(fsys, "/assets/")
	if other.JS("geobridge.js") == url {
		t.Error("different content produced the same url")
	}
}

func TestContentHash(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"empty", "", "cbf29ce484222325"},
		{"single byte", "a", "af63dc4c8601ec8c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := contentHash([]byte(tt.data)); got != tt.want {
				t.Errorf("contentHash(%q) = %s, want %s", tt.data, got, tt.want)
			}
		})
	}

	r := NewResolver(fstest.MapFS{"a.js": {Data: []byte("a")}}, "/s/")
	if got := r.JS("a.js"); got != "/s/a.js?v=af63dc4c8601ec8c" {
		t.Errorf("url = %q", got)
	}
}

func TestJSMissingFileAndDev(t *testing.T) {
	r := NewResolver(fstest.MapFS{}, "/assets/")
	if got := r.JS("nope.js"); got != "/assets/nope.js" {
		t.Errorf("missing file url = %q", got)
	}

	r.SetDev()
	if got := r.JS("geobridge.js"); got != "/assets/geobridge.js" {
		t.Errorf("dev url = %q", got)
	}
}

func TestEmbeddedRuntimePresent(t *testing.T) {
	if !strings.Contains(JS("geobridge.js"), "?v=") && !IsDev() {
		t.Error("embedded geobridge.js missing")
	}
}
