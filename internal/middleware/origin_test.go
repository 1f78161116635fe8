package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLocalOrigin(t *testing.T) {
	h := LocalOrigin("capacitor://localhost")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		origin string
		want   int
	}{
		{"no origin", "", http.StatusNoContent},
		{"same host", "http://bridge.test:7755", http.StatusNoContent},
		{"loopback", "http://127.0.0.1:5173", http.StatusNoContent},
		{"localhost", "http://localhost:3000", http.StatusNoContent},
		{"ipv6 loopback", "http://[::1]:8080", http.StatusNoContent},
		{"allowed scheme", "capacitor://localhost", http.StatusNoContent},
		{"foreign site", "https://example.com", http.StatusForbidden},
		{"opaque", "null", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "http://bridge.test:7755/api/getUserId", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
