// Package middleware holds HTTP middleware for the bridge routes.
package middleware

import (
	"net"
	"net/http"
	"net/url"
	"slices"
)

// LocalOrigin rejects browser requests whose Origin is not the bridge
// itself, a loopback page or one of allowed. Requests without an Origin
// header (native clients, curl) pass.
func LocalOrigin(allowed ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" || originAllowed(origin, r.Host, allowed) {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error":"origin not allowed"}` + "\n"))
		})
	}
}

func originAllowed(origin, host string, allowed []string) bool {
	if slices.Contains(allowed, origin) {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	if u.Host == host {
		return true
	}
	name := u.Hostname()
	if name == "localhost" {
		return true
	}
	ip := net.ParseIP(name)
	return ip != nil && ip.IsLoopback()
}
