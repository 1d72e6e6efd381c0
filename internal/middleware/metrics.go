package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/talentboard/profiledir/internal/metrics"
)

// Metrics records request counts and latency per route template.
// It must run inside a mux router so the matched route is known.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &ResponseWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			m.ObserveRequest(r.Method, routeTemplate(r), wrapped.status, time.Since(start))
		})
	}
}

// routeTemplate keeps label cardinality bounded by using the route pattern, not the path
func routeTemplate(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return "unmatched"
	}
	tmpl, err := route.GetPathTemplate()
	if err != nil {
		return "unmatched"
	}
	return tmpl
}
