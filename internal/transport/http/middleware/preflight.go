package middleware

import (
	"net/http"
	"slices"
	"strings"
)

// CORS methods and request headers accepted from browser clients.
var (
	CORSMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	CORSHeaders = []string{"Authorization", "X-Client-Info", "Apikey", "Content-Type"}
)

// Preflight ends every OPTIONS request with an empty 200 JSON response. It
// runs after the CORS handler, which passes preflights through once it has set
// its headers. Bare OPTIONS requests without an Origin get the permissive
// headers here.
func Preflight(allowedOrigins []string) func(http.Handler) http.Handler {
	wildcard := slices.Contains(allowedOrigins, "*")
	methods := strings.Join(CORSMethods, ", ")
	headers := strings.Join(CORSHeaders, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			h := w.Header()
			if wildcard && h.Get("Access-Control-Allow-Origin") == "" {
				h.Set("Access-Control-Allow-Origin", "*")
			}
			if h.Get("Access-Control-Allow-Methods") == "" {
				h.Set("Access-Control-Allow-Methods", methods)
			}
			if h.Get("Access-Control-Allow-Headers") == "" {
				h.Set("Access-Control-Allow-Headers", headers)
			}
			h.Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
		})
	}
}
