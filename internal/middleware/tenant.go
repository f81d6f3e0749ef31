package middleware

import "net/http"

// TenantHeader carries the tenant identifier on every front-end call.
const TenantHeader = "tenant_id"

// SessionHeader scopes the booking selection to a browser tab.
const SessionHeader = "X-Session-ID"

// RequireTenant rejects requests whose tenant header does not equal
// expected with 400. An empty expected disables the check. The router mounts
// it on the /auth routes only; the other routes accept any tenant header.
func RequireTenant(expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if expected == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get(TenantHeader) != expected {
				writeError(w, http.StatusBadRequest, "bad_request", "missing or unknown tenant")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
