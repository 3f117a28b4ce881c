// Package device tags requests with the scanning device's identifier.
package device

import (
	"net/http"
	"strings"

	"twigascan/pkg/requestcontext"
)

// Header carries the client-generated device identifier.
const Header = "X-Device-ID"

const maxDeviceIDLength = 128

// Middleware copies the X-Device-ID header into the context. Oversized
// values are ignored.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(Header))
		if id == "" || len(id) > maxDeviceIDLength {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(requestcontext.WithDeviceID(r.Context(), id)))
	})
}
