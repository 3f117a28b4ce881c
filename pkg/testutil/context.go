package testutil

import (
	"net/http"

	"twigascan/pkg/requestcontext"
)

// WithDeviceID adds a device ID to the request context, as an upstream
// gateway would before the device middleware runs.
func WithDeviceID(req *http.Request, deviceID string) *http.Request {
	return req.WithContext(requestcontext.WithDeviceID(req.Context(), deviceID))
}
