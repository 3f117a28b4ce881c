// Package requestcontext carries request-scoped scan metadata through
// context.Context so services never import net/http.
//
// Middleware writes the values; the scan service reads them when it builds
// the history record:
//
//	deviceID := requestcontext.DeviceID(ctx)
//	now := requestcontext.Now(ctx)
//
// CLI runs and unit tests set them directly:
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithClientMetadata(ctx, "203.0.113.7", "Mozilla/5.0 ...")
package requestcontext

import (
	"context"
	"time"
)

type key int

const (
	keyDeviceID key = iota
	keyClientIP
	keyUserAgent
	keyRequestID
	keyRequestTime
)

func value[T any](ctx context.Context, k key) (T, bool) {
	v, ok := ctx.Value(k).(T)
	return v, ok
}

func str(ctx context.Context, k key) string {
	s, _ := value[string](ctx, k)
	return s
}

// DeviceID is the client-supplied scanning device identifier, or "".
func DeviceID(ctx context.Context) string { return str(ctx, keyDeviceID) }

// WithDeviceID tags ctx with the scanning device.
func WithDeviceID(ctx context.Context, deviceID string) context.Context {
	return context.WithValue(ctx, keyDeviceID, deviceID)
}

// ClientIP is the resolved client address, or "".
func ClientIP(ctx context.Context) string { return str(ctx, keyClientIP) }

// UserAgent is the raw User-Agent header, or "".
func UserAgent(ctx context.Context) string { return str(ctx, keyUserAgent) }

// WithClientMetadata records the client address and User-Agent; the history
// record derives browser, OS and mobile from the latter.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, keyClientIP, clientIP)
	return context.WithValue(ctx, keyUserAgent, userAgent)
}

// RequestID is the correlation id echoed in X-Request-ID, or "".
func RequestID(ctx context.Context) string { return str(ctx, keyRequestID) }

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, keyRequestID, requestID)
}

// Now is the request's pinned clock. Scan timestamps, first_seen and log
// lines all use it. Without one (CLI, background work) it is time.Now().
func Now(ctx context.Context) time.Time {
	if t, ok := value[time.Time](ctx, keyRequestTime); ok {
		return t
	}
	return time.Now()
}

func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, keyRequestTime, t)
}
