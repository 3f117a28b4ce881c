package requestcontext

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAccessorsDefaultToZero(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, DeviceID(ctx))
	assert.Empty(t, ClientIP(ctx))
	assert.Empty(t, UserAgent(ctx))
	assert.Empty(t, RequestID(ctx))
	assert.WithinDuration(t, time.Now(), Now(ctx), time.Second)
}

func TestAccessorsRoundTrip(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	ctx := WithDeviceID(context.Background(), "device-1")
	ctx = WithClientMetadata(ctx, "203.0.113.7", "curl/8.0")
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithTime(ctx, fixed)

	assert.Equal(t, "device-1", DeviceID(ctx))
	assert.Equal(t, "203.0.113.7", ClientIP(ctx))
	assert.Equal(t, "curl/8.0", UserAgent(ctx))
	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Equal(t, fixed, Now(ctx))
}

func TestKeysDoNotCollideWithForeignValues(t *testing.T) {
	type foreign int
	ctx := context.WithValue(context.Background(), foreign(0), "not a device")

	assert.Empty(t, DeviceID(ctx))
}

func TestWrongTypedValueIsIgnored(t *testing.T) {
	ctx := context.WithValue(context.Background(), keyRequestTime, "yesterday")
	assert.WithinDuration(t, time.Now(), Now(ctx), time.Second)
}
