package verify

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tlsServer(t *testing.T) (host, port string, pool *x509.CertPool) {
	t.Helper()
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	host, port, err = net.SplitHostPort(u.Host)
	require.NoError(t, err)

	pool = x509.NewCertPool()
	pool.AddCert(srv.Certificate())
	return host, port, pool
}

func TestNetDomainChecker(t *testing.T) {
	host, port, pool := tlsServer(t)

	t.Run("handshake succeeds against trusted server", func(t *testing.T) {
		c := NewNetDomainChecker(WithTLSPort(port), WithTLSConfig(&tls.Config{RootCAs: pool}))
		v := c.Check(context.Background(), "https://"+host+"/.well-known/lnurlp/user")
		assert.True(t, v.Valid, v.Reason)
		assert.Equal(t, host, v.Host)
	})

	t.Run("untrusted certificate fails", func(t *testing.T) {
		c := NewNetDomainChecker(WithTLSPort(port))
		v := c.Check(context.Background(), "https://"+host+"/")
		assert.False(t, v.Valid)
		assert.Contains(t, v.Reason, "tls")
	})

	t.Run("http scheme only resolves", func(t *testing.T) {
		c := NewNetDomainChecker(WithTLSPort("1"))
		v := c.Check(context.Background(), "http://"+host+"/")
		assert.True(t, v.Valid)
	})

	t.Run("closed port fails", func(t *testing.T) {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		_, closedPort, _ := net.SplitHostPort(l.Addr().String())
		require.NoError(t, l.Close())

		c := NewNetDomainChecker(WithTLSPort(closedPort), WithCheckTimeout(2*time.Second))
		v := c.Check(context.Background(), "https://127.0.0.1/")
		assert.False(t, v.Valid)
	})

	t.Run("missing host", func(t *testing.T) {
		v := NewNetDomainChecker().Check(context.Background(), "not a url")
		assert.False(t, v.Valid)
		assert.Equal(t, "missing host", v.Reason)
	})

	t.Run("cancelled context fails fast", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		c := NewNetDomainChecker(WithTLSPort(port), WithTLSConfig(&tls.Config{RootCAs: pool}))
		v := c.Check(ctx, "https://"+host+"/")
		assert.False(t, v.Valid)
	})
}

func TestStaticDomainChecker(t *testing.T) {
	v := StaticDomainChecker{}.Check(context.Background(), "https://Strike.me/x")
	assert.False(t, v.Valid)
	assert.Equal(t, "strike.me", v.Host)

	assert.True(t, StaticDomainChecker{Valid: true}.Check(context.Background(), "https://strike.me").Valid)
}
