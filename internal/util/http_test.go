package util

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allowLoopback lets the test server on 127.0.0.1 through for one test.
func allowLoopback(t *testing.T) {
	t.Helper()
	allowAddr = func(ip netip.Addr) bool { return ip.IsLoopback() || isPublicAddr(ip) }
	t.Cleanup(func() { allowAddr = isPublicAddr })
}

func TestGetBytes(t *testing.T) {
	allowLoopback(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.Write([]byte("payload"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	body, err := GetBytes(srv.URL + "/ok")
	require.NoError(t, err)
	assert.Equal(t, "payload", string(body))

	_, err = GetBytes(srv.URL + "/missing")
	assert.ErrorContains(t, err, "404")
}

func TestGetBytes_RefusesPrivateHosts(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("secret"))
	}))
	defer srv.Close()

	_, err := GetBytes(srv.URL)
	assert.ErrorIs(t, err, ErrForbiddenAddress)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	_, err = GetBytes("http://localhost:" + u.Port())
	assert.ErrorIs(t, err, ErrForbiddenAddress, "names are checked after resolution")

	assert.Zero(t, hits.Load())
}

func TestGetBytes_Scheme(t *testing.T) {
	for _, u := range []string{"file:///etc/passwd", "ftp://example.com/a.png", "gopher://x", "/relative.png"} {
		_, err := GetBytes(u)
		assert.ErrorContains(t, err, "unsupported scheme", u)
	}
}

func TestIsPublicAddr(t *testing.T) {
	tests := map[string]bool{
		"93.184.216.34":        true,
		"2606:4700::6810:85e5": true,
		"127.0.0.1":            false,
		"::1":                  false,
		"10.1.2.3":             false,
		"172.16.0.1":           false,
		"192.168.1.1":          false,
		"169.254.169.254":      false,
		"fe80::1":              false,
		"fd00::1":              false,
		"100.64.0.1":           false,
		"0.0.0.0":              false,
		"224.0.0.1":            false,
		"::ffff:127.0.0.1":     false,
	}
	for addr, want := range tests {
		assert.Equal(t, want, isPublicAddr(netip.MustParseAddr(addr)), addr)
	}
}
