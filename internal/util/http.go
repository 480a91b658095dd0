package util

import (
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"syscall"
	"time"

	"github.com/pkg/errors"
)

// MaxDownloadSize bounds auxiliary image downloads.
const MaxDownloadSize = 32 << 20

// ErrForbiddenAddress is returned for URLs that resolve to loopback,
// private, link-local or otherwise non-public addresses.
var ErrForbiddenAddress = errors.New("address not allowed")

// allowAddr decides which resolved addresses may be dialed.
var allowAddr = isPublicAddr

// The address check runs on every dial, so redirects and DNS answers that
// change between lookups are covered too.
var client = &http.Client{
	Timeout: 12 * time.Second,
	Transport: &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: 5 * time.Second,
			Control: checkDial,
		}).DialContext,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
	},
}

// GetBytes downloads an http or https url, failing on non-2xx responses,
// non-public hosts and bodies larger than MaxDownloadSize.
func GetBytes(rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Errorf("GET %s: unsupported scheme %q", rawURL, u.Scheme)
	}
	resp, err := client.Get(u.String())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Errorf("GET %s: %s", rawURL, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxDownloadSize+1))
	if err != nil {
		return nil, err
	}
	if len(body) > MaxDownloadSize {
		return nil, errors.Errorf("GET %s: body exceeds %d bytes", rawURL, MaxDownloadSize)
	}
	return body, nil
}

func checkDial(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return err
	}
	if !allowAddr(ip) {
		return errors.Wrapf(ErrForbiddenAddress, "dial %s", address)
	}
	return nil
}

// isPublicAddr reports whether ip is a global unicast address outside the
// private ranges. Loopback, link-local (cloud metadata included), multicast
// and unspecified addresses are not global unicast.
func isPublicAddr(ip netip.Addr) bool {
	ip = ip.Unmap()
	return ip.IsGlobalUnicast() && !ip.IsPrivate() && !sharedAddrSpace.Contains(ip)
}

// RFC 6598 carrier-grade NAT range.
var sharedAddrSpace = netip.MustParsePrefix("100.64.0.0/10")
