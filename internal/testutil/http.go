package testutil

import (
	"net"
	"net/http"
	"time"
)

// NoProxyClient returns an HTTP client that ignores HTTP_PROXY, for talking
// to the loopback bridge endpoint from tests.
func NoProxyClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy: nil,
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
		},
		Timeout: 10 * time.Second,
	}
}
