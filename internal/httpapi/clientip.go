package httpapi

import (
	"net"
	"net/http"

	"github.com/realclientip/realclientip-go"
)

// newIPStrategy builds the client-IP resolution strategy: prefer the
// leftmost non-private address in the X-Forwarded-For chain (the
// originating client as the chain reports it), falling back to RemoteAddr
// when the header is absent or holds no such address. Deployments without a trusted proxy in
// front of them should leave trustForwardedFor false, so spoofed headers
// from the public internet are never consulted.
func newIPStrategy(trustForwardedFor bool) realclientip.Strategy {
	remoteAddr := realclientip.RemoteAddrStrategy{}
	if !trustForwardedFor {
		return remoteAddr
	}

	leftmost, err := realclientip.NewLeftmostNonPrivateStrategy("X-Forwarded-For")
	if err != nil {
		return remoteAddr
	}

	return realclientip.NewChainStrategy(leftmost, remoteAddr)
}

// sourceID resolves the source identifier used by the access tracker:
// the client's real remote address, honoring a trusted proxy-forwarded
// header when configured.
func sourceID(strategy realclientip.Strategy, r *http.Request) (string, error) {
	ip, err := strategy.ClientIP(r.Header, r.RemoteAddr)
	if err != nil {
		return "", err
	}
	if ip == "" {
		return "", errNoClientIP
	}
	// Strip a port if RemoteAddrStrategy handed one back.
	if host, _, splitErr := net.SplitHostPort(ip); splitErr == nil {
		return host, nil
	}
	return ip, nil
}
