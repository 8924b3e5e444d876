// Package clientip resolves the address of the caller for request logs.
package clientip

import (
	"net"
	"net/http"
	"strings"
)

// RealClientIP returns the caller address. Forwarding headers are honoured
// only when the direct peer is a loopback or private address, i.e. a reverse
// proxy in front of the API; otherwise r.RemoteAddr wins.
func RealClientIP(r *http.Request) string {
	peer := remoteHost(r.RemoteAddr)
	if !fromProxy(peer) {
		return peer
	}

	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}
	if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
		return ip.String()
	}
	return peer
}

func remoteHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return strings.TrimSpace(addr)
	}
	return strings.TrimSpace(host)
}

func fromProxy(host string) bool {
	ip := net.ParseIP(host)
	return ip != nil && (ip.IsLoopback() || ip.IsPrivate())
}
