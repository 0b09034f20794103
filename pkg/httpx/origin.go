package httpx

import (
	"net"
	"net/http"
	"strings"
)

// RequestOrigin returns the scheme://host the request was served on. With
// trustProxy the X-Forwarded-Proto and X-Forwarded-Host headers win, which is
// required behind a TLS-terminating proxy.
func RequestOrigin(r *http.Request, trustProxy bool) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	host := r.Host

	if trustProxy {
		if p := firstHeaderValue(r, "X-Forwarded-Proto"); p != "" {
			scheme = strings.ToLower(p)
		}
		if h := firstHeaderValue(r, "X-Forwarded-Host"); h != "" {
			host = h
		}
	}

	return scheme + "://" + host
}

// Hostname strips any port from host. Bracketed IPv6 literals are unwrapped.
func Hostname(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return strings.Trim(host, "[]")
}

// RequestHostname is the host the request was served on, without a port.
func RequestHostname(r *http.Request, trustProxy bool) string {
	origin := RequestOrigin(r, trustProxy)
	return strings.ToLower(Hostname(origin[strings.Index(origin, "://")+3:]))
}

// ClientIP returns the caller's address. With trustProxy the first
// X-Forwarded-For hop, then X-Real-IP, win over RemoteAddr.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := firstHeaderValue(r, "X-Forwarded-For"); xff != "" {
			return xff
		}
		if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
			return xri
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func firstHeaderValue(r *http.Request, name string) string {
	v := r.Header.Get(name)
	if i := strings.IndexByte(v, ','); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v)
}
