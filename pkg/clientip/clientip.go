// Package clientip resolves the originating client IP of an HTTP request.
package clientip

import (
	"net"
	"net/http"
	"strings"
)

// FromRequest returns the client's IP address from the HTTP request.
// When trustCloudflare is set the CF-Connecting-IP header takes priority,
// matching deployments fronted by Cloudflare. Otherwise the standard proxy
// headers are consulted before falling back to the socket address:
//  1. CF-Connecting-IP (only when trustCloudflare)
//  2. X-Forwarded-For (first valid IP in the list)
//  3. X-Real-IP
//  4. RemoteAddr
func FromRequest(r *http.Request, trustCloudflare bool) string {
	if trustCloudflare {
		if ip := parseIP(r.Header.Get("CF-Connecting-IP")); ip != "" {
			return ip
		}
	}

	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		// X-Forwarded-For can contain multiple IPs, find the first valid one
		for ip := range strings.SplitSeq(forwarded, ",") {
			if parsed := parseIP(ip); parsed != "" {
				return parsed
			}
		}
	}

	if ip := parseIP(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// If SplitHostPort fails, assume it's already just an IP
		return parseIP(r.RemoteAddr)
	}
	return parseIP(host)
}

// parseIP validates and normalizes an IP address string.
// Returns empty string if the IP is invalid.
func parseIP(ipStr string) string {
	ipStr = strings.TrimSpace(ipStr)
	if ipStr == "" {
		return ""
	}

	ip := net.ParseIP(ipStr)
	if ip == nil {
		return ""
	}
	return ip.String()
}
