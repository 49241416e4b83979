// atoms.go contains pure helpers with no dependencies on other files.
package imagegen

import (
	"net"
	"net/url"
	"strings"
)

// IsLocalEndpoint reports whether endpoint points at loopback or a private
// network address.
//
//	IsLocalEndpoint("http://localhost:7860")      // true
//	IsLocalEndpoint("http://192.168.1.10:8000")   // true
//	IsLocalEndpoint("https://api.openai.com/v1")  // false
func IsLocalEndpoint(endpoint string) bool {
	if endpoint == "" {
		return false
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Hostname() == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified()
}

// truncate shortens s to at most n bytes for error messages.
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
