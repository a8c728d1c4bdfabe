package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
)

// TrustedRealIP rewrites r.RemoteAddr to the client IP from X-Real-IP or
// X-Forwarded-For, but ONLY when the connection comes from a trusted proxy.
// Otherwise the headers are ignored so a client cannot spoof its address to
// dodge rate limiting or pollute request logs.
func TrustedRealIP(trustedCIDRs []string) func(http.Handler) http.Handler {
	trusted := parseTrustedProxies(trustedCIDRs)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isTrusted(extractIP(r.RemoteAddr), trusted) {
				if ip := forwardedIP(r.Header); ip != nil {
					r.RemoteAddr = ip.String()
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// parseTrustedProxies accepts CIDRs and bare IPs; invalid entries are logged
// and skipped.
func parseTrustedProxies(cidrs []string) []*net.IPNet {
	var nets []*net.IPNet
	for _, cidr := range cidrs {
		cidr = strings.TrimSpace(cidr)
		if cidr == "" {
			continue
		}

		if _, network, err := net.ParseCIDR(cidr); err == nil {
			nets = append(nets, network)
			continue
		}

		ip := net.ParseIP(cidr)
		if ip == nil {
			slog.Warn("realip: invalid trusted proxy, skipping", "cidr", cidr)
			continue
		}
		bits := 128
		if ip.To4() != nil {
			ip, bits = ip.To4(), 32
		}
		nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
	}
	return nets
}

// forwardedIP returns X-Real-IP, else the first X-Forwarded-For hop, when it
// parses as an IP.
func forwardedIP(h http.Header) net.IP {
	if rip := strings.TrimSpace(h.Get("X-Real-IP")); rip != "" {
		return net.ParseIP(rip)
	}
	if xff := h.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return net.ParseIP(strings.TrimSpace(first))
	}
	return nil
}

// extractIP parses an IP address from a host:port string or plain IP.
func extractIP(addr string) net.IP {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return net.ParseIP(host)
	}
	return net.ParseIP(addr)
}

// isTrusted checks if an IP is within any of the trusted networks.
func isTrusted(ip net.IP, trusted []*net.IPNet) bool {
	if ip == nil {
		return false
	}
	for _, network := range trusted {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
