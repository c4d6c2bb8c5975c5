package topology

import (
	"net"
	"strconv"
	"strings"
)

// splitHostPort splits "ip:port", "[v6]:port", "*:*" and netstat's ":::port".
// The port is 0 when absent or not numeric.
func splitHostPort(addr string) (string, int) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "", 0
	}
	if strings.HasPrefix(addr, "[") {
		if end := strings.Index(addr, "]"); end > 0 {
			host := addr[1:end]
			rest := strings.TrimPrefix(addr[end+1:], ":")
			return host, atoiPort(rest)
		}
	}
	i := strings.LastIndex(addr, ":")
	if i < 0 {
		return addr, 0
	}
	return addr[:i], atoiPort(addr[i+1:])
}

func atoiPort(s string) int {
	p, err := strconv.Atoi(s)
	if err != nil || p < 0 || p > 65535 {
		return 0
	}
	return p
}

func normalizeIP(ip string) string {
	ip = strings.TrimSpace(ip)
	ip = strings.TrimPrefix(ip, "[")
	ip = strings.TrimSuffix(ip, "]")
	if i := strings.Index(ip, "%"); i >= 0 {
		ip = ip[:i]
	}
	if ip == "" {
		return ""
	}
	if parsed := net.ParseIP(ip); parsed != nil {
		if v4 := parsed.To4(); v4 != nil {
			return v4.String()
		}
		return parsed.String()
	}
	return ip
}

func isWildcardIP(ip string) bool {
	ip = normalizeIP(ip)
	return ip == "" || ip == "0.0.0.0" || ip == "::" || ip == "*"
}
