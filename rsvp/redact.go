package rsvp

import (
	"net/netip"
	"strings"
)

// RedactIP masks the host part of an address for logs: the last IPv4 octet,
// or everything after the first three IPv6 groups.
func RedactIP(ip string) string {
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return "unknown"
	}
	addr = addr.Unmap()

	if addr.Is4() {
		masked := addr.String()
		return masked[:strings.LastIndexByte(masked, '.')] + ".x"
	}

	prefix, err := addr.Prefix(48)
	if err != nil {
		return "unknown"
	}
	return strings.TrimSuffix(prefix.Addr().String(), "::") + "::x"
}
