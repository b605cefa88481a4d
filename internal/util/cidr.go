package util

import (
	"net/netip"
	"strings"
)

// Special-purpose ranges that netip's Is* helpers don't cover.
var reservedPrefixes []netip.Prefix

func init() {
	cidrs := []string{
		"0.0.0.0/8",
		"100.64.0.0/10",
		"192.0.0.0/24",
		"192.0.2.0/24",
		"198.18.0.0/15",
		"198.51.100.0/24",
		"203.0.113.0/24",
		"240.0.0.0/4",
		"64:ff9b::/96",
		"100::/64",
		"2001:db8::/32",
		"fec0::/10",
	}
	for _, c := range cidrs {
		reservedPrefixes = append(reservedPrefixes, netip.MustParsePrefix(c))
	}
}

// IsInternalAddr returns true if addr is loopback, private, link-local,
// multicast, unspecified or otherwise reserved.
func IsInternalAddr(addr netip.Addr) bool {
	if !addr.IsValid() {
		return true
	}
	addr = addr.Unmap()
	if addr.IsLoopback() ||
		addr.IsPrivate() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsInterfaceLocalMulticast() ||
		addr.IsMulticast() ||
		addr.IsUnspecified() {
		return true
	}
	for _, p := range reservedPrefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// IsInternalName reports host names that are internal by convention and
// never worth resolving.
func IsInternalName(host string) bool {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	return host == "localhost" ||
		strings.HasSuffix(host, ".localhost") ||
		strings.HasSuffix(host, ".internal") ||
		strings.HasSuffix(host, ".local")
}
