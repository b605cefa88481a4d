package util

import (
	"net/netip"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

// RegisteredDomain returns the eTLD+1 for host, falling back to the last two
// labels when the public suffix list can't answer. IP literals are returned
// as is.
func RegisteredDomain(host string) string {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if _, err := netip.ParseAddr(host); err == nil {
		return host
	}
	if ascii, err := idna.Lookup.ToASCII(host); err == nil && ascii != "" {
		host = ascii
	}
	if d, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return d
	}
	parts := strings.Split(host, ".")
	if len(parts) < 2 {
		return host
	}
	return strings.Join(parts[len(parts)-2:], ".")
}

// UnicodeHost converts a punycoded host to its display form. ok is false when
// the host has no xn-- labels.
func UnicodeHost(host string) (string, bool) {
	host = strings.ToLower(host)
	if !strings.Contains(host, "xn--") {
		return host, false
	}
	u, err := idna.Display.ToUnicode(host)
	if err != nil || u == "" {
		return host, true
	}
	return u, true
}
