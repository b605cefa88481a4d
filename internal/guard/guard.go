// Package guard keeps outbound fetches away from internal network space.
package guard

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"syscall"
	"time"

	"github.com/selimozcann/PhishHunter/internal/util"
)

// ErrBlocked is returned by the dial hook when a connect targets a
// non-public address.
var ErrBlocked = errors.New("blocked internal target")

// Resolver looks up the addresses of a host. *net.Resolver satisfies it.
type Resolver interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
}

// Guard classifies hosts and addresses as public or internal.
type Guard struct {
	resolver Resolver
	permit   []netip.Prefix
}

// New returns a Guard using r for DNS. A nil r means net.DefaultResolver.
// Addresses inside permit are treated as public.
func New(r Resolver, permit []netip.Prefix) *Guard {
	if r == nil {
		r = net.DefaultResolver
	}
	return &Guard{resolver: r, permit: permit}
}

// ParsePermit parses CIDR strings for New.
func ParsePermit(cidrs []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(cidrs))
	for _, c := range cidrs {
		p, err := netip.ParsePrefix(strings.TrimSpace(c))
		if err != nil {
			return nil, fmt.Errorf("invalid permit prefix %q: %w", c, err)
		}
		out = append(out, p.Masked())
	}
	return out, nil
}

// AllowedAddr reports whether a connection to addr is acceptable.
func (g *Guard) AllowedAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, p := range g.permit {
		if p.Contains(addr) {
			return true
		}
	}
	return !util.IsInternalAddr(addr)
}

// IsPublicHost resolves host and returns true only if it has at least one
// address and every address is public. Lookup failures fail closed.
func (g *Guard) IsPublicHost(ctx context.Context, host string) bool {
	host = strings.Trim(host, "[]")
	if host == "" {
		return false
	}
	if addr, err := netip.ParseAddr(host); err == nil {
		return g.AllowedAddr(addr)
	}
	if util.IsInternalName(host) {
		return false
	}
	addrs, err := g.resolver.LookupNetIP(ctx, "ip", host)
	if err != nil || len(addrs) == 0 {
		return false
	}
	for _, a := range addrs {
		if !g.AllowedAddr(a) {
			return false
		}
	}
	return true
}

// Control is a net.Dialer Control hook. It sees the concrete address being
// dialed after DNS resolution and refuses anything AllowedAddr rejects.
func (g *Guard) Control(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBlocked, address)
	}
	addr, err := netip.ParseAddr(host)
	if err != nil || !g.AllowedAddr(addr) {
		return fmt.Errorf("%w: %s", ErrBlocked, address)
	}
	return nil
}

// Dialer returns a net.Dialer wired to Control.
func (g *Guard) Dialer(timeout time.Duration) *net.Dialer {
	return &net.Dialer{
		Timeout:   timeout,
		KeepAlive: 30 * time.Second,
		Control:   g.Control,
	}
}
