// Package certinfo reads the TLS leaf certificate a host presents.
//
// The inspector runs in ModeInspectOnly: it never verifies the chain of trust
// or the hostname. Self-signed and expired certificates are reported as data,
// never rejected.
package certinfo

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"math"
	"net"
	"net/url"
	"time"

	"github.com/selimozcann/PhishHunter/internal/model"
)

// Mode names the trust contract of the inspector.
type Mode string

// ModeInspectOnly extracts certificate fields without any trust verification.
const ModeInspectOnly Mode = "inspect-only, no trust verification"

// NotAfterLayout matches the OpenSSL text form, e.g. "Apr 12 23:59:59 2025 GMT".
const NotAfterLayout = "Jan _2 15:04:05 2006 GMT"

// Config holds settings for the inspector.
type Config struct {
	Timeout time.Duration
	// Dialer should carry the SSRF guard's Control hook.
	Dialer *net.Dialer
	// Now is used for expiry maths; nil means time.Now.
	Now func() time.Time
}

// Inspector opens one TLS connection per call and reports the peer leaf.
type Inspector struct {
	cfg Config
}

// New returns an Inspector in ModeInspectOnly.
func New(cfg Config) *Inspector {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 6 * time.Second
	}
	if cfg.Dialer == nil {
		cfg.Dialer = &net.Dialer{Timeout: cfg.Timeout}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Inspector{cfg: cfg}
}

// Mode reports the trust contract.
func (i *Inspector) Mode() Mode { return ModeInspectOnly }

// Inspect connects to the host of finalURL and extracts issuer and expiry.
// Port 443 is used unless the URL names one.
func (i *Inspector) Inspect(ctx context.Context, finalURL string) model.CertificateInfo {
	u, err := url.Parse(finalURL)
	if err != nil || u.Hostname() == "" {
		return model.CertificateInfo{Reason: model.CertError}
	}
	if u.Scheme != "https" {
		return model.CertificateInfo{Reason: model.CertNotHTTPS}
	}
	port := u.Port()
	if port == "" {
		port = "443"
	}

	leaf, err := i.fetchLeaf(ctx, u.Hostname(), port)
	if err != nil || leaf == nil {
		return model.CertificateInfo{Reason: model.CertNoCert}
	}
	return i.describe(leaf, u.Hostname())
}

func (i *Inspector) fetchLeaf(ctx context.Context, host, port string) (*x509.Certificate, error) {
	ctx, cancel := context.WithTimeout(ctx, i.cfg.Timeout)
	defer cancel()

	d := &tls.Dialer{
		NetDialer: i.cfg.Dialer,
		Config: &tls.Config{
			ServerName:         host,
			InsecureSkipVerify: true,
		},
	}
	conn, err := d.DialContext(ctx, "tcp", net.JoinHostPort(host, port))
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	tc, ok := conn.(*tls.Conn)
	if !ok {
		return nil, fmt.Errorf("unexpected connection type %T", conn)
	}
	certs := tc.ConnectionState().PeerCertificates
	if len(certs) == 0 {
		return nil, fmt.Errorf("no peer certificate from %s", host)
	}
	return certs[0], nil
}

func (i *Inspector) describe(leaf *x509.Certificate, host string) (info model.CertificateInfo) {
	defer func() {
		if r := recover(); r != nil {
			info = model.CertificateInfo{Reason: model.CertError}
		}
	}()

	info = model.CertificateInfo{
		Valid:         true,
		Issuer:        issuerName(leaf),
		Subject:       leaf.Subject.CommonName,
		SelfSigned:    isSelfSigned(leaf),
		HostnameMatch: leaf.VerifyHostname(host) == nil,
	}
	if !leaf.NotBefore.IsZero() {
		info.NotBefore = leaf.NotBefore.UTC().Format(NotAfterLayout)
	}
	if !leaf.NotAfter.IsZero() {
		info.NotAfter = leaf.NotAfter.UTC().Format(NotAfterLayout)
		days := DaysUntil(i.cfg.Now(), leaf.NotAfter)
		info.ExpiresInDays = &days
		info.Expired = i.cfg.Now().After(leaf.NotAfter)
	}
	return info
}

// DaysUntil returns whole days from now to t, floored.
func DaysUntil(now, t time.Time) int {
	return int(math.Floor(t.Sub(now).Hours() / 24))
}

func issuerName(c *x509.Certificate) string {
	if c.Issuer.CommonName != "" {
		return c.Issuer.CommonName
	}
	if len(c.Issuer.Organization) > 0 && c.Issuer.Organization[0] != "" {
		return c.Issuer.Organization[0]
	}
	return "Unknown"
}

func isSelfSigned(c *x509.Certificate) bool {
	if string(c.RawIssuer) != string(c.RawSubject) {
		return false
	}
	return c.CheckSignature(c.SignatureAlgorithm, c.RawTBSCertificate, c.Signature) == nil
}
