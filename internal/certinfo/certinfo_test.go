package certinfo

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"github.com/selimozcann/PhishHunter/internal/guard"
	"github.com/selimozcann/PhishHunter/internal/model"
)

func loopbackInspector(now func() time.Time) *Inspector {
	g := guard.New(nil, []netip.Prefix{netip.MustParsePrefix("127.0.0.0/8")})
	return New(Config{Timeout: 2 * time.Second, Dialer: g.Dialer(2 * time.Second), Now: now})
}

func selfSignedServer(t *testing.T, tmpl *x509.Certificate) *httptest.Server {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("create certificate: %v", err)
	}
	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.TLS = &tls.Config{Certificates: []tls.Certificate{{Certificate: [][]byte{der}, PrivateKey: key}}}
	srv.StartTLS()
	return srv
}

func TestInspectNotHTTPS(t *testing.T) {
	info := New(Config{}).Inspect(context.Background(), "http://example.com")
	if info.Valid || info.Reason != model.CertNotHTTPS {
		t.Fatalf("expected not-https, got %+v", info)
	}
}

func TestInspectMalformed(t *testing.T) {
	info := New(Config{}).Inspect(context.Background(), "https://")
	if info.Valid || info.Reason != model.CertError {
		t.Fatalf("expected error reason, got %+v", info)
	}
}

func TestInspectHTTPTestServer(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	info := loopbackInspector(nil).Inspect(context.Background(), srv.URL)
	if !info.Valid {
		t.Fatalf("expected a certificate, got %+v", info)
	}
	if info.Issuer != "Acme Co" {
		t.Fatalf("expected organization fallback issuer, got %q", info.Issuer)
	}
	if info.ExpiresInDays == nil || *info.ExpiresInDays <= 0 {
		t.Fatalf("expected positive expiry, got %v", info.ExpiresInDays)
	}
	if !info.SelfSigned || info.Expired || !info.HostnameMatch {
		t.Fatalf("unexpected flags %+v", info)
	}
}

func TestInspectExpiredCertificate(t *testing.T) {
	notAfter := time.Date(2025, time.April, 2, 23, 59, 59, 0, time.UTC)
	srv := selfSignedServer(t, &x509.Certificate{
		SerialNumber: big.NewInt(7),
		Subject:      pkix.Name{CommonName: "Phish Test Root"},
		NotBefore:    notAfter.AddDate(-1, 0, 0),
		NotAfter:     notAfter,
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1")},
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	})
	defer srv.Close()

	now := func() time.Time { return notAfter.Add(36 * time.Hour) }
	info := loopbackInspector(now).Inspect(context.Background(), srv.URL)
	if !info.Valid {
		t.Fatalf("expired certificates are still extracted, got %+v", info)
	}
	if info.Issuer != "Phish Test Root" {
		t.Fatalf("unexpected issuer %q", info.Issuer)
	}
	if info.NotAfter != "Apr  2 23:59:59 2025 GMT" {
		t.Fatalf("unexpected not-after %q", info.NotAfter)
	}
	if info.ExpiresInDays == nil || *info.ExpiresInDays != -2 {
		t.Fatalf("expected -2 days, got %v", info.ExpiresInDays)
	}
	if !info.Expired {
		t.Fatalf("expected expired flag")
	}
}

func TestInspectUnknownIssuer(t *testing.T) {
	srv := selfSignedServer(t, &x509.Certificate{
		SerialNumber: big.NewInt(9),
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(48 * time.Hour),
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1")},
		KeyUsage:     x509.KeyUsageDigitalSignature,
	})
	defer srv.Close()

	info := loopbackInspector(nil).Inspect(context.Background(), srv.URL)
	if info.Issuer != "Unknown" {
		t.Fatalf("expected Unknown issuer, got %q", info.Issuer)
	}
}

func TestInspectNoCert(t *testing.T) {
	// Plain HTTP listener: the TLS handshake fails.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	u := "https://" + srv.Listener.Addr().String()
	info := loopbackInspector(nil).Inspect(context.Background(), u)
	if info.Valid || info.Reason != model.CertNoCert {
		t.Fatalf("expected no-cert, got %+v", info)
	}
}

func TestInspectGuarded(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	g := guard.New(nil, nil)
	info := New(Config{Timeout: time.Second, Dialer: g.Dialer(time.Second)}).Inspect(context.Background(), srv.URL)
	if info.Valid || info.Reason != model.CertNoCert {
		t.Fatalf("internal hosts must not be dialed, got %+v", info)
	}
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	if d := DaysUntil(now, now.Add(47*time.Hour)); d != 1 {
		t.Fatalf("expected 1, got %d", d)
	}
	if d := DaysUntil(now, now.Add(-time.Hour)); d != -1 {
		t.Fatalf("expected -1, got %d", d)
	}
}

func TestMode(t *testing.T) {
	if New(Config{}).Mode() != ModeInspectOnly {
		t.Fatalf("inspector must run inspect-only")
	}
}
