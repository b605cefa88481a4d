package httpclient

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

// DefaultUserAgent identifies the scanner to the sites it visits.
const DefaultUserAgent = "URL-Phishing-Checker/1.0"

// Config holds settings for the HTTP client.
type Config struct {
	Timeout   time.Duration
	UserAgent string
	Headers   http.Header
	Insecure  bool
	// Dialer is used for every outbound connection. It should carry the
	// SSRF guard's Control hook.
	Dialer *net.Dialer
}

// headerRoundTripper wraps a base RoundTripper to inject fixed headers.
type headerRoundTripper struct {
	base      http.RoundTripper
	userAgent string
	headers   http.Header
}

func (h *headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	for k, vs := range h.headers {
		r.Header.Del(k)
		for _, v := range vs {
			r.Header.Add(k, v)
		}
	}
	if h.userAgent != "" {
		r.Header.Set("User-Agent", h.userAgent)
	}
	return h.base.RoundTrip(r)
}

// DefaultHeaders are sent with every hop so the scanner looks like a browser
// to servers that gate redirects on Accept.
func DefaultHeaders() http.Header {
	return http.Header{
		"Accept":          []string{"text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"},
		"Accept-Language": []string{"en-US,en;q=0.5"},
	}
}

// New returns a configured HTTP client with manual redirect handling.
func New(cfg Config) *http.Client {
	dialer := cfg.Dialer
	if dialer == nil {
		dialer = &net.Dialer{Timeout: cfg.Timeout, KeepAlive: 30 * time.Second}
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	headers := cfg.Headers
	if headers == nil {
		headers = DefaultHeaders()
	}

	transport := &http.Transport{
		// Never route hops through an environment proxy: the guard checks
		// the address actually dialed.
		Proxy:               nil,
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: cfg.Insecure},
		DialContext:         dialer.DialContext,
		TLSHandshakeTimeout: cfg.Timeout,
		DisableKeepAlives:   true,
		ForceAttemptHTTP2:   true,
	}

	client := &http.Client{
		Transport: &headerRoundTripper{
			base:      transport,
			userAgent: ua,
			headers:   headers,
		},
		Timeout: cfg.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			// prevent automatic redirects
			return http.ErrUseLastResponse
		},
	}
	return client
}
