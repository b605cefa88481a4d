package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/selimozcann/PhishHunter/internal/config"
	"github.com/selimozcann/PhishHunter/internal/model"
	"github.com/selimozcann/PhishHunter/internal/scanner"
)

type fakeScanner struct {
	got string
}

func (f *fakeScanner) Scan(ctx context.Context, raw string) (model.Report, error) {
	f.got = raw
	switch raw {
	case "not-a-url":
		return model.Report{}, fmt.Errorf("%w: scheme must be http or https", scanner.ErrInvalidInput)
	case "http://10.0.0.1/":
		return model.Report{}, fmt.Errorf("%w: 10.0.0.1", scanner.ErrBlockedTarget)
	case "http://boom.example/":
		return model.Report{}, errors.New("disk on fire")
	case "http://panic.example/":
		panic("unexpected")
	}
	return model.Report{
		ID:            "scan-1",
		Input:         raw,
		FinalURL:      "https://paypal-login.tk/",
		RedirectChain: []string{raw, "https://paypal-login.tk/"},
		Domain:        "paypal-login.tk",
		TLD:           ".tk",
		RedirectCount: 1,
		RiskAssessment: model.RiskAssessment{
			Score:        80,
			Category:     model.CategoryDangerous,
			Explanations: []string{"High-risk TLD (.tk), frequently used for phishing"},
		},
	}, nil
}

func newTestServer(t *testing.T, mutate func(*config.Config)) (*Server, *fakeScanner) {
	t.Helper()
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("default config: %v", err)
	}
	cfg.Web.RateLimit = 0
	if mutate != nil {
		mutate(cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	fs := &fakeScanner{}
	return NewServer(cfg, fs, nil), fs
}

func postJSON(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/scan", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body
}

func TestScanJSON(t *testing.T) {
	s, fs := newTestServer(t, nil)
	rec := postJSON(s.Handler(), `{"url":"http://bit.example/x"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if fs.got != "http://bit.example/x" {
		t.Fatalf("scanner received %q", fs.got)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Fatal("missing request id header")
	}

	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"input", "final_url", "redirect_chain", "domain", "tld", "redirect_count",
		"risk_score", "risk_level", "risk_label", "risk_color", "explanation", "ssl", "heuristics", "advice", "scan_id"} {
		if _, ok := got[key]; !ok {
			t.Errorf("response missing %q", key)
		}
	}
	if got["risk_color"] != "red" || got["risk_label"] != "Dangerous" || got["tld"] != ".tk" {
		t.Fatalf("unexpected response %v", got)
	}
	advice, _ := got["advice"].(map[string]any)
	if dos, _ := advice["do"].([]any); len(dos) == 0 {
		t.Fatalf("advice missing: %v", got["advice"])
	}
}

func TestScanForm(t *testing.T) {
	s, fs := newTestServer(t, nil)
	form := url.Values{"url": {"http://bit.example/form"}}
	req := httptest.NewRequest(http.MethodPost, "/scan", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || fs.got != "http://bit.example/form" {
		t.Fatalf("status = %d, scanner got %q", rec.Code, fs.got)
	}
}

func TestScanErrors(t *testing.T) {
	s, _ := newTestServer(t, nil)
	h := s.Handler()
	tests := []struct {
		name   string
		body   string
		status int
		msg    string
	}{
		{"missing", `{}`, http.StatusBadRequest, msgMissingURL},
		{"blank", `{"url":"   "}`, http.StatusBadRequest, msgMissingURL},
		{"garbage json", `{"url":`, http.StatusBadRequest, msgMissingURL},
		{"invalid", `{"url":"not-a-url"}`, http.StatusBadRequest, msgInvalidURL},
		{"blocked", `{"url":"http://10.0.0.1/"}`, http.StatusBadRequest, msgBlocked},
		{"internal", `{"url":"http://boom.example/"}`, http.StatusInternalServerError, msgScanFailed},
		{"panic", `{"url":"http://panic.example/"}`, http.StatusInternalServerError, msgScanFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(h, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			body := decodeError(t, rec)
			if body.Error != tt.msg {
				t.Fatalf("error = %q, want %q", body.Error, tt.msg)
			}
			if strings.Contains(body.Details, "disk on fire") {
				t.Fatalf("internal detail leaked: %+v", body)
			}
		})
	}
}

func TestBodyTooLarge(t *testing.T) {
	s, _ := newTestServer(t, func(c *config.Config) { c.Web.MaxBodyBytes = 16 })
	rec := postJSON(s.Handler(), `{"url":"http://bit.example/a-very-long-path"}`)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	s, _ := newTestServer(t, func(c *config.Config) {
		c.Web.RateLimit = 0.001
		c.Web.Burst = 1
	})
	h := s.Handler()
	if rec := postJSON(h, `{"url":"http://bit.example/x"}`); rec.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rec.Code)
	}
	if rec := postJSON(h, `{"url":"http://bit.example/x"}`); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rec.Code)
	}
}

func TestIndexHealthAndCORS(t *testing.T) {
	s, _ := newTestServer(t, nil)
	h := s.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `action="/scan"`) {
		t.Fatalf("index: %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("health: %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/scan", nil))
	if rec.Code != http.StatusOK || rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("preflight: %d %v", rec.Code, rec.Header())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/scan", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET /scan status = %d", rec.Code)
	}
}

func TestServeStop(t *testing.T) {
	s, _ := newTestServer(t, nil)
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- s.Serve(l) }()

	resp, err := http.Get("http://" + l.Addr().String() + "/health")
	if err != nil {
		t.Fatalf("health request: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d", resp.StatusCode)
	}

	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("serve returned %v", err)
	}
}
