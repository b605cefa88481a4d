// Package scanner wires the SSRF guard, redirect resolver, feature extractor,
// certificate inspector and scorer into a single scan of one URL.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/selimozcann/PhishHunter/internal/certinfo"
	"github.com/selimozcann/PhishHunter/internal/config"
	"github.com/selimozcann/PhishHunter/internal/detect"
	"github.com/selimozcann/PhishHunter/internal/guard"
	"github.com/selimozcann/PhishHunter/internal/heuristics"
	"github.com/selimozcann/PhishHunter/internal/httpclient"
	"github.com/selimozcann/PhishHunter/internal/model"
	"github.com/selimozcann/PhishHunter/internal/scoring"
	"github.com/selimozcann/PhishHunter/internal/trace"
)

// MaxURLLength is the longest input accepted by Check.
const MaxURLLength = 2048

var (
	// ErrInvalidInput means the input is not an absolute http(s) URL.
	ErrInvalidInput = errors.New("invalid url")
	// ErrBlockedTarget means the input host resolves to internal network space.
	ErrBlockedTarget = errors.New("url points to an internal or private network")
)

// Scanner runs the full pipeline. It is safe for concurrent use.
type Scanner struct {
	guard     *guard.Guard
	tracer    *trace.Tracer
	extractor *heuristics.Extractor
	inspector *certinfo.Inspector
	maxHops   int
	logger    *log.Logger
	now       func() time.Time
}

type options struct {
	resolver guard.Resolver
	logger   *log.Logger
	now      func() time.Time
}

// Option customises a Scanner.
type Option func(*options)

// WithResolver replaces the DNS resolver used by the guard.
func WithResolver(r guard.Resolver) Option {
	return func(o *options) { o.resolver = r }
}

// WithLogger sets the logger used for per-scan diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock sets the time source for timestamps and certificate expiry.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New builds a Scanner from cfg.
func New(cfg *config.Config, opts ...Option) (*Scanner, error) {
	o := options{
		logger: log.New(io.Discard, "", 0),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	permit, err := guard.ParsePermit(cfg.SSRF.AllowCIDRs)
	if err != nil {
		return nil, err
	}
	g := guard.New(o.resolver, permit)

	client := httpclient.New(httpclient.Config{
		Timeout:   cfg.Resolver.Timeout,
		UserAgent: cfg.Resolver.UserAgent,
		Insecure:  cfg.Resolver.InsecureTLS,
		Dialer:    g.Dialer(cfg.Resolver.Timeout),
	})
	return &Scanner{
		guard: g,
		tracer: trace.New(client, g, trace.Config{
			MaxHops: cfg.Resolver.MaxHops,
			Timeout: cfg.Resolver.Timeout,
		}),
		extractor: heuristics.NewExtractor(heuristics.NewLists(cfg.Lists)),
		inspector: certinfo.New(certinfo.Config{
			Timeout: cfg.TLS.Timeout,
			Dialer:  g.Dialer(cfg.TLS.Timeout),
			Now:     o.now,
		}),
		maxHops: cfg.Resolver.MaxHops,
		logger:  o.logger,
		now:     o.now,
	}, nil
}

// Check validates raw input and returns the trimmed URL. It fails with
// ErrInvalidInput or ErrBlockedTarget.
func (s *Scanner) Check(ctx context.Context, raw string) (string, error) {
	target := strings.TrimSpace(raw)
	if target == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidInput)
	}
	if utf8.RuneCountInString(target) > MaxURLLength {
		return "", fmt.Errorf("%w: longer than %d characters", ErrInvalidInput, MaxURLLength)
	}
	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: scheme must be http or https", ErrInvalidInput)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidInput)
	}
	if !s.guard.IsPublicHost(ctx, u.Hostname()) {
		return "", fmt.Errorf("%w: %s", ErrBlockedTarget, u.Hostname())
	}
	return target, nil
}

// Scan analyses one URL. Only ErrInvalidInput and ErrBlockedTarget are
// returned; every network failure ends up in the report.
func (s *Scanner) Scan(ctx context.Context, raw string) (model.Report, error) {
	started := s.now()
	target, err := s.Check(ctx, raw)
	if err != nil {
		return model.Report{}, err
	}
	id := uuid.New().String()

	res := s.tracer.Resolve(ctx, target)
	chain := trace.Chain(res)
	features := s.extractor.Extract(res.FinalURL, chain)
	cert := s.inspector.Inspect(ctx, res.FinalURL)
	features = features.WithSSL(cert.Valid)
	risk := scoring.Score(features, cert)

	rep := model.Report{
		ID:             id,
		Input:          target,
		FinalURL:       res.FinalURL,
		RedirectChain:  chain,
		Domain:         features.Host,
		TLD:            dotted(features.TLD),
		RedirectCount:  features.Redirects,
		RiskAssessment: risk,
		SSL:            cert,
		Heuristics:     features,
		Hops:           res.Hops,
		Findings:       detect.Chain(res, s.maxHops),
		StartedAt:      started,
	}
	rep.DurationMs = s.now().Sub(started).Milliseconds()
	s.logger.Printf("scan %s: %s -> %s score=%d level=%s hops=%d", id, target, res.FinalURL, risk.Score, risk.Category, len(res.Hops))
	return rep, nil
}

func dotted(tld string) string {
	if tld == "" {
		return ""
	}
	return "." + tld
}
