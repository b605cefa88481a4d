package trace

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/selimozcann/PhishHunter/internal/guard"
	"github.com/selimozcann/PhishHunter/internal/model"
)

// HostChecker decides whether a host may be fetched. *guard.Guard satisfies it.
type HostChecker interface {
	IsPublicHost(ctx context.Context, host string) bool
}

// Config bounds a resolution.
type Config struct {
	MaxHops int
	Timeout time.Duration
}

// Tracer performs manual redirect tracing.
type Tracer struct {
	Client *http.Client
	Guard  HostChecker
	cfg    Config
}

// New creates a new Tracer.
func New(c *http.Client, g HostChecker, cfg Config) *Tracer {
	if cfg.MaxHops <= 0 {
		cfg.MaxHops = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Tracer{Client: c, Guard: g, cfg: cfg}
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

// Resolve follows redirects starting from target. It never returns an error:
// every failure is recorded on the hop that produced it.
func (t *Tracer) Resolve(ctx context.Context, target string) model.Resolution {
	res := model.Resolution{Start: target, FinalURL: target}
	current := target
	lastValid := target

	for i := 0; i < t.cfg.MaxHops; i++ {
		u, err := url.Parse(current)
		if err != nil {
			res.Hops = append(res.Hops, model.Hop{Index: i, URL: current, Outcome: model.OutcomeError, Error: err.Error()})
			res.FinalURL = current
			break
		}
		if !t.Guard.IsPublicHost(ctx, u.Hostname()) {
			res.Hops = append(res.Hops, model.Hop{Index: i, URL: current, Outcome: model.OutcomeBlocked, Error: model.ReasonBlockedInternal})
			res.FinalURL = lastValid
			break
		}

		hop, next := t.fetch(ctx, i, current, u)
		res.Hops = append(res.Hops, hop)
		if hop.Outcome == model.OutcomeBlocked {
			res.FinalURL = lastValid
			break
		}
		if next == "" {
			res.FinalURL = current
			break
		}
		lastValid = current
		current = next
		res.FinalURL = next
	}
	return res
}

// fetch performs one hop. next is the absolute redirect target, or "" when
// the chain ends here.
func (t *Tracer) fetch(ctx context.Context, i int, raw string, u *url.URL) (hop model.Hop, next string) {
	hop = model.Hop{Index: i, URL: raw}

	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		hop.Outcome = model.OutcomeError
		hop.Error = err.Error()
		return hop, ""
	}
	start := time.Now()
	resp, err := t.Client.Do(req)
	hop.TimeMs = time.Since(start).Milliseconds()
	if err != nil {
		switch {
		case errors.Is(err, guard.ErrBlocked):
			hop.Outcome = model.OutcomeBlocked
			hop.Error = model.ReasonBlockedInternal
		case isTimeout(err):
			hop.Outcome = model.OutcomeTimeout
			hop.Error = "request timeout"
		default:
			hop.Outcome = model.OutcomeError
			hop.Error = err.Error()
		}
		return hop, ""
	}
	// Only the status line and headers are used; the body is never read.
	_ = resp.Body.Close()

	hop.Outcome = model.OutcomeResponse
	hop.Status = resp.StatusCode

	loc := resp.Header.Get("Location")
	if !isRedirect(resp.StatusCode) || loc == "" {
		return hop, ""
	}
	nextURL, err := url.Parse(loc)
	if err != nil {
		hop.Error = fmt.Sprintf("invalid Location header: %v", err)
		return hop, ""
	}
	abs := u.ResolveReference(nextURL)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		hop.Error = fmt.Sprintf("unsupported redirect scheme %q", abs.Scheme)
		return hop, ""
	}
	hop.Location = abs.String()
	return hop, hop.Location
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// Chain returns the visited URLs: the requested URL of every hop that was
// actually fetched, then the final URL, with adjacent duplicates removed.
func Chain(res model.Resolution) []string {
	out := []string{}
	add := func(s string) {
		if s == "" {
			return
		}
		if len(out) > 0 && out[len(out)-1] == s {
			return
		}
		out = append(out, s)
	}
	if len(res.Hops) == 0 {
		add(res.Start)
	}
	for _, h := range res.Hops {
		if h.Outcome == model.OutcomeBlocked {
			continue
		}
		add(h.URL)
	}
	add(res.FinalURL)
	return out
}
