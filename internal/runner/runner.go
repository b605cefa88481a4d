package runner

import (
	"context"
	"fmt"
	"io"
	"log"
	"runtime/debug"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/selimozcann/PhishHunter/internal/model"
)

// Scanner is the single-URL pipeline the runner fans out over.
type Scanner interface {
	Scan(ctx context.Context, raw string) (model.Report, error)
}

// Config holds settings for the runner.
type Config struct {
	Threads   int
	RateLimit int // scans per second, 0 = unlimited
	Logger    *log.Logger
}

// Runner coordinates concurrent scans.
type Runner struct {
	cfg     Config
	scanner Scanner
	limiter *rate.Limiter
}

// New creates a new Runner.
func New(cfg Config, s Scanner) *Runner {
	if cfg.Threads <= 0 {
		cfg.Threads = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard, "", 0)
	}
	r := &Runner{cfg: cfg, scanner: s}
	if cfg.RateLimit > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	return r
}

// Run scans targets and returns one result per target, in input order.
// A failing or panicking target never affects the others.
func (r *Runner) Run(ctx context.Context, targets []string) []model.Result {
	out := make([]model.Result, len(targets))
	g := &errgroup.Group{}
	g.SetLimit(r.cfg.Threads)

	for i, t := range targets {
		out[i].Target = t
		if ctx.Err() != nil {
			out[i].Error = ctx.Err().Error()
			continue
		}
		g.Go(func() error {
			out[i] = r.scanOne(ctx, t)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (r *Runner) scanOne(ctx context.Context, target string) (res model.Result) {
	res.Target = target
	defer func() {
		if p := recover(); p != nil {
			r.cfg.Logger.Printf("panic scanning %s: %v\n%s", target, p, debug.Stack())
			res = model.Result{Target: target, Error: "internal error"}
		}
	}()

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			res.Error = err.Error()
			return res
		}
	}
	rep, err := r.scanner.Scan(ctx, target)
	if err != nil {
		res.Error = fmt.Sprintf("%v", err)
		return res
	}
	res.Report = &rep
	return res
}
