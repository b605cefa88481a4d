// Package detect flags notable properties of a redirect chain.
package detect

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/selimozcann/PhishHunter/internal/model"
	"github.com/selimozcann/PhishHunter/internal/util"
)

// Finding types.
const (
	TypeSSRFBlocked    = "SSRF_BLOCKED"
	TypeHTTPSDowngrade = "HTTPS_DOWNGRADE"
	TypeTokenLeak      = "TOKEN_LEAK"
	TypeCrossDomain    = "CROSS_DOMAIN"
	TypeChainLoop      = "CHAIN_LOOP"
	TypeChainTooLong   = "CHAIN_TOO_LONG"
)

var tokenKeys = map[string]bool{
	"token":        true,
	"access_token": true,
	"id_token":     true,
	"code":         true,
	"session":      true,
	"bearer":       true,
}

// Blocked reports a hop the guard refused to fetch.
func Blocked(h model.Hop) *model.Finding {
	if h.Outcome != model.OutcomeBlocked {
		return nil
	}
	return &model.Finding{Type: TypeSSRFBlocked, Severity: "high", AtHop: h.Index, Detail: h.URL}
}

// HTTPSDowngrade reports if the scheme changed from https to http.
func HTTPSDowngrade(prev, next *url.URL, hop int) *model.Finding {
	if prev.Scheme == "https" && next.Scheme == "http" {
		return &model.Finding{Type: TypeHTTPSDowngrade, Severity: "medium", AtHop: hop, Detail: prev.String() + " -> " + next.String()}
	}
	return nil
}

// TokenLeakage detects sensitive tokens in query or fragment.
func TokenLeakage(u *url.URL, hop int) *model.Finding {
	for k := range u.Query() {
		if tokenKeys[strings.ToLower(k)] {
			return &model.Finding{Type: TypeTokenLeak, Severity: "medium", AtHop: hop, Detail: k + " in query"}
		}
	}
	if frag := u.Fragment; frag != "" {
		for _, part := range strings.Split(frag, "&") {
			kv := strings.SplitN(part, "=", 2)
			if tokenKeys[strings.ToLower(kv[0])] {
				return &model.Finding{Type: TypeTokenLeak, Severity: "high", AtHop: hop, Detail: kv[0] + " in fragment"}
			}
		}
	}
	return nil
}

// CrossDomain reports a hop that leaves the registered domain of the previous one.
func CrossDomain(prev, next *url.URL, hop int) *model.Finding {
	a, b := util.RegisteredDomain(prev.Hostname()), util.RegisteredDomain(next.Hostname())
	if a == "" || b == "" || a == b {
		return nil
	}
	return &model.Finding{Type: TypeCrossDomain, Severity: "low", AtHop: hop, Detail: a + " -> " + b}
}

// Chain runs every detector over a resolution. Findings are ordered by hop.
func Chain(res model.Resolution, maxHops int) []model.Finding {
	var out []model.Finding
	add := func(f *model.Finding) {
		if f != nil {
			out = append(out, *f)
		}
	}

	seen := make(map[string]int)
	var prev *url.URL
	for _, h := range res.Hops {
		if f := Blocked(h); f != nil {
			add(f)
			continue
		}
		u, err := url.Parse(h.URL)
		if err != nil {
			continue
		}
		add(TokenLeakage(u, h.Index))
		if prev != nil {
			add(HTTPSDowngrade(prev, u, h.Index))
			add(CrossDomain(prev, u, h.Index))
		}
		if first, ok := seen[h.URL]; ok {
			add(&model.Finding{Type: TypeChainLoop, Severity: "medium", AtHop: h.Index,
				Detail: fmt.Sprintf("%s already visited at hop %d", h.URL, first)})
		} else {
			seen[h.URL] = h.Index
		}
		prev = u
	}

	if maxHops > 0 && len(res.Hops) >= maxHops {
		last := res.Hops[len(res.Hops)-1]
		if last.Outcome == model.OutcomeResponse && last.Redirected() {
			add(&model.Finding{Type: TypeChainTooLong, Severity: "medium", AtHop: last.Index,
				Detail: fmt.Sprintf("stopped after %d hops", len(res.Hops))})
		}
	}
	return out
}
