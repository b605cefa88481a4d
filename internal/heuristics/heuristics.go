// Package heuristics derives structural phishing signals from a resolved URL.
// Everything here is pure: no I/O and no hidden state.
package heuristics

import (
	"math"
	"net/url"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/selimozcann/PhishHunter/internal/model"
	"github.com/selimozcann/PhishHunter/internal/util"
)

// List categories understood by the extractor.
const (
	ListSuspiciousTLDs = "suspicious_tlds"
	ListBrandKeywords  = "brand_keywords"
)

// Lists is the injected denylist configuration: category -> set of strings.
type Lists map[string]map[string]struct{}

// NewLists normalises raw configuration lists (lowercase, trimmed, leading dot
// stripped from TLDs).
func NewLists(raw map[string][]string) Lists {
	l := make(Lists, len(raw))
	for category, values := range raw {
		set := make(map[string]struct{}, len(values))
		for _, v := range values {
			v = strings.ToLower(strings.TrimSpace(v))
			if category == ListSuspiciousTLDs {
				v = strings.TrimPrefix(v, ".")
			}
			if v != "" {
				set[v] = struct{}{}
			}
		}
		l[category] = set
	}
	return l
}

// Has reports whether value is in the category.
func (l Lists) Has(category, value string) bool {
	_, ok := l[category][value]
	return ok
}

// Sorted returns a category's members in lexical order.
func (l Lists) Sorted(category string) []string {
	out := make([]string, 0, len(l[category]))
	for v := range l[category] {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Extractor computes FeatureSets against a fixed list configuration.
type Extractor struct {
	lists  Lists
	brands []string
}

// NewExtractor returns an Extractor for lists.
func NewExtractor(lists Lists) *Extractor {
	return &Extractor{lists: lists, brands: lists.Sorted(ListBrandKeywords)}
}

// Extract derives the feature set for finalURL reached through chain.
// SSLPresent is left false; it is filled in after certificate inspection.
func (e *Extractor) Extract(finalURL string, chain []string) model.FeatureSet {
	var scheme, host string
	if u, err := url.Parse(finalURL); err == nil {
		scheme = strings.ToLower(u.Scheme)
		host = strings.ToLower(u.Hostname())
	}

	tld := ""
	if i := strings.LastIndex(host, "."); i >= 0 {
		tld = host[i+1:]
	}

	redirects := len(chain) - 1
	if redirects < 0 {
		redirects = 0
	}

	f := model.FeatureSet{
		Length:        utf8.RuneCountInString(finalURL),
		Redirects:     redirects,
		HasHTTPS:      scheme == "https",
		TLD:           tld,
		SuspiciousTLD: tld != "" && e.lists.Has(ListSuspiciousTLDs, tld),
		Host:          host,
		HostEntropy:   Entropy(host),
	}
	if host != "" {
		f.RegisteredDomain = util.RegisteredDomain(host)
		if uh, ok := util.UnicodeHost(host); ok {
			f.Punycode = true
			f.UnicodeHost = uh
		}
	}
	for _, b := range e.brands {
		if strings.Contains(host, b) {
			f.ContainsBrand = true
			f.MatchedBrand = b
			break
		}
	}
	return f
}

// Entropy returns the Shannon entropy of s in bits per character.
func Entropy(s string) float64 {
	if s == "" {
		return 0
	}
	freq := make(map[rune]int)
	n := 0
	for _, r := range s {
		freq[r]++
		n++
	}
	// Summing in a fixed order keeps the result bit-identical across
	// permutations of s.
	counts := make([]int, 0, len(freq))
	for _, c := range freq {
		counts = append(counts, c)
	}
	sort.Ints(counts)
	var h float64
	for _, c := range counts {
		p := float64(c) / float64(n)
		h -= p * math.Log2(p)
	}
	return h
}
