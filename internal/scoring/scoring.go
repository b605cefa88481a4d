// Package scoring turns extracted signals into a clamped risk score.
package scoring

import (
	"fmt"

	"github.com/selimozcann/PhishHunter/internal/model"
)

// Signal names, in canonical evaluation order.
const (
	SignalURLLength     = "url_length"
	SignalRedirects     = "redirects"
	SignalNoHTTPS       = "no_https"
	SignalNoCertificate = "no_certificate"
	SignalSuspiciousTLD = "suspicious_tld"
	SignalBrandKeyword  = "brand_keyword"
	SignalHostEntropy   = "host_entropy"
)

// Thresholds and weights.
const (
	LongURL         = 100
	MediumURL       = 75
	ManyRedirects   = 3
	SomeRedirects   = 2
	EntropyLimit    = 3.5
	SuspiciousScore = 40
	DangerousScore  = 75
	MaxScore        = 100
)

type rule func(f model.FeatureSet, cert model.CertificateInfo) (model.Contribution, bool)

var rules = []rule{
	func(f model.FeatureSet, _ model.CertificateInfo) (model.Contribution, bool) {
		switch {
		case f.Length > LongURL:
			return model.Contribution{Signal: SignalURLLength, Points: 20,
				Explanation: fmt.Sprintf("URL is very long (%d characters), a common way to hide the real destination", f.Length)}, true
		case f.Length > MediumURL:
			return model.Contribution{Signal: SignalURLLength, Points: 10,
				Explanation: fmt.Sprintf("URL is fairly long (%d characters)", f.Length)}, true
		}
		return model.Contribution{}, false
	},
	func(f model.FeatureSet, _ model.CertificateInfo) (model.Contribution, bool) {
		switch {
		case f.Redirects >= ManyRedirects:
			return model.Contribution{Signal: SignalRedirects, Points: 25,
				Explanation: fmt.Sprintf("Many redirects (%dx), typical of detection evasion", f.Redirects)}, true
		case f.Redirects == SomeRedirects:
			return model.Contribution{Signal: SignalRedirects, Points: 15,
				Explanation: fmt.Sprintf("Several redirects (%dx)", f.Redirects)}, true
		}
		return model.Contribution{}, false
	},
	func(f model.FeatureSet, _ model.CertificateInfo) (model.Contribution, bool) {
		if f.HasHTTPS {
			return model.Contribution{}, false
		}
		return model.Contribution{Signal: SignalNoHTTPS, Points: 25,
			Explanation: "Does not use HTTPS, the connection is not encrypted"}, true
	},
	func(f model.FeatureSet, cert model.CertificateInfo) (model.Contribution, bool) {
		if f.SSLPresent {
			return model.Contribution{}, false
		}
		msg := "TLS certificate is missing or unusable"
		if cert.Reason != "" {
			msg = fmt.Sprintf("%s (%s)", msg, cert.Reason)
		}
		return model.Contribution{Signal: SignalNoCertificate, Points: 15, Explanation: msg}, true
	},
	func(f model.FeatureSet, _ model.CertificateInfo) (model.Contribution, bool) {
		if !f.SuspiciousTLD {
			return model.Contribution{}, false
		}
		return model.Contribution{Signal: SignalSuspiciousTLD, Points: 20,
			Explanation: fmt.Sprintf("High-risk TLD (.%s), frequently used for phishing", f.TLD)}, true
	},
	func(f model.FeatureSet, _ model.CertificateInfo) (model.Contribution, bool) {
		if !f.ContainsBrand {
			return model.Contribution{}, false
		}
		msg := "Domain contains a well-known brand keyword, beware of impersonation"
		if f.MatchedBrand != "" {
			msg = fmt.Sprintf("Domain contains the brand keyword %q, beware of impersonation", f.MatchedBrand)
		}
		return model.Contribution{Signal: SignalBrandKeyword, Points: 15, Explanation: msg}, true
	},
	func(f model.FeatureSet, _ model.CertificateInfo) (model.Contribution, bool) {
		if f.HostEntropy <= EntropyLimit {
			return model.Contribution{}, false
		}
		return model.Contribution{Signal: SignalHostEntropy, Points: 10,
			Explanation: fmt.Sprintf("Hostname looks random (entropy: %.2f)", f.HostEntropy)}, true
	},
}

// Score combines features and certificate info into a risk assessment.
// It is total and deterministic.
func Score(f model.FeatureSet, cert model.CertificateInfo) model.RiskAssessment {
	out := model.RiskAssessment{
		Explanations:  []string{},
		Contributions: []model.Contribution{},
	}
	total := 0
	for _, r := range rules {
		c, ok := r(f, cert)
		if !ok {
			continue
		}
		total += c.Points
		out.Contributions = append(out.Contributions, c)
		out.Explanations = append(out.Explanations, c.Explanation)
	}
	out.Score = clamp(total)
	out.Category = CategoryFor(out.Score)
	return out
}

// CategoryFor maps a clamped score to its tier.
func CategoryFor(score int) model.Category {
	switch {
	case score < SuspiciousScore:
		return model.CategorySafe
	case score < DangerousScore:
		return model.CategorySuspicious
	default:
		return model.CategoryDangerous
	}
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}
