package model

import "time"

// HopOutcome is the kind of result a single fetch attempt produced.
type HopOutcome string

const (
	OutcomeResponse HopOutcome = "response"
	OutcomeTimeout  HopOutcome = "timeout"
	OutcomeBlocked  HopOutcome = "blocked"
	OutcomeError    HopOutcome = "error"
)

// ReasonBlockedInternal is recorded on hops rejected by the SSRF guard.
const ReasonBlockedInternal = "blocked-internal-target"

// Hop represents a single fetch attempt in a redirect chain.
// Location is only set when the hop answered with a followed 3xx.
type Hop struct {
	Index    int        `json:"index"`
	URL      string     `json:"url"`
	Outcome  HopOutcome `json:"outcome"`
	Status   int        `json:"status,omitempty"`
	Location string     `json:"location,omitempty"`
	Error    string     `json:"error,omitempty"`
	TimeMs   int64      `json:"time_ms"`
}

// Redirected reports whether the hop handed over to a next URL.
func (h Hop) Redirected() bool {
	return h.Outcome == OutcomeResponse && h.Location != ""
}

// Resolution is the outcome of walking a redirect chain.
type Resolution struct {
	Start    string `json:"start"`
	FinalURL string `json:"final_url"`
	Hops     []Hop  `json:"hops"`
}

// FeatureSet holds the structural signals derived from the final URL.
// SSLPresent is filled in after certificate inspection via WithSSL.
type FeatureSet struct {
	Length           int     `json:"length"`
	Redirects        int     `json:"redirects"`
	HasHTTPS         bool    `json:"has_https"`
	TLD              string  `json:"tld"`
	SuspiciousTLD    bool    `json:"suspicious_tld"`
	ContainsBrand    bool    `json:"contains_brand"`
	MatchedBrand     string  `json:"matched_brand,omitempty"`
	Host             string  `json:"host"`
	RegisteredDomain string  `json:"registered_domain,omitempty"`
	UnicodeHost      string  `json:"unicode_host,omitempty"`
	Punycode         bool    `json:"punycode"`
	HostEntropy      float64 `json:"host_entropy"`
	SSLPresent       bool    `json:"ssl_present"`
}

// WithSSL returns a copy of f with the certificate presence recorded.
func (f FeatureSet) WithSSL(present bool) FeatureSet {
	f.SSLPresent = present
	return f
}

// CertFailure explains why no usable certificate was obtained.
type CertFailure string

const (
	CertNotHTTPS CertFailure = "not-https"
	CertNoCert   CertFailure = "no-cert"
	CertError    CertFailure = "error"
)

// CertificateInfo is what the inspector learned from the peer leaf certificate.
type CertificateInfo struct {
	Valid         bool        `json:"valid"`
	Issuer        string      `json:"issuer,omitempty"`
	Subject       string      `json:"subject,omitempty"`
	NotBefore     string      `json:"not_before,omitempty"`
	NotAfter      string      `json:"not_after,omitempty"`
	ExpiresInDays *int        `json:"expires_in_days,omitempty"`
	SelfSigned    bool        `json:"self_signed,omitempty"`
	Expired       bool        `json:"expired,omitempty"`
	HostnameMatch bool        `json:"hostname_match,omitempty"`
	Reason        CertFailure `json:"reason,omitempty"`
}

// Category is one of three ordered risk tiers.
type Category string

const (
	CategorySafe       Category = "safe"
	CategorySuspicious Category = "suspicious"
	CategoryDangerous  Category = "dangerous"
)

// Contribution is one triggered scoring rule.
type Contribution struct {
	Signal      string `json:"signal"`
	Points      int    `json:"points"`
	Explanation string `json:"explanation"`
}

// RiskAssessment is the scorer's verdict. Explanations[i] belongs to
// Contributions[i].
type RiskAssessment struct {
	Score         int            `json:"risk_score"`
	Category      Category       `json:"risk_level"`
	Explanations  []string       `json:"explanation"`
	Contributions []Contribution `json:"contributions"`
}

// Finding represents an unscored observation about the redirect chain.
// Severity uses a low/medium/high scale for quick triage.
type Finding struct {
	Type     string `json:"type"`
	AtHop    int    `json:"at_hop"`
	Severity string `json:"severity"`
	Detail   string `json:"detail"`
}

// Report is the full result of scanning one URL.
type Report struct {
	ID            string   `json:"scan_id"`
	Input         string   `json:"input"`
	FinalURL      string   `json:"final_url"`
	RedirectChain []string `json:"redirect_chain"`
	Domain        string   `json:"domain"`
	TLD           string   `json:"tld"`
	RedirectCount int      `json:"redirect_count"`
	RiskAssessment
	SSL        CertificateInfo `json:"ssl"`
	Heuristics FeatureSet      `json:"heuristics"`
	Hops       []Hop           `json:"hops"`
	Findings   []Finding       `json:"findings,omitempty"`
	StartedAt  time.Time       `json:"started_at"`
	DurationMs int64           `json:"duration_ms"`
}

// Result is the outcome of one target in a batch run.
type Result struct {
	Target string  `json:"target"`
	Report *Report `json:"report,omitempty"`
	Error  string  `json:"error,omitempty"`
}
