package output

import (
	"html/template"
	"io"
	"sort"
	"time"

	"github.com/selimozcann/PhishHunter/internal/model"
)

// Record represents one line in the JSONL report.
type Record struct {
	Timestamp     string          `json:"timestamp,omitempty"`
	ScanID        string          `json:"scan_id,omitempty"`
	InputURL      string          `json:"input_url"`
	FinalURL      string          `json:"final_url,omitempty"`
	RiskScore     int             `json:"risk_score"`
	RiskLevel     model.Category  `json:"risk_level,omitempty"`
	RedirectChain []string        `json:"redirect_chain"`
	RedirectCount int             `json:"redirect_count"`
	Explanation   []string        `json:"explanation"`
	SSLReason     string          `json:"ssl_reason,omitempty"`
	Findings      []model.Finding `json:"findings,omitempty"`
	DurationMs    int64           `json:"duration_ms"`
	Error         string          `json:"error,omitempty"`
}

// Summary contains counters for the HTML summary section.
type Summary struct {
	TotalTargets int
	Safe         int
	Suspicious   int
	Dangerous    int
	Errors       int
}

// ResultView is used by the HTML template with pre-computed fields.
type ResultView struct {
	Index        int
	InputURL     string
	FinalURL     string
	Score        int
	Level        model.Category
	Explanations []string
	Findings     []model.Finding
	Hops         []model.Hop
	SSL          model.CertificateInfo
	Timestamp    time.Time
	DurationMs   int64
	Error        string
}

// PageData provides the full context for the HTML report.
type PageData struct {
	Title         string
	GeneratedAt   time.Time
	Params        map[string]string
	OrderedParams []Param
	Summary       Summary
	Results       []ResultView
}

// Param represents a rendered CLI argument/value pair.
type Param struct {
	Key   string
	Value string
}

// BuildRecord converts a model.Result into a Record for JSONL output.
func BuildRecord(res model.Result) Record {
	rec := Record{
		InputURL:      res.Target,
		RedirectChain: []string{},
		Explanation:   []string{},
		Error:         res.Error,
	}
	if r := res.Report; r != nil {
		rec.Timestamp = r.StartedAt.UTC().Format(time.RFC3339)
		rec.ScanID = r.ID
		rec.FinalURL = r.FinalURL
		rec.RiskScore = r.Score
		rec.RiskLevel = r.Category
		rec.RedirectChain = append(rec.RedirectChain, r.RedirectChain...)
		rec.RedirectCount = r.RedirectCount
		rec.Explanation = append(rec.Explanation, r.Explanations...)
		rec.SSLReason = string(r.SSL.Reason)
		rec.Findings = append([]model.Finding(nil), r.Findings...)
		rec.DurationMs = r.DurationMs
	}
	return rec
}

// BuildResultView converts a model.Result into a ResultView for HTML rendering.
func BuildResultView(idx int, res model.Result) ResultView {
	v := ResultView{Index: idx, InputURL: res.Target, Error: res.Error}
	if r := res.Report; r != nil {
		v.FinalURL = r.FinalURL
		v.Score = r.Score
		v.Level = r.Category
		v.Explanations = append([]string(nil), r.Explanations...)
		v.Findings = append([]model.Finding(nil), r.Findings...)
		v.Hops = append([]model.Hop(nil), r.Hops...)
		v.SSL = r.SSL
		v.Timestamp = r.StartedAt
		v.DurationMs = r.DurationMs
	}
	return v
}

// BuildSummary derives high level counters from the results.
func BuildSummary(results []model.Result) Summary {
	sum := Summary{TotalTargets: len(results)}
	for _, res := range results {
		if res.Report == nil {
			sum.Errors++
			continue
		}
		switch res.Report.Category {
		case model.CategorySafe:
			sum.Safe++
		case model.CategorySuspicious:
			sum.Suspicious++
		case model.CategoryDangerous:
			sum.Dangerous++
		}
	}
	return sum
}

// IsRisky reports whether a result deserves attention in filtered output.
func IsRisky(res model.Result) bool {
	return res.Report != nil && res.Report.Category != model.CategorySafe
}

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"formatTime": func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
	"levelClass": func(c model.Category) string {
		if c == "" {
			return "error"
		}
		return string(c)
	},
}).Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
:root { color-scheme: light dark; }
body { font-family: system-ui, -apple-system, Segoe UI, Roboto, sans-serif; margin: 24px; background:#fafafa; color:#111; }
h1 { font-size: 26px; margin: 0 0 8px; }
h2 { font-size:20px; margin:0 0 12px; }
.section { border:1px solid #e5e7eb; border-radius:16px; padding:16px 20px; margin-bottom:18px; background:#fff; }
.summary-grid { display:grid; gap:12px; grid-template-columns: repeat(auto-fit,minmax(160px,1fr)); }
.summary-card { padding:12px; border-radius:12px; border:1px solid #cbd5f5; }
.summary-card .badge { float:right; padding:2px 10px; border-radius:999px; background:#4f46e5; color:#fff; font-size:12px; }
.meta { color:#6b7280; font-size:12px; }
.result { border-top:1px solid #e5e7eb; padding-top:12px; margin-top:12px; }
.level { display:inline-block; padding:2px 8px; border-radius:999px; font-size:12px; margin-left:6px; color:#fff; }
.level.safe { background:#16a34a; }
.level.suspicious { background:#ca8a04; }
.level.dangerous { background:#dc2626; }
.level.error { background:#6b7280; }
.table { width:100%; border-collapse:collapse; font-size:14px; }
.table th, .table td { border-bottom:1px solid #e5e7eb; padding:6px 8px; text-align:left; }
.url { font-family: ui-monospace, SFMono-Regular, Menlo, Consolas, monospace; font-size:13px; }
.footer { text-align:center; font-size:12px; color:#6b7280; margin-top:24px; }
</style>
</head>
<body>
<header>
  <h1>{{.Title}}</h1>
  <p class="meta">Generated at {{formatTime .GeneratedAt}}</p>
</header>
<section id="summary" class="section">
  <h2>Summary</h2>
  <div class="summary-grid">
    <div class="summary-card"><strong>Total Targets</strong><span class="badge">{{.Summary.TotalTargets}}</span></div>
    <div class="summary-card"><strong>Safe</strong><span class="badge">{{.Summary.Safe}}</span></div>
    <div class="summary-card"><strong>Suspicious</strong><span class="badge">{{.Summary.Suspicious}}</span></div>
    <div class="summary-card"><strong>Dangerous</strong><span class="badge">{{.Summary.Dangerous}}</span></div>
    <div class="summary-card"><strong>Errors</strong><span class="badge">{{.Summary.Errors}}</span></div>
  </div>
</section>
{{if .OrderedParams}}
<section id="parameters" class="section">
  <h2>Parameters</h2>
  <dl>
  {{- range .OrderedParams }}
    <dt>{{.Key}}</dt>
    <dd><span class="url">{{.Value}}</span></dd>
  {{- end }}
  </dl>
</section>
{{end}}
<section id="results" class="section">
  <h2>Results</h2>
  {{range .Results}}
  <div class="result">
    <h3><span class="url">{{.InputURL}}</span><span class="level {{levelClass .Level}}">{{if .Error}}error{{else}}{{.Level}} {{.Score}}/100{{end}}</span></h3>
    {{if .Error}}
      <p class="meta">Error: {{.Error}}</p>
    {{else}}
      <p>Final URL: <span class="url">{{.FinalURL}}</span></p>
      {{if .Explanations}}
      <ul>
        {{range .Explanations}}<li>{{.}}</li>{{end}}
      </ul>
      {{end}}
      {{if .SSL.Valid}}
        <p class="meta">Certificate issued by {{.SSL.Issuer}}, expires {{.SSL.NotAfter}}</p>
      {{else}}
        <p class="meta">No usable certificate ({{.SSL.Reason}})</p>
      {{end}}
      {{if .Findings}}
      <ul>
        {{range .Findings}}<li><strong>{{.Severity}}</strong>: {{.Type}} at hop {{.AtHop}} ({{.Detail}})</li>{{end}}
      </ul>
      {{end}}
      <table class="table">
        <thead><tr><th>#</th><th>URL</th><th>Outcome</th><th>Status</th><th>Time (ms)</th></tr></thead>
        <tbody>
        {{range .Hops}}
          <tr><td>{{.Index}}</td><td class="url">{{.URL}}</td><td>{{.Outcome}}{{if .Error}} ({{.Error}}){{end}}</td><td>{{.Status}}</td><td>{{.TimeMs}}</td></tr>
        {{end}}
        </tbody>
      </table>
      <p class="meta">Duration {{.DurationMs}}ms • Started {{formatTime .Timestamp}}</p>
    {{end}}
  </div>
  {{end}}
</section>
<footer class="footer">
  PhishHunter report generated at {{formatTime .GeneratedAt}}
</footer>
</body>
</html>
`))

// RenderHTML renders the HTML report using the provided data.
func RenderHTML(w io.Writer, data PageData) error {
	if data.Params != nil {
		keys := make([]string, 0, len(data.Params))
		for k := range data.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		ordered := make([]Param, 0, len(keys))
		for _, k := range keys {
			ordered = append(ordered, Param{Key: k, Value: data.Params[k]})
		}
		data.OrderedParams = ordered
	}
	return htmlTemplate.Execute(w, data)
}

// BuildPage assembles PageData for a finished batch.
func BuildPage(title string, generated time.Time, params map[string]string, results []model.Result) PageData {
	views := make([]ResultView, 0, len(results))
	for i, r := range results {
		views = append(views, BuildResultView(i, r))
	}
	return PageData{
		Title:       title,
		GeneratedAt: generated,
		Params:      params,
		Summary:     BuildSummary(results),
		Results:     views,
	}
}
