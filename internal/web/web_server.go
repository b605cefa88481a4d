package web

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"log"
	"mime"
	"net"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"github.com/selimozcann/PhishHunter/internal/config"
	"github.com/selimozcann/PhishHunter/internal/model"
	"github.com/selimozcann/PhishHunter/internal/scanner"
	"github.com/selimozcann/PhishHunter/internal/statuscolor"
)

const (
	msgMissingURL = "url not found in request"
	msgInvalidURL = "invalid url or wrong format"
	msgBlocked    = "url points to an internal/private network, not allowed"
	msgScanFailed = "scan failed, please try again or check the url"
)

type scannerI interface {
	Scan(ctx context.Context, raw string) (model.Report, error)
}

type Server struct {
	config  *config.Config
	scanner scannerI
	mu      sync.Mutex
	server  *http.Server
	limiter *rate.Limiter
	logger  *log.Logger
}

type scanRequest struct {
	URL string `json:"url"`
}

type scanResponse struct {
	model.Report
	RiskLabel string              `json:"risk_label"`
	RiskColor string              `json:"risk_color"`
	Advice    config.AdviceConfig `json:"advice"`
}

type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func NewServer(cfg *config.Config, sc scannerI, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	s := &Server{
		config:  cfg,
		scanner: sc,
		logger:  logger,
	}
	if cfg.Web.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.Web.RateLimit), cfg.Web.Burst)
	}
	return s
}

// Handler returns the routed handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /scan", withRateLimit(s.limiter, s.handleScan))
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "phishhunter"})
	})
	return s.withRequestID(s.withRecover(s.withCORS(mux)))
}

func (s *Server) Start() error {
	l, err := net.Listen("tcp", s.config.Web.ListenAddr)
	if err != nil {
		return err
	}
	return s.Serve(l)
}

// Serve accepts connections on l until Stop is called.
func (s *Server) Serve(l net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.Web.ReadTimeout,
		WriteTimeout: s.config.Web.WriteTimeout,
	}
	s.mu.Lock()
	s.server = srv
	s.mu.Unlock()

	s.logger.Printf("web server listening on %s", l.Addr())
	if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()
	if srv != nil {
		return srv.Shutdown(ctx)
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, nil); err != nil {
		s.logger.Printf("[%s] render index: %v", RequestID(r.Context()), err)
	}
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	id := RequestID(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, s.config.Web.MaxBodyBytes)

	raw, err := s.readURL(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "request body too large"})
			return
		}
	}
	if strings.TrimSpace(raw) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: msgMissingURL})
		return
	}

	rep, err := s.scanner.Scan(r.Context(), raw)
	switch {
	case errors.Is(err, scanner.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: msgInvalidURL})
		return
	case errors.Is(err, scanner.ErrBlockedTarget):
		s.logger.Printf("[%s] blocked scan of %q", id, raw)
		writeJSON(w, http.StatusBadRequest, errorBody{Error: msgBlocked})
		return
	case err != nil:
		s.logger.Printf("[%s] scan %q failed: %T: %v", id, raw, err, err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: msgScanFailed, Details: "internal server error"})
		return
	}

	s.logger.Printf("[%s] scanned %s score=%d level=%s", id, rep.Input, rep.Score, rep.Category)
	writeJSON(w, http.StatusOK, scanResponse{
		Report:    rep,
		RiskLabel: riskLabel(rep.Category),
		RiskColor: statuscolor.BadgeColor(rep.Category),
		Advice:    s.config.Advice,
	})
}

// readURL takes the url from a JSON body, falling back to the form field.
func (s *Server) readURL(r *http.Request) (string, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		var req scanRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", err
		}
		return req.URL, nil
	}
	if err := r.ParseForm(); err != nil {
		return "", err
	}
	return r.PostForm.Get("url"), nil
}

func riskLabel(c model.Category) string {
	switch c {
	case model.CategorySafe:
		return "Safe"
	case model.CategorySuspicious:
		return "Caution"
	default:
		return "Dangerous"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var indexTemplate = template.Must(template.New("index").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>PhishHunter</title>
<style>
body { font-family: system-ui, -apple-system, Segoe UI, Roboto, sans-serif; max-width: 720px; margin: 40px auto; padding: 0 16px; }
input[type=url] { width: 100%; padding: 8px; font-size: 16px; }
pre { background: #f3f4f6; padding: 12px; border-radius: 8px; overflow-x: auto; }
</style>
</head>
<body>
<h1>PhishHunter</h1>
<p>Paste a link to follow its redirects and estimate its phishing risk.</p>
<form id="scan" method="post" action="/scan">
  <input type="url" name="url" placeholder="https://example.com/login" required>
  <button type="submit">Scan</button>
</form>
<pre id="result" hidden></pre>
<script>
document.getElementById('scan').addEventListener('submit', async function (ev) {
  ev.preventDefault();
  const out = document.getElementById('result');
  const url = new FormData(ev.target).get('url');
  const resp = await fetch('/scan', {method: 'POST', headers: {'Content-Type': 'application/json'}, body: JSON.stringify({url: url})});
  out.textContent = JSON.stringify(await resp.json(), null, 2);
  out.hidden = false;
});
</script>
</body>
</html>
`))
