package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/selimozcann/PhishHunter/internal/model"
)

func testResults() []model.Result {
	return []model.Result{
		{Target: "https://example.com", Report: &model.Report{
			Input: "https://example.com", FinalURL: "https://example.com",
			RiskAssessment: model.RiskAssessment{Score: 0, Category: model.CategorySafe},
			SSL:            model.CertificateInfo{Valid: true, Issuer: "Example CA"},
		}},
		{Target: "http://paypal-login.tk", Report: &model.Report{
			Input: "http://paypal-login.tk", FinalURL: "http://paypal-login.tk",
			RiskAssessment: model.RiskAssessment{Score: 95, Category: model.CategoryDangerous},
			SSL:            model.CertificateInfo{Reason: model.CertNotHTTPS},
		}},
		{Target: "ftp://x", Error: "invalid url"},
	}
}

func TestCollectTargets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	if err := os.WriteFile(path, []byte("https://b.example\n# skip\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := collectTargets([]string{"https://a.example"}, path)
	if err != nil {
		t.Fatalf("collectTargets: %v", err)
	}
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Fatalf("unexpected targets %v", got)
	}
	if _, err := collectTargets(nil, ""); err == nil {
		t.Fatal("expected error without targets")
	}
	if _, err := collectTargets(nil, filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestPrintConsole(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	printConsole(&buf, testResults(), scanOptions{summary: true, onlyRisky: true})
	out := buf.String()
	if strings.Contains(out, "https://example.com ->") {
		t.Fatalf("safe target printed with only-risky:\n%s", out)
	}
	for _, want := range []string{"95 dangerous", "error: invalid url", "Total 3 | safe 1 | suspicious 0 | dangerous 1 | errors 1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteReports(t *testing.T) {
	dir := t.TempDir()
	jsonl := filepath.Join(dir, "out", "results.jsonl")
	if err := writeJSONLFile(jsonl, testResults()); err != nil {
		t.Fatalf("writeJSONLFile: %v", err)
	}
	data, err := os.ReadFile(jsonl)
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), "\n"); n != 3 {
		t.Fatalf("expected 3 JSONL lines, got %d", n)
	}

	if err := ensureDir("plain.html"); err != nil {
		t.Fatalf("ensureDir on bare file name: %v", err)
	}
	params := buildParamsMap(scanOptions{file: "urls.txt", threads: 4}, 3)
	if params["file"] != "urls.txt" || params["threads"] != "4" || params["targets"] != "3" {
		t.Fatalf("unexpected params %v", params)
	}
}
