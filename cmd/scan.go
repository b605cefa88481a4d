package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/selimozcann/PhishHunter/internal/model"
	"github.com/selimozcann/PhishHunter/internal/output"
	"github.com/selimozcann/PhishHunter/internal/runner"
	"github.com/selimozcann/PhishHunter/internal/scanner"
	"github.com/selimozcann/PhishHunter/internal/statuscolor"
)

type scanOptions struct {
	file        string
	threads     int
	rateLimit   int
	verbose     bool
	silent      bool
	summary     bool
	onlyRisky   bool
	outputJSONL string
	outputHTML  string
}

func newScanCmd() *cobra.Command {
	var opts scanOptions
	c := &cobra.Command{
		Use:   "scan [url...]",
		Short: "Scan one or more URLs from arguments or a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, opts, args)
		},
	}
	f := c.Flags()
	f.StringVarP(&opts.file, "file", "f", "", "Input file, one URL per line")
	f.IntVarP(&opts.threads, "threads", "t", 0, "Concurrent scans (default from config)")
	f.IntVar(&opts.rateLimit, "rl", -1, "Global rate limit in scans per second (default from config)")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Log pipeline diagnostics to stderr")
	f.BoolVar(&opts.silent, "silent", false, "Suppress console output")
	f.BoolVar(&opts.summary, "summary", false, "Show one-line summary per target")
	f.BoolVar(&opts.onlyRisky, "only-risky", false, "Only print suspicious, dangerous or failed targets")
	f.StringVarP(&opts.outputJSONL, "output", "o", "", "JSONL output file")
	f.StringVar(&opts.outputHTML, "html", "", "HTML report output file")
	return c
}

func collectTargets(args []string, file string) ([]string, error) {
	targets := append([]string(nil), args...)
	if file != "" {
		fromFile, err := scanner.LoadTargets(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read targets %q: %w", file, err)
		}
		targets = append(targets, fromFile...)
	}
	if len(targets) == 0 {
		return nil, errors.New("no targets: pass URLs as arguments or use -f")
	}
	return targets, nil
}

func runScan(cmd *cobra.Command, opts scanOptions, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if opts.threads > 0 {
		cfg.Runner.Threads = opts.threads
	}
	if opts.rateLimit >= 0 {
		cfg.Runner.RateLimit = opts.rateLimit
	}
	opts.threads, opts.rateLimit = cfg.Runner.Threads, cfg.Runner.RateLimit
	targets, err := collectTargets(args, opts.file)
	if err != nil {
		return err
	}

	var scanOpts []scanner.Option
	logger := newLogger()
	if opts.verbose {
		scanOpts = append(scanOpts, scanner.WithLogger(logger))
		logger.Printf("targets=%d threads=%d rate-limit=%d max-hops=%d", len(targets), cfg.Runner.Threads, cfg.Runner.RateLimit, cfg.Resolver.MaxHops)
	}
	sc, err := scanner.New(cfg, scanOpts...)
	if err != nil {
		return err
	}
	r := runner.New(runner.Config{
		Threads:   cfg.Runner.Threads,
		RateLimit: cfg.Runner.RateLimit,
		Logger:    logger,
	}, sc)

	results := r.Run(cmd.Context(), targets)

	if !opts.silent {
		printConsole(cmd.OutOrStdout(), results, opts)
	}
	if opts.outputJSONL != "" {
		if err := writeJSONLFile(opts.outputJSONL, results); err != nil {
			return err
		}
		if opts.verbose {
			logger.Printf("[write] JSONL report -> %s", opts.outputJSONL)
		}
	}
	if opts.outputHTML != "" {
		page := output.BuildPage("PhishHunter Report", time.Now().UTC(), buildParamsMap(opts, len(targets)), results)
		if err := writeHTMLFile(opts.outputHTML, page); err != nil {
			return err
		}
		if opts.verbose {
			logger.Printf("[write] HTML report -> %s", opts.outputHTML)
		}
	}
	return nil
}

func buildParamsMap(opts scanOptions, targetCount int) map[string]string {
	params := map[string]string{
		"threads":      strconv.Itoa(opts.threads),
		"rate_limit":   strconv.Itoa(opts.rateLimit),
		"only_risky":   strconv.FormatBool(opts.onlyRisky),
		"output_jsonl": opts.outputJSONL,
		"output_html":  opts.outputHTML,
		"targets":      strconv.Itoa(targetCount),
	}
	if opts.file != "" {
		params["file"] = opts.file
	}
	if configFile != "" {
		params["config"] = configFile
	}
	return params
}

func printConsole(w io.Writer, results []model.Result, opts scanOptions) {
	total := len(results)
	for i, res := range results {
		if opts.onlyRisky && res.Report != nil && !output.IsRisky(res) {
			continue
		}
		if opts.summary {
			if res.Report == nil {
				fmt.Fprintf(w, "[%d/%d] %s | error: %s\n", i+1, total, res.Target, res.Error)
				continue
			}
			rep := res.Report
			fmt.Fprintf(w, "[%d/%d] %s -> %s | %s | redirects=%d | findings=%d | duration=%dms\n",
				i+1, total, rep.Input, rep.FinalURL,
				statuscolor.ForCategory(rep.Category).Sprintf("%d %s", rep.Score, rep.Category),
				rep.RedirectCount, len(rep.Findings), rep.DurationMs)
			continue
		}
		statuscolor.PrintResult(w, res)
	}
	sum := output.BuildSummary(results)
	fmt.Fprintf(w, "\nTotal %d | safe %d | suspicious %d | dangerous %d | errors %d\n",
		sum.TotalTargets, sum.Safe, sum.Suspicious, sum.Dangerous, sum.Errors)
}

func writeJSONLFile(path string, results []model.Result) error {
	if err := ensureDir(path); err != nil {
		return fmt.Errorf("create JSONL directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create JSONL file: %w", err)
	}
	defer f.Close()
	w := output.NewJSONLWriter(f)
	for _, res := range results {
		if err := w.Write(res); err != nil {
			return fmt.Errorf("write JSONL: %w", err)
		}
	}
	return w.Close()
}

func writeHTMLFile(path string, page output.PageData) error {
	if err := ensureDir(path); err != nil {
		return fmt.Errorf("create HTML directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create HTML file: %w", err)
	}
	defer f.Close()
	if err := output.RenderHTML(f, page); err != nil {
		return fmt.Errorf("write HTML: %w", err)
	}
	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
