package statuscolor

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"

	"github.com/selimozcann/PhishHunter/internal/model"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed)
	gray   = color.New(color.FgHiBlack)
	bold   = color.New(color.Bold)
)

func colorFor(status int) *color.Color {
	switch {
	case status == 0:
		return gray
	case status >= 300 && status < 400:
		return green
	case status >= 400:
		return red
	default:
		return yellow
	}
}

// Sprint returns a colorized status code string (3xx green, 4xx/5xx red).
func Sprint(status int) string {
	if status == 0 {
		return gray.Sprint("—")
	}
	return colorFor(status).Sprint(strconv.Itoa(status))
}

// ForCategory returns the console color of a risk tier.
func ForCategory(c model.Category) *color.Color {
	switch c {
	case model.CategorySafe:
		return green
	case model.CategorySuspicious:
		return yellow
	default:
		return red
	}
}

// BadgeColor is the plain color name of a tier, used by the web layer.
func BadgeColor(c model.Category) string {
	switch c {
	case model.CategorySafe:
		return "green"
	case model.CategorySuspicious:
		return "yellow"
	default:
		return "red"
	}
}

// Gray wraps the provided text in gray.
func Gray(text string) string {
	return gray.Sprint(text)
}

func sprintHop(h model.Hop) string {
	switch h.Outcome {
	case model.OutcomeResponse:
		s := fmt.Sprintf("  [%d] %s %s", h.Index, h.URL, Sprint(h.Status))
		if h.Location != "" {
			s += Gray(" → " + h.Location)
		}
		if h.Error != "" {
			s += " " + yellow.Sprint("("+h.Error+")")
		}
		return s
	case model.OutcomeBlocked:
		return fmt.Sprintf("  [%d] %s %s", h.Index, h.URL, red.Sprint("BLOCKED "+h.Error))
	default:
		return fmt.Sprintf("  [%d] %s %s", h.Index, h.URL, red.Sprint(string(h.Outcome)+": "+h.Error))
	}
}

// PrintReport writes a human readable report to w.
func PrintReport(w io.Writer, rep model.Report) {
	c := ForCategory(rep.Category)
	fmt.Fprintf(w, "\n[+] %s\n", bold.Sprint(rep.Input))
	for _, h := range rep.Hops {
		fmt.Fprintln(w, sprintHop(h))
	}
	fmt.Fprintf(w, "  Final URL: %s\n", rep.FinalURL)
	fmt.Fprintf(w, "  Risk: %s\n", c.Sprintf("%d/100 (%s)", rep.Score, rep.Category))
	for _, e := range rep.Explanations {
		fmt.Fprintf(w, "    - %s\n", e)
	}
	if rep.SSL.Valid {
		line := fmt.Sprintf("  TLS: issuer %s, expires %s", rep.SSL.Issuer, rep.SSL.NotAfter)
		if rep.SSL.ExpiresInDays != nil {
			line += fmt.Sprintf(" (%d days)", *rep.SSL.ExpiresInDays)
		}
		fmt.Fprintln(w, line)
	} else {
		fmt.Fprintln(w, "  TLS: "+yellow.Sprint(string(rep.SSL.Reason)))
	}
	for _, f := range rep.Findings {
		fmt.Fprintf(w, "  %s %s at hop %d: %s\n", red.Sprint("[!]"), f.Type, f.AtHop, f.Detail)
	}
}

// PrintResult prints a batch result, including failed targets.
func PrintResult(w io.Writer, r model.Result) {
	if r.Report == nil {
		fmt.Fprintf(w, "\n[+] %s\n  %s\n", bold.Sprint(r.Target), red.Sprint("[!] "+r.Error))
		return
	}
	PrintReport(w, *r.Report)
}
