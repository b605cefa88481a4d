package banner

import (
	"io"

	"github.com/common-nighthawk/go-figure"
	"github.com/fatih/color"
)

// Fprint writes the startup banner to w.
func Fprint(w io.Writer, version string) {
	fig := figure.NewFigure("PHISHHUNTER", "doom", true)
	_, _ = color.New(color.FgRed).Fprint(w, fig.String())

	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)

	_, _ = cyan.Fprintln(w, "════════════════════════════════════════════════")
	_, _ = green.Fprintf(w, "    URL phishing risk scanner %s | inspect-only TLS\n", version)
	_, _ = cyan.Fprintln(w, "════════════════════════════════════════════════")
}
