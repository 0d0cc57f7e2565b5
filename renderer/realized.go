package renderer

import (
	"fmt"
	"strings"
	"time"

	"github.com/sergensergio/crypto-portfolio"
)

// RealizedMarkdown renders the realized events as a table, one row per lot
// fragment disposed of.
func RealizedMarkdown(events []portfolio.RealizedEvent) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Realized Events\n\n")
	if len(events) == 0 {
		fmt.Fprintln(&b, "No disposals.")
		return b.String()
	}

	fmt.Fprintln(&b, "| Disposed | Asset | Quantity | Proceeds | Cost Basis | Gain/Loss | Held | Taxable |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|---:|---:|:---:|")
	for _, e := range events {
		taxable := "no"
		if e.Taxable {
			taxable = "yes"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %dd | %s |\n",
			e.DisposedAt.Format(time.DateOnly),
			e.Asset,
			e.Quantity,
			e.Proceeds,
			e.CostBasis,
			e.GainLoss.SignedString(),
			e.HoldingDays,
			taxable,
		)
	}
	return b.String()
}
