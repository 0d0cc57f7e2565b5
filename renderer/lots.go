package renderer

import (
	"fmt"
	"strings"
	"time"

	"github.com/sergensergio/crypto-portfolio"
)

// LotsMarkdown renders the open lots, one row per acquisition still held.
func LotsMarkdown(lots []portfolio.Lot) string {
	var b strings.Builder

	fmt.Fprint(&b, "# Open Lots\n\n")
	if len(lots) == 0 {
		fmt.Fprintln(&b, "No open lots.")
		return b.String()
	}

	fmt.Fprintln(&b, "| Acquired | Asset | Remaining | Unit Cost | Cost Basis |")
	fmt.Fprintln(&b, "|:---|:---|---:|---:|---:|")
	for _, lot := range lots {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			lot.AcquiredAt.Format(time.DateOnly),
			lot.Asset,
			lot.Remaining,
			lot.UnitCost,
			lot.CostBasis(),
		)
	}
	return b.String()
}
