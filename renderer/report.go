// Package renderer renders engine results as markdown, suitable both for
// terminal display and for archiving next to the ledger.
package renderer

import (
	"fmt"
	"strings"
	"time"

	"github.com/sergensergio/crypto-portfolio"
)

// ReportMarkdown renders the full tax report: tax totals, current holdings
// with their valuation, fees per source, and every warning and rejected
// record collected along the way.
func ReportMarkdown(r *portfolio.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Tax Report\n\n")
	fmt.Fprintf(&b, "Generated: %s (run %s)\n\n", r.GeneratedAt.Format(time.DateOnly), r.RunID)
	fmt.Fprintf(&b, "Matching: %s, exemption after %d days\n\n", r.Config.Policy, r.Config.ExemptionDays)

	fmt.Fprint(&b, "## Realized Gains\n\n")
	fmt.Fprintln(&b, "| | Amount |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Realized profit | %s |\n", r.Tax.RealizedProfit.String())
	fmt.Fprintf(&b, "| Realized loss | %s |\n", r.Tax.RealizedLoss.String())
	fmt.Fprintf(&b, "| **Taxable** | **%s** |\n", r.Tax.Taxable.String())
	fmt.Fprintf(&b, "| Tax exempt | %s |\n", r.Tax.Exempt.String())
	if !r.Tax.CarriedLoss.IsZero() {
		fmt.Fprintf(&b, "| Loss carried forward | %s |\n", r.Tax.CarriedLoss.String())
	}
	fmt.Fprintln(&b)

	if len(r.Valuation.Assets) > 0 {
		fmt.Fprint(&b, "## Holdings\n\n")
		fmt.Fprintln(&b, "| Asset | Quantity | Price | Value | Performance |")
		fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|")
		// best performer first, the unpriced gaps last
		rows := r.Valuation.BestPerforming()
		for _, a := range r.Valuation.Assets {
			if a.Unpriced {
				rows = append(rows, a)
			}
		}
		for _, a := range rows {
			if a.Unpriced {
				fmt.Fprintf(&b, "| %s | %s | - | - | - |\n", a.Asset, a.Quantity)
				continue
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %+.1f%% |\n",
				a.Asset, a.Quantity, a.Price, a.Value, a.Performance.InexactFloat64()*100)
		}
		fmt.Fprintf(&b, "| **Total** | | | **%s** | |\n\n", r.Valuation.Total)
		fmt.Fprintf(&b, "Invested: %s, unrealized gain: %s.\n\n",
			r.Valuation.TotalInvested, r.Valuation.UnrealizedGain.SignedString())
		if len(r.Valuation.Unpriced) > 0 {
			fmt.Fprintf(&b, "No price available for: %s. The total excludes them.\n\n",
				strings.Join(r.Valuation.Unpriced, ", "))
		}
	}

	if len(r.Fees) > 0 {
		fmt.Fprint(&b, "## Fees per Source\n\n")
		fmt.Fprintln(&b, "| Source | Fees | Volume | Fee ratio |")
		fmt.Fprintln(&b, "|:---|---:|---:|---:|")
		for _, f := range r.Fees {
			ratio := "-"
			if !f.Ratio.IsZero() {
				ratio = fmt.Sprintf("%.2f%%", f.Ratio.InexactFloat64()*100)
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", f.Source, f.Fees, f.Volume, ratio)
		}
		fmt.Fprintln(&b)
	}

	if len(r.Warnings) > 0 {
		fmt.Fprint(&b, "## Warnings\n\n")
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
		fmt.Fprintln(&b)
	}

	if len(r.Rejected) > 0 {
		fmt.Fprint(&b, "## Rejected Records\n\n")
		for _, rej := range r.Rejected {
			fmt.Fprintf(&b, "- %s\n", rej)
		}
		fmt.Fprintln(&b)
	}

	return b.String()
}
