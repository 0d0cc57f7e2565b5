package portfolio

import (
	"time"

	"github.com/google/uuid"
)

// Report is the complete outcome of one engine run: the realized events, the
// tax totals, the current valuation and every non-fatal problem met along the
// way. Rejected records and warnings are part of the report, not reasons to
// abort it.
type Report struct {
	RunID       string
	GeneratedAt time.Time
	Config      Config

	Ledger   *Ledger
	Rejected []RejectedTransaction

	Events    []RealizedEvent
	Tax       TaxSummary
	OpenLots  []Lot
	Valuation Valuation
	Fees      []SourceFees

	Warnings []Warning
}

// NewReport runs the engine over a built ledger: matches disposals against
// lots, applies the tax rule and, when a price source is given, values the
// open positions. A nil prices skips valuation entirely rather than reporting
// everything unpriced.
func NewReport(ledger *Ledger, rejected []RejectedTransaction, prices PriceSource, cfg Config) *Report {
	r := &Report{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Config:      cfg,
		Ledger:      ledger,
		Rejected:    rejected,
		Fees:        ledger.FeesBySource(),
	}

	events, lots, warnings := matchLots(ledger, cfg)
	r.Warnings = append(r.Warnings, warnings...)
	r.Tax = applyTaxRule(events, cfg)
	r.Events = events
	r.OpenLots = lots.OpenAll()

	if prices != nil {
		valuation, vwarn := valuePortfolio(lots, prices, cfg)
		r.Valuation = valuation
		r.Warnings = append(r.Warnings, vwarn...)
	}
	return r
}

// EventsIn returns the realized events whose disposal falls in the given
// calendar year.
func (r *Report) EventsIn(year int) []RealizedEvent {
	var out []RealizedEvent
	for _, e := range r.Events {
		if e.DisposedAt.Year() == year {
			out = append(out, e)
		}
	}
	return out
}
