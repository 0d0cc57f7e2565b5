package portfolio

import "fmt"

// NegativeTaxablePolicy selects how a negative net taxable amount, a year
// that realized more taxable losses than gains, is reported.
type NegativeTaxablePolicy int

const (
	// CarryForward reports zero taxable and exposes the net loss as a loss
	// carried into the next period.
	CarryForward NegativeTaxablePolicy = iota
	// ClampToZero reports zero taxable and discards the net loss.
	ClampToZero
)

func (p NegativeTaxablePolicy) String() string {
	switch p {
	case CarryForward:
		return "carry-forward"
	case ClampToZero:
		return "clamp"
	}
	return "undefined"
}

// ParseNegativeTaxablePolicy is the inverse of String.
func ParseNegativeTaxablePolicy(s string) (NegativeTaxablePolicy, error) {
	switch s {
	case "carry-forward":
		return CarryForward, nil
	case "clamp":
		return ClampToZero, nil
	}
	return 0, fmt.Errorf("unknown negative taxable policy %q", s)
}

// TaxSummary aggregates the realized events of one run after classification.
type TaxSummary struct {
	// RealizedProfit sums the gains, RealizedLoss the losses. Loss is kept
	// negative so Profit+Loss is the net realized result.
	RealizedProfit Money
	RealizedLoss   Money

	// Taxable is the net gain of events still inside the holding period,
	// floored at zero per the negative policy. Exempt is the net gain of
	// events held past it.
	Taxable Money
	Exempt  Money

	// CarriedLoss is the net taxable loss moved to the next period, zero
	// unless the policy is carry-forward and the taxable net was negative.
	CarriedLoss Money
}

// applyTaxRule classifies every event and aggregates the totals. An event is
// exempt exactly when its holding period reached cfg.ExemptionDays; the whole
// event follows that classification, gains and losses alike.
func applyTaxRule(events []RealizedEvent, cfg Config) TaxSummary {
	zero := M(0, cfg.ReportingCurrency)
	sum := TaxSummary{
		RealizedProfit: zero,
		RealizedLoss:   zero,
		Taxable:        zero,
		Exempt:         zero,
		CarriedLoss:    zero,
	}
	for i := range events {
		e := &events[i]
		e.Taxable = e.HoldingDays < cfg.ExemptionDays

		if e.GainLoss.IsNegative() {
			sum.RealizedLoss = sum.RealizedLoss.Add(e.GainLoss)
		} else {
			sum.RealizedProfit = sum.RealizedProfit.Add(e.GainLoss)
		}
		if e.Taxable {
			sum.Taxable = sum.Taxable.Add(e.GainLoss)
		} else {
			sum.Exempt = sum.Exempt.Add(e.GainLoss)
		}
	}
	if sum.Taxable.IsNegative() {
		if cfg.Negative == CarryForward {
			sum.CarriedLoss = sum.Taxable
		}
		sum.Taxable = zero
	}
	return sum
}
