package portfolio

import (
	"fmt"
	"time"
)

// RealizedEvent is the outcome of matching one lot fragment against a
// disposal: the quantity taken from that lot, its share of the proceeds, the
// cost it carried and the resulting gain or loss. A disposal covered by
// several lots emits one event per lot touched.
type RealizedEvent struct {
	Asset       string
	Quantity    Quantity
	Proceeds    Money
	CostBasis   Money
	GainLoss    Money
	AcquiredAt  time.Time
	DisposedAt  time.Time
	HoldingDays int
	// Taxable is set by the tax rule, for the whole event.
	Taxable bool
	// TxID is the disposal transaction, LotTxID the acquisition that opened
	// the consumed lot.
	TxID    string
	LotTxID string
}

func (e RealizedEvent) String() string {
	return fmt.Sprintf("%s %s acquired %s, disposed %s, gain %s",
		e.Quantity, e.Asset,
		e.AcquiredAt.Format(time.DateOnly), e.DisposedAt.Format(time.DateOnly),
		e.GainLoss.SignedString())
}

// matchLots replays the ledger once, in chronological order, opening lots on
// acquisitions and consuming them on disposals according to cfg.Policy.
// Internal transfer legs are skipped on both sides. Anything that cannot be
// matched cleanly turns into a warning, never an abort: zero-cost lots for
// unvalued acquisitions, partial consumption when lots run short.
func matchLots(l *Ledger, cfg Config) (events []RealizedEvent, lots *lotBook, warnings []Warning) {
	lots = newLotBook(cfg.Policy)
	warn := func(asset, format string, args ...any) {
		warnings = append(warnings, Warning{Asset: asset, Reason: fmt.Sprintf(format, args...)})
	}

	for _, tx := range l.transactions {
		switch {
		case tx.Kind == KindTransfer:
			continue

		case tx.Kind == KindWithdrawal:
			// not a sale: the coins stay in the lot book. Declaring the
			// destination wallet as owned turns this into an internal
			// transfer instead.
			warn(tx.Asset, "withdrawal of %s %s to an unknown address, no disposal recorded", tx.Quantity.Abs(), tx.Asset)

		case tx.IsAcquisition():
			qty := tx.Quantity
			cost := tx.Value.Abs().Add(tx.Fee.Abs())
			if cost.IsZero() {
				warn(tx.Asset, "%s of %s %s has no fiat value, assuming zero cost basis", tx.Kind, qty, tx.Asset)
				cost = M(0, cfg.ReportingCurrency)
			}
			unitCost := cost.Div(qty)
			if err := lots.acquire(tx.Asset, qty, unitCost, tx.Time, tx.ID); err != nil {
				warn(tx.Asset, "%s", err)
			}

		case tx.IsDisposal():
			qty := tx.Quantity.Abs()
			if qty.IsZero() {
				continue
			}
			proceeds := tx.Value.Abs().Sub(tx.Fee.Abs())
			if tx.Value.IsZero() && tx.Kind != KindFee {
				warn(tx.Asset, "%s of %s %s has no fiat value, assuming zero proceeds", tx.Kind, qty, tx.Asset)
			}
			frags, err := lots.consume(tx.Asset, qty)
			if err != nil {
				warn(tx.Asset, "%s", err)
			}
			for _, f := range frags {
				share := proceeds.Mul(f.qty).Div(qty)
				basis := f.lot.UnitCost.Mul(f.qty)
				events = append(events, RealizedEvent{
					Asset:       tx.Asset,
					Quantity:    f.qty,
					Proceeds:    share,
					CostBasis:   basis,
					GainLoss:    share.Sub(basis),
					AcquiredAt:  f.lot.AcquiredAt,
					DisposedAt:  tx.Time,
					HoldingDays: holdingDays(f.lot.AcquiredAt, tx.Time),
					TxID:        tx.ID,
					LotTxID:     f.lot.TxID,
				})
			}
		}
	}
	return events, lots, warnings
}

// holdingDays counts the full days between acquisition and disposal.
func holdingDays(acquired, disposed time.Time) int {
	return int(disposed.Sub(acquired) / (24 * time.Hour))
}
