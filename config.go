package portfolio

import "time"

// Config is the configuration surface consumed by the engine. The zero value
// is not usable; start from DefaultConfig.
type Config struct {
	// ReportingCurrency is the fiat currency all values are expressed in.
	ReportingCurrency string

	// ExemptionDays is the holding period in days at or beyond which a
	// realized gain is exempt from tax.
	ExemptionDays int

	// DedupWindow and DedupEpsilon define the tolerance under which an
	// on-chain transfer is considered a duplicate of an already-known
	// transaction: same address and asset, quantity within DedupEpsilon,
	// timestamp within DedupWindow.
	DedupWindow  time.Duration
	DedupEpsilon Quantity

	// TransferWindow is the pairing tolerance for tagging a withdrawal and a
	// deposit between owned accounts as one internal transfer.
	TransferWindow time.Duration

	// SwapWindow is the pairing window for reconstructing two on-chain
	// transfers into one swap. Transfers with no counterpart inside the
	// window stay plain deposits/withdrawals.
	SwapWindow time.Duration

	// Policy is the lot matching order. v1 ships FIFO only.
	Policy MatchingPolicy

	// Negative selects how a negative total taxable amount (net realized
	// loss) is reported.
	Negative NegativeTaxablePolicy
}

// DefaultConfig returns the engine defaults: USD reporting, the one-year
// exemption, a one-hour dedup window and FIFO matching.
func DefaultConfig() Config {
	return Config{
		ReportingCurrency: "USD",
		ExemptionDays:     365,
		DedupWindow:       time.Hour,
		DedupEpsilon:      Q(1e-8),
		TransferWindow:    12 * time.Hour,
		SwapWindow:        30 * time.Minute,
		Policy:            FIFO,
		Negative:          CarryForward,
	}
}
