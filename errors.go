package portfolio

import (
	"errors"
	"fmt"
)

// Sentinel errors of the engine. Per-transaction failures never abort a run:
// they surface as rejected records or report warnings instead.
var (
	// ErrInvalidAcquisition marks an acquisition with a non-positive quantity.
	ErrInvalidAcquisition = errors.New("invalid acquisition")

	// ErrInsufficientLots marks a disposal exceeding the tracked holdings of
	// an asset. It signals an inconsistent ledger (typically a missing
	// transfer-in), which invalidates downstream tax figures for that asset.
	ErrInsufficientLots = errors.New("insufficient lots")

	// ErrUnpriced marks a valuation request for an asset with no available
	// price. The asset is reported as a gap, never as zero value.
	ErrUnpriced = errors.New("no price available")
)

// RejectedTransaction is a record refused at ingestion, kept alongside the
// accepted ledger for audit.
type RejectedTransaction struct {
	Tx     Transaction
	Reason string
}

func (r RejectedTransaction) String() string {
	return fmt.Sprintf("%s: %s", r.Tx, r.Reason)
}

// Warning is an aggregate-level inconsistency attached to the final report,
// flagging figures that are unreliable rather than aborting the run.
type Warning struct {
	Asset  string
	Reason string
}

func (w Warning) String() string {
	if w.Asset == "" {
		return w.Reason
	}
	return w.Asset + ": " + w.Reason
}
