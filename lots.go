package portfolio

import (
	"fmt"
	"time"
)

// Lot is one acquisition that is still, at least partly, held: the quantity
// remaining, what each unit cost (fee included) and when it was acquired.
type Lot struct {
	Asset      string
	AcquiredAt time.Time
	Remaining  Quantity
	UnitCost   Money
	// TxID is the acquisition transaction this lot was opened by.
	TxID string
}

// CostBasis returns the fiat cost of the remaining quantity.
func (l Lot) CostBasis() Money { return l.UnitCost.Mul(l.Remaining) }

// lotBook tracks open lots per asset. Lots live in an append-only arena;
// the open index per asset lists, in acquisition order, the lots that still
// have quantity left. Acquisitions arrive in chronological order, so for
// FIFO the index order is the consumption order.
type lotBook struct {
	arena  []Lot
	open   map[string][]int
	policy MatchingPolicy
}

func newLotBook(policy MatchingPolicy) *lotBook {
	return &lotBook{open: make(map[string][]int), policy: policy}
}

// acquire opens a new lot. The quantity must be strictly positive.
func (b *lotBook) acquire(asset string, qty Quantity, unitCost Money, at time.Time, txID string) error {
	if !qty.IsPositive() {
		return fmt.Errorf("%w: %s %s at %s", ErrInvalidAcquisition, qty, asset, at.Format(time.RFC3339))
	}
	b.arena = append(b.arena, Lot{
		Asset:      asset,
		AcquiredAt: at,
		Remaining:  qty,
		UnitCost:   unitCost,
		TxID:       txID,
	})
	b.open[asset] = append(b.open[asset], len(b.arena)-1)
	return nil
}

// A fragment is the slice of one lot consumed by a disposal.
type fragment struct {
	lot Lot      // snapshot before consumption
	qty Quantity // quantity taken from that lot
}

// consume takes qty of asset out of the open lots in policy order. When the
// open lots cannot cover the full quantity it consumes everything available
// and returns the fragments together with ErrInsufficientLots; the caller
// decides how to surface the shortfall.
func (b *lotBook) consume(asset string, qty Quantity) ([]fragment, error) {
	var frags []fragment
	need := qty
	ids := b.open[asset]
	for len(ids) > 0 && need.IsPositive() {
		lot := &b.arena[ids[0]]
		take := lot.Remaining.Min(need)
		frags = append(frags, fragment{lot: *lot, qty: take})
		lot.Remaining = lot.Remaining.Sub(take)
		need = need.Sub(take)
		if lot.Remaining.IsPositive() {
			break
		}
		ids = ids[1:]
	}
	b.open[asset] = ids
	if need.IsPositive() {
		return frags, fmt.Errorf("%w: disposing %s %s but only %s covered by lots", ErrInsufficientLots, qty, asset, qty.Sub(need))
	}
	return frags, nil
}

// Open returns snapshots of the lots of asset that still hold quantity, in
// acquisition order.
func (b *lotBook) Open(asset string) []Lot {
	var out []Lot
	for _, id := range b.open[asset] {
		if b.arena[id].Remaining.IsPositive() {
			out = append(out, b.arena[id])
		}
	}
	return out
}

// OpenAll returns every open lot across assets, in acquisition order.
func (b *lotBook) OpenAll() []Lot {
	var out []Lot
	for _, lot := range b.arena {
		if lot.Remaining.IsPositive() {
			out = append(out, lot)
		}
	}
	return out
}
