package portfolio

import (
	"crypto/sha1"
	"fmt"
	"sort"
	"time"
)

// SwapDetector recognizes on-chain transfers routed through a known swap or
// DEX contract. Implementations typically keep a set of router contract
// addresses; the etherscan package provides one.
type SwapDetector interface {
	// IsSwapLeg reports whether tx looks like one side of an on-chain swap.
	IsSwapLeg(tx Transaction) bool
}

// SwapContracts is a SwapDetector backed by a plain set of contract
// addresses.
type SwapContracts map[string]bool

func (s SwapContracts) IsSwapLeg(tx Transaction) bool { return s[tx.Address] }

// pairSwapLegs reconstructs swaps out of raw on-chain transfers: an outgoing
// and an incoming transfer of different assets, both flagged by the detector,
// within window of each other, are rewritten into a swap-out/swap-in pair
// sharing a group id. Matching is greedy on time distance. Transfers left
// unpaired keep their original kind.
func pairSwapLegs(txs []Transaction, detector SwapDetector, window time.Duration) []Transaction {
	var outs, ins []int
	for i, tx := range txs {
		if !detector.IsSwapLeg(tx) {
			continue
		}
		switch tx.Kind {
		case KindWithdrawal:
			outs = append(outs, i)
		case KindDeposit:
			ins = append(ins, i)
		}
	}

	type candidate struct {
		out, in int
		gap     time.Duration
	}
	var candidates []candidate
	for _, o := range outs {
		for _, i := range ins {
			if txs[i].Asset == txs[o].Asset {
				continue
			}
			gap := absDuration(txs[o].Time.Sub(txs[i].Time))
			if gap > window {
				continue
			}
			candidates = append(candidates, candidate{out: o, in: i, gap: gap})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].gap < candidates[j].gap })

	paired := make(map[int]bool)
	for _, c := range candidates {
		if paired[c.out] || paired[c.in] {
			continue
		}
		paired[c.out], paired[c.in] = true, true
		group := swapGroupID(txs[c.out].ID, txs[c.in].ID)

		out, in := &txs[c.out], &txs[c.in]
		out.Kind, in.Kind = KindSwapOut, KindSwapIn
		out.SwapGroup, in.SwapGroup = group, group
		out.CounterAsset, out.CounterQuantity = in.Asset, in.Quantity
		in.CounterAsset, in.CounterQuantity = out.Asset, out.Quantity
	}
	return txs
}

// swapGroupID derives a stable group id from the two leg ids, so re-running
// discovery over the same chain data reproduces the same ledger.
func swapGroupID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return fmt.Sprintf("%x", sha1.Sum([]byte(a+"|"+b)))
}
