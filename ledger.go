package portfolio

import (
	"fmt"
	"iter"
	"log"
	"sort"
	"time"
)

// Ledger is the merged, chronological list of all transactions across every
// source. It is the single input of the tax engine; build one with a Builder.
type Ledger struct {
	transactions []Transaction
	byID         map[string]int
}

func newLedger() *Ledger {
	return &Ledger{byID: make(map[string]int)}
}

func (l *Ledger) Len() int { return len(l.transactions) }

// Get returns the transaction with the given id.
func (l *Ledger) Get(id string) (Transaction, bool) {
	i, ok := l.byID[id]
	if !ok {
		return Transaction{}, false
	}
	return l.transactions[i], true
}

// Transactions iterates over all transactions in chronological order.
// Transactions sharing a timestamp keep their ingestion order.
func (l *Ledger) Transactions() iter.Seq2[int, Transaction] {
	return func(yield func(int, Transaction) bool) {
		for i, tx := range l.transactions {
			if !yield(i, tx) {
				return
			}
		}
	}
}

// AssetTransactions iterates over the transactions of a single asset, in
// chronological order.
func (l *Ledger) AssetTransactions(asset string) iter.Seq[Transaction] {
	return func(yield func(Transaction) bool) {
		for _, tx := range l.transactions {
			if tx.Asset != asset {
				continue
			}
			if !yield(tx) {
				return
			}
		}
	}
}

// Assets returns the sorted list of assets the ledger has seen.
func (l *Ledger) Assets() []string {
	seen := make(map[string]bool)
	for _, tx := range l.transactions {
		seen[tx.Asset] = true
	}
	assets := make([]string, 0, len(seen))
	for a := range seen {
		assets = append(assets, a)
	}
	sort.Strings(assets)
	return assets
}

// Position returns the signed quantity of asset held after applying every
// transaction in the ledger. Internal transfer legs cancel out by
// construction, so they do not distort the sum.
func (l *Ledger) Position(asset string) Quantity {
	var sum Quantity
	for _, tx := range l.transactions {
		if tx.Asset != asset {
			continue
		}
		sum = sum.Add(tx.Quantity)
	}
	return sum
}

// SourceFees aggregates the fees paid on one source against the fiat volume
// traded there.
type SourceFees struct {
	Source string
	Fees   Money
	Volume Money
	// Ratio is Fees over Volume, zero when the volume is unknown.
	Ratio Quantity
}

// FeesBySource sums fees and traded volume per source, sorted by source name.
func (l *Ledger) FeesBySource() []SourceFees {
	per := make(map[string]*SourceFees)
	for _, tx := range l.transactions {
		if tx.Source == "" {
			continue
		}
		sf, ok := per[tx.Source]
		if !ok {
			sf = &SourceFees{Source: tx.Source}
			per[tx.Source] = sf
		}
		if !tx.Fee.IsZero() {
			sf.Fees = sf.Fees.Add(tx.Fee.Abs())
		}
		if !tx.Value.IsZero() {
			sf.Volume = sf.Volume.Add(tx.Value.Abs())
		}
	}
	out := make([]SourceFees, 0, len(per))
	for _, sf := range per {
		if !sf.Volume.IsZero() {
			sf.Ratio = sf.Fees.DivPrice(sf.Volume)
		}
		out = append(out, *sf)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Source < out[j].Source })
	return out
}

func (l *Ledger) stableSort() {
	sort.SliceStable(l.transactions, func(i, j int) bool {
		a, b := l.transactions[i], l.transactions[j]
		if !a.Time.Equal(b.Time) {
			return a.Time.Before(b.Time)
		}
		return a.seq < b.seq
	})
	l.reindex()
}

func (l *Ledger) reindex() {
	l.byID = make(map[string]int, len(l.transactions))
	for i, tx := range l.transactions {
		l.byID[tx.ID] = i
	}
}

// A Builder accumulates transactions from brokers and on-chain discovery and
// assembles them into one Ledger. Records that fail validation are collected
// individually and never abort the run.
type Builder struct {
	cfg      Config
	ledger   *Ledger
	rejected []RejectedTransaction
	warnings []Warning
	wallets  map[string]bool
	detector SwapDetector
	seq      int
}

// NewBuilder returns a Builder using cfg.
func NewBuilder(cfg Config) *Builder {
	return &Builder{cfg: cfg, ledger: newLedger(), wallets: make(map[string]bool)}
}

// OwnAddress declares wallet addresses owned by the portfolio holder.
// Transfers between owned addresses are tagged internal and excluded from
// gain computation.
func (b *Builder) OwnAddress(addrs ...string) {
	for _, a := range addrs {
		b.wallets[a] = true
	}
}

// SetSwapDetector installs the detector used to recognize on-chain transfers
// routed through a known swap contract. Without one, no swap reconstruction
// happens on on-chain records.
func (b *Builder) SetSwapDetector(d SwapDetector) { b.detector = d }

// Add ingests broker records. Each record is validated on its own; invalid
// ones are rejected, valid ones appended. A record whose ID is already in the
// ledger is silently skipped, which makes re-importing the same export
// idempotent.
func (b *Builder) Add(txs ...Transaction) {
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			b.reject(tx, err.Error())
			continue
		}
		if _, ok := b.ledger.byID[tx.ID]; ok {
			continue
		}
		b.append(tx)
	}
}

// AddOnChain ingests discovered on-chain transfers. On top of the broker
// rules it drops transfers already described by a known transaction (a broker
// withdrawal and its on-chain arrival are the same transfer), and pairs the
// survivors into swaps when a detector is installed.
func (b *Builder) AddOnChain(txs ...Transaction) {
	var kept []Transaction
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			b.reject(tx, err.Error())
			continue
		}
		if _, ok := b.ledger.byID[tx.ID]; ok {
			continue
		}
		if known, ok := b.duplicateOf(tx); ok {
			log.Printf("dropping on-chain duplicate of %s: %s", known.ID, tx)
			continue
		}
		kept = append(kept, tx)
	}
	if b.detector != nil {
		kept = pairSwapLegs(kept, b.detector, b.cfg.SwapWindow)
	}
	for _, tx := range kept {
		b.append(tx)
	}
}

// duplicateOf scans the known transactions for one describing the same
// transfer as tx: same non-empty address, same asset, quantity magnitudes
// within DedupEpsilon and timestamps within DedupWindow.
func (b *Builder) duplicateOf(tx Transaction) (Transaction, bool) {
	if tx.Address == "" {
		return Transaction{}, false
	}
	for _, known := range b.ledger.transactions {
		if known.Address != tx.Address || known.Asset != tx.Asset {
			continue
		}
		gap := known.Quantity.Abs().Sub(tx.Quantity.Abs()).Abs()
		if gap.GreaterThan(b.cfg.DedupEpsilon) {
			continue
		}
		if absDuration(known.Time.Sub(tx.Time)) > b.cfg.DedupWindow {
			continue
		}
		return known, true
	}
	return Transaction{}, false
}

// Build sorts the accumulated transactions, tags internal transfers and
// returns the finished ledger. Rejected records are returned alongside so
// callers can surface them; they never made it into the ledger.
func (b *Builder) Build() (*Ledger, []RejectedTransaction) {
	b.ledger.stableSort()
	b.tagInternalTransfers()
	b.resolveSwapValues()
	b.ledger.stableSort()
	return b.ledger, b.rejected
}

// Warnings returns non-fatal observations collected during ingestion.
func (b *Builder) Warnings() []Warning { return b.warnings }

func (b *Builder) append(tx Transaction) {
	tx.seq = b.seq
	b.seq++
	b.ledger.byID[tx.ID] = len(b.ledger.transactions)
	b.ledger.transactions = append(b.ledger.transactions, tx)
}

func (b *Builder) reject(tx Transaction, reason string) {
	log.Printf("rejecting %s: %s", tx, reason)
	b.rejected = append(b.rejected, RejectedTransaction{Tx: tx, Reason: reason})
}

// tagInternalTransfers retags withdrawal/deposit pairs that only move assets
// between owned accounts. Two forms are recognized: a withdrawal whose
// destination address is an owned wallet, and a withdrawal/deposit pair with
// matching asset and quantity inside TransferWindow. Tagged legs keep their
// signed quantities so position sums still balance, but the matcher skips
// them.
func (b *Builder) tagInternalTransfers() {
	txs := b.ledger.transactions
	for i := range txs {
		if txs[i].Kind == KindWithdrawal && b.wallets[txs[i].Address] {
			txs[i].Kind = KindTransfer
		}
	}
	for i := range txs {
		if txs[i].Kind != KindWithdrawal {
			continue
		}
		for j := range txs {
			if txs[j].Kind != KindDeposit || txs[j].Asset != txs[i].Asset {
				continue
			}
			gap := txs[i].Quantity.Abs().Sub(txs[j].Quantity.Abs()).Abs()
			if gap.GreaterThan(b.cfg.DedupEpsilon) {
				continue
			}
			if absDuration(txs[i].Time.Sub(txs[j].Time)) > b.cfg.TransferWindow {
				continue
			}
			txs[i].Kind = KindTransfer
			txs[j].Kind = KindTransfer
			break
		}
	}
}

// resolveSwapValues propagates the fiat value across the two legs of a swap
// when only one side carries one. A swap whose both legs lack a value stays
// unvalued and surfaces later as a warning from the matcher.
func (b *Builder) resolveSwapValues() {
	bySwap := make(map[string][]int)
	for i, tx := range b.ledger.transactions {
		if tx.SwapGroup != "" {
			bySwap[tx.SwapGroup] = append(bySwap[tx.SwapGroup], i)
		}
	}
	for group, idx := range bySwap {
		if len(idx) != 2 {
			b.warn("", fmt.Sprintf("swap group %s has %d legs, want 2", group, len(idx)))
			continue
		}
		a, c := &b.ledger.transactions[idx[0]], &b.ledger.transactions[idx[1]]
		switch {
		case a.Value.IsZero() && !c.Value.IsZero():
			a.Value = c.Value
		case c.Value.IsZero() && !a.Value.IsZero():
			c.Value = a.Value
		}
	}
}

func (b *Builder) warn(asset, reason string) {
	b.warnings = append(b.warnings, Warning{Asset: asset, Reason: reason})
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
