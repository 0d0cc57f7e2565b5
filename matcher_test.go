package portfolio

import (
	"strings"
	"testing"
	"time"
)

func TestMatcherSplitsDisposalAcrossLots(t *testing.T) {
	cfg := DefaultConfig()
	t0 := day(2023, time.January, 1)
	b := NewBuilder(cfg)
	b.Add(
		buy(t0, "BTC", 1, 10000, "KuCoin"),
		buy(t0.AddDate(0, 0, 200), "BTC", 1, 20000, "KuCoin"),
		sell(t0.AddDate(0, 0, 400), "BTC", 1.5, 45000, "KuCoin"),
	)
	ledger, rejected := b.Build()
	if len(rejected) != 0 {
		t.Fatalf("rejected %d transactions, want 0", len(rejected))
	}

	events, lots, warnings := matchLots(ledger, cfg)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2 (one per lot fragment)", len(events))
	}

	first, second := events[0], events[1]
	if !first.Proceeds.Equal(USD(30000)) || !first.CostBasis.Equal(USD(10000)) || !first.GainLoss.Equal(USD(20000)) {
		t.Errorf("first fragment = %s/%s/%s, want 30000/10000/+20000", first.Proceeds, first.CostBasis, first.GainLoss)
	}
	if first.HoldingDays != 400 {
		t.Errorf("first fragment held %d days, want 400", first.HoldingDays)
	}
	if !second.Proceeds.Equal(USD(15000)) || !second.CostBasis.Equal(USD(10000)) || !second.GainLoss.Equal(USD(5000)) {
		t.Errorf("second fragment = %s/%s/%s, want 15000/10000/+5000", second.Proceeds, second.CostBasis, second.GainLoss)
	}
	if second.HoldingDays != 200 {
		t.Errorf("second fragment held %d days, want 200", second.HoldingDays)
	}

	sum := applyTaxRule(events, cfg)
	if !sum.RealizedProfit.Equal(USD(25000)) {
		t.Errorf("realized profit = %s, want 25000", sum.RealizedProfit)
	}
	if !sum.Taxable.Equal(USD(5000)) {
		t.Errorf("taxable = %s, want 5000 (only the young lot)", sum.Taxable)
	}
	if !sum.Exempt.Equal(USD(20000)) {
		t.Errorf("exempt = %s, want 20000", sum.Exempt)
	}

	// half of the second lot is still open
	open := lots.OpenAll()
	if len(open) != 1 || !open[0].Remaining.Equal(Q(0.5)) {
		t.Errorf("open lots = %v, want one of 0.5 BTC", open)
	}
}

func TestMatcherOverdraftConsumesAvailable(t *testing.T) {
	cfg := DefaultConfig()
	b := NewBuilder(cfg)
	b.Add(
		buy(day(2024, time.January, 1), "ETH", 1, 2000, "KuCoin"),
		sell(day(2024, time.March, 1), "ETH", 2, 6000, "KuCoin"),
	)
	ledger, _ := b.Build()

	events, _, warnings := matchLots(ledger, cfg)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if !events[0].Quantity.Equal(Q(1)) {
		t.Errorf("event quantity = %s, want the 1 ETH actually held", events[0].Quantity)
	}
	// proceeds are allocated pro rata, the uncovered half has no event
	if !events[0].Proceeds.Equal(USD(3000)) {
		t.Errorf("proceeds = %s, want 3000", events[0].Proceeds)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0].Reason, "insufficient lots") {
		t.Errorf("warnings = %v, want one insufficient lots warning", warnings)
	}
}

func TestMatcherSkipsInternalTransfers(t *testing.T) {
	cfg := DefaultConfig()
	b := NewBuilder(cfg)
	b.OwnAddress("0xmywallet")
	withdrawal := Transaction{
		ID:       NewTxID("KuCoin", "w1"),
		Time:     day(2024, time.February, 1),
		Kind:     KindWithdrawal,
		Asset:    "BTC",
		Quantity: Q(-1),
		Source:   "KuCoin",
		Address:  "0xmywallet",
	}
	b.Add(buy(day(2024, time.January, 1), "BTC", 1, 30000, "KuCoin"), withdrawal)
	ledger, _ := b.Build()

	events, lots, _ := matchLots(ledger, cfg)
	if len(events) != 0 {
		t.Fatalf("internal transfer realized %d events, want 0", len(events))
	}
	if open := lots.Open("BTC"); len(open) != 1 || !open[0].Remaining.Equal(Q(1)) {
		t.Errorf("open lots = %v, the transferred coin is still held", open)
	}
}

func TestMatcherLeavesPlainWithdrawalsUnmatched(t *testing.T) {
	cfg := DefaultConfig()
	b := NewBuilder(cfg)
	withdrawal := Transaction{
		ID:       NewTxID("KuCoin", "w1"),
		Time:     day(2024, time.February, 1),
		Kind:     KindWithdrawal,
		Asset:    "BTC",
		Quantity: Q(-1),
		Source:   "KuCoin",
		Address:  "0xsomewhere",
	}
	b.Add(buy(day(2024, time.January, 1), "BTC", 1, 40000, "KuCoin"), withdrawal)
	ledger, _ := b.Build()

	events, lots, warnings := matchLots(ledger, cfg)
	if len(events) != 0 {
		t.Fatalf("withdrawal realized %d events, want 0", len(events))
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0].Reason, "withdrawal") {
		t.Errorf("warnings = %v, want one unknown address withdrawal warning", warnings)
	}
	// the coins stay in the lot book, no loss is fabricated
	if open := lots.Open("BTC"); len(open) != 1 || !open[0].Remaining.Equal(Q(1)) {
		t.Errorf("open lots = %v, want the bought coin still held", open)
	}
	sum := applyTaxRule(events, cfg)
	if !sum.RealizedLoss.IsZero() || !sum.CarriedLoss.IsZero() {
		t.Errorf("loss = %s carried %s, want zero", sum.RealizedLoss, sum.CarriedLoss)
	}
}

func TestMatcherZeroCostDepositWarns(t *testing.T) {
	cfg := DefaultConfig()
	b := NewBuilder(cfg)
	b.Add(Transaction{
		ID:       NewTxID(OnChainSource, "d1"),
		Time:     day(2024, time.January, 1),
		Kind:     KindDeposit,
		Asset:    "LINK",
		Quantity: Q(100),
		Source:   OnChainSource,
	})
	ledger, _ := b.Build()

	_, lots, warnings := matchLots(ledger, cfg)
	if len(warnings) != 1 || !strings.Contains(warnings[0].Reason, "zero cost basis") {
		t.Fatalf("warnings = %v, want one zero cost basis warning", warnings)
	}
	open := lots.Open("LINK")
	if len(open) != 1 || !open[0].UnitCost.Equal(USD(0)) {
		t.Errorf("open lots = %v, want one zero cost LINK lot", open)
	}
}

func TestMatcherSwapRealizesOutLeg(t *testing.T) {
	cfg := DefaultConfig()
	b := NewBuilder(cfg)
	group := swapGroupID("a", "b")
	b.Add(
		buy(day(2024, time.January, 1), "ETH", 1, 2000, "KuCoin"),
		Transaction{
			ID: "a", Time: day(2024, time.June, 1), Kind: KindSwapOut,
			Asset: "ETH", Quantity: Q(-1), Value: USD(3000),
			CounterAsset: "LINK", CounterQuantity: Q(200), SwapGroup: group, Source: "DEX",
		},
		Transaction{
			ID: "b", Time: day(2024, time.June, 1), Kind: KindSwapIn,
			Asset: "LINK", Quantity: Q(200), Value: USD(3000),
			CounterAsset: "ETH", CounterQuantity: Q(-1), SwapGroup: group, Source: "DEX",
		},
	)
	ledger, _ := b.Build()

	events, lots, warnings := matchLots(ledger, cfg)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1 (the swap-out disposal)", len(events))
	}
	if events[0].Asset != "ETH" || !events[0].GainLoss.Equal(USD(1000)) {
		t.Errorf("event = %s %s, want ETH +1000", events[0].Asset, events[0].GainLoss)
	}
	// the swap-in opened a LINK lot at the exchanged value
	open := lots.Open("LINK")
	if len(open) != 1 || !open[0].UnitCost.Equal(USD(15)) {
		t.Errorf("LINK lots = %v, want one at 15 USD unit cost", open)
	}
}

func TestMatcherConservesQuantities(t *testing.T) {
	cfg := DefaultConfig()
	t0 := day(2023, time.January, 1)
	b := NewBuilder(cfg)
	b.Add(
		buy(t0, "BTC", 2, 20000, "KuCoin"),
		buy(t0.AddDate(0, 0, 30), "BTC", 0.5, 6000, "Bitvavo"),
		sell(t0.AddDate(0, 0, 60), "BTC", 1.2, 15000, "KuCoin"),
		sell(t0.AddDate(0, 0, 90), "BTC", 0.3, 4000, "KuCoin"),
	)
	ledger, _ := b.Build()

	events, lots, warnings := matchLots(ledger, cfg)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}

	// open remainders plus disposed fragments add back up to the acquired total
	var sum Quantity
	for _, lot := range lots.Open("BTC") {
		sum = sum.Add(lot.Remaining)
	}
	for _, e := range events {
		sum = sum.Add(e.Quantity)
	}
	if !sum.Equal(Q(2.5)) {
		t.Errorf("open + disposed = %s, want the 2.5 BTC acquired", sum)
	}
	if !ledger.Position("BTC").Equal(Q(1)) {
		t.Errorf("position = %s, want 1", ledger.Position("BTC"))
	}
}
