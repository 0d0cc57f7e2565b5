package brokers

import (
	"strings"
	"testing"
	"time"

	"github.com/sergensergio/crypto-portfolio"
	"github.com/shopspring/decimal"
)

var testRates = FixedRates{"EUR/USD": decimal.NewFromFloat(1.1)}

func TestKuCoinTrades(t *testing.T) {
	csv := `tradeCreatedAt,symbol,side,size,funds,fee
2024-01-05 10:00:00,BTC-USDT,buy,0.5,20000,20
2024-01-05 10:00:00,BTC-USDT,buy,0.5,20500,20.5
2024-02-01 09:30:00,ETH-USDT,sell,2,6000,6
`
	txs, err := KuCoin(testRates).Trades(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Trades() failed: %v", err)
	}
	// two merged trades, two legs each (USDT quote)
	if len(txs) != 4 {
		t.Fatalf("got %d transactions, want 4", len(txs))
	}

	btc := txs[0]
	if btc.Kind != portfolio.KindSwapIn || btc.Asset != "BTC" {
		t.Fatalf("first leg = %s %s, want swap-in BTC", btc.Kind, btc.Asset)
	}
	// partial fills are merged
	if !btc.Quantity.Equal(portfolio.Q(1)) {
		t.Errorf("BTC quantity = %s, want 1 (merged fills)", btc.Quantity)
	}
	// USDT amounts double as the fiat value
	if !btc.Value.Equal(portfolio.M(40500, "USD")) {
		t.Errorf("BTC value = %s, want 40500 USD", btc.Value)
	}
	if !btc.Fee.Equal(portfolio.M(40.5, "USD")) {
		t.Errorf("BTC fee = %s, want 40.5 USD", btc.Fee)
	}
	quote := txs[1]
	if quote.Kind != portfolio.KindSwapOut || quote.Asset != "USDT" {
		t.Fatalf("second leg = %s %s, want swap-out USDT", quote.Kind, quote.Asset)
	}
	if !quote.Quantity.Equal(portfolio.Q(-40500)) {
		t.Errorf("USDT quantity = %s, want -40500", quote.Quantity)
	}
	if quote.SwapGroup == "" || quote.SwapGroup != btc.SwapGroup {
		t.Error("swap legs must share a group")
	}

	eth := txs[2]
	if eth.Kind != portfolio.KindSwapOut || !eth.Quantity.Equal(portfolio.Q(-2)) {
		t.Errorf("ETH leg = %s %s, want swap-out of -2", eth.Kind, eth.Quantity)
	}
}

func TestBitvavoConvertsEUR(t *testing.T) {
	csv := `Date,Time,Type,Currency,Amount,EUR received / paid,Fee amount,Fee currency,Address
2024-03-10,14:22:05,buy,BTC,0.1,-5000,5,EUR,
2024-03-10,14:22:05,deposit,BTC,0.2,,,,
2024-03-11,09:00:00,withdrawal,BTC,0.05,,0.0001,BTC,0xABCDEF
`
	parser := Bitvavo(testRates)
	txs, err := parser.Trades(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Trades() failed: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("got %d transactions, want 1", len(txs))
	}
	tx := txs[0]
	if tx.Kind != portfolio.KindBuy {
		t.Fatalf("kind = %s, want buy", tx.Kind)
	}
	if !tx.Value.Equal(portfolio.M(5500, "USD")) {
		t.Errorf("value = %s, want 5500 USD (5000 EUR at 1.1)", tx.Value)
	}
	if !tx.Fee.Equal(portfolio.M(5.5, "USD")) {
		t.Errorf("fee = %s, want 5.5 USD", tx.Fee)
	}
	if tx.Time.IsZero() || tx.Time.Location() != time.UTC {
		t.Errorf("time = %v, want a UTC timestamp", tx.Time)
	}

	transfers, err := parser.Transfers(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Transfers() failed: %v", err)
	}
	if len(transfers) != 2 {
		t.Fatalf("got %d transfers, want 2", len(transfers))
	}
	w := transfers[1]
	if w.Kind != portfolio.KindWithdrawal || !w.Quantity.Equal(portfolio.Q(-0.05)) {
		t.Errorf("withdrawal = %s %s, want -0.05", w.Kind, w.Quantity)
	}
	if w.Address != "0xabcdef" {
		t.Errorf("address = %q, want lowercased 0xabcdef", w.Address)
	}
}

func TestBitgetPairAndFee(t *testing.T) {
	csv := `Date,Trading pair,Direction,Price,Amount,Total,Fee
2024-04-01 08:00:00,LINKUSDT_SPBL,Buy,20,100,2000,0.1
`
	txs, err := Bitget(testRates).Trades(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Trades() failed: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("got %d transactions, want 2 swap legs", len(txs))
	}
	link := txs[0]
	if link.Asset != "LINK" || link.CounterAsset != "USDT" {
		t.Errorf("pair split = %s/%s, want LINK/USDT", link.Asset, link.CounterAsset)
	}
	// the base-asset fee is converted at the trade price
	if !link.Fee.Equal(portfolio.M(2, "USD")) {
		t.Errorf("fee = %s, want 2 USD (0.1 LINK at 20)", link.Fee)
	}
}

func TestMEXCTrades(t *testing.T) {
	csv := `Zeit;Paare;Seite;Ausgeführter Betrag;Gesamt;Gebühr
2024-05-02 18:30:00;DOT_USDT;SELL;50;350;0.35
`
	txs, err := MEXC(testRates).Trades(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Trades() failed: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("got %d transactions, want 2 swap legs", len(txs))
	}
	dot := txs[0]
	if dot.Kind != portfolio.KindSwapOut || dot.Asset != "DOT" || !dot.Quantity.Equal(portfolio.Q(-50)) {
		t.Errorf("leg = %s %s %s, want swap-out of -50 DOT", dot.Kind, dot.Asset, dot.Quantity)
	}
	usdt := txs[1]
	if usdt.Kind != portfolio.KindSwapIn || !usdt.Quantity.Equal(portfolio.Q(350)) {
		t.Errorf("leg = %s %s, want swap-in of 350 USDT", usdt.Kind, usdt.Quantity)
	}
}

func TestForFilePicksDialect(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"exports/kucoin_trades_2024.csv", "KuCoin"},
		{"Bitvavo-account.csv", "Bitvavo"},
		{"bison_2023.csv", "Bison"},
		{"spot_bitget.csv", "Bitget"},
		{"mexc-orders.csv", "MEXC"},
	}
	for _, tc := range tests {
		p, err := ForFile(tc.path, testRates)
		if err != nil {
			t.Errorf("ForFile(%q) failed: %v", tc.path, err)
			continue
		}
		if p.Name() != tc.want {
			t.Errorf("ForFile(%q) = %s, want %s", tc.path, p.Name(), tc.want)
		}
	}
	if _, err := ForFile("unknown.csv", testRates); err == nil {
		t.Error("ForFile() must fail on unknown brokers")
	}
}
