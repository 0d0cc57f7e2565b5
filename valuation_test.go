package portfolio

import (
	"testing"
	"time"
)

func TestValuationReportsUnpricedAsGaps(t *testing.T) {
	cfg := DefaultConfig()
	book := newLotBook(cfg.Policy)
	t0 := day(2024, time.January, 1)
	book.acquire("BTC", Q(2), USD(10000), t0, "a")
	book.acquire("OBSCURE", Q(100), USD(1), t0, "b")

	prices := StaticPrices{"BTC": USD(15000)}
	v, warnings := valuePortfolio(book, prices, cfg)

	if !v.Total.Equal(USD(30000)) {
		t.Errorf("total = %s, want 30000 (priced assets only)", v.Total)
	}
	// invested and unrealized follow the same priced-only rule
	if !v.TotalInvested.Equal(USD(20000)) {
		t.Errorf("invested = %s, want 20000", v.TotalInvested)
	}
	if !v.UnrealizedGain.Equal(USD(10000)) {
		t.Errorf("unrealized gain = %s, want 10000", v.UnrealizedGain)
	}
	if len(v.Unpriced) != 1 || v.Unpriced[0] != "OBSCURE" {
		t.Errorf("unpriced = %v, want [OBSCURE]", v.Unpriced)
	}
	if len(warnings) != 1 || warnings[0].Asset != "OBSCURE" {
		t.Errorf("warnings = %v, want one for OBSCURE", warnings)
	}
	// the gap is still listed among the assets
	var found bool
	for _, a := range v.Assets {
		if a.Asset == "OBSCURE" {
			found = true
			if !a.Unpriced {
				t.Error("OBSCURE not flagged unpriced")
			}
			if !a.Quantity.Equal(Q(100)) {
				t.Errorf("OBSCURE quantity = %s, want 100", a.Quantity)
			}
		}
	}
	if !found {
		t.Error("unpriced asset missing from the valuation")
	}
}

func TestBestPerformingRanksPricedAssets(t *testing.T) {
	cfg := DefaultConfig()
	book := newLotBook(cfg.Policy)
	t0 := day(2024, time.January, 1)
	book.acquire("BTC", Q(1), USD(10000), t0, "a")  // +50%
	book.acquire("ETH", Q(10), USD(2000), t0, "b")  // -25%
	book.acquire("LINK", Q(100), USD(10), t0, "c")  // unpriced

	prices := StaticPrices{
		"BTC": USD(15000),
		"ETH": USD(1500),
	}
	v, _ := valuePortfolio(book, prices, cfg)

	ranked := v.BestPerforming()
	if len(ranked) != 2 {
		t.Fatalf("BestPerforming() returned %d assets, want 2", len(ranked))
	}
	if ranked[0].Asset != "BTC" || ranked[1].Asset != "ETH" {
		t.Errorf("ranking = %s, %s; want BTC, ETH", ranked[0].Asset, ranked[1].Asset)
	}
	if !ranked[0].Performance.Equal(Q(0.5)) {
		t.Errorf("BTC performance = %s, want 0.5", ranked[0].Performance)
	}
}
