package portfolio

import (
	"errors"
	"fmt"
	"sort"
)

// PriceSource quotes the current price of one unit of an asset in the
// reporting currency. Implementations return an error wrapping ErrUnpriced
// when they have no quote for the asset.
type PriceSource interface {
	Price(asset string) (Money, error)
}

// StaticPrices is a PriceSource backed by a fixed map, mostly useful in
// tests and offline runs.
type StaticPrices map[string]Money

func (p StaticPrices) Price(asset string) (Money, error) {
	m, ok := p[asset]
	if !ok {
		return Money{}, fmt.Errorf("%w: %s", ErrUnpriced, asset)
	}
	return m, nil
}

// AssetValuation is the current worth of one held asset. When no price is
// available the position is still listed, with Unpriced set, so the report
// total is never silently wrong.
type AssetValuation struct {
	Asset     string
	Quantity  Quantity
	Price     Money
	Value     Money
	CostBasis Money
	// Performance is (Value-CostBasis)/CostBasis, zero when either side is
	// unknown.
	Performance Quantity
	Unpriced    bool
}

// Valuation is the point-in-time worth of the whole portfolio. Total,
// TotalInvested and UnrealizedGain cover priced assets only; Unpriced lists
// the gaps excluded from all three.
type Valuation struct {
	Assets []AssetValuation

	// Total is the current value, TotalInvested the acquisition cost of the
	// open lots behind it, UnrealizedGain their difference.
	Total          Money
	TotalInvested  Money
	UnrealizedGain Money

	Unpriced []string
}

// BestPerforming returns the priced assets ordered by performance, best
// first.
func (v Valuation) BestPerforming() []AssetValuation {
	var out []AssetValuation
	for _, a := range v.Assets {
		if !a.Unpriced {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[j].Performance.LessThan(out[i].Performance)
	})
	return out
}

// valuePortfolio prices the open lots of every asset still held. A failing
// quote never fails the valuation: the asset is reported as an explicit gap
// and a warning is recorded.
func valuePortfolio(lots *lotBook, prices PriceSource, cfg Config) (Valuation, []Warning) {
	held := make(map[string][]Lot)
	for _, lot := range lots.OpenAll() {
		held[lot.Asset] = append(held[lot.Asset], lot)
	}
	assets := make([]string, 0, len(held))
	for a := range held {
		assets = append(assets, a)
	}
	sort.Strings(assets)

	v := Valuation{
		Total:         M(0, cfg.ReportingCurrency),
		TotalInvested: M(0, cfg.ReportingCurrency),
	}
	var warnings []Warning
	for _, asset := range assets {
		av := AssetValuation{Asset: asset, CostBasis: M(0, cfg.ReportingCurrency)}
		for _, lot := range held[asset] {
			av.Quantity = av.Quantity.Add(lot.Remaining)
			av.CostBasis = av.CostBasis.Add(lot.CostBasis())
		}
		price, err := prices.Price(asset)
		switch {
		case errors.Is(err, ErrUnpriced):
			av.Unpriced = true
			v.Unpriced = append(v.Unpriced, asset)
			warnings = append(warnings, Warning{Asset: asset, Reason: err.Error()})
		case err != nil:
			av.Unpriced = true
			v.Unpriced = append(v.Unpriced, asset)
			warnings = append(warnings, Warning{Asset: asset, Reason: fmt.Sprintf("pricing %s: %v", asset, err)})
		default:
			av.Price = price
			av.Value = price.Mul(av.Quantity)
			v.Total = v.Total.Add(av.Value)
			v.TotalInvested = v.TotalInvested.Add(av.CostBasis)
			if av.CostBasis.IsPositive() {
				av.Performance = av.Value.Sub(av.CostBasis).DivPrice(av.CostBasis)
			}
		}
		v.Assets = append(v.Assets, av)
	}
	v.UnrealizedGain = v.Total.Sub(v.TotalInvested)
	return v, warnings
}
