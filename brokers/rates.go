package brokers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/sergensergio/crypto-portfolio/web"
	"github.com/shopspring/decimal"
)

// RateSource converts between fiat currencies at a given day's rate.
type RateSource interface {
	Rate(from, to string, day time.Time) (decimal.Decimal, error)
}

// FixedRates is a RateSource with constant rates, keyed "FROM/TO". Useful in
// tests and for quick offline runs.
type FixedRates map[string]decimal.Decimal

func (r FixedRates) Rate(from, to string, day time.Time) (decimal.Decimal, error) {
	rate, ok := r[from+"/"+to]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("no fixed rate for %s/%s", from, to)
	}
	return rate, nil
}

// Frankfurter serves historical ECB reference rates from frankfurter.app.
// No API key needed; responses go through the daily disk cache.
type Frankfurter struct {
	client *http.Client
}

func NewFrankfurter() *Frankfurter {
	return &Frankfurter{client: web.Daily()}
}

func (f *Frankfurter) Rate(from, to string, day time.Time) (decimal.Decimal, error) {
	addr := fmt.Sprintf("https://api.frankfurter.app/%s?from=%s&to=%s", day.Format(time.DateOnly), from, to)
	var jobj any
	if err := web.GetJSON(f.client, addr, &jobj); err != nil {
		return decimal.Decimal{}, fmt.Errorf("error retrieving %s/%s rate: %w", from, to, err)
	}
	path := fmt.Sprintf("$.rates.%s", to)
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("error parsing %s/%s rate: %q %w", from, to, path, err)
	}
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	val, ok := jval.(float64)
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("error parsing %s/%s rate: not a float: %v", from, to, jval)
	}
	return decimal.NewFromFloat(val), nil
}
