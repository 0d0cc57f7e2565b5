// Package brokers parses exchange trade and transfer exports into canonical
// transactions. Each supported exchange ships its own CSV dialect; the
// dialects only map columns, all normalization rules live here:
//
//   - partial fills of one order are merged into a single trade
//   - EUR-quoted trades are converted to USD at the day's rate
//   - trades quoted in another crypto become a pair of swap legs
//   - buys take a positive quantity and sells a negative one
package brokers

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sergensergio/crypto-portfolio"
	"github.com/shopspring/decimal"
)

// A Parser reads one exchange's export files.
type Parser interface {
	// Name is the source tag stamped on every parsed transaction.
	Name() string
	// Trades parses a trade history export.
	Trades(r io.Reader) ([]portfolio.Transaction, error)
	// Transfers parses a deposit/withdrawal export. Dialects without such an
	// export return nothing.
	Transfers(r io.Reader) ([]portfolio.Transaction, error)
}

// ForFile picks the dialect from the file name, the way exchanges name their
// exports.
func ForFile(path string, rates RateSource) (Parser, error) {
	name := strings.ToLower(filepath.Base(path))
	switch {
	case strings.Contains(name, "kucoin"):
		return KuCoin(rates), nil
	case strings.Contains(name, "bitvavo"):
		return Bitvavo(rates), nil
	case strings.Contains(name, "bison"):
		return Bison(rates), nil
	case strings.Contains(name, "bitget"):
		return Bitget(rates), nil
	case strings.Contains(name, "mexc"):
		return MEXC(rates), nil
	}
	return nil, fmt.Errorf("broker not recognised: %s", path)
}

// stable lists the USD-pegged quote assets whose amounts double as fiat
// values.
var stable = map[string]bool{"USDT": true, "USDC": true, "BUSD": true, "DAI": true, "TUSD": true}

// trade is one normalized trade row before canonicalization: buys have a
// positive size and a negative funds flow, sells the opposite. Fee is in the
// quote currency, always positive.
type trade struct {
	time        time.Time
	base, quote string
	side        string
	size        decimal.Decimal
	funds       decimal.Decimal
	fee         decimal.Decimal
}

func (t trade) key() string {
	return t.time.Format(time.RFC3339) + "|" + t.base + "-" + t.quote + "|" + t.side
}

// merge aggregates partial fills: rows sharing timestamp, pair and side sum
// their sizes, funds and fees into one trade, sorted chronologically.
func merge(trades []trade) []trade {
	byKey := make(map[string]*trade)
	var order []string
	for _, t := range trades {
		k := t.key()
		agg, ok := byKey[k]
		if !ok {
			c := t
			byKey[k] = &c
			order = append(order, k)
			continue
		}
		agg.size = agg.size.Add(t.size)
		agg.funds = agg.funds.Add(t.funds)
		agg.fee = agg.fee.Add(t.fee)
	}
	out := make([]trade, 0, len(order))
	for _, k := range order {
		out = append(out, *byKey[k])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].time.Before(out[j].time) })
	return out
}

// canonicalize turns merged trades into transactions: EUR quotes are
// converted to USD, fiat quotes give a plain buy or sell, crypto quotes give
// a swap-out/swap-in pair sharing a group.
func canonicalize(broker string, trades []trade, rates RateSource) ([]portfolio.Transaction, error) {
	var txs []portfolio.Transaction
	for _, t := range trades {
		if t.quote == "EUR" {
			rate, err := rates.Rate("EUR", "USD", t.time)
			if err != nil {
				return nil, fmt.Errorf("converting %s trade of %s: %w", broker, t.time.Format(time.DateOnly), err)
			}
			t.funds = t.funds.Mul(rate)
			t.fee = t.fee.Mul(rate)
			t.quote = "USD"
		}

		ref := t.key()
		value := portfolio.M(t.funds.Abs(), "USD")
		fee := portfolio.M(t.fee.Abs(), "USD")

		if t.quote == "USD" {
			kind := portfolio.KindBuy
			if t.size.IsNegative() {
				kind = portfolio.KindSell
			}
			txs = append(txs, portfolio.Transaction{
				ID:       portfolio.NewTxID(broker, ref),
				Time:     t.time,
				Kind:     kind,
				Asset:    t.base,
				Quantity: portfolio.Q(t.size),
				Value:    value,
				Fee:      fee,
				Source:   broker,
			})
			continue
		}

		// crypto quote: one leg per asset. The funds flow of the quote asset
		// carries the opposite sign of the base size already.
		if !stable[t.quote] {
			value = portfolio.Money{}
			fee = portfolio.Money{}
		}
		group := portfolio.NewTxID(broker, ref+"|swap")
		baseKind, quoteKind := portfolio.KindSwapIn, portfolio.KindSwapOut
		if t.size.IsNegative() {
			baseKind, quoteKind = portfolio.KindSwapOut, portfolio.KindSwapIn
		}
		txs = append(txs,
			portfolio.Transaction{
				ID:              portfolio.NewTxID(broker, ref+"|base"),
				Time:            t.time,
				Kind:            baseKind,
				Asset:           t.base,
				Quantity:        portfolio.Q(t.size),
				Value:           value,
				Fee:             fee,
				CounterAsset:    t.quote,
				CounterQuantity: portfolio.Q(t.funds),
				SwapGroup:       group,
				Source:          broker,
			},
			portfolio.Transaction{
				ID:              portfolio.NewTxID(broker, ref+"|quote"),
				Time:            t.time,
				Kind:            quoteKind,
				Asset:           t.quote,
				Quantity:        portfolio.Q(t.funds),
				Value:           value,
				CounterAsset:    t.base,
				CounterQuantity: portfolio.Q(t.size),
				SwapGroup:       group,
				Source:          broker,
			},
		)
	}
	return txs, nil
}

// orient applies the sign convention regardless of how the export signs its
// numbers: buys receive the asset and spend the funds, sells the opposite.
func orient(side string, size, funds decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	size, funds = size.Abs(), funds.Abs()
	if side == "buy" {
		return size, funds.Neg()
	}
	return size.Neg(), funds
}

// table is a parsed CSV with column access by header name.
type table struct {
	cols map[string]int
	rows [][]string
}

func readCSV(r io.Reader, comma rune) (*table, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty export")
	}
	t := &table{cols: make(map[string]int, len(records[0])), rows: records[1:]}
	for i, name := range records[0] {
		t.cols[strings.TrimSpace(name)] = i
	}
	return t, nil
}

// get returns the trimmed cell of a row under a header name, empty when the
// column or cell is absent.
func (t *table) get(row []string, col string) string {
	i, ok := t.cols[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (t *table) has(col string) bool {
	_, ok := t.cols[col]
	return ok
}

func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Decimal{}, nil
	}
	return decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
}

// parseTime tries the timestamp layouts seen across exports.
func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{
		time.DateTime,
		"2006-01-02 15:04:05.000",
		time.RFC3339,
		"02.01.2006 15:04:05",
	} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// splitPair splits "BTC-USDT" like symbols, tolerating "_" separators.
func splitPair(pair string) (base, quote string, err error) {
	pair = strings.ReplaceAll(pair, "_", "-")
	base, quote, ok := strings.Cut(pair, "-")
	if !ok || base == "" || quote == "" {
		return "", "", fmt.Errorf("unrecognised pair %q", pair)
	}
	return strings.ToUpper(base), strings.ToUpper(quote), nil
}
