package brokers

import (
	"fmt"
	"io"
	"strings"

	"github.com/sergensergio/crypto-portfolio"
)

// Bitget returns the parser for Bitget spot exports. Bitget charges its fee
// in the base asset; the parser converts it to the quote currency at the
// trade price.
func Bitget(rates RateSource) Parser { return &bitget{rates: rates} }

type bitget struct{ rates RateSource }

func (b *bitget) Name() string { return "Bitget" }

// bitgetQuotes are the quote assets Bitget concatenates into the pair symbol
// (e.g. BTCUSDT_SPBL), tried in order.
var bitgetQuotes = []string{"USDT", "USDC", "BTC", "ETH", "EUR", "USD"}

func splitBitgetPair(pair string) (base, quote string, err error) {
	pair = strings.ToUpper(strings.TrimSuffix(strings.TrimSpace(pair), "_SPBL"))
	for _, q := range bitgetQuotes {
		if p, ok := strings.CutSuffix(pair, q); ok && p != "" {
			return p, q, nil
		}
	}
	return "", "", fmt.Errorf("unrecognised pair %q", pair)
}

func (b *bitget) Trades(r io.Reader) ([]portfolio.Transaction, error) {
	t, err := readCSV(r, ',')
	if err != nil {
		return nil, err
	}
	var trades []trade
	for _, row := range t.rows {
		side := strings.ToLower(t.get(row, "Direction"))
		if side != "buy" && side != "sell" {
			continue
		}
		ts, err := parseTime(t.get(row, "Date"))
		if err != nil {
			return nil, err
		}
		base, quote, err := splitBitgetPair(t.get(row, "Trading pair"))
		if err != nil {
			return nil, err
		}
		size, err := parseAmount(t.get(row, "Amount"))
		if err != nil {
			return nil, fmt.Errorf("bad amount in Bitget export: %w", err)
		}
		funds, err := parseAmount(t.get(row, "Total"))
		if err != nil {
			return nil, fmt.Errorf("bad total in Bitget export: %w", err)
		}
		fee, err := parseAmount(t.get(row, "Fee"))
		if err != nil {
			return nil, fmt.Errorf("bad fee in Bitget export: %w", err)
		}
		price, err := parseAmount(t.get(row, "Price"))
		if err != nil {
			return nil, fmt.Errorf("bad price in Bitget export: %w", err)
		}
		size, funds = orient(side, size, funds)
		trades = append(trades, trade{
			time:  ts,
			base:  base,
			quote: quote,
			side:  side,
			size:  size,
			funds: funds,
			fee:   fee.Abs().Mul(price),
		})
	}
	return canonicalize(b.Name(), merge(trades), b.rates)
}

func (b *bitget) Transfers(r io.Reader) ([]portfolio.Transaction, error) {
	// Bitget has no withdrawal export; transfers come from on-chain discovery.
	return nil, nil
}
