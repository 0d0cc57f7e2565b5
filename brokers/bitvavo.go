package brokers

import (
	"fmt"
	"io"
	"strings"

	"github.com/sergensergio/crypto-portfolio"
)

// Bitvavo returns the parser for Bitvavo account exports. Bitvavo mixes
// trades, deposits and withdrawals in one file; Trades and Transfers read the
// same export and keep their respective rows. All trades are quoted in EUR.
func Bitvavo(rates RateSource) Parser { return &bitvavo{rates: rates} }

type bitvavo struct{ rates RateSource }

func (b *bitvavo) Name() string { return "Bitvavo" }

func (b *bitvavo) timestamp(t *table, row []string) (string, error) {
	clock := t.get(row, "Time")
	if len(clock) > 8 {
		clock = clock[:8]
	}
	return t.get(row, "Date") + " " + clock, nil
}

func (b *bitvavo) Trades(r io.Reader) ([]portfolio.Transaction, error) {
	t, err := readCSV(r, ',')
	if err != nil {
		return nil, err
	}
	var trades []trade
	for _, row := range t.rows {
		side := strings.ToLower(t.get(row, "Type"))
		if side != "buy" && side != "sell" {
			continue
		}
		stamp, _ := b.timestamp(t, row)
		ts, err := parseTime(stamp)
		if err != nil {
			return nil, err
		}
		size, err := parseAmount(t.get(row, "Amount"))
		if err != nil {
			return nil, fmt.Errorf("bad amount in Bitvavo export: %w", err)
		}
		funds, err := parseAmount(t.get(row, "EUR received / paid"))
		if err != nil {
			return nil, fmt.Errorf("bad EUR amount in Bitvavo export: %w", err)
		}
		fee, err := parseAmount(t.get(row, "Fee amount"))
		if err != nil {
			return nil, fmt.Errorf("bad fee in Bitvavo export: %w", err)
		}
		size, funds = orient(side, size, funds)
		trades = append(trades, trade{
			time:  ts,
			base:  strings.ToUpper(t.get(row, "Currency")),
			quote: "EUR",
			side:  side,
			size:  size,
			funds: funds,
			fee:   fee.Abs(),
		})
	}
	return canonicalize(b.Name(), merge(trades), b.rates)
}

func (b *bitvavo) Transfers(r io.Reader) ([]portfolio.Transaction, error) {
	t, err := readCSV(r, ',')
	if err != nil {
		return nil, err
	}
	var txs []portfolio.Transaction
	for _, row := range t.rows {
		side := strings.ToLower(t.get(row, "Type"))
		if side != "withdrawal" && side != "deposit" {
			continue
		}
		stamp, _ := b.timestamp(t, row)
		ts, err := parseTime(stamp)
		if err != nil {
			return nil, err
		}
		amount, err := parseAmount(t.get(row, "Amount"))
		if err != nil {
			return nil, fmt.Errorf("bad amount in Bitvavo export: %w", err)
		}
		coin := strings.ToUpper(t.get(row, "Currency"))
		if coin == "EUR" {
			// fiat funding moves are not asset transactions
			continue
		}
		addr := strings.ToLower(t.get(row, "Address"))
		kind := portfolio.KindWithdrawal
		qty := portfolio.Q(amount.Abs().Neg())
		if side == "deposit" {
			kind = portfolio.KindDeposit
			qty = portfolio.Q(amount.Abs())
		}
		txs = append(txs, portfolio.Transaction{
			ID:       portfolio.NewTxID(b.Name(), ts.String()+"|"+side+"|"+coin+"|"+addr),
			Time:     ts,
			Kind:     kind,
			Asset:    coin,
			Quantity: qty,
			Source:   b.Name(),
			Address:  addr,
		})
	}
	return txs, nil
}
