package brokers

import (
	"fmt"
	"io"
	"strings"

	"github.com/sergensergio/crypto-portfolio"
)

// Bison returns the parser for Bison app exports, semicolon separated and
// EUR quoted.
func Bison(rates RateSource) Parser { return &bison{rates: rates} }

type bison struct{ rates RateSource }

func (b *bison) Name() string { return "Bison" }

func (b *bison) Trades(r io.Reader) ([]portfolio.Transaction, error) {
	t, err := readCSV(r, ';')
	if err != nil {
		return nil, err
	}
	var trades []trade
	for _, row := range t.rows {
		side := strings.ToLower(t.get(row, "TransactionType"))
		if side != "buy" && side != "sell" {
			continue
		}
		ts, err := parseTime(t.get(row, "Date"))
		if err != nil {
			return nil, err
		}
		size, err := parseAmount(t.get(row, "AssetAmount"))
		if err != nil {
			return nil, fmt.Errorf("bad asset amount in Bison export: %w", err)
		}
		funds, err := parseAmount(t.get(row, "EurAmount"))
		if err != nil {
			return nil, fmt.Errorf("bad EUR amount in Bison export: %w", err)
		}
		fee, err := parseAmount(t.get(row, "Fee"))
		if err != nil {
			return nil, fmt.Errorf("bad fee in Bison export: %w", err)
		}
		size, funds = orient(side, size, funds)
		trades = append(trades, trade{
			time:  ts,
			base:  strings.ToUpper(t.get(row, "Asset")),
			quote: "EUR",
			side:  side,
			size:  size,
			funds: funds,
			fee:   fee.Abs(),
		})
	}
	return canonicalize(b.Name(), merge(trades), b.rates)
}

// Transfers keeps the Withdraw and Deposit rows of the same export. Bison
// does not report destination addresses, so these transfers only pair with
// on-chain arrivals through quantity and timing.
func (b *bison) Transfers(r io.Reader) ([]portfolio.Transaction, error) {
	t, err := readCSV(r, ';')
	if err != nil {
		return nil, err
	}
	var txs []portfolio.Transaction
	for _, row := range t.rows {
		side := strings.ToLower(t.get(row, "TransactionType"))
		if side != "withdraw" && side != "deposit" {
			continue
		}
		if t.get(row, "Currency") != "" {
			// fiat funding moves are not asset transactions
			continue
		}
		ts, err := parseTime(t.get(row, "Date"))
		if err != nil {
			return nil, err
		}
		amount, err := parseAmount(t.get(row, "AssetAmount"))
		if err != nil {
			return nil, fmt.Errorf("bad asset amount in Bison export: %w", err)
		}
		coin := strings.ToUpper(t.get(row, "Asset"))
		kind := portfolio.KindWithdrawal
		qty := portfolio.Q(amount.Abs().Neg())
		if side == "deposit" {
			kind = portfolio.KindDeposit
			qty = portfolio.Q(amount.Abs())
		}
		txs = append(txs, portfolio.Transaction{
			ID:       portfolio.NewTxID(b.Name(), ts.String()+"|"+side+"|"+coin),
			Time:     ts,
			Kind:     kind,
			Asset:    coin,
			Quantity: qty,
			Source:   b.Name(),
		})
	}
	return txs, nil
}
