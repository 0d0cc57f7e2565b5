package brokers

import (
	"fmt"
	"io"
	"strings"

	"github.com/sergensergio/crypto-portfolio"
)

// KuCoin returns the parser for KuCoin trade and withdrawal exports.
func KuCoin(rates RateSource) Parser { return &kucoin{rates: rates} }

type kucoin struct{ rates RateSource }

func (k *kucoin) Name() string { return "KuCoin" }

func (k *kucoin) Trades(r io.Reader) ([]portfolio.Transaction, error) {
	t, err := readCSV(r, ',')
	if err != nil {
		return nil, err
	}
	var trades []trade
	for _, row := range t.rows {
		side := strings.ToLower(t.get(row, "side"))
		if side != "buy" && side != "sell" {
			continue
		}
		ts, err := parseTime(t.get(row, "tradeCreatedAt"))
		if err != nil {
			return nil, err
		}
		base, quote, err := splitPair(t.get(row, "symbol"))
		if err != nil {
			return nil, err
		}
		size, err := parseAmount(t.get(row, "size"))
		if err != nil {
			return nil, fmt.Errorf("bad size in KuCoin export: %w", err)
		}
		funds, err := parseAmount(t.get(row, "funds"))
		if err != nil {
			return nil, fmt.Errorf("bad funds in KuCoin export: %w", err)
		}
		fee, err := parseAmount(t.get(row, "fee"))
		if err != nil {
			return nil, fmt.Errorf("bad fee in KuCoin export: %w", err)
		}
		size, funds = orient(side, size, funds)
		trades = append(trades, trade{time: ts, base: base, quote: quote, side: side, size: size, funds: funds, fee: fee.Abs()})
	}
	return canonicalize(k.Name(), merge(trades), k.rates)
}

func (k *kucoin) Transfers(r io.Reader) ([]portfolio.Transaction, error) {
	t, err := readCSV(r, ',')
	if err != nil {
		return nil, err
	}
	if !t.has("Wallet Address/Account") {
		return nil, nil
	}
	var txs []portfolio.Transaction
	for _, row := range t.rows {
		ts, err := parseTime(t.get(row, "Time"))
		if err != nil {
			return nil, err
		}
		amount, err := parseAmount(t.get(row, "Amount"))
		if err != nil {
			return nil, fmt.Errorf("bad amount in KuCoin export: %w", err)
		}
		coin := strings.ToUpper(t.get(row, "Coin"))
		addr := strings.ToLower(t.get(row, "Wallet Address/Account"))
		kind := portfolio.KindWithdrawal
		qty := portfolio.Q(amount.Abs().Neg())
		if strings.EqualFold(t.get(row, "Type"), "deposit") {
			kind = portfolio.KindDeposit
			qty = portfolio.Q(amount.Abs())
		}
		txs = append(txs, portfolio.Transaction{
			ID:       portfolio.NewTxID(k.Name(), ts.String()+"|"+coin+"|"+addr),
			Time:     ts,
			Kind:     kind,
			Asset:    coin,
			Quantity: qty,
			Source:   k.Name(),
			Address:  addr,
		})
	}
	return txs, nil
}
