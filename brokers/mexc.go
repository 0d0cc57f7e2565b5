package brokers

import (
	"fmt"
	"io"
	"strings"

	"github.com/sergensergio/crypto-portfolio"
)

// MEXC returns the parser for MEXC exports, which come semicolon separated
// with German headers.
func MEXC(rates RateSource) Parser { return &mexc{rates: rates} }

type mexc struct{ rates RateSource }

func (m *mexc) Name() string { return "MEXC" }

func (m *mexc) Trades(r io.Reader) ([]portfolio.Transaction, error) {
	t, err := readCSV(r, ';')
	if err != nil {
		return nil, err
	}
	var trades []trade
	for _, row := range t.rows {
		side := strings.ToLower(t.get(row, "Seite"))
		if side != "buy" && side != "sell" {
			continue
		}
		ts, err := parseTime(t.get(row, "Zeit"))
		if err != nil {
			return nil, err
		}
		base, quote, err := splitPair(t.get(row, "Paare"))
		if err != nil {
			return nil, err
		}
		size, err := parseAmount(t.get(row, "Ausgeführter Betrag"))
		if err != nil {
			return nil, fmt.Errorf("bad amount in MEXC export: %w", err)
		}
		funds, err := parseAmount(t.get(row, "Gesamt"))
		if err != nil {
			return nil, fmt.Errorf("bad total in MEXC export: %w", err)
		}
		fee, err := parseAmount(t.get(row, "Gebühr"))
		if err != nil {
			return nil, fmt.Errorf("bad fee in MEXC export: %w", err)
		}
		size, funds = orient(side, size, funds)
		trades = append(trades, trade{time: ts, base: base, quote: quote, side: side, size: size, funds: funds, fee: fee.Abs()})
	}
	return canonicalize(m.Name(), merge(trades), m.rates)
}

// Transfers parses the withdrawal export. The coin column carries the chain
// as a suffix ("ETH-ERC20").
func (m *mexc) Transfers(r io.Reader) ([]portfolio.Transaction, error) {
	t, err := readCSV(r, ';')
	if err != nil {
		return nil, err
	}
	if !t.has("Auszahlungsadresse") {
		return nil, nil
	}
	var txs []portfolio.Transaction
	for _, row := range t.rows {
		ts, err := parseTime(t.get(row, "Zeit"))
		if err != nil {
			return nil, err
		}
		amount, err := parseAmount(t.get(row, "Angeforderter Betrag"))
		if err != nil {
			return nil, fmt.Errorf("bad amount in MEXC export: %w", err)
		}
		coin, _, _ := strings.Cut(strings.ToUpper(t.get(row, "Krypto")), "-")
		addr := strings.ToLower(t.get(row, "Auszahlungsadresse"))
		txs = append(txs, portfolio.Transaction{
			ID:       portfolio.NewTxID(m.Name(), ts.String()+"|"+coin+"|"+addr),
			Time:     ts,
			Kind:     portfolio.KindWithdrawal,
			Asset:    coin,
			Quantity: portfolio.Q(amount.Abs().Neg()),
			Source:   m.Name(),
			Address:  addr,
		})
	}
	return txs, nil
}
