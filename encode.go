package portfolio

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
)

func init() {
	// Quantities and amounts are persisted as JSON numbers, full precision.
	decimal.MarshalJSONWithoutQuotes = true
}

// EncodeLedger writes the ledger as JSONL, one transaction per line in
// chronological order. The field order inside each object is stable, so two
// encodings of the same ledger are byte-identical and diff-friendly.
func EncodeLedger(w io.Writer, l *Ledger) error {
	enc := json.NewEncoder(w)
	for _, tx := range l.transactions {
		if err := enc.Encode(tx); err != nil {
			return fmt.Errorf("encoding transaction %s: %w", tx.ID, err)
		}
	}
	return nil
}

// EncodeTransactions appends transactions to a JSONL stream, one per line.
func EncodeTransactions(w io.Writer, txs ...Transaction) error {
	enc := json.NewEncoder(w)
	for _, tx := range txs {
		if err := enc.Encode(tx); err != nil {
			return fmt.Errorf("encoding transaction %s: %w", tx.ID, err)
		}
	}
	return nil
}

// DecodeTransactions reads a JSONL stream of transactions. Blank lines are
// skipped; a malformed line fails the decode with its line number.
func DecodeTransactions(r io.Reader) ([]Transaction, error) {
	var txs []Transaction
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var tx Transaction
		if err := json.Unmarshal(raw, &tx); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		txs = append(txs, tx)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}
	return txs, nil
}

// DecodeLedger reads a JSONL stream and assembles it into a Ledger under
// cfg's rules. Records that fail validation are returned as rejected, the
// rest make it into the ledger.
func DecodeLedger(r io.Reader, cfg Config) (*Ledger, []RejectedTransaction, error) {
	txs, err := DecodeTransactions(r)
	if err != nil {
		return nil, nil, err
	}
	b := NewBuilder(cfg)
	b.Add(txs...)
	ledger, rejected := b.Build()
	return ledger, rejected, nil
}
