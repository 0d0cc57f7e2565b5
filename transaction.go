package portfolio

import (
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TxKind is a typed string identifying the kind of a canonical transaction.
type TxKind string

// Transaction kinds.
const (
	KindBuy        TxKind = "buy"
	KindSell       TxKind = "sell"
	KindSwapIn     TxKind = "swap-in"
	KindSwapOut    TxKind = "swap-out"
	KindFee        TxKind = "fee"
	KindDeposit    TxKind = "deposit"
	KindWithdrawal TxKind = "withdrawal"
	KindTransfer   TxKind = "internal-transfer"
)

// Transaction is the canonical record all sources are normalized into.
// It is immutable once ingested: the ledger hands out copies, never pointers.
type Transaction struct {
	// ID is a stable identifier, unique per ledger. It is constructed
	// deterministically from the source and the source-native reference so
	// that re-importing the same export is idempotent.
	ID string

	// Time is the UTC instant of the transaction, the total order key for
	// processing.
	Time time.Time

	Kind  TxKind
	Asset string

	// Quantity is the signed amount of Asset: positive increases holdings,
	// negative decreases them.
	Quantity Quantity

	// Value is the fiat value in the reporting currency at transaction time.
	// The zero Money means the value is unknown and to be derived.
	Value Money

	// Fee is the fiat fee paid on this transaction. On acquisitions it is
	// capitalized into the lot's unit cost; on disposals it reduces proceeds.
	Fee Money

	// CounterAsset and CounterQuantity are populated on swap legs and
	// describe the other side of the exchange.
	CounterAsset    string
	CounterQuantity Quantity

	// SwapGroup links the two legs of a swap. Both legs share the same value.
	SwapGroup string

	// Source is the provenance tag: a broker name, or "on-chain".
	Source string

	// Address is the wallet address for deposits, withdrawals and on-chain
	// entries. Used for cross-referencing and deduplication.
	Address string

	// seq is the ingestion order, the stable tie-break for identical
	// timestamps.
	seq int
}

// OnChainSource is the provenance tag of transactions discovered on-chain.
const OnChainSource = "on-chain"

// NewTxID derives the deterministic transaction identifier from a source tag
// and the source-native reference (trade id, tx hash, row fingerprint).
func NewTxID(source, ref string) string {
	return fmt.Sprintf("%x", sha1.Sum([]byte(source+"|"+ref)))
}

// IsAcquisition reports whether the transaction adds lots to the holdings.
func (t Transaction) IsAcquisition() bool {
	switch t.Kind {
	case KindBuy, KindSwapIn, KindDeposit:
		return true
	}
	return false
}

// IsDisposal reports whether the transaction consumes lots from the holdings.
// Withdrawals are not disposals: moving coins to an unknown address is not a
// sale, the matcher surfaces it as a warning instead.
func (t Transaction) IsDisposal() bool {
	switch t.Kind {
	case KindSell, KindSwapOut, KindFee:
		return true
	}
	return false
}

// Validate checks the canonical invariants of a single record. Violations are
// ingestion errors: the record is rejected individually, never the batch.
func (t Transaction) Validate() error {
	if t.Asset == "" {
		return errors.New("asset is missing")
	}
	if t.Time.IsZero() {
		return errors.New("timestamp is missing")
	}
	if t.Kind == "" {
		return errors.New("kind is missing")
	}
	switch t.Kind {
	case KindBuy, KindSwapIn, KindDeposit:
		if !t.Quantity.IsPositive() {
			return fmt.Errorf("%s quantity must be positive, got %s", t.Kind, t.Quantity)
		}
	case KindSell, KindSwapOut, KindWithdrawal, KindFee:
		if !t.Quantity.IsNegative() {
			return fmt.Errorf("%s quantity must be negative, got %s", t.Kind, t.Quantity)
		}
	case KindTransfer:
		// either direction
	default:
		return fmt.Errorf("unknown transaction kind %q", t.Kind)
	}
	if t.Kind == KindSwapIn || t.Kind == KindSwapOut {
		if t.SwapGroup == "" {
			return fmt.Errorf("%s leg without swap group", t.Kind)
		}
		if t.CounterAsset == "" {
			return fmt.Errorf("%s leg without counter asset", t.Kind)
		}
	}
	return nil
}

// Equal reports whether two transactions describe the same record,
// ingestion order aside.
func (t Transaction) Equal(o Transaction) bool {
	return t.ID == o.ID &&
		t.Time.Equal(o.Time) &&
		t.Kind == o.Kind &&
		t.Asset == o.Asset &&
		t.Quantity.Equal(o.Quantity) &&
		t.Value.Equal(o.Value) &&
		t.Fee.Equal(o.Fee) &&
		t.CounterAsset == o.CounterAsset &&
		t.CounterQuantity.Equal(o.CounterQuantity) &&
		t.SwapGroup == o.SwapGroup &&
		t.Source == o.Source &&
		t.Address == o.Address
}

func (t Transaction) String() string {
	return fmt.Sprintf("%s %s %s %s (%s)", t.Time.Format(time.RFC3339), t.Kind, t.Quantity, t.Asset, t.Source)
}

// MarshalJSON encodes the transaction with a stable key order for canonical
// JSONL ledgers.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", t.ID)
	w.Append("time", t.Time.UTC().Format(time.RFC3339))
	w.Append("kind", t.Kind)
	w.Append("asset", t.Asset)
	w.Append("quantity", t.Quantity)
	w.Optional("value", t.Value)
	w.Optional("fee", t.Fee)
	w.Optional("counterAsset", t.CounterAsset)
	if t.CounterAsset != "" {
		w.Append("counterQuantity", t.CounterQuantity)
	}
	w.Optional("swapGroup", t.SwapGroup)
	w.Optional("source", t.Source)
	w.Optional("address", t.Address)
	return w.MarshalJSON()
}

// amountField reads a Money persisted as {"amount": ..., "currency": ...}.
type amountField struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

func (a amountField) Money() Money {
	if a.Amount.IsZero() && a.Currency == "" {
		return Money{}
	}
	return M(a.Amount, a.Currency)
}

// UnmarshalJSON implements the json.Unmarshaler interface for Transaction.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var temp struct {
		ID              string      `json:"id"`
		Time            time.Time   `json:"time"`
		Kind            TxKind      `json:"kind"`
		Asset           string      `json:"asset"`
		Quantity        Quantity    `json:"quantity"`
		Value           amountField `json:"value"`
		Fee             amountField `json:"fee"`
		CounterAsset    string      `json:"counterAsset"`
		CounterQuantity Quantity    `json:"counterQuantity"`
		SwapGroup       string      `json:"swapGroup"`
		Source          string      `json:"source"`
		Address         string      `json:"address"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	t.ID = temp.ID
	t.Time = temp.Time.UTC()
	t.Kind = temp.Kind
	t.Asset = temp.Asset
	t.Quantity = temp.Quantity
	t.Value = temp.Value.Money()
	t.Fee = temp.Fee.Money()
	t.CounterAsset = temp.CounterAsset
	t.CounterQuantity = temp.CounterQuantity
	t.SwapGroup = temp.SwapGroup
	t.Source = temp.Source
	t.Address = temp.Address
	return nil
}
