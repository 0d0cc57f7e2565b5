package portfolio

import "time"

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

// day is a helper for test to create a UTC timestamp at noon of a given day.
func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

// buy is a helper for test to create a valid buy transaction.
func buy(ts time.Time, asset string, qty, value float64, source string) Transaction {
	return Transaction{
		ID:       NewTxID(source, ts.String()+"|buy|"+asset),
		Time:     ts,
		Kind:     KindBuy,
		Asset:    asset,
		Quantity: Q(qty),
		Value:    USD(value),
		Source:   source,
	}
}

// sell is a helper for test to create a valid sell transaction.
func sell(ts time.Time, asset string, qty, value float64, source string) Transaction {
	return Transaction{
		ID:       NewTxID(source, ts.String()+"|sell|"+asset),
		Time:     ts,
		Kind:     KindSell,
		Asset:    asset,
		Quantity: Q(qty).Abs().Neg(),
		Value:    USD(value),
		Source:   source,
	}
}
