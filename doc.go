// Package portfolio computes portfolio accounting figures from heterogeneous
// crypto transaction exports: invested capital, current value, realized and
// unrealized profit/loss, and the portion of realized gains that is taxable
// under a holding-period exemption rule.
//
// The core is a transaction normalization and cost-basis tax engine:
//   - Canonical Transactions: one immutable record type that broker exports
//     and on-chain discoveries are normalized into.
//   - Ledger: merges transactions from multiple sources into one
//     chronologically ordered, deduplicated record per run. On-chain
//     candidates that duplicate already-known transfers are dropped, and
//     withdrawal/deposit pairs between owned venues are tagged as internal
//     transfers so they never produce tax events.
//   - Lot matching: disposals consume acquisition lots in FIFO order,
//     producing one realized gain/loss event per lot fragment with its
//     holding period.
//   - Tax classification: each realized event is taxable or exempt depending
//     on whether the matched lot was held longer than a configurable
//     threshold (default one year).
//   - Valuation: remaining open lots combined with current prices yield
//     invested capital, current value, unrealized gain and per-asset
//     performance ratios.
//
// Broker file parsing, on-chain retrieval and price lookup are collaborators
// behind small interfaces (see the brokers, etherscan and coinmarketcap
// packages); the engine itself performs no I/O and is deterministic given its
// inputs. This package serves as the foundational logic for the `cpf`
// command-line tool.
package portfolio
