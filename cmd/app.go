// Package cmd implements the CLI application to manage a crypto ledger and
// its tax reports.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/sergensergio/crypto-portfolio"
	"github.com/sergensergio/crypto-portfolio/etherscan"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&importCmd{}, "ingestion")
	c.Register(&discoverCmd{}, "ingestion")
	c.Register(&fmtCmd{}, "ingestion")

	c.Register(&reportCmd{}, "reporting")
	c.Register(&realizedCmd{}, "reporting")
	c.Register(&lotsCmd{}, "reporting")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var ledgerFile = flag.String("ledger-file", "ledger.jsonl", "Path to the ledger file containing transactions (JSONL format)")
var walletsFile = flag.String("wallets-file", "wallets.txt", "Path to the owned wallet addresses file, one address per line")
var exemptionDays = flag.Int("exemption-days", 365, "Holding period in days after which gains are tax exempt")
var method = flag.String("method", portfolio.FIFO.String(), "Lot matching method (fifo)")
var negative = flag.String("negative", portfolio.CarryForward.String(), "Negative taxable handling (carry-forward, clamp)")

// engineConfig assembles the engine configuration from the app flags.
func engineConfig() (portfolio.Config, error) {
	cfg := portfolio.DefaultConfig()
	cfg.ExemptionDays = *exemptionDays
	policy, err := portfolio.ParseMatchingPolicy(*method)
	if err != nil {
		return cfg, err
	}
	cfg.Policy = policy
	neg, err := portfolio.ParseNegativeTaxablePolicy(*negative)
	if err != nil {
		return cfg, err
	}
	cfg.Negative = neg
	return cfg, nil
}

// loadTransactions reads the app ledger file. A missing file is an empty
// ledger, not an error.
func loadTransactions() ([]portfolio.Transaction, error) {
	f, err := os.Open(*ledgerFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return portfolio.DecodeTransactions(f)
}

// buildLedger loads the app ledger file and assembles it, declaring the
// owned wallets so transfers between them are tagged internal.
func buildLedger(cfg portfolio.Config) (*portfolio.Ledger, []portfolio.RejectedTransaction, error) {
	txs, err := loadTransactions()
	if err != nil {
		return nil, nil, err
	}
	b := portfolio.NewBuilder(cfg)
	wallets, err := etherscan.LoadAddresses(*walletsFile)
	if err != nil {
		return nil, nil, err
	}
	for w := range wallets {
		b.OwnAddress(w)
	}
	b.Add(txs...)
	ledger, rejected := b.Build()
	return ledger, rejected, nil
}

// appendTransactions appends transactions to the app ledger file, creating it
// if needed.
func appendTransactions(txs []portfolio.Transaction) subcommands.ExitStatus {
	f, err := os.OpenFile(*ledgerFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger file %q: %v\n", *ledgerFile, err)
		return subcommands.ExitFailure
	}
	defer f.Close()

	if err := portfolio.EncodeTransactions(f, txs...); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing to ledger file %q: %v\n", *ledgerFile, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Appended %d transactions to %s\n", len(txs), *ledgerFile)
	return subcommands.ExitSuccess
}

// printMarkdown renders markdown for the terminal, falling back to the raw
// text when rendering fails (e.g. no TTY).
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
