package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/sergensergio/crypto-portfolio"
	"github.com/sergensergio/crypto-portfolio/brokers"
)

// importCmd holds the flags for the 'import' subcommand.
type importCmd struct {
	transfers bool
	offline   bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import broker CSV exports into the ledger" }
func (*importCmd) Usage() string {
	return `cpf import [-transfers] <file.csv>...

  Parses exchange exports and appends the transactions to the ledger.
  The broker dialect is picked from the file name (kucoin, bitvavo,
  bison, bitget, mexc). Re-importing the same export is harmless:
  duplicate records are skipped at report time.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.transfers, "transfers", false, "Treat the files as deposit/withdrawal exports instead of trade history")
	f.BoolVar(&c.offline, "offline", false, "Do not fetch EUR/USD rates; EUR quoted files will fail to import")
}

func (c *importCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "import needs at least one export file")
		return subcommands.ExitUsageError
	}

	var rates brokers.RateSource = brokers.NewFrankfurter()
	if c.offline {
		rates = brokers.FixedRates{}
	}

	var txs []portfolio.Transaction
	for _, path := range f.Args() {
		parser, err := brokers.ForFile(path, rates)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return subcommands.ExitFailure
		}
		file, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening %q: %v\n", path, err)
			return subcommands.ExitFailure
		}
		var parsed []portfolio.Transaction
		if c.transfers {
			parsed, err = parser.Transfers(file)
		} else {
			parsed, err = parser.Trades(file)
		}
		file.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing %q: %v\n", path, err)
			return subcommands.ExitFailure
		}
		fmt.Printf("%s: %d transactions from %s\n", parser.Name(), len(parsed), path)
		txs = append(txs, parsed...)
	}
	if len(txs) == 0 {
		fmt.Println("Nothing to import")
		return subcommands.ExitSuccess
	}
	return appendTransactions(txs)
}
