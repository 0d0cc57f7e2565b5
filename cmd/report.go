package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/sergensergio/crypto-portfolio"
	"github.com/sergensergio/crypto-portfolio/coinmarketcap"
	"github.com/sergensergio/crypto-portfolio/renderer"
)

// reportCmd holds the flags for the 'report' subcommand.
type reportCmd struct {
	offline bool
}

func (*reportCmd) Name() string     { return "report" }
func (*reportCmd) Synopsis() string { return "full tax report: gains, holdings, fees, warnings" }
func (*reportCmd) Usage() string {
	return `cpf report [-offline]

  Replays the ledger, matches disposals against lots and prints the tax
  report. Holdings are valued with CoinMarketCap spot prices unless
  -offline is given.
`
}

func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.offline, "offline", false, "Skip portfolio valuation, no network access")
}

func (c *reportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := engineConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return subcommands.ExitUsageError
	}
	ledger, rejected, err := buildLedger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	var prices portfolio.PriceSource
	if !c.offline {
		prices = coinmarketcap.New(cfg.ReportingCurrency)
	}
	report := portfolio.NewReport(ledger, rejected, prices, cfg)
	printMarkdown(renderer.ReportMarkdown(report))
	return subcommands.ExitSuccess
}
