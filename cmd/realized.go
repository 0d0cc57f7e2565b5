package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/sergensergio/crypto-portfolio"
	"github.com/sergensergio/crypto-portfolio/renderer"
)

// realizedCmd holds the flags for the 'realized' subcommand.
type realizedCmd struct {
	year int
}

func (*realizedCmd) Name() string     { return "realized" }
func (*realizedCmd) Synopsis() string { return "list realized gain/loss events" }
func (*realizedCmd) Usage() string {
	return `cpf realized [-year <year>]

  Lists every realized event, one per lot fragment disposed of, with its
  holding period and tax classification.
`
}

func (c *realizedCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.year, "year", 0, "Only events disposed in this calendar year (0 for all)")
}

func (c *realizedCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	report := portfolio.NewReport(ledger, rejected, nil, cfg)

	events := report.Events
	if c.year != 0 {
		events = report.EventsIn(c.year)
	}
	printMarkdown(renderer.RealizedMarkdown(events))
	return subcommands.ExitSuccess
}
