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

type lotsCmd struct{}

func (*lotsCmd) Name() string     { return "lots" }
func (*lotsCmd) Synopsis() string { return "list the open lots still held" }
func (*lotsCmd) Usage() string {
	return `cpf lots

  Lists the acquisitions still held after replaying every disposal, with
  their remaining quantity and cost basis.
`
}

func (c *lotsCmd) SetFlags(f *flag.FlagSet) {}

func (c *lotsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	printMarkdown(renderer.LotsMarkdown(report.OpenLots))
	return subcommands.ExitSuccess
}
