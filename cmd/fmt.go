package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/sergensergio/crypto-portfolio"
)

type fmtCmd struct{}

func (*fmtCmd) Name() string     { return "fmt" }
func (*fmtCmd) Synopsis() string { return "rewrite the ledger file in canonical form" }
func (*fmtCmd) Usage() string {
	return `cpf fmt

  Rewrites the ledger file: sorted chronologically, duplicates dropped,
  stable field order. The result is diff-friendly.
`
}

func (c *fmtCmd) SetFlags(f *flag.FlagSet) {}

func (c *fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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
	for _, r := range rejected {
		fmt.Fprintf(os.Stderr, "rejected: %s\n", r)
	}

	out, err := os.Create(*ledgerFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing ledger file %q: %v\n", *ledgerFile, err)
		return subcommands.ExitFailure
	}
	defer out.Close()
	if err := portfolio.EncodeLedger(out, ledger); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing ledger file %q: %v\n", *ledgerFile, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Rewrote %s with %d transactions\n", *ledgerFile, ledger.Len())
	return subcommands.ExitSuccess
}
