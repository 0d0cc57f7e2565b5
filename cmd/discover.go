package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/sergensergio/crypto-portfolio"
	"github.com/sergensergio/crypto-portfolio/etherscan"
)

// discoverCmd holds the flags for the 'discover' subcommand.
type discoverCmd struct {
	blacklistFile string
	crawl         bool
}

func (*discoverCmd) Name() string     { return "discover" }
func (*discoverCmd) Synopsis() string { return "discover on-chain activity of the owned wallets" }
func (*discoverCmd) Usage() string {
	return `cpf discover [-crawl] [<address>...]

  Fetches the chain activity of the owned wallets through Etherscan and
  merges it into the ledger: transfers already described by a broker
  record are dropped, transfers through a swap contract are paired into
  swaps. With -crawl, the given addresses seed a crawl of counterparty
  wallets first; busy addresses (exchanges, contracts) are blacklisted.
`
}

func (c *discoverCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.blacklistFile, "blacklist-file", "blacklist.txt", "Path to the blacklisted addresses file, one address per line")
	f.BoolVar(&c.crawl, "crawl", false, "Crawl counterparty wallets from the given seed addresses before discovery")
}

func (c *discoverCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	client := etherscan.NewClient()

	wallets, err := etherscan.LoadAddresses(*walletsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading wallets: %v\n", err)
		return subcommands.ExitFailure
	}
	for _, a := range f.Args() {
		wallets[a] = true
	}

	if c.crawl {
		crawler := etherscan.NewCrawler(client)
		crawler.Wallets = wallets
		crawler.Blacklist, err = etherscan.LoadAddresses(c.blacklistFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading blacklist: %v\n", err)
			return subcommands.ExitFailure
		}
		if _, err := crawler.Crawl(f.Args()...); err != nil {
			fmt.Fprintf(os.Stderr, "Error crawling: %v\n", err)
			return subcommands.ExitFailure
		}
		wallets = crawler.Wallets
		if err := etherscan.SaveAddresses(c.blacklistFile, crawler.Blacklist); err != nil {
			fmt.Fprintf(os.Stderr, "Error saving blacklist: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	if len(wallets) == 0 {
		fmt.Fprintln(os.Stderr, "No wallets to discover; pass addresses or fill the wallets file")
		return subcommands.ExitUsageError
	}
	if err := etherscan.SaveAddresses(*walletsFile, wallets); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving wallets: %v\n", err)
		return subcommands.ExitFailure
	}

	list := make([]string, 0, len(wallets))
	for w := range wallets {
		list = append(list, w)
	}
	discovery, err := client.Discover(list...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error discovering: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Discovered %d on-chain transactions from %d wallets\n", len(discovery.Transactions), len(list))

	// rebuild the whole ledger so on-chain records dedup against broker ones
	cfg, err := engineConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return subcommands.ExitUsageError
	}
	existing, err := loadTransactions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	b := portfolio.NewBuilder(cfg)
	for w := range wallets {
		b.OwnAddress(w)
	}
	b.SetSwapDetector(discovery.Detector())
	b.Add(existing...)
	b.AddOnChain(discovery.Transactions...)
	ledger, rejected := b.Build()
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
	fmt.Printf("Ledger now holds %d transactions\n", ledger.Len())
	return subcommands.ExitSuccess
}
