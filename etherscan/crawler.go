package etherscan

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
)

// Crawler discovers the set of owned wallets reachable from a few seed
// addresses by following transfer counterparties. Busy addresses, above
// MaxTransfers token transfers, are exchanges or contracts rather than
// personal wallets and go to the blacklist instead.
type Crawler struct {
	client *Client

	Wallets   map[string]bool
	Blacklist map[string]bool

	// MaxTransfers is the activity threshold above which an address is
	// blacklisted.
	MaxTransfers int
}

func NewCrawler(c *Client) *Crawler {
	return &Crawler{
		client:       c,
		Wallets:      make(map[string]bool),
		Blacklist:    make(map[string]bool),
		MaxTransfers: 100,
	}
}

// Crawl walks the transfer graph from the seeds and returns the sorted owned
// wallets found. Previously known wallets and blacklist entries are kept and
// skipped.
func (c *Crawler) Crawl(seeds ...string) ([]string, error) {
	for _, seed := range seeds {
		if err := c.visit(strings.ToLower(seed)); err != nil {
			return nil, err
		}
	}
	wallets := make([]string, 0, len(c.Wallets))
	for w := range c.Wallets {
		wallets = append(wallets, w)
	}
	sort.Strings(wallets)
	return wallets, nil
}

func (c *Crawler) visit(addr string) error {
	if addr == "" || c.Wallets[addr] || c.Blacklist[addr] {
		return nil
	}
	transfers, err := c.client.tokenTransfers(addr)
	if err != nil {
		return fmt.Errorf("crawling %s: %w", addr, err)
	}
	if len(transfers) > c.MaxTransfers {
		log.Printf("blacklisting %s: %d transfers", addr, len(transfers))
		c.Blacklist[addr] = true
		return nil
	}
	log.Printf("wallet %s: %d transfers", addr, len(transfers))
	c.Wallets[addr] = true

	for _, t := range transfers {
		if err := c.visit(strings.ToLower(t.From)); err != nil {
			return err
		}
		if err := c.visit(strings.ToLower(t.To)); err != nil {
			return err
		}
	}
	return nil
}

// LoadAddresses reads a one-address-per-line file into a set. A missing file
// is an empty set.
func LoadAddresses(path string) (map[string]bool, error) {
	set := make(map[string]bool)
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return set, nil
	}
	if err != nil {
		return nil, err
	}
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			set[strings.ToLower(line)] = true
		}
	}
	return set, nil
}

// SaveAddresses writes a set to a one-address-per-line file, sorted.
func SaveAddresses(path string, set map[string]bool) error {
	addrs := make([]string, 0, len(set))
	for a := range set {
		addrs = append(addrs, a)
	}
	sort.Strings(addrs)
	return os.WriteFile(path, []byte(strings.Join(addrs, "\n")+"\n"), 0644)
}
