// Package etherscan discovers on-chain activity of owned Ethereum wallets
// through the Etherscan API and normalizes it into canonical transactions.
//
// Discovery knows nothing about fiat values: transfers come out unvalued and
// swaps are only flagged, the ledger's pairing turns them into swap legs.
package etherscan

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sergensergio/crypto-portfolio"
	"github.com/sergensergio/crypto-portfolio/web"
	"github.com/shopspring/decimal"
)

const apiURL = "https://api.etherscan.io/api"

const etherscan_api_key = "ETHERSCAN_API_KEY"

var etherscanApiFlag = flag.String("etherscan-api-key", "", "Etherscan API key used to crawl wallet activity.\n If missing it will read the environment variable \""+etherscan_api_key+"\". You can get one at https://etherscan.io/apis")

func apiKey() string {
	// If the flag is not set, we try to read it from the environment variable.
	if *etherscanApiFlag == "" {
		*etherscanApiFlag = os.Getenv(etherscan_api_key)
	}
	return *etherscanApiFlag
}

// Client queries the Etherscan account endpoints through the daily cache.
type Client struct {
	client *http.Client
}

func NewClient() *Client {
	return &Client{client: web.Daily()}
}

// entry is one row of an Etherscan account listing. Every field comes back
// as a string, numbers included.
type entry struct {
	Hash         string `json:"hash"`
	TimeStamp    string `json:"timeStamp"`
	From         string `json:"from"`
	To           string `json:"to"`
	Value        string `json:"value"`
	GasUsed      string `json:"gasUsed"`
	GasPrice     string `json:"gasPrice"`
	FunctionName string `json:"functionName"`
	TokenSymbol  string `json:"tokenSymbol"`
	TokenDecimal string `json:"tokenDecimal"`
	IsError      string `json:"isError"`
}

func (e entry) time() time.Time {
	sec, _ := strconv.ParseInt(e.TimeStamp, 10, 64)
	return time.Unix(sec, 0).UTC()
}

// gas returns the transaction fee in ETH.
func (e entry) gas() portfolio.Quantity {
	used, err1 := decimal.NewFromString(e.GasUsed)
	price, err2 := decimal.NewFromString(e.GasPrice)
	if err1 != nil || err2 != nil {
		return portfolio.Quantity{}
	}
	return portfolio.Q(used.Mul(price).Shift(-18))
}

// amount converts the raw integer value using the given number of decimals.
func (e entry) amount(decimals int32) (portfolio.Quantity, error) {
	d, err := decimal.NewFromString(e.Value)
	if err != nil {
		return portfolio.Quantity{}, fmt.Errorf("bad value %q in tx %s: %w", e.Value, e.Hash, err)
	}
	return portfolio.Q(d.Shift(-decimals)), nil
}

func (c *Client) list(action, addr string) ([]entry, error) {
	key := apiKey()
	if key == "" {
		return nil, fmt.Errorf("no Etherscan API key")
	}
	req := fmt.Sprintf("%s?module=account&action=%s&address=%s&sort=asc&apikey=%s",
		apiURL, action, url.QueryEscape(addr), key)

	var resp struct {
		Status  string  `json:"status"`
		Message string  `json:"message"`
		Result  []entry `json:"result"`
	}
	if err := web.GetJSON(c.client, req, &resp); err != nil {
		return nil, fmt.Errorf("etherscan %s for %s: %w", action, addr, err)
	}
	// status "0" with message "No transactions found" is an empty listing,
	// not a failure.
	if resp.Status != "1" && resp.Message != "No transactions found" {
		return nil, fmt.Errorf("etherscan %s for %s: %s", action, addr, resp.Message)
	}
	return resp.Result, nil
}

// transactions lists the normal (ETH) transactions of an address.
func (c *Client) transactions(addr string) ([]entry, error) {
	return c.list("txlist", addr)
}

// tokenTransfers lists the ERC-20 transfers touching an address.
func (c *Client) tokenTransfers(addr string) ([]entry, error) {
	return c.list("tokentx", addr)
}

// Discovery is the normalized on-chain activity of a set of wallets.
type Discovery struct {
	Transactions []portfolio.Transaction
	swapLegs     map[string]bool
}

// Detector reports the discovered transfers that took part in a swap call,
// ready to be installed on a ledger builder.
func (d *Discovery) Detector() portfolio.SwapDetector { return legSet(d.swapLegs) }

type legSet map[string]bool

func (s legSet) IsSwapLeg(tx portfolio.Transaction) bool { return s[tx.ID] }

// Discover walks the given owned wallets and turns their chain activity into
// canonical transactions: ETH and token transfers become deposits or
// withdrawals, gas becomes a fee disposal of ETH, and transfers made by a
// swap or execute call are flagged for pairing. A transfer seen from both
// ends is emitted once.
func (c *Client) Discover(wallets ...string) (*Discovery, error) {
	d := &Discovery{swapLegs: make(map[string]bool)}
	seen := make(map[string]bool)
	emit := func(tx portfolio.Transaction, swap bool) {
		if seen[tx.ID] {
			return
		}
		seen[tx.ID] = true
		d.Transactions = append(d.Transactions, tx)
		if swap {
			d.swapLegs[tx.ID] = true
		}
	}

	for _, wallet := range wallets {
		wallet = strings.ToLower(wallet)

		normal, err := c.transactions(wallet)
		if err != nil {
			return nil, err
		}
		swapHashes := make(map[string]bool)
		for _, e := range normal {
			if e.IsError == "1" {
				continue
			}
			fn, _, _ := strings.Cut(e.FunctionName, "(")
			if fn == "execute" || fn == "swap" {
				swapHashes[e.Hash] = true
			}
			if e.From == wallet {
				if gas := e.gas(); gas.IsPositive() {
					emit(portfolio.Transaction{
						ID:       portfolio.NewTxID(portfolio.OnChainSource, e.Hash+"|gas"),
						Time:     e.time(),
						Kind:     portfolio.KindFee,
						Asset:    "ETH",
						Quantity: gas.Neg(),
						Source:   portfolio.OnChainSource,
						Address:  wallet,
					}, false)
				}
			}
			qty, err := e.amount(18)
			if err != nil {
				log.Printf("skipping tx %s: %v", e.Hash, err)
				continue
			}
			if qty.IsZero() {
				continue
			}
			emit(c.transfer(e, "ETH", qty, wallet, swapHashes[e.Hash]))
		}

		tokens, err := c.tokenTransfers(wallet)
		if err != nil {
			return nil, err
		}
		for _, e := range tokens {
			if e.TokenSymbol == "" {
				continue
			}
			decimals, err := strconv.ParseInt(e.TokenDecimal, 10, 32)
			if err != nil {
				log.Printf("skipping token tx %s: bad decimals %q", e.Hash, e.TokenDecimal)
				continue
			}
			qty, err := e.amount(int32(decimals))
			if err != nil {
				log.Printf("skipping token tx %s: %v", e.Hash, err)
				continue
			}
			if qty.IsZero() {
				continue
			}
			emit(c.transfer(e, e.TokenSymbol, qty, wallet, swapHashes[e.Hash]))
		}
	}
	return d, nil
}

// transfer builds the canonical deposit or withdrawal for one chain entry,
// seen from wallet's side. Incoming transfers carry the receiving wallet as
// address, so a broker withdrawal to that wallet dedups against it.
func (c *Client) transfer(e entry, asset string, qty portfolio.Quantity, wallet string, swap bool) (portfolio.Transaction, bool) {
	incoming := strings.ToLower(e.To) == wallet
	tx := portfolio.Transaction{
		Time:   e.time(),
		Asset:  asset,
		Source: portfolio.OnChainSource,
	}
	if incoming {
		tx.Kind = portfolio.KindDeposit
		tx.Quantity = qty
		tx.Address = wallet
		tx.ID = portfolio.NewTxID(portfolio.OnChainSource, e.Hash+"|"+asset+"|in|"+wallet)
	} else {
		tx.Kind = portfolio.KindWithdrawal
		tx.Quantity = qty.Neg()
		tx.Address = strings.ToLower(e.To)
		tx.ID = portfolio.NewTxID(portfolio.OnChainSource, e.Hash+"|"+asset+"|out|"+wallet)
	}
	return tx, swap
}
