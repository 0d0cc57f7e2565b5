// Package coinmarketcap prices crypto assets through the CoinMarketCap
// quotes API. Responses go through the daily disk cache, so a re-run on the
// same day costs no API credits.
package coinmarketcap

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/PaesslerAG/jsonpath"
	"github.com/sergensergio/crypto-portfolio"
	"github.com/sergensergio/crypto-portfolio/web"
)

const quotesURL = "https://pro-api.coinmarketcap.com/v1/cryptocurrency/quotes/latest"

const cmc_api_key = "CMC_API_KEY"

var cmcApiFlag = flag.String("cmc-api-key", "", "CoinMarketCap API key used to fetch spot prices.\n If missing it will read the environment variable \""+cmc_api_key+"\". You can get one at https://pro.coinmarketcap.com/")

func apiKey() string {
	// If the flag is not set, we try to read it from the environment variable.
	if *cmcApiFlag == "" {
		*cmcApiFlag = os.Getenv(cmc_api_key)
	}
	return *cmcApiFlag
}

// Source is a portfolio.PriceSource quoting in a fixed fiat currency.
type Source struct {
	client  *http.Client
	convert string
}

// New returns a Source quoting in the given fiat currency (e.g. "USD").
func New(convert string) *Source {
	return &Source{client: web.Daily(), convert: convert}
}

// Price returns the current price of one unit of symbol. A symbol unknown to
// CoinMarketCap yields an error wrapping portfolio.ErrUnpriced.
func (s *Source) Price(symbol string) (portfolio.Money, error) {
	key := apiKey()
	if key == "" {
		return portfolio.Money{}, fmt.Errorf("%w: %s: no CoinMarketCap API key", portfolio.ErrUnpriced, symbol)
	}

	addr := fmt.Sprintf("%s?symbol=%s&convert=%s", quotesURL, url.QueryEscape(symbol), s.convert)
	req, err := http.NewRequest(http.MethodGet, addr, nil)
	if err != nil {
		return portfolio.Money{}, err
	}
	req.Header.Set("Accepts", "application/json")
	req.Header.Set("X-CMC_PRO_API_KEY", key)

	resp, err := s.client.Do(req)
	if err != nil {
		return portfolio.Money{}, fmt.Errorf("error retrieving %q: %w", symbol, err)
	}
	var buf bytes.Buffer
	_, err = io.Copy(&buf, resp.Body)
	resp.Body.Close()
	if err != nil {
		return portfolio.Money{}, err
	}

	var jobj any
	if err := json.Unmarshal(buf.Bytes(), &jobj); err != nil {
		return portfolio.Money{}, fmt.Errorf("error parsing quote for %q: %w", symbol, err)
	}

	// error_code 0 is success; 1008 is the per-minute rate limit.
	if jval, err := jsonpath.Get("$.status.error_code", jobj); err == nil {
		if code, ok := jval.(float64); ok && code != 0 {
			msg, _ := jsonpath.Get("$.status.error_message", jobj)
			return portfolio.Money{}, fmt.Errorf("coinmarketcap error %v for %q: %v", code, symbol, msg)
		}
	}

	path := fmt.Sprintf("$.data.%s.quote.%s.price", symbol, s.convert)
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return portfolio.Money{}, fmt.Errorf("%w: %s: %q not found", portfolio.ErrUnpriced, symbol, path)
	}
	// because jsonpath is never clear about whether it returns a list of 1
	// answer, or a single answer: keep the first one if any
	if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
		jval = jlist[0]
	}
	val, ok := jval.(float64)
	if !ok {
		return portfolio.Money{}, fmt.Errorf("%w: %s: price is not a number: %v", portfolio.ErrUnpriced, symbol, jval)
	}
	return portfolio.M(val, s.convert), nil
}
