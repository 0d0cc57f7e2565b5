package renderer

import (
	"strings"
	"testing"
	"time"

	"github.com/sergensergio/crypto-portfolio"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

func testReport(t *testing.T) *portfolio.Report {
	t.Helper()

	cfg := portfolio.DefaultConfig()
	b := portfolio.NewBuilder(cfg)
	t0 := time.Date(2023, time.January, 1, 12, 0, 0, 0, time.UTC)
	withFee := portfolio.Transaction{
		ID:       portfolio.NewTxID("KuCoin", "t1"),
		Time:     t0,
		Kind:     portfolio.KindBuy,
		Asset:    "BTC",
		Quantity: portfolio.Q(1),
		Value:    portfolio.M(10000, "USD"),
		Fee:      portfolio.M(10, "USD"),
		Source:   "KuCoin",
	}
	b.Add(
		withFee,
		portfolio.Transaction{
			ID:       portfolio.NewTxID("KuCoin", "t2"),
			Time:     t0.AddDate(0, 0, 400),
			Kind:     portfolio.KindSell,
			Asset:    "BTC",
			Quantity: portfolio.Q(-0.5),
			Value:    portfolio.M(15000, "USD"),
			Source:   "KuCoin",
		},
		portfolio.Transaction{
			ID:       portfolio.NewTxID("KuCoin", "t3"),
			Time:     t0,
			Kind:     portfolio.KindBuy,
			Asset:    "ETH",
			Quantity: portfolio.Q(10),
			Value:    portfolio.M(20000, "USD"),
			Source:   "KuCoin",
		},
	)
	ledger, rejected := b.Build()

	prices := portfolio.StaticPrices{
		"BTC": portfolio.M(30000, "USD"),
		"ETH": portfolio.M(1500, "USD"),
	}
	return portfolio.NewReport(ledger, rejected, prices, cfg)
}

// headings collects the section headings of a markdown document, making sure
// it parses at all.
func headings(t *testing.T, md string) []string {
	t.Helper()
	src := []byte(md)
	root := goldmark.DefaultParser().Parse(text.NewReader(src))

	var out []string
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if h, ok := n.(*ast.Heading); ok && entering {
			var b strings.Builder
			for c := h.FirstChild(); c != nil; c = c.NextSibling() {
				if txt, ok := c.(*ast.Text); ok {
					b.Write(txt.Value(src))
				}
			}
			out = append(out, b.String())
		}
		return ast.WalkContinue, nil
	})
	return out
}

func TestReportMarkdown(t *testing.T) {
	report := testReport(t)
	md := ReportMarkdown(report)

	got := headings(t, md)
	for _, want := range []string{"Tax Report", "Realized Gains", "Holdings", "Fees per Source"} {
		var found bool
		for _, h := range got {
			if h == want {
				found = true
			}
		}
		if !found {
			t.Errorf("section %q missing, got %v", want, got)
		}
	}

	if !strings.Contains(md, "| BTC |") {
		t.Error("holdings table misses the BTC row")
	}
	// BTC (up) ranks above ETH (down) in the holdings table
	btc, eth := strings.Index(md, "| BTC |"), strings.Index(md, "| ETH |")
	if eth < 0 || eth < btc {
		t.Errorf("holdings not ranked by performance:\n%s", md)
	}
	if !strings.Contains(md, "Invested:") || !strings.Contains(md, "unrealized gain:") {
		t.Error("holdings section misses the invested and unrealized totals")
	}
	if !strings.Contains(md, "KuCoin") {
		t.Error("fees table misses the KuCoin row")
	}
}

func TestRealizedMarkdown(t *testing.T) {
	report := testReport(t)
	md := RealizedMarkdown(report.Events)

	if len(report.Events) == 0 {
		t.Fatal("test report realized no events")
	}
	if !strings.Contains(md, "| BTC |") {
		t.Error("events table misses the BTC row")
	}
	// held 400 days, past the exemption
	if !strings.Contains(md, "| 400d | no |") {
		t.Errorf("event row misses holding period and classification:\n%s", md)
	}
}

func TestLotsMarkdownEmpty(t *testing.T) {
	md := LotsMarkdown(nil)
	if !strings.Contains(md, "No open lots.") {
		t.Errorf("empty lots rendering = %q", md)
	}
}
