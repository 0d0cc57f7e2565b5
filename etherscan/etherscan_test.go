package etherscan

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sergensergio/crypto-portfolio"
)

func TestEntryConversions(t *testing.T) {
	e := entry{
		Hash:      "0xh1",
		TimeStamp: "1700000000",
		Value:     "1500000000000000000",
		GasUsed:   "21000",
		GasPrice:  "20000000000",
	}

	if got := e.time(); !got.Equal(time.Unix(1700000000, 0).UTC()) {
		t.Errorf("time() = %v", got)
	}

	qty, err := e.amount(18)
	if err != nil {
		t.Fatalf("amount() failed: %v", err)
	}
	if !qty.Equal(portfolio.Q(1.5)) {
		t.Errorf("amount(18) = %s, want 1.5", qty)
	}

	// 21000 gas at 20 gwei
	if gas := e.gas(); !gas.Equal(portfolio.Q(0.00042)) {
		t.Errorf("gas() = %s, want 0.00042", gas)
	}

	tokens := entry{Value: "2500000", Hash: "0xh2"}
	qty, err = tokens.amount(6)
	if err != nil {
		t.Fatalf("amount() failed: %v", err)
	}
	if !qty.Equal(portfolio.Q(2.5)) {
		t.Errorf("amount(6) = %s, want 2.5", qty)
	}
}

func TestAddressFilesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallets.txt")

	missing, err := LoadAddresses(path)
	if err != nil {
		t.Fatalf("LoadAddresses() on missing file failed: %v", err)
	}
	if len(missing) != 0 {
		t.Errorf("missing file loaded %d addresses, want 0", len(missing))
	}

	want := map[string]bool{"0xaaa": true, "0xbbb": true}
	if err := SaveAddresses(path, want); err != nil {
		t.Fatalf("SaveAddresses() failed: %v", err)
	}
	got, err := LoadAddresses(path)
	if err != nil {
		t.Fatalf("LoadAddresses() failed: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("addresses changed after round trip (-want +got):\n%s", diff)
	}
}

func TestDetectorFlagsDiscoveredLegs(t *testing.T) {
	d := &Discovery{swapLegs: map[string]bool{"leg1": true}}
	detector := d.Detector()

	if !detector.IsSwapLeg(portfolio.Transaction{ID: "leg1"}) {
		t.Error("flagged leg not detected")
	}
	if detector.IsSwapLeg(portfolio.Transaction{ID: "other"}) {
		t.Error("unflagged transaction detected as swap leg")
	}
}
