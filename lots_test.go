package portfolio

import (
	"errors"
	"testing"
	"time"
)

func TestLotBookConsumesFIFO(t *testing.T) {
	book := newLotBook(FIFO)
	t0 := day(2024, time.January, 1)
	t1 := day(2024, time.March, 1)

	if err := book.acquire("BTC", Q(1), USD(10000), t0, "a"); err != nil {
		t.Fatalf("acquire() failed: %v", err)
	}
	if err := book.acquire("BTC", Q(1), USD(20000), t1, "b"); err != nil {
		t.Fatalf("acquire() failed: %v", err)
	}

	frags, err := book.consume("BTC", Q(1.5))
	if err != nil {
		t.Fatalf("consume() failed: %v", err)
	}
	if len(frags) != 2 {
		t.Fatalf("consume() returned %d fragments, want 2", len(frags))
	}
	if !frags[0].qty.Equal(Q(1)) || !frags[0].lot.AcquiredAt.Equal(t0) {
		t.Errorf("first fragment = %s of lot %s, want full oldest lot", frags[0].qty, frags[0].lot.AcquiredAt)
	}
	if !frags[1].qty.Equal(Q(0.5)) || !frags[1].lot.AcquiredAt.Equal(t1) {
		t.Errorf("second fragment = %s of lot %s, want half of newest lot", frags[1].qty, frags[1].lot.AcquiredAt)
	}

	open := book.Open("BTC")
	if len(open) != 1 {
		t.Fatalf("Open() returned %d lots, want 1", len(open))
	}
	if !open[0].Remaining.Equal(Q(0.5)) {
		t.Errorf("remaining = %s, want 0.5", open[0].Remaining)
	}
	if !open[0].CostBasis().Equal(USD(10000)) {
		t.Errorf("remaining cost basis = %s, want 10000 USD", open[0].CostBasis())
	}
}

func TestLotBookInsufficientLots(t *testing.T) {
	book := newLotBook(FIFO)
	if err := book.acquire("ETH", Q(2), USD(1000), day(2024, time.January, 1), "a"); err != nil {
		t.Fatalf("acquire() failed: %v", err)
	}

	frags, err := book.consume("ETH", Q(3))
	if !errors.Is(err, ErrInsufficientLots) {
		t.Fatalf("consume() error = %v, want ErrInsufficientLots", err)
	}
	// the available quantity is still consumed
	if len(frags) != 1 || !frags[0].qty.Equal(Q(2)) {
		t.Errorf("consumed %v, want one fragment of 2", frags)
	}
	if open := book.Open("ETH"); len(open) != 0 {
		t.Errorf("Open() returned %d lots after exhaustion, want 0", len(open))
	}
}

func TestLotBookRejectsInvalidAcquisition(t *testing.T) {
	book := newLotBook(FIFO)
	for _, qty := range []Quantity{Q(0), Q(-1)} {
		err := book.acquire("BTC", qty, USD(10), day(2024, time.January, 1), "a")
		if !errors.Is(err, ErrInvalidAcquisition) {
			t.Errorf("acquire(%s) error = %v, want ErrInvalidAcquisition", qty, err)
		}
	}
	if len(book.OpenAll()) != 0 {
		t.Error("invalid acquisitions must not open lots")
	}
}
