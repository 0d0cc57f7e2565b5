package portfolio

import "fmt"

// MatchingPolicy defines the order in which disposals consume acquisition
// lots. It is an explicit parameter of the disposal matcher so the method is
// swappable rather than hardcoded in the matching loop.
type MatchingPolicy int

const (
	// FIFO (First-In, First-Out) consumes the oldest unconsumed lots first.
	// It is the default and most defensible method for the holding-period
	// exemption rule absent explicit lot-selection elections.
	FIFO MatchingPolicy = iota
)

func (p MatchingPolicy) String() string {
	switch p {
	case FIFO:
		return "fifo"
	default:
		return "unknown"
	}
}

// ParseMatchingPolicy parses a string into a MatchingPolicy.
func ParseMatchingPolicy(s string) (MatchingPolicy, error) {
	switch s {
	case "fifo":
		return FIFO, nil
	default:
		return 0, fmt.Errorf("unknown lot matching policy: %q", s)
	}
}
