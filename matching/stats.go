package matching

import (
	"sync/atomic"

	"matchcore/orderbook"
)

// Stats is the engine's counter set (§3 EngineState, §7). Every field
// is an independent atomic counter so the Status Emitter and metrics
// endpoint can sample them from outside the Matcher's single-writer
// section without taking the book's lock (§5: "Read-only observers ...
// must not retain it across await points" — these counters avoid the
// lock entirely).
type Stats struct {
	InboundDrops   atomic.Uint64
	OutboundDrops  atomic.Uint64
	WrongProduct   atomic.Uint64
	ZeroQuantity   atomic.Uint64
	AlreadyExpired atomic.Uint64
	NoLiquidity    atomic.Uint64
	CancelMisses   atomic.Uint64
	CancelHits     atomic.Uint64

	// Malformed counts packets the Ingress Receiver dropped before they
	// ever reached the Matcher: wrong size, unknown message_type,
	// invalid enum value, or a product_id mismatch (§4.3, §7
	// "Structural reject ... malformed packet").
	Malformed atomic.Uint64
}

// NewStats returns a zeroed counter set.
func NewStats() *Stats {
	return &Stats{}
}

// recordReject increments the counter matching a book.MatchOrder
// rejection reason. RejectNone is not a rejection and is ignored.
func (s *Stats) recordReject(reason orderbook.RejectReason) {
	switch reason {
	case orderbook.RejectWrongProduct:
		s.WrongProduct.Add(1)
	case orderbook.RejectZeroQuantity:
		s.ZeroQuantity.Add(1)
	case orderbook.RejectAlreadyExpired:
		s.AlreadyExpired.Add(1)
	case orderbook.RejectNoLiquidity:
		s.NoLiquidity.Add(1)
	}
}

// StructuralRejects sums every reject reason that §7 classifies as a
// "structural reject" (wrong product, zero quantity, already expired,
// malformed packet). No-liquidity MARKET rejects are counted
// separately since §7 lists them as a distinct error kind.
func (s *Stats) StructuralRejects() uint64 {
	return s.WrongProduct.Load() + s.ZeroQuantity.Load() + s.AlreadyExpired.Load() + s.Malformed.Load()
}
