package orderbook

import (
	"container/list"
	"sync"
	"sync/atomic"

	"matchcore/domain"
)

// RejectReason classifies why match_order declined to process an
// incoming order without emitting any MatchResult (§4.1, §7). It is
// never returned as a Go error — these are expected, silent outcomes,
// not failures.
type RejectReason uint8

const (
	// RejectNone means the order was accepted (matched, posted, or
	// both).
	RejectNone RejectReason = iota
	RejectWrongProduct
	RejectZeroQuantity
	RejectAlreadyExpired
	RejectNoLiquidity
)

func (r RejectReason) String() string {
	switch r {
	case RejectNone:
		return "none"
	case RejectWrongProduct:
		return "wrong_product"
	case RejectZeroQuantity:
		return "zero_quantity"
	case RejectAlreadyExpired:
		return "already_expired"
	case RejectNoLiquidity:
		return "no_liquidity"
	default:
		return "unknown"
	}
}

// InvariantError marks an internal consistency failure (OrderIndex and
// ladder disagreement, negative residual). Per §7 this is fatal: the
// caller is expected to abort the process rather than continue.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string { return "orderbook: invariant violated: " + e.Msg }

// Book is the central data structure of §3/§4.1: two price ladders
// plus an order index, single-writer, guarded by a RWMutex so the
// Matcher (write lock) and read-only observers such as the status
// emitter (read lock, §5) can share it safely. It is grounded on the
// teacher's OrderBook (orderbook/orderbook.go), generalized from a
// string symbol + market-order-unaware design to the §3 product/side/
// price-type/expiry model.
type Book struct {
	mu sync.RWMutex

	productID uint16
	buy       *Ladder
	sell      *Ladder
	index     *OrderIndex

	sequence     uint64
	lastExecTime uint64
	matchedCount uint64

	ready atomic.Bool
}

// NewBook creates an empty book for productID.
func NewBook(productID uint16) *Book {
	return &Book{
		productID: productID,
		buy:       NewLadder(true),
		sell:      NewLadder(false),
		index:     NewOrderIndex(),
	}
}

// ProductID returns the book's configured product.
func (b *Book) ProductID() uint16 { return b.productID }

// SetReady asserts the "ready" flag, done once at the end of cold
// start: by the Snapshot Loader after a clean load (§3, §4.5), or
// directly when there is no fuel server to load from.
func (b *Book) SetReady() { b.ready.Store(true) }

// Ready reports whether the book has completed its cold-start load.
func (b *Book) Ready() bool { return b.ready.Load() }

// BestBid returns the highest resting BUY price, if any.
func (b *Book) BestBid() (uint64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.buy.BestPrice()
}

// BestAsk returns the lowest resting SELL price, if any.
func (b *Book) BestAsk() (uint64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.sell.BestPrice()
}

// RestingCount returns the number of resting orders across both
// ladders.
func (b *Book) RestingCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.index.Len()
}

// MatchedCount returns the lifetime count of emitted MatchResults.
func (b *Book) MatchedCount() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.matchedCount
}

// LastSequence returns the most recently assigned MatchResult sequence
// number (0 if none have been emitted yet).
func (b *Book) LastSequence() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.sequence
}

// DepthLevel is a read-only view of one price level, used for depth
// reports and tests.
type DepthLevel struct {
	Price  uint64
	Volume uint64
	Orders int
}

// Depth returns up to `levels` price levels per side, best first.
// Grounded on the teacher's OrderBook.GetDepth.
func (b *Book) Depth(levels int) (bids, asks []DepthLevel) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, lvl := range b.buy.Top(levels) {
		bids = append(bids, DepthLevel{Price: lvl.Price, Volume: lvl.Volume(), Orders: lvl.Len()})
	}
	for _, lvl := range b.sell.Top(levels) {
		asks = append(asks, DepthLevel{Price: lvl.Price, Volume: lvl.Volume(), Orders: lvl.Len()})
	}
	return bids, asks
}

// MatchOrder applies incoming against the book under strict
// price/time priority (§4.1). It mutates incoming.Quantity to its
// post-match remainder. The returned reason is RejectNone when the
// order was accepted — matched, posted, or both — and is otherwise a
// silent, non-error outcome the caller only needs to count (§7).
func (b *Book) MatchOrder(incoming *domain.Order) ([]domain.MatchResult, RejectReason, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if incoming.ProductID != b.productID {
		return nil, RejectWrongProduct, nil
	}
	if incoming.Quantity == 0 {
		return nil, RejectZeroQuantity, nil
	}
	if incoming.ExpireTime != 0 && incoming.ExpireTime <= incoming.SubmitTime {
		return nil, RejectAlreadyExpired, nil
	}

	execTime := b.coerceExecTime(incoming.SubmitTime)

	contra := b.sell
	if incoming.Side == domain.Sell {
		contra = b.buy
	}

	var results []domain.MatchResult

	for incoming.Quantity > 0 {
		level := contra.Best()
		if level == nil {
			break
		}
		if !crosses(incoming, level.Price) {
			break
		}

		elem := level.Front()
		for elem != nil && incoming.Quantity > 0 {
			resting, ok := elem.Value.(*domain.Order)
			if !ok {
				return results, RejectNone, &InvariantError{Msg: "price level element is not *domain.Order"}
			}
			next := elem.Next()

			if resting.Expired(incoming.SubmitTime) {
				if err := b.detach(level, elem, resting); err != nil {
					return results, RejectNone, err
				}
				elem = next
				continue
			}

			traded := resting.Quantity
			if incoming.Quantity < traded {
				traded = incoming.Quantity
			}

			b.sequence++
			results = append(results, domain.MatchResult{
				ProductID:    b.productID,
				TakerOrderID: incoming.OrderID,
				MakerOrderID: resting.OrderID,
				Price:        resting.Price,
				Quantity:     traded,
				ExecTime:     execTime,
				Sequence:     b.sequence,
			})
			b.matchedCount++

			resting.Quantity -= traded
			incoming.Quantity -= traded

			if resting.Quantity == 0 {
				if err := b.detach(level, elem, resting); err != nil {
					return results, RejectNone, err
				}
			}
			elem = next
		}

		if level.Empty() {
			contra.RemoveLevel(level.Price)
		}
	}

	if incoming.Quantity > 0 {
		if incoming.PriceType == domain.Limit {
			if err := b.insertRestingLocked(incoming); err != nil {
				return results, RejectNone, err
			}
		} else if len(results) == 0 {
			return nil, RejectNoLiquidity, nil
		}
		// MARKET residual with partial fills is silently discarded.
	}

	return results, RejectNone, nil
}

// crosses implements §4.1's crossing test. level is a price on the
// contra ladder.
func crosses(incoming *domain.Order, levelPrice uint64) bool {
	if incoming.PriceType == domain.Market {
		return true
	}
	if incoming.Side == domain.Buy {
		return incoming.Price >= levelPrice
	}
	return incoming.Price <= levelPrice
}

// detach removes a resting order from its level and the index. The
// level itself is dropped from its ladder by the caller once the
// whole level has been walked (§4.1: "When a level becomes empty,
// remove it from the ladder before examining the next level").
func (b *Book) detach(level *PriceLevel, elem *list.Element, resting *domain.Order) error {
	if cur, ok := elem.Value.(*domain.Order); !ok || cur.OrderID != resting.OrderID {
		return &InvariantError{Msg: "detach: element does not hold the expected order"}
	}
	level.Remove(elem)
	b.index.delete(resting.OrderID)
	return nil
}

// insertRestingLocked posts order to its own side's ladder, appended
// to the tail of its level (§4.1 residual handling). Caller must hold
// b.mu for writing.
func (b *Book) insertRestingLocked(order *domain.Order) error {
	ladder := b.buy
	if order.Side == domain.Sell {
		ladder = b.sell
	}
	level := ladder.LevelOrCreate(order.Price)
	elem := level.Append(order)
	b.index.put(order.OrderID, order.Side, order.Price, elem)
	return nil
}

// InsertResting adds order directly to the book without going through
// the matching path, exactly as the Snapshot Loader and synthetic
// test-order-book seeder do (§4.5).
func (b *Book) InsertResting(order *domain.Order) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if order.ProductID != b.productID {
		return &InvariantError{Msg: "insert_resting: product id mismatch"}
	}
	return b.insertRestingLocked(order)
}

// CancelOrder removes order_id from the book. It is silent on miss
// (§4.1): returns false, no error, no side effect.
func (b *Book) CancelOrder(orderID uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry, ok := b.index.get(orderID)
	if !ok {
		return false
	}

	ladder := b.buy
	if entry.side == domain.Sell {
		ladder = b.sell
	}
	level := ladder.Level(entry.price)
	if level == nil {
		// The OrderIndex claims order_id rests at entry.price but the
		// ladder disagrees. §7 treats this as a fatal internal
		// invariant violation, not a miss.
		panic(&InvariantError{Msg: "cancel_order: index/ladder disagreement"})
	}

	level.Remove(entry.elem)
	b.index.delete(orderID)
	if level.Empty() {
		ladder.RemoveLevel(entry.price)
	}
	return true
}

// coerceExecTime returns a timestamp for this match that never goes
// backward relative to the previous match, absorbing a regressed wall
// clock (§4.1 "Match result").
func (b *Book) coerceExecTime(submitTime uint64) uint64 {
	if submitTime <= b.lastExecTime {
		b.lastExecTime++
	} else {
		b.lastExecTime = submitTime
	}
	return b.lastExecTime
}
