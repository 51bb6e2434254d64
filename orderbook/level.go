package orderbook

import (
	"container/list"

	"matchcore/domain"
)

// PriceLevel holds every resting order at one price, in strict
// (submit_time, order_id) ascending order (§3). It is grounded on the
// teacher's HashMapListPriceTree level (container/list FIFO queue),
// generalized to carry the full resting Order rather than a
// cache-line-packed struct, since this engine does not need the
// teacher's allocation-avoidance tricks at single-product scope.
type PriceLevel struct {
	Price  uint64
	orders *list.List // list.Element.Value is *domain.Order
}

func newPriceLevel(price uint64) *PriceLevel {
	return &PriceLevel{Price: price, orders: list.New()}
}

// Len reports the number of resting orders at this level.
func (lv *PriceLevel) Len() int {
	return lv.orders.Len()
}

// Front returns the oldest resting order's element, or nil.
func (lv *PriceLevel) Front() *list.Element {
	return lv.orders.Front()
}

// Empty reports whether the level has no resting orders left.
func (lv *PriceLevel) Empty() bool {
	return lv.orders.Len() == 0
}

// Append inserts order at the tail. Callers must only append orders
// whose (submit_time, order_id) is greater than every order already in
// the level — true for any newly-posted residual, since incoming
// orders are processed in arrival order.
func (lv *PriceLevel) Append(o *domain.Order) *list.Element {
	return lv.orders.PushBack(o)
}

// Remove detaches elem from the level.
func (lv *PriceLevel) Remove(elem *list.Element) {
	lv.orders.Remove(elem)
}

// Orders returns every resting order at this level, head to tail
// (oldest first). Used for depth/inspection, never on the match path.
func (lv *PriceLevel) Orders() []*domain.Order {
	out := make([]*domain.Order, 0, lv.orders.Len())
	for e := lv.orders.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(*domain.Order))
	}
	return out
}

// Volume sums the remaining quantity of every resting order at this
// level.
func (lv *PriceLevel) Volume() uint64 {
	var total uint64
	for e := lv.orders.Front(); e != nil; e = e.Next() {
		total += e.Value.(*domain.Order).Quantity
	}
	return total
}

// indexEntry is the OrderIndex's value: enough to find and remove an
// order in O(1) without scanning its level.
type indexEntry struct {
	side  domain.Side
	price uint64
	elem  *list.Element
}

// OrderIndex maps order_id to its resting location, supporting O(1)
// lookup/removal for cancellation and expiry (§3).
type OrderIndex struct {
	byID map[uint64]indexEntry
}

// NewOrderIndex creates an empty index.
func NewOrderIndex() *OrderIndex {
	return &OrderIndex{byID: make(map[uint64]indexEntry)}
}

func (idx *OrderIndex) put(id uint64, side domain.Side, price uint64, elem *list.Element) {
	idx.byID[id] = indexEntry{side: side, price: price, elem: elem}
}

func (idx *OrderIndex) get(id uint64) (indexEntry, bool) {
	e, ok := idx.byID[id]
	return e, ok
}

func (idx *OrderIndex) delete(id uint64) {
	delete(idx.byID, id)
}

// Len returns the number of resting orders tracked by the index.
func (idx *OrderIndex) Len() int {
	return len(idx.byID)
}

// Has reports whether order_id currently rests in the book.
func (idx *OrderIndex) Has(id uint64) bool {
	_, ok := idx.byID[id]
	return ok
}
