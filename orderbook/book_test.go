package orderbook

import (
	"testing"

	"matchcore/domain"
)

const testProduct = uint16(7)

func submit(t *testing.T, book *Book, side domain.Side, priceType domain.PriceType, price, qty, orderID, submitTime uint64) []domain.MatchResult {
	t.Helper()
	order := &domain.Order{
		ProductID:  testProduct,
		Side:       side,
		PriceType:  priceType,
		Price:      price,
		Quantity:   qty,
		OrderID:    orderID,
		SubmitTime: submitTime,
	}
	results, reason, err := book.MatchOrder(order)
	if err != nil {
		t.Fatalf("order %d: unexpected invariant error: %v", orderID, err)
	}
	if reason != RejectNone {
		t.Fatalf("order %d: unexpected reject reason %s", orderID, reason)
	}
	return results
}

// Scenario 1: empty book, submit LIMIT BUY.
func TestScenarioRestOnEmptyBook(t *testing.T) {
	book := NewBook(testProduct)
	results := submit(t, book, domain.Buy, domain.Limit, 100, 5, 1, 1)
	if len(results) != 0 {
		t.Fatalf("expected no matches, got %d", len(results))
	}
	bid, ok := book.BestBid()
	if !ok || bid != 100 {
		t.Fatalf("expected best bid 100, got %d (ok=%v)", bid, ok)
	}
	lvl := book.buy.Level(100)
	if lvl == nil || lvl.Volume() != 5 {
		t.Fatalf("expected resting qty 5 at 100")
	}
}

// Scenario 2: partial fill against a single resting maker.
func TestScenarioPartialFill(t *testing.T) {
	book := NewBook(testProduct)
	submit(t, book, domain.Buy, domain.Limit, 100, 5, 1, 1)

	results := submit(t, book, domain.Sell, domain.Limit, 100, 3, 2, 2)
	if len(results) != 1 {
		t.Fatalf("expected 1 match, got %d", len(results))
	}
	r := results[0]
	if r.Price != 100 || r.Quantity != 3 || r.TakerOrderID != 2 || r.MakerOrderID != 1 {
		t.Fatalf("unexpected match result: %+v", r)
	}

	lvl := book.buy.Level(100)
	if lvl == nil || lvl.Volume() != 2 {
		t.Fatalf("expected residual qty 2 at 100 on buy side")
	}
	if _, ok := book.BestAsk(); ok {
		t.Fatalf("expected no resting sell orders")
	}
}

// Scenario 3: MARKET order exhausts remaining liquidity and discards
// the unfilled residual.
func TestScenarioMarketDiscardsResidual(t *testing.T) {
	book := NewBook(testProduct)
	submit(t, book, domain.Buy, domain.Limit, 100, 5, 1, 1)
	submit(t, book, domain.Sell, domain.Limit, 100, 3, 2, 2)

	results := submit(t, book, domain.Sell, domain.Market, 0, 10, 3, 3)
	if len(results) != 1 {
		t.Fatalf("expected 1 match, got %d", len(results))
	}
	r := results[0]
	if r.Price != 100 || r.Quantity != 2 || r.TakerOrderID != 3 || r.MakerOrderID != 1 {
		t.Fatalf("unexpected match result: %+v", r)
	}

	if _, ok := book.BestBid(); ok {
		t.Fatalf("expected empty book after market order consumes all liquidity")
	}
	if _, ok := book.BestAsk(); ok {
		t.Fatalf("expected empty book after market order consumes all liquidity")
	}
}

// Scenario 4: same-price time priority — older submit_time trades
// first.
func TestScenarioTimePriority(t *testing.T) {
	book := NewBook(testProduct)
	submit(t, book, domain.Buy, domain.Limit, 50, 1, 10, 1000)
	submit(t, book, domain.Buy, domain.Limit, 50, 1, 11, 1001)

	results := submit(t, book, domain.Sell, domain.Limit, 50, 1, 12, 1002)
	if len(results) != 1 {
		t.Fatalf("expected 1 match, got %d", len(results))
	}
	if results[0].MakerOrderID != 10 {
		t.Fatalf("expected maker 10 (older submit_time) to trade first, got %d", results[0].MakerOrderID)
	}
}

// Scenario 5: expired resting order is swept and never matched.
func TestScenarioExpiredMakerIsSwept(t *testing.T) {
	book := NewBook(testProduct)
	order := &domain.Order{
		ProductID:  testProduct,
		Side:       domain.Buy,
		PriceType:  domain.Limit,
		Price:      50,
		Quantity:   5,
		OrderID:    20,
		SubmitTime: 500,
		ExpireTime: 1000,
	}
	if _, reason, err := book.MatchOrder(order); err != nil || reason != RejectNone {
		t.Fatalf("seed order failed: reason=%v err=%v", reason, err)
	}

	incoming := &domain.Order{
		ProductID:  testProduct,
		Side:       domain.Sell,
		PriceType:  domain.Limit,
		Price:      50,
		Quantity:   3,
		OrderID:    21,
		SubmitTime: 2000,
	}
	results, reason, err := book.MatchOrder(incoming)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reason != RejectNone {
		t.Fatalf("unexpected reject: %v", reason)
	}
	if len(results) != 0 {
		t.Fatalf("expected no matches against an expired maker, got %d", len(results))
	}
	if book.index.Has(20) {
		t.Fatalf("expired maker should have been removed from the index")
	}
	bid, ok := book.BestBid()
	if ok {
		t.Fatalf("expired maker's level should be gone, found bid %d", bid)
	}
	ask, ok := book.BestAsk()
	if !ok || ask != 50 {
		t.Fatalf("incoming sell should have posted at 50, got %d (ok=%v)", ask, ok)
	}
}

// Scenario 6: cancelling an unknown order_id is a silent no-op.
func TestScenarioCancelUnknownIsNoop(t *testing.T) {
	book := NewBook(testProduct)
	submit(t, book, domain.Buy, domain.Limit, 100, 5, 1, 1)

	if book.CancelOrder(999) {
		t.Fatalf("expected cancel of unknown order_id to report false")
	}
	bid, ok := book.BestBid()
	if !ok || bid != 100 {
		t.Fatalf("book state should be unchanged, got bid=%d ok=%v", bid, ok)
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	book := NewBook(testProduct)
	submit(t, book, domain.Buy, domain.Limit, 100, 5, 1, 1)

	if !book.CancelOrder(1) {
		t.Fatalf("expected first cancel to succeed")
	}
	if book.CancelOrder(1) {
		t.Fatalf("expected second cancel of the same id to be a silent no-op")
	}
}

func TestWrongProductIsRejected(t *testing.T) {
	book := NewBook(testProduct)
	order := &domain.Order{ProductID: testProduct + 1, Side: domain.Buy, PriceType: domain.Limit, Price: 1, Quantity: 1, OrderID: 1}
	results, reason, err := book.MatchOrder(order)
	if err != nil || reason != RejectWrongProduct || len(results) != 0 {
		t.Fatalf("expected RejectWrongProduct, got reason=%v results=%v err=%v", reason, results, err)
	}
}

func TestZeroQuantityIsRejected(t *testing.T) {
	book := NewBook(testProduct)
	order := &domain.Order{ProductID: testProduct, Side: domain.Buy, PriceType: domain.Limit, Price: 1, Quantity: 0, OrderID: 1}
	_, reason, err := book.MatchOrder(order)
	if err != nil || reason != RejectZeroQuantity {
		t.Fatalf("expected RejectZeroQuantity, got reason=%v err=%v", reason, err)
	}
}

func TestAlreadyExpiredIsRejected(t *testing.T) {
	book := NewBook(testProduct)
	order := &domain.Order{ProductID: testProduct, Side: domain.Buy, PriceType: domain.Limit, Price: 1, Quantity: 1, OrderID: 1, SubmitTime: 100, ExpireTime: 100}
	_, reason, err := book.MatchOrder(order)
	if err != nil || reason != RejectAlreadyExpired {
		t.Fatalf("expected RejectAlreadyExpired, got reason=%v err=%v", reason, err)
	}
}

func TestMarketWithNoLiquidityIsRejected(t *testing.T) {
	book := NewBook(testProduct)
	order := &domain.Order{ProductID: testProduct, Side: domain.Buy, PriceType: domain.Market, Quantity: 1, OrderID: 1}
	results, reason, err := book.MatchOrder(order)
	if err != nil || reason != RejectNoLiquidity || len(results) != 0 {
		t.Fatalf("expected RejectNoLiquidity, got reason=%v results=%v err=%v", reason, results, err)
	}
}

func TestBookNeverCrossesAtRest(t *testing.T) {
	book := NewBook(testProduct)
	submit(t, book, domain.Buy, domain.Limit, 99, 5, 1, 1)
	submit(t, book, domain.Sell, domain.Limit, 101, 5, 2, 2)

	bid, hasBid := book.BestBid()
	ask, hasAsk := book.BestAsk()
	if hasBid && hasAsk && bid >= ask {
		t.Fatalf("book crossed at rest: bid=%d ask=%d", bid, ask)
	}
}

func TestSequenceNumbersAreContiguous(t *testing.T) {
	book := NewBook(testProduct)
	submit(t, book, domain.Buy, domain.Limit, 100, 1, 1, 1)
	submit(t, book, domain.Buy, domain.Limit, 100, 1, 2, 2)
	submit(t, book, domain.Buy, domain.Limit, 100, 1, 3, 3)

	results := submit(t, book, domain.Sell, domain.Market, 0, 3, 4, 4)
	if len(results) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(results))
	}
	for i, r := range results {
		want := uint64(i + 1)
		if r.Sequence != want {
			t.Fatalf("result %d: expected sequence %d, got %d", i, want, r.Sequence)
		}
	}
}

func TestIndexAndLaddersAgree(t *testing.T) {
	book := NewBook(testProduct)
	submit(t, book, domain.Buy, domain.Limit, 100, 1, 1, 1)
	submit(t, book, domain.Buy, domain.Limit, 101, 1, 2, 2)
	submit(t, book, domain.Sell, domain.Limit, 200, 1, 3, 3)

	laddered := 0
	for _, lvl := range book.buy.Top(book.buy.Size()) {
		laddered += lvl.Len()
	}
	for _, lvl := range book.sell.Top(book.sell.Size()) {
		laddered += lvl.Len()
	}
	if laddered != book.index.Len() {
		t.Fatalf("ladders hold %d orders but index length is %d", laddered, book.index.Len())
	}
	for _, id := range []uint64{1, 2, 3} {
		if !book.index.Has(id) {
			t.Fatalf("expected order %d to be indexed", id)
		}
	}
}

func TestDepthReturnsBestFirst(t *testing.T) {
	book := NewBook(testProduct)
	submit(t, book, domain.Buy, domain.Limit, 99, 1, 1, 1)
	submit(t, book, domain.Buy, domain.Limit, 101, 1, 2, 2)
	submit(t, book, domain.Buy, domain.Limit, 100, 1, 3, 3)

	bids, _ := book.Depth(3)
	if len(bids) != 3 {
		t.Fatalf("expected 3 bid levels, got %d", len(bids))
	}
	if bids[0].Price != 101 || bids[1].Price != 100 || bids[2].Price != 99 {
		t.Fatalf("expected bids best-first (101,100,99), got %+v", bids)
	}
}

func TestCancelOrderDisagreementIsFatal(t *testing.T) {
	book := NewBook(testProduct)
	submit(t, book, domain.Buy, domain.Limit, 100, 1, 1, 1)

	// Corrupt the index to point at a price the buy ladder no longer
	// carries, simulating the internal disagreement §7 treats as fatal.
	entry, _ := book.index.get(1)
	entry.price = 999
	book.index.byID[1] = entry

	defer func() {
		if recover() == nil {
			t.Fatalf("expected CancelOrder to panic on index/ladder disagreement")
		}
	}()
	book.CancelOrder(1)
}
