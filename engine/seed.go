package engine

import (
	"matchcore/domain"
	"matchcore/orderbook"
)

// basePrice and priceSpread shape the synthetic book's price range;
// adapted from the teacher's benchmark harness, which alternated BUY
// and SELL orders over a 200-tick band around 50000 to guarantee
// overlap. Here the two sides are seeded disjoint instead (BUY at or
// below basePrice, SELL above it) since insert_resting bypasses
// matching entirely — a synthetic book is meant to be at rest, not to
// immediately cross itself on load.
const (
	basePrice   = 50000
	priceSpread = 200
)

// seedSyntheticBook inserts n resting BUY and n resting SELL orders
// directly into book (SPEC_FULL §4, "synthetic self-test order
// generator"), for local benchmarking without a fuel server.
func seedSyntheticBook(book *orderbook.Book, n uint64) {
	productID := book.ProductID()
	var orderID uint64 = 1

	for i := uint64(0); i < n; i++ {
		price := uint64(basePrice) - (i % priceSpread)
		order := domain.Order{
			ProductID:  productID,
			Side:       domain.Buy,
			PriceType:  domain.Limit,
			Price:      price,
			Quantity:   1,
			OrderID:    orderID,
			SubmitTime: orderID,
		}
		orderID++
		if err := book.InsertResting(&order); err != nil {
			panic(err)
		}
	}

	for i := uint64(0); i < n; i++ {
		price := uint64(basePrice) + 1 + (i % priceSpread)
		order := domain.Order{
			ProductID:  productID,
			Side:       domain.Sell,
			PriceType:  domain.Limit,
			Price:      price,
			Quantity:   1,
			OrderID:    orderID,
			SubmitTime: orderID,
		}
		orderID++
		if err := book.InsertResting(&order); err != nil {
			panic(err)
		}
	}
}
