// Command benchmark drives synthetic load directly against an
// in-process Book/Matcher pair and reports throughput, bypassing the
// network entirely. Adapted from the teacher's performance harness
// (cmd/benchmark/main.go): same producer/ticker shape, retargeted from
// the teacher's string-symbol MatchingEngine onto this engine's
// Book + Matcher + channels.
package main

import (
	"flag"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	tomb "gopkg.in/tomb.v2"

	"matchcore/domain"
	"matchcore/matching"
	"matchcore/orderbook"
)

func main() {
	duration := flag.Duration("duration", 5*time.Second, "test duration")
	productID := flag.Uint("prodid", 1, "product id to benchmark")
	flag.Parse()

	book := orderbook.NewBook(uint16(*productID))
	book.SetReady()
	stats := matching.NewStats()

	inbound := make(chan domain.Inbound, 1<<16)
	outbound := make(chan domain.MatchResult, 1<<16)
	m := matching.NewMatcher(book, inbound, outbound, stats)

	var t tomb.Tomb
	t.Go(func() error { return m.Run(&t) })

	var orderCount, matchCount atomic.Int64
	go func() {
		for range outbound {
			matchCount.Add(1)
		}
	}()

	numWorkers := runtime.NumCPU() - 2
	if numWorkers < 1 {
		numWorkers = 1
	}

	fmt.Printf("matchcore in-process benchmark\n")
	fmt.Printf("cpus: %d, producers: %d, duration: %v\n\n", runtime.NumCPU(), numWorkers, *duration)

	stop := make(chan struct{})
	start := time.Now()

	for w := 0; w < numWorkers; w++ {
		go func(workerID int) {
			var orderID uint64
			for {
				select {
				case <-stop:
					return
				default:
				}

				var side domain.Side
				var price uint64
				if orderID%2 == 0 {
					side = domain.Buy
					price = 50000 + orderID%200
				} else {
					side = domain.Sell
					price = 50000 + orderID%200
				}

				inbound <- domain.Inbound{
					Kind: domain.MsgOrderSubmit,
					Order: domain.Order{
						ProductID:  uint16(*productID),
						Side:       side,
						PriceType:  domain.Limit,
						Price:      price,
						Quantity:   1,
						OrderID:    uint64(workerID)<<48 | orderID,
						SubmitTime: uint64(time.Now().UnixNano()),
					},
				}
				orderCount.Add(1)
				orderID++
			}
		}(w)
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	go func() {
		for range ticker.C {
			elapsed := time.Since(start).Seconds()
			fmt.Printf("[%.0fs] orders: %d (%.0f/s) matches: %d (%.0f/s)\n",
				elapsed, orderCount.Load(), float64(orderCount.Load())/elapsed,
				matchCount.Load(), float64(matchCount.Load())/elapsed)
		}
	}()

	time.Sleep(*duration)
	close(stop)
	time.Sleep(200 * time.Millisecond)
	t.Kill(nil)

	elapsed := time.Since(start).Seconds()
	fmt.Println("\n=== results ===")
	fmt.Printf("orders:  %d (%.0f/s)\n", orderCount.Load(), float64(orderCount.Load())/elapsed)
	fmt.Printf("matches: %d (%.0f/s)\n", matchCount.Load(), float64(matchCount.Load())/elapsed)

	bids, asks := book.Depth(5)
	fmt.Println("\nbid depth:")
	for i, lvl := range bids {
		fmt.Printf("  %d. price=%d volume=%d orders=%d\n", i+1, lvl.Price, lvl.Volume, lvl.Orders)
	}
	fmt.Println("ask depth:")
	for i, lvl := range asks {
		fmt.Printf("  %d. price=%d volume=%d orders=%d\n", i+1, lvl.Price, lvl.Volume, lvl.Orders)
	}
}
