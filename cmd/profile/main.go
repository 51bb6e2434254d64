// Command profile runs the same in-process load as cmd/benchmark under
// the CPU profiler, for use with `go tool pprof`. Adapted from the
// teacher's cmd/profile/main.go.
package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"sync/atomic"
	"time"

	tomb "gopkg.in/tomb.v2"

	"matchcore/domain"
	"matchcore/matching"
	"matchcore/orderbook"
)

func main() {
	cpuFile, err := os.Create("cpu.prof")
	if err != nil {
		panic(err)
	}
	defer cpuFile.Close()

	if err := pprof.StartCPUProfile(cpuFile); err != nil {
		panic(err)
	}
	defer pprof.StopCPUProfile()

	fmt.Println("=== cpu profile ===")
	fmt.Println("writing cpu.prof")

	book := orderbook.NewBook(1)
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

	duration := 10 * time.Second
	numWorkers := runtime.NumCPU() - 2
	if numWorkers < 1 {
		numWorkers = 1
	}

	fmt.Printf("cpus: %d, producers: %d, duration: %v\n\n", runtime.NumCPU(), numWorkers, duration)

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
						ProductID:  1,
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

	time.Sleep(duration)
	close(stop)
	time.Sleep(200 * time.Millisecond)
	t.Kill(nil)

	elapsed := time.Since(start).Seconds()
	fmt.Println("\n=== results ===")
	fmt.Printf("orders:  %d (%.0f/s)\n", orderCount.Load(), float64(orderCount.Load())/elapsed)
	fmt.Printf("matches: %d (%.0f/s)\n", matchCount.Load(), float64(matchCount.Load())/elapsed)
	fmt.Println("\nanalyze with: go tool pprof -http=:8080 cpu.prof")
}
