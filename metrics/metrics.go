// Package metrics exposes the engine's book and Stats counters (§3,
// §4.4) as Prometheus collectors, including the drop and reject
// counters that the 50-byte EngineStatus frame has no room for. It is
// purely additive to the multicast broadcast — it does not replace it
// (SPEC_FULL §2).
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"matchcore/matching"
	"matchcore/orderbook"
)

// Collector adapts a Book and a Stats set into Prometheus gauges and
// counters, registered under its own registry so embedding this engine
// in a larger process never collides with its metric names.
type Collector struct {
	registry *prometheus.Registry

	bestBid      prometheus.GaugeFunc
	bestAsk      prometheus.GaugeFunc
	restingCount prometheus.GaugeFunc
	matchedCount prometheus.GaugeFunc
	lastSequence prometheus.GaugeFunc

	inboundDrops      prometheus.CounterFunc
	outboundDrops      prometheus.CounterFunc
	structuralRejects  prometheus.CounterFunc
	noLiquidity        prometheus.CounterFunc
	cancelHits         prometheus.CounterFunc
	cancelMisses       prometheus.CounterFunc
}

// NewCollector builds and registers a Collector for book/stats.
func NewCollector(book *orderbook.Book, stats *matching.Stats) *Collector {
	labels := prometheus.Labels{"product_id": uint16ToLabel(book.ProductID())}

	c := &Collector{
		registry: prometheus.NewRegistry(),
		bestBid: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "matchcore", Name: "best_bid", Help: "Best resting BUY price, 0 if none.", ConstLabels: labels,
		}, func() float64 {
			p, ok := book.BestBid()
			if !ok {
				return 0
			}
			return float64(p)
		}),
		bestAsk: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "matchcore", Name: "best_ask", Help: "Best resting SELL price, 0 if none.", ConstLabels: labels,
		}, func() float64 {
			p, ok := book.BestAsk()
			if !ok {
				return 0
			}
			return float64(p)
		}),
		restingCount: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "matchcore", Name: "resting_order_count", Help: "Number of resting orders across both ladders.", ConstLabels: labels,
		}, func() float64 { return float64(book.RestingCount()) }),
		matchedCount: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "matchcore", Name: "matched_count", Help: "Lifetime count of emitted match results.", ConstLabels: labels,
		}, func() float64 { return float64(book.MatchedCount()) }),
		lastSequence: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "matchcore", Name: "last_sequence", Help: "Most recently assigned match result sequence number.", ConstLabels: labels,
		}, func() float64 { return float64(book.LastSequence()) }),
		inboundDrops: prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "matchcore", Name: "inbound_drops_total", Help: "Packets dropped because the inbound queue was full.", ConstLabels: labels,
		}, func() float64 { return float64(stats.InboundDrops.Load()) }),
		outboundDrops: prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "matchcore", Name: "outbound_drops_total", Help: "Match results dropped because the outbound queue was full.", ConstLabels: labels,
		}, func() float64 { return float64(stats.OutboundDrops.Load()) }),
		structuralRejects: prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "matchcore", Name: "structural_rejects_total", Help: "Orders rejected for wrong product, zero quantity or expiry, plus malformed packets dropped at ingress.", ConstLabels: labels,
		}, func() float64 { return float64(stats.StructuralRejects()) }),
		noLiquidity: prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "matchcore", Name: "no_liquidity_rejects_total", Help: "MARKET orders rejected for lack of contra liquidity.", ConstLabels: labels,
		}, func() float64 { return float64(stats.NoLiquidity.Load()) }),
		cancelHits: prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "matchcore", Name: "cancel_hits_total", Help: "Cancellations that found and removed a resting order.", ConstLabels: labels,
		}, func() float64 { return float64(stats.CancelHits.Load()) }),
		cancelMisses: prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "matchcore", Name: "cancel_misses_total", Help: "Cancellations for an order_id not currently resting.", ConstLabels: labels,
		}, func() float64 { return float64(stats.CancelMisses.Load()) }),
	}

	c.registry.MustRegister(
		c.bestBid, c.bestAsk, c.restingCount, c.matchedCount, c.lastSequence,
		c.inboundDrops, c.outboundDrops, c.structuralRejects, c.noLiquidity,
		c.cancelHits, c.cancelMisses,
	)
	return c
}

// Handler returns the HTTP handler to mount at the metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func uint16ToLabel(v uint16) string {
	const digits = "0123456789"
	if v == 0 {
		return "0"
	}
	var buf [5]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = digits[v%10]
		v /= 10
	}
	return string(buf[i:])
}
