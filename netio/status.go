package netio

import (
	"time"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"matchcore/domain"
	"matchcore/matching"
	"matchcore/orderbook"
)

// DefaultStatusInterval is the status emitter's cadence (§5: "at a
// fixed cadence (e.g., once per second)").
const DefaultStatusInterval = time.Second

// StatusEmitter samples the book and stats periodically and pushes an
// EngineStatus snapshot onto a bounded outbound queue via non-blocking
// try-send. It is a read-only observer of Book: it only ever takes the
// book's read lock, and never across a send (§5).
type StatusEmitter struct {
	book     *orderbook.Book
	stats    *matching.Stats
	outbound chan<- domain.EngineStatus
	interval time.Duration
}

// NewStatusEmitter wires a StatusEmitter to its book, stats and queue.
func NewStatusEmitter(book *orderbook.Book, stats *matching.Stats, outbound chan<- domain.EngineStatus, interval time.Duration) *StatusEmitter {
	if interval <= 0 {
		interval = DefaultStatusInterval
	}
	return &StatusEmitter{book: book, stats: stats, outbound: outbound, interval: interval}
}

// Run samples and publishes until t dies.
func (e *StatusEmitter) Run(t *tomb.Tomb) error {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-t.Dying():
			return nil
		case now := <-ticker.C:
			e.publish(now)
		}
	}
}

func (e *StatusEmitter) publish(now time.Time) {
	bestBid, hasBid := e.book.BestBid()
	bestAsk, hasAsk := e.book.BestAsk()

	status := domain.EngineStatus{
		ProductID:         e.book.ProductID(),
		Ready:             e.book.Ready(),
		BestBid:           bestBid,
		HasBestBid:        hasBid,
		BestAsk:           bestAsk,
		HasBestAsk:        hasAsk,
		InboundDrops:      e.stats.InboundDrops.Load(),
		OutboundDrops:     e.stats.OutboundDrops.Load(),
		StructuralRejects: e.stats.StructuralRejects(),
		MatchedCount:      e.book.MatchedCount(),
		RestingCount:      uint64(e.book.RestingCount()),
		LastSequence:      e.book.LastSequence(),
		Timestamp:         uint64(now.UnixNano()),
	}

	select {
	case e.outbound <- status:
	default:
		log.Debug().Msg("status queue full, dropping status snapshot")
	}
}
