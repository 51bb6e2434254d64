// Package matching implements the Matcher (§4.2): the single task
// that owns exclusive write access to the order book and serially
// dispatches inbound submissions and cancellations to it.
package matching

import (
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"matchcore/domain"
	"matchcore/orderbook"
)

// Matcher drains Inbound from a bounded queue and applies each message
// to Book in arrival order, forwarding every emitted MatchResult to a
// bounded outbound queue with a non-blocking try-send (§4.2, §5). It
// is grounded on the teacher's MatchingEngine.Start goroutine
// (matching/engine.go), replaced channel-for-channel: the teacher's
// lock-free semaphore RingBuffer is dropped in favor of a plain
// buffered channel plus select/default, since §4.2/§4.3 specify
// drop-on-full as the queue policy and a buffered channel expresses
// that directly without runtime-internal semaphore linkname tricks.
type Matcher struct {
	productID uint16
	book      *orderbook.Book
	inbound   <-chan domain.Inbound
	outbound  chan<- domain.MatchResult
	stats     *Stats
}

// NewMatcher wires a Matcher to its book and queues.
func NewMatcher(book *orderbook.Book, inbound <-chan domain.Inbound, outbound chan<- domain.MatchResult, stats *Stats) *Matcher {
	return &Matcher{
		productID: book.ProductID(),
		book:      book,
		inbound:   inbound,
		outbound:  outbound,
		stats:     stats,
	}
}

// Run drains the inbound queue until t dies. A returned error signals
// an internal invariant violation (§7): it kills the surrounding tomb
// and is expected to bring the whole process down non-zero.
func (m *Matcher) Run(t *tomb.Tomb) error {
	log.Info().Uint16("product_id", m.productID).Msg("matcher starting")
	for {
		select {
		case <-t.Dying():
			log.Info().Uint16("product_id", m.productID).Msg("matcher stopping")
			return nil
		case msg := <-m.inbound:
			if err := m.handle(msg); err != nil {
				log.Error().Err(err).Uint16("product_id", m.productID).Msg("internal invariant violated, aborting")
				return err
			}
		}
	}
}

func (m *Matcher) handle(msg domain.Inbound) error {
	switch msg.Kind {
	case domain.MsgOrderSubmit:
		return m.handleSubmit(msg.Order)
	case domain.MsgOrderCancel:
		m.handleCancel(msg.Cancel)
		return nil
	default:
		// Unknown kinds are filtered by the codec before reaching the
		// inbound queue; reaching here indicates a caller bug, not an
		// invariant violation of the book itself.
		log.Debug().Uint8("kind", uint8(msg.Kind)).Msg("matcher received unrecognized message kind")
		return nil
	}
}

func (m *Matcher) handleSubmit(order domain.Order) error {
	results, reject, err := m.book.MatchOrder(&order)
	if err != nil {
		return err
	}
	if reject != orderbook.RejectNone {
		m.stats.recordReject(reject)
		log.Debug().
			Uint64("order_id", order.OrderID).
			Str("reason", reject.String()).
			Msg("order rejected")
		return nil
	}
	for _, result := range results {
		m.publish(result)
	}
	return nil
}

func (m *Matcher) handleCancel(req domain.CancelRequest) {
	if req.ProductID != m.productID {
		m.stats.WrongProduct.Add(1)
		return
	}
	if m.book.CancelOrder(req.OrderID) {
		m.stats.CancelHits.Add(1)
	} else {
		m.stats.CancelMisses.Add(1)
	}
}

// publish forwards a MatchResult to the outbound queue without ever
// blocking the Matcher under the book's write lock (§4.2). If the
// queue is full, the result is dropped and counted.
func (m *Matcher) publish(result domain.MatchResult) {
	select {
	case m.outbound <- result:
	default:
		m.stats.OutboundDrops.Add(1)
		log.Debug().Uint64("sequence", result.Sequence).Msg("outbound queue full, dropping match result")
	}
}
