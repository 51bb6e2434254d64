// Package engine assembles the five cooperating components of §2 —
// Order Book, Matcher, Ingress Receiver, Egress Broadcaster and
// Snapshot Loader, plus the periodic Status Emitter of §5 — under a
// single supervised lifecycle. It is grounded on the teacher's
// main.go/benchmark wiring, generalized from a one-off hand-rolled
// goroutine launch into a tomb.Tomb-supervised Supervisor matching
// saiputravu-Exchange's server.Run shape.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"matchcore/domain"
	"matchcore/matching"
	"matchcore/netio"
	"matchcore/orderbook"
)

// Queue sizes are fixed at startup and never reallocated (§5 "Resource
// ownership").
const (
	inboundQueueSize = 4096
	resultQueueSize  = 4096
	statusQueueSize  = 8

	shutdownGrace = 5 * time.Second
)

// Config is the fully-validated set of parameters a Supervisor needs
// to start. It mirrors the §6 CLI surface one-to-one.
type Config struct {
	ProductID         uint16
	Tag               string
	OrderMulticast    string
	ResultMulticast   string
	StatusMulticast   string
	FuelServer        string
	MetricsAddr       string
	TestOrderBookSize uint64
	StatusInterval    time.Duration
}

// Supervisor owns every long-lived task and the book they share.
type Supervisor struct {
	cfg   Config
	runID uuid.UUID

	book  *orderbook.Book
	stats *matching.Stats

	inbound        chan domain.Inbound
	outboundResult chan domain.MatchResult
	outboundStatus chan domain.EngineStatus

	ingress *netio.Ingress
	egress  *netio.Egress
}

// New constructs a Supervisor. It does not start any task or touch
// the network; call Run for that.
func New(cfg Config) *Supervisor {
	return &Supervisor{
		cfg:            cfg,
		runID:          uuid.New(),
		book:           orderbook.NewBook(cfg.ProductID),
		stats:          matching.NewStats(),
		inbound:        make(chan domain.Inbound, inboundQueueSize),
		outboundResult: make(chan domain.MatchResult, resultQueueSize),
		outboundStatus: make(chan domain.EngineStatus, statusQueueSize),
	}
}

// Run performs cold start (snapshot load or synthetic seeding), then
// starts every task under a tomb supervised by ctx, and blocks until
// ctx is cancelled or a task reports a fatal error (§7: an internal
// invariant violation propagates here and is expected to exit the
// process non-zero).
func (s *Supervisor) Run(ctx context.Context) error {
	log.Info().
		Str("run_id", s.runID.String()).
		Uint16("product_id", s.cfg.ProductID).
		Str("name", s.cfg.Tag).
		Msg("starting engine")

	if err := s.coldStart(); err != nil {
		return fmt.Errorf("cold start: %w", err)
	}

	egress, err := netio.DialEgress(s.cfg.ResultMulticast, s.cfg.StatusMulticast, s.cfg.Tag)
	if err != nil {
		return fmt.Errorf("dial egress: %w", err)
	}
	s.egress = egress
	defer s.egress.Close()

	if s.cfg.OrderMulticast != "" {
		ingress, err := netio.DialIngress(s.cfg.OrderMulticast, s.cfg.ProductID, s.inbound, s.stats)
		if err != nil {
			return fmt.Errorf("dial ingress: %w", err)
		}
		s.ingress = ingress
	}

	t, ctx := tomb.WithContext(ctx)

	if s.ingress != nil {
		done := make(chan struct{})
		t.Go(func() error {
			return s.ingress.Run(done)
		})
		t.Go(func() error {
			<-t.Dying()
			close(done)
			return s.ingress.Close()
		})
	}

	matcher := matching.NewMatcher(s.book, s.inbound, s.outboundResult, s.stats)
	t.Go(func() error { return matcher.Run(t) })

	statusEmitter := netio.NewStatusEmitter(s.book, s.stats, s.outboundStatus, s.cfg.StatusInterval)
	t.Go(func() error { return statusEmitter.Run(t) })

	t.Go(func() error { return s.egress.RunResults(t, s.outboundResult) })
	t.Go(func() error { return s.egress.RunStatus(t, s.outboundStatus) })

	if s.cfg.MetricsAddr != "" {
		t.Go(func() error { return s.serveMetrics(t) })
	}

	<-t.Dying()
	log.Info().Str("run_id", s.runID.String()).Msg("engine shutting down")
	return t.Wait()
}

// coldStart loads the book from the fuel server if one is configured,
// otherwise seeds a synthetic book when requested, otherwise marks the
// book ready immediately (§4.5: "ready" gates the Matcher, not startup
// itself — an engine with nothing to load is ready the instant it
// starts).
func (s *Supervisor) coldStart() error {
	switch {
	case s.cfg.FuelServer != "":
		return netio.LoadSnapshot(s.cfg.FuelServer, s.book, 0)
	case s.cfg.TestOrderBookSize > 0:
		seedSyntheticBook(s.book, s.cfg.TestOrderBookSize)
		s.book.SetReady()
		return nil
	default:
		s.book.SetReady()
		return nil
	}
}
