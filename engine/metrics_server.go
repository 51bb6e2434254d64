package engine

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"matchcore/metrics"
)

// serveMetrics runs the optional Prometheus HTTP endpoint until t dies
// (SPEC_FULL §2, purely additive to the wire-level EngineStatus).
func (s *Supervisor) serveMetrics(t *tomb.Tomb) error {
	collector := metrics.NewCollector(s.book, s.stats)

	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	srv := &http.Server{Addr: s.cfg.MetricsAddr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.cfg.MetricsAddr).Msg("metrics endpoint listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-t.Dying():
		ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(ctx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
