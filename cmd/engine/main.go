// Command engine runs a single-product matching engine instance bound
// to the CLI surface of spec.md §6.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"matchcore/engine"
	"matchcore/netio"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("engine exited with error")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		name              string
		prodID            uint16
		testOrderBookSize string
		orderMulticast    string
		resultMulticast   string
		statusMulticast   string
		fuelServer        string
		metricsAddr       string
		statusInterval    time.Duration
		verbose           bool
	)

	cmd := &cobra.Command{
		Use:   "engine",
		Short: "Single-product limit order book matching engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}

			if len(name) == 0 || len(name) > 8 {
				return fmt.Errorf("--name must be 1-8 characters, got %q", name)
			}
			if prodID == 0 {
				return fmt.Errorf("--prodid must be in 1..65535")
			}

			bookSize, err := parseSizeSuffix(testOrderBookSize)
			if err != nil {
				return fmt.Errorf("--test-order-book-size: %w", err)
			}

			cfg := engine.Config{
				ProductID:         prodID,
				Tag:               name,
				OrderMulticast:    orderMulticast,
				ResultMulticast:   resultMulticast,
				StatusMulticast:   statusMulticast,
				FuelServer:        fuelServer,
				MetricsAddr:       metricsAddr,
				TestOrderBookSize: bookSize,
				StatusInterval:    statusInterval,
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return engine.New(cfg).Run(ctx)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&name, "name", "", "instance tag, <=8 characters (required)")
	flags.Uint16Var(&prodID, "prodid", 0, "product id, 1..65535 (required)")
	flags.StringVar(&testOrderBookSize, "test-order-book-size", "", "seed a synthetic book of N buys and N sells, e.g. 10k, 1M")
	flags.StringVar(&orderMulticast, "order-multicast", netio.DefaultOrderMulticast, "order ingress multicast group")
	flags.StringVar(&resultMulticast, "result-multicast", netio.DefaultResultMulticast, "match result egress multicast group")
	flags.StringVar(&statusMulticast, "status-multicast", netio.DefaultStatusMulticast, "engine status egress multicast group")
	flags.StringVar(&fuelServer, "fuel-server", "", "fuel server host:port for cold-start snapshot load")
	flags.StringVar(&metricsAddr, "metrics-addr", "", "optional Prometheus metrics listen address, e.g. :9100")
	flags.DurationVar(&statusInterval, "status-interval", netio.DefaultStatusInterval, "status emitter cadence")
	flags.BoolVar(&verbose, "verbose", false, "enable debug logging")

	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("prodid")

	return cmd
}

// parseSizeSuffix parses an optional k/M suffix (k=1e3, M=1e6) per §6.
// An empty string means "no synthetic seeding" and returns 0, nil.
func parseSizeSuffix(s string) (uint64, error) {
	if s == "" {
		return 0, nil
	}
	mult := uint64(1)
	switch {
	case strings.HasSuffix(s, "k"), strings.HasSuffix(s, "K"):
		mult = 1_000
		s = s[:len(s)-1]
	case strings.HasSuffix(s, "M"):
		mult = 1_000_000
		s = s[:len(s)-1]
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return n * mult, nil
}
