package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// RunBench drives the transform with concurrent encode/decode round trips and
// reports throughput. It is the one long-running invocation of this binary, so
// it can optionally expose the Prometheus endpoint while it runs.
//
// Zero values for workers, iterations and ratePerSec fall back to the
// configured defaults. A positive ratePerSec caps the aggregate round trip
// rate across all workers.
func RunBench(
	ctx context.Context,
	io IOTuple,
	workers, iterations int,
	ratePerSec float64,
	payload string,
	serveMetrics bool,
) error {
	container, err := newContainer()
	if err != nil {
		return err
	}
	logger := container.Logger()
	defer closeContainer(container, logger)

	cfg := container.Config()
	if workers <= 0 {
		workers = cfg.BenchWorkers
	}
	if iterations <= 0 {
		iterations = cfg.BenchIterations
	}
	if ratePerSec <= 0 {
		ratePerSec = cfg.BenchRatePerSec
	}

	transformer, err := container.Transformer()
	if err != nil {
		return fmt.Errorf("failed to build transformer: %w", err)
	}

	if serveMetrics {
		server, err := container.MetricsServer()
		if err != nil {
			return fmt.Errorf("failed to build metrics server: %w", err)
		}
		go func() {
			if err := server.Start(ctx); err != nil {
				logger.Error("metrics server error", slog.Any("error", err))
			}
		}()
	}

	var limiter *rate.Limiter
	if ratePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(ratePerSec), workers)
	}

	runID := uuid.NewString()
	logger.Info(
		"starting bench run",
		slog.String("run_id", runID),
		slog.Int("workers", workers),
		slog.Int("iterations", iterations),
	)

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := 0; i < iterations; i++ {
				if limiter != nil {
					if err := limiter.Wait(gctx); err != nil {
						return err
					}
				}

				token, err := transformer.Encode(payload)
				if err != nil {
					return fmt.Errorf("encode failed: %w", err)
				}

				decoded, err := transformer.Decode(token)
				if err != nil {
					return fmt.Errorf("decode failed: %w", err)
				}
				if decoded != payload {
					return fmt.Errorf("round trip produced a different payload")
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("bench run %s failed: %w", runID, err)
	}

	elapsed := time.Since(start)
	rounds := workers * iterations

	fmt.Fprintf(
		io.Writer,
		"run_id=%s workers=%d iterations=%d rounds=%d elapsed=%s rounds_per_sec=%.0f\n",
		runID,
		workers,
		iterations,
		rounds,
		elapsed.Round(time.Millisecond),
		float64(rounds)/elapsed.Seconds(),
	)

	return nil
}
