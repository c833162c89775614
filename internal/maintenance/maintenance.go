// Package maintenance runs periodic background tasks as Go tickers.
// The retention queue evicts lazily on insert; these tickers bound memory
// for users who stop polling and keep the queue-size gauge current.
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/albapepper/meditrack-alerts/internal/metrics"
)

// Queue is the part of the alert retention queue maintenance touches.
type Queue interface {
	EvictExpired(ctx context.Context) (int, error)
	Len(ctx context.Context) (int, error)
}

// Config controls maintenance task intervals. Zero duration disables a task.
type Config struct {
	EvictInterval time.Duration // Expired alert entries
	GaugeInterval time.Duration // Queue size gauge refresh
}

// DefaultConfig returns sensible production defaults.
func DefaultConfig() Config {
	return Config{
		EvictInterval: time.Minute,
		GaugeInterval: 15 * time.Second,
	}
}

// Start launches all configured maintenance tickers. Blocks until ctx is
// cancelled. Intended to be called with `go`.
func Start(ctx context.Context, q Queue, cfg Config, logger *slog.Logger) {
	logger.Info("Maintenance tickers started",
		"evict", cfg.EvictInterval,
		"gauge", cfg.GaugeInterval)

	tickers := make([]*time.Ticker, 0, 2)
	defer func() {
		for _, t := range tickers {
			t.Stop()
		}
	}()

	if cfg.EvictInterval > 0 {
		t := time.NewTicker(cfg.EvictInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() { evict(ctx, q, logger) })
	}

	if cfg.GaugeInterval > 0 {
		t := time.NewTicker(cfg.GaugeInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() { refreshGauge(ctx, q, logger) })
	}

	<-ctx.Done()
	logger.Info("Maintenance tickers stopped")
}

func runLoop(ctx context.Context, ch <-chan time.Time, fn func()) {
	for {
		select {
		case <-ch:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

// --------------------------------------------------------------------------
// Task implementations
// --------------------------------------------------------------------------

func evict(ctx context.Context, q Queue, logger *slog.Logger) {
	n, err := q.EvictExpired(ctx)
	if err != nil {
		logger.Warn("Evict: failed to drop expired alerts", "error", err)
		return
	}
	if n > 0 {
		logger.Debug("Evict: dropped expired alerts", "count", n)
	}
}

func refreshGauge(ctx context.Context, q Queue, logger *slog.Logger) {
	n, err := q.Len(ctx)
	if err != nil {
		logger.Warn("Gauge: failed to read queue size", "error", err)
		return
	}
	metrics.QueueSize.Set(float64(n))
}
