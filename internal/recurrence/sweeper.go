package recurrence

import (
	"context"
	"time"

	"github.com/zoubayerBS/budgetbud-sub000/internal/logger"
)

// Sweeper runs full materialization passes on a fixed interval.
type Sweeper struct {
	engine   *Engine
	interval time.Duration
}

// NewSweeper creates a sweep worker around an engine.
func NewSweeper(engine *Engine, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{engine: engine, interval: interval}
}

// Run sweeps immediately, then on every tick until the context is cancelled.
// Failed passes are logged and retried on the next tick.
func (s *Sweeper) Run(ctx context.Context) {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	start := time.Now()
	if err := s.engine.MaterializeAll(ctx); err != nil {
		logger.Get().Errorw("sweep pass failed", "error", err)
		return
	}
	logger.Get().Infow("sweep pass completed", "duration_ms", time.Since(start).Milliseconds())
}
