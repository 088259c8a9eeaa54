package sweeper

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Astemirdum/library-circulation/circulation/internal/model"
	"github.com/Astemirdum/library-circulation/circulation/internal/policy"
)

type Config struct {
	OverdueInterval time.Duration `envconfig:"SWEEP_OVERDUE_INTERVAL" default:"1h"`
	HoldsInterval   time.Duration `envconfig:"SWEEP_HOLDS_INTERVAL" default:"5m"`
}

//go:generate go run github.com/golang/mock/mockgen -source=sweeper.go -destination=mocks/mock.go

type Sweeps interface {
	AssessOverdue(ctx context.Context, now time.Time) (model.SweepResult, error)
	ExpireHolds(ctx context.Context, now time.Time) (model.SweepResult, error)
}

type Sweeper struct {
	sweeps Sweeps
	clock  policy.Clock
	cfg    Config
	log    *zap.Logger
}

func New(sweeps Sweeps, clock policy.Clock, cfg Config, log *zap.Logger) *Sweeper {
	if clock == nil {
		clock = policy.SystemClock{}
	}
	return &Sweeper{
		sweeps: sweeps,
		clock:  clock,
		cfg:    cfg,
		log:    log.Named("sweeper"),
	}
}

// Run ticks both sweeps until ctx is done. A failed cycle is logged and retried on the
// next tick, so Run only returns ctx.Err().
func (s *Sweeper) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.loop(ctx, "assess_overdue", s.cfg.OverdueInterval, s.sweeps.AssessOverdue)
	})
	g.Go(func() error {
		return s.loop(ctx, "expire_holds", s.cfg.HoldsInterval, s.sweeps.ExpireHolds)
	})
	return g.Wait()
}

// Once runs both sweeps a single time, holds first so freed copies are not counted overdue.
func (s *Sweeper) Once(ctx context.Context) error {
	if err := s.cycle(ctx, "expire_holds", s.sweeps.ExpireHolds); err != nil {
		return err
	}
	return s.cycle(ctx, "assess_overdue", s.sweeps.AssessOverdue)
}

func (s *Sweeper) loop(ctx context.Context, name string, every time.Duration, fn func(context.Context, time.Time) (model.SweepResult, error)) error {
	if every <= 0 {
		s.log.Info("sweep disabled", zap.String("sweep", name))
		return nil
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		_ = s.cycle(ctx, name, fn)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Sweeper) cycle(ctx context.Context, name string, fn func(context.Context, time.Time) (model.SweepResult, error)) error {
	started := time.Now()
	res, err := fn(ctx, s.clock.Now())
	fields := []zap.Field{
		zap.String("sweep", name),
		zap.Int("processed", res.Processed),
		zap.Int("changed", res.Changed),
		zap.Int("failed", res.Failed),
		zap.Duration("took", time.Since(started)),
	}
	if err != nil {
		if ctx.Err() == nil {
			s.log.Error("sweep cycle aborted", append(fields, zap.Error(err))...)
		}
		return err
	}
	s.log.Info("sweep cycle", fields...)
	return nil
}
