package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"ecanteen/internal/logger"
	"ecanteen/internal/metrics"
	"ecanteen/internal/repositories"
)

const defaultSweepSpec = "@hourly"

// PasscodeSweeper periodically deletes expired passcodes. Lookups already
// ignore them, so the sweep only bounds table growth.
type PasscodeSweeper struct {
	repo     repositories.PasscodeRepository
	cron     *cron.Cron
	schedule string
	now      func() time.Time
	log      *zap.Logger
}

type SweeperOption func(*PasscodeSweeper)

// WithSweepCron injects a preconfigured cron instance, mostly for tests.
func WithSweepCron(c *cron.Cron) SweeperOption {
	return func(s *PasscodeSweeper) {
		if c != nil {
			s.cron = c
		}
	}
}

func WithSweepSchedule(spec string) SweeperOption {
	return func(s *PasscodeSweeper) {
		if spec != "" {
			s.schedule = spec
		}
	}
}

func WithSweepClock(now func() time.Time) SweeperOption {
	return func(s *PasscodeSweeper) {
		if now != nil {
			s.now = now
		}
	}
}

func NewPasscodeSweeper(repo repositories.PasscodeRepository, opts ...SweeperOption) *PasscodeSweeper {
	s := &PasscodeSweeper{
		repo:     repo,
		schedule: defaultSweepSpec,
		now:      time.Now,
		log:      logger.WithModule("maintenance"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cron == nil {
		s.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}
	return s
}

func (s *PasscodeSweeper) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.Sweep(context.Background()); err != nil {
			s.log.Warn("passcode sweep failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("schedule passcode sweep %q: %w", s.schedule, err)
	}
	s.cron.Start()
	return nil
}

// Stop halts the scheduler; the returned context is done once a running sweep finishes.
func (s *PasscodeSweeper) Stop() context.Context {
	return s.cron.Stop()
}

func (s *PasscodeSweeper) Sweep(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("sweep passcodes: %w", err)
	}
	if n > 0 {
		metrics.PasscodesSwept.Add(float64(n))
		s.log.Info("expired passcodes removed", zap.Int64("count", n))
	}
	return n, nil
}
