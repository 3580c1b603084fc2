package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Kariqs/amexan-wallet/logger"
)

// PromoSweeper is the piece of the promo service the scheduler drives.
type PromoSweeper interface {
	DeactivateExpired(ctx context.Context) (int64, error)
}

type SweepObserver interface {
	PromoSwept(deactivated int64)
}

// Scheduler runs the daily promo expiry sweep.
type Scheduler struct {
	cron     *cron.Cron
	sweeper  PromoSweeper
	observer SweepObserver
	timeout  time.Duration
	log      *slog.Logger
}

func NewScheduler(spec string, loc *time.Location, sweeper PromoSweeper, observer SweepObserver, log *slog.Logger) (*Scheduler, error) {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = logger.Discard()
	}
	s := &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		sweeper:  sweeper,
		observer: observer,
		timeout:  time.Minute,
		log:      log,
	}
	if _, err := s.cron.AddFunc(spec, func() { _, _ = s.Sweep(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid promo sweep schedule %q: %w", spec, err)
	}
	return s, nil
}

// Sweep runs one deactivation pass and logs the outcome. The admin
// endpoint calls it directly.
func (s *Scheduler) Sweep(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.sweeper.DeactivateExpired(ctx)
	if err != nil {
		s.log.Error("promo sweep failed", slog.Any("err", err))
		return 0, err
	}
	if s.observer != nil {
		s.observer.PromoSwept(n)
	}
	s.log.Info("promo sweep finished", slog.Int64("deactivated", n))
	return n, nil
}

// Run starts the cron loop and blocks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	s.log.Info("promo sweep scheduled", slog.Int("entries", len(s.cron.Entries())))
	<-ctx.Done()
	<-s.cron.Stop().Done()
	return nil
}
