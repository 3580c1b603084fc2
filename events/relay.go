package events

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/Kariqs/amexan-wallet/logger"
	"github.com/Kariqs/amexan-wallet/models"
)

type RelayObserver interface {
	OutboxSent(n int)
	OutboxFailed()
}

type RelayOptions struct {
	Interval time.Duration
	Batch    int
	Observer RelayObserver
	Logger   *slog.Logger
	Now      func() time.Time
}

// Relay moves outbox rows to every publisher. A row is marked sent only
// after all publishers accepted it; otherwise it is retried on the next tick.
type Relay struct {
	db         *gorm.DB
	publishers []Publisher
	interval   time.Duration
	batch      int
	observer   RelayObserver
	log        *slog.Logger
	now        func() time.Time
}

func NewRelay(db *gorm.DB, publishers []Publisher, opts RelayOptions) *Relay {
	r := &Relay{
		db:         db,
		publishers: publishers,
		interval:   opts.Interval,
		batch:      opts.Batch,
		observer:   opts.Observer,
		log:        opts.Logger,
		now:        opts.Now,
	}
	if r.interval <= 0 {
		r.interval = 5 * time.Second
	}
	if r.batch <= 0 {
		r.batch = 100
	}
	if r.log == nil {
		r.log = logger.Discard()
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

func (r *Relay) Enabled() bool {
	return len(r.publishers) > 0
}

func (r *Relay) fetchPending(ctx context.Context) ([]models.OutboxEvent, error) {
	var rows []models.OutboxEvent
	err := r.db.WithContext(ctx).
		Where("sent_at IS NULL").
		Order("id").
		Limit(r.batch).
		Find(&rows).Error
	return rows, err
}

func (r *Relay) markSent(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.OutboxEvent{}).
		Where("id = ? AND sent_at IS NULL", id).
		Update("sent_at", r.now()).Error
}

// Flush relays one batch in id order and stops at the first failure so
// that events for an order are never delivered out of order.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	rows, err := r.fetchPending(ctx)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, evt := range rows {
		for _, p := range r.publishers {
			if err := p.Publish(ctx, evt); err != nil {
				r.log.Warn("outbox publish failed",
					slog.String("publisher", p.Name()),
					slog.String("event_id", evt.EventID),
					slog.Any("err", err))
				if r.observer != nil {
					r.observer.OutboxFailed()
				}
				r.reportSent(sent)
				return sent, err
			}
		}
		if err := r.markSent(ctx, evt.ID); err != nil {
			r.reportSent(sent)
			return sent, err
		}
		sent++
	}
	r.reportSent(sent)
	return sent, nil
}

func (r *Relay) reportSent(n int) {
	if n > 0 && r.observer != nil {
		r.observer.OutboxSent(n)
	}
}

// Run flushes on every tick until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	if !r.Enabled() {
		r.log.Info("outbox relay disabled, no publishers configured")
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.log.Info("outbox relay started", slog.Duration("interval", r.interval), slog.Int("batch", r.batch))
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := r.Flush(ctx)
			if err != nil && ctx.Err() == nil {
				r.log.Error("outbox flush failed", slog.Int("sent", n), slog.Any("err", err))
				continue
			}
			if n > 0 {
				r.log.Debug("outbox flushed", slog.Int("sent", n))
			}
		}
	}
}
