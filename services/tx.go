package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/Kariqs/amexan-wallet/logger"
)

type TxOptions struct {
	// LockTimeout bounds a single attempt, including lock waits.
	LockTimeout time.Duration
	// MaxRetries is how many times a Conflict is retried before it
	// surfaces as Internal.
	MaxRetries int
	Backoff    time.Duration
}

func DefaultTxOptions() TxOptions {
	return TxOptions{LockTimeout: 5 * time.Second, MaxRetries: 3, Backoff: 20 * time.Millisecond}
}

// Transactor owns the transaction boundary of every multi-row mutation.
type Transactor struct {
	db   *gorm.DB
	opts TxOptions
	log  *slog.Logger
}

func NewTransactor(db *gorm.DB, opts TxOptions, log *slog.Logger) *Transactor {
	if opts.LockTimeout <= 0 {
		opts.LockTimeout = DefaultTxOptions().LockTimeout
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Transactor{db: db, opts: opts, log: log}
}

func (t *Transactor) DB() *gorm.DB { return t.db }

// Run executes fn in one transaction and retries it on Conflict.
func (t *Transactor) Run(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return t.Retry(ctx, func(ctx context.Context) error {
		return t.Once(ctx, fn)
	})
}

// Once is a single attempt of fn under the configured lock timeout.
func (t *Transactor) Once(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return WithTransaction(ctx, t.db, t.opts.LockTimeout, fn)
}

// Retry re-runs attempt while it fails with Conflict. Business errors are
// returned as-is on the first failure.
func (t *Transactor) Retry(ctx context.Context, attempt func(ctx context.Context) error) error {
	for i := 0; ; i++ {
		err := attempt(ctx)
		if err == nil {
			return nil
		}
		if KindOf(err) != KindConflict {
			return err
		}
		if i >= t.opts.MaxRetries {
			t.log.Warn("transaction retries exhausted", slog.Int("attempts", i+1), slog.Any("err", err))
			return &Error{Kind: KindInternal, Code: ErrInternal.Code, Message: ErrInternal.Message, Err: err}
		}
		t.log.Debug("retrying after conflict", slog.Int("attempt", i+1), slog.Any("err", err))

		select {
		case <-ctx.Done():
			return Internal(ctx.Err())
		case <-time.After(t.opts.Backoff * time.Duration(i+1)):
		}
	}
}

// WithTransaction commits when fn returns nil and rolls back on error or
// panic. Lock contention, lost unique-key races and attempt timeouts come
// back as Conflict, other persistence failures as Internal, and *Error
// values unchanged.
func WithTransaction(ctx context.Context, db *gorm.DB, timeout time.Duration, fn func(tx *gorm.DB) error) error {
	attemptCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	err := db.WithContext(attemptCtx).Transaction(fn)
	return classify(ctx, err)
}

func classify(parent context.Context, err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	if parent.Err() != nil {
		return Internal(err)
	}
	if errors.Is(err, context.DeadlineExceeded) || isRetryable(err) {
		return &Error{Kind: KindConflict, Code: ErrConflict.Code, Message: ErrConflict.Message, Err: err}
	}
	return Internal(err)
}

// isRetryable reports lock contention and unique-key violations. The latter
// only happen when two writers insert the same row at once; re-running the
// attempt finds the winner's row.
func isRetryable(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		// ER_LOCK_WAIT_TIMEOUT, ER_LOCK_DEADLOCK, ER_DUP_ENTRY
		return myErr.Number == 1205 || myErr.Number == 1213 || myErr.Number == 1062
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03", "23505":
			return true
		}
		return false
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "sqlite_busy") ||
		strings.Contains(msg, "unique constraint failed")
}
