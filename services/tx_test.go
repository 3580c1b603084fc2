package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Kariqs/amexan-wallet/models"
)

func TestWithTransaction_CommitAndRollback(t *testing.T) {
	db := newTestDB(t)

	err := WithTransaction(t.Context(), db, time.Second, func(tx *gorm.DB) error {
		return tx.Create(&models.Category{Name: "kept", Lifecycle: models.Active()}).Error
	})
	require.NoError(t, err)

	err = WithTransaction(t.Context(), db, time.Second, func(tx *gorm.DB) error {
		require.NoError(t, tx.Create(&models.Category{Name: "dropped", Lifecycle: models.Active()}).Error)
		return ErrInsufficientFunds
	})
	require.ErrorIs(t, err, ErrInsufficientFunds)

	assert.Panics(t, func() {
		_ = WithTransaction(t.Context(), db, time.Second, func(tx *gorm.DB) error {
			require.NoError(t, tx.Create(&models.Category{Name: "panicked", Lifecycle: models.Active()}).Error)
			panic("boom")
		})
	})

	var names []string
	require.NoError(t, db.Model(&models.Category{}).Order("id").Pluck("name", &names).Error)
	assert.Equal(t, []string{"kept"}, names)
}

func TestWithTransaction_PlainErrorsBecomeInternal(t *testing.T) {
	db := newTestDB(t)

	err := WithTransaction(t.Context(), db, time.Second, func(tx *gorm.DB) error {
		return errors.New("disk on fire")
	})
	require.Error(t, err)
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, "Internal server error.", MessageOf(err))
}

func TestTransactor_RetriesConflicts(t *testing.T) {
	db := newTestDB(t)
	tx := NewTransactor(db, TxOptions{LockTimeout: time.Second, MaxRetries: 2, Backoff: time.Millisecond}, nil)

	t.Run("succeeds after a conflict", func(t *testing.T) {
		calls := 0
		err := tx.Run(t.Context(), func(*gorm.DB) error {
			calls++
			if calls == 1 {
				return ErrConflict
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("exhausted retries are internal", func(t *testing.T) {
		calls := 0
		err := tx.Run(t.Context(), func(*gorm.DB) error {
			calls++
			return ErrConflict
		})
		require.Error(t, err)
		assert.Equal(t, 3, calls)
		assert.Equal(t, KindInternal, KindOf(err))
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("business errors are not retried", func(t *testing.T) {
		calls := 0
		err := tx.Run(t.Context(), func(*gorm.DB) error {
			calls++
			return ErrEmptyCart
		})
		require.ErrorIs(t, err, ErrEmptyCart)
		assert.Equal(t, 1, calls)
	})

	t.Run("cancelled context stops retrying", func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		calls := 0
		err := tx.Retry(ctx, func(context.Context) error {
			calls++
			cancel()
			return ErrConflict
		})
		require.Error(t, err)
		assert.Equal(t, 1, calls)
		assert.Equal(t, KindInternal, KindOf(err))
	})
}

func TestClassify(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name   string
		parent context.Context
		err    error
		want   Kind
	}{
		{name: "app error unchanged", parent: context.Background(), err: ErrOrderNotFound, want: KindNotFound},
		{name: "attempt deadline", parent: context.Background(), err: context.DeadlineExceeded, want: KindConflict},
		{name: "caller gave up", parent: cancelled, err: context.Canceled, want: KindInternal},
		{name: "mysql lock wait", parent: context.Background(), err: &mysql.MySQLError{Number: 1205}, want: KindConflict},
		{name: "mysql deadlock", parent: context.Background(), err: &mysql.MySQLError{Number: 1213}, want: KindConflict},
		{name: "mysql duplicate entry", parent: context.Background(), err: &mysql.MySQLError{Number: 1062}, want: KindConflict},
		{name: "mysql syntax", parent: context.Background(), err: &mysql.MySQLError{Number: 1064}, want: KindInternal},
		{name: "postgres serialization", parent: context.Background(), err: &pgconn.PgError{Code: "40001"}, want: KindConflict},
		{name: "postgres lock not available", parent: context.Background(), err: &pgconn.PgError{Code: "55P03"}, want: KindConflict},
		{name: "postgres unique violation", parent: context.Background(), err: &pgconn.PgError{Code: "23505"}, want: KindConflict},
		{name: "postgres not null violation", parent: context.Background(), err: &pgconn.PgError{Code: "23502"}, want: KindInternal},
		{name: "sqlite unique", parent: context.Background(), err: errors.New("constraint failed: UNIQUE constraint failed: cart_items.cart_id, cart_items.product_id (2067)"), want: KindConflict},
		{name: "translated duplicate", parent: context.Background(), err: gorm.ErrDuplicatedKey, want: KindConflict},
		{name: "sqlite busy", parent: context.Background(), err: errors.New("database is locked (5) (SQLITE_BUSY)"), want: KindConflict},
		{name: "anything else", parent: context.Background(), err: errors.New("connection reset"), want: KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(classify(tt.parent, tt.err)))
		})
	}

	assert.NoError(t, classify(context.Background(), nil))
}
