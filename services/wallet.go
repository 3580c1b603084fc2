package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Kariqs/amexan-wallet/logger"
	"github.com/Kariqs/amexan-wallet/models"
	"github.com/Kariqs/amexan-wallet/utils"
)

// WalletLedger is the only writer of wallet balances.
type WalletLedger struct {
	tx  *Transactor
	now func() time.Time
	log *slog.Logger
}

func NewWalletLedger(tx *Transactor, now func() time.Time, log *slog.Logger) *WalletLedger {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logger.Discard()
	}
	return &WalletLedger{tx: tx, now: now, log: log}
}

// lock reads the wallet row under FOR UPDATE.
func (w *WalletLedger) lock(tx *gorm.DB, userID uint) (models.Wallet, error) {
	var wallet models.Wallet
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(models.Live).
		Where("user_id = ?", userID).
		First(&wallet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Wallet{}, ErrWalletNotFound
	}
	return wallet, err
}

// store writes the new balance only if nobody bumped the version meanwhile.
func (w *WalletLedger) store(tx *gorm.DB, wallet models.Wallet, balance decimal.Decimal) (models.Wallet, error) {
	res := tx.Model(&models.Wallet{}).
		Where("id = ? AND version = ?", wallet.ID, wallet.Version).
		Updates(map[string]any{
			"balance":    balance,
			"version":    wallet.Version + 1,
			"updated_at": w.now(),
		})
	if res.Error != nil {
		return models.Wallet{}, res.Error
	}
	if res.RowsAffected == 0 {
		return models.Wallet{}, ErrConflict
	}
	wallet.Balance = balance
	wallet.Version++
	return wallet, nil
}

// Debit takes amount out of the user's wallet inside tx. The balance check
// and the write happen under the same row lock.
func (w *WalletLedger) Debit(tx *gorm.DB, userID uint, amount decimal.Decimal) (models.Wallet, error) {
	if amount.IsNegative() {
		return models.Wallet{}, ErrInvalidAmount
	}
	wallet, err := w.lock(tx, userID)
	if err != nil {
		return models.Wallet{}, err
	}
	if wallet.Balance.LessThan(amount) {
		return models.Wallet{}, ErrInsufficientFunds
	}
	return w.store(tx, wallet, utils.RoundMoney(wallet.Balance.Sub(amount)))
}

// Credit adds amount to the user's wallet inside tx.
func (w *WalletLedger) Credit(tx *gorm.DB, userID uint, amount decimal.Decimal) (models.Wallet, error) {
	if amount.IsNegative() {
		return models.Wallet{}, ErrInvalidAmount
	}
	wallet, err := w.lock(tx, userID)
	if err != nil {
		return models.Wallet{}, err
	}
	return w.store(tx, wallet, utils.RoundMoney(wallet.Balance.Add(amount)))
}

func (w *WalletLedger) Balance(ctx context.Context, userID uint) (models.Wallet, error) {
	var wallet models.Wallet
	err := w.tx.DB().WithContext(ctx).Scopes(models.Live).Where("user_id = ?", userID).First(&wallet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Wallet{}, ErrWalletNotFound
	}
	if err != nil {
		return models.Wallet{}, Internal(err)
	}
	return wallet, nil
}

// TopUp credits a user's wallet outside of any order and records a
// TOP_UP transaction.
func (w *WalletLedger) TopUp(ctx context.Context, userID uint, amount decimal.Decimal) (models.Wallet, error) {
	if !amount.IsPositive() {
		return models.Wallet{}, ErrInvalidAmount
	}
	amount = utils.RoundMoney(amount)

	var updated models.Wallet
	err := w.tx.Run(ctx, func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Scopes(models.Live).First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		wallet, err := w.Credit(tx, userID, amount)
		if err != nil {
			return err
		}
		updated = wallet

		return tx.Create(&models.Transaction{
			UserID:          userID,
			Kind:            models.TransactionTopUp,
			Amount:          amount,
			Success:         true,
			TransactionDate: w.now(),
		}).Error
	})
	if err != nil {
		return models.Wallet{}, err
	}

	w.log.Info("wallet topped up", slog.Uint64("user_id", uint64(userID)), slog.String("amount", amount.StringFixed(2)))
	return updated, nil
}
