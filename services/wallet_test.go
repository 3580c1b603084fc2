package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Kariqs/amexan-wallet/models"
)

func TestWalletLedger_DebitCredit(t *testing.T) {
	f := newFixture(t)
	user := f.user(t, "amina", "50")

	err := f.tx.Run(t.Context(), func(tx *gorm.DB) error {
		wallet, err := f.wallets.Debit(tx, user.ID, dec("20.25"))
		require.NoError(t, err)
		assertMoney(t, "29.75", wallet.Balance)

		wallet, err = f.wallets.Credit(tx, user.ID, dec("0.25"))
		require.NoError(t, err)
		assertMoney(t, "30", wallet.Balance)
		return nil
	})
	require.NoError(t, err)
	assertMoney(t, "30", f.balance(t, user.ID))

	var wallet models.Wallet
	require.NoError(t, f.db.Where("user_id = ?", user.ID).First(&wallet).Error)
	assert.EqualValues(t, 2, wallet.Version)
}

func TestWalletLedger_DebitNeverGoesNegative(t *testing.T) {
	f := newFixture(t)
	user := f.user(t, "amina", "10")

	err := f.tx.Run(t.Context(), func(tx *gorm.DB) error {
		_, err := f.wallets.Debit(tx, user.ID, dec("10.01"))
		return err
	})
	require.ErrorIs(t, err, ErrInsufficientFunds)
	assertMoney(t, "10", f.balance(t, user.ID))

	err = f.tx.Run(t.Context(), func(tx *gorm.DB) error {
		_, err := f.wallets.Debit(tx, user.ID, dec("10"))
		return err
	})
	require.NoError(t, err)
	assertMoney(t, "0", f.balance(t, user.ID))
}

func TestWalletLedger_StaleVersionIsConflict(t *testing.T) {
	f := newFixture(t)
	user := f.user(t, "amina", "10")

	var wallet models.Wallet
	require.NoError(t, f.db.Where("user_id = ?", user.ID).First(&wallet).Error)
	require.NoError(t, f.db.Model(&models.Wallet{}).Where("id = ?", wallet.ID).Update("version", wallet.Version+1).Error)

	_, err := f.wallets.store(f.db, wallet, dec("99"))
	require.ErrorIs(t, err, ErrConflict)
	assertMoney(t, "10", f.balance(t, user.ID))
}

func TestWalletLedger_TopUp(t *testing.T) {
	f := newFixture(t)
	user := f.user(t, "amina", "10")

	wallet, err := f.wallets.TopUp(t.Context(), user.ID, dec("15.505"))
	require.NoError(t, err)
	assertMoney(t, "25.51", wallet.Balance)

	var txn models.Transaction
	require.NoError(t, f.db.Where("user_id = ? AND kind = ?", user.ID, models.TransactionTopUp).First(&txn).Error)
	assert.True(t, txn.Success)
	assertMoney(t, "15.51", txn.Amount)

	_, err = f.wallets.TopUp(t.Context(), user.ID, dec("0"))
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = f.wallets.TopUp(t.Context(), 999, dec("5"))
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = f.wallets.Balance(t.Context(), 999)
	require.ErrorIs(t, err, ErrWalletNotFound)
}
