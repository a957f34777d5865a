package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kolo/internal/models"
)

func TestDebitCredit(t *testing.T) {
	ctx := context.Background()
	mem := NewInMemory()
	w := mem.CreateWallet(1, "NGN")

	_, err := mem.Credit(ctx, w.ID, 10_000)
	require.NoError(t, err)

	entry, err := mem.Debit(ctx, w.ID, 2_000)
	require.NoError(t, err)
	assert.Equal(t, int64(-2_000), entry.AmountChange)
	assert.Equal(t, int64(8_000), entry.ResultingBalance)

	balance, err := mem.Balance(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(8_000), balance)

	t.Run("insufficient funds", func(t *testing.T) {
		_, err := mem.Debit(ctx, w.ID, 9_000)
		assert.ErrorIs(t, err, ErrInsufficientFunds)

		balance, _ := mem.Balance(ctx, w.ID)
		assert.Equal(t, int64(8_000), balance, "failed debit must not move the balance")
	})

	t.Run("inactive wallet blocks debits, not credits", func(t *testing.T) {
		mem.SetWalletActive(w.ID, false)
		defer mem.SetWalletActive(w.ID, true)

		_, err := mem.Debit(ctx, w.ID, 100)
		assert.ErrorIs(t, err, ErrInactiveWallet)

		_, err = mem.Credit(ctx, w.ID, 100)
		assert.NoError(t, err)
	})

	t.Run("non-positive amounts", func(t *testing.T) {
		_, err := mem.Debit(ctx, w.ID, 0)
		assert.ErrorIs(t, err, ErrInvalidAmount)
		_, err = mem.Credit(ctx, w.ID, -5)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("unknown wallet", func(t *testing.T) {
		_, err := mem.Credit(ctx, 999, 100)
		assert.ErrorIs(t, err, ErrWalletNotFound)
	})
}

func TestBalanceEqualsSumOfEntries(t *testing.T) {
	ctx := context.Background()
	mem := NewInMemory()
	w := mem.CreateWallet(1, "NGN")

	amounts := []int64{10_000, -2_000, -50, 5_000, -1_200}
	for _, a := range amounts {
		var err error
		if a > 0 {
			_, err = mem.Credit(ctx, w.ID, a)
		} else {
			_, err = mem.Debit(ctx, w.ID, -a)
		}
		require.NoError(t, err)
	}

	var sum int64
	for _, e := range mem.Entries(w.ID) {
		sum += e.AmountChange
	}
	balance, err := mem.Balance(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, sum, balance)
}

func TestAttachWalletTransactionWriteOnce(t *testing.T) {
	ctx := context.Background()
	mem := NewInMemory()
	w := mem.CreateWallet(1, "NGN")
	mem.Credit(ctx, w.ID, 10_000)

	txn, err := mem.CreateTransaction(ctx, CreateTransactionParams{
		UserID: 1, WalletID: w.ID, Type: models.TransactionTypeSendMoney, Amount: 2_000,
	})
	require.NoError(t, err)

	first, err := mem.Debit(ctx, w.ID, 2_000)
	require.NoError(t, err)
	require.NoError(t, mem.AttachWalletTransaction(ctx, txn, first))
	require.NotNil(t, txn.WalletTransactionID)
	assert.Equal(t, first.ID, *txn.WalletTransactionID)

	// Re-attaching the same entry is an idempotent no-op.
	assert.NoError(t, mem.AttachWalletTransaction(ctx, txn, first))

	second, err := mem.Credit(ctx, w.ID, 2_000)
	require.NoError(t, err)
	err = mem.AttachWalletTransaction(ctx, txn, second)
	assert.ErrorIs(t, err, ErrImmutableField)
	assert.Equal(t, first.ID, *txn.WalletTransactionID)
}

func TestTransition(t *testing.T) {
	ctx := context.Background()
	mem := NewInMemory()
	w := mem.CreateWallet(1, "NGN")

	newTxn := func(t *testing.T) (*models.Transaction, *models.FeeTransaction) {
		txn, err := mem.CreateTransaction(ctx, CreateTransactionParams{
			UserID: 1, WalletID: w.ID, Type: models.TransactionTypeSendMoney, Amount: 2_000,
		})
		require.NoError(t, err)
		fee, err := mem.CreateFeeTransaction(ctx, txn, 50)
		require.NoError(t, err)
		return txn, fee
	}

	t.Run("fee leg moves in lockstep", func(t *testing.T) {
		txn, _ := newTxn(t)
		require.NoError(t, mem.Transition(ctx, txn, models.StatusSuccessful))
		assert.Equal(t, models.StatusSuccessful, txn.Status)

		fee, err := mem.FeeFor(ctx, txn)
		require.NoError(t, err)
		assert.Equal(t, models.StatusSuccessful, fee.Status)
	})

	t.Run("terminal status rejects further moves", func(t *testing.T) {
		txn, _ := newTxn(t)
		require.NoError(t, mem.Transition(ctx, txn, models.StatusReversed))
		err := mem.Transition(ctx, txn, models.StatusSuccessful)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		txn, _ := newTxn(t)
		require.NoError(t, mem.Transition(ctx, txn, models.StatusSuccessful))
		assert.NoError(t, mem.Transition(ctx, txn, models.StatusSuccessful))
	})

	t.Run("stale in-memory status is rejected", func(t *testing.T) {
		txn, _ := newTxn(t)
		stale := *txn
		require.NoError(t, mem.Transition(ctx, txn, models.StatusSuccessful))
		err := mem.Transition(ctx, &stale, models.StatusReversed)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestFindSettleable(t *testing.T) {
	ctx := context.Background()
	mem := NewInMemory()
	w := mem.CreateWallet(1, "NGN")

	txn, err := mem.CreateTransaction(ctx, CreateTransactionParams{
		UserID: 1, WalletID: w.ID, Type: models.TransactionTypeSendMoney,
		Amount: 2_000, ExternalReference: "ext-1",
	})
	require.NoError(t, err)

	found, err := mem.FindSettleable(ctx, "ext-1")
	require.NoError(t, err)
	assert.Equal(t, txn.ID, found.ID)

	require.NoError(t, mem.Transition(ctx, found, models.StatusSuccessful))

	// Settled transactions are invisible to FindSettleable but still count as
	// seen references.
	_, err = mem.FindSettleable(ctx, "ext-1")
	assert.ErrorIs(t, err, ErrTransactionNotFound)

	seen, err := mem.HasTransaction(ctx, "ext-1")
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = mem.HasTransaction(ctx, "ext-2")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestInTransactionRollback(t *testing.T) {
	ctx := context.Background()
	mem := NewInMemory()
	w := mem.CreateWallet(1, "NGN")
	mem.Credit(ctx, w.ID, 10_000)

	boom := errors.New("boom")
	err := mem.InTransaction(ctx, func(l Ledger) error {
		if _, err := l.Debit(ctx, w.ID, 4_000); err != nil {
			return err
		}
		if _, err := l.CreateTransaction(ctx, CreateTransactionParams{
			UserID: 1, WalletID: w.ID, Type: models.TransactionTypeSendMoney, Amount: 4_000,
		}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	balance, _ := mem.Balance(ctx, w.ID)
	assert.Equal(t, int64(10_000), balance, "failed unit of work must leave no trace")
	assert.Len(t, mem.Entries(w.ID), 1)
	assert.Empty(t, mem.Transactions())
}

func TestIsDomainInvariant(t *testing.T) {
	assert.True(t, IsDomainInvariant(ErrInsufficientFunds))
	assert.True(t, IsDomainInvariant(ErrInvalidTransition))
	assert.True(t, IsDomainInvariant(ErrImmutableField))
	assert.False(t, IsDomainInvariant(errors.New("connection refused")))
	assert.False(t, IsDomainInvariant(nil))
}
