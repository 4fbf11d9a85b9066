package persistence

import (
	"context"
	"testing"

	"github.com/bms/backend/internal/domain/shared/valueobject"
	"github.com/bms/backend/internal/domain/treasury"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormFundRepository_FindByBuilding(t *testing.T) {
	db := newSQLiteTestDB(t)
	repo := NewGormFundRepository(db)
	ctx := context.Background()

	t.Run("returns nil for building without fund", func(t *testing.T) {
		fund, err := repo.FindByBuilding(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, fund)
	})

	t.Run("finds created fund", func(t *testing.T) {
		buildingID := uuid.New()
		fund, err := treasury.NewBuildingFund(buildingID)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, fund))

		found, err := repo.FindByBuilding(ctx, buildingID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, fund.ID, found.ID)
		assert.Equal(t, int64(0), found.Balance.Amount())
	})
}

func TestGormFundRepository_ApplyDelta(t *testing.T) {
	db := newSQLiteTestDB(t)
	repo := NewGormFundRepository(db)
	ctx := context.Background()

	buildingID := uuid.New()
	fund, err := treasury.NewBuildingFund(buildingID)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, fund))

	t.Run("credits and debits accumulate", func(t *testing.T) {
		require.NoError(t, repo.ApplyDelta(ctx, buildingID, valueobject.NewMoney(50000)))
		require.NoError(t, repo.ApplyDelta(ctx, buildingID, valueobject.NewMoney(-20000)))

		found, err := repo.FindByBuilding(ctx, buildingID)
		require.NoError(t, err)
		assert.Equal(t, int64(30000), found.Balance.Amount())
	})

	t.Run("unknown building reports fund not found", func(t *testing.T) {
		err := repo.ApplyDelta(ctx, uuid.New(), valueobject.NewMoney(100))
		assert.ErrorIs(t, err, treasury.ErrFundNotFound)
	})
}

func TestGormFundRepository_DebitIfSufficient(t *testing.T) {
	db := newSQLiteTestDB(t)
	repo := NewGormFundRepository(db)
	ctx := context.Background()

	buildingID := uuid.New()
	fund, err := treasury.NewBuildingFund(buildingID)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, fund))
	require.NoError(t, repo.ApplyDelta(ctx, buildingID, valueobject.NewMoney(10000)))

	t.Run("debits when balance covers the amount", func(t *testing.T) {
		ok, err := repo.DebitIfSufficient(ctx, buildingID, valueobject.NewMoney(4000))
		require.NoError(t, err)
		assert.True(t, ok)

		found, err := repo.FindByBuilding(ctx, buildingID)
		require.NoError(t, err)
		assert.Equal(t, int64(6000), found.Balance.Amount())
	})

	t.Run("refuses overdraw and leaves balance untouched", func(t *testing.T) {
		ok, err := repo.DebitIfSufficient(ctx, buildingID, valueobject.NewMoney(6001))
		require.NoError(t, err)
		assert.False(t, ok)

		found, err := repo.FindByBuilding(ctx, buildingID)
		require.NoError(t, err)
		assert.Equal(t, int64(6000), found.Balance.Amount())
	})

	t.Run("allows debiting the exact balance", func(t *testing.T) {
		ok, err := repo.DebitIfSufficient(ctx, buildingID, valueobject.NewMoney(6000))
		require.NoError(t, err)
		assert.True(t, ok)

		found, err := repo.FindByBuilding(ctx, buildingID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), found.Balance.Amount())
	})
}

func TestGormFundRepository_Stats(t *testing.T) {
	db := newSQLiteTestDB(t)
	repo := NewGormFundRepository(db)
	ctx := context.Background()

	buildingID := uuid.New()
	fund, err := treasury.NewBuildingFund(buildingID)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, fund))

	post := func(txType treasury.TransactionType, direction treasury.TransactionDirection, amount int64) {
		t.Helper()
		tx, err := treasury.NewFundTransaction(buildingID, txType, direction, valueobject.NewMoney(amount), "seed")
		require.NoError(t, err)
		require.NoError(t, repo.CreateTransaction(ctx, tx))
		require.NoError(t, repo.ApplyDelta(ctx, buildingID, tx.BalanceEffect()))
	}

	post(treasury.TransactionTypeIncome, treasury.DirectionCredit, 50000)
	post(treasury.TransactionTypeIncome, treasury.DirectionCredit, 25000)
	post(treasury.TransactionTypeExpense, treasury.DirectionDebit, 30000)
	post(treasury.TransactionTypeAdjustment, treasury.DirectionCredit, 1000)
	post(treasury.TransactionTypeAdjustment, treasury.DirectionDebit, 500)

	stats, err := repo.Stats(ctx, buildingID)
	require.NoError(t, err)
	assert.Equal(t, int64(75000), stats.TotalIncome.Amount())
	assert.Equal(t, int64(30000), stats.TotalExpense.Amount())
	assert.Equal(t, int64(500), stats.TotalAdjustment.Amount())
	assert.Equal(t, int64(5), stats.TransactionCount)

	// Ledger effects and the stored balance must reconcile.
	assert.Equal(t, int64(45500), stats.Balance.Amount())
	assert.Equal(t,
		stats.TotalIncome.Amount()-stats.TotalExpense.Amount()+stats.TotalAdjustment.Amount(),
		stats.Balance.Amount())
}

func TestGormFundRepository_ListTransactions(t *testing.T) {
	db := newSQLiteTestDB(t)
	repo := NewGormFundRepository(db)
	ctx := context.Background()

	buildingID := uuid.New()
	for i := 0; i < 3; i++ {
		tx, err := treasury.NewFundTransaction(buildingID, treasury.TransactionTypeIncome, treasury.DirectionCredit, valueobject.NewMoney(int64(1000*(i+1))), "dues")
		require.NoError(t, err)
		require.NoError(t, repo.CreateTransaction(ctx, tx))
	}
	adjustment, err := treasury.NewFundTransaction(buildingID, treasury.TransactionTypeAdjustment, treasury.DirectionDebit, valueobject.NewMoney(700), "correction")
	require.NoError(t, err)
	require.NoError(t, repo.CreateTransaction(ctx, adjustment))

	t.Run("filters by type", func(t *testing.T) {
		incomeType := treasury.TransactionTypeIncome
		transactions, err := repo.ListTransactions(ctx, buildingID, treasury.TransactionFilter{Type: &incomeType})
		require.NoError(t, err)
		assert.Len(t, transactions, 3)

		count, err := repo.CountTransactions(ctx, buildingID, treasury.TransactionFilter{Type: &incomeType})
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
	})

	t.Run("paginates", func(t *testing.T) {
		transactions, err := repo.ListTransactions(ctx, buildingID, treasury.TransactionFilter{Page: 1, PageSize: 2})
		require.NoError(t, err)
		assert.Len(t, transactions, 2)
	})

	t.Run("orders by amount", func(t *testing.T) {
		transactions, err := repo.ListTransactions(ctx, buildingID, treasury.TransactionFilter{OrderBy: "amount", OrderDir: "desc"})
		require.NoError(t, err)
		require.Len(t, transactions, 4)
		assert.Equal(t, int64(3000), transactions[0].Amount.Amount())
	})

	t.Run("other buildings stay invisible", func(t *testing.T) {
		transactions, err := repo.ListTransactions(ctx, uuid.New(), treasury.TransactionFilter{})
		require.NoError(t, err)
		assert.Empty(t, transactions)
	})
}
