package persistence

import (
	"context"
	"testing"

	"github.com/bms/backend/internal/domain/billing"
	"github.com/bms/backend/internal/domain/shared"
	"github.com/bms/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestCharge(t *testing.T, buildingID uuid.UUID) *billing.Charge {
	t.Helper()
	charge, err := billing.NewCustomCharge(buildingID, "Monthly dues", []billing.CustomShare{
		{UnitID: uuid.New(), Amount: valueobject.NewMoney(60000)},
		{UnitID: uuid.New(), Amount: valueobject.NewMoney(40000)},
	}, nil)
	require.NoError(t, err)
	return charge
}

func TestGormChargeRepository_CreateAndFind(t *testing.T) {
	db := newSQLiteTestDB(t)
	repo := NewGormChargeRepository(db)
	ctx := context.Background()

	buildingID := uuid.New()

	t.Run("creates charge with unit items", func(t *testing.T) {
		charge := createTestCharge(t, buildingID)
		require.NoError(t, repo.Create(ctx, charge))

		found, err := repo.FindByID(ctx, charge.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "Monthly dues", found.Title)
		assert.Equal(t, billing.ChargeStatusDraft, found.Status)
		assert.Equal(t, int64(100000), found.TotalAmount.Amount())
		assert.Len(t, found.UnitItems, 2)
	})

	t.Run("returns nil for missing charge", func(t *testing.T) {
		found, err := repo.FindByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("building scope hides foreign charges", func(t *testing.T) {
		charge := createTestCharge(t, buildingID)
		require.NoError(t, repo.Create(ctx, charge))

		found, err := repo.FindByIDForBuilding(ctx, uuid.New(), charge.ID)
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestGormChargeRepository_FindByUnitItemID(t *testing.T) {
	db := newSQLiteTestDB(t)
	repo := NewGormChargeRepository(db)
	ctx := context.Background()

	charge := createTestCharge(t, uuid.New())
	require.NoError(t, repo.Create(ctx, charge))

	t.Run("resolves owning charge", func(t *testing.T) {
		found, err := repo.FindByUnitItemID(ctx, charge.UnitItems[1].ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, charge.ID, found.ID)
		assert.Len(t, found.UnitItems, 2)
	})

	t.Run("returns nil for unknown item", func(t *testing.T) {
		found, err := repo.FindByUnitItemID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestGormChargeRepository_SaveWithLock(t *testing.T) {
	db := newSQLiteTestDB(t)
	repo := NewGormChargeRepository(db)
	ctx := context.Background()

	t.Run("saves when version matches", func(t *testing.T) {
		charge := createTestCharge(t, uuid.New())
		require.NoError(t, repo.Create(ctx, charge))

		require.NoError(t, charge.TransitionTo(billing.ChargeStatusActive))
		require.NoError(t, repo.SaveWithLock(ctx, charge))

		found, err := repo.FindByID(ctx, charge.ID)
		require.NoError(t, err)
		assert.Equal(t, billing.ChargeStatusActive, found.Status)
		assert.Equal(t, 2, found.Version)
	})

	t.Run("rejects stale version", func(t *testing.T) {
		charge := createTestCharge(t, uuid.New())
		require.NoError(t, repo.Create(ctx, charge))

		stale, err := repo.FindByID(ctx, charge.ID)
		require.NoError(t, err)

		require.NoError(t, charge.TransitionTo(billing.ChargeStatusActive))
		require.NoError(t, repo.SaveWithLock(ctx, charge))

		require.NoError(t, stale.TransitionTo(billing.ChargeStatusCancelled))
		err = repo.SaveWithLock(ctx, stale)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "OPTIMISTIC_LOCK_ERROR", domainErr.Code)

		found, err := repo.FindByID(ctx, charge.ID)
		require.NoError(t, err)
		assert.Equal(t, billing.ChargeStatusActive, found.Status)
	})
}

func TestGormChargeRepository_SaveUnitItem(t *testing.T) {
	db := newSQLiteTestDB(t)
	repo := NewGormChargeRepository(db)
	ctx := context.Background()

	charge := createTestCharge(t, uuid.New())
	require.NoError(t, repo.Create(ctx, charge))

	item := &charge.UnitItems[0]
	item.ApplyPayment(valueobject.NewMoney(60000))
	require.NoError(t, repo.SaveUnitItem(ctx, item))

	found, err := repo.FindByUnitItemID(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	for _, got := range found.UnitItems {
		if got.ID == item.ID {
			assert.Equal(t, int64(60000), got.PaidAmount.Amount())
			assert.True(t, got.IsPaid)
		}
	}
}

func TestGormChargeRepository_CreditUnitItem(t *testing.T) {
	db := newSQLiteTestDB(t)
	repo := NewGormChargeRepository(db)
	ctx := context.Background()

	t.Run("credits are increments, not absolute writes", func(t *testing.T) {
		charge := createTestCharge(t, uuid.New())
		require.NoError(t, repo.Create(ctx, charge))
		itemID := charge.UnitItems[0].ID // assessed 60000

		item, err := repo.CreditUnitItem(ctx, itemID, valueobject.NewMoney(40000))
		require.NoError(t, err)
		assert.Equal(t, int64(40000), item.PaidAmount.Amount())
		assert.False(t, item.IsPaid)

		// A second credit computed from the same starting point must land on
		// top of the first, not replace it.
		item, err = repo.CreditUnitItem(ctx, itemID, valueobject.NewMoney(20000))
		require.NoError(t, err)
		assert.Equal(t, int64(60000), item.PaidAmount.Amount())
		assert.True(t, item.IsPaid)
	})

	t.Run("settlement includes late fees", func(t *testing.T) {
		charge := createTestCharge(t, uuid.New())
		require.NoError(t, repo.Create(ctx, charge))

		item := &charge.UnitItems[0]
		item.LateFee = valueobject.NewMoney(5000)
		require.NoError(t, repo.SaveUnitItem(ctx, item))

		credited, err := repo.CreditUnitItem(ctx, item.ID, valueobject.NewMoney(60000))
		require.NoError(t, err)
		assert.False(t, credited.IsPaid)

		credited, err = repo.CreditUnitItem(ctx, item.ID, valueobject.NewMoney(5000))
		require.NoError(t, err)
		assert.True(t, credited.IsPaid)
	})

	t.Run("missing item reports not found", func(t *testing.T) {
		_, err := repo.CreditUnitItem(ctx, uuid.New(), valueobject.NewMoney(100))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormChargeRepository_Delete(t *testing.T) {
	db := newSQLiteTestDB(t)
	repo := NewGormChargeRepository(db)
	ctx := context.Background()

	t.Run("removes charge and its items", func(t *testing.T) {
		charge := createTestCharge(t, uuid.New())
		require.NoError(t, repo.Create(ctx, charge))

		require.NoError(t, repo.Delete(ctx, charge.ID))

		found, err := repo.FindByID(ctx, charge.ID)
		require.NoError(t, err)
		assert.Nil(t, found)

		orphan, err := repo.FindByUnitItemID(ctx, charge.UnitItems[0].ID)
		require.NoError(t, err)
		assert.Nil(t, orphan)
	})

	t.Run("missing charge reports not found", func(t *testing.T) {
		assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), shared.ErrNotFound)
	})
}

func TestGormChargeRepository_FindAllForBuilding(t *testing.T) {
	db := newSQLiteTestDB(t)
	repo := NewGormChargeRepository(db)
	ctx := context.Background()

	buildingID := uuid.New()
	for i := 0; i < 3; i++ {
		charge := createTestCharge(t, buildingID)
		if i == 0 {
			require.NoError(t, charge.TransitionTo(billing.ChargeStatusActive))
		}
		require.NoError(t, repo.Create(ctx, charge))
	}

	t.Run("filters by status", func(t *testing.T) {
		active := billing.ChargeStatusActive
		charges, err := repo.FindAllForBuilding(ctx, buildingID, billing.ChargeFilter{Status: &active})
		require.NoError(t, err)
		assert.Len(t, charges, 1)

		count, err := repo.CountForBuilding(ctx, buildingID, billing.ChargeFilter{Status: &active})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("paginates", func(t *testing.T) {
		charges, err := repo.FindAllForBuilding(ctx, buildingID, billing.ChargeFilter{Page: 2, PageSize: 2})
		require.NoError(t, err)
		assert.Len(t, charges, 1)
	})

	t.Run("loads unit items for listed charges", func(t *testing.T) {
		charges, err := repo.FindAllForBuilding(ctx, buildingID, billing.ChargeFilter{})
		require.NoError(t, err)
		require.Len(t, charges, 3)
		for _, charge := range charges {
			assert.Len(t, charge.UnitItems, 2)
		}
	})
}
