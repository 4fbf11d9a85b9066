package persistence

import (
	"testing"

	"github.com/bms/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newSQLiteTestDB opens an in-memory database with the billing and treasury
// schema migrated. Conditional-write semantics (RowsAffected on guarded
// UPDATEs) behave the same as on PostgreSQL, which is what these tests
// exercise.
func newSQLiteTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.ChargeModel{},
		&models.ChargeUnitItemModel{},
		&models.ChargeItemModel{},
		&models.PaymentModel{},
		&models.BuildingFundModel{},
		&models.FundTransactionModel{},
		&models.ExpenseModel{},
		&models.BuildingModel{},
		&models.UnitModel{},
	)
	require.NoError(t, err)

	return db
}
