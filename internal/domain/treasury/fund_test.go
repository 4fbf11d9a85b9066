package treasury

import (
	"testing"

	"github.com/bms/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBuildingFund(t *testing.T) {
	fund, err := NewBuildingFund(uuid.New())
	require.NoError(t, err)
	assert.True(t, fund.Balance.IsZero())

	_, err = NewBuildingFund(uuid.Nil)
	assert.Error(t, err)
}

func TestNewFundTransaction(t *testing.T) {
	buildingID := uuid.New()

	t.Run("income credits", func(t *testing.T) {
		tx, err := NewFundTransaction(buildingID, TransactionTypeIncome, DirectionCredit, valueobject.NewMoney(5000), "payment verified")
		require.NoError(t, err)
		assert.Equal(t, int64(5000), tx.BalanceEffect().Amount())
	})

	t.Run("expense debits", func(t *testing.T) {
		tx, err := NewFundTransaction(buildingID, TransactionTypeExpense, DirectionDebit, valueobject.NewMoney(3000), "elevator repair")
		require.NoError(t, err)
		assert.Equal(t, int64(-3000), tx.BalanceEffect().Amount())
	})

	t.Run("adjustment allows either direction", func(t *testing.T) {
		_, err := NewFundTransaction(buildingID, TransactionTypeAdjustment, DirectionCredit, valueobject.NewMoney(100), "opening balance")
		assert.NoError(t, err)
		_, err = NewFundTransaction(buildingID, TransactionTypeAdjustment, DirectionDebit, valueobject.NewMoney(100), "correction")
		assert.NoError(t, err)
	})

	t.Run("direction must match type", func(t *testing.T) {
		_, err := NewFundTransaction(buildingID, TransactionTypeIncome, DirectionDebit, valueobject.NewMoney(100), "")
		assert.Error(t, err)
		_, err = NewFundTransaction(buildingID, TransactionTypeExpense, DirectionCredit, valueobject.NewMoney(100), "")
		assert.Error(t, err)
	})

	t.Run("amount must be positive", func(t *testing.T) {
		_, err := NewFundTransaction(buildingID, TransactionTypeIncome, DirectionCredit, valueobject.Zero, "")
		assert.Error(t, err)
		_, err = NewFundTransaction(buildingID, TransactionTypeIncome, DirectionCredit, valueobject.NewMoney(-100), "")
		assert.Error(t, err)
	})

	t.Run("reference links", func(t *testing.T) {
		paymentID, userID := uuid.New(), uuid.New()
		tx, err := NewFundTransaction(buildingID, TransactionTypeIncome, DirectionCredit, valueobject.NewMoney(100), "")
		require.NoError(t, err)

		tx.WithPayment(paymentID).WithPostedBy(userID)
		assert.Equal(t, &paymentID, tx.PaymentID)
		assert.Equal(t, &userID, tx.PostedBy)
		assert.Nil(t, tx.ExpenseID)
	})
}
