package treasury

import (
	"context"
	"testing"
	"time"

	"github.com/bms/backend/internal/domain/shared/valueobject"
	"github.com/bms/backend/internal/domain/treasury"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newExpenseService(expenseRepo *MockExpenseRepository, fundRepo *MockFundRepository) *ExpenseService {
	return NewExpenseService(expenseRepo, fundRepo, passthroughTxManager{})
}

func pendingExpense(t *testing.T, buildingID uuid.UUID, amount int64) *treasury.Expense {
	t.Helper()
	e, err := treasury.NewExpense(buildingID, "Boiler service", treasury.ExpenseCategoryMaintenance, valueobject.NewMoney(amount), time.Now())
	require.NoError(t, err)
	return e
}

func TestCreateExpense(t *testing.T) {
	buildingID := uuid.New()

	t.Run("records pending expense", func(t *testing.T) {
		expenseRepo := new(MockExpenseRepository)
		service := newExpenseService(expenseRepo, new(MockFundRepository))

		expenseRepo.On("Create", mock.Anything, mock.AnythingOfType("*treasury.Expense")).Return(nil)

		expense, err := service.CreateExpense(context.Background(), CreateExpenseRequest{
			BuildingID: buildingID,
			Title:      "Boiler service",
			Category:   treasury.ExpenseCategoryMaintenance,
			Amount:     25000,
			Vendor:     "HeatCo",
		})
		require.NoError(t, err)
		assert.Equal(t, treasury.ExpenseStatusPending, expense.Status)
		assert.Equal(t, "HeatCo", expense.Vendor)
	})

	t.Run("invalid amount", func(t *testing.T) {
		service := newExpenseService(new(MockExpenseRepository), new(MockFundRepository))
		_, err := service.CreateExpense(context.Background(), CreateExpenseRequest{
			BuildingID: buildingID, Title: "x", Category: treasury.ExpenseCategoryOther, Amount: 0,
		})
		assert.Error(t, err)
	})
}

func TestApproveExpense(t *testing.T) {
	buildingID, approver := uuid.New(), uuid.New()

	t.Run("debits fund and appends ledger entry", func(t *testing.T) {
		expenseRepo := new(MockExpenseRepository)
		fundRepo := new(MockFundRepository)
		service := newExpenseService(expenseRepo, fundRepo)

		expense := pendingExpense(t, buildingID, 25000)
		expenseRepo.On("FindByIDForBuilding", mock.Anything, buildingID, expense.ID).Return(expense, nil)
		expenseRepo.On("MarkDecidedIfPending", mock.Anything, expense.ID, mock.MatchedBy(func(d treasury.ExpenseDecision) bool {
			return d.Status == treasury.ExpenseStatusApproved && d.DecidedBy == approver
		})).Return(true, nil)
		fundRepo.On("DebitIfSufficient", mock.Anything, buildingID, valueobject.NewMoney(25000)).Return(true, nil)
		fundRepo.On("CreateTransaction", mock.Anything, mock.MatchedBy(func(tx *treasury.FundTransaction) bool {
			return tx.Type == treasury.TransactionTypeExpense &&
				tx.Direction == treasury.DirectionDebit &&
				tx.Amount.Amount() == 25000 &&
				tx.ExpenseID != nil && *tx.ExpenseID == expense.ID
		})).Return(nil)

		approved, err := service.ApproveExpense(context.Background(), buildingID, expense.ID, approver, "ok")
		require.NoError(t, err)
		assert.Equal(t, treasury.ExpenseStatusApproved, approved.Status)
		fundRepo.AssertExpectations(t)
	})

	t.Run("insufficient balance rolls back", func(t *testing.T) {
		expenseRepo := new(MockExpenseRepository)
		fundRepo := new(MockFundRepository)
		service := newExpenseService(expenseRepo, fundRepo)

		expense := pendingExpense(t, buildingID, 25000)
		fund, err := treasury.NewBuildingFund(buildingID)
		require.NoError(t, err)
		expenseRepo.On("FindByIDForBuilding", mock.Anything, buildingID, expense.ID).Return(expense, nil)
		expenseRepo.On("MarkDecidedIfPending", mock.Anything, expense.ID, mock.Anything).Return(true, nil)
		fundRepo.On("DebitIfSufficient", mock.Anything, buildingID, valueobject.NewMoney(25000)).Return(false, nil)
		fundRepo.On("FindByBuilding", mock.Anything, buildingID).Return(fund, nil)

		_, err = service.ApproveExpense(context.Background(), buildingID, expense.ID, approver, "")
		assert.ErrorIs(t, err, treasury.ErrInsufficientFundBalance)
		fundRepo.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything)
	})

	t.Run("missing fund is not an insufficient balance", func(t *testing.T) {
		expenseRepo := new(MockExpenseRepository)
		fundRepo := new(MockFundRepository)
		service := newExpenseService(expenseRepo, fundRepo)

		expense := pendingExpense(t, buildingID, 25000)
		expenseRepo.On("FindByIDForBuilding", mock.Anything, buildingID, expense.ID).Return(expense, nil)
		expenseRepo.On("MarkDecidedIfPending", mock.Anything, expense.ID, mock.Anything).Return(true, nil)
		fundRepo.On("DebitIfSufficient", mock.Anything, buildingID, valueobject.NewMoney(25000)).Return(false, nil)
		fundRepo.On("FindByBuilding", mock.Anything, buildingID).Return(nil, nil)

		_, err := service.ApproveExpense(context.Background(), buildingID, expense.ID, approver, "")
		assert.ErrorIs(t, err, treasury.ErrFundNotFound)
		fundRepo.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything)
	})

	t.Run("lost decision race", func(t *testing.T) {
		expenseRepo := new(MockExpenseRepository)
		fundRepo := new(MockFundRepository)
		service := newExpenseService(expenseRepo, fundRepo)

		expense := pendingExpense(t, buildingID, 25000)
		expenseRepo.On("FindByIDForBuilding", mock.Anything, buildingID, expense.ID).Return(expense, nil)
		expenseRepo.On("MarkDecidedIfPending", mock.Anything, expense.ID, mock.Anything).Return(false, nil)

		_, err := service.ApproveExpense(context.Background(), buildingID, expense.ID, approver, "")
		assert.ErrorIs(t, err, treasury.ErrExpenseAlreadyDecided)
		fundRepo.AssertNotCalled(t, "DebitIfSufficient", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRejectExpense(t *testing.T) {
	buildingID, approver := uuid.New(), uuid.New()

	t.Run("fund untouched", func(t *testing.T) {
		expenseRepo := new(MockExpenseRepository)
		fundRepo := new(MockFundRepository)
		service := newExpenseService(expenseRepo, fundRepo)

		expense := pendingExpense(t, buildingID, 5000)
		expenseRepo.On("FindByIDForBuilding", mock.Anything, buildingID, expense.ID).Return(expense, nil)
		expenseRepo.On("MarkDecidedIfPending", mock.Anything, expense.ID, mock.MatchedBy(func(d treasury.ExpenseDecision) bool {
			return d.Status == treasury.ExpenseStatusRejected
		})).Return(true, nil)

		rejected, err := service.RejectExpense(context.Background(), buildingID, expense.ID, approver, "no invoice")
		require.NoError(t, err)
		assert.Equal(t, treasury.ExpenseStatusRejected, rejected.Status)
		fundRepo.AssertNotCalled(t, "DebitIfSufficient", mock.Anything, mock.Anything, mock.Anything)
		fundRepo.AssertNotCalled(t, "CreateTransaction", mock.Anything, mock.Anything)
	})
}

func TestUpdateAndDeleteExpense(t *testing.T) {
	buildingID := uuid.New()

	t.Run("update pending", func(t *testing.T) {
		expenseRepo := new(MockExpenseRepository)
		service := newExpenseService(expenseRepo, new(MockFundRepository))

		expense := pendingExpense(t, buildingID, 5000)
		expenseRepo.On("FindByIDForBuilding", mock.Anything, buildingID, expense.ID).Return(expense, nil)
		expenseRepo.On("Save", mock.Anything, expense).Return(nil)

		updated, err := service.UpdateExpense(context.Background(), buildingID, expense.ID, UpdateExpenseRequest{
			Title: "Boiler service and inspection", Category: treasury.ExpenseCategoryMaintenance, Amount: 7000,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(7000), updated.Amount.Amount())
	})

	t.Run("decided expense cannot be updated", func(t *testing.T) {
		expenseRepo := new(MockExpenseRepository)
		service := newExpenseService(expenseRepo, new(MockFundRepository))

		expense := pendingExpense(t, buildingID, 5000)
		require.NoError(t, expense.MarkApproved(uuid.New(), ""))
		expenseRepo.On("FindByIDForBuilding", mock.Anything, buildingID, expense.ID).Return(expense, nil)

		_, err := service.UpdateExpense(context.Background(), buildingID, expense.ID, UpdateExpenseRequest{
			Title: "x", Category: treasury.ExpenseCategoryOther, Amount: 100,
		})
		assert.ErrorIs(t, err, treasury.ErrExpenseAlreadyDecided)
		expenseRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("delete pending only", func(t *testing.T) {
		expenseRepo := new(MockExpenseRepository)
		service := newExpenseService(expenseRepo, new(MockFundRepository))

		expense := pendingExpense(t, buildingID, 5000)
		expenseRepo.On("FindByIDForBuilding", mock.Anything, buildingID, expense.ID).Return(expense, nil)
		expenseRepo.On("Delete", mock.Anything, expense.ID).Return(nil)

		assert.NoError(t, service.DeleteExpense(context.Background(), buildingID, expense.ID))

		decided := pendingExpense(t, buildingID, 5000)
		require.NoError(t, decided.MarkRejected(uuid.New(), ""))
		expenseRepo.On("FindByIDForBuilding", mock.Anything, buildingID, decided.ID).Return(decided, nil)
		assert.Error(t, service.DeleteExpense(context.Background(), buildingID, decided.ID))
	})
}
