package treasury

import (
	"context"

	"github.com/bms/backend/internal/domain/building"
	"github.com/bms/backend/internal/domain/shared/valueobject"
	"github.com/bms/backend/internal/domain/treasury"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Repositories
// =============================================================================

type MockFundRepository struct {
	mock.Mock
}

func (m *MockFundRepository) FindByBuilding(ctx context.Context, buildingID uuid.UUID) (*treasury.BuildingFund, error) {
	args := m.Called(ctx, buildingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*treasury.BuildingFund), args.Error(1)
}

func (m *MockFundRepository) Create(ctx context.Context, fund *treasury.BuildingFund) error {
	args := m.Called(ctx, fund)
	return args.Error(0)
}

func (m *MockFundRepository) ApplyDelta(ctx context.Context, buildingID uuid.UUID, delta valueobject.Money) error {
	args := m.Called(ctx, buildingID, delta)
	return args.Error(0)
}

func (m *MockFundRepository) DebitIfSufficient(ctx context.Context, buildingID uuid.UUID, amount valueobject.Money) (bool, error) {
	args := m.Called(ctx, buildingID, amount)
	return args.Bool(0), args.Error(1)
}

func (m *MockFundRepository) CreateTransaction(ctx context.Context, tx *treasury.FundTransaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockFundRepository) ListTransactions(ctx context.Context, buildingID uuid.UUID, filter treasury.TransactionFilter) ([]*treasury.FundTransaction, error) {
	args := m.Called(ctx, buildingID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*treasury.FundTransaction), args.Error(1)
}

func (m *MockFundRepository) CountTransactions(ctx context.Context, buildingID uuid.UUID, filter treasury.TransactionFilter) (int64, error) {
	args := m.Called(ctx, buildingID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFundRepository) Stats(ctx context.Context, buildingID uuid.UUID) (*treasury.FundStats, error) {
	args := m.Called(ctx, buildingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*treasury.FundStats), args.Error(1)
}

type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*treasury.Expense, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*treasury.Expense), args.Error(1)
}

func (m *MockExpenseRepository) FindByIDForBuilding(ctx context.Context, buildingID, id uuid.UUID) (*treasury.Expense, error) {
	args := m.Called(ctx, buildingID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*treasury.Expense), args.Error(1)
}

func (m *MockExpenseRepository) FindAllForBuilding(ctx context.Context, buildingID uuid.UUID, filter treasury.ExpenseFilter) ([]*treasury.Expense, error) {
	args := m.Called(ctx, buildingID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*treasury.Expense), args.Error(1)
}

func (m *MockExpenseRepository) CountForBuilding(ctx context.Context, buildingID uuid.UUID, filter treasury.ExpenseFilter) (int64, error) {
	args := m.Called(ctx, buildingID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockExpenseRepository) Create(ctx context.Context, expense *treasury.Expense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}

func (m *MockExpenseRepository) Save(ctx context.Context, expense *treasury.Expense) error {
	args := m.Called(ctx, expense)
	return args.Error(0)
}

func (m *MockExpenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockExpenseRepository) MarkDecidedIfPending(ctx context.Context, id uuid.UUID, decision treasury.ExpenseDecision) (bool, error) {
	args := m.Called(ctx, id, decision)
	return args.Bool(0), args.Error(1)
}

type MockBuildingRepository struct {
	mock.Mock
}

func (m *MockBuildingRepository) FindByID(ctx context.Context, id uuid.UUID) (*building.Building, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*building.Building), args.Error(1)
}

func (m *MockBuildingRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// passthroughTxManager runs the unit of work without a real transaction
type passthroughTxManager struct{}

func (passthroughTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
