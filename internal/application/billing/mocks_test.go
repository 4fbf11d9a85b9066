package billing

import (
	"context"

	"github.com/bms/backend/internal/domain/billing"
	"github.com/bms/backend/internal/domain/building"
	"github.com/bms/backend/internal/domain/shared/valueobject"
	"github.com/bms/backend/internal/domain/treasury"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Repositories
// =============================================================================

type MockChargeRepository struct {
	mock.Mock
}

func (m *MockChargeRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Charge, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Charge), args.Error(1)
}

func (m *MockChargeRepository) FindByIDForBuilding(ctx context.Context, buildingID, id uuid.UUID) (*billing.Charge, error) {
	args := m.Called(ctx, buildingID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Charge), args.Error(1)
}

func (m *MockChargeRepository) FindAllForBuilding(ctx context.Context, buildingID uuid.UUID, filter billing.ChargeFilter) ([]billing.Charge, error) {
	args := m.Called(ctx, buildingID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Charge), args.Error(1)
}

func (m *MockChargeRepository) CountForBuilding(ctx context.Context, buildingID uuid.UUID, filter billing.ChargeFilter) (int64, error) {
	args := m.Called(ctx, buildingID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockChargeRepository) FindByUnitItemID(ctx context.Context, itemID uuid.UUID) (*billing.Charge, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Charge), args.Error(1)
}

func (m *MockChargeRepository) Create(ctx context.Context, charge *billing.Charge) error {
	args := m.Called(ctx, charge)
	return args.Error(0)
}

func (m *MockChargeRepository) Save(ctx context.Context, charge *billing.Charge) error {
	args := m.Called(ctx, charge)
	return args.Error(0)
}

func (m *MockChargeRepository) SaveWithLock(ctx context.Context, charge *billing.Charge) error {
	args := m.Called(ctx, charge)
	return args.Error(0)
}

func (m *MockChargeRepository) SaveUnitItem(ctx context.Context, item *billing.ChargeUnitItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockChargeRepository) CreditUnitItem(ctx context.Context, itemID uuid.UUID, amount valueobject.Money) (*billing.ChargeUnitItem, error) {
	args := m.Called(ctx, itemID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.ChargeUnitItem), args.Error(1)
}

func (m *MockChargeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByIDForBuilding(ctx context.Context, buildingID, id uuid.UUID) (*billing.Payment, error) {
	args := m.Called(ctx, buildingID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindAllForBuilding(ctx context.Context, buildingID uuid.UUID, filter billing.PaymentFilter) ([]billing.Payment, error) {
	args := m.Called(ctx, buildingID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) CountForBuilding(ctx context.Context, buildingID uuid.UUID, filter billing.PaymentFilter) (int64, error) {
	args := m.Called(ctx, buildingID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) CountByCharge(ctx context.Context, chargeID uuid.UUID) (int64, error) {
	args := m.Called(ctx, chargeID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *billing.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) CreateBatch(ctx context.Context, payments []*billing.Payment) error {
	args := m.Called(ctx, payments)
	return args.Error(0)
}

func (m *MockPaymentRepository) ExistsByReference(ctx context.Context, referenceNumber string) (bool, error) {
	args := m.Called(ctx, referenceNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepository) MarkDecidedIfPending(ctx context.Context, id uuid.UUID, decision billing.PaymentDecision) (bool, error) {
	args := m.Called(ctx, id, decision)
	return args.Bool(0), args.Error(1)
}

type MockUnitRepository struct {
	mock.Mock
}

func (m *MockUnitRepository) FindByID(ctx context.Context, id uuid.UUID) (*building.Unit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*building.Unit), args.Error(1)
}

func (m *MockUnitRepository) FindByBuilding(ctx context.Context, buildingID uuid.UUID) ([]building.Unit, error) {
	args := m.Called(ctx, buildingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]building.Unit), args.Error(1)
}

func (m *MockUnitRepository) FindByIDs(ctx context.Context, buildingID uuid.UUID, ids []uuid.UUID) ([]building.Unit, error) {
	args := m.Called(ctx, buildingID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]building.Unit), args.Error(1)
}

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

// passthroughTxManager runs the unit of work without a real transaction
type passthroughTxManager struct{}

func (passthroughTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// recordingTxManager tracks whether a call happens inside Do, so tests can
// assert that multi-statement repository work is transactional
type recordingTxManager struct {
	inTx bool
}

func (m *recordingTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	m.inTx = true
	defer func() { m.inTx = false }()
	return fn(ctx)
}
