package treasury

import (
	"context"
	"time"

	"github.com/bms/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// FundRepository manages building funds and their transaction ledgers.
// ApplyDelta and DebitIfSufficient are the only ways the stored balance
// moves; both are expected to run inside the same transaction as the
// matching CreateTransaction call.
type FundRepository interface {
	FindByBuilding(ctx context.Context, buildingID uuid.UUID) (*BuildingFund, error)
	Create(ctx context.Context, fund *BuildingFund) error

	// ApplyDelta unconditionally adds delta (which may be negative) to the
	// building's stored balance.
	ApplyDelta(ctx context.Context, buildingID uuid.UUID, delta valueobject.Money) error

	// DebitIfSufficient subtracts amount from the balance only when the
	// current balance covers it. Returns false when it does not.
	DebitIfSufficient(ctx context.Context, buildingID uuid.UUID, amount valueobject.Money) (bool, error)

	CreateTransaction(ctx context.Context, tx *FundTransaction) error
	ListTransactions(ctx context.Context, buildingID uuid.UUID, filter TransactionFilter) ([]*FundTransaction, error)
	CountTransactions(ctx context.Context, buildingID uuid.UUID, filter TransactionFilter) (int64, error)
	Stats(ctx context.Context, buildingID uuid.UUID) (*FundStats, error)
}

// ExpenseFilter defines filtering options for expense queries
type ExpenseFilter struct {
	Status   *ExpenseStatus
	Category *ExpenseCategory
	FromDate *time.Time
	ToDate   *time.Time
	Search   string
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
}

// ExpenseDecision carries the outcome applied by MarkDecidedIfPending
type ExpenseDecision struct {
	Status    ExpenseStatus
	DecidedBy uuid.UUID
	DecidedAt time.Time
	Note      string
}

// ExpenseRepository defines persistence for expenses
type ExpenseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Expense, error)
	FindByIDForBuilding(ctx context.Context, buildingID, id uuid.UUID) (*Expense, error)
	FindAllForBuilding(ctx context.Context, buildingID uuid.UUID, filter ExpenseFilter) ([]*Expense, error)
	CountForBuilding(ctx context.Context, buildingID uuid.UUID, filter ExpenseFilter) (int64, error)
	Create(ctx context.Context, expense *Expense) error
	Save(ctx context.Context, expense *Expense) error
	Delete(ctx context.Context, id uuid.UUID) error

	// MarkDecidedIfPending flips a PENDING expense to the decided status in a
	// single conditional write. Returns false when the expense was already
	// decided, so exactly one caller ever wins.
	MarkDecidedIfPending(ctx context.Context, id uuid.UUID, decision ExpenseDecision) (bool, error)
}
