package treasury

import (
	"time"

	"github.com/bms/backend/internal/domain/shared"
	"github.com/bms/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// TransactionType classifies a fund transaction
type TransactionType string

const (
	TransactionTypeIncome     TransactionType = "INCOME"
	TransactionTypeExpense    TransactionType = "EXPENSE"
	TransactionTypeAdjustment TransactionType = "ADJUSTMENT"
)

// IsValid checks if the type is a valid TransactionType
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense || t == TransactionTypeAdjustment
}

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// TransactionDirection records which way a transaction moves the balance.
// Amounts are stored unsigned; direction carries the sign explicitly so the
// balance effect of any stored transaction is always recoverable.
type TransactionDirection string

const (
	DirectionCredit TransactionDirection = "CREDIT"
	DirectionDebit  TransactionDirection = "DEBIT"
)

// IsValid checks if the direction is valid
func (d TransactionDirection) IsValid() bool {
	return d == DirectionCredit || d == DirectionDebit
}

// String returns the string representation of TransactionDirection
func (d TransactionDirection) String() string {
	return string(d)
}

// ErrFundNotFound indicates a building without a fund, which is a
// referential-integrity violation upstream: every building owns exactly one.
var ErrFundNotFound = shared.NewDomainError("FUND_NOT_FOUND", "Building fund not found")

// BuildingFund is a building's running cash balance. The balance equals the
// sum of signed effects of every fund transaction ever posted for the
// building; it is only ever adjusted atomically with a transaction append.
type BuildingFund struct {
	shared.BaseAggregateRoot
	BuildingID uuid.UUID         `json:"building_id"`
	Balance    valueobject.Money `json:"balance"`
}

// NewBuildingFund creates an empty fund for a building
func NewBuildingFund(buildingID uuid.UUID) (*BuildingFund, error) {
	if buildingID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BUILDING", "Building ID cannot be empty")
	}
	return &BuildingFund{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BuildingID:        buildingID,
	}, nil
}

// FundTransaction is one immutable entry in a building's cash ledger
type FundTransaction struct {
	shared.BaseEntity
	BuildingID  uuid.UUID            `json:"building_id"`
	Type        TransactionType      `json:"type"`
	Direction   TransactionDirection `json:"direction"`
	Amount      valueobject.Money    `json:"amount"`
	Description string               `json:"description"`
	PaymentID   *uuid.UUID           `json:"payment_id,omitempty"`
	ExpenseID   *uuid.UUID           `json:"expense_id,omitempty"`
	PostedBy    *uuid.UUID           `json:"posted_by,omitempty"`
}

// NewFundTransaction creates a ledger entry. Amount must be positive; the
// direction carries the sign of the balance effect.
func NewFundTransaction(
	buildingID uuid.UUID,
	txType TransactionType,
	direction TransactionDirection,
	amount valueobject.Money,
	description string,
) (*FundTransaction, error) {
	if buildingID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BUILDING", "Building ID cannot be empty")
	}
	if !txType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_TYPE", "Fund transaction type is not valid")
	}
	if !direction.IsValid() {
		return nil, shared.NewDomainError("INVALID_DIRECTION", "Fund transaction direction is not valid")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Fund transaction amount must be positive")
	}
	if txType == TransactionTypeIncome && direction != DirectionCredit {
		return nil, shared.NewDomainError("INVALID_DIRECTION", "Income transactions must credit the fund")
	}
	if txType == TransactionTypeExpense && direction != DirectionDebit {
		return nil, shared.NewDomainError("INVALID_DIRECTION", "Expense transactions must debit the fund")
	}
	return &FundTransaction{
		BaseEntity:  shared.NewBaseEntity(),
		BuildingID:  buildingID,
		Type:        txType,
		Direction:   direction,
		Amount:      amount,
		Description: description,
	}, nil
}

// WithPayment links the transaction to its originating payment
func (t *FundTransaction) WithPayment(paymentID uuid.UUID) *FundTransaction {
	t.PaymentID = &paymentID
	return t
}

// WithExpense links the transaction to its originating expense
func (t *FundTransaction) WithExpense(expenseID uuid.UUID) *FundTransaction {
	t.ExpenseID = &expenseID
	return t
}

// WithPostedBy records the acting user
func (t *FundTransaction) WithPostedBy(userID uuid.UUID) *FundTransaction {
	t.PostedBy = &userID
	return t
}

// BalanceEffect returns the signed amount this transaction applies to the balance
func (t *FundTransaction) BalanceEffect() valueobject.Money {
	if t.Direction == DirectionDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}

// FundStats is the read-only aggregation over a building's ledger
type FundStats struct {
	Balance          valueobject.Money `json:"balance"`
	TotalIncome      valueobject.Money `json:"total_income"`
	TotalExpense     valueobject.Money `json:"total_expense"`
	TotalAdjustment  valueobject.Money `json:"total_adjustment"`
	TransactionCount int64             `json:"transaction_count"`
}

// TransactionFilter defines filtering options for ledger queries
type TransactionFilter struct {
	Type     *TransactionType
	FromDate *time.Time
	ToDate   *time.Time
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
}
