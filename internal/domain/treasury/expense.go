package treasury

import (
	"time"

	"github.com/bms/backend/internal/domain/shared"
	"github.com/bms/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// ExpenseStatus represents the approval state of an expense
type ExpenseStatus string

const (
	ExpenseStatusPending  ExpenseStatus = "PENDING"
	ExpenseStatusApproved ExpenseStatus = "APPROVED"
	ExpenseStatusRejected ExpenseStatus = "REJECTED"
)

// IsValid checks if the status is a valid ExpenseStatus
func (s ExpenseStatus) IsValid() bool {
	return s == ExpenseStatusPending || s == ExpenseStatusApproved || s == ExpenseStatusRejected
}

// String returns the string representation of ExpenseStatus
func (s ExpenseStatus) String() string {
	return string(s)
}

// IsDecided reports whether the status is terminal
func (s ExpenseStatus) IsDecided() bool {
	return s == ExpenseStatusApproved || s == ExpenseStatusRejected
}

var (
	// ErrExpenseAlreadyDecided indicates a concurrent decision won the race
	ErrExpenseAlreadyDecided = shared.NewDomainError("ALREADY_PROCESSED", "Expense has already been decided")
	// ErrInsufficientFundBalance indicates the fund cannot cover the expense
	ErrInsufficientFundBalance = shared.NewDomainError("INSUFFICIENT_FUND_BALANCE", "Building fund balance is insufficient")
)

// ExpenseCategory classifies what the money was spent on
type ExpenseCategory string

const (
	ExpenseCategoryMaintenance ExpenseCategory = "MAINTENANCE"
	ExpenseCategoryUtilities   ExpenseCategory = "UTILITIES"
	ExpenseCategoryCleaning    ExpenseCategory = "CLEANING"
	ExpenseCategorySecurity    ExpenseCategory = "SECURITY"
	ExpenseCategoryRepairs     ExpenseCategory = "REPAIRS"
	ExpenseCategoryInsurance   ExpenseCategory = "INSURANCE"
	ExpenseCategoryOther       ExpenseCategory = "OTHER"
)

// String returns the string representation of ExpenseCategory
func (c ExpenseCategory) String() string {
	return string(c)
}

// IsValid checks if the category is valid
func (c ExpenseCategory) IsValid() bool {
	switch c {
	case ExpenseCategoryMaintenance, ExpenseCategoryUtilities, ExpenseCategoryCleaning,
		ExpenseCategorySecurity, ExpenseCategoryRepairs, ExpenseCategoryInsurance, ExpenseCategoryOther:
		return true
	}
	return false
}

// Expense is a spending request against a building's fund. It affects the
// fund only on approval, and a decided expense is immutable.
type Expense struct {
	shared.BuildingAggregateRoot
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	Category     ExpenseCategory   `json:"category"`
	Amount       valueobject.Money `json:"amount"`
	Vendor       string            `json:"vendor,omitempty"`
	InvoiceRef   string            `json:"invoice_ref,omitempty"`
	ExpenseDate  time.Time         `json:"expense_date"`
	Status       ExpenseStatus     `json:"status"`
	DecidedBy    *uuid.UUID        `json:"decided_by,omitempty"`
	DecidedAt    *time.Time        `json:"decided_at,omitempty"`
	DecisionNote string            `json:"decision_note,omitempty"`
}

// NewExpense creates a pending expense request
func NewExpense(
	buildingID uuid.UUID,
	title string,
	category ExpenseCategory,
	amount valueobject.Money,
	expenseDate time.Time,
) (*Expense, error) {
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Expense title cannot be empty")
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Expense category is not valid")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Expense amount must be positive")
	}
	if expenseDate.IsZero() {
		expenseDate = time.Now()
	}
	return &Expense{
		BuildingAggregateRoot: shared.NewBuildingAggregateRoot(buildingID),
		Title:                 title,
		Category:              category,
		Amount:                amount,
		ExpenseDate:           expenseDate,
		Status:                ExpenseStatusPending,
	}, nil
}

// IsPending reports whether the expense awaits a decision
func (e *Expense) IsPending() bool {
	return e.Status == ExpenseStatusPending
}

// CanEdit reports whether the expense can still be modified
func (e *Expense) CanEdit() bool {
	return e.Status == ExpenseStatusPending
}

// Update modifies a pending expense
func (e *Expense) Update(title, description string, category ExpenseCategory, amount valueobject.Money, vendor, invoiceRef string, expenseDate time.Time) error {
	if !e.CanEdit() {
		return ErrExpenseAlreadyDecided
	}
	if title == "" {
		return shared.NewDomainError("INVALID_TITLE", "Expense title cannot be empty")
	}
	if !category.IsValid() {
		return shared.NewDomainError("INVALID_CATEGORY", "Expense category is not valid")
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Expense amount must be positive")
	}
	e.Title = title
	e.Description = description
	e.Category = category
	e.Amount = amount
	e.Vendor = vendor
	e.InvoiceRef = invoiceRef
	if !expenseDate.IsZero() {
		e.ExpenseDate = expenseDate
	}
	e.Touch()
	return nil
}

// EnsureDeletable returns an error unless the expense is still pending
func (e *Expense) EnsureDeletable() error {
	if !e.IsPending() {
		return ErrExpenseAlreadyDecided
	}
	return nil
}

// MarkApproved applies the approval decision to the in-memory aggregate.
// The persistence layer enforces the same check as a conditional write so
// concurrent deciders cannot both win.
func (e *Expense) MarkApproved(decidedBy uuid.UUID, note string) error {
	if !e.IsPending() {
		return ErrExpenseAlreadyDecided
	}
	now := time.Now()
	e.Status = ExpenseStatusApproved
	e.DecidedBy = &decidedBy
	e.DecidedAt = &now
	e.DecisionNote = note
	e.Touch()
	return nil
}

// MarkRejected applies the rejection decision to the in-memory aggregate
func (e *Expense) MarkRejected(decidedBy uuid.UUID, note string) error {
	if !e.IsPending() {
		return ErrExpenseAlreadyDecided
	}
	now := time.Now()
	e.Status = ExpenseStatusRejected
	e.DecidedBy = &decidedBy
	e.DecidedAt = &now
	e.DecisionNote = note
	e.Touch()
	return nil
}
