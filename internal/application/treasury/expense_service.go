package treasury

import (
	"context"
	"fmt"
	"time"

	"github.com/bms/backend/internal/domain/shared"
	"github.com/bms/backend/internal/domain/shared/valueobject"
	"github.com/bms/backend/internal/domain/treasury"
	"github.com/google/uuid"
)

// ExpenseService handles expense requests and their approval workflow
type ExpenseService struct {
	expenseRepo treasury.ExpenseRepository
	fundRepo    treasury.FundRepository
	txManager   shared.TransactionManager
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(
	expenseRepo treasury.ExpenseRepository,
	fundRepo treasury.FundRepository,
	txManager shared.TransactionManager,
) *ExpenseService {
	return &ExpenseService{
		expenseRepo: expenseRepo,
		fundRepo:    fundRepo,
		txManager:   txManager,
	}
}

// CreateExpenseRequest represents a request to file an expense
type CreateExpenseRequest struct {
	BuildingID  uuid.UUID
	Title       string
	Description string
	Category    treasury.ExpenseCategory
	Amount      int64
	Vendor      string
	InvoiceRef  string
	ExpenseDate time.Time
	CreatedBy   *uuid.UUID
}

// CreateExpense records a pending expense request. The fund is untouched
// until approval.
func (s *ExpenseService) CreateExpense(ctx context.Context, req CreateExpenseRequest) (*treasury.Expense, error) {
	expense, err := treasury.NewExpense(req.BuildingID, req.Title, req.Category, valueobject.NewMoney(req.Amount), req.ExpenseDate)
	if err != nil {
		return nil, err
	}
	expense.Description = req.Description
	expense.Vendor = req.Vendor
	expense.InvoiceRef = req.InvoiceRef
	if req.CreatedBy != nil {
		expense.SetCreatedBy(*req.CreatedBy)
	}

	if err := s.expenseRepo.Create(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}
	return expense, nil
}

// GetExpense loads an expense scoped to the building
func (s *ExpenseService) GetExpense(ctx context.Context, buildingID, expenseID uuid.UUID) (*treasury.Expense, error) {
	expense, err := s.expenseRepo.FindByIDForBuilding(ctx, buildingID, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	if expense == nil {
		return nil, shared.NewDomainError("EXPENSE_NOT_FOUND", "Expense not found")
	}
	return expense, nil
}

// ListExpenses returns a paginated list of the building's expenses
func (s *ExpenseService) ListExpenses(ctx context.Context, buildingID uuid.UUID, filter treasury.ExpenseFilter) (*shared.Paginated[*treasury.Expense], error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	expenses, err := s.expenseRepo.FindAllForBuilding(ctx, buildingID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	total, err := s.expenseRepo.CountForBuilding(ctx, buildingID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count expenses: %w", err)
	}

	result := shared.NewPaginated(expenses, total, filter.Page, filter.PageSize)
	return &result, nil
}

// UpdateExpenseRequest represents a request to modify a pending expense
type UpdateExpenseRequest struct {
	Title       string
	Description string
	Category    treasury.ExpenseCategory
	Amount      int64
	Vendor      string
	InvoiceRef  string
	ExpenseDate time.Time
}

// UpdateExpense modifies a PENDING expense
func (s *ExpenseService) UpdateExpense(ctx context.Context, buildingID, expenseID uuid.UUID, req UpdateExpenseRequest) (*treasury.Expense, error) {
	expense, err := s.GetExpense(ctx, buildingID, expenseID)
	if err != nil {
		return nil, err
	}
	if err := expense.Update(req.Title, req.Description, req.Category, valueobject.NewMoney(req.Amount), req.Vendor, req.InvoiceRef, req.ExpenseDate); err != nil {
		return nil, err
	}
	if err := s.expenseRepo.Save(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}
	return expense, nil
}

// DeleteExpense removes a PENDING expense
func (s *ExpenseService) DeleteExpense(ctx context.Context, buildingID, expenseID uuid.UUID) error {
	expense, err := s.GetExpense(ctx, buildingID, expenseID)
	if err != nil {
		return err
	}
	if err := expense.EnsureDeletable(); err != nil {
		return err
	}
	if err := s.expenseRepo.Delete(ctx, expenseID); err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return nil
}

// ApproveExpense decides a pending expense and debits the fund in one
// transaction. The decision is a conditional PENDING->APPROVED write, so a
// concurrent decider loses cleanly; the debit is conditional on sufficient
// balance, so approval of an unaffordable expense rolls back entirely.
func (s *ExpenseService) ApproveExpense(ctx context.Context, buildingID, expenseID, approvedBy uuid.UUID, note string) (*treasury.Expense, error) {
	expense, err := s.GetExpense(ctx, buildingID, expenseID)
	if err != nil {
		return nil, err
	}

	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		won, err := s.expenseRepo.MarkDecidedIfPending(ctx, expense.ID, treasury.ExpenseDecision{
			Status:    treasury.ExpenseStatusApproved,
			DecidedBy: approvedBy,
			DecidedAt: time.Now(),
			Note:      note,
		})
		if err != nil {
			return fmt.Errorf("failed to decide expense: %w", err)
		}
		if !won {
			return treasury.ErrExpenseAlreadyDecided
		}

		ok, err := s.fundRepo.DebitIfSufficient(ctx, expense.BuildingID, expense.Amount)
		if err != nil {
			return fmt.Errorf("failed to debit fund: %w", err)
		}
		if !ok {
			// A refused debit means either no fund row or not enough balance;
			// the two are different failures to the caller.
			fund, ferr := s.fundRepo.FindByBuilding(ctx, expense.BuildingID)
			if ferr != nil {
				return fmt.Errorf("failed to load fund: %w", ferr)
			}
			if fund == nil {
				return treasury.ErrFundNotFound
			}
			return treasury.ErrInsufficientFundBalance
		}

		fundTx, err := treasury.NewFundTransaction(
			expense.BuildingID,
			treasury.TransactionTypeExpense,
			treasury.DirectionDebit,
			expense.Amount,
			fmt.Sprintf("Expense approved: %s", expense.Title),
		)
		if err != nil {
			return err
		}
		fundTx.WithExpense(expense.ID).WithPostedBy(approvedBy)
		if err := s.fundRepo.CreateTransaction(ctx, fundTx); err != nil {
			return fmt.Errorf("failed to record fund transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := expense.MarkApproved(approvedBy, note); err != nil {
		return nil, err
	}
	return expense, nil
}

// RejectExpense decides a pending expense without touching the fund
func (s *ExpenseService) RejectExpense(ctx context.Context, buildingID, expenseID, rejectedBy uuid.UUID, note string) (*treasury.Expense, error) {
	expense, err := s.GetExpense(ctx, buildingID, expenseID)
	if err != nil {
		return nil, err
	}

	won, err := s.expenseRepo.MarkDecidedIfPending(ctx, expense.ID, treasury.ExpenseDecision{
		Status:    treasury.ExpenseStatusRejected,
		DecidedBy: rejectedBy,
		DecidedAt: time.Now(),
		Note:      note,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decide expense: %w", err)
	}
	if !won {
		return nil, treasury.ErrExpenseAlreadyDecided
	}

	if err := expense.MarkRejected(rejectedBy, note); err != nil {
		return nil, err
	}
	return expense, nil
}
