package treasury

import (
	"context"
	"fmt"

	"github.com/bms/backend/internal/domain/building"
	"github.com/bms/backend/internal/domain/shared"
	"github.com/bms/backend/internal/domain/shared/valueobject"
	"github.com/bms/backend/internal/domain/treasury"
	"github.com/google/uuid"
)

// FundService exposes the building fund ledger: balance, history, stats and
// manual adjustments. Income and expense effects arrive through the payment
// and expense services, never directly.
type FundService struct {
	fundRepo     treasury.FundRepository
	buildingRepo building.BuildingRepository
	txManager    shared.TransactionManager
}

// NewFundService creates a new FundService
func NewFundService(fundRepo treasury.FundRepository, buildingRepo building.BuildingRepository, txManager shared.TransactionManager) *FundService {
	return &FundService{fundRepo: fundRepo, buildingRepo: buildingRepo, txManager: txManager}
}

// GetFund returns the building's fund, creating an empty one on first access.
// Creation requires the building to exist; lazy provisioning must not
// materialize fund rows for arbitrary IDs.
func (s *FundService) GetFund(ctx context.Context, buildingID uuid.UUID) (*treasury.BuildingFund, error) {
	fund, err := s.fundRepo.FindByBuilding(ctx, buildingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get fund: %w", err)
	}
	if fund != nil {
		return fund, nil
	}

	exists, err := s.buildingRepo.Exists(ctx, buildingID)
	if err != nil {
		return nil, fmt.Errorf("failed to check building: %w", err)
	}
	if !exists {
		return nil, shared.NewDomainError("BUILDING_NOT_FOUND", "Building not found")
	}

	fund, err = treasury.NewBuildingFund(buildingID)
	if err != nil {
		return nil, err
	}
	if err := s.fundRepo.Create(ctx, fund); err != nil {
		return nil, fmt.Errorf("failed to create fund: %w", err)
	}
	return fund, nil
}

// GetStats aggregates the building's ledger into totals per transaction type
func (s *FundService) GetStats(ctx context.Context, buildingID uuid.UUID) (*treasury.FundStats, error) {
	stats, err := s.fundRepo.Stats(ctx, buildingID)
	if err != nil {
		return nil, fmt.Errorf("failed to get fund stats: %w", err)
	}
	return stats, nil
}

// ListTransactions returns a paginated slice of the building's ledger
func (s *FundService) ListTransactions(ctx context.Context, buildingID uuid.UUID, filter treasury.TransactionFilter) (*shared.Paginated[*treasury.FundTransaction], error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	txs, err := s.fundRepo.ListTransactions(ctx, buildingID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list fund transactions: %w", err)
	}
	total, err := s.fundRepo.CountTransactions(ctx, buildingID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count fund transactions: %w", err)
	}

	result := shared.NewPaginated(txs, total, filter.Page, filter.PageSize)
	return &result, nil
}

// PostAdjustmentRequest represents a manual balance correction
type PostAdjustmentRequest struct {
	BuildingID  uuid.UUID
	Direction   treasury.TransactionDirection
	Amount      int64
	Description string
	PostedBy    uuid.UUID
}

// PostAdjustment appends an ADJUSTMENT transaction and moves the balance in
// one transaction. Debit adjustments may not overdraw the fund.
func (s *FundService) PostAdjustment(ctx context.Context, req PostAdjustmentRequest) (*treasury.FundTransaction, error) {
	if req.Description == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Adjustment requires a description")
	}

	amount := valueobject.NewMoney(req.Amount)
	fundTx, err := treasury.NewFundTransaction(req.BuildingID, treasury.TransactionTypeAdjustment, req.Direction, amount, req.Description)
	if err != nil {
		return nil, err
	}
	fundTx.WithPostedBy(req.PostedBy)

	if _, err := s.GetFund(ctx, req.BuildingID); err != nil {
		return nil, err
	}

	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		if err := s.fundRepo.CreateTransaction(ctx, fundTx); err != nil {
			return fmt.Errorf("failed to record adjustment: %w", err)
		}
		if req.Direction == treasury.DirectionDebit {
			ok, err := s.fundRepo.DebitIfSufficient(ctx, req.BuildingID, amount)
			if err != nil {
				return fmt.Errorf("failed to debit fund: %w", err)
			}
			if !ok {
				return treasury.ErrInsufficientFundBalance
			}
			return nil
		}
		return s.fundRepo.ApplyDelta(ctx, req.BuildingID, amount)
	})
	if err != nil {
		return nil, err
	}
	return fundTx, nil
}
