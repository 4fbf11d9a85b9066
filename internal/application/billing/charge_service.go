package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/bms/backend/internal/domain/billing"
	"github.com/bms/backend/internal/domain/building"
	"github.com/bms/backend/internal/domain/shared"
	"github.com/bms/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// ChargeService handles charge lifecycle use cases
type ChargeService struct {
	chargeRepo  billing.ChargeRepository
	paymentRepo billing.PaymentRepository
	unitRepo    building.UnitRepository
	txManager   shared.TransactionManager
}

// NewChargeService creates a new ChargeService
func NewChargeService(
	chargeRepo billing.ChargeRepository,
	paymentRepo billing.PaymentRepository,
	unitRepo building.UnitRepository,
	txManager shared.TransactionManager,
) *ChargeService {
	return &ChargeService{
		chargeRepo:  chargeRepo,
		paymentRepo: paymentRepo,
		unitRepo:    unitRepo,
		txManager:   txManager,
	}
}

// CreateChargeRequest represents a request to create a distributed charge
type CreateChargeRequest struct {
	BuildingID  uuid.UUID
	Title       string
	Description string
	TotalAmount int64
	Method      billing.DistributionMethod
	DueDate     *time.Time
	// UnitIDs optionally restricts distribution to a subset of the
	// building's units; empty means all units.
	UnitIDs   []uuid.UUID
	Items     []ChargeItemInput
	CreatedBy *uuid.UUID
}

// ChargeItemInput is an informational breakdown line supplied at creation
type ChargeItemInput struct {
	Label  string
	Amount int64
}

// CreateCustomChargeRequest represents a request to create a charge with
// caller-supplied per-unit amounts. The total is derived from the shares.
type CreateCustomChargeRequest struct {
	BuildingID  uuid.UUID
	Title       string
	Description string
	DueDate     *time.Time
	Shares      []CustomShareInput
	Items       []ChargeItemInput
	CreatedBy   *uuid.UUID
}

// CustomShareInput is one unit's caller-supplied assessment
type CustomShareInput struct {
	UnitID uuid.UUID
	Amount int64
	Note   string
}

// CreateCharge distributes a total across units and persists the charge with
// its unit items in one transaction
func (s *ChargeService) CreateCharge(ctx context.Context, req CreateChargeRequest) (*billing.Charge, error) {
	units, err := s.resolveUnits(ctx, req.BuildingID, req.UnitIDs)
	if err != nil {
		return nil, err
	}

	charge, err := billing.NewCharge(req.BuildingID, req.Title, valueobject.NewMoney(req.TotalAmount), req.Method, req.DueDate, units)
	if err != nil {
		return nil, err
	}
	charge.Description = req.Description
	if req.CreatedBy != nil {
		charge.SetCreatedBy(*req.CreatedBy)
	}
	for _, item := range req.Items {
		if err := charge.AddItem(item.Label, valueobject.NewMoney(item.Amount)); err != nil {
			return nil, err
		}
	}

	if err := s.txManager.Do(ctx, func(ctx context.Context) error {
		return s.chargeRepo.Create(ctx, charge)
	}); err != nil {
		return nil, fmt.Errorf("failed to create charge: %w", err)
	}
	return charge, nil
}

// CreateCustomCharge persists a charge whose per-unit amounts were supplied
// by the caller. Every referenced unit must belong to the building.
func (s *ChargeService) CreateCustomCharge(ctx context.Context, req CreateCustomChargeRequest) (*billing.Charge, error) {
	unitIDs := make([]uuid.UUID, len(req.Shares))
	for i, share := range req.Shares {
		unitIDs[i] = share.UnitID
	}
	if _, err := s.resolveUnits(ctx, req.BuildingID, unitIDs); err != nil {
		return nil, err
	}

	shares := make([]billing.CustomShare, len(req.Shares))
	for i, share := range req.Shares {
		shares[i] = billing.CustomShare{
			UnitID: share.UnitID,
			Amount: valueobject.NewMoney(share.Amount),
			Note:   share.Note,
		}
	}

	charge, err := billing.NewCustomCharge(req.BuildingID, req.Title, shares, req.DueDate)
	if err != nil {
		return nil, err
	}
	charge.Description = req.Description
	if req.CreatedBy != nil {
		charge.SetCreatedBy(*req.CreatedBy)
	}
	for _, item := range req.Items {
		if err := charge.AddItem(item.Label, valueobject.NewMoney(item.Amount)); err != nil {
			return nil, err
		}
	}

	if err := s.txManager.Do(ctx, func(ctx context.Context) error {
		return s.chargeRepo.Create(ctx, charge)
	}); err != nil {
		return nil, fmt.Errorf("failed to create custom charge: %w", err)
	}
	return charge, nil
}

// GetCharge loads a charge with its unit items, scoped to the building
func (s *ChargeService) GetCharge(ctx context.Context, buildingID, chargeID uuid.UUID) (*billing.Charge, error) {
	charge, err := s.chargeRepo.FindByIDForBuilding(ctx, buildingID, chargeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get charge: %w", err)
	}
	if charge == nil {
		return nil, shared.NewDomainError("CHARGE_NOT_FOUND", "Charge not found")
	}
	return charge, nil
}

// ListCharges returns a paginated list of the building's charges
func (s *ChargeService) ListCharges(ctx context.Context, buildingID uuid.UUID, filter billing.ChargeFilter) (*shared.Paginated[billing.Charge], error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	charges, err := s.chargeRepo.FindAllForBuilding(ctx, buildingID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list charges: %w", err)
	}
	total, err := s.chargeRepo.CountForBuilding(ctx, buildingID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count charges: %w", err)
	}

	result := shared.NewPaginated(charges, total, filter.Page, filter.PageSize)
	return &result, nil
}

// UpdateChargeRequest represents a request to update a draft charge
type UpdateChargeRequest struct {
	Title       string
	Description string
	DueDate     *time.Time
}

// UpdateCharge modifies header fields of a DRAFT charge
func (s *ChargeService) UpdateCharge(ctx context.Context, buildingID, chargeID uuid.UUID, req UpdateChargeRequest) (*billing.Charge, error) {
	charge, err := s.GetCharge(ctx, buildingID, chargeID)
	if err != nil {
		return nil, err
	}
	if err := charge.Update(req.Title, req.Description, req.DueDate); err != nil {
		return nil, err
	}
	if err := s.chargeRepo.SaveWithLock(ctx, charge); err != nil {
		return nil, fmt.Errorf("failed to update charge: %w", err)
	}
	return charge, nil
}

// UpdateChargeStatus applies a user-initiated status transition
func (s *ChargeService) UpdateChargeStatus(ctx context.Context, buildingID, chargeID uuid.UUID, target billing.ChargeStatus) (*billing.Charge, error) {
	charge, err := s.GetCharge(ctx, buildingID, chargeID)
	if err != nil {
		return nil, err
	}
	if err := charge.TransitionTo(target); err != nil {
		return nil, err
	}
	if err := s.chargeRepo.SaveWithLock(ctx, charge); err != nil {
		return nil, fmt.Errorf("failed to update charge status: %w", err)
	}
	return charge, nil
}

// DeleteCharge removes a DRAFT charge that has no payments
func (s *ChargeService) DeleteCharge(ctx context.Context, buildingID, chargeID uuid.UUID) error {
	charge, err := s.GetCharge(ctx, buildingID, chargeID)
	if err != nil {
		return err
	}
	paymentCount, err := s.paymentRepo.CountByCharge(ctx, chargeID)
	if err != nil {
		return fmt.Errorf("failed to count charge payments: %w", err)
	}
	if err := charge.EnsureDeletable(paymentCount); err != nil {
		return err
	}
	// The repository deletes unit items, breakdown lines and the charge as
	// separate statements; the transaction keeps a mid-sequence failure from
	// leaving a stripped charge behind.
	if err := s.txManager.Do(ctx, func(ctx context.Context) error {
		return s.chargeRepo.Delete(ctx, chargeID)
	}); err != nil {
		return fmt.Errorf("failed to delete charge: %w", err)
	}
	return nil
}

// ApplyLateFees assesses a late fee on every unpaid unit item of an overdue
// charge. Returns the number of items assessed.
func (s *ChargeService) ApplyLateFees(ctx context.Context, buildingID, chargeID uuid.UUID, fee int64, now time.Time) (int, error) {
	charge, err := s.GetCharge(ctx, buildingID, chargeID)
	if err != nil {
		return 0, err
	}
	if !charge.IsOverdue(now) {
		return 0, shared.NewDomainError("NOT_OVERDUE", "Charge is not overdue")
	}

	assessed := 0
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		for i := range charge.UnitItems {
			item := &charge.UnitItems[i]
			if item.IsPaid {
				continue
			}
			if err := item.AssessLateFee(valueobject.NewMoney(fee)); err != nil {
				return err
			}
			if err := s.chargeRepo.SaveUnitItem(ctx, item); err != nil {
				return err
			}
			assessed++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to apply late fees: %w", err)
	}
	return assessed, nil
}

// resolveUnits loads the distribution targets and enforces that every
// requested unit belongs to the building
func (s *ChargeService) resolveUnits(ctx context.Context, buildingID uuid.UUID, unitIDs []uuid.UUID) ([]building.Unit, error) {
	if len(unitIDs) == 0 {
		units, err := s.unitRepo.FindByBuilding(ctx, buildingID)
		if err != nil {
			return nil, fmt.Errorf("failed to load building units: %w", err)
		}
		if len(units) == 0 {
			return nil, billing.ErrDistributionImpossible
		}
		return units, nil
	}

	units, err := s.unitRepo.FindByIDs(ctx, buildingID, unitIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load units: %w", err)
	}
	if len(units) != len(dedupe(unitIDs)) {
		return nil, shared.NewDomainError("UNIT_NOT_FOUND", "One or more units do not belong to the building")
	}
	return units, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
