package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/bms/backend/internal/domain/billing"
	"github.com/bms/backend/internal/domain/shared"
	"github.com/bms/backend/internal/domain/shared/valueobject"
	"github.com/bms/backend/internal/domain/treasury"
	"github.com/google/uuid"
)

// PaymentService handles payment recording and verification. Verification is
// the only path through which money enters the building fund.
type PaymentService struct {
	paymentRepo billing.PaymentRepository
	chargeRepo  billing.ChargeRepository
	fundRepo    treasury.FundRepository
	txManager   shared.TransactionManager
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	paymentRepo billing.PaymentRepository,
	chargeRepo billing.ChargeRepository,
	fundRepo treasury.FundRepository,
	txManager shared.TransactionManager,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		chargeRepo:  chargeRepo,
		fundRepo:    fundRepo,
		txManager:   txManager,
	}
}

// CreatePaymentRequest represents a request to record a payment
type CreatePaymentRequest struct {
	BuildingID          uuid.UUID
	UnitID              uuid.UUID
	ChargeID            uuid.UUID
	Amount              int64
	Method              billing.PaymentMethod
	BankReferenceNumber string
	CreatedBy           *uuid.UUID
}

// CreatePayment records a pending payment against a charge's unit item
func (s *PaymentService) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*billing.Payment, error) {
	payment, err := s.buildPayment(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}
	return payment, nil
}

// CreateBulkPayment records several payments in one all-or-nothing
// transaction. Any invalid entry fails the whole batch.
func (s *PaymentService) CreateBulkPayment(ctx context.Context, requests []CreatePaymentRequest) ([]*billing.Payment, error) {
	if len(requests) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Bulk payment requires at least one entry")
	}

	payments := make([]*billing.Payment, 0, len(requests))
	seenRefs := make(map[string]bool, len(requests))
	for _, req := range requests {
		payment, err := s.buildPayment(ctx, req)
		if err != nil {
			return nil, err
		}
		if seenRefs[payment.ReferenceNumber] {
			return nil, shared.NewDomainError("DUPLICATE_REFERENCE", fmt.Sprintf("Reference number %s appears more than once in the batch", payment.ReferenceNumber))
		}
		seenRefs[payment.ReferenceNumber] = true
		payments = append(payments, payment)
	}

	if err := s.txManager.Do(ctx, func(ctx context.Context) error {
		return s.paymentRepo.CreateBatch(ctx, payments)
	}); err != nil {
		return nil, fmt.Errorf("failed to create bulk payment: %w", err)
	}
	return payments, nil
}

// GetPayment loads a payment scoped to the building
func (s *PaymentService) GetPayment(ctx context.Context, buildingID, paymentID uuid.UUID) (*billing.Payment, error) {
	payment, err := s.paymentRepo.FindByIDForBuilding(ctx, buildingID, paymentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	if payment == nil {
		return nil, shared.NewDomainError("PAYMENT_NOT_FOUND", "Payment not found")
	}
	return payment, nil
}

// ListPayments returns a paginated list of the building's payments
func (s *PaymentService) ListPayments(ctx context.Context, buildingID uuid.UUID, filter billing.PaymentFilter) (*shared.Paginated[billing.Payment], error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	payments, err := s.paymentRepo.FindAllForBuilding(ctx, buildingID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	total, err := s.paymentRepo.CountForBuilding(ctx, buildingID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count payments: %w", err)
	}

	result := shared.NewPaginated(payments, total, filter.Page, filter.PageSize)
	return &result, nil
}

// VerifyPayment flips a pending payment to VERIFIED and applies its full
// financial effect in one transaction: the unit item is credited, the charge
// status is re-projected, and the building fund receives an INCOME credit.
// The PENDING check runs as a conditional write so concurrent verifiers and
// rejecters cannot both apply an effect.
func (s *PaymentService) VerifyPayment(ctx context.Context, buildingID, paymentID, verifiedBy uuid.UUID, note string) (*billing.Payment, error) {
	payment, err := s.GetPayment(ctx, buildingID, paymentID)
	if err != nil {
		return nil, err
	}

	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		won, err := s.paymentRepo.MarkDecidedIfPending(ctx, payment.ID, billing.PaymentDecision{
			Status:    billing.PaymentStatusVerified,
			DecidedBy: verifiedBy,
			DecidedAt: time.Now(),
			Note:      note,
		})
		if err != nil {
			return fmt.Errorf("failed to decide payment: %w", err)
		}
		if !won {
			return billing.ErrPaymentAlreadyProcessed
		}

		charge, item, err := s.resolveUnitItem(ctx, payment)
		if err != nil {
			return err
		}
		if charge.Status == billing.ChargeStatusCancelled {
			return shared.NewDomainError("INVALID_STATE", "Cannot verify a payment on a cancelled charge")
		}

		// The credit is a db-side increment, so a concurrent verification of
		// another payment against the same item cannot be overwritten.
		if _, err := s.chargeRepo.CreditUnitItem(ctx, item.ID, payment.Amount); err != nil {
			return fmt.Errorf("failed to credit unit item: %w", err)
		}

		// Re-project from the post-credit rows, not the earlier snapshot.
		charge, err = s.chargeRepo.FindByID(ctx, payment.ChargeID)
		if err != nil {
			return fmt.Errorf("failed to reload charge: %w", err)
		}
		if charge == nil {
			return shared.NewDomainError("CHARGE_NOT_FOUND", "Charge not found")
		}
		if charge.RecalculatePaymentStatus() {
			if err := s.chargeRepo.Save(ctx, charge); err != nil {
				return fmt.Errorf("failed to save charge status: %w", err)
			}
		}

		fundTx, err := treasury.NewFundTransaction(
			payment.BuildingID,
			treasury.TransactionTypeIncome,
			treasury.DirectionCredit,
			payment.Amount,
			fmt.Sprintf("Payment %s for charge %s", payment.ReferenceNumber, charge.Title),
		)
		if err != nil {
			return err
		}
		fundTx.WithPayment(payment.ID).WithPostedBy(verifiedBy)
		if err := s.fundRepo.CreateTransaction(ctx, fundTx); err != nil {
			return fmt.Errorf("failed to record fund transaction: %w", err)
		}
		if err := s.fundRepo.ApplyDelta(ctx, payment.BuildingID, payment.Amount); err != nil {
			return fmt.Errorf("failed to credit fund: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	payment.MarkVerified(verifiedBy, note)
	return payment, nil
}

// RejectPayment flips a pending payment to REJECTED through the same
// conditional write. A rejected payment has no financial effect.
func (s *PaymentService) RejectPayment(ctx context.Context, buildingID, paymentID, rejectedBy uuid.UUID, note string) (*billing.Payment, error) {
	payment, err := s.GetPayment(ctx, buildingID, paymentID)
	if err != nil {
		return nil, err
	}

	won, err := s.paymentRepo.MarkDecidedIfPending(ctx, payment.ID, billing.PaymentDecision{
		Status:    billing.PaymentStatusRejected,
		DecidedBy: rejectedBy,
		DecidedAt: time.Now(),
		Note:      note,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decide payment: %w", err)
	}
	if !won {
		return nil, billing.ErrPaymentAlreadyProcessed
	}

	payment.MarkRejected(rejectedBy, note)
	return payment, nil
}

// buildPayment validates a creation request against the charge state and
// constructs the pending payment aggregate
func (s *PaymentService) buildPayment(ctx context.Context, req CreatePaymentRequest) (*billing.Payment, error) {
	charge, err := s.chargeRepo.FindByIDForBuilding(ctx, req.BuildingID, req.ChargeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load charge: %w", err)
	}
	if charge == nil {
		return nil, shared.NewDomainError("CHARGE_NOT_FOUND", "Charge not found")
	}
	if charge.Status == billing.ChargeStatusDraft || charge.Status == billing.ChargeStatusCancelled {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot record payments on a %s charge", charge.Status))
	}

	var item *billing.ChargeUnitItem
	for i := range charge.UnitItems {
		if charge.UnitItems[i].UnitID == req.UnitID {
			item = &charge.UnitItems[i]
			break
		}
	}
	if item == nil {
		return nil, shared.NewDomainError("UNIT_NOT_ASSESSED", "Unit has no assessment on this charge")
	}
	if item.IsPaid {
		return nil, shared.NewDomainError("ALREADY_PAID", "Unit item is already settled")
	}

	amount := valueobject.NewMoney(req.Amount)
	if amount.GreaterThan(item.Remaining()) {
		return nil, shared.NewDomainError("AMOUNT_EXCEEDS_REMAINING",
			fmt.Sprintf("Payment of %s exceeds remaining %s", amount, item.Remaining()))
	}

	if req.BankReferenceNumber != "" {
		exists, err := s.paymentRepo.ExistsByReference(ctx, req.BankReferenceNumber)
		if err != nil {
			return nil, fmt.Errorf("failed to check reference number: %w", err)
		}
		if exists {
			return nil, shared.NewDomainError("DUPLICATE_REFERENCE", "A payment with this reference number already exists")
		}
	}

	itemID := item.ID
	payment, err := billing.NewPayment(req.BuildingID, req.UnitID, req.ChargeID, &itemID, amount, req.Method, req.BankReferenceNumber)
	if err != nil {
		return nil, err
	}
	if req.CreatedBy != nil {
		payment.SetCreatedBy(*req.CreatedBy)
	}
	return payment, nil
}

// resolveUnitItem loads the charge owning the payment's unit item and
// returns both. Payments recorded before item linkage fall back to matching
// by unit.
func (s *PaymentService) resolveUnitItem(ctx context.Context, payment *billing.Payment) (*billing.Charge, *billing.ChargeUnitItem, error) {
	charge, err := s.chargeRepo.FindByID(ctx, payment.ChargeID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load charge: %w", err)
	}
	if charge == nil {
		return nil, nil, shared.NewDomainError("CHARGE_NOT_FOUND", "Charge not found")
	}

	if payment.ChargeUnitItemID != nil {
		if item := charge.UnitItemByID(*payment.ChargeUnitItemID); item != nil {
			return charge, item, nil
		}
	}
	for i := range charge.UnitItems {
		if charge.UnitItems[i].UnitID == payment.UnitID {
			return charge, &charge.UnitItems[i], nil
		}
	}
	return nil, nil, shared.NewDomainError("UNIT_NOT_ASSESSED", "Unit has no assessment on this charge")
}
