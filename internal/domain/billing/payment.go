package billing

import (
	"fmt"
	"time"

	"github.com/bms/backend/internal/domain/shared"
	"github.com/bms/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// PaymentStatus represents the status of a payment
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusVerified PaymentStatus = "VERIFIED"
	PaymentStatusRejected PaymentStatus = "REJECTED"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	return s == PaymentStatusPending || s == PaymentStatusVerified || s == PaymentStatusRejected
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// IsDecided returns true once the payment has been verified or rejected
func (s PaymentStatus) IsDecided() bool {
	return s == PaymentStatusVerified || s == PaymentStatusRejected
}

// PaymentMethod represents how a payment was made
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodOnline       PaymentMethod = "ONLINE"
)

// IsValid checks if the method is a valid PaymentMethod
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCard, PaymentMethodOnline:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// ErrPaymentAlreadyProcessed is returned when a concurrent verifier already
// decided the payment; the conditional PENDING->decided write affected zero rows.
var ErrPaymentAlreadyProcessed = shared.NewDomainError("ALREADY_PROCESSED", "Payment has already been verified or rejected")

// Payment represents money submitted by a unit against a charge. A payment
// has no financial effect until it is verified.
type Payment struct {
	shared.BuildingAggregateRoot
	UnitID           uuid.UUID         `json:"unit_id"`
	ChargeID         uuid.UUID         `json:"charge_id"`
	ChargeUnitItemID *uuid.UUID        `json:"charge_unit_item_id,omitempty"`
	Amount           valueobject.Money `json:"amount"`
	Method           PaymentMethod     `json:"method"`
	Status           PaymentStatus     `json:"status"`
	ReferenceNumber  string            `json:"reference_number"`
	VerifiedBy       *uuid.UUID        `json:"verified_by,omitempty"`
	VerifiedAt       *time.Time        `json:"verified_at,omitempty"`
	VerificationNote string            `json:"verification_note,omitempty"`
}

// NewPayment creates a pending payment. The reference number is the supplied
// bank reference, or a generated token for cash and other methods.
func NewPayment(
	buildingID, unitID, chargeID uuid.UUID,
	chargeUnitItemID *uuid.UUID,
	amount valueobject.Money,
	method PaymentMethod,
	bankReferenceNumber string,
) (*Payment, error) {
	if unitID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit ID cannot be empty")
	}
	if chargeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CHARGE", "Charge ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", fmt.Sprintf("Unknown payment method %s", method))
	}

	reference := bankReferenceNumber
	if reference == "" {
		reference = GenerateReferenceNumber(method)
	}

	return &Payment{
		BuildingAggregateRoot: shared.NewBuildingAggregateRoot(buildingID),
		UnitID:                unitID,
		ChargeID:              chargeID,
		ChargeUnitItemID:      chargeUnitItemID,
		Amount:                amount,
		Method:                method,
		Status:                PaymentStatusPending,
		ReferenceNumber:       reference,
	}, nil
}

// GenerateReferenceNumber produces a reference token for payments submitted
// without a bank reference: CASH-<ts> for cash, PAY-<ts> otherwise.
func GenerateReferenceNumber(method PaymentMethod) string {
	prefix := "PAY"
	if method == PaymentMethodCash {
		prefix = "CASH"
	}
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// MarkVerified records the verification outcome on the aggregate. The
// authoritative PENDING->VERIFIED flip happens through the repository's
// conditional write; this only mirrors it in memory afterwards.
func (p *Payment) MarkVerified(verifiedBy uuid.UUID, note string) {
	now := time.Now()
	p.Status = PaymentStatusVerified
	p.VerifiedBy = &verifiedBy
	p.VerifiedAt = &now
	p.VerificationNote = note
	p.Touch()
	p.IncrementVersion()
}

// MarkRejected records the rejection outcome on the aggregate
func (p *Payment) MarkRejected(rejectedBy uuid.UUID, note string) {
	now := time.Now()
	p.Status = PaymentStatusRejected
	p.VerifiedBy = &rejectedBy
	p.VerifiedAt = &now
	p.VerificationNote = note
	p.Touch()
	p.IncrementVersion()
}

// IsPending returns true if the payment awaits verification
func (p *Payment) IsPending() bool {
	return p.Status == PaymentStatusPending
}

// IsVerified returns true if the payment was verified
func (p *Payment) IsVerified() bool {
	return p.Status == PaymentStatusVerified
}
