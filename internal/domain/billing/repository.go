package billing

import (
	"context"
	"time"

	"github.com/bms/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// ChargeFilter defines filtering options for charge queries
type ChargeFilter struct {
	Search   string
	Status   *ChargeStatus
	Method   *DistributionMethod
	DueFrom  *time.Time
	DueTo    *time.Time
	FromDate *time.Time
	ToDate   *time.Time
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
}

// ChargeRepository persists charges together with their unit items
type ChargeRepository interface {
	// FindByID loads a charge with its unit items and breakdown lines
	FindByID(ctx context.Context, id uuid.UUID) (*Charge, error)
	FindByIDForBuilding(ctx context.Context, buildingID, id uuid.UUID) (*Charge, error)
	FindAllForBuilding(ctx context.Context, buildingID uuid.UUID, filter ChargeFilter) ([]Charge, error)
	CountForBuilding(ctx context.Context, buildingID uuid.UUID, filter ChargeFilter) (int64, error)
	// FindByUnitItemID resolves the charge owning the given unit item
	FindByUnitItemID(ctx context.Context, itemID uuid.UUID) (*Charge, error)

	// Create persists a charge and all of its unit items atomically
	Create(ctx context.Context, charge *Charge) error
	// Save persists charge header fields only
	Save(ctx context.Context, charge *Charge) error
	// SaveWithLock persists header fields under optimistic version check
	SaveWithLock(ctx context.Context, charge *Charge) error
	// SaveUnitItem persists a single unit item's late-fee state
	SaveUnitItem(ctx context.Context, item *ChargeUnitItem) error
	// CreditUnitItem increments a unit item's paid amount in a single
	// db-side statement (paid_amount = paid_amount + ?) and recomputes
	// is_paid from the post-increment value. Concurrent verifications of
	// different payments against the same item therefore cannot overwrite
	// each other's credit. Returns the item as persisted.
	CreditUnitItem(ctx context.Context, itemID uuid.UUID, amount valueobject.Money) (*ChargeUnitItem, error)
	// Delete removes a charge with its unit items and breakdown lines
	Delete(ctx context.Context, id uuid.UUID) error
}

// PaymentFilter defines filtering options for payment queries
type PaymentFilter struct {
	Search   string
	Status   *PaymentStatus
	Method   *PaymentMethod
	UnitID   *uuid.UUID
	ChargeID *uuid.UUID
	FromDate *time.Time
	ToDate   *time.Time
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
}

// PaymentDecision is the input to the conditional PENDING->decided write
type PaymentDecision struct {
	Status    PaymentStatus
	DecidedBy uuid.UUID
	DecidedAt time.Time
	Note      string
}

// PaymentRepository persists payments
type PaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindByIDForBuilding(ctx context.Context, buildingID, id uuid.UUID) (*Payment, error)
	FindAllForBuilding(ctx context.Context, buildingID uuid.UUID, filter PaymentFilter) ([]Payment, error)
	CountForBuilding(ctx context.Context, buildingID uuid.UUID, filter PaymentFilter) (int64, error)
	CountByCharge(ctx context.Context, chargeID uuid.UUID) (int64, error)

	Create(ctx context.Context, payment *Payment) error
	// CreateBatch persists several payments; callers wrap it in a transaction
	// for all-or-nothing bulk creation
	CreateBatch(ctx context.Context, payments []*Payment) error
	ExistsByReference(ctx context.Context, referenceNumber string) (bool, error)

	// MarkDecidedIfPending executes the single conditional write
	// UPDATE ... SET status=? ... WHERE id=? AND status='PENDING' and reports
	// whether this caller won the race. False means a concurrent verifier
	// already decided the payment.
	MarkDecidedIfPending(ctx context.Context, id uuid.UUID, decision PaymentDecision) (bool, error)
}
