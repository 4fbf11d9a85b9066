package billing

import (
	"fmt"
	"time"

	"github.com/bms/backend/internal/domain/building"
	"github.com/bms/backend/internal/domain/shared"
	"github.com/bms/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// ChargeStatus represents the lifecycle status of a charge
type ChargeStatus string

const (
	ChargeStatusDraft         ChargeStatus = "DRAFT"
	ChargeStatusActive        ChargeStatus = "ACTIVE"
	ChargeStatusPartiallyPaid ChargeStatus = "PARTIALLY_PAID"
	ChargeStatusPaid          ChargeStatus = "PAID"
	ChargeStatusCancelled     ChargeStatus = "CANCELLED"
)

// IsValid checks if the status is a valid ChargeStatus
func (s ChargeStatus) IsValid() bool {
	switch s {
	case ChargeStatusDraft, ChargeStatusActive, ChargeStatusPartiallyPaid,
		ChargeStatusPaid, ChargeStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of ChargeStatus
func (s ChargeStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the charge is in a terminal state
func (s ChargeStatus) IsTerminal() bool {
	return s == ChargeStatusPaid || s == ChargeStatusCancelled
}

// chargeTransitions is the explicit, user-initiated transition table.
// Payment-driven projections (PARTIALLY_PAID, PAID) are applied separately
// and do not consult this table.
var chargeTransitions = map[ChargeStatus][]ChargeStatus{
	ChargeStatusDraft:         {ChargeStatusActive, ChargeStatusCancelled},
	ChargeStatusActive:        {ChargeStatusPartiallyPaid, ChargeStatusPaid, ChargeStatusCancelled},
	ChargeStatusPartiallyPaid: {ChargeStatusPaid, ChargeStatusCancelled},
}

// CanTransitionTo returns true if the explicit transition table allows s -> target
func (s ChargeStatus) CanTransitionTo(target ChargeStatus) bool {
	for _, allowed := range chargeTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// ErrInvalidStatusTransition is returned for transitions the table forbids
var ErrInvalidStatusTransition = shared.NewDomainError("INVALID_STATUS_TRANSITION", "Requested charge status transition is not allowed")

// ChargeUnitItem is the portion of a charge assessed to one unit, tracked
// independently through payment. Unique per (charge, unit). PaidAmount and
// IsPaid mutate only through payment verification.
type ChargeUnitItem struct {
	shared.BaseEntity
	ChargeID   uuid.UUID         `json:"charge_id"`
	UnitID     uuid.UUID         `json:"unit_id"`
	Amount     valueobject.Money `json:"amount"`
	PaidAmount valueobject.Money `json:"paid_amount"`
	LateFee    valueobject.Money `json:"late_fee"`
	IsPaid     bool              `json:"is_paid"`
	Note       string            `json:"note,omitempty"`
}

// TotalDue returns the assessed amount plus late fee
func (i *ChargeUnitItem) TotalDue() valueobject.Money {
	return i.Amount.Add(i.LateFee)
}

// Remaining returns the amount still owed on this item
func (i *ChargeUnitItem) Remaining() valueobject.Money {
	return i.TotalDue().Sub(i.PaidAmount)
}

// ApplyPayment credits a verified payment amount against the item and
// recomputes IsPaid. Invariant: IsPaid ⇔ PaidAmount >= Amount + LateFee.
func (i *ChargeUnitItem) ApplyPayment(amount valueobject.Money) {
	i.PaidAmount = i.PaidAmount.Add(amount)
	i.IsPaid = i.PaidAmount.GreaterThanOrEqual(i.TotalDue())
	i.Touch()
}

// AssessLateFee adds a late fee to an unpaid item and recomputes IsPaid,
// a late fee can flip a previously settled item back to unpaid.
func (i *ChargeUnitItem) AssessLateFee(fee valueobject.Money) error {
	if !fee.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Late fee must be positive")
	}
	i.LateFee = i.LateFee.Add(fee)
	i.IsPaid = i.PaidAmount.GreaterThanOrEqual(i.TotalDue())
	i.Touch()
	return nil
}

// ChargeItem is an informational cost-breakdown line on a charge. It carries
// no financial effect; unit assessments come solely from ChargeUnitItems.
type ChargeItem struct {
	shared.BaseEntity
	ChargeID uuid.UUID         `json:"charge_id"`
	Label    string            `json:"label"`
	Amount   valueobject.Money `json:"amount"`
}

// Charge represents a billing assessment raised against a building for a
// period, split across its units
type Charge struct {
	shared.BuildingAggregateRoot
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	TotalAmount valueobject.Money  `json:"total_amount"`
	Method      DistributionMethod `json:"distribution_method"`
	Status      ChargeStatus       `json:"status"`
	DueDate     *time.Time         `json:"due_date"`
	UnitItems   []ChargeUnitItem   `json:"unit_items"`
	Items       []ChargeItem       `json:"items,omitempty"`
}

// CustomShare is a caller-supplied per-unit assessment for a CUSTOM charge
type CustomShare struct {
	UnitID uuid.UUID
	Amount valueobject.Money
	Note   string
}

// NewCharge creates a charge and distributes its total across the given
// units with the requested method. The shares are computed up front so the
// charge and its unit items persist in one creation transaction; a
// distribution failure leaves nothing behind.
func NewCharge(
	buildingID uuid.UUID,
	title string,
	totalAmount valueobject.Money,
	method DistributionMethod,
	dueDate *time.Time,
	units []building.Unit,
) (*Charge, error) {
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Charge title cannot be empty")
	}
	if len(title) > 200 {
		return nil, shared.NewDomainError("INVALID_TITLE", "Charge title cannot exceed 200 characters")
	}
	if method == DistributionCustom {
		return nil, shared.NewDomainError("INVALID_DISTRIBUTION_METHOD", "Custom charges must be created with NewCustomCharge")
	}

	distributor, err := DistributorFor(method)
	if err != nil {
		return nil, err
	}
	shares, err := distributor.Distribute(totalAmount, units)
	if err != nil {
		return nil, err
	}

	charge := &Charge{
		BuildingAggregateRoot: shared.NewBuildingAggregateRoot(buildingID),
		Title:                 title,
		TotalAmount:           totalAmount,
		Method:                method,
		Status:                ChargeStatusDraft,
		DueDate:               dueDate,
	}
	charge.UnitItems = make([]ChargeUnitItem, len(shares))
	for i, share := range shares {
		charge.UnitItems[i] = ChargeUnitItem{
			BaseEntity: shared.NewBaseEntity(),
			ChargeID:   charge.ID,
			UnitID:     share.UnitID,
			Amount:     share.Amount,
		}
	}
	return charge, nil
}

// NewCustomCharge creates a charge whose per-unit amounts are supplied by the
// caller. The total is derived as the sum of the shares, never supplied
// independently, so over- or undershoot cannot occur.
func NewCustomCharge(
	buildingID uuid.UUID,
	title string,
	shares []CustomShare,
	dueDate *time.Time,
) (*Charge, error) {
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Charge title cannot be empty")
	}
	if len(shares) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Custom charge requires at least one unit share")
	}

	total := valueobject.Zero
	seen := make(map[uuid.UUID]bool, len(shares))
	for _, share := range shares {
		if share.UnitID == uuid.Nil {
			return nil, shared.NewDomainError("INVALID_UNIT", "Unit ID cannot be empty")
		}
		if seen[share.UnitID] {
			return nil, shared.NewDomainError("DUPLICATE_UNIT", fmt.Sprintf("Unit %s appears more than once", share.UnitID))
		}
		seen[share.UnitID] = true
		if !share.Amount.IsPositive() {
			return nil, shared.NewDomainError("INVALID_AMOUNT", "Unit share amount must be positive")
		}
		total = total.Add(share.Amount)
	}

	charge := &Charge{
		BuildingAggregateRoot: shared.NewBuildingAggregateRoot(buildingID),
		Title:                 title,
		TotalAmount:           total,
		Method:                DistributionCustom,
		Status:                ChargeStatusDraft,
		DueDate:               dueDate,
	}
	charge.UnitItems = make([]ChargeUnitItem, len(shares))
	for i, share := range shares {
		charge.UnitItems[i] = ChargeUnitItem{
			BaseEntity: shared.NewBaseEntity(),
			ChargeID:   charge.ID,
			UnitID:     share.UnitID,
			Amount:     share.Amount,
			Note:       share.Note,
		}
	}
	return charge, nil
}

// AddItem appends an informational cost-breakdown line
func (c *Charge) AddItem(label string, amount valueobject.Money) error {
	if label == "" {
		return shared.NewDomainError("INVALID_INPUT", "Charge item label cannot be empty")
	}
	c.Items = append(c.Items, ChargeItem{
		BaseEntity: shared.NewBaseEntity(),
		ChargeID:   c.ID,
		Label:      label,
		Amount:     amount,
	})
	return nil
}

// TransitionTo applies a user-initiated status transition per the explicit
// transition table
func (c *Charge) TransitionTo(target ChargeStatus) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown charge status %s", target))
	}
	if !c.Status.CanTransitionTo(target) {
		return ErrInvalidStatusTransition
	}
	c.Status = target
	c.Touch()
	c.IncrementVersion()
	return nil
}

// RecalculatePaymentStatus projects the charge status from its unit items
// after a payment verification. PAID when all items are settled,
// PARTIALLY_PAID when at least one has received money, otherwise unchanged.
// The projection deliberately bypasses the explicit transition table but
// never revives a cancelled charge.
func (c *Charge) RecalculatePaymentStatus() bool {
	if c.Status == ChargeStatusCancelled {
		return false
	}
	allPaid := len(c.UnitItems) > 0
	anyPaid := false
	for i := range c.UnitItems {
		if !c.UnitItems[i].IsPaid {
			allPaid = false
		}
		if c.UnitItems[i].PaidAmount.IsPositive() {
			anyPaid = true
		}
	}

	var projected ChargeStatus
	switch {
	case allPaid:
		projected = ChargeStatusPaid
	case anyPaid:
		projected = ChargeStatusPartiallyPaid
	default:
		return false
	}
	if c.Status == projected {
		return false
	}
	c.Status = projected
	c.Touch()
	c.IncrementVersion()
	return true
}

// CanEdit returns true while the charge may still be modified
func (c *Charge) CanEdit() bool {
	return c.Status == ChargeStatusDraft
}

// Update modifies the charge header fields, permitted only while DRAFT
func (c *Charge) Update(title, description string, dueDate *time.Time) error {
	if !c.CanEdit() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot edit charge in %s status", c.Status))
	}
	if title == "" {
		return shared.NewDomainError("INVALID_TITLE", "Charge title cannot be empty")
	}
	c.Title = title
	c.Description = description
	c.DueDate = dueDate
	c.Touch()
	c.IncrementVersion()
	return nil
}

// EnsureDeletable verifies the charge may be deleted: only DRAFT charges
// with zero payments qualify
func (c *Charge) EnsureDeletable(paymentCount int64) error {
	if c.Status != ChargeStatusDraft {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot delete charge in %s status", c.Status))
	}
	if paymentCount > 0 {
		return shared.NewDomainError("HAS_PAYMENTS", "Cannot delete a charge that has payments")
	}
	return nil
}

// UnitItemByID returns the unit item with the given ID, nil if absent
func (c *Charge) UnitItemByID(id uuid.UUID) *ChargeUnitItem {
	for i := range c.UnitItems {
		if c.UnitItems[i].ID == id {
			return &c.UnitItems[i]
		}
	}
	return nil
}

// IsOverdue returns true when the due date has passed and the charge has not settled
func (c *Charge) IsOverdue(now time.Time) bool {
	if c.Status.IsTerminal() || c.DueDate == nil {
		return false
	}
	return now.After(*c.DueDate)
}
