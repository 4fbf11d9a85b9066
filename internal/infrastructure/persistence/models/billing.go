package models

import (
	"time"

	"github.com/bms/backend/internal/domain/billing"
	"github.com/bms/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// ChargeModel is the persistence model for billing.Charge.
// Amounts are stored as integer minor currency units.
type ChargeModel struct {
	BuildingAggregateModel
	Title       string     `gorm:"size:200;not null"`
	Description string     `gorm:"type:text"`
	TotalAmount int64      `gorm:"not null"`
	Method      string     `gorm:"size:32;not null"`
	Status      string     `gorm:"size:20;not null;index"`
	DueDate     *time.Time `gorm:"index"`

	UnitItems []ChargeUnitItemModel `gorm:"foreignKey:ChargeID"`
	Items     []ChargeItemModel     `gorm:"foreignKey:ChargeID"`
}

// TableName returns the table name for ChargeModel
func (ChargeModel) TableName() string {
	return "charges"
}

// ToDomain converts ChargeModel to domain Charge
func (m *ChargeModel) ToDomain() *billing.Charge {
	charge := &billing.Charge{
		Title:       m.Title,
		Description: m.Description,
		TotalAmount: valueobject.NewMoney(m.TotalAmount),
		Method:      billing.DistributionMethod(m.Method),
		Status:      billing.ChargeStatus(m.Status),
		DueDate:     m.DueDate,
	}
	m.PopulateBuildingAggregateRoot(&charge.BuildingAggregateRoot)

	charge.UnitItems = make([]billing.ChargeUnitItem, len(m.UnitItems))
	for i, item := range m.UnitItems {
		charge.UnitItems[i] = *item.ToDomain()
	}
	charge.Items = make([]billing.ChargeItem, len(m.Items))
	for i, item := range m.Items {
		charge.Items[i] = *item.ToDomain()
	}
	return charge
}

// ChargeModelFromDomain converts domain Charge to ChargeModel
func ChargeModelFromDomain(charge *billing.Charge) *ChargeModel {
	m := &ChargeModel{
		Title:       charge.Title,
		Description: charge.Description,
		TotalAmount: charge.TotalAmount.Amount(),
		Method:      charge.Method.String(),
		Status:      charge.Status.String(),
		DueDate:     charge.DueDate,
	}
	m.FromDomainBuildingAggregateRoot(charge.BuildingAggregateRoot)

	m.UnitItems = make([]ChargeUnitItemModel, len(charge.UnitItems))
	for i := range charge.UnitItems {
		m.UnitItems[i] = *ChargeUnitItemModelFromDomain(&charge.UnitItems[i])
	}
	m.Items = make([]ChargeItemModel, len(charge.Items))
	for i := range charge.Items {
		m.Items[i] = *ChargeItemModelFromDomain(&charge.Items[i])
	}
	return m
}

// ChargeUnitItemModel is the persistence model for billing.ChargeUnitItem.
// The (charge_id, unit_id) pair is unique.
type ChargeUnitItemModel struct {
	BaseModel
	ChargeID   uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_charge_unit"`
	UnitID     uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_charge_unit"`
	Amount     int64     `gorm:"not null"`
	PaidAmount int64     `gorm:"not null;default:0"`
	LateFee    int64     `gorm:"not null;default:0"`
	IsPaid     bool      `gorm:"not null;default:false;index"`
	Note       string    `gorm:"type:text"`
}

// TableName returns the table name for ChargeUnitItemModel
func (ChargeUnitItemModel) TableName() string {
	return "charge_unit_items"
}

// ToDomain converts ChargeUnitItemModel to domain ChargeUnitItem
func (m *ChargeUnitItemModel) ToDomain() *billing.ChargeUnitItem {
	return &billing.ChargeUnitItem{
		BaseEntity: m.BaseModel.ToDomain(),
		ChargeID:   m.ChargeID,
		UnitID:     m.UnitID,
		Amount:     valueobject.NewMoney(m.Amount),
		PaidAmount: valueobject.NewMoney(m.PaidAmount),
		LateFee:    valueobject.NewMoney(m.LateFee),
		IsPaid:     m.IsPaid,
		Note:       m.Note,
	}
}

// ChargeUnitItemModelFromDomain converts domain ChargeUnitItem to ChargeUnitItemModel
func ChargeUnitItemModelFromDomain(item *billing.ChargeUnitItem) *ChargeUnitItemModel {
	m := &ChargeUnitItemModel{
		ChargeID:   item.ChargeID,
		UnitID:     item.UnitID,
		Amount:     item.Amount.Amount(),
		PaidAmount: item.PaidAmount.Amount(),
		LateFee:    item.LateFee.Amount(),
		IsPaid:     item.IsPaid,
		Note:       item.Note,
	}
	m.FromDomainBaseEntity(item.BaseEntity)
	return m
}

// ChargeItemModel is the persistence model for the informational breakdown lines
type ChargeItemModel struct {
	BaseModel
	ChargeID uuid.UUID `gorm:"type:uuid;not null;index"`
	Label    string    `gorm:"size:200;not null"`
	Amount   int64     `gorm:"not null"`
}

// TableName returns the table name for ChargeItemModel
func (ChargeItemModel) TableName() string {
	return "charge_items"
}

// ToDomain converts ChargeItemModel to domain ChargeItem
func (m *ChargeItemModel) ToDomain() *billing.ChargeItem {
	return &billing.ChargeItem{
		BaseEntity: m.BaseModel.ToDomain(),
		ChargeID:   m.ChargeID,
		Label:      m.Label,
		Amount:     valueobject.NewMoney(m.Amount),
	}
}

// ChargeItemModelFromDomain converts domain ChargeItem to ChargeItemModel
func ChargeItemModelFromDomain(item *billing.ChargeItem) *ChargeItemModel {
	m := &ChargeItemModel{
		ChargeID: item.ChargeID,
		Label:    item.Label,
		Amount:   item.Amount.Amount(),
	}
	m.FromDomainBaseEntity(item.BaseEntity)
	return m
}

// PaymentModel is the persistence model for billing.Payment
type PaymentModel struct {
	BuildingAggregateModel
	UnitID           uuid.UUID  `gorm:"type:uuid;not null;index"`
	ChargeID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	ChargeUnitItemID *uuid.UUID `gorm:"type:uuid;index"`
	Amount           int64      `gorm:"not null"`
	Method           string     `gorm:"size:20;not null"`
	Status           string     `gorm:"size:20;not null;index"`
	ReferenceNumber  string     `gorm:"size:100;not null;uniqueIndex"`
	VerifiedBy       *uuid.UUID `gorm:"type:uuid"`
	VerifiedAt       *time.Time
	VerificationNote string `gorm:"type:text"`
}

// TableName returns the table name for PaymentModel
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts PaymentModel to domain Payment
func (m *PaymentModel) ToDomain() *billing.Payment {
	payment := &billing.Payment{
		UnitID:           m.UnitID,
		ChargeID:         m.ChargeID,
		ChargeUnitItemID: m.ChargeUnitItemID,
		Amount:           valueobject.NewMoney(m.Amount),
		Method:           billing.PaymentMethod(m.Method),
		Status:           billing.PaymentStatus(m.Status),
		ReferenceNumber:  m.ReferenceNumber,
		VerifiedBy:       m.VerifiedBy,
		VerifiedAt:       m.VerifiedAt,
		VerificationNote: m.VerificationNote,
	}
	m.PopulateBuildingAggregateRoot(&payment.BuildingAggregateRoot)
	return payment
}

// PaymentModelFromDomain converts domain Payment to PaymentModel
func PaymentModelFromDomain(payment *billing.Payment) *PaymentModel {
	m := &PaymentModel{
		UnitID:           payment.UnitID,
		ChargeID:         payment.ChargeID,
		ChargeUnitItemID: payment.ChargeUnitItemID,
		Amount:           payment.Amount.Amount(),
		Method:           payment.Method.String(),
		Status:           payment.Status.String(),
		ReferenceNumber:  payment.ReferenceNumber,
		VerifiedBy:       payment.VerifiedBy,
		VerifiedAt:       payment.VerifiedAt,
		VerificationNote: payment.VerificationNote,
	}
	m.FromDomainBuildingAggregateRoot(payment.BuildingAggregateRoot)
	return m
}
