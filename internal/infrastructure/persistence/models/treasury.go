package models

import (
	"time"

	"github.com/bms/backend/internal/domain/shared/valueobject"
	"github.com/bms/backend/internal/domain/treasury"
	"github.com/google/uuid"
)

// BuildingFundModel is the persistence model for treasury.BuildingFund.
// One row per building; the balance moves only through conditional updates
// issued together with a fund transaction insert.
type BuildingFundModel struct {
	AggregateModel
	BuildingID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Balance    int64     `gorm:"not null;default:0"`
}

// TableName returns the table name for BuildingFundModel
func (BuildingFundModel) TableName() string {
	return "building_funds"
}

// ToDomain converts BuildingFundModel to domain BuildingFund
func (m *BuildingFundModel) ToDomain() *treasury.BuildingFund {
	return &treasury.BuildingFund{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		BuildingID:        m.BuildingID,
		Balance:           valueobject.NewMoney(m.Balance),
	}
}

// BuildingFundModelFromDomain converts domain BuildingFund to BuildingFundModel
func BuildingFundModelFromDomain(fund *treasury.BuildingFund) *BuildingFundModel {
	m := &BuildingFundModel{
		BuildingID: fund.BuildingID,
		Balance:    fund.Balance.Amount(),
	}
	m.FromDomainAggregateRoot(fund.BaseAggregateRoot)
	return m
}

// FundTransactionModel is the persistence model for treasury.FundTransaction.
// Rows are append-only.
type FundTransactionModel struct {
	BaseModel
	BuildingID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	Type        string     `gorm:"size:20;not null;index"`
	Direction   string     `gorm:"size:10;not null"`
	Amount      int64      `gorm:"not null"`
	Description string     `gorm:"type:text"`
	PaymentID   *uuid.UUID `gorm:"type:uuid;index"`
	ExpenseID   *uuid.UUID `gorm:"type:uuid;index"`
	PostedBy    *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for FundTransactionModel
func (FundTransactionModel) TableName() string {
	return "fund_transactions"
}

// ToDomain converts FundTransactionModel to domain FundTransaction
func (m *FundTransactionModel) ToDomain() *treasury.FundTransaction {
	return &treasury.FundTransaction{
		BaseEntity:  m.BaseModel.ToDomain(),
		BuildingID:  m.BuildingID,
		Type:        treasury.TransactionType(m.Type),
		Direction:   treasury.TransactionDirection(m.Direction),
		Amount:      valueobject.NewMoney(m.Amount),
		Description: m.Description,
		PaymentID:   m.PaymentID,
		ExpenseID:   m.ExpenseID,
		PostedBy:    m.PostedBy,
	}
}

// FundTransactionModelFromDomain converts domain FundTransaction to FundTransactionModel
func FundTransactionModelFromDomain(tx *treasury.FundTransaction) *FundTransactionModel {
	m := &FundTransactionModel{
		BuildingID:  tx.BuildingID,
		Type:        tx.Type.String(),
		Direction:   string(tx.Direction),
		Amount:      tx.Amount.Amount(),
		Description: tx.Description,
		PaymentID:   tx.PaymentID,
		ExpenseID:   tx.ExpenseID,
		PostedBy:    tx.PostedBy,
	}
	m.FromDomainBaseEntity(tx.BaseEntity)
	return m
}

// ExpenseModel is the persistence model for treasury.Expense
type ExpenseModel struct {
	BuildingAggregateModel
	Title        string     `gorm:"size:200;not null"`
	Description  string     `gorm:"type:text"`
	Category     string     `gorm:"size:32;not null;index"`
	Amount       int64      `gorm:"not null"`
	Vendor       string     `gorm:"size:200"`
	InvoiceRef   string     `gorm:"size:100"`
	ExpenseDate  time.Time  `gorm:"not null;index"`
	Status       string     `gorm:"size:20;not null;index"`
	DecidedBy    *uuid.UUID `gorm:"type:uuid"`
	DecidedAt    *time.Time
	DecisionNote string `gorm:"type:text"`
}

// TableName returns the table name for ExpenseModel
func (ExpenseModel) TableName() string {
	return "expenses"
}

// ToDomain converts ExpenseModel to domain Expense
func (m *ExpenseModel) ToDomain() *treasury.Expense {
	expense := &treasury.Expense{
		Title:        m.Title,
		Description:  m.Description,
		Category:     treasury.ExpenseCategory(m.Category),
		Amount:       valueobject.NewMoney(m.Amount),
		Vendor:       m.Vendor,
		InvoiceRef:   m.InvoiceRef,
		ExpenseDate:  m.ExpenseDate,
		Status:       treasury.ExpenseStatus(m.Status),
		DecidedBy:    m.DecidedBy,
		DecidedAt:    m.DecidedAt,
		DecisionNote: m.DecisionNote,
	}
	m.PopulateBuildingAggregateRoot(&expense.BuildingAggregateRoot)
	return expense
}

// ExpenseModelFromDomain converts domain Expense to ExpenseModel
func ExpenseModelFromDomain(expense *treasury.Expense) *ExpenseModel {
	m := &ExpenseModel{
		Title:        expense.Title,
		Description:  expense.Description,
		Category:     string(expense.Category),
		Amount:       expense.Amount.Amount(),
		Vendor:       expense.Vendor,
		InvoiceRef:   expense.InvoiceRef,
		ExpenseDate:  expense.ExpenseDate,
		Status:       expense.Status.String(),
		DecidedBy:    expense.DecidedBy,
		DecidedAt:    expense.DecidedAt,
		DecisionNote: expense.DecisionNote,
	}
	m.FromDomainBuildingAggregateRoot(expense.BuildingAggregateRoot)
	return m
}
