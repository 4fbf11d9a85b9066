package models

import (
	"github.com/bms/backend/internal/domain/building"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BuildingModel is the persistence read model for building.Building
type BuildingModel struct {
	AggregateModel
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name     string    `gorm:"size:200;not null"`
	Address  string    `gorm:"size:500"`
}

// TableName returns the table name for BuildingModel
func (BuildingModel) TableName() string {
	return "buildings"
}

// ToDomain converts BuildingModel to domain Building
func (m *BuildingModel) ToDomain() *building.Building {
	return &building.Building{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		TenantID:          m.TenantID,
		Name:              m.Name,
		Address:           m.Address,
	}
}

// UnitModel is the persistence read model for building.Unit
type UnitModel struct {
	AggregateModel
	BuildingID     uuid.UUID        `gorm:"type:uuid;not null;index;uniqueIndex:idx_building_unit_number"`
	Number         string           `gorm:"size:50;not null;uniqueIndex:idx_building_unit_number"`
	Floor          int              `gorm:"not null;default:0"`
	Area           *decimal.Decimal `gorm:"type:numeric(12,2)"`
	Coefficient    *decimal.Decimal `gorm:"type:numeric(8,4)"`
	ResidentsCount int              `gorm:"not null;default:0"`
}

// TableName returns the table name for UnitModel
func (UnitModel) TableName() string {
	return "units"
}

// ToDomain converts UnitModel to domain Unit
func (m *UnitModel) ToDomain() *building.Unit {
	return &building.Unit{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		BuildingID:        m.BuildingID,
		Number:            m.Number,
		Floor:             m.Floor,
		Area:              m.Area,
		Coefficient:       m.Coefficient,
		ResidentsCount:    m.ResidentsCount,
	}
}
