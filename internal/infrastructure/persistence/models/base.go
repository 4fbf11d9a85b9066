package models

import (
	"time"

	"github.com/bms/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// AggregateModel provides common persistence fields for aggregate roots.
// It extends BaseModel with version for optimistic locking.
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// FromDomainAggregateRoot populates AggregateModel from domain BaseAggregateRoot
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Version = a.Version
}

// ToDomainAggregateRoot converts AggregateModel to domain BaseAggregateRoot
func (m *AggregateModel) ToDomainAggregateRoot() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{
		BaseEntity: m.BaseModel.ToDomain(),
		Version:    m.Version,
	}
}

// BuildingAggregateModel provides common persistence fields for
// building-scoped aggregate roots
type BuildingAggregateModel struct {
	AggregateModel
	BuildingID uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy  *uuid.UUID `gorm:"type:uuid;index"`
}

// FromDomainBuildingAggregateRoot populates the model from a domain BuildingAggregateRoot
func (m *BuildingAggregateModel) FromDomainBuildingAggregateRoot(b shared.BuildingAggregateRoot) {
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	m.BuildingID = b.BuildingID
	m.CreatedBy = b.CreatedBy
}

// PopulateBuildingAggregateRoot populates a domain BuildingAggregateRoot from the model
func (m *BuildingAggregateModel) PopulateBuildingAggregateRoot(b *shared.BuildingAggregateRoot) {
	b.BaseAggregateRoot = m.ToDomainAggregateRoot()
	b.BuildingID = m.BuildingID
	b.CreatedBy = m.CreatedBy
}
