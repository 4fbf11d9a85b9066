package shared

import (
	"github.com/google/uuid"
)

// AggregateRoot is the base interface for all aggregate roots
type AggregateRoot interface {
	Entity
	GetVersion() int
	IncrementVersion()
}

// BaseAggregateRoot provides common fields for aggregate roots
type BaseAggregateRoot struct {
	BaseEntity
	Version int `gorm:"not null;default:1"`
}

// GetVersion returns the aggregate version for optimistic locking
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion increments the version number
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// NewBaseAggregateRoot creates a new base aggregate root
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}

// BuildingAggregateRoot extends BaseAggregateRoot with building scoping.
// Every financial record in the system belongs to exactly one building.
type BuildingAggregateRoot struct {
	BaseAggregateRoot
	BuildingID uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy  *uuid.UUID `gorm:"type:uuid;index"`
}

// NewBuildingAggregateRoot creates a new building-scoped aggregate root
func NewBuildingAggregateRoot(buildingID uuid.UUID) BuildingAggregateRoot {
	return BuildingAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		BuildingID:        buildingID,
	}
}

// NewBuildingAggregateRootWithCreator creates a new building-scoped aggregate root with creator info
func NewBuildingAggregateRootWithCreator(buildingID, createdBy uuid.UUID) BuildingAggregateRoot {
	return BuildingAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		BuildingID:        buildingID,
		CreatedBy:         &createdBy,
	}
}

// SetCreatedBy sets the creator user ID
func (b *BuildingAggregateRoot) SetCreatedBy(userID uuid.UUID) {
	b.CreatedBy = &userID
}

// GetCreatedBy returns the creator user ID
func (b *BuildingAggregateRoot) GetCreatedBy() *uuid.UUID {
	return b.CreatedBy
}
