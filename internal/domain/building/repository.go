package building

import (
	"context"

	"github.com/google/uuid"
)

// BuildingRepository reads building records owned by the building collaborator
type BuildingRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Building, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// UnitRepository reads unit records owned by the building collaborator.
// FindByBuilding returns units in stable unit-number order; distribution
// remainder assignment depends on that ordering being deterministic.
type UnitRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Unit, error)
	FindByBuilding(ctx context.Context, buildingID uuid.UUID) ([]Unit, error)
	FindByIDs(ctx context.Context, buildingID uuid.UUID, ids []uuid.UUID) ([]Unit, error)
}
