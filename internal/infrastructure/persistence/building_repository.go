package persistence

import (
	"context"
	"errors"

	"github.com/bms/backend/internal/domain/building"
	"github.com/bms/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBuildingRepository implements building.BuildingRepository using GORM
type GormBuildingRepository struct {
	db *gorm.DB
}

// NewGormBuildingRepository creates a new GormBuildingRepository
func NewGormBuildingRepository(db *gorm.DB) *GormBuildingRepository {
	return &GormBuildingRepository{db: db}
}

// FindByID finds a building by its ID
func (r *GormBuildingRepository) FindByID(ctx context.Context, id uuid.UUID) (*building.Building, error) {
	var model models.BuildingModel
	if err := dbForContext(ctx, r.db).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Exists checks if a building exists
func (r *GormBuildingRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := dbForContext(ctx, r.db).
		Model(&models.BuildingModel{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GormUnitRepository implements building.UnitRepository using GORM
type GormUnitRepository struct {
	db *gorm.DB
}

// NewGormUnitRepository creates a new GormUnitRepository
func NewGormUnitRepository(db *gorm.DB) *GormUnitRepository {
	return &GormUnitRepository{db: db}
}

// FindByID finds a unit by its ID
func (r *GormUnitRepository) FindByID(ctx context.Context, id uuid.UUID) (*building.Unit, error) {
	var model models.UnitModel
	if err := dbForContext(ctx, r.db).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByBuilding loads all units of a building in unit-number order.
// Charge distribution assigns rounding remainders by this ordering, so it
// must stay deterministic.
func (r *GormUnitRepository) FindByBuilding(ctx context.Context, buildingID uuid.UUID) ([]building.Unit, error) {
	var unitModels []models.UnitModel
	if err := dbForContext(ctx, r.db).
		Where("building_id = ?", buildingID).
		Order("number ASC").
		Find(&unitModels).Error; err != nil {
		return nil, err
	}
	units := make([]building.Unit, len(unitModels))
	for i, model := range unitModels {
		units[i] = *model.ToDomain()
	}
	return units, nil
}

// FindByIDs loads the units with the given IDs, scoped to a building, in
// unit-number order
func (r *GormUnitRepository) FindByIDs(ctx context.Context, buildingID uuid.UUID, ids []uuid.UUID) ([]building.Unit, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var unitModels []models.UnitModel
	if err := dbForContext(ctx, r.db).
		Where("building_id = ? AND id IN ?", buildingID, ids).
		Order("number ASC").
		Find(&unitModels).Error; err != nil {
		return nil, err
	}
	units := make([]building.Unit, len(unitModels))
	for i, model := range unitModels {
		units[i] = *model.ToDomain()
	}
	return units, nil
}
