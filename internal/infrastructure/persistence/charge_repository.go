package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/bms/backend/internal/domain/billing"
	"github.com/bms/backend/internal/domain/shared"
	"github.com/bms/backend/internal/domain/shared/valueobject"
	"github.com/bms/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormChargeRepository implements billing.ChargeRepository using GORM
type GormChargeRepository struct {
	db *gorm.DB
}

// NewGormChargeRepository creates a new GormChargeRepository
func NewGormChargeRepository(db *gorm.DB) *GormChargeRepository {
	return &GormChargeRepository{db: db}
}

// FindByID finds a charge by its ID with unit items and breakdown lines
func (r *GormChargeRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Charge, error) {
	var model models.ChargeModel
	if err := dbForContext(ctx, r.db).
		Preload("UnitItems").
		Preload("Items").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForBuilding finds a charge by ID scoped to a building
func (r *GormChargeRepository) FindByIDForBuilding(ctx context.Context, buildingID, id uuid.UUID) (*billing.Charge, error) {
	var model models.ChargeModel
	if err := dbForContext(ctx, r.db).
		Preload("UnitItems").
		Preload("Items").
		Where("building_id = ? AND id = ?", buildingID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByUnitItemID resolves the charge owning the given unit item
func (r *GormChargeRepository) FindByUnitItemID(ctx context.Context, itemID uuid.UUID) (*billing.Charge, error) {
	var model models.ChargeModel
	if err := dbForContext(ctx, r.db).
		Preload("UnitItems").
		Preload("Items").
		Where("id = (?)", dbForContext(ctx, r.db).
			Model(&models.ChargeUnitItemModel{}).
			Select("charge_id").
			Where("id = ?", itemID)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForBuilding finds charges for a building with filtering
func (r *GormChargeRepository) FindAllForBuilding(ctx context.Context, buildingID uuid.UUID, filter billing.ChargeFilter) ([]billing.Charge, error) {
	var chargeModels []models.ChargeModel
	query := dbForContext(ctx, r.db).Model(&models.ChargeModel{}).
		Preload("UnitItems").
		Preload("Items").
		Where("building_id = ?", buildingID)
	query = r.applyChargeFilter(query, filter)

	if err := query.Find(&chargeModels).Error; err != nil {
		return nil, err
	}
	charges := make([]billing.Charge, len(chargeModels))
	for i, model := range chargeModels {
		charges[i] = *model.ToDomain()
	}
	return charges, nil
}

// CountForBuilding counts charges for a building
func (r *GormChargeRepository) CountForBuilding(ctx context.Context, buildingID uuid.UUID, filter billing.ChargeFilter) (int64, error) {
	var count int64
	query := dbForContext(ctx, r.db).Model(&models.ChargeModel{}).
		Where("building_id = ?", buildingID)
	query = r.applyChargeFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create persists a charge with all of its unit items and breakdown lines.
// GORM writes the associations in the same statement batch, so callers get
// atomicity by running this inside TransactionManager.Do.
func (r *GormChargeRepository) Create(ctx context.Context, charge *billing.Charge) error {
	model := models.ChargeModelFromDomain(charge)
	return dbForContext(ctx, r.db).Create(model).Error
}

// Save persists charge header fields only, leaving unit items untouched
func (r *GormChargeRepository) Save(ctx context.Context, charge *billing.Charge) error {
	model := models.ChargeModelFromDomain(charge)
	return dbForContext(ctx, r.db).
		Omit("UnitItems", "Items").
		Save(model).Error
}

// SaveWithLock saves charge header fields with optimistic locking
func (r *GormChargeRepository) SaveWithLock(ctx context.Context, charge *billing.Charge) error {
	model := models.ChargeModelFromDomain(charge)
	result := dbForContext(ctx, r.db).
		Model(model).
		Omit("UnitItems", "Items").
		Where("id = ? AND version = ?", charge.ID, charge.Version-1).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The record has been modified by another transaction")
	}
	return nil
}

// SaveUnitItem persists a single unit item's late-fee state
func (r *GormChargeRepository) SaveUnitItem(ctx context.Context, item *billing.ChargeUnitItem) error {
	model := models.ChargeUnitItemModelFromDomain(item)
	return dbForContext(ctx, r.db).Save(model).Error
}

// CreditUnitItem applies a payment credit as a db-side increment. Both
// column expressions evaluate against the pre-update row, so is_paid is
// computed from the same values the increment starts from.
func (r *GormChargeRepository) CreditUnitItem(ctx context.Context, itemID uuid.UUID, amount valueobject.Money) (*billing.ChargeUnitItem, error) {
	db := dbForContext(ctx, r.db)
	result := db.Model(&models.ChargeUnitItemModel{}).
		Where("id = ?", itemID).
		Updates(map[string]interface{}{
			"paid_amount": gorm.Expr("paid_amount + ?", amount.Amount()),
			"is_paid":     gorm.Expr("paid_amount + ? >= amount + late_fee", amount.Amount()),
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, shared.ErrNotFound
	}

	var model models.ChargeUnitItemModel
	if err := db.First(&model, "id = ?", itemID).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// Delete removes a charge with its unit items and breakdown lines
func (r *GormChargeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := dbForContext(ctx, r.db)
	if err := db.Delete(&models.ChargeUnitItemModel{}, "charge_id = ?", id).Error; err != nil {
		return err
	}
	if err := db.Delete(&models.ChargeItemModel{}, "charge_id = ?", id).Error; err != nil {
		return err
	}
	result := db.Delete(&models.ChargeModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyChargeFilter applies filter options to the query
func (r *GormChargeRepository) applyChargeFilter(query *gorm.DB, filter billing.ChargeFilter) *gorm.DB {
	query = r.applyChargeFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, ChargeSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	if filter.OrderBy == "" && filter.OrderDir == "" {
		orderDir = "DESC"
	}
	return query.Order(orderBy + " " + orderDir)
}

// applyChargeFilterWithoutPagination applies filter options without pagination
func (r *GormChargeRepository) applyChargeFilterWithoutPagination(query *gorm.DB, filter billing.ChargeFilter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", searchPattern, searchPattern)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Method != nil {
		query = query.Where("method = ?", *filter.Method)
	}
	if filter.DueFrom != nil {
		query = query.Where("due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		query = query.Where("due_date <= ?", *filter.DueTo)
	}
	if filter.FromDate != nil {
		query = query.Where("created_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("created_at <= ?", *filter.ToDate)
	}
	return query
}
