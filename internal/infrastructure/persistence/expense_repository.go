package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/bms/backend/internal/domain/shared"
	"github.com/bms/backend/internal/domain/treasury"
	"github.com/bms/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormExpenseRepository implements treasury.ExpenseRepository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// FindByID finds an expense by its ID
func (r *GormExpenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*treasury.Expense, error) {
	var model models.ExpenseModel
	if err := dbForContext(ctx, r.db).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForBuilding finds an expense by ID scoped to a building
func (r *GormExpenseRepository) FindByIDForBuilding(ctx context.Context, buildingID, id uuid.UUID) (*treasury.Expense, error) {
	var model models.ExpenseModel
	if err := dbForContext(ctx, r.db).
		Where("building_id = ? AND id = ?", buildingID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForBuilding finds expenses for a building with filtering
func (r *GormExpenseRepository) FindAllForBuilding(ctx context.Context, buildingID uuid.UUID, filter treasury.ExpenseFilter) ([]*treasury.Expense, error) {
	var expenseModels []models.ExpenseModel
	query := dbForContext(ctx, r.db).Model(&models.ExpenseModel{}).
		Where("building_id = ?", buildingID)
	query = r.applyExpenseFilter(query, filter)

	if err := query.Find(&expenseModels).Error; err != nil {
		return nil, err
	}
	expenses := make([]*treasury.Expense, len(expenseModels))
	for i := range expenseModels {
		expenses[i] = expenseModels[i].ToDomain()
	}
	return expenses, nil
}

// CountForBuilding counts expenses for a building
func (r *GormExpenseRepository) CountForBuilding(ctx context.Context, buildingID uuid.UUID, filter treasury.ExpenseFilter) (int64, error) {
	var count int64
	query := dbForContext(ctx, r.db).Model(&models.ExpenseModel{}).
		Where("building_id = ?", buildingID)
	query = r.applyExpenseFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create persists an expense
func (r *GormExpenseRepository) Create(ctx context.Context, expense *treasury.Expense) error {
	model := models.ExpenseModelFromDomain(expense)
	return dbForContext(ctx, r.db).Create(model).Error
}

// Save updates an expense
func (r *GormExpenseRepository) Save(ctx context.Context, expense *treasury.Expense) error {
	model := models.ExpenseModelFromDomain(expense)
	return dbForContext(ctx, r.db).Save(model).Error
}

// Delete removes an expense
func (r *GormExpenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbForContext(ctx, r.db).Delete(&models.ExpenseModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// MarkDecidedIfPending flips a PENDING expense to the decided status in a
// single conditional UPDATE, so exactly one approver ever wins the race.
func (r *GormExpenseRepository) MarkDecidedIfPending(ctx context.Context, id uuid.UUID, decision treasury.ExpenseDecision) (bool, error) {
	result := dbForContext(ctx, r.db).
		Model(&models.ExpenseModel{}).
		Where("id = ? AND status = ?", id, treasury.ExpenseStatusPending).
		Updates(map[string]interface{}{
			"status":        decision.Status.String(),
			"decided_by":    decision.DecidedBy,
			"decided_at":    decision.DecidedAt,
			"decision_note": decision.Note,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// applyExpenseFilter applies filter options to the query
func (r *GormExpenseRepository) applyExpenseFilter(query *gorm.DB, filter treasury.ExpenseFilter) *gorm.DB {
	query = r.applyExpenseFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, ExpenseSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	if filter.OrderBy == "" && filter.OrderDir == "" {
		orderDir = "DESC"
	}
	return query.Order(orderBy + " " + orderDir)
}

// applyExpenseFilterWithoutPagination applies filter options without pagination
func (r *GormExpenseRepository) applyExpenseFilterWithoutPagination(query *gorm.DB, filter treasury.ExpenseFilter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("title ILIKE ? OR vendor ILIKE ? OR invoice_ref ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.FromDate != nil {
		query = query.Where("expense_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("expense_date <= ?", *filter.ToDate)
	}
	return query
}
