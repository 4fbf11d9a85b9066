package persistence

import (
	"context"
	"errors"

	"github.com/bms/backend/internal/domain/shared/valueobject"
	"github.com/bms/backend/internal/domain/treasury"
	"github.com/bms/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormFundRepository implements treasury.FundRepository using GORM
type GormFundRepository struct {
	db *gorm.DB
}

// NewGormFundRepository creates a new GormFundRepository
func NewGormFundRepository(db *gorm.DB) *GormFundRepository {
	return &GormFundRepository{db: db}
}

// FindByBuilding finds the fund row for a building
func (r *GormFundRepository) FindByBuilding(ctx context.Context, buildingID uuid.UUID) (*treasury.BuildingFund, error) {
	var model models.BuildingFundModel
	if err := dbForContext(ctx, r.db).
		Where("building_id = ?", buildingID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create persists a new building fund
func (r *GormFundRepository) Create(ctx context.Context, fund *treasury.BuildingFund) error {
	model := models.BuildingFundModelFromDomain(fund)
	return dbForContext(ctx, r.db).Create(model).Error
}

// ApplyDelta adds delta to the stored balance in a single UPDATE. The
// expression runs on the database side so concurrent credits never lose
// each other's effect.
func (r *GormFundRepository) ApplyDelta(ctx context.Context, buildingID uuid.UUID, delta valueobject.Money) error {
	result := dbForContext(ctx, r.db).
		Model(&models.BuildingFundModel{}).
		Where("building_id = ?", buildingID).
		UpdateColumn("balance", gorm.Expr("balance + ?", delta.Amount()))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return treasury.ErrFundNotFound
	}
	return nil
}

// DebitIfSufficient subtracts amount from the balance only when the current
// balance covers it. The balance guard lives in the WHERE clause, so two
// concurrent debits can never drive the balance negative.
func (r *GormFundRepository) DebitIfSufficient(ctx context.Context, buildingID uuid.UUID, amount valueobject.Money) (bool, error) {
	result := dbForContext(ctx, r.db).
		Model(&models.BuildingFundModel{}).
		Where("building_id = ? AND balance >= ?", buildingID, amount.Amount()).
		UpdateColumn("balance", gorm.Expr("balance - ?", amount.Amount()))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CreateTransaction appends a row to the fund ledger
func (r *GormFundRepository) CreateTransaction(ctx context.Context, tx *treasury.FundTransaction) error {
	model := models.FundTransactionModelFromDomain(tx)
	return dbForContext(ctx, r.db).Create(model).Error
}

// ListTransactions lists ledger rows for a building with filtering
func (r *GormFundRepository) ListTransactions(ctx context.Context, buildingID uuid.UUID, filter treasury.TransactionFilter) ([]*treasury.FundTransaction, error) {
	var txModels []models.FundTransactionModel
	query := dbForContext(ctx, r.db).Model(&models.FundTransactionModel{}).
		Where("building_id = ?", buildingID)
	query = r.applyTransactionFilter(query, filter)

	if err := query.Find(&txModels).Error; err != nil {
		return nil, err
	}
	transactions := make([]*treasury.FundTransaction, len(txModels))
	for i := range txModels {
		transactions[i] = txModels[i].ToDomain()
	}
	return transactions, nil
}

// CountTransactions counts ledger rows for a building
func (r *GormFundRepository) CountTransactions(ctx context.Context, buildingID uuid.UUID, filter treasury.TransactionFilter) (int64, error) {
	var count int64
	query := dbForContext(ctx, r.db).Model(&models.FundTransactionModel{}).
		Where("building_id = ?", buildingID)
	query = r.applyTransactionFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Stats aggregates the ledger for a building. The totals are signed sums of
// the ledger itself; Balance comes from the fund row and should reconcile
// with them.
func (r *GormFundRepository) Stats(ctx context.Context, buildingID uuid.UUID) (*treasury.FundStats, error) {
	fund, err := r.FindByBuilding(ctx, buildingID)
	if err != nil {
		return nil, err
	}

	var result struct {
		TotalIncome      int64
		TotalExpense     int64
		TotalAdjustment  int64
		TransactionCount int64
	}
	if err := dbForContext(ctx, r.db).
		Model(&models.FundTransactionModel{}).
		Select(
			"COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE 0 END), 0) as total_income, "+
				"COALESCE(SUM(CASE WHEN type = ? THEN amount ELSE 0 END), 0) as total_expense, "+
				"COALESCE(SUM(CASE WHEN type = ? AND direction = ? THEN amount WHEN type = ? THEN -amount ELSE 0 END), 0) as total_adjustment, "+
				"COUNT(*) as transaction_count",
			treasury.TransactionTypeIncome,
			treasury.TransactionTypeExpense,
			treasury.TransactionTypeAdjustment, treasury.DirectionCredit, treasury.TransactionTypeAdjustment,
		).
		Where("building_id = ?", buildingID).
		Scan(&result).Error; err != nil {
		return nil, err
	}

	stats := &treasury.FundStats{
		TotalIncome:      valueobject.NewMoney(result.TotalIncome),
		TotalExpense:     valueobject.NewMoney(result.TotalExpense),
		TotalAdjustment:  valueobject.NewMoney(result.TotalAdjustment),
		TransactionCount: result.TransactionCount,
	}
	if fund != nil {
		stats.Balance = fund.Balance
	}
	return stats, nil
}

// applyTransactionFilter applies filter options to the query
func (r *GormFundRepository) applyTransactionFilter(query *gorm.DB, filter treasury.TransactionFilter) *gorm.DB {
	query = r.applyTransactionFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, FundTransactionSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	if filter.OrderBy == "" && filter.OrderDir == "" {
		orderDir = "DESC"
	}
	return query.Order(orderBy + " " + orderDir)
}

// applyTransactionFilterWithoutPagination applies filter options without pagination
func (r *GormFundRepository) applyTransactionFilterWithoutPagination(query *gorm.DB, filter treasury.TransactionFilter) *gorm.DB {
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.FromDate != nil {
		query = query.Where("created_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("created_at <= ?", *filter.ToDate)
	}
	return query
}
