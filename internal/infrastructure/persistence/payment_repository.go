package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/bms/backend/internal/domain/billing"
	"github.com/bms/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentRepository implements billing.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	var model models.PaymentModel
	if err := dbForContext(ctx, r.db).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForBuilding finds a payment by ID scoped to a building
func (r *GormPaymentRepository) FindByIDForBuilding(ctx context.Context, buildingID, id uuid.UUID) (*billing.Payment, error) {
	var model models.PaymentModel
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

// FindAllForBuilding finds payments for a building with filtering
func (r *GormPaymentRepository) FindAllForBuilding(ctx context.Context, buildingID uuid.UUID, filter billing.PaymentFilter) ([]billing.Payment, error) {
	var paymentModels []models.PaymentModel
	query := dbForContext(ctx, r.db).Model(&models.PaymentModel{}).
		Where("building_id = ?", buildingID)
	query = r.applyPaymentFilter(query, filter)

	if err := query.Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	payments := make([]billing.Payment, len(paymentModels))
	for i, model := range paymentModels {
		payments[i] = *model.ToDomain()
	}
	return payments, nil
}

// CountForBuilding counts payments for a building
func (r *GormPaymentRepository) CountForBuilding(ctx context.Context, buildingID uuid.UUID, filter billing.PaymentFilter) (int64, error) {
	var count int64
	query := dbForContext(ctx, r.db).Model(&models.PaymentModel{}).
		Where("building_id = ?", buildingID)
	query = r.applyPaymentFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByCharge counts payments recorded against a charge
func (r *GormPaymentRepository) CountByCharge(ctx context.Context, chargeID uuid.UUID) (int64, error) {
	var count int64
	if err := dbForContext(ctx, r.db).
		Model(&models.PaymentModel{}).
		Where("charge_id = ?", chargeID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create persists a payment
func (r *GormPaymentRepository) Create(ctx context.Context, payment *billing.Payment) error {
	model := models.PaymentModelFromDomain(payment)
	return dbForContext(ctx, r.db).Create(model).Error
}

// CreateBatch persists several payments in one insert
func (r *GormPaymentRepository) CreateBatch(ctx context.Context, payments []*billing.Payment) error {
	if len(payments) == 0 {
		return nil
	}
	paymentModels := make([]*models.PaymentModel, len(payments))
	for i, payment := range payments {
		paymentModels[i] = models.PaymentModelFromDomain(payment)
	}
	return dbForContext(ctx, r.db).Create(paymentModels).Error
}

// ExistsByReference checks if a payment with the reference number exists
func (r *GormPaymentRepository) ExistsByReference(ctx context.Context, referenceNumber string) (bool, error) {
	var count int64
	if err := dbForContext(ctx, r.db).
		Model(&models.PaymentModel{}).
		Where("reference_number = ?", referenceNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkDecidedIfPending flips a PENDING payment to the decided status in a
// single conditional UPDATE. RowsAffected reports whether this caller won;
// a concurrent verifier that already decided the payment leaves zero rows.
func (r *GormPaymentRepository) MarkDecidedIfPending(ctx context.Context, id uuid.UUID, decision billing.PaymentDecision) (bool, error) {
	result := dbForContext(ctx, r.db).
		Model(&models.PaymentModel{}).
		Where("id = ? AND status = ?", id, billing.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":            decision.Status.String(),
			"verified_by":       decision.DecidedBy,
			"verified_at":       decision.DecidedAt,
			"verification_note": decision.Note,
			"updated_at":        time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// applyPaymentFilter applies filter options to the query
func (r *GormPaymentRepository) applyPaymentFilter(query *gorm.DB, filter billing.PaymentFilter) *gorm.DB {
	query = r.applyPaymentFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, PaymentSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	if filter.OrderBy == "" && filter.OrderDir == "" {
		orderDir = "DESC"
	}
	return query.Order(orderBy + " " + orderDir)
}

// applyPaymentFilterWithoutPagination applies filter options without pagination
func (r *GormPaymentRepository) applyPaymentFilterWithoutPagination(query *gorm.DB, filter billing.PaymentFilter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("reference_number ILIKE ?", searchPattern)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Method != nil {
		query = query.Where("method = ?", *filter.Method)
	}
	if filter.UnitID != nil {
		query = query.Where("unit_id = ?", *filter.UnitID)
	}
	if filter.ChargeID != nil {
		query = query.Where("charge_id = ?", *filter.ChargeID)
	}
	if filter.FromDate != nil {
		query = query.Where("created_at >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("created_at <= ?", *filter.ToDate)
	}
	return query
}
