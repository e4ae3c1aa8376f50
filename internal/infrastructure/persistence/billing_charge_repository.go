package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sellerhub/backend/internal/domain/billing"
	"github.com/sellerhub/backend/internal/domain/shared"
	"github.com/sellerhub/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormBillingChargeRepository implements BillingChargeRepository using GORM
type GormBillingChargeRepository struct {
	db *gorm.DB
}

// NewGormBillingChargeRepository creates a new GormBillingChargeRepository
func NewGormBillingChargeRepository(db *gorm.DB) *GormBillingChargeRepository {
	return &GormBillingChargeRepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormBillingChargeRepository) WithTx(tx *gorm.DB) *GormBillingChargeRepository {
	return &GormBillingChargeRepository{db: tx}
}

// FindByPeriod finds the charge of one account, billing period and charge type
func (r *GormBillingChargeRepository) FindByPeriod(ctx context.Context, accountID uuid.UUID, periodKey string, chargeType billing.ChargeType) (*billing.BillingPeriodCharge, error) {
	var model models.BillingChargeModel
	if err := r.db.WithContext(ctx).
		Scopes(ForAccount(accountID)).
		Where("period_key = ? AND charge_type = ?", periodKey, string(chargeType)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByAccount lists the charges of an account, most recent period first
func (r *GormBillingChargeRepository) FindByAccount(ctx context.Context, accountID uuid.UUID) ([]*billing.BillingPeriodCharge, error) {
	var chargeModels []models.BillingChargeModel
	if err := r.db.WithContext(ctx).
		Scopes(ForAccount(accountID)).
		Order("period_start DESC, charge_type ASC").
		Find(&chargeModels).Error; err != nil {
		return nil, err
	}
	charges := make([]*billing.BillingPeriodCharge, len(chargeModels))
	for i := range chargeModels {
		charges[i] = chargeModels[i].ToDomain()
	}
	return charges, nil
}

// Save creates or updates a charge
func (r *GormBillingChargeRepository) Save(ctx context.Context, charge *billing.BillingPeriodCharge) error {
	model := models.BillingChargeModelFromDomain(charge)
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormBillingChargeRepository implements BillingChargeRepository
var _ billing.BillingChargeRepository = (*GormBillingChargeRepository)(nil)
