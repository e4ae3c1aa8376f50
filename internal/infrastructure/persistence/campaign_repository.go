package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sellerhub/backend/internal/domain/advertising"
	"github.com/sellerhub/backend/internal/domain/shared"
	"github.com/sellerhub/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCampaignRepository implements CampaignRepository using GORM
type GormCampaignRepository struct {
	db *gorm.DB
}

// NewGormCampaignRepository creates a new GormCampaignRepository
func NewGormCampaignRepository(db *gorm.DB) *GormCampaignRepository {
	return &GormCampaignRepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormCampaignRepository) WithTx(tx *gorm.DB) *GormCampaignRepository {
	return &GormCampaignRepository{db: tx}
}

// FindByID finds a campaign by its ID
func (r *GormCampaignRepository) FindByID(ctx context.Context, id uuid.UUID) (*advertising.Campaign, error) {
	var model models.CampaignModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByExternalID finds a campaign by its marketplace ID
func (r *GormCampaignRepository) FindByExternalID(ctx context.Context, accountID uuid.UUID, externalID string) (*advertising.Campaign, error) {
	var model models.CampaignModel
	if err := r.db.WithContext(ctx).
		Scopes(ForAccount(accountID)).
		Where("external_campaign_id = ?", externalID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByAccount lists every campaign of an account ordered by name
func (r *GormCampaignRepository) FindByAccount(ctx context.Context, accountID uuid.UUID) ([]*advertising.Campaign, error) {
	var campaignModels []models.CampaignModel
	if err := r.db.WithContext(ctx).
		Scopes(ForAccount(accountID)).
		Order("name ASC, external_campaign_id ASC").
		Find(&campaignModels).Error; err != nil {
		return nil, err
	}
	campaigns := make([]*advertising.Campaign, len(campaignModels))
	for i := range campaignModels {
		campaigns[i] = campaignModels[i].ToDomain()
	}
	return campaigns, nil
}

// Save creates or updates a campaign
func (r *GormCampaignRepository) Save(ctx context.Context, campaign *advertising.Campaign) error {
	model := models.CampaignModelFromDomain(campaign)
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormCampaignRepository implements CampaignRepository
var _ advertising.CampaignRepository = (*GormCampaignRepository)(nil)

// metricColumns are replaced when a campaign day is stored again
var metricColumns = []string{
	"impressions", "clicks", "spend",
	"direct_items", "indirect_items", "advertising_items",
	"direct_units", "indirect_units",
	"direct_amount", "indirect_amount", "total_revenue",
	"organic_items", "organic_units", "organic_amount",
	"share_of_voice", "ctr", "cpc", "cvr", "acos", "roas",
	"is_synthetic", "updated_at",
}

// GormCampaignMetricsRepository implements CampaignMetricsRepository using GORM
type GormCampaignMetricsRepository struct {
	db *gorm.DB
}

// NewGormCampaignMetricsRepository creates a new GormCampaignMetricsRepository
func NewGormCampaignMetricsRepository(db *gorm.DB) *GormCampaignMetricsRepository {
	return &GormCampaignMetricsRepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormCampaignMetricsRepository) WithTx(tx *gorm.DB) *GormCampaignMetricsRepository {
	return &GormCampaignMetricsRepository{db: tx}
}

// Upsert stores one campaign day, replacing the metrics of an existing row
// for the same campaign and date
func (r *GormCampaignMetricsRepository) Upsert(ctx context.Context, day *advertising.CampaignMetricsDay) error {
	model := models.CampaignMetricDayModelFromDomain(day)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "campaign_id"}, {Name: "metric_date"}},
			DoUpdates: clause.AssignmentColumns(metricColumns),
		}).
		Create(model).Error
}

// FindWindow lists the days of a campaign within [from, to], ordered by date
func (r *GormCampaignMetricsRepository) FindWindow(ctx context.Context, campaignID uuid.UUID, from, to time.Time) ([]*advertising.CampaignMetricsDay, error) {
	var dayModels []models.CampaignMetricDayModel
	if err := r.db.WithContext(ctx).
		Where("campaign_id = ? AND metric_date >= ? AND metric_date <= ?",
			campaignID, advertising.TruncateDay(from), advertising.TruncateDay(to)).
		Order("metric_date ASC").
		Find(&dayModels).Error; err != nil {
		return nil, err
	}
	days := make([]*advertising.CampaignMetricsDay, len(dayModels))
	for i := range dayModels {
		days[i] = dayModels[i].ToDomain()
	}
	return days, nil
}

// Ensure GormCampaignMetricsRepository implements CampaignMetricsRepository
var _ advertising.CampaignMetricsRepository = (*GormCampaignMetricsRepository)(nil)
