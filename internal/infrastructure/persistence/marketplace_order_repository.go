package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sellerhub/backend/internal/domain/fulfillment"
	"github.com/sellerhub/backend/internal/domain/shared"
	"github.com/sellerhub/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const orderBatchSize = 100

// GormMarketplaceOrderRepository implements MarketplaceOrderRepository using GORM
type GormMarketplaceOrderRepository struct {
	db *gorm.DB
}

// NewGormMarketplaceOrderRepository creates a new GormMarketplaceOrderRepository
func NewGormMarketplaceOrderRepository(db *gorm.DB) *GormMarketplaceOrderRepository {
	return &GormMarketplaceOrderRepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormMarketplaceOrderRepository) WithTx(tx *gorm.DB) *GormMarketplaceOrderRepository {
	return &GormMarketplaceOrderRepository{db: tx}
}

// FindByID finds an order by its ID
func (r *GormMarketplaceOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*fulfillment.MarketplaceOrder, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

// FindByIDForUpdate finds an order by ID and locks the row (SELECT ... FOR UPDATE)
func (r *GormMarketplaceOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*fulfillment.MarketplaceOrder, error) {
	return r.first(r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id))
}

// FindByExternalID finds an order by its marketplace order ID
func (r *GormMarketplaceOrderRepository) FindByExternalID(ctx context.Context, accountID uuid.UUID, externalOrderID string) (*fulfillment.MarketplaceOrder, error) {
	return r.first(r.db.WithContext(ctx).
		Scopes(ForAccount(accountID)).
		Where("external_order_id = ?", externalOrderID))
}

// FindByExternalIDForUpdate finds an order by its marketplace order ID and locks the row
func (r *GormMarketplaceOrderRepository) FindByExternalIDForUpdate(ctx context.Context, accountID uuid.UUID, externalOrderID string) (*fulfillment.MarketplaceOrder, error) {
	return r.first(r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Scopes(ForAccount(accountID)).
		Where("external_order_id = ?", externalOrderID))
}

func (r *GormMarketplaceOrderRepository) first(query *gorm.DB) (*fulfillment.MarketplaceOrder, error) {
	var model models.MarketplaceOrderModel
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindClosedBetween lists orders closed within [start, end], oldest first
func (r *GormMarketplaceOrderRepository) FindClosedBetween(ctx context.Context, accountID uuid.UUID, start, end time.Time) ([]fulfillment.MarketplaceOrder, error) {
	return r.find(r.db.WithContext(ctx).
		Scopes(ForAccount(accountID)).
		Where("date_closed IS NOT NULL AND date_closed >= ? AND date_closed <= ?", start.UTC(), end.UTC()).
		Order("date_closed ASC"))
}

// FindAdvertisingSales lists orders carrying an advertising cost, created within [start, end]
func (r *GormMarketplaceOrderRepository) FindAdvertisingSales(ctx context.Context, accountID uuid.UUID, start, end time.Time) ([]fulfillment.MarketplaceOrder, error) {
	return r.find(r.db.WithContext(ctx).
		Scopes(ForAccount(accountID)).
		Where("is_advertising_sale = ? AND date_created >= ? AND date_created <= ?", true, start.UTC(), end.UTC()).
		Order("date_created ASC"))
}

func (r *GormMarketplaceOrderRepository) find(query *gorm.DB) ([]fulfillment.MarketplaceOrder, error) {
	var orderModels []models.MarketplaceOrderModel
	if err := query.Find(&orderModels).Error; err != nil {
		return nil, err
	}
	orders := make([]fulfillment.MarketplaceOrder, len(orderModels))
	for i := range orderModels {
		orders[i] = *orderModels[i].ToDomain()
	}
	return orders, nil
}

// Save creates or updates an order
func (r *GormMarketplaceOrderRepository) Save(ctx context.Context, order *fulfillment.MarketplaceOrder) error {
	model := models.MarketplaceOrderModelFromDomain(order)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveBatch creates or updates several orders in chunks
func (r *GormMarketplaceOrderRepository) SaveBatch(ctx context.Context, orders []*fulfillment.MarketplaceOrder) error {
	if len(orders) == 0 {
		return nil
	}
	orderModels := make([]*models.MarketplaceOrderModel, len(orders))
	for i, o := range orders {
		orderModels[i] = models.MarketplaceOrderModelFromDomain(o)
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		CreateInBatches(orderModels, orderBatchSize).Error
}

// AssignAdvertisingCosts updates the advertising_cost, is_advertising_sale and
// updated_at columns only. Orders sharing a cost are written in one statement
// per chunk.
func (r *GormMarketplaceOrderRepository) AssignAdvertisingCosts(ctx context.Context, orders []*fulfillment.MarketplaceOrder) error {
	type assignment struct {
		cost string
		sale bool
	}

	var (
		keys   []assignment
		costs  = make(map[assignment]decimal.Decimal)
		groups = make(map[assignment][]uuid.UUID)
	)
	for _, o := range orders {
		k := assignment{cost: o.AdvertisingCost.String(), sale: o.IsAdvertisingSale}
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
			costs[k] = o.AdvertisingCost
		}
		groups[k] = append(groups[k], o.ID)
	}

	now := r.db.NowFunc()
	for _, k := range keys {
		ids := groups[k]
		for start := 0; start < len(ids); start += orderBatchSize {
			end := min(start+orderBatchSize, len(ids))
			err := r.db.WithContext(ctx).
				Model(&models.MarketplaceOrderModel{}).
				Where("id IN ?", ids[start:end]).
				Updates(map[string]any{
					"advertising_cost":    costs[k],
					"is_advertising_sale": k.sale,
					"updated_at":          now,
				}).Error
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// InTransaction runs fn with a repository bound to a single transaction
func (r *GormMarketplaceOrderRepository) InTransaction(ctx context.Context, fn func(repo fulfillment.MarketplaceOrderRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}

// Ensure GormMarketplaceOrderRepository implements MarketplaceOrderRepository
var _ fulfillment.MarketplaceOrderRepository = (*GormMarketplaceOrderRepository)(nil)
