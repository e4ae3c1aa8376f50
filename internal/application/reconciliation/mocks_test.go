package reconciliation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sellerhub/backend/internal/domain/advertising"
	"github.com/sellerhub/backend/internal/domain/billing"
	"github.com/sellerhub/backend/internal/domain/fulfillment"
	"github.com/sellerhub/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// ---------------------------------------------------------------------------
// fakeOrderRepo is an in-memory fulfillment.MarketplaceOrderRepository.
// InTransaction restores the previous state when fn fails.
// ---------------------------------------------------------------------------

type fakeOrderRepo struct {
	mu      sync.Mutex
	orders  map[uuid.UUID]fulfillment.MarketplaceOrder
	saveErr    error
	saves      int
	costWrites int

	// afterFindClosed runs once FindClosedBetween has copied the orders
	afterFindClosed func()
}

func newFakeOrderRepo(orders ...*fulfillment.MarketplaceOrder) *fakeOrderRepo {
	r := &fakeOrderRepo{orders: make(map[uuid.UUID]fulfillment.MarketplaceOrder)}
	for _, o := range orders {
		r.orders[o.ID] = *o
	}
	return r
}

func (r *fakeOrderRepo) get(id uuid.UUID) fulfillment.MarketplaceOrder {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.orders[id]
}

func (r *fakeOrderRepo) byExternalID(accountID uuid.UUID, externalID string) *fulfillment.MarketplaceOrder {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.AccountID == accountID && o.ExternalOrderID == externalID {
			order := o
			return &order
		}
	}
	return nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*fulfillment.MarketplaceOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &o, nil
}

func (r *fakeOrderRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*fulfillment.MarketplaceOrder, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeOrderRepo) FindByExternalID(_ context.Context, accountID uuid.UUID, externalID string) (*fulfillment.MarketplaceOrder, error) {
	if o := r.byExternalID(accountID, externalID); o != nil {
		return o, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeOrderRepo) FindByExternalIDForUpdate(ctx context.Context, accountID uuid.UUID, externalID string) (*fulfillment.MarketplaceOrder, error) {
	return r.FindByExternalID(ctx, accountID, externalID)
}

func (r *fakeOrderRepo) FindClosedBetween(_ context.Context, accountID uuid.UUID, start, end time.Time) ([]fulfillment.MarketplaceOrder, error) {
	r.mu.Lock()
	var out []fulfillment.MarketplaceOrder
	for _, o := range r.orders {
		if o.AccountID == accountID && o.DateClosed != nil && !o.DateClosed.Before(start) && !o.DateClosed.After(end) {
			out = append(out, o)
		}
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].DateClosed.Before(*out[j].DateClosed) })
	if r.afterFindClosed != nil {
		r.afterFindClosed()
	}
	return out, nil
}

func (r *fakeOrderRepo) FindAdvertisingSales(_ context.Context, accountID uuid.UUID, start, end time.Time) ([]fulfillment.MarketplaceOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []fulfillment.MarketplaceOrder
	for _, o := range r.orders {
		if o.AccountID == accountID && o.IsAdvertisingSale && !o.DateCreated.Before(start) && !o.DateCreated.After(end) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DateCreated.Before(out[j].DateCreated) })
	return out, nil
}

func (r *fakeOrderRepo) Save(_ context.Context, order *fulfillment.MarketplaceOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves++
	r.orders[order.ID] = *order
	return nil
}

func (r *fakeOrderRepo) SaveBatch(ctx context.Context, orders []*fulfillment.MarketplaceOrder) error {
	for _, o := range orders {
		if err := r.Save(ctx, o); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeOrderRepo) AssignAdvertisingCosts(_ context.Context, orders []*fulfillment.MarketplaceOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.costWrites++
	for _, o := range orders {
		stored, ok := r.orders[o.ID]
		if !ok {
			return shared.ErrNotFound
		}
		stored.AdvertisingCost = o.AdvertisingCost
		stored.IsAdvertisingSale = o.IsAdvertisingSale
		r.orders[o.ID] = stored
	}
	return nil
}

func (r *fakeOrderRepo) InTransaction(_ context.Context, fn func(repo fulfillment.MarketplaceOrderRepository) error) error {
	r.mu.Lock()
	backup := make(map[uuid.UUID]fulfillment.MarketplaceOrder, len(r.orders))
	for k, v := range r.orders {
		backup[k] = v
	}
	r.mu.Unlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.orders = backup
		r.mu.Unlock()
		return err
	}
	return nil
}

// ---------------------------------------------------------------------------
// mockCampaignRepo is a mock implementation of advertising.CampaignRepository
// ---------------------------------------------------------------------------

type mockCampaignRepo struct {
	mock.Mock
}

func (m *mockCampaignRepo) FindByID(ctx context.Context, id uuid.UUID) (*advertising.Campaign, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*advertising.Campaign), args.Error(1)
}

func (m *mockCampaignRepo) FindByExternalID(ctx context.Context, accountID uuid.UUID, externalID string) (*advertising.Campaign, error) {
	args := m.Called(ctx, accountID, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*advertising.Campaign), args.Error(1)
}

func (m *mockCampaignRepo) FindByAccount(ctx context.Context, accountID uuid.UUID) ([]*advertising.Campaign, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*advertising.Campaign), args.Error(1)
}

func (m *mockCampaignRepo) Save(ctx context.Context, campaign *advertising.Campaign) error {
	args := m.Called(ctx, campaign)
	return args.Error(0)
}

// ---------------------------------------------------------------------------
// mockCampaignMetricsRepo is a mock implementation of advertising.CampaignMetricsRepository
// ---------------------------------------------------------------------------

type mockCampaignMetricsRepo struct {
	mock.Mock
}

func (m *mockCampaignMetricsRepo) Upsert(ctx context.Context, day *advertising.CampaignMetricsDay) error {
	args := m.Called(ctx, day)
	return args.Error(0)
}

func (m *mockCampaignMetricsRepo) FindWindow(ctx context.Context, campaignID uuid.UUID, from, to time.Time) ([]*advertising.CampaignMetricsDay, error) {
	args := m.Called(ctx, campaignID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*advertising.CampaignMetricsDay), args.Error(1)
}

// ---------------------------------------------------------------------------
// mockBillingChargeRepo is a mock implementation of billing.BillingChargeRepository
// ---------------------------------------------------------------------------

type mockBillingChargeRepo struct {
	mock.Mock
}

func (m *mockBillingChargeRepo) FindByPeriod(ctx context.Context, accountID uuid.UUID, periodKey string, chargeType billing.ChargeType) (*billing.BillingPeriodCharge, error) {
	args := m.Called(ctx, accountID, periodKey, chargeType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.BillingPeriodCharge), args.Error(1)
}

func (m *mockBillingChargeRepo) FindByAccount(ctx context.Context, accountID uuid.UUID) ([]*billing.BillingPeriodCharge, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*billing.BillingPeriodCharge), args.Error(1)
}

func (m *mockBillingChargeRepo) Save(ctx context.Context, charge *billing.BillingPeriodCharge) error {
	args := m.Called(ctx, charge)
	return args.Error(0)
}
