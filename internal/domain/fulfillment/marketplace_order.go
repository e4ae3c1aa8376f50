package fulfillment

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sellerhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OrderSnapshot is the latest upstream view of one marketplace order,
// already validated at the integration boundary
type OrderSnapshot struct {
	AccountID         uuid.UUID
	ExternalOrderID   string
	ShipmentID        string
	OrderStatus       OrderStatus
	ShipmentStatus    *ShipmentStatus
	ShipmentSubstatus *ShipmentSubstatus
	Tags              []string
	TotalAmount       decimal.Decimal
	Currency          string
	DateCreated       time.Time
	DateClosed        *time.Time
}

// Validate checks the fields the aggregate relies on
func (s OrderSnapshot) Validate() error {
	if s.AccountID == uuid.Nil {
		return ErrInvalidAccountID
	}
	if strings.TrimSpace(s.ExternalOrderID) == "" {
		return ErrInvalidExternalOrderID
	}
	if !s.OrderStatus.IsValid() {
		return ErrUnknownOrderStatus
	}
	return nil
}

// MarketplaceOrder is the persisted state of one marketplace order
type MarketplaceOrder struct {
	shared.AccountAggregateRoot
	ExternalOrderID   string
	ShipmentID        string
	OrderStatus       OrderStatus
	ShipmentStatus    *ShipmentStatus
	ShipmentSubstatus *ShipmentSubstatus
	Tags              []string
	Status            CanonicalStatus
	StatusManual      bool
	StatusManualAt    *time.Time
	LastSyncedAt      *time.Time
	TotalAmount       decimal.Decimal
	Currency          string
	DateCreated       time.Time
	DateClosed        *time.Time
	AdvertisingCost   decimal.Decimal
	IsAdvertisingSale bool
}

// Ensure MarketplaceOrder implements shared.AggregateRoot
var _ shared.AggregateRoot = (*MarketplaceOrder)(nil)

// NewMarketplaceOrder creates an order from its first snapshot. The canonical
// status stays empty until the first resolution is applied.
func NewMarketplaceOrder(snapshot OrderSnapshot) (*MarketplaceOrder, error) {
	if err := snapshot.Validate(); err != nil {
		return nil, err
	}
	o := &MarketplaceOrder{
		AccountAggregateRoot: shared.NewAccountAggregateRoot(snapshot.AccountID),
		ExternalOrderID:      snapshot.ExternalOrderID,
		AdvertisingCost:      decimal.Zero,
	}
	o.copySnapshot(snapshot)
	return o, nil
}

// ApplySnapshot records the latest upstream fields without touching the canonical status
func (o *MarketplaceOrder) ApplySnapshot(snapshot OrderSnapshot) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}
	if snapshot.AccountID != o.AccountID || snapshot.ExternalOrderID != o.ExternalOrderID {
		return ErrSnapshotOrderMismatch
	}
	o.copySnapshot(snapshot)
	return nil
}

func (o *MarketplaceOrder) copySnapshot(snapshot OrderSnapshot) {
	o.ShipmentID = snapshot.ShipmentID
	o.OrderStatus = snapshot.OrderStatus
	o.ShipmentStatus = snapshot.ShipmentStatus
	o.ShipmentSubstatus = snapshot.ShipmentSubstatus
	o.Tags = append([]string(nil), snapshot.Tags...)
	o.TotalAmount = snapshot.TotalAmount
	o.Currency = snapshot.Currency
	o.DateCreated = snapshot.DateCreated
	o.DateClosed = snapshot.DateClosed
}

// Signal builds the resolver input from the stored row
func (o *MarketplaceOrder) Signal() OrderStatusSignal {
	signal := OrderStatusSignal{
		OrderStatus:       o.OrderStatus,
		ShipmentStatus:    o.ShipmentStatus,
		ShipmentSubstatus: o.ShipmentSubstatus,
		Tags:              NewTags(o.Tags...),
		IsManual:          o.StatusManual,
	}
	if o.Status != "" {
		signal.CurrentStatus = StatusPtr(o.Status)
	}
	return signal
}

// ApplyResolution stores a resolver outcome. Clearing the manual flag also
// clears the manual timestamp.
func (o *MarketplaceOrder) ApplyResolution(res Resolution, at time.Time) {
	o.Status = res.Status
	o.StatusManual = res.IsManual
	if !res.IsManual {
		o.StatusManualAt = nil
	}
	o.LastSyncedAt = &at
	o.UpdatedAt = at
	if res.Changed || res.ClearManual {
		o.IncrementVersion()
	}
}

// Sync applies a snapshot and resolves the canonical status in one step
func (o *MarketplaceOrder) Sync(snapshot OrderSnapshot, at time.Time) (Resolution, error) {
	if err := o.ApplySnapshot(snapshot); err != nil {
		return Resolution{}, err
	}
	res := Resolve(o.Signal())
	o.ApplyResolution(res, at)
	return res, nil
}

// MarkReadyToPrepare pins the order to the manual preparation checkpoint.
// Only orders that have not yet progressed past it can be pinned.
func (o *MarketplaceOrder) MarkReadyToPrepare(at time.Time) error {
	if o.Status == StatusReadyToPrepare {
		o.StatusManual = true
		if o.StatusManualAt == nil {
			o.StatusManualAt = &at
		}
		return nil
	}
	if o.Status != "" && !StatusReadyToPrepare.Outranks(o.Status) {
		return ErrInvalidStatusTransition
	}
	o.Status = StatusReadyToPrepare
	o.StatusManual = true
	o.StatusManualAt = &at
	o.UpdatedAt = at
	o.IncrementVersion()
	return nil
}

// ClosedAt returns when the marketplace closed the order, if it has
func (o *MarketplaceOrder) ClosedAt() *time.Time {
	return o.DateClosed
}

// AssignAdvertisingCost overwrites the advertising cost attributed to the order
func (o *MarketplaceOrder) AssignAdvertisingCost(cost decimal.Decimal) {
	o.AdvertisingCost = cost
	o.IsAdvertisingSale = true
}
