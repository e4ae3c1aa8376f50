package marketplace

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sellerhub/backend/internal/domain/fulfillment"
	"github.com/shopspring/decimal"
)

// ErrShipmentMismatch is returned when a shipment does not belong to the order it came with
var ErrShipmentMismatch = errors.New("marketplace: shipment does not belong to order")

// defaultValidator is shared by the converters; validator.Validate is safe for concurrent use
var defaultValidator = NewValidator()

// OrderPayload is an order as returned by the marketplace orders API
type OrderPayload struct {
	ID          int64           `json:"id" validate:"gt=0"`
	Status      string          `json:"status" validate:"required"`
	DateCreated time.Time       `json:"date_created" validate:"required"`
	DateClosed  *time.Time      `json:"date_closed"`
	TotalAmount decimal.Decimal `json:"total_amount" validate:"gte=0"`
	CurrencyID  string          `json:"currency_id" validate:"omitempty,len=3"`
	Tags        []string        `json:"tags"`
	Shipping    ShippingRef     `json:"shipping"`
}

// ShippingRef is the shipment reference embedded in an order
type ShippingRef struct {
	ID int64 `json:"id" validate:"gte=0"`
}

// ShipmentPayload is a shipment as returned by the marketplace shipments API
type ShipmentPayload struct {
	ID        int64   `json:"id" validate:"gt=0"`
	Status    string  `json:"status" validate:"required"`
	Substatus *string `json:"substatus"`
}

// ExternalID returns the marketplace order ID as stored locally
func (p OrderPayload) ExternalID() string {
	return strconv.FormatInt(p.ID, 10)
}

// ToOrderSnapshot validates the order, and the shipment when present, and builds
// the snapshot the reconciler consumes. An order status outside the marketplace
// vocabulary is rejected with fulfillment.ErrUnknownOrderStatus.
func (p OrderPayload) ToOrderSnapshot(accountID uuid.UUID, shipment *ShipmentPayload) (fulfillment.OrderSnapshot, error) {
	if err := defaultValidator.Struct(p); err != nil {
		return fulfillment.OrderSnapshot{}, err
	}
	status, err := fulfillment.ParseOrderStatus(p.Status)
	if err != nil {
		return fulfillment.OrderSnapshot{}, err
	}

	snapshot := fulfillment.OrderSnapshot{
		AccountID:       accountID,
		ExternalOrderID: p.ExternalID(),
		OrderStatus:     status,
		Tags:            normalizeTags(p.Tags),
		TotalAmount:     p.TotalAmount,
		Currency:        strings.ToUpper(p.CurrencyID),
		DateCreated:     p.DateCreated.UTC(),
	}
	if p.DateClosed != nil {
		closed := p.DateClosed.UTC()
		snapshot.DateClosed = &closed
	}
	if p.Shipping.ID > 0 {
		snapshot.ShipmentID = strconv.FormatInt(p.Shipping.ID, 10)
	}

	if shipment != nil {
		if err := defaultValidator.Struct(shipment); err != nil {
			return fulfillment.OrderSnapshot{}, err
		}
		if p.Shipping.ID > 0 && shipment.ID != p.Shipping.ID {
			return fulfillment.OrderSnapshot{}, ErrShipmentMismatch
		}
		snapshot.ShipmentID = strconv.FormatInt(shipment.ID, 10)
		snapshot.ShipmentStatus = fulfillment.ShipmentStatusPtr(normalize(shipment.Status))
		if shipment.Substatus != nil {
			snapshot.ShipmentSubstatus = fulfillment.SubstatusPtr(normalize(*shipment.Substatus))
		}
	}

	if err := snapshot.Validate(); err != nil {
		return fulfillment.OrderSnapshot{}, err
	}
	return snapshot, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = normalize(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
