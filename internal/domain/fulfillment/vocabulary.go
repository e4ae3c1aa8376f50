package fulfillment

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// OrderStatus is the payment lifecycle status reported by the marketplace
// ---------------------------------------------------------------------------

// OrderStatus is a closed vocabulary: values outside the table are rejected
type OrderStatus string

const (
	OrderStatusConfirmed         OrderStatus = "confirmed"
	OrderStatusPaymentRequired   OrderStatus = "payment_required"
	OrderStatusPaymentInProcess  OrderStatus = "payment_in_process"
	OrderStatusPartiallyPaid     OrderStatus = "partially_paid"
	OrderStatusPaid              OrderStatus = "paid"
	OrderStatusCancelled         OrderStatus = "cancelled"
	OrderStatusRefunded          OrderStatus = "refunded"
	OrderStatusPartiallyRefunded OrderStatus = "partially_refunded"
	OrderStatusPendingCancel     OrderStatus = "pending_cancel"
	OrderStatusInvalid           OrderStatus = "invalid"
)

var orderStatusTable = map[OrderStatus]CanonicalStatus{
	OrderStatusConfirmed:         StatusConfirmed,
	OrderStatusPaymentRequired:   StatusPending,
	OrderStatusPaymentInProcess:  StatusPending,
	OrderStatusPartiallyPaid:     StatusPartiallyPaid,
	OrderStatusPaid:              StatusPaid,
	OrderStatusCancelled:         StatusCancelled,
	OrderStatusRefunded:          StatusRefunded,
	OrderStatusPartiallyRefunded: StatusPartiallyRefunded,
	OrderStatusPendingCancel:     StatusPendingCancel,
	OrderStatusInvalid:           StatusInvalid,
}

// ParseOrderStatus validates a raw marketplace order status
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownOrderStatus, s)
	}
	return status, nil
}

// IsValid returns true if the order status is part of the marketplace vocabulary
func (s OrderStatus) IsValid() bool {
	_, ok := orderStatusTable[s]
	return ok
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// Canonical maps the order status onto the canonical set
func (s OrderStatus) Canonical() (CanonicalStatus, bool) {
	c, ok := orderStatusTable[s]
	return c, ok
}

// ---------------------------------------------------------------------------
// ShipmentStatus is the logistics lifecycle status reported by the marketplace
// ---------------------------------------------------------------------------

// ShipmentStatus is an open vocabulary. Values missing from both tables below
// are reported back as unrecognized rather than rejected.
type ShipmentStatus string

const (
	ShipmentStatusPending          ShipmentStatus = "pending"
	ShipmentStatusHandling         ShipmentStatus = "handling"
	ShipmentStatusReadyToShip      ShipmentStatus = "ready_to_ship"
	ShipmentStatusStaleReadyToShip ShipmentStatus = "stale_ready_to_ship"
	ShipmentStatusShipped          ShipmentStatus = "shipped"
	ShipmentStatusStaleShipped     ShipmentStatus = "stale_shipped"
	ShipmentStatusDelivered        ShipmentStatus = "delivered"
	ShipmentStatusNotDelivered     ShipmentStatus = "not_delivered"
	ShipmentStatusCancelled        ShipmentStatus = "cancelled"
	ShipmentStatusClosed           ShipmentStatus = "closed"
	ShipmentStatusError            ShipmentStatus = "error"
	ShipmentStatusActive           ShipmentStatus = "active"
	ShipmentStatusNotSpecified     ShipmentStatus = "not_specified"
)

var shipmentStatusTable = map[ShipmentStatus]CanonicalStatus{
	ShipmentStatusHandling:         StatusPaid,
	ShipmentStatusReadyToShip:      StatusPaid,
	ShipmentStatusStaleReadyToShip: StatusPaid,
	ShipmentStatusShipped:          StatusShipped,
	ShipmentStatusStaleShipped:     StatusShipped,
	ShipmentStatusDelivered:        StatusDelivered,
	ShipmentStatusNotDelivered:     StatusCancelled,
	ShipmentStatusCancelled:        StatusCancelled,
}

// known statuses that carry no opinion about the canonical status
var neutralShipmentStatuses = map[ShipmentStatus]struct{}{
	ShipmentStatusPending:      {},
	ShipmentStatusClosed:       {},
	ShipmentStatusError:        {},
	ShipmentStatusActive:       {},
	ShipmentStatusNotSpecified: {},
}

// String returns the string representation of ShipmentStatus
func (s ShipmentStatus) String() string {
	return string(s)
}

// Canonical maps the shipment status onto the canonical set.
// The second return value is false when the table has no opinion.
func (s ShipmentStatus) Canonical() (CanonicalStatus, bool) {
	c, ok := shipmentStatusTable[s]
	return c, ok
}

// IsKnown returns true if the value appears in the vocabulary, with or without an opinion
func (s ShipmentStatus) IsKnown() bool {
	if _, ok := shipmentStatusTable[s]; ok {
		return true
	}
	_, ok := neutralShipmentStatuses[s]
	return ok
}

// ---------------------------------------------------------------------------
// ShipmentSubstatus refines a shipment status
// ---------------------------------------------------------------------------

// ShipmentSubstatus is only meaningful under its parent shipment status
type ShipmentSubstatus string

// String returns the string representation of ShipmentSubstatus
func (s ShipmentSubstatus) String() string {
	return string(s)
}

// substatusTable is keyed by parent shipment status. A sub-status reported under
// a parent it does not belong to is treated as unrecognized.
var substatusTable = map[ShipmentStatus]map[ShipmentSubstatus]CanonicalStatus{
	ShipmentStatusReadyToShip: {
		"in_warehouse":      StatusPaid,
		"ready_to_print":    StatusPaid,
		"printed":           StatusPaid,
		"ready_to_pack":     StatusPaid,
		"ready_to_ship":     StatusPaid,
		"in_pickup_list":    StatusPaid,
		"ready_for_pickup":  StatusPaid,
		"ready_for_dropoff": StatusPaid,
		"picked_up":         StatusPaid,
		"dropped_off":       StatusPaid,
		"in_hub":            StatusPaid,
		"packed":            StatusPaid,
		"on_hold":           StatusPaid,
		"rejected_in_hub":   StatusCancelled,
	},
	ShipmentStatusShipped: {
		"shipped":             StatusShipped,
		"in_transit":          StatusShipped,
		"out_for_delivery":    StatusShipped,
		"soon_deliver":        StatusShipped,
		"at_customs":          StatusShipped,
		"delayed_at_customs":  StatusShipped,
		"left_customs":        StatusShipped,
		"returning_to_sender": StatusCancelled,
		"lost":                StatusCancelled,
		"damaged":             StatusCancelled,
		"stolen":              StatusCancelled,
		"destroyed":           StatusCancelled,
		"confiscated":         StatusCancelled,
	},
	ShipmentStatusDelivered: {
		"delivered": StatusDelivered,
		"inferred":  StatusDelivered,
	},
	ShipmentStatusNotDelivered: {
		"returning_to_sender": StatusCancelled,
		"returned":            StatusCancelled,
		"lost":                StatusCancelled,
		"damaged":             StatusCancelled,
		"destroyed":           StatusCancelled,
		"stolen":              StatusCancelled,
		"confiscated":         StatusCancelled,
	},
	ShipmentStatusCancelled: {
		"cancelled_measurement_exceeded": StatusCancelled,
		"closed_by_user":                 StatusCancelled,
		"pack_splitted":                  StatusCancelled,
	},
}

// SubstatusCanonical maps a sub-status under its parent shipment status.
// The second return value is false when the pair is not in the table.
func SubstatusCanonical(parent ShipmentStatus, sub ShipmentSubstatus) (CanonicalStatus, bool) {
	children, ok := substatusTable[parent]
	if !ok {
		return "", false
	}
	c, ok := children[sub]
	return c, ok
}

// ---------------------------------------------------------------------------
// Tags
// ---------------------------------------------------------------------------

// TagDelivered marks an order the marketplace considers delivered regardless of
// later refund activity
const TagDelivered = "delivered"

// Tags is a set of order tags
type Tags map[string]struct{}

// NewTags builds a tag set, ignoring blanks and case
func NewTags(values ...string) Tags {
	t := make(Tags, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			t[v] = struct{}{}
		}
	}
	return t
}

// Has returns true if the tag is present
func (t Tags) Has(tag string) bool {
	_, ok := t[strings.ToLower(tag)]
	return ok
}

// Slice returns the tags in no particular order
func (t Tags) Slice() []string {
	out := make([]string, 0, len(t))
	for tag := range t {
		out = append(out, tag)
	}
	return out
}
