package fulfillment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrderStatus(t *testing.T) {
	tests := []struct {
		raw      string
		expected OrderStatus
		wantErr  bool
	}{
		{"paid", OrderStatusPaid, false},
		{"PAID", OrderStatusPaid, false},
		{" payment_in_process ", OrderStatusPaymentInProcess, false},
		{"partially_refunded", OrderStatusPartiallyRefunded, false},
		{"shipped", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseOrderStatus(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownOrderStatus)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestOrderStatus_Canonical(t *testing.T) {
	tests := map[OrderStatus]CanonicalStatus{
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
	for raw, expected := range tests {
		got, ok := raw.Canonical()
		assert.True(t, ok, raw.String())
		assert.Equal(t, expected, got, raw.String())
	}
}

func TestShipmentStatus_Canonical(t *testing.T) {
	tests := []struct {
		raw      ShipmentStatus
		expected CanonicalStatus
		ok       bool
		known    bool
	}{
		{ShipmentStatusHandling, StatusPaid, true, true},
		{ShipmentStatusReadyToShip, StatusPaid, true, true},
		{ShipmentStatusShipped, StatusShipped, true, true},
		{ShipmentStatusDelivered, StatusDelivered, true, true},
		{ShipmentStatusNotDelivered, StatusCancelled, true, true},
		{ShipmentStatusCancelled, StatusCancelled, true, true},
		{ShipmentStatusPending, "", false, true},
		{ShipmentStatusNotSpecified, "", false, true},
		{ShipmentStatus("teleported"), "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw.String(), func(t *testing.T) {
			got, ok := tt.raw.Canonical()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.known, tt.raw.IsKnown())
		})
	}
}

func TestSubstatusCanonical(t *testing.T) {
	tests := []struct {
		name     string
		parent   ShipmentStatus
		sub      ShipmentSubstatus
		expected CanonicalStatus
		ok       bool
	}{
		{"printed label", ShipmentStatusReadyToShip, "printed", StatusPaid, true},
		{"rejected in hub", ShipmentStatusReadyToShip, "rejected_in_hub", StatusCancelled, true},
		{"out for delivery", ShipmentStatusShipped, "out_for_delivery", StatusShipped, true},
		{"lost in transit", ShipmentStatusShipped, "lost", StatusCancelled, true},
		{"inferred delivery", ShipmentStatusDelivered, "inferred", StatusDelivered, true},
		{"returned", ShipmentStatusNotDelivered, "returned", StatusCancelled, true},
		{"pack splitted", ShipmentStatusCancelled, "pack_splitted", StatusCancelled, true},
		{"wrong parent", ShipmentStatusDelivered, "out_for_delivery", "", false},
		{"no parent", "", "printed", "", false},
		{"unknown sub", ShipmentStatusShipped, "abducted", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SubstatusCanonical(tt.parent, tt.sub)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNoVocabularyMapsToReadyToPrepare(t *testing.T) {
	for _, c := range orderStatusTable {
		assert.NotEqual(t, StatusReadyToPrepare, c)
	}
	for _, c := range shipmentStatusTable {
		assert.NotEqual(t, StatusReadyToPrepare, c)
	}
	for _, children := range substatusTable {
		for _, c := range children {
			assert.NotEqual(t, StatusReadyToPrepare, c)
		}
	}
}

func TestTags(t *testing.T) {
	tags := NewTags("Delivered", " paid ", "")
	assert.True(t, tags.Has(TagDelivered))
	assert.True(t, tags.Has("paid"))
	assert.False(t, tags.Has(""))
	assert.Len(t, tags.Slice(), 2)

	var empty Tags
	assert.False(t, empty.Has(TagDelivered))
}
