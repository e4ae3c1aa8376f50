package fulfillment

// OrderStatusSignal is one upstream snapshot of an order together with the
// locally persisted state the manual-override step needs
type OrderStatusSignal struct {
	OrderStatus       OrderStatus
	ShipmentStatus    *ShipmentStatus
	ShipmentSubstatus *ShipmentSubstatus
	Tags              Tags
	CurrentStatus     *CanonicalStatus
	IsManual          bool
}

// Validate rejects signals that must not reach the resolver
func (s OrderStatusSignal) Validate() error {
	if !s.OrderStatus.IsValid() {
		return ErrUnknownOrderStatus
	}
	if s.CurrentStatus != nil && !s.CurrentStatus.IsValid() {
		return ErrUnknownCanonicalStatus
	}
	return nil
}

// shipmentStatus returns the shipment status or "" when absent
func (s OrderStatusSignal) shipmentStatus() ShipmentStatus {
	if s.ShipmentStatus == nil {
		return ""
	}
	return *s.ShipmentStatus
}

// shipmentSubstatus returns the sub-status or "" when absent
func (s OrderStatusSignal) shipmentSubstatus() ShipmentSubstatus {
	if s.ShipmentSubstatus == nil {
		return ""
	}
	return *s.ShipmentSubstatus
}

// ShipmentStatusPtr is a convenience for building signals from string literals
func ShipmentStatusPtr(s string) *ShipmentStatus {
	if s == "" {
		return nil
	}
	v := ShipmentStatus(s)
	return &v
}

// SubstatusPtr is a convenience for building signals from string literals
func SubstatusPtr(s string) *ShipmentSubstatus {
	if s == "" {
		return nil
	}
	v := ShipmentSubstatus(s)
	return &v
}

// StatusPtr returns a pointer to a canonical status
func StatusPtr(s CanonicalStatus) *CanonicalStatus {
	return &s
}
