package fulfillment

// ResolutionSource identifies which signal decided the resolved status
type ResolutionSource string

const (
	SourceSubstatus      ResolutionSource = "substatus"
	SourceShipmentStatus ResolutionSource = "shipment_status"
	SourceOrderStatus    ResolutionSource = "order_status"
	SourceTagOverride    ResolutionSource = "tag_override"
	SourceManual         ResolutionSource = "manual"
	SourceDefault        ResolutionSource = "default"
)

// String returns the string representation of ResolutionSource
func (s ResolutionSource) String() string {
	return string(s)
}

// VocabularyKind identifies which vocabulary an unrecognized value came from
type VocabularyKind string

const (
	VocabularyShipmentStatus VocabularyKind = "shipment_status"
	VocabularySubstatus      VocabularyKind = "shipment_substatus"
)

// UnrecognizedSignal is an upstream value the vocabulary tables do not know.
// It never fails resolution; callers log it so the tables can be extended.
type UnrecognizedSignal struct {
	Kind   VocabularyKind
	Value  string
	Parent string
}

// Resolution is the outcome of resolving one OrderStatusSignal
type Resolution struct {
	// Status is the canonical status to persist
	Status CanonicalStatus
	// IsManual is the manual flag to persist
	IsManual bool
	// ClearManual is true when a manual status was replaced by a natural one
	ClearManual bool
	// Changed is true when Status differs from the signal's current status
	Changed bool
	// Source names the signal that decided Status
	Source ResolutionSource
	// Natural is the status computed from upstream signals alone, tag override included
	Natural CanonicalStatus
	// Unrecognized lists shipment vocabulary the tables did not cover
	Unrecognized []UnrecognizedSignal
}

// Resolve merges an order snapshot into one canonical status.
// It is pure, deterministic and total: unknown vocabulary never fails, it only
// falls through to the next signal and is reported in Resolution.Unrecognized.
func Resolve(signal OrderStatusSignal) Resolution {
	natural, source, unrecognized := naturalStatus(signal)

	if natural == StatusPartiallyRefunded && signal.Tags.Has(TagDelivered) {
		natural = StatusDelivered
		source = SourceTagOverride
	}

	status, isManual := ReconcileManual(signal.CurrentStatus, signal.IsManual, natural)
	if isManual {
		source = SourceManual
	}

	res := Resolution{
		Status:       status,
		IsManual:     isManual,
		ClearManual:  signal.IsManual && !isManual,
		Source:       source,
		Natural:      natural,
		Unrecognized: unrecognized,
	}
	res.Changed = signal.CurrentStatus == nil || *signal.CurrentStatus != status
	return res
}

// naturalStatus applies the fixed priority: sub-status, shipment status, order status, PENDING
func naturalStatus(signal OrderStatusSignal) (CanonicalStatus, ResolutionSource, []UnrecognizedSignal) {
	var unrecognized []UnrecognizedSignal
	shipment := signal.shipmentStatus()
	sub := signal.shipmentSubstatus()

	if sub != "" {
		if status, ok := SubstatusCanonical(shipment, sub); ok {
			return status, SourceSubstatus, nil
		}
		unrecognized = append(unrecognized, UnrecognizedSignal{
			Kind:   VocabularySubstatus,
			Value:  sub.String(),
			Parent: shipment.String(),
		})
	}

	if shipment != "" {
		if status, ok := shipment.Canonical(); ok {
			return status, SourceShipmentStatus, unrecognized
		}
		if !shipment.IsKnown() {
			unrecognized = append(unrecognized, UnrecognizedSignal{
				Kind:  VocabularyShipmentStatus,
				Value: shipment.String(),
			})
		}
	}

	if status, ok := signal.OrderStatus.Canonical(); ok {
		return status, SourceOrderStatus, unrecognized
	}

	return StatusPending, SourceDefault, unrecognized
}

// ReconcileManual decides between a persisted status and a freshly computed natural
// status. It returns the status to persist and the new manual flag.
//
// A manual status survives a natural status that is not further along. A final
// natural status, or one that outranks the manual status, replaces it and clears
// the flag.
func ReconcileManual(current *CanonicalStatus, isManual bool, natural CanonicalStatus) (CanonicalStatus, bool) {
	if !isManual || current == nil {
		return natural, false
	}
	if natural.IsFinal() {
		return natural, false
	}
	if current.IsFinal() {
		return *current, true
	}
	if natural.Outranks(*current) {
		return natural, false
	}
	return *current, true
}
