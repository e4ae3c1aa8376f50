package fulfillment

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownCanonicalStatus  = errors.New("fulfillment: unknown canonical status")
	ErrUnknownOrderStatus      = errors.New("fulfillment: unknown marketplace order status")
	ErrInvalidStatusTransition = errors.New("fulfillment: invalid manual status transition")
	ErrInvalidAccountID        = errors.New("fulfillment: invalid account ID")
	ErrInvalidExternalOrderID  = errors.New("fulfillment: invalid external order ID")
	ErrSnapshotOrderMismatch   = errors.New("fulfillment: snapshot belongs to a different order")
)

// ---------------------------------------------------------------------------
// CanonicalStatus
// ---------------------------------------------------------------------------

// CanonicalStatus is the single status persisted for a marketplace order
type CanonicalStatus string

const (
	StatusPending           CanonicalStatus = "PENDING"
	StatusConfirmed         CanonicalStatus = "CONFIRMED"
	StatusReadyToPrepare    CanonicalStatus = "READY_TO_PREPARE"
	StatusPaid              CanonicalStatus = "PAID"
	StatusPartiallyPaid     CanonicalStatus = "PARTIALLY_PAID"
	StatusShipped           CanonicalStatus = "SHIPPED"
	StatusDelivered         CanonicalStatus = "DELIVERED"
	StatusPartiallyRefunded CanonicalStatus = "PARTIALLY_REFUNDED"
	StatusPendingCancel     CanonicalStatus = "PENDING_CANCEL"
	StatusCancelled         CanonicalStatus = "CANCELLED"
	StatusRefunded          CanonicalStatus = "REFUNDED"
	StatusInvalid           CanonicalStatus = "INVALID"
)

// AllCanonicalStatuses returns every canonical status in hierarchy order, finals last
func AllCanonicalStatuses() []CanonicalStatus {
	return []CanonicalStatus{
		StatusPending,
		StatusConfirmed,
		StatusReadyToPrepare,
		StatusPaid,
		StatusPartiallyPaid,
		StatusShipped,
		StatusDelivered,
		StatusPartiallyRefunded,
		StatusPendingCancel,
		StatusCancelled,
		StatusRefunded,
		StatusInvalid,
	}
}

// ParseCanonicalStatus parses a persisted status value
func ParseCanonicalStatus(s string) (CanonicalStatus, error) {
	status := CanonicalStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCanonicalStatus, s)
	}
	return status, nil
}

// IsValid returns true if the status is part of the canonical set
func (s CanonicalStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusReadyToPrepare, StatusPaid,
		StatusPartiallyPaid, StatusShipped, StatusDelivered, StatusPartiallyRefunded,
		StatusPendingCancel, StatusCancelled, StatusRefunded, StatusInvalid:
		return true
	default:
		return false
	}
}

// String returns the string representation of CanonicalStatus
func (s CanonicalStatus) String() string {
	return string(s)
}

// IsFinal returns true for terminal outcomes. Final statuses are not ranked and
// always win over a manual checkpoint.
func (s CanonicalStatus) IsFinal() bool {
	switch s {
	case StatusCancelled, StatusPendingCancel, StatusRefunded,
		StatusPartiallyRefunded, StatusInvalid:
		return true
	default:
		return false
	}
}

// IsManualAssignable returns true if a seller may set the status by hand
func (s CanonicalStatus) IsManualAssignable() bool {
	return s == StatusReadyToPrepare
}

// ---------------------------------------------------------------------------
// Status hierarchy
// ---------------------------------------------------------------------------

var statusRanks = map[CanonicalStatus]int{
	StatusPending:        1,
	StatusConfirmed:      2,
	StatusReadyToPrepare: 3,
	StatusPaid:           4,
	StatusPartiallyPaid:  4,
	StatusShipped:        5,
	StatusDelivered:      6,
}

// Rank returns the position of a non-final status in the progression.
// The second return value is false for final or unknown statuses.
func (s CanonicalStatus) Rank() (int, bool) {
	rank, ok := statusRanks[s]
	return rank, ok
}

// Outranks reports whether s is strictly further along than other.
// Final statuses never outrank and are never outranked.
func (s CanonicalStatus) Outranks(other CanonicalStatus) bool {
	a, okA := s.Rank()
	b, okB := other.Rank()
	if !okA || !okB {
		return false
	}
	return a > b
}
