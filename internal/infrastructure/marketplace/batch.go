package marketplace

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// SyncBatch is one account's worth of marketplace data fetched for a reconciliation run.
// Only the envelope is validated on decode; each item is validated on conversion so
// one malformed item does not reject the batch.
type SyncBatch struct {
	AccountID      string                  `json:"account_id" validate:"required,uuid"`
	Orders         []OrderEnvelope         `json:"orders"`
	Campaigns      []CampaignEnvelope      `json:"campaigns"`
	BillingPeriods []BillingSummaryPayload `json:"billing_periods"`
}

// OrderEnvelope pairs an order with its shipment, when one was fetched
type OrderEnvelope struct {
	Order    OrderPayload     `json:"order"`
	Shipment *ShipmentPayload `json:"shipment,omitempty"`
}

// CampaignEnvelope pairs a campaign with its daily metrics rows
type CampaignEnvelope struct {
	Campaign CampaignPayload `json:"campaign"`
	Metrics  []AdsMetricsRow `json:"metrics"`
}

// DecodeSyncBatch reads and validates a batch
func DecodeSyncBatch(r io.Reader) (*SyncBatch, error) {
	var batch SyncBatch
	if err := json.NewDecoder(r).Decode(&batch); err != nil {
		return nil, fmt.Errorf("marketplace: failed to decode sync batch: %w", err)
	}
	if err := defaultValidator.Struct(batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

// Account returns the parsed account ID
func (b *SyncBatch) Account() uuid.UUID {
	return uuid.MustParse(b.AccountID)
}
