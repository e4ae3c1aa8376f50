package marketplace

import (
	"github.com/google/uuid"
	"github.com/sellerhub/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// BillingSummaryPayload is the detail summary of one billing period
type BillingSummaryPayload struct {
	PeriodKey    string       `json:"key" validate:"required"`
	DateFrom     string       `json:"date_from" validate:"required,datetime=2006-01-02"`
	DateTo       string       `json:"date_to" validate:"required,datetime=2006-01-02"`
	CurrencyID   string       `json:"currency_id" validate:"omitempty,len=3"`
	BillIncludes BillIncludes `json:"bill_includes"`
}

// BillIncludes groups the charge lines of a billing summary
type BillIncludes struct {
	Charges []ChargePayload `json:"charges" validate:"dive"`
}

// ChargePayload is one charge line of a billing summary
type ChargePayload struct {
	Type   string          `json:"type" validate:"required"`
	Amount decimal.Decimal `json:"amount"`
}

// ChargeLines converts the charge lines for billing.SumCharges
func (p BillingSummaryPayload) ChargeLines() []billing.ChargeLine {
	lines := make([]billing.ChargeLine, 0, len(p.BillIncludes.Charges))
	for _, c := range p.BillIncludes.Charges {
		lines = append(lines, billing.ChargeLine{Type: c.Type, Amount: c.Amount})
	}
	return lines
}

// PADSAmount returns the total product ads charge of the period
func (p BillingSummaryPayload) PADSAmount() decimal.Decimal {
	return billing.SumCharges(p.ChargeLines(), billing.ChargeTypeProductAds)
}

// ToCharge validates the summary and builds the charge of one type for the period
func (p BillingSummaryPayload) ToCharge(accountID uuid.UUID, chargeType billing.ChargeType) (*billing.BillingPeriodCharge, error) {
	if err := defaultValidator.Struct(p); err != nil {
		return nil, err
	}
	start, end, err := billing.NewPeriodFromDates(p.DateFrom, p.DateTo)
	if err != nil {
		return nil, err
	}
	amount := billing.SumCharges(p.ChargeLines(), chargeType)
	return billing.NewBillingPeriodCharge(accountID, p.PeriodKey, chargeType, amount, p.CurrencyID, start, end)
}
