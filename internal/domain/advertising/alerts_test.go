package advertising

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func campaignWithTotals(t *testing.T, status CampaignStatus, budget string, days int, raw RawCampaignCounters) *Campaign {
	t.Helper()
	c, err := NewCampaign(uuid.New(), "100", "Running shoes", status, dec(budget))
	require.NoError(t, err)
	c.Totals = CampaignTotals{CampaignMetricsRecord: Aggregate(raw), ObservedDays: days}
	return c
}

func TestCampaignAlerts_Budget(t *testing.T) {
	tests := []struct {
		name     string
		spend    string
		expected []AlertSeverity
	}{
		{"below warning", "70", nil},
		{"at warning", "80", []AlertSeverity{SeverityMedium}},
		{"critical", "96", []AlertSeverity{SeverityHigh}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := campaignWithTotals(t, CampaignStatusPaused, "50", 2, RawCampaignCounters{Spend: dec(tt.spend)})
			alerts := CampaignAlerts(c, DefaultAlertThresholds())

			var got []AlertSeverity
			for _, a := range alerts {
				assert.Equal(t, AlertBudgetWarning, a.Type)
				got = append(got, a.Severity)
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCampaignAlerts_Performance(t *testing.T) {
	// ctr 0.5%, roas 0.5
	raw := RawCampaignCounters{
		Impressions:  2000,
		Clicks:       10,
		Spend:        dec("20"),
		DirectItems:  1,
		DirectAmount: dec("10"),
	}

	active := campaignWithTotals(t, CampaignStatusActive, "1000", 1, raw)
	alerts := CampaignAlerts(active, DefaultAlertThresholds())
	require.Len(t, alerts, 2)
	assert.Equal(t, AlertLowROAS, alerts[0].Type)
	assert.Equal(t, SeverityHigh, alerts[0].Severity)
	assert.Equal(t, AlertLowCTR, alerts[1].Type)
	assert.Equal(t, SeverityMedium, alerts[1].Severity)

	paused := campaignWithTotals(t, CampaignStatusPaused, "1000", 1, raw)
	assert.Empty(t, CampaignAlerts(paused, DefaultAlertThresholds()))
}

func TestCampaignAlerts_ZeroMetricsDoNotAlert(t *testing.T) {
	c := campaignWithTotals(t, CampaignStatusActive, "0", 0, RawCampaignCounters{})
	assert.Empty(t, CampaignAlerts(c, DefaultAlertThresholds()))
	assert.True(t, BudgetUsagePercent(c).IsZero())
}

func TestBuildAlertReport_SortsBySeverity(t *testing.T) {
	warning := campaignWithTotals(t, CampaignStatusPaused, "100", 1, RawCampaignCounters{Spend: dec("85")})
	lowROAS := campaignWithTotals(t, CampaignStatusActive, "1000", 1, RawCampaignCounters{
		Impressions: 100, Clicks: 5, Spend: dec("10"), DirectAmount: dec("5"),
	})

	report := BuildAlertReport([]*Campaign{warning, lowROAS}, DefaultAlertThresholds())
	require.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.High)
	assert.Equal(t, 1, report.Medium)
	assert.Equal(t, AlertLowROAS, report.Alerts[0].Type)
	assert.Equal(t, AlertBudgetWarning, report.Alerts[1].Type)
	assert.True(t, report.Alerts[1].Value.Equal(decimal.NewFromInt(85)))
}
