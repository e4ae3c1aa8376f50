package advertising

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AlertType identifies what an alert is about
type AlertType string

const (
	AlertBudgetWarning AlertType = "budget_warning"
	AlertLowROAS       AlertType = "low_roas"
	AlertLowCTR        AlertType = "low_ctr"
)

// AlertSeverity orders alerts for display
type AlertSeverity string

const (
	SeverityHigh   AlertSeverity = "high"
	SeverityMedium AlertSeverity = "medium"
)

func (s AlertSeverity) order() int {
	switch s {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return 1
	default:
		return 2
	}
}

// AlertThresholds configures when alerts fire. Percentages are 0-100.
type AlertThresholds struct {
	BudgetWarningPercent  decimal.Decimal
	BudgetCriticalPercent decimal.Decimal
	MinROAS               decimal.Decimal
	MinCTRPercent         decimal.Decimal
}

// DefaultAlertThresholds returns the standard thresholds
func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{
		BudgetWarningPercent:  decimal.NewFromInt(80),
		BudgetCriticalPercent: decimal.NewFromInt(95),
		MinROAS:               decimal.NewFromInt(1),
		MinCTRPercent:         decimal.NewFromInt(1),
	}
}

// Alert is one finding about a campaign
type Alert struct {
	Type         AlertType
	Severity     AlertSeverity
	CampaignID   uuid.UUID
	CampaignName string
	Message      string
	Value        decimal.Decimal
}

// AlertReport groups the alerts of several campaigns, most severe first
type AlertReport struct {
	Total  int
	High   int
	Medium int
	Alerts []Alert
}

// BudgetUsagePercent is the window spend over the budget available in the window
func BudgetUsagePercent(c *Campaign) decimal.Decimal {
	days := c.Totals.Days()
	if days == 0 {
		return decimal.Zero
	}
	return percent(c.Totals.Spend, c.DailyBudget.Mul(decimal.NewFromInt(int64(days))))
}

// CampaignAlerts evaluates one campaign against the thresholds using its stored totals.
// Performance alerts only apply to active campaigns.
func CampaignAlerts(c *Campaign, th AlertThresholds) []Alert {
	var alerts []Alert

	if c.DailyBudget.IsPositive() {
		usage := BudgetUsagePercent(c)
		if usage.GreaterThanOrEqual(th.BudgetWarningPercent) {
			severity := SeverityMedium
			if usage.GreaterThanOrEqual(th.BudgetCriticalPercent) {
				severity = SeverityHigh
			}
			alerts = append(alerts, Alert{
				Type:         AlertBudgetWarning,
				Severity:     severity,
				CampaignID:   c.ID,
				CampaignName: c.Name,
				Message:      fmt.Sprintf("campaign %q spent %s%% of its budget", c.Name, usage.StringFixed(1)),
				Value:        usage,
			})
		}
	}

	if !c.IsActive() {
		return alerts
	}

	roas := c.Totals.ROAS
	if roas.IsPositive() && roas.LessThan(th.MinROAS) {
		alerts = append(alerts, Alert{
			Type:         AlertLowROAS,
			Severity:     SeverityHigh,
			CampaignID:   c.ID,
			CampaignName: c.Name,
			Message:      fmt.Sprintf("campaign %q has low ROAS: %sx", c.Name, roas.StringFixed(2)),
			Value:        roas,
		})
	}

	ctr := c.Totals.CTR
	if ctr.IsPositive() && ctr.LessThan(th.MinCTRPercent) {
		alerts = append(alerts, Alert{
			Type:         AlertLowCTR,
			Severity:     SeverityMedium,
			CampaignID:   c.ID,
			CampaignName: c.Name,
			Message:      fmt.Sprintf("campaign %q has low CTR: %s%%", c.Name, ctr.StringFixed(2)),
			Value:        ctr,
		})
	}

	return alerts
}

// BuildAlertReport evaluates every campaign and sorts the result by severity
func BuildAlertReport(campaigns []*Campaign, th AlertThresholds) AlertReport {
	var report AlertReport
	for _, c := range campaigns {
		report.Alerts = append(report.Alerts, CampaignAlerts(c, th)...)
	}
	sort.SliceStable(report.Alerts, func(i, j int) bool {
		return report.Alerts[i].Severity.order() < report.Alerts[j].Severity.order()
	})
	for _, a := range report.Alerts {
		switch a.Severity {
		case SeverityHigh:
			report.High++
		case SeverityMedium:
			report.Medium++
		}
	}
	report.Total = len(report.Alerts)
	return report
}
