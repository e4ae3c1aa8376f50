package advertising

// CampaignTotals rolls up a window of daily records
type CampaignTotals struct {
	CampaignMetricsRecord
	ObservedDays  int
	SyntheticDays int
}

// Days returns the number of days in the window
func (t CampaignTotals) Days() int {
	return t.ObservedDays + t.SyntheticDays
}

// IsMixed returns true when the window holds both observed and synthetic days
func (t CampaignTotals) IsMixed() bool {
	return t.ObservedDays > 0 && t.SyntheticDays > 0
}

// Summarize sums the counters of every record and recomputes the ratios.
// The totals are flagged synthetic as soon as one day is synthetic, so an
// estimated day can never hide inside an observed total. Share of voice is not
// additive and is left at zero.
func Summarize(records []CampaignMetricsRecord) CampaignTotals {
	var sum RawCampaignCounters
	var totals CampaignTotals

	for _, r := range records {
		sum.Impressions += r.Impressions
		sum.Clicks += r.Clicks
		sum.Spend = sum.Spend.Add(r.Spend)
		sum.DirectItems += r.DirectItems
		sum.IndirectItems += r.IndirectItems
		sum.DirectUnits += r.DirectUnits
		sum.IndirectUnits += r.IndirectUnits
		sum.DirectAmount = sum.DirectAmount.Add(r.DirectAmount)
		sum.IndirectAmount = sum.IndirectAmount.Add(r.IndirectAmount)
		sum.OrganicItems += r.OrganicItems
		sum.OrganicUnits += r.OrganicUnits
		sum.OrganicAmount = sum.OrganicAmount.Add(r.OrganicAmount)

		if r.IsSynthetic {
			totals.SyntheticDays++
		} else {
			totals.ObservedDays++
		}
	}

	totals.CampaignMetricsRecord = Aggregate(sum)
	totals.IsSynthetic = totals.SyntheticDays > 0
	return totals
}

// SummarizeStrict is Summarize for consumers that cannot accept a mixed window
func SummarizeStrict(records []CampaignMetricsRecord) (CampaignTotals, error) {
	totals := Summarize(records)
	if totals.IsMixed() {
		return totals, ErrMixedWindow
	}
	return totals, nil
}
