package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sellerhub/backend/internal/domain/advertising"
	"github.com/sellerhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func observedDay(impressions, clicks int64, spend, revenue string) advertising.CampaignMetricsRecord {
	return advertising.Aggregate(advertising.RawCampaignCounters{
		Impressions:  impressions,
		Clicks:       clicks,
		Spend:        decimal.RequireFromString(spend),
		DirectItems:  2,
		DirectAmount: decimal.RequireFromString(revenue),
		ShareOfVoice: decimal.RequireFromString("12.5"),
	})
}

func TestGormCampaignRepository(t *testing.T) {
	repo := NewGormCampaignRepository(setupTestDB(t))
	ctx := context.Background()
	accountID := uuid.New()

	campaign, err := advertising.NewCampaign(accountID, "cmp-1", "Summer", advertising.CampaignStatusActive, decimal.NewFromInt(1000))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, campaign))

	other, err := advertising.NewCampaign(accountID, "cmp-2", "Autumn", advertising.CampaignStatusPaused, decimal.NewFromInt(50))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, other))

	t.Run("finds by external ID", func(t *testing.T) {
		found, err := repo.FindByExternalID(ctx, accountID, "cmp-1")
		require.NoError(t, err)
		assert.Equal(t, campaign.ID, found.ID)
		assert.Equal(t, advertising.CampaignStatusActive, found.Status)
		assert.True(t, found.DailyBudget.Equal(decimal.NewFromInt(1000)))
		assert.Nil(t, found.TotalsFrom)
	})

	t.Run("lists the account ordered by name", func(t *testing.T) {
		found, err := repo.FindByAccount(ctx, accountID)
		require.NoError(t, err)
		require.Len(t, found, 2)
		assert.Equal(t, "Autumn", found[0].Name)
		assert.Equal(t, "Summer", found[1].Name)

		none, err := repo.FindByAccount(ctx, uuid.New())
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("persists totals", func(t *testing.T) {
		totals := advertising.Summarize([]advertising.CampaignMetricsRecord{
			observedDay(1000, 10, "5", "100"),
			observedDay(3000, 30, "15", "300"),
		})
		from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
		campaign.ApplyTotals(totals, from, to)
		require.NoError(t, repo.Save(ctx, campaign))

		found, err := repo.FindByID(ctx, campaign.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(4000), found.Totals.Impressions)
		assert.Equal(t, int64(40), found.Totals.Clicks)
		assert.True(t, found.Totals.CTR.Equal(decimal.NewFromInt(1)), found.Totals.CTR.String())
		assert.True(t, found.Totals.ROAS.Equal(decimal.NewFromInt(20)), found.Totals.ROAS.String())
		assert.Equal(t, 2, found.Totals.ObservedDays)
		assert.Equal(t, 0, found.Totals.SyntheticDays)
		require.NotNil(t, found.TotalsFrom)
		assert.True(t, found.TotalsFrom.Equal(from))
		assert.Equal(t, campaign.Version, found.Version)
	})

	t.Run("missing campaign maps to ErrNotFound", func(t *testing.T) {
		_, err := repo.FindByExternalID(ctx, accountID, "cmp-404")
		assert.ErrorIs(t, err, shared.ErrNotFound)
		_, err = repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormCampaignMetricsRepository(t *testing.T) {
	repo := NewGormCampaignMetricsRepository(setupTestDB(t))
	ctx := context.Background()
	campaignID := uuid.New()

	march := func(day int) time.Time {
		return time.Date(2026, 3, day, 15, 30, 0, 0, time.UTC)
	}

	for _, d := range []int{3, 1, 2, 5} {
		require.NoError(t, repo.Upsert(ctx, advertising.NewCampaignMetricsDay(campaignID, march(d), observedDay(1000, 10, "5", "100"))))
	}
	require.NoError(t, repo.Upsert(ctx, advertising.NewCampaignMetricsDay(uuid.New(), march(2), observedDay(1, 1, "1", "1"))))

	t.Run("window is inclusive and ordered", func(t *testing.T) {
		days, err := repo.FindWindow(ctx, campaignID, march(1), march(3))
		require.NoError(t, err)
		require.Len(t, days, 3)
		for i, d := range days {
			assert.Equal(t, time.Date(2026, 3, i+1, 0, 0, 0, 0, time.UTC), d.Date)
			assert.Equal(t, campaignID, d.CampaignID)
		}
		assert.True(t, days[0].Record.ShareOfVoice.Equal(decimal.RequireFromString("12.5")))
	})

	t.Run("upsert replaces the stored day", func(t *testing.T) {
		synthetic := observedDay(500, 5, "2.5", "0")
		synthetic.IsSynthetic = true
		require.NoError(t, repo.Upsert(ctx, advertising.NewCampaignMetricsDay(campaignID, march(2), synthetic)))

		days, err := repo.FindWindow(ctx, campaignID, march(2), march(2))
		require.NoError(t, err)
		require.Len(t, days, 1)
		assert.True(t, days[0].Record.IsSynthetic)
		assert.Equal(t, int64(500), days[0].Record.Impressions)
		assert.True(t, days[0].Record.ACOS.IsZero())
	})

	t.Run("empty window", func(t *testing.T) {
		days, err := repo.FindWindow(ctx, campaignID, march(20), march(25))
		require.NoError(t, err)
		assert.Empty(t, days)
	})
}
