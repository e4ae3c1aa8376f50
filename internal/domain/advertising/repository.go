package advertising

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CampaignRepository persists campaigns
type CampaignRepository interface {
	// FindByID retrieves a campaign by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Campaign, error)

	// FindByExternalID retrieves a campaign by its marketplace ID
	FindByExternalID(ctx context.Context, accountID uuid.UUID, externalID string) (*Campaign, error)

	// FindByAccount lists every campaign of an account
	FindByAccount(ctx context.Context, accountID uuid.UUID) ([]*Campaign, error)

	// Save creates or updates a campaign
	Save(ctx context.Context, campaign *Campaign) error
}

// CampaignMetricsRepository persists daily campaign records
type CampaignMetricsRepository interface {
	// Upsert stores the record of one campaign day, replacing any previous one
	Upsert(ctx context.Context, day *CampaignMetricsDay) error

	// FindWindow lists the days of a campaign within [from, to], ordered by date
	FindWindow(ctx context.Context, campaignID uuid.UUID, from, to time.Time) ([]*CampaignMetricsDay, error)
}
