package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/sellerhub/backend/internal/domain/shared"
)

// BaseModel holds the columns of shared.BaseEntity
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to a BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from a BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// AggregateModel adds the optimistic version column. Models embed it and
// declare their own account_id column so it can join composite indexes.
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// FromDomainAccountAggregateRoot copies the aggregate root columns and returns the account
func (m *AggregateModel) FromDomainAccountAggregateRoot(a shared.AccountAggregateRoot) uuid.UUID {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Version = a.Version
	return a.AccountID
}

// ToAccountAggregateRoot rebuilds the aggregate root fields
func (m *AggregateModel) ToAccountAggregateRoot(accountID uuid.UUID) shared.AccountAggregateRoot {
	return shared.AccountAggregateRoot{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.BaseModel.ToDomain(),
			Version:    m.Version,
		},
		AccountID: accountID,
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
