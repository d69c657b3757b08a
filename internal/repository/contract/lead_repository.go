package contract

import (
	"context"
	"time"

	"leadflow-be/internal/entity"
)

// LeadFilter narrows lead queries. Zero values mean "any".
type LeadFilter struct {
	LocationId        uint
	ServiceProviderId uint
	Status            entity.LeadStatus
	DateFrom          *time.Time
	DateTo            *time.Time // Exclusive
	Limit             int
	Offset            int
}

type LeadRepository interface {
	Create(ctx context.Context, lead *entity.Lead) error
	// Update writes the mutable columns (status, service provider).
	Update(ctx context.Context, lead *entity.Lead) error
	// FindById loads the lead with location and provider. Returns nil, nil when missing.
	FindById(ctx context.Context, id uint) (*entity.Lead, error)
	FindAll(ctx context.Context, filter LeadFilter) ([]*entity.Lead, error)
	Count(ctx context.Context, filter LeadFilter) (int64, error)
	// CountOpenByProvider returns new+contacted counts keyed by provider id.
	CountOpenByProvider(ctx context.Context, providerIds []uint) (map[uint]int64, error)
}

type LeadNoteRepository interface {
	Create(ctx context.Context, note *entity.LeadNote) error
	// FindByLeadId returns notes oldest first with author names resolved.
	FindByLeadId(ctx context.Context, leadId uint) ([]*entity.LeadNote, error)
}
