package specification

import (
	"time"

	"leadflow-be/internal/entity"

	"gorm.io/gorm"
)

type LeadByLocation struct {
	LocationId uint
}

func (s LeadByLocation) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("leads.location_id = ?", s.LocationId)
}

type LeadByProvider struct {
	ProviderId uint
}

func (s LeadByProvider) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("leads.service_provider_id = ?", s.ProviderId)
}

type LeadByStatus struct {
	Status entity.LeadStatus
}

func (s LeadByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("leads.status = ?", string(s.Status))
}

// OpenLeads matches statuses that count toward provider workload.
type OpenLeads struct{}

func (s OpenLeads) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("leads.status IN ?", []string{string(entity.LeadStatusNew), string(entity.LeadStatusContacted)})
}

// CreatedBetween is inclusive of From and exclusive of To. Nil bounds are open.
type CreatedBetween struct {
	From *time.Time
	To   *time.Time
}

func (s CreatedBetween) Apply(db *gorm.DB) *gorm.DB {
	if s.From != nil {
		db = db.Where("leads.created_at >= ?", *s.From)
	}
	if s.To != nil {
		db = db.Where("leads.created_at < ?", *s.To)
	}
	return db
}

type NotificationsFor struct {
	Recipient entity.Recipient
}

func (s NotificationsFor) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("recipient_type = ? AND recipient_id = ?", string(s.Recipient.Type), s.Recipient.Id)
}

type Unread struct{}

func (s Unread) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("read_at IS NULL")
}

type ProviderSearch struct {
	Term string
}

func (s ProviderSearch) Apply(db *gorm.DB) *gorm.DB {
	like := "%" + s.Term + "%"
	return db.Where("name ILIKE ? OR email ILIKE ?", like, like)
}
