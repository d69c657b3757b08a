package entity

import (
	"time"
)

type SubscriptionStatus string
type BillingInterval string

const (
	SubscriptionStatusActive     SubscriptionStatus = "active"
	SubscriptionStatusCanceled   SubscriptionStatus = "canceled"
	SubscriptionStatusPastDue    SubscriptionStatus = "past_due"
	SubscriptionStatusIncomplete SubscriptionStatus = "incomplete"
	SubscriptionStatusTrialing   SubscriptionStatus = "trialing"

	BillingIntervalMonthly BillingInterval = "monthly"
	BillingIntervalYearly  BillingInterval = "yearly"
)

func (s SubscriptionStatus) Valid() bool {
	switch s {
	case SubscriptionStatusActive, SubscriptionStatusCanceled, SubscriptionStatusPastDue,
		SubscriptionStatusIncomplete, SubscriptionStatusTrialing:
		return true
	}
	return false
}

type SubscriptionPlan struct {
	Id        uint
	Name      string
	PriceId   string // External price reference
	Price     float64
	Interval  BillingInterval
	TrialDays int
	Features  []string
	IsActive  bool
	SortOrder int
}

type Subscription struct {
	Id                uint
	ServiceProviderId uint
	PlanId            *uint
	Status            SubscriptionStatus
	CurrentPeriodEnd  *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Plan *SubscriptionPlan
}

// GrantsAccess is true only for active subscriptions. Trialing does not count.
func (s *Subscription) GrantsAccess() bool {
	return s != nil && s.Status == SubscriptionStatusActive
}
