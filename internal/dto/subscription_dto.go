package dto

import "time"

type PlanResponse struct {
	Id        uint     `json:"id"`
	Name      string   `json:"name"`
	Price     float64  `json:"price"`
	Interval  string   `json:"interval"`
	TrialDays int      `json:"trial_days"`
	Features  []string `json:"features"`
	SortOrder int      `json:"sort_order"`
}

type SubscriptionResponse struct {
	Status           string        `json:"status"`
	CurrentPeriodEnd *time.Time    `json:"current_period_end"`
	Plan             *PlanResponse `json:"plan,omitempty"`
}

type SubscriptionStatusResponse struct {
	HasActiveSubscription bool                  `json:"has_active_subscription"`
	Subscription          *SubscriptionResponse `json:"subscription"`
}

type UpdateSubscriptionRequest struct {
	Status           string     `json:"status" validate:"required,oneof=active canceled past_due incomplete trialing"`
	PlanId           *uint      `json:"plan_id"`
	CurrentPeriodEnd *time.Time `json:"current_period_end"`
}
