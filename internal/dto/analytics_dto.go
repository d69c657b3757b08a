package dto

type DashboardRequest struct {
	DateFrom string `query:"date_from" validate:"omitempty,datetime=2006-01-02"`
	DateTo   string `query:"date_to" validate:"omitempty,datetime=2006-01-02"`
}

type AnalyticsSummary struct {
	TotalLeads     int64   `json:"total_leads"`
	NewLeads       int64   `json:"new_leads"`
	ContactedLeads int64   `json:"contacted_leads"`
	ClosedLeads    int64   `json:"closed_leads"`
	ConversionRate float64 `json:"conversion_rate"`
}

type LocationLeadCount struct {
	Id         uint   `json:"id"`
	Name       string `json:"name"`
	LeadsCount int64  `json:"leads_count"`
}

type DailyStatusCount struct {
	Date      string `json:"date"`
	Total     int64  `json:"total"`
	New       int64  `json:"new"`
	Contacted int64  `json:"contacted"`
	Closed    int64  `json:"closed"`
}

type ProviderPerformance struct {
	Id             uint    `json:"id"`
	Name           string  `json:"name"`
	TotalLeads     int64   `json:"total_leads"`
	ClosedLeads    int64   `json:"closed_leads"`
	ConversionRate float64 `json:"conversion_rate"`
}

type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type DashboardResponse struct {
	Summary             AnalyticsSummary      `json:"summary"`
	LeadsByLocation     []LocationLeadCount   `json:"leads_by_location"`
	LeadsByStatusDaily  []DailyStatusCount    `json:"leads_by_status_daily"`
	ProviderPerformance []ProviderPerformance `json:"provider_performance"`
	DateRange           DateRange             `json:"date_range"`
}
