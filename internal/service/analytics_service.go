package service

import (
	"context"
	"math"
	"sort"
	"time"

	"leadflow-be/internal/dto"
	"leadflow-be/internal/entity"
	"leadflow-be/internal/repository/contract"
	"leadflow-be/internal/repository/unitofwork"
	"leadflow-be/pkg/apperr"
)

const defaultDashboardDays = 30

type IAnalyticsService interface {
	Dashboard(ctx context.Context, req *dto.DashboardRequest) (*dto.DashboardResponse, error)
}

type analyticsService struct {
	uowFactory unitofwork.RepositoryFactory
	now        func() time.Time
}

func NewAnalyticsService(uowFactory unitofwork.RepositoryFactory) IAnalyticsService {
	return &analyticsService{uowFactory: uowFactory, now: time.Now}
}

func rate(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*10000) / 100
}

// dashboardRange resolves the inclusive day range, defaulting to the last 30 days.
func (s *analyticsService) dashboardRange(req *dto.DashboardRequest) (time.Time, time.Time, error) {
	today := s.now().UTC().Truncate(24 * time.Hour)
	from := today.AddDate(0, 0, -defaultDashboardDays)
	to := today

	fields := map[string]string{}
	if t, err := parseDay(req.DateFrom); err != nil {
		fields["date_from"] = "The date_from does not match the format Y-m-d."
	} else if t != nil {
		from = *t
	}
	if t, err := parseDay(req.DateTo); err != nil {
		fields["date_to"] = "The date_to does not match the format Y-m-d."
	} else if t != nil {
		to = *t
	}
	if len(fields) == 0 && to.Before(from) {
		fields["date_to"] = "The date_to must be a date after or equal to date_from."
	}
	if len(fields) > 0 {
		return time.Time{}, time.Time{}, apperr.Validation(fields)
	}
	return from, to, nil
}

func (s *analyticsService) Dashboard(ctx context.Context, req *dto.DashboardRequest) (*dto.DashboardResponse, error) {
	from, to, err := s.dashboardRange(req)
	if err != nil {
		return nil, err
	}
	end := to.AddDate(0, 0, 1)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	leads, err := uow.LeadRepository().FindAll(ctx, contract.LeadFilter{DateFrom: &from, DateTo: &end})
	if err != nil {
		return nil, err
	}
	locations, err := uow.LocationRepository().FindAll(ctx)
	if err != nil {
		return nil, err
	}
	providers, err := uow.ServiceProviderRepository().FindAll(ctx, contract.ProviderFilter{})
	if err != nil {
		return nil, err
	}

	res := &dto.DashboardResponse{
		LeadsByLocation:     make([]dto.LocationLeadCount, 0, len(locations)),
		LeadsByStatusDaily:  []dto.DailyStatusCount{},
		ProviderPerformance: make([]dto.ProviderPerformance, 0, len(providers)),
		DateRange:           dto.DateRange{From: from.Format(dateLayout), To: to.Format(dateLayout)},
	}

	byLocation := map[uint]int64{}
	byProvider := map[uint]*dto.ProviderPerformance{}
	for _, p := range providers {
		byProvider[p.Id] = &dto.ProviderPerformance{Id: p.Id, Name: p.Name}
	}
	daily := map[string]*dto.DailyStatusCount{}

	for _, l := range leads {
		res.Summary.TotalLeads++
		byLocation[l.LocationId]++

		day := l.CreatedAt.UTC().Format(dateLayout)
		d, ok := daily[day]
		if !ok {
			d = &dto.DailyStatusCount{Date: day}
			daily[day] = d
		}
		d.Total++

		switch l.Status {
		case entity.LeadStatusNew:
			res.Summary.NewLeads++
			d.New++
		case entity.LeadStatusContacted:
			res.Summary.ContactedLeads++
			d.Contacted++
		case entity.LeadStatusClosed:
			res.Summary.ClosedLeads++
			d.Closed++
		}

		if l.ServiceProviderId != nil {
			if perf, ok := byProvider[*l.ServiceProviderId]; ok {
				perf.TotalLeads++
				if l.Status == entity.LeadStatusClosed {
					perf.ClosedLeads++
				}
			}
		}
	}
	res.Summary.ConversionRate = rate(res.Summary.ClosedLeads, res.Summary.TotalLeads)

	for _, loc := range locations {
		res.LeadsByLocation = append(res.LeadsByLocation, dto.LocationLeadCount{Id: loc.Id, Name: loc.Name, LeadsCount: byLocation[loc.Id]})
	}
	sort.SliceStable(res.LeadsByLocation, func(i, j int) bool {
		return res.LeadsByLocation[i].LeadsCount > res.LeadsByLocation[j].LeadsCount
	})

	for _, d := range daily {
		res.LeadsByStatusDaily = append(res.LeadsByStatusDaily, *d)
	}
	sort.Slice(res.LeadsByStatusDaily, func(i, j int) bool {
		return res.LeadsByStatusDaily[i].Date < res.LeadsByStatusDaily[j].Date
	})

	for _, p := range providers {
		perf := byProvider[p.Id]
		perf.ConversionRate = rate(perf.ClosedLeads, perf.TotalLeads)
		res.ProviderPerformance = append(res.ProviderPerformance, *perf)
	}
	sort.SliceStable(res.ProviderPerformance, func(i, j int) bool {
		return res.ProviderPerformance[i].TotalLeads > res.ProviderPerformance[j].TotalLeads
	})

	return res, nil
}
