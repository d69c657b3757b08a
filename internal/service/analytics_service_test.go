package service

import (
	"testing"
	"time"

	"leadflow-be/internal/dto"
	"leadflow-be/internal/entity"
	"leadflow-be/pkg/apperr"
	"leadflow-be/pkg/assignment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyticsService_Dashboard(t *testing.T) {
	f := newFixture(t)
	a := f.provider("Acme Roofing", true)
	b := f.provider("Best Builders", true)
	austin := f.location("austin", assignment.Manual, a, b)
	dallas := f.location("dallas", assignment.Manual, b)

	f.lead(austin.Id, uintPtr(a.Id), entity.LeadStatusClosed)
	f.lead(austin.Id, uintPtr(a.Id), entity.LeadStatusNew)
	f.lead(austin.Id, uintPtr(b.Id), entity.LeadStatusContacted)
	f.lead(dallas.Id, nil, entity.LeadStatusNew)

	res, err := NewAnalyticsService(f.uow).Dashboard(f.ctx, &dto.DashboardRequest{})
	require.NoError(t, err)

	assert.Equal(t, dto.AnalyticsSummary{
		TotalLeads:     4,
		NewLeads:       2,
		ContactedLeads: 1,
		ClosedLeads:    1,
		ConversionRate: 25,
	}, res.Summary)

	require.Len(t, res.LeadsByLocation, 2)
	assert.Equal(t, dto.LocationLeadCount{Id: austin.Id, Name: "austin", LeadsCount: 3}, res.LeadsByLocation[0])

	require.Len(t, res.LeadsByStatusDaily, 1)
	assert.EqualValues(t, 4, res.LeadsByStatusDaily[0].Total)

	require.Len(t, res.ProviderPerformance, 2)
	assert.Equal(t, dto.ProviderPerformance{Id: a.Id, Name: "Acme Roofing", TotalLeads: 2, ClosedLeads: 1, ConversionRate: 50}, res.ProviderPerformance[0])

	today := time.Now().UTC().Format(dateLayout)
	assert.Equal(t, today, res.DateRange.To)
}

func TestAnalyticsService_DashboardRange(t *testing.T) {
	f := newFixture(t)
	loc := f.location("austin", assignment.Manual)
	f.lead(loc.Id, nil, entity.LeadStatusNew)
	svc := NewAnalyticsService(f.uow)

	res, err := svc.Dashboard(f.ctx, &dto.DashboardRequest{DateFrom: "2020-01-01", DateTo: "2020-01-31"})
	require.NoError(t, err)
	assert.Zero(t, res.Summary.TotalLeads)
	assert.Zero(t, res.Summary.ConversionRate)
	assert.Equal(t, dto.DateRange{From: "2020-01-01", To: "2020-01-31"}, res.DateRange)

	_, err = svc.Dashboard(f.ctx, &dto.DashboardRequest{DateFrom: "2020-02-01", DateTo: "2020-01-01"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestLocationService_SlugAndPool(t *testing.T) {
	f := newFixture(t)
	svc := NewLocationService(f.uow, f.log)
	p := f.provider("Acme Roofing", true)

	created, err := svc.Create(f.ctx, &dto.CreateLocationRequest{Name: "North Austin, TX", AssignmentAlgorithm: "round_robin"})
	require.NoError(t, err)
	assert.Equal(t, "north-austin-tx", created.Slug)

	_, err = svc.Create(f.ctx, &dto.CreateLocationRequest{Name: "North Austin TX", AssignmentAlgorithm: "manual"})
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "The slug has already been taken.", appErr.Fields["slug"])

	_, err = svc.AssignProviders(f.ctx, created.Id, &dto.AssignProvidersRequest{ServiceProviderIds: []uint{p.Id, 404}})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	res, err := svc.AssignProviders(f.ctx, created.Id, &dto.AssignProvidersRequest{ServiceProviderIds: []uint{p.Id}})
	require.NoError(t, err)
	require.Len(t, res.ServiceProviders, 1)
	assert.Equal(t, p.Id, res.ServiceProviders[0].Id)

	public, err := svc.ShowPublic(f.ctx, "north-austin-tx")
	require.NoError(t, err)
	assert.Equal(t, "North Austin, TX", public.Name)

	require.NoError(t, svc.Delete(f.ctx, created.Id))
	_, err = svc.Show(f.ctx, created.Id)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
