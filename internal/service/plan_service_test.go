package service

import (
	"testing"

	"leadflow-be/internal/entity"
	"leadflow-be/internal/repository/memory"
	"leadflow-be/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanServiceHidesRetiredPlans(t *testing.T) {
	f := newFixture(t)
	repo := memory.NewSubscriptionRepository(f.store)

	pro := &entity.SubscriptionPlan{Name: "Pro", Price: 149, Interval: entity.BillingIntervalMonthly, IsActive: true, SortOrder: 2}
	starter := &entity.SubscriptionPlan{Name: "Starter", Price: 49, Interval: entity.BillingIntervalMonthly, IsActive: true, SortOrder: 1}
	legacy := &entity.SubscriptionPlan{Name: "Legacy", Price: 19, Interval: entity.BillingIntervalMonthly, IsActive: false}
	for _, p := range []*entity.SubscriptionPlan{pro, starter, legacy} {
		require.NoError(t, repo.CreatePlan(f.ctx, p))
	}

	svc := NewPlanService(f.uow)

	plans, err := svc.ListActive(f.ctx)
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, "Starter", plans[0].Name)
	assert.Equal(t, "Pro", plans[1].Name)

	got, err := svc.Show(f.ctx, pro.Id)
	require.NoError(t, err)
	assert.Equal(t, "Pro", got.Name)

	_, err = svc.Show(f.ctx, legacy.Id)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = svc.Show(f.ctx, 999)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
