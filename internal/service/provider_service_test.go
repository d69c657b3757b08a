package service

import (
	"testing"
	"time"

	"leadflow-be/internal/dto"
	"leadflow-be/internal/entity"
	"leadflow-be/internal/pkg/serverutils"
	"leadflow-be/pkg/apperr"
	"leadflow-be/pkg/assignment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(v bool) *bool { return &v }

func TestProviderService_CheckAccess(t *testing.T) {
	f := newFixture(t)
	svc := NewProviderService(f.uow, f.log)

	active := f.provider("Acme Roofing", true)
	f.subscribe(active.Id, entity.SubscriptionStatusActive)
	trialing := f.provider("Best Builders", true)
	f.subscribe(trialing.Id, entity.SubscriptionStatusTrialing)
	inactive := f.provider("Gone Away", false)
	f.subscribe(inactive.Id, entity.SubscriptionStatusActive)

	tests := []struct {
		name    string
		id      uint
		require bool
		want    apperr.Kind
	}{
		{name: "active subscriber", id: active.Id, require: true},
		{name: "trialing without subscription gate", id: trialing.Id, require: false},
		{name: "trialing on lead routes", id: trialing.Id, require: true, want: apperr.KindSubscriptionInactive},
		{name: "deactivated account", id: inactive.Id, require: false, want: apperr.KindAccountInactive},
		{name: "unknown provider", id: 999, require: false, want: apperr.KindUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.CheckAccess(f.ctx, tt.id, tt.require)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.want, apperr.KindOf(err))
		})
	}
}

func TestProviderService_UpdateInvalidatesAccessCache(t *testing.T) {
	f := newFixture(t)
	svc := NewProviderService(f.uow, f.log)
	p := f.provider("Acme Roofing", true)

	require.NoError(t, svc.CheckAccess(f.ctx, p.Id, false))

	_, err := svc.Update(f.ctx, p.Id, &dto.UpdateProviderRequest{IsActive: boolPtr(false)})
	require.NoError(t, err)
	assert.True(t, apperr.Is(svc.CheckAccess(f.ctx, p.Id, false), apperr.KindAccountInactive))

	err = svc.CheckAccess(f.ctx, p.Id, true)
	assert.True(t, apperr.Is(err, apperr.KindAccountInactive))

	_, err = svc.Update(f.ctx, p.Id, &dto.UpdateProviderRequest{IsActive: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, apperr.Is(svc.CheckAccess(f.ctx, p.Id, true), apperr.KindSubscriptionInactive))

	status, err := svc.UpdateSubscription(f.ctx, p.Id, &dto.UpdateSubscriptionRequest{Status: "active"})
	require.NoError(t, err)
	assert.True(t, status.HasActiveSubscription)
	assert.NoError(t, svc.CheckAccess(f.ctx, p.Id, true))
}

func TestProviderService_CreateRejectsDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	svc := NewProviderService(f.uow, f.log)
	loc := f.location("austin", assignment.RoundRobin)

	res, err := svc.Create(f.ctx, &dto.CreateProviderRequest{
		Name:        "Acme Roofing",
		Email:       "acme@example.com",
		Password:    "secret123",
		LocationIds: []uint{loc.Id},
	})
	require.NoError(t, err)
	assert.True(t, res.IsActive)
	require.Len(t, res.Locations, 1)
	assert.Equal(t, "austin", res.Locations[0].Slug)

	_, err = svc.Create(f.ctx, &dto.CreateProviderRequest{Name: "Copy", Email: "ACME@example.com", Password: "secret123"})
	require.Error(t, err)
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "The email has already been taken.", appErr.Fields["email"])
}

func TestProviderService_UpdateSubscriptionRejectsUnknownPlan(t *testing.T) {
	f := newFixture(t)
	svc := NewProviderService(f.uow, f.log)
	p := f.provider("Acme Roofing", true)

	_, err := svc.UpdateSubscription(f.ctx, p.Id, &dto.UpdateSubscriptionRequest{Status: "active", PlanId: uintPtr(42)})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.UpdateSubscription(f.ctx, 999, &dto.UpdateSubscriptionRequest{Status: "active"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestAuthService_Logins(t *testing.T) {
	f := newFixture(t)
	tokens := serverutils.NewTokenManager("test-secret", time.Hour)
	svc := NewAuthService(f.uow, tokens, f.log)
	admin := f.admin("Root Admin")
	active := f.provider("Acme Roofing", true)
	inactive := f.provider("Gone Away", false)

	res, err := svc.LoginAdmin(f.ctx, &dto.LoginRequest{Email: admin.Email, Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", res.TokenType)
	principal, err := tokens.Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, admin.Principal(), principal)

	_, err = svc.LoginAdmin(f.ctx, &dto.LoginRequest{Email: admin.Email, Password: "wrong"})
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	// Admin credentials do not open the provider dashboard.
	_, err = svc.LoginProvider(f.ctx, &dto.LoginRequest{Email: admin.Email, Password: "secret123"})
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	res, err = svc.LoginProvider(f.ctx, &dto.LoginRequest{Email: active.Email, Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "provider", res.Role)

	_, err = svc.LoginProvider(f.ctx, &dto.LoginRequest{Email: inactive.Email, Password: "secret123"})
	assert.True(t, apperr.Is(err, apperr.KindAccountInactive))
}

func TestAuthService_RegisterProvider(t *testing.T) {
	f := newFixture(t)
	tokens := serverutils.NewTokenManager("test-secret", time.Hour)
	svc := NewAuthService(f.uow, tokens, f.log)

	req := &dto.RegisterProviderRequest{
		Name:                 "New Co",
		Email:                "new@example.com",
		Password:             "secret123",
		PasswordConfirmation: "secret123",
	}
	res, err := svc.RegisterProvider(f.ctx, req)
	require.NoError(t, err)
	principal, err := tokens.Parse(res.Token)
	require.NoError(t, err)
	assert.True(t, principal.IsProvider())

	// Registered providers start without a subscription.
	providers := NewProviderService(f.uow, f.log)
	assert.True(t, apperr.Is(providers.CheckAccess(f.ctx, principal.Id, true), apperr.KindSubscriptionInactive))

	_, err = svc.RegisterProvider(f.ctx, req)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}
