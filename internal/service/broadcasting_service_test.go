package service

import (
	"encoding/json"
	"testing"

	"leadflow-be/internal/dto"
	"leadflow-be/internal/entity"
	"leadflow-be/pkg/apperr"
	"leadflow-be/pkg/wsproto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastingService_Authorize(t *testing.T) {
	f := newFixture(t)
	providers := NewProviderService(f.uow, f.log)
	settings := NewSettingsService(f.uow, entity.RealtimeConfig{Enabled: true, AppKey: "key"}, f.log)
	svc := NewBroadcastingService("key", "secret", providers, settings, f.log)

	admin := f.admin("Root Admin")
	p := f.provider("Acme Roofing", true)
	off := f.provider("Gone Away", false)

	tests := []struct {
		name      string
		principal entity.Principal
		channel   string
		want      apperr.Kind
	}{
		{name: "admin on admin channel", principal: admin.Principal(), channel: entity.AdminChannel},
		{name: "provider on own channel", principal: p.Principal(), channel: entity.ProviderChannel(p.Id)},
		{name: "provider on admin channel", principal: p.Principal(), channel: entity.AdminChannel, want: apperr.KindForbidden},
		{name: "provider on another channel", principal: p.Principal(), channel: entity.ProviderChannel(off.Id), want: apperr.KindForbidden},
		{name: "admin on provider channel", principal: admin.Principal(), channel: entity.ProviderChannel(p.Id), want: apperr.KindForbidden},
		{name: "deactivated provider", principal: off.Principal(), channel: entity.ProviderChannel(off.Id), want: apperr.KindAccountInactive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Authorize(f.ctx, tt.principal, &dto.ChannelAuthRequest{SocketId: "123.456", ChannelName: tt.channel})
			if tt.want != "" {
				assert.Equal(t, tt.want, apperr.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.True(t, wsproto.Verify("key", "secret", "123.456", tt.channel, res.Auth))
		})
	}
}

func TestBroadcastingService_DisabledBySetting(t *testing.T) {
	f := newFixture(t)
	settings := NewSettingsService(f.uow, entity.RealtimeConfig{Enabled: true}, f.log)
	svc := NewBroadcastingService("key", "secret", NewProviderService(f.uow, f.log), settings, f.log)
	admin := f.admin("Root Admin")

	_, err := settings.UpdateGroup(f.ctx, entity.SettingGroupPusher, &dto.UpdateSettingsRequest{
		Settings: map[string]json.RawMessage{entity.SettingPusherEnabled: json.RawMessage(`false`)},
	})
	require.NoError(t, err)

	_, err = svc.Authorize(f.ctx, admin.Principal(), &dto.ChannelAuthRequest{SocketId: "1.2", ChannelName: entity.AdminChannel})
	assert.True(t, apperr.Is(err, apperr.KindUnavailable))
}

func TestSettingsService_RealtimeConfigOverridesDefaults(t *testing.T) {
	f := newFixture(t)
	svc := NewSettingsService(f.uow, entity.RealtimeConfig{Enabled: false, AppKey: "env-key", Cluster: "mt1"}, f.log)

	cfg, err := svc.RealtimeConfig(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.RealtimeConfig{Enabled: false, AppKey: "env-key", Cluster: "mt1"}, *cfg)

	_, err = svc.UpdateGroup(f.ctx, entity.SettingGroupPusher, &dto.UpdateSettingsRequest{Settings: map[string]json.RawMessage{
		entity.SettingPusherEnabled:    json.RawMessage(`true`),
		entity.SettingPusherAppCluster: json.RawMessage(`"eu"`),
	}})
	require.NoError(t, err)

	cfg, err = svc.RealtimeConfig(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, entity.RealtimeConfig{Enabled: true, AppKey: "env-key", Cluster: "eu"}, *cfg)

	all, err := svc.List(f.ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSettingsService_RejectsWrongTypes(t *testing.T) {
	f := newFixture(t)
	svc := NewSettingsService(f.uow, entity.RealtimeConfig{}, f.log)

	_, err := svc.UpdateGroup(f.ctx, entity.SettingGroupPusher, &dto.UpdateSettingsRequest{Settings: map[string]json.RawMessage{
		entity.SettingPusherEnabled: json.RawMessage(`"yes"`),
	}})
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "settings."+entity.SettingPusherEnabled)

	res, err := svc.UpdateGroup(f.ctx, entity.SettingGroupGeneral, &dto.UpdateSettingsRequest{Settings: map[string]json.RawMessage{
		"site_name": json.RawMessage(`"LeadFlow"`),
	}})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.JSONEq(t, `"LeadFlow"`, string(res[0].Value))
}
