package entity

import (
	"testing"

	"leadflow-be/pkg/apperr"

	"github.com/stretchr/testify/assert"
)

func TestLeadTransitionTo(t *testing.T) {
	tests := []struct {
		name        string
		from        LeadStatus
		to          LeadStatus
		wantChanged bool
		wantErr     bool
		wantStatus  LeadStatus
	}{
		{"new to contacted", LeadStatusNew, LeadStatusContacted, true, false, LeadStatusContacted},
		{"contacted to closed", LeadStatusContacted, LeadStatusClosed, true, false, LeadStatusClosed},
		{"closed back to new", LeadStatusClosed, LeadStatusNew, true, false, LeadStatusNew},
		{"new straight to closed", LeadStatusNew, LeadStatusClosed, true, false, LeadStatusClosed},
		{"same status is a no-op", LeadStatusContacted, LeadStatusContacted, false, false, LeadStatusContacted},
		{"unknown status rejected", LeadStatusNew, LeadStatus("archived"), false, true, LeadStatusNew},
		{"empty status rejected", LeadStatusClosed, LeadStatus(""), false, true, LeadStatusClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lead := &Lead{Status: tt.from}
			old, changed, err := lead.TransitionTo(tt.to)

			assert.Equal(t, tt.wantChanged, changed)
			assert.Equal(t, tt.wantStatus, lead.Status)
			if tt.wantErr {
				assert.True(t, apperr.Is(err, apperr.KindValidation))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.from, old)
		})
	}
}

func TestLeadAssignTo(t *testing.T) {
	lead := &Lead{}
	assert.False(t, lead.IsAssignedTo(3))

	assert.True(t, lead.AssignTo(3))
	assert.True(t, lead.IsAssignedTo(3))
	assert.False(t, lead.AssignTo(3))
	assert.True(t, lead.AssignTo(4))
	assert.False(t, lead.IsAssignedTo(3))
}

func TestNewAuthoredNote(t *testing.T) {
	admin := NewAuthoredNote(1, Principal{Role: RoleAdmin, Id: 2, Name: "Root"}, NoteTypeNote, "hi")
	assert.NotNil(t, admin.UserId)
	assert.Nil(t, admin.ServiceProviderId)
	assert.False(t, admin.IsSystem())

	provider := NewAuthoredNote(1, Principal{Role: RoleProvider, Id: 5}, NoteTypeNote, "hi")
	assert.Equal(t, uint(5), *provider.ServiceProviderId)

	assert.True(t, NewSystemNote(1, NoteTypeAssignment, "x").IsSystem())
}

func TestRecipientChannel(t *testing.T) {
	assert.Equal(t, "admin", Recipient{Type: RoleAdmin, Id: 1}.Channel())
	assert.Equal(t, "private-provider.7", Recipient{Type: RoleProvider, Id: 7}.Channel())
}

func TestSubscriptionGrantsAccess(t *testing.T) {
	var none *Subscription
	assert.False(t, none.GrantsAccess())
	assert.True(t, (&Subscription{Status: SubscriptionStatusActive}).GrantsAccess())
	assert.False(t, (&Subscription{Status: SubscriptionStatusTrialing}).GrantsAccess())
	assert.False(t, (&Subscription{Status: SubscriptionStatusPastDue}).GrantsAccess())
}
