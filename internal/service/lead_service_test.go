package service

import (
	"testing"

	"leadflow-be/internal/dto"
	"leadflow-be/internal/entity"
	"leadflow-be/internal/repository/memory"
	"leadflow-be/pkg/apperr"
	"leadflow-be/pkg/assignment"
	"leadflow-be/pkg/events"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureRequest(slug string) *dto.CreateLeadRequest {
	return &dto.CreateLeadRequest{
		LocationSlug: slug,
		Name:         "Ann Lee",
		Phone:        "555-0100",
		Email:        "ann@example.com",
		ZipCode:      "10001",
		ProjectType:  "residential",
		Timing:       "immediate",
	}
}

func TestLeadService_CaptureRoundRobinRotatesPool(t *testing.T) {
	f := newFixture(t)
	a := f.provider("Acme Roofing", true)
	b := f.provider("Best Builders", true)
	f.location("austin", assignment.RoundRobin, a, b)
	svc := f.leadService()

	var assigned []uint
	for i := 0; i < 3; i++ {
		res, err := svc.Capture(f.ctx, captureRequest("austin"))
		require.NoError(t, err)
		assert.Equal(t, "Thank you! Your request has been received.", res.Message)

		lead, err := memory.NewLeadRepository(f.store).FindById(f.ctx, res.Id)
		require.NoError(t, err)
		require.NotNil(t, lead.ServiceProviderId)
		assigned = append(assigned, *lead.ServiceProviderId)
	}
	assert.Equal(t, []uint{a.Id, b.Id, a.Id}, assigned)

	published := f.bus.Events()
	require.Len(t, published, 3)
	first, ok := published[0].(*events.LeadAssignedEvent)
	require.True(t, ok)
	assert.False(t, first.Manual)
	assert.Equal(t, "Acme Roofing", first.ProviderName)

	notes, err := memory.NewLeadNoteRepository(f.store).FindByLeadId(f.ctx, first.Lead().Id)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, entity.NoteTypeAssignment, notes[0].Type)
	assert.Equal(t, "Lead automatically assigned to Acme Roofing (round_robin)", notes[0].Note)

	assert.Len(t, f.mail.sent, 3)
	assert.Equal(t, a.Email, f.mail.sent[0].to)
	assert.Equal(t, "austin", f.mail.sent[0].mail.LocationName)
	assert.Equal(t, float64(3), testutil.ToFloat64(f.metrics.LeadsAssigned.WithLabelValues("round_robin")))
}

func TestLeadService_CaptureLeavesLeadUnassigned(t *testing.T) {
	tests := []struct {
		name      string
		algorithm assignment.Algorithm
		active    bool
	}{
		{name: "manual location", algorithm: assignment.Manual, active: true},
		{name: "only inactive providers", algorithm: assignment.RoundRobin, active: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			p := f.provider("Acme Roofing", tt.active)
			f.location("dallas", tt.algorithm, p)

			res, err := f.leadService().Capture(f.ctx, captureRequest("dallas"))
			require.NoError(t, err)

			lead, err := memory.NewLeadRepository(f.store).FindById(f.ctx, res.Id)
			require.NoError(t, err)
			assert.Nil(t, lead.ServiceProviderId)
			assert.Equal(t, entity.LeadStatusNew, lead.Status)
			assert.Empty(t, f.bus.Events())
			assert.Empty(t, f.mail.sent)
		})
	}
}

func TestLeadService_CaptureLoadBalancePicksLeastBusy(t *testing.T) {
	f := newFixture(t)
	a := f.provider("Acme Roofing", true)
	b := f.provider("Best Builders", true)
	loc := f.location("houston", assignment.LoadBalance, a, b)
	f.lead(loc.Id, uintPtr(a.Id), entity.LeadStatusNew)
	f.lead(loc.Id, uintPtr(b.Id), entity.LeadStatusClosed)

	res, err := f.leadService().Capture(f.ctx, captureRequest("houston"))
	require.NoError(t, err)

	lead, err := memory.NewLeadRepository(f.store).FindById(f.ctx, res.Id)
	require.NoError(t, err)
	require.NotNil(t, lead.ServiceProviderId)
	assert.Equal(t, b.Id, *lead.ServiceProviderId)
}

func TestLeadService_CaptureUnknownLocation(t *testing.T) {
	f := newFixture(t)
	_, err := f.leadService().Capture(f.ctx, captureRequest("nowhere"))
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestLeadService_ProviderSeesOnlyOwnLeads(t *testing.T) {
	f := newFixture(t)
	a := f.provider("Acme Roofing", true)
	b := f.provider("Best Builders", true)
	loc := f.location("austin", assignment.Manual, a, b)
	mine := f.lead(loc.Id, uintPtr(a.Id), entity.LeadStatusNew)
	theirs := f.lead(loc.Id, uintPtr(b.Id), entity.LeadStatusNew)
	f.lead(loc.Id, nil, entity.LeadStatusNew)
	svc := f.leadService()

	page, err := svc.List(f.ctx, a.Principal(), &dto.LeadListRequest{})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, mine.Id, page.Data[0].Id)

	_, err = svc.Show(f.ctx, a.Principal(), theirs.Id)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	admin := f.admin("Root Admin")
	page, err = svc.List(f.ctx, admin.Principal(), &dto.LeadListRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
}

func TestLeadService_UpdateStatusWritesNoteAndEvent(t *testing.T) {
	f := newFixture(t)
	p := f.provider("Acme Roofing", true)
	loc := f.location("austin", assignment.Manual, p)
	lead := f.lead(loc.Id, uintPtr(p.Id), entity.LeadStatusNew)
	svc := f.leadService()

	res, err := svc.UpdateStatus(f.ctx, p.Principal(), lead.Id, &dto.UpdateLeadRequest{Status: "contacted"})
	require.NoError(t, err)
	assert.Equal(t, "contacted", res.Status)

	published := f.bus.Events()
	require.Len(t, published, 1)
	ev := published[0]
	assert.Equal(t, events.LeadStatusUpdated, ev.EventType())
	assert.Equal(t, "new", ev.Lead().OldStatus)
	assert.Equal(t, "contacted", ev.Lead().Status)
	assert.Equal(t, events.Actor{Role: "provider", Id: p.Id}, ev.Actor())

	notes, err := svc.ListNotes(f.ctx, p.Principal(), lead.Id)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Status changed from new to contacted", notes[0].Note)
	assert.Equal(t, "status_change", notes[0].Type)

	// Same status is a no-op.
	_, err = svc.UpdateStatus(f.ctx, p.Principal(), lead.Id, &dto.UpdateLeadRequest{Status: "contacted"})
	require.NoError(t, err)
	assert.Len(t, f.bus.Events(), 1)

	_, err = svc.UpdateStatus(f.ctx, p.Principal(), lead.Id, &dto.UpdateLeadRequest{Status: "won"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestLeadService_UpdateStatusClosedCanReopen(t *testing.T) {
	f := newFixture(t)
	admin := f.admin("Root Admin")
	loc := f.location("austin", assignment.Manual)
	lead := f.lead(loc.Id, nil, entity.LeadStatusClosed)

	res, err := f.leadService().UpdateStatus(f.ctx, admin.Principal(), lead.Id, &dto.UpdateLeadRequest{Status: "new"})
	require.NoError(t, err)
	assert.Equal(t, "new", res.Status)
}

func TestLeadService_Reassign(t *testing.T) {
	f := newFixture(t)
	admin := f.admin("Root Admin")
	a := f.provider("Acme Roofing", true)
	b := f.provider("Best Builders", true)
	off := f.provider("Gone Away", false)
	loc := f.location("austin", assignment.Manual, a, b)
	lead := f.lead(loc.Id, uintPtr(a.Id), entity.LeadStatusNew)
	svc := f.leadService()

	_, err := svc.Reassign(f.ctx, a.Principal(), lead.Id, &dto.ReassignLeadRequest{ServiceProviderId: b.Id})
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	_, err = svc.Reassign(f.ctx, admin.Principal(), lead.Id, &dto.ReassignLeadRequest{ServiceProviderId: off.Id})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.Reassign(f.ctx, admin.Principal(), lead.Id, &dto.ReassignLeadRequest{ServiceProviderId: 999})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	res, err := svc.Reassign(f.ctx, admin.Principal(), lead.Id, &dto.ReassignLeadRequest{ServiceProviderId: b.Id})
	require.NoError(t, err)
	require.NotNil(t, res.ServiceProviderId)
	assert.Equal(t, b.Id, *res.ServiceProviderId)

	published := f.bus.Events()
	require.Len(t, published, 1)
	ev, ok := published[0].(*events.LeadAssignedEvent)
	require.True(t, ok)
	assert.True(t, ev.Manual)
	assert.Equal(t, b.Id, ev.ProviderId)

	notes, err := svc.ListNotes(f.ctx, admin.Principal(), lead.Id)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Lead manually reassigned to Best Builders by Root Admin", notes[0].Note)
	require.Len(t, f.mail.sent, 1)
	assert.Equal(t, b.Email, f.mail.sent[0].to)

	// Reassigning to the current provider changes nothing.
	_, err = svc.Reassign(f.ctx, admin.Principal(), lead.Id, &dto.ReassignLeadRequest{ServiceProviderId: b.Id})
	require.NoError(t, err)
	assert.Len(t, f.bus.Events(), 1)
}

func TestLeadService_AddNotePublishesAuthor(t *testing.T) {
	f := newFixture(t)
	p := f.provider("Acme Roofing", true)
	loc := f.location("austin", assignment.Manual, p)
	lead := f.lead(loc.Id, uintPtr(p.Id), entity.LeadStatusNew)

	res, err := f.leadService().AddNote(f.ctx, p.Principal(), lead.Id, &dto.CreateLeadNoteRequest{Note: "Called, left voicemail"})
	require.NoError(t, err)
	assert.Equal(t, "note", res.Type)
	assert.Equal(t, "Acme Roofing", res.CreatedBy)

	published := f.bus.Events()
	require.Len(t, published, 1)
	ev, ok := published[0].(*events.LeadNoteCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, "Called, left voicemail", ev.Note.Note)
	assert.Equal(t, "Acme Roofing", ev.Note.CreatedBy)
}
