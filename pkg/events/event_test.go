package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessages(t *testing.T) {
	provider := uint(4)
	lead := LeadRef{Id: 1, Name: "Jane Doe", Status: "closed", OldStatus: "contacted", ServiceProviderId: &provider}

	tests := []struct {
		name  string
		event Event
		want  string
	}{
		{"assigned", NewLeadAssigned(lead, 4, "Acme", false, Actor{}), "New lead assigned: Jane Doe"},
		{"status", NewLeadStatusUpdated(lead, Actor{Role: "admin", Id: 1}), "Lead 'Jane Doe' status changed from contacted to closed"},
		{"status without old", NewLeadStatusUpdated(LeadRef{Name: "X", Status: "new"}, Actor{}), "Lead 'X' status changed from N/A to new"},
		{"note", NewLeadNoteCreated(lead, NoteRef{Id: 2, Note: "call back", Type: "note", CreatedBy: "Acme"}, Actor{}), "New note added to lead 'Jane Doe' by Acme"},
		{"note anonymous", NewLeadNoteCreated(lead, NoteRef{Id: 2, Note: "x", Type: "note"}, Actor{}), "New note added to lead 'Jane Doe' by Someone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.event.Message())
		})
	}
}

func TestEnvelopeRoundTripKeepsVariantFields(t *testing.T) {
	note := NewLeadNoteCreated(LeadRef{Id: 9, Name: "Lee"}, NoteRef{Id: 3, Note: "hi", Type: "note", CreatedBy: "Admin"}, Actor{Role: "admin", Id: 1})

	data, err := Marshal(note)
	require.NoError(t, err)

	decoded, err := Unmarshal(data)
	require.NoError(t, err)

	got, ok := decoded.(*LeadNoteCreatedEvent)
	require.True(t, ok)
	assert.Equal(t, note.EventId(), got.EventId())
	assert.Equal(t, note.Note, got.Note)
	assert.Equal(t, Actor{Role: "admin", Id: 1}, got.Actor())
	assert.True(t, note.Timestamp().Equal(got.Timestamp()))
}

func TestUnmarshalRejectsUnknownAndIncomplete(t *testing.T) {
	_, err := Unmarshal([]byte(`{"type":"lead.deleted","lead":{"id":1}}`))
	assert.Error(t, err)

	_, err = Unmarshal([]byte(`{"type":"lead.note.created","lead":{"id":1}}`))
	assert.Error(t, err)

	_, err = Unmarshal([]byte(`not json`))
	assert.Error(t, err)
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "events.lead.status.updated", LeadStatusUpdated.Subject())
}
