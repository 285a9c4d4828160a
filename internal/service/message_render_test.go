package service

import (
	"testing"
	"time"

	"github.com/campusqa/peerboard/internal/apperr"
	"github.com/campusqa/peerboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderedFixture() string {
	sentAt := time.Date(2025, time.January, 5, 15, 15, 0, 0, time.UTC)
	return RenderMessage(models.RoleStudent, models.RoleStudent, "Bob Lee", "Amy Diaz", sentAt, "Help", "thanks")
}

func TestRenderMessage_Format(t *testing.T) {
	expected := "To [Student]: Bob Lee\n" +
		"From [Student]: Amy Diaz\n" +
		"Date: Jan 05, 2025 03:15 PM\n" +
		"Message Subject: Help\n" +
		"Message Body: thanks"

	assert.Equal(t, expected, renderedFixture())
}

func TestResolve_RoundTrip(t *testing.T) {
	svc := &MessageService{}

	identity, err := svc.Resolve(renderedFixture())
	require.NoError(t, err)

	assert.Equal(t, FlowStudent, identity.Flow)
	assert.Equal(t, models.RoleStudent, identity.ToRole)
	assert.Equal(t, models.RoleStudent, identity.FromRole)
	assert.Equal(t, "Bob Lee", identity.Recipient)
	assert.Equal(t, "Amy Diaz", identity.Sender)
	assert.Equal(t, "Help", identity.Subject)
	assert.Equal(t, "thanks", identity.Body)
	assert.Equal(t, "Jan 05, 2025 03:15 PM", identity.SentAt.Format(models.MessageTimeLayout))
}

func TestResolve_ReviewerFlow(t *testing.T) {
	svc := &MessageService{}
	sentAt := time.Date(2025, time.March, 12, 9, 5, 0, 0, time.UTC)

	// Either side being a Reviewer selects the reviewer flow
	rendered := RenderMessage(models.RoleStudent, models.RoleReviewer, "Bob Lee", "Rita Park", sentAt, "Feedback", "see notes")
	identity, err := svc.Resolve(rendered)
	require.NoError(t, err)
	assert.Equal(t, FlowReviewer, identity.Flow)

	rendered = RenderMessage(models.RoleReviewer, models.RoleStudent, "Rita Park", "Bob Lee", sentAt, "Re: Feedback", "got it")
	identity, err = svc.Resolve(rendered)
	require.NoError(t, err)
	assert.Equal(t, FlowReviewer, identity.Flow)
}

func TestResolve_MultilineBodyStaysIntact(t *testing.T) {
	svc := &MessageService{}
	sentAt := time.Date(2025, time.January, 5, 15, 15, 0, 0, time.UTC)

	rendered := RenderMessage(models.RoleStudent, models.RoleStudent, "Bob Lee", "Amy Diaz", sentAt, "Help", "line one\nline two")

	identity, err := svc.Resolve(rendered)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", identity.Body)
}

func TestResolve_ParseErrors(t *testing.T) {
	svc := &MessageService{}

	testCases := []struct {
		name     string
		rendered string
	}{
		{"empty", ""},
		{"too_few_lines", "To [Student]: Bob Lee\nFrom [Student]: Amy Diaz"},
		{"missing_to_prefix", "Recipient: Bob Lee\nFrom [Student]: Amy Diaz\nDate: Jan 05, 2025 03:15 PM\nMessage Subject: Help\nMessage Body: thanks"},
		{"unknown_role_token", "To [Admin]: Bob Lee\nFrom [Student]: Amy Diaz\nDate: Jan 05, 2025 03:15 PM\nMessage Subject: Help\nMessage Body: thanks"},
		{"malformed_role_separator", "To [Student] Bob Lee\nFrom [Student]: Amy Diaz\nDate: Jan 05, 2025 03:15 PM\nMessage Subject: Help\nMessage Body: thanks"},
		{"bad_date", "To [Student]: Bob Lee\nFrom [Student]: Amy Diaz\nDate: 2025-01-05 15:15\nMessage Subject: Help\nMessage Body: thanks"},
		{"missing_subject_line", "To [Student]: Bob Lee\nFrom [Student]: Amy Diaz\nDate: Jan 05, 2025 03:15 PM\nSubject: Help\nMessage Body: thanks"},
		{"missing_body_line", "To [Student]: Bob Lee\nFrom [Student]: Amy Diaz\nDate: Jan 05, 2025 03:15 PM\nMessage Subject: Help\nBody: thanks"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Resolve(tc.rendered)
			assert.True(t, apperr.IsKind(err, apperr.KindParse), "expected parse error, got %v", err)
		})
	}
}

// A subject containing a newline shifts every following line, so the block
// no longer parses. This is the known failure mode of the rendered format.
func TestResolve_NewlineInSubjectBreaksBlock(t *testing.T) {
	svc := &MessageService{}
	sentAt := time.Date(2025, time.January, 5, 15, 15, 0, 0, time.UTC)

	rendered := RenderMessage(models.RoleStudent, models.RoleStudent, "Bob Lee", "Amy Diaz", sentAt, "Help\nplease", "thanks")

	_, err := svc.Resolve(rendered)
	assert.True(t, apperr.IsKind(err, apperr.KindParse))
}
