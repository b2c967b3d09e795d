package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/kamaubrian/study_pal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newShareFixture(t *testing.T) (*ShareService, *AssessmentService, uuid.UUID) {
	t.Helper()
	svc, store := newTestService(t, &stubGenerator{questions: sampleQuestions()})
	shares := NewShareService(store, NewAccessGate(), NewPrintService())
	return shares, svc, uuid.New()
}

func TestShareRecordsAppendOnlyEvents(t *testing.T) {
	shares, svc, ownerID := newShareFixture(t)
	saved, err := svc.Save(ownerID, uuid.New(), "", mustDraft(t, svc))
	require.NoError(t, err)

	owner := OwnerIdentity(ownerID)

	outcome, err := shares.Share(saved.ID, ChannelWhatsApp, nil, owner)
	require.NoError(t, err)
	assert.Equal(t, saved.ShareLink, outcome.ShareLink)
	assert.Equal(t, ChannelWhatsApp, outcome.Event.Channel)

	recipient := "grandma@example.com"
	outcome, err = shares.Share(saved.ID, ChannelEmail, &recipient, owner)
	require.NoError(t, err)
	require.NotNil(t, outcome.Event.Recipient)
	assert.Equal(t, recipient, *outcome.Event.Recipient)

	events, err := shares.History(saved.ID, owner)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestShareValidatesChannelAndRecipient(t *testing.T) {
	shares, svc, ownerID := newShareFixture(t)
	saved, err := svc.Save(ownerID, uuid.New(), "", mustDraft(t, svc))
	require.NoError(t, err)

	owner := OwnerIdentity(ownerID)

	_, err = shares.Share(saved.ID, "carrier-pigeon", nil, owner)
	assert.ErrorIs(t, err, utils.ErrInvalidParameters)

	_, err = shares.Share(saved.ID, ChannelEmail, nil, owner)
	assert.ErrorIs(t, err, utils.ErrInvalidParameters)

	// Failed shares record nothing.
	events, err := shares.History(saved.ID, owner)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestShareIsOwnerOnly(t *testing.T) {
	shares, svc, ownerID := newShareFixture(t)
	saved, err := svc.Save(ownerID, uuid.New(), "", mustDraft(t, svc))
	require.NoError(t, err)

	_, err = shares.Share(saved.ID, ChannelWhatsApp, nil, LinkHolderIdentity(saved.ShareToken))
	assert.ErrorIs(t, err, utils.ErrForbidden)

	_, err = shares.History(saved.ID, OwnerIdentity(uuid.New()))
	assert.ErrorIs(t, err, utils.ErrForbidden)
}
