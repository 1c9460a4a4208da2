package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codequesthq/codequest-backend/internal/clock"
	"github.com/codequesthq/codequest-backend/internal/model"
	"github.com/codequesthq/codequest-backend/internal/service"
)

type disqualifyFixture struct {
	svc          *service.DisqualifyService
	competitions *fakeCompetitionStore
	participants *fakeParticipantStore
}

func newDisqualifyFixture() *disqualifyFixture {
	f := &disqualifyFixture{
		competitions: newFakeCompetitionStore(),
		participants: newFakeParticipantStore(),
	}
	f.svc = service.NewDisqualifyService(
		f.competitions, f.participants, newFakeDisqualificationStore(),
		clock.NewManual(testStart.Add(20*time.Minute)), zerolog.Nop())
	return f
}

func TestDisqualify(t *testing.T) {
	f := newDisqualifyFixture()
	compID := seedCompetition(t, f.competitions, nil)
	require.NoError(t, f.participants.Create(context.Background(), &model.Participant{
		CompetitionID: compID, StudentID: 7,
	}))

	d, err := f.svc.Disqualify(context.Background(), compID, &model.DisqualifyStudentRequest{
		StudentID: 7,
		Reason:    "  shared answers in chat  ",
	})

	require.NoError(t, err)
	assert.True(t, d.Disqualified)
	assert.Equal(t, "shared answers in chat", d.Reason)

	dq, err := f.svc.IsDisqualified(context.Background(), compID, 7)
	require.NoError(t, err)
	assert.True(t, dq)
}

func TestDisqualifyEmptyReason(t *testing.T) {
	f := newDisqualifyFixture()
	compID := seedCompetition(t, f.competitions, nil)

	_, err := f.svc.Disqualify(context.Background(), compID, &model.DisqualifyStudentRequest{
		StudentID: 7,
		Reason:    "   ",
	})

	assert.ErrorIs(t, err, service.ErrReasonRequired)
}

func TestDisqualifyRequiresMembership(t *testing.T) {
	f := newDisqualifyFixture()
	compID := seedCompetition(t, f.competitions, nil)

	_, err := f.svc.Disqualify(context.Background(), compID, &model.DisqualifyStudentRequest{
		StudentID: 7,
		Reason:    "cheating",
	})

	assert.ErrorIs(t, err, service.ErrDisqualifiedNotJoined)
}

func TestDisqualifyTwice(t *testing.T) {
	f := newDisqualifyFixture()
	compID := seedCompetition(t, f.competitions, nil)
	require.NoError(t, f.participants.Create(context.Background(), &model.Participant{
		CompetitionID: compID, StudentID: 7,
	}))

	req := &model.DisqualifyStudentRequest{StudentID: 7, Reason: "cheating"}

	_, err := f.svc.Disqualify(context.Background(), compID, req)
	require.NoError(t, err)

	_, err = f.svc.Disqualify(context.Background(), compID, req)
	assert.ErrorIs(t, err, service.ErrAlreadyDisqualified)
}

func TestDisqualifyCompetitionMissing(t *testing.T) {
	f := newDisqualifyFixture()

	_, err := f.svc.Disqualify(context.Background(), uuid.New(), &model.DisqualifyStudentRequest{
		StudentID: 7,
		Reason:    "cheating",
	})

	assert.ErrorIs(t, err, service.ErrCompetitionNotFound)
}
