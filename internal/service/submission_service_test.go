package service_test

import (
	"context"
	"sync"
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

type submissionFixture struct {
	svc          *service.SubmissionService
	competitions *fakeCompetitionStore
	participants *fakeParticipantStore
	submissions  *fakeSubmissionStore
	results      *fakeResultStore
	clk          *clock.Manual
}

func newSubmissionFixture() *submissionFixture {
	f := &submissionFixture{
		competitions: newFakeCompetitionStore(),
		participants: newFakeParticipantStore(),
		submissions:  newFakeSubmissionStore(),
		results:      newFakeResultStore(),
		clk:          clock.NewManual(testStart.Add(30 * time.Minute)),
	}
	f.svc = service.NewSubmissionService(
		f.competitions, f.participants, f.submissions, f.results, f.clk, zerolog.Nop())
	return f
}

func (f *submissionFixture) join(t *testing.T, compID uuid.UUID, studentID int) {
	t.Helper()
	require.NoError(t, f.participants.Create(context.Background(), &model.Participant{
		CompetitionID: compID,
		StudentID:     studentID,
	}))
}

func submitRequest(n int) *model.SubmitAnswersRequest {
	req := &model.SubmitAnswersRequest{}
	for i := 0; i < n; i++ {
		req.QuestionIDs = append(req.QuestionIDs, uuid.New())
		req.Answers = append(req.Answers, "answer")
	}
	return req
}

func TestSubmitHappyPath(t *testing.T) {
	f := newSubmissionFixture()
	compID := seedCompetition(t, f.competitions, nil)
	f.join(t, compID, 7)

	sub, err := f.svc.Submit(context.Background(), compID, 7, submitRequest(3))

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, sub.ID)
	assert.Len(t, sub.Answers, 3)
	assert.Equal(t, f.clk.Now(), sub.SubmissionTime)

	// An ungraded result shell exists immediately.
	res, err := f.results.GetByPair(context.Background(), compID, 7)
	require.NoError(t, err)
	assert.True(t, res.IsSubmitted)
	assert.False(t, res.IsGraded)
	assert.Len(t, res.Answers, 3)
	assert.Equal(t, sub.ID, res.SubmissionID)
}

func TestSubmitArityMismatch(t *testing.T) {
	f := newSubmissionFixture()
	compID := seedCompetition(t, f.competitions, nil)
	f.join(t, compID, 7)

	req := submitRequest(3)
	req.Answers = req.Answers[:2]

	_, err := f.svc.Submit(context.Background(), compID, 7, req)

	assert.ErrorIs(t, err, service.ErrAnswerArityMismatch)
}

func TestSubmitCompetitionMissing(t *testing.T) {
	f := newSubmissionFixture()

	_, err := f.svc.Submit(context.Background(), uuid.New(), 7, submitRequest(1))

	assert.ErrorIs(t, err, service.ErrCompetitionNotFound)
}

func TestSubmitWithoutJoining(t *testing.T) {
	f := newSubmissionFixture()
	compID := seedCompetition(t, f.competitions, nil)

	_, err := f.svc.Submit(context.Background(), compID, 7, submitRequest(1))

	assert.ErrorIs(t, err, service.ErrNotJoined)
}

func TestSubmitTwice(t *testing.T) {
	f := newSubmissionFixture()
	compID := seedCompetition(t, f.competitions, nil)
	f.join(t, compID, 7)

	first := submitRequest(2)
	first.Answers = []string{"red", "blue"}
	sub, err := f.svc.Submit(context.Background(), compID, 7, first)
	require.NoError(t, err)

	second := &model.SubmitAnswersRequest{
		QuestionIDs: first.QuestionIDs,
		Answers:     []string{"green", "yellow"},
	}
	_, err = f.svc.Submit(context.Background(), compID, 7, second)
	assert.ErrorIs(t, err, service.ErrDuplicateSubmission)

	// The rejected attempt must not touch the stored submission.
	stored, err := f.svc.Get(context.Background(), compID, 7)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, stored.ID)
	assert.Equal(t, []string{"red", "blue"}, stored.Answers)
	assert.Equal(t, first.QuestionIDs, stored.QuestionIDs)
}

func TestSubmitAfterWindowClosed(t *testing.T) {
	f := newSubmissionFixture()
	compID := seedCompetition(t, f.competitions, nil)
	f.join(t, compID, 7)

	// Answers are handed over after the run ends; no timing gate applies.
	f.clk.Set(testStart.Add(3 * time.Hour))

	_, err := f.svc.Submit(context.Background(), compID, 7, submitRequest(1))
	assert.NoError(t, err)
}

func TestSubmitConcurrentSingleWinner(t *testing.T) {
	f := newSubmissionFixture()
	compID := seedCompetition(t, f.competitions, nil)
	f.join(t, compID, 7)

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Submit(context.Background(), compID, 7, submitRequest(1))
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, service.ErrDuplicateSubmission)
		}
	}
	assert.Equal(t, 1, wins)
}

func TestGetSubmissionMissing(t *testing.T) {
	f := newSubmissionFixture()
	compID := seedCompetition(t, f.competitions, nil)

	_, err := f.svc.Get(context.Background(), compID, 7)

	assert.ErrorIs(t, err, service.ErrSubmissionNotFound)
}
