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

var testStart = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func seedCompetition(t *testing.T, store *fakeCompetitionStore, mutate func(*model.Competition)) uuid.UUID {
	t.Helper()
	from := testStart
	end := from.Add(time.Hour)
	c := &model.Competition{
		Name:            "Spring Code-Quest",
		Type:            model.CompetitionTypeMCQ,
		DurationMinutes: 60,
		CreatorID:       1,
		IsLive:          true,
		AvailableFrom:   &from,
		EndAt:           &end,
		Status:          model.StatusActive,
		Questions: []model.Question{
			{ID: uuid.New(), Text: "2+2?", Answer: "4"},
		},
	}
	if mutate != nil {
		mutate(c)
	}
	require.NoError(t, store.Create(context.Background(), c))
	return c.ID
}

type joinFixture struct {
	svc          *service.JoinService
	competitions *fakeCompetitionStore
	participants *fakeParticipantStore
	clk          *clock.Manual
}

func newJoinFixture() *joinFixture {
	competitions := newFakeCompetitionStore()
	participants := newFakeParticipantStore()
	students := newFakeStudentStore(
		&model.Student{ID: 7, FirstName: "Ada", LastName: "L", Email: "ada@example.com"},
	)
	clk := clock.NewManual(testStart.Add(10 * time.Minute))
	svc := service.NewJoinService(competitions, participants, students, clk, zerolog.Nop())
	return &joinFixture{svc: svc, competitions: competitions, participants: participants, clk: clk}
}

func TestJoinHappyPath(t *testing.T) {
	f := newJoinFixture()
	compID := seedCompetition(t, f.competitions, nil)

	p, err := f.svc.Join(context.Background(), compID, 7)

	require.NoError(t, err)
	assert.Equal(t, compID, p.CompetitionID)
	assert.Equal(t, 7, p.StudentID)

	joined, err := f.svc.HasJoined(context.Background(), compID, 7)
	require.NoError(t, err)
	assert.True(t, joined)
}

func TestJoinCompetitionMissing(t *testing.T) {
	f := newJoinFixture()

	_, err := f.svc.Join(context.Background(), uuid.New(), 7)

	assert.ErrorIs(t, err, service.ErrCompetitionNotFound)
}

func TestJoinNotLive(t *testing.T) {
	f := newJoinFixture()
	compID := seedCompetition(t, f.competitions, func(c *model.Competition) {
		c.IsLive = false
	})

	_, err := f.svc.Join(context.Background(), compID, 7)

	assert.ErrorIs(t, err, service.ErrNotJoinable)
}

func TestJoinArchived(t *testing.T) {
	f := newJoinFixture()
	compID := seedCompetition(t, f.competitions, func(c *model.Competition) {
		c.Archived = true
	})

	_, err := f.svc.Join(context.Background(), compID, 7)

	assert.ErrorIs(t, err, service.ErrNotJoinable)
}

func TestJoinBeforeWindowOpens(t *testing.T) {
	f := newJoinFixture()
	compID := seedCompetition(t, f.competitions, func(c *model.Competition) {
		c.Status = model.StatusUpcoming
	})
	f.clk.Set(testStart.Add(-time.Minute))

	_, err := f.svc.Join(context.Background(), compID, 7)

	var availErr *service.AvailabilityError
	require.ErrorAs(t, err, &availErr)
	assert.Equal(t, testStart, *availErr.AvailableFrom)
	assert.Equal(t, testStart.Add(-time.Minute), availErr.Now)
}

func TestJoinAfterWindowCloses(t *testing.T) {
	f := newJoinFixture()
	compID := seedCompetition(t, f.competitions, nil)
	f.clk.Set(testStart.Add(2 * time.Hour))

	_, err := f.svc.Join(context.Background(), compID, 7)

	// Resolution archives the ended competition before the window check, so
	// the outcome is not-joinable rather than an availability miss.
	assert.ErrorIs(t, err, service.ErrNotJoinable)

	stored, getErr := f.competitions.GetByID(context.Background(), compID)
	require.NoError(t, getErr)
	assert.True(t, stored.Archived)
	assert.Equal(t, model.StatusEnded, stored.Status)
}

func TestJoinUnknownStudent(t *testing.T) {
	f := newJoinFixture()
	compID := seedCompetition(t, f.competitions, nil)

	_, err := f.svc.Join(context.Background(), compID, 999)

	assert.ErrorIs(t, err, service.ErrStudentNotFound)
}

func TestJoinTwice(t *testing.T) {
	f := newJoinFixture()
	compID := seedCompetition(t, f.competitions, nil)

	_, err := f.svc.Join(context.Background(), compID, 7)
	require.NoError(t, err)

	_, err = f.svc.Join(context.Background(), compID, 7)
	assert.ErrorIs(t, err, service.ErrAlreadyJoined)
}

func TestJoinConcurrentSingleWinner(t *testing.T) {
	f := newJoinFixture()
	compID := seedCompetition(t, f.competitions, nil)

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Join(context.Background(), compID, 7)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, service.ErrAlreadyJoined)
		}
	}
	assert.Equal(t, 1, wins)

	n, err := f.participants.Count(context.Background(), compID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
