package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codequesthq/codequest-backend/internal/model"
)

func TestResolveStatus(t *testing.T) {
	from := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	end := from.Add(time.Hour)

	assert.Equal(t, model.StatusUpcoming, model.ResolveStatus(from.Add(-time.Minute), from, end))
	assert.Equal(t, model.StatusActive, model.ResolveStatus(from, from, end))
	assert.Equal(t, model.StatusActive, model.ResolveStatus(from.Add(30*time.Minute), from, end))
	assert.Equal(t, model.StatusActive, model.ResolveStatus(end, from, end))
	assert.Equal(t, model.StatusEnded, model.ResolveStatus(end.Add(time.Second), from, end))
}

func TestResolveStatusMonotonic(t *testing.T) {
	from := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	end := from.Add(time.Hour)

	rank := map[model.CompetitionStatus]int{
		model.StatusUpcoming: 0,
		model.StatusActive:   1,
		model.StatusEnded:    2,
	}

	prev := -1
	for now := from.Add(-time.Hour); now.Before(end.Add(time.Hour)); now = now.Add(time.Minute) {
		cur := rank[model.ResolveStatus(now, from, end)]
		require.GreaterOrEqual(t, cur, prev, "status regressed at %s", now)
		prev = cur
	}
}

func TestResolveUnscheduledUntouched(t *testing.T) {
	c := &model.Competition{Status: model.StatusUpcoming, DurationMinutes: 60}

	changed := c.Resolve(time.Now())

	assert.False(t, changed)
	assert.Nil(t, c.EndAt)
	assert.Equal(t, model.StatusUpcoming, c.Status)
}

func TestResolveCachesEndAt(t *testing.T) {
	from := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	c := &model.Competition{
		Status:          model.StatusUpcoming,
		DurationMinutes: 90,
		AvailableFrom:   &from,
	}

	changed := c.Resolve(from.Add(time.Minute))
	require.True(t, changed)
	require.NotNil(t, c.EndAt)
	assert.Equal(t, from.Add(90*time.Minute), *c.EndAt)
	assert.Equal(t, model.StatusActive, c.Status)

	// A later duration edit must not move the cached end.
	c.DurationMinutes = 5
	c.Resolve(from.Add(2 * time.Minute))
	assert.Equal(t, from.Add(90*time.Minute), *c.EndAt)
	assert.Equal(t, model.StatusActive, c.Status)
}

func TestResolveDefaultDuration(t *testing.T) {
	from := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	c := &model.Competition{AvailableFrom: &from, Status: model.StatusUpcoming}

	c.Resolve(from)

	require.NotNil(t, c.EndAt)
	assert.Equal(t, from.Add(model.DefaultDurationMinutes*time.Minute), *c.EndAt)
}

func TestResolveArchivesEndedLiveCompetition(t *testing.T) {
	from := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	end := from.Add(time.Hour)
	c := &model.Competition{
		Status:        model.StatusActive,
		IsLive:        true,
		AvailableFrom: &from,
		EndAt:         &end,
	}

	changed := c.Resolve(end.Add(time.Minute))

	require.True(t, changed)
	assert.Equal(t, model.StatusEnded, c.Status)
	assert.False(t, c.IsLive)
	assert.True(t, c.Archived)

	// Resolving again is a no-op.
	assert.False(t, c.Resolve(end.Add(2*time.Minute)))
}

func TestResolveEndedDraftNotArchived(t *testing.T) {
	from := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	end := from.Add(time.Hour)
	c := &model.Competition{
		Status:        model.StatusActive,
		IsLive:        false,
		AvailableFrom: &from,
		EndAt:         &end,
	}

	c.Resolve(end.Add(time.Minute))

	assert.Equal(t, model.StatusEnded, c.Status)
	assert.False(t, c.Archived)
}

func TestJoinableAt(t *testing.T) {
	from := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	end := from.Add(time.Hour)
	c := &model.Competition{AvailableFrom: &from, EndAt: &end}

	assert.False(t, c.JoinableAt(from.Add(-time.Second)))
	assert.True(t, c.JoinableAt(from))
	assert.True(t, c.JoinableAt(end))
	assert.False(t, c.JoinableAt(end.Add(time.Second)))

	unscheduled := &model.Competition{}
	assert.False(t, unscheduled.JoinableAt(from))
}

func TestStripAnswers(t *testing.T) {
	questions := []model.Question{
		{Text: "2+2?", Answer: "4", Points: 2},
		{Text: "Pick one", Answer: "b", Options: []string{"a", "b"}},
	}

	stripped := model.StripAnswers(questions)

	require.Len(t, stripped, 2)
	assert.Equal(t, "2+2?", stripped[0].Text)
	assert.Equal(t, []string{"a", "b"}, stripped[1].Options)
}
