package model

import (
	"time"

	"github.com/google/uuid"
)

// CompetitionType enumerates the supported question formats of a competition.
type CompetitionType string

const (
	CompetitionTypeText CompetitionType = "TEXT"
	CompetitionTypeMCQ  CompetitionType = "MCQ"
	CompetitionTypeCode CompetitionType = "CODE"
)

// DefaultDurationMinutes applies when a competition is scheduled without an
// explicit duration or end time.
const DefaultDurationMinutes = 60

// Question is a single question embedded in a competition. Answer holds the
// canonical answer for TEXT and MCQ competitions and stays empty for CODE.
// Options is populated only for MCQ.
type Question struct {
	ID      uuid.UUID `json:"id"`
	Text    string    `json:"text"`
	Answer  string    `json:"answer,omitempty"`
	Options []string  `json:"options,omitempty"`
	Points  int       `json:"points,omitempty"`
}

// Competition represents a timed assessment owned by a teacher or admin.
//
// SeqID is the human-facing sequential id, assigned as max(existing)+1 at
// creation. Status is a cached derivation of (AvailableFrom, EndAt, now); it
// may be momentarily stale between sweeps but self-corrects on the next write
// or sweep.
type Competition struct {
	ID              uuid.UUID         `json:"id"`
	SeqID           int               `json:"seq_id"`
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	Type            CompetitionType   `json:"type"`
	DurationMinutes int               `json:"duration_minutes"`
	Questions       []Question        `json:"questions"`
	CreatorID       int               `json:"creator_id"`
	IsLive          bool              `json:"is_live"`
	AvailableFrom   *time.Time        `json:"available_from,omitempty"`
	EndAt           *time.Time        `json:"end_at,omitempty"`
	LastSaved       time.Time         `json:"last_saved"`
	Status          CompetitionStatus `json:"status"`
	Archived        bool              `json:"archived"`
	Winner          *int              `json:"winner,omitempty"`
	RunnerUp        *int              `json:"runner_up,omitempty"`
	SecondRunnerUp  *int              `json:"second_runner_up,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// JoinableAt reports whether now falls inside the availability window.
// A competition without a schedule is never joinable.
func (c *Competition) JoinableAt(now time.Time) bool {
	if c.AvailableFrom == nil || c.EndAt == nil {
		return false
	}
	return !now.Before(*c.AvailableFrom) && !now.After(*c.EndAt)
}

// CompetitionPayload is the Redis-cached payload sent to students
// (no canonical answers).
type CompetitionPayload struct {
	CompetitionID uuid.UUID            `json:"competition_id"`
	Name          string               `json:"name"`
	Type          CompetitionType      `json:"type"`
	Duration      int                  `json:"duration_minutes"`
	Questions     []QuestionForStudent `json:"questions"`
}

// QuestionForStudent is a question without the canonical answer.
type QuestionForStudent struct {
	ID      uuid.UUID `json:"id"`
	Text    string    `json:"text"`
	Options []string  `json:"options,omitempty"`
}

// StripAnswers builds the student-facing projection of the question list.
func StripAnswers(questions []Question) []QuestionForStudent {
	out := make([]QuestionForStudent, len(questions))
	for i, q := range questions {
		out[i] = QuestionForStudent{
			ID:      q.ID,
			Text:    q.Text,
			Options: q.Options,
		}
	}
	return out
}

// CreateCompetitionRequest is the payload for creating a new competition.
type CreateCompetitionRequest struct {
	Name            string            `json:"name" binding:"required,min=3,max=255"`
	Description     string            `json:"description" binding:"omitempty,max=2000"`
	Type            CompetitionType   `json:"type" binding:"required,oneof=TEXT MCQ CODE"`
	DurationMinutes int               `json:"duration_minutes" binding:"omitempty,min=1,max=480"`
	Questions       []QuestionRequest `json:"questions" binding:"omitempty,dive"`
	IsLive          bool              `json:"is_live"`
	AvailableFrom   *time.Time        `json:"available_from" binding:"omitempty"`
	EndAt           *time.Time        `json:"end_at" binding:"omitempty,gtfield=AvailableFrom"`
}

// QuestionRequest is one question in a create/update payload.
type QuestionRequest struct {
	Text    string   `json:"text" binding:"required,min=1,max=2000"`
	Answer  string   `json:"answer" binding:"omitempty,max=2000"`
	Options []string `json:"options" binding:"omitempty,dive,min=1"`
	Points  int      `json:"points" binding:"omitempty,min=1"`
}

// UpdateCompetitionRequest is the payload for a partial competition update.
// Nil pointers leave the stored value untouched.
type UpdateCompetitionRequest struct {
	Name            *string            `json:"name" binding:"omitempty,min=3,max=255"`
	Description     *string            `json:"description" binding:"omitempty,max=2000"`
	Type            *CompetitionType   `json:"type" binding:"omitempty,oneof=TEXT MCQ CODE"`
	DurationMinutes *int               `json:"duration_minutes" binding:"omitempty,min=1,max=480"`
	Questions       *[]QuestionRequest `json:"questions" binding:"omitempty,dive"`
	IsLive          *bool              `json:"is_live"`
	AvailableFrom   *time.Time         `json:"available_from"`
	EndAt           *time.Time         `json:"end_at"`
	Archived        *bool              `json:"archived"`
	Winner          *int               `json:"winner"`
	RunnerUp        *int               `json:"runner_up"`
	SecondRunnerUp  *int               `json:"second_runner_up"`
}
