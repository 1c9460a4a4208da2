package model

import (
	"time"

	"github.com/google/uuid"
)

// Answer is one graded (or yet-ungraded) answer inside a competition result.
// Execution carries optional run metadata for CODE answers.
type Answer struct {
	QuestionID uuid.UUID `json:"question_id"`
	Raw        string    `json:"raw"`
	IsCorrect  bool      `json:"is_correct"`
	Score      int       `json:"score"`
	Execution  string    `json:"execution,omitempty"`
}

// CompetitionResult is the graded outcome of a submission, one per
// (student, competition) pair. Before grading, TotalScore and
// PercentageScore read as zero; callers must distinguish "ungraded" from
// "graded with score 0" by IsGraded, never by score magnitude.
type CompetitionResult struct {
	ID              uuid.UUID  `json:"id"`
	CompetitionID   uuid.UUID  `json:"competition_id"`
	StudentID       int        `json:"student_id"`
	SubmissionID    uuid.UUID  `json:"submission_id"`
	Answers         []Answer   `json:"answers"`
	IsSubmitted     bool       `json:"is_submitted"`
	IsGraded        bool       `json:"is_graded"`
	TotalScore      int        `json:"total_score"`
	MaxPossibleScore int       `json:"max_possible_score"`
	PercentageScore float64    `json:"percentage_score"`
	SubmissionTime  time.Time  `json:"submission_time"`
	GradedTime      *time.Time `json:"graded_time,omitempty"`
}

// QuestionMark is a teacher's per-question verdict when grading TEXT/CODE
// submissions manually.
type QuestionMark struct {
	QuestionID uuid.UUID `json:"question_id" binding:"required"`
	IsCorrect  bool      `json:"is_correct"`
	Score      int       `json:"score" binding:"omitempty,min=0"`
}

// GradeSubmissionRequest is the payload for manual grading.
type GradeSubmissionRequest struct {
	Marks     []QuestionMark `json:"marks" binding:"required,min=1,dive"`
	Overwrite bool           `json:"overwrite"`
}

// CompetitionStats is the teacher dashboard aggregate for one competition.
// AverageScore folds over graded results only; TotalSubmissions counts all.
type CompetitionStats struct {
	CompetitionID    uuid.UUID `json:"competition_id"`
	Participants     int       `json:"participants"`
	TotalSubmissions int       `json:"total_submissions"`
	GradedCount      int       `json:"graded_count"`
	AverageScore     float64   `json:"average_score"`
	MaxScore         int       `json:"max_score"`
	CompletionRate   float64   `json:"completion_rate"`
}

// LeaderboardEntry is one row of a competition leaderboard; only graded
// results appear.
type LeaderboardEntry struct {
	StudentID       int     `json:"student_id"`
	StudentName     string  `json:"student_name"`
	TotalScore      int     `json:"total_score"`
	PercentageScore float64 `json:"percentage_score"`
}
