package model

import (
	"time"

	"github.com/google/uuid"
)

// Submission is a student's one-shot answer payload for a competition.
// QuestionIDs and Answers are parallel ordered lists; len(QuestionIDs) ==
// len(Answers) holds for every persisted record. At most one submission
// exists per (student, competition) pair, enforced by a unique index.
//
// An answer is the raw string for TEXT/MCQ or a serialized code+language
// payload for CODE.
type Submission struct {
	ID             uuid.UUID   `json:"id"`
	CompetitionID  uuid.UUID   `json:"competition_id"`
	StudentID      int         `json:"student_id"`
	QuestionIDs    []uuid.UUID `json:"question_ids"`
	Answers        []string    `json:"answers"`
	SubmissionTime time.Time   `json:"submission_time"`
}

// SubmitAnswersRequest is the payload for submitting competition answers.
type SubmitAnswersRequest struct {
	QuestionIDs []uuid.UUID `json:"question_ids" binding:"required,min=1"`
	Answers     []string    `json:"answers" binding:"required,min=1"`
}

// Participant is one row of the competition membership relation. The student
// side ("competitions a student joined") and the competition side ("students
// in a competition") are both derived views of this single relation.
type Participant struct {
	CompetitionID uuid.UUID `json:"competition_id"`
	StudentID     int       `json:"student_id"`
	JoinedAt      time.Time `json:"joined_at"`
}
