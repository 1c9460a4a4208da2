package model

import (
	"time"

	"github.com/google/uuid"
)

// Disqualification records a student being removed from a competition. At
// most one row exists per (student, competition) pair, and one is only
// accepted if the student had actually joined.
type Disqualification struct {
	ID             uuid.UUID `json:"id"`
	CompetitionID  uuid.UUID `json:"competition_id"`
	StudentID      int       `json:"student_id"`
	Reason         string    `json:"reason"`
	Disqualified   bool      `json:"disqualified"`
	DisqualifiedAt time.Time `json:"disqualified_at"`
}

// DisqualifyStudentRequest is the payload for disqualifying a student.
type DisqualifyStudentRequest struct {
	StudentID int    `json:"student_id" binding:"required"`
	Reason    string `json:"reason" binding:"required,min=1,max=1000"`
}
