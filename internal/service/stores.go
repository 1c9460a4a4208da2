package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/codequesthq/codequest-backend/internal/model"
)

// The store interfaces below are the persistence surface the services
// consume. The pgx repositories in internal/repository satisfy them; tests
// substitute in-memory fakes. Absent rows surface as pgx.ErrNoRows, and
// conflict-suppressed inserts (ON CONFLICT DO NOTHING ... RETURNING) surface
// the same way, so services translate pgx.ErrNoRows into their own typed
// errors at the boundary.

// CompetitionStore is the competition persistence surface.
type CompetitionStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Competition, error)
	Create(ctx context.Context, c *model.Competition) error
	Update(ctx context.Context, c *model.Competition) error
	UpdateDerived(ctx context.Context, c *model.Competition) error
	ListByCreatorPaginated(ctx context.Context, creatorID, limit, offset int) ([]model.Competition, int, error)
	ListLive(ctx context.Context) ([]model.Competition, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ParticipantStore is the membership relation surface.
type ParticipantStore interface {
	Create(ctx context.Context, p *model.Participant) error
	Exists(ctx context.Context, competitionID uuid.UUID, studentID int) (bool, error)
	ListStudentIDs(ctx context.Context, competitionID uuid.UUID) ([]int, error)
	ListCompetitionIDs(ctx context.Context, studentID int) ([]uuid.UUID, error)
	Count(ctx context.Context, competitionID uuid.UUID) (int, error)
}

// StudentStore is the student account surface.
type StudentStore interface {
	GetByID(ctx context.Context, id int) (*model.Student, error)
	GetByEmail(ctx context.Context, email string) (*model.Student, error)
}

// TeacherStore is the teacher/admin account surface.
type TeacherStore interface {
	GetByID(ctx context.Context, id int) (*model.Teacher, error)
	GetByEmail(ctx context.Context, email string) (*model.Teacher, error)
}

// SubmissionStore is the submission persistence surface.
type SubmissionStore interface {
	Create(ctx context.Context, s *model.Submission) error
	GetByPair(ctx context.Context, competitionID uuid.UUID, studentID int) (*model.Submission, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Submission, error)
	Exists(ctx context.Context, competitionID uuid.UUID, studentID int) (bool, error)
}

// ResultStore is the competition result persistence surface.
type ResultStore interface {
	Create(ctx context.Context, res *model.CompetitionResult) error
	UpdateGrades(ctx context.Context, res *model.CompetitionResult) error
	GetByPair(ctx context.Context, competitionID uuid.UUID, studentID int) (*model.CompetitionResult, error)
	ExistsForCompetition(ctx context.Context, competitionID uuid.UUID) (bool, error)
	Stats(ctx context.Context, competitionID uuid.UUID) (*model.CompetitionStats, error)
	Leaderboard(ctx context.Context, competitionID uuid.UUID, limit int) ([]model.LeaderboardEntry, error)
}

// DisqualificationStore is the disqualification persistence surface.
type DisqualificationStore interface {
	Create(ctx context.Context, d *model.Disqualification) error
	GetByPair(ctx context.Context, competitionID uuid.UUID, studentID int) (*model.Disqualification, error)
	ListByCompetition(ctx context.Context, competitionID uuid.UUID) ([]model.Disqualification, error)
}
