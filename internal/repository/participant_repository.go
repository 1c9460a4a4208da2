package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/codequesthq/codequest-backend/internal/model"
)

// ParticipantRepository handles the competition membership relation. It is
// the single source of truth for "who joined what": the per-student and
// per-competition membership lists are both derived from this one table, so
// there is no dual write to keep in sync.
type ParticipantRepository struct {
	pool *pgxpool.Pool
}

// NewParticipantRepository creates a new ParticipantRepository.
func NewParticipantRepository(pool *pgxpool.Pool) *ParticipantRepository {
	return &ParticipantRepository{pool: pool}
}

// Create inserts a membership row. The composite primary key on
// (competition_id, student_id) is the authoritative backstop against
// concurrent duplicate joins: on conflict nothing is inserted and Scan
// returns pgx.ErrNoRows, which callers map to an already-joined outcome.
func (r *ParticipantRepository) Create(ctx context.Context, p *model.Participant) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO competition_participants (competition_id, student_id)
		 VALUES ($1, $2)
		 ON CONFLICT (competition_id, student_id) DO NOTHING
		 RETURNING joined_at`,
		p.CompetitionID, p.StudentID,
	).Scan(&p.JoinedAt)
}

// Exists reports whether a student has joined a competition.
func (r *ParticipantRepository) Exists(ctx context.Context, competitionID uuid.UUID, studentID int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM competition_participants
		   WHERE competition_id = $1 AND student_id = $2
		 )`, competitionID, studentID,
	).Scan(&exists)
	return exists, err
}

// ListStudentIDs returns the ids of all students in a competition.
func (r *ParticipantRepository) ListStudentIDs(ctx context.Context, competitionID uuid.UUID) ([]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT student_id FROM competition_participants
		 WHERE competition_id = $1 ORDER BY joined_at ASC`, competitionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListCompetitionIDs returns the ids of all competitions a student joined.
func (r *ParticipantRepository) ListCompetitionIDs(ctx context.Context, studentID int) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT competition_id FROM competition_participants
		 WHERE student_id = $1 ORDER BY joined_at ASC`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Count returns the number of participants in a competition.
func (r *ParticipantRepository) Count(ctx context.Context, competitionID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM competition_participants WHERE competition_id = $1`,
		competitionID,
	).Scan(&n)
	return n, err
}
