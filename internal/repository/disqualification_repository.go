package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/codequesthq/codequest-backend/internal/model"
)

// DisqualificationRepository handles disqualification data access.
type DisqualificationRepository struct {
	pool *pgxpool.Pool
}

// NewDisqualificationRepository creates a new DisqualificationRepository.
func NewDisqualificationRepository(pool *pgxpool.Pool) *DisqualificationRepository {
	return &DisqualificationRepository{pool: pool}
}

// Create inserts a disqualification row. The unique index on
// (competition_id, student_id) rejects a second disqualification of the same
// pair; on conflict Scan returns pgx.ErrNoRows.
func (r *DisqualificationRepository) Create(ctx context.Context, d *model.Disqualification) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO disqualifications (competition_id, student_id, reason, disqualified)
		 VALUES ($1, $2, $3, true)
		 ON CONFLICT (competition_id, student_id) DO NOTHING
		 RETURNING id, disqualified_at`,
		d.CompetitionID, d.StudentID, d.Reason,
	).Scan(&d.ID, &d.DisqualifiedAt)
}

// GetByPair retrieves the disqualification for a (competition, student) pair.
func (r *DisqualificationRepository) GetByPair(ctx context.Context, competitionID uuid.UUID, studentID int) (*model.Disqualification, error) {
	d := &model.Disqualification{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, competition_id, student_id, reason, disqualified, disqualified_at
		 FROM disqualifications WHERE competition_id = $1 AND student_id = $2`,
		competitionID, studentID,
	).Scan(&d.ID, &d.CompetitionID, &d.StudentID, &d.Reason, &d.Disqualified, &d.DisqualifiedAt)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// ListByCompetition retrieves all disqualifications for a competition.
func (r *DisqualificationRepository) ListByCompetition(ctx context.Context, competitionID uuid.UUID) ([]model.Disqualification, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, competition_id, student_id, reason, disqualified, disqualified_at
		 FROM disqualifications WHERE competition_id = $1
		 ORDER BY disqualified_at ASC`, competitionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dqs []model.Disqualification
	for rows.Next() {
		var d model.Disqualification
		if err := rows.Scan(&d.ID, &d.CompetitionID, &d.StudentID, &d.Reason,
			&d.Disqualified, &d.DisqualifiedAt); err != nil {
			return nil, err
		}
		dqs = append(dqs, d)
	}
	return dqs, rows.Err()
}
