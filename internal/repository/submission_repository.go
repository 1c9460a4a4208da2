package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/codequesthq/codequest-backend/internal/model"
)

// SubmissionRepository handles submission data access.
type SubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewSubmissionRepository creates a new SubmissionRepository.
func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

// Create inserts a submission. The unique index on
// (competition_id, student_id) is the storage-level guarantee that a pair
// submits at most once; on conflict nothing is inserted and Scan returns
// pgx.ErrNoRows, which callers map to a duplicate-submission outcome. The
// original record is never overwritten.
func (r *SubmissionRepository) Create(ctx context.Context, s *model.Submission) error {
	questionIDs, err := json.Marshal(s.QuestionIDs)
	if err != nil {
		return fmt.Errorf("marshal question ids: %w", err)
	}
	answers, err := json.Marshal(s.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO submissions (competition_id, student_id, question_ids, answers, submission_time)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (competition_id, student_id) DO NOTHING
		 RETURNING id`,
		s.CompetitionID, s.StudentID, questionIDs, answers, s.SubmissionTime,
	).Scan(&s.ID)
}

func scanSubmission(row interface{ Scan(...any) error }) (*model.Submission, error) {
	s := &model.Submission{}
	var questionIDs, answers []byte
	err := row.Scan(&s.ID, &s.CompetitionID, &s.StudentID, &questionIDs, &answers, &s.SubmissionTime)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(questionIDs, &s.QuestionIDs); err != nil {
		return nil, fmt.Errorf("unmarshal question ids: %w", err)
	}
	if err := json.Unmarshal(answers, &s.Answers); err != nil {
		return nil, fmt.Errorf("unmarshal answers: %w", err)
	}
	return s, nil
}

// GetByPair retrieves the submission for a (competition, student) pair.
func (r *SubmissionRepository) GetByPair(ctx context.Context, competitionID uuid.UUID, studentID int) (*model.Submission, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, competition_id, student_id, question_ids, answers, submission_time
		 FROM submissions WHERE competition_id = $1 AND student_id = $2`,
		competitionID, studentID)
	return scanSubmission(row)
}

// GetByID retrieves a submission by id.
func (r *SubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Submission, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, competition_id, student_id, question_ids, answers, submission_time
		 FROM submissions WHERE id = $1`, id)
	return scanSubmission(row)
}

// Exists reports whether a submission exists for the pair.
func (r *SubmissionRepository) Exists(ctx context.Context, competitionID uuid.UUID, studentID int) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM submissions WHERE competition_id = $1 AND student_id = $2
		 )`, competitionID, studentID,
	).Scan(&exists)
	return exists, err
}

// ListByCompetition retrieves all submissions for a competition.
func (r *SubmissionRepository) ListByCompetition(ctx context.Context, competitionID uuid.UUID) ([]model.Submission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, competition_id, student_id, question_ids, answers, submission_time
		 FROM submissions WHERE competition_id = $1
		 ORDER BY submission_time ASC`, competitionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []model.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *s)
	}
	return subs, rows.Err()
}
