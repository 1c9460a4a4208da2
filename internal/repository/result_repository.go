package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/codequesthq/codequest-backend/internal/model"
)

const resultColumns = `id, competition_id, student_id, submission_id, answers,
	is_submitted, is_graded, total_score, max_possible_score, percentage_score,
	submission_time, graded_time`

// ResultRepository handles competition result data access.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

func scanResult(row interface{ Scan(...any) error }) (*model.CompetitionResult, error) {
	res := &model.CompetitionResult{}
	var answers []byte
	err := row.Scan(&res.ID, &res.CompetitionID, &res.StudentID, &res.SubmissionID,
		&answers, &res.IsSubmitted, &res.IsGraded, &res.TotalScore,
		&res.MaxPossibleScore, &res.PercentageScore, &res.SubmissionTime, &res.GradedTime)
	if err != nil {
		return nil, err
	}
	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &res.Answers); err != nil {
			return nil, fmt.Errorf("unmarshal answers: %w", err)
		}
	}
	return res, nil
}

// Create inserts an ungraded result shell. The unique index on
// (competition_id, student_id) keeps the relation one-per-pair; on conflict
// Scan returns pgx.ErrNoRows.
func (r *ResultRepository) Create(ctx context.Context, res *model.CompetitionResult) error {
	answers, err := json.Marshal(res.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO competition_results
		    (competition_id, student_id, submission_id, answers, is_submitted, is_graded,
		     total_score, max_possible_score, percentage_score, submission_time, graded_time)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (competition_id, student_id) DO NOTHING
		 RETURNING id`,
		res.CompetitionID, res.StudentID, res.SubmissionID, answers, res.IsSubmitted,
		res.IsGraded, res.TotalScore, res.MaxPossibleScore, res.PercentageScore,
		res.SubmissionTime, res.GradedTime,
	).Scan(&res.ID)
}

// UpdateGrades overwrites the graded fields of an existing result.
func (r *ResultRepository) UpdateGrades(ctx context.Context, res *model.CompetitionResult) error {
	answers, err := json.Marshal(res.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`UPDATE competition_results
		 SET answers = $1, is_graded = $2, total_score = $3, max_possible_score = $4,
		     percentage_score = $5, graded_time = $6
		 WHERE id = $7`,
		answers, res.IsGraded, res.TotalScore, res.MaxPossibleScore,
		res.PercentageScore, res.GradedTime, res.ID)
	return err
}

// GetByPair retrieves the result for a (competition, student) pair.
func (r *ResultRepository) GetByPair(ctx context.Context, competitionID uuid.UUID, studentID int) (*model.CompetitionResult, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+resultColumns+` FROM competition_results
		 WHERE competition_id = $1 AND student_id = $2`, competitionID, studentID)
	return scanResult(row)
}

// ExistsForCompetition reports whether any result exists for a competition.
// Used by delete-or-archive.
func (r *ResultRepository) ExistsForCompetition(ctx context.Context, competitionID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM competition_results WHERE competition_id = $1)`,
		competitionID,
	).Scan(&exists)
	return exists, err
}

// Stats aggregates result rows for one competition. The average folds over
// graded rows only; total_submissions counts every row.
func (r *ResultRepository) Stats(ctx context.Context, competitionID uuid.UUID) (*model.CompetitionStats, error) {
	stats := &model.CompetitionStats{CompetitionID: competitionID}
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE is_graded),
		        COALESCE(AVG(total_score) FILTER (WHERE is_graded), 0),
		        COALESCE(MAX(total_score) FILTER (WHERE is_graded), 0)
		 FROM competition_results WHERE competition_id = $1`,
		competitionID,
	).Scan(&stats.TotalSubmissions, &stats.GradedCount, &stats.AverageScore, &stats.MaxScore)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// Leaderboard returns graded results ordered by score, joined with student
// names for display.
func (r *ResultRepository) Leaderboard(ctx context.Context, competitionID uuid.UUID, limit int) ([]model.LeaderboardEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT cr.student_id, CONCAT(s.first_name, ' ', s.last_name),
		        cr.total_score, cr.percentage_score
		 FROM competition_results cr
		 JOIN students s ON s.id = cr.student_id
		 WHERE cr.competition_id = $1 AND cr.is_graded = true
		 ORDER BY cr.total_score DESC, cr.submission_time ASC
		 LIMIT $2`, competitionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.LeaderboardEntry
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.StudentID, &e.StudentName, &e.TotalScore, &e.PercentageScore); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
