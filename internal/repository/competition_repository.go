package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/codequesthq/codequest-backend/internal/model"
)

const competitionColumns = `id, seq_id, name, description, type, duration_minutes, questions,
	creator_id, is_live, available_from, end_at, last_saved, status, archived,
	winner, runner_up, second_runner_up, created_at, updated_at`

// CompetitionRepository handles competition data access.
type CompetitionRepository struct {
	pool *pgxpool.Pool
}

// NewCompetitionRepository creates a new CompetitionRepository.
func NewCompetitionRepository(pool *pgxpool.Pool) *CompetitionRepository {
	return &CompetitionRepository{pool: pool}
}

func scanCompetition(row interface{ Scan(...any) error }) (*model.Competition, error) {
	c := &model.Competition{}
	var questions []byte
	err := row.Scan(&c.ID, &c.SeqID, &c.Name, &c.Description, &c.Type, &c.DurationMinutes,
		&questions, &c.CreatorID, &c.IsLive, &c.AvailableFrom, &c.EndAt, &c.LastSaved,
		&c.Status, &c.Archived, &c.Winner, &c.RunnerUp, &c.SecondRunnerUp,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(questions) > 0 {
		if err := json.Unmarshal(questions, &c.Questions); err != nil {
			return nil, fmt.Errorf("unmarshal questions: %w", err)
		}
	}
	return c, nil
}

// GetByID retrieves a competition by its UUID.
func (r *CompetitionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Competition, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+competitionColumns+` FROM competitions WHERE id = $1`, id)
	return scanCompetition(row)
}

// Create inserts a new competition, assigning the next sequential id.
// The seq_id subselect runs inside the INSERT so two concurrent creates
// contend on the unique index rather than both reading the same max.
func (r *CompetitionRepository) Create(ctx context.Context, c *model.Competition) error {
	questions, err := json.Marshal(c.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO competitions
		    (seq_id, name, description, type, duration_minutes, questions, creator_id,
		     is_live, available_from, end_at, last_saved, status, archived)
		 SELECT COALESCE(MAX(seq_id), 0) + 1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, false
		 FROM competitions
		 RETURNING id, seq_id, created_at, updated_at`,
		c.Name, c.Description, c.Type, c.DurationMinutes, questions, c.CreatorID,
		c.IsLive, c.AvailableFrom, c.EndAt, c.LastSaved, c.Status,
	).Scan(&c.ID, &c.SeqID, &c.CreatedAt, &c.UpdatedAt)
}

// Update persists every mutable field of a competition.
func (r *CompetitionRepository) Update(ctx context.Context, c *model.Competition) error {
	questions, err := json.Marshal(c.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`UPDATE competitions
		 SET name = $1, description = $2, type = $3, duration_minutes = $4,
		     questions = $5, is_live = $6, available_from = $7, end_at = $8,
		     last_saved = $9, status = $10, archived = $11,
		     winner = $12, runner_up = $13, second_runner_up = $14,
		     updated_at = NOW()
		 WHERE id = $15`,
		c.Name, c.Description, c.Type, c.DurationMinutes, questions, c.IsLive,
		c.AvailableFrom, c.EndAt, c.LastSaved, c.Status, c.Archived,
		c.Winner, c.RunnerUp, c.SecondRunnerUp, c.ID)
	return err
}

// UpdateDerived persists only the fields the status resolver may change.
// Used by the sweep worker and by reactive on-read resolution.
func (r *CompetitionRepository) UpdateDerived(ctx context.Context, c *model.Competition) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE competitions
		 SET status = $1, end_at = $2, is_live = $3, archived = $4, updated_at = NOW()
		 WHERE id = $5`,
		c.Status, c.EndAt, c.IsLive, c.Archived, c.ID)
	return err
}

// ListByCreatorPaginated retrieves competitions for one creator with pagination.
func (r *CompetitionRepository) ListByCreatorPaginated(ctx context.Context, creatorID, limit, offset int) ([]model.Competition, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM competitions WHERE creator_id = $1`, creatorID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+competitionColumns+`
		 FROM competitions WHERE creator_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		creatorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var comps []model.Competition
	for rows.Next() {
		c, err := scanCompetition(rows)
		if err != nil {
			return nil, 0, err
		}
		comps = append(comps, *c)
	}
	return comps, total, rows.Err()
}

// ListLive returns live, non-archived competitions for the student lobby and
// for cache prewarming on startup.
func (r *CompetitionRepository) ListLive(ctx context.Context) ([]model.Competition, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+competitionColumns+`
		 FROM competitions
		 WHERE is_live = true AND archived = false
		 ORDER BY available_from ASC NULLS LAST`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comps []model.Competition
	for rows.Next() {
		c, err := scanCompetition(rows)
		if err != nil {
			return nil, err
		}
		comps = append(comps, *c)
	}
	return comps, rows.Err()
}

// ListScheduled returns every competition with a non-null availability
// timestamp. The sweep worker resolves status over this set.
func (r *CompetitionRepository) ListScheduled(ctx context.Context) ([]model.Competition, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+competitionColumns+`
		 FROM competitions
		 WHERE available_from IS NOT NULL
		 ORDER BY available_from ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comps []model.Competition
	for rows.Next() {
		c, err := scanCompetition(rows)
		if err != nil {
			return nil, err
		}
		comps = append(comps, *c)
	}
	return comps, rows.Err()
}

// Delete removes a competition row.
func (r *CompetitionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM competitions WHERE id = $1`, id)
	return err
}
