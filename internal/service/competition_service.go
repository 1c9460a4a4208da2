package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/codequesthq/codequest-backend/internal/clock"
	"github.com/codequesthq/codequest-backend/internal/config"
	"github.com/codequesthq/codequest-backend/internal/model"
)

// Domain errors.
var (
	ErrCompetitionNotFound  = errors.New("competition not found")
	ErrNotCompetitionAuthor = errors.New("not the creator of this competition")
	ErrNoQuestions          = errors.New("competition has no questions")
	ErrAnswerRequired       = errors.New("TEXT and MCQ questions require a canonical answer")
	ErrOptionsRequired      = errors.New("MCQ questions require at least two options")
)

// CompetitionService handles competition lifecycle business logic and the
// Redis payload/answer-key cache for live competitions.
type CompetitionService struct {
	competitions CompetitionStore
	participants ParticipantStore
	results      ResultStore
	rdb          *redis.Client
	clk          clock.Clock
	log          zerolog.Logger
}

// NewCompetitionService creates a new CompetitionService.
func NewCompetitionService(
	competitions CompetitionStore,
	participants ParticipantStore,
	results ResultStore,
	rdb *redis.Client,
	clk clock.Clock,
	log zerolog.Logger,
) *CompetitionService {
	return &CompetitionService{
		competitions: competitions,
		participants: participants,
		results:      results,
		rdb:          rdb,
		clk:          clk,
		log:          log.With().Str("component", "competition_service").Logger(),
	}
}

// Create inserts a new competition for creatorID. Status is resolved from
// the schedule before the first save, so a competition created mid-window is
// born active rather than waiting for the first sweep.
func (s *CompetitionService) Create(ctx context.Context, creatorID int, req *model.CreateCompetitionRequest) (*model.Competition, error) {
	questions, err := buildQuestions(req.Type, req.Questions)
	if err != nil {
		return nil, err
	}

	duration := req.DurationMinutes
	if duration <= 0 {
		duration = model.DefaultDurationMinutes
	}

	now := s.clk.Now()
	c := &model.Competition{
		Name:            req.Name,
		Description:     req.Description,
		Type:            req.Type,
		DurationMinutes: duration,
		Questions:       questions,
		CreatorID:       creatorID,
		IsLive:          req.IsLive,
		AvailableFrom:   req.AvailableFrom,
		EndAt:           req.EndAt,
		LastSaved:       now,
		Status:          model.StatusUpcoming,
	}
	c.Resolve(now)

	if err := s.competitions.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create competition: %w", err)
	}

	if c.IsLive {
		if err := s.WarmCompetitionCache(ctx, c); err != nil {
			s.log.Warn().Err(err).Str("competition_id", c.ID.String()).Msg("Cache warm failed")
		}
	}

	s.log.Info().
		Str("competition_id", c.ID.String()).
		Int("seq_id", c.SeqID).
		Str("type", string(c.Type)).
		Msg("Competition created")
	return c, nil
}

// Get retrieves a competition, resolving its cached status on the way out so
// stale reads are bounded by time since last write.
func (s *CompetitionService) Get(ctx context.Context, id uuid.UUID) (*model.Competition, error) {
	c, err := s.competitions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCompetitionNotFound
		}
		return nil, fmt.Errorf("get competition: %w", err)
	}
	s.resolveAndPersist(ctx, c)
	return c, nil
}

// Update applies a partial update to a competition owned by creatorID.
// lastSaved is refreshed and the status re-resolved on every mutation.
func (s *CompetitionService) Update(ctx context.Context, creatorID int, id uuid.UUID, req *model.UpdateCompetitionRequest) (*model.Competition, error) {
	c, err := s.competitions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCompetitionNotFound
		}
		return nil, fmt.Errorf("get competition: %w", err)
	}
	if c.CreatorID != creatorID {
		return nil, ErrNotCompetitionAuthor
	}

	wasLive := c.IsLive

	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.Type != nil {
		c.Type = *req.Type
	}
	if req.DurationMinutes != nil {
		c.DurationMinutes = *req.DurationMinutes
	}
	if req.Questions != nil {
		questions, err := buildQuestions(c.Type, *req.Questions)
		if err != nil {
			return nil, err
		}
		c.Questions = questions
	}
	if req.IsLive != nil {
		c.IsLive = *req.IsLive
	}
	if req.AvailableFrom != nil {
		c.AvailableFrom = req.AvailableFrom
		// A rescheduled competition gets its end recomputed from the new
		// start unless the caller pins one explicitly.
		c.EndAt = nil
	}
	if req.EndAt != nil {
		c.EndAt = req.EndAt
	}
	if req.Archived != nil {
		c.Archived = *req.Archived
	}
	if req.Winner != nil {
		c.Winner = req.Winner
	}
	if req.RunnerUp != nil {
		c.RunnerUp = req.RunnerUp
	}
	if req.SecondRunnerUp != nil {
		c.SecondRunnerUp = req.SecondRunnerUp
	}

	now := s.clk.Now()
	c.LastSaved = now
	c.Resolve(now)

	if err := s.competitions.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("update competition: %w", err)
	}

	// Going live (or editing a live competition) refreshes the cache.
	if c.IsLive && (!wasLive || req.Questions != nil) {
		if err := s.WarmCompetitionCache(ctx, c); err != nil {
			s.log.Warn().Err(err).Str("competition_id", c.ID.String()).Msg("Cache warm failed")
		}
	}

	return c, nil
}

// Delete removes a competition with zero participants and zero results;
// otherwise it archives instead. Returns true if the row was deleted, false
// if it was archived.
func (s *CompetitionService) Delete(ctx context.Context, creatorID int, id uuid.UUID) (bool, error) {
	c, err := s.competitions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrCompetitionNotFound
		}
		return false, fmt.Errorf("get competition: %w", err)
	}
	if c.CreatorID != creatorID {
		return false, ErrNotCompetitionAuthor
	}

	joined, err := s.participants.Count(ctx, id)
	if err != nil {
		return false, fmt.Errorf("count participants: %w", err)
	}
	hasResults, err := s.results.ExistsForCompetition(ctx, id)
	if err != nil {
		return false, fmt.Errorf("check results: %w", err)
	}

	if joined > 0 || hasResults {
		c.Archived = true
		c.IsLive = false
		c.LastSaved = s.clk.Now()
		if err := s.competitions.Update(ctx, c); err != nil {
			return false, fmt.Errorf("archive competition: %w", err)
		}
		s.log.Info().Str("competition_id", id.String()).Msg("Competition archived instead of deleted")
		return false, nil
	}

	if err := s.competitions.Delete(ctx, id); err != nil {
		return false, fmt.Errorf("delete competition: %w", err)
	}
	return true, nil
}

// ListByCreator retrieves a creator's competitions with pagination.
func (s *CompetitionService) ListByCreator(ctx context.Context, creatorID, page, perPage int) ([]model.Competition, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}

	comps, total, err := s.competitions.ListByCreatorPaginated(ctx, creatorID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	if comps == nil {
		comps = []model.Competition{}
	}

	now := s.clk.Now()
	for i := range comps {
		if comps[i].Resolve(now) {
			if err := s.competitions.UpdateDerived(ctx, &comps[i]); err != nil {
				s.log.Warn().Err(err).Str("competition_id", comps[i].ID.String()).Msg("Persist resolved status failed")
			}
		}
	}
	return comps, total, nil
}

// LobbyCompetition is a competition as shown in the student lobby, with the
// student's own join/submit state overlaid.
type LobbyCompetition struct {
	model.Competition
	Joined    bool `json:"joined"`
	Submitted bool `json:"submitted"`
}

// ListForStudent returns live competitions with the student's membership
// overlay. Canonical answers are stripped by the handler projection.
func (s *CompetitionService) ListForStudent(ctx context.Context, studentID int) ([]LobbyCompetition, error) {
	comps, err := s.competitions.ListLive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list live competitions: %w", err)
	}

	joinedIDs, err := s.participants.ListCompetitionIDs(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list joined competitions: %w", err)
	}
	joined := make(map[uuid.UUID]bool, len(joinedIDs))
	for _, id := range joinedIDs {
		joined[id] = true
	}

	now := s.clk.Now()
	lobby := make([]LobbyCompetition, 0, len(comps))
	for i := range comps {
		c := &comps[i]
		if c.Resolve(now) {
			if err := s.competitions.UpdateDerived(ctx, c); err != nil {
				s.log.Warn().Err(err).Str("competition_id", c.ID.String()).Msg("Persist resolved status failed")
			}
		}
		// Resolution may have just archived an ended competition; it then
		// drops out of the lobby.
		if !c.IsLive || c.Archived {
			continue
		}

		entry := LobbyCompetition{Competition: *c, Joined: joined[c.ID]}
		if entry.Joined {
			res, err := s.results.GetByPair(ctx, c.ID, studentID)
			if err == nil && res.IsSubmitted {
				entry.Submitted = true
			}
		}
		lobby = append(lobby, entry)
	}
	return lobby, nil
}

// resolveAndPersist runs reactive on-read resolution and best-effort
// persists any change. A lost write here is corrected by the next sweep.
func (s *CompetitionService) resolveAndPersist(ctx context.Context, c *model.Competition) {
	if c.Resolve(s.clk.Now()) {
		if err := s.competitions.UpdateDerived(ctx, c); err != nil {
			s.log.Warn().Err(err).Str("competition_id", c.ID.String()).Msg("Persist resolved status failed")
		}
	}
}

// ─── Redis payload / answer-key cache ───────────────────────────────────────

// WarmCompetitionCache loads a competition's student payload and answer key
// into Redis. Both writes go through one pipeline.
func (s *CompetitionService) WarmCompetitionCache(ctx context.Context, c *model.Competition) error {
	if s.rdb == nil {
		return nil
	}
	if len(c.Questions) == 0 {
		return ErrNoQuestions
	}

	payload := model.CompetitionPayload{
		CompetitionID: c.ID,
		Name:          c.Name,
		Type:          c.Type,
		Duration:      c.DurationMinutes,
		Questions:     model.StripAnswers(c.Questions),
	}
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	answerKey := make(map[string]interface{}, len(c.Questions))
	for _, q := range c.Questions {
		if q.Answer != "" {
			answerKey[q.ID.String()] = q.Answer
		}
	}

	pipe := s.rdb.Pipeline()
	pipe.Set(ctx, config.CacheKey.CompetitionPayloadKey(c.ID.String()), payloadJSON, 0)
	pipe.Del(ctx, config.CacheKey.CompetitionAnswerKey(c.ID.String()))
	if len(answerKey) > 0 {
		pipe.HSet(ctx, config.CacheKey.CompetitionAnswerKey(c.ID.String()), answerKey)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache to redis: %w", err)
	}

	s.log.Debug().
		Str("competition_id", c.ID.String()).
		Int("questions", len(c.Questions)).
		Msg("Cache warmed")
	return nil
}

// PrewarmAllCaches loads all live competitions into Redis on startup.
// Per-competition failures are logged and skipped.
func (s *CompetitionService) PrewarmAllCaches(ctx context.Context) error {
	comps, err := s.competitions.ListLive(ctx)
	if err != nil {
		return fmt.Errorf("list live competitions: %w", err)
	}
	if len(comps) == 0 {
		s.log.Info().Msg("No live competitions to prewarm")
		return nil
	}

	warmed := 0
	for i := range comps {
		if err := s.WarmCompetitionCache(ctx, &comps[i]); err != nil {
			s.log.Warn().
				Err(err).
				Str("competition_id", comps[i].ID.String()).
				Msg("Failed to warm competition, skipping")
			continue
		}
		warmed++
	}

	s.log.Info().
		Int("warmed", warmed).
		Int("total", len(comps)).
		Msg("Prewarming complete")
	return nil
}

// GetAnswerKey retrieves the canonical answer map for a competition, from
// Redis when cached, falling back to the stored questions.
func (s *CompetitionService) GetAnswerKey(ctx context.Context, competitionID uuid.UUID) (map[string]string, error) {
	if s.rdb != nil {
		key := config.CacheKey.CompetitionAnswerKey(competitionID.String())
		result, err := s.rdb.HGetAll(ctx, key).Result()
		if err == nil && len(result) > 0 {
			return result, nil
		}
	}

	// Cache miss (or no Redis): rebuild from the source of truth.
	c, err := s.competitions.GetByID(ctx, competitionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCompetitionNotFound
		}
		return nil, fmt.Errorf("get competition: %w", err)
	}
	answerKey := make(map[string]string, len(c.Questions))
	for _, q := range c.Questions {
		if q.Answer != "" {
			answerKey[q.ID.String()] = q.Answer
		}
	}
	return answerKey, nil
}

// buildQuestions validates and materializes the question list for a
// competition type, assigning ids to new questions.
func buildQuestions(compType model.CompetitionType, reqs []model.QuestionRequest) ([]model.Question, error) {
	questions := make([]model.Question, len(reqs))
	for i, q := range reqs {
		switch compType {
		case model.CompetitionTypeText, model.CompetitionTypeMCQ:
			if q.Answer == "" {
				return nil, ErrAnswerRequired
			}
		case model.CompetitionTypeCode:
			// CODE questions carry no canonical answer; drop any sent.
			q.Answer = ""
		}
		if compType == model.CompetitionTypeMCQ && len(q.Options) < 2 {
			return nil, ErrOptionsRequired
		}
		if compType != model.CompetitionTypeMCQ {
			q.Options = nil
		}
		questions[i] = model.Question{
			ID:      uuid.New(),
			Text:    q.Text,
			Answer:  q.Answer,
			Options: q.Options,
			Points:  q.Points,
		}
	}
	return questions, nil
}
