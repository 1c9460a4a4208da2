package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/codequesthq/codequest-backend/internal/clock"
	"github.com/codequesthq/codequest-backend/internal/model"
)

// Grading errors.
var (
	ErrResultNotFound  = errors.New("result not found")
	ErrAlreadyGraded   = errors.New("result is already graded")
	ErrNotAutoGradable = errors.New("competition type cannot be auto-graded")
)

// ScoringMode selects how MaxPossibleScore is derived.
type ScoringMode int

const (
	// ScoreByCount values every answered question at one point; the maximum
	// is the number of answers in the submission.
	ScoreByCount ScoringMode = iota
	// ScoreByWeight sums per-question point weights; questions without an
	// explicit weight count as one point.
	ScoreByWeight
)

// ResultService grades submissions and serves results, stats and
// leaderboards.
type ResultService struct {
	competitions CompetitionStore
	participants ParticipantStore
	results      ResultStore
	answerKeys   *CompetitionService
	mode         ScoringMode
	clk          clock.Clock
	log          zerolog.Logger
}

// NewResultService creates a new ResultService.
func NewResultService(
	competitions CompetitionStore,
	participants ParticipantStore,
	results ResultStore,
	answerKeys *CompetitionService,
	mode ScoringMode,
	clk clock.Clock,
	log zerolog.Logger,
) *ResultService {
	return &ResultService{
		competitions: competitions,
		participants: participants,
		results:      results,
		answerKeys:   answerKeys,
		mode:         mode,
		clk:          clk,
		log:          log.With().Str("component", "result_service").Logger(),
	}
}

// ComputeScore folds graded answers into (total, max, percentage). The
// percentage is 0 when max is 0, never NaN. weights maps question id to
// point value under ScoreByWeight; missing entries weigh one point. Each
// answer contributes at most its weight and never less than zero, so
// total stays within [0, max] and the percentage within [0, 100].
func ComputeScore(answers []model.Answer, mode ScoringMode, weights map[uuid.UUID]int) (total, max int, percentage float64) {
	for _, a := range answers {
		w := 1
		if mode == ScoreByWeight {
			if v, ok := weights[a.QuestionID]; ok && v > 0 {
				w = v
			}
		}
		max += w
		score := a.Score
		if score > w {
			score = w
		}
		if score < 0 {
			score = 0
		}
		total += score
	}
	if max > 0 {
		percentage = float64(total) / float64(max) * 100
	}
	return total, max, percentage
}

// GradeAuto grades an MCQ submission against the cached answer key.
// Comparison is a case-exact string match. TEXT and CODE competitions are
// teacher-graded and are rejected here. Overwrite allows re-grading an
// already graded result.
func (s *ResultService) GradeAuto(ctx context.Context, competitionID uuid.UUID, studentID int, overwrite bool) (*model.CompetitionResult, error) {
	c, err := s.competitions.GetByID(ctx, competitionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCompetitionNotFound
		}
		return nil, fmt.Errorf("get competition: %w", err)
	}
	if c.Type != model.CompetitionTypeMCQ {
		return nil, ErrNotAutoGradable
	}

	res, err := s.results.GetByPair(ctx, competitionID, studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("get result: %w", err)
	}
	if res.IsGraded && !overwrite {
		return nil, ErrAlreadyGraded
	}

	key, err := s.answerKeys.GetAnswerKey(ctx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("get answer key: %w", err)
	}

	weights := questionWeights(c.Questions)
	for i := range res.Answers {
		a := &res.Answers[i]
		canonical, ok := key[a.QuestionID.String()]
		a.IsCorrect = ok && answersMatch(a.Raw, canonical)
		a.Score = 0
		if a.IsCorrect {
			a.Score = weightOf(s.mode, weights, a.QuestionID)
		}
	}

	return s.finalize(ctx, res, weights)
}

// GradeManual applies a teacher's per-question marks to a TEXT or CODE
// result. Marks for question ids absent from the submission are ignored,
// and a mark's score is capped at the question's weight.
func (s *ResultService) GradeManual(ctx context.Context, competitionID uuid.UUID, studentID int, req *model.GradeSubmissionRequest) (*model.CompetitionResult, error) {
	c, err := s.competitions.GetByID(ctx, competitionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCompetitionNotFound
		}
		return nil, fmt.Errorf("get competition: %w", err)
	}

	res, err := s.results.GetByPair(ctx, competitionID, studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("get result: %w", err)
	}
	if res.IsGraded && !req.Overwrite {
		return nil, ErrAlreadyGraded
	}

	weights := questionWeights(c.Questions)
	marks := make(map[uuid.UUID]model.QuestionMark, len(req.Marks))
	for _, m := range req.Marks {
		marks[m.QuestionID] = m
	}
	for i := range res.Answers {
		a := &res.Answers[i]
		m, ok := marks[a.QuestionID]
		if !ok {
			continue
		}
		a.IsCorrect = m.IsCorrect
		w := weightOf(s.mode, weights, a.QuestionID)
		switch {
		case m.Score > 0:
			a.Score = m.Score
			if a.Score > w {
				a.Score = w
			}
		case m.IsCorrect:
			a.Score = w
		default:
			a.Score = 0
		}
	}

	return s.finalize(ctx, res, weights)
}

func (s *ResultService) finalize(ctx context.Context, res *model.CompetitionResult, weights map[uuid.UUID]int) (*model.CompetitionResult, error) {
	total, max, pct := ComputeScore(res.Answers, s.mode, weights)
	res.TotalScore = total
	res.MaxPossibleScore = max
	res.PercentageScore = pct
	res.IsGraded = true
	now := s.clk.Now()
	res.GradedTime = &now

	if err := s.results.UpdateGrades(ctx, res); err != nil {
		return nil, fmt.Errorf("persist grades: %w", err)
	}

	s.log.Info().
		Str("competition_id", res.CompetitionID.String()).
		Int("student_id", res.StudentID).
		Int("total", total).
		Int("max", max).
		Msg("Result graded")
	return res, nil
}

// Get retrieves a student's result for a competition.
func (s *ResultService) Get(ctx context.Context, competitionID uuid.UUID, studentID int) (*model.CompetitionResult, error) {
	res, err := s.results.GetByPair(ctx, competitionID, studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("get result: %w", err)
	}
	return res, nil
}

// Stats aggregates a competition's participation and grading figures.
func (s *ResultService) Stats(ctx context.Context, competitionID uuid.UUID) (*model.CompetitionStats, error) {
	if _, err := s.competitions.GetByID(ctx, competitionID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCompetitionNotFound
		}
		return nil, fmt.Errorf("get competition: %w", err)
	}

	stats, err := s.results.Stats(ctx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("compute stats: %w", err)
	}
	stats.CompetitionID = competitionID

	joined, err := s.participants.Count(ctx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("count participants: %w", err)
	}
	stats.Participants = joined
	if joined > 0 {
		stats.CompletionRate = float64(stats.TotalSubmissions) / float64(joined) * 100
	}
	return stats, nil
}

// Leaderboard returns the top graded results for a competition.
func (s *ResultService) Leaderboard(ctx context.Context, competitionID uuid.UUID, limit int) ([]model.LeaderboardEntry, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}
	entries, err := s.results.Leaderboard(ctx, competitionID, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	if entries == nil {
		entries = []model.LeaderboardEntry{}
	}
	return entries, nil
}

func questionWeights(questions []model.Question) map[uuid.UUID]int {
	weights := make(map[uuid.UUID]int, len(questions))
	for _, q := range questions {
		if q.Points > 0 {
			weights[q.ID] = q.Points
		}
	}
	return weights
}

func weightOf(mode ScoringMode, weights map[uuid.UUID]int, id uuid.UUID) int {
	if mode == ScoreByWeight {
		if w, ok := weights[id]; ok && w > 0 {
			return w
		}
	}
	return 1
}

// answersMatch is a case-exact string compare; "PARIS" does not match
// "Paris", and stray whitespace counts against the answer.
func answersMatch(raw, canonical string) bool {
	return raw == canonical
}
