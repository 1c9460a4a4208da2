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

// Submission errors.
var (
	ErrAnswerArityMismatch = errors.New("question and answer lists differ in length")
	ErrNotJoined           = errors.New("student has not joined this competition")
	ErrDuplicateSubmission = errors.New("student already submitted for this competition")
	ErrSubmissionNotFound  = errors.New("submission not found")
)

// SubmissionService accepts one-shot answer submissions. Each accepted
// submission immediately creates an ungraded result shell, so a result row
// exists for every submission from the moment it lands.
type SubmissionService struct {
	competitions CompetitionStore
	participants ParticipantStore
	submissions  SubmissionStore
	results      ResultStore
	clk          clock.Clock
	log          zerolog.Logger
}

// NewSubmissionService creates a new SubmissionService.
func NewSubmissionService(
	competitions CompetitionStore,
	participants ParticipantStore,
	submissions SubmissionStore,
	results ResultStore,
	clk clock.Clock,
	log zerolog.Logger,
) *SubmissionService {
	return &SubmissionService{
		competitions: competitions,
		participants: participants,
		submissions:  submissions,
		results:      results,
		clk:          clk,
		log:          log.With().Str("component", "submission_service").Logger(),
	}
}

// Submit records a student's answers for a competition. Preconditions in
// order: the question and answer lists match in length, the competition
// exists, the student is a member, and no earlier submission exists. The
// unique index on (competition_id, student_id) backstops the last check
// under concurrency.
//
// Submission is deliberately not gated on the availability window: answers
// are collected during the run and handed over after it closes.
func (s *SubmissionService) Submit(ctx context.Context, competitionID uuid.UUID, studentID int, req *model.SubmitAnswersRequest) (*model.Submission, error) {
	if len(req.QuestionIDs) != len(req.Answers) {
		return nil, ErrAnswerArityMismatch
	}

	if _, err := s.competitions.GetByID(ctx, competitionID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCompetitionNotFound
		}
		return nil, fmt.Errorf("get competition: %w", err)
	}

	joined, err := s.participants.Exists(ctx, competitionID, studentID)
	if err != nil {
		return nil, fmt.Errorf("check membership: %w", err)
	}
	if !joined {
		return nil, ErrNotJoined
	}

	exists, err := s.submissions.Exists(ctx, competitionID, studentID)
	if err != nil {
		return nil, fmt.Errorf("check existing submission: %w", err)
	}
	if exists {
		return nil, ErrDuplicateSubmission
	}

	sub := &model.Submission{
		ID:             uuid.New(),
		CompetitionID:  competitionID,
		StudentID:      studentID,
		QuestionIDs:    req.QuestionIDs,
		Answers:        req.Answers,
		SubmissionTime: s.clk.Now(),
	}
	if err := s.submissions.Create(ctx, sub); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDuplicateSubmission
		}
		return nil, fmt.Errorf("create submission: %w", err)
	}

	// Ungraded result shell. TotalScore stays zero until grading; readers
	// distinguish the two by IsGraded.
	answers := make([]model.Answer, len(req.QuestionIDs))
	for i, qid := range req.QuestionIDs {
		answers[i] = model.Answer{QuestionID: qid, Raw: req.Answers[i]}
	}
	res := &model.CompetitionResult{
		ID:             uuid.New(),
		CompetitionID:  competitionID,
		StudentID:      studentID,
		SubmissionID:   sub.ID,
		Answers:        answers,
		IsSubmitted:    true,
		SubmissionTime: sub.SubmissionTime,
	}
	if err := s.results.Create(ctx, res); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		// The submission is already durable; a failed shell insert is
		// recoverable at grading time.
		s.log.Error().
			Err(err).
			Str("submission_id", sub.ID.String()).
			Msg("Failed to create result shell")
	}

	s.log.Info().
		Str("competition_id", competitionID.String()).
		Int("student_id", studentID).
		Int("answers", len(req.Answers)).
		Msg("Submission accepted")
	return sub, nil
}

// Get retrieves a student's submission for a competition.
func (s *SubmissionService) Get(ctx context.Context, competitionID uuid.UUID, studentID int) (*model.Submission, error) {
	sub, err := s.submissions.GetByPair(ctx, competitionID, studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("get submission: %w", err)
	}
	return sub, nil
}
