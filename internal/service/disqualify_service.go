package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/codequesthq/codequest-backend/internal/clock"
	"github.com/codequesthq/codequest-backend/internal/model"
)

// Disqualification errors.
var (
	ErrReasonRequired        = errors.New("a disqualification reason is required")
	ErrAlreadyDisqualified   = errors.New("student is already disqualified")
	ErrDisqualifiedNotJoined = errors.New("cannot disqualify a student who never joined")
)

// DisqualifyService removes students from competitions for rule violations.
type DisqualifyService struct {
	competitions      CompetitionStore
	participants      ParticipantStore
	disqualifications DisqualificationStore
	clk               clock.Clock
	log               zerolog.Logger
}

// NewDisqualifyService creates a new DisqualifyService.
func NewDisqualifyService(
	competitions CompetitionStore,
	participants ParticipantStore,
	disqualifications DisqualificationStore,
	clk clock.Clock,
	log zerolog.Logger,
) *DisqualifyService {
	return &DisqualifyService{
		competitions:      competitions,
		participants:      participants,
		disqualifications: disqualifications,
		clk:               clk,
		log:               log.With().Str("component", "disqualify_service").Logger(),
	}
}

// Disqualify records a disqualification against a competition member.
// Requires a non-empty reason, an existing competition, prior membership,
// and no earlier disqualification for the pair.
func (s *DisqualifyService) Disqualify(ctx context.Context, competitionID uuid.UUID, req *model.DisqualifyStudentRequest) (*model.Disqualification, error) {
	if strings.TrimSpace(req.Reason) == "" {
		return nil, ErrReasonRequired
	}

	if _, err := s.competitions.GetByID(ctx, competitionID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCompetitionNotFound
		}
		return nil, fmt.Errorf("get competition: %w", err)
	}

	joined, err := s.participants.Exists(ctx, competitionID, req.StudentID)
	if err != nil {
		return nil, fmt.Errorf("check membership: %w", err)
	}
	if !joined {
		return nil, ErrDisqualifiedNotJoined
	}

	d := &model.Disqualification{
		ID:             uuid.New(),
		CompetitionID:  competitionID,
		StudentID:      req.StudentID,
		Reason:         strings.TrimSpace(req.Reason),
		Disqualified:   true,
		DisqualifiedAt: s.clk.Now(),
	}
	if err := s.disqualifications.Create(ctx, d); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAlreadyDisqualified
		}
		return nil, fmt.Errorf("create disqualification: %w", err)
	}

	s.log.Info().
		Str("competition_id", competitionID.String()).
		Int("student_id", req.StudentID).
		Msg("Student disqualified")
	return d, nil
}

// IsDisqualified reports whether a student is disqualified from a
// competition.
func (s *DisqualifyService) IsDisqualified(ctx context.Context, competitionID uuid.UUID, studentID int) (bool, error) {
	_, err := s.disqualifications.GetByPair(ctx, competitionID, studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("get disqualification: %w", err)
	}
	return true, nil
}

// List returns all disqualifications recorded for a competition.
func (s *DisqualifyService) List(ctx context.Context, competitionID uuid.UUID) ([]model.Disqualification, error) {
	out, err := s.disqualifications.ListByCompetition(ctx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("list disqualifications: %w", err)
	}
	if out == nil {
		out = []model.Disqualification{}
	}
	return out, nil
}
