package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/codequesthq/codequest-backend/internal/clock"
	"github.com/codequesthq/codequest-backend/internal/model"
)

// Join errors.
var (
	ErrNotJoinable     = errors.New("competition is not open for joining")
	ErrAlreadyJoined   = errors.New("student already joined this competition")
	ErrStudentNotFound = errors.New("student not found")
)

// AvailabilityError reports a join attempt outside the competition's
// availability window, carrying the window bounds for the client.
type AvailabilityError struct {
	AvailableFrom *time.Time `json:"available_from"`
	EndAt         *time.Time `json:"end_at"`
	Now           time.Time  `json:"now"`
}

func (e *AvailabilityError) Error() string {
	return "competition is not available at this time"
}

// JoinService registers students into competitions. Membership is a single
// row in competition_participants, so a join either fully happens or not at
// all; there is no partial state to reconcile.
type JoinService struct {
	competitions CompetitionStore
	participants ParticipantStore
	students     StudentStore
	clk          clock.Clock
	log          zerolog.Logger
}

// NewJoinService creates a new JoinService.
func NewJoinService(
	competitions CompetitionStore,
	participants ParticipantStore,
	students StudentStore,
	clk clock.Clock,
	log zerolog.Logger,
) *JoinService {
	return &JoinService{
		competitions: competitions,
		participants: participants,
		students:     students,
		clk:          clk,
		log:          log.With().Str("component", "join_service").Logger(),
	}
}

// Join enrolls a student into a competition. Preconditions are checked in
// order: the competition exists, is live and not archived, the current time
// falls inside its availability window, the student exists and has not
// joined before. The unique constraint on (competition_id, student_id)
// backstops the last check under concurrency.
func (s *JoinService) Join(ctx context.Context, competitionID uuid.UUID, studentID int) (*model.Participant, error) {
	c, err := s.competitions.GetByID(ctx, competitionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCompetitionNotFound
		}
		return nil, fmt.Errorf("get competition: %w", err)
	}

	now := s.clk.Now()
	if c.Resolve(now) {
		if err := s.competitions.UpdateDerived(ctx, c); err != nil {
			s.log.Warn().Err(err).Str("competition_id", c.ID.String()).Msg("Persist resolved status failed")
		}
	}

	if !c.IsLive || c.Archived {
		return nil, ErrNotJoinable
	}
	if !c.JoinableAt(now) {
		return nil, &AvailabilityError{
			AvailableFrom: c.AvailableFrom,
			EndAt:         c.EndAt,
			Now:           now,
		}
	}

	if _, err := s.students.GetByID(ctx, studentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("get student: %w", err)
	}

	joined, err := s.participants.Exists(ctx, competitionID, studentID)
	if err != nil {
		return nil, fmt.Errorf("check membership: %w", err)
	}
	if joined {
		return nil, ErrAlreadyJoined
	}

	p := &model.Participant{
		CompetitionID: competitionID,
		StudentID:     studentID,
		JoinedAt:      now,
	}
	if err := s.participants.Create(ctx, p); err != nil {
		// Concurrent join raced past the pre-check; the conflict-suppressed
		// insert surfaces it as ErrNoRows.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAlreadyJoined
		}
		return nil, fmt.Errorf("create participant: %w", err)
	}

	s.log.Info().
		Str("competition_id", competitionID.String()).
		Int("student_id", studentID).
		Msg("Student joined competition")
	return p, nil
}

// HasJoined reports whether a student is a member of a competition.
func (s *JoinService) HasJoined(ctx context.Context, competitionID uuid.UUID, studentID int) (bool, error) {
	return s.participants.Exists(ctx, competitionID, studentID)
}
