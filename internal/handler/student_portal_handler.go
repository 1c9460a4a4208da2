package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/codequesthq/codequest-backend/internal/middleware"
	"github.com/codequesthq/codequest-backend/internal/model"
	"github.com/codequesthq/codequest-backend/internal/response"
	"github.com/codequesthq/codequest-backend/internal/service"
	"github.com/codequesthq/codequest-backend/internal/validator"
)

// StudentPortalHandler handles the student-facing competition surface:
// lobby, join, submit, own result.
type StudentPortalHandler struct {
	competitionService *service.CompetitionService
	joinService        *service.JoinService
	submissionService  *service.SubmissionService
	resultService      *service.ResultService
}

// NewStudentPortalHandler creates a new StudentPortalHandler.
func NewStudentPortalHandler(
	competitionService *service.CompetitionService,
	joinService *service.JoinService,
	submissionService *service.SubmissionService,
	resultService *service.ResultService,
) *StudentPortalHandler {
	return &StudentPortalHandler{
		competitionService: competitionService,
		joinService:        joinService,
		submissionService:  submissionService,
		resultService:      resultService,
	}
}

// lobbyEntry is the student projection of a competition: no canonical
// answers, plus the student's own join/submit state.
type lobbyEntry struct {
	ID            string                     `json:"id"`
	SeqID         int                        `json:"seq_id"`
	Name          string                     `json:"name"`
	Description   string                     `json:"description"`
	Type          model.CompetitionType      `json:"type"`
	Duration      int                        `json:"duration_minutes"`
	Questions     []model.QuestionForStudent `json:"questions"`
	AvailableFrom *string                    `json:"available_from,omitempty"`
	EndAt         *string                    `json:"end_at,omitempty"`
	Status        model.CompetitionStatus    `json:"status"`
	Joined        bool                       `json:"joined"`
	Submitted     bool                       `json:"submitted"`
}

// ListCompetitions godoc
// GET /api/v1/student/competitions
func (h *StudentPortalHandler) ListCompetitions(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	lobby, err := h.competitionService.ListForStudent(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	entries := make([]lobbyEntry, len(lobby))
	for i := range lobby {
		entries[i] = toLobbyEntry(&lobby[i])
	}
	response.Success(c, http.StatusOK, gin.H{"competitions": entries})
}

// GetCompetition godoc
// GET /api/v1/student/competitions/:id
func (h *StudentPortalHandler) GetCompetition(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	id, ok := parseCompetitionID(c)
	if !ok {
		return
	}

	comp, err := h.competitionService.Get(c.Request.Context(), id)
	if err != nil {
		failCompetitionError(c, err)
		return
	}
	if !comp.IsLive && !comp.Archived {
		// Drafts are invisible to students.
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	joined, err := h.joinService.HasJoined(c.Request.Context(), id, claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	entry := toLobbyEntry(&service.LobbyCompetition{Competition: *comp, Joined: joined})
	response.Success(c, http.StatusOK, gin.H{"competition": entry})
}

// Join godoc
// POST /api/v1/student/competitions/:id/join
func (h *StudentPortalHandler) Join(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	id, ok := parseCompetitionID(c)
	if !ok {
		return
	}

	p, err := h.joinService.Join(c.Request.Context(), id, claims.UserID)
	if err != nil {
		var availErr *service.AvailabilityError
		switch {
		case errors.Is(err, service.ErrCompetitionNotFound),
			errors.Is(err, service.ErrStudentNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrNotJoinable):
			response.Fail(c, http.StatusConflict, response.ErrNotJoinable)
		case errors.As(err, &availErr):
			response.FailWithDetails(c, http.StatusConflict, response.ErrNotAvailable, availErr)
		case errors.Is(err, service.ErrAlreadyJoined):
			response.Fail(c, http.StatusConflict, response.ErrAlreadyJoined)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"participant": p})
}

// Submit godoc
// POST /api/v1/student/competitions/:id/submit
func (h *StudentPortalHandler) Submit(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	id, ok := parseCompetitionID(c)
	if !ok {
		return
	}

	var req model.SubmitAnswersRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sub, err := h.submissionService.Submit(c.Request.Context(), id, claims.UserID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAnswerArityMismatch):
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{
				"answers": err.Error(),
			})
		case errors.Is(err, service.ErrCompetitionNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrNotJoined):
			response.Fail(c, http.StatusForbidden, response.ErrNotJoined)
		case errors.Is(err, service.ErrDuplicateSubmission):
			response.Fail(c, http.StatusConflict, response.ErrDuplicateSubmission)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"submission": sub})
}

// MyResult godoc
// GET /api/v1/student/competitions/:id/result
func (h *StudentPortalHandler) MyResult(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	id, ok := parseCompetitionID(c)
	if !ok {
		return
	}

	res, err := h.resultService.Get(c.Request.Context(), id, claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrResultNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"result": res})
}

func toLobbyEntry(lc *service.LobbyCompetition) lobbyEntry {
	entry := lobbyEntry{
		ID:          lc.ID.String(),
		SeqID:       lc.SeqID,
		Name:        lc.Name,
		Description: lc.Description,
		Type:        lc.Type,
		Duration:    lc.DurationMinutes,
		Questions:   model.StripAnswers(lc.Questions),
		Status:      lc.Status,
		Joined:      lc.Joined,
		Submitted:   lc.Submitted,
	}
	if lc.AvailableFrom != nil {
		s := lc.AvailableFrom.UTC().Format(time.RFC3339)
		entry.AvailableFrom = &s
	}
	if lc.EndAt != nil {
		s := lc.EndAt.UTC().Format(time.RFC3339)
		entry.EndAt = &s
	}
	return entry
}
